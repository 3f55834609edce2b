package service

import (
	"context"
	"errors"
	"testing"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/exercisetracker/exercisetracker/internal/metrics"
	"github.com/exercisetracker/exercisetracker/internal/model"
)

type exerciseEnv struct {
	store *memStore
	users *UserService
	svc   *ExerciseService
	rec   *metrics.InMemoryRecorder
	user  *model.User
}

func newExerciseEnv(t *testing.T) *exerciseEnv {
	t.Helper()

	store := newMemStore()
	rec := metrics.NewInMemory()
	users := NewUserService(store, nil, discardLogger(), rec)
	svc := NewExerciseService(users, store, rec, 0)

	user, _, err := users.CreateOrGetUser(context.Background(), "alice")
	require.NoError(t, err)

	return &exerciseEnv{store: store, users: users, svc: svc, rec: rec, user: user}
}

func (e *exerciseEnv) add(t *testing.T, date string) {
	t.Helper()
	_, err := e.svc.AddExercise(context.Background(), AddExerciseInput{
		UserID:      e.user.ID,
		Description: "run " + date,
		Duration:    30,
		Date:        date,
	})
	require.NoError(t, err)
}

func TestExerciseService_AddExercise(t *testing.T) {
	env := newExerciseEnv(t)

	out, err := env.svc.AddExercise(context.Background(), AddExerciseInput{
		UserID:      env.user.ID,
		Description: "run",
		Duration:    30,
		Date:        "2023-05-01",
	})
	require.NoError(t, err)

	assert.Equal(t, env.user.ID, out.User.ID)
	assert.Equal(t, "alice", out.User.Username)
	assert.Equal(t, "run", out.Exercise.Description)
	assert.Equal(t, 30, out.Exercise.Duration)
	assert.Equal(t, "Mon May 01 2023", out.Exercise.Date.Display())
	assert.Equal(t, env.user.ID, out.Exercise.UserID)
	assert.Equal(t, int64(1), out.Count)
	assert.Equal(t, uint64(1), env.rec.Snapshot().ExercisesAdded)
}

func TestExerciseService_AddExercise_CountIsLifetimeTotal(t *testing.T) {
	env := newExerciseEnv(t)

	for i, date := range []string{"2023-01-01", "2023-01-02", "2023-01-03"} {
		out, err := env.svc.AddExercise(context.Background(), AddExerciseInput{
			UserID:      env.user.ID,
			Description: "swim",
			Duration:    45,
			Date:        date,
		})
		require.NoError(t, err)
		assert.Equal(t, int64(i+1), out.Count)
	}
}

func TestExerciseService_AddExercise_DefaultsToToday(t *testing.T) {
	env := newExerciseEnv(t)
	fixed, err := model.ParseCalendarDate("2024-02-29")
	require.NoError(t, err)
	env.svc.today = func() model.CalendarDate { return fixed }

	out, err := env.svc.AddExercise(context.Background(), AddExerciseInput{
		UserID:      env.user.ID,
		Description: "walk",
		Duration:    10,
	})
	require.NoError(t, err)
	assert.Equal(t, "Thu Feb 29 2024", out.Exercise.Date.Display())
}

func TestExerciseService_AddExercise_TodayIsCurrentDate(t *testing.T) {
	env := newExerciseEnv(t)

	before := model.Today()
	out, err := env.svc.AddExercise(context.Background(), AddExerciseInput{
		UserID:      env.user.ID,
		Description: "walk",
		Duration:    10,
	})
	require.NoError(t, err)
	after := model.Today()

	got := out.Exercise.Date.String()
	assert.True(t, got == before.String() || got == after.String(), "unexpected date %s", got)
}

func TestExerciseService_AddExercise_Validation(t *testing.T) {
	env := newExerciseEnv(t)

	overflow := model.MaxDurationMinutes
	overflow++

	tests := []struct {
		name    string
		input   AddExerciseInput
		wantErr error
	}{
		{
			name:    "missing description",
			input:   AddExerciseInput{UserID: env.user.ID, Description: " ", Duration: 10},
			wantErr: ErrInvalidDescription,
		},
		{
			name:    "zero duration",
			input:   AddExerciseInput{UserID: env.user.ID, Description: "run", Duration: 0},
			wantErr: ErrInvalidDuration,
		},
		{
			name:    "negative duration",
			input:   AddExerciseInput{UserID: env.user.ID, Description: "run", Duration: -5},
			wantErr: ErrInvalidDuration,
		},
		{
			name:    "duration beyond column range",
			input:   AddExerciseInput{UserID: env.user.ID, Description: "run", Duration: overflow},
			wantErr: ErrInvalidDuration,
		},
		{
			name:    "bad date",
			input:   AddExerciseInput{UserID: env.user.ID, Description: "run", Duration: 10, Date: "05/01/2023"},
			wantErr: ErrInvalidDate,
		},
		{
			name:    "unknown user",
			input:   AddExerciseInput{UserID: ulid.Make().String(), Description: "run", Duration: 10},
			wantErr: ErrUserNotFound,
		},
		{
			name:    "malformed user id",
			input:   AddExerciseInput{UserID: "123", Description: "run", Duration: 10},
			wantErr: ErrUserNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.svc.AddExercise(context.Background(), tt.input)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	assert.Empty(t, env.store.exercises, "invalid input must not be stored")
}

func TestExerciseService_AddExercise_StoreErrors(t *testing.T) {
	storeErr := errors.New("write failed")

	t.Run("insert", func(t *testing.T) {
		env := newExerciseEnv(t)
		env.store.errCreateEx = storeErr

		_, err := env.svc.AddExercise(context.Background(), AddExerciseInput{UserID: env.user.ID, Description: "run", Duration: 5})
		assert.ErrorIs(t, err, storeErr)
	})

	t.Run("count", func(t *testing.T) {
		env := newExerciseEnv(t)
		env.store.errCount = storeErr

		_, err := env.svc.AddExercise(context.Background(), AddExerciseInput{UserID: env.user.ID, Description: "run", Duration: 5})
		assert.ErrorIs(t, err, storeErr)
	})
}

func TestExerciseService_GetLog(t *testing.T) {
	env := newExerciseEnv(t)
	env.add(t, "2023-05-01")

	out, err := env.svc.GetLog(context.Background(), GetLogInput{UserID: env.user.ID})
	require.NoError(t, err)

	assert.Equal(t, "alice", out.User.Username)
	assert.Equal(t, 1, out.Count())
	require.Len(t, out.Exercises, 1)
	assert.Equal(t, "Mon May 01 2023", out.Exercises[0].Date.Display())
	assert.Equal(t, DefaultLogLimit, env.store.lastFilter.Limit)
	assert.Equal(t, uint64(1), env.rec.Snapshot().LogsQueried)
	assert.Equal(t, uint64(1), env.rec.Snapshot().LogQueryDurationCount)
}

func TestExerciseService_GetLog_Limit(t *testing.T) {
	env := newExerciseEnv(t)
	for _, d := range []string{"2023-01-01", "2023-01-02", "2023-01-03", "2023-01-04", "2023-01-05"} {
		env.add(t, d)
	}

	out, err := env.svc.GetLog(context.Background(), GetLogInput{UserID: env.user.ID, Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, 2, out.Count())
	assert.Equal(t, "2023-01-01", out.Exercises[0].Date.String())
	assert.Equal(t, "2023-01-02", out.Exercises[1].Date.String())
}

func TestExerciseService_GetLog_NonPositiveLimitUsesDefault(t *testing.T) {
	env := newExerciseEnv(t)

	for _, limit := range []int{0, -1} {
		_, err := env.svc.GetLog(context.Background(), GetLogInput{UserID: env.user.ID, Limit: limit})
		require.NoError(t, err)
		assert.Equal(t, DefaultLogLimit, env.store.lastFilter.Limit)
	}
}

func TestExerciseService_GetLog_ConfiguredDefaultLimit(t *testing.T) {
	store := newMemStore()
	users := NewUserService(store, nil, discardLogger(), nil)
	svc := NewExerciseService(users, store, nil, 25)

	user, _, err := users.CreateOrGetUser(context.Background(), "bob")
	require.NoError(t, err)

	_, err = svc.GetLog(context.Background(), GetLogInput{UserID: user.ID})
	require.NoError(t, err)
	assert.Equal(t, 25, store.lastFilter.Limit)
}

func TestExerciseService_GetLog_DateRange(t *testing.T) {
	env := newExerciseEnv(t)
	for _, d := range []string{"2022-12-31", "2023-01-01", "2023-01-15", "2023-01-31", "2023-02-01"} {
		env.add(t, d)
	}

	out, err := env.svc.GetLog(context.Background(), GetLogInput{
		UserID: env.user.ID,
		From:   "2023-01-01",
		To:     "2023-01-31",
	})
	require.NoError(t, err)

	got := make([]string, 0, out.Count())
	for _, e := range out.Exercises {
		got = append(got, e.Date.String())
	}
	assert.Equal(t, []string{"2023-01-01", "2023-01-15", "2023-01-31"}, got)
}

func TestExerciseService_GetLog_InsertionOrder(t *testing.T) {
	env := newExerciseEnv(t)
	for _, d := range []string{"2023-03-01", "2023-01-01", "2023-02-01"} {
		env.add(t, d)
	}

	out, err := env.svc.GetLog(context.Background(), GetLogInput{UserID: env.user.ID})
	require.NoError(t, err)
	require.Equal(t, 3, out.Count())
	assert.Equal(t, "2023-03-01", out.Exercises[0].Date.String())
	assert.Equal(t, "2023-01-01", out.Exercises[1].Date.String())
	assert.Equal(t, "2023-02-01", out.Exercises[2].Date.String())
}

func TestExerciseService_GetLog_Errors(t *testing.T) {
	env := newExerciseEnv(t)

	tests := []struct {
		name    string
		input   GetLogInput
		wantErr error
	}{
		{"unknown user", GetLogInput{UserID: ulid.Make().String()}, ErrUserNotFound},
		{"empty user id", GetLogInput{UserID: ""}, ErrUserNotFound},
		{"bad from", GetLogInput{UserID: env.user.ID, From: "2023-13-01"}, ErrInvalidDate},
		{"bad to", GetLogInput{UserID: env.user.ID, To: "tomorrow"}, ErrInvalidDate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.svc.GetLog(context.Background(), tt.input)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}
