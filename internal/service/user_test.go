package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/exercisetracker/exercisetracker/internal/metrics"
	"github.com/exercisetracker/exercisetracker/internal/model"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestUserService(store *memStore, c UserCache) (*UserService, *metrics.InMemoryRecorder) {
	rec := metrics.NewInMemory()
	return NewUserService(store, c, discardLogger(), rec), rec
}

func TestUserService_CreateOrGetUser_New(t *testing.T) {
	store := newMemStore()
	svc, rec := newTestUserService(store, nil)

	user, created, err := svc.CreateOrGetUser(context.Background(), "alice")
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, "alice", user.Username)
	assert.NotEmpty(t, user.ID)
	assert.False(t, user.CreatedAt.IsZero())

	_, err = ulid.ParseStrict(user.ID)
	assert.NoError(t, err, "user IDs should be ULIDs")
	assert.Equal(t, uint64(1), rec.Snapshot().UsersCreated)
}

func TestUserService_CreateOrGetUser_Idempotent(t *testing.T) {
	store := newMemStore()
	svc, rec := newTestUserService(store, nil)
	ctx := context.Background()

	first, created, err := svc.CreateOrGetUser(ctx, "alice")
	require.NoError(t, err)
	require.True(t, created)

	second, created, err := svc.CreateOrGetUser(ctx, "alice")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, second.ID)

	users, err := svc.ListUsers(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 1)
	assert.Equal(t, uint64(1), rec.Snapshot().UsersCreated)
}

func TestUserService_CreateOrGetUser_CaseSensitive(t *testing.T) {
	svc, _ := newTestUserService(newMemStore(), nil)
	ctx := context.Background()

	lower, _, err := svc.CreateOrGetUser(ctx, "alice")
	require.NoError(t, err)
	upper, _, err := svc.CreateOrGetUser(ctx, "Alice")
	require.NoError(t, err)

	assert.NotEqual(t, lower.ID, upper.ID)
}

func TestUserService_CreateOrGetUser_LostRace(t *testing.T) {
	store := newMemStore()
	winner := &model.User{ID: ulid.Make().String(), Username: "alice", CreatedAt: time.Now().UTC()}
	store.beforeCreate = func(s *memStore) {
		s.insertUser(winner)
	}

	svc, rec := newTestUserService(store, nil)

	user, created, err := svc.CreateOrGetUser(context.Background(), "alice")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, winner.ID, user.ID)
	assert.Zero(t, rec.Snapshot().UsersCreated)
}

func TestUserService_CreateOrGetUser_Validation(t *testing.T) {
	svc, _ := newTestUserService(newMemStore(), nil)

	tests := []struct {
		name     string
		username string
		wantErr  error
	}{
		{"empty", "", ErrInvalidUsername},
		{"whitespace", "   ", ErrInvalidUsername},
		{"too long", strings.Repeat("a", model.MaxUsernameLength+1), ErrUsernameTooLong},
		{"too many multibyte characters", strings.Repeat("é", model.MaxUsernameLength+1), ErrUsernameTooLong},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := svc.CreateOrGetUser(context.Background(), tt.username)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestUserService_CreateOrGetUser_LengthCountsCharacters(t *testing.T) {
	svc, _ := newTestUserService(newMemStore(), nil)

	// 200 characters, 400 bytes.
	username := strings.Repeat("é", 200)

	user, created, err := svc.CreateOrGetUser(context.Background(), username)
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, username, user.Username)
}

func TestUserService_CreateOrGetUser_StoreErrors(t *testing.T) {
	storeErr := errors.New("connection refused")

	t.Run("lookup fails", func(t *testing.T) {
		store := newMemStore()
		store.errGetByName = storeErr
		svc, _ := newTestUserService(store, nil)

		_, _, err := svc.CreateOrGetUser(context.Background(), "alice")
		assert.ErrorIs(t, err, storeErr)
	})

	t.Run("insert fails", func(t *testing.T) {
		store := newMemStore()
		store.errCreate = storeErr
		svc, _ := newTestUserService(store, nil)

		_, _, err := svc.CreateOrGetUser(context.Background(), "alice")
		assert.ErrorIs(t, err, storeErr)
	})
}

func TestUserService_ListUsers_InsertionOrder(t *testing.T) {
	svc, _ := newTestUserService(newMemStore(), nil)
	ctx := context.Background()

	for _, name := range []string{"zed", "amy", "mia"} {
		_, _, err := svc.CreateOrGetUser(ctx, name)
		require.NoError(t, err)
	}

	users, err := svc.ListUsers(ctx)
	require.NoError(t, err)
	require.Len(t, users, 3)
	assert.Equal(t, "zed", users[0].Username)
	assert.Equal(t, "amy", users[1].Username)
	assert.Equal(t, "mia", users[2].Username)
}

func TestUserService_ListUsers_Error(t *testing.T) {
	store := newMemStore()
	store.errList = errors.New("boom")
	svc, _ := newTestUserService(store, nil)

	_, err := svc.ListUsers(context.Background())
	assert.Error(t, err)
}

func TestUserService_GetUser_NotFound(t *testing.T) {
	store := newMemStore()
	svc, _ := newTestUserService(store, nil)
	ctx := context.Background()

	_, err := svc.GetUser(ctx, ulid.Make().String())
	assert.ErrorIs(t, err, ErrUserNotFound)

	calls := store.getByIDCalls
	_, err = svc.GetUser(ctx, "not-a-valid-id")
	assert.ErrorIs(t, err, ErrUserNotFound)
	assert.Equal(t, calls, store.getByIDCalls, "malformed IDs should not reach the store")
}

func TestUserService_GetUser_StoreError(t *testing.T) {
	store := newMemStore()
	store.errGetByID = errors.New("timeout")
	svc, _ := newTestUserService(store, nil)

	_, err := svc.GetUser(context.Background(), ulid.Make().String())
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrUserNotFound)
}

func TestUserService_GetUser_ReadThroughCache(t *testing.T) {
	store := newMemStore()
	c := newMemCache()
	svc, rec := newTestUserService(store, c)
	ctx := context.Background()

	user, _, err := svc.CreateOrGetUser(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, 1, c.setHits, "new users are written to the cache")

	got, err := svc.GetUser(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)
	assert.Zero(t, store.getByIDCalls, "cached users should not hit the store")
	assert.Equal(t, uint64(1), rec.Snapshot().UserCacheHits)

	// Evict and read again: falls through to the store and repopulates.
	delete(c.users, user.ID)
	got, err = svc.GetUser(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, user.Username, got.Username)
	assert.Equal(t, 1, store.getByIDCalls)
	assert.Contains(t, c.users, user.ID)
	assert.Equal(t, uint64(1), rec.Snapshot().UserCacheMisses)
}

func TestUserService_GetUser_CacheFailuresIgnored(t *testing.T) {
	store := newMemStore()
	c := newMemCache()
	c.errGet = errors.New("redis down")
	c.errSet = errors.New("redis down")
	svc, _ := newTestUserService(store, c)
	ctx := context.Background()

	user, _, err := svc.CreateOrGetUser(ctx, "alice")
	require.NoError(t, err)

	got, err := svc.GetUser(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)
	assert.Equal(t, 1, store.getByIDCalls)
}
