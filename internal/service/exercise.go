package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/exercisetracker/exercisetracker/internal/metrics"
	"github.com/exercisetracker/exercisetracker/internal/model"
	"github.com/exercisetracker/exercisetracker/internal/repository"
)

// ExerciseService handles exercise logging and log queries.
type ExerciseService struct {
	users        *UserService
	store        ExerciseStore
	metrics      metrics.Recorder
	defaultLimit int
	today        func() model.CalendarDate
}

// NewExerciseService creates a new ExerciseService.
// A non-positive defaultLimit falls back to DefaultLogLimit.
func NewExerciseService(users *UserService, store ExerciseStore, recorder metrics.Recorder, defaultLimit int) *ExerciseService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	if defaultLimit <= 0 {
		defaultLimit = DefaultLogLimit
	}
	return &ExerciseService{
		users:        users,
		store:        store,
		metrics:      recorder,
		defaultLimit: defaultLimit,
		today:        model.Today,
	}
}

// AddExerciseInput defines input for logging an exercise.
type AddExerciseInput struct {
	UserID      string
	Description string
	Duration    int
	Date        string // YYYY-MM-DD, empty means today
}

// AddExerciseOutput is the stored entry together with its owner.
type AddExerciseOutput struct {
	User     *model.User
	Exercise *model.Exercise
	Count    int64 // user's total entries after this write
}

// AddExercise validates and stores a new exercise entry for an existing user.
func (s *ExerciseService) AddExercise(ctx context.Context, input AddExerciseInput) (*AddExerciseOutput, error) {
	if strings.TrimSpace(input.Description) == "" {
		return nil, ErrInvalidDescription
	}
	if input.Duration <= 0 || input.Duration > model.MaxDurationMinutes {
		return nil, ErrInvalidDuration
	}

	date := s.today()
	if input.Date != "" {
		parsed, err := model.ParseCalendarDate(input.Date)
		if err != nil {
			return nil, ErrInvalidDate
		}
		date = parsed
	}

	user, err := s.users.GetUser(ctx, input.UserID)
	if err != nil {
		return nil, err
	}

	exercise := &model.Exercise{
		ID:          generateULID(),
		UserID:      user.ID,
		Description: input.Description,
		Duration:    input.Duration,
		Date:        date,
		CreatedAt:   time.Now().UTC(),
	}

	if err := s.store.CreateExercise(ctx, exercise); err != nil {
		return nil, fmt.Errorf("failed to create exercise: %w", err)
	}

	count, err := s.store.CountExercises(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to count exercises: %w", err)
	}

	s.metrics.IncExerciseAdded()

	return &AddExerciseOutput{
		User:     user,
		Exercise: exercise,
		Count:    count,
	}, nil
}

// GetLogInput defines input for a log query.
type GetLogInput struct {
	UserID string
	From   string // YYYY-MM-DD, inclusive, optional
	To     string // YYYY-MM-DD, inclusive, optional
	Limit  int    // non-positive means the default limit
}

// GetLogOutput is a user's filtered exercise log.
type GetLogOutput struct {
	User      *model.User
	Exercises []*model.Exercise
}

// Count returns the number of entries in the log.
func (o *GetLogOutput) Count() int {
	return len(o.Exercises)
}

// GetLog returns a user's entries in insertion order, filtered by the
// optional inclusive date range and capped at the limit.
func (s *ExerciseService) GetLog(ctx context.Context, input GetLogInput) (*GetLogOutput, error) {
	start := time.Now()
	defer func() {
		s.metrics.ObserveLogQueryDuration(time.Since(start))
	}()

	filter := repository.ExerciseFilter{
		Limit: input.Limit,
	}
	if filter.Limit <= 0 {
		filter.Limit = s.defaultLimit
	}

	var err error
	if filter.From, err = parseOptionalDate(input.From); err != nil {
		return nil, err
	}
	if filter.To, err = parseOptionalDate(input.To); err != nil {
		return nil, err
	}

	user, err := s.users.GetUser(ctx, input.UserID)
	if err != nil {
		return nil, err
	}
	filter.UserID = user.ID

	exercises, err := s.store.ListExercises(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list exercises: %w", err)
	}

	s.metrics.IncLogQueried()

	return &GetLogOutput{
		User:      user,
		Exercises: exercises,
	}, nil
}

func parseOptionalDate(s string) (*model.CalendarDate, error) {
	if s == "" {
		return nil, nil
	}
	d, err := model.ParseCalendarDate(s)
	if err != nil {
		return nil, ErrInvalidDate
	}
	return &d, nil
}
