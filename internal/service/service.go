// Package service provides business logic for the application.
package service

import (
	"context"
	"errors"

	"github.com/exercisetracker/exercisetracker/internal/model"
	"github.com/exercisetracker/exercisetracker/internal/repository"
)

// Service errors.
var (
	ErrInvalidUsername    = errors.New("username is required")
	ErrUsernameTooLong    = errors.New("username is too long")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidDescription = errors.New("description is required")
	ErrInvalidDuration    = errors.New("duration must be a positive whole number of minutes")
	ErrInvalidDate        = errors.New("date must be in YYYY-MM-DD format")
)

// DefaultLogLimit caps a log query when the caller gives no usable limit.
const DefaultLogLimit = 100

// UserStore persists users.
type UserStore interface {
	CreateUser(ctx context.Context, user *model.User) error
	GetUserByID(ctx context.Context, id string) (*model.User, error)
	GetUserByUsername(ctx context.Context, username string) (*model.User, error)
	ListUsers(ctx context.Context) ([]*model.User, error)
}

// UserCache is an optional read-through cache of users keyed by ID.
// GetUser must return cache.ErrCacheMiss when the user is absent.
type UserCache interface {
	GetUser(ctx context.Context, id string) (*model.User, error)
	SetUser(ctx context.Context, user *model.User) error
}

// ExerciseStore persists exercise entries.
type ExerciseStore interface {
	CreateExercise(ctx context.Context, exercise *model.Exercise) error
	CountExercises(ctx context.Context, userID string) (int64, error)
	ListExercises(ctx context.Context, filter repository.ExerciseFilter) ([]*model.Exercise, error)
}
