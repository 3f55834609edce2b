package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/oklog/ulid/v2"

	"github.com/exercisetracker/exercisetracker/internal/cache"
	"github.com/exercisetracker/exercisetracker/internal/metrics"
	"github.com/exercisetracker/exercisetracker/internal/model"
	"github.com/exercisetracker/exercisetracker/internal/repository"
)

// UserService handles user registration and lookup.
type UserService struct {
	store   UserStore
	cache   UserCache
	logger  *slog.Logger
	metrics metrics.Recorder
}

// NewUserService creates a new UserService.
// userCache may be nil, in which case every lookup goes to the store.
func NewUserService(store UserStore, userCache UserCache, logger *slog.Logger, recorder metrics.Recorder) *UserService {
	if logger == nil {
		logger = slog.Default()
	}
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &UserService{
		store:   store,
		cache:   userCache,
		logger:  logger,
		metrics: recorder,
	}
}

// CreateOrGetUser returns the user registered under username, creating it
// first if needed. The boolean reports whether a new user was created.
func (s *UserService) CreateOrGetUser(ctx context.Context, username string) (*model.User, bool, error) {
	if strings.TrimSpace(username) == "" {
		return nil, false, ErrInvalidUsername
	}
	if utf8.RuneCountInString(username) > model.MaxUsernameLength {
		return nil, false, ErrUsernameTooLong
	}

	existing, err := s.store.GetUserByUsername(ctx, username)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, repository.ErrUserNotFound) {
		return nil, false, fmt.Errorf("failed to look up username: %w", err)
	}

	user := &model.User{
		ID:        generateULID(),
		Username:  username,
		CreatedAt: time.Now().UTC(),
	}

	if err := s.store.CreateUser(ctx, user); err != nil {
		// Another request registered the same name between our lookup and insert.
		if errors.Is(err, repository.ErrUsernameExists) {
			existing, err := s.store.GetUserByUsername(ctx, username)
			if err != nil {
				return nil, false, fmt.Errorf("failed to reload user after conflict: %w", err)
			}
			return existing, false, nil
		}
		return nil, false, fmt.Errorf("failed to create user: %w", err)
	}

	s.metrics.IncUserCreated()
	s.cacheUser(ctx, user)

	return user, true, nil
}

// ListUsers returns every registered user in insertion order.
func (s *UserService) ListUsers(ctx context.Context) ([]*model.User, error) {
	users, err := s.store.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

// GetUser resolves a user by ID, consulting the cache first when one is configured.
func (s *UserService) GetUser(ctx context.Context, id string) (*model.User, error) {
	// IDs are always ULIDs, anything else cannot exist.
	if _, err := ulid.ParseStrict(id); err != nil {
		return nil, ErrUserNotFound
	}

	if s.cache != nil {
		user, err := s.cache.GetUser(ctx, id)
		switch {
		case err == nil:
			s.metrics.IncUserCacheHit()
			return user, nil
		case errors.Is(err, cache.ErrCacheMiss):
			s.metrics.IncUserCacheMiss()
		default:
			s.metrics.IncUserCacheMiss()
			s.logger.Warn("user cache read failed", "user_id", id, "error", err)
		}
	}

	user, err := s.store.GetUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	s.cacheUser(ctx, user)

	return user, nil
}

// cacheUser writes the user to the cache. Errors are logged and otherwise ignored.
func (s *UserService) cacheUser(ctx context.Context, user *model.User) {
	if s.cache == nil {
		return
	}
	if err := s.cache.SetUser(ctx, user); err != nil {
		s.logger.Warn("user cache write failed", "user_id", user.ID, "error", err)
	}
}

// generateULID returns a new lexicographically sortable identifier.
func generateULID() string {
	return ulid.Make().String()
}
