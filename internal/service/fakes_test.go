package service

import (
	"context"
	"sync"

	"github.com/exercisetracker/exercisetracker/internal/cache"
	"github.com/exercisetracker/exercisetracker/internal/model"
	"github.com/exercisetracker/exercisetracker/internal/repository"
)

// memStore is an in-memory UserStore and ExerciseStore.
type memStore struct {
	mu        sync.Mutex
	users     []*model.User
	exercises []*model.Exercise

	// Optional failure injection.
	errGetByName error
	errGetByID   error
	errCreate    error
	errList      error
	errCreateEx  error
	errCount     error

	// beforeCreate runs inside CreateUser before the uniqueness check,
	// letting tests simulate a concurrent registration.
	beforeCreate func(s *memStore)

	getByIDCalls int
	lastFilter   repository.ExerciseFilter
}

func newMemStore() *memStore {
	return &memStore{}
}

func (s *memStore) insertUser(u *model.User) {
	s.users = append(s.users, u)
}

func (s *memStore) CreateUser(ctx context.Context, user *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.beforeCreate != nil {
		hook := s.beforeCreate
		s.beforeCreate = nil
		hook(s)
	}
	if s.errCreate != nil {
		return s.errCreate
	}
	for _, u := range s.users {
		if u.Username == user.Username {
			return repository.ErrUsernameExists
		}
	}
	s.insertUser(user)
	return nil
}

func (s *memStore) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.getByIDCalls++
	if s.errGetByID != nil {
		return nil, s.errGetByID
	}
	for _, u := range s.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (s *memStore) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.errGetByName != nil {
		return nil, s.errGetByName
	}
	for _, u := range s.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (s *memStore) ListUsers(ctx context.Context) ([]*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.errList != nil {
		return nil, s.errList
	}
	out := make([]*model.User, len(s.users))
	copy(out, s.users)
	return out, nil
}

func (s *memStore) CreateExercise(ctx context.Context, exercise *model.Exercise) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.errCreateEx != nil {
		return s.errCreateEx
	}
	s.exercises = append(s.exercises, exercise)
	return nil
}

func (s *memStore) CountExercises(ctx context.Context, userID string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.errCount != nil {
		return 0, s.errCount
	}
	var n int64
	for _, e := range s.exercises {
		if e.UserID == userID {
			n++
		}
	}
	return n, nil
}

func (s *memStore) ListExercises(ctx context.Context, filter repository.ExerciseFilter) ([]*model.Exercise, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lastFilter = filter
	out := make([]*model.Exercise, 0)
	for _, e := range s.exercises {
		if e.UserID != filter.UserID {
			continue
		}
		if filter.From != nil && e.Date.Time().Before(filter.From.Time()) {
			continue
		}
		if filter.To != nil && e.Date.Time().After(filter.To.Time()) {
			continue
		}
		out = append(out, e)
		if filter.Limit > 0 && len(out) == filter.Limit {
			break
		}
	}
	return out, nil
}

// memCache is an in-memory UserCache.
type memCache struct {
	mu      sync.Mutex
	users   map[string]*model.User
	errGet  error
	errSet  error
	setHits int
}

func newMemCache() *memCache {
	return &memCache{users: make(map[string]*model.User)}
}

func (c *memCache) GetUser(ctx context.Context, id string) (*model.User, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.errGet != nil {
		return nil, c.errGet
	}
	u, ok := c.users[id]
	if !ok {
		return nil, cache.ErrCacheMiss
	}
	return u, nil
}

func (c *memCache) SetUser(ctx context.Context, user *model.User) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.setHits++
	if c.errSet != nil {
		return c.errSet
	}
	c.users[user.ID] = user
	return nil
}
