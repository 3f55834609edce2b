// Package model defines domain entities for the application.
package model

import (
	"strconv"
	"time"
)

// MaxUsernameLength matches the width of the users.username column, in characters.
const MaxUsernameLength = 255

// User is a registered person who owns exercise entries.
// Users are created once and never mutated.
type User struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"created_at"`
}

// CachedUser represents user data stored in the Redis cache.
// Uses string types for Redis hash compatibility.
type CachedUser struct {
	Username  string `redis:"username"`
	CreatedAt string `redis:"created_at"` // Unix timestamp
}

// ToUser converts CachedUser to the User domain model.
func (c *CachedUser) ToUser(id string) *User {
	user := &User{
		ID:       id,
		Username: c.Username,
	}

	if ts, err := parseUnix(c.CreatedAt); err == nil {
		user.CreatedAt = ts
	}

	return user
}

// ToCachedUser converts a User into its cache representation.
func (u *User) ToCachedUser() *CachedUser {
	return &CachedUser{
		Username:  u.Username,
		CreatedAt: formatUnix(u.CreatedAt),
	}
}

func parseUnix(s string) (time.Time, error) {
	ts, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return time.Time{}, err
	}
	return time.Unix(ts, 0).UTC(), nil
}

func formatUnix(t time.Time) string {
	return strconv.FormatInt(t.Unix(), 10)
}
