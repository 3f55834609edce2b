package model

import (
	"math"
	"time"
)

// MaxDurationMinutes is the largest duration the exercises.duration INTEGER column holds.
const MaxDurationMinutes = math.MaxInt32

// Exercise is a single logged activity belonging to a user.
type Exercise struct {
	ID          string       `json:"id"`
	UserID      string       `json:"user_id"`
	Description string       `json:"description"`
	Duration    int          `json:"duration"` // minutes
	Date        CalendarDate `json:"date"`
	CreatedAt   time.Time    `json:"created_at"`
}
