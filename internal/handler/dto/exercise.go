package dto

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/url"
	"strconv"
	"strings"

	"github.com/jellydator/validation"

	"github.com/exercisetracker/exercisetracker/internal/model"
)

var errNotWholeMinutes = errors.New("must be a positive whole number no larger than 2147483647")

// Minutes is a duration in whole minutes as sent by clients.
// It decodes from either a JSON number or a numeric string.
type Minutes string

// UnmarshalJSON accepts 30 and "30" alike.
func (m *Minutes) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		*m = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*m = Minutes(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return errors.New("duration must be a number")
	}
	*m = Minutes(n.String())
	return nil
}

// Int returns the value as a positive whole number of minutes.
func (m Minutes) Int() (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(string(m)))
	if err != nil || n <= 0 || n > model.MaxDurationMinutes {
		return 0, errNotWholeMinutes
	}
	return n, nil
}

func validMinutes(value any) error {
	m, _ := value.(Minutes)
	if m == "" {
		return nil
	}
	_, err := m.Int()
	return err
}

// AddExerciseRequest represents the request body for logging an exercise.
type AddExerciseRequest struct {
	Description string  `json:"description"`
	Duration    Minutes `json:"duration"`
	Date        string  `json:"date,omitempty"`
}

// BindForm fills the request from form values.
func (r *AddExerciseRequest) BindForm(values url.Values) error {
	r.Description = values.Get("description")
	r.Duration = Minutes(values.Get("duration"))
	r.Date = values.Get("date")
	return nil
}

// Validate checks the payload shape. Date is optional.
func (r AddExerciseRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Description, validation.Required),
		validation.Field(&r.Duration, validation.Required, validation.By(validMinutes)),
		validation.Field(&r.Date, validation.Date(model.DateLayout)),
	)
}

// ExerciseResponse is returned after an exercise is logged.
// ID and LegacyID both carry the owner's user ID.
type ExerciseResponse struct {
	ID          string `json:"id"`
	LegacyID    string `json:"_id"`
	Username    string `json:"username"`
	Description string `json:"description"`
	Duration    int    `json:"duration"`
	Date        string `json:"date"`
	Count       int64  `json:"count"`
}

// ToExerciseResponse converts a stored exercise and its owner to ExerciseResponse.
func ToExerciseResponse(user *model.User, exercise *model.Exercise, count int64) ExerciseResponse {
	return ExerciseResponse{
		ID:          user.ID,
		LegacyID:    user.ID,
		Username:    user.Username,
		Description: exercise.Description,
		Duration:    exercise.Duration,
		Date:        exercise.Date.Display(),
		Count:       count,
	}
}

// LogEntry is one exercise within a log.
type LogEntry struct {
	Description string `json:"description"`
	Duration    int    `json:"duration"`
	Date        string `json:"date"`
}

// LogResponse represents a user's exercise log.
type LogResponse struct {
	ID       string     `json:"id"`
	LegacyID string     `json:"_id"`
	Username string     `json:"username"`
	Count    int        `json:"count"`
	Log      []LogEntry `json:"log"`
}

// ToLogResponse converts a user and their exercises to LogResponse.
func ToLogResponse(user *model.User, exercises []*model.Exercise) LogResponse {
	entries := make([]LogEntry, len(exercises))
	for i, e := range exercises {
		entries[i] = LogEntry{
			Description: e.Description,
			Duration:    e.Duration,
			Date:        e.Date.Display(),
		}
	}
	return LogResponse{
		ID:       user.ID,
		LegacyID: user.ID,
		Username: user.Username,
		Count:    len(entries),
		Log:      entries,
	}
}
