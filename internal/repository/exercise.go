package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/exercisetracker/exercisetracker/internal/model"
)

// ExerciseFilter narrows a log query for a single user.
// From and To are inclusive calendar-date bounds.
type ExerciseFilter struct {
	UserID string
	From   *model.CalendarDate
	To     *model.CalendarDate
	Limit  int
}

// CreateExercise inserts a new exercise entry.
func (r *Repository) CreateExercise(ctx context.Context, exercise *model.Exercise) error {
	query := `
		INSERT INTO exercises (id, user_id, description, duration, date, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.pool.Exec(ctx, query,
		exercise.ID,
		exercise.UserID,
		exercise.Description,
		exercise.Duration,
		exercise.Date.Time(),
		exercise.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create exercise: %w", err)
	}

	return nil
}

// CountExercises returns the total number of entries a user has logged.
func (r *Repository) CountExercises(ctx context.Context, userID string) (int64, error) {
	query := `SELECT COUNT(*) FROM exercises WHERE user_id = $1`

	var count int64
	if err := r.pool.QueryRow(ctx, query, userID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count exercises: %w", err)
	}

	return count, nil
}

// ListExercises returns a user's entries in insertion order, applying the
// optional date bounds and the row limit.
func (r *Repository) ListExercises(ctx context.Context, filter ExerciseFilter) ([]*model.Exercise, error) {
	query := `
		SELECT id, user_id, description, duration, date, created_at
		FROM exercises
		WHERE user_id = $1
	`
	args := []any{filter.UserID}
	argIndex := 2

	if filter.From != nil {
		query += fmt.Sprintf(" AND date >= $%d", argIndex)
		args = append(args, filter.From.Time())
		argIndex++
	}

	if filter.To != nil {
		query += fmt.Sprintf(" AND date <= $%d", argIndex)
		args = append(args, filter.To.Time())
		argIndex++
	}

	query += " ORDER BY created_at, id"

	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argIndex)
		args = append(args, filter.Limit)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list exercises: %w", err)
	}
	defer rows.Close()

	exercises := make([]*model.Exercise, 0)
	for rows.Next() {
		exercise, err := scanExercise(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan exercise: %w", err)
		}
		exercises = append(exercises, exercise)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating exercises: %w", err)
	}

	return exercises, nil
}

func scanExercise(row pgx.Row) (*model.Exercise, error) {
	var (
		exercise model.Exercise
		date     time.Time
	)
	err := row.Scan(
		&exercise.ID,
		&exercise.UserID,
		&exercise.Description,
		&exercise.Duration,
		&date,
		&exercise.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	exercise.Date = model.NewCalendarDate(date)
	exercise.CreatedAt = exercise.CreatedAt.UTC()
	return &exercise, nil
}
