package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/exercisetracker/exercisetracker/internal/handler/dto"
	"github.com/exercisetracker/exercisetracker/internal/service"
)

// ExerciseService is the exercise log used by ExerciseHandler.
type ExerciseService interface {
	AddExercise(ctx context.Context, input service.AddExerciseInput) (*service.AddExerciseOutput, error)
	GetLog(ctx context.Context, input service.GetLogInput) (*service.GetLogOutput, error)
}

// ExerciseHandler handles HTTP requests for exercise entries.
type ExerciseHandler struct {
	svc    ExerciseService
	logger *slog.Logger
}

// NewExerciseHandler creates a new ExerciseHandler.
func NewExerciseHandler(svc ExerciseService, logger *slog.Logger) *ExerciseHandler {
	return &ExerciseHandler{
		svc:    svc,
		logger: logger,
	}
}

// Add handles POST /api/users/{id}/exercises.
func (h *ExerciseHandler) Add(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "id")

	var req dto.AddExerciseRequest
	if err := dto.DecodeAndValidate(r, &req); err != nil {
		handleError(w, r, h.logger, err)
		return
	}

	duration, err := req.Duration.Int()
	if err != nil {
		handleError(w, r, h.logger, service.ErrInvalidDuration)
		return
	}

	out, err := h.svc.AddExercise(r.Context(), service.AddExerciseInput{
		UserID:      userID,
		Description: req.Description,
		Duration:    duration,
		Date:        req.Date,
	})
	if err != nil {
		handleError(w, r, h.logger, err)
		return
	}

	h.logger.Info("exercise_added",
		"user_id", out.User.ID,
		"exercise_id", out.Exercise.ID,
		"count", out.Count,
	)

	writeJSON(w, http.StatusOK, dto.ToExerciseResponse(out.User, out.Exercise, out.Count))
}

// Log handles GET /api/users/{id}/logs.
// Query: from, to (YYYY-MM-DD, inclusive) and limit. A missing or
// unusable limit falls back to the default.
func (h *ExerciseHandler) Log(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	input := service.GetLogInput{
		UserID: chi.URLParam(r, "id"),
		From:   query.Get("from"),
		To:     query.Get("to"),
	}
	if l := query.Get("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil {
			input.Limit = parsed
		}
	}

	out, err := h.svc.GetLog(r.Context(), input)
	if err != nil {
		handleError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToLogResponse(out.User, out.Exercises))
}
