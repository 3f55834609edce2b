// Package handler provides HTTP request handlers.
package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/exercisetracker/exercisetracker/internal/handler/dto"
	"github.com/exercisetracker/exercisetracker/internal/middleware"
	"github.com/exercisetracker/exercisetracker/internal/service"
	"github.com/exercisetracker/exercisetracker/internal/web"
)

// Fixed client-facing messages.
const (
	msgUserNotFound = "User not found"
	msgServerError  = "Server error, please try again"
)

// Handler serves the landing page, static assets and fallback routes.
type Handler struct {
	logger *slog.Logger
	static http.Handler
}

// New creates a new Handler instance.
func New(logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		logger: logger,
		static: http.StripPrefix("/public/", http.FileServer(http.FS(web.Public()))),
	}
}

// Index serves the landing page.
// GET /
func (h *Handler) Index(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(web.IndexHTML())
}

// Static serves embedded assets.
// GET /public/*
func (h *Handler) Static(w http.ResponseWriter, r *http.Request) {
	h.static.ServeHTTP(w, r)
}

// NotFound handles 404 responses.
func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusNotFound, "resource not found")
}

// MethodNotAllowed handles 405 responses.
func (h *Handler) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusMethodNotAllowed, "method not allowed")
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Default().Warn("response encode failed", "error", err)
	}
}

// writeError writes an error response.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, dto.ErrorResponse{Error: message})
}

// handleError maps decode and service errors to HTTP responses.
// Unclassified errors are logged and answered with a generic 500.
func handleError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	var verr *dto.ValidationError
	switch {
	case errors.As(err, &verr):
		writeError(w, http.StatusBadRequest, verr.Error())
	case errors.Is(err, dto.ErrBodyTooLarge):
		writeError(w, http.StatusRequestEntityTooLarge, "Request body too large")
	case errors.Is(err, dto.ErrUnsupportedMediaType):
		writeError(w, http.StatusUnsupportedMediaType, "Unsupported content type")
	case errors.Is(err, dto.ErrInvalidBody):
		writeError(w, http.StatusBadRequest, "Invalid request body")
	case errors.Is(err, service.ErrUserNotFound):
		writeError(w, http.StatusBadRequest, msgUserNotFound)
	case errors.Is(err, service.ErrInvalidUsername),
		errors.Is(err, service.ErrUsernameTooLong),
		errors.Is(err, service.ErrInvalidDescription),
		errors.Is(err, service.ErrInvalidDuration),
		errors.Is(err, service.ErrInvalidDate):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		logger.Error("internal_error",
			"request_id", middleware.GetRequestID(r.Context()),
			"method", r.Method,
			"path", r.URL.Path,
			"error", err,
		)
		writeError(w, http.StatusInternalServerError, msgServerError)
	}
}
