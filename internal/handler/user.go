package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/exercisetracker/exercisetracker/internal/handler/dto"
	"github.com/exercisetracker/exercisetracker/internal/model"
)

// UserService is the user registry used by UserHandler.
type UserService interface {
	CreateOrGetUser(ctx context.Context, username string) (*model.User, bool, error)
	ListUsers(ctx context.Context) ([]*model.User, error)
}

// UserHandler handles HTTP requests for users.
type UserHandler struct {
	svc    UserService
	logger *slog.Logger
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(svc UserService, logger *slog.Logger) *UserHandler {
	return &UserHandler{
		svc:    svc,
		logger: logger,
	}
}

// Create handles POST /api/users.
// Registering an existing username returns the existing user.
func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateUserRequest
	if err := dto.DecodeAndValidate(r, &req); err != nil {
		handleError(w, r, h.logger, err)
		return
	}

	user, created, err := h.svc.CreateOrGetUser(r.Context(), req.Username)
	if err != nil {
		handleError(w, r, h.logger, err)
		return
	}

	if created {
		h.logger.Info("user_created", "user_id", user.ID)
	}

	writeJSON(w, http.StatusOK, dto.ToUserResponse(user))
}

// List handles GET /api/users.
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.svc.ListUsers(r.Context())
	if err != nil {
		handleError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToUserListResponse(users))
}
