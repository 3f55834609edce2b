// Package dto provides Data Transfer Objects for API requests and responses.
package dto

import (
	"net/url"

	"github.com/jellydator/validation"

	"github.com/exercisetracker/exercisetracker/internal/model"
)

// CreateUserRequest represents the request body for registering a user.
type CreateUserRequest struct {
	Username string `json:"username"`
}

// BindForm fills the request from form values.
func (r *CreateUserRequest) BindForm(values url.Values) error {
	r.Username = values.Get("username")
	return nil
}

// Validate checks the payload shape.
func (r CreateUserRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Username, validation.Required, validation.RuneLength(1, model.MaxUsernameLength)),
	)
}

// UserResponse represents a user in API responses.
// The ID is sent under both "id" and the "_id" key older clients read.
type UserResponse struct {
	Username string `json:"username"`
	ID       string `json:"id"`
	LegacyID string `json:"_id"`
}

// ToUserResponse converts a User model to UserResponse DTO.
func ToUserResponse(user *model.User) UserResponse {
	return UserResponse{
		Username: user.Username,
		ID:       user.ID,
		LegacyID: user.ID,
	}
}

// ToUserListResponse converts users to their response form, keeping order.
func ToUserListResponse(users []*model.User) []UserResponse {
	responses := make([]UserResponse, len(users))
	for i, user := range users {
		responses[i] = ToUserResponse(user)
	}
	return responses
}

// ErrorResponse represents an API error.
type ErrorResponse struct {
	Error string `json:"error"`
}
