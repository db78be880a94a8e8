package dto

import (
	"time"

	"github.com/zekret/vault/internal/user/domain"
)

// UserResponse is the public view of a user. The password hash never leaves the
// service.
type UserResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Username  string    `json:"username"`
	Enabled   bool      `json:"enabled"`
	CreatedAt time.Time `json:"createdAt"`
}

// MapUserToResponse converts a domain user to its API representation.
func MapUserToResponse(user *domain.User) UserResponse {
	return UserResponse{
		ID:        user.ID.String(),
		Email:     user.Email,
		Username:  user.Username,
		Enabled:   user.Enabled,
		CreatedAt: user.CreatedAt,
	}
}
