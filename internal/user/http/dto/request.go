// Package dto provides data transfer objects for the user HTTP layer.
package dto

import (
	"github.com/zekret/vault/internal/user/usecase"
)

// RegisterUserRequest represents the API request for user registration
type RegisterUserRequest struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
}

// ToInput converts the request into use case input.
func (r *RegisterUserRequest) ToInput() usecase.RegisterUserInput {
	return usecase.RegisterUserInput{
		Email:    r.Email,
		Username: r.Username,
		Password: r.Password,
	}
}

// Validate applies the same rules the use case enforces so malformed requests fail
// before any password hashing happens.
func (r *RegisterUserRequest) Validate() error {
	return usecase.ValidateRegisterUserInput(r.ToInput())
}
