// Package dto provides data transfer objects for the authentication endpoints.
package dto

import (
	validation "github.com/jellydator/validation"

	authDomain "github.com/zekret/vault/internal/auth/domain"
	customValidation "github.com/zekret/vault/internal/validation"
)

// LoginRequest carries the credentials of a login attempt. Either username or email
// identifies the user; when both are present username wins.
type LoginRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate checks if the login request is valid.
func (r *LoginRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Username,
			validation.When(r.Email == "", validation.Required.Error("username or email is required")),
			validation.Length(0, 255),
		),
		validation.Field(&r.Email,
			validation.When(r.Email != "", customValidation.Email),
			validation.Length(0, 255),
		),
		validation.Field(&r.Password,
			validation.Required,
			customValidation.NotBlank,
			validation.Length(1, 128),
		),
	)
}

// ToInput converts the request into a login input.
func (r *LoginRequest) ToInput() *authDomain.LoginInput {
	login := r.Username
	if login == "" {
		login = r.Email
	}
	return &authDomain.LoginInput{Login: login, Password: r.Password}
}

// RefreshRequest carries a refresh token.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// Validate checks if the refresh request is valid.
func (r *RefreshRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.RefreshToken,
			validation.Required,
			customValidation.NotBlank,
		),
	)
}
