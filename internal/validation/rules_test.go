package validation

import (
	"errors"
	"testing"

	validation "github.com/jellydator/validation"
	"github.com/stretchr/testify/assert"

	apperrors "github.com/zekret/vault/internal/errors"
)

func TestPasswordStrength(t *testing.T) {
	rule := PasswordStrength{
		MinLength:      12,
		RequireUpper:   true,
		RequireLower:   true,
		RequireNumber:  true,
		RequireSpecial: true,
	}

	tests := []struct {
		name     string
		password interface{}
		errMsg   string
	}{
		{name: "valid password", password: "SecurePass123!"},
		{name: "too short", password: "Short1!", errMsg: "password must be at least 12 characters"},
		{name: "missing uppercase", password: "securepass123!", errMsg: "uppercase letter"},
		{name: "missing lowercase", password: "SECUREPASS123!", errMsg: "lowercase letter"},
		{name: "missing number", password: "SecurePassword!", errMsg: "one number"},
		{name: "missing special", password: "SecurePass1234", errMsg: "special character"},
		{name: "not a string", password: 42, errMsg: "password must be a string"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := rule.Validate(tt.password)
			if tt.errMsg == "" {
				assert.NoError(t, err)
				return
			}
			assert.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestStringRules(t *testing.T) {
	tests := []struct {
		name  string
		rule  validation.Rule
		value string
		valid bool
	}{
		{"email ok", Email, "alice@example.com", true},
		{"email missing domain", Email, "alice@", false},
		{"username ok", Username, "alice_01", true},
		{"username with space", Username, "alice 01", false},
		{"file name ok", FileName, "id_rsa.pub", true},
		{"file name with slash", FileName, "../etc/passwd", false},
		{"file name with space", FileName, "my key.pem", false},
		{"no whitespace ok", NoWhitespace, "dev", true},
		{"no whitespace leading", NoWhitespace, " dev", false},
		{"not blank ok", NotBlank, "x", true},
		{"not blank spaces", NotBlank, "   ", false},
		{"base64 ok", Base64, "c3NoLXJzYSBBQUFB", true},
		{"base64 empty defers to required", Base64, "", true},
		{"base64 invalid", Base64, "not base64!", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validation.Validate(tt.value, tt.rule)
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestMaxBytes(t *testing.T) {
	assert.NoError(t, validation.Validate([]byte("abcd"), MaxBytes(4)))
	assert.Error(t, validation.Validate([]byte("abcde"), MaxBytes(4)))
	assert.NoError(t, validation.Validate([]byte("abcde"), MaxBytes(0)))
	assert.Error(t, validation.Validate("abcde", MaxBytes(10)))
}

func TestWrapValidationError(t *testing.T) {
	assert.NoError(t, WrapValidationError(nil))

	err := WrapValidationError(errors.New("name: cannot be blank."))
	assert.True(t, errors.Is(err, apperrors.ErrInvalidInput))
	assert.Contains(t, err.Error(), "name: cannot be blank.")
}
