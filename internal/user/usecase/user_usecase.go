package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	validation "github.com/jellydator/validation"

	"github.com/zekret/vault/internal/database"
	"github.com/zekret/vault/internal/user/domain"
	appValidation "github.com/zekret/vault/internal/validation"
)

// UserUseCase handles user-related business logic.
type UserUseCase struct {
	txManager database.TxManager
	policy    database.OperationPolicy
	userRepo  UserRepository
	hasher    PasswordHasher
}

// NewUserUseCase creates a new UserUseCase.
func NewUserUseCase(
	txManager database.TxManager,
	policy database.OperationPolicy,
	userRepo UserRepository,
	hasher PasswordHasher,
) *UserUseCase {
	return &UserUseCase{
		txManager: txManager,
		policy:    policy,
		userRepo:  userRepo,
		hasher:    hasher,
	}
}

// ValidateRegisterUserInput checks e-mail format, username shape and password strength.
func ValidateRegisterUserInput(input RegisterUserInput) error {
	err := validation.ValidateStruct(&input,
		validation.Field(&input.Email,
			validation.Required.Error("email is required"),
			appValidation.NotBlank,
			appValidation.Email,
			validation.Length(5, 255).Error("email must be between 5 and 255 characters"),
		),
		validation.Field(&input.Username,
			validation.Required.Error("username is required"),
			appValidation.NoWhitespace,
			appValidation.Username,
			validation.Length(3, 20).Error("username must be between 3 and 20 characters"),
		),
		validation.Field(&input.Password,
			validation.Required.Error("password is required"),
			validation.Length(8, 128).Error("password must be between 8 and 128 characters"),
			appValidation.PasswordStrength{
				MinLength:     8,
				RequireUpper:  true,
				RequireLower:  true,
				RequireNumber: true,
			},
		),
	)
	return appValidation.WrapValidationError(err)
}

// Register validates the input, hashes the password and stores an enabled user.
func (uc *UserUseCase) Register(ctx context.Context, input RegisterUserInput) (*domain.User, error) {
	input.Email = strings.ToLower(strings.TrimSpace(input.Email))
	if err := ValidateRegisterUserInput(input); err != nil {
		return nil, err
	}

	hash, err := uc.hasher.Hash(input.Password)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	user := &domain.User{
		ID:           uuid.Must(uuid.NewV7()),
		Email:        input.Email,
		Username:     input.Username,
		PasswordHash: hash,
		Enabled:      true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	err = uc.policy.Run(ctx, func(ctx context.Context) error {
		return uc.txManager.WithTx(ctx, func(ctx context.Context) error {
			return uc.userRepo.Create(ctx, user)
		})
	})
	if err != nil {
		return nil, err
	}

	return user, nil
}

// Get retrieves a user by ID.
func (uc *UserUseCase) Get(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	var user *domain.User
	err := uc.policy.Run(ctx, func(ctx context.Context) error {
		var err error
		user, err = uc.userRepo.GetByID(ctx, id)
		return err
	})
	return user, err
}

// GetByLogin retrieves a user by e-mail or username.
func (uc *UserUseCase) GetByLogin(ctx context.Context, login string) (*domain.User, error) {
	var user *domain.User
	err := uc.policy.Run(ctx, func(ctx context.Context) error {
		var err error
		user, err = uc.userRepo.GetByLogin(ctx, strings.TrimSpace(login))
		return err
	})
	return user, err
}

// Disable deactivates a user.
func (uc *UserUseCase) Disable(ctx context.Context, id uuid.UUID) error {
	return uc.policy.Run(ctx, func(ctx context.Context) error {
		return uc.txManager.WithTx(ctx, func(ctx context.Context) error {
			return uc.userRepo.SetEnabled(ctx, id, false)
		})
	})
}
