package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	userUseCase "github.com/zekret/vault/internal/user/usecase"
)

// RunCreateUser registers a user with the same validation as POST /v1/users/register.
func RunCreateUser(
	ctx context.Context,
	useCase userUseCase.UseCase,
	logger *slog.Logger,
	writer io.Writer,
	email, username, password string,
	format string,
) error {
	user, err := useCase.Register(ctx, userUseCase.RegisterUserInput{
		Email:    email,
		Username: username,
		Password: password,
	})
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}

	if format == "json" {
		if err := writeJSON(writer, map[string]any{
			"id":         user.ID,
			"email":      user.Email,
			"username":   user.Username,
			"created_at": user.CreatedAt.Format(time.RFC3339),
		}); err != nil {
			return err
		}
	} else {
		_, _ = fmt.Fprintf(writer, "User created: %s (%s)\nID: %s\n", user.Username, user.Email, user.ID)
	}

	logger.Info("user created", slog.String("user_id", user.ID.String()))
	return nil
}
