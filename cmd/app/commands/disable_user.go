package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	userUseCase "github.com/zekret/vault/internal/user/usecase"
)

// RunDisableUser deactivates the user matching login (e-mail or username).
func RunDisableUser(
	ctx context.Context,
	useCase userUseCase.UseCase,
	logger *slog.Logger,
	writer io.Writer,
	login string,
) error {
	if login == "" {
		return fmt.Errorf("--login is required")
	}

	user, err := useCase.GetByLogin(ctx, login)
	if err != nil {
		return fmt.Errorf("failed to find user: %w", err)
	}

	if err := useCase.Disable(ctx, user.ID); err != nil {
		return fmt.Errorf("failed to disable user: %w", err)
	}

	_, _ = fmt.Fprintf(writer, "User %s disabled\n", user.Username)
	logger.Info("user disabled", slog.String("user_id", user.ID.String()))
	return nil
}
