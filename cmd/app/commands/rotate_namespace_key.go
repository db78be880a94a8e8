package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	cryptoUseCase "github.com/zekret/vault/internal/crypto/usecase"
	vaultUseCase "github.com/zekret/vault/internal/vault/usecase"
)

// RunRotateNamespaceKey issues a new data key version for the namespace identified by
// zrn. It runs as an operator action, outside the per-user authorization of the API.
func RunRotateNamespaceKey(
	ctx context.Context,
	namespaceRepo vaultUseCase.NamespaceRepository,
	keyUseCase cryptoUseCase.KeyUseCase,
	logger *slog.Logger,
	writer io.Writer,
	zrn string,
	format string,
) error {
	if zrn == "" {
		return fmt.Errorf("--zrn is required")
	}

	ns, err := namespaceRepo.GetByZrn(ctx, zrn)
	if err != nil {
		return fmt.Errorf("failed to load namespace: %w", err)
	}

	version, err := keyUseCase.Rotate(ctx, ns.ID)
	if err != nil {
		return fmt.Errorf("failed to rotate namespace key: %w", err)
	}

	if format == "json" {
		if err := writeJSON(writer, map[string]any{
			"zrn":                ns.Zrn,
			"previous_version":   ns.ActiveKeyVersion,
			"active_key_version": version,
		}); err != nil {
			return err
		}
	} else {
		_, _ = fmt.Fprintf(writer, "Rotated key of namespace %s: version %d -> %d\n", ns.Zrn, ns.ActiveKeyVersion, version)
	}

	logger.Info("namespace key rotated",
		slog.String("zrn", ns.Zrn),
		slog.Int("active_key_version", version),
	)
	return nil
}
