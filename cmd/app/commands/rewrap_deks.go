package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	cryptoUseCase "github.com/zekret/vault/internal/crypto/usecase"
)

// RunRewrapDeks re-wraps every data key that is not under the active master key, in
// batches of batchSize, until none remain.
func RunRewrapDeks(
	ctx context.Context,
	keyUseCase cryptoUseCase.KeyUseCase,
	logger *slog.Logger,
	writer io.Writer,
	batchSize int,
	format string,
) error {
	if batchSize <= 0 {
		return fmt.Errorf("batch-size must be greater than 0")
	}

	logger.Info("starting DEK rewrap process", slog.Int("batch_size", batchSize))

	total := 0
	batches := 0
	for {
		count, err := keyUseCase.Rewrap(ctx, batchSize)
		if err != nil {
			return fmt.Errorf("failed to rewrap DEKs in batch: %w", err)
		}
		if count == 0 {
			break
		}

		total += count
		batches++
		logger.Info("rewrapped batch of DEKs",
			slog.Int("rewrapped_in_batch", count),
			slog.Int("total_rewrapped", total),
		)
	}

	if format == "json" {
		if err := writeJSON(writer, map[string]any{"total_rewrapped": total, "batches": batches}); err != nil {
			return err
		}
	} else {
		_, _ = fmt.Fprintf(writer, "Rewrapped %d data key(s) in %d batch(es)\n", total, batches)
	}

	logger.Info("DEK rewrap process completed", slog.Int("total_rewrapped", total))
	return nil
}
