package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	cryptoService "github.com/zekret/vault/internal/crypto/service"
)

// RunRotateMasterKey generates a new master key, appends it to the existing MASTER_KEYS
// and prints the configuration that makes it active. Data keys stay wrapped under the
// old key until rewrap-deks moves them.
func RunRotateMasterKey(
	ctx context.Context,
	kmsService cryptoService.KMSService,
	logger *slog.Logger,
	writer io.Writer,
	keyID, kmsProvider, kmsKeyURI, existingMasterKeys, existingActiveKeyID string,
) error {
	if kmsProvider == "" || kmsKeyURI == "" {
		return fmt.Errorf(
			"KMS_PROVIDER and KMS_KEY_URI are required for master key rotation\n\nFor local development, use:\n  KMS_PROVIDER=localsecrets\n  KMS_KEY_URI=\"base64key://<32-byte-base64-key>\"",
		)
	}

	if existingMasterKeys == "" {
		return fmt.Errorf("MASTER_KEYS is not set - cannot rotate without existing keys")
	}
	if existingActiveKeyID == "" {
		return fmt.Errorf("ACTIVE_MASTER_KEY_ID is not set")
	}

	if keyID == "" {
		keyID = defaultMasterKeyID()
	}
	if keyID == existingActiveKeyID {
		return fmt.Errorf("new key id %q matches the active master key id", keyID)
	}

	encodedKey, err := generateEncryptedMasterKey(ctx, kmsService, writer, kmsKeyURI)
	if err != nil {
		return err
	}

	newMasterKeys := fmt.Sprintf("%s,%s:%s", existingMasterKeys, keyID, encodedKey)

	_, _ = fmt.Fprintln(writer, "# Master Key Rotation")
	_, _ = fmt.Fprintln(writer, "# Update these environment variables in your .env file or secrets manager")
	_, _ = fmt.Fprintln(writer)
	_, _ = fmt.Fprintf(writer, "KMS_PROVIDER=\"%s\"\n", kmsProvider)
	_, _ = fmt.Fprintf(writer, "KMS_KEY_URI=\"%s\"\n", kmsKeyURI)
	_, _ = fmt.Fprintf(writer, "MASTER_KEYS=\"%s\"\n", newMasterKeys)
	_, _ = fmt.Fprintf(writer, "ACTIVE_MASTER_KEY_ID=\"%s\"\n", keyID)
	_, _ = fmt.Fprintln(writer)
	_, _ = fmt.Fprintln(writer, "# Rotation Workflow:")
	_, _ = fmt.Fprintln(writer, "# 1. Update the above environment variables")
	_, _ = fmt.Fprintln(writer, "# 2. Restart the application")
	_, _ = fmt.Fprintln(writer, "# 3. Rewrap data keys: app rewrap-deks --batch-size 100")
	_, _ = fmt.Fprintf(writer,
		"# 4. After all data keys are rewrapped, remove the old master key: MASTER_KEYS=\"%s:%s\"\n",
		keyID,
		encodedKey,
	)

	logger.Info("master key rotated",
		slog.String("previous_key_id", existingActiveKeyID),
		slog.String("key_id", keyID),
	)

	return nil
}
