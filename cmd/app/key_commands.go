package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/zekret/vault/cmd/app/commands"
	"github.com/zekret/vault/internal/app"
)

func kmsFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "kms-provider",
			Sources: cli.EnvVars("KMS_PROVIDER"),
			Usage:   "KMS provider (localsecrets, gcpkms, awskms, azurekeyvault, hashivault)",
		},
		&cli.StringFlag{
			Name:    "kms-key-uri",
			Sources: cli.EnvVars("KMS_KEY_URI"),
			Usage:   "KMS key URI (e.g., base64key://, gcpkms://projects/.../cryptoKeys/...)",
		},
	}
}

func getKeyCommands() []*cli.Command {
	return []*cli.Command{
		{
			Name:  "create-master-key",
			Usage: "Generate a new master key encrypted with the KMS key",
			Flags: append([]cli.Flag{
				&cli.StringFlag{
					Name:    "id",
					Aliases: []string{"i"},
					Usage:   "Master key ID (e.g., prod-master-key-2026)",
				},
			}, kmsFlags()...),
			Action: func(ctx context.Context, cmd *cli.Command) error {
				return withContainer(ctx, func(container *app.Container) error {
					return commands.RunCreateMasterKey(
						ctx,
						container.KMSService(),
						container.Logger(),
						commands.DefaultIO().Writer,
						cmd.String("id"),
						cmd.String("kms-provider"),
						cmd.String("kms-key-uri"),
					)
				})
			},
		},
		{
			Name:  "rotate-master-key",
			Usage: "Generate a new master key and append it to MASTER_KEYS",
			Flags: append([]cli.Flag{
				&cli.StringFlag{
					Name:    "id",
					Aliases: []string{"i"},
					Usage:   "New master key ID (e.g., prod-master-key-2027)",
				},
			}, kmsFlags()...),
			Action: func(ctx context.Context, cmd *cli.Command) error {
				return withContainer(ctx, func(container *app.Container) error {
					cfg := container.Config()
					return commands.RunRotateMasterKey(
						ctx,
						container.KMSService(),
						container.Logger(),
						commands.DefaultIO().Writer,
						cmd.String("id"),
						cmd.String("kms-provider"),
						cmd.String("kms-key-uri"),
						cfg.MasterKeys,
						cfg.ActiveMasterKeyID,
					)
				})
			},
		},
		{
			Name:  "rewrap-deks",
			Usage: "Re-wrap every data key under the active master key",
			Flags: []cli.Flag{
				&cli.IntFlag{
					Name:    "batch-size",
					Aliases: []string{"b"},
					Value:   100,
					Usage:   "Number of data keys to rewrap per transaction",
				},
				formatFlag(),
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				return withContainer(ctx, func(container *app.Container) error {
					keyUseCase, err := container.KeyUseCase()
					if err != nil {
						return err
					}

					return commands.RunRewrapDeks(
						ctx,
						keyUseCase,
						container.Logger(),
						commands.DefaultIO().Writer,
						int(cmd.Int("batch-size")),
						cmd.String("format"),
					)
				})
			},
		},
		{
			Name:  "rotate-namespace-key",
			Usage: "Issue a new data key version for a namespace",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:     "zrn",
					Aliases:  []string{"z"},
					Required: true,
					Usage:    "Namespace zrn",
				},
				formatFlag(),
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				return withContainer(ctx, func(container *app.Container) error {
					namespaceRepo, err := container.NamespaceRepository()
					if err != nil {
						return err
					}
					keyUseCase, err := container.KeyUseCase()
					if err != nil {
						return err
					}

					return commands.RunRotateNamespaceKey(
						ctx,
						namespaceRepo,
						keyUseCase,
						container.Logger(),
						commands.DefaultIO().Writer,
						cmd.String("zrn"),
						cmd.String("format"),
					)
				})
			},
		},
	}
}
