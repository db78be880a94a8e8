package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/zekret/vault/cmd/app/commands"
	"github.com/zekret/vault/internal/app"
)

func getAuthCommands() []*cli.Command {
	return []*cli.Command{
		{
			Name:  "create-user",
			Usage: "Register a new user",
			Flags: []cli.Flag{
				&cli.StringFlag{Name: "email", Aliases: []string{"e"}, Required: true, Usage: "E-mail address"},
				&cli.StringFlag{Name: "username", Aliases: []string{"u"}, Required: true, Usage: "Username"},
				&cli.StringFlag{
					Name:     "password",
					Aliases:  []string{"p"},
					Required: true,
					Sources:  cli.EnvVars("ZEKRET_USER_PASSWORD"),
					Usage:    "Password (at least 8 characters with upper case, lower case and a number)",
				},
				formatFlag(),
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				return withContainer(ctx, func(container *app.Container) error {
					userUseCase, err := container.UserUseCase()
					if err != nil {
						return err
					}

					return commands.RunCreateUser(
						ctx,
						userUseCase,
						container.Logger(),
						commands.DefaultIO().Writer,
						cmd.String("email"),
						cmd.String("username"),
						cmd.String("password"),
						cmd.String("format"),
					)
				})
			},
		},
		{
			Name:  "disable-user",
			Usage: "Deactivate a user; their tokens stop working immediately",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:     "login",
					Aliases:  []string{"l"},
					Required: true,
					Usage:    "E-mail or username",
				},
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				return withContainer(ctx, func(container *app.Container) error {
					userUseCase, err := container.UserUseCase()
					if err != nil {
						return err
					}

					return commands.RunDisableUser(
						ctx,
						userUseCase,
						container.Logger(),
						commands.DefaultIO().Writer,
						cmd.String("login"),
					)
				})
			},
		},
		{
			Name:  "clean-expired-tokens",
			Usage: "Delete expired tokens older than specified days",
			Flags: []cli.Flag{
				&cli.IntFlag{
					Name:     "days",
					Aliases:  []string{"d"},
					Required: true,
					Usage:    "Delete tokens that expired more than this many days ago",
				},
				&cli.BoolFlag{
					Name:    "dry-run",
					Aliases: []string{"n"},
					Value:   false,
					Usage:   "Show how many tokens would be deleted without deleting",
				},
				formatFlag(),
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				return withContainer(ctx, func(container *app.Container) error {
					tokenUseCase, err := container.TokenUseCase()
					if err != nil {
						return err
					}

					return commands.RunCleanExpiredTokens(
						ctx,
						tokenUseCase,
						container.Logger(),
						commands.DefaultIO().Writer,
						int(cmd.Int("days")),
						cmd.Bool("dry-run"),
						cmd.String("format"),
					)
				})
			},
		},
	}
}
