package main

import (
	"context"
	"fmt"

	"github.com/dukex/stepflow/pkg/services"
	"github.com/urfave/cli/v3"
)

func NewUsersCommand() *cli.Command {
	return &cli.Command{
		Name:  "users",
		Usage: "Manage users",
		Commands: []*cli.Command{
			{
				Name:  "create",
				Usage: "Register a new user",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "username", Required: true},
					&cli.StringFlag{Name: "email", Required: true},
					&cli.StringFlag{Name: "password", Required: true},
				},
				Action: func(ctx context.Context, command *cli.Command) error {
					user, err := newClient(command).CreateUser(ctx, services.CreateUserInput{
						Username: command.String("username"),
						Email:    command.String("email"),
						Password: command.String("password"),
					})
					if err != nil {
						return fmt.Errorf("failed to create user: %w", err)
					}

					fmt.Fprintf(command.Root().Writer, "Created user %d (%s <%s>)\n", user.ID, user.Username, user.Email)

					return nil
				},
			},
		},
	}
}
