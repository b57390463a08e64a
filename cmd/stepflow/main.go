// Package main provides the stepflow command line client.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/dukex/stepflow/pkg/auth"
	"github.com/dukex/stepflow/pkg/client"
	cli "github.com/urfave/cli/v3"
)

const defaultAPIURL = "http://localhost:9091"

func main() {
	err := NewApp().Run(context.Background(), os.Args)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func NewApp() *cli.Command {
	return &cli.Command{
		Name:                  "stepflow",
		Usage:                 "Manage step workflows from the command line",
		EnableShellCompletion: true,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "api-url",
				Usage:   "Base URL of the Stepflow API",
				Value:   defaultAPIURL,
				Sources: cli.EnvVars("STEPFLOW_API_URL"),
			},
			&cli.StringFlag{
				Name:    "user",
				Usage:   "Signed-in user name",
				Sources: cli.EnvVars("STEPFLOW_USER"),
			},
		},
		Commands: []*cli.Command{
			NewUsersCommand(),
			NewWorkflowsCommand(),
			NewStepTypesCommand(),
		},
	}
}

func newClient(command *cli.Command) *client.Client {
	return client.New(command.String("api-url"))
}

func requireSession(ctx context.Context, command *cli.Command) (context.Context, error) {
	if err := auth.RequireSession(command.String("user")); err != nil {
		return ctx, fmt.Errorf("%w: pass --user or set STEPFLOW_USER", err)
	}

	return ctx, nil
}
