package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"
)

func NewStepTypesCommand() *cli.Command {
	return &cli.Command{
		Name:  "step-types",
		Usage: "List the step types a workflow can use",
		Action: func(ctx context.Context, command *cli.Command) error {
			components, err := newClient(command).StepTypes(ctx)
			if err != nil {
				return fmt.Errorf("failed to fetch step types: %w", err)
			}

			w := command.Root().Writer
			for _, component := range components {
				fmt.Fprintf(w, "%-10s %-9s %s\n", component.Type, component.Name, component.Description)
			}

			return nil
		},
	}
}
