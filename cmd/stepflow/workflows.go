package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/dukex/stepflow/pkg/editor"
	"github.com/dukex/stepflow/pkg/models"
	"github.com/dukex/stepflow/pkg/services"
	"github.com/urfave/cli/v3"
)

var errMissingID = errors.New("a numeric workflow id is required")

func NewWorkflowsCommand() *cli.Command {
	return &cli.Command{
		Name:    "workflows",
		Aliases: []string{"wf"},
		Usage:   "Create, edit and run workflows",
		Before:  requireSession,
		Commands: []*cli.Command{
			{
				Name:    "list",
				Aliases: []string{"ls"},
				Usage:   "List your workflows",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "search",
						Aliases: []string{"q"},
						Usage:   "Only show workflows whose name or id contains this text",
					},
				},
				Action: listWorkflows,
			},
			{
				Name:      "get",
				Usage:     "Show one workflow",
				ArgsUsage: "<id>",
				Action:    getWorkflow,
			},
			{
				Name:  "create",
				Usage: "Create a workflow running the given steps in order",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "name", Required: true},
					&cli.StringSliceFlag{
						Name:  "step",
						Usage: "Step type to add between start and end, repeatable",
					},
				},
				Action: createWorkflow,
			},
			{
				Name:      "rename",
				Usage:     "Rename a workflow",
				ArgsUsage: "<id>",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "name", Required: true},
				},
				Action: renameWorkflow,
			},
			{
				Name:      "edit",
				Usage:     "Add, remove or connect steps of a saved workflow",
				ArgsUsage: "<id>",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "name", Usage: "New workflow name"},
					&cli.StringSliceFlag{
						Name:  "remove-step",
						Usage: "Id of a step to remove, repeatable. Its neighbours are reconnected",
					},
					&cli.StringSliceFlag{
						Name:  "add-step",
						Usage: "Step type to insert before the end step, repeatable",
					},
					&cli.StringSliceFlag{
						Name:  "connect",
						Usage: "Extra connection as source:target, repeatable",
					},
				},
				Action: editWorkflow,
			},
			{
				Name:      "execute",
				Aliases:   []string{"run"},
				Usage:     "Execute a workflow once",
				ArgsUsage: "<id>",
				Action:    executeWorkflow,
			},
			{
				Name:      "executions",
				Usage:     "Show the execution history of a workflow",
				ArgsUsage: "<id>",
				Action:    listExecutions,
			},
			{
				Name:      "delete",
				Aliases:   []string{"rm"},
				Usage:     "Delete a workflow",
				ArgsUsage: "<id>",
				Action:    deleteWorkflow,
			},
		},
	}
}

func listWorkflows(ctx context.Context, command *cli.Command) error {
	workflows, err := newClient(command).ListWorkflows(ctx)
	if err != nil {
		return fmt.Errorf("failed to list workflows: %w", err)
	}

	w := command.Root().Writer
	if len(workflows) == 0 {
		fmt.Fprintln(w, "No workflows yet")

		return nil
	}

	if query := strings.TrimSpace(command.String("search")); query != "" {
		workflows = slices.DeleteFunc(workflows, func(workflow *models.Workflow) bool {
			return !matchesSearch(workflow, query)
		})

		if len(workflows) == 0 {
			fmt.Fprintf(w, "No workflows match %q\n", query)

			return nil
		}
	}

	for _, workflow := range workflows {
		fmt.Fprintf(w, "%d\t%s\t%s\t%d steps\tlast run %s\n",
			workflow.ID, workflow.Name, workflow.Status, len(workflow.Steps), formatLastRun(workflow.LastRunAt))
	}

	return nil
}

func getWorkflow(ctx context.Context, command *cli.Command) error {
	id, err := workflowID(command)
	if err != nil {
		return err
	}

	workflow, err := newClient(command).GetWorkflow(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to get workflow %d: %w", id, err)
	}

	printWorkflow(command.Root().Writer, workflow)

	return nil
}

func createWorkflow(ctx context.Context, command *cli.Command) error {
	draft := editor.NewDraft(command.String("name"))

	previous := editor.StartStepID

	for _, stepType := range command.StringSlice("step") {
		step, err := draft.AddStep(models.StepType(stepType), nil)
		if err != nil {
			return err
		}

		if _, err := draft.Connect(previous, step.ID); err != nil {
			return err
		}

		previous = step.ID
	}

	if _, err := draft.Connect(previous, editor.EndStepID); err != nil {
		return err
	}

	if err := checkDraft(draft); err != nil {
		return err
	}

	workflow, err := newClient(command).CreateWorkflow(ctx, draft.CreateInput())
	if err != nil {
		return fmt.Errorf("failed to create workflow: %w", err)
	}

	fmt.Fprintf(command.Root().Writer, "Created workflow %d (%s)\n", workflow.ID, workflow.Name)

	return nil
}

func editWorkflow(ctx context.Context, command *cli.Command) error {
	id, err := workflowID(command)
	if err != nil {
		return err
	}

	c := newClient(command)

	workflow, err := c.GetWorkflow(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to get workflow %d: %w", id, err)
	}

	draft := editor.Load(workflow)
	if command.IsSet("name") {
		draft.Name = command.String("name")
	}

	for _, stepID := range command.StringSlice("remove-step") {
		if err := spliceOut(draft, stepID); err != nil {
			return err
		}
	}

	for _, stepType := range command.StringSlice("add-step") {
		if err := insertBeforeEnd(draft, models.StepType(stepType)); err != nil {
			return err
		}
	}

	for _, pair := range command.StringSlice("connect") {
		source, target, ok := strings.Cut(pair, ":")
		if !ok {
			return fmt.Errorf("invalid connection %q, expected source:target", pair)
		}

		if _, err := draft.Connect(source, target); err != nil {
			return err
		}
	}

	if err := checkDraft(draft); err != nil {
		return err
	}

	updated, err := c.UpdateWorkflow(ctx, id, draft.UpdateInput())
	if err != nil {
		return fmt.Errorf("failed to update workflow %d: %w", id, err)
	}

	fmt.Fprintf(command.Root().Writer, "Updated workflow %d (%s), %d steps\n", updated.ID, updated.Name, len(updated.Steps))

	return nil
}

// insertBeforeEnd adds a step and routes the edge that entered the end step through it.
func insertBeforeEnd(draft *editor.Draft, stepType models.StepType) error {
	step, err := draft.AddStep(stepType, nil)
	if err != nil {
		return err
	}

	tail := editor.StartStepID

	for _, connection := range draft.Connections() {
		if connection.Target == editor.EndStepID {
			tail = connection.Source
		}
	}

	draft.Disconnect(tail, editor.EndStepID)

	if _, err := draft.Connect(tail, step.ID); err != nil {
		return err
	}

	_, err = draft.Connect(step.ID, editor.EndStepID)

	return err
}

// spliceOut removes a step and connects each of its predecessors to each of its successors.
func spliceOut(draft *editor.Draft, stepID string) error {
	var sources, targets []string

	for _, connection := range draft.Connections() {
		if connection.Target == stepID {
			sources = append(sources, connection.Source)
		}

		if connection.Source == stepID {
			targets = append(targets, connection.Target)
		}
	}

	if err := draft.RemoveStep(stepID); err != nil {
		return err
	}

	for _, source := range sources {
		for _, target := range targets {
			if _, err := draft.Connect(source, target); err != nil {
				return err
			}
		}
	}

	return nil
}

func checkDraft(draft *editor.Draft) error {
	violations := draft.Validate()
	if len(violations) == 0 {
		return nil
	}

	messages := make([]string, 0, len(violations))
	for _, violation := range violations {
		messages = append(messages, violation.String())
	}

	return fmt.Errorf("invalid workflow: %s", strings.Join(messages, "; "))
}

func renameWorkflow(ctx context.Context, command *cli.Command) error {
	id, err := workflowID(command)
	if err != nil {
		return err
	}

	name := command.String("name")

	workflow, err := newClient(command).UpdateWorkflow(ctx, id, services.UpdateWorkflowInput{Name: &name})
	if err != nil {
		return fmt.Errorf("failed to rename workflow %d: %w", id, err)
	}

	fmt.Fprintf(command.Root().Writer, "Renamed workflow %d to %s\n", workflow.ID, workflow.Name)

	return nil
}

func executeWorkflow(ctx context.Context, command *cli.Command) error {
	id, err := workflowID(command)
	if err != nil {
		return err
	}

	execution, err := newClient(command).ExecuteWorkflow(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to execute workflow %d: %w", id, err)
	}

	fmt.Fprintf(command.Root().Writer, "Execution %d %s: %v\n", execution.ID, execution.Status, execution.Logs["message"])

	return nil
}

func listExecutions(ctx context.Context, command *cli.Command) error {
	id, err := workflowID(command)
	if err != nil {
		return err
	}

	executions, err := newClient(command).ListExecutions(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to list executions of workflow %d: %w", id, err)
	}

	w := command.Root().Writer
	if len(executions) == 0 {
		fmt.Fprintln(w, "No executions yet")

		return nil
	}

	for _, execution := range executions {
		fmt.Fprintf(w, "%d\t%s\t%s\n", execution.ID, execution.Status, execution.ExecutedAt.Format(time.RFC3339))
	}

	return nil
}

func deleteWorkflow(ctx context.Context, command *cli.Command) error {
	id, err := workflowID(command)
	if err != nil {
		return err
	}

	if err := newClient(command).DeleteWorkflow(ctx, id); err != nil {
		return fmt.Errorf("failed to delete workflow %d: %w", id, err)
	}

	fmt.Fprintf(command.Root().Writer, "Deleted workflow %d\n", id)

	return nil
}

func workflowID(command *cli.Command) (int64, error) {
	id, err := strconv.ParseInt(command.Args().First(), 10, 64)
	if err != nil || id <= 0 {
		return 0, errMissingID
	}

	return id, nil
}

// matchesSearch reports whether the name contains query, ignoring case, or the id contains it.
func matchesSearch(workflow *models.Workflow, query string) bool {
	return strings.Contains(strings.ToLower(workflow.Name), strings.ToLower(query)) ||
		strings.Contains(strconv.FormatInt(workflow.ID, 10), query)
}

func printWorkflow(w io.Writer, workflow *models.Workflow) {
	fmt.Fprintf(w, "Workflow: %s (%d)\n", workflow.Name, workflow.ID)
	fmt.Fprintf(w, "Status: %s\n", workflow.Status)
	fmt.Fprintf(w, "Last run: %s\n", formatLastRun(workflow.LastRunAt))
	fmt.Fprintf(w, "Steps:\n")

	for _, step := range workflow.Steps {
		fmt.Fprintf(w, "  - %s [%s] %v\n", step.ID, step.Type, step.Data.Map())
	}

	fmt.Fprintf(w, "Connections:\n")

	for _, connection := range workflow.Connections {
		fmt.Fprintf(w, "  - %s -> %s\n", connection.Source, connection.Target)
	}
}

func formatLastRun(lastRunAt *time.Time) string {
	if lastRunAt == nil {
		return "never"
	}

	return lastRunAt.Format(time.RFC3339)
}
