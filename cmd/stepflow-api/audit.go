package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/dukex/stepflow/pkg/eventbus"
	"github.com/dukex/stepflow/pkg/events"
)

// auditExecutions logs one line per finished execution seen on the bus.
func auditExecutions(logger *slog.Logger) eventbus.EventHandler {
	return func(ctx context.Context, event any) error {
		executed, ok := event.(*events.WorkflowExecuted)
		if !ok {
			return fmt.Errorf("unexpected event %T", event)
		}

		logger.InfoContext(ctx, "Workflow executed",
			slog.Int64("workflow_id", executed.WorkflowID),
			slog.Int64("execution_id", executed.ExecutionID),
			slog.String("status", string(executed.Status)),
			slog.Time("executed_at", executed.ExecutedAt),
		)

		return nil
	}
}
