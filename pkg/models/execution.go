package models

import (
	"maps"
	"time"
)

// Execution log messages recorded for each outcome.
const (
	ExecutionPassedMessage = "Workflow executed successfully"
	ExecutionFailedMessage = "Workflow execution failed"
)

// WorkflowExecution is one recorded attempt to run a workflow. Records are append-only.
type WorkflowExecution struct {
	ID         int64          `json:"id"`
	WorkflowID int64          `json:"workflowId"`
	Status     WorkflowStatus `json:"status"`
	Logs       map[string]any `json:"logs"`
	ExecutedAt time.Time      `json:"executedAt"`
}

// Clone returns a copy of the execution with its own logs map.
func (e *WorkflowExecution) Clone() *WorkflowExecution {
	if e == nil {
		return nil
	}

	clone := *e
	clone.Logs = maps.Clone(e.Logs)

	return &clone
}

// ExecutionMessage returns the log message for an execution outcome.
func ExecutionMessage(status WorkflowStatus) string {
	if status == WorkflowStatusPassed {
		return ExecutionPassedMessage
	}

	return ExecutionFailedMessage
}
