package memory

import (
	"context"

	"github.com/dukex/stepflow/pkg/models"
	"github.com/dukex/stepflow/pkg/persistence"
)

// ExecutionRepository handles execution records.
type ExecutionRepository struct {
	store *Persistence
}

// Execute draws an outcome, stamps it on the workflow and appends an execution record.
func (r *ExecutionRepository) Execute(_ context.Context, workflowID int64) (*models.WorkflowExecution, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	workflow, ok := r.store.workflows[workflowID]
	if !ok {
		return nil, persistence.NewWorkflowError("Execute", workflowID, persistence.ErrWorkflowNotFound)
	}

	status := r.store.outcome()
	now := r.store.now()

	workflow.Status = status
	workflow.LastRunAt = &now

	execution := &models.WorkflowExecution{
		ID:         r.store.nextExecutionID,
		WorkflowID: workflowID,
		Status:     status,
		Logs:       map[string]any{"message": models.ExecutionMessage(status)},
		ExecutedAt: now,
	}

	r.store.nextExecutionID++
	r.store.executions[execution.ID] = execution

	return execution.Clone(), nil
}

// ListByWorkflow returns the executions of workflowID ordered by id.
func (r *ExecutionRepository) ListByWorkflow(_ context.Context, workflowID int64) ([]*models.WorkflowExecution, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	executions := make([]*models.WorkflowExecution, 0)

	for _, id := range sortedIDs(r.store.executions) {
		if execution := r.store.executions[id]; execution.WorkflowID == workflowID {
			executions = append(executions, execution.Clone())
		}
	}

	return executions, nil
}
