package memory

import (
	"context"

	"github.com/dukex/stepflow/pkg/models"
)

// WorkflowRepository handles workflow records.
type WorkflowRepository struct {
	store *Persistence
}

// ListByUser returns the workflows owned by userID ordered by id.
func (r *WorkflowRepository) ListByUser(_ context.Context, userID int64) ([]*models.Workflow, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	workflows := make([]*models.Workflow, 0)

	for _, id := range sortedIDs(r.store.workflows) {
		if workflow := r.store.workflows[id]; workflow.UserID == userID {
			workflows = append(workflows, workflow.Clone())
		}
	}

	return workflows, nil
}

// GetByID returns the workflow with id, or nil.
func (r *WorkflowRepository) GetByID(_ context.Context, id int64) (*models.Workflow, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	workflow, ok := r.store.workflows[id]
	if !ok {
		return nil, nil
	}

	return workflow.Clone(), nil
}

// Create stores a copy of workflow under the next id. The stored record always
// starts as a draft that has never run.
func (r *WorkflowRepository) Create(_ context.Context, workflow *models.Workflow) (*models.Workflow, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	stored := workflow.Clone()
	stored.ID = r.store.nextWorkflowID
	stored.Status = models.WorkflowStatusDraft
	stored.CreatedAt = r.store.now()
	stored.LastRunAt = nil

	if stored.Steps == nil {
		stored.Steps = []models.Step{}
	}

	r.store.nextWorkflowID++
	r.store.workflows[stored.ID] = stored

	return stored.Clone(), nil
}

// Update merges patch over the stored workflow. Returns nil if id is absent.
func (r *WorkflowRepository) Update(_ context.Context, id int64, patch models.WorkflowPatch) (*models.Workflow, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	existing, ok := r.store.workflows[id]
	if !ok {
		return nil, nil
	}

	updated := existing.Clone()
	patch.Apply(updated)

	// re-clone so the stored record does not share slices with the caller's patch
	stored := updated.Clone()
	r.store.workflows[id] = stored

	return stored.Clone(), nil
}

// Delete removes the workflow and reports whether it existed. Executions of the
// workflow are kept.
func (r *WorkflowRepository) Delete(_ context.Context, id int64) (bool, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.workflows[id]; !ok {
		return false, nil
	}

	delete(r.store.workflows, id)

	return true, nil
}
