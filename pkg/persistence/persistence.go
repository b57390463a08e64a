// Package persistence provides the data storage abstraction layer for users, workflows and executions.
package persistence

import (
	"context"

	"github.com/dukex/stepflow/pkg/models"
)

// Persistence groups the repositories of one storage backend.
type Persistence interface {
	UserRepository() UserRepository
	WorkflowRepository() WorkflowRepository
	ExecutionRepository() ExecutionRepository

	HealthCheck(ctx context.Context) error
	Close(ctx context.Context) error
}

// UserRepository stores users. Lookups return (nil, nil) when nothing matches.
type UserRepository interface {
	// Create assigns the next user id. Uniqueness is the caller's concern.
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByID(ctx context.Context, id int64) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
}

// WorkflowRepository stores workflows. Lookups return (nil, nil) when nothing matches.
type WorkflowRepository interface {
	// ListByUser returns every workflow owned by userID in insertion order.
	ListByUser(ctx context.Context, userID int64) ([]*models.Workflow, error)
	GetByID(ctx context.Context, id int64) (*models.Workflow, error)
	// Create assigns the next workflow id, stamps createdAt and resets the run state.
	Create(ctx context.Context, workflow *models.Workflow) (*models.Workflow, error)
	// Update shallow-merges patch over the stored record. Returns (nil, nil) if id is absent.
	Update(ctx context.Context, id int64, patch models.WorkflowPatch) (*models.Workflow, error)
	// Delete removes the record and reports whether it existed.
	Delete(ctx context.Context, id int64) (bool, error)
}

// ExecutionRepository runs workflows and keeps their append-only history.
type ExecutionRepository interface {
	// Execute draws an outcome for the workflow, stamps it on the workflow and
	// appends one execution record. Fails with ErrWorkflowNotFound when absent.
	Execute(ctx context.Context, workflowID int64) (*models.WorkflowExecution, error)
	// ListByWorkflow returns the executions of workflowID in insertion order.
	ListByWorkflow(ctx context.Context, workflowID int64) ([]*models.WorkflowExecution, error)
}
