// Package memory provides the process-local persistence implementation. State
// lives for the lifetime of the Persistence value and is lost on restart.
package memory

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/dukex/stepflow/pkg/models"
	"github.com/dukex/stepflow/pkg/persistence"
)

// Persistence implements the persistence.Persistence interface with in-memory maps.
type Persistence struct {
	mu sync.RWMutex

	users      map[int64]*models.User
	workflows  map[int64]*models.Workflow
	executions map[int64]*models.WorkflowExecution

	nextUserID      int64
	nextWorkflowID  int64
	nextExecutionID int64

	outcome Outcome
	now     func() time.Time
	closed  bool

	userRepo      *UserRepository
	workflowRepo  *WorkflowRepository
	executionRepo *ExecutionRepository
}

// Option customizes a Persistence.
type Option func(*Persistence)

// WithOutcome replaces the execution outcome draw.
func WithOutcome(outcome Outcome) Option {
	return func(p *Persistence) {
		p.outcome = outcome
	}
}

// WithClock replaces the time source used for createdAt, lastRunAt and executedAt.
func WithClock(now func() time.Time) Option {
	return func(p *Persistence) {
		p.now = now
	}
}

// NewPersistence creates an empty store. Identifiers of every entity type start at 1.
func NewPersistence(opts ...Option) *Persistence {
	p := &Persistence{
		users:           make(map[int64]*models.User),
		workflows:       make(map[int64]*models.Workflow),
		executions:      make(map[int64]*models.WorkflowExecution),
		nextUserID:      1,
		nextWorkflowID:  1,
		nextExecutionID: 1,
		outcome:         RandomOutcome(DefaultSuccessRate, nil),
		now:             func() time.Time { return time.Now().UTC() },
	}

	for _, opt := range opts {
		opt(p)
	}

	p.userRepo = &UserRepository{store: p}
	p.workflowRepo = &WorkflowRepository{store: p}
	p.executionRepo = &ExecutionRepository{store: p}

	return p
}

// UserRepository returns the user repository.
func (p *Persistence) UserRepository() persistence.UserRepository {
	return p.userRepo
}

// WorkflowRepository returns the workflow repository.
func (p *Persistence) WorkflowRepository() persistence.WorkflowRepository {
	return p.workflowRepo
}

// ExecutionRepository returns the execution repository.
func (p *Persistence) ExecutionRepository() persistence.ExecutionRepository {
	return p.executionRepo
}

// HealthCheck fails once the store has been closed.
func (p *Persistence) HealthCheck(_ context.Context) error {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed {
		return persistence.ErrClosed
	}

	return nil
}

// Close discards all state.
func (p *Persistence) Close(_ context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.closed = true
	clear(p.users)
	clear(p.workflows)
	clear(p.executions)

	return nil
}

// sortedIDs returns the keys of m in ascending order, which is insertion order.
func sortedIDs[T any](m map[int64]T) []int64 {
	ids := make([]int64, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}

	slices.Sort(ids)

	return ids
}
