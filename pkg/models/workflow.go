// Package models defines the core domain models for step-based workflow automation
package models

import (
	"slices"
	"time"
)

// WorkflowStatus represents the lifecycle state of a workflow.
type WorkflowStatus string

const (
	WorkflowStatusDraft  WorkflowStatus = "draft"  // Never executed
	WorkflowStatusPassed WorkflowStatus = "passed" // Last execution passed
	WorkflowStatusFailed WorkflowStatus = "failed" // Last execution failed
)

// WorkflowStatuses lists every valid workflow status.
var WorkflowStatuses = []WorkflowStatus{
	WorkflowStatusDraft,
	WorkflowStatusPassed,
	WorkflowStatusFailed,
}

// IsValid reports whether s is a known workflow status.
func (s WorkflowStatus) IsValid() bool {
	return slices.Contains(WorkflowStatuses, s)
}

// Workflow is a named, owned graph of steps and connections.
type Workflow struct {
	ID          int64          `json:"id"`
	UserID      int64          `json:"userId"`
	Name        string         `json:"name"`
	Steps       []Step         `json:"steps"`
	Connections []Connection   `json:"connections"`
	Status      WorkflowStatus `json:"status"`
	CreatedAt   time.Time      `json:"createdAt"`
	LastRunAt   *time.Time     `json:"lastRunAt"`
}

// Clone returns a deep copy of the workflow, so the copy can be mutated
// without touching the original's steps, connections or timestamps.
func (w *Workflow) Clone() *Workflow {
	if w == nil {
		return nil
	}

	clone := *w

	clone.Steps = make([]Step, len(w.Steps))
	for i, step := range w.Steps {
		clone.Steps[i] = step.Clone()
	}

	clone.Connections = slices.Clone(w.Connections)
	if clone.Connections == nil {
		clone.Connections = []Connection{}
	}

	if w.LastRunAt != nil {
		lastRunAt := *w.LastRunAt
		clone.LastRunAt = &lastRunAt
	}

	return &clone
}

// WorkflowPatch carries a partial update. Nil fields keep their current value.
type WorkflowPatch struct {
	Name        *string
	Steps       *[]Step
	Connections *[]Connection
	Status      *WorkflowStatus
}

// Apply merges the patch over w (shallow merge).
func (p WorkflowPatch) Apply(w *Workflow) {
	if p.Name != nil {
		w.Name = *p.Name
	}

	if p.Steps != nil {
		w.Steps = *p.Steps
	}

	if p.Connections != nil {
		w.Connections = *p.Connections
	}

	if p.Status != nil {
		w.Status = *p.Status
	}
}
