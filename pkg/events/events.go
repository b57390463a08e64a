// Package events defines the domain events published on workflow lifecycle changes.
package events

import (
	"time"

	"github.com/dukex/stepflow/pkg/models"
	"github.com/google/uuid"
)

type EventType string

// Topic carries every workflow event.
const Topic = "stepflow.events"

const EventMetadataKey = "key"
const EventTypeMetadataKey = "event_type"

const (
	WorkflowCreatedEvent  EventType = "workflow.created"
	WorkflowUpdatedEvent  EventType = "workflow.updated"
	WorkflowDeletedEvent  EventType = "workflow.deleted"
	WorkflowExecutedEvent EventType = "workflow.executed"
)

type BaseEvent struct {
	ID         string         `json:"id"`
	Type       EventType      `json:"type"`
	Timestamp  time.Time      `json:"timestamp"`
	WorkflowID int64          `json:"workflow_id"`
	UserID     int64          `json:"user_id,omitempty"`
	Metadata   map[string]any `json:"metadata,omitempty"`
}

type WorkflowCreated struct {
	BaseEvent

	Name      string `json:"name"`
	StepCount int    `json:"step_count"`
}

func (w WorkflowCreated) GetType() EventType {
	return WorkflowCreatedEvent
}

// WorkflowUpdated lists the fields present in the applied patch.
type WorkflowUpdated struct {
	BaseEvent

	Fields []string `json:"fields"`
}

func (w WorkflowUpdated) GetType() EventType {
	return WorkflowUpdatedEvent
}

type WorkflowDeleted struct {
	BaseEvent
}

func (w WorkflowDeleted) GetType() EventType {
	return WorkflowDeletedEvent
}

type WorkflowExecuted struct {
	BaseEvent

	ExecutionID int64                 `json:"execution_id"`
	Status      models.WorkflowStatus `json:"status"`
	ExecutedAt  time.Time             `json:"executed_at"`
}

func (w WorkflowExecuted) GetType() EventType {
	return WorkflowExecutedEvent
}

func NewBaseEvent(eventType EventType, workflowID, userID int64) BaseEvent {
	return BaseEvent{
		ID:         uuid.New().String(),
		Type:       eventType,
		Timestamp:  time.Now().UTC(),
		WorkflowID: workflowID,
		UserID:     userID,
		Metadata:   make(map[string]any),
	}
}
