package services

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/dukex/stepflow/pkg/eventbus"
	"github.com/dukex/stepflow/pkg/events"
	"github.com/dukex/stepflow/pkg/metrics"
	"github.com/dukex/stepflow/pkg/models"
	"github.com/dukex/stepflow/pkg/otelhelper"
	"github.com/dukex/stepflow/pkg/persistence"
	"github.com/dukex/stepflow/pkg/validation"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

type Workflow struct {
	persistence persistence.Persistence
	validator   *validation.Validator
	eventBus    eventbus.EventPublisher
	metrics     metrics.Recorder
	tracer      trace.Tracer
	logger      *slog.Logger
}

// WorkflowOption customizes a Workflow service.
type WorkflowOption func(*Workflow)

// WithEventBus publishes lifecycle events on bus.
func WithEventBus(bus eventbus.EventPublisher) WorkflowOption {
	return func(w *Workflow) {
		w.eventBus = bus
	}
}

// WithMetrics records operations on recorder.
func WithMetrics(recorder metrics.Recorder) WorkflowOption {
	return func(w *Workflow) {
		w.metrics = recorder
	}
}

// WithTracer traces executions with tracer.
func WithTracer(tracer trace.Tracer) WorkflowOption {
	return func(w *Workflow) {
		w.tracer = tracer
	}
}

// WithLogger replaces the service logger.
func WithLogger(logger *slog.Logger) WorkflowOption {
	return func(w *Workflow) {
		w.logger = logger
	}
}

// NewWorkflow creates a new workflow service.
func NewWorkflow(persistence persistence.Persistence, validator *validation.Validator, opts ...WorkflowOption) *Workflow {
	w := &Workflow{
		persistence: persistence,
		validator:   validator,
		eventBus:    eventbus.NewNoopEventBus(),
		metrics:     metrics.Nop{},
		tracer:      otelhelper.NoopTracer(),
		logger:      slog.Default(),
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// CreateWorkflowInput is the payload of a new workflow. Status and owner are
// not accepted: a new workflow is always a draft owned by the caller.
type CreateWorkflowInput struct {
	Name        string              `json:"name"        validate:"required,max=255"`
	Steps       []models.Step       `json:"steps"       validate:"required,dive"`
	Connections []models.Connection `json:"connections" validate:"required,dive"`
}

// UpdateWorkflowInput carries a partial update. Nil fields keep their value.
type UpdateWorkflowInput struct {
	Name        *string                `json:"name,omitempty"        validate:"omitnil,min=1,max=255"`
	Steps       *[]models.Step         `json:"steps,omitempty"       validate:"omitnil,dive"`
	Connections *[]models.Connection   `json:"connections,omitempty" validate:"omitnil,dive"`
	Status      *models.WorkflowStatus `json:"status,omitempty"      validate:"omitnil,workflow_status"`
}

func (in UpdateWorkflowInput) patch() models.WorkflowPatch {
	return models.WorkflowPatch{
		Name:        in.Name,
		Steps:       in.Steps,
		Connections: in.Connections,
		Status:      in.Status,
	}
}

func (in UpdateWorkflowInput) fields() []string {
	fields := make([]string, 0, 4)

	if in.Name != nil {
		fields = append(fields, "name")
	}

	if in.Steps != nil {
		fields = append(fields, "steps")
	}

	if in.Connections != nil {
		fields = append(fields, "connections")
	}

	if in.Status != nil {
		fields = append(fields, "status")
	}

	return fields
}

// HealthCheck checks the health of the persistence layer.
func (w *Workflow) HealthCheck(ctx context.Context) (string, bool) {
	if w.persistence == nil {
		return "Persistence layer not initialized", false
	}

	err := w.persistence.HealthCheck(ctx)
	if err != nil {
		return "Persistence layer is unhealthy: " + err.Error(), false
	}

	return "Persistence layer is healthy", true
}

// List returns the workflows owned by userID.
func (w *Workflow) List(ctx context.Context, userID int64) ([]*models.Workflow, error) {
	workflows, err := w.persistence.WorkflowRepository().ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list workflows: %w", err)
	}

	return workflows, nil
}

// FetchByID returns the workflow with id or ErrWorkflowNotFound.
func (w *Workflow) FetchByID(ctx context.Context, id int64) (*models.Workflow, error) {
	workflow, err := w.persistence.WorkflowRepository().GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get workflow: %w", err)
	}

	if workflow == nil {
		return nil, persistence.NewWorkflowError("FetchByID", id, ErrWorkflowNotFound)
	}

	return workflow, nil
}

// Create validates input and stores a new draft workflow owned by userID.
func (w *Workflow) Create(ctx context.Context, userID int64, input CreateWorkflowInput) (*models.Workflow, error) {
	violations := w.validator.Struct(input)
	violations = append(violations, w.validator.Steps("steps", input.Steps)...)

	if err := newViolationsError("Create", violations); err != nil {
		return nil, err
	}

	created, err := w.persistence.WorkflowRepository().Create(ctx, &models.Workflow{
		UserID:      userID,
		Name:        input.Name,
		Steps:       input.Steps,
		Connections: input.Connections,
		Status:      models.WorkflowStatusDraft,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create workflow: %w", err)
	}

	w.metrics.WorkflowOperation(metrics.OperationCreate)
	w.publish(ctx, created.ID, events.WorkflowCreated{
		BaseEvent: events.NewBaseEvent(events.WorkflowCreatedEvent, created.ID, created.UserID),
		Name:      created.Name,
		StepCount: len(created.Steps),
	})

	return created, nil
}

// Update validates input and merges it over the stored workflow.
func (w *Workflow) Update(ctx context.Context, id int64, input UpdateWorkflowInput) (*models.Workflow, error) {
	violations := w.validator.Struct(input)
	if input.Steps != nil {
		violations = append(violations, w.validator.Steps("steps", *input.Steps)...)
	}

	if err := newViolationsError("Update", violations); err != nil {
		return nil, err
	}

	updated, err := w.persistence.WorkflowRepository().Update(ctx, id, input.patch())
	if err != nil {
		return nil, fmt.Errorf("failed to update workflow: %w", err)
	}

	if updated == nil {
		return nil, persistence.NewWorkflowError("Update", id, ErrWorkflowNotFound)
	}

	w.metrics.WorkflowOperation(metrics.OperationUpdate)
	w.publish(ctx, id, events.WorkflowUpdated{
		BaseEvent: events.NewBaseEvent(events.WorkflowUpdatedEvent, id, updated.UserID),
		Fields:    input.fields(),
	})

	return updated, nil
}

// Delete removes the workflow. Its executions are kept.
func (w *Workflow) Delete(ctx context.Context, id int64) error {
	deleted, err := w.persistence.WorkflowRepository().Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to delete workflow: %w", err)
	}

	if !deleted {
		return persistence.NewWorkflowError("Delete", id, ErrWorkflowNotFound)
	}

	w.metrics.WorkflowOperation(metrics.OperationDelete)
	w.publish(ctx, id, events.WorkflowDeleted{
		BaseEvent: events.NewBaseEvent(events.WorkflowDeletedEvent, id, 0),
	})

	return nil
}

// Execute runs the workflow once and returns the recorded execution.
func (w *Workflow) Execute(ctx context.Context, id int64) (*models.WorkflowExecution, error) {
	ctx, span := otelhelper.StartSpan(ctx, w.tracer, "workflow.execute", attribute.Int64(otelhelper.WorkflowIDKey, id))
	defer span.End()

	execution, err := w.persistence.ExecutionRepository().Execute(ctx, id)
	if err != nil {
		otelhelper.SetError(span, err)

		return nil, fmt.Errorf("failed to execute workflow: %w", err)
	}

	span.SetAttributes(
		attribute.Int64(otelhelper.ExecutionIDKey, execution.ID),
		attribute.String(otelhelper.WorkflowStatusKey, string(execution.Status)),
	)

	w.metrics.WorkflowExecuted(execution.Status)
	w.metrics.WorkflowOperation(metrics.OperationExecute)

	w.logger.InfoContext(ctx, "Workflow executed",
		slog.Int64("workflow_id", id),
		slog.Int64("execution_id", execution.ID),
		slog.String("status", string(execution.Status)),
	)

	w.publish(ctx, id, events.WorkflowExecuted{
		BaseEvent:   events.NewBaseEvent(events.WorkflowExecutedEvent, id, 0),
		ExecutionID: execution.ID,
		Status:      execution.Status,
		ExecutedAt:  execution.ExecutedAt,
	})

	return execution, nil
}

// Executions returns the recorded executions of the workflow, oldest first.
// A workflow without executions, or one that does not exist, yields an empty list.
func (w *Workflow) Executions(ctx context.Context, id int64) ([]*models.WorkflowExecution, error) {
	executions, err := w.persistence.ExecutionRepository().ListByWorkflow(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to list executions: %w", err)
	}

	return executions, nil
}

// publish sends event keyed by workflow id. Failures are logged, never returned.
func (w *Workflow) publish(ctx context.Context, workflowID int64, event eventbus.Event) {
	if err := w.eventBus.Publish(ctx, strconv.FormatInt(workflowID, 10), event); err != nil {
		w.logger.ErrorContext(ctx, "Failed to publish workflow event",
			slog.String("event_type", string(event.GetType())),
			slog.Int64("workflow_id", workflowID),
			slog.Any("error", err),
		)
	}
}
