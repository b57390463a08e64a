package services

import (
	"errors"
	"fmt"
	"testing"

	"github.com/dukex/stepflow/pkg/events"
	"github.com/dukex/stepflow/pkg/metrics"
	"github.com/dukex/stepflow/pkg/mocks"
	"github.com/dukex/stepflow/pkg/models"
	"github.com/dukex/stepflow/pkg/persistence"
	"github.com/dukex/stepflow/pkg/persistence/memory"
	"github.com/dukex/stepflow/pkg/validation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func onboardingInput() CreateWorkflowInput {
	return CreateWorkflowInput{
		Name: "Onboarding",
		Steps: []models.Step{
			{ID: "start", Type: models.StepTypeStart, Position: models.Position{X: 250, Y: 50}, Data: models.StartData{}},
			{ID: "end", Type: models.StepTypeEnd, Position: models.Position{X: 250, Y: 400}, Data: models.EndData{}},
		},
		Connections: []models.Connection{{ID: "estart-end", Source: "start", Target: "end"}},
	}
}

func TestNewWorkflow(t *testing.T) {
	store := newTestStore(t)
	service := NewWorkflow(store, newTestValidator())

	assert.NotNil(t, service)
	assert.Equal(t, store, service.persistence)

	message, ok := service.HealthCheck(t.Context())
	assert.True(t, ok)
	assert.Equal(t, "Persistence layer is healthy", message)
}

func TestWorkflow_HealthCheck_Unhealthy(t *testing.T) {
	store := memory.NewPersistence()
	require.NoError(t, store.Close(t.Context()))

	message, ok := NewWorkflow(store, newTestValidator()).HealthCheck(t.Context())
	assert.False(t, ok)
	assert.Contains(t, message, "unhealthy")
}

func TestWorkflow_Create(t *testing.T) {
	bus := &mocks.MockEventBus{}
	bus.On("Publish", mock.Anything, "1", mock.MatchedBy(func(event events.WorkflowCreated) bool {
		return event.Name == "Onboarding" && event.StepCount == 2 && event.UserID == 7
	})).Return(nil).Once()

	recorder := &mocks.MockRecorder{}
	recorder.On("WorkflowOperation", metrics.OperationCreate).Return().Once()

	service := NewWorkflow(newTestStore(t), newTestValidator(), WithEventBus(bus), WithMetrics(recorder))

	created, err := service.Create(t.Context(), 7, onboardingInput())
	require.NoError(t, err)

	assert.Equal(t, int64(1), created.ID)
	assert.Equal(t, int64(7), created.UserID)
	assert.Equal(t, models.WorkflowStatusDraft, created.Status)
	assert.Nil(t, created.LastRunAt)
	assert.False(t, created.CreatedAt.IsZero())
	assert.Len(t, created.Steps, 2)
	assert.Len(t, created.Connections, 1)

	bus.AssertExpectations(t)
	recorder.AssertExpectations(t)
}

func TestWorkflow_Create_ValidationFailureWritesNothing(t *testing.T) {
	bus := &mocks.MockEventBus{}
	store := newTestStore(t)
	service := NewWorkflow(store, newTestValidator(), WithEventBus(bus))

	input := onboardingInput()
	input.Name = ""
	input.Steps = append(input.Steps, models.Step{
		ID:   "call",
		Type: models.StepTypeAPICall,
		Data: models.APICallData{Endpoint: "https://api.example.com", Method: "TELEPORT"},
	})

	created, err := service.Create(t.Context(), 1, input)
	require.Error(t, err)
	assert.Nil(t, created)
	assert.True(t, IsValidationError(err))

	violations := Violations(err)
	require.Len(t, violations, 2)
	assert.Equal(t, "name", violations[0].Field)
	assert.Equal(t, "steps[2].data.method", violations[1].Field)

	workflows, err := store.WorkflowRepository().ListByUser(t.Context(), 1)
	require.NoError(t, err)
	assert.Empty(t, workflows)

	bus.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything, mock.Anything)
}

func TestWorkflow_Create_RequiresGraph(t *testing.T) {
	store := newTestStore(t)
	service := NewWorkflow(store, newTestValidator())

	_, err := service.Create(t.Context(), 1, CreateWorkflowInput{Name: "NoGraph"})
	require.Error(t, err)
	require.True(t, IsValidationError(err))

	fields := make([]string, 0)
	for _, violation := range Violations(err) {
		fields = append(fields, violation.Field)
	}

	assert.ElementsMatch(t, []string{"steps", "connections"}, fields)

	created, err := service.Create(t.Context(), 1, CreateWorkflowInput{
		Name:        "Empty",
		Steps:       []models.Step{},
		Connections: []models.Connection{},
	})
	require.NoError(t, err)
	assert.Empty(t, created.Steps)
}

func TestWorkflow_PublishFailureIsNotSurfaced(t *testing.T) {
	bus := &mocks.MockEventBus{}
	bus.On("Publish", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("broker down"))

	service := NewWorkflow(newTestStore(t), newTestValidator(), WithEventBus(bus))

	created, err := service.Create(t.Context(), 1, onboardingInput())
	require.NoError(t, err)
	assert.NotNil(t, created)
}

func TestWorkflow_FetchByID(t *testing.T) {
	service := NewWorkflow(newTestStore(t), newTestValidator())

	created, err := service.Create(t.Context(), 1, onboardingInput())
	require.NoError(t, err)

	fetched, err := service.FetchByID(t.Context(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, created, fetched)

	_, err = service.FetchByID(t.Context(), 99)
	require.Error(t, err)
	assert.True(t, persistence.IsWorkflowNotFound(err))
}

func TestWorkflow_List(t *testing.T) {
	service := NewWorkflow(newTestStore(t), newTestValidator())

	_, err := service.Create(t.Context(), 1, onboardingInput())
	require.NoError(t, err)
	_, err = service.Create(t.Context(), 2, onboardingInput())
	require.NoError(t, err)

	workflows, err := service.List(t.Context(), 1)
	require.NoError(t, err)
	require.Len(t, workflows, 1)
	assert.Equal(t, int64(1), workflows[0].UserID)

	workflows, err = service.List(t.Context(), 3)
	require.NoError(t, err)
	assert.Empty(t, workflows)
}

func TestWorkflow_Update(t *testing.T) {
	bus := &mocks.MockEventBus{}
	bus.On("Publish", mock.Anything, mock.Anything, mock.AnythingOfType("events.WorkflowCreated")).Return(nil)
	bus.On("Publish", mock.Anything, "1", mock.MatchedBy(func(event events.WorkflowUpdated) bool {
		return assert.ObjectsAreEqual([]string{"name"}, event.Fields)
	})).Return(nil).Once()

	service := NewWorkflow(newTestStore(t), newTestValidator(), WithEventBus(bus))

	created, err := service.Create(t.Context(), 1, onboardingInput())
	require.NoError(t, err)

	name := "Renamed"
	updated, err := service.Update(t.Context(), created.ID, UpdateWorkflowInput{Name: &name})
	require.NoError(t, err)

	assert.Equal(t, "Renamed", updated.Name)
	assert.Equal(t, created.Steps, updated.Steps)
	assert.Equal(t, created.Connections, updated.Connections)
	assert.Equal(t, created.Status, updated.Status)

	bus.AssertExpectations(t)
}

func TestWorkflow_Update_Errors(t *testing.T) {
	service := NewWorkflow(newTestStore(t), newTestValidator())

	created, err := service.Create(t.Context(), 1, onboardingInput())
	require.NoError(t, err)

	status := models.WorkflowStatus("archived")
	_, err = service.Update(t.Context(), created.ID, UpdateWorkflowInput{Status: &status})
	require.Error(t, err)
	assert.True(t, IsValidationError(err))

	steps := []models.Step{{ID: "mail", Type: models.StepTypeEmail, Data: models.EmailData{To: "nobody"}}}
	_, err = service.Update(t.Context(), created.ID, UpdateWorkflowInput{Steps: &steps})
	require.Error(t, err)
	require.Len(t, Violations(err), 1)
	assert.Equal(t, "steps[0].data.to", Violations(err)[0].Field)

	name := "Ghost"
	_, err = service.Update(t.Context(), 404, UpdateWorkflowInput{Name: &name})
	require.Error(t, err)
	assert.True(t, persistence.IsWorkflowNotFound(err))

	fetched, err := service.FetchByID(t.Context(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, created, fetched)
}

func TestWorkflow_Delete(t *testing.T) {
	service := NewWorkflow(newTestStore(t), newTestValidator())

	created, err := service.Create(t.Context(), 1, onboardingInput())
	require.NoError(t, err)

	require.NoError(t, service.Delete(t.Context(), created.ID))

	_, err = service.FetchByID(t.Context(), created.ID)
	assert.True(t, persistence.IsWorkflowNotFound(err))

	err = service.Delete(t.Context(), created.ID)
	require.Error(t, err)
	assert.True(t, persistence.IsWorkflowNotFound(err))
}

func TestWorkflow_Execute(t *testing.T) {
	bus := &mocks.MockEventBus{}
	bus.On("Publish", mock.Anything, mock.Anything, mock.AnythingOfType("events.WorkflowCreated")).Return(nil)
	bus.On("Publish", mock.Anything, "1", mock.MatchedBy(func(event events.WorkflowExecuted) bool {
		return event.ExecutionID == 1 && event.Status == models.WorkflowStatusFailed
	})).Return(nil).Once()

	recorder := &mocks.MockRecorder{}
	recorder.On("WorkflowOperation", mock.Anything).Return()
	recorder.On("WorkflowExecuted", models.WorkflowStatusFailed).Return().Once()

	store := newTestStore(t, memory.WithOutcome(memory.FixedOutcome(models.WorkflowStatusFailed)))
	service := NewWorkflow(store, newTestValidator(), WithEventBus(bus), WithMetrics(recorder))

	created, err := service.Create(t.Context(), 1, onboardingInput())
	require.NoError(t, err)

	execution, err := service.Execute(t.Context(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, execution.WorkflowID)
	assert.Equal(t, models.WorkflowStatusFailed, execution.Status)

	workflow, err := service.FetchByID(t.Context(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, models.WorkflowStatusFailed, workflow.Status)
	require.NotNil(t, workflow.LastRunAt)
	assert.Equal(t, execution.ExecutedAt, *workflow.LastRunAt)

	executions, err := service.Executions(t.Context(), created.ID)
	require.NoError(t, err)
	require.Len(t, executions, 1)
	assert.Equal(t, execution, executions[0])

	bus.AssertExpectations(t)
	recorder.AssertExpectations(t)
	recorder.AssertCalled(t, "WorkflowOperation", metrics.OperationExecute)
}

func TestWorkflow_Execute_NotFound(t *testing.T) {
	recorder := &mocks.MockRecorder{}
	service := NewWorkflow(newTestStore(t), newTestValidator(), WithMetrics(recorder))

	execution, err := service.Execute(t.Context(), 12)
	require.Error(t, err)
	assert.Nil(t, execution)
	assert.True(t, persistence.IsWorkflowNotFound(err))

	executions, err := service.Executions(t.Context(), 12)
	require.NoError(t, err)
	assert.Empty(t, executions)

	recorder.AssertNotCalled(t, "WorkflowExecuted", mock.Anything)
}

func TestWorkflow_RepositoryFailuresAreWrapped(t *testing.T) {
	store := mocks.NewMockPersistence()
	store.GetMockWorkflowRepository().On("ListByUser", mock.Anything, int64(1)).Return(nil, errors.New("disk on fire"))
	store.GetMockExecutionRepository().On("Execute", mock.Anything, int64(2)).Return(nil, errors.New("disk on fire"))

	service := NewWorkflow(store, newTestValidator())

	_, err := service.List(t.Context(), 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to list workflows")
	assert.False(t, IsValidationError(err))

	_, err = service.Execute(t.Context(), 2)
	require.Error(t, err)
	assert.False(t, persistence.IsWorkflowNotFound(err))
}

func TestIsValidationError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{name: "invalid request", err: ErrInvalidRequest, expected: true},
		{name: "invalid id", err: ErrInvalidWorkflowID, expected: true},
		{name: "violations", err: &ValidationError{Op: "Create"}, expected: true},
		{name: "wrapped service error", err: NewValidationError("Op", "code", "msg", ErrInvalidRequest), expected: true},
		{name: "not found", err: ErrWorkflowNotFound, expected: false},
		{name: "conflict", err: ErrEmailTaken, expected: false},
		{name: "generic", err: errors.New("boom"), expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, IsValidationError(tt.err))
		})
	}
}

func TestValidationError_Message(t *testing.T) {
	err := &ValidationError{Op: "Create", Violations: []validation.Violation{
		{Field: "name", Rule: "required", Message: "is required"},
		{Field: "steps[0].type", Rule: "step_type", Message: `unknown step type "loop"`},
	}}

	assert.Equal(t, `Create: invalid request: name: is required; steps[0].type: unknown step type "loop"`, err.Error())
	assert.Len(t, Violations(fmt.Errorf("wrapped: %w", err)), 2)
	assert.Nil(t, Violations(errors.New("plain")))
}
