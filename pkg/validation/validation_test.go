package validation

import (
	"log/slog"
	"testing"

	"github.com/dukex/stepflow/pkg/models"
	"github.com/dukex/stepflow/pkg/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type workflowPayload struct {
	Name        string              `json:"name"        validate:"required,max=255"`
	Steps       []models.Step       `json:"steps"       validate:"dive"`
	Connections []models.Connection `json:"connections" validate:"dive"`
}

type secretPayload struct {
	Secret string `json:"secret" validate:"max=8,max_bytes=8"`
}

type patchPayload struct {
	Name   *string                `json:"name"   validate:"omitnil,min=1,max=255"`
	Status *models.WorkflowStatus `json:"status" validate:"omitnil,workflow_status"`
}

func newValidator() *Validator {
	reg := registry.NewRegistry(slog.Default())
	reg.RegisterDefaultSteps()

	return New(reg)
}

func fields(violations []Violation) []string {
	out := make([]string, 0, len(violations))
	for _, v := range violations {
		out = append(out, v.Field)
	}

	return out
}

func TestValidator_Struct(t *testing.T) {
	v := newValidator()

	tests := []struct {
		name    string
		payload any
		fields  []string
		rules   []string
	}{
		{
			name: "valid",
			payload: workflowPayload{
				Name:        "Onboarding",
				Steps:       []models.Step{{ID: "start", Type: models.StepTypeStart}, {ID: "end", Type: models.StepTypeEnd}},
				Connections: []models.Connection{{ID: "e1", Source: "start", Target: "end"}},
			},
		},
		{
			name:    "missing name",
			payload: workflowPayload{},
			fields:  []string{"name"},
			rules:   []string{"required"},
		},
		{
			name: "nested step and connection failures use json paths",
			payload: workflowPayload{
				Name:        "x",
				Steps:       []models.Step{{ID: "s1", Type: "webhook"}, {Type: models.StepTypeEnd}},
				Connections: []models.Connection{{ID: "e1", Source: "s1"}},
			},
			fields: []string{"steps[0].type", "steps[1].id", "connections[0].target"},
			rules:  []string{"step_type", "required", "required"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			violations := v.Struct(tt.payload)

			assert.Equal(t, len(tt.fields), len(violations), violations)
			assert.ElementsMatch(t, tt.fields, fields(violations))

			rules := make([]string, 0, len(violations))
			for _, violation := range violations {
				assert.NotEmpty(t, violation.Message)
				rules = append(rules, violation.Rule)
			}

			if tt.rules != nil {
				assert.ElementsMatch(t, tt.rules, rules)
			}
		})
	}
}

func TestValidator_MaxBytes(t *testing.T) {
	v := newValidator()

	assert.Empty(t, v.Struct(secretPayload{Secret: "abcdefgh"}))

	violations := v.Struct(secretPayload{Secret: "ééééé"})
	require.Len(t, violations, 1)
	assert.Equal(t, "secret", violations[0].Field)
	assert.Equal(t, "max_bytes", violations[0].Rule)
	assert.Equal(t, "must be at most 8 bytes long", violations[0].Message)
}

func TestValidator_StructPointers(t *testing.T) {
	v := newValidator()

	assert.Empty(t, v.Struct(patchPayload{}))

	empty := ""
	violations := v.Struct(patchPayload{Name: &empty})
	require.Len(t, violations, 1)
	assert.Equal(t, "name", violations[0].Field)
	assert.Equal(t, "min", violations[0].Rule)

	status := models.WorkflowStatus("published")
	violations = v.Struct(patchPayload{Status: &status})
	require.Len(t, violations, 1)
	assert.Equal(t, "status", violations[0].Field)
	assert.Contains(t, violations[0].Message, "published")

	passed := models.WorkflowStatusPassed
	assert.Empty(t, v.Struct(patchPayload{Status: &passed}))
}

func TestValidator_StepData(t *testing.T) {
	v := newValidator()

	tests := []struct {
		name   string
		step   models.Step
		fields []string
	}{
		{
			name: "valid api call",
			step: models.Step{Type: models.StepTypeAPICall, Data: models.APICallData{Endpoint: "https://api.example.com", Method: "POST"}},
		},
		{
			name: "empty api call is allowed",
			step: models.Step{Type: models.StepTypeAPICall, Data: models.APICallData{}},
		},
		{
			name:   "bad method",
			step:   models.Step{Type: models.StepTypeAPICall, Data: models.APICallData{Endpoint: "https://api.example.com", Method: "FETCH"}},
			fields: []string{"steps[0].data.method"},
		},
		{
			name:   "bad email recipient",
			step:   models.Step{Type: models.StepTypeEmail, Data: models.EmailData{To: "not-an-email"}},
			fields: []string{"steps[0].data.to"},
		},
		{
			name: "text box with extra keys",
			step: models.Step{Type: models.StepTypeTextBox, Data: models.TextBoxData{Text: "hi", Extra: map[string]any{"label": "Note"}}},
		},
		{
			name:   "extra label with wrong type on start",
			step:   models.Step{Type: models.StepTypeStart, Data: models.StartData{Extra: map[string]any{"label": 3}}},
			fields: []string{"steps[0].data.label"},
		},
		{
			name: "unregistered type is skipped",
			step: models.Step{Type: "webhook", Data: models.UnknownData{Kind: "webhook", Values: map[string]any{"url": 1}}},
		},
		{
			name: "nil data",
			step: models.Step{Type: models.StepTypeEnd},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			violations := v.Steps("steps", []models.Step{tt.step})
			assert.ElementsMatch(t, tt.fields, fields(violations))
		})
	}
}

func TestValidator_WithoutSchemasFallsBackToBuiltins(t *testing.T) {
	v := New(nil)

	violations := v.Struct(workflowPayload{
		Name:  "n",
		Steps: []models.Step{{ID: "a", Type: models.StepTypeCondition}, {ID: "b", Type: "loop"}},
	})
	require.Len(t, violations, 1)
	assert.Equal(t, "steps[1].type", violations[0].Field)

	assert.Empty(t, v.Steps("steps", []models.Step{{Type: models.StepTypeEmail, Data: models.EmailData{To: "bad"}}}))
}

func TestViolation_String(t *testing.T) {
	assert.Equal(t, "name: is required", Violation{Field: "name", Rule: "required", Message: "is required"}.String())
}
