package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStep_UnmarshalJSON_TypedData(t *testing.T) {
	tests := []struct {
		name     string
		payload  string
		validate func(t *testing.T, step Step)
	}{
		{
			name:    "api call",
			payload: `{"id":"s1","type":"api_call","position":{"x":250,"y":170},"data":{"endpoint":"https://api.example.com","method":"POST"}}`,
			validate: func(t *testing.T, step Step) {
				t.Helper()
				data, ok := step.Data.(APICallData)
				require.True(t, ok)
				assert.Equal(t, "https://api.example.com", data.Endpoint)
				assert.Equal(t, "POST", data.Method)
				assert.Equal(t, Position{X: 250, Y: 170}, step.Position)
			},
		},
		{
			name:    "email",
			payload: `{"id":"s2","type":"email","position":{"x":0,"y":0},"data":{"to":"ops@example.com","subject":"Done"}}`,
			validate: func(t *testing.T, step Step) {
				t.Helper()
				data, ok := step.Data.(EmailData)
				require.True(t, ok)
				assert.Equal(t, "ops@example.com", data.To)
				assert.Equal(t, "Done", data.Subject)
			},
		},
		{
			name:    "text box",
			payload: `{"id":"s3","type":"text_box","position":{"x":0,"y":0},"data":{"text":"hello"}}`,
			validate: func(t *testing.T, step Step) {
				t.Helper()
				data, ok := step.Data.(TextBoxData)
				require.True(t, ok)
				assert.Equal(t, "hello", data.Text)
			},
		},
		{
			name:    "start without data",
			payload: `{"id":"start","type":"start","position":{"x":250,"y":50}}`,
			validate: func(t *testing.T, step Step) {
				t.Helper()
				assert.IsType(t, StartData{}, step.Data)
				assert.Empty(t, step.Data.Map())
			},
		},
		{
			name:    "unknown type falls back to untyped bag",
			payload: `{"id":"s4","type":"webhook","position":{"x":0,"y":0},"data":{"url":"https://hooks.example.com"}}`,
			validate: func(t *testing.T, step Step) {
				t.Helper()
				data, ok := step.Data.(UnknownData)
				require.True(t, ok)
				assert.Equal(t, StepType("webhook"), data.StepType())
				assert.Equal(t, "https://hooks.example.com", data.Values["url"])
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var step Step

			err := json.Unmarshal([]byte(tt.payload), &step)
			require.NoError(t, err)
			tt.validate(t, step)
		})
	}
}

func TestStep_UnmarshalJSON_WrongFieldTypeKeepsRawData(t *testing.T) {
	var step Step

	err := json.Unmarshal([]byte(`{"id":"s1","type":"api_call","position":{"x":0,"y":0},"data":{"endpoint":42}}`), &step)
	require.NoError(t, err)

	data, ok := step.Data.(UnknownData)
	require.True(t, ok)
	assert.Equal(t, StepTypeAPICall, data.StepType())
	assert.InDelta(t, 42, data.Values["endpoint"], 0)
}

func TestDecodeStepData_WrongFieldType(t *testing.T) {
	_, err := DecodeStepData(StepTypeAPICall, map[string]any{"endpoint": 42})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid api_call step data")
}

func TestStep_RoundTripKeepsExtraKeys(t *testing.T) {
	payload := `{"id":"s1","type":"api_call","position":{"x":1,"y":2},"data":{"endpoint":"https://a.example.com","label":"Fetch"}}`

	var step Step
	require.NoError(t, json.Unmarshal([]byte(payload), &step))

	out, err := json.Marshal(step)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(out, &decoded))

	data, ok := decoded["data"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "https://a.example.com", data["endpoint"])
	assert.Equal(t, "Fetch", data["label"])
	assert.NotContains(t, data, "method")
}

func TestStep_RoundTripKeepsEmptyAndCaseDistinctKeys(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		data    string
	}{
		{
			name:    "empty typed value",
			payload: `{"id":"s1","type":"text_box","position":{"x":0,"y":0},"data":{"text":""}}`,
			data:    `{"text":""}`,
		},
		{
			name:    "capitalized extra key",
			payload: `{"id":"s2","type":"email","position":{"x":0,"y":0},"data":{"subject":"Hi","Subject":"keep"}}`,
			data:    `{"subject":"Hi","Subject":"keep"}`,
		},
		{
			name:    "capitalized key alone stays extra",
			payload: `{"id":"s3","type":"email","position":{"x":0,"y":0},"data":{"Subject":"keep","to":""}}`,
			data:    `{"Subject":"keep","to":""}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var step Step
			require.NoError(t, json.Unmarshal([]byte(tt.payload), &step))

			out, err := json.Marshal(step)
			require.NoError(t, err)

			var decoded struct {
				Data json.RawMessage `json:"data"`
			}
			require.NoError(t, json.Unmarshal(out, &decoded))
			assert.JSONEq(t, tt.data, string(decoded.Data))
		})
	}
}

func TestStep_MarshalJSON_NilData(t *testing.T) {
	out, err := json.Marshal(Step{ID: "end", Type: StepTypeEnd})
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"end","type":"end","position":{"x":0,"y":0},"data":{}}`, string(out))
}

func TestStepType_IsKnown(t *testing.T) {
	for _, stepType := range StepTypes {
		assert.True(t, stepType.IsKnown(), stepType)
	}

	assert.False(t, StepType("loop").IsKnown())
}

func TestWorkflowStatus_IsValid(t *testing.T) {
	assert.True(t, WorkflowStatusDraft.IsValid())
	assert.True(t, WorkflowStatusPassed.IsValid())
	assert.True(t, WorkflowStatusFailed.IsValid())
	assert.False(t, WorkflowStatus("published").IsValid())
}

func TestWorkflow_CloneIsIndependent(t *testing.T) {
	lastRun := time.Now()
	original := &Workflow{
		ID:   1,
		Name: "Onboarding",
		Steps: []Step{
			{ID: "s1", Type: StepTypeAPICall, Data: APICallData{Endpoint: "https://a", Extra: map[string]any{"k": "v"}}},
		},
		Connections: []Connection{{ID: "e1", Source: "start", Target: "s1"}},
		Status:      WorkflowStatusPassed,
		LastRunAt:   &lastRun,
	}

	clone := original.Clone()
	clone.Name = "Changed"
	clone.Steps[0].ID = "changed"
	clone.Connections[0].Target = "changed"
	*clone.LastRunAt = lastRun.Add(time.Hour)
	clone.Steps[0].Data.(APICallData).Extra["k"] = "changed"

	assert.Equal(t, "Onboarding", original.Name)
	assert.Equal(t, "s1", original.Steps[0].ID)
	assert.Equal(t, "s1", original.Connections[0].Target)
	assert.Equal(t, lastRun, *original.LastRunAt)
	assert.Equal(t, "v", original.Steps[0].Data.(APICallData).Extra["k"])
}

func TestWorkflowPatch_ApplyOnlyTouchesSetFields(t *testing.T) {
	workflow := &Workflow{
		Name:        "Before",
		Steps:       []Step{{ID: "start", Type: StepTypeStart}},
		Connections: []Connection{{ID: "e1", Source: "start", Target: "end"}},
		Status:      WorkflowStatusFailed,
	}

	name := "After"
	WorkflowPatch{Name: &name}.Apply(workflow)

	assert.Equal(t, "After", workflow.Name)
	assert.Len(t, workflow.Steps, 1)
	assert.Len(t, workflow.Connections, 1)
	assert.Equal(t, WorkflowStatusFailed, workflow.Status)
}

func TestWorkflow_JSONFieldNames(t *testing.T) {
	out, err := json.Marshal(Workflow{ID: 7, UserID: 1, Name: "n", Status: WorkflowStatusDraft})
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(out, &decoded))

	for _, key := range []string{"id", "userId", "name", "steps", "connections", "status", "createdAt", "lastRunAt"} {
		assert.Contains(t, decoded, key)
	}

	assert.Nil(t, decoded["lastRunAt"])
}

func TestUser_PasswordHashNeverSerialized(t *testing.T) {
	out, err := json.Marshal(User{ID: 1, Username: "ada", Email: "ada@example.com", PasswordHash: []byte("hash")})
	require.NoError(t, err)
	assert.NotContains(t, string(out), "hash")
	assert.NotContains(t, string(out), "password")
}

func TestExecutionMessage(t *testing.T) {
	assert.Equal(t, ExecutionPassedMessage, ExecutionMessage(WorkflowStatusPassed))
	assert.Equal(t, ExecutionFailedMessage, ExecutionMessage(WorkflowStatusFailed))
}
