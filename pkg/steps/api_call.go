package steps

import (
	"github.com/dukex/stepflow/pkg/models"
	"github.com/dukex/stepflow/pkg/protocol"
)

// APICallStepFactory describes a step that calls an HTTP endpoint.
type APICallStepFactory struct{}

// NewAPICallStepFactory creates a new factory instance.
func NewAPICallStepFactory() protocol.StepFactory {
	return &APICallStepFactory{}
}

// ID returns the step type.
func (f *APICallStepFactory) ID() models.StepType {
	return models.StepTypeAPICall
}

// Name returns the palette label.
func (f *APICallStepFactory) Name() string {
	return "API Call"
}

// Description returns the factory description.
func (f *APICallStepFactory) Description() string {
	return "Calls an HTTP endpoint with the configured method"
}

// Schema returns the JSON schema for API call step data.
func (f *APICallStepFactory) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"endpoint": map[string]any{
				"type":        "string",
				"format":      "uri",
				"description": "Absolute URL to call",
				"examples":    []string{"https://api.example.com/users", "https://hooks.example.com/notify"},
			},
			"method": map[string]any{
				"type":        "string",
				"description": "HTTP method",
				"enum":        []string{"GET", "POST", "PUT", "PATCH", "DELETE"},
				"default":     "GET",
			},
		},
		"examples": []map[string]any{
			{"endpoint": "https://api.example.com/users", "method": "GET"},
			{"endpoint": "https://api.example.com/orders", "method": "POST"},
		},
	}
}

// DefaultData returns the data a new API call step starts with.
func (f *APICallStepFactory) DefaultData() models.StepData {
	return models.APICallData{Method: "GET"}
}
