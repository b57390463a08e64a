package steps

import (
	"github.com/dukex/stepflow/pkg/models"
	"github.com/dukex/stepflow/pkg/protocol"
)

// EmailStepFactory describes a step that sends an email.
type EmailStepFactory struct{}

// NewEmailStepFactory creates a new factory instance.
func NewEmailStepFactory() protocol.StepFactory {
	return &EmailStepFactory{}
}

func (f *EmailStepFactory) ID() models.StepType {
	return models.StepTypeEmail
}

func (f *EmailStepFactory) Name() string {
	return "Email"
}

func (f *EmailStepFactory) Description() string {
	return "Sends an email to a single recipient"
}

// Schema returns the JSON schema for email step data.
func (f *EmailStepFactory) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"to": map[string]any{
				"type":        "string",
				"format":      "email",
				"description": "Recipient address",
			},
			"subject": map[string]any{
				"type":        "string",
				"maxLength":   255,
				"description": "Subject line",
			},
			"body": map[string]any{
				"type":        "string",
				"description": "Plain text body",
			},
		},
		"examples": []map[string]any{
			{"to": "ops@example.com", "subject": "Nightly import finished"},
		},
	}
}

func (f *EmailStepFactory) DefaultData() models.StepData {
	return models.EmailData{}
}
