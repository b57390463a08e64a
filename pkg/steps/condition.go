package steps

import (
	"github.com/dukex/stepflow/pkg/models"
	"github.com/dukex/stepflow/pkg/protocol"
)

// ConditionStepFactory describes a branching step.
type ConditionStepFactory struct{}

// NewConditionStepFactory creates a new factory instance.
func NewConditionStepFactory() protocol.StepFactory {
	return &ConditionStepFactory{}
}

func (f *ConditionStepFactory) ID() models.StepType { return models.StepTypeCondition }

func (f *ConditionStepFactory) Name() string { return "Condition" }

func (f *ConditionStepFactory) Description() string {
	return "Branches the workflow on a boolean expression"
}

// Schema returns the JSON schema for condition step data.
func (f *ConditionStepFactory) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"expression": map[string]any{
				"type":        "string",
				"description": "Expression evaluated when the workflow runs",
				"examples":    []string{"status == 200", "items > 0"},
			},
		},
	}
}

func (f *ConditionStepFactory) DefaultData() models.StepData {
	return models.ConditionData{}
}
