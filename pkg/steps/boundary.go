// Package steps provides the built-in step type factories.
package steps

import (
	"github.com/dukex/stepflow/pkg/models"
	"github.com/dukex/stepflow/pkg/protocol"
)

// StartStepFactory describes the entry step of a workflow.
type StartStepFactory struct{}

// NewStartStepFactory creates a new factory instance.
func NewStartStepFactory() protocol.StepFactory {
	return &StartStepFactory{}
}

func (f *StartStepFactory) ID() models.StepType { return models.StepTypeStart }

func (f *StartStepFactory) Name() string { return "Start" }

func (f *StartStepFactory) Description() string {
	return "Entry point of the workflow. Every workflow has exactly one."
}

func (f *StartStepFactory) Schema() map[string]any {
	return boundarySchema("Start")
}

func (f *StartStepFactory) DefaultData() models.StepData {
	return models.StartData{Extra: map[string]any{"label": "Start"}}
}

// EndStepFactory describes the terminal step of a workflow.
type EndStepFactory struct{}

// NewEndStepFactory creates a new factory instance.
func NewEndStepFactory() protocol.StepFactory {
	return &EndStepFactory{}
}

func (f *EndStepFactory) ID() models.StepType { return models.StepTypeEnd }

func (f *EndStepFactory) Name() string { return "End" }

func (f *EndStepFactory) Description() string {
	return "Terminal step of the workflow. Every workflow has exactly one."
}

func (f *EndStepFactory) Schema() map[string]any {
	return boundarySchema("End")
}

func (f *EndStepFactory) DefaultData() models.StepData {
	return models.EndData{Extra: map[string]any{"label": "End"}}
}

func boundarySchema(label string) map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"label": map[string]any{
				"type":        "string",
				"description": "Caption rendered on the canvas",
				"default":     label,
			},
		},
	}
}
