package steps

import (
	"github.com/dukex/stepflow/pkg/models"
	"github.com/dukex/stepflow/pkg/protocol"
)

// TextBoxStepFactory describes a free text note on the canvas.
type TextBoxStepFactory struct{}

// NewTextBoxStepFactory creates a new factory instance.
func NewTextBoxStepFactory() protocol.StepFactory {
	return &TextBoxStepFactory{}
}

func (f *TextBoxStepFactory) ID() models.StepType { return models.StepTypeTextBox }

func (f *TextBoxStepFactory) Name() string { return "Text Box" }

func (f *TextBoxStepFactory) Description() string {
	return "Free text annotation"
}

func (f *TextBoxStepFactory) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"text": map[string]any{
				"type":        "string",
				"maxLength":   4096,
				"description": "Text shown on the canvas",
			},
		},
	}
}

func (f *TextBoxStepFactory) DefaultData() models.StepData {
	return models.TextBoxData{}
}
