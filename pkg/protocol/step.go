// Package protocol defines the contracts step type providers implement.
package protocol

import "github.com/dukex/stepflow/pkg/models"

// StepFactory describes a step type offered by the editor palette.
type StepFactory interface {
	// ID returns the step type this factory describes
	ID() models.StepType

	// Name returns the human-readable name shown in the palette
	Name() string

	// Description returns what the step is meant to do
	Description() string

	// Schema returns the JSON schema of the step's data object
	Schema() map[string]any

	// DefaultData returns the data a freshly added step starts with
	DefaultData() models.StepData
}
