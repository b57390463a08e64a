package models

// RegisteredComponent describes a step type available in the editor palette.
type RegisteredComponent struct {
	Type        StepType       `json:"type"`
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Schema      map[string]any `json:"schema"`
}
