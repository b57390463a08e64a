package models

import (
	"encoding/json"
	"slices"
)

// StepType identifies the kind of node a step is.
type StepType string

const (
	StepTypeStart     StepType = "start"
	StepTypeEnd       StepType = "end"
	StepTypeAPICall   StepType = "api_call"
	StepTypeEmail     StepType = "email"
	StepTypeTextBox   StepType = "text_box"
	StepTypeCondition StepType = "condition"
)

// StepTypes lists the built-in step types in palette order.
var StepTypes = []StepType{
	StepTypeStart,
	StepTypeEnd,
	StepTypeAPICall,
	StepTypeEmail,
	StepTypeTextBox,
	StepTypeCondition,
}

// IsKnown reports whether t is one of the built-in step types.
func (t StepType) IsKnown() bool {
	return slices.Contains(StepTypes, t)
}

// Position is the canvas location of a step.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Step is a typed node of a workflow graph. Its ID is assigned by the caller
// and only needs to be unique within the owning workflow.
type Step struct {
	ID       string   `json:"id"       validate:"required,max=128"`
	Type     StepType `json:"type"     validate:"required,step_type"`
	Position Position `json:"position"`
	Data     StepData `json:"data"`
}

type stepJSON struct {
	ID       string         `json:"id"`
	Type     StepType       `json:"type"`
	Position Position       `json:"position"`
	Data     map[string]any `json:"data"`
}

// MarshalJSON writes the step with its data flattened to an object.
func (s Step) MarshalJSON() ([]byte, error) {
	data := map[string]any{}
	if s.Data != nil {
		data = s.Data.Map()
	}

	return json.Marshal(stepJSON{
		ID:       s.ID,
		Type:     s.Type,
		Position: s.Position,
		Data:     data,
	})
}

// UnmarshalJSON reads a step and decodes its data into the variant matching its
// type. Data that does not fit the variant is kept as UnknownData so that schema
// validation can report the offending fields.
func (s *Step) UnmarshalJSON(b []byte) error {
	var raw stepJSON
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}

	data, err := DecodeStepData(raw.Type, raw.Data)
	if err != nil {
		data = UnknownData{Kind: raw.Type, Values: raw.Data}
	}

	s.ID = raw.ID
	s.Type = raw.Type
	s.Position = raw.Position
	s.Data = data

	return nil
}

// Clone returns a copy of the step that shares no mutable state with s.
func (s Step) Clone() Step {
	if s.Data != nil {
		s.Data = s.Data.clone()
	}

	return s
}

// Connection is a directed edge between two steps, referenced by id.
type Connection struct {
	ID     string `json:"id"     validate:"required,max=256"`
	Source string `json:"source" validate:"required"`
	Target string `json:"target" validate:"required"`
}
