package models

import (
	"fmt"
	"maps"

	"github.com/go-viper/mapstructure/v2"
)

// StepData is the type-specific configuration of a step. Each built-in step
// type has its own variant; unknown types fall back to UnknownData.
type StepData interface {
	// StepType returns the step type this configuration belongs to.
	StepType() StepType
	// Map flattens the configuration into the persisted key/value shape.
	Map() map[string]any

	clone() StepData
}

// StartData configures the entry step. It carries no typed fields.
type StartData struct {
	Extra map[string]any `json:"-" mapstructure:",remain"`
}

// EndData configures the terminal step. It carries no typed fields.
type EndData struct {
	Extra map[string]any `json:"-" mapstructure:",remain"`
}

// APICallData configures an outbound HTTP call.
type APICallData struct {
	Endpoint string         `json:"endpoint,omitempty" mapstructure:"endpoint"`
	Method   string         `json:"method,omitempty"   mapstructure:"method"`
	Extra    map[string]any `json:"-"                  mapstructure:",remain"`
}

// EmailData configures an outbound email.
type EmailData struct {
	To      string         `json:"to,omitempty"      mapstructure:"to"`
	Subject string         `json:"subject,omitempty" mapstructure:"subject"`
	Body    string         `json:"body,omitempty"    mapstructure:"body"`
	Extra   map[string]any `json:"-"                 mapstructure:",remain"`
}

// TextBoxData holds free text shown on the canvas.
type TextBoxData struct {
	Text  string         `json:"text,omitempty" mapstructure:"text"`
	Extra map[string]any `json:"-"              mapstructure:",remain"`
}

// ConditionData holds the branching expression of a condition step.
type ConditionData struct {
	Expression string         `json:"expression,omitempty" mapstructure:"expression"`
	Extra      map[string]any `json:"-"                    mapstructure:",remain"`
}

// UnknownData keeps the raw configuration of a step type this build does not know.
type UnknownData struct {
	Kind   StepType
	Values map[string]any
}

func (StartData) StepType() StepType     { return StepTypeStart }
func (EndData) StepType() StepType       { return StepTypeEnd }
func (APICallData) StepType() StepType   { return StepTypeAPICall }
func (EmailData) StepType() StepType     { return StepTypeEmail }
func (TextBoxData) StepType() StepType   { return StepTypeTextBox }
func (ConditionData) StepType() StepType { return StepTypeCondition }
func (d UnknownData) StepType() StepType { return d.Kind }

func (d StartData) Map() map[string]any { return flatten(d.Extra, nil) }
func (d EndData) Map() map[string]any   { return flatten(d.Extra, nil) }

func (d APICallData) Map() map[string]any {
	return flatten(d.Extra, map[string]string{"endpoint": d.Endpoint, "method": d.Method})
}

func (d EmailData) Map() map[string]any {
	return flatten(d.Extra, map[string]string{"to": d.To, "subject": d.Subject, "body": d.Body})
}

func (d TextBoxData) Map() map[string]any {
	return flatten(d.Extra, map[string]string{"text": d.Text})
}

func (d ConditionData) Map() map[string]any {
	return flatten(d.Extra, map[string]string{"expression": d.Expression})
}

func (d UnknownData) Map() map[string]any { return flatten(d.Values, nil) }

func (d StartData) clone() StepData     { d.Extra = maps.Clone(d.Extra); return d }
func (d EndData) clone() StepData       { d.Extra = maps.Clone(d.Extra); return d }
func (d APICallData) clone() StepData   { d.Extra = maps.Clone(d.Extra); return d }
func (d EmailData) clone() StepData     { d.Extra = maps.Clone(d.Extra); return d }
func (d TextBoxData) clone() StepData   { d.Extra = maps.Clone(d.Extra); return d }
func (d ConditionData) clone() StepData { d.Extra = maps.Clone(d.Extra); return d }
func (d UnknownData) clone() StepData   { d.Values = maps.Clone(d.Values); return d }

// flatten merges typed fields over extra keys, skipping empty typed values.
// Empty typed values that were sent explicitly live in extra, see keepEmpty.
func flatten(extra map[string]any, typed map[string]string) map[string]any {
	out := make(map[string]any, len(extra)+len(typed))
	maps.Copy(out, extra)

	for key, value := range typed {
		if value != "" {
			out[key] = value
		}
	}

	return out
}

// DecodeStepData converts a raw data object into the variant for stepType.
// A nil object yields the zero variant.
func DecodeStepData(stepType StepType, raw map[string]any) (StepData, error) {
	if raw == nil {
		raw = map[string]any{}
	}

	var target StepData

	switch stepType {
	case StepTypeStart:
		target = &StartData{}
	case StepTypeEnd:
		target = &EndData{}
	case StepTypeAPICall:
		target = &APICallData{}
	case StepTypeEmail:
		target = &EmailData{}
	case StepTypeTextBox:
		target = &TextBoxData{}
	case StepTypeCondition:
		target = &ConditionData{}
	default:
		return UnknownData{Kind: stepType, Values: maps.Clone(raw)}, nil
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:    target,
		MatchName: func(mapKey, fieldName string) bool { return mapKey == fieldName },
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create %s step data decoder: %w", stepType, err)
	}

	if err := decoder.Decode(raw); err != nil {
		return nil, fmt.Errorf("invalid %s step data: %w", stepType, err)
	}

	switch d := target.(type) {
	case *APICallData:
		d.Extra = keepEmpty(d.Extra, raw, "endpoint", "method")
	case *EmailData:
		d.Extra = keepEmpty(d.Extra, raw, "to", "subject", "body")
	case *TextBoxData:
		d.Extra = keepEmpty(d.Extra, raw, "text")
	case *ConditionData:
		d.Extra = keepEmpty(d.Extra, raw, "expression")
	}

	return deref(target), nil
}

// keepEmpty copies typed keys sent as empty strings into extra so that
// flatten writes them back.
func keepEmpty(extra, raw map[string]any, keys ...string) map[string]any {
	for _, key := range keys {
		if value, ok := raw[key].(string); ok && value == "" {
			if extra == nil {
				extra = map[string]any{}
			}

			extra[key] = ""
		}
	}

	return extra
}

func deref(data StepData) StepData {
	switch d := data.(type) {
	case *StartData:
		return *d
	case *EndData:
		return *d
	case *APICallData:
		return *d
	case *EmailData:
		return *d
	case *TextBoxData:
		return *d
	case *ConditionData:
		return *d
	default:
		return data
	}
}
