// Package validation checks request payloads before they reach the store.
// Struct shapes are declared with validator tags; step data is checked against
// the JSON schema of its step type.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/dukex/stepflow/pkg/models"
	"github.com/dukex/stepflow/pkg/protocol"
	"github.com/go-playground/validator/v10"
	"github.com/xeipuuv/gojsonschema"
)

// Violation is one field-level validation failure.
type Violation struct {
	Field   string `json:"field"`
	Rule    string `json:"rule"`
	Message string `json:"message"`
}

func (v Violation) String() string {
	return v.Field + ": " + v.Message
}

// SchemaSource resolves the factory, and so the data schema, of a step type.
type SchemaSource interface {
	Step(stepType models.StepType) (protocol.StepFactory, bool)
}

type Validator struct {
	validate *validator.Validate
	schemas  SchemaSource
}

// New creates a Validator. Step types are accepted when schemas knows them.
func New(schemas SchemaSource) *Validator {
	validate := validator.New(validator.WithRequiredStructEnabled())

	validate.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}

		if name == "" {
			return field.Name
		}

		return name
	})

	v := &Validator{validate: validate, schemas: schemas}

	_ = validate.RegisterValidation("step_type", v.isRegisteredStepType)
	_ = validate.RegisterValidation("workflow_status", isWorkflowStatus)
	_ = validate.RegisterValidation("max_bytes", hasMaxBytes)

	return v
}

// Engine exposes the underlying validator, e.g. for fiber's struct validator hook.
func (v *Validator) Engine() *validator.Validate {
	return v.validate
}

// Struct validates s against its validate tags.
func (v *Validator) Struct(s any) []Violation {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrors validator.ValidationErrors
	if !errors.As(err, &fieldErrors) {
		return []Violation{{Field: "(root)", Rule: "invalid", Message: err.Error()}}
	}

	violations := make([]Violation, 0, len(fieldErrors))
	for _, fe := range fieldErrors {
		violations = append(violations, Violation{
			Field:   fieldPath(fe.Namespace()),
			Rule:    fe.Tag(),
			Message: message(fe),
		})
	}

	return violations
}

// Steps validates the data of every step against its type's schema.
func (v *Validator) Steps(field string, steps []models.Step) []Violation {
	var violations []Violation

	for i, step := range steps {
		violations = append(violations, v.StepData(fmt.Sprintf("%s[%d].data", field, i), step.Type, step.Data)...)
	}

	return violations
}

// StepData validates data against the schema registered for stepType. Types
// without a registered factory are reported by Struct, so they pass here.
func (v *Validator) StepData(field string, stepType models.StepType, data models.StepData) []Violation {
	if v.schemas == nil {
		return nil
	}

	factory, ok := v.schemas.Step(stepType)
	if !ok {
		return nil
	}

	document := map[string]any{}
	if data != nil {
		document = data.Map()
	}

	result, err := gojsonschema.Validate(
		gojsonschema.NewGoLoader(factory.Schema()),
		gojsonschema.NewGoLoader(document),
	)
	if err != nil {
		return []Violation{{Field: field, Rule: "schema", Message: err.Error()}}
	}

	if result.Valid() {
		return nil
	}

	violations := make([]Violation, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		path := field
		if desc.Field() != "(root)" {
			path = field + "." + desc.Field()
		}

		violations = append(violations, Violation{
			Field:   path,
			Rule:    desc.Type(),
			Message: desc.Description(),
		})
	}

	return violations
}

func (v *Validator) isRegisteredStepType(fl validator.FieldLevel) bool {
	stepType := models.StepType(fl.Field().String())
	if v.schemas == nil {
		return stepType.IsKnown()
	}

	_, ok := v.schemas.Step(stepType)

	return ok
}

func isWorkflowStatus(fl validator.FieldLevel) bool {
	return models.WorkflowStatus(fl.Field().String()).IsValid()
}

// hasMaxBytes bounds the encoded length of a string, unlike max which counts runes.
func hasMaxBytes(fl validator.FieldLevel) bool {
	limit, err := strconv.Atoi(fl.Param())
	if err != nil {
		return false
	}

	return len(fl.Field().String()) <= limit
}

// fieldPath drops the top level struct name from a validator namespace.
func fieldPath(namespace string) string {
	if _, rest, found := strings.Cut(namespace, "."); found {
		return rest
	}

	return namespace
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		if fe.Kind() == reflect.String {
			return "must be at least " + fe.Param() + " characters long"
		}

		return "must contain at least " + fe.Param() + " items"
	case "max":
		if fe.Kind() == reflect.String {
			return "must be at most " + fe.Param() + " characters long"
		}

		return "must contain at most " + fe.Param() + " items"
	case "max_bytes":
		return "must be at most " + fe.Param() + " bytes long"
	case "email":
		return "must be a valid email address"
	case "alphanum":
		return "must contain only letters and digits"
	case "step_type":
		return fmt.Sprintf("unknown step type %q", fe.Value())
	case "workflow_status":
		return fmt.Sprintf("must be one of draft, passed, failed (got %q)", fe.Value())
	default:
		return "failed on the '" + fe.Tag() + "' rule"
	}
}
