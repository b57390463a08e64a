// Package editor builds and edits a workflow graph before it is saved.
//
// A Draft always starts with a start step and an end step. Added steps are
// stacked vertically between them and the end step is pushed down to make room.
package editor

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/dukex/stepflow/pkg/models"
	"github.com/dukex/stepflow/pkg/services"
	"github.com/dukex/stepflow/pkg/validation"
	"github.com/google/uuid"
)

// Fixed ids of the boundary steps of a new draft.
const (
	StartStepID = "start"
	EndStepID   = "end"
)

// Canvas layout of a new draft.
var (
	StartPosition = models.Position{X: 250, Y: 50}
	EndPosition   = models.Position{X: 250, Y: 400}
)

const (
	stepSpacing   = 120
	minNameLength = 3
)

var (
	ErrStepNotFound    = errors.New("step not found")
	ErrUnknownStepType = errors.New("unknown step type")
	ErrBoundaryStep    = errors.New("start and end steps are managed by the editor")
	ErrDataMismatch    = errors.New("step data does not match step type")
)

type Draft struct {
	Name string

	steps       []models.Step
	connections []models.Connection
	newID       func() string
}

// NewDraft creates a draft holding only the start and end steps.
func NewDraft(name string) *Draft {
	return &Draft{
		Name: name,
		steps: []models.Step{
			{ID: StartStepID, Type: models.StepTypeStart, Position: StartPosition, Data: models.StartData{}},
			{ID: EndStepID, Type: models.StepTypeEnd, Position: EndPosition, Data: models.EndData{}},
		},
		connections: []models.Connection{},
		newID:       uuid.NewString,
	}
}

// Load rebuilds a draft from a saved workflow. The workflow is not modified.
func Load(workflow *models.Workflow) *Draft {
	clone := workflow.Clone()

	return &Draft{
		Name:        clone.Name,
		steps:       clone.Steps,
		connections: clone.Connections,
		newID:       uuid.NewString,
	}
}

// AddStep appends a step of stepType below the existing ones. A nil data
// uses the empty configuration of the type.
func (d *Draft) AddStep(stepType models.StepType, data models.StepData) (models.Step, error) {
	if !stepType.IsKnown() {
		return models.Step{}, fmt.Errorf("%w: %q", ErrUnknownStepType, stepType)
	}

	if isBoundary(stepType) {
		return models.Step{}, ErrBoundaryStep
	}

	if data == nil {
		var err error

		data, err = models.DecodeStepData(stepType, nil)
		if err != nil {
			return models.Step{}, err
		}
	}

	if data.StepType() != stepType {
		return models.Step{}, fmt.Errorf("%w: %s data for a %s step", ErrDataMismatch, data.StepType(), stepType)
	}

	count := d.innerSteps()
	step := models.Step{
		ID:       d.newID(),
		Type:     stepType,
		Position: models.Position{X: StartPosition.X, Y: StartPosition.Y + stepSpacing*float64(count+1)},
		Data:     data,
	}

	if i := d.index(EndStepID); i >= 0 {
		d.steps[i].Position.Y = StartPosition.Y + stepSpacing*float64(count+2)
	}

	d.steps = append(d.steps, step)

	return step.Clone(), nil
}

// Connect adds the edge source -> target. Connecting an already connected
// pair returns the existing edge.
func (d *Draft) Connect(source, target string) (models.Connection, error) {
	for _, id := range []string{source, target} {
		if d.index(id) < 0 {
			return models.Connection{}, fmt.Errorf("%w: %q", ErrStepNotFound, id)
		}
	}

	id := "e" + source + "-" + target
	for _, connection := range d.connections {
		if connection.ID == id || (connection.Source == source && connection.Target == target) {
			return connection, nil
		}
	}

	connection := models.Connection{ID: id, Source: source, Target: target}
	d.connections = append(d.connections, connection)

	return connection, nil
}

// Disconnect removes the edge source -> target if present.
func (d *Draft) Disconnect(source, target string) bool {
	before := len(d.connections)
	d.connections = slices.DeleteFunc(d.connections, func(c models.Connection) bool {
		return c.Source == source && c.Target == target
	})

	return len(d.connections) != before
}

// RemoveStep drops the step and every connection touching it.
func (d *Draft) RemoveStep(id string) error {
	i := d.index(id)
	if i < 0 {
		return fmt.Errorf("%w: %q", ErrStepNotFound, id)
	}

	if isBoundary(d.steps[i].Type) {
		return ErrBoundaryStep
	}

	d.steps = slices.Delete(d.steps, i, i+1)
	d.connections = slices.DeleteFunc(d.connections, func(c models.Connection) bool {
		return c.Source == id || c.Target == id
	})

	return nil
}

// Validate reports structural problems that would make the saved graph unusable.
func (d *Draft) Validate() []validation.Violation {
	var violations []validation.Violation

	if len(strings.TrimSpace(d.Name)) < minNameLength {
		violations = append(violations, validation.Violation{
			Field:   "name",
			Rule:    "min",
			Message: fmt.Sprintf("Workflow name must be at least %d characters", minNameLength),
		})
	}

	seen := make(map[string]bool, len(d.steps))
	counts := map[models.StepType]int{}

	for i, step := range d.steps {
		counts[step.Type]++

		if seen[step.ID] {
			violations = append(violations, validation.Violation{
				Field:   fmt.Sprintf("steps[%d].id", i),
				Rule:    "unique",
				Message: fmt.Sprintf("duplicate step id %q", step.ID),
			})
		}

		seen[step.ID] = true
	}

	for _, stepType := range []models.StepType{models.StepTypeStart, models.StepTypeEnd} {
		if counts[stepType] != 1 {
			violations = append(violations, validation.Violation{
				Field:   "steps",
				Rule:    "boundary",
				Message: fmt.Sprintf("must contain exactly one %s step, found %d", stepType, counts[stepType]),
			})
		}
	}

	for i, connection := range d.connections {
		if !seen[connection.Source] {
			violations = append(violations, danglingEnd(i, "source", connection.Source))
		}

		if !seen[connection.Target] {
			violations = append(violations, danglingEnd(i, "target", connection.Target))
		}
	}

	return violations
}

// Steps returns a copy of the steps in insertion order.
func (d *Draft) Steps() []models.Step {
	steps := make([]models.Step, len(d.steps))
	for i, step := range d.steps {
		steps[i] = step.Clone()
	}

	return steps
}

// Connections returns a copy of the connections in insertion order.
func (d *Draft) Connections() []models.Connection {
	connections := slices.Clone(d.connections)
	if connections == nil {
		connections = []models.Connection{}
	}

	return connections
}

// CreateInput is the payload that saves the draft as a new workflow.
func (d *Draft) CreateInput() services.CreateWorkflowInput {
	return services.CreateWorkflowInput{
		Name:        d.Name,
		Steps:       d.Steps(),
		Connections: d.Connections(),
	}
}

// UpdateInput is the payload that overwrites a saved workflow with the draft.
func (d *Draft) UpdateInput() services.UpdateWorkflowInput {
	name := d.Name
	steps := d.Steps()
	connections := d.Connections()

	return services.UpdateWorkflowInput{
		Name:        &name,
		Steps:       &steps,
		Connections: &connections,
	}
}

func danglingEnd(i int, field, id string) validation.Violation {
	return validation.Violation{
		Field:   fmt.Sprintf("connections[%d].%s", i, field),
		Rule:    "exists",
		Message: fmt.Sprintf("references unknown step %q", id),
	}
}

func (d *Draft) index(id string) int {
	return slices.IndexFunc(d.steps, func(s models.Step) bool {
		return s.ID == id
	})
}

func (d *Draft) innerSteps() int {
	count := 0

	for _, step := range d.steps {
		if !isBoundary(step.Type) {
			count++
		}
	}

	return count
}

func isBoundary(stepType models.StepType) bool {
	return stepType == models.StepTypeStart || stepType == models.StepTypeEnd
}
