// Package registry keeps the catalog of step types the editor and the API offer.
package registry

import (
	"log/slog"
	"slices"
	"strings"
	"sync"

	"github.com/dukex/stepflow/pkg/models"
	"github.com/dukex/stepflow/pkg/protocol"
	"github.com/dukex/stepflow/pkg/steps"
)

type Registry struct {
	logger    *slog.Logger
	mu        sync.RWMutex
	factories map[models.StepType]protocol.StepFactory
}

func NewRegistry(log *slog.Logger) *Registry {
	return &Registry{
		logger:    log,
		factories: make(map[models.StepType]protocol.StepFactory),
	}
}

// Register adds factory, replacing any factory with the same id.
func (r *Registry) Register(factory protocol.StepFactory) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.factories[factory.ID()]; exists {
		r.logger.Warn("Replacing step factory", slog.String("step_type", string(factory.ID())))
	}

	r.factories[factory.ID()] = factory
}

// RegisterDefaultSteps registers all built-in step factories.
func (r *Registry) RegisterDefaultSteps() {
	for _, factory := range steps.Defaults() {
		r.Register(factory)
	}

	r.logger.Debug("Registered default steps", slog.Int("count", len(r.factories)))
}

// Step returns the factory registered for stepType.
func (r *Registry) Step(stepType models.StepType) (protocol.StepFactory, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	factory, ok := r.factories[stepType]

	return factory, ok
}

// Steps returns every registered factory, built-in types first in palette
// order followed by the rest sorted by id.
func (r *Registry) Steps() []protocol.StepFactory {
	r.mu.RLock()
	defer r.mu.RUnlock()

	factories := make([]protocol.StepFactory, 0, len(r.factories))
	for _, factory := range r.factories {
		factories = append(factories, factory)
	}

	slices.SortFunc(factories, func(a, b protocol.StepFactory) int {
		ai, bi := paletteIndex(a.ID()), paletteIndex(b.ID())
		if ai != bi {
			return ai - bi
		}

		return strings.Compare(string(a.ID()), string(b.ID()))
	})

	return factories
}

// Components describes every registered step type.
func (r *Registry) Components() []models.RegisteredComponent {
	factories := r.Steps()

	components := make([]models.RegisteredComponent, 0, len(factories))
	for _, factory := range factories {
		components = append(components, models.RegisteredComponent{
			Type:        factory.ID(),
			Name:        factory.Name(),
			Description: factory.Description(),
			Schema:      factory.Schema(),
		})
	}

	return components
}

// HealthCheck reports unhealthy until every built-in step type is registered.
func (r *Registry) HealthCheck() (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, stepType := range models.StepTypes {
		if _, ok := r.factories[stepType]; !ok {
			return "step type " + string(stepType) + " not registered", false
		}
	}

	return "ok", true
}

func paletteIndex(stepType models.StepType) int {
	if i := slices.Index(models.StepTypes, stepType); i >= 0 {
		return i
	}

	return len(models.StepTypes)
}
