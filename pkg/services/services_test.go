package services

import (
	"log/slog"
	"testing"

	"github.com/dukex/stepflow/pkg/persistence/memory"
	"github.com/dukex/stepflow/pkg/registry"
	"github.com/dukex/stepflow/pkg/validation"
)

func newTestValidator() *validation.Validator {
	reg := registry.NewRegistry(slog.Default())
	reg.RegisterDefaultSteps()

	return validation.New(reg)
}

func newTestStore(t *testing.T, opts ...memory.Option) *memory.Persistence {
	t.Helper()

	store := memory.NewPersistence(opts...)
	t.Cleanup(func() { _ = store.Close(t.Context()) })

	return store
}
