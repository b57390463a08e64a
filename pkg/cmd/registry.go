// Package cmd provides common initialization functions for command-line applications.
package cmd

import (
	"log/slog"

	"github.com/dukex/stepflow/pkg/registry"
)

// NewRegistry creates a registry holding the built-in step types.
func NewRegistry(log *slog.Logger) *registry.Registry {
	reg := registry.NewRegistry(log)
	reg.RegisterDefaultSteps()

	return reg
}
