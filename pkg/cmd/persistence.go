package cmd

import (
	"fmt"

	"github.com/dukex/stepflow/pkg/persistence"
	"github.com/dukex/stepflow/pkg/persistence/memory"
)

// NewPersistence creates the process-local store. Executions pass with
// probability successRate, which must lie in [0, 1].
func NewPersistence(successRate float64) persistence.Persistence {
	if successRate < 0 || successRate > 1 {
		panic(fmt.Sprintf("execution success rate must be between 0 and 1, got %v", successRate))
	}

	return memory.NewPersistence(
		memory.WithOutcome(memory.RandomOutcome(successRate, nil)),
	)
}
