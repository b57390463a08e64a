package memory

import (
	"math/rand/v2"

	"github.com/dukex/stepflow/pkg/models"
)

// DefaultSuccessRate is the probability that an execution passes.
const DefaultSuccessRate = 0.8

// Outcome draws the status of one execution. It is called with the store's
// write lock held, so implementations need no synchronization of their own.
type Outcome func() models.WorkflowStatus

// RandomOutcome passes with probability successRate using an independent draw per call.
// A nil rng uses the global generator.
func RandomOutcome(successRate float64, rng *rand.Rand) Outcome {
	draw := rand.Float64
	if rng != nil {
		draw = rng.Float64
	}

	return func() models.WorkflowStatus {
		if draw() < successRate {
			return models.WorkflowStatusPassed
		}

		return models.WorkflowStatusFailed
	}
}

// FixedOutcome always yields status.
func FixedOutcome(status models.WorkflowStatus) Outcome {
	return func() models.WorkflowStatus {
		return status
	}
}
