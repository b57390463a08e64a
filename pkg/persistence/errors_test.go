package persistence_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/dukex/stepflow/pkg/persistence"
	"github.com/stretchr/testify/assert"
)

func TestStandardizedErrors(t *testing.T) {
	t.Parallel()

	t.Run("error checking functions work correctly", func(t *testing.T) {
		workflowErr := persistence.NewWorkflowError("Execute", 42, persistence.ErrWorkflowNotFound)

		assert.True(t, persistence.IsWorkflowNotFound(workflowErr))
		assert.False(t, persistence.IsUserNotFound(workflowErr))
		assert.True(t, errors.Is(workflowErr, persistence.ErrWorkflowNotFound))
	})

	t.Run("wrapped errors are still detected", func(t *testing.T) {
		wrapped := fmt.Errorf("service: %w", persistence.NewWorkflowError("Execute", 1, persistence.ErrWorkflowNotFound))

		assert.True(t, persistence.IsWorkflowNotFound(wrapped))
	})

	t.Run("workflow error contains context", func(t *testing.T) {
		err := persistence.NewWorkflowError("Execute", 42, persistence.ErrWorkflowNotFound)

		assert.Contains(t, err.Error(), "Execute")
		assert.Contains(t, err.Error(), "42")
		assert.Contains(t, err.Error(), "workflow not found")
	})
}
