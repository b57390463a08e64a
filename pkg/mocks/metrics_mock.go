package mocks

import (
	"github.com/dukex/stepflow/pkg/models"
	"github.com/stretchr/testify/mock"
)

// MockRecorder is a mock implementation of metrics.Recorder interface.
type MockRecorder struct {
	mock.Mock
}

func (m *MockRecorder) WorkflowExecuted(status models.WorkflowStatus) {
	m.Called(status)
}

func (m *MockRecorder) WorkflowOperation(operation string) {
	m.Called(operation)
}
