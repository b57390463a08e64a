// Package web provides HTTP request and response types for the workflow API.
package web

import (
	"github.com/dukex/stepflow/pkg/services"
	"github.com/dukex/stepflow/pkg/validation"
	"github.com/moogar0880/problems"
)

// CreateWorkflowRequest is the body of POST /api/workflows. Unknown fields,
// including status and userId, are ignored.
type CreateWorkflowRequest = services.CreateWorkflowInput

// UpdateWorkflowRequest is the body of PUT /api/workflows/:id. Omitted fields keep their value.
type UpdateWorkflowRequest = services.UpdateWorkflowInput

// CreateUserRequest is the body of POST /api/users.
type CreateUserRequest = services.CreateUserInput

// HealthResponse is the body of the minimal health endpoint.
type HealthResponse struct {
	Status string `json:"status"`
}

// ValidationProblem is a problem document listing every rejected field.
type ValidationProblem struct {
	*problems.Problem

	Errors []validation.Violation `json:"errors"`
}
