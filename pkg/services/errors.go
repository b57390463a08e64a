// Package services provides standardized error types for service layer operations.
package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dukex/stepflow/pkg/persistence"
	"github.com/dukex/stepflow/pkg/validation"
)

// Business Logic Errors - These indicate client errors (4xx responses).
var (
	// Validation Errors (400 Bad Request).
	ErrInvalidRequest    = errors.New("invalid request")
	ErrInvalidWorkflowID = errors.New("invalid workflow id")

	// Duplicate user data (400 Bad Request).
	ErrEmailTaken    = errors.New("User with this email already exists")
	ErrUsernameTaken = errors.New("User with this username already exists")

	// ErrWorkflowNotFound is returned when a workflow is not found.
	ErrWorkflowNotFound = persistence.ErrWorkflowNotFound
)

// ServiceError wraps service-level errors with additional context.
type ServiceError struct {
	Op      string // Operation name
	Code    string // Error code for API responses
	Message string // Human-readable message
	Err     error  // Underlying error
}

func (e *ServiceError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: %s", e.Op, e.Message)
	}

	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}

func (e *ServiceError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// ValidationError reports every field-level violation of a rejected payload.
type ValidationError struct {
	Op         string
	Violations []validation.Violation
}

func (e *ValidationError) Error() string {
	messages := make([]string, 0, len(e.Violations))
	for _, violation := range e.Violations {
		messages = append(messages, violation.String())
	}

	return fmt.Sprintf("%s: %v: %s", e.Op, ErrInvalidRequest, strings.Join(messages, "; "))
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidRequest
}

// IsValidationError checks if an error is a validation error that should return HTTP 400.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidRequest) ||
		errors.Is(err, ErrInvalidWorkflowID)
}

// IsConflictError checks if an error reports data that already exists.
func IsConflictError(err error) bool {
	return errors.Is(err, ErrEmailTaken) ||
		errors.Is(err, ErrUsernameTaken)
}

// Violations returns the field-level violations carried by err, if any.
func Violations(err error) []validation.Violation {
	var validationErr *ValidationError
	if errors.As(err, &validationErr) {
		return validationErr.Violations
	}

	return nil
}

// NewValidationError creates a new validation error with context.
func NewValidationError(op, code, message string, err error) *ServiceError {
	return &ServiceError{
		Op:      op,
		Code:    code,
		Message: message,
		Err:     err,
	}
}

func newViolationsError(op string, violations []validation.Violation) error {
	if len(violations) == 0 {
		return nil
	}

	return &ValidationError{Op: op, Violations: violations}
}
