package web

import (
	"encoding/json"
	"errors"
	"log/slog"
	"reflect"

	"github.com/dukex/stepflow/pkg/persistence"
	"github.com/dukex/stepflow/pkg/services"
	"github.com/dukex/stepflow/pkg/validation"
	"github.com/gofiber/fiber/v3"
	"github.com/moogar0880/problems"
)

const internalErrorDetail = "An unexpected error occurred"

// validationProblem answers 400 with every rejected field.
func validationProblem(c fiber.Ctx, violations []validation.Violation) error {
	problem := ValidationProblem{
		Problem: problems.NewStatusProblem(400).
			WithInstance(c.Path()).
			WithType("validation_error").
			WithDetail("Request validation failed"),
		Errors: violations,
	}

	return c.Status(fiber.StatusBadRequest).JSON(problem)
}

func notFound(c fiber.Ctx, problemType, detail string) error {
	problem := problems.NewStatusProblem(404).
		WithInstance(c.Path()).
		WithType(problemType).
		WithDetail(detail)

	return c.Status(fiber.StatusNotFound).JSON(problem)
}

// internalError logs err and answers with a generic problem that leaks nothing.
func internalError(c fiber.Ctx, logger *slog.Logger, err error) error {
	logger.ErrorContext(c.Context(), "Request failed",
		slog.String("method", c.Method()),
		slog.String("path", c.Path()),
		slog.Any("error", err),
	)

	problem := problems.NewStatusProblem(500).
		WithInstance(c.Path()).
		WithType("internal_error").
		WithDetail(internalErrorDetail)

	return c.Status(fiber.StatusInternalServerError).JSON(problem)
}

// handleServiceError provides typed error handling for service layer errors.
func handleServiceError(c fiber.Ctx, logger *slog.Logger, err error) error {
	switch {
	case services.IsValidationError(err):
		return validationProblem(c, services.Violations(err))

	case services.IsConflictError(err):
		detail := services.ErrEmailTaken.Error()
		if errors.Is(err, services.ErrUsernameTaken) {
			detail = services.ErrUsernameTaken.Error()
		}

		problem := problems.NewStatusProblem(400).
			WithInstance(c.Path()).
			WithType("user_exists").
			WithDetail(detail)

		return c.Status(fiber.StatusBadRequest).JSON(problem)

	case persistence.IsWorkflowNotFound(err):
		return notFound(c, "workflow_not_found", "Workflow not found")

	case persistence.IsUserNotFound(err):
		return notFound(c, "user_not_found", "User not found")

	default:
		return internalError(c, logger, err)
	}
}

// handleExecuteError reports domain failures of an execution as 400 with the
// failure's message; anything else is a 500.
func handleExecuteError(c fiber.Ctx, logger *slog.Logger, err error) error {
	if persistence.IsWorkflowNotFound(err) {
		return executionError(c, "Workflow not found")
	}

	return internalError(c, logger, err)
}

func executionError(c fiber.Ctx, detail string) error {
	problem := problems.NewStatusProblem(400).
		WithInstance(c.Path()).
		WithType("execution_error").
		WithDetail(detail)

	return c.Status(fiber.StatusBadRequest).JSON(problem)
}

// bindJSON decodes the request body into out. Malformed or wrongly typed input
// is reported as violations instead of decoder internals.
func bindJSON(c fiber.Ctx, out any) []validation.Violation {
	err := c.App().Config().JSONDecoder(c.Body(), out)
	if err == nil {
		return nil
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		field := typeErr.Field
		if field == "" {
			field = "(root)"
		}

		return []validation.Violation{{
			Field:   field,
			Rule:    "invalid_type",
			Message: "must be " + jsonKind(typeErr.Type) + ", got " + typeErr.Value,
		}}
	}

	return []validation.Violation{{
		Field:   "(root)",
		Rule:    "invalid_json",
		Message: "request body must be a valid JSON object",
	}}
}

func jsonKind(t reflect.Type) string {
	if t == nil {
		return "a valid value"
	}

	switch t.Kind() {
	case reflect.String:
		return "a string"
	case reflect.Bool:
		return "a boolean"
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return "a number"
	case reflect.Slice, reflect.Array:
		return "an array"
	case reflect.Map, reflect.Struct:
		return "an object"
	case reflect.Pointer:
		return jsonKind(t.Elem())
	default:
		return "a valid value"
	}
}
