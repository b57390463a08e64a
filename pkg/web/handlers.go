// Package web provides HTTP handlers and REST API endpoints for workflow management.
package web

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/dukex/stepflow/pkg/auth"
	"github.com/dukex/stepflow/pkg/models"
	"github.com/dukex/stepflow/pkg/registry"
	"github.com/dukex/stepflow/pkg/services"
	"github.com/gofiber/fiber/v3"
)

type APIHandlers struct {
	workflowService *services.Workflow
	userService     *services.User
	registry        *registry.Registry
	logger          *slog.Logger
}

func NewAPIHandlers(
	workflowService *services.Workflow,
	userService *services.User,
	registry *registry.Registry,
	logger *slog.Logger,
) *APIHandlers {
	return &APIHandlers{
		workflowService: workflowService,
		userService:     userService,
		registry:        registry,
		logger:          logger,
	}
}

// Health answers the minimal liveness probe.
func (h *APIHandlers) Health(c fiber.Ctx) error {
	return c.JSON(HealthResponse{Status: "ok"})
}

// HealthCheck reports the registry and repository checks.
func (h *APIHandlers) HealthCheck(c fiber.Ctx) error {
	registryCheck, regOk := h.registry.HealthCheck()
	repositoryCheck, repOk := h.workflowService.HealthCheck(c.Context())

	status := "unhealthy"
	message := "Stepflow API is unhealthy"
	httpStatus := http.StatusInternalServerError

	if regOk && repOk {
		status = "healthy"
		message = "Stepflow API is healthy"
		httpStatus = http.StatusOK
	}

	return c.Status(httpStatus).JSON(fiber.Map{
		"status":  status,
		"message": message,
		"checkers": fiber.Map{
			"registry":   registryCheck,
			"repository": repositoryCheck,
		},
		"timestamp": time.Now().UTC(),
	})
}

func (h *APIHandlers) CreateUser(c fiber.Ctx) error {
	var req CreateUserRequest
	if violations := bindJSON(c, &req); violations != nil {
		return validationProblem(c, violations)
	}

	user, err := h.userService.Create(c.Context(), req)
	if err != nil {
		return handleServiceError(c, h.logger, err)
	}

	return c.Status(fiber.StatusCreated).JSON(user)
}

func (h *APIHandlers) GetUser(c fiber.Ctx) error {
	id, ok := parseID(c)
	if !ok {
		return notFound(c, "user_not_found", "User not found")
	}

	user, err := h.userService.FetchByID(c.Context(), id)
	if err != nil {
		return handleServiceError(c, h.logger, err)
	}

	return c.JSON(user)
}

// GetStepTypes lists the step types the editor palette offers.
func (h *APIHandlers) GetStepTypes(c fiber.Ctx) error {
	return c.JSON(h.registry.Components())
}

func (h *APIHandlers) GetWorkflows(c fiber.Ctx) error {
	workflows, err := h.workflowService.List(c.Context(), auth.UserID(c))
	if err != nil {
		return handleServiceError(c, h.logger, err)
	}

	return c.JSON(workflows)
}

func (h *APIHandlers) GetWorkflow(c fiber.Ctx) error {
	id, ok := parseID(c)
	if !ok {
		return notFound(c, "workflow_not_found", "Workflow not found")
	}

	workflow, err := h.workflowService.FetchByID(c.Context(), id)
	if err != nil {
		return handleServiceError(c, h.logger, err)
	}

	return c.JSON(workflow)
}

func (h *APIHandlers) CreateWorkflow(c fiber.Ctx) error {
	var req CreateWorkflowRequest
	if violations := bindJSON(c, &req); violations != nil {
		return validationProblem(c, violations)
	}

	created, err := h.workflowService.Create(c.Context(), auth.UserID(c), req)
	if err != nil {
		return handleServiceError(c, h.logger, err)
	}

	return c.Status(fiber.StatusCreated).JSON(created)
}

func (h *APIHandlers) UpdateWorkflow(c fiber.Ctx) error {
	id, ok := parseID(c)
	if !ok {
		return notFound(c, "workflow_not_found", "Workflow not found")
	}

	var req UpdateWorkflowRequest
	if violations := bindJSON(c, &req); violations != nil {
		return validationProblem(c, violations)
	}

	updated, err := h.workflowService.Update(c.Context(), id, req)
	if err != nil {
		return handleServiceError(c, h.logger, err)
	}

	return c.JSON(updated)
}

func (h *APIHandlers) DeleteWorkflow(c fiber.Ctx) error {
	id, ok := parseID(c)
	if !ok {
		return notFound(c, "workflow_not_found", "Workflow not found")
	}

	if err := h.workflowService.Delete(c.Context(), id); err != nil {
		return handleServiceError(c, h.logger, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func (h *APIHandlers) ExecuteWorkflow(c fiber.Ctx) error {
	id, ok := parseID(c)
	if !ok {
		return executionError(c, "Workflow not found")
	}

	execution, err := h.workflowService.Execute(c.Context(), id)
	if err != nil {
		return handleExecuteError(c, h.logger, err)
	}

	return c.JSON(execution)
}

func (h *APIHandlers) GetWorkflowExecutions(c fiber.Ctx) error {
	id, ok := parseID(c)
	if !ok {
		return c.JSON([]*models.WorkflowExecution{})
	}

	executions, err := h.workflowService.Executions(c.Context(), id)
	if err != nil {
		return handleServiceError(c, h.logger, err)
	}

	return c.JSON(executions)
}

// parseID reads the :id parameter. Ids that are not positive integers cannot
// name a stored record, so callers answer as if the record did not exist.
func parseID(c fiber.Ctx) (int64, bool) {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}

	return id, true
}
