package web

import "github.com/gofiber/fiber/v3"

// RegisterRoutes mounts every endpoint under router. Workflow routes run
// behind gate, which supplies the caller identity.
func RegisterRoutes(router fiber.Router, handlers *APIHandlers, gate fiber.Handler) {
	router.Get("/health", handlers.Health)
	router.Get("/step-types", handlers.GetStepTypes)

	u := router.Group("/users")
	u.Post("/", handlers.CreateUser)
	u.Get("/:id", handlers.GetUser)

	w := router.Group("/workflows", gate)
	w.Get("/", handlers.GetWorkflows)
	w.Post("/", handlers.CreateWorkflow)
	w.Get("/:id", handlers.GetWorkflow)
	w.Put("/:id", handlers.UpdateWorkflow)
	w.Delete("/:id", handlers.DeleteWorkflow)
	w.Post("/:id/execute", handlers.ExecuteWorkflow)
	w.Get("/:id/executions", handlers.GetWorkflowExecutions)
}
