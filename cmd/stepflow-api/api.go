// Package main provides the Stepflow API server.
package main

import (
	"log/slog"
	"strconv"

	"github.com/dukex/stepflow/pkg/auth"
	"github.com/dukex/stepflow/pkg/eventbus"
	"github.com/dukex/stepflow/pkg/metrics"
	"github.com/dukex/stepflow/pkg/persistence"
	"github.com/dukex/stepflow/pkg/registry"
	"github.com/dukex/stepflow/pkg/services"
	"github.com/dukex/stepflow/pkg/validation"
	"github.com/dukex/stepflow/pkg/web"
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/healthcheck"
	"github.com/gofiber/fiber/v3/middleware/logger"
	recoverer "github.com/gofiber/fiber/v3/middleware/recover"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/crypto/bcrypt"
)

type API struct {
	logger      *slog.Logger
	persistence persistence.Persistence
	registry    *registry.Registry
	eventBus    eventbus.EventBus
	metrics     *metrics.Metrics
	tracer      trace.Tracer
	userID      int64
}

func NewAPI(
	logger *slog.Logger,
	persistence persistence.Persistence,
	registry *registry.Registry,
	eventBus eventbus.EventBus,
	metrics *metrics.Metrics,
	tracer trace.Tracer,
	userID int64,
) *API {
	return &API{
		logger:      logger,
		persistence: persistence,
		registry:    registry,
		eventBus:    eventBus,
		metrics:     metrics,
		tracer:      tracer,
		userID:      userID,
	}
}

func (a *API) App() *fiber.App {
	validator := validation.New(a.registry)

	workflowService := services.NewWorkflow(a.persistence, validator,
		services.WithEventBus(a.eventBus),
		services.WithMetrics(a.metrics),
		services.WithTracer(a.tracer),
		services.WithLogger(a.logger),
	)
	userService := services.NewUser(a.persistence, validator, bcrypt.DefaultCost)

	handlers := web.NewAPIHandlers(workflowService, userService, a.registry, a.logger)

	app := fiber.New(fiber.Config{AppName: "Stepflow API"})
	app.Use(recoverer.New())
	app.Use(cors.New())
	app.Use(logger.New(logger.Config{
		DisableColors: true,
	}))

	app.Get(healthcheck.DefaultLivenessEndpoint, healthcheck.NewHealthChecker())
	app.Get(healthcheck.DefaultReadinessEndpoint, healthcheck.NewHealthChecker())

	app.Get("/", func(c fiber.Ctx) error {
		return c.SendString("Stepflow API")
	})

	app.Get("/metrics", adaptor.HTTPHandler(a.metrics.Handler()))
	app.Get("/health", handlers.HealthCheck)

	web.RegisterRoutes(app.Group("/api"), handlers, auth.Gate(auth.Fixed(a.userID)))

	return app
}

func (a *API) Start(port int) error {
	app := a.App()

	return app.Listen(":" + strconv.Itoa(port))
}
