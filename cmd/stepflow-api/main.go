package main

import (
	"context"
	"os"

	"github.com/dukex/stepflow/pkg/cmd"
	"github.com/dukex/stepflow/pkg/events"
	"github.com/dukex/stepflow/pkg/log"
	"github.com/dukex/stepflow/pkg/metrics"
	"github.com/dukex/stepflow/pkg/persistence/memory"
	cli "github.com/urfave/cli/v3"
)

const (
	defaultPort   = 9091
	defaultUserID = 1
	serviceName   = "stepflow-api"
)

func main() {
	logger := log.WithModule("api")

	app := &cli.Command{
		Name:                  serviceName,
		Usage:                 "Create, edit and execute step workflows",
		EnableShellCompletion: true,
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Usage:   "Port to run the API server on",
				Value:   defaultPort,
				Sources: cli.EnvVars("PORT"),
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level (debug, info, warn, error)",
				Value:   "info",
				Sources: cli.EnvVars("LOG_LEVEL"),
			},
			&cli.StringFlag{
				Name:    "event-bus",
				Usage:   "Event bus type (gochannel, kafka, redis, none)",
				Value:   "gochannel",
				Sources: cli.EnvVars("EVENT_BUS_TYPE"),
			},
			&cli.BoolFlag{
				Name:    "tracing",
				Usage:   "Export traces over OTLP HTTP",
				Sources: cli.EnvVars("OTEL_TRACING_ENABLED"),
			},
			&cli.Int64Flag{
				Name:    "mock-user-id",
				Usage:   "User id every request is attributed to",
				Value:   defaultUserID,
				Sources: cli.EnvVars("MOCK_USER_ID"),
			},
			&cli.Float64Flag{
				Name:    "success-rate",
				Usage:   "Probability that an execution passes",
				Value:   memory.DefaultSuccessRate,
				Sources: cli.EnvVars("EXECUTION_SUCCESS_RATE"),
			},
		},
		Action: func(ctx context.Context, command *cli.Command) error {
			log.Setup(command.String("log-level"))

			logger.InfoContext(ctx, "Initializing Stepflow API")

			registry := cmd.NewRegistry(logger)
			persistence := cmd.NewPersistence(command.Float64("success-rate"))

			defer func() {
				err := persistence.Close(ctx)
				if err != nil {
					logger.ErrorContext(ctx, "Failed to close persistence", "error", err)
				}
			}()

			eventBus := cmd.NewEventBus(command.String("event-bus"), logger)
			defer func() {
				if err := eventBus.Close(); err != nil {
					logger.ErrorContext(ctx, "Failed to close event bus", "error", err)
				}
			}()

			if err := eventBus.Handle(events.WorkflowExecutedEvent, auditExecutions(log.WithModule("audit"))); err != nil {
				return err
			}

			if err := eventBus.Subscribe(ctx); err != nil {
				return err
			}

			tracer, shutdown, err := cmd.NewTracer(ctx, command.Bool("tracing"), serviceName)
			if err != nil {
				return err
			}

			defer func() {
				if err := shutdown(ctx); err != nil {
					logger.ErrorContext(ctx, "Failed to shutdown tracer provider", "error", err)
				}
			}()

			api := NewAPI(
				logger,
				persistence,
				registry,
				eventBus,
				metrics.New(),
				tracer,
				command.Int64("mock-user-id"),
			)

			err = api.Start(command.Int("port"))
			if err != nil {
				logger.ErrorContext(ctx, "Failed to start API server", "error", err)
			}

			return err
		},
	}

	err := app.Run(context.Background(), os.Args)
	if err != nil {
		os.Exit(1)
	}
}
