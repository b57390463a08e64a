package cmd

import (
	"fmt"
	"log/slog"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/dukex/stepflow/pkg/channels/gochannel"
	"github.com/dukex/stepflow/pkg/channels/kafka"
	"github.com/dukex/stepflow/pkg/channels/redis"
	"github.com/dukex/stepflow/pkg/eventbus"
)

// SupportedEventBusProviders lists the accepted values of --event-bus.
var SupportedEventBusProviders = []string{"gochannel", "kafka", "redis", "none"}

// NewEventBus creates the event bus for provider. Unknown providers panic.
func NewEventBus(provider string, logger *slog.Logger) eventbus.EventBus {
	switch provider {
	case "", "gochannel":
		pub, sub, err := gochannel.CreateChannel(watermill.NewSlogLogger(logger))
		if err != nil {
			panic(fmt.Errorf("failed to create in-memory pub/sub: %w", err))
		}

		return eventbus.NewWatermillEventBus(pub, sub, logger)
	case "kafka":
		pub, sub, err := kafka.CreateChannel(watermill.NewSlogLogger(logger), "stepflow")
		if err != nil {
			panic(fmt.Errorf("failed to create Kafka pub/sub: %w", err))
		}

		return eventbus.NewWatermillEventBus(pub, sub, logger)
	case "redis":
		pub, sub, err := redis.CreateChannel(watermill.NewSlogLogger(logger))
		if err != nil {
			panic(fmt.Errorf("failed to create Redis pub/sub: %w", err))
		}

		return eventbus.NewWatermillEventBus(pub, sub, logger)
	case "none":
		return eventbus.NewNoopEventBus()
	default:
		panic("Unsupported event bus provider: " + provider)
	}
}
