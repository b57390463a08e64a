package eventbus

import (
	"context"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/dukex/stepflow/pkg/events"
)

// NoopEventBus discards published events. Used when no event bus is configured.
type NoopEventBus struct{}

func NewNoopEventBus() EventBus {
	return NoopEventBus{}
}

func (NoopEventBus) Publish(context.Context, string, Event) error { return nil }

func (NoopEventBus) Handle(events.EventType, EventHandler) error { return nil }

func (NoopEventBus) Subscribe(context.Context) error { return nil }

func (NoopEventBus) Close() error { return nil }

func (NoopEventBus) GenerateID() string { return watermill.NewULID() }
