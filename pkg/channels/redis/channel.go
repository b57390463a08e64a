// Package redis provides a watermill pub/sub over Redis Pub/Sub for API
// instances that share a Redis server. Delivery is at most once: messages
// published while nobody listens, or nacked by the handler, are not redelivered.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/redis/go-redis/v9"
)

const defaultAddr = "localhost:6379"

// ErrClosed is returned when publishing or subscribing after Close.
var ErrClosed = errors.New("redis pub/sub is closed")

// Config holds the connection settings read from the environment.
type Config struct {
	Addr     string
	Password string
	DB       int
}

// ConfigFromEnv reads REDIS_ADDR, REDIS_PASSWORD and REDIS_DB.
func ConfigFromEnv() (Config, error) {
	cfg := Config{
		Addr:     os.Getenv("REDIS_ADDR"),
		Password: os.Getenv("REDIS_PASSWORD"),
	}

	if cfg.Addr == "" {
		cfg.Addr = defaultAddr
	}

	if db := os.Getenv("REDIS_DB"); db != "" {
		n, err := strconv.Atoi(db)
		if err != nil {
			return Config{}, fmt.Errorf("invalid REDIS_DB value: %w", err)
		}

		cfg.DB = n
	}

	return cfg, nil
}

// envelope is the wire form of a watermill message on a Redis channel.
type envelope struct {
	UUID     string           `json:"uuid"`
	Metadata message.Metadata `json:"metadata,omitempty"`
	Payload  []byte           `json:"payload"`
}

func marshalMessage(msg *message.Message) ([]byte, error) {
	return json.Marshal(envelope{UUID: msg.UUID, Metadata: msg.Metadata, Payload: msg.Payload})
}

func unmarshalMessage(data []byte) (*message.Message, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, err
	}

	msg := message.NewMessage(env.UUID, env.Payload)
	for key, value := range env.Metadata {
		msg.Metadata.Set(key, value)
	}

	return msg, nil
}

// PubSub publishes to and subscribes on Redis channels named after watermill topics.
type PubSub struct {
	client *redis.Client
	logger watermill.LoggerAdapter

	closing   chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup
}

// NewPubSub wraps client. Close closes the client.
func NewPubSub(client *redis.Client, logger watermill.LoggerAdapter) *PubSub {
	return &PubSub{
		client:  client,
		logger:  logger,
		closing: make(chan struct{}),
	}
}

// CreateChannel connects to the configured server and returns one PubSub
// acting as both publisher and subscriber.
func CreateChannel(logger watermill.LoggerAdapter) (*PubSub, *PubSub, error) {
	cfg, err := ConfigFromEnv()
	if err != nil {
		return nil, nil, err
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: 100,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()

		return nil, nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	logger.Info("Connected to Redis", watermill.LogFields{"addr": cfg.Addr, "db": cfg.DB})

	pubSub := NewPubSub(client, logger)

	return pubSub, pubSub, nil
}

func (ps *PubSub) Publish(topic string, messages ...*message.Message) error {
	if ps.closed() {
		return ErrClosed
	}

	for _, msg := range messages {
		payload, err := marshalMessage(msg)
		if err != nil {
			return fmt.Errorf("failed to encode message %s: %w", msg.UUID, err)
		}

		if err := ps.client.Publish(msg.Context(), topic, payload).Err(); err != nil {
			return fmt.Errorf("failed to publish message %s: %w", msg.UUID, err)
		}
	}

	return nil
}

// Subscribe listens on topic until ctx is done or the PubSub is closed. Each
// message must be acked or nacked before the next one is delivered.
func (ps *PubSub) Subscribe(ctx context.Context, topic string) (<-chan *message.Message, error) {
	if ps.closed() {
		return nil, ErrClosed
	}

	sub := ps.client.Subscribe(ctx, topic)

	// Wait for the subscription confirmation so no message published after
	// Subscribe returns is missed.
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()

		return nil, fmt.Errorf("failed to subscribe to %s: %w", topic, err)
	}

	out := make(chan *message.Message)

	ps.wg.Add(1)

	go ps.consume(ctx, topic, sub, out)

	return out, nil
}

func (ps *PubSub) consume(ctx context.Context, topic string, sub *redis.PubSub, out chan<- *message.Message) {
	defer ps.wg.Done()
	defer close(out)
	defer sub.Close()

	incoming := sub.Channel()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ps.closing:
			return
		case raw, ok := <-incoming:
			if !ok {
				return
			}

			msg, err := unmarshalMessage([]byte(raw.Payload))
			if err != nil {
				ps.logger.Error("Dropping undecodable message", err, watermill.LogFields{"topic": topic})

				continue
			}

			if !ps.deliver(ctx, msg, out) {
				return
			}
		}
	}
}

// deliver hands msg to the subscriber and waits for its ack. It returns false
// when the subscription is shutting down.
func (ps *PubSub) deliver(ctx context.Context, msg *message.Message, out chan<- *message.Message) bool {
	msgCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	msg.SetContext(msgCtx)

	select {
	case out <- msg:
	case <-ctx.Done():
		return false
	case <-ps.closing:
		return false
	}

	select {
	case <-msg.Acked():
	case <-msg.Nacked():
		ps.logger.Info("Message nacked, dropping", watermill.LogFields{"message_uuid": msg.UUID})
	case <-ctx.Done():
		return false
	case <-ps.closing:
		return false
	}

	return true
}

// Close stops every subscription and closes the client. It is safe to call twice.
func (ps *PubSub) Close() error {
	var err error

	ps.closeOnce.Do(func() {
		close(ps.closing)
		ps.wg.Wait()

		err = ps.client.Close()
	})

	return err
}

func (ps *PubSub) closed() bool {
	select {
	case <-ps.closing:
		return true
	default:
		return false
	}
}
