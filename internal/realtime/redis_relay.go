package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/phrazzld/taskflow-api/internal/events"
	"github.com/redis/go-redis/v9"
)

// DefaultRedisChannel is the pub/sub channel used when none is configured.
const DefaultRedisChannel = "taskflow:notifications"

// RedisRelay publishes events to a Redis channel and forwards everything
// received on that channel to a local handler, so every instance's hub sees
// every event.
type RedisRelay struct {
	client  *redis.Client
	channel string
	local   events.EventHandler
	logger  *slog.Logger
	pubsub  *redis.PubSub
	done    chan struct{}
}

var _ events.EventHandler = (*RedisRelay)(nil)

// NewRedisRelay connects to the Redis server at url and verifies it with a ping.
func NewRedisRelay(ctx context.Context, url, channel string, local events.EventHandler, logger *slog.Logger) (*RedisRelay, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis url: %w", err)
	}
	opt.DialTimeout = 5 * time.Second

	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	return newRedisRelay(client, channel, local, logger), nil
}

func newRedisRelay(client *redis.Client, channel string, local events.EventHandler, logger *slog.Logger) *RedisRelay {
	if channel == "" {
		channel = DefaultRedisChannel
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &RedisRelay{
		client:  client,
		channel: channel,
		local:   local,
		logger:  logger.With(slog.String("component", "redis_relay"), slog.String("channel", channel)),
		done:    make(chan struct{}),
	}
}

// HandleEvent publishes event to the shared channel.
func (r *RedisRelay) HandleEvent(ctx context.Context, event *events.Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to encode event: %w", err)
	}
	if err := r.client.Publish(ctx, r.channel, data).Err(); err != nil {
		return fmt.Errorf("failed to publish %s event: %w", event.Name, err)
	}
	return nil
}

// Start subscribes to the channel and begins forwarding messages to the local handler.
func (r *RedisRelay) Start(ctx context.Context) error {
	pubsub := r.client.Subscribe(ctx, r.channel)
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return fmt.Errorf("failed to subscribe to %s: %w", r.channel, err)
	}
	r.pubsub = pubsub

	go r.forward(pubsub.Channel())
	r.logger.Info("redis relay subscribed")
	return nil
}

func (r *RedisRelay) forward(messages <-chan *redis.Message) {
	defer close(r.done)

	for msg := range messages {
		event, err := decodeRelayMessage(msg.Payload)
		if err != nil {
			r.logger.Warn("dropping undecodable relay message", "error", err)
			continue
		}
		if err := r.local.HandleEvent(context.Background(), event); err != nil {
			r.logger.Warn("local delivery failed", "event", event.Name, "error", err)
		}
	}
}

func decodeRelayMessage(payload string) (*events.Event, error) {
	var event events.Event
	if err := json.Unmarshal([]byte(payload), &event); err != nil {
		return nil, err
	}
	if event.Name == "" {
		return nil, fmt.Errorf("relay message has no event name")
	}
	return &event, nil
}

// Close unsubscribes, waits for the forwarder to exit and closes the client.
func (r *RedisRelay) Close() error {
	if r.pubsub != nil {
		if err := r.pubsub.Close(); err != nil {
			r.logger.Warn("failed to close subscription", "error", err)
		}
		<-r.done
	}
	return r.client.Close()
}
