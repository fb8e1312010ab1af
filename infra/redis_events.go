package infra

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// PanelEventChannel is the Redis pub/sub channel carrying panel events
// across service instances.
const PanelEventChannel = "dockcall:panel_events"

// PanelEvent is the cross-instance form of an in-process panel event.
// Payloads are hints only; subscribers re-fetch the state they display.
type PanelEvent struct {
	Topic     string                 `json:"topic"`
	Payload   map[string]interface{} `json:"payload,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

// ToJSON serializes the event for publication.
func (e *PanelEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// ParsePanelEvent deserializes an event received from Redis.
func ParsePanelEvent(data []byte) (*PanelEvent, error) {
	var event PanelEvent
	if err := json.Unmarshal(data, &event); err != nil {
		return nil, fmt.Errorf("failed to parse panel event: %w", err)
	}
	return &event, nil
}

// RedisEventManager fans panel events out to other service instances via
// Redis pub/sub. It is optional: callers hold a nil manager when Redis is
// not configured.
type RedisEventManager struct {
	logger zerolog.Logger
	client *redis.Client
}

func NewRedisEventManager(client *redis.Client, logger zerolog.Logger) *RedisEventManager {
	return &RedisEventManager{
		logger: logger.With().Str("module", "redis_event_manager").Logger(),
		client: client,
	}
}

// PublishPanelEvent publishes a panel event to the shared channel.
func (m *RedisEventManager) PublishPanelEvent(ctx context.Context, topic string, payload map[string]interface{}) error {
	event := &PanelEvent{
		Topic:     topic,
		Payload:   payload,
		Timestamp: time.Now(),
	}

	data, err := event.ToJSON()
	if err != nil {
		m.logger.Error().Err(err).Str("topic", topic).Msg("failed to serialize panel event")
		return err
	}

	if err := m.client.Publish(ctx, PanelEventChannel, data).Err(); err != nil {
		m.logger.Error().Err(err).Str("topic", topic).Msg("failed to publish panel event")
		return err
	}

	m.logger.Debug().Str("topic", topic).Msg("panel event published")
	return nil
}

// SubscribePanelEvents consumes panel events published by other instances
// and hands them to the handler. Blocks until the context is cancelled.
func (m *RedisEventManager) SubscribePanelEvents(ctx context.Context, handler func(*PanelEvent)) {
	pubsub := m.client.Subscribe(ctx, PanelEventChannel)
	defer pubsub.Close()

	m.logger.Info().Str("channel", PanelEventChannel).Msg("subscribed to panel events")

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			m.logger.Info().Msg("panel event subscription stopped")
			return
		case msg, ok := <-ch:
			if !ok {
				m.logger.Warn().Msg("panel event channel closed")
				return
			}
			event, err := ParsePanelEvent([]byte(msg.Payload))
			if err != nil {
				m.logger.Error().Err(err).Msg("dropping malformed panel event")
				continue
			}
			handler(event)
		}
	}
}
