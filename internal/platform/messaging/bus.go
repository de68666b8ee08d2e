package messaging

import (
	"context"
	"log/slog"
	"sync"

	"launchdesk/internal/shared/events"
)

// Bus is the event bus adapter used by the outbox relay and the
// provisioning consumer. Current implementation is in-process
// publish/subscribe while runtime wiring is finalized for external
// brokers.
type Bus struct {
	mu          sync.RWMutex
	subscribers map[string][]chan events.Envelope
	logger      *slog.Logger

	// Workers is the number of handler goroutines draining each
	// subscription. Zero or negative means one.
	Workers int
}

func NewBus(logger *slog.Logger) *Bus {
	return &Bus{
		subscribers: make(map[string][]chan events.Envelope),
		logger:      logger,
	}
}

func (b *Bus) Publish(ctx context.Context, topic string, event events.Envelope) error {
	b.mu.RLock()
	subs := append([]chan events.Envelope(nil), b.subscribers[topic]...)
	b.mu.RUnlock()

	for _, sub := range subs {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case sub <- event:
		default:
			if b.logger != nil {
				b.logger.Warn("dropping event for slow subscriber",
					"event", "bus_publish_drop",
					"module", "internal/platform/messaging",
					"layer", "platform",
					"topic", topic,
					"event_id", event.EventID,
				)
			}
		}
	}

	if b.logger != nil {
		b.logger.Info("event published",
			"event", "bus_publish",
			"module", "internal/platform/messaging",
			"layer", "platform",
			"topic", topic,
			"event_id", event.EventID,
			"event_type", event.EventType,
		)
	}
	return nil
}

func (b *Bus) Subscribe(
	ctx context.Context,
	topic string,
	consumerGroup string,
	handler func(context.Context, events.Envelope) error,
) error {
	ch := make(chan events.Envelope, 128)

	b.mu.Lock()
	b.subscribers[topic] = append(b.subscribers[topic], ch)
	b.mu.Unlock()

	workers := b.Workers
	if workers <= 0 {
		workers = 1
	}
	for i := 0; i < workers; i++ {
		go b.consume(ctx, topic, consumerGroup, ch, handler)
	}
	return nil
}

func (b *Bus) consume(
	ctx context.Context,
	topic string,
	consumerGroup string,
	ch chan events.Envelope,
	handler func(context.Context, events.Envelope) error,
) {
	for {
		select {
		case <-ctx.Done():
			b.removeSubscriber(topic, ch)
			return
		case event := <-ch:
			if err := handler(ctx, event); err != nil && b.logger != nil {
				b.logger.Error("consumer handler failed",
					"event", "bus_consume_failed",
					"module", "internal/platform/messaging",
					"layer", "platform",
					"topic", topic,
					"consumer_group", consumerGroup,
					"event_id", event.EventID,
					"event_type", event.EventType,
					"error", err.Error(),
				)
			}
		}
	}
}

func (b *Bus) removeSubscriber(topic string, target chan events.Envelope) {
	b.mu.Lock()
	defer b.mu.Unlock()

	items := b.subscribers[topic]
	if len(items) == 0 {
		return
	}
	filtered := make([]chan events.Envelope, 0, len(items))
	for _, item := range items {
		if item != target {
			filtered = append(filtered, item)
		}
	}
	b.subscribers[topic] = filtered
}
