package messaging

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"launchdesk/internal/shared/events"
)

func TestBusDeliversToSubscribedTopicOnly(t *testing.T) {
	bus := NewBus(slog.Default())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	received := make(chan events.Envelope, 1)
	err := bus.Subscribe(ctx, events.TopicUploadCreated, "provisioning-service", func(_ context.Context, event events.Envelope) error {
		received <- event
		return nil
	})
	if err != nil {
		t.Fatalf("subscribe failed: %v", err)
	}

	other := events.Envelope{EventID: "evt-1", EventType: events.TopicRequestCreated}
	if err := bus.Publish(ctx, events.TopicRequestCreated, other); err != nil {
		t.Fatalf("publish failed: %v", err)
	}
	want := events.Envelope{EventID: "evt-2", EventType: events.TopicUploadCreated}
	if err := bus.Publish(ctx, events.TopicUploadCreated, want); err != nil {
		t.Fatalf("publish failed: %v", err)
	}

	select {
	case event := <-received:
		if event.EventID != "evt-2" {
			t.Fatalf("expected evt-2, got %s", event.EventID)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for delivery")
	}

	select {
	case event := <-received:
		t.Fatalf("unexpected cross-topic delivery: %+v", event)
	case <-time.After(50 * time.Millisecond):
	}
}
