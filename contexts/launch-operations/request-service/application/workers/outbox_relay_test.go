package workers

import (
	"context"
	"errors"
	"testing"
	"time"

	"launchdesk/contexts/launch-operations/request-service/adapters/memory"
	"launchdesk/contexts/launch-operations/request-service/ports"
	"launchdesk/internal/shared/events"
)

type capturingPublisher struct {
	published []string
	failUntil int
	calls     int
}

func (p *capturingPublisher) Publish(_ context.Context, topic string, _ ports.EventEnvelope) error {
	p.calls++
	if p.calls <= p.failUntil {
		return errors.New("broker unavailable")
	}
	p.published = append(p.published, topic)
	return nil
}

func appendEnvelope(t *testing.T, store *memory.Store, eventID string, topic string) {
	t.Helper()
	envelope, err := events.NewEnvelope(eventID, topic, "request-service", "req-1", time.Now().UTC(), events.UploadCreated{RequestID: "req-1", UploadID: "upload-1"})
	if err != nil {
		t.Fatalf("build envelope failed: %v", err)
	}
	if err := store.AppendOutbox(context.Background(), envelope); err != nil {
		t.Fatalf("append outbox failed: %v", err)
	}
}

func TestRelayPublishesPendingRowsOnce(t *testing.T) {
	store := memory.NewStore(nil)
	appendEnvelope(t, store, "evt-1", events.TopicRequestCreated)
	appendEnvelope(t, store, "evt-2", events.TopicUploadCreated)
	// Replaying the same event id is a no-op on the outbox.
	appendEnvelope(t, store, "evt-1", events.TopicRequestCreated)

	publisher := &capturingPublisher{}
	relay := OutboxRelay{Outbox: store, Publisher: publisher, Clock: store, BatchSize: 10}

	if err := relay.RunOnce(context.Background()); err != nil {
		t.Fatalf("relay cycle failed: %v", err)
	}
	if len(publisher.published) != 2 {
		t.Fatalf("expected 2 publishes, got %v", publisher.published)
	}
	if publisher.published[0] != events.TopicRequestCreated || publisher.published[1] != events.TopicUploadCreated {
		t.Fatalf("unexpected publish order: %v", publisher.published)
	}

	if err := relay.RunOnce(context.Background()); err != nil {
		t.Fatalf("second relay cycle failed: %v", err)
	}
	if len(publisher.published) != 2 {
		t.Fatalf("published rows must not be replayed, got %v", publisher.published)
	}
}

func TestRelayKeepsRowPendingOnPublishFailure(t *testing.T) {
	store := memory.NewStore(nil)
	appendEnvelope(t, store, "evt-1", events.TopicBuyersAssigned)

	publisher := &capturingPublisher{failUntil: 1}
	relay := OutboxRelay{Outbox: store, Publisher: publisher, Clock: store, BatchSize: 10}

	if err := relay.RunOnce(context.Background()); err == nil {
		t.Fatal("expected failing publish to surface")
	}
	pending, err := store.ListPendingOutbox(context.Background(), 10)
	if err != nil {
		t.Fatalf("list outbox failed: %v", err)
	}
	if len(pending) != 1 {
		t.Fatalf("expected row to stay pending after failure, got %d", len(pending))
	}

	if err := relay.RunOnce(context.Background()); err != nil {
		t.Fatalf("retry cycle failed: %v", err)
	}
	pending, _ = store.ListPendingOutbox(context.Background(), 10)
	if len(pending) != 0 {
		t.Fatalf("expected row published on retry, got %d pending", len(pending))
	}
}
