package memory

import (
	"context"
	"testing"
	"time"

	"launchdesk/contexts/launch-operations/request-service/domain/entities"
	"launchdesk/contexts/launch-operations/request-service/ports"
	"launchdesk/internal/shared/events"
)

func seedRequest(requestID string, status entities.RequestStatus) entities.LaunchRequest {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	return entities.LaunchRequest{
		RequestID:   requestID,
		Title:       "Spring launch",
		RequestType: entities.RequestTypeProduction,
		Status:      status,
		CreatedBy:   "strategist-1",
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func testEnvelope(t *testing.T, eventID string) events.Envelope {
	t.Helper()
	envelope, err := events.NewEnvelope(eventID, events.TopicBuyersAssigned, "request-service", "req-1", time.Now().UTC(), events.BuyersAssigned{RequestID: "req-1"})
	if err != nil {
		t.Fatalf("build envelope failed: %v", err)
	}
	return envelope
}

func TestApplyBuyerAssignmentsPreservesProvisionedPointer(t *testing.T) {
	store := NewStore([]entities.LaunchRequest{seedRequest("req-1", entities.StatusReadyToLaunch)})
	ctx := context.Background()

	// The buyer head was provisioned at creation time, before any
	// formal assignment existed for it.
	if err := store.SetMediaFolderID(ctx, "req-1", "buyer-1", "leaf-1"); err != nil {
		t.Fatalf("set pointer failed: %v", err)
	}
	provisioned, err := store.GetBuyerAssignment(ctx, "req-1", "buyer-1")
	if err != nil {
		t.Fatalf("expected bare row created by pointer write: %v", err)
	}

	now := time.Now().UTC()
	_, err = store.ApplyBuyerAssignments(ctx, "req-1", []entities.BuyerAssignment{
		{RequestID: "req-1", BuyerID: "buyer-1", RunQty: 500, AssignedAt: now, UpdatedAt: now},
	}, nil, nil, "buyer-head-1", testEnvelope(t, "evt-1"), now)
	if err != nil {
		t.Fatalf("apply assignments failed: %v", err)
	}

	row, err := store.GetBuyerAssignment(ctx, "req-1", "buyer-1")
	if err != nil {
		t.Fatalf("get assignment failed: %v", err)
	}
	if row.MediaFolderID != "leaf-1" {
		t.Fatalf("expected folder pointer preserved across upsert, got %q", row.MediaFolderID)
	}
	if !row.AssignedAt.Equal(provisioned.AssignedAt) {
		t.Fatalf("expected original assigned_at preserved, got %v want %v", row.AssignedAt, provisioned.AssignedAt)
	}
	if row.RunQty != 500 {
		t.Fatalf("expected run qty refreshed, got %d", row.RunQty)
	}
}

func TestListProvisionedBuyersSkipsUnsetPointers(t *testing.T) {
	store := NewStore([]entities.LaunchRequest{seedRequest("req-1", entities.StatusBuyerAssigned)})
	ctx := context.Background()

	if err := store.SetMediaFolderID(ctx, "req-1", "buyer-b", "leaf-b"); err != nil {
		t.Fatalf("set pointer failed: %v", err)
	}
	if err := store.SetMediaFolderID(ctx, "req-1", "buyer-a", "leaf-a"); err != nil {
		t.Fatalf("set pointer failed: %v", err)
	}
	if err := store.SetMediaFolderID(ctx, "req-1", "buyer-c", "leaf-c"); err != nil {
		t.Fatalf("set pointer failed: %v", err)
	}
	if err := store.ClearMediaFolderID(ctx, "req-1", "buyer-c"); err != nil {
		t.Fatalf("clear pointer failed: %v", err)
	}

	refs, err := store.ListProvisionedBuyers(ctx, "req-1")
	if err != nil {
		t.Fatalf("list provisioned failed: %v", err)
	}
	if len(refs) != 2 {
		t.Fatalf("expected cleared pointer skipped, got %v", refs)
	}
	if refs[0].BuyerID != "buyer-a" || refs[1].BuyerID != "buyer-b" {
		t.Fatalf("expected stable buyer order, got %v", refs)
	}
}

func TestAppendOutboxDeduplicatesByEventID(t *testing.T) {
	store := NewStore(nil)
	ctx := context.Background()

	if err := store.AppendOutbox(ctx, testEnvelope(t, "evt-1")); err != nil {
		t.Fatalf("append failed: %v", err)
	}
	if err := store.AppendOutbox(ctx, testEnvelope(t, "evt-1")); err != nil {
		t.Fatalf("replayed append failed: %v", err)
	}

	pending, err := store.ListPendingOutbox(ctx, 10)
	if err != nil {
		t.Fatalf("list outbox failed: %v", err)
	}
	if len(pending) != 1 {
		t.Fatalf("expected one outbox row, got %d", len(pending))
	}
}

func TestListRequestsRoleScopes(t *testing.T) {
	first := seedRequest("req-1", entities.StatusInProduction)
	first.CreativeHeadID = "head-1"
	second := seedRequest("req-2", entities.StatusInProduction)
	second.BuyerHeadID = "head-1"
	third := seedRequest("req-3", entities.StatusDraft)
	store := NewStore([]entities.LaunchRequest{first, second, third})
	ctx := context.Background()

	byHead, err := store.ListRequests(ctx, ports.RequestFilter{HeadID: "head-1"})
	if err != nil {
		t.Fatalf("list by head failed: %v", err)
	}
	if len(byHead) != 2 {
		t.Fatalf("expected head filter to match either head column, got %d", len(byHead))
	}

	if _, err := store.ReplaceDistribution(ctx, "req-1", []entities.DistributionEntry{{EditorID: "editor-1", Count: 3}}, time.Now().UTC()); err != nil {
		t.Fatalf("replace distribution failed: %v", err)
	}
	byEditor, err := store.ListRequests(ctx, ports.RequestFilter{EditorID: "editor-1"})
	if err != nil {
		t.Fatalf("list by editor failed: %v", err)
	}
	if len(byEditor) != 1 || byEditor[0].RequestID != "req-1" {
		t.Fatalf("expected active editor scoped to req-1, got %v", byEditor)
	}

	if _, err := store.ReplaceDistribution(ctx, "req-1", nil, time.Now().UTC()); err != nil {
		t.Fatalf("second distribution failed: %v", err)
	}

	byEditor, err = store.ListRequests(ctx, ports.RequestFilter{EditorID: "editor-1"})
	if err != nil {
		t.Fatalf("list by editor failed: %v", err)
	}
	if len(byEditor) != 0 {
		t.Fatalf("expected reassigned editor excluded from scope, got %d", len(byEditor))
	}
}
