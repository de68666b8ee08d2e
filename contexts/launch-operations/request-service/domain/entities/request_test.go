package entities

import (
	"testing"
	"time"
)

func TestApplyTransitionWalksFullLifecycle(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	request := LaunchRequest{RequestID: "req-1", Status: StatusDraft}

	steps := []struct {
		op   TransitionOp
		want RequestStatus
	}{
		{TransitionSubmit, StatusPendingReview},
		{TransitionAccept, StatusInProduction},
		{TransitionMarkReady, StatusReadyToLaunch},
		{TransitionAssignBuyers, StatusBuyerAssigned},
		{TransitionLaunch, StatusLaunched},
		{TransitionClose, StatusClosed},
		{TransitionReopen, StatusReopened},
	}
	for _, step := range steps {
		next, ok := request.ApplyTransition(step.op, now)
		if !ok {
			t.Fatalf("transition %s from %s rejected", step.op, request.Status)
		}
		if next.Status != step.want {
			t.Fatalf("transition %s produced %s, want %s", step.op, next.Status, step.want)
		}
		request = next
	}

	if request.SubmittedAt == nil || request.AcceptedAt == nil || request.ReadyAt == nil ||
		request.BuyerAssignedAt == nil || request.LaunchedAt == nil || request.ClosedAt == nil {
		t.Fatalf("expected every transition timestamp stamped: %+v", request)
	}

	// A reopened request goes back through review, not straight to launch.
	next, ok := request.ApplyTransition(TransitionSubmit, now)
	if !ok || next.Status != StatusPendingReview {
		t.Fatalf("expected reopened request to resubmit into pending_review, got %s ok=%v", next.Status, ok)
	}
}

func TestApplyTransitionRejectsIllegalOp(t *testing.T) {
	request := LaunchRequest{RequestID: "req-1", Status: StatusInProduction}

	next, ok := request.ApplyTransition(TransitionSubmit, time.Now().UTC())
	if ok {
		t.Fatal("expected submit from in_production to be rejected")
	}
	if next.Status != StatusInProduction {
		t.Fatalf("rejected transition mutated status to %s", next.Status)
	}
}

func TestCanEditOnlyInDraftAndReopened(t *testing.T) {
	editable := map[RequestStatus]bool{
		StatusDraft:         true,
		StatusReopened:      true,
		StatusPendingReview: false,
		StatusInProduction:  false,
		StatusReadyToLaunch: false,
		StatusBuyerAssigned: false,
		StatusLaunched:      false,
		StatusClosed:        false,
	}
	for status, want := range editable {
		request := LaunchRequest{Status: status}
		if request.CanEdit() != want {
			t.Fatalf("CanEdit in %s = %v, want %v", status, request.CanEdit(), want)
		}
	}
}

func TestNormalizeVerticalsFirstEntryIsPrimary(t *testing.T) {
	result := NormalizeVerticals([]Vertical{
		{Name: "  "},
		{Name: " health ", Primary: false},
		{Name: "finance", Primary: true},
	})
	if len(result) != 2 {
		t.Fatalf("expected 2 verticals, got %d", len(result))
	}
	if result[0].Name != "health" || !result[0].Primary {
		t.Fatalf("expected first surviving vertical to be primary, got %+v", result[0])
	}
	if result[1].Primary {
		t.Fatalf("expected a single primary, got %+v", result)
	}
}

func TestNormalizePlatformsDeduplicates(t *testing.T) {
	result := NormalizePlatforms([]string{" Facebook ", "tiktok", "facebook", ""})
	if len(result) != 2 {
		t.Fatalf("expected 2 platforms, got %v", result)
	}
	if result[0] != "facebook" || result[1] != "tiktok" {
		t.Fatalf("expected first-seen order preserved, got %v", result)
	}
}

func TestValidateBasics(t *testing.T) {
	valid := LaunchRequest{Title: "Spring launch", RequestType: RequestTypeProduction}
	if !valid.ValidateBasics() {
		t.Fatal("expected valid request to pass")
	}

	cases := []LaunchRequest{
		{Title: "   ", RequestType: RequestTypeProduction},
		{Title: "Spring launch", RequestType: RequestType("outdoor")},
		{Title: "Spring launch", RequestType: RequestTypeHybrid, NumCreatives: -1},
		{Title: "Spring launch", RequestType: RequestTypeMediaBuy, SuggestedRunQty: -5},
	}
	for i, request := range cases {
		if request.ValidateBasics() {
			t.Fatalf("case %d: expected %+v to fail basic validation", i, request)
		}
	}
}
