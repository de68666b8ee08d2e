package entities

import (
	"errors"
	"testing"
	"time"

	domainerrors "launchdesk/contexts/launch-operations/request-service/domain/errors"
)

func TestNormalizeDistributionLastEntryWins(t *testing.T) {
	result := NormalizeDistribution([]DistributionEntry{
		{EditorID: " editor-1 ", Count: 3},
		{EditorID: ""},
		{EditorID: "editor-2", Count: 7},
		{EditorID: "editor-1", Count: 5},
	})
	if len(result) != 2 {
		t.Fatalf("expected 2 entries, got %v", result)
	}
	if result[0].EditorID != "editor-1" || result[0].Count != 5 {
		t.Fatalf("expected repeated editor collapsed to last count, got %+v", result[0])
	}
}

func TestValidateDistributionSumChecks(t *testing.T) {
	exact := []DistributionEntry{{EditorID: "editor-1", Count: 6}, {EditorID: "editor-2", Count: 4}}
	if err := ValidateDistribution(10, exact); err != nil {
		t.Fatalf("exact sum rejected: %v", err)
	}
	if err := ValidateDistribution(0, exact); err != nil {
		t.Fatalf("zero budget should skip the sum check: %v", err)
	}

	over := []DistributionEntry{{EditorID: "editor-1", Count: 11}}
	if err := ValidateDistribution(10, over); !errors.Is(err, domainerrors.ErrAssignmentMismatch) {
		t.Fatalf("expected assignment mismatch for overshoot, got %v", err)
	}
	under := []DistributionEntry{{EditorID: "editor-1", Count: 9}}
	if err := ValidateDistribution(10, under); !errors.Is(err, domainerrors.ErrAssignmentMismatch) {
		t.Fatalf("expected assignment mismatch for undershoot, got %v", err)
	}
	negative := []DistributionEntry{{EditorID: "editor-1", Count: -1}}
	if err := ValidateDistribution(10, negative); !errors.Is(err, domainerrors.ErrInvalidRequestInput) {
		t.Fatalf("expected invalid input for negative count, got %v", err)
	}
}

func TestValidateCloseTotalIgnoresReassignedRows(t *testing.T) {
	rows := []EditorAssignment{
		{EditorID: "editor-1", NumCreativesAssigned: 6, Status: EditorAssignmentCompleted},
		{EditorID: "editor-2", NumCreativesAssigned: 4, Status: EditorAssignmentInProgress},
		{EditorID: "editor-3", NumCreativesAssigned: 9, Status: EditorAssignmentReassigned},
	}
	if total := ActiveCreativeTotal(rows); total != 10 {
		t.Fatalf("expected active total 10, got %d", total)
	}
	if err := ValidateCloseTotal(10, rows); err != nil {
		t.Fatalf("expected close guard to pass: %v", err)
	}
	if err := ValidateCloseTotal(12, rows); !errors.Is(err, domainerrors.ErrAssignmentMismatch) {
		t.Fatalf("expected mismatch against budget 12, got %v", err)
	}
}

func TestDedupeBuyerAssignmentsLastEntryWins(t *testing.T) {
	now := time.Now().UTC()
	rows := DedupeBuyerAssignments([]BuyerAssignment{
		{BuyerID: "buyer-1", RunQty: 100, AssignedAt: now},
		{BuyerID: " "},
		{BuyerID: " buyer-1 ", RunQty: 250, AssignedAt: now},
	})
	if len(rows) != 1 {
		t.Fatalf("expected a single row per buyer, got %v", rows)
	}
	if rows[0].BuyerID != "buyer-1" || rows[0].RunQty != 250 {
		t.Fatalf("expected last payload entry to win, got %+v", rows[0])
	}
}
