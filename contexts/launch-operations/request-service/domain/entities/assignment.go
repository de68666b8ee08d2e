package entities

import (
	"fmt"
	"strings"
	"time"

	domainerrors "launchdesk/contexts/launch-operations/request-service/domain/errors"
)

type EditorAssignmentStatus string

const (
	EditorAssignmentPending    EditorAssignmentStatus = "pending"
	EditorAssignmentInProgress EditorAssignmentStatus = "in_progress"
	EditorAssignmentCompleted  EditorAssignmentStatus = "completed"
	EditorAssignmentReassigned EditorAssignmentStatus = "reassigned"
)

// EditorAssignment is unique per (request, editor). Rows are never
// deleted; superseded assignments flip to reassigned and stay for
// history.
type EditorAssignment struct {
	RequestID            string
	EditorID             string
	NumCreativesAssigned int
	CreativesCompleted   int
	Status               EditorAssignmentStatus
	AssignedAt           time.Time
	UpdatedAt            time.Time
}

// DistributionEntry is one editor's share of the request's creatives.
type DistributionEntry struct {
	EditorID string
	Count    int
}

// NormalizeDistribution trims ids, drops empties, and collapses repeated
// editor ids (last entry wins).
func NormalizeDistribution(entries []DistributionEntry) []DistributionEntry {
	index := make(map[string]int, len(entries))
	result := make([]DistributionEntry, 0, len(entries))
	for _, entry := range entries {
		editorID := strings.TrimSpace(entry.EditorID)
		if editorID == "" {
			continue
		}
		if pos, ok := index[editorID]; ok {
			result[pos].Count = entry.Count
			continue
		}
		index[editorID] = len(result)
		result = append(result, DistributionEntry{EditorID: editorID, Count: entry.Count})
	}
	return result
}

// ValidateDistribution enforces that an explicit distribution sums to
// exactly numCreatives. A zero numCreatives skips the check.
func ValidateDistribution(numCreatives int, entries []DistributionEntry) error {
	if numCreatives <= 0 {
		return nil
	}
	total := 0
	for _, entry := range entries {
		if entry.Count < 0 {
			return fmt.Errorf("%w: negative count for editor %s", domainerrors.ErrInvalidRequestInput, entry.EditorID)
		}
		total += entry.Count
	}
	if total > numCreatives {
		return fmt.Errorf("%w: total assigned %d exceeds requested %d", domainerrors.ErrAssignmentMismatch, total, numCreatives)
	}
	if total < numCreatives {
		return fmt.Errorf("%w: total assigned %d is less than requested %d", domainerrors.ErrAssignmentMismatch, total, numCreatives)
	}
	return nil
}

// ActiveCreativeTotal sums assigned creatives over non-reassigned rows.
func ActiveCreativeTotal(items []EditorAssignment) int {
	total := 0
	for _, item := range items {
		if item.Status == EditorAssignmentReassigned {
			continue
		}
		total += item.NumCreativesAssigned
	}
	return total
}

// ValidateCloseTotal is the close() guard: when numCreatives > 0 the
// active distribution must match it exactly.
func ValidateCloseTotal(numCreatives int, items []EditorAssignment) error {
	if numCreatives <= 0 {
		return nil
	}
	total := ActiveCreativeTotal(items)
	if total > numCreatives {
		return fmt.Errorf("%w: total assigned %d exceeds requested %d", domainerrors.ErrAssignmentMismatch, total, numCreatives)
	}
	if total < numCreatives {
		return fmt.Errorf("%w: total assigned %d is less than requested %d", domainerrors.ErrAssignmentMismatch, total, numCreatives)
	}
	return nil
}

// BuyerAssignment is unique per (request, buyer). MediaFolderID points
// at the provisioned leaf folder once provisioning has run; empty means
// not provisioned.
type BuyerAssignment struct {
	RequestID       string
	BuyerID         string
	AssignedFileIDs []string
	RunQty          int
	TestDeadline    *time.Time
	MediaFolderID   string
	AssignedAt      time.Time
	UpdatedAt       time.Time
}

// DedupeBuyerAssignments collapses duplicate buyer ids in one payload;
// the last entry wins so a call with two rows for the same buyer yields
// exactly one row.
func DedupeBuyerAssignments(items []BuyerAssignment) []BuyerAssignment {
	index := make(map[string]int, len(items))
	result := make([]BuyerAssignment, 0, len(items))
	for _, item := range items {
		buyerID := strings.TrimSpace(item.BuyerID)
		if buyerID == "" {
			continue
		}
		item.BuyerID = buyerID
		if pos, ok := index[buyerID]; ok {
			result[pos] = item
			continue
		}
		index[buyerID] = len(result)
		result = append(result, item)
	}
	return result
}
