package entities

import (
	"strings"
	"time"
)

type RequestStatus string
type RequestType string

const (
	StatusDraft         RequestStatus = "draft"
	StatusPendingReview RequestStatus = "pending_review"
	StatusInProduction  RequestStatus = "in_production"
	StatusReadyToLaunch RequestStatus = "ready_to_launch"
	StatusBuyerAssigned RequestStatus = "buyer_assigned"
	StatusLaunched      RequestStatus = "launched"
	StatusClosed        RequestStatus = "closed"
	StatusReopened      RequestStatus = "reopened"

	RequestTypeProduction RequestType = "production"
	RequestTypeMediaBuy   RequestType = "media_buy"
	RequestTypeHybrid     RequestType = "hybrid"
)

type Role string

const (
	RoleAdmin        Role = "admin"
	RoleStrategist   Role = "strategist"
	RoleCreativeHead Role = "creative_head"
	RoleEditor       Role = "editor"
	RoleBuyerHead    Role = "buyer_head"
	RoleBuyer        Role = "buyer"
)

// Vertical is one entry of the request's ordered vertical list. At most
// one entry is primary; an empty list has no primary.
type Vertical struct {
	Name    string
	Primary bool
}

type LaunchRequest struct {
	RequestID             string
	Title                 string
	RequestType           RequestType
	Status                RequestStatus
	NumCreatives          int
	SuggestedRunQty       int
	CommittedRunQty       *int
	DeliveryDeadline      *time.Time
	TestDeadline          *time.Time
	CommittedTestDeadline *time.Time
	Platforms             []string
	Verticals             []Vertical
	CreativeHeadID        string
	BuyerHeadID           string
	CreatedBy             string
	CreatedAt             time.Time
	UpdatedAt             time.Time
	SubmittedAt           *time.Time
	AcceptedAt            *time.Time
	ReadyAt               *time.Time
	BuyerAssignedAt       *time.Time
	LaunchedAt            *time.Time
	ClosedAt              *time.Time
}

// TransitionOp names a guarded lifecycle operation.
type TransitionOp string

const (
	TransitionSubmit       TransitionOp = "submit"
	TransitionAccept       TransitionOp = "accept"
	TransitionMarkReady    TransitionOp = "mark_ready"
	TransitionAssignBuyers TransitionOp = "assign_buyers"
	TransitionLaunch       TransitionOp = "launch"
	TransitionClose        TransitionOp = "close"
	TransitionReopen       TransitionOp = "reopen"
)

var transitionTable = map[TransitionOp]struct {
	from []RequestStatus
	to   RequestStatus
}{
	TransitionSubmit:       {from: []RequestStatus{StatusDraft, StatusReopened}, to: StatusPendingReview},
	TransitionAccept:       {from: []RequestStatus{StatusPendingReview}, to: StatusInProduction},
	TransitionMarkReady:    {from: []RequestStatus{StatusInProduction}, to: StatusReadyToLaunch},
	TransitionAssignBuyers: {from: []RequestStatus{StatusReadyToLaunch}, to: StatusBuyerAssigned},
	TransitionLaunch:       {from: []RequestStatus{StatusBuyerAssigned}, to: StatusLaunched},
	TransitionClose:        {from: []RequestStatus{StatusLaunched}, to: StatusClosed},
	TransitionReopen:       {from: []RequestStatus{StatusClosed}, to: StatusReopened},
}

// CanTransition reports whether op is legal from the request's current
// status.
func (r LaunchRequest) CanTransition(op TransitionOp) bool {
	rule, ok := transitionTable[op]
	if !ok {
		return false
	}
	for _, status := range rule.from {
		if r.Status == status {
			return true
		}
	}
	return false
}

// ApplyTransition returns the request after op, with the transition
// timestamp stamped. The receiver is left untouched; callers persist the
// returned value only when the whole operation commits. The close-time
// creative distribution guard is separate (ValidateCloseTotal) and runs
// before this is persisted.
func (r LaunchRequest) ApplyTransition(op TransitionOp, now time.Time) (LaunchRequest, bool) {
	if !r.CanTransition(op) {
		return r, false
	}
	next := r
	next.Status = transitionTable[op].to
	next.UpdatedAt = now

	stamp := now
	switch op {
	case TransitionSubmit:
		next.SubmittedAt = &stamp
	case TransitionAccept:
		next.AcceptedAt = &stamp
	case TransitionMarkReady:
		next.ReadyAt = &stamp
	case TransitionAssignBuyers:
		next.BuyerAssignedAt = &stamp
	case TransitionLaunch:
		next.LaunchedAt = &stamp
	case TransitionClose:
		next.ClosedAt = &stamp
	}
	return next, true
}

func (r LaunchRequest) CanEdit() bool {
	return r.Status == StatusDraft || r.Status == StatusReopened
}

func (r LaunchRequest) ValidateBasics() bool {
	title := strings.TrimSpace(r.Title)
	return title != "" &&
		len(title) <= 200 &&
		IsSupportedRequestType(r.RequestType) &&
		r.NumCreatives >= 0 &&
		r.SuggestedRunQty >= 0
}

func IsSupportedRequestType(value RequestType) bool {
	switch value {
	case RequestTypeProduction, RequestTypeMediaBuy, RequestTypeHybrid:
		return true
	default:
		return false
	}
}

func IsSupportedStatus(value RequestStatus) bool {
	switch value {
	case StatusDraft, StatusPendingReview, StatusInProduction, StatusReadyToLaunch,
		StatusBuyerAssigned, StatusLaunched, StatusClosed, StatusReopened:
		return true
	default:
		return false
	}
}

func CanCreateRequests(role Role) bool {
	return role == RoleAdmin || role == RoleStrategist || role == RoleBuyerHead
}

// NormalizeVerticals trims names, drops empties, and keeps the first
// entry as the only primary.
func NormalizeVerticals(items []Vertical) []Vertical {
	result := make([]Vertical, 0, len(items))
	for _, item := range items {
		name := strings.TrimSpace(item.Name)
		if name == "" {
			continue
		}
		result = append(result, Vertical{Name: name, Primary: len(result) == 0})
	}
	return result
}

// NormalizePlatforms deduplicates the unordered platform set, preserving
// first-seen order for stable storage.
func NormalizePlatforms(items []string) []string {
	seen := make(map[string]struct{}, len(items))
	result := make([]string, 0, len(items))
	for _, item := range items {
		value := strings.ToLower(strings.TrimSpace(item))
		if value == "" {
			continue
		}
		if _, ok := seen[value]; ok {
			continue
		}
		seen[value] = struct{}{}
		result = append(result, value)
	}
	return result
}
