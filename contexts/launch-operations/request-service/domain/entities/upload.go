package entities

import "time"

// UploadRecord is immutable once created.
type UploadRecord struct {
	UploadID   string
	RequestID  string
	UploadedBy string
	FileName   string
	MimeType   string
	SizeBytes  int64
	StorageKey string
	Comments   string
	CreatedAt  time.Time
}

type ReassignmentType string

const (
	ReassignmentCreative ReassignmentType = "creative"
	ReassignmentBuyer    ReassignmentType = "buyer"
)

// ReassignmentRecord is an append-only ledger entry for head
// reassignments.
type ReassignmentRecord struct {
	RecordID  string
	RequestID string
	ActorID   string
	Type      ReassignmentType
	FromName  string
	ToName    string
	Reason    string
	CreatedAt time.Time
}

// StatusHistory records every accepted transition.
type StatusHistory struct {
	HistoryID    string
	RequestID    string
	FromStatus   RequestStatus
	ToStatus     RequestStatus
	ChangedBy    string
	ChangeReason string
	CreatedAt    time.Time
}
