package ports

import (
	"context"
	"time"

	"launchdesk/contexts/launch-operations/request-service/domain/entities"
	"launchdesk/internal/shared/events"
)

type RequestFilter struct {
	Status      entities.RequestStatus
	RequestType entities.RequestType
	CreatedBy   string
	HeadID      string
	EditorID    string
	BuyerID     string
}

type RequestRepository interface {
	CreateRequest(ctx context.Context, request entities.LaunchRequest) error
	UpdateRequest(ctx context.Context, request entities.LaunchRequest) error
	GetRequest(ctx context.Context, requestID string) (entities.LaunchRequest, error)
	ListRequests(ctx context.Context, filter RequestFilter) ([]entities.LaunchRequest, error)
	DeleteRequest(ctx context.Context, requestID string) error
}

// TransitionRepository applies one guarded lifecycle transition
// atomically: guard check, status change, timestamp stamp and history
// row commit together or not at all. The close() creative distribution
// guard is evaluated inside the same transaction.
type TransitionRepository interface {
	ApplyTransition(
		ctx context.Context,
		requestID string,
		op entities.TransitionOp,
		actorID string,
		reason string,
		now time.Time,
	) (entities.LaunchRequest, error)
}

type EditorAssignmentRepository interface {
	ListEditorAssignments(ctx context.Context, requestID string) ([]entities.EditorAssignment, error)
	// ReplaceDistribution upserts the supplied entries as pending
	// (flipping reassigned rows back) and marks absent pending or
	// in_progress rows reassigned, all in one transaction.
	ReplaceDistribution(
		ctx context.Context,
		requestID string,
		entries []entities.DistributionEntry,
		now time.Time,
	) ([]entities.EditorAssignment, error)
}

type BuyerAssignmentRepository interface {
	ListBuyerAssignments(ctx context.Context, requestID string) ([]entities.BuyerAssignment, error)
	GetBuyerAssignment(ctx context.Context, requestID string, buyerID string) (entities.BuyerAssignment, error)
	// ApplyBuyerAssignments performs the ready_to_launch ->
	// buyer_assigned transition, upserts the buyer rows keyed by
	// (request, buyer), records the committed quantity/deadline, and
	// appends the provisioning outbox row in the same transaction.
	ApplyBuyerAssignments(
		ctx context.Context,
		requestID string,
		rows []entities.BuyerAssignment,
		committedRunQty *int,
		committedTestDeadline *time.Time,
		actorID string,
		envelope events.Envelope,
		now time.Time,
	) (entities.LaunchRequest, error)
}

type UploadRepository interface {
	// CreateUpload inserts the immutable upload row, advances
	// pending_review to in_production when applicable, and appends the
	// routing outbox row, all in one transaction.
	CreateUpload(
		ctx context.Context,
		upload entities.UploadRecord,
		envelope events.Envelope,
		now time.Time,
	) (entities.LaunchRequest, error)
	GetUpload(ctx context.Context, uploadID string) (entities.UploadRecord, error)
	ListUploads(ctx context.Context, requestID string) ([]entities.UploadRecord, error)
}

type ReassignmentRepository interface {
	AppendReassignment(ctx context.Context, record entities.ReassignmentRecord) error
	ListReassignments(ctx context.Context, requestID string) ([]entities.ReassignmentRecord, error)
}

type HistoryRepository interface {
	AppendStatusHistory(ctx context.Context, item entities.StatusHistory) error
}

type UserDirectory interface {
	GetUserName(ctx context.Context, userID string) (string, error)
}

type ObjectStorage interface {
	Put(ctx context.Context, key string, data []byte, contentType string) (string, error)
}

// Notifier delivery is best effort; callers swallow failures.
type Notifier interface {
	Notify(ctx context.Context, recipientID string, subject string, body string) error
}

type Clock interface {
	Now() time.Time
}

type IDGenerator interface {
	NewID(ctx context.Context) (string, error)
}

type EventEnvelope = events.Envelope

type OutboxMessage struct {
	OutboxID     string
	EventType    string
	PartitionKey string
	Payload      []byte
	CreatedAt    time.Time
}

type OutboxWriter interface {
	AppendOutbox(ctx context.Context, envelope EventEnvelope) error
}

type OutboxRepository interface {
	ListPendingOutbox(ctx context.Context, limit int) ([]OutboxMessage, error)
	MarkOutboxPublished(ctx context.Context, outboxID string, publishedAt time.Time) error
}

type EventPublisher interface {
	Publish(ctx context.Context, topic string, event EventEnvelope) error
}
