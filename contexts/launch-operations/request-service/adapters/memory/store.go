package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"launchdesk/contexts/launch-operations/request-service/domain/entities"
	domainerrors "launchdesk/contexts/launch-operations/request-service/domain/errors"
	"launchdesk/contexts/launch-operations/request-service/ports"
	provisioningports "launchdesk/contexts/launch-operations/provisioning-service/ports"

	"github.com/google/uuid"
)

const (
	outboxStatusPending   = "pending"
	outboxStatusPublished = "published"
)

type outboxRow struct {
	message     ports.OutboxMessage
	status      string
	publishedAt *time.Time
}

type Notification struct {
	RecipientID string
	Subject     string
	Body        string
}

// Store backs every request-service port in memory, including the
// pointer/upload lookups the provisioning service consumes. One mutex
// per store stands in for the relational store's transaction isolation.
type Store struct {
	mu sync.RWMutex

	requests          map[string]entities.LaunchRequest
	editorAssignments map[string]map[string]entities.EditorAssignment
	buyerAssignments  map[string]map[string]entities.BuyerAssignment
	uploads           map[string]entities.UploadRecord
	reassignments     []entities.ReassignmentRecord
	history           []entities.StatusHistory
	outbox            []outboxRow

	users         map[string]string
	objects       map[string][]byte
	Notifications []Notification
}

func NewStore(seed []entities.LaunchRequest) *Store {
	requests := make(map[string]entities.LaunchRequest, len(seed))
	for _, item := range seed {
		requests[item.RequestID] = item
	}
	return &Store{
		requests:          requests,
		editorAssignments: make(map[string]map[string]entities.EditorAssignment),
		buyerAssignments:  make(map[string]map[string]entities.BuyerAssignment),
		uploads:           make(map[string]entities.UploadRecord),
		users:             make(map[string]string),
		objects:           make(map[string][]byte),
	}
}

// SeedUser registers a display name for the user directory.
func (s *Store) SeedUser(userID string, name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[userID] = name
}

func (s *Store) CreateRequest(_ context.Context, request entities.LaunchRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.requests[request.RequestID]; exists {
		return domainerrors.ErrInvalidRequestInput
	}
	s.requests[request.RequestID] = request
	return nil
}

func (s *Store) UpdateRequest(_ context.Context, request entities.LaunchRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.requests[request.RequestID]; !exists {
		return domainerrors.ErrRequestNotFound
	}
	s.requests[request.RequestID] = request
	return nil
}

func (s *Store) GetRequest(_ context.Context, requestID string) (entities.LaunchRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	item, exists := s.requests[strings.TrimSpace(requestID)]
	if !exists {
		return entities.LaunchRequest{}, domainerrors.ErrRequestNotFound
	}
	return item, nil
}

func (s *Store) ListRequests(_ context.Context, filter ports.RequestFilter) ([]entities.LaunchRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items := make([]entities.LaunchRequest, 0, len(s.requests))
	for _, request := range s.requests {
		if filter.Status != "" && request.Status != filter.Status {
			continue
		}
		if filter.RequestType != "" && request.RequestType != filter.RequestType {
			continue
		}
		if filter.CreatedBy != "" && request.CreatedBy != filter.CreatedBy {
			continue
		}
		if filter.HeadID != "" && request.CreativeHeadID != filter.HeadID && request.BuyerHeadID != filter.HeadID {
			continue
		}
		if filter.EditorID != "" && !s.hasEditor(request.RequestID, filter.EditorID) {
			continue
		}
		if filter.BuyerID != "" && !s.hasBuyer(request.RequestID, filter.BuyerID) {
			continue
		}
		items = append(items, request)
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})
	return items, nil
}

func (s *Store) hasEditor(requestID string, editorID string) bool {
	row, ok := s.editorAssignments[requestID][editorID]
	return ok && row.Status != entities.EditorAssignmentReassigned
}

func (s *Store) hasBuyer(requestID string, buyerID string) bool {
	_, ok := s.buyerAssignments[requestID][buyerID]
	return ok
}

func (s *Store) DeleteRequest(_ context.Context, requestID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.requests[requestID]; !exists {
		return domainerrors.ErrRequestNotFound
	}
	delete(s.requests, requestID)
	delete(s.editorAssignments, requestID)
	delete(s.buyerAssignments, requestID)
	for uploadID, upload := range s.uploads {
		if upload.RequestID == requestID {
			delete(s.uploads, uploadID)
		}
	}
	return nil
}

func (s *Store) ApplyTransition(
	_ context.Context,
	requestID string,
	op entities.TransitionOp,
	actorID string,
	reason string,
	now time.Time,
) (entities.LaunchRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	request, exists := s.requests[requestID]
	if !exists {
		return entities.LaunchRequest{}, domainerrors.ErrRequestNotFound
	}

	if op == entities.TransitionClose && request.CanTransition(op) {
		if err := entities.ValidateCloseTotal(request.NumCreatives, s.editorRows(requestID)); err != nil {
			return entities.LaunchRequest{}, err
		}
	}

	next, ok := request.ApplyTransition(op, now)
	if !ok {
		return entities.LaunchRequest{}, fmt.Errorf("%w: %s from %s", domainerrors.ErrInvalidStatusTransition, op, request.Status)
	}

	s.requests[requestID] = next
	s.history = append(s.history, entities.StatusHistory{
		HistoryID:    uuid.NewString(),
		RequestID:    requestID,
		FromStatus:   request.Status,
		ToStatus:     next.Status,
		ChangedBy:    actorID,
		ChangeReason: reason,
		CreatedAt:    now,
	})
	return next, nil
}

func (s *Store) editorRows(requestID string) []entities.EditorAssignment {
	rows := make([]entities.EditorAssignment, 0, len(s.editorAssignments[requestID]))
	for _, row := range s.editorAssignments[requestID] {
		rows = append(rows, row)
	}
	return rows
}

func (s *Store) ListEditorAssignments(_ context.Context, requestID string) ([]entities.EditorAssignment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows := s.editorRows(requestID)
	sort.Slice(rows, func(i, j int) bool {
		return rows[i].AssignedAt.Before(rows[j].AssignedAt)
	})
	return rows, nil
}

func (s *Store) ReplaceDistribution(
	_ context.Context,
	requestID string,
	entries []entities.DistributionEntry,
	now time.Time,
) ([]entities.EditorAssignment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.requests[requestID]; !exists {
		return nil, domainerrors.ErrRequestNotFound
	}

	rows := s.editorAssignments[requestID]
	if rows == nil {
		rows = make(map[string]entities.EditorAssignment)
		s.editorAssignments[requestID] = rows
	}

	present := make(map[string]struct{}, len(entries))
	for _, entry := range entries {
		present[entry.EditorID] = struct{}{}
		if row, ok := rows[entry.EditorID]; ok {
			row.NumCreativesAssigned = entry.Count
			if row.Status == entities.EditorAssignmentReassigned {
				row.Status = entities.EditorAssignmentPending
			}
			row.UpdatedAt = now
			rows[entry.EditorID] = row
			continue
		}
		rows[entry.EditorID] = entities.EditorAssignment{
			RequestID:            requestID,
			EditorID:             entry.EditorID,
			NumCreativesAssigned: entry.Count,
			Status:               entities.EditorAssignmentPending,
			AssignedAt:           now,
			UpdatedAt:            now,
		}
	}
	for editorID, row := range rows {
		if _, ok := present[editorID]; ok {
			continue
		}
		if row.Status == entities.EditorAssignmentPending || row.Status == entities.EditorAssignmentInProgress {
			row.Status = entities.EditorAssignmentReassigned
			row.UpdatedAt = now
			rows[editorID] = row
		}
	}

	result := s.editorRows(requestID)
	sort.Slice(result, func(i, j int) bool {
		return result[i].AssignedAt.Before(result[j].AssignedAt)
	})
	return result, nil
}

func (s *Store) ListBuyerAssignments(_ context.Context, requestID string) ([]entities.BuyerAssignment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows := make([]entities.BuyerAssignment, 0, len(s.buyerAssignments[requestID]))
	for _, row := range s.buyerAssignments[requestID] {
		rows = append(rows, row)
	}
	sort.Slice(rows, func(i, j int) bool {
		return rows[i].BuyerID < rows[j].BuyerID
	})
	return rows, nil
}

func (s *Store) GetBuyerAssignment(_ context.Context, requestID string, buyerID string) (entities.BuyerAssignment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row, ok := s.buyerAssignments[requestID][strings.TrimSpace(buyerID)]
	if !ok {
		return entities.BuyerAssignment{}, domainerrors.ErrBuyerAssignmentNotFound
	}
	return row, nil
}

func (s *Store) ApplyBuyerAssignments(
	_ context.Context,
	requestID string,
	rows []entities.BuyerAssignment,
	committedRunQty *int,
	committedTestDeadline *time.Time,
	actorID string,
	envelope ports.EventEnvelope,
	now time.Time,
) (entities.LaunchRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	request, exists := s.requests[requestID]
	if !exists {
		return entities.LaunchRequest{}, domainerrors.ErrRequestNotFound
	}
	next, ok := request.ApplyTransition(entities.TransitionAssignBuyers, now)
	if !ok {
		return entities.LaunchRequest{}, fmt.Errorf("%w: assign_buyers from %s", domainerrors.ErrInvalidStatusTransition, request.Status)
	}
	if committedRunQty != nil {
		next.CommittedRunQty = committedRunQty
	}
	if committedTestDeadline != nil {
		deadline := committedTestDeadline.UTC()
		next.CommittedTestDeadline = &deadline
	}
	s.requests[requestID] = next

	existing := s.buyerAssignments[requestID]
	if existing == nil {
		existing = make(map[string]entities.BuyerAssignment)
		s.buyerAssignments[requestID] = existing
	}
	for _, row := range rows {
		if prior, ok := existing[row.BuyerID]; ok {
			row.MediaFolderID = prior.MediaFolderID
			row.AssignedAt = prior.AssignedAt
		}
		existing[row.BuyerID] = row
	}

	s.history = append(s.history, entities.StatusHistory{
		HistoryID:  uuid.NewString(),
		RequestID:  requestID,
		FromStatus: request.Status,
		ToStatus:   next.Status,
		ChangedBy:  actorID,
		CreatedAt:  now,
	})
	s.appendOutboxLocked(envelope)
	return next, nil
}

func (s *Store) CreateUpload(
	_ context.Context,
	upload entities.UploadRecord,
	envelope ports.EventEnvelope,
	now time.Time,
) (entities.LaunchRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	request, exists := s.requests[upload.RequestID]
	if !exists {
		return entities.LaunchRequest{}, domainerrors.ErrRequestNotFound
	}
	if _, exists := s.uploads[upload.UploadID]; exists {
		return entities.LaunchRequest{}, domainerrors.ErrInvalidRequestInput
	}
	s.uploads[upload.UploadID] = upload

	// Documented side transition: the first upload during review moves
	// the request into production without acceptByCreativeHead.
	if request.Status == entities.StatusPendingReview {
		next, _ := request.ApplyTransition(entities.TransitionAccept, now)
		s.requests[upload.RequestID] = next
		s.history = append(s.history, entities.StatusHistory{
			HistoryID:    uuid.NewString(),
			RequestID:    upload.RequestID,
			FromStatus:   request.Status,
			ToStatus:     next.Status,
			ChangedBy:    upload.UploadedBy,
			ChangeReason: "first_upload_during_review",
			CreatedAt:    now,
		})
		request = next
	}

	s.appendOutboxLocked(envelope)
	return request, nil
}

func (s *Store) GetUpload(_ context.Context, uploadID string) (entities.UploadRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	item, exists := s.uploads[strings.TrimSpace(uploadID)]
	if !exists {
		return entities.UploadRecord{}, domainerrors.ErrUploadNotFound
	}
	return item, nil
}

func (s *Store) ListUploads(_ context.Context, requestID string) ([]entities.UploadRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items := make([]entities.UploadRecord, 0)
	for _, item := range s.uploads {
		if item.RequestID == requestID {
			items = append(items, item)
		}
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].CreatedAt.Before(items[j].CreatedAt)
	})
	return items, nil
}

func (s *Store) AppendReassignment(_ context.Context, record entities.ReassignmentRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reassignments = append(s.reassignments, record)
	return nil
}

func (s *Store) ListReassignments(_ context.Context, requestID string) ([]entities.ReassignmentRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items := make([]entities.ReassignmentRecord, 0)
	for _, item := range s.reassignments {
		if item.RequestID == requestID {
			items = append(items, item)
		}
	}
	return items, nil
}

func (s *Store) AppendStatusHistory(_ context.Context, item entities.StatusHistory) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history = append(s.history, item)
	return nil
}

// StatusHistory returns a copy of the transition log for assertions.
func (s *Store) StatusHistory(requestID string) []entities.StatusHistory {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items := make([]entities.StatusHistory, 0)
	for _, item := range s.history {
		if item.RequestID == requestID {
			items = append(items, item)
		}
	}
	return items
}

func (s *Store) AppendOutbox(_ context.Context, envelope ports.EventEnvelope) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.appendOutboxLocked(envelope)
	return nil
}

func (s *Store) appendOutboxLocked(envelope ports.EventEnvelope) {
	payload, err := json.Marshal(envelope)
	if err != nil {
		return
	}
	outboxID := envelope.EventID
	if outboxID == "" {
		outboxID = uuid.NewString()
	}
	for _, row := range s.outbox {
		if row.message.OutboxID == outboxID {
			return
		}
	}
	s.outbox = append(s.outbox, outboxRow{
		message: ports.OutboxMessage{
			OutboxID:     outboxID,
			EventType:    envelope.EventType,
			PartitionKey: envelope.PartitionKey,
			Payload:      payload,
			CreatedAt:    envelope.OccurredAt,
		},
		status: outboxStatusPending,
	})
}

func (s *Store) ListPendingOutbox(_ context.Context, limit int) ([]ports.OutboxMessage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = 100
	}
	items := make([]ports.OutboxMessage, 0)
	for _, row := range s.outbox {
		if row.status != outboxStatusPending {
			continue
		}
		items = append(items, row.message)
		if len(items) == limit {
			break
		}
	}
	return items, nil
}

func (s *Store) MarkOutboxPublished(_ context.Context, outboxID string, publishedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, row := range s.outbox {
		if row.message.OutboxID == outboxID {
			timestamp := publishedAt.UTC()
			s.outbox[i].status = outboxStatusPublished
			s.outbox[i].publishedAt = &timestamp
			return nil
		}
	}
	return domainerrors.ErrInvalidRequestInput
}

func (s *Store) GetUserName(_ context.Context, userID string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	name, ok := s.users[strings.TrimSpace(userID)]
	if !ok {
		return "", domainerrors.ErrUserNotFound
	}
	return name, nil
}

func (s *Store) Put(_ context.Context, key string, data []byte, _ string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[key] = append([]byte(nil), data...)
	return key, nil
}

func (s *Store) Notify(_ context.Context, recipientID string, subject string, body string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Notifications = append(s.Notifications, Notification{
		RecipientID: recipientID,
		Subject:     subject,
		Body:        body,
	})
	return nil
}

func (s *Store) Now() time.Time {
	return time.Now().UTC()
}

func (s *Store) NewID(_ context.Context) (string, error) {
	return uuid.NewString(), nil
}

// GetMediaFolderID resolves the leaf-folder pointer; unset or missing
// rows read as empty.
func (s *Store) GetMediaFolderID(_ context.Context, requestID string, buyerID string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row, ok := s.buyerAssignments[requestID][buyerID]
	if !ok {
		return "", nil
	}
	return row.MediaFolderID, nil
}

// SetMediaFolderID upserts the pointer; buyers provisioned before an
// assignBuyers call (buyer head, creation-time buyers) get a bare row.
func (s *Store) SetMediaFolderID(_ context.Context, requestID string, buyerID string, folderID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows := s.buyerAssignments[requestID]
	if rows == nil {
		rows = make(map[string]entities.BuyerAssignment)
		s.buyerAssignments[requestID] = rows
	}
	row, ok := rows[buyerID]
	if !ok {
		now := time.Now().UTC()
		row = entities.BuyerAssignment{
			RequestID:  requestID,
			BuyerID:    buyerID,
			AssignedAt: now,
			UpdatedAt:  now,
		}
	}
	row.MediaFolderID = folderID
	rows[buyerID] = row
	return nil
}

func (s *Store) ClearMediaFolderID(_ context.Context, requestID string, buyerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	row, ok := s.buyerAssignments[requestID][buyerID]
	if !ok {
		return nil
	}
	row.MediaFolderID = ""
	s.buyerAssignments[requestID][buyerID] = row
	return nil
}

func (s *Store) ListProvisionedBuyers(_ context.Context, requestID string) ([]provisioningports.BuyerFolderRef, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	refs := make([]provisioningports.BuyerFolderRef, 0)
	for _, row := range s.buyerAssignments[requestID] {
		if row.MediaFolderID == "" {
			continue
		}
		refs = append(refs, provisioningports.BuyerFolderRef{
			BuyerID:  row.BuyerID,
			FolderID: row.MediaFolderID,
		})
	}
	sort.Slice(refs, func(i, j int) bool {
		return refs[i].BuyerID < refs[j].BuyerID
	})
	return refs, nil
}

func (s *Store) GetSourceUpload(_ context.Context, uploadID string) (provisioningports.SourceUpload, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	item, exists := s.uploads[strings.TrimSpace(uploadID)]
	if !exists {
		return provisioningports.SourceUpload{}, domainerrors.ErrUploadNotFound
	}
	return provisioningports.SourceUpload{
		UploadID:   item.UploadID,
		FileName:   item.FileName,
		MimeType:   item.MimeType,
		SizeBytes:  item.SizeBytes,
		StorageKey: item.StorageKey,
	}, nil
}
