package postgresadapter

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"launchdesk/contexts/launch-operations/request-service/domain/entities"
	domainerrors "launchdesk/contexts/launch-operations/request-service/domain/errors"
	"launchdesk/contexts/launch-operations/request-service/ports"
	provisioningports "launchdesk/contexts/launch-operations/provisioning-service/ports"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	outboxStatusPending   = "pending"
	outboxStatusPublished = "published"
)

type Repository struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewRepository(db *gorm.DB, logger *slog.Logger) *Repository {
	if logger == nil {
		logger = slog.Default()
	}
	return &Repository{
		db:     db,
		logger: logger,
	}
}

func (r *Repository) CreateRequest(ctx context.Context, request entities.LaunchRequest) error {
	row, err := requestModelFromEntity(request)
	if err != nil {
		return err
	}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		if isUniqueViolation(err) {
			return domainerrors.ErrInvalidRequestInput
		}
		return err
	}
	return nil
}

func (r *Repository) UpdateRequest(ctx context.Context, request entities.LaunchRequest) error {
	row, err := requestModelFromEntity(request)
	if err != nil {
		return err
	}
	result := r.db.WithContext(ctx).
		Model(&requestModel{}).
		Where("request_id = ?", row.RequestID).
		Updates(requestUpdates(row))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrRequestNotFound
	}
	return nil
}

func (r *Repository) GetRequest(ctx context.Context, requestID string) (entities.LaunchRequest, error) {
	var row requestModel
	err := r.db.WithContext(ctx).
		Where("request_id = ?", strings.TrimSpace(requestID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.LaunchRequest{}, domainerrors.ErrRequestNotFound
		}
		return entities.LaunchRequest{}, err
	}
	return row.toEntity(), nil
}

func (r *Repository) ListRequests(ctx context.Context, filter ports.RequestFilter) ([]entities.LaunchRequest, error) {
	tx := r.db.WithContext(ctx).Model(&requestModel{})
	if filter.Status != "" {
		tx = tx.Where("status = ?", string(filter.Status))
	}
	if filter.RequestType != "" {
		tx = tx.Where("request_type = ?", string(filter.RequestType))
	}
	if strings.TrimSpace(filter.CreatedBy) != "" {
		tx = tx.Where("created_by = ?", strings.TrimSpace(filter.CreatedBy))
	}
	if strings.TrimSpace(filter.HeadID) != "" {
		headID := strings.TrimSpace(filter.HeadID)
		tx = tx.Where("creative_head_id = ? OR buyer_head_id = ?", headID, headID)
	}
	if strings.TrimSpace(filter.EditorID) != "" {
		tx = tx.Where(
			"request_id IN (?)",
			r.db.Model(&editorAssignmentModel{}).
				Select("request_id").
				Where("editor_id = ?", strings.TrimSpace(filter.EditorID)).
				Where("status <> ?", string(entities.EditorAssignmentReassigned)),
		)
	}
	if strings.TrimSpace(filter.BuyerID) != "" {
		tx = tx.Where(
			"request_id IN (?)",
			r.db.Model(&buyerAssignmentModel{}).
				Select("request_id").
				Where("buyer_id = ?", strings.TrimSpace(filter.BuyerID)),
		)
	}

	var rows []requestModel
	if err := tx.Order("created_at DESC").Find(&rows).Error; err != nil {
		return nil, err
	}

	items := make([]entities.LaunchRequest, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items, nil
}

func (r *Repository) DeleteRequest(ctx context.Context, requestID string) error {
	requestID = strings.TrimSpace(requestID)
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Where("request_id = ?", requestID).Delete(&requestModel{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return domainerrors.ErrRequestNotFound
		}
		for _, child := range []any{
			&editorAssignmentModel{},
			&buyerAssignmentModel{},
			&uploadModel{},
		} {
			if err := tx.Where("request_id = ?", requestID).Delete(child).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// ApplyTransition locks the request row, evaluates the guard, and
// commits the status change with its history row. The close() guard
// reads the editor distribution under the same lock so a concurrent
// redistribution cannot slip between check and commit.
func (r *Repository) ApplyTransition(
	ctx context.Context,
	requestID string,
	op entities.TransitionOp,
	actorID string,
	reason string,
	now time.Time,
) (entities.LaunchRequest, error) {
	timestamp := now.UTC()
	if timestamp.IsZero() {
		timestamp = time.Now().UTC()
	}

	var updated entities.LaunchRequest
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		row, err := lockRequest(tx, requestID)
		if err != nil {
			return err
		}
		request := row.toEntity()

		if op == entities.TransitionClose && request.CanTransition(op) {
			assignments, err := listEditorRowsTx(tx, request.RequestID)
			if err != nil {
				return err
			}
			if err := entities.ValidateCloseTotal(request.NumCreatives, assignments); err != nil {
				return err
			}
		}

		next, ok := request.ApplyTransition(op, timestamp)
		if !ok {
			return fmt.Errorf("%w: %s from %s", domainerrors.ErrInvalidStatusTransition, op, request.Status)
		}

		nextRow, err := requestModelFromEntity(next)
		if err != nil {
			return err
		}
		if err := tx.Model(&requestModel{}).
			Where("request_id = ?", nextRow.RequestID).
			Updates(requestUpdates(nextRow)).
			Error; err != nil {
			return err
		}
		if err := insertHistoryTx(tx, request.Status, next.Status, next.RequestID, actorID, reason, timestamp); err != nil {
			return err
		}
		updated = next
		return nil
	})
	if err != nil {
		return entities.LaunchRequest{}, err
	}
	return updated, nil
}

func (r *Repository) ListEditorAssignments(ctx context.Context, requestID string) ([]entities.EditorAssignment, error) {
	var rows []editorAssignmentModel
	if err := r.db.WithContext(ctx).
		Where("request_id = ?", strings.TrimSpace(requestID)).
		Order("assigned_at ASC").
		Find(&rows).
		Error; err != nil {
		return nil, err
	}
	items := make([]entities.EditorAssignment, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items, nil
}

func (r *Repository) ReplaceDistribution(
	ctx context.Context,
	requestID string,
	entries []entities.DistributionEntry,
	now time.Time,
) ([]entities.EditorAssignment, error) {
	timestamp := now.UTC()
	if timestamp.IsZero() {
		timestamp = time.Now().UTC()
	}
	requestID = strings.TrimSpace(requestID)

	var result []entities.EditorAssignment
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := lockRequest(tx, requestID); err != nil {
			return err
		}

		var existing []editorAssignmentModel
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("request_id = ?", requestID).
			Find(&existing).
			Error; err != nil {
			return err
		}
		existingByEditor := make(map[string]editorAssignmentModel, len(existing))
		for _, row := range existing {
			existingByEditor[row.EditorID] = row
		}

		present := make(map[string]struct{}, len(entries))
		for _, entry := range entries {
			present[entry.EditorID] = struct{}{}
			if row, ok := existingByEditor[entry.EditorID]; ok {
				updates := map[string]any{
					"num_creatives_assigned": entry.Count,
					"updated_at":             timestamp,
				}
				if row.Status == string(entities.EditorAssignmentReassigned) {
					updates["status"] = string(entities.EditorAssignmentPending)
				}
				if err := tx.Model(&editorAssignmentModel{}).
					Where("request_id = ? AND editor_id = ?", requestID, entry.EditorID).
					Updates(updates).
					Error; err != nil {
					return err
				}
				continue
			}
			row := editorAssignmentModel{
				RequestID:            requestID,
				EditorID:             entry.EditorID,
				NumCreativesAssigned: entry.Count,
				Status:               string(entities.EditorAssignmentPending),
				AssignedAt:           timestamp,
				UpdatedAt:            timestamp,
			}
			if err := tx.Create(&row).Error; err != nil {
				return err
			}
		}

		for editorID, row := range existingByEditor {
			if _, ok := present[editorID]; ok {
				continue
			}
			if row.Status != string(entities.EditorAssignmentPending) &&
				row.Status != string(entities.EditorAssignmentInProgress) {
				continue
			}
			if err := tx.Model(&editorAssignmentModel{}).
				Where("request_id = ? AND editor_id = ?", requestID, editorID).
				Updates(map[string]any{
					"status":     string(entities.EditorAssignmentReassigned),
					"updated_at": timestamp,
				}).
				Error; err != nil {
				return err
			}
		}

		items, err := listEditorRowsTx(tx, requestID)
		if err != nil {
			return err
		}
		result = items
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (r *Repository) ListBuyerAssignments(ctx context.Context, requestID string) ([]entities.BuyerAssignment, error) {
	var rows []buyerAssignmentModel
	if err := r.db.WithContext(ctx).
		Where("request_id = ?", strings.TrimSpace(requestID)).
		Order("buyer_id ASC").
		Find(&rows).
		Error; err != nil {
		return nil, err
	}
	items := make([]entities.BuyerAssignment, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items, nil
}

func (r *Repository) GetBuyerAssignment(ctx context.Context, requestID string, buyerID string) (entities.BuyerAssignment, error) {
	var row buyerAssignmentModel
	err := r.db.WithContext(ctx).
		Where("request_id = ?", strings.TrimSpace(requestID)).
		Where("buyer_id = ?", strings.TrimSpace(buyerID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.BuyerAssignment{}, domainerrors.ErrBuyerAssignmentNotFound
		}
		return entities.BuyerAssignment{}, err
	}
	return row.toEntity(), nil
}

// ApplyBuyerAssignments commits the buyer_assigned transition, the
// buyer rows, and the provisioning outbox row as one unit. Upserts
// preserve media_folder_id and assigned_at so re-running the call never
// orphans an already provisioned folder.
func (r *Repository) ApplyBuyerAssignments(
	ctx context.Context,
	requestID string,
	rows []entities.BuyerAssignment,
	committedRunQty *int,
	committedTestDeadline *time.Time,
	actorID string,
	envelope ports.EventEnvelope,
	now time.Time,
) (entities.LaunchRequest, error) {
	timestamp := now.UTC()
	if timestamp.IsZero() {
		timestamp = time.Now().UTC()
	}

	var updated entities.LaunchRequest
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		row, err := lockRequest(tx, requestID)
		if err != nil {
			return err
		}
		request := row.toEntity()

		next, ok := request.ApplyTransition(entities.TransitionAssignBuyers, timestamp)
		if !ok {
			return fmt.Errorf("%w: assign_buyers from %s", domainerrors.ErrInvalidStatusTransition, request.Status)
		}
		if committedRunQty != nil {
			next.CommittedRunQty = committedRunQty
		}
		if committedTestDeadline != nil {
			deadline := committedTestDeadline.UTC()
			next.CommittedTestDeadline = &deadline
		}

		nextRow, err := requestModelFromEntity(next)
		if err != nil {
			return err
		}
		if err := tx.Model(&requestModel{}).
			Where("request_id = ?", nextRow.RequestID).
			Updates(requestUpdates(nextRow)).
			Error; err != nil {
			return err
		}

		for _, item := range rows {
			assignmentRow := buyerAssignmentModelFromEntity(item)
			assignmentRow.RequestID = next.RequestID
			assignmentRow.AssignedAt = timestamp
			assignmentRow.UpdatedAt = timestamp
			if err := tx.Clauses(clause.OnConflict{
				Columns: []clause.Column{{Name: "request_id"}, {Name: "buyer_id"}},
				DoUpdates: clause.AssignmentColumns([]string{
					"assigned_file_ids",
					"run_qty",
					"test_deadline",
					"updated_at",
				}),
			}).Create(&assignmentRow).Error; err != nil {
				return err
			}
		}

		if err := insertHistoryTx(tx, request.Status, next.Status, next.RequestID, actorID, "", timestamp); err != nil {
			return err
		}
		if err := insertOutboxEnvelopeTx(tx, envelope); err != nil {
			return err
		}
		updated = next
		return nil
	})
	if err != nil {
		return entities.LaunchRequest{}, err
	}
	return updated, nil
}

// CreateUpload inserts the immutable upload row and, when the request is
// still pending_review, advances it to in_production in the same
// transaction.
func (r *Repository) CreateUpload(
	ctx context.Context,
	upload entities.UploadRecord,
	envelope ports.EventEnvelope,
	now time.Time,
) (entities.LaunchRequest, error) {
	timestamp := now.UTC()
	if timestamp.IsZero() {
		timestamp = time.Now().UTC()
	}

	var current entities.LaunchRequest
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		row, err := lockRequest(tx, upload.RequestID)
		if err != nil {
			return err
		}
		request := row.toEntity()

		uploadRow := uploadModelFromEntity(upload)
		if err := tx.Create(&uploadRow).Error; err != nil {
			if isUniqueViolation(err) {
				return domainerrors.ErrInvalidRequestInput
			}
			return err
		}

		if request.Status == entities.StatusPendingReview {
			next, _ := request.ApplyTransition(entities.TransitionAccept, timestamp)
			nextRow, err := requestModelFromEntity(next)
			if err != nil {
				return err
			}
			if err := tx.Model(&requestModel{}).
				Where("request_id = ?", nextRow.RequestID).
				Updates(requestUpdates(nextRow)).
				Error; err != nil {
				return err
			}
			if err := insertHistoryTx(
				tx,
				request.Status,
				next.Status,
				next.RequestID,
				upload.UploadedBy,
				"first_upload_during_review",
				timestamp,
			); err != nil {
				return err
			}
			request = next
		}

		if err := insertOutboxEnvelopeTx(tx, envelope); err != nil {
			return err
		}
		current = request
		return nil
	})
	if err != nil {
		return entities.LaunchRequest{}, err
	}
	return current, nil
}

func (r *Repository) GetUpload(ctx context.Context, uploadID string) (entities.UploadRecord, error) {
	var row uploadModel
	err := r.db.WithContext(ctx).
		Where("upload_id = ?", strings.TrimSpace(uploadID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.UploadRecord{}, domainerrors.ErrUploadNotFound
		}
		return entities.UploadRecord{}, err
	}
	return row.toEntity(), nil
}

func (r *Repository) ListUploads(ctx context.Context, requestID string) ([]entities.UploadRecord, error) {
	var rows []uploadModel
	if err := r.db.WithContext(ctx).
		Where("request_id = ?", strings.TrimSpace(requestID)).
		Order("created_at ASC").
		Find(&rows).
		Error; err != nil {
		return nil, err
	}
	items := make([]entities.UploadRecord, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items, nil
}

func (r *Repository) AppendReassignment(ctx context.Context, record entities.ReassignmentRecord) error {
	row := reassignmentModel{
		RecordID:  strings.TrimSpace(record.RecordID),
		RequestID: strings.TrimSpace(record.RequestID),
		ActorID:   strings.TrimSpace(record.ActorID),
		Type:      string(record.Type),
		FromName:  strings.TrimSpace(record.FromName),
		ToName:    strings.TrimSpace(record.ToName),
		Reason:    strings.TrimSpace(record.Reason),
		CreatedAt: record.CreatedAt.UTC(),
	}
	if row.CreatedAt.IsZero() {
		row.CreatedAt = time.Now().UTC()
	}
	return r.db.WithContext(ctx).Create(&row).Error
}

func (r *Repository) ListReassignments(ctx context.Context, requestID string) ([]entities.ReassignmentRecord, error) {
	var rows []reassignmentModel
	if err := r.db.WithContext(ctx).
		Where("request_id = ?", strings.TrimSpace(requestID)).
		Order("created_at ASC").
		Find(&rows).
		Error; err != nil {
		return nil, err
	}
	items := make([]entities.ReassignmentRecord, 0, len(rows))
	for _, row := range rows {
		items = append(items, entities.ReassignmentRecord{
			RecordID:  row.RecordID,
			RequestID: row.RequestID,
			ActorID:   row.ActorID,
			Type:      entities.ReassignmentType(row.Type),
			FromName:  row.FromName,
			ToName:    row.ToName,
			Reason:    row.Reason,
			CreatedAt: row.CreatedAt.UTC(),
		})
	}
	return items, nil
}

func (r *Repository) AppendStatusHistory(ctx context.Context, item entities.StatusHistory) error {
	row := statusHistoryModel{
		HistoryID:    strings.TrimSpace(item.HistoryID),
		RequestID:    strings.TrimSpace(item.RequestID),
		FromStatus:   string(item.FromStatus),
		ToStatus:     string(item.ToStatus),
		ChangedBy:    strings.TrimSpace(item.ChangedBy),
		ChangeReason: strings.TrimSpace(item.ChangeReason),
		CreatedAt:    item.CreatedAt.UTC(),
	}
	if row.HistoryID == "" {
		row.HistoryID = uuid.NewString()
	}
	if row.CreatedAt.IsZero() {
		row.CreatedAt = time.Now().UTC()
	}
	return r.db.WithContext(ctx).Create(&row).Error
}

func (r *Repository) AppendOutbox(ctx context.Context, envelope ports.EventEnvelope) error {
	return insertOutboxEnvelopeTx(r.db.WithContext(ctx), envelope)
}

func (r *Repository) ListPendingOutbox(ctx context.Context, limit int) ([]ports.OutboxMessage, error) {
	if limit <= 0 {
		limit = 100
	}

	var rows []outboxModel
	if err := r.db.WithContext(ctx).
		Where("status = ?", outboxStatusPending).
		Order("created_at ASC").
		Limit(limit).
		Find(&rows).
		Error; err != nil {
		return nil, err
	}

	items := make([]ports.OutboxMessage, 0, len(rows))
	for _, row := range rows {
		items = append(items, ports.OutboxMessage{
			OutboxID:     row.OutboxID,
			EventType:    row.EventType,
			PartitionKey: row.PartitionKey,
			Payload:      append([]byte(nil), row.Payload...),
			CreatedAt:    row.CreatedAt.UTC(),
		})
	}
	return items, nil
}

func (r *Repository) MarkOutboxPublished(ctx context.Context, outboxID string, publishedAt time.Time) error {
	result := r.db.WithContext(ctx).
		Model(&outboxModel{}).
		Where("outbox_id = ?", strings.TrimSpace(outboxID)).
		Updates(map[string]any{
			"status":       outboxStatusPublished,
			"published_at": publishedAt.UTC(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrInvalidRequestInput
	}
	return nil
}

func (r *Repository) GetUserName(ctx context.Context, userID string) (string, error) {
	var row userProjectionModel
	err := r.db.WithContext(ctx).
		Where("user_id = ?", strings.TrimSpace(userID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", domainerrors.ErrUserNotFound
		}
		return "", err
	}
	return row.DisplayName, nil
}

// GetMediaFolderID reads the leaf-folder pointer; missing rows read as
// unset rather than an error so provisioning can run before the buyer
// was formally assigned.
func (r *Repository) GetMediaFolderID(ctx context.Context, requestID string, buyerID string) (string, error) {
	var row buyerAssignmentModel
	err := r.db.WithContext(ctx).
		Where("request_id = ?", strings.TrimSpace(requestID)).
		Where("buyer_id = ?", strings.TrimSpace(buyerID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil
		}
		return "", err
	}
	return row.MediaFolderID, nil
}

// SetMediaFolderID upserts the pointer. Buyers provisioned from the
// creation event (buyer head, pre-listed buyers) may not have an
// assignment row yet; they get a bare one carrying just the pointer.
func (r *Repository) SetMediaFolderID(ctx context.Context, requestID string, buyerID string, folderID string) error {
	now := time.Now().UTC()
	row := buyerAssignmentModel{
		RequestID:     strings.TrimSpace(requestID),
		BuyerID:       strings.TrimSpace(buyerID),
		MediaFolderID: strings.TrimSpace(folderID),
		AssignedAt:    now,
		UpdatedAt:     now,
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "request_id"}, {Name: "buyer_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"media_folder_id",
				"updated_at",
			}),
		}).
		Create(&row).
		Error
}

func (r *Repository) ClearMediaFolderID(ctx context.Context, requestID string, buyerID string) error {
	return r.db.WithContext(ctx).
		Model(&buyerAssignmentModel{}).
		Where("request_id = ?", strings.TrimSpace(requestID)).
		Where("buyer_id = ?", strings.TrimSpace(buyerID)).
		Updates(map[string]any{
			"media_folder_id": "",
			"updated_at":      time.Now().UTC(),
		}).
		Error
}

func (r *Repository) ListProvisionedBuyers(ctx context.Context, requestID string) ([]provisioningports.BuyerFolderRef, error) {
	var rows []buyerAssignmentModel
	if err := r.db.WithContext(ctx).
		Where("request_id = ?", strings.TrimSpace(requestID)).
		Where("media_folder_id <> ''").
		Order("buyer_id ASC").
		Find(&rows).
		Error; err != nil {
		return nil, err
	}
	refs := make([]provisioningports.BuyerFolderRef, 0, len(rows))
	for _, row := range rows {
		refs = append(refs, provisioningports.BuyerFolderRef{
			BuyerID:  row.BuyerID,
			FolderID: row.MediaFolderID,
		})
	}
	return refs, nil
}

func (r *Repository) GetSourceUpload(ctx context.Context, uploadID string) (provisioningports.SourceUpload, error) {
	var row uploadModel
	err := r.db.WithContext(ctx).
		Where("upload_id = ?", strings.TrimSpace(uploadID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return provisioningports.SourceUpload{}, domainerrors.ErrUploadNotFound
		}
		return provisioningports.SourceUpload{}, err
	}
	return provisioningports.SourceUpload{
		UploadID:   row.UploadID,
		FileName:   row.FileName,
		MimeType:   row.MimeType,
		SizeBytes:  row.SizeBytes,
		StorageKey: row.StorageKey,
	}, nil
}

func lockRequest(tx *gorm.DB, requestID string) (requestModel, error) {
	var row requestModel
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("request_id = ?", strings.TrimSpace(requestID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return requestModel{}, domainerrors.ErrRequestNotFound
		}
		return requestModel{}, err
	}
	return row, nil
}

func listEditorRowsTx(tx *gorm.DB, requestID string) ([]entities.EditorAssignment, error) {
	var rows []editorAssignmentModel
	if err := tx.Where("request_id = ?", strings.TrimSpace(requestID)).
		Order("assigned_at ASC").
		Find(&rows).
		Error; err != nil {
		return nil, err
	}
	items := make([]entities.EditorAssignment, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items, nil
}

func insertHistoryTx(
	tx *gorm.DB,
	from entities.RequestStatus,
	to entities.RequestStatus,
	requestID string,
	actorID string,
	reason string,
	now time.Time,
) error {
	row := statusHistoryModel{
		HistoryID:    uuid.NewString(),
		RequestID:    strings.TrimSpace(requestID),
		FromStatus:   string(from),
		ToStatus:     string(to),
		ChangedBy:    strings.TrimSpace(actorID),
		ChangeReason: strings.TrimSpace(reason),
		CreatedAt:    now,
	}
	return tx.Create(&row).Error
}

func insertOutboxEnvelopeTx(tx *gorm.DB, envelope ports.EventEnvelope) error {
	payload, err := json.Marshal(envelope)
	if err != nil {
		return err
	}
	row := outboxModel{
		OutboxID:     strings.TrimSpace(envelope.EventID),
		EventType:    strings.TrimSpace(envelope.EventType),
		PartitionKey: strings.TrimSpace(envelope.PartitionKey),
		Payload:      payload,
		Status:       outboxStatusPending,
		CreatedAt:    envelope.OccurredAt.UTC(),
	}
	if row.OutboxID == "" {
		row.OutboxID = uuid.NewString()
	}
	if row.CreatedAt.IsZero() {
		row.CreatedAt = time.Now().UTC()
	}

	createResult := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "outbox_id"}},
		DoNothing: true,
	}).Create(&row)
	if createResult.Error != nil {
		return createResult.Error
	}
	if createResult.RowsAffected > 0 {
		return nil
	}

	var existing outboxModel
	if err := tx.Select("payload").
		Where("outbox_id = ?", row.OutboxID).
		First(&existing).
		Error; err != nil {
		return err
	}
	if !bytes.Equal(existing.Payload, row.Payload) {
		return domainerrors.ErrInvalidRequestInput
	}
	return nil
}

type requestModel struct {
	RequestID             string     `gorm:"column:request_id;primaryKey"`
	Title                 string     `gorm:"column:title"`
	RequestType           string     `gorm:"column:request_type"`
	Status                string     `gorm:"column:status"`
	NumCreatives          int        `gorm:"column:num_creatives"`
	SuggestedRunQty       int        `gorm:"column:suggested_run_qty"`
	CommittedRunQty       *int       `gorm:"column:committed_run_qty"`
	DeliveryDeadline      *time.Time `gorm:"column:delivery_deadline"`
	TestDeadline          *time.Time `gorm:"column:test_deadline"`
	CommittedTestDeadline *time.Time `gorm:"column:committed_test_deadline"`
	Platforms             []string   `gorm:"column:platforms;type:text[]"`
	Verticals             []byte     `gorm:"column:verticals"`
	CreativeHeadID        string     `gorm:"column:creative_head_id"`
	BuyerHeadID           string     `gorm:"column:buyer_head_id"`
	CreatedBy             string     `gorm:"column:created_by"`
	CreatedAt             time.Time  `gorm:"column:created_at"`
	UpdatedAt             time.Time  `gorm:"column:updated_at"`
	SubmittedAt           *time.Time `gorm:"column:submitted_at"`
	AcceptedAt            *time.Time `gorm:"column:accepted_at"`
	ReadyAt               *time.Time `gorm:"column:ready_at"`
	BuyerAssignedAt       *time.Time `gorm:"column:buyer_assigned_at"`
	LaunchedAt            *time.Time `gorm:"column:launched_at"`
	ClosedAt              *time.Time `gorm:"column:closed_at"`
}

func (requestModel) TableName() string {
	return "launch_requests"
}

type verticalDocument struct {
	Name    string `json:"name"`
	Primary bool   `json:"primary"`
}

func requestModelFromEntity(item entities.LaunchRequest) (requestModel, error) {
	verticals := make([]verticalDocument, 0, len(item.Verticals))
	for _, vertical := range item.Verticals {
		verticals = append(verticals, verticalDocument{Name: vertical.Name, Primary: vertical.Primary})
	}
	verticalsRaw, err := json.Marshal(verticals)
	if err != nil {
		return requestModel{}, err
	}
	return requestModel{
		RequestID:             strings.TrimSpace(item.RequestID),
		Title:                 strings.TrimSpace(item.Title),
		RequestType:           string(item.RequestType),
		Status:                string(item.Status),
		NumCreatives:          item.NumCreatives,
		SuggestedRunQty:       item.SuggestedRunQty,
		CommittedRunQty:       item.CommittedRunQty,
		DeliveryDeadline:      normalizeOptionalTime(item.DeliveryDeadline),
		TestDeadline:          normalizeOptionalTime(item.TestDeadline),
		CommittedTestDeadline: normalizeOptionalTime(item.CommittedTestDeadline),
		Platforms:             append([]string(nil), item.Platforms...),
		Verticals:             verticalsRaw,
		CreativeHeadID:        strings.TrimSpace(item.CreativeHeadID),
		BuyerHeadID:           strings.TrimSpace(item.BuyerHeadID),
		CreatedBy:             strings.TrimSpace(item.CreatedBy),
		CreatedAt:             item.CreatedAt.UTC(),
		UpdatedAt:             item.UpdatedAt.UTC(),
		SubmittedAt:           normalizeOptionalTime(item.SubmittedAt),
		AcceptedAt:            normalizeOptionalTime(item.AcceptedAt),
		ReadyAt:               normalizeOptionalTime(item.ReadyAt),
		BuyerAssignedAt:       normalizeOptionalTime(item.BuyerAssignedAt),
		LaunchedAt:            normalizeOptionalTime(item.LaunchedAt),
		ClosedAt:              normalizeOptionalTime(item.ClosedAt),
	}, nil
}

func requestUpdates(row requestModel) map[string]any {
	return map[string]any{
		"title":                   row.Title,
		"request_type":            row.RequestType,
		"status":                  row.Status,
		"num_creatives":           row.NumCreatives,
		"suggested_run_qty":       row.SuggestedRunQty,
		"committed_run_qty":       row.CommittedRunQty,
		"delivery_deadline":       row.DeliveryDeadline,
		"test_deadline":           row.TestDeadline,
		"committed_test_deadline": row.CommittedTestDeadline,
		"platforms":               row.Platforms,
		"verticals":               row.Verticals,
		"creative_head_id":        row.CreativeHeadID,
		"buyer_head_id":           row.BuyerHeadID,
		"updated_at":              row.UpdatedAt,
		"submitted_at":            row.SubmittedAt,
		"accepted_at":             row.AcceptedAt,
		"ready_at":                row.ReadyAt,
		"buyer_assigned_at":       row.BuyerAssignedAt,
		"launched_at":             row.LaunchedAt,
		"closed_at":               row.ClosedAt,
	}
}

func (m requestModel) toEntity() entities.LaunchRequest {
	verticals := make([]verticalDocument, 0)
	if len(m.Verticals) > 0 {
		_ = json.Unmarshal(m.Verticals, &verticals)
	}
	items := make([]entities.Vertical, 0, len(verticals))
	for _, vertical := range verticals {
		items = append(items, entities.Vertical{Name: vertical.Name, Primary: vertical.Primary})
	}
	return entities.LaunchRequest{
		RequestID:             m.RequestID,
		Title:                 m.Title,
		RequestType:           entities.RequestType(m.RequestType),
		Status:                entities.RequestStatus(m.Status),
		NumCreatives:          m.NumCreatives,
		SuggestedRunQty:       m.SuggestedRunQty,
		CommittedRunQty:       m.CommittedRunQty,
		DeliveryDeadline:      normalizeOptionalTime(m.DeliveryDeadline),
		TestDeadline:          normalizeOptionalTime(m.TestDeadline),
		CommittedTestDeadline: normalizeOptionalTime(m.CommittedTestDeadline),
		Platforms:             append([]string(nil), m.Platforms...),
		Verticals:             items,
		CreativeHeadID:        m.CreativeHeadID,
		BuyerHeadID:           m.BuyerHeadID,
		CreatedBy:             m.CreatedBy,
		CreatedAt:             m.CreatedAt.UTC(),
		UpdatedAt:             m.UpdatedAt.UTC(),
		SubmittedAt:           normalizeOptionalTime(m.SubmittedAt),
		AcceptedAt:            normalizeOptionalTime(m.AcceptedAt),
		ReadyAt:               normalizeOptionalTime(m.ReadyAt),
		BuyerAssignedAt:       normalizeOptionalTime(m.BuyerAssignedAt),
		LaunchedAt:            normalizeOptionalTime(m.LaunchedAt),
		ClosedAt:              normalizeOptionalTime(m.ClosedAt),
	}
}

type editorAssignmentModel struct {
	RequestID            string    `gorm:"column:request_id;primaryKey"`
	EditorID             string    `gorm:"column:editor_id;primaryKey"`
	NumCreativesAssigned int       `gorm:"column:num_creatives_assigned"`
	CreativesCompleted   int       `gorm:"column:creatives_completed"`
	Status               string    `gorm:"column:status"`
	AssignedAt           time.Time `gorm:"column:assigned_at"`
	UpdatedAt            time.Time `gorm:"column:updated_at"`
}

func (editorAssignmentModel) TableName() string {
	return "editor_assignments"
}

func (m editorAssignmentModel) toEntity() entities.EditorAssignment {
	return entities.EditorAssignment{
		RequestID:            m.RequestID,
		EditorID:             m.EditorID,
		NumCreativesAssigned: m.NumCreativesAssigned,
		CreativesCompleted:   m.CreativesCompleted,
		Status:               entities.EditorAssignmentStatus(m.Status),
		AssignedAt:           m.AssignedAt.UTC(),
		UpdatedAt:            m.UpdatedAt.UTC(),
	}
}

type buyerAssignmentModel struct {
	RequestID       string     `gorm:"column:request_id;primaryKey"`
	BuyerID         string     `gorm:"column:buyer_id;primaryKey"`
	AssignedFileIDs []string   `gorm:"column:assigned_file_ids;type:text[]"`
	RunQty          int        `gorm:"column:run_qty"`
	TestDeadline    *time.Time `gorm:"column:test_deadline"`
	MediaFolderID   string     `gorm:"column:media_folder_id"`
	AssignedAt      time.Time  `gorm:"column:assigned_at"`
	UpdatedAt       time.Time  `gorm:"column:updated_at"`
}

func (buyerAssignmentModel) TableName() string {
	return "buyer_assignments"
}

func buyerAssignmentModelFromEntity(item entities.BuyerAssignment) buyerAssignmentModel {
	return buyerAssignmentModel{
		RequestID:       strings.TrimSpace(item.RequestID),
		BuyerID:         strings.TrimSpace(item.BuyerID),
		AssignedFileIDs: append([]string(nil), item.AssignedFileIDs...),
		RunQty:          item.RunQty,
		TestDeadline:    normalizeOptionalTime(item.TestDeadline),
		MediaFolderID:   strings.TrimSpace(item.MediaFolderID),
		AssignedAt:      item.AssignedAt.UTC(),
		UpdatedAt:       item.UpdatedAt.UTC(),
	}
}

func (m buyerAssignmentModel) toEntity() entities.BuyerAssignment {
	return entities.BuyerAssignment{
		RequestID:       m.RequestID,
		BuyerID:         m.BuyerID,
		AssignedFileIDs: append([]string(nil), m.AssignedFileIDs...),
		RunQty:          m.RunQty,
		TestDeadline:    normalizeOptionalTime(m.TestDeadline),
		MediaFolderID:   m.MediaFolderID,
		AssignedAt:      m.AssignedAt.UTC(),
		UpdatedAt:       m.UpdatedAt.UTC(),
	}
}

type uploadModel struct {
	UploadID   string    `gorm:"column:upload_id;primaryKey"`
	RequestID  string    `gorm:"column:request_id"`
	UploadedBy string    `gorm:"column:uploaded_by"`
	FileName   string    `gorm:"column:file_name"`
	MimeType   string    `gorm:"column:mime_type"`
	SizeBytes  int64     `gorm:"column:size_bytes"`
	StorageKey string    `gorm:"column:storage_key"`
	Comments   string    `gorm:"column:comments"`
	CreatedAt  time.Time `gorm:"column:created_at"`
}

func (uploadModel) TableName() string {
	return "request_uploads"
}

func uploadModelFromEntity(item entities.UploadRecord) uploadModel {
	return uploadModel{
		UploadID:   strings.TrimSpace(item.UploadID),
		RequestID:  strings.TrimSpace(item.RequestID),
		UploadedBy: strings.TrimSpace(item.UploadedBy),
		FileName:   strings.TrimSpace(item.FileName),
		MimeType:   strings.TrimSpace(item.MimeType),
		SizeBytes:  item.SizeBytes,
		StorageKey: strings.TrimSpace(item.StorageKey),
		Comments:   strings.TrimSpace(item.Comments),
		CreatedAt:  item.CreatedAt.UTC(),
	}
}

func (m uploadModel) toEntity() entities.UploadRecord {
	return entities.UploadRecord{
		UploadID:   m.UploadID,
		RequestID:  m.RequestID,
		UploadedBy: m.UploadedBy,
		FileName:   m.FileName,
		MimeType:   m.MimeType,
		SizeBytes:  m.SizeBytes,
		StorageKey: m.StorageKey,
		Comments:   m.Comments,
		CreatedAt:  m.CreatedAt.UTC(),
	}
}

type reassignmentModel struct {
	RecordID  string    `gorm:"column:record_id;primaryKey"`
	RequestID string    `gorm:"column:request_id"`
	ActorID   string    `gorm:"column:actor_id"`
	Type      string    `gorm:"column:type"`
	FromName  string    `gorm:"column:from_name"`
	ToName    string    `gorm:"column:to_name"`
	Reason    string    `gorm:"column:reason"`
	CreatedAt time.Time `gorm:"column:created_at"`
}

func (reassignmentModel) TableName() string {
	return "head_reassignments"
}

type statusHistoryModel struct {
	HistoryID    string    `gorm:"column:history_id;primaryKey"`
	RequestID    string    `gorm:"column:request_id"`
	FromStatus   string    `gorm:"column:from_status"`
	ToStatus     string    `gorm:"column:to_status"`
	ChangedBy    string    `gorm:"column:changed_by"`
	ChangeReason string    `gorm:"column:change_reason"`
	CreatedAt    time.Time `gorm:"column:created_at"`
}

func (statusHistoryModel) TableName() string {
	return "request_status_history"
}

type outboxModel struct {
	OutboxID     string     `gorm:"column:outbox_id;primaryKey"`
	EventType    string     `gorm:"column:event_type"`
	PartitionKey string     `gorm:"column:partition_key"`
	Payload      []byte     `gorm:"column:payload"`
	Status       string     `gorm:"column:status"`
	CreatedAt    time.Time  `gorm:"column:created_at"`
	PublishedAt  *time.Time `gorm:"column:published_at"`
}

func (outboxModel) TableName() string {
	return "request_outbox"
}

type userProjectionModel struct {
	UserID      string `gorm:"column:user_id;primaryKey"`
	DisplayName string `gorm:"column:display_name"`
	Role        string `gorm:"column:role"`
}

func (userProjectionModel) TableName() string {
	return "users"
}

func normalizeOptionalTime(value *time.Time) *time.Time {
	if value == nil {
		return nil
	}
	timestamp := value.UTC()
	return &timestamp
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
