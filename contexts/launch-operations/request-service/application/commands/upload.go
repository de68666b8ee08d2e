package commands

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	application "launchdesk/contexts/launch-operations/request-service/application"
	"launchdesk/contexts/launch-operations/request-service/domain/entities"
	domainerrors "launchdesk/contexts/launch-operations/request-service/domain/errors"
	"launchdesk/contexts/launch-operations/request-service/ports"
	"launchdesk/internal/shared/events"
)

type UploadCommand struct {
	RequestID string
	ActorID   string
	FileName  string
	MimeType  string
	Data      []byte
	Comments  string
}

type UploadUseCase struct {
	Requests ports.RequestRepository
	Uploads  ports.UploadRepository
	Storage  ports.ObjectStorage
	Clock    ports.Clock
	IDGen    ports.IDGenerator
	Logger   *slog.Logger
}

// Execute stores the binary, inserts the immutable upload row, and
// enqueues routing to every provisioned buyer folder. The first upload
// while the request is pending_review silently advances it to
// in_production; that side transition happens inside the repository
// transaction.
func (uc UploadUseCase) Execute(ctx context.Context, cmd UploadCommand) (entities.UploadRecord, error) {
	logger := application.ResolveLogger(uc.Logger)

	fileName := strings.TrimSpace(cmd.FileName)
	if fileName == "" || len(cmd.Data) == 0 {
		return entities.UploadRecord{}, fmt.Errorf("%w: file name and content are required", domainerrors.ErrInvalidRequestInput)
	}

	request, err := uc.Requests.GetRequest(ctx, strings.TrimSpace(cmd.RequestID))
	if err != nil {
		return entities.UploadRecord{}, err
	}

	now := uc.Clock.Now().UTC()
	uploadID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		return entities.UploadRecord{}, err
	}

	storageKey, err := uc.Storage.Put(
		ctx,
		fmt.Sprintf("requests/%s/uploads/%s-%s", request.RequestID, uploadID, fileName),
		cmd.Data,
		cmd.MimeType,
	)
	if err != nil {
		return entities.UploadRecord{}, err
	}

	upload := entities.UploadRecord{
		UploadID:   uploadID,
		RequestID:  request.RequestID,
		UploadedBy: strings.TrimSpace(cmd.ActorID),
		FileName:   fileName,
		MimeType:   strings.TrimSpace(cmd.MimeType),
		SizeBytes:  int64(len(cmd.Data)),
		StorageKey: storageKey,
		Comments:   strings.TrimSpace(cmd.Comments),
		CreatedAt:  now,
	}

	eventID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		return entities.UploadRecord{}, err
	}
	envelope, err := events.NewEnvelope(eventID, events.TopicUploadCreated, "request-service", request.RequestID, now, events.UploadCreated{
		RequestID:  request.RequestID,
		UploadID:   upload.UploadID,
		FileName:   upload.FileName,
		MimeType:   upload.MimeType,
		SizeBytes:  upload.SizeBytes,
		StorageKey: upload.StorageKey,
	})
	if err != nil {
		return entities.UploadRecord{}, err
	}

	request, err = uc.Uploads.CreateUpload(ctx, upload, envelope, now)
	if err != nil {
		return entities.UploadRecord{}, err
	}

	logger.Info("deliverable uploaded",
		"event", "launch_request_upload_created",
		"module", "launch-operations/request-service",
		"layer", "application",
		"request_id", request.RequestID,
		"upload_id", upload.UploadID,
		"status", string(request.Status),
	)
	return upload, nil
}
