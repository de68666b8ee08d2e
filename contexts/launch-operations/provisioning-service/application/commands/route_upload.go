package commands

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	application "launchdesk/contexts/launch-operations/provisioning-service/application"
	domainerrors "launchdesk/contexts/launch-operations/provisioning-service/domain/errors"
	"launchdesk/contexts/launch-operations/provisioning-service/ports"
)

type RouteUploadCommand struct {
	RequestID  string
	UploadID   string
	FileName   string
	MimeType   string
	SizeBytes  int64
	StorageKey string
}

type RouteUploadUseCase struct {
	Assets       ports.AssetRepository
	Permissions  ports.PermissionRepository
	BuyerFolders ports.BuyerFolderStore
	Clock        ports.Clock
	IDGen        ports.IDGenerator
	Logger       *slog.Logger
}

// Execute fans one new upload out to every buyer of the request that
// already has a resolved leaf folder. This is an intentional broadcast:
// the file goes to every provisioned buyer regardless of whether it was
// explicitly assigned to them.
func (uc RouteUploadUseCase) Execute(ctx context.Context, cmd RouteUploadCommand) error {
	logger := application.ResolveLogger(uc.Logger)

	requestID := strings.TrimSpace(cmd.RequestID)
	uploadID := strings.TrimSpace(cmd.UploadID)
	if requestID == "" || uploadID == "" {
		return fmt.Errorf("%w: request and upload are required", domainerrors.ErrInvalidProvision)
	}

	refs, err := uc.BuyerFolders.ListProvisionedBuyers(ctx, requestID)
	if err != nil {
		return err
	}

	now := uc.Clock.Now().UTC()
	upload := ports.SourceUpload{
		UploadID:   uploadID,
		FileName:   cmd.FileName,
		MimeType:   cmd.MimeType,
		SizeBytes:  cmd.SizeBytes,
		StorageKey: cmd.StorageKey,
	}
	for _, ref := range refs {
		if err := MaterializeUpload(ctx, uc.Assets, uc.Permissions, uc.IDGen, ref.FolderID, ref.BuyerID, upload, now); err != nil {
			return fmt.Errorf("route upload to buyer %s: %w", ref.BuyerID, err)
		}
	}

	logger.Info("upload routed",
		"event", "upload_routed",
		"module", "launch-operations/provisioning-service",
		"layer", "application",
		"request_id", requestID,
		"upload_id", uploadID,
		"buyers_reached", len(refs),
	)
	return nil
}
