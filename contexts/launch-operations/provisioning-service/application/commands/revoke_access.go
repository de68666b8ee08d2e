package commands

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	application "launchdesk/contexts/launch-operations/provisioning-service/application"
	"launchdesk/contexts/launch-operations/provisioning-service/domain/entities"
	domainerrors "launchdesk/contexts/launch-operations/provisioning-service/domain/errors"
	"launchdesk/contexts/launch-operations/provisioning-service/ports"
)

type RevokeAccessCommand struct {
	RequestID string
	BuyerID   string
	ActorID   string
}

type RevokeAccessUseCase struct {
	Folders      ports.FolderRepository
	Permissions  ports.PermissionRepository
	Assets       ports.AssetRepository
	BuyerFolders ports.BuyerFolderStore
	Clock        ports.Clock
	Logger       *slog.Logger
}

// Execute unwinds one buyer's provisioned access for one request:
// soft-delete the leaf's assets, drop the buyer's grants on the leaf and
// its assets, soft-delete the leaf, then unconditionally clear the
// stored pointer. The dated and category roots stay untouched because
// other requests may share them. Calling this with no pointer set is a
// successful no-op, which makes retries safe.
func (uc RevokeAccessUseCase) Execute(ctx context.Context, cmd RevokeAccessCommand) error {
	logger := application.ResolveLogger(uc.Logger)

	requestID := strings.TrimSpace(cmd.RequestID)
	buyerID := strings.TrimSpace(cmd.BuyerID)
	if requestID == "" || buyerID == "" {
		return fmt.Errorf("%w: request and buyer are required", domainerrors.ErrInvalidProvision)
	}

	pointer, err := uc.BuyerFolders.GetMediaFolderID(ctx, requestID, buyerID)
	if err != nil {
		return err
	}

	now := uc.Clock.Now().UTC()
	actorID := strings.TrimSpace(cmd.ActorID)

	if pointer != "" {
		folder, found, err := uc.Folders.GetFolder(ctx, pointer)
		if err != nil {
			return err
		}
		if found && !folder.Deleted {
			assets, err := uc.Assets.ListFolderAssets(ctx, folder.FolderID)
			if err != nil {
				return err
			}
			for _, asset := range assets {
				if err := uc.Assets.SoftDeleteAsset(ctx, asset.AssetID, actorID, now); err != nil {
					return err
				}
				if err := uc.Permissions.RevokeGrants(ctx, entities.ResourceAsset, asset.AssetID, buyerID); err != nil {
					return err
				}
			}
			if err := uc.Permissions.RevokeGrants(ctx, entities.ResourceFolder, folder.FolderID, buyerID); err != nil {
				return err
			}
			if err := uc.Folders.SoftDeleteFolder(ctx, folder.FolderID, actorID, now); err != nil {
				return err
			}
		}
	}

	if err := uc.BuyerFolders.ClearMediaFolderID(ctx, requestID, buyerID); err != nil {
		return err
	}

	logger.Info("buyer access revoked",
		"event", "buyer_access_revoked",
		"module", "launch-operations/provisioning-service",
		"layer", "application",
		"request_id", requestID,
		"buyer_id", buyerID,
		"had_folder", pointer != "",
	)
	return nil
}
