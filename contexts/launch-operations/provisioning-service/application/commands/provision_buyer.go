package commands

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	application "launchdesk/contexts/launch-operations/provisioning-service/application"
	"launchdesk/contexts/launch-operations/provisioning-service/domain/entities"
	domainerrors "launchdesk/contexts/launch-operations/provisioning-service/domain/errors"
	"launchdesk/contexts/launch-operations/provisioning-service/domain/foldername"
	"launchdesk/contexts/launch-operations/provisioning-service/ports"
)

type ProvisionBuyerCommand struct {
	RequestID       string
	RequestTitle    string
	BuyerID         string
	BuyerName       string
	ProvisionerName string
	FileIDs         []string
}

type ProvisionBuyerUseCase struct {
	Folders      ports.FolderRepository
	Permissions  ports.PermissionRepository
	Assets       ports.AssetRepository
	BuyerFolders ports.BuyerFolderStore
	Uploads      ports.UploadSource
	Clock        ports.Clock
	IDGen        ports.IDGenerator
	Logger       *slog.Logger
}

// Execute ensures the buyer's container hierarchy exists, grants view
// and download on each level, and materializes the named files into the
// leaf. Every step is an idempotent get-or-create, so running it twice
// for the same (request, buyer, day) has no duplicate effect. Steps are
// strictly sequential: each one's output is the next one's input.
func (uc ProvisionBuyerUseCase) Execute(ctx context.Context, cmd ProvisionBuyerCommand) error {
	logger := application.ResolveLogger(uc.Logger)

	requestID := strings.TrimSpace(cmd.RequestID)
	buyerID := strings.TrimSpace(cmd.BuyerID)
	if requestID == "" || buyerID == "" {
		return fmt.Errorf("%w: request and buyer are required", domainerrors.ErrInvalidProvision)
	}

	now := uc.Clock.Now().UTC()

	categoryRoot, err := uc.ensureFolder(ctx, entities.Folder{
		Name:    foldername.CategoryRootName,
		OwnerID: buyerID,
		Kind:    entities.FolderKindCategoryRoot,
	}, now)
	if err != nil {
		return fmt.Errorf("ensure category root: %w", err)
	}

	dated, err := uc.ensureFolder(ctx, entities.Folder{
		Name:     foldername.DatedName(buyerLabel(cmd), now),
		OwnerID:  buyerID,
		ParentID: categoryRoot.FolderID,
		Kind:     entities.FolderKindDated,
	}, now)
	if err != nil {
		return fmt.Errorf("ensure dated folder: %w", err)
	}

	leaf, err := uc.resolveLeaf(ctx, cmd, requestID, buyerID, dated.FolderID, now)
	if err != nil {
		return fmt.Errorf("resolve leaf folder: %w", err)
	}
	if err := uc.BuyerFolders.SetMediaFolderID(ctx, requestID, buyerID, leaf.FolderID); err != nil {
		return fmt.Errorf("store folder pointer: %w", err)
	}

	for _, folder := range []entities.Folder{categoryRoot, dated, leaf} {
		if err := uc.grantFolderAccess(ctx, folder.FolderID, buyerID, now); err != nil {
			return err
		}
	}

	for _, fileID := range cmd.FileIDs {
		upload, err := uc.Uploads.GetSourceUpload(ctx, strings.TrimSpace(fileID))
		if err != nil {
			return fmt.Errorf("resolve upload %s: %w", fileID, err)
		}
		if err := MaterializeUpload(ctx, uc.Assets, uc.Permissions, uc.IDGen, leaf.FolderID, buyerID, upload, now); err != nil {
			return err
		}
	}

	logger.Info("buyer provisioned",
		"event", "buyer_provisioned",
		"module", "launch-operations/provisioning-service",
		"layer", "application",
		"request_id", requestID,
		"buyer_id", buyerID,
		"leaf_folder_id", leaf.FolderID,
		"file_count", len(cmd.FileIDs),
	)
	return nil
}

func buyerLabel(cmd ProvisionBuyerCommand) string {
	if strings.TrimSpace(cmd.BuyerName) != "" {
		return cmd.BuyerName
	}
	return cmd.BuyerID
}

// ensureFolder is the idempotent get-or-create primitive keyed by
// (owner, parent, name).
func (uc ProvisionBuyerUseCase) ensureFolder(ctx context.Context, want entities.Folder, now time.Time) (entities.Folder, error) {
	existing, found, err := uc.Folders.FindFolderByName(ctx, want.OwnerID, want.ParentID, want.Name)
	if err != nil {
		return entities.Folder{}, err
	}
	if found {
		return existing, nil
	}

	folderID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		return entities.Folder{}, err
	}
	want.FolderID = folderID
	want.CreatedAt = now
	return uc.Folders.CreateFolder(ctx, want)
}

// resolveLeaf follows the three-way fallback: stored pointer if it still
// resolves to a live folder, then name lookup under the dated folder,
// then create.
func (uc ProvisionBuyerUseCase) resolveLeaf(
	ctx context.Context,
	cmd ProvisionBuyerCommand,
	requestID string,
	buyerID string,
	datedFolderID string,
	now time.Time,
) (entities.Folder, error) {
	pointer, err := uc.BuyerFolders.GetMediaFolderID(ctx, requestID, buyerID)
	if err != nil {
		return entities.Folder{}, err
	}
	if pointer != "" {
		folder, found, err := uc.Folders.GetFolder(ctx, pointer)
		if err != nil {
			return entities.Folder{}, err
		}
		if found && !folder.Deleted {
			return folder, nil
		}
	}

	leaf := entities.Folder{
		Name:      foldername.LeafName(cmd.ProvisionerName, cmd.RequestTitle),
		OwnerID:   buyerID,
		ParentID:  datedFolderID,
		Kind:      entities.FolderKindLeaf,
		RequestID: requestID,
	}
	return uc.ensureFolder(ctx, leaf, now)
}

func (uc ProvisionBuyerUseCase) grantFolderAccess(ctx context.Context, folderID string, buyerID string, now time.Time) error {
	for _, permission := range []entities.PermissionType{entities.PermissionView, entities.PermissionDownload} {
		if err := uc.Permissions.UpsertGrant(ctx, entities.PermissionGrant{
			ResourceType: entities.ResourceFolder,
			ResourceID:   folderID,
			GranteeID:    buyerID,
			Permission:   permission,
			CreatedAt:    now,
		}); err != nil {
			return fmt.Errorf("grant folder access: %w", err)
		}
	}
	return nil
}

// MaterializeUpload copies one source upload into a leaf folder at most
// once per (source upload, folder) pair and grants the buyer per-asset
// access. Shared between buyer provisioning and upload routing.
func MaterializeUpload(
	ctx context.Context,
	assets ports.AssetRepository,
	permissions ports.PermissionRepository,
	idGen ports.IDGenerator,
	folderID string,
	buyerID string,
	upload ports.SourceUpload,
	now time.Time,
) error {
	existing, found, err := assets.FindAssetBySource(ctx, folderID, upload.UploadID)
	if err != nil {
		return err
	}

	assetID := existing.AssetID
	if !found {
		assetID, err = idGen.NewID(ctx)
		if err != nil {
			return err
		}
		created, err := assets.CreateAsset(ctx, entities.Asset{
			AssetID:        assetID,
			FolderID:       folderID,
			SourceUploadID: upload.UploadID,
			FileName:       upload.FileName,
			MimeType:       upload.MimeType,
			SizeBytes:      upload.SizeBytes,
			StorageKey:     upload.StorageKey,
			Tag:            entities.ProvenanceTag,
			CreatedAt:      now,
		})
		if err != nil {
			return err
		}
		if !created {
			// Lost a race to a concurrent materialization; reuse the
			// winning row.
			winner, _, err := assets.FindAssetBySource(ctx, folderID, upload.UploadID)
			if err != nil {
				return err
			}
			assetID = winner.AssetID
		}
	}

	for _, permission := range []entities.PermissionType{entities.PermissionView, entities.PermissionDownload} {
		if err := permissions.UpsertGrant(ctx, entities.PermissionGrant{
			ResourceType: entities.ResourceAsset,
			ResourceID:   assetID,
			GranteeID:    buyerID,
			Permission:   permission,
			CreatedAt:    now,
		}); err != nil {
			return err
		}
	}
	return nil
}
