package httpadapter

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"launchdesk/contexts/launch-operations/provisioning-service/application/commands"
	"launchdesk/contexts/launch-operations/provisioning-service/domain/entities"
	domainerrors "launchdesk/contexts/launch-operations/provisioning-service/domain/errors"
	"launchdesk/contexts/launch-operations/provisioning-service/ports"
	httptransport "launchdesk/contexts/launch-operations/provisioning-service/transport/http"

	"github.com/go-playground/validator/v10"
)

type Handler struct {
	RevokeAccess commands.RevokeAccessUseCase
	Folders      ports.FolderRepository
	Assets       ports.AssetRepository
	Validate     *validator.Validate
	Logger       *slog.Logger
}

func (h Handler) RevokeAccessHandler(
	ctx context.Context,
	actorID string,
	requestID string,
	req httptransport.RevokeAccessRequest,
) error {
	if h.Validate != nil {
		if err := h.Validate.Struct(req); err != nil {
			return fmt.Errorf("%w: %s", domainerrors.ErrInvalidProvision, err.Error())
		}
	}
	return h.RevokeAccess.Execute(ctx, commands.RevokeAccessCommand{
		RequestID: requestID,
		BuyerID:   req.BuyerID,
		ActorID:   actorID,
	})
}

func (h Handler) FolderContentsHandler(ctx context.Context, folderID string) (httptransport.FolderContentsResponse, error) {
	folder, found, err := h.Folders.GetFolder(ctx, folderID)
	if err != nil {
		return httptransport.FolderContentsResponse{}, err
	}
	if !found || folder.Deleted {
		return httptransport.FolderContentsResponse{}, domainerrors.ErrFolderNotFound
	}
	assets, err := h.Assets.ListFolderAssets(ctx, folder.FolderID)
	if err != nil {
		return httptransport.FolderContentsResponse{}, err
	}

	items := make([]httptransport.AssetDTO, 0, len(assets))
	for _, asset := range assets {
		items = append(items, mapAsset(asset))
	}
	return httptransport.FolderContentsResponse{
		Folder: mapFolder(folder),
		Assets: items,
	}, nil
}

func mapFolder(item entities.Folder) httptransport.FolderDTO {
	return httptransport.FolderDTO{
		FolderID:  item.FolderID,
		Name:      item.Name,
		OwnerID:   item.OwnerID,
		ParentID:  item.ParentID,
		Kind:      string(item.Kind),
		RequestID: item.RequestID,
		CreatedAt: item.CreatedAt.Format(time.RFC3339),
	}
}

func mapAsset(item entities.Asset) httptransport.AssetDTO {
	return httptransport.AssetDTO{
		AssetID:        item.AssetID,
		FolderID:       item.FolderID,
		SourceUploadID: item.SourceUploadID,
		FileName:       item.FileName,
		MimeType:       item.MimeType,
		SizeBytes:      item.SizeBytes,
		StorageKey:     item.StorageKey,
		Tag:            item.Tag,
		CreatedAt:      item.CreatedAt.Format(time.RFC3339),
	}
}
