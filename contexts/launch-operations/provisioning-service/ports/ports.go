package ports

import (
	"context"
	"time"

	"launchdesk/contexts/launch-operations/provisioning-service/domain/entities"
	"launchdesk/internal/shared/events"
)

// FolderRepository is the folder capability this engine consumes; it
// does not own folder semantics beyond its own rows.
type FolderRepository interface {
	CreateFolder(ctx context.Context, folder entities.Folder) (entities.Folder, error)
	// FindFolderByName resolves a live (non-deleted) folder by its
	// natural key. ParentID "" matches root-level folders.
	FindFolderByName(ctx context.Context, ownerID string, parentID string, name string) (entities.Folder, bool, error)
	GetFolder(ctx context.Context, folderID string) (entities.Folder, bool, error)
	SoftDeleteFolder(ctx context.Context, folderID string, actorID string, at time.Time) error
}

type PermissionRepository interface {
	// UpsertGrant is keyed by (resource type, resource, grantee,
	// permission); repeating it has no duplicate effect.
	UpsertGrant(ctx context.Context, grant entities.PermissionGrant) error
	RevokeGrants(ctx context.Context, resourceType entities.ResourceType, resourceID string, granteeID string) error
}

type AssetRepository interface {
	FindAssetBySource(ctx context.Context, folderID string, sourceUploadID string) (entities.Asset, bool, error)
	// CreateAsset inserts unless the (source upload, folder) pair is
	// already materialized; created reports whether a row was added.
	CreateAsset(ctx context.Context, asset entities.Asset) (created bool, err error)
	ListFolderAssets(ctx context.Context, folderID string) ([]entities.Asset, error)
	SoftDeleteAsset(ctx context.Context, assetID string, actorID string, at time.Time) error
}

type BuyerFolderRef struct {
	BuyerID  string
	FolderID string
}

// BuyerFolderStore reads and writes the media_folder_id pointer kept on
// the BuyerAssignment row owned by the request service.
type BuyerFolderStore interface {
	GetMediaFolderID(ctx context.Context, requestID string, buyerID string) (string, error)
	SetMediaFolderID(ctx context.Context, requestID string, buyerID string, folderID string) error
	ClearMediaFolderID(ctx context.Context, requestID string, buyerID string) error
	// ListProvisionedBuyers returns every buyer of the request whose
	// pointer is set.
	ListProvisionedBuyers(ctx context.Context, requestID string) ([]BuyerFolderRef, error)
}

type SourceUpload struct {
	UploadID   string
	FileName   string
	MimeType   string
	SizeBytes  int64
	StorageKey string
}

type UploadSource interface {
	GetSourceUpload(ctx context.Context, uploadID string) (SourceUpload, error)
}

type Clock interface {
	Now() time.Time
}

type IDGenerator interface {
	NewID(ctx context.Context) (string, error)
}

type EventEnvelope = events.Envelope

type EventSubscriber interface {
	Subscribe(
		ctx context.Context,
		topic string,
		consumerGroup string,
		handler func(context.Context, EventEnvelope) error,
	) error
}
