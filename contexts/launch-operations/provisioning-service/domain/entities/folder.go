package entities

import "time"

type FolderKind string

const (
	FolderKindCategoryRoot FolderKind = "category_root"
	FolderKindDated        FolderKind = "dated"
	FolderKindLeaf         FolderKind = "leaf"
)

// Folder is a storage container owned by a buyer. Category and dated
// roots may be shared by many requests; a leaf belongs to exactly one
// (request, buyer) pair.
type Folder struct {
	FolderID  string
	Name      string
	OwnerID   string
	ParentID  string
	Kind      FolderKind
	RequestID string
	Deleted   bool
	DeletedBy string
	DeletedAt *time.Time
	CreatedAt time.Time
}

type ResourceType string

const (
	ResourceFolder ResourceType = "folder"
	ResourceAsset  ResourceType = "asset"
)

type PermissionType string

const (
	PermissionView     PermissionType = "view"
	PermissionDownload PermissionType = "download"
)

// PermissionGrant is unique per (resource type, resource, grantee,
// permission); grants are upserted, never duplicated.
type PermissionGrant struct {
	ResourceType ResourceType
	ResourceID   string
	GranteeID    string
	Permission   PermissionType
	CreatedAt    time.Time
}

// ProvenanceTag marks assets materialized by the provisioning engine.
const ProvenanceTag = "launch-request-deliverable"

// Asset is a deliverable materialized into a buyer's leaf folder. The
// (SourceUploadID, FolderID) pair is materialized at most once.
type Asset struct {
	AssetID        string
	FolderID       string
	SourceUploadID string
	FileName       string
	MimeType       string
	SizeBytes      int64
	StorageKey     string
	Tag            string
	Deleted        bool
	DeletedBy      string
	DeletedAt      *time.Time
	CreatedAt      time.Time
}
