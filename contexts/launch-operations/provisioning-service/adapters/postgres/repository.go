package postgresadapter

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"launchdesk/contexts/launch-operations/provisioning-service/domain/entities"
	domainerrors "launchdesk/contexts/launch-operations/provisioning-service/domain/errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
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

// CreateFolder inserts the folder unless a live one with the same
// (owner, parent, name) already exists; the unique index makes the
// get-or-create race-safe and the existing row wins.
func (r *Repository) CreateFolder(ctx context.Context, folder entities.Folder) (entities.Folder, error) {
	row := folderModelFromEntity(folder)
	if row.FolderID == "" {
		row.FolderID = uuid.NewString()
	}
	if row.CreatedAt.IsZero() {
		row.CreatedAt = time.Now().UTC()
	}

	err := r.db.WithContext(ctx).Create(&row).Error
	if err == nil {
		return row.toEntity(), nil
	}
	if !isUniqueViolation(err) {
		return entities.Folder{}, err
	}

	existing, found, findErr := r.FindFolderByName(ctx, folder.OwnerID, folder.ParentID, folder.Name)
	if findErr != nil {
		return entities.Folder{}, findErr
	}
	if !found {
		return entities.Folder{}, err
	}
	return existing, nil
}

func (r *Repository) FindFolderByName(ctx context.Context, ownerID string, parentID string, name string) (entities.Folder, bool, error) {
	var row folderModel
	err := r.db.WithContext(ctx).
		Where("owner_id = ?", strings.TrimSpace(ownerID)).
		Where("parent_id = ?", strings.TrimSpace(parentID)).
		Where("name = ?", strings.TrimSpace(name)).
		Where("deleted = false").
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Folder{}, false, nil
		}
		return entities.Folder{}, false, err
	}
	return row.toEntity(), true, nil
}

func (r *Repository) GetFolder(ctx context.Context, folderID string) (entities.Folder, bool, error) {
	var row folderModel
	err := r.db.WithContext(ctx).
		Where("folder_id = ?", strings.TrimSpace(folderID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Folder{}, false, nil
		}
		return entities.Folder{}, false, err
	}
	return row.toEntity(), true, nil
}

func (r *Repository) SoftDeleteFolder(ctx context.Context, folderID string, actorID string, at time.Time) error {
	result := r.db.WithContext(ctx).
		Model(&folderModel{}).
		Where("folder_id = ?", strings.TrimSpace(folderID)).
		Where("deleted = false").
		Updates(map[string]any{
			"deleted":    true,
			"deleted_by": strings.TrimSpace(actorID),
			"deleted_at": at.UTC(),
		})
	if result.Error != nil {
		return result.Error
	}
	// Already-deleted folders are left as they are.
	return nil
}

func (r *Repository) UpsertGrant(ctx context.Context, grant entities.PermissionGrant) error {
	row := permissionGrantModel{
		ResourceType: string(grant.ResourceType),
		ResourceID:   strings.TrimSpace(grant.ResourceID),
		GranteeID:    strings.TrimSpace(grant.GranteeID),
		Permission:   string(grant.Permission),
		CreatedAt:    grant.CreatedAt.UTC(),
	}
	if row.CreatedAt.IsZero() {
		row.CreatedAt = time.Now().UTC()
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{
				{Name: "resource_type"},
				{Name: "resource_id"},
				{Name: "grantee_id"},
				{Name: "permission"},
			},
			DoNothing: true,
		}).
		Create(&row).
		Error
}

func (r *Repository) RevokeGrants(ctx context.Context, resourceType entities.ResourceType, resourceID string, granteeID string) error {
	return r.db.WithContext(ctx).
		Where("resource_type = ?", string(resourceType)).
		Where("resource_id = ?", strings.TrimSpace(resourceID)).
		Where("grantee_id = ?", strings.TrimSpace(granteeID)).
		Delete(&permissionGrantModel{}).
		Error
}

func (r *Repository) FindAssetBySource(ctx context.Context, folderID string, sourceUploadID string) (entities.Asset, bool, error) {
	var row assetModel
	err := r.db.WithContext(ctx).
		Where("folder_id = ?", strings.TrimSpace(folderID)).
		Where("source_upload_id = ?", strings.TrimSpace(sourceUploadID)).
		Where("deleted = false").
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Asset{}, false, nil
		}
		return entities.Asset{}, false, err
	}
	return row.toEntity(), true, nil
}

func (r *Repository) CreateAsset(ctx context.Context, asset entities.Asset) (bool, error) {
	row := assetModelFromEntity(asset)
	if row.AssetID == "" {
		row.AssetID = uuid.NewString()
	}
	if row.CreatedAt.IsZero() {
		row.CreatedAt = time.Now().UTC()
	}

	createResult := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "folder_id"}, {Name: "source_upload_id"}},
			DoNothing: true,
		}).
		Create(&row)
	if createResult.Error != nil {
		return false, createResult.Error
	}
	return createResult.RowsAffected > 0, nil
}

func (r *Repository) ListFolderAssets(ctx context.Context, folderID string) ([]entities.Asset, error) {
	var rows []assetModel
	if err := r.db.WithContext(ctx).
		Where("folder_id = ?", strings.TrimSpace(folderID)).
		Where("deleted = false").
		Order("created_at ASC").
		Find(&rows).
		Error; err != nil {
		return nil, err
	}
	items := make([]entities.Asset, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items, nil
}

func (r *Repository) SoftDeleteAsset(ctx context.Context, assetID string, actorID string, at time.Time) error {
	result := r.db.WithContext(ctx).
		Model(&assetModel{}).
		Where("asset_id = ?", strings.TrimSpace(assetID)).
		Where("deleted = false").
		Updates(map[string]any{
			"deleted":    true,
			"deleted_by": strings.TrimSpace(actorID),
			"deleted_at": at.UTC(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		var count int64
		if err := r.db.WithContext(ctx).
			Model(&assetModel{}).
			Where("asset_id = ?", strings.TrimSpace(assetID)).
			Count(&count).
			Error; err != nil {
			return err
		}
		if count == 0 {
			return domainerrors.ErrAssetNotFound
		}
	}
	return nil
}

type folderModel struct {
	FolderID  string     `gorm:"column:folder_id;primaryKey"`
	Name      string     `gorm:"column:name"`
	OwnerID   string     `gorm:"column:owner_id"`
	ParentID  string     `gorm:"column:parent_id"`
	Kind      string     `gorm:"column:kind"`
	RequestID string     `gorm:"column:request_id"`
	Deleted   bool       `gorm:"column:deleted"`
	DeletedBy string     `gorm:"column:deleted_by"`
	DeletedAt *time.Time `gorm:"column:deleted_at"`
	CreatedAt time.Time  `gorm:"column:created_at"`
}

func (folderModel) TableName() string {
	return "media_folders"
}

func folderModelFromEntity(item entities.Folder) folderModel {
	return folderModel{
		FolderID:  strings.TrimSpace(item.FolderID),
		Name:      strings.TrimSpace(item.Name),
		OwnerID:   strings.TrimSpace(item.OwnerID),
		ParentID:  strings.TrimSpace(item.ParentID),
		Kind:      string(item.Kind),
		RequestID: strings.TrimSpace(item.RequestID),
		Deleted:   item.Deleted,
		DeletedBy: strings.TrimSpace(item.DeletedBy),
		DeletedAt: normalizeOptionalTime(item.DeletedAt),
		CreatedAt: item.CreatedAt.UTC(),
	}
}

func (m folderModel) toEntity() entities.Folder {
	return entities.Folder{
		FolderID:  m.FolderID,
		Name:      m.Name,
		OwnerID:   m.OwnerID,
		ParentID:  m.ParentID,
		Kind:      entities.FolderKind(m.Kind),
		RequestID: m.RequestID,
		Deleted:   m.Deleted,
		DeletedBy: m.DeletedBy,
		DeletedAt: normalizeOptionalTime(m.DeletedAt),
		CreatedAt: m.CreatedAt.UTC(),
	}
}

type permissionGrantModel struct {
	ResourceType string    `gorm:"column:resource_type;primaryKey"`
	ResourceID   string    `gorm:"column:resource_id;primaryKey"`
	GranteeID    string    `gorm:"column:grantee_id;primaryKey"`
	Permission   string    `gorm:"column:permission;primaryKey"`
	CreatedAt    time.Time `gorm:"column:created_at"`
}

func (permissionGrantModel) TableName() string {
	return "permission_grants"
}

type assetModel struct {
	AssetID        string     `gorm:"column:asset_id;primaryKey"`
	FolderID       string     `gorm:"column:folder_id"`
	SourceUploadID string     `gorm:"column:source_upload_id"`
	FileName       string     `gorm:"column:file_name"`
	MimeType       string     `gorm:"column:mime_type"`
	SizeBytes      int64      `gorm:"column:size_bytes"`
	StorageKey     string     `gorm:"column:storage_key"`
	Tag            string     `gorm:"column:tag"`
	Deleted        bool       `gorm:"column:deleted"`
	DeletedBy      string     `gorm:"column:deleted_by"`
	DeletedAt      *time.Time `gorm:"column:deleted_at"`
	CreatedAt      time.Time  `gorm:"column:created_at"`
}

func (assetModel) TableName() string {
	return "media_assets"
}

func assetModelFromEntity(item entities.Asset) assetModel {
	return assetModel{
		AssetID:        strings.TrimSpace(item.AssetID),
		FolderID:       strings.TrimSpace(item.FolderID),
		SourceUploadID: strings.TrimSpace(item.SourceUploadID),
		FileName:       strings.TrimSpace(item.FileName),
		MimeType:       strings.TrimSpace(item.MimeType),
		SizeBytes:      item.SizeBytes,
		StorageKey:     strings.TrimSpace(item.StorageKey),
		Tag:            strings.TrimSpace(item.Tag),
		Deleted:        item.Deleted,
		DeletedBy:      strings.TrimSpace(item.DeletedBy),
		DeletedAt:      normalizeOptionalTime(item.DeletedAt),
		CreatedAt:      item.CreatedAt.UTC(),
	}
}

func (m assetModel) toEntity() entities.Asset {
	return entities.Asset{
		AssetID:        m.AssetID,
		FolderID:       m.FolderID,
		SourceUploadID: m.SourceUploadID,
		FileName:       m.FileName,
		MimeType:       m.MimeType,
		SizeBytes:      m.SizeBytes,
		StorageKey:     m.StorageKey,
		Tag:            m.Tag,
		Deleted:        m.Deleted,
		DeletedBy:      m.DeletedBy,
		DeletedAt:      normalizeOptionalTime(m.DeletedAt),
		CreatedAt:      m.CreatedAt.UTC(),
	}
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
