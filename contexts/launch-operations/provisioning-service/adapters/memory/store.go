package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"launchdesk/contexts/launch-operations/provisioning-service/domain/entities"
	domainerrors "launchdesk/contexts/launch-operations/provisioning-service/domain/errors"

	"github.com/google/uuid"
)

type grantKey struct {
	resourceType entities.ResourceType
	resourceID   string
	granteeID    string
	permission   entities.PermissionType
}

type sourceKey struct {
	folderID       string
	sourceUploadID string
}

// Store backs the folder, permission and asset ports in memory.
type Store struct {
	mu sync.RWMutex

	folders       map[string]entities.Folder
	grants        map[grantKey]entities.PermissionGrant
	assets        map[string]entities.Asset
	assetBySource map[sourceKey]string
}

func NewStore() *Store {
	return &Store{
		folders:       make(map[string]entities.Folder),
		grants:        make(map[grantKey]entities.PermissionGrant),
		assets:        make(map[string]entities.Asset),
		assetBySource: make(map[sourceKey]string),
	}
}

func (s *Store) CreateFolder(_ context.Context, folder entities.Folder) (entities.Folder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if strings.TrimSpace(folder.FolderID) == "" {
		folder.FolderID = uuid.NewString()
	}
	// get-or-create under the lock: a concurrent create of the same
	// (owner, parent, name) resolves to the first row.
	for _, existing := range s.folders {
		if existing.Deleted {
			continue
		}
		if existing.OwnerID == folder.OwnerID &&
			existing.ParentID == folder.ParentID &&
			existing.Name == folder.Name {
			return existing, nil
		}
	}
	s.folders[folder.FolderID] = folder
	return folder, nil
}

func (s *Store) FindFolderByName(_ context.Context, ownerID string, parentID string, name string) (entities.Folder, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, folder := range s.folders {
		if folder.Deleted {
			continue
		}
		if folder.OwnerID == ownerID && folder.ParentID == parentID && folder.Name == name {
			return folder, true, nil
		}
	}
	return entities.Folder{}, false, nil
}

func (s *Store) GetFolder(_ context.Context, folderID string) (entities.Folder, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	folder, ok := s.folders[strings.TrimSpace(folderID)]
	if !ok {
		return entities.Folder{}, false, nil
	}
	return folder, true, nil
}

func (s *Store) SoftDeleteFolder(_ context.Context, folderID string, actorID string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	folder, ok := s.folders[folderID]
	if !ok {
		return domainerrors.ErrFolderNotFound
	}
	if folder.Deleted {
		return nil
	}
	timestamp := at.UTC()
	folder.Deleted = true
	folder.DeletedBy = actorID
	folder.DeletedAt = &timestamp
	s.folders[folderID] = folder
	return nil
}

func (s *Store) UpsertGrant(_ context.Context, grant entities.PermissionGrant) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := grantKey{
		resourceType: grant.ResourceType,
		resourceID:   grant.ResourceID,
		granteeID:    grant.GranteeID,
		permission:   grant.Permission,
	}
	if _, exists := s.grants[key]; exists {
		return nil
	}
	s.grants[key] = grant
	return nil
}

func (s *Store) RevokeGrants(_ context.Context, resourceType entities.ResourceType, resourceID string, granteeID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for key := range s.grants {
		if key.resourceType == resourceType && key.resourceID == resourceID && key.granteeID == granteeID {
			delete(s.grants, key)
		}
	}
	return nil
}

// GrantCount reports live grants for a resource/grantee pair; used in
// tests to assert revocation.
func (s *Store) GrantCount(resourceType entities.ResourceType, resourceID string, granteeID string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for key := range s.grants {
		if key.resourceType == resourceType && key.resourceID == resourceID && key.granteeID == granteeID {
			count++
		}
	}
	return count
}

func (s *Store) FindAssetBySource(_ context.Context, folderID string, sourceUploadID string) (entities.Asset, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	assetID, ok := s.assetBySource[sourceKey{folderID: folderID, sourceUploadID: sourceUploadID}]
	if !ok {
		return entities.Asset{}, false, nil
	}
	asset, ok := s.assets[assetID]
	if !ok || asset.Deleted {
		return entities.Asset{}, false, nil
	}
	return asset, true, nil
}

func (s *Store) CreateAsset(_ context.Context, asset entities.Asset) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := sourceKey{folderID: asset.FolderID, sourceUploadID: asset.SourceUploadID}
	if existingID, ok := s.assetBySource[key]; ok {
		if existing, found := s.assets[existingID]; found && !existing.Deleted {
			return false, nil
		}
	}
	if strings.TrimSpace(asset.AssetID) == "" {
		asset.AssetID = uuid.NewString()
	}
	s.assets[asset.AssetID] = asset
	s.assetBySource[key] = asset.AssetID
	return true, nil
}

func (s *Store) ListFolderAssets(_ context.Context, folderID string) ([]entities.Asset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items := make([]entities.Asset, 0)
	for _, asset := range s.assets {
		if asset.FolderID == folderID && !asset.Deleted {
			items = append(items, asset)
		}
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].CreatedAt.Before(items[j].CreatedAt)
	})
	return items, nil
}

func (s *Store) SoftDeleteAsset(_ context.Context, assetID string, actorID string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	asset, ok := s.assets[assetID]
	if !ok {
		return domainerrors.ErrAssetNotFound
	}
	if asset.Deleted {
		return nil
	}
	timestamp := at.UTC()
	asset.Deleted = true
	asset.DeletedBy = actorID
	asset.DeletedAt = &timestamp
	s.assets[assetID] = asset
	return nil
}

func (s *Store) Now() time.Time {
	return time.Now().UTC()
}

func (s *Store) NewID(_ context.Context) (string, error) {
	return uuid.NewString(), nil
}
