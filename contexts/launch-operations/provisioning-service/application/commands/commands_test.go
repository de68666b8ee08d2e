package commands

import (
	"context"
	"errors"
	"testing"
	"time"

	"launchdesk/contexts/launch-operations/provisioning-service/adapters/memory"
	"launchdesk/contexts/launch-operations/provisioning-service/domain/entities"
	domainerrors "launchdesk/contexts/launch-operations/provisioning-service/domain/errors"
	"launchdesk/contexts/launch-operations/provisioning-service/domain/foldername"
	"launchdesk/contexts/launch-operations/provisioning-service/ports"
)

type fixedClock struct{ now time.Time }

func (c fixedClock) Now() time.Time { return c.now }

type pointerKey struct {
	requestID string
	buyerID   string
}

// fakePointerStore stands in for the buyer-assignment rows owned by the
// request service.
type fakePointerStore struct {
	pointers map[pointerKey]string
}

func newFakePointerStore() *fakePointerStore {
	return &fakePointerStore{pointers: make(map[pointerKey]string)}
}

func (s *fakePointerStore) GetMediaFolderID(_ context.Context, requestID string, buyerID string) (string, error) {
	return s.pointers[pointerKey{requestID, buyerID}], nil
}

func (s *fakePointerStore) SetMediaFolderID(_ context.Context, requestID string, buyerID string, folderID string) error {
	s.pointers[pointerKey{requestID, buyerID}] = folderID
	return nil
}

func (s *fakePointerStore) ClearMediaFolderID(_ context.Context, requestID string, buyerID string) error {
	s.pointers[pointerKey{requestID, buyerID}] = ""
	return nil
}

func (s *fakePointerStore) ListProvisionedBuyers(_ context.Context, requestID string) ([]ports.BuyerFolderRef, error) {
	refs := make([]ports.BuyerFolderRef, 0, len(s.pointers))
	for key, folderID := range s.pointers {
		if key.requestID != requestID || folderID == "" {
			continue
		}
		refs = append(refs, ports.BuyerFolderRef{BuyerID: key.buyerID, FolderID: folderID})
	}
	return refs, nil
}

type fakeUploadSource struct {
	uploads map[string]ports.SourceUpload
}

func (s fakeUploadSource) GetSourceUpload(_ context.Context, uploadID string) (ports.SourceUpload, error) {
	upload, ok := s.uploads[uploadID]
	if !ok {
		return ports.SourceUpload{}, domainerrors.ErrUploadNotFound
	}
	return upload, nil
}

func newProvisionFixture() (ProvisionBuyerUseCase, *memory.Store, *fakePointerStore, fixedClock) {
	store := memory.NewStore()
	pointers := newFakePointerStore()
	clock := fixedClock{now: time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)}
	uploads := fakeUploadSource{uploads: map[string]ports.SourceUpload{
		"upload-1": {UploadID: "upload-1", FileName: "hero-cut.mp4", MimeType: "video/mp4", SizeBytes: 1 << 20, StorageKey: "requests/req-1/uploads/hero-cut.mp4"},
	}}
	uc := ProvisionBuyerUseCase{
		Folders:      store,
		Permissions:  store,
		Assets:       store,
		BuyerFolders: pointers,
		Uploads:      uploads,
		Clock:        clock,
		IDGen:        store,
	}
	return uc, store, pointers, clock
}

func provisionCmd() ProvisionBuyerCommand {
	return ProvisionBuyerCommand{
		RequestID:       "req-1",
		RequestTitle:    "Spring Launch",
		BuyerID:         "buyer-1",
		BuyerName:       "Riley Watts",
		ProvisionerName: "Dana Cole",
		FileIDs:         []string{"upload-1"},
	}
}

func TestProvisionBuyerBuildsHierarchyAndGrants(t *testing.T) {
	uc, store, pointers, clock := newProvisionFixture()
	ctx := context.Background()

	if err := uc.Execute(ctx, provisionCmd()); err != nil {
		t.Fatalf("provision failed: %v", err)
	}

	root, found, err := store.FindFolderByName(ctx, "buyer-1", "", foldername.CategoryRootName)
	if err != nil || !found {
		t.Fatalf("category root missing: found=%v err=%v", found, err)
	}
	dated, found, err := store.FindFolderByName(ctx, "buyer-1", root.FolderID, foldername.DatedName("Riley Watts", clock.Now()))
	if err != nil || !found {
		t.Fatalf("dated folder missing: found=%v err=%v", found, err)
	}

	leafID, _ := pointers.GetMediaFolderID(ctx, "req-1", "buyer-1")
	if leafID == "" {
		t.Fatal("expected leaf pointer stored")
	}
	leaf, found, err := store.GetFolder(ctx, leafID)
	if err != nil || !found {
		t.Fatalf("leaf folder missing: found=%v err=%v", found, err)
	}
	if leaf.ParentID != dated.FolderID || leaf.RequestID != "req-1" {
		t.Fatalf("unexpected leaf placement: %+v", leaf)
	}
	if leaf.Name != foldername.LeafName("Dana Cole", "Spring Launch") {
		t.Fatalf("unexpected leaf name %q", leaf.Name)
	}

	for _, folderID := range []string{root.FolderID, dated.FolderID, leaf.FolderID} {
		if count := store.GrantCount(entities.ResourceFolder, folderID, "buyer-1"); count != 2 {
			t.Fatalf("expected view+download on folder %s, got %d grants", folderID, count)
		}
	}

	assets, err := store.ListFolderAssets(ctx, leaf.FolderID)
	if err != nil {
		t.Fatalf("list assets failed: %v", err)
	}
	if len(assets) != 1 {
		t.Fatalf("expected one materialized asset, got %d", len(assets))
	}
	if assets[0].SourceUploadID != "upload-1" || assets[0].Tag != entities.ProvenanceTag {
		t.Fatalf("unexpected asset: %+v", assets[0])
	}
	if count := store.GrantCount(entities.ResourceAsset, assets[0].AssetID, "buyer-1"); count != 2 {
		t.Fatalf("expected view+download on asset, got %d grants", count)
	}
}

func TestProvisionBuyerIsIdempotent(t *testing.T) {
	uc, store, pointers, _ := newProvisionFixture()
	ctx := context.Background()

	if err := uc.Execute(ctx, provisionCmd()); err != nil {
		t.Fatalf("first provision failed: %v", err)
	}
	firstLeaf, _ := pointers.GetMediaFolderID(ctx, "req-1", "buyer-1")

	if err := uc.Execute(ctx, provisionCmd()); err != nil {
		t.Fatalf("second provision failed: %v", err)
	}
	secondLeaf, _ := pointers.GetMediaFolderID(ctx, "req-1", "buyer-1")
	if firstLeaf != secondLeaf {
		t.Fatalf("expected stable leaf pointer, got %s then %s", firstLeaf, secondLeaf)
	}

	assets, err := store.ListFolderAssets(ctx, firstLeaf)
	if err != nil {
		t.Fatalf("list assets failed: %v", err)
	}
	if len(assets) != 1 {
		t.Fatalf("expected no duplicate materialization, got %d assets", len(assets))
	}
	if count := store.GrantCount(entities.ResourceFolder, firstLeaf, "buyer-1"); count != 2 {
		t.Fatalf("expected grants untouched on rerun, got %d", count)
	}
}

func TestProvisionBuyerRecreatesLeafWhenPointerDangles(t *testing.T) {
	uc, store, pointers, _ := newProvisionFixture()
	ctx := context.Background()

	if err := uc.Execute(ctx, provisionCmd()); err != nil {
		t.Fatalf("first provision failed: %v", err)
	}
	staleLeaf, _ := pointers.GetMediaFolderID(ctx, "req-1", "buyer-1")
	if err := store.SoftDeleteFolder(ctx, staleLeaf, "admin-1", time.Now().UTC()); err != nil {
		t.Fatalf("soft delete failed: %v", err)
	}

	if err := uc.Execute(ctx, provisionCmd()); err != nil {
		t.Fatalf("reprovision failed: %v", err)
	}
	freshLeaf, _ := pointers.GetMediaFolderID(ctx, "req-1", "buyer-1")
	if freshLeaf == "" || freshLeaf == staleLeaf {
		t.Fatalf("expected a fresh leaf after dangling pointer, got %q", freshLeaf)
	}
	folder, found, err := store.GetFolder(ctx, freshLeaf)
	if err != nil || !found || folder.Deleted {
		t.Fatalf("expected live replacement leaf, got %+v found=%v err=%v", folder, found, err)
	}
}

func TestProvisionBuyerRejectsMissingIdentifiers(t *testing.T) {
	uc, _, _, _ := newProvisionFixture()

	err := uc.Execute(context.Background(), ProvisionBuyerCommand{RequestID: " ", BuyerID: "buyer-1"})
	if !errors.Is(err, domainerrors.ErrInvalidProvision) {
		t.Fatalf("expected invalid provision input, got %v", err)
	}
}

func TestRouteUploadBroadcastsToProvisionedBuyers(t *testing.T) {
	store := memory.NewStore()
	pointers := newFakePointerStore()
	clock := fixedClock{now: time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)}
	ctx := context.Background()

	leafA, _ := store.CreateFolder(ctx, entities.Folder{FolderID: "leaf-a", Name: "a", OwnerID: "buyer-a", Kind: entities.FolderKindLeaf, RequestID: "req-1"})
	leafB, _ := store.CreateFolder(ctx, entities.Folder{FolderID: "leaf-b", Name: "b", OwnerID: "buyer-b", Kind: entities.FolderKindLeaf, RequestID: "req-1"})
	_ = pointers.SetMediaFolderID(ctx, "req-1", "buyer-a", leafA.FolderID)
	_ = pointers.SetMediaFolderID(ctx, "req-1", "buyer-b", leafB.FolderID)
	// buyer-c is assigned but was never provisioned; routing skips it.

	uc := RouteUploadUseCase{Assets: store, Permissions: store, BuyerFolders: pointers, Clock: clock, IDGen: store}
	cmd := RouteUploadCommand{
		RequestID:  "req-1",
		UploadID:   "upload-2",
		FileName:   "v2-cut.mp4",
		MimeType:   "video/mp4",
		SizeBytes:  2 << 20,
		StorageKey: "requests/req-1/uploads/v2-cut.mp4",
	}
	if err := uc.Execute(ctx, cmd); err != nil {
		t.Fatalf("route failed: %v", err)
	}
	// A redelivered event must not materialize twice.
	if err := uc.Execute(ctx, cmd); err != nil {
		t.Fatalf("route replay failed: %v", err)
	}

	for _, leaf := range []entities.Folder{leafA, leafB} {
		assets, err := store.ListFolderAssets(ctx, leaf.FolderID)
		if err != nil {
			t.Fatalf("list assets failed: %v", err)
		}
		if len(assets) != 1 {
			t.Fatalf("expected exactly one copy in %s, got %d", leaf.FolderID, len(assets))
		}
		if count := store.GrantCount(entities.ResourceAsset, assets[0].AssetID, leaf.OwnerID); count != 2 {
			t.Fatalf("expected asset grants for %s, got %d", leaf.OwnerID, count)
		}
	}
}

func TestRevokeAccessUnwindsLeafAndClearsPointer(t *testing.T) {
	uc, store, pointers, _ := newProvisionFixture()
	ctx := context.Background()

	if err := uc.Execute(ctx, provisionCmd()); err != nil {
		t.Fatalf("provision failed: %v", err)
	}
	leafID, _ := pointers.GetMediaFolderID(ctx, "req-1", "buyer-1")
	assets, _ := store.ListFolderAssets(ctx, leafID)

	revoke := RevokeAccessUseCase{
		Folders:      store,
		Permissions:  store,
		Assets:       store,
		BuyerFolders: pointers,
		Clock:        fixedClock{now: time.Date(2026, 3, 16, 9, 0, 0, 0, time.UTC)},
	}
	if err := revoke.Execute(ctx, RevokeAccessCommand{RequestID: "req-1", BuyerID: "buyer-1", ActorID: "buyer-head-1"}); err != nil {
		t.Fatalf("revoke failed: %v", err)
	}

	folder, found, err := store.GetFolder(ctx, leafID)
	if err != nil || !found {
		t.Fatalf("leaf lookup failed: found=%v err=%v", found, err)
	}
	if !folder.Deleted || folder.DeletedBy != "buyer-head-1" {
		t.Fatalf("expected soft-deleted leaf, got %+v", folder)
	}
	if count := store.GrantCount(entities.ResourceFolder, leafID, "buyer-1"); count != 0 {
		t.Fatalf("expected folder grants revoked, got %d", count)
	}
	for _, asset := range assets {
		if count := store.GrantCount(entities.ResourceAsset, asset.AssetID, "buyer-1"); count != 0 {
			t.Fatalf("expected asset grants revoked, got %d", count)
		}
	}
	if pointer, _ := pointers.GetMediaFolderID(ctx, "req-1", "buyer-1"); pointer != "" {
		t.Fatalf("expected pointer cleared, got %q", pointer)
	}

	// Shared ancestors stay live for other requests.
	root, found, err := store.FindFolderByName(ctx, "buyer-1", "", foldername.CategoryRootName)
	if err != nil || !found || root.Deleted {
		t.Fatalf("expected category root untouched, got %+v found=%v err=%v", root, found, err)
	}
}

func TestRevokeAccessWithoutPointerIsNoop(t *testing.T) {
	store := memory.NewStore()
	pointers := newFakePointerStore()
	uc := RevokeAccessUseCase{
		Folders:      store,
		Permissions:  store,
		Assets:       store,
		BuyerFolders: pointers,
		Clock:        fixedClock{now: time.Now().UTC()},
	}

	if err := uc.Execute(context.Background(), RevokeAccessCommand{RequestID: "req-1", BuyerID: "buyer-9", ActorID: "buyer-head-1"}); err != nil {
		t.Fatalf("expected no-op revoke to succeed, got %v", err)
	}
}
