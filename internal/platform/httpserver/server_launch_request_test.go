package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	provisioningservice "launchdesk/contexts/launch-operations/provisioning-service"
	provisioningentities "launchdesk/contexts/launch-operations/provisioning-service/domain/entities"
	requestservice "launchdesk/contexts/launch-operations/request-service"
	requesthttp "launchdesk/contexts/launch-operations/request-service/transport/http"
)

func newTestServer() *Server {
	requests := requestservice.NewInMemoryModule(nil, nil, slog.Default())
	provisioning := provisioningservice.NewInMemoryModule(requests.Store, requests.Store, nil, slog.Default())
	return New(requests, provisioning, slog.Default(), ":0")
}

func sendJSON(t *testing.T, server *Server, method string, path string, userID string, userRole string, payload any) *httptest.ResponseRecorder {
	t.Helper()
	var body bytes.Buffer
	if payload != nil {
		if err := json.NewEncoder(&body).Encode(payload); err != nil {
			t.Fatalf("encode payload failed: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if userID != "" {
		req.Header.Set("X-User-Id", userID)
	}
	if userRole != "" {
		req.Header.Set("X-User-Role", userRole)
	}
	rr := httptest.NewRecorder()
	server.mux.ServeHTTP(rr, req)
	return rr
}

func decodeRequest(t *testing.T, rr *httptest.ResponseRecorder) requesthttp.LaunchRequestDTO {
	t.Helper()
	var resp requesthttp.RequestResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response failed: %v body=%s", err, rr.Body.String())
	}
	return resp.Request
}

func TestCreateRequestRequiresUserHeader(t *testing.T) {
	server := newTestServer()
	rr := sendJSON(t, server, http.MethodPost, "/api/launch-requests", "", "", requesthttp.CreateRequestRequest{Title: "Spring launch", RequestType: "production"})
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestCreateRequestRejectsUnknownType(t *testing.T) {
	server := newTestServer()
	rr := sendJSON(t, server, http.MethodPost, "/api/launch-requests", "strategist-1", "strategist", requesthttp.CreateRequestRequest{Title: "Spring launch", RequestType: "billboard"})
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestLaunchRequestLifecycleOverHTTP(t *testing.T) {
	server := newTestServer()

	rr := sendJSON(t, server, http.MethodPost, "/api/launch-requests", "strategist-1", "strategist", requesthttp.CreateRequestRequest{
		Title:        "Spring launch",
		RequestType:  "production",
		NumCreatives: 10,
		Platforms:    []string{"facebook", "tiktok"},
		BuyerHeadID:  "buyer-head-1",
	})
	if rr.Code != http.StatusCreated {
		t.Fatalf("create: expected 201, got %d body=%s", rr.Code, rr.Body.String())
	}
	created := decodeRequest(t, rr)
	if created.Status != "draft" || created.RequestID == "" {
		t.Fatalf("unexpected created request: %+v", created)
	}
	base := "/api/launch-requests/" + created.RequestID

	rr = sendJSON(t, server, http.MethodPost, base+"/submit", "strategist-1", "strategist", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("submit: expected 200, got %d body=%s", rr.Code, rr.Body.String())
	}
	if status := decodeRequest(t, rr).Status; status != "pending_review" {
		t.Fatalf("submit: expected pending_review, got %s", status)
	}

	// First upload while under review silently moves the work into
	// production.
	rr = sendJSON(t, server, http.MethodPost, base+"/uploads", "editor-1", "editor", requesthttp.UploadRequest{
		FileName: "hero-cut.mp4",
		MimeType: "video/mp4",
		Data:     []byte("frames"),
	})
	if rr.Code != http.StatusCreated {
		t.Fatalf("upload: expected 201, got %d body=%s", rr.Code, rr.Body.String())
	}

	rr = sendJSON(t, server, http.MethodPost, base+"/assign-editors", "creative-head-1", "creative_head", requesthttp.AssignEditorsRequest{
		Distribution: []requesthttp.DistributionEntryDTO{
			{EditorID: "editor-1", Count: 6},
			{EditorID: "editor-2", Count: 4},
		},
	})
	if rr.Code != http.StatusOK {
		t.Fatalf("assign editors: expected 200, got %d body=%s", rr.Code, rr.Body.String())
	}

	rr = sendJSON(t, server, http.MethodPost, base+"/mark-ready", "creative-head-1", "creative_head", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("mark ready: expected 200, got %d body=%s", rr.Code, rr.Body.String())
	}

	rr = sendJSON(t, server, http.MethodPost, base+"/assign-buyers", "buyer-head-1", "buyer_head", requesthttp.AssignBuyersRequest{
		Assignments: []requesthttp.BuyerAssignmentInputDTO{{BuyerID: "buyer-1", RunQty: 100}},
	})
	if rr.Code != http.StatusOK {
		t.Fatalf("assign buyers: expected 200, got %d body=%s", rr.Code, rr.Body.String())
	}
	if status := decodeRequest(t, rr).Status; status != "buyer_assigned" {
		t.Fatalf("assign buyers: expected buyer_assigned, got %s", status)
	}

	rr = sendJSON(t, server, http.MethodPost, base+"/launch", "buyer-head-1", "buyer_head", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("launch: expected 200, got %d body=%s", rr.Code, rr.Body.String())
	}
	rr = sendJSON(t, server, http.MethodPost, base+"/close", "buyer-head-1", "buyer_head", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("close: expected 200, got %d body=%s", rr.Code, rr.Body.String())
	}

	rr = sendJSON(t, server, http.MethodGet, base, "strategist-1", "strategist", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("detail: expected 200, got %d body=%s", rr.Code, rr.Body.String())
	}
	var detail requesthttp.RequestDetailResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &detail); err != nil {
		t.Fatalf("decode detail failed: %v", err)
	}
	if detail.Request.Status != "closed" {
		t.Fatalf("expected closed, got %s", detail.Request.Status)
	}
	if len(detail.EditorAssignments) != 2 || len(detail.BuyerAssignments) != 1 || len(detail.Uploads) != 1 {
		t.Fatalf("unexpected detail projection: editors=%d buyers=%d uploads=%d",
			len(detail.EditorAssignments), len(detail.BuyerAssignments), len(detail.Uploads))
	}

	rr = sendJSON(t, server, http.MethodPost, base+"/reopen", "strategist-1", "strategist", requesthttp.TransitionRequest{Reason: "missed budget"})
	if rr.Code != http.StatusOK {
		t.Fatalf("reopen: expected 200, got %d body=%s", rr.Code, rr.Body.String())
	}
	if status := decodeRequest(t, rr).Status; status != "reopened" {
		t.Fatalf("reopen: expected reopened, got %s", status)
	}
}

func TestIllegalTransitionReturnsConflict(t *testing.T) {
	server := newTestServer()

	rr := sendJSON(t, server, http.MethodPost, "/api/launch-requests", "strategist-1", "strategist", requesthttp.CreateRequestRequest{Title: "Spring launch", RequestType: "media_buy"})
	if rr.Code != http.StatusCreated {
		t.Fatalf("create: expected 201, got %d", rr.Code)
	}
	base := "/api/launch-requests/" + decodeRequest(t, rr).RequestID

	if rr = sendJSON(t, server, http.MethodPost, base+"/submit", "strategist-1", "strategist", nil); rr.Code != http.StatusOK {
		t.Fatalf("submit: expected 200, got %d", rr.Code)
	}
	if rr = sendJSON(t, server, http.MethodPost, base+"/submit", "strategist-1", "strategist", nil); rr.Code != http.StatusConflict {
		t.Fatalf("second submit: expected 409, got %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestUnknownRequestReturnsNotFound(t *testing.T) {
	server := newTestServer()
	rr := sendJSON(t, server, http.MethodGet, "/api/launch-requests/missing-1", "strategist-1", "strategist", nil)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestRevokeAccessClearsPointerAndFolder(t *testing.T) {
	requests := requestservice.NewInMemoryModule(nil, nil, slog.Default())
	provisioning := provisioningservice.NewInMemoryModule(requests.Store, requests.Store, nil, slog.Default())
	server := New(requests, provisioning, slog.Default(), ":0")
	ctx := context.Background()

	leaf, err := provisioning.Store.CreateFolder(ctx, provisioningentities.Folder{
		Name:      "Dana-Cole-Spring-Launch",
		OwnerID:   "buyer-1",
		Kind:      provisioningentities.FolderKindLeaf,
		RequestID: "req-1",
	})
	if err != nil {
		t.Fatalf("seed folder failed: %v", err)
	}
	if err := requests.Store.SetMediaFolderID(ctx, "req-1", "buyer-1", leaf.FolderID); err != nil {
		t.Fatalf("seed pointer failed: %v", err)
	}

	rr := sendJSON(t, server, http.MethodPost, "/api/launch-requests/req-1/revoke-access", "buyer-head-1", "buyer_head", map[string]string{"buyer_id": "buyer-1"})
	if rr.Code != http.StatusNoContent {
		t.Fatalf("revoke: expected 204, got %d body=%s", rr.Code, rr.Body.String())
	}

	pointer, err := requests.Store.GetMediaFolderID(ctx, "req-1", "buyer-1")
	if err != nil || pointer != "" {
		t.Fatalf("expected pointer cleared, got %q err=%v", pointer, err)
	}

	rr = sendJSON(t, server, http.MethodGet, "/api/media-folders/"+leaf.FolderID, "buyer-1", "buyer", nil)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected soft-deleted folder hidden, got %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestRevokeAccessRequiresBuyerID(t *testing.T) {
	server := newTestServer()
	rr := sendJSON(t, server, http.MethodPost, "/api/launch-requests/req-1/revoke-access", "buyer-head-1", "buyer_head", map[string]string{})
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestFolderContentsListsLiveAssets(t *testing.T) {
	requests := requestservice.NewInMemoryModule(nil, nil, slog.Default())
	provisioning := provisioningservice.NewInMemoryModule(requests.Store, requests.Store, nil, slog.Default())
	server := New(requests, provisioning, slog.Default(), ":0")
	ctx := context.Background()

	leaf, err := provisioning.Store.CreateFolder(ctx, provisioningentities.Folder{
		Name:    "Dana-Cole-Spring-Launch",
		OwnerID: "buyer-1",
		Kind:    provisioningentities.FolderKindLeaf,
	})
	if err != nil {
		t.Fatalf("seed folder failed: %v", err)
	}
	if _, err := provisioning.Store.CreateAsset(ctx, provisioningentities.Asset{
		AssetID:        "asset-1",
		FolderID:       leaf.FolderID,
		SourceUploadID: "upload-1",
		FileName:       "hero-cut.mp4",
		Tag:            provisioningentities.ProvenanceTag,
	}); err != nil {
		t.Fatalf("seed asset failed: %v", err)
	}

	rr := sendJSON(t, server, http.MethodGet, "/api/media-folders/"+leaf.FolderID, "buyer-1", "buyer", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", rr.Code, rr.Body.String())
	}
	var resp struct {
		Folder struct {
			FolderID string `json:"folder_id"`
		} `json:"folder"`
		Assets []struct {
			AssetID string `json:"asset_id"`
		} `json:"assets"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if resp.Folder.FolderID != leaf.FolderID || len(resp.Assets) != 1 || resp.Assets[0].AssetID != "asset-1" {
		t.Fatalf("unexpected folder contents: %s", rr.Body.String())
	}
}
