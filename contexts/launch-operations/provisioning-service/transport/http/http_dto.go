package http

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type RevokeAccessRequest struct {
	BuyerID string `json:"buyer_id" validate:"required"`
}

type FolderDTO struct {
	FolderID  string `json:"folder_id"`
	Name      string `json:"name"`
	OwnerID   string `json:"owner_id"`
	ParentID  string `json:"parent_id,omitempty"`
	Kind      string `json:"kind"`
	RequestID string `json:"request_id,omitempty"`
	CreatedAt string `json:"created_at"`
}

type AssetDTO struct {
	AssetID        string `json:"asset_id"`
	FolderID       string `json:"folder_id"`
	SourceUploadID string `json:"source_upload_id"`
	FileName       string `json:"file_name"`
	MimeType       string `json:"mime_type,omitempty"`
	SizeBytes      int64  `json:"size_bytes"`
	StorageKey     string `json:"storage_key"`
	Tag            string `json:"tag"`
	CreatedAt      string `json:"created_at"`
}

type FolderContentsResponse struct {
	Folder FolderDTO  `json:"folder"`
	Assets []AssetDTO `json:"assets"`
}
