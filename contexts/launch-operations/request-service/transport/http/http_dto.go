package http

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type VerticalDTO struct {
	Name    string `json:"name" validate:"required"`
	Primary bool   `json:"primary"`
}

type CreateRequestRequest struct {
	Title            string        `json:"title" validate:"required,max=200"`
	RequestType      string        `json:"request_type" validate:"required,oneof=production media_buy hybrid"`
	NumCreatives     int           `json:"num_creatives" validate:"gte=0"`
	SuggestedRunQty  int           `json:"suggested_run_qty" validate:"gte=0"`
	DeliveryDeadline string        `json:"delivery_deadline,omitempty"`
	TestDeadline     string        `json:"test_deadline,omitempty"`
	Platforms        []string      `json:"platforms,omitempty"`
	Verticals        []VerticalDTO `json:"verticals,omitempty" validate:"dive"`
	CreativeHeadID   string        `json:"creative_head_id,omitempty"`
	BuyerHeadID      string        `json:"buyer_head_id,omitempty"`
	BuyerIDs         []string      `json:"buyer_ids,omitempty"`
}

type UpdateRequestRequest struct {
	Title            *string        `json:"title,omitempty" validate:"omitempty,max=200"`
	RequestType      *string        `json:"request_type,omitempty" validate:"omitempty,oneof=production media_buy hybrid"`
	NumCreatives     *int           `json:"num_creatives,omitempty" validate:"omitempty,gte=0"`
	SuggestedRunQty  *int           `json:"suggested_run_qty,omitempty" validate:"omitempty,gte=0"`
	DeliveryDeadline *string        `json:"delivery_deadline,omitempty"`
	TestDeadline     *string        `json:"test_deadline,omitempty"`
	Platforms        *[]string      `json:"platforms,omitempty"`
	Verticals        *[]VerticalDTO `json:"verticals,omitempty" validate:"omitempty,dive"`
	CreativeHeadID   *string        `json:"creative_head_id,omitempty"`
	BuyerHeadID      *string        `json:"buyer_head_id,omitempty"`
}

type TransitionRequest struct {
	Reason string `json:"reason,omitempty"`
}

type DistributionEntryDTO struct {
	EditorID string `json:"editor_id" validate:"required"`
	Count    int    `json:"count" validate:"gte=0"`
}

type AssignEditorsRequest struct {
	Distribution []DistributionEntryDTO `json:"distribution,omitempty" validate:"dive"`
	EditorIDs    []string               `json:"editor_ids,omitempty"`
}

type BuyerAssignmentInputDTO struct {
	BuyerID      string   `json:"buyer_id" validate:"required"`
	FileIDs      []string `json:"file_ids,omitempty"`
	RunQty       int      `json:"run_qty" validate:"gte=0"`
	TestDeadline string   `json:"test_deadline,omitempty"`
}

type AssignBuyersRequest struct {
	Assignments           []BuyerAssignmentInputDTO `json:"assignments" validate:"required,min=1,dive"`
	CommittedRunQty       *int                      `json:"committed_run_qty,omitempty" validate:"omitempty,gte=0"`
	CommittedTestDeadline string                    `json:"committed_test_deadline,omitempty"`
}

type ReassignHeadRequest struct {
	Type        string `json:"type" validate:"required,oneof=creative buyer"`
	NewHolderID string `json:"new_holder_id" validate:"required"`
	Reason      string `json:"reason,omitempty"`
}

type UploadRequest struct {
	FileName string `json:"file_name" validate:"required"`
	MimeType string `json:"mime_type,omitempty"`
	Data     []byte `json:"data" validate:"required"`
	Comments string `json:"comments,omitempty"`
}

type LaunchRequestDTO struct {
	RequestID             string        `json:"request_id"`
	Title                 string        `json:"title"`
	RequestType           string        `json:"request_type"`
	Status                string        `json:"status"`
	NumCreatives          int           `json:"num_creatives"`
	SuggestedRunQty       int           `json:"suggested_run_qty"`
	CommittedRunQty       *int          `json:"committed_run_qty,omitempty"`
	DeliveryDeadline      string        `json:"delivery_deadline,omitempty"`
	TestDeadline          string        `json:"test_deadline,omitempty"`
	CommittedTestDeadline string        `json:"committed_test_deadline,omitempty"`
	Platforms             []string      `json:"platforms,omitempty"`
	Verticals             []VerticalDTO `json:"verticals,omitempty"`
	CreativeHeadID        string        `json:"creative_head_id,omitempty"`
	BuyerHeadID           string        `json:"buyer_head_id,omitempty"`
	CreatedBy             string        `json:"created_by"`
	CreatedAt             string        `json:"created_at"`
	UpdatedAt             string        `json:"updated_at"`
	SubmittedAt           string        `json:"submitted_at,omitempty"`
	AcceptedAt            string        `json:"accepted_at,omitempty"`
	ReadyAt               string        `json:"ready_at,omitempty"`
	BuyerAssignedAt       string        `json:"buyer_assigned_at,omitempty"`
	LaunchedAt            string        `json:"launched_at,omitempty"`
	ClosedAt              string        `json:"closed_at,omitempty"`
}

type EditorAssignmentDTO struct {
	EditorID             string `json:"editor_id"`
	NumCreativesAssigned int    `json:"num_creatives_assigned"`
	CreativesCompleted   int    `json:"creatives_completed"`
	Status               string `json:"status"`
	AssignedAt           string `json:"assigned_at"`
	UpdatedAt            string `json:"updated_at"`
}

type BuyerAssignmentDTO struct {
	BuyerID         string   `json:"buyer_id"`
	AssignedFileIDs []string `json:"assigned_file_ids,omitempty"`
	RunQty          int      `json:"run_qty"`
	TestDeadline    string   `json:"test_deadline,omitempty"`
	MediaFolderID   string   `json:"media_folder_id,omitempty"`
	AssignedAt      string   `json:"assigned_at"`
}

type UploadDTO struct {
	UploadID   string `json:"upload_id"`
	RequestID  string `json:"request_id"`
	UploadedBy string `json:"uploaded_by"`
	FileName   string `json:"file_name"`
	MimeType   string `json:"mime_type,omitempty"`
	SizeBytes  int64  `json:"size_bytes"`
	StorageKey string `json:"storage_key"`
	Comments   string `json:"comments,omitempty"`
	CreatedAt  string `json:"created_at"`
}

type ReassignmentDTO struct {
	RecordID  string `json:"record_id"`
	Type      string `json:"type"`
	ActorID   string `json:"actor_id"`
	FromName  string `json:"from_name"`
	ToName    string `json:"to_name"`
	Reason    string `json:"reason,omitempty"`
	CreatedAt string `json:"created_at"`
}

type RequestResponse struct {
	Request LaunchRequestDTO `json:"request"`
}

type RequestDetailResponse struct {
	Request           LaunchRequestDTO      `json:"request"`
	EditorAssignments []EditorAssignmentDTO `json:"editor_assignments"`
	BuyerAssignments  []BuyerAssignmentDTO  `json:"buyer_assignments"`
	Uploads           []UploadDTO           `json:"uploads"`
	Reassignments     []ReassignmentDTO     `json:"reassignments"`
}

type ListRequestsResponse struct {
	Items []LaunchRequestDTO `json:"items"`
}

type AssignEditorsResponse struct {
	Assignments []EditorAssignmentDTO `json:"assignments"`
}

type UploadResponse struct {
	Upload UploadDTO `json:"upload"`
}
