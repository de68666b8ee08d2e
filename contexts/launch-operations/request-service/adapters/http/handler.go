package httpadapter

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"launchdesk/contexts/launch-operations/request-service/application/commands"
	"launchdesk/contexts/launch-operations/request-service/application/queries"
	"launchdesk/contexts/launch-operations/request-service/domain/entities"
	domainerrors "launchdesk/contexts/launch-operations/request-service/domain/errors"
	httptransport "launchdesk/contexts/launch-operations/request-service/transport/http"

	"github.com/go-playground/validator/v10"
)

// Handler binds transport DTOs to use cases. Payload shape validation
// happens here; domain rules stay in the application layer.
type Handler struct {
	CreateRequest commands.CreateRequestUseCase
	UpdateRequest commands.UpdateRequestUseCase
	DeleteRequest commands.DeleteRequestUseCase
	Transition    commands.TransitionRequestUseCase
	AssignEditors commands.AssignEditorsUseCase
	AssignBuyers  commands.AssignBuyersUseCase
	ReassignHead  commands.ReassignHeadUseCase
	Upload        commands.UploadUseCase
	GetRequest    queries.GetRequestUseCase
	ListRequests  queries.ListRequestsUseCase
	Validate      *validator.Validate
	Logger        *slog.Logger
}

func (h Handler) validateStruct(payload any) error {
	if h.Validate == nil {
		return nil
	}
	if err := h.Validate.Struct(payload); err != nil {
		return fmt.Errorf("%w: %s", domainerrors.ErrInvalidRequestInput, err.Error())
	}
	return nil
}

func (h Handler) CreateRequestHandler(
	ctx context.Context,
	actorID string,
	actorRole string,
	req httptransport.CreateRequestRequest,
) (httptransport.RequestResponse, error) {
	if err := h.validateStruct(req); err != nil {
		return httptransport.RequestResponse{}, err
	}
	deliveryDeadline, err := parseOptionalTime(req.DeliveryDeadline)
	if err != nil {
		return httptransport.RequestResponse{}, err
	}
	testDeadline, err := parseOptionalTime(req.TestDeadline)
	if err != nil {
		return httptransport.RequestResponse{}, err
	}

	item, err := h.CreateRequest.Execute(ctx, commands.CreateRequestCommand{
		ActorID:          actorID,
		ActorRole:        entities.Role(actorRole),
		Title:            req.Title,
		RequestType:      entities.RequestType(req.RequestType),
		NumCreatives:     req.NumCreatives,
		SuggestedRunQty:  req.SuggestedRunQty,
		DeliveryDeadline: deliveryDeadline,
		TestDeadline:     testDeadline,
		Platforms:        req.Platforms,
		Verticals:        mapVerticalsIn(req.Verticals),
		CreativeHeadID:   req.CreativeHeadID,
		BuyerHeadID:      req.BuyerHeadID,
		BuyerIDs:         req.BuyerIDs,
	})
	if err != nil {
		return httptransport.RequestResponse{}, err
	}
	return httptransport.RequestResponse{Request: mapRequest(item)}, nil
}

func (h Handler) UpdateRequestHandler(
	ctx context.Context,
	actorID string,
	actorRole string,
	requestID string,
	req httptransport.UpdateRequestRequest,
) (httptransport.RequestResponse, error) {
	if err := h.validateStruct(req); err != nil {
		return httptransport.RequestResponse{}, err
	}
	cmd := commands.UpdateRequestCommand{
		RequestID: requestID,
		ActorID:   actorID,
		ActorRole: entities.Role(actorRole),
		Title:     req.Title,
	}
	if req.RequestType != nil {
		requestType := entities.RequestType(*req.RequestType)
		cmd.RequestType = &requestType
	}
	cmd.NumCreatives = req.NumCreatives
	cmd.SuggestedRunQty = req.SuggestedRunQty
	if req.DeliveryDeadline != nil {
		deadline, err := parseOptionalTime(*req.DeliveryDeadline)
		if err != nil {
			return httptransport.RequestResponse{}, err
		}
		cmd.DeliveryDeadline = deadline
	}
	if req.TestDeadline != nil {
		deadline, err := parseOptionalTime(*req.TestDeadline)
		if err != nil {
			return httptransport.RequestResponse{}, err
		}
		cmd.TestDeadline = deadline
	}
	cmd.Platforms = req.Platforms
	if req.Verticals != nil {
		verticals := mapVerticalsIn(*req.Verticals)
		cmd.Verticals = &verticals
	}
	cmd.CreativeHeadID = req.CreativeHeadID
	cmd.BuyerHeadID = req.BuyerHeadID

	item, err := h.UpdateRequest.Execute(ctx, cmd)
	if err != nil {
		return httptransport.RequestResponse{}, err
	}
	return httptransport.RequestResponse{Request: mapRequest(item)}, nil
}

func (h Handler) DeleteRequestHandler(ctx context.Context, actorID string, actorRole string, requestID string) error {
	return h.DeleteRequest.Execute(ctx, commands.DeleteRequestCommand{
		RequestID: requestID,
		ActorID:   actorID,
		ActorRole: entities.Role(actorRole),
	})
}

func (h Handler) TransitionHandler(
	ctx context.Context,
	actorID string,
	requestID string,
	op entities.TransitionOp,
	req httptransport.TransitionRequest,
) (httptransport.RequestResponse, error) {
	item, err := h.Transition.Execute(ctx, commands.TransitionRequestCommand{
		RequestID: requestID,
		ActorID:   actorID,
		Op:        op,
		Reason:    req.Reason,
	})
	if err != nil {
		return httptransport.RequestResponse{}, err
	}
	return httptransport.RequestResponse{Request: mapRequest(item)}, nil
}

func (h Handler) AssignEditorsHandler(
	ctx context.Context,
	actorID string,
	requestID string,
	req httptransport.AssignEditorsRequest,
) (httptransport.AssignEditorsResponse, error) {
	if err := h.validateStruct(req); err != nil {
		return httptransport.AssignEditorsResponse{}, err
	}
	distribution := make([]entities.DistributionEntry, 0, len(req.Distribution))
	for _, entry := range req.Distribution {
		distribution = append(distribution, entities.DistributionEntry{
			EditorID: entry.EditorID,
			Count:    entry.Count,
		})
	}
	items, err := h.AssignEditors.Execute(ctx, commands.AssignEditorsCommand{
		RequestID:    requestID,
		ActorID:      actorID,
		Distribution: distribution,
		EditorIDs:    req.EditorIDs,
	})
	if err != nil {
		return httptransport.AssignEditorsResponse{}, err
	}
	result := make([]httptransport.EditorAssignmentDTO, 0, len(items))
	for _, item := range items {
		result = append(result, mapEditorAssignment(item))
	}
	return httptransport.AssignEditorsResponse{Assignments: result}, nil
}

func (h Handler) AssignBuyersHandler(
	ctx context.Context,
	actorID string,
	requestID string,
	req httptransport.AssignBuyersRequest,
) (httptransport.RequestResponse, error) {
	if err := h.validateStruct(req); err != nil {
		return httptransport.RequestResponse{}, err
	}
	assignments := make([]commands.BuyerAssignmentInput, 0, len(req.Assignments))
	for _, item := range req.Assignments {
		deadline, err := parseOptionalTime(item.TestDeadline)
		if err != nil {
			return httptransport.RequestResponse{}, err
		}
		assignments = append(assignments, commands.BuyerAssignmentInput{
			BuyerID:      item.BuyerID,
			FileIDs:      item.FileIDs,
			RunQty:       item.RunQty,
			TestDeadline: deadline,
		})
	}
	committedTestDeadline, err := parseOptionalTime(req.CommittedTestDeadline)
	if err != nil {
		return httptransport.RequestResponse{}, err
	}

	item, err := h.AssignBuyers.Execute(ctx, commands.AssignBuyersCommand{
		RequestID:             requestID,
		ActorID:               actorID,
		Assignments:           assignments,
		CommittedRunQty:       req.CommittedRunQty,
		CommittedTestDeadline: committedTestDeadline,
	})
	if err != nil {
		return httptransport.RequestResponse{}, err
	}
	return httptransport.RequestResponse{Request: mapRequest(item)}, nil
}

func (h Handler) ReassignHeadHandler(
	ctx context.Context,
	actorID string,
	requestID string,
	req httptransport.ReassignHeadRequest,
) (httptransport.RequestResponse, error) {
	if err := h.validateStruct(req); err != nil {
		return httptransport.RequestResponse{}, err
	}
	item, err := h.ReassignHead.Execute(ctx, commands.ReassignHeadCommand{
		RequestID:   requestID,
		ActorID:     actorID,
		Type:        entities.ReassignmentType(req.Type),
		NewHolderID: req.NewHolderID,
		Reason:      req.Reason,
	})
	if err != nil {
		return httptransport.RequestResponse{}, err
	}
	return httptransport.RequestResponse{Request: mapRequest(item)}, nil
}

func (h Handler) UploadHandler(
	ctx context.Context,
	actorID string,
	requestID string,
	req httptransport.UploadRequest,
) (httptransport.UploadResponse, error) {
	if err := h.validateStruct(req); err != nil {
		return httptransport.UploadResponse{}, err
	}
	item, err := h.Upload.Execute(ctx, commands.UploadCommand{
		RequestID: requestID,
		ActorID:   actorID,
		FileName:  req.FileName,
		MimeType:  req.MimeType,
		Data:      req.Data,
		Comments:  req.Comments,
	})
	if err != nil {
		return httptransport.UploadResponse{}, err
	}
	return httptransport.UploadResponse{Upload: mapUpload(item)}, nil
}

func (h Handler) GetRequestHandler(ctx context.Context, requestID string) (httptransport.RequestDetailResponse, error) {
	detail, err := h.GetRequest.Execute(ctx, requestID)
	if err != nil {
		return httptransport.RequestDetailResponse{}, err
	}

	editors := make([]httptransport.EditorAssignmentDTO, 0, len(detail.EditorAssignments))
	for _, item := range detail.EditorAssignments {
		editors = append(editors, mapEditorAssignment(item))
	}
	buyers := make([]httptransport.BuyerAssignmentDTO, 0, len(detail.BuyerAssignments))
	for _, item := range detail.BuyerAssignments {
		buyers = append(buyers, mapBuyerAssignment(item))
	}
	uploads := make([]httptransport.UploadDTO, 0, len(detail.Uploads))
	for _, item := range detail.Uploads {
		uploads = append(uploads, mapUpload(item))
	}
	reassignments := make([]httptransport.ReassignmentDTO, 0, len(detail.Reassignments))
	for _, item := range detail.Reassignments {
		reassignments = append(reassignments, httptransport.ReassignmentDTO{
			RecordID:  item.RecordID,
			Type:      string(item.Type),
			ActorID:   item.ActorID,
			FromName:  item.FromName,
			ToName:    item.ToName,
			Reason:    item.Reason,
			CreatedAt: item.CreatedAt.Format(time.RFC3339),
		})
	}
	return httptransport.RequestDetailResponse{
		Request:           mapRequest(detail.Request),
		EditorAssignments: editors,
		BuyerAssignments:  buyers,
		Uploads:           uploads,
		Reassignments:     reassignments,
	}, nil
}

func (h Handler) ListRequestsHandler(
	ctx context.Context,
	actorID string,
	actorRole string,
	status string,
	requestType string,
) (httptransport.ListRequestsResponse, error) {
	items, err := h.ListRequests.Execute(ctx, queries.ListRequestsQuery{
		ActorID:     actorID,
		ActorRole:   entities.Role(actorRole),
		Status:      status,
		RequestType: requestType,
	})
	if err != nil {
		return httptransport.ListRequestsResponse{}, err
	}
	result := make([]httptransport.LaunchRequestDTO, 0, len(items))
	for _, item := range items {
		result = append(result, mapRequest(item))
	}
	return httptransport.ListRequestsResponse{Items: result}, nil
}

func mapVerticalsIn(items []httptransport.VerticalDTO) []entities.Vertical {
	result := make([]entities.Vertical, 0, len(items))
	for _, item := range items {
		result = append(result, entities.Vertical{Name: item.Name, Primary: item.Primary})
	}
	return result
}

func mapRequest(item entities.LaunchRequest) httptransport.LaunchRequestDTO {
	verticals := make([]httptransport.VerticalDTO, 0, len(item.Verticals))
	for _, vertical := range item.Verticals {
		verticals = append(verticals, httptransport.VerticalDTO{
			Name:    vertical.Name,
			Primary: vertical.Primary,
		})
	}
	dto := httptransport.LaunchRequestDTO{
		RequestID:       item.RequestID,
		Title:           item.Title,
		RequestType:     string(item.RequestType),
		Status:          string(item.Status),
		NumCreatives:    item.NumCreatives,
		SuggestedRunQty: item.SuggestedRunQty,
		CommittedRunQty: item.CommittedRunQty,
		Platforms:       item.Platforms,
		Verticals:       verticals,
		CreativeHeadID:  item.CreativeHeadID,
		BuyerHeadID:     item.BuyerHeadID,
		CreatedBy:       item.CreatedBy,
		CreatedAt:       item.CreatedAt.Format(time.RFC3339),
		UpdatedAt:       item.UpdatedAt.Format(time.RFC3339),
	}
	dto.DeliveryDeadline = formatOptionalTime(item.DeliveryDeadline)
	dto.TestDeadline = formatOptionalTime(item.TestDeadline)
	dto.CommittedTestDeadline = formatOptionalTime(item.CommittedTestDeadline)
	dto.SubmittedAt = formatOptionalTime(item.SubmittedAt)
	dto.AcceptedAt = formatOptionalTime(item.AcceptedAt)
	dto.ReadyAt = formatOptionalTime(item.ReadyAt)
	dto.BuyerAssignedAt = formatOptionalTime(item.BuyerAssignedAt)
	dto.LaunchedAt = formatOptionalTime(item.LaunchedAt)
	dto.ClosedAt = formatOptionalTime(item.ClosedAt)
	return dto
}

func mapEditorAssignment(item entities.EditorAssignment) httptransport.EditorAssignmentDTO {
	return httptransport.EditorAssignmentDTO{
		EditorID:             item.EditorID,
		NumCreativesAssigned: item.NumCreativesAssigned,
		CreativesCompleted:   item.CreativesCompleted,
		Status:               string(item.Status),
		AssignedAt:           item.AssignedAt.Format(time.RFC3339),
		UpdatedAt:            item.UpdatedAt.Format(time.RFC3339),
	}
}

func mapBuyerAssignment(item entities.BuyerAssignment) httptransport.BuyerAssignmentDTO {
	return httptransport.BuyerAssignmentDTO{
		BuyerID:         item.BuyerID,
		AssignedFileIDs: item.AssignedFileIDs,
		RunQty:          item.RunQty,
		TestDeadline:    formatOptionalTime(item.TestDeadline),
		MediaFolderID:   item.MediaFolderID,
		AssignedAt:      item.AssignedAt.Format(time.RFC3339),
	}
}

func mapUpload(item entities.UploadRecord) httptransport.UploadDTO {
	return httptransport.UploadDTO{
		UploadID:   item.UploadID,
		RequestID:  item.RequestID,
		UploadedBy: item.UploadedBy,
		FileName:   item.FileName,
		MimeType:   item.MimeType,
		SizeBytes:  item.SizeBytes,
		StorageKey: item.StorageKey,
		Comments:   item.Comments,
		CreatedAt:  item.CreatedAt.Format(time.RFC3339),
	}
}

func formatOptionalTime(value *time.Time) string {
	if value == nil {
		return ""
	}
	return value.Format(time.RFC3339)
}

func parseOptionalTime(value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	parsed, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid timestamp %q", domainerrors.ErrInvalidRequestInput, value)
	}
	utc := parsed.UTC()
	return &utc, nil
}
