package queries

import (
	"context"
	"log/slog"
	"strings"

	"launchdesk/contexts/launch-operations/request-service/domain/entities"
	"launchdesk/contexts/launch-operations/request-service/ports"
)

// RequestDetail is the canonical detail projection; role-aware trimming
// happens at the API boundary, not here.
type RequestDetail struct {
	Request           entities.LaunchRequest
	EditorAssignments []entities.EditorAssignment
	BuyerAssignments  []entities.BuyerAssignment
	Uploads           []entities.UploadRecord
	Reassignments     []entities.ReassignmentRecord
}

type GetRequestUseCase struct {
	Requests      ports.RequestRepository
	Editors       ports.EditorAssignmentRepository
	Buyers        ports.BuyerAssignmentRepository
	Uploads       ports.UploadRepository
	Reassignments ports.ReassignmentRepository
	Logger        *slog.Logger
}

func (uc GetRequestUseCase) Execute(ctx context.Context, requestID string) (RequestDetail, error) {
	request, err := uc.Requests.GetRequest(ctx, strings.TrimSpace(requestID))
	if err != nil {
		return RequestDetail{}, err
	}

	editors, err := uc.Editors.ListEditorAssignments(ctx, request.RequestID)
	if err != nil {
		return RequestDetail{}, err
	}
	buyers, err := uc.Buyers.ListBuyerAssignments(ctx, request.RequestID)
	if err != nil {
		return RequestDetail{}, err
	}
	uploads, err := uc.Uploads.ListUploads(ctx, request.RequestID)
	if err != nil {
		return RequestDetail{}, err
	}
	reassignments, err := uc.Reassignments.ListReassignments(ctx, request.RequestID)
	if err != nil {
		return RequestDetail{}, err
	}

	return RequestDetail{
		Request:           request,
		EditorAssignments: editors,
		BuyerAssignments:  buyers,
		Uploads:           uploads,
		Reassignments:     reassignments,
	}, nil
}
