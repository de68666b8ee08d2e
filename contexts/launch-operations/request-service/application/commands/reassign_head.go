package commands

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	application "launchdesk/contexts/launch-operations/request-service/application"
	"launchdesk/contexts/launch-operations/request-service/domain/entities"
	domainerrors "launchdesk/contexts/launch-operations/request-service/domain/errors"
	"launchdesk/contexts/launch-operations/request-service/ports"
)

type ReassignHeadCommand struct {
	RequestID   string
	ActorID     string
	Type        entities.ReassignmentType
	NewHolderID string
	Reason      string
}

type ReassignHeadUseCase struct {
	Requests      ports.RequestRepository
	Reassignments ports.ReassignmentRepository
	Users         ports.UserDirectory
	Clock         ports.Clock
	IDGen         ports.IDGenerator
	Logger        *slog.Logger
}

// Execute swaps the head pointer and appends the ledger record. No
// status guard applies; head reassignment is legal at any lifecycle
// stage.
func (uc ReassignHeadUseCase) Execute(ctx context.Context, cmd ReassignHeadCommand) (entities.LaunchRequest, error) {
	logger := application.ResolveLogger(uc.Logger)

	newHolderID := strings.TrimSpace(cmd.NewHolderID)
	if newHolderID == "" {
		return entities.LaunchRequest{}, fmt.Errorf("%w: new holder is required", domainerrors.ErrInvalidRequestInput)
	}
	if cmd.Type != entities.ReassignmentCreative && cmd.Type != entities.ReassignmentBuyer {
		return entities.LaunchRequest{}, fmt.Errorf("%w: unknown reassignment type %q", domainerrors.ErrInvalidRequestInput, cmd.Type)
	}

	request, err := uc.Requests.GetRequest(ctx, strings.TrimSpace(cmd.RequestID))
	if err != nil {
		return entities.LaunchRequest{}, err
	}

	var outgoingID string
	switch cmd.Type {
	case entities.ReassignmentCreative:
		outgoingID = request.CreativeHeadID
		request.CreativeHeadID = newHolderID
	case entities.ReassignmentBuyer:
		outgoingID = request.BuyerHeadID
		request.BuyerHeadID = newHolderID
	}

	now := uc.Clock.Now().UTC()
	request.UpdatedAt = now
	if err := uc.Requests.UpdateRequest(ctx, request); err != nil {
		return entities.LaunchRequest{}, err
	}

	recordID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		return entities.LaunchRequest{}, err
	}
	record := entities.ReassignmentRecord{
		RecordID:  recordID,
		RequestID: request.RequestID,
		ActorID:   strings.TrimSpace(cmd.ActorID),
		Type:      cmd.Type,
		FromName:  uc.lookupName(ctx, outgoingID),
		ToName:    uc.lookupName(ctx, newHolderID),
		Reason:    strings.TrimSpace(cmd.Reason),
		CreatedAt: now,
	}
	if err := uc.Reassignments.AppendReassignment(ctx, record); err != nil {
		return entities.LaunchRequest{}, err
	}

	logger.Info("head reassigned",
		"event", "launch_request_head_reassigned",
		"module", "launch-operations/request-service",
		"layer", "application",
		"request_id", request.RequestID,
		"type", string(cmd.Type),
		"from", record.FromName,
		"to", record.ToName,
	)
	return request, nil
}

func (uc ReassignHeadUseCase) lookupName(ctx context.Context, userID string) string {
	if uc.Users == nil || userID == "" {
		return userID
	}
	name, err := uc.Users.GetUserName(ctx, userID)
	if err != nil || strings.TrimSpace(name) == "" {
		return userID
	}
	return name
}
