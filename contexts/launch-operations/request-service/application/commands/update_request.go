package commands

import (
	"context"
	"log/slog"
	"strings"
	"time"

	application "launchdesk/contexts/launch-operations/request-service/application"
	"launchdesk/contexts/launch-operations/request-service/domain/entities"
	domainerrors "launchdesk/contexts/launch-operations/request-service/domain/errors"
	"launchdesk/contexts/launch-operations/request-service/ports"
)

type UpdateRequestCommand struct {
	RequestID        string
	ActorID          string
	ActorRole        entities.Role
	Title            *string
	RequestType      *entities.RequestType
	NumCreatives     *int
	SuggestedRunQty  *int
	DeliveryDeadline *time.Time
	TestDeadline     *time.Time
	Platforms        *[]string
	Verticals        *[]entities.Vertical
	CreativeHeadID   *string
	BuyerHeadID      *string
}

type UpdateRequestUseCase struct {
	Requests ports.RequestRepository
	Clock    ports.Clock
	Logger   *slog.Logger
}

func (uc UpdateRequestUseCase) Execute(ctx context.Context, cmd UpdateRequestCommand) (entities.LaunchRequest, error) {
	logger := application.ResolveLogger(uc.Logger)

	request, err := uc.Requests.GetRequest(ctx, strings.TrimSpace(cmd.RequestID))
	if err != nil {
		return entities.LaunchRequest{}, err
	}
	if !canMutate(request, cmd.ActorID, cmd.ActorRole) {
		return entities.LaunchRequest{}, domainerrors.ErrPermissionDenied
	}
	if !request.CanEdit() {
		return entities.LaunchRequest{}, domainerrors.ErrRequestNotEditable
	}

	if cmd.Title != nil {
		request.Title = strings.TrimSpace(*cmd.Title)
	}
	if cmd.RequestType != nil {
		request.RequestType = *cmd.RequestType
	}
	if cmd.NumCreatives != nil {
		request.NumCreatives = *cmd.NumCreatives
	}
	if cmd.SuggestedRunQty != nil {
		request.SuggestedRunQty = *cmd.SuggestedRunQty
	}
	if cmd.DeliveryDeadline != nil {
		deadline := cmd.DeliveryDeadline.UTC()
		request.DeliveryDeadline = &deadline
	}
	if cmd.TestDeadline != nil {
		deadline := cmd.TestDeadline.UTC()
		request.TestDeadline = &deadline
	}
	if cmd.Platforms != nil {
		request.Platforms = entities.NormalizePlatforms(*cmd.Platforms)
	}
	if cmd.Verticals != nil {
		request.Verticals = entities.NormalizeVerticals(*cmd.Verticals)
	}
	if cmd.CreativeHeadID != nil {
		request.CreativeHeadID = strings.TrimSpace(*cmd.CreativeHeadID)
	}
	if cmd.BuyerHeadID != nil {
		request.BuyerHeadID = strings.TrimSpace(*cmd.BuyerHeadID)
	}
	if !request.ValidateBasics() {
		return entities.LaunchRequest{}, domainerrors.ErrInvalidRequestInput
	}

	request.UpdatedAt = uc.Clock.Now().UTC()
	if err := uc.Requests.UpdateRequest(ctx, request); err != nil {
		return entities.LaunchRequest{}, err
	}

	logger.Info("launch request updated",
		"event", "launch_request_updated",
		"module", "launch-operations/request-service",
		"layer", "application",
		"request_id", request.RequestID,
	)
	return request, nil
}

func canMutate(request entities.LaunchRequest, actorID string, role entities.Role) bool {
	actorID = strings.TrimSpace(actorID)
	if actorID == "" {
		return false
	}
	return role == entities.RoleAdmin || request.CreatedBy == actorID
}
