package commands

import (
	"context"
	"log/slog"
	"strings"

	application "launchdesk/contexts/launch-operations/request-service/application"
	"launchdesk/contexts/launch-operations/request-service/domain/entities"
	domainerrors "launchdesk/contexts/launch-operations/request-service/domain/errors"
	"launchdesk/contexts/launch-operations/request-service/ports"
)

type DeleteRequestCommand struct {
	RequestID string
	ActorID   string
	ActorRole entities.Role
}

type DeleteRequestUseCase struct {
	Requests ports.RequestRepository
	Logger   *slog.Logger
}

func (uc DeleteRequestUseCase) Execute(ctx context.Context, cmd DeleteRequestCommand) error {
	logger := application.ResolveLogger(uc.Logger)

	request, err := uc.Requests.GetRequest(ctx, strings.TrimSpace(cmd.RequestID))
	if err != nil {
		return err
	}
	if !canMutate(request, cmd.ActorID, cmd.ActorRole) {
		return domainerrors.ErrPermissionDenied
	}

	if err := uc.Requests.DeleteRequest(ctx, request.RequestID); err != nil {
		return err
	}

	logger.Info("launch request deleted",
		"event", "launch_request_deleted",
		"module", "launch-operations/request-service",
		"layer", "application",
		"request_id", request.RequestID,
		"deleted_by", strings.TrimSpace(cmd.ActorID),
	)
	return nil
}
