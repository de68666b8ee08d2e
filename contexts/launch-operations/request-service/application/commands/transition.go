package commands

import (
	"context"
	"log/slog"
	"strings"

	application "launchdesk/contexts/launch-operations/request-service/application"
	"launchdesk/contexts/launch-operations/request-service/domain/entities"
	"launchdesk/contexts/launch-operations/request-service/ports"
)

type TransitionRequestCommand struct {
	RequestID string
	ActorID   string
	Op        entities.TransitionOp
	Reason    string
}

type TransitionRequestUseCase struct {
	Transitions ports.TransitionRepository
	Notifier    ports.Notifier
	Clock       ports.Clock
	Logger      *slog.Logger
}

func (uc TransitionRequestUseCase) Execute(ctx context.Context, cmd TransitionRequestCommand) (entities.LaunchRequest, error) {
	logger := application.ResolveLogger(uc.Logger)

	now := uc.Clock.Now().UTC()
	request, err := uc.Transitions.ApplyTransition(
		ctx,
		strings.TrimSpace(cmd.RequestID),
		cmd.Op,
		strings.TrimSpace(cmd.ActorID),
		strings.TrimSpace(cmd.Reason),
		now,
	)
	if err != nil {
		return entities.LaunchRequest{}, err
	}

	if uc.Notifier != nil && request.CreatedBy != "" {
		if err := uc.Notifier.Notify(ctx, request.CreatedBy, "launch request status changed", string(request.Status)); err != nil {
			logger.Warn("notification delivery failed",
				"event", "request_notify_failed",
				"module", "launch-operations/request-service",
				"layer", "application",
				"request_id", request.RequestID,
				"error", err.Error(),
			)
		}
	}

	logger.Info("launch request transitioned",
		"event", "launch_request_transitioned",
		"module", "launch-operations/request-service",
		"layer", "application",
		"request_id", request.RequestID,
		"op", string(cmd.Op),
		"to_status", string(request.Status),
	)
	return request, nil
}
