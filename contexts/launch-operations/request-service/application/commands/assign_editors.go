package commands

import (
	"context"
	"log/slog"
	"strings"

	application "launchdesk/contexts/launch-operations/request-service/application"
	"launchdesk/contexts/launch-operations/request-service/domain/entities"
	"launchdesk/contexts/launch-operations/request-service/ports"
)

type AssignEditorsCommand struct {
	RequestID string
	ActorID   string
	// Distribution carries explicit per-editor counts. When empty,
	// EditorIDs is treated as a bare list with no counts and the sum
	// check is skipped.
	Distribution []entities.DistributionEntry
	EditorIDs    []string
}

type AssignEditorsUseCase struct {
	Requests ports.RequestRepository
	Editors  ports.EditorAssignmentRepository
	Clock    ports.Clock
	Logger   *slog.Logger
}

// Execute upserts the supplied editors and marks absent active rows
// reassigned. It deliberately never checks the request's lifecycle
// status; editor reshuffles are legal in any state.
func (uc AssignEditorsUseCase) Execute(ctx context.Context, cmd AssignEditorsCommand) ([]entities.EditorAssignment, error) {
	logger := application.ResolveLogger(uc.Logger)

	request, err := uc.Requests.GetRequest(ctx, strings.TrimSpace(cmd.RequestID))
	if err != nil {
		return nil, err
	}

	entries := entities.NormalizeDistribution(cmd.Distribution)
	if len(entries) > 0 {
		if err := entities.ValidateDistribution(request.NumCreatives, entries); err != nil {
			return nil, err
		}
	} else {
		for _, editorID := range cmd.EditorIDs {
			entries = append(entries, entities.DistributionEntry{EditorID: editorID})
		}
		entries = entities.NormalizeDistribution(entries)
	}

	now := uc.Clock.Now().UTC()
	assignments, err := uc.Editors.ReplaceDistribution(ctx, request.RequestID, entries, now)
	if err != nil {
		return nil, err
	}

	logger.Info("editor distribution replaced",
		"event", "editor_distribution_replaced",
		"module", "launch-operations/request-service",
		"layer", "application",
		"request_id", request.RequestID,
		"editor_count", len(entries),
	)
	return assignments, nil
}
