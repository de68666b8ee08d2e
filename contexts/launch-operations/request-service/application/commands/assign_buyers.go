package commands

import (
	"context"
	"log/slog"
	"strings"
	"time"

	application "launchdesk/contexts/launch-operations/request-service/application"
	"launchdesk/contexts/launch-operations/request-service/domain/entities"
	"launchdesk/contexts/launch-operations/request-service/ports"
	"launchdesk/internal/shared/events"
)

type BuyerAssignmentInput struct {
	BuyerID      string
	FileIDs      []string
	RunQty       int
	TestDeadline *time.Time
}

type AssignBuyersCommand struct {
	RequestID             string
	ActorID               string
	Assignments           []BuyerAssignmentInput
	CommittedRunQty       *int
	CommittedTestDeadline *time.Time
}

type AssignBuyersUseCase struct {
	Requests ports.RequestRepository
	Buyers   ports.BuyerAssignmentRepository
	Users    ports.UserDirectory
	Clock    ports.Clock
	IDGen    ports.IDGenerator
	Logger   *slog.Logger
}

// Execute performs the ready_to_launch -> buyer_assigned transition and
// upserts one BuyerAssignment row per buyer. Provisioning for each named
// buyer is enqueued through the outbox inside the same transaction.
func (uc AssignBuyersUseCase) Execute(ctx context.Context, cmd AssignBuyersCommand) (entities.LaunchRequest, error) {
	logger := application.ResolveLogger(uc.Logger)

	current, err := uc.Requests.GetRequest(ctx, strings.TrimSpace(cmd.RequestID))
	if err != nil {
		return entities.LaunchRequest{}, err
	}

	now := uc.Clock.Now().UTC()
	rows := make([]entities.BuyerAssignment, 0, len(cmd.Assignments))
	for _, input := range cmd.Assignments {
		rows = append(rows, entities.BuyerAssignment{
			RequestID:       current.RequestID,
			BuyerID:         input.BuyerID,
			AssignedFileIDs: append([]string(nil), input.FileIDs...),
			RunQty:          input.RunQty,
			TestDeadline:    input.TestDeadline,
			AssignedAt:      now,
			UpdatedAt:       now,
		})
	}
	rows = entities.DedupeBuyerAssignments(rows)

	actorID := strings.TrimSpace(cmd.ActorID)
	buyers := make([]events.BuyerRef, 0, len(rows))
	for _, row := range rows {
		buyers = append(buyers, events.BuyerRef{
			BuyerID:   row.BuyerID,
			BuyerName: uc.lookupName(ctx, row.BuyerID),
			FileIDs:   append([]string(nil), row.AssignedFileIDs...),
		})
	}

	eventID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		return entities.LaunchRequest{}, err
	}
	envelope, err := events.NewEnvelope(eventID, events.TopicBuyersAssigned, "request-service", current.RequestID, now, events.BuyersAssigned{
		RequestID:       current.RequestID,
		Title:           current.Title,
		ProvisionerName: uc.lookupName(ctx, actorID),
		Buyers:          buyers,
	})
	if err != nil {
		return entities.LaunchRequest{}, err
	}

	request, err := uc.Buyers.ApplyBuyerAssignments(
		ctx,
		current.RequestID,
		rows,
		cmd.CommittedRunQty,
		cmd.CommittedTestDeadline,
		actorID,
		envelope,
		now,
	)
	if err != nil {
		return entities.LaunchRequest{}, err
	}

	logger.Info("buyers assigned",
		"event", "launch_request_buyers_assigned",
		"module", "launch-operations/request-service",
		"layer", "application",
		"request_id", request.RequestID,
		"buyer_count", len(rows),
	)
	return request, nil
}

func (uc AssignBuyersUseCase) lookupName(ctx context.Context, userID string) string {
	if uc.Users == nil || userID == "" {
		return userID
	}
	name, err := uc.Users.GetUserName(ctx, userID)
	if err != nil || strings.TrimSpace(name) == "" {
		return userID
	}
	return name
}
