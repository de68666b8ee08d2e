package commands

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	application "launchdesk/contexts/launch-operations/request-service/application"
	"launchdesk/contexts/launch-operations/request-service/domain/entities"
	domainerrors "launchdesk/contexts/launch-operations/request-service/domain/errors"
	"launchdesk/contexts/launch-operations/request-service/ports"
	"launchdesk/internal/shared/events"
)

type CreateRequestCommand struct {
	ActorID          string
	ActorRole        entities.Role
	Title            string
	RequestType      entities.RequestType
	NumCreatives     int
	SuggestedRunQty  int
	DeliveryDeadline *time.Time
	TestDeadline     *time.Time
	Platforms        []string
	Verticals        []entities.Vertical
	CreativeHeadID   string
	BuyerHeadID      string
	BuyerIDs         []string
}

type CreateRequestUseCase struct {
	Requests ports.RequestRepository
	Buyers   ports.BuyerAssignmentRepository
	Outbox   ports.OutboxWriter
	Users    ports.UserDirectory
	Notifier ports.Notifier
	Clock    ports.Clock
	IDGen    ports.IDGenerator
	Logger   *slog.Logger
}

func (uc CreateRequestUseCase) Execute(ctx context.Context, cmd CreateRequestCommand) (entities.LaunchRequest, error) {
	logger := application.ResolveLogger(uc.Logger)

	actorID := strings.TrimSpace(cmd.ActorID)
	if actorID == "" {
		return entities.LaunchRequest{}, fmt.Errorf("%w: actor is required", domainerrors.ErrInvalidRequestInput)
	}
	if !entities.CanCreateRequests(cmd.ActorRole) {
		return entities.LaunchRequest{}, fmt.Errorf("%w: role %s cannot create launch requests", domainerrors.ErrInvalidRequestInput, cmd.ActorRole)
	}

	now := uc.Clock.Now().UTC()
	requestID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		return entities.LaunchRequest{}, err
	}

	request := entities.LaunchRequest{
		RequestID:        requestID,
		Title:            strings.TrimSpace(cmd.Title),
		RequestType:      cmd.RequestType,
		Status:           entities.StatusDraft,
		NumCreatives:     cmd.NumCreatives,
		SuggestedRunQty:  cmd.SuggestedRunQty,
		DeliveryDeadline: cmd.DeliveryDeadline,
		TestDeadline:     cmd.TestDeadline,
		Platforms:        entities.NormalizePlatforms(cmd.Platforms),
		Verticals:        entities.NormalizeVerticals(cmd.Verticals),
		CreativeHeadID:   strings.TrimSpace(cmd.CreativeHeadID),
		BuyerHeadID:      strings.TrimSpace(cmd.BuyerHeadID),
		CreatedBy:        actorID,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if !request.ValidateBasics() {
		return entities.LaunchRequest{}, domainerrors.ErrInvalidRequestInput
	}

	if err := uc.Requests.CreateRequest(ctx, request); err != nil {
		return entities.LaunchRequest{}, err
	}

	// Provisioning is triggered for the buyer head and any buyers
	// pre-listed at creation time; it runs detached via the outbox.
	buyers := uc.resolveBuyerRefs(ctx, request.BuyerHeadID, cmd.BuyerIDs)
	if len(buyers) > 0 {
		provisionerName := uc.lookupName(ctx, actorID)
		eventID, err := uc.IDGen.NewID(ctx)
		if err != nil {
			return entities.LaunchRequest{}, err
		}
		envelope, err := events.NewEnvelope(eventID, events.TopicRequestCreated, "request-service", request.RequestID, now, events.RequestCreated{
			RequestID:       request.RequestID,
			Title:           request.Title,
			CreatedBy:       actorID,
			ProvisionerName: provisionerName,
			Buyers:          buyers,
		})
		if err != nil {
			return entities.LaunchRequest{}, err
		}
		if err := uc.Outbox.AppendOutbox(ctx, envelope); err != nil {
			return entities.LaunchRequest{}, err
		}
	}

	if uc.Notifier != nil && request.CreativeHeadID != "" {
		if err := uc.Notifier.Notify(ctx, request.CreativeHeadID, "launch request created", request.Title); err != nil {
			logger.Warn("notification delivery failed",
				"event", "request_notify_failed",
				"module", "launch-operations/request-service",
				"layer", "application",
				"request_id", request.RequestID,
				"error", err.Error(),
			)
		}
	}

	logger.Info("launch request created",
		"event", "launch_request_created",
		"module", "launch-operations/request-service",
		"layer", "application",
		"request_id", request.RequestID,
		"created_by", actorID,
	)
	return request, nil
}

func (uc CreateRequestUseCase) resolveBuyerRefs(ctx context.Context, buyerHeadID string, buyerIDs []string) []events.BuyerRef {
	seen := make(map[string]struct{})
	refs := make([]events.BuyerRef, 0, len(buyerIDs)+1)
	appendRef := func(buyerID string) {
		buyerID = strings.TrimSpace(buyerID)
		if buyerID == "" {
			return
		}
		if _, ok := seen[buyerID]; ok {
			return
		}
		seen[buyerID] = struct{}{}
		refs = append(refs, events.BuyerRef{
			BuyerID:   buyerID,
			BuyerName: uc.lookupName(ctx, buyerID),
		})
	}
	appendRef(buyerHeadID)
	for _, buyerID := range buyerIDs {
		appendRef(buyerID)
	}
	return refs
}

func (uc CreateRequestUseCase) lookupName(ctx context.Context, userID string) string {
	if uc.Users == nil {
		return userID
	}
	name, err := uc.Users.GetUserName(ctx, userID)
	if err != nil || strings.TrimSpace(name) == "" {
		return userID
	}
	return name
}
