package workers

import (
	"context"
	"encoding/json"
	"log/slog"

	application "launchdesk/contexts/launch-operations/provisioning-service/application"
	"launchdesk/contexts/launch-operations/provisioning-service/application/commands"
	"launchdesk/contexts/launch-operations/provisioning-service/ports"
	"launchdesk/internal/shared/events"
)

// ProvisioningConsumer drives provisioning off the request-service
// topics. Failures are logged with enough context for manual follow-up
// and never propagated: a provisioning failure must not unwind or
// surface through the committed business-state change that triggered it.
type ProvisioningConsumer struct {
	Subscriber    ports.EventSubscriber
	Provision     commands.ProvisionBuyerUseCase
	Route         commands.RouteUploadUseCase
	ConsumerGroup string
	// RouteUploads gates the upload fan-out subscription so routing can
	// be switched off without stopping buyer provisioning.
	RouteUploads bool
	Logger       *slog.Logger
}

func (c ProvisioningConsumer) Start(ctx context.Context) error {
	if err := c.Subscriber.Subscribe(ctx, events.TopicRequestCreated, c.ConsumerGroup, c.handleRequestCreated); err != nil {
		return err
	}
	if err := c.Subscriber.Subscribe(ctx, events.TopicBuyersAssigned, c.ConsumerGroup, c.handleBuyersAssigned); err != nil {
		return err
	}
	if !c.RouteUploads {
		return nil
	}
	return c.Subscriber.Subscribe(ctx, events.TopicUploadCreated, c.ConsumerGroup, c.handleUploadCreated)
}

func (c ProvisioningConsumer) handleRequestCreated(ctx context.Context, event ports.EventEnvelope) error {
	logger := application.ResolveLogger(c.Logger)

	var payload events.RequestCreated
	if err := json.Unmarshal(event.Data, &payload); err != nil {
		c.logFailure(logger, event, "", err)
		return nil
	}
	for _, buyer := range payload.Buyers {
		err := c.Provision.Execute(ctx, commands.ProvisionBuyerCommand{
			RequestID:       payload.RequestID,
			RequestTitle:    payload.Title,
			BuyerID:         buyer.BuyerID,
			BuyerName:       buyer.BuyerName,
			ProvisionerName: payload.ProvisionerName,
			FileIDs:         buyer.FileIDs,
		})
		if err != nil {
			c.logFailure(logger, event, buyer.BuyerID, err)
		}
	}
	return nil
}

func (c ProvisioningConsumer) handleBuyersAssigned(ctx context.Context, event ports.EventEnvelope) error {
	logger := application.ResolveLogger(c.Logger)

	var payload events.BuyersAssigned
	if err := json.Unmarshal(event.Data, &payload); err != nil {
		c.logFailure(logger, event, "", err)
		return nil
	}
	for _, buyer := range payload.Buyers {
		err := c.Provision.Execute(ctx, commands.ProvisionBuyerCommand{
			RequestID:       payload.RequestID,
			RequestTitle:    payload.Title,
			BuyerID:         buyer.BuyerID,
			BuyerName:       buyer.BuyerName,
			ProvisionerName: payload.ProvisionerName,
			FileIDs:         buyer.FileIDs,
		})
		if err != nil {
			c.logFailure(logger, event, buyer.BuyerID, err)
		}
	}
	return nil
}

func (c ProvisioningConsumer) handleUploadCreated(ctx context.Context, event ports.EventEnvelope) error {
	logger := application.ResolveLogger(c.Logger)

	var payload events.UploadCreated
	if err := json.Unmarshal(event.Data, &payload); err != nil {
		c.logFailure(logger, event, "", err)
		return nil
	}
	err := c.Route.Execute(ctx, commands.RouteUploadCommand{
		RequestID:  payload.RequestID,
		UploadID:   payload.UploadID,
		FileName:   payload.FileName,
		MimeType:   payload.MimeType,
		SizeBytes:  payload.SizeBytes,
		StorageKey: payload.StorageKey,
	})
	if err != nil {
		c.logFailure(logger, event, "", err)
	}
	return nil
}

func (c ProvisioningConsumer) logFailure(logger *slog.Logger, event ports.EventEnvelope, buyerID string, err error) {
	logger.Error("provisioning failed",
		"event", "provisioning_failed",
		"module", "launch-operations/provisioning-service",
		"layer", "worker",
		"event_id", event.EventID,
		"event_type", event.EventType,
		"partition_key", event.PartitionKey,
		"buyer_id", buyerID,
		"error", err.Error(),
	)
}
