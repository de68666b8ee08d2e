package events

import (
	"encoding/json"
	"time"
)

// Topics emitted by the request service and consumed by provisioning.
const (
	TopicRequestCreated = "launch_request.created"
	TopicBuyersAssigned = "launch_request.buyers_assigned"
	TopicUploadCreated  = "launch_request.upload_created"
)

type BuyerRef struct {
	BuyerID   string   `json:"buyer_id"`
	BuyerName string   `json:"buyer_name"`
	FileIDs   []string `json:"file_ids,omitempty"`
}

type RequestCreated struct {
	RequestID       string     `json:"request_id"`
	Title           string     `json:"title"`
	CreatedBy       string     `json:"created_by"`
	ProvisionerName string     `json:"provisioner_name"`
	Buyers          []BuyerRef `json:"buyers"`
}

type BuyersAssigned struct {
	RequestID       string     `json:"request_id"`
	Title           string     `json:"title"`
	ProvisionerName string     `json:"provisioner_name"`
	Buyers          []BuyerRef `json:"buyers"`
}

type UploadCreated struct {
	RequestID  string `json:"request_id"`
	UploadID   string `json:"upload_id"`
	FileName   string `json:"file_name"`
	MimeType   string `json:"mime_type"`
	SizeBytes  int64  `json:"size_bytes"`
	StorageKey string `json:"storage_key"`
}

// NewEnvelope wraps a payload for the outbox. Marshal failures surface
// to the caller so the triggering transaction can abort cleanly.
func NewEnvelope(eventID, eventType, sourceService, partitionKey string, occurredAt time.Time, payload any) (Envelope, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return Envelope{}, err
	}
	return Envelope{
		EventID:       eventID,
		EventType:     eventType,
		SourceService: sourceService,
		OccurredAt:    occurredAt.UTC(),
		SchemaVersion: 1,
		PartitionKey:  partitionKey,
		Data:          data,
	}, nil
}
