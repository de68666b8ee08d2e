package events

import "time"

// Envelope is the shared event shape carried through the outbox and the
// event bus. Data holds the JSON-encoded event payload.
type Envelope struct {
	EventID       string    `json:"event_id"`
	EventType     string    `json:"event_type"`
	SourceService string    `json:"source_service"`
	OccurredAt    time.Time `json:"occurred_at"`
	SchemaVersion int       `json:"schema_version"`
	PartitionKey  string    `json:"partition_key"`
	Data          []byte    `json:"data"`
}
