package models

import "time"

// OutboxEvent is a domain event persisted in the events_outbox table within
// the same transaction as the aggregate change it describes. The dispatcher
// publishes unpublished rows to the broker and sets PublishedAt.
type OutboxEvent struct {
	ID            string
	AggregateType string
	AggregateID   string
	EventType     string
	EventVersion  int
	Payload       []byte
	OccurredAt    time.Time
	CreatedAt     time.Time
	PublishedAt   *time.Time
	AttemptCount  int
	LastError     string
}
