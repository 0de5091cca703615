// Package outbox provides the events_outbox repository over PostgreSQL.
package outbox

import (
	"context"

	"github.com/aequatio-app/aequatio/internal/server/models"
)

type Repository interface {
	// Add persists an event without publishing it. Call inside the same
	// transaction as the aggregate change so the write is atomic.
	Add(ctx context.Context, event *models.OutboxEvent) error

	// FetchUnpublished returns up to limit unpublished events, oldest first,
	// locking the rows (FOR UPDATE SKIP LOCKED). Must run inside a
	// transaction.
	FetchUnpublished(ctx context.Context, limit int) ([]*models.OutboxEvent, error)

	MarkPublished(ctx context.Context, id string) error
	RecordFailure(ctx context.Context, id string, cause string) error
}
