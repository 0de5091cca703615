package outbox

import (
	"context"
	"fmt"

	"github.com/aequatio-app/aequatio/internal/dbx"
	"github.com/aequatio-app/aequatio/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Add(ctx context.Context, event *models.OutboxEvent) error {

	query :=
		`INSERT INTO events_outbox (id, aggregate_type, aggregate_id, event_type, event_version, payload, occurred_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 `

	_, err := r.db.ExecContext(ctx, query,
		event.ID, event.AggregateType, event.AggregateID, event.EventType,
		event.EventVersion, event.Payload, event.OccurredAt)

	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	return nil
}

func (r *PostgresRepository) FetchUnpublished(ctx context.Context, limit int) ([]*models.OutboxEvent, error) {

	query :=
		`SELECT id, aggregate_type, aggregate_id, event_type, event_version, payload, occurred_at, attempt_count FROM events_outbox
		 WHERE published_at IS NULL
		 ORDER BY created_at
		 LIMIT $1
		 FOR UPDATE SKIP LOCKED
		 `

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	events := []*models.OutboxEvent{}
	for rows.Next() {
		event := &models.OutboxEvent{}
		err := rows.Scan(&event.ID, &event.AggregateType, &event.AggregateID,
			&event.EventType, &event.EventVersion, &event.Payload,
			&event.OccurredAt, &event.AttemptCount)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return events, nil
}

func (r *PostgresRepository) MarkPublished(ctx context.Context, id string) error {

	query :=
		`UPDATE events_outbox SET published_at = now(), attempt_count = attempt_count + 1, last_error = NULL
		 WHERE id = $1
		 `

	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	return nil
}

func (r *PostgresRepository) RecordFailure(ctx context.Context, id string, cause string) error {

	query :=
		`UPDATE events_outbox SET attempt_count = attempt_count + 1, last_error = $2
		 WHERE id = $1
		 `

	if _, err := r.db.ExecContext(ctx, query, id, cause); err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	return nil
}
