package events

import (
	"context"
	"database/sql"
	"strconv"
	"time"

	"github.com/aequatio-app/aequatio/internal/dbx"
	"github.com/aequatio-app/aequatio/internal/logging"
	"github.com/aequatio-app/aequatio/internal/server/config"
	"github.com/aequatio-app/aequatio/internal/server/models"
	"github.com/aequatio-app/aequatio/internal/server/repositories/repomanager"
	amqp "github.com/rabbitmq/amqp091-go"
)

// Dispatcher polls events_outbox and publishes pending events. Rows are
// locked with FOR UPDATE SKIP LOCKED, so several instances can run at once
// without double publishing.
type Dispatcher struct {
	db           *sql.DB
	repomanager  repomanager.RepositoryManager
	publisher    Publisher
	logger       logging.Logger
	pollInterval time.Duration
	batchSize    int
}

func NewDispatcher(db *sql.DB, m repomanager.RepositoryManager, p Publisher, l logging.Logger, cfg *config.Config) *Dispatcher {
	return &Dispatcher{
		db:           db,
		repomanager:  m,
		publisher:    p,
		logger:       l.With("module", "outbox_dispatcher"),
		pollInterval: cfg.OutboxPollInterval,
		batchSize:    cfg.OutboxBatchSize,
	}
}

// Run polls until ctx is cancelled, then closes the publisher.
func (d *Dispatcher) Run(ctx context.Context) {
	d.logger.Info(ctx, "Starting outbox dispatcher...")

	ticker := time.NewTicker(d.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			d.logger.Info(ctx, "Stopping outbox dispatcher...")
			if err := d.publisher.Close(); err != nil {
				d.logger.Error(ctx, "error closing publisher", "error", err.Error())
			}
			return
		case <-ticker.C:
			if _, err := d.dispatchBatch(ctx); err != nil {
				d.logger.Error(ctx, "outbox dispatch error", "error", err.Error())
			}
		}
	}
}

// dispatchBatch fetches and publishes one batch inside a single transaction.
// A publish failure is recorded on the event and does not stop the batch, so
// the event stays unpublished and is retried on a later poll.
func (d *Dispatcher) dispatchBatch(ctx context.Context) (int, error) {
	published := 0

	err := dbx.WithTx(ctx, d.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := d.repomanager.Outbox(tx)

		batch, err := repo.FetchUnpublished(ctx, d.batchSize)
		if err != nil {
			return err
		}

		for _, evt := range batch {
			if err := d.publisher.Publish(ctx, routingKey(evt), eventHeaders(evt), evt.Payload); err != nil {
				d.logger.Error(ctx, "publish failed for outbox event", "event_id", evt.ID, "error", err.Error())
				if err := repo.RecordFailure(ctx, evt.ID, err.Error()); err != nil {
					return err
				}
				continue
			}
			if err := repo.MarkPublished(ctx, evt.ID); err != nil {
				return err
			}
			d.logger.Info(ctx, "published outbox event", "event_id", evt.ID, "routing_key", routingKey(evt))
			published++
		}
		return nil
	})

	if err != nil {
		return 0, err
	}
	return published, nil
}

func routingKey(evt *models.OutboxEvent) string {
	return evt.AggregateType + "." + evt.EventType
}

func eventHeaders(evt *models.OutboxEvent) amqp.Table {
	return amqp.Table{
		"event_id":       evt.ID,
		"event_type":     evt.EventType,
		"aggregate_type": evt.AggregateType,
		"aggregate_id":   evt.AggregateID,
		"event_version":  strconv.Itoa(evt.EventVersion),
	}
}
