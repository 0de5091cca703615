package events

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/aequatio-app/aequatio/internal/dbx"
	"github.com/aequatio-app/aequatio/internal/logging"
	"github.com/aequatio-app/aequatio/internal/server/config"
	"github.com/aequatio-app/aequatio/internal/server/models"
	outboxrepo "github.com/aequatio-app/aequatio/internal/server/repositories/outbox"
	"github.com/aequatio-app/aequatio/internal/server/repositories/repomanager"
	amqp "github.com/rabbitmq/amqp091-go"
)

// -------- test fakes --------

type published struct {
	routingKey string
	headers    amqp.Table
	body       []byte
}

type fakePublisher struct {
	failKeys map[string]error
	sent     []published
	closed   bool
}

func (f *fakePublisher) Publish(ctx context.Context, routingKey string, headers amqp.Table, body []byte) error {
	if err := f.failKeys[routingKey]; err != nil {
		return err
	}
	f.sent = append(f.sent, published{routingKey: routingKey, headers: headers, body: body})
	return nil
}
func (f *fakePublisher) Close() error {
	f.closed = true
	return nil
}

type fakeOutboxRepo struct {
	pending  []*models.OutboxEvent
	fetchErr error

	publishedIDs []string
	markErr      error

	failures map[string]string
}

func (f *fakeOutboxRepo) Add(ctx context.Context, e *models.OutboxEvent) error { return nil }
func (f *fakeOutboxRepo) FetchUnpublished(ctx context.Context, limit int) ([]*models.OutboxEvent, error) {
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	if limit < len(f.pending) {
		return f.pending[:limit], nil
	}
	return f.pending, nil
}
func (f *fakeOutboxRepo) MarkPublished(ctx context.Context, id string) error {
	if f.markErr != nil {
		return f.markErr
	}
	f.publishedIDs = append(f.publishedIDs, id)
	return nil
}
func (f *fakeOutboxRepo) RecordFailure(ctx context.Context, id string, cause string) error {
	if f.failures == nil {
		f.failures = map[string]string{}
	}
	f.failures[id] = cause
	return nil
}

type fakeRM struct {
	repomanager.RepositoryManager
	o *fakeOutboxRepo
}

func (m *fakeRM) Outbox(db dbx.DBTX) outboxrepo.Repository { return m.o }

// -------- helpers --------

func newDispatcher(t *testing.T, pub Publisher, repo *fakeOutboxRepo) (*Dispatcher, *sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	logger := logging.NewSlogLogger(slog.New(slog.NewJSONHandler(io.Discard, nil)))
	cfg := &config.Config{OutboxPollInterval: 10 * time.Millisecond, OutboxBatchSize: 50}
	return NewDispatcher(db, &fakeRM{o: repo}, pub, logger, cfg), db, mock
}

func event(id, aggregateType, eventType string) *models.OutboxEvent {
	return &models.OutboxEvent{
		ID:            id,
		AggregateType: aggregateType,
		AggregateID:   "a1",
		EventType:     eventType,
		EventVersion:  1,
		Payload:       []byte(`{"user_id":"a1"}`),
		OccurredAt:    time.Now().UTC(),
	}
}

// -------- tests --------

func TestDispatchBatch_PublishesAndMarks(t *testing.T) {
	repo := &fakeOutboxRepo{pending: []*models.OutboxEvent{
		event("e1", "User", "user.registered"),
		event("e2", "Expense", "expense.created"),
	}}
	pub := &fakePublisher{}
	d, db, mock := newDispatcher(t, pub, repo)
	defer db.Close()
	mock.ExpectBegin()
	mock.ExpectCommit()

	n, err := d.dispatchBatch(context.Background())
	if err != nil {
		t.Fatalf("dispatchBatch error: %v", err)
	}
	if n != 2 || len(repo.publishedIDs) != 2 {
		t.Fatalf("want 2 published, got n=%d marked=%v", n, repo.publishedIDs)
	}
	if pub.sent[0].routingKey != "User.user.registered" {
		t.Fatalf("unexpected routing key %q", pub.sent[0].routingKey)
	}
	h := pub.sent[0].headers
	if h["event_id"] != "e1" || h["aggregate_type"] != "User" || h["event_version"] != "1" {
		t.Fatalf("unexpected headers: %v", h)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("sql expectations: %v", err)
	}
}

func TestDispatchBatch_EmptyBatch(t *testing.T) {
	repo := &fakeOutboxRepo{}
	d, db, mock := newDispatcher(t, &fakePublisher{}, repo)
	defer db.Close()
	mock.ExpectBegin()
	mock.ExpectCommit()

	n, err := d.dispatchBatch(context.Background())
	if err != nil || n != 0 {
		t.Fatalf("empty batch: n=%d err=%v", n, err)
	}
}

func TestDispatchBatch_FailureIsRecordedAndSkipped(t *testing.T) {
	repo := &fakeOutboxRepo{pending: []*models.OutboxEvent{
		event("e1", "User", "user.registered"),
		event("e2", "Expense", "expense.created"),
	}}
	pub := &fakePublisher{failKeys: map[string]error{
		"User.user.registered": errors.New("broker unreachable"),
	}}
	d, db, mock := newDispatcher(t, pub, repo)
	defer db.Close()
	mock.ExpectBegin()
	mock.ExpectCommit()

	n, err := d.dispatchBatch(context.Background())
	if err != nil {
		t.Fatalf("dispatchBatch error: %v", err)
	}
	if n != 1 {
		t.Fatalf("want 1 published, got %d", n)
	}
	if repo.failures["e1"] != "broker unreachable" {
		t.Fatalf("failure not recorded: %v", repo.failures)
	}
	if len(repo.publishedIDs) != 1 || repo.publishedIDs[0] != "e2" {
		t.Fatalf("unexpected marked events: %v", repo.publishedIDs)
	}
}

func TestDispatchBatch_FetchErrRollsBack(t *testing.T) {
	repo := &fakeOutboxRepo{fetchErr: errors.New("boom")}
	d, db, mock := newDispatcher(t, &fakePublisher{}, repo)
	defer db.Close()
	mock.ExpectBegin()
	mock.ExpectRollback()

	if _, err := d.dispatchBatch(context.Background()); err == nil {
		t.Fatalf("expected error")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("sql expectations: %v", err)
	}
}

func TestRun_StopsOnCancelAndClosesPublisher(t *testing.T) {
	repo := &fakeOutboxRepo{pending: []*models.OutboxEvent{event("e1", "User", "user.registered")}}
	pub := &fakePublisher{}
	d, db, mock := newDispatcher(t, pub, repo)
	defer db.Close()
	mock.MatchExpectationsInOrder(false)
	for i := 0; i < 100; i++ {
		mock.ExpectBegin()
		mock.ExpectCommit()
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		d.Run(ctx)
		close(done)
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("dispatcher did not stop")
	}
	if !pub.closed {
		t.Fatal("publisher was not closed")
	}
}
