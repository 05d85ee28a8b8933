package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"gorm.io/gorm"

	"github.com/angelmondragon/marketplace-backend/pkg/config"
	"github.com/angelmondragon/marketplace-backend/pkg/db/models"
	"github.com/angelmondragon/marketplace-backend/pkg/enums"
	"github.com/angelmondragon/marketplace-backend/pkg/logger"
	"github.com/angelmondragon/marketplace-backend/pkg/metrics"
	"github.com/angelmondragon/marketplace-backend/pkg/outbox"
	"github.com/angelmondragon/marketplace-backend/pkg/outbox/payloads"
	"github.com/angelmondragon/marketplace-backend/pkg/outbox/registry"
	"github.com/angelmondragon/marketplace-backend/pkg/rabbitmq"
)

func TestServiceProcessBatchContinuesAfterFailure(t *testing.T) {
	repo := &fakeRepo{
		events: []models.OutboxEvent{
			orderEvent(t, enums.EventOrderCreated, 0),
			orderEvent(t, enums.EventOrderStatusChanged, 0),
		},
	}
	tr := &fakeTransport{errs: []error{errors.New("transient"), nil}}
	service, reg := newTestService(t, repo, tr, resolvingRegistry(), &fakeDLQRepo{}, nil)

	processed, err := service.processBatch(context.Background())
	if err != nil {
		t.Fatalf("process batch returned error: %v", err)
	}
	if !processed {
		t.Fatalf("expected batch to report processed")
	}
	if len(repo.failed) != 1 || repo.failed[0] != repo.events[0].ID {
		t.Fatalf("unexpected failed rows: %v", repo.failed)
	}
	if len(repo.published) != 1 || repo.published[0] != repo.events[1].ID {
		t.Fatalf("unexpected published rows: %v", repo.published)
	}
	if got := seriesCount(t, reg, "marketplace_outbox_published_total"); got != 1 {
		t.Fatalf("expected one published series, got %d", got)
	}
	if got := seriesCount(t, reg, "marketplace_outbox_publish_failures_total"); got != 1 {
		t.Fatalf("expected one failure series, got %d", got)
	}
}

func TestServiceProcessBatchReportsIdle(t *testing.T) {
	service, _ := newTestService(t, &fakeRepo{}, &fakeTransport{}, resolvingRegistry(), &fakeDLQRepo{}, nil)
	processed, err := service.processBatch(context.Background())
	if err != nil {
		t.Fatalf("process batch returned error: %v", err)
	}
	if processed {
		t.Fatalf("empty batch should not report processed")
	}
}

func TestServiceProcessBatchWritesDLQOnNonRetryable(t *testing.T) {
	event := orderEvent(t, enums.EventOrderCreated, 0)
	repo := &fakeRepo{events: []models.OutboxEvent{event}}
	eventRegistry := &fakeRegistry{err: registry.NewNonRetryableError(errors.New("invalid payload"))}
	dlqRepo := &fakeDLQRepo{}
	service, _ := newTestService(t, repo, &fakeTransport{}, eventRegistry, dlqRepo, nil)

	if _, err := service.processBatch(context.Background()); err != nil {
		t.Fatalf("process batch returned error: %v", err)
	}
	if got := len(dlqRepo.entries); got != 1 {
		t.Fatalf("expected dlq entry, got %d", got)
	}
	entry := dlqRepo.entries[0]
	if entry.EventID != event.ID {
		t.Fatalf("dlq event_id mismatch: %s", entry.EventID)
	}
	if !bytes.Equal(entry.Payload, event.Payload) {
		t.Fatalf("dlq payload mismatch")
	}
	if entry.ErrorReason != enums.OutboxDLQReasonNonRetryable {
		t.Fatalf("unexpected error reason: %s", entry.ErrorReason)
	}
	if len(repo.terminal) != 1 {
		t.Fatalf("expected row marked terminal")
	}
}

func TestServiceProcessBatchSkipsExistingDLQEntry(t *testing.T) {
	event := orderEvent(t, enums.EventOrderCreated, 0)
	repo := &fakeRepo{events: []models.OutboxEvent{event}}
	eventRegistry := &fakeRegistry{err: registry.NewNonRetryableError(errors.New("invalid payload"))}
	dlqRepo := &fakeDLQRepo{entries: []models.OutboxDLQ{{EventID: event.ID, ErrorReason: enums.OutboxDLQReasonNonRetryable}}}
	service, reg := newTestService(t, repo, &fakeTransport{}, eventRegistry, dlqRepo, nil)

	if _, err := service.processBatch(context.Background()); err != nil {
		t.Fatalf("process batch returned error: %v", err)
	}
	if got := len(dlqRepo.entries); got != 1 {
		t.Fatalf("expected existing dlq entry only, got %d", got)
	}
	if len(repo.terminal) != 1 || repo.terminal[0] != event.ID {
		t.Fatalf("expected row marked terminal")
	}
	if got := seriesCount(t, reg, "marketplace_outbox_dead_letter_total"); got != 0 {
		t.Fatalf("expected no new dead letter series, got %d", got)
	}
}

func TestServiceProcessBatchWritesDLQOnMaxAttempts(t *testing.T) {
	event := orderEvent(t, enums.EventOrderDeleted, 1)
	repo := &fakeRepo{events: []models.OutboxEvent{event}}
	tr := &fakeTransport{errs: []error{errors.New("transient")}}
	dlqRepo := &fakeDLQRepo{}
	service, reg := newTestService(t, repo, tr, resolvingRegistry(), dlqRepo, &config.OutboxConfig{
		BatchSize:      1,
		PollIntervalMS: 100,
		MaxAttempts:    2,
	})

	if _, err := service.processBatch(context.Background()); err != nil {
		t.Fatalf("process batch returned error: %v", err)
	}
	if got := len(dlqRepo.entries); got != 1 {
		t.Fatalf("expected dlq entry, got %d", got)
	}
	if dlqRepo.entries[0].ErrorReason != enums.OutboxDLQReasonMaxAttempts {
		t.Fatalf("unexpected error reason: %s", dlqRepo.entries[0].ErrorReason)
	}
	if len(repo.failed) != 0 {
		t.Fatalf("terminal rows should not be marked failed")
	}
	if got := seriesCount(t, reg, "marketplace_outbox_dead_letter_total"); got != 1 {
		t.Fatalf("expected one dead letter series, got %d", got)
	}
}

func TestRabbitTransportUsesRoutingKey(t *testing.T) {
	event := orderEvent(t, enums.EventOrderCreated, 0)
	resolved, err := resolvingRegistry().Resolve(event)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	pub := &fakeAMQP{}
	if err := newRabbitTransport(pub).Publish(context.Background(), event, resolved); err != nil {
		t.Fatalf("publish: %v", err)
	}
	if pub.exchange != "marketplace.orders" || pub.routingKey != "orders.order_created" {
		t.Fatalf("unexpected destination %s/%s", pub.exchange, pub.routingKey)
	}
	if pub.msg.Type != string(enums.EventOrderCreated) || pub.msg.Headers["aggregate_id"] != event.AggregateID.String() {
		t.Fatalf("unexpected message %+v", pub.msg)
	}
}

func newTestService(t *testing.T, repo outboxRepository, tr transport, resolver registryResolver, dlq dlqRepository, outboxCfgOverride *config.OutboxConfig) (*Service, *prometheus.Registry) {
	t.Helper()
	outboxCfg := config.OutboxConfig{
		BatchSize:      2,
		PollIntervalMS: 100,
		MaxAttempts:    5,
	}
	if outboxCfgOverride != nil {
		outboxCfg = *outboxCfgOverride
	}
	reg := prometheus.NewRegistry()
	service, err := NewService(ServiceParams{
		Config:        &config.Config{Outbox: outboxCfg},
		Logger:        logger.New(logger.Options{ServiceName: "outbox-publisher-test", Output: io.Discard}),
		DB:            &fakeDB{},
		Transport:     tr,
		Repository:    repo,
		Registry:      resolver,
		DLQRepository: dlq,
		Metrics:       metrics.NewOutboxMetrics(reg),
	})
	if err != nil {
		t.Fatalf("failed to construct service: %v", err)
	}
	return service, reg
}

func resolvingRegistry() *registry.EventRegistry {
	reg, err := registry.NewEventRegistry("marketplace.orders")
	if err != nil {
		panic(err)
	}
	return reg
}

func orderEvent(tb testing.TB, eventType enums.OutboxEventType, attempts int) models.OutboxEvent {
	tb.Helper()
	data, err := json.Marshal(payloads.OrderCreatedEvent{OrderID: uuid.New()})
	if err != nil {
		tb.Fatalf("marshal payload: %v", err)
	}
	env := outbox.PayloadEnvelope{
		Version:    1,
		EventID:    uuid.NewString(),
		OccurredAt: time.Now(),
		Data:       data,
	}
	payload, err := json.Marshal(env)
	if err != nil {
		tb.Fatalf("marshal envelope: %v", err)
	}
	return models.OutboxEvent{
		ID:            uuid.New(),
		EventType:     eventType,
		AggregateType: enums.AggregateOrder,
		AggregateID:   uuid.New(),
		Payload:       payload,
		AttemptCount:  attempts,
	}
}

func seriesCount(t *testing.T, reg *prometheus.Registry, name string) int {
	t.Helper()
	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	for _, family := range families {
		if family.GetName() == name {
			return len(family.GetMetric())
		}
	}
	return 0
}

type fakeRepo struct {
	events    []models.OutboxEvent
	published []uuid.UUID
	failed    []uuid.UUID
	terminal  []uuid.UUID
}

func (f *fakeRepo) FetchUnpublishedForPublish(*gorm.DB, int, int) ([]models.OutboxEvent, error) {
	return f.events, nil
}

func (f *fakeRepo) MarkPublishedTx(_ *gorm.DB, id uuid.UUID) error {
	f.published = append(f.published, id)
	return nil
}

func (f *fakeRepo) MarkFailedTx(_ *gorm.DB, id uuid.UUID, _ error) error {
	f.failed = append(f.failed, id)
	return nil
}

func (f *fakeRepo) MarkTerminalTx(_ *gorm.DB, id uuid.UUID, _ error, _ int) error {
	f.terminal = append(f.terminal, id)
	return nil
}

type fakeDB struct{}

func (f *fakeDB) Ping(context.Context) error { return nil }

func (f *fakeDB) WithTx(_ context.Context, fn func(*gorm.DB) error) error {
	return fn(nil)
}

type fakeTransport struct {
	errs []error
}

func (f *fakeTransport) Name() string { return "fake" }

func (f *fakeTransport) Ping(context.Context) error { return nil }

func (f *fakeTransport) Publish(context.Context, models.OutboxEvent, *registry.ResolvedEvent) error {
	if len(f.errs) == 0 {
		return nil
	}
	err := f.errs[0]
	f.errs = f.errs[1:]
	return err
}

type fakeRegistry struct {
	err error
}

func (f *fakeRegistry) Resolve(models.OutboxEvent) (*registry.ResolvedEvent, error) {
	return nil, f.err
}

type fakeDLQRepo struct {
	entries []models.OutboxDLQ
}

func (f *fakeDLQRepo) FindByEventIDTx(_ *gorm.DB, eventID uuid.UUID) (*models.OutboxDLQ, error) {
	for i := range f.entries {
		if f.entries[i].EventID == eventID {
			return &f.entries[i], nil
		}
	}
	return nil, nil
}

func (f *fakeDLQRepo) InsertTx(_ *gorm.DB, entry models.OutboxDLQ) error {
	f.entries = append(f.entries, entry)
	return nil
}

type fakeAMQP struct {
	exchange   string
	routingKey string
	msg        rabbitmq.Message
}

func (f *fakeAMQP) Ping(context.Context) error { return nil }

func (f *fakeAMQP) Publish(_ context.Context, exchange, routingKey string, msg rabbitmq.Message) error {
	f.exchange, f.routingKey, f.msg = exchange, routingKey, msg
	return nil
}
