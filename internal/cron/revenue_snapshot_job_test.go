package cron

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/marketplace-backend/internal/revenue"
	"github.com/angelmondragon/marketplace-backend/internal/revenue/snapshot"
	"github.com/angelmondragon/marketplace-backend/pkg/logger"
)

type fakeSource struct {
	day  time.Time
	rows []revenue.SellerSnapshot
	err  error
}

func (f *fakeSource) SnapshotForDate(ctx context.Context, date time.Time) ([]revenue.SellerSnapshot, error) {
	f.day = date
	return f.rows, f.err
}

type fakeSink struct {
	name   string
	err    error
	writes [][]revenue.SellerSnapshot
}

func (f *fakeSink) Name() string { return f.name }

func (f *fakeSink) Write(ctx context.Context, rows []revenue.SellerSnapshot) error {
	f.writes = append(f.writes, rows)
	return f.err
}

func snapshotJob(t *testing.T, source snapshotSource, sinks ...snapshot.Sink) *revenueSnapshotJob {
	t.Helper()
	job, err := NewRevenueSnapshotJob(RevenueSnapshotJobParams{Logger: logger.Nop(), Source: source, Sinks: sinks})
	require.NoError(t, err)
	typed := job.(*revenueSnapshotJob)
	typed.now = func() time.Time { return time.Date(2024, 3, 6, 1, 30, 0, 0, time.UTC) }
	return typed
}

func TestRevenueSnapshotJobWritesYesterdayToEverySink(t *testing.T) {
	rows := []revenue.SellerSnapshot{{SellerID: uuid.New(), Sales: decimal.NewFromInt(10), Orders: 1}}
	source := &fakeSource{rows: rows}
	bq := &fakeSink{name: "bigquery"}
	ch := &fakeSink{name: "clickhouse"}

	require.NoError(t, snapshotJob(t, source, bq, ch).Run(context.Background()))
	assert.Equal(t, time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC), source.day)
	require.Len(t, bq.writes, 1)
	require.Len(t, ch.writes, 1)
	assert.Equal(t, rows, bq.writes[0])
}

func TestRevenueSnapshotJobCombinesSinkErrors(t *testing.T) {
	source := &fakeSource{rows: []revenue.SellerSnapshot{{SellerID: uuid.New()}}}
	bq := &fakeSink{name: "bigquery", err: errors.New("quota")}
	ch := &fakeSink{name: "clickhouse", err: errors.New("timeout")}

	err := snapshotJob(t, source, bq, ch).Run(context.Background())
	require.Error(t, err)
	assert.ErrorContains(t, err, "sink bigquery: quota")
	assert.ErrorContains(t, err, "sink clickhouse: timeout")
	assert.Len(t, ch.writes, 1)
}

func TestRevenueSnapshotJobSkipsEmptyDays(t *testing.T) {
	sink := &fakeSink{name: "bigquery"}
	require.NoError(t, snapshotJob(t, &fakeSource{}, sink).Run(context.Background()))
	assert.Empty(t, sink.writes)

	err := snapshotJob(t, &fakeSource{err: errors.New("db down")}, sink).Run(context.Background())
	assert.ErrorContains(t, err, "db down")
}

func TestNewRevenueSnapshotJobValidates(t *testing.T) {
	_, err := NewRevenueSnapshotJob(RevenueSnapshotJobParams{Logger: logger.Nop(), Source: &fakeSource{}})
	assert.Error(t, err)
	_, err = NewRevenueSnapshotJob(RevenueSnapshotJobParams{Logger: logger.Nop(), Sinks: []snapshot.Sink{&fakeSink{}}})
	assert.Error(t, err)
}
