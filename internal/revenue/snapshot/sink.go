// Package snapshot ships daily per-seller revenue rows to the analytics
// warehouse. BigQuery and ClickHouse are supported.
package snapshot

import (
	"context"
	"fmt"
	"math/big"
	"strings"
	"time"

	"cloud.google.com/go/civil"

	"github.com/angelmondragon/marketplace-backend/internal/revenue"
	"github.com/angelmondragon/marketplace-backend/pkg/config"
)

// Sink persists a batch of snapshots. Writing the same day twice must not
// double count in the warehouse.
type Sink interface {
	Name() string
	Write(ctx context.Context, rows []revenue.SellerSnapshot) error
}

type bigQueryInserter interface {
	RevenueTable() string
	InsertRows(ctx context.Context, table string, rows []any, insertIDs []string) error
}

type clickHouseInserter interface {
	InsertBatch(ctx context.Context, columns []string, rows [][]any) error
}

// Row mirrors the seller_daily_revenue BigQuery schema.
type Row struct {
	SellerID   string     `bigquery:"seller_id"`
	Day        civil.Date `bigquery:"day"`
	Sales      *big.Rat   `bigquery:"sales"`
	Charge     *big.Rat   `bigquery:"charge"`
	Revenue    *big.Rat   `bigquery:"revenue"`
	Orders     int64      `bigquery:"orders"`
	CapturedAt time.Time  `bigquery:"captured_at"`
}

// InsertID keys a snapshot so replays of the same seller-day are dropped.
func InsertID(row revenue.SellerSnapshot) string {
	return row.SellerID.String() + ":" + row.Date.UTC().Format("2006-01-02")
}

type bigQuerySink struct {
	client bigQueryInserter
	now    func() time.Time
}

// NewBigQuerySink writes rows with streaming inserts.
func NewBigQuerySink(client bigQueryInserter) Sink {
	return &bigQuerySink{client: client, now: time.Now}
}

func (s *bigQuerySink) Name() string { return config.SinkBigQuery }

func (s *bigQuerySink) Write(ctx context.Context, rows []revenue.SellerSnapshot) error {
	if len(rows) == 0 {
		return nil
	}
	captured := s.now().UTC()
	out := make([]any, 0, len(rows))
	ids := make([]string, 0, len(rows))
	for _, row := range rows {
		out = append(out, &Row{
			SellerID:   row.SellerID.String(),
			Day:        civil.DateOf(row.Date.UTC()),
			Sales:      row.Sales.Rat(),
			Charge:     row.Charge.Rat(),
			Revenue:    row.Revenue.Rat(),
			Orders:     row.Orders,
			CapturedAt: captured,
		})
		ids = append(ids, InsertID(row))
	}
	if err := s.client.InsertRows(ctx, s.client.RevenueTable(), out, ids); err != nil {
		return fmt.Errorf("bigquery insert: %w", err)
	}
	return nil
}

var clickHouseColumns = []string{"seller_id", "day", "sales", "charge", "revenue", "orders", "captured_at"}

type clickHouseSink struct {
	client clickHouseInserter
	now    func() time.Time
}

// NewClickHouseSink writes rows in one batch. The target table is expected to
// be a ReplacingMergeTree keyed by (seller_id, day).
func NewClickHouseSink(client clickHouseInserter) Sink {
	return &clickHouseSink{client: client, now: time.Now}
}

func (s *clickHouseSink) Name() string { return config.SinkClickHouse }

func (s *clickHouseSink) Write(ctx context.Context, rows []revenue.SellerSnapshot) error {
	if len(rows) == 0 {
		return nil
	}
	captured := s.now().UTC()
	batch := make([][]any, 0, len(rows))
	for _, row := range rows {
		batch = append(batch, []any{
			row.SellerID.String(),
			row.Date.UTC(),
			row.Sales,
			row.Charge,
			row.Revenue,
			uint64(row.Orders),
			captured,
		})
	}
	if err := s.client.InsertBatch(ctx, clickHouseColumns, batch); err != nil {
		return fmt.Errorf("clickhouse insert: %w", err)
	}
	return nil
}

// SinkName normalizes a configured sink name.
func SinkName(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}
