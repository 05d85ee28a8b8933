package revenue

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Repository runs the order aggregates. A nil sellerID means platform wide.
// Soft-deleted orders never contribute.
type Repository interface {
	TotalsCreatedBetween(ctx context.Context, from, to time.Time, sellerID *uuid.UUID) (Totals, error)
	TotalsForDate(ctx context.Context, sellerID uuid.UUID, date string) (Totals, error)
	Totals(ctx context.Context, sellerID *uuid.UUID) (Totals, error)
	MonthBuckets(ctx context.Context, from, to time.Time, sellerID *uuid.UUID) ([]Bucket, error)
	SalesForDates(ctx context.Context, dates []string, sellerID *uuid.UUID) (map[string]decimal.Decimal, error)
	TotalsBySeller(ctx context.Context, from, to time.Time) ([]SellerTotals, error)
}

// Counter counts the live rows a seller owns in some collection.
type Counter interface {
	CountBySeller(ctx context.Context, sellerID uuid.UUID) (int64, error)
}

// CatalogCounter also counts the whole platform catalog.
type CatalogCounter interface {
	Counter
	CountAll(ctx context.Context) (int64, error)
}

// UserCounter counts active, non-deleted users.
type UserCounter interface {
	CountActive(ctx context.Context) (int64, error)
}
