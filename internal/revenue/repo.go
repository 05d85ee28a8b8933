package revenue

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/angelmondragon/marketplace-backend/pkg/db"
	"github.com/angelmondragon/marketplace-backend/pkg/db/models"
)

const totalsSelect = "COALESCE(SUM(total_amount), 0) AS sales, COALESCE(SUM(charge), 0) AS charge, COUNT(*) AS orders"

type repository struct {
	db *gorm.DB
}

// NewRepository builds the aggregate repository over the orders table.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

type totalsRow struct {
	Sales  decimal.Decimal
	Charge decimal.Decimal
	Orders int64
}

type bucketRow struct {
	Bucket int
	Sales  decimal.Decimal
	Orders int64
}

type dateRow struct {
	Date  string
	Sales decimal.Decimal
}

type sellerRow struct {
	SellerID uuid.UUID
	Sales    decimal.Decimal
	Charge   decimal.Decimal
	Orders   int64
}

func (r *repository) base(ctx context.Context, sellerID *uuid.UUID) *gorm.DB {
	tx := r.db.WithContext(ctx).Model(&models.Order{}).Where("is_deleted = ?", false)
	if sellerID != nil {
		tx = tx.Where("seller_id = ?", *sellerID)
	}
	return tx
}

func (r *repository) TotalsCreatedBetween(ctx context.Context, from, to time.Time, sellerID *uuid.UUID) (Totals, error) {
	var row totalsRow
	err := r.base(ctx, sellerID).
		Select(totalsSelect).
		Where("created_at >= ? AND created_at < ?", from, to).
		Scan(&row).Error
	return Totals(row), err
}

func (r *repository) TotalsForDate(ctx context.Context, sellerID uuid.UUID, date string) (Totals, error) {
	var row totalsRow
	err := r.base(ctx, &sellerID).
		Select(totalsSelect).
		Where("date = ?", date).
		Scan(&row).Error
	return Totals(row), err
}

func (r *repository) Totals(ctx context.Context, sellerID *uuid.UUID) (Totals, error) {
	var row totalsRow
	err := r.base(ctx, sellerID).Select(totalsSelect).Scan(&row).Error
	return Totals(row), err
}

func (r *repository) MonthBuckets(ctx context.Context, from, to time.Time, sellerID *uuid.UUID) ([]Bucket, error) {
	return r.buckets(ctx, db.MonthExpr(r.db, "created_at"), from, to, sellerID)
}

// SalesForDates sums total_amount per stored calendar date. Dates with no
// orders are absent from the result.
func (r *repository) SalesForDates(ctx context.Context, dates []string, sellerID *uuid.UUID) (map[string]decimal.Decimal, error) {
	var rows []dateRow
	err := r.base(ctx, sellerID).
		Select("date, COALESCE(SUM(total_amount), 0) AS sales").
		Where("date IN ?", dates).
		Group("date").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make(map[string]decimal.Decimal, len(rows))
	for _, row := range rows {
		out[row.Date] = row.Sales
	}
	return out, nil
}

func (r *repository) buckets(ctx context.Context, expr string, from, to time.Time, sellerID *uuid.UUID) ([]Bucket, error) {
	var rows []bucketRow
	err := r.base(ctx, sellerID).
		Select(expr+" AS bucket, COALESCE(SUM(total_amount), 0) AS sales, COUNT(*) AS orders").
		Where("created_at >= ? AND created_at < ?", from, to).
		Group(expr).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make([]Bucket, 0, len(rows))
	for _, row := range rows {
		out = append(out, Bucket{Key: row.Bucket, Sales: row.Sales, Orders: row.Orders})
	}
	return out, nil
}

func (r *repository) TotalsBySeller(ctx context.Context, from, to time.Time) ([]SellerTotals, error) {
	var rows []sellerRow
	err := r.base(ctx, nil).
		Select("seller_id, "+totalsSelect).
		Where("created_at >= ? AND created_at < ?", from, to).
		Group("seller_id").
		Order("seller_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make([]SellerTotals, 0, len(rows))
	for _, row := range rows {
		out = append(out, SellerTotals{
			SellerID: row.SellerID,
			Totals:   Totals{Sales: row.Sales, Charge: row.Charge, Orders: row.Orders},
		})
	}
	return out, nil
}
