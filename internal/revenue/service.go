package revenue

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/marketplace-backend/internal/orders"
	pkgerrors "github.com/angelmondragon/marketplace-backend/pkg/errors"
)

const (
	dayLayout = "2006-01-02"
	minYear   = 2000
	maxYear   = 2100
)

// Service computes the dashboard aggregates shared by every surface.
type Service interface {
	CountOrdersForDate(ctx context.Context, date time.Time, sellerID *uuid.UUID) (OrderCount, error)
	TotalSalesForDate(ctx context.Context, date time.Time, sellerID *uuid.UUID) (SalesTotal, error)
	SellerDaySummary(ctx context.Context, sellerID uuid.UUID, date string) (DaySummary, error)
	MonthlyRevenue(ctx context.Context, year int, sellerID *uuid.UUID) ([]MonthlyRevenue, error)
	MonthlyOrderCounts(ctx context.Context, year int, sellerID *uuid.UUID) ([]MonthlyOrders, error)
	LastSevenDaysRevenue(ctx context.Context, sellerID *uuid.UUID, now time.Time) ([]DayRevenue, error)
	DashboardCounts(ctx context.Context, sellerID uuid.UUID) (DashboardCounts, error)
	PlatformCounts(ctx context.Context) (PlatformCounts, error)
	SnapshotForDate(ctx context.Context, date time.Time) ([]SellerSnapshot, error)
}

// Counters groups the collaborators behind the dashboard counts.
type Counters struct {
	Products CatalogCounter
	Coupons  Counter
	Tickets  Counter
	Users    UserCounter
}

type service struct {
	repo     Repository
	counters Counters
}

// NewService builds the revenue service.
func NewService(repo Repository, counters Counters) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("revenue repository required")
	}
	if counters.Products == nil || counters.Coupons == nil || counters.Tickets == nil || counters.Users == nil {
		return nil, fmt.Errorf("dashboard counters required")
	}
	return &service{repo: repo, counters: counters}, nil
}

// DayStart truncates t to midnight UTC.
func DayStart(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

func (s *service) CountOrdersForDate(ctx context.Context, date time.Time, sellerID *uuid.UUID) (OrderCount, error) {
	from := DayStart(date)
	totals, err := s.repo.TotalsCreatedBetween(ctx, from, from.AddDate(0, 0, 1), sellerID)
	if err != nil {
		return OrderCount{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count orders for date")
	}
	return OrderCount{Date: from.Format(dayLayout), Orders: totals.Orders}, nil
}

func (s *service) TotalSalesForDate(ctx context.Context, date time.Time, sellerID *uuid.UUID) (SalesTotal, error) {
	from := DayStart(date)
	totals, err := s.repo.TotalsCreatedBetween(ctx, from, from.AddDate(0, 0, 1), sellerID)
	if err != nil {
		return SalesTotal{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "total sales for date")
	}
	return SalesTotal{Date: from.Format(dayLayout), TotalSales: totals.Sales}, nil
}

// SellerDaySummary matches the stored business-day string, not created_at.
func (s *service) SellerDaySummary(ctx context.Context, sellerID uuid.UUID, date string) (DaySummary, error) {
	if sellerID == uuid.Nil {
		return DaySummary{}, pkgerrors.New(pkgerrors.CodeValidation, "seller id required")
	}
	normalized, err := orders.NormalizeDate(date)
	if err != nil {
		return DaySummary{}, err
	}
	totals, err := s.repo.TotalsForDate(ctx, sellerID, normalized)
	if err != nil {
		return DaySummary{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "seller day summary")
	}
	return DaySummary{
		Sales:   totals.Sales,
		Charge:  totals.Charge,
		Orders:  totals.Orders,
		Revenue: totals.Sales.Sub(totals.Charge),
	}, nil
}

func (s *service) MonthlyRevenue(ctx context.Context, year int, sellerID *uuid.UUID) ([]MonthlyRevenue, error) {
	buckets, err := s.monthBuckets(ctx, year, sellerID)
	if err != nil {
		return nil, err
	}
	out := make([]MonthlyRevenue, 12)
	for i := range out {
		out[i] = MonthlyRevenue{Month: time.Month(i + 1).String(), TotalRevenue: decimal.Zero}
	}
	for _, b := range buckets {
		out[b.Key-1].TotalRevenue = out[b.Key-1].TotalRevenue.Add(b.Sales)
	}
	return out, nil
}

func (s *service) MonthlyOrderCounts(ctx context.Context, year int, sellerID *uuid.UUID) ([]MonthlyOrders, error) {
	buckets, err := s.monthBuckets(ctx, year, sellerID)
	if err != nil {
		return nil, err
	}
	out := make([]MonthlyOrders, 12)
	for i := range out {
		out[i] = MonthlyOrders{Month: time.Month(i + 1).String()}
	}
	for _, b := range buckets {
		out[b.Key-1].TotalOrders += b.Orders
	}
	return out, nil
}

func (s *service) monthBuckets(ctx context.Context, year int, sellerID *uuid.UUID) ([]Bucket, error) {
	if year < minYear || year > maxYear {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "year out of range").
			WithDetails(map[string]int{"min": minYear, "max": maxYear})
	}
	from := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	buckets, err := s.repo.MonthBuckets(ctx, from, from.AddDate(1, 0, 0), sellerID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "monthly aggregate")
	}
	valid := buckets[:0]
	for _, b := range buckets {
		if b.Key >= 1 && b.Key <= 12 {
			valid = append(valid, b)
		}
	}
	return valid, nil
}

// LastSevenDaysRevenue reports today and the six days before it, matching
// orders on the stored date column rather than created_at.
func (s *service) LastSevenDaysRevenue(ctx context.Context, sellerID *uuid.UUID, now time.Time) ([]DayRevenue, error) {
	today := DayStart(now)
	from := today.AddDate(0, 0, -6)

	days := make([]time.Time, 0, 7)
	stored := make([]string, 0, 7)
	for day := from; !day.After(today); day = day.AddDate(0, 0, 1) {
		days = append(days, day)
		stored = append(stored, orders.FormatDate(day))
	}

	sales, err := s.repo.SalesForDates(ctx, stored, sellerID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "last seven days revenue")
	}

	out := make([]DayRevenue, 0, len(days))
	for i, day := range days {
		total, ok := sales[stored[i]]
		if !ok {
			total = decimal.Zero
		}
		out = append(out, DayRevenue{
			Day:          WeekdayLabel(day.Weekday()),
			Date:         day.Format(dayLayout),
			TotalRevenue: total,
		})
	}
	return out, nil
}

func (s *service) DashboardCounts(ctx context.Context, sellerID uuid.UUID) (DashboardCounts, error) {
	if sellerID == uuid.Nil {
		return DashboardCounts{}, pkgerrors.New(pkgerrors.CodeValidation, "seller id required")
	}
	totals, err := s.repo.Totals(ctx, &sellerID)
	if err != nil {
		return DashboardCounts{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "seller totals")
	}
	products, err := s.counters.Products.CountBySeller(ctx, sellerID)
	if err != nil {
		return DashboardCounts{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count products")
	}
	coupons, err := s.counters.Coupons.CountBySeller(ctx, sellerID)
	if err != nil {
		return DashboardCounts{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count coupons")
	}
	tickets, err := s.counters.Tickets.CountBySeller(ctx, sellerID)
	if err != nil {
		return DashboardCounts{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count tickets")
	}
	return DashboardCounts{
		Revenue:  totals.Sales.Sub(totals.Charge),
		Orders:   totals.Orders,
		Products: products,
		Coupons:  coupons,
		Tickets:  tickets,
	}, nil
}

// PlatformCounts is DashboardCounts across every seller, with active users in
// place of the seller-owned collections.
func (s *service) PlatformCounts(ctx context.Context) (PlatformCounts, error) {
	totals, err := s.repo.Totals(ctx, nil)
	if err != nil {
		return PlatformCounts{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "platform totals")
	}
	products, err := s.counters.Products.CountAll(ctx)
	if err != nil {
		return PlatformCounts{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count products")
	}
	users, err := s.counters.Users.CountActive(ctx)
	if err != nil {
		return PlatformCounts{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count users")
	}
	return PlatformCounts{
		Revenue:  totals.Sales.Sub(totals.Charge),
		Orders:   totals.Orders,
		Products: products,
		Users:    users,
	}, nil
}

func (s *service) SnapshotForDate(ctx context.Context, date time.Time) ([]SellerSnapshot, error) {
	from := DayStart(date)
	rows, err := s.repo.TotalsBySeller(ctx, from, from.AddDate(0, 0, 1))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "per seller totals")
	}
	out := make([]SellerSnapshot, 0, len(rows))
	for _, row := range rows {
		out = append(out, SellerSnapshot{
			SellerID: row.SellerID,
			Date:     from,
			Sales:    row.Sales,
			Charge:   row.Charge,
			Revenue:  row.Sales.Sub(row.Charge),
			Orders:   row.Orders,
		})
	}
	return out, nil
}
