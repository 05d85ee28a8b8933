package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/olekukonko/tablewriter"

	"github.com/angelmondragon/marketplace-backend/internal/coupons"
	"github.com/angelmondragon/marketplace-backend/internal/products"
	"github.com/angelmondragon/marketplace-backend/internal/revenue"
	"github.com/angelmondragon/marketplace-backend/internal/tickets"
	"github.com/angelmondragon/marketplace-backend/internal/users"
	"github.com/angelmondragon/marketplace-backend/pkg/config"
	"github.com/angelmondragon/marketplace-backend/pkg/db"
	"github.com/angelmondragon/marketplace-backend/pkg/logger"
)

func main() {
	ctx := context.Background()
	logg := logger.New(logger.Options{ServiceName: "revenue-report"})

	_ = godotenv.Load()

	year := flag.Int("year", time.Now().UTC().Year(), "calendar year to report")
	seller := flag.String("seller", "", "restrict the report to one seller id")
	flag.Parse()

	sellerID, err := parseSeller(*seller)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid -seller: %v\n", err)
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(ctx, "failed to load config", err)
		os.Exit(1)
	}
	logg = logger.New(logger.Options{
		ServiceName: "revenue-report",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer dbClient.Close()

	conn := dbClient.DB()
	svc, err := revenue.NewService(revenue.NewRepository(conn), revenue.Counters{
		Products: products.NewRepository(conn),
		Coupons:  coupons.NewRepository(conn),
		Tickets:  tickets.NewRepository(conn),
		Users:    users.NewRepository(conn),
	})
	if err != nil {
		logg.Error(ctx, "failed to create revenue service", err)
		os.Exit(1)
	}

	if err := run(ctx, os.Stdout, svc, *year, sellerID); err != nil {
		logg.Error(ctx, "revenue report failed", err)
		os.Exit(1)
	}
}

func parseSeller(raw string) (*uuid.UUID, error) {
	if raw == "" {
		return nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

type monthlySource interface {
	MonthlyRevenue(ctx context.Context, year int, sellerID *uuid.UUID) ([]revenue.MonthlyRevenue, error)
	MonthlyOrderCounts(ctx context.Context, year int, sellerID *uuid.UUID) ([]revenue.MonthlyOrders, error)
}

// run prints one row per month with revenue and order count side by side.
func run(ctx context.Context, out io.Writer, src monthlySource, year int, sellerID *uuid.UUID) error {
	totals, err := src.MonthlyRevenue(ctx, year, sellerID)
	if err != nil {
		return fmt.Errorf("monthly revenue: %w", err)
	}
	counts, err := src.MonthlyOrderCounts(ctx, year, sellerID)
	if err != nil {
		return fmt.Errorf("monthly orders: %w", err)
	}
	if len(totals) != len(counts) {
		return fmt.Errorf("month mismatch: %d revenue rows, %d order rows", len(totals), len(counts))
	}

	table := tablewriter.NewWriter(out)
	table.Header("Month", "Revenue", "Orders")
	for i, row := range totals {
		if err := table.Append([]string{row.Month, row.TotalRevenue.StringFixed(2), fmt.Sprintf("%d", counts[i].TotalOrders)}); err != nil {
			return err
		}
	}
	return table.Render()
}
