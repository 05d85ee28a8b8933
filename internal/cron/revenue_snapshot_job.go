package cron

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/multierr"

	"github.com/angelmondragon/marketplace-backend/internal/revenue"
	"github.com/angelmondragon/marketplace-backend/internal/revenue/snapshot"
	"github.com/angelmondragon/marketplace-backend/pkg/logger"
)

type snapshotSource interface {
	SnapshotForDate(ctx context.Context, date time.Time) ([]revenue.SellerSnapshot, error)
}

type RevenueSnapshotJobParams struct {
	Logger *logger.Logger
	Source snapshotSource
	Sinks  []snapshot.Sink
}

// NewRevenueSnapshotJob exports yesterday's per-seller totals to every sink.
// Sinks dedupe on (seller, day), so hourly reruns are safe.
func NewRevenueSnapshotJob(params RevenueSnapshotJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Source == nil {
		return nil, fmt.Errorf("snapshot source required")
	}
	if len(params.Sinks) == 0 {
		return nil, fmt.Errorf("at least one snapshot sink required")
	}
	return &revenueSnapshotJob{
		logg:   params.Logger,
		source: params.Source,
		sinks:  params.Sinks,
		now:    time.Now,
	}, nil
}

type revenueSnapshotJob struct {
	logg   *logger.Logger
	source snapshotSource
	sinks  []snapshot.Sink
	now    func() time.Time
}

func (j *revenueSnapshotJob) Name() string { return "revenue-snapshot" }

func (j *revenueSnapshotJob) Run(ctx context.Context) error {
	day := revenue.DayStart(j.now()).AddDate(0, 0, -1)
	rows, err := j.source.SnapshotForDate(ctx, day)
	if err != nil {
		return fmt.Errorf("load snapshots for %s: %w", day.Format("2006-01-02"), err)
	}
	if len(rows) == 0 {
		j.logg.Info(j.logg.WithField(ctx, "day", day.Format("2006-01-02")), "no revenue to snapshot")
		return nil
	}

	var errs error
	for _, sink := range j.sinks {
		if err := sink.Write(ctx, rows); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("sink %s: %w", sink.Name(), err))
			continue
		}
		logCtx := j.logg.WithFields(ctx, map[string]any{
			"sink": sink.Name(),
			"day":  day.Format("2006-01-02"),
			"rows": len(rows),
		})
		j.logg.Info(logCtx, "revenue snapshot written")
	}
	return errs
}
