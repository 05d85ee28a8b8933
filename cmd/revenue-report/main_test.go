package main

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/marketplace-backend/internal/revenue"
)

type fakeMonthly struct {
	totals []revenue.MonthlyRevenue
	counts []revenue.MonthlyOrders
	err    error
	seller *uuid.UUID
}

func (f *fakeMonthly) MonthlyRevenue(_ context.Context, _ int, sellerID *uuid.UUID) ([]revenue.MonthlyRevenue, error) {
	f.seller = sellerID
	return f.totals, f.err
}

func (f *fakeMonthly) MonthlyOrderCounts(context.Context, int, *uuid.UUID) ([]revenue.MonthlyOrders, error) {
	return f.counts, nil
}

func TestRunRendersMonths(t *testing.T) {
	src := &fakeMonthly{
		totals: []revenue.MonthlyRevenue{
			{Month: "January", TotalRevenue: decimal.RequireFromString("120.5")},
			{Month: "February", TotalRevenue: decimal.Zero},
		},
		counts: []revenue.MonthlyOrders{
			{Month: "January", TotalOrders: 3},
			{Month: "February", TotalOrders: 0},
		},
	}
	sellerID := uuid.New()

	var out bytes.Buffer
	require.NoError(t, run(context.Background(), &out, src, 2024, &sellerID))

	assert.Contains(t, out.String(), "January")
	assert.Contains(t, out.String(), "120.50")
	assert.Contains(t, out.String(), "February")
	assert.Equal(t, &sellerID, src.seller)
}

func TestRunPropagatesErrors(t *testing.T) {
	src := &fakeMonthly{err: errors.New("db down")}
	err := run(context.Background(), &bytes.Buffer{}, src, 2024, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "db down")
}

func TestParseSeller(t *testing.T) {
	id, err := parseSeller("")
	require.NoError(t, err)
	assert.Nil(t, id)

	_, err = parseSeller("nope")
	assert.Error(t, err)
}
