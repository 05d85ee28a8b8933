package revenue

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/marketplace-backend/api/middleware"
	internalrevenue "github.com/angelmondragon/marketplace-backend/internal/revenue"
	"github.com/angelmondragon/marketplace-backend/pkg/enums"
)

type stubRevenueService struct {
	internalrevenue.Service
	countFn     func(ctx context.Context, date time.Time, sellerID *uuid.UUID) (internalrevenue.OrderCount, error)
	summaryFn   func(ctx context.Context, sellerID uuid.UUID, date string) (internalrevenue.DaySummary, error)
	monthlyFn   func(ctx context.Context, year int, sellerID *uuid.UUID) ([]internalrevenue.MonthlyRevenue, error)
	lastSevenFn func(ctx context.Context, sellerID *uuid.UUID, now time.Time) ([]internalrevenue.DayRevenue, error)
	platformFn  func(ctx context.Context) (internalrevenue.PlatformCounts, error)
}

func (s stubRevenueService) CountOrdersForDate(ctx context.Context, date time.Time, sellerID *uuid.UUID) (internalrevenue.OrderCount, error) {
	return s.countFn(ctx, date, sellerID)
}

func (s stubRevenueService) SellerDaySummary(ctx context.Context, sellerID uuid.UUID, date string) (internalrevenue.DaySummary, error) {
	return s.summaryFn(ctx, sellerID, date)
}

func (s stubRevenueService) MonthlyRevenue(ctx context.Context, year int, sellerID *uuid.UUID) ([]internalrevenue.MonthlyRevenue, error) {
	return s.monthlyFn(ctx, year, sellerID)
}

func (s stubRevenueService) LastSevenDaysRevenue(ctx context.Context, sellerID *uuid.UUID, now time.Time) ([]internalrevenue.DayRevenue, error) {
	return s.lastSevenFn(ctx, sellerID, now)
}

func (s stubRevenueService) PlatformCounts(ctx context.Context) (internalrevenue.PlatformCounts, error) {
	return s.platformFn(ctx)
}

var fixedNow = time.Date(2024, 5, 15, 18, 30, 0, 0, time.UTC)

func fixedClock() time.Time { return fixedNow }

func actorRequest(target string, role enums.Role, seller uuid.UUID) *http.Request {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	ctx := middleware.WithUserID(req.Context(), uuid.NewString())
	ctx = middleware.WithRole(ctx, string(role))
	if seller != uuid.Nil {
		ctx = middleware.WithSellerID(ctx, seller.String())
	}
	return req.WithContext(ctx)
}

func TestOrdersForDateDefaultsToToday(t *testing.T) {
	svc := stubRevenueService{
		countFn: func(_ context.Context, date time.Time, sellerID *uuid.UUID) (internalrevenue.OrderCount, error) {
			assert.Equal(t, time.Date(2024, 5, 15, 0, 0, 0, 0, time.UTC), date)
			assert.Nil(t, sellerID)
			return internalrevenue.OrderCount{Date: "2024-05-15", Orders: 3}, nil
		},
	}
	resp := httptest.NewRecorder()
	OrdersForDate(svc, fixedClock, nil).ServeHTTP(resp, actorRequest("/", enums.RoleAdmin, uuid.Nil))
	require.Equal(t, http.StatusOK, resp.Code)

	var envelope struct {
		Data internalrevenue.OrderCount `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&envelope))
	assert.Equal(t, int64(3), envelope.Data.Orders)
}

func TestOrdersForDateRejectsBadDate(t *testing.T) {
	resp := httptest.NewRecorder()
	OrdersForDate(stubRevenueService{}, fixedClock, nil).ServeHTTP(resp, actorRequest("/?date=05-15-2024", enums.RoleAdmin, uuid.Nil))
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestDaySummaryPinsSeller(t *testing.T) {
	seller := uuid.New()
	svc := stubRevenueService{
		summaryFn: func(_ context.Context, sellerID uuid.UUID, date string) (internalrevenue.DaySummary, error) {
			assert.Equal(t, seller, sellerID)
			assert.Equal(t, "05/15/2024", date)
			return internalrevenue.DaySummary{
				Sales:   decimal.NewFromInt(150),
				Charge:  decimal.NewFromInt(15),
				Orders:  2,
				Revenue: decimal.NewFromInt(135),
			}, nil
		},
	}
	resp := httptest.NewRecorder()
	DaySummary(svc, fixedClock, nil).ServeHTTP(resp, actorRequest("/?sellerId="+uuid.NewString(), enums.RoleSeller, seller))
	require.Equal(t, http.StatusOK, resp.Code)

	var envelope struct {
		Data internalrevenue.DaySummary `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&envelope))
	assert.True(t, envelope.Data.Revenue.Equal(decimal.NewFromInt(135)))
}

func TestDaySummaryAdminNeedsSeller(t *testing.T) {
	resp := httptest.NewRecorder()
	DaySummary(stubRevenueService{}, fixedClock, nil).ServeHTTP(resp, actorRequest("/", enums.RoleAdmin, uuid.Nil))
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestMonthlyRevenueReadsYear(t *testing.T) {
	svc := stubRevenueService{
		monthlyFn: func(_ context.Context, year int, _ *uuid.UUID) ([]internalrevenue.MonthlyRevenue, error) {
			assert.Equal(t, 2023, year)
			return make([]internalrevenue.MonthlyRevenue, 12), nil
		},
	}
	req := actorRequest("/", enums.RoleAdmin, uuid.Nil)
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("year", "2023")
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))

	resp := httptest.NewRecorder()
	MonthlyRevenue(svc, nil).ServeHTTP(resp, req)
	require.Equal(t, http.StatusOK, resp.Code)

	var envelope struct {
		Data []internalrevenue.MonthlyRevenue `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&envelope))
	assert.Len(t, envelope.Data, 12)
}

func TestLastSevenDaysUsesClock(t *testing.T) {
	svc := stubRevenueService{
		lastSevenFn: func(_ context.Context, _ *uuid.UUID, now time.Time) ([]internalrevenue.DayRevenue, error) {
			assert.Equal(t, fixedNow, now)
			return []internalrevenue.DayRevenue{}, nil
		},
	}
	resp := httptest.NewRecorder()
	LastSevenDays(svc, fixedClock, nil).ServeHTTP(resp, actorRequest("/", enums.RoleSeller, uuid.New()))
	assert.Equal(t, http.StatusOK, resp.Code)
}

func TestClientCannotReadRevenue(t *testing.T) {
	resp := httptest.NewRecorder()
	LastSevenDays(stubRevenueService{}, fixedClock, nil).ServeHTTP(resp, actorRequest("/", enums.RoleClient, uuid.Nil))
	assert.Equal(t, http.StatusForbidden, resp.Code)
}

func TestPlatformCountsAdminOnly(t *testing.T) {
	svc := stubRevenueService{
		platformFn: func(context.Context) (internalrevenue.PlatformCounts, error) {
			return internalrevenue.PlatformCounts{Revenue: decimal.NewFromInt(135), Orders: 2, Products: 9, Users: 3}, nil
		},
	}
	resp := httptest.NewRecorder()
	Platform(svc, nil).ServeHTTP(resp, actorRequest("/", enums.RoleAdmin, uuid.Nil))
	require.Equal(t, http.StatusOK, resp.Code)

	var envelope struct {
		Data internalrevenue.PlatformCounts `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&envelope))
	assert.EqualValues(t, 3, envelope.Data.Users)
	assert.EqualValues(t, 9, envelope.Data.Products)

	resp = httptest.NewRecorder()
	Platform(svc, nil).ServeHTTP(resp, actorRequest("/", enums.RoleSeller, uuid.New()))
	assert.Equal(t, http.StatusForbidden, resp.Code)
}
