package coupons

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/marketplace-backend/api/middleware"
	internalcoupons "github.com/angelmondragon/marketplace-backend/internal/coupons"
	"github.com/angelmondragon/marketplace-backend/internal/scope"
	"github.com/angelmondragon/marketplace-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/marketplace-backend/pkg/errors"
	"github.com/angelmondragon/marketplace-backend/pkg/pagination"
	"github.com/angelmondragon/marketplace-backend/pkg/types"
)

type stubCouponService struct {
	internalcoupons.Service
	applyFn  func(ctx context.Context, input internalcoupons.ApplyCouponInput) (*internalcoupons.ApplyResult, error)
	createFn func(ctx context.Context, sc scope.Scope, input internalcoupons.CreateCouponInput) (*internalcoupons.CouponDTO, error)
	listFn   func(ctx context.Context, sc scope.Scope, filters internalcoupons.ListFilters, params pagination.Params) (*pagination.Page[internalcoupons.CouponDTO], error)
	countFn  func(ctx context.Context, sellerID uuid.UUID) (int64, error)
}

func (s stubCouponService) Apply(ctx context.Context, input internalcoupons.ApplyCouponInput) (*internalcoupons.ApplyResult, error) {
	return s.applyFn(ctx, input)
}

func (s stubCouponService) Create(ctx context.Context, sc scope.Scope, input internalcoupons.CreateCouponInput) (*internalcoupons.CouponDTO, error) {
	return s.createFn(ctx, sc, input)
}

func (s stubCouponService) List(ctx context.Context, sc scope.Scope, filters internalcoupons.ListFilters, params pagination.Params) (*pagination.Page[internalcoupons.CouponDTO], error) {
	return s.listFn(ctx, sc, filters, params)
}

func (s stubCouponService) Count(ctx context.Context, sellerID uuid.UUID) (int64, error) {
	return s.countFn(ctx, sellerID)
}

func sellerRequest(method, target, body string, seller uuid.UUID) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	ctx := middleware.WithUserID(req.Context(), uuid.NewString())
	ctx = middleware.WithRole(ctx, string(enums.RoleSeller))
	ctx = middleware.WithSellerID(ctx, seller.String())
	return req.WithContext(ctx)
}

func decodeEnvelope(t *testing.T, resp *httptest.ResponseRecorder) types.SuccessEnvelope {
	t.Helper()
	var envelope types.SuccessEnvelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&envelope))
	return envelope
}

func TestApplyWritesFailedOutcome(t *testing.T) {
	svc := stubCouponService{
		applyFn: func(_ context.Context, input internalcoupons.ApplyCouponInput) (*internalcoupons.ApplyResult, error) {
			assert.Equal(t, "SAVE10", input.Code)
			assert.Equal(t, "shop", input.SellerUsername)
			return &internalcoupons.ApplyResult{Status: types.StatusFailed, Message: "Invalid Coupon"}, nil
		},
	}
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"code":"SAVE10","sellerUsername":"shop"}`))
	resp := httptest.NewRecorder()
	Apply(svc, nil).ServeHTTP(resp, req)

	require.Equal(t, http.StatusOK, resp.Code)
	envelope := decodeEnvelope(t, resp)
	assert.Equal(t, types.StatusFailed, envelope.Status)
	assert.Equal(t, "Invalid Coupon", envelope.Message)
}

func TestApplyWritesCouponOnSuccess(t *testing.T) {
	svc := stubCouponService{
		applyFn: func(context.Context, internalcoupons.ApplyCouponInput) (*internalcoupons.ApplyResult, error) {
			return &internalcoupons.ApplyResult{
				Status: types.StatusSuccess,
				Coupon: &internalcoupons.CouponDTO{ID: uuid.New(), Code: "SAVE10"},
			}, nil
		},
	}
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"code":"save10","sellerUsername":"shop"}`))
	resp := httptest.NewRecorder()
	Apply(svc, nil).ServeHTTP(resp, req)

	require.Equal(t, http.StatusOK, resp.Code)
	envelope := decodeEnvelope(t, resp)
	assert.Equal(t, types.StatusSuccess, envelope.Status)
	assert.Equal(t, "SAVE10", envelope.Data.(map[string]any)["code"])
}

func TestApplyUnknownSellerIsNotFound(t *testing.T) {
	svc := stubCouponService{
		applyFn: func(context.Context, internalcoupons.ApplyCouponInput) (*internalcoupons.ApplyResult, error) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "Seller not found")
		},
	}
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"code":"X","sellerUsername":"ghost"}`))
	resp := httptest.NewRecorder()
	Apply(svc, nil).ServeHTTP(resp, req)
	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestCreateConflict(t *testing.T) {
	seller := uuid.New()
	svc := stubCouponService{
		createFn: func(_ context.Context, sc scope.Scope, _ internalcoupons.CreateCouponInput) (*internalcoupons.CouponDTO, error) {
			assert.Equal(t, seller, sc.OwnerID)
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "coupon code already exists")
		},
	}
	body := `{"code":"SAVE10","discountType":"percent","discountValue":"10"}`
	resp := httptest.NewRecorder()
	Create(svc, nil).ServeHTTP(resp, sellerRequest(http.MethodPost, "/", body, seller))
	assert.Equal(t, http.StatusConflict, resp.Code)
}

func TestCreateValidatesDiscountType(t *testing.T) {
	body := `{"code":"SAVE10","discountType":"bogus","discountValue":"10"}`
	resp := httptest.NewRecorder()
	Create(stubCouponService{}, nil).ServeHTTP(resp, sellerRequest(http.MethodPost, "/", body, uuid.New()))
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestListPassesDeletedFilter(t *testing.T) {
	svc := stubCouponService{
		listFn: func(_ context.Context, _ scope.Scope, filters internalcoupons.ListFilters, params pagination.Params) (*pagination.Page[internalcoupons.CouponDTO], error) {
			require.NotNil(t, filters.IsDeleted)
			assert.False(t, *filters.IsDeleted)
			page := pagination.NewPage([]internalcoupons.CouponDTO{{ID: uuid.New()}}, 1, params)
			return &page, nil
		},
	}
	resp := httptest.NewRecorder()
	List(svc, nil).ServeHTTP(resp, sellerRequest(http.MethodGet, "/?isDeleted=false", "", uuid.New()))
	assert.Equal(t, http.StatusOK, resp.Code)
}

func TestCountUsesSellerScope(t *testing.T) {
	seller := uuid.New()
	svc := stubCouponService{
		countFn: func(_ context.Context, sellerID uuid.UUID) (int64, error) {
			assert.Equal(t, seller, sellerID)
			return 4, nil
		},
	}
	resp := httptest.NewRecorder()
	Count(svc, nil).ServeHTTP(resp, sellerRequest(http.MethodGet, "/", "", seller))
	require.Equal(t, http.StatusOK, resp.Code)
	envelope := decodeEnvelope(t, resp)
	assert.Equal(t, float64(4), envelope.Data.(map[string]any)["count"])
}
