package referrals

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
	internalreferrals "github.com/angelmondragon/marketplace-backend/internal/referrals"
	"github.com/angelmondragon/marketplace-backend/internal/scope"
	"github.com/angelmondragon/marketplace-backend/pkg/enums"
	"github.com/angelmondragon/marketplace-backend/pkg/pagination"
	"github.com/angelmondragon/marketplace-backend/pkg/types"
)

type stubReferralService struct {
	internalreferrals.Service
	createFn      func(ctx context.Context, sc scope.Scope, input internalreferrals.CreateReferralInput) (*internalreferrals.CreateResult, error)
	listFn        func(ctx context.Context, sc scope.Scope, filters internalreferrals.ListFilters, params pagination.Params) (*pagination.Page[internalreferrals.ReferralDTO], error)
	listForUserFn func(ctx context.Context, userID uuid.UUID, params pagination.Params) (*pagination.Page[internalreferrals.ReferralDTO], error)
}

func (s stubReferralService) Create(ctx context.Context, sc scope.Scope, input internalreferrals.CreateReferralInput) (*internalreferrals.CreateResult, error) {
	return s.createFn(ctx, sc, input)
}

func (s stubReferralService) List(ctx context.Context, sc scope.Scope, filters internalreferrals.ListFilters, params pagination.Params) (*pagination.Page[internalreferrals.ReferralDTO], error) {
	return s.listFn(ctx, sc, filters, params)
}

func (s stubReferralService) ListForUser(ctx context.Context, userID uuid.UUID, params pagination.Params) (*pagination.Page[internalreferrals.ReferralDTO], error) {
	return s.listForUserFn(ctx, userID, params)
}

func clientRequest(method, target, body string, user uuid.UUID) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	ctx := middleware.WithUserID(req.Context(), user.String())
	ctx = middleware.WithRole(ctx, string(enums.RoleClient))
	return req.WithContext(ctx)
}

func TestCreateFromClientWithoutReferringUser(t *testing.T) {
	user := uuid.New()
	seller := uuid.New()
	svc := stubReferralService{
		createFn: func(_ context.Context, sc scope.Scope, input internalreferrals.CreateReferralInput) (*internalreferrals.CreateResult, error) {
			assert.Equal(t, user, sc.OwnerID)
			assert.Equal(t, seller, input.ReferredSellerID)
			return &internalreferrals.CreateResult{
				Status:   types.StatusSuccess,
				Referral: &internalreferrals.ReferralDTO{ID: uuid.New(), ReferringUserID: user, ReferredSellerID: seller},
			}, nil
		},
	}
	body := `{"referredSellerId":"` + seller.String() + `"}`
	resp := httptest.NewRecorder()
	Create(svc, nil).ServeHTTP(resp, clientRequest(http.MethodPost, "/", body, user))
	assert.Equal(t, http.StatusCreated, resp.Code)
}

func TestCreateDuplicateWritesExist(t *testing.T) {
	svc := stubReferralService{
		createFn: func(context.Context, scope.Scope, internalreferrals.CreateReferralInput) (*internalreferrals.CreateResult, error) {
			return &internalreferrals.CreateResult{Status: types.StatusExist}, nil
		},
	}
	body := `{"referredSellerId":"` + uuid.NewString() + `"}`
	resp := httptest.NewRecorder()
	Create(svc, nil).ServeHTTP(resp, clientRequest(http.MethodPost, "/", body, uuid.New()))

	require.Equal(t, http.StatusOK, resp.Code)
	var envelope types.SuccessEnvelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&envelope))
	assert.Equal(t, types.StatusExist, envelope.Status)
	assert.Nil(t, envelope.Data)
}

func TestCreateRequiresSeller(t *testing.T) {
	resp := httptest.NewRecorder()
	Create(stubReferralService{}, nil).ServeHTTP(resp, clientRequest(http.MethodPost, "/", `{}`, uuid.New()))
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestListParsesFilters(t *testing.T) {
	seller := uuid.New()
	svc := stubReferralService{
		listFn: func(_ context.Context, _ scope.Scope, filters internalreferrals.ListFilters, params pagination.Params) (*pagination.Page[internalreferrals.ReferralDTO], error) {
			require.NotNil(t, filters.ReferredSellerID)
			assert.Equal(t, seller, *filters.ReferredSellerID)
			require.NotNil(t, filters.Onboarded)
			assert.True(t, *filters.Onboarded)
			page := pagination.NewPage([]internalreferrals.ReferralDTO{{ID: uuid.New()}}, 1, params)
			return &page, nil
		},
	}
	req := httptest.NewRequest(http.MethodGet, "/?referredSellerId="+seller.String()+"&onboarded=true", nil)
	ctx := middleware.WithUserID(req.Context(), uuid.NewString())
	req = req.WithContext(middleware.WithRole(ctx, string(enums.RoleAdmin)))

	resp := httptest.NewRecorder()
	List(svc, nil).ServeHTTP(resp, req)
	assert.Equal(t, http.StatusOK, resp.Code)
}

func TestMineUsesCaller(t *testing.T) {
	user := uuid.New()
	svc := stubReferralService{
		listForUserFn: func(_ context.Context, userID uuid.UUID, params pagination.Params) (*pagination.Page[internalreferrals.ReferralDTO], error) {
			assert.Equal(t, user, userID)
			page := pagination.NewPage([]internalreferrals.ReferralDTO{{ID: uuid.New()}}, 1, params)
			return &page, nil
		},
	}
	resp := httptest.NewRecorder()
	Mine(svc, nil).ServeHTTP(resp, clientRequest(http.MethodGet, "/", "", user))
	assert.Equal(t, http.StatusOK, resp.Code)
}
