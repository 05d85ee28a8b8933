package routes

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/marketplace-backend/internal/coupons"
	"github.com/angelmondragon/marketplace-backend/internal/orders"
	"github.com/angelmondragon/marketplace-backend/internal/scope"
	"github.com/angelmondragon/marketplace-backend/pkg/auth"
	"github.com/angelmondragon/marketplace-backend/pkg/config"
	"github.com/angelmondragon/marketplace-backend/pkg/enums"
	"github.com/angelmondragon/marketplace-backend/pkg/logger"
	"github.com/angelmondragon/marketplace-backend/pkg/types"
)

type memStore struct {
	mu     sync.Mutex
	values map[string]string
	hits   map[string]int64
}

func newMemStore() *memStore {
	return &memStore{values: map[string]string{}, hits: map[string]int64{}}
}

func (m *memStore) Get(_ context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.values[key], nil
}

func (m *memStore) SetNX(_ context.Context, key string, value any, _ time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.values[key]; ok {
		return false, nil
	}
	switch v := value.(type) {
	case string:
		m.values[key] = v
	case []byte:
		m.values[key] = string(v)
	}
	return true, nil
}

func (m *memStore) IdempotencyKey(scope, id string) string {
	return "idem:" + scope + ":" + id
}

func (m *memStore) FixedWindowAllow(_ context.Context, scope string, limit int64, _ time.Duration) (bool, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hits[scope]++
	return m.hits[scope] <= limit, m.hits[scope], nil
}

type stubOrders struct {
	orders.Service
	creates int
}

func (s *stubOrders) Count(context.Context, scope.Scope, orders.ListFilters) (int64, error) {
	return 7, nil
}

func (s *stubOrders) Create(_ context.Context, _ scope.Scope, input orders.CreateOrderInput) (*orders.OrderDTO, error) {
	s.creates++
	return &orders.OrderDTO{ID: uuid.New()}, nil
}

type stubCoupons struct {
	coupons.Service
}

func (stubCoupons) Apply(context.Context, coupons.ApplyCouponInput) (*coupons.ApplyResult, error) {
	return &coupons.ApplyResult{Status: types.StatusFailed, Message: "Coupon expired"}, nil
}

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Env: "test"},
		JWT: config.JWTConfig{Secret: "secret", Issuer: "marketplace", ExpirationMinutes: 60},
		RateLimit: config.RateLimitConfig{
			MutationWindow:   time.Minute,
			MutationLimit:    100,
			CouponApplyRPS:   1,
			CouponApplyBurst: 1,
			IdempotencyTTL:   time.Hour,
		},
		CORS: config.CORSConfig{AllowedOrigins: []string{"*"}, MaxAge: 300},
	}
}

func newTestRouter(t *testing.T, ordersSvc *stubOrders) (http.Handler, *prometheus.Registry) {
	t.Helper()
	reg := prometheus.NewRegistry()
	router := NewRouter(Params{
		Config:   testConfig(),
		Logger:   logger.Nop(),
		Store:    newMemStore(),
		Registry: reg,
		Services: Services{Orders: ordersSvc, Coupons: stubCoupons{}},
	})
	return router, reg
}

func bearer(t *testing.T, role enums.Role, sellerID *uuid.UUID) string {
	t.Helper()
	token, err := auth.MintAccessToken(testConfig().JWT, time.Now(), auth.AccessTokenPayload{
		UserID:   uuid.New(),
		Role:     role,
		SellerID: sellerID,
		JTI:      uuid.NewString(),
	})
	require.NoError(t, err)
	return "Bearer " + token
}

func TestHealthLive(t *testing.T) {
	router, _ := newTestRouter(t, &stubOrders{})
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/health/live", nil))
	assert.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "test", resp.Header().Get("X-Marketplace-Env"))
}

func TestSurfacesRequireToken(t *testing.T) {
	router, _ := newTestRouter(t, &stubOrders{})
	for _, path := range []string{"/api/admin/orders", "/api/seller/orders", "/api/client/orders"} {
		resp := httptest.NewRecorder()
		router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusUnauthorized, resp.Code, path)
	}
}

func TestSurfacesRequireMatchingRole(t *testing.T) {
	router, _ := newTestRouter(t, &stubOrders{})
	sellerID := uuid.New()

	req := httptest.NewRequest(http.MethodGet, "/api/admin/orders/count", nil)
	req.Header.Set("Authorization", bearer(t, enums.RoleSeller, &sellerID))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	assert.Equal(t, http.StatusForbidden, resp.Code)

	req = httptest.NewRequest(http.MethodGet, "/api/seller/orders/count", nil)
	req.Header.Set("Authorization", bearer(t, enums.RoleClient, nil))
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	assert.Equal(t, http.StatusForbidden, resp.Code)
}

func TestAdminCountsOrders(t *testing.T) {
	router, _ := newTestRouter(t, &stubOrders{})
	req := httptest.NewRequest(http.MethodGet, "/api/admin/orders/count", nil)
	req.Header.Set("Authorization", bearer(t, enums.RoleAdmin, nil))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), `"count":7`)
}

func TestClientOrderCreateIsIdempotent(t *testing.T) {
	svc := &stubOrders{}
	router, _ := newTestRouter(t, svc)
	token := bearer(t, enums.RoleClient, nil)
	body := `{"sellerId":"` + uuid.NewString() + `","orderItems":[{"productId":"` + uuid.NewString() + `","quantity":1,"price":"10"}],"totalAmount":"10"}`

	req := httptest.NewRequest(http.MethodPost, "/api/client/orders", strings.NewReader(body))
	req.Header.Set("Authorization", token)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	assert.Equal(t, http.StatusBadRequest, resp.Code, "missing Idempotency-Key")
	assert.Equal(t, 0, svc.creates)

	var first string
	for i := 0; i < 2; i++ {
		req = httptest.NewRequest(http.MethodPost, "/api/client/orders", strings.NewReader(body))
		req.Header.Set("Authorization", token)
		req.Header.Set("Idempotency-Key", "order-1")
		resp = httptest.NewRecorder()
		router.ServeHTTP(resp, req)
		if resp.Code != http.StatusCreated {
			t.Fatalf("attempt %d: status %d body %s", i, resp.Code, resp.Body.String())
		}
		if i == 0 {
			first = resp.Body.String()
			continue
		}
		assert.Equal(t, first, resp.Body.String())
	}
	assert.Equal(t, 1, svc.creates)
}

func TestPublicCouponApplyIsThrottled(t *testing.T) {
	router, _ := newTestRouter(t, &stubOrders{})
	body := `{"code":"SAVE10","sellerUsername":"greenleaf"}`

	req := httptest.NewRequest(http.MethodPost, "/api/public/coupons/apply", strings.NewReader(body))
	req.RemoteAddr = "10.0.0.1:1234"
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), `"status":"FAILED"`)

	req = httptest.NewRequest(http.MethodPost, "/api/public/coupons/apply", strings.NewReader(body))
	req.RemoteAddr = "10.0.0.1:1234"
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	assert.Equal(t, http.StatusTooManyRequests, resp.Code)
}

func TestMetricsEndpointExposesRoutePatterns(t *testing.T) {
	router, _ := newTestRouter(t, &stubOrders{})
	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health/live", nil))

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, resp.Code)
	payload, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(payload), `marketplace_http_requests_total{method="GET",route="/health/live",status="200"} 1`)
}
