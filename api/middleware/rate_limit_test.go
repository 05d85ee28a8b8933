package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"
)

type fakeRateStore struct {
	mu     sync.Mutex
	counts map[string]int64
	err    error
}

func newFakeRateStore() *fakeRateStore {
	return &fakeRateStore{counts: map[string]int64{}}
}

func (f *fakeRateStore) FixedWindowAllow(_ context.Context, scope string, limit int64, _ time.Duration) (bool, int64, error) {
	if f.err != nil {
		return false, 0, f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.counts[scope]++
	return f.counts[scope] <= limit, f.counts[scope], nil
}

func TestMutationRateLimitBlocksAfterLimit(t *testing.T) {
	store := newFakeRateStore()
	handler := MutationRateLimit(NewRateLimitPolicy("mutation", time.Minute, 2), store, nil)(okHandler())

	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/seller/coupons", nil)
		req = req.WithContext(WithUserID(req.Context(), "user-1"))
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		switch {
		case i < 2 && rec.Code != http.StatusOK:
			t.Fatalf("expected success before limit, got %d", rec.Code)
		case i >= 2 && rec.Code != http.StatusTooManyRequests:
			t.Fatalf("expected 429 after limit, got %d", rec.Code)
		}
	}
	if store.counts["mutation:user:user-1"] != 3 {
		t.Fatalf("expected per-user key, got %v", store.counts)
	}
}

func TestMutationRateLimitSkipsReads(t *testing.T) {
	store := newFakeRateStore()
	handler := MutationRateLimit(NewRateLimitPolicy("mutation", time.Minute, 1), store, nil)(okHandler())

	for i := 0; i < 3; i++ {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/admin/orders", nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("expected reads to pass, got %d", rec.Code)
		}
	}
	if len(store.counts) != 0 {
		t.Fatalf("reads should not be counted")
	}
}

func TestMutationRateLimitStoreFailure(t *testing.T) {
	store := newFakeRateStore()
	store.err = errors.New("redis down")
	handler := MutationRateLimit(NewRateLimitPolicy("mutation", time.Minute, 1), store, nil)(okHandler())

	req := httptest.NewRequest(http.MethodDelete, "/api/admin/orders/1", nil)
	req.RemoteAddr = "9.9.9.9:1000"
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
}

func TestIPRateLimiterSeparatesClients(t *testing.T) {
	limiter := NewIPRateLimiter(1, 2)
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	limiter.now = func() time.Time { return now }

	if !limiter.Allow("1.1.1.1") || !limiter.Allow("1.1.1.1") {
		t.Fatal("burst should be allowed")
	}
	if limiter.Allow("1.1.1.1") {
		t.Fatal("third request in the same instant should be throttled")
	}
	if !limiter.Allow("2.2.2.2") {
		t.Fatal("other clients keep their own bucket")
	}

	now = now.Add(time.Second)
	if !limiter.Allow("1.1.1.1") {
		t.Fatal("a token should refill after a second")
	}

	now = now.Add(visitorIdleTTL + time.Minute)
	limiter.Allow("3.3.3.3")
	if _, ok := limiter.visitors["2.2.2.2"]; ok {
		t.Fatal("idle visitor should be evicted")
	}
}

func TestIPRateLimiterHandler(t *testing.T) {
	limiter := NewIPRateLimiter(0.001, 1)
	handler := limiter.Handler(nil)(okHandler())

	for i, want := range []int{http.StatusOK, http.StatusTooManyRequests} {
		req := httptest.NewRequest(http.MethodPost, "/api/coupons/apply", nil)
		req.Header.Set("X-Forwarded-For", "5.5.5.5, 10.0.0.1")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		if rec.Code != want {
			t.Fatalf("request %d: expected %d got %d", i, want, rec.Code)
		}
	}
}
