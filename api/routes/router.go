package routes

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/angelmondragon/marketplace-backend/api/controllers"
	couponcontrollers "github.com/angelmondragon/marketplace-backend/api/controllers/coupons"
	ordercontrollers "github.com/angelmondragon/marketplace-backend/api/controllers/orders"
	productcontrollers "github.com/angelmondragon/marketplace-backend/api/controllers/products"
	referralcontrollers "github.com/angelmondragon/marketplace-backend/api/controllers/referrals"
	revenuecontrollers "github.com/angelmondragon/marketplace-backend/api/controllers/revenue"
	sellercontrollers "github.com/angelmondragon/marketplace-backend/api/controllers/sellers"
	ticketcontrollers "github.com/angelmondragon/marketplace-backend/api/controllers/tickets"
	"github.com/angelmondragon/marketplace-backend/api/middleware"
	"github.com/angelmondragon/marketplace-backend/internal/coupons"
	"github.com/angelmondragon/marketplace-backend/internal/orders"
	"github.com/angelmondragon/marketplace-backend/internal/products"
	"github.com/angelmondragon/marketplace-backend/internal/referrals"
	"github.com/angelmondragon/marketplace-backend/internal/revenue"
	"github.com/angelmondragon/marketplace-backend/internal/sellers"
	"github.com/angelmondragon/marketplace-backend/internal/tickets"
	"github.com/angelmondragon/marketplace-backend/pkg/config"
	"github.com/angelmondragon/marketplace-backend/pkg/enums"
	"github.com/angelmondragon/marketplace-backend/pkg/logger"
	"github.com/angelmondragon/marketplace-backend/pkg/metrics"
)

// Store backs idempotency replay and the mutation rate limit. *redis.Client
// satisfies it.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error)
	IdempotencyKey(scope, id string) string
	FixedWindowAllow(ctx context.Context, scope string, limit int64, window time.Duration) (bool, int64, error)
}

// Services are the domain services mounted on the three surfaces.
type Services struct {
	Orders    orders.Service
	Products  products.Service
	Revenue   revenue.Service
	Coupons   coupons.Service
	Referrals referrals.Service
	Tickets   tickets.Service
	Sellers   sellers.Service
}

type Params struct {
	Config   *config.Config
	Logger   *logger.Logger
	Store    Store
	Registry *prometheus.Registry
	// Ready is pinged by /health/ready, keyed by dependency name.
	Ready    map[string]controllers.Pinger
	Services Services
	// Clock overrides time.Now for the revenue defaults.
	Clock revenuecontrollers.Clock
}

func NewRouter(p Params) http.Handler {
	cfg, logg, svc := p.Config, p.Logger, p.Services

	registry := p.Registry
	if registry == nil {
		registry = prometheus.NewRegistry()
	}
	httpMetrics := metrics.NewHTTPMetrics(registry)

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.Metrics(httpMetrics),
		middleware.CORS(cfg.CORS),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, p.Ready, logg))
	})
	r.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	applyLimiter := middleware.NewIPRateLimiter(cfg.RateLimit.CouponApplyRPS, cfg.RateLimit.CouponApplyBurst)
	r.Route("/api/public", func(r chi.Router) {
		r.With(applyLimiter.Handler(logg)).Post("/coupons/apply", couponcontrollers.Apply(svc.Coupons, logg))
		r.Route("/sellers/{username}", func(r chi.Router) {
			r.Get("/", sellercontrollers.GetByUsername(svc.Sellers, logg))
			r.Get("/products", productcontrollers.Storefront(svc.Products, logg))
			r.Get("/products/related", productcontrollers.Related(svc.Products, logg))
			r.Get("/products/search", productcontrollers.Search(svc.Products, logg))
			r.Get("/products/{productId}", productcontrollers.StorefrontProduct(svc.Products, logg))
		})
	})

	mutationPolicy := middleware.NewRateLimitPolicy("mutation", cfg.RateLimit.MutationWindow, cfg.RateLimit.MutationLimit)
	guarded := func(role enums.Role) []func(http.Handler) http.Handler {
		return []func(http.Handler) http.Handler{
			middleware.Auth(cfg.JWT, logg),
			middleware.RequireRole(role, logg),
			middleware.MutationRateLimit(mutationPolicy, p.Store, logg),
			middleware.Idempotency(p.Store, cfg.RateLimit.IdempotencyTTL, logg),
		}
	}

	r.Route("/api/admin", func(r chi.Router) {
		r.Use(guarded(enums.RoleAdmin)...)

		mountOrders(r, svc.Orders, logg)
		mountProducts(r, svc.Products, logg)
		mountRevenue(r, svc.Revenue, p.Clock, logg, func(r chi.Router) {
			r.Get("/platform", revenuecontrollers.Platform(svc.Revenue, logg))
		})
		r.Route("/coupons", func(r chi.Router) {
			r.Get("/", couponcontrollers.List(svc.Coupons, logg))
			r.Post("/", couponcontrollers.Create(svc.Coupons, logg))
			r.Get("/count", couponcontrollers.Count(svc.Coupons, logg))
			r.Get("/{couponId}", couponcontrollers.Get(svc.Coupons, logg))
			r.Patch("/{couponId}", couponcontrollers.Update(svc.Coupons, logg))
			r.Delete("/{couponId}", couponcontrollers.Delete(svc.Coupons, logg))
		})
		r.Route("/referrals", func(r chi.Router) {
			r.Get("/", referralcontrollers.List(svc.Referrals, logg))
			r.Post("/", referralcontrollers.Create(svc.Referrals, logg))
			r.Get("/{referralId}", referralcontrollers.Get(svc.Referrals, logg))
			r.Patch("/{referralId}", referralcontrollers.Update(svc.Referrals, logg))
			r.Delete("/{referralId}", referralcontrollers.Delete(svc.Referrals, logg))
		})
		mountTickets(r, svc.Tickets, logg)
		r.Route("/sellers", func(r chi.Router) {
			r.Get("/", sellercontrollers.List(svc.Sellers, logg))
			r.Post("/", sellercontrollers.Create(svc.Sellers, logg))
			r.Get("/{sellerId}", sellercontrollers.Get(svc.Sellers, logg))
			r.Patch("/{sellerId}", sellercontrollers.Update(svc.Sellers, logg))
			r.Post("/{sellerId}/approve", sellercontrollers.Approve(svc.Sellers, logg))
			r.Post("/{sellerId}/unapprove", sellercontrollers.Unapprove(svc.Sellers, logg))
			r.Post("/{sellerId}/soft-delete", sellercontrollers.SoftDelete(svc.Sellers, logg))
		})
	})

	r.Route("/api/seller", func(r chi.Router) {
		r.Use(guarded(enums.RoleSeller)...)

		mountOrders(r, svc.Orders, logg)
		mountProducts(r, svc.Products, logg)
		mountRevenue(r, svc.Revenue, p.Clock, logg)
		r.Route("/coupons", func(r chi.Router) {
			r.Get("/", couponcontrollers.List(svc.Coupons, logg))
			r.Post("/", couponcontrollers.Create(svc.Coupons, logg))
			r.Get("/count", couponcontrollers.Count(svc.Coupons, logg))
			r.Get("/{couponId}", couponcontrollers.Get(svc.Coupons, logg))
			r.Patch("/{couponId}", couponcontrollers.Update(svc.Coupons, logg))
			r.Delete("/{couponId}", couponcontrollers.Delete(svc.Coupons, logg))
		})
		mountTickets(r, svc.Tickets, logg)
		r.Get("/profile", sellercontrollers.Me(svc.Sellers, logg))
		r.Patch("/profile", sellercontrollers.Update(svc.Sellers, logg))
		r.Patch("/profile/password", sellercontrollers.ChangePassword(svc.Sellers, logg))
	})

	r.Route("/api/client", func(r chi.Router) {
		r.Use(guarded(enums.RoleClient)...)

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", ordercontrollers.Mine(svc.Orders, logg))
			r.Post("/", ordercontrollers.Create(svc.Orders, logg))
			r.Get("/{orderId}", ordercontrollers.Get(svc.Orders, logg))
		})
		r.Route("/referrals", func(r chi.Router) {
			r.Get("/", referralcontrollers.Mine(svc.Referrals, logg))
			r.Post("/", referralcontrollers.Create(svc.Referrals, logg))
		})
	})

	return r
}

func mountOrders(r chi.Router, svc orders.Service, logg *logger.Logger) {
	r.Route("/orders", func(r chi.Router) {
		r.Get("/", ordercontrollers.List(svc, logg))
		r.Post("/", ordercontrollers.Create(svc, logg))
		r.Get("/count", ordercontrollers.Count(svc, logg))
		r.Post("/bulk", ordercontrollers.BulkInsert(svc, logg))
		r.Patch("/bulk", ordercontrollers.BulkUpdate(svc, logg))
		r.Post("/bulk-soft-delete", ordercontrollers.SoftDeleteMany(svc, logg))
		r.Post("/bulk-delete", ordercontrollers.DeleteMany(svc, logg))
		r.Get("/{orderId}", ordercontrollers.Get(svc, logg))
		r.Put("/{orderId}", ordercontrollers.Update(svc, logg))
		r.Patch("/{orderId}", ordercontrollers.Patch(svc, logg))
		r.Delete("/{orderId}", ordercontrollers.Delete(svc, logg))
		r.Post("/{orderId}/soft-delete", ordercontrollers.SoftDelete(svc, logg))
	})
}

func mountProducts(r chi.Router, svc products.Service, logg *logger.Logger) {
	r.Route("/products", func(r chi.Router) {
		r.Get("/", productcontrollers.List(svc, logg))
		r.Post("/", productcontrollers.Create(svc, logg))
		r.Get("/count", productcontrollers.Count(svc, logg))
		r.Post("/bulk", productcontrollers.BulkInsert(svc, logg))
		r.Patch("/bulk", productcontrollers.BulkUpdate(svc, logg))
		r.Post("/bulk-soft-delete", productcontrollers.SoftDeleteMany(svc, logg))
		r.Post("/bulk-delete", productcontrollers.DeleteMany(svc, logg))
		r.Get("/{productId}", productcontrollers.Get(svc, logg))
		r.Put("/{productId}", productcontrollers.Update(svc, logg))
		r.Patch("/{productId}", productcontrollers.Patch(svc, logg))
		r.Delete("/{productId}", productcontrollers.Delete(svc, logg))
		r.Post("/{productId}/soft-delete", productcontrollers.SoftDelete(svc, logg))
	})
}

func mountRevenue(r chi.Router, svc revenue.Service, clock revenuecontrollers.Clock, logg *logger.Logger, extra ...func(chi.Router)) {
	r.Route("/revenue", func(r chi.Router) {
		for _, mount := range extra {
			mount(r)
		}
		r.Get("/orders", revenuecontrollers.OrdersForDate(svc, clock, logg))
		r.Get("/sales", revenuecontrollers.SalesForDate(svc, clock, logg))
		r.Get("/summary", revenuecontrollers.DaySummary(svc, clock, logg))
		r.Get("/monthly/{year}", revenuecontrollers.MonthlyRevenue(svc, logg))
		r.Get("/monthly/{year}/orders", revenuecontrollers.MonthlyOrders(svc, logg))
		r.Get("/last-seven-days", revenuecontrollers.LastSevenDays(svc, clock, logg))
		r.Get("/dashboard", revenuecontrollers.Dashboard(svc, logg))
	})
}

func mountTickets(r chi.Router, svc tickets.Service, logg *logger.Logger) {
	r.Route("/tickets", func(r chi.Router) {
		r.Get("/", ticketcontrollers.List(svc, logg))
		r.Post("/", ticketcontrollers.Create(svc, logg))
		r.Get("/count", ticketcontrollers.Count(svc, logg))
		r.Get("/{ticketId}", ticketcontrollers.Get(svc, logg))
		r.Patch("/{ticketId}", ticketcontrollers.Update(svc, logg))
		r.Post("/{ticketId}/replies", ticketcontrollers.Reply(svc, logg))
		r.Post("/{ticketId}/resolve", ticketcontrollers.Resolve(svc, logg))
		r.Delete("/{ticketId}", ticketcontrollers.Delete(svc, logg))
	})
}
