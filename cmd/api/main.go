package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/angelmondragon/marketplace-backend/api/controllers"
	"github.com/angelmondragon/marketplace-backend/api/routes"
	"github.com/angelmondragon/marketplace-backend/internal/coupons"
	"github.com/angelmondragon/marketplace-backend/internal/orders"
	"github.com/angelmondragon/marketplace-backend/internal/products"
	"github.com/angelmondragon/marketplace-backend/internal/referrals"
	"github.com/angelmondragon/marketplace-backend/internal/revenue"
	"github.com/angelmondragon/marketplace-backend/internal/sellers"
	"github.com/angelmondragon/marketplace-backend/internal/tickets"
	"github.com/angelmondragon/marketplace-backend/internal/users"
	"github.com/angelmondragon/marketplace-backend/pkg/config"
	"github.com/angelmondragon/marketplace-backend/pkg/db"
	"github.com/angelmondragon/marketplace-backend/pkg/logger"
	"github.com/angelmondragon/marketplace-backend/pkg/migrate"
	"github.com/angelmondragon/marketplace-backend/pkg/outbox"
	"github.com/angelmondragon/marketplace-backend/pkg/redis"
	"github.com/angelmondragon/marketplace-backend/pkg/security"
)

const (
	readTimeout     = 15 * time.Second
	writeTimeout    = 30 * time.Second
	shutdownTimeout = 20 * time.Second
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	services, err := buildServices(cfg, logg, dbClient)
	if err != nil {
		logg.Error(context.Background(), "failed to wire services", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	addr := ":" + cfg.App.Port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":    cfg.App.Env,
		"addr":   addr,
		"driver": dbClient.Dialect(),
	})

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.Params{
			Config:   cfg,
			Logger:   logg,
			Store:    redisClient,
			Registry: registry,
			Ready: map[string]controllers.Pinger{
				"database": dbClient,
				"redis":    redisClient,
			},
			Services: services,
		}),
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
	}

	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logg.Info(ctx, "starting api server")
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-sigCtx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(ctx, "api server shutdown failed", err)
		}
		logg.Info(ctx, "api server stopped")
	}
}

func buildServices(cfg *config.Config, logg *logger.Logger, dbClient *db.Client) (routes.Services, error) {
	conn := dbClient.DB()
	sellerRepo := sellers.NewRepository(conn)
	couponRepo := coupons.NewRepository(conn)
	ticketRepo := tickets.NewRepository(conn)
	productRepo := products.NewRepository(conn)

	ordersSvc, err := orders.NewService(orders.NewRepository(conn), dbClient, outbox.NewService(outbox.NewRepository(conn), logg))
	if err != nil {
		return routes.Services{}, err
	}
	revenueSvc, err := revenue.NewService(revenue.NewRepository(conn), revenue.Counters{
		Products: productRepo,
		Coupons:  couponRepo,
		Tickets:  ticketRepo,
		Users:    users.NewRepository(conn),
	})
	if err != nil {
		return routes.Services{}, err
	}
	productsSvc, err := products.NewService(productRepo, sellerRepo, dbClient)
	if err != nil {
		return routes.Services{}, err
	}
	couponsSvc, err := coupons.NewService(couponRepo, sellerRepo)
	if err != nil {
		return routes.Services{}, err
	}
	referralsSvc, err := referrals.NewService(referrals.NewRepository(conn), users.NewRepository(conn), sellerRepo)
	if err != nil {
		return routes.Services{}, err
	}
	ticketsSvc, err := tickets.NewService(ticketRepo)
	if err != nil {
		return routes.Services{}, err
	}
	sellersSvc, err := sellers.NewService(sellerRepo, security.NewHasher(cfg.Password))
	if err != nil {
		return routes.Services{}, err
	}

	return routes.Services{
		Orders:    ordersSvc,
		Products:  productsSvc,
		Revenue:   revenueSvc,
		Coupons:   couponsSvc,
		Referrals: referralsSvc,
		Tickets:   ticketsSvc,
		Sellers:   sellersSvc,
	}, nil
}
