package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/brgy-egov/assets-api/internal/app"
	"github.com/brgy-egov/assets-api/internal/auth"
	"github.com/brgy-egov/assets-api/internal/cache"
	"github.com/brgy-egov/assets-api/internal/clock"
	"github.com/brgy-egov/assets-api/internal/config"
	"github.com/brgy-egov/assets-api/internal/metrics"
	"github.com/brgy-egov/assets-api/internal/notify"
	"github.com/brgy-egov/assets-api/internal/seed"
	"github.com/brgy-egov/assets-api/internal/storage/postgres"
	transporthttp "github.com/brgy-egov/assets-api/internal/transport/http"
	"github.com/brgy-egov/assets-api/migrations"
)

const shutdownTimeout = 10 * time.Second

func main() {
	logger := log.Default()
	if err := godotenv.Load(); err != nil {
		logger.Printf("WARN: no .env file loaded: %v", err)
	}

	cfg, err := config.LoadAndValidate()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	authMgr := auth.NewManager(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTExpiry)
	if err := authMgr.ValidateConfig(); err != nil {
		log.Fatalf("auth config: %v", err)
	}

	startupCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	pool, err := pgxpool.New(startupCtx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("connect to db: %v", err)
	}
	defer pool.Close()

	if err := pool.Ping(startupCtx); err != nil {
		log.Fatalf("db ping: %v", err)
	}
	if err := migrations.Apply(startupCtx, pool); err != nil {
		log.Fatalf("apply migrations: %v", err)
	}

	catalogRepo := postgres.NewCatalogRepository(pool)
	requestRepo := postgres.NewRequestRepository(pool)

	if cfg.CatalogSeedPath != "" {
		n, err := seed.Apply(startupCtx, cfg.CatalogSeedPath, catalogRepo)
		if err != nil {
			log.Fatalf("seed catalog: %v", err)
		}
		logger.Printf("seeded %d catalog assets from %s", n, cfg.CatalogSeedPath)
	}

	var notifier app.Notifier = notify.LogNotifier{}
	if len(cfg.KafkaBrokers) > 0 {
		kafkaNotifier := notify.NewKafkaNotifier(cfg.KafkaBrokers, cfg.KafkaTopic)
		defer func() {
			if err := kafkaNotifier.Close(); err != nil {
				logger.Printf("WARN: close kafka writer: %v", err)
			}
		}()
		notifier = kafkaNotifier
		logger.Printf("publishing events to kafka topic %s", cfg.KafkaTopic)
	}

	var (
		availCache  app.AvailabilityCache
		invalidator app.AvailabilityInvalidator = app.NopInvalidator{}
	)
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword})
		if err := rdb.Ping(startupCtx).Err(); err != nil {
			log.Fatalf("redis ping: %v", err)
		}
		defer func() {
			_ = rdb.Close()
		}()
		store := cache.NewAvailabilityStore(rdb, cfg.AvailabilityTTL)
		availCache = store
		invalidator = store
		logger.Printf("availability cache enabled via redis at %s", cfg.RedisAddr)
	}

	clk := clock.NewSystem()
	catalogOpts := []app.CatalogServiceOption{}
	if availCache != nil {
		catalogOpts = append(catalogOpts, app.WithAvailabilityCache(availCache))
	}
	catalogSvc := app.NewCatalogService(catalogRepo, catalogOpts...)
	reservationSvc := app.NewReservationService(requestRepo, clk,
		app.WithReservationNotifier(notifier),
		app.WithReservationInvalidator(invalidator),
	)
	lifecycleSvc := app.NewLifecycleService(requestRepo, clk,
		app.WithLifecycleNotifier(notifier),
		app.WithLifecycleInvalidator(invalidator),
	)
	paymentSvc := app.NewPaymentService(requestRepo, clk,
		app.WithPaymentNotifier(notifier),
	)
	querySvc := app.NewRequestQueryService(requestRepo)

	routerCfg := transporthttp.RouterConfig{
		Catalog:      catalogSvc,
		Reservations: reservationSvc,
		Requests:     querySvc,
		Lifecycle:    lifecycleSvc,
		Payments:     paymentSvc,
		Auth:         authMgr,
		Ready:        pool.Ping,
		Logger:       logger,
		CORSOrigins:  cfg.CORSOrigins,
	}
	if cfg.EnableMetrics {
		m := metrics.New()
		routerCfg.Metrics = m
		routerCfg.MetricsHandler = m.Handler()
		routerCfg.Middleware = append(routerCfg.Middleware, m.Middleware())
	}

	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: transporthttp.NewRouter(routerCfg),
	}

	log.Printf("api listening on :%s", cfg.Port)

	srvErr := make(chan error, 1)
	go func() {
		srvErr <- server.ListenAndServe()
	}()

	stopCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	select {
	case err := <-srvErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("server error: %v", err)
		}
	case <-stopCtx.Done():
		log.Printf("shutdown signal received, stopping server")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Printf("server shutdown error: %v", err)
	}
	log.Printf("server stopped")
}
