package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/multierr"

	"github.com/kolschhq/kolsch-backend/api/routes"
	"github.com/kolschhq/kolsch-backend/internal/auth"
	"github.com/kolschhq/kolsch-backend/internal/storage"
	"github.com/kolschhq/kolsch-backend/pkg/config"
	"github.com/kolschhq/kolsch-backend/pkg/db"
	"github.com/kolschhq/kolsch-backend/pkg/logger"
	"github.com/kolschhq/kolsch-backend/pkg/metrics"
	"github.com/kolschhq/kolsch-backend/pkg/migrate"
	"github.com/kolschhq/kolsch-backend/pkg/redis"
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

	var closers []func() error

	var store storage.Storage
	switch cfg.DB.Driver {
	case config.DriverMemory:
		mem := storage.NewMemoryStore(storage.Options{CascadeDelete: cfg.DB.CascadeDelete})
		if cfg.FeatureFlags.SeedDemo {
			if err := mem.Seed(context.Background()); err != nil {
				logg.Error(context.Background(), "failed to seed demo data", err)
				os.Exit(1)
			}
		}
		store = mem
	default:
		dbClient, err := db.New(context.Background(), cfg.DB, logg)
		if err != nil {
			logg.Error(context.Background(), "failed to bootstrap database", err)
			os.Exit(1)
		}
		closers = append(closers, dbClient.Close)

		if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
			logg.Error(context.Background(), "failed to run dev migrations", err)
			os.Exit(1)
		}

		store = storage.NewGormStore(dbClient, storage.Options{CascadeDelete: cfg.DB.CascadeDelete})
	}

	var limiter auth.RateLimiter
	if cfg.Redis.Enabled() {
		redisClient, err := redis.New(context.Background(), cfg.Redis)
		if err != nil {
			logg.Error(context.Background(), "failed to bootstrap redis", err)
			os.Exit(1)
		}
		closers = append(closers, redisClient.Close)
		limiter = redisClient
	}

	authService, err := auth.NewService(auth.ServiceParams{
		Store:          store,
		PasswordConfig: cfg.Password,
		SessionConfig:  cfg.Session,
		RateLimiter:    limiter,
		RateLimits:     cfg.AuthRateLimit,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create auth service", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	httpMetrics := metrics.NewHTTPMetrics()
	jobMetrics := metrics.NewJobMetrics(httpMetrics.Registerer())
	sweeper := auth.NewSweeper(store, cfg.Session.SweepInterval, logg, jobMetrics)
	go sweeper.Run(ctx)

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx = logg.WithFields(ctx, map[string]any{
		"env":    cfg.App.Env,
		"addr":   addr,
		"driver": cfg.DB.Driver,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr:    addr,
		Handler: routes.NewRouter(cfg, logg, store, authService, httpMetrics),
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(shutdownCtx, "error shutting down api server", err)
		}
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			closeAll(ctx, logg, closers)
			os.Exit(1)
		}
	}

	closeAll(ctx, logg, closers)
	logg.Info(ctx, "api server shutting down gracefully")
}

func closeAll(ctx context.Context, logg *logger.Logger, closers []func() error) {
	var errs []error
	for _, closeFn := range closers {
		errs = append(errs, closeFn())
	}
	if err := multierr.Combine(errs...); err != nil {
		logg.Error(ctx, "error closing resources", err)
	}
}
