package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/oohdesk/oohdesk/internal/app"
	"github.com/oohdesk/oohdesk/internal/booking"
	bookinghttp "github.com/oohdesk/oohdesk/internal/booking/http"
	"github.com/oohdesk/oohdesk/internal/inventory"
	"github.com/oohdesk/oohdesk/internal/observability"
	"github.com/oohdesk/oohdesk/internal/platform/cache"
	"github.com/oohdesk/oohdesk/internal/platform/db"
	"github.com/oohdesk/oohdesk/internal/pricing"
	"github.com/oohdesk/oohdesk/internal/selection"
	"github.com/oohdesk/oohdesk/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping server startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}
	logger := app.NewLogger(cfg)

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("server", slog.Any("error", err))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *app.Config, logger *slog.Logger) error {
	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer pool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		return fmt.Errorf("connect redis: %w", err)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	metrics := observability.NewMetrics()
	engine := pricing.NewEngine(metrics)
	registry := selection.NewRegistry(selection.NewSnapshots(redisClient, cfg.SelectionSnapshotTTL), logger)

	inventoryService := inventory.NewService(inventory.NewRepository(pool))

	redisOpts := asynq.RedisClientOpt{Addr: cfg.RedisAddr}
	jobClient := jobs.NewClient(redisOpts)
	defer func() {
		if err := jobClient.Close(); err != nil {
			logger.Warn("job client close", slog.Any("error", err))
		}
	}()
	inspector := asynq.NewInspector(redisOpts)
	defer func() { _ = inspector.Close() }()

	submitter := booking.NewService(registry, booking.InventoryAvailability{Feed: inventoryService}, jobClient, logger)
	bookingHandler := bookinghttp.NewHandler(bookinghttp.Config{
		Logger:    logger,
		Sessions:  registry,
		Editor:    selection.NewEditor(engine),
		Inventory: inventoryService,
		Submitter: submitter,
		Observer:  metrics,
	})

	router := app.NewRouter(app.RouterParams{
		Logger:         logger,
		Config:         cfg,
		BookingHandler: bookingHandler,
		JobHandler:     jobs.NewHandler(inspector, logger),
		Metrics:        metrics,
		Readiness: map[string]app.Pinger{
			"postgres": pool,
			"redis": app.PingFunc(func(ctx context.Context) error {
				return redisClient.Ping(ctx).Err()
			}),
		},
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		return err
	}
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
