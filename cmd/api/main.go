package main

import (
	"context"
	"errors"
	"log"
	"os/signal"
	"syscall"
	"time"

	"courier-dispatch/internal/core/cache"
	"courier-dispatch/internal/core/clock"
	"courier-dispatch/internal/core/config"
	"courier-dispatch/internal/core/events"
	"courier-dispatch/internal/core/logger"
	"courier-dispatch/internal/core/retry"
	"courier-dispatch/internal/core/server"
	dispatchadapter "courier-dispatch/internal/features/dispatch/adapters"
	dispatchhandler "courier-dispatch/internal/features/dispatch/handler"
	dispatchports "courier-dispatch/internal/features/dispatch/ports"
	dispatchservice "courier-dispatch/internal/features/dispatch/service"
	promoadapter "courier-dispatch/internal/features/promotions/adapters"
	promohandler "courier-dispatch/internal/features/promotions/handler"
	promoservice "courier-dispatch/internal/features/promotions/service"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 15 * time.Second

// @title Courier Dispatch API
// @version 1.0
// @description Courier assignment, availability and promotion pricing for a delivery platform.
// @license.name MIT
// @host localhost:8080
// @BasePath /
func main() {
	cfg, err := config.Load(".")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := logger.Init(cfg.Environment, cfg.LogLevel); err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	defer logger.Sync()

	l := logger.Get()
	l.Info("Application starting",
		zap.String("environment", cfg.Environment),
		zap.String("log_level", cfg.LogLevel),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		l.Fatal("Invalid REDIS_URL", zap.Error(err))
	}
	rdb := redis.NewClient(opts)
	defer rdb.Close()
	if err := rdb.Ping(ctx).Err(); err != nil {
		l.Fatal("Redis connection failed", zap.Error(err))
	}
	l.Info("Redis connection verified")

	checks := map[string]server.HealthCheck{
		"redis": func(ctx context.Context) error { return rdb.Ping(ctx).Err() },
	}

	ledger, closeLedger := buildLedger(ctx, cfg, checks)
	defer closeLedger()

	settings, err := dispatchservice.SettingsFromConfig(cfg.Dispatch, cfg.Retry)
	if err != nil {
		l.Fatal("Invalid dispatch configuration", zap.Error(err))
	}
	policy := retry.FromConfig(cfg.Retry)
	clk := clock.New()

	orders := dispatchadapter.NewHTTPOrderSource(cfg.Orders)
	checks["orders"] = orders.HealthCheck

	var (
		notifier dispatchports.Notifier
		webhook  *dispatchadapter.WebhookNotifier
	)
	if cfg.Notify.WebhookURL != "" {
		webhook = dispatchadapter.NewWebhookNotifier(cfg.Notify.WebhookURL, float64(cfg.Notify.RatePerSecond), 0, policy)
		notifier = webhook
	} else {
		l.Info("NOTIFY_WEBHOOK_URL not set, notifications are logged only")
		notifier = dispatchadapter.NewLogNotifier()
	}

	publisher := events.NewRedisPublisher(rdb)
	tracker := dispatchadapter.NewRedisAvailabilityTracker(rdb)
	geo := dispatchadapter.NewRedisGeoIndex(rdb, tracker, clk, cfg.Dispatch.LocationTTL())
	manual := dispatchadapter.NewRedisManualQueue(rdb)

	assigner := dispatchservice.NewAssigner(dispatchservice.AssignerDeps{
		Geo:      geo,
		Tracker:  tracker,
		Ledger:   ledger,
		Orders:   orders,
		Notifier: notifier,
		Manual:   manual,
		Events:   publisher,
		Clock:    clk,
	}, settings)

	jobs := dispatchservice.NewJobRunner(assigner, manual, clk, cfg.Dispatch.MaxConcurrentJobs, settings.FlowDeadline, policy)
	jobs.Start(ctx)
	scheduler := dispatchservice.NewScheduler(orders, jobs, clk, cfg.Dispatch.PrepBufferMinutes, cfg.Dispatch.DefaultPrepMinutes)
	sweeper := dispatchservice.NewSweeper(assigner, geo, cfg.Dispatch.SweepInterval())

	dispatchHdl := dispatchhandler.NewDispatchHandler(
		assigner,
		scheduler,
		dispatchservice.NewCourierService(geo, tracker),
		dispatchservice.NewManualReviewService(manual),
	)

	catalog := promoadapter.NewCachedRepository(
		promoadapter.NewFileRepository(cfg.Promotions.File),
		cache.NewRedisAdapterFromClient(rdb),
		cfg.Promotions.CacheTTL(),
	)
	engine := promoservice.NewEngine(catalog, promoadapter.NewRedisUsageLedger(rdb), publisher, clk, int64(cfg.Promotions.MinorUnitFactor))
	promoHdl := promohandler.NewPromotionHandler(engine)

	srv := server.New(cfg, checks)

	// Register Routes
	dispatchHdl.Register(srv.App)
	promoHdl.Register(srv.App)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(srv.Run)
	g.Go(func() error { return sweeper.Run(gctx) })
	if webhook != nil {
		g.Go(func() error { return webhook.Run(gctx) })
	}
	g.Go(func() error {
		<-gctx.Done()
		l.Info("Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		l.Error("Server stopped with error", zap.Error(err))
	}

	scheduled := scheduler.Pending()
	jobs.Wait()
	l.Info("Shutdown complete", zap.Int("unscheduled_orders", scheduled))
}

// buildLedger picks the assignment ledger: PostgreSQL when DATABASE_URL is
// set, otherwise an in-process ledger that does not survive restarts.
func buildLedger(ctx context.Context, cfg *config.AppConfig, checks map[string]server.HealthCheck) (dispatchports.AssignmentLedger, func()) {
	l := logger.Get()
	if cfg.DatabaseURL == "" {
		l.Warn("DATABASE_URL not set, assignment ledger is kept in memory")
		return dispatchadapter.NewMemoryLedger(), func() {}
	}

	pg, err := dispatchadapter.NewPostgresLedger(ctx, cfg.DatabaseURL)
	if err != nil {
		l.Fatal("PostgreSQL connection failed", zap.Error(err))
	}
	if err := pg.Migrate(ctx); err != nil {
		l.Fatal("Ledger migration failed", zap.Error(err))
	}
	checks["postgres"] = pg.Ping
	l.Info("PostgreSQL ledger ready")
	return pg, pg.Close
}
