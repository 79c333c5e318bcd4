package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"revenue_radar_backend/internal/analysis"
	"revenue_radar_backend/internal/email"
	"revenue_radar_backend/internal/engine/insight"
	"revenue_radar_backend/internal/events"
	"revenue_radar_backend/internal/scheduler"
	"revenue_radar_backend/internal/snapshot"
	"revenue_radar_backend/platform/config"
	"revenue_radar_backend/platform/db"
	"revenue_radar_backend/platform/logger"
	"revenue_radar_backend/platform/metrics"
	"revenue_radar_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Env)
	log.Info("starting scheduler", "env", cfg.Env)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var pool *pgxpool.Pool
	if err := withRetry(ctx, log, "database connection", 5, 2*time.Second, func() error {
		p, err := db.NewPool(ctx, cfg)
		if err != nil {
			return err
		}
		pool = p
		return nil
	}); err != nil {
		log.Error("failed to connect to database", "error", err)
		panic("failed to connect to database: " + err.Error())
	}
	defer pool.Close()

	eventBus := events.NewInMemoryBus(log)
	m := metrics.New()
	val := validator.New()

	engineCfg, err := insight.LoadConfig(cfg.GetEngineConfigPath())
	if err != nil {
		log.Error("failed to load engine config", "error", err, "path", cfg.GetEngineConfigPath())
		panic("failed to load engine config: " + err.Error())
	}

	sender := email.NewSender(cfg)
	if sender == nil {
		log.Warn("email disabled; digests will be computed but not sent")
	}

	// Worker-side analysis wiring (no HTTP handlers, no report cache; the
	// digest always reflects fresh data).
	snapshotModule := snapshot.NewModule(pool, eventBus, m, val, log)
	analysisModule := analysis.NewModule(
		snapshotModule.Service(),
		engineCfg,
		nil,
		nil,
		0,
		eventBus,
		m,
		val,
		log,
	)

	worker, err := scheduler.NewWorker(cfg, analysisModule.Service(), snapshotModule.Service(), sender, m, log)
	if err != nil {
		log.Error("failed to initialize scheduler worker", "error", err)
		panic("failed to initialize scheduler worker: " + err.Error())
	}
	defer func() { _ = worker.Close() }()

	periodic, err := scheduler.NewPeriodicScheduler(cfg)
	if err != nil {
		log.Error("failed to initialize periodic scheduler", "error", err)
		panic("failed to initialize periodic scheduler: " + err.Error())
	}
	go func() {
		if err := periodic.Run(); err != nil {
			log.Error("periodic scheduler stopped", "error", err)
		}
	}()
	go func() {
		<-ctx.Done()
		periodic.Shutdown()
	}()

	worker.Run(ctx)
}

func withRetry(ctx context.Context, log *logger.Logger, name string, attempts int, baseDelay time.Duration, fn func() error) error {
	if attempts < 1 {
		return errors.New(name + ": invalid retry attempts")
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := fn(); err == nil {
			return nil
		} else {
			lastErr = err
			log.Warn("retryable operation failed", "operation", name, "attempt", attempt, "error", err)
		}

		if attempt < attempts {
			delay := time.Duration(attempt*attempt) * baseDelay
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}
	}

	return errors.New(name + ": " + lastErr.Error())
}
