package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"revenue_radar_backend/internal/analysis"
	"revenue_radar_backend/internal/engine/insight"
	"revenue_radar_backend/internal/events"
	apphttp "revenue_radar_backend/internal/http"
	"revenue_radar_backend/internal/http/router"
	"revenue_radar_backend/internal/snapshot"
	"revenue_radar_backend/migrations"
	"revenue_radar_backend/platform/ai"
	"revenue_radar_backend/platform/config"
	"revenue_radar_backend/platform/db"
	"revenue_radar_backend/platform/logger"
	"revenue_radar_backend/platform/metrics"
	"revenue_radar_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	// Initialize structured logger
	log := logger.New(cfg.Env)
	log.Info("starting server", "env", cfg.Env, "addr", cfg.HTTPAddr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ========================================================================
	// Infrastructure Layer
	// ========================================================================

	if err := withRetry(ctx, log, "database migrations", 5, 2*time.Second, func() error {
		return db.RunMigrations(ctx, cfg, migrations.FS)
	}); err != nil {
		log.Error("failed to run database migrations", "error", err)
		panic("failed to run database migrations: " + err.Error())
	}
	log.Info("database migrations complete")

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
	log.Info("database connection established")

	// Event bus for decoupled communication between modules
	eventBus := events.NewInMemoryBus(log)

	m := metrics.New()

	// Report cache is optional; the analysis module recomputes on every
	// request when Redis is not configured.
	rdb, closeRedis := initRedis(cfg, log)
	if closeRedis != nil {
		defer closeRedis()
	}

	// Engine tuning overlay on top of the built-in defaults.
	engineCfg, err := insight.LoadConfig(cfg.GetEngineConfigPath())
	if err != nil {
		log.Error("failed to load engine config", "error", err, "path", cfg.GetEngineConfigPath())
		panic("failed to load engine config: " + err.Error())
	}

	narrative := initNarrative(ctx, cfg, log)

	// Shared validator instance for dependency injection
	val := validator.New()

	// ========================================================================
	// Domain Modules (Composition Root)
	// ========================================================================

	snapshotModule := snapshot.NewModule(pool, eventBus, m, val, log)
	analysisModule := analysis.NewModule(
		snapshotModule.Service(),
		engineCfg,
		narrative,
		rdb,
		cfg.GetReportCacheTTL(),
		eventBus,
		m,
		val,
		log,
	)

	// ========================================================================
	// HTTP Layer
	// ========================================================================

	app := &apphttp.App{
		Config:   cfg,
		Logger:   log,
		Health:   pool,
		EventBus: eventBus,
		Modules: []apphttp.Module{
			snapshotModule,
			analysisModule,
		},
	}

	engine := router.New(app)

	srvErr := make(chan error, 1)
	go func() {
		log.Info("server listening", "addr", cfg.HTTPAddr)
		srvErr <- engine.Run(cfg.HTTPAddr)
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received, gracefully shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = shutdownCtx
	case err := <-srvErr:
		if err != nil {
			log.Error("server error", "error", err)
			panic("server error: " + err.Error())
		}
	}
}

func initRedis(cfg *config.Config, log *logger.Logger) (*redis.Client, func()) {
	if cfg.GetRedisURL() == "" {
		log.Warn("REDIS_URL not configured; report caching disabled")
		return nil, nil
	}

	opt, err := redis.ParseURL(cfg.GetRedisURL())
	if err != nil {
		log.Error("failed to parse REDIS_URL; report caching disabled", "error", err)
		return nil, nil
	}

	rdb := redis.NewClient(opt)
	return rdb, func() {
		_ = rdb.Close()
	}
}

func initNarrative(ctx context.Context, cfg *config.Config, log *logger.Logger) insight.NarrativeGenerator {
	if !cfg.IsAIEnabled() {
		log.Info("GEMINI_API_KEY not configured; AI narratives disabled")
		return nil
	}

	client, err := ai.NewNarrativeClient(ctx, cfg.GetGeminiAPIKey(), cfg.GetGeminiModel())
	if err != nil {
		log.Error("failed to initialize narrative client; AI narratives disabled", "error", err)
		return nil
	}
	log.Info("narrative client initialized", "model", cfg.GetGeminiModel())
	return client
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
