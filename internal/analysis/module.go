// Package analysis provides the pipeline-analysis domain module.
package analysis

import (
	"time"

	"revenue_radar_backend/internal/analysis/handler"
	"revenue_radar_backend/internal/analysis/service"
	"revenue_radar_backend/internal/engine/insight"
	"revenue_radar_backend/internal/events"
	apphttp "revenue_radar_backend/internal/http"
	"revenue_radar_backend/platform/logger"
	"revenue_radar_backend/platform/metrics"
	"revenue_radar_backend/platform/validator"

	"github.com/redis/go-redis/v9"
)

// Module represents the analysis domain module.
type Module struct {
	handler *handler.Handler
	service *service.Service
}

// NewModule creates the analysis module with all dependencies wired. rdb may
// be nil to run without report caching; narrative may be nil to run without
// AI summaries.
func NewModule(
	loader service.SnapshotLoader,
	engineCfg insight.Config,
	narrative insight.NarrativeGenerator,
	rdb *redis.Client,
	cacheTTL time.Duration,
	bus events.Bus,
	m *metrics.Metrics,
	val *validator.Validator,
	log *logger.Logger,
) *Module {
	orch := insight.New(engineCfg, narrative, log)
	cache := service.NewReportCache(rdb, cacheTTL, log)
	svc := service.New(loader, orch, cache, bus, m, log)
	return &Module{
		handler: handler.New(svc, val),
		service: svc,
	}
}

// Name returns the module name for logging.
func (m *Module) Name() string {
	return "analysis"
}

// Service returns the service layer for external use.
func (m *Module) Service() *service.Service {
	return m.service
}

// RegisterRoutes registers the module's routes.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.Protected)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
