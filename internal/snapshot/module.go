// Package snapshot provides the CRM snapshot ingestion and storage module.
package snapshot

import (
	"revenue_radar_backend/internal/events"
	apphttp "revenue_radar_backend/internal/http"
	"revenue_radar_backend/internal/snapshot/handler"
	"revenue_radar_backend/internal/snapshot/repository"
	"revenue_radar_backend/internal/snapshot/service"
	"revenue_radar_backend/platform/logger"
	"revenue_radar_backend/platform/metrics"
	"revenue_radar_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module represents the snapshot ingestion domain module.
type Module struct {
	handler *handler.Handler
	service *service.Service
}

// NewModule creates the snapshot module with all dependencies wired.
func NewModule(pool *pgxpool.Pool, bus events.Bus, m *metrics.Metrics, val *validator.Validator, log *logger.Logger) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, bus, m, log)
	return &Module{
		handler: handler.New(svc, val),
		service: svc,
	}
}

// Name returns the module name for logging.
func (m *Module) Name() string {
	return "snapshot"
}

// Service returns the service layer for external use.
func (m *Module) Service() *service.Service {
	return m.service
}

// RegisterRoutes registers the module's routes.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	// Webhook is API-key authenticated, not JWT, but still rate limited.
	webhook := ctx.V1.Group("/snapshot")
	webhook.Use(ctx.IngestRateLimiter.RateLimit())
	m.handler.RegisterWebhookRoutes(webhook)

	m.handler.RegisterProtectedRoutes(ctx.Protected.Group("/snapshot"))
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
