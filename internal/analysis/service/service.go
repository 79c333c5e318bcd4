// Package service runs pipeline analyses over stored snapshots and exposes
// the engine's stages as stateless operations over caller-supplied data.
package service

import (
	"context"
	"time"

	"revenue_radar_backend/internal/engine/actions"
	"revenue_radar_backend/internal/engine/dealrank"
	"revenue_radar_backend/internal/engine/domain"
	"revenue_radar_backend/internal/engine/insight"
	"revenue_radar_backend/internal/engine/leadscore"
	"revenue_radar_backend/internal/engine/leakscan"
	"revenue_radar_backend/internal/engine/repkpi"
	"revenue_radar_backend/internal/events"
	"revenue_radar_backend/platform/logger"
	"revenue_radar_backend/platform/metrics"

	"github.com/google/uuid"
)

// SnapshotLoader loads the stored snapshot for an organization.
type SnapshotLoader interface {
	Load(ctx context.Context, orgID uuid.UUID) (domain.Snapshot, error)
}

type Service struct {
	loader  SnapshotLoader
	orch    *insight.Orchestrator
	cache   *ReportCache
	bus     events.Bus
	metrics *metrics.Metrics
	log     *logger.Logger
}

func New(loader SnapshotLoader, orch *insight.Orchestrator, cache *ReportCache, bus events.Bus, m *metrics.Metrics, log *logger.Logger) *Service {
	s := &Service{loader: loader, orch: orch, cache: cache, bus: bus, metrics: m, log: log}
	if bus != nil {
		bus.Subscribe(events.SnapshotIngested{}.EventName(), events.HandlerFunc(s.onSnapshotIngested))
	}
	return s
}

// onSnapshotIngested drops the cached report whenever new data lands.
func (s *Service) onSnapshotIngested(ctx context.Context, event events.Event) error {
	ingested, ok := event.(events.SnapshotIngested)
	if !ok {
		return nil
	}
	s.cache.Invalidate(ctx, ingested.OrgID)
	return nil
}

// RunFull runs the complete analysis for the org's stored snapshot. Reports
// without an AI narrative are served from cache when fresh; AI runs always
// recompute because the narrative is not cached.
func (s *Service) RunFull(ctx context.Context, orgID uuid.UUID, includeAI bool) (domain.FullReport, error) {
	if !includeAI {
		if report, ok := s.cache.Get(ctx, orgID); ok {
			return report, nil
		}
	}

	snap, err := s.loader.Load(ctx, orgID)
	if err != nil {
		return domain.FullReport{}, err
	}

	started := time.Now()
	report := s.orch.Analyze(ctx, snap, time.Now().UTC(), includeAI)
	duration := time.Since(started)

	s.observe("full", orgID, snap, report, duration)
	if s.bus != nil {
		s.bus.Publish(ctx, events.AnalysisCompleted{
			BaseEvent:     events.NewBaseEvent(),
			OrgID:         orgID,
			HealthScore:   report.HealthScore,
			CriticalLeaks: report.Leaks.Summary.BySeverity[domain.SeverityCritical],
			TotalLeaks:    report.Leaks.Summary.Total,
			LeakRevenue:   report.Leaks.Summary.TotalEstimatedRevenue,
		})
	}

	if !includeAI {
		s.cache.Set(ctx, orgID, report)
	}
	return report, nil
}

// RunQuick produces the dashboard digest for the org's stored snapshot.
func (s *Service) RunQuick(ctx context.Context, orgID uuid.UUID) (domain.QuickReport, error) {
	snap, err := s.loader.Load(ctx, orgID)
	if err != nil {
		return domain.QuickReport{}, err
	}
	if s.metrics != nil {
		s.metrics.AnalysisRuns.WithLabelValues("quick").Inc()
	}
	return s.orch.QuickAnalysis(snap, time.Now().UTC()), nil
}

// RunVoice produces the spoken-word digest for the org's stored snapshot.
func (s *Service) RunVoice(ctx context.Context, orgID uuid.UUID) (domain.VoiceSummary, error) {
	snap, err := s.loader.Load(ctx, orgID)
	if err != nil {
		return domain.VoiceSummary{}, err
	}
	if s.metrics != nil {
		s.metrics.AnalysisRuns.WithLabelValues("voice").Inc()
	}
	return s.orch.VoiceSummary(snap, time.Now().UTC()), nil
}

// ScoreLeads scores caller-supplied leads without touching storage.
func (s *Service) ScoreLeads(leads []domain.Lead, activities []domain.Activity) domain.LeadScoreResult {
	return leadscore.Score(leads, activities, time.Now().UTC(), s.orch.Config().LeadScoring)
}

// PrioritizeDeals ranks caller-supplied deals without touching storage.
func (s *Service) PrioritizeDeals(deals []domain.Opportunity, activities []domain.Activity) domain.DealPriorityResult {
	return dealrank.Rank(deals, activities, time.Now().UTC(), s.orch.Config().DealPriority)
}

// DetectLeaks scans a caller-supplied snapshot without touching storage.
func (s *Service) DetectLeaks(snap domain.Snapshot) domain.LeakResult {
	result := leakscan.Detect(snap, time.Now().UTC(), s.orch.Config().Leaks)
	if s.metrics != nil {
		for severity, n := range result.Summary.BySeverity {
			s.metrics.LeaksDetected.WithLabelValues(string(severity)).Add(float64(n))
		}
	}
	return result
}

// RepKPIs aggregates caller-supplied data without touching storage.
func (s *Service) RepKPIs(snap domain.Snapshot) []domain.RepKPI {
	return repkpi.Calculate(snap, time.Now().UTC())
}

// RecommendActions builds the action list from caller-supplied stage results.
func (s *Service) RecommendActions(in actions.Input) domain.ActionResult {
	return actions.Generate(in, s.orch.Config().Actions)
}

func (s *Service) observe(shape string, orgID uuid.UUID, snap domain.Snapshot, report domain.FullReport, duration time.Duration) {
	if s.metrics != nil {
		s.metrics.AnalysisRuns.WithLabelValues(shape).Inc()
		s.metrics.AnalysisDuration.Observe(duration.Seconds())
		for severity, n := range report.Leaks.Summary.BySeverity {
			s.metrics.LeaksDetected.WithLabelValues(string(severity)).Add(float64(n))
		}
	}
	s.log.AnalysisRun(orgID.String(), len(snap.Leads), len(snap.Opportunities),
		report.Leaks.Summary.Total, report.HealthScore, float64(duration.Milliseconds()))
}
