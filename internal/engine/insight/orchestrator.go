// Package insight runs the full analysis: leak scan, lead scoring, deal
// prioritization, rep KPIs and action recommendation, then synthesizes
// pipeline-level insights and an overall health score. Everything except the
// optional AI narrative is pure in the snapshot and reference time.
package insight

import (
	"context"
	"fmt"
	"math"
	"time"

	"revenue_radar_backend/internal/engine/actions"
	"revenue_radar_backend/internal/engine/dealrank"
	"revenue_radar_backend/internal/engine/domain"
	"revenue_radar_backend/internal/engine/leadscore"
	"revenue_radar_backend/internal/engine/leakscan"
	"revenue_radar_backend/internal/engine/repkpi"
	"revenue_radar_backend/platform/logger"
)

// Insight severity classes.
const (
	InsightCritical = "CRITICAL"
	InsightWarning  = "WARNING"
	InsightCapacity = "CAPACITY"
)

// NarrativeGenerator produces prose summaries of leak findings. Implementors
// may fail freely; the orchestrator treats any error as "no narrative".
type NarrativeGenerator interface {
	Narrate(ctx context.Context, findings interface{}) (string, error)
}

// Orchestrator wires the engine stages together under one Config.
type Orchestrator struct {
	cfg       Config
	narrative NarrativeGenerator
	log       *logger.Logger
}

// New creates an orchestrator. narrative may be nil to disable AI summaries.
func New(cfg Config, narrative NarrativeGenerator, log *logger.Logger) *Orchestrator {
	return &Orchestrator{cfg: cfg, narrative: narrative, log: log}
}

// Config returns the engine configuration in use.
func (o *Orchestrator) Config() Config { return o.cfg }

// Analyze runs the complete analysis over one snapshot. When includeAI is
// set and a narrative generator is wired, the leak findings get a prose
// summary attached; narrative failure degrades to an empty narrative.
func (o *Orchestrator) Analyze(ctx context.Context, snap domain.Snapshot, now time.Time, includeAI bool) domain.FullReport {
	leaks := leakscan.Detect(snap, now, o.cfg.Leaks)
	leadScores := leadscore.Score(snap.Leads, snap.Activities, now, o.cfg.LeadScoring)
	dealPriorities := dealrank.Rank(snap.Opportunities, snap.Activities, now, o.cfg.DealPriority)
	kpis := repkpi.Calculate(snap, now)
	recommended := actions.Generate(actions.Input{
		LeadScores:     leadScores,
		DealPriorities: dealPriorities,
		Leaks:          leaks,
	}, o.cfg.Actions)

	insights := o.synthesize(leaks)

	if includeAI && o.narrative != nil {
		text, err := o.narrative.Narrate(ctx, leaks)
		if err != nil {
			if o.log != nil {
				o.log.Warn("narrative generation failed", "error", err)
			}
		} else {
			leaks.AINarrative = text
		}
	}

	return domain.FullReport{
		GeneratedAt:       now,
		HealthScore:       o.healthScore(insights),
		Insights:          insights,
		WastedEffortRatio: o.wastedEffortRatio(snap, now),
		Leaks:             leaks,
		LeadScores:        leadScores,
		DealPriorities:    dealPriorities,
		RepKPIs:           kpis,
		Actions:           recommended,
	}
}

// QuickAnalysis produces the dashboard digest without the full payload.
func (o *Orchestrator) QuickAnalysis(snap domain.Snapshot, now time.Time) domain.QuickReport {
	leaks := leakscan.Detect(snap, now, o.cfg.Leaks)
	leadScores := leadscore.Score(snap.Leads, snap.Activities, now, o.cfg.LeadScoring)
	dealPriorities := dealrank.Rank(snap.Opportunities, snap.Activities, now, o.cfg.DealPriority)
	recommended := actions.Generate(actions.Input{
		LeadScores:     leadScores,
		DealPriorities: dealPriorities,
		Leaks:          leaks,
	}, o.cfg.Actions)

	return domain.QuickReport{
		GeneratedAt:       now,
		HealthScore:       o.healthScore(o.synthesize(leaks)),
		OpenPipelineValue: dealPriorities.Summary.TotalPipelineValue,
		CriticalLeaks:     leaks.Summary.BySeverity[domain.SeverityCritical],
		TotalLeakRevenue:  leaks.Summary.TotalEstimatedRevenue,
		HotLeads:          leadScores.Summary.TierCounts[leadscore.TierHot],
		NextBestAction:    recommended.NextBestAction,
	}
}

// VoiceSummary renders the quick report as a short spoken-word script.
func (o *Orchestrator) VoiceSummary(snap domain.Snapshot, now time.Time) domain.VoiceSummary {
	q := o.QuickAnalysis(snap, now)

	text := fmt.Sprintf("Pipeline health is %d out of 100.", q.HealthScore)
	if q.CriticalLeaks > 0 {
		text += fmt.Sprintf(" You have %d critical %s putting $%.0f at risk.",
			q.CriticalLeaks, plural(q.CriticalLeaks, "leak", "leaks"), q.TotalLeakRevenue)
	} else {
		text += " No critical leaks detected."
	}
	if q.HotLeads > 0 {
		text += fmt.Sprintf(" %d hot %s waiting.", q.HotLeads, plural(q.HotLeads, "lead is", "leads are"))
	}
	if q.NextBestAction.Type != actions.TypeNone {
		text += fmt.Sprintf(" Your next best action: %s.", q.NextBestAction.Title)
	}

	return domain.VoiceSummary{Text: text, Data: q}
}

// insightOrder fixes the iteration order so insights are deterministic.
var insightOrder = []domain.LeakType{
	domain.LeakHighValueAtRisk,
	domain.LeakStaleOpportunity,
	domain.LeakDeadPipeline,
	domain.LeakUntouchedLead,
	domain.LeakSlowResponse,
	domain.LeakUnassignedLead,
	domain.LeakMissingFollowUp,
	domain.LeakAbandonedDeal,
	domain.LeakLostNoReason,
	domain.LeakInactiveRep,
}

// synthesize lifts leak findings into pipeline-level insights: one per leak
// type at its worst observed severity. Rep inactivity is a capacity problem
// regardless of leak severity.
func (o *Orchestrator) synthesize(leaks domain.LeakResult) []domain.Insight {
	worst := make(map[domain.LeakType]domain.Leak)
	revenue := make(map[domain.LeakType]float64)
	counts := make(map[domain.LeakType]int)
	for _, l := range leaks.Leaks {
		if cur, ok := worst[l.Type]; !ok || domain.SeverityRank(l.Severity) < domain.SeverityRank(cur.Severity) {
			worst[l.Type] = l
		}
		revenue[l.Type] += l.EstimatedRevenue
		counts[l.Type] += l.ImpactedCount
	}

	var out []domain.Insight
	for _, lt := range insightOrder {
		leak, ok := worst[lt]
		if !ok {
			continue
		}

		class := ""
		switch {
		case lt == domain.LeakInactiveRep:
			class = InsightCapacity
		case leak.Severity == domain.SeverityCritical:
			class = InsightCritical
		case leak.Severity == domain.SeverityHigh:
			class = InsightWarning
		default:
			continue
		}

		out = append(out, domain.Insight{
			Severity: class,
			Title:    leak.Title,
			Detail: fmt.Sprintf("%d %s affected, an estimated $%.0f exposed.",
				counts[lt], plural(counts[lt], "record", "records"), revenue[lt]),
		})
	}
	return out
}

// healthScore deducts per insight class from a perfect 100, clamped to
// [0, 100].
func (o *Orchestrator) healthScore(insights []domain.Insight) int {
	score := 100
	for _, in := range insights {
		switch in.Severity {
		case InsightCritical:
			score -= o.cfg.Penalties.Critical
		case InsightWarning:
			score -= o.cfg.Penalties.Warning
		case InsightCapacity:
			score -= o.cfg.Penalties.Capacity
		}
	}
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

// wastedEffortRatio measures the share of recent activity spent on contacts
// that went nowhere: deals lost or abandoned, or leads still unconverted
// after heavy touching.
func (o *Orchestrator) wastedEffortRatio(snap domain.Snapshot, now time.Time) float64 {
	deadContacts := make(map[string]struct{})
	for _, deal := range snap.Opportunities {
		if deal.Status == domain.DealStatusLost || deal.Status == domain.DealStatusAbandoned {
			if deal.ContactID != "" {
				deadContacts[deal.ContactID] = struct{}{}
			}
		}
	}

	touches := make(map[string]int)
	for _, a := range snap.Activities {
		if a.ContactID != "" {
			touches[a.ContactID]++
		}
	}
	for _, lead := range snap.Leads {
		if lead.Status == domain.LeadStatusNew && touches[lead.ID] >= o.cfg.WastedTouchThreshold {
			deadContacts[lead.ID] = struct{}{}
		}
	}

	windowStart := now.AddDate(0, 0, -o.cfg.WastedWindowDays)
	var total, wasted int
	for _, a := range snap.Activities {
		if a.CreatedAt.Before(windowStart) {
			continue
		}
		total++
		if _, ok := deadContacts[a.ContactID]; ok {
			wasted++
		}
	}
	if total == 0 {
		return 0
	}
	return math.Round(float64(wasted)/float64(total)*100) / 100
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
