// Package actions turns the analysis outputs into a single ordered to-do
// list. Every action category owns a fixed priority band, so sorting by
// priority descending always reproduces the category order no matter how many
// items each category contributed.
package actions

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"revenue_radar_backend/internal/engine/dealrank"
	"revenue_radar_backend/internal/engine/domain"
	"revenue_radar_backend/internal/engine/leadscore"
)

// Action type labels.
const (
	TypeCallHotLead  = "call_hot_lead"
	TypeRescueDeal   = "rescue_deal"
	TypeCloseDeal    = "close_deal"
	TypeFixLeak      = "fix_leak"
	TypeFollowUp     = "follow_up"
	TypeEngageWarm   = "engage_warm_lead"
	TypeNone         = "none"
	noActionTitle    = "No action needed"
	noActionDetail   = "Pipeline is healthy; nothing needs immediate attention."
	bandWidth        = 10
	perCategoryLimit = 5
)

// Config parametrizes action generation. Bands are the top priority of each
// category; items within a category count down from there.
type Config struct {
	HotLeadBand      int `yaml:"hotLeadBand"`
	RescueBand       int `yaml:"rescueBand"`
	CloseBand        int `yaml:"closeBand"`
	CriticalLeakBand int `yaml:"criticalLeakBand"`
	FollowUpBand     int `yaml:"followUpBand"`
	WarmLeadBand     int `yaml:"warmLeadBand"`
	PerCategoryLimit int `yaml:"perCategoryLimit"`
}

// DefaultConfig returns the stock priority bands.
func DefaultConfig() Config {
	return Config{
		HotLeadBand:      99,
		RescueBand:       89,
		CloseBand:        79,
		CriticalLeakBand: 69,
		FollowUpBand:     59,
		WarmLeadBand:     49,
		PerCategoryLimit: perCategoryLimit,
	}
}

// Input bundles the upstream analysis results the recommender consumes.
type Input struct {
	LeadScores     domain.LeadScoreResult
	DealPriorities domain.DealPriorityResult
	Leaks          domain.LeakResult
}

// Generate builds the recommended action list, sorted by priority descending.
func Generate(in Input, cfg Config) domain.ActionResult {
	limit := cfg.PerCategoryLimit
	if limit <= 0 || limit > bandWidth {
		limit = perCategoryLimit
	}

	var out []domain.Action
	out = append(out, hotLeadActions(in.LeadScores, cfg.HotLeadBand, limit)...)
	out = append(out, dealActions(in.DealPriorities, dealrank.RecommendRescue, TypeRescueDeal, cfg.RescueBand, limit)...)
	out = append(out, dealActions(in.DealPriorities, dealrank.RecommendClose, TypeCloseDeal, cfg.CloseBand, limit)...)
	out = append(out, leakActions(in.Leaks, cfg.CriticalLeakBand, limit)...)
	out = append(out, followUpActions(in.Leaks, cfg.FollowUpBand, limit)...)
	out = append(out, warmLeadActions(in.LeadScores, cfg.WarmLeadBand, limit)...)

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Priority > out[j].Priority
	})

	byUrgency := make(map[domain.Urgency][]domain.Action)
	var totalRevenue float64
	var totalMinutes int
	for _, a := range out {
		byUrgency[a.Urgency] = append(byUrgency[a.Urgency], a)
		totalRevenue += a.EstimatedRevenue
		totalMinutes += parseMinutes(a.EstimatedTime)
	}

	next := noAction()
	if len(out) > 0 {
		next = out[0]
	}

	return domain.ActionResult{
		Actions:        out,
		NextBestAction: next,
		ByUrgency:      byUrgency,
		Summary: domain.ActionSummary{
			Total:                 len(out),
			TotalEstimatedRevenue: totalRevenue,
			TotalEstimatedTime:    formatMinutes(totalMinutes),
		},
	}
}

func hotLeadActions(scores domain.LeadScoreResult, band, limit int) []domain.Action {
	var out []domain.Action
	for _, s := range scores.Leads {
		if s.Tier != leadscore.TierHot || len(out) >= limit {
			continue
		}
		out = append(out, domain.Action{
			ID:            fmt.Sprintf("action_call_%s", s.LeadID),
			Type:          TypeCallHotLead,
			Priority:      band - len(out),
			Urgency:       domain.UrgencyImmediate,
			Title:         fmt.Sprintf("Call %s", s.Name),
			Description:   fmt.Sprintf("Hot lead scoring %d/100. %s.", s.Score, s.Recommendation),
			EstimatedTime: "10 min",
			RelatedID:     s.LeadID,
		})
	}
	return out
}

func dealActions(deals domain.DealPriorityResult, recommendation, actionType string, band, limit int) []domain.Action {
	verb := "Rescue"
	estTime := "30 min"
	if actionType == TypeCloseDeal {
		verb = "Push to close"
		estTime = "1 hour"
	}

	var out []domain.Action
	for _, d := range deals.Deals {
		if d.Recommendation != recommendation || len(out) >= limit {
			continue
		}
		out = append(out, domain.Action{
			ID:               fmt.Sprintf("action_%s_%s", recommendation, d.DealID),
			Type:             actionType,
			Priority:         band - len(out),
			Urgency:          d.Urgency,
			Title:            fmt.Sprintf("%s %q", verb, d.Name),
			Description:      fmt.Sprintf("Deal worth $%.0f at %.0f%% probability, priority %d/100.", d.Value, d.Probability*100, d.Score),
			EstimatedRevenue: d.ExpectedValue,
			EstimatedTime:    estTime,
			RelatedID:        d.DealID,
		})
	}
	return out
}

func leakActions(leaks domain.LeakResult, band, limit int) []domain.Action {
	var out []domain.Action
	for _, l := range leaks.Leaks {
		if l.Severity != domain.SeverityCritical || len(out) >= limit {
			continue
		}
		out = append(out, domain.Action{
			ID:               fmt.Sprintf("action_fix_%s", l.ID),
			Type:             TypeFixLeak,
			Priority:         band - len(out),
			Urgency:          domain.UrgencyToday,
			Title:            l.Title,
			Description:      l.RecommendedAction,
			EstimatedRevenue: l.EstimatedRevenue,
			EstimatedTime:    "30 min",
			RelatedID:        l.ID,
		})
	}
	return out
}

// followUpActions sources from follow-up leaks rather than re-deriving the
// deals; the detector already did the date math.
func followUpActions(leaks domain.LeakResult, band, limit int) []domain.Action {
	var out []domain.Action
	for _, l := range leaks.Leaks {
		if l.Type != domain.LeakMissingFollowUp || len(out) >= limit {
			continue
		}
		out = append(out, domain.Action{
			ID:               fmt.Sprintf("action_followup_%s", firstOr(l.RelatedIDs, l.ID)),
			Type:             TypeFollowUp,
			Priority:         band - len(out),
			Urgency:          domain.UrgencyThisWeek,
			Title:            l.Title,
			Description:      l.RecommendedAction,
			EstimatedRevenue: l.EstimatedRevenue,
			EstimatedTime:    "15 min",
			RelatedID:        firstOr(l.RelatedIDs, ""),
		})
	}
	return out
}

func warmLeadActions(scores domain.LeadScoreResult, band, limit int) []domain.Action {
	var out []domain.Action
	for _, s := range scores.Leads {
		if s.Tier != leadscore.TierWarm || len(out) >= limit {
			continue
		}
		out = append(out, domain.Action{
			ID:            fmt.Sprintf("action_engage_%s", s.LeadID),
			Type:          TypeEngageWarm,
			Priority:      band - len(out),
			Urgency:       domain.UrgencyScheduled,
			Title:         fmt.Sprintf("Engage %s", s.Name),
			Description:   fmt.Sprintf("Warm lead scoring %d/100. %s.", s.Score, s.Recommendation),
			EstimatedTime: "10 min",
			RelatedID:     s.LeadID,
		})
	}
	return out
}

func noAction() domain.Action {
	return domain.Action{
		ID:          "action_none",
		Type:        TypeNone,
		Urgency:     domain.UrgencyScheduled,
		Title:       noActionTitle,
		Description: noActionDetail,
	}
}

func firstOr(ids []string, fallback string) string {
	if len(ids) > 0 {
		return ids[0]
	}
	return fallback
}

var durationPattern = regexp.MustCompile(`(\d+)\s*(hour|hr|h|minute|min|m)`)

// parseMinutes extracts a minute count from loose duration text like
// "10 min", "1 hour" or "1h 30m". Unparsable text counts as zero.
func parseMinutes(s string) int {
	total := 0
	for _, m := range durationPattern.FindAllStringSubmatch(strings.ToLower(s), -1) {
		n, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		if strings.HasPrefix(m[2], "h") {
			total += n * 60
		} else {
			total += n
		}
	}
	return total
}

// formatMinutes renders a total as "N min" under an hour, "Xh Ym" above.
func formatMinutes(total int) string {
	if total < 60 {
		return fmt.Sprintf("%d min", total)
	}
	return fmt.Sprintf("%dh %dm", total/60, total%60)
}
