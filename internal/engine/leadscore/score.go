// Package leadscore ranks leads by conversion likelihood using weighted
// factor scores over source quality, engagement depth, touch recency and
// profile completeness. Scoring is pure: the same leads, activities, config
// and reference time always produce the same result.
package leadscore

import (
	"math"
	"sort"
	"strings"
	"time"

	"revenue_radar_backend/internal/engine/domain"
)

// Tier labels, highest first.
const (
	TierHot  = "HOT"
	TierWarm = "WARM"
	TierCool = "COOL"
	TierCold = "COLD"
)

// Score computes scores for all leads and returns them sorted by score
// descending. Ties keep input order, so ranks are stable across runs. The
// reference time now is the only clock the scorer sees.
func Score(leads []domain.Lead, activities []domain.Activity, now time.Time, cfg Config) domain.LeadScoreResult {
	byContact := groupByContact(activities)

	scored := make([]domain.LeadScore, 0, len(leads))
	var sum float64
	for _, lead := range leads {
		s := scoreLead(lead, byContact[lead.ID], now, cfg)
		sum += float64(s.Score)
		scored = append(scored, s)
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	tierCounts := map[string]int{TierHot: 0, TierWarm: 0, TierCool: 0, TierCold: 0}
	for i := range scored {
		scored[i].Rank = i + 1
		tierCounts[scored[i].Tier]++
	}

	mean := 0.0
	if len(scored) > 0 {
		mean = round1(sum / float64(len(scored)))
	}

	return domain.LeadScoreResult{
		Leads: scored,
		Summary: domain.LeadScoreSummary{
			Total:      len(scored),
			TierCounts: tierCounts,
			MeanScore:  mean,
		},
	}
}

func scoreLead(lead domain.Lead, acts []domain.Activity, now time.Time, cfg Config) domain.LeadScore {
	sourceScore, sourceQuality := sourceScore(lead.Source, cfg)
	engagementScore := engagementScore(acts, cfg)
	recencyScore := recencyScore(lead, acts, now, cfg)
	completenessScore := completenessScore(lead, cfg)

	total := clampScore(sourceScore + engagementScore + recencyScore + completenessScore)
	tier := tierFor(total, cfg.Tiers)

	return domain.LeadScore{
		LeadID: lead.ID,
		Name:   lead.Name(),
		Score:  total,
		Tier:   tier,
		Breakdown: map[string]float64{
			"source":       round1(sourceScore),
			"engagement":   round1(engagementScore),
			"recency":      round1(recencyScore),
			"completeness": round1(completenessScore),
		},
		Signals:        signals(lead, acts, sourceQuality, now),
		Recommendation: recommend(tier, engagementScore, completenessScore, sourceQuality, cfg),
	}
}

// sourceScore resolves the lead source against the ordered keyword rules and
// scales the matched quality into the source point budget.
func sourceScore(source string, cfg Config) (score, quality float64) {
	quality = cfg.DefaultQuality
	if source != "" {
		lowered := strings.ToLower(source)
		for _, rule := range cfg.SourceRules {
			if containsAny(lowered, rule.Keywords) {
				quality = rule.Quality
				break
			}
		}
	}
	return quality / 100 * cfg.Weights.Source, quality
}

// engagementScore sums per-activity points capped at the engagement budget.
// Leads with zero activities get the floor rather than zero: an untouched
// lead is unproven, not proven bad.
func engagementScore(acts []domain.Activity, cfg Config) float64 {
	if len(acts) == 0 {
		return cfg.EngagementFloor
	}

	var pts float64
	for _, a := range acts {
		pts += activityPoints(a, cfg.Engagement)
	}
	return math.Min(pts, cfg.Weights.Engagement)
}

func activityPoints(a domain.Activity, p EngagementPoints) float64 {
	// Outcomes arrive pre-lowered from normalization, but activities posted
	// directly to the analysis endpoints skip that path.
	outcome := strings.ToLower(a.Outcome)
	switch a.Type {
	case domain.ActivityMeeting:
		if containsAny(outcome, []string{"completed", "held", "done", "showed"}) {
			return p.MeetingCompleted
		}
		return p.MeetingOther
	case domain.ActivityCall:
		if containsAny(outcome, []string{"connected", "answered", "completed", "interested"}) {
			return p.CallConnected
		}
		return p.CallOther
	case domain.ActivityEmail:
		switch {
		case containsAny(outcome, []string{"replied", "responded"}):
			return p.EmailReplied
		case containsAny(outcome, []string{"opened", "clicked"}):
			return p.EmailOpened
		default:
			return p.EmailOther
		}
	case domain.ActivitySMS:
		return p.SMS
	default:
		return p.Other
	}
}

// recencyScore awards points for how fresh the last touch is, falling back to
// the lead's creation date when no activity exists.
func recencyScore(lead domain.Lead, acts []domain.Activity, now time.Time, cfg Config) float64 {
	ref := lead.CreatedAt
	for _, a := range acts {
		if a.CreatedAt.After(ref) {
			ref = a.CreatedAt
		}
	}

	days := daysBetween(ref, now)
	for _, step := range cfg.RecencySteps {
		if days <= step.MaxDays {
			return step.Points
		}
	}
	return cfg.RecencyFallback
}

func completenessScore(lead domain.Lead, cfg Config) float64 {
	p := cfg.Completeness
	var pts float64
	if lead.Email != "" {
		pts += p.Email
	}
	if lead.Phone != "" {
		pts += p.Phone
	}
	if lead.Company != "" {
		pts += p.Company
	}
	if lead.Title != "" {
		pts += p.Title
	}
	if lead.HasBudget {
		pts += p.Budget
	}
	if lead.HasTimeline {
		pts += p.Timeline
	}
	return math.Min(pts, cfg.Weights.Completeness)
}

func tierFor(score int, bounds TierBounds) string {
	switch {
	case score >= bounds.Hot:
		return TierHot
	case score >= bounds.Warm:
		return TierWarm
	case score >= bounds.Cool:
		return TierCool
	default:
		return TierCold
	}
}

// recommend picks the next-step text from a fixed decision table over tier
// and factor scores. No scoring state is consulted beyond the inputs, which
// keeps recommendations deterministic.
func recommend(tier string, engagement, completeness, sourceQuality float64, cfg Config) string {
	switch tier {
	case TierHot:
		if engagement < cfg.LowEngagementCut {
			return "Call now: strong fit but barely touched"
		}
		return "Prioritize for immediate follow-up"
	case TierWarm:
		if completeness < cfg.Weights.Completeness/2 {
			return "Qualify further and fill in missing contact details"
		}
		return "Schedule a follow-up this week"
	case TierCool:
		return "Add to nurture cadence"
	default:
		if sourceQuality <= 25 {
			return "Deprioritize: low-quality source with weak engagement"
		}
		return "Review for disqualification"
	}
}

func signals(lead domain.Lead, acts []domain.Activity, sourceQuality float64, now time.Time) []string {
	var out []string
	if len(acts) == 0 {
		out = append(out, "no_activity")
	}
	if lead.Status == domain.LeadStatusNew && lead.FirstContactedAt == nil {
		out = append(out, "never_contacted")
	}
	if lead.Email == "" && lead.Phone == "" {
		out = append(out, "missing_contact_info")
	}
	if sourceQuality >= 85 {
		out = append(out, "high_intent_source")
	}
	if lead.HasBudget && lead.HasTimeline {
		out = append(out, "budget_and_timeline")
	}
	if daysBetween(lead.CreatedAt, now) > 30 && len(acts) == 0 {
		out = append(out, "aging_untouched")
	}
	return out
}

func groupByContact(activities []domain.Activity) map[string][]domain.Activity {
	byContact := make(map[string][]domain.Activity)
	for _, a := range activities {
		if a.ContactID == "" {
			continue
		}
		byContact[a.ContactID] = append(byContact[a.ContactID], a)
	}
	return byContact
}

func containsAny(s string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}

func daysBetween(from, to time.Time) int {
	if to.Before(from) {
		return 0
	}
	return int(to.Sub(from).Hours() / 24)
}

// clampScore rounds and clamps a raw score into the 0-100 range.
func clampScore(v float64) int {
	r := int(math.Round(v))
	if r < 0 {
		return 0
	}
	if r > 100 {
		return 100
	}
	return r
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
