// Package dealrank orders open deals by where attention pays off most. Each
// deal gets weighted factor scores for value, stage progress, momentum,
// staleness risk and invested effort, plus an urgency bucket and a single
// recommendation. Like the rest of the engine it is pure and clock-free: the
// caller supplies the reference time.
package dealrank

import (
	"math"
	"sort"
	"strings"
	"time"

	"revenue_radar_backend/internal/engine/domain"
)

// Recommendation values, listed in decision order. When several conditions
// hold, the earlier one wins: a deal at risk is rescued before it is closed.
const (
	RecommendRescue     = "rescue"
	RecommendAccelerate = "accelerate"
	RecommendClose      = "close"
	RecommendAdvance    = "advance"
)

// Priority tier labels used in the summary distribution.
const (
	tierCritical = "CRITICAL"
	tierHigh     = "HIGH"
	tierMedium   = "MEDIUM"
	tierLow      = "LOW"
)

// Rank scores all open deals and returns them sorted by score descending,
// ties keeping input order. Non-open deals are excluded entirely.
func Rank(deals []domain.Opportunity, activities []domain.Activity, now time.Time, cfg Config) domain.DealPriorityResult {
	byDeal := GroupByDeal(deals, activities)

	ranked := make([]domain.DealPriority, 0, len(deals))
	var sum, totalValue, weightedValue float64
	attention := 0
	for _, deal := range deals {
		if deal.Status != domain.DealStatusOpen {
			continue
		}
		p := rankDeal(deal, byDeal[deal.ID], now, cfg)
		sum += float64(p.Score)
		totalValue += p.Value
		weightedValue += p.ExpectedValue
		if p.NeedsAttention {
			attention++
		}
		ranked = append(ranked, p)
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})

	tierCounts := map[string]int{tierCritical: 0, tierHigh: 0, tierMedium: 0, tierLow: 0}
	for i := range ranked {
		ranked[i].Rank = i + 1
		tierCounts[priorityTier(ranked[i].Score, cfg.Tiers)]++
	}

	mean := 0.0
	if len(ranked) > 0 {
		mean = round1(sum / float64(len(ranked)))
	}

	return domain.DealPriorityResult{
		Deals: ranked,
		Summary: domain.DealPrioritySummary{
			OpenDeals:             len(ranked),
			TotalPipelineValue:    totalValue,
			WeightedPipelineValue: math.Round(weightedValue*100) / 100,
			TierCounts:            tierCounts,
			NeedsAttention:        attention,
			MeanScore:             mean,
		},
	}
}

func rankDeal(deal domain.Opportunity, acts []domain.Activity, now time.Time, cfg Config) domain.DealPriority {
	probability := stageProbability(deal.Stage, cfg)

	valueScore := valueScore(deal.Value, cfg)
	stageScore := stageScore(probability, acts, cfg)
	velocityScore := velocityScore(deal, acts, now, cfg)
	risk := riskLevel(deal, acts, now, cfg)
	riskScore := cfg.Weights.Risk * (1 - risk/100)
	effortScore := effortScore(probability, acts, cfg)

	total := clampScore(valueScore + stageScore + velocityScore + riskScore + effortScore)

	return domain.DealPriority{
		DealID:         deal.ID,
		Name:           deal.Name,
		Score:          total,
		Value:          deal.Value,
		Probability:    probability,
		ExpectedValue:  math.Round(deal.Value*probability*100) / 100,
		Urgency:        urgency(risk, velocityScore, cfg),
		Recommendation: recommend(risk, velocityScore, probability, cfg),
		Breakdown: map[string]float64{
			"value":    round1(valueScore),
			"stage":    round1(stageScore),
			"velocity": round1(velocityScore),
			"risk":     round1(riskScore),
			"effort":   round1(effortScore),
		},
		NeedsAttention: deal.Value >= cfg.HighValueThreshold && risk >= cfg.AttentionRisk,
	}
}

// GroupByDeal associates activities with deals, first by explicit deal id,
// then through the deal's contact. An activity on a contact with several
// deals counts toward each of them; momentum on the contact is momentum on
// every conversation with that contact.
func GroupByDeal(deals []domain.Opportunity, activities []domain.Activity) map[string][]domain.Activity {
	dealIDs := make(map[string]struct{}, len(deals))
	byContact := make(map[string][]string)
	for _, d := range deals {
		dealIDs[d.ID] = struct{}{}
		if d.ContactID != "" {
			byContact[d.ContactID] = append(byContact[d.ContactID], d.ID)
		}
	}

	grouped := make(map[string][]domain.Activity)
	for _, a := range activities {
		if a.DealID != "" {
			if _, ok := dealIDs[a.DealID]; ok {
				grouped[a.DealID] = append(grouped[a.DealID], a)
				continue
			}
		}
		for _, dealID := range byContact[a.ContactID] {
			grouped[dealID] = append(grouped[dealID], a)
		}
	}
	return grouped
}

func valueScore(value float64, cfg Config) float64 {
	for _, step := range cfg.ValueSteps {
		if value >= step.Min {
			return step.Points
		}
	}
	return 0
}

func stageProbability(stage string, cfg Config) float64 {
	lowered := strings.ToLower(stage)
	for _, rule := range cfg.StageRules {
		if containsAny(lowered, rule.Keywords) {
			return rule.Probability
		}
	}
	return cfg.DefaultProbability
}

// stageScore scales the close probability into the stage budget with small
// engagement bonuses: more than one person involved, or a deep activity
// trail, both signal a real evaluation rather than a parked deal.
func stageScore(probability float64, acts []domain.Activity, cfg Config) float64 {
	score := probability * cfg.Weights.Stage

	performers := make(map[string]struct{})
	for _, a := range acts {
		if a.PerformedBy != "" {
			performers[a.PerformedBy] = struct{}{}
		}
	}
	if len(performers) >= cfg.Engagement.MultiPerformerCount {
		score += cfg.Engagement.MultiPerformerBonus
	}
	if len(acts) >= cfg.Engagement.DeepTrailCount {
		score += cfg.Engagement.DeepTrailBonus
	}
	return math.Min(score, cfg.Weights.Stage)
}

// velocityScore measures recent momentum inside the velocity window: how
// fresh the last touch is, how many touches landed in the window, and
// whether the deal recently advanced a stage.
func velocityScore(deal domain.Opportunity, acts []domain.Activity, now time.Time, cfg Config) float64 {
	var score float64

	if last, ok := lastActivityAt(acts); ok {
		days := daysBetween(last, now)
		for _, step := range cfg.RecencySteps {
			if days <= step.MaxDays {
				score += step.Points
				break
			}
		}
	}

	windowStart := now.AddDate(0, 0, -cfg.VelocityWindowDays)
	inWindow := 0
	for _, a := range acts {
		if !a.CreatedAt.Before(windowStart) {
			inWindow++
		}
	}
	for _, step := range cfg.WindowTouchSteps {
		if inWindow >= step.Min {
			score += step.Points
			break
		}
	}

	if deal.StageChangedAt != nil && !deal.StageChangedAt.Before(windowStart) {
		score += cfg.StageAdvanceBonus
	}

	return math.Min(score, cfg.Weights.Velocity)
}

// riskLevel grades staleness on a 0-100 scale from days since the last
// touch, falling back to the deal's update time when it has no activities.
// High-value deals stuck in one stage get an extra bump: the cost of letting
// them rot is disproportionate.
func riskLevel(deal domain.Opportunity, acts []domain.Activity, now time.Time, cfg Config) float64 {
	ref := deal.UpdatedAt
	if ref.IsZero() {
		ref = deal.CreatedAt
	}
	if last, ok := lastActivityAt(acts); ok && last.After(ref) {
		ref = last
	}

	days := daysBetween(ref, now)
	var risk float64
	for _, step := range cfg.RiskSteps {
		if days >= step.MinDays {
			risk = step.Risk
			break
		}
	}

	if deal.Value >= cfg.HighValueThreshold && deal.StageChangedAt != nil {
		if daysBetween(*deal.StageChangedAt, now) >= cfg.StalledStageDays {
			risk += cfg.HighValueRiskBonus
		}
	}

	return math.Min(risk, 100)
}

// effortScore rewards sunk effort and pipeline depth: the further along a
// deal is and the more work already invested, the more an extra push yields.
func effortScore(probability float64, acts []domain.Activity, cfg Config) float64 {
	var score float64
	for _, step := range cfg.EffortTouchSteps {
		if len(acts) >= step.Min {
			score += step.Points
			break
		}
	}

	for _, step := range cfg.EffortStageSteps {
		if probability >= step.Min {
			score += step.Points
			break
		}
	}
	return math.Min(score, cfg.Weights.Effort)
}

func urgency(risk, velocity float64, cfg Config) domain.Urgency {
	switch {
	case risk >= cfg.RiskImmediate:
		return domain.UrgencyImmediate
	case risk >= cfg.RiskToday:
		return domain.UrgencyToday
	case velocity < cfg.VelocityThisWeek:
		return domain.UrgencyThisWeek
	default:
		return domain.UrgencyScheduled
	}
}

func recommend(risk, velocity, probability float64, cfg Config) string {
	switch {
	case risk >= cfg.RiskImmediate:
		return RecommendRescue
	case velocity < cfg.VelocityStalled:
		return RecommendAccelerate
	case probability >= cfg.CloseProbability:
		return RecommendClose
	default:
		return RecommendAdvance
	}
}

func priorityTier(score int, t TierBounds) string {
	switch {
	case score >= t.Critical:
		return tierCritical
	case score >= t.High:
		return tierHigh
	case score >= t.Medium:
		return tierMedium
	default:
		return tierLow
	}
}

func lastActivityAt(acts []domain.Activity) (time.Time, bool) {
	var last time.Time
	for _, a := range acts {
		if a.CreatedAt.After(last) {
			last = a.CreatedAt
		}
	}
	return last, !last.IsZero()
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
