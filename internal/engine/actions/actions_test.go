package actions

import (
	"testing"

	"revenue_radar_backend/internal/engine/dealrank"
	"revenue_radar_backend/internal/engine/domain"
	"revenue_radar_backend/internal/engine/leadscore"
)

func hotLead(id string, score int) domain.LeadScore {
	return domain.LeadScore{LeadID: id, Name: id, Score: score, Tier: leadscore.TierHot, Recommendation: "Prioritize for immediate follow-up"}
}

func TestCategoryOrderPreservedAcrossCounts(t *testing.T) {
	in := Input{
		LeadScores: domain.LeadScoreResult{Leads: []domain.LeadScore{
			hotLead("l1", 92),
			{LeadID: "l2", Name: "l2", Score: 70, Tier: leadscore.TierWarm, Recommendation: "Schedule a follow-up this week"},
		}},
		DealPriorities: domain.DealPriorityResult{Deals: []domain.DealPriority{
			{DealID: "d1", Name: "Rescue me", Value: 40000, Probability: 0.8, ExpectedValue: 32000, Urgency: domain.UrgencyImmediate, Recommendation: dealrank.RecommendRescue},
			{DealID: "d2", Name: "Close me", Value: 20000, Probability: 0.9, ExpectedValue: 18000, Urgency: domain.UrgencyToday, Recommendation: dealrank.RecommendClose},
		}},
		Leaks: domain.LeakResult{Leaks: []domain.Leak{
			{ID: "leak1", Type: domain.LeakStaleOpportunity, Severity: domain.SeverityCritical, Title: "Stale", RecommendedAction: "Fix it", EstimatedRevenue: 50000},
			{ID: "leak2", Type: domain.LeakMissingFollowUp, Severity: domain.SeverityMedium, Title: "Follow up", RecommendedAction: "Touch base", EstimatedRevenue: 5000, RelatedIDs: []string{"d9"}},
		}},
	}

	res := Generate(in, DefaultConfig())

	wantOrder := []string{TypeCallHotLead, TypeRescueDeal, TypeCloseDeal, TypeFixLeak, TypeFollowUp, TypeEngageWarm}
	if len(res.Actions) != len(wantOrder) {
		t.Fatalf("actions = %d, want %d", len(res.Actions), len(wantOrder))
	}
	for i, want := range wantOrder {
		if res.Actions[i].Type != want {
			t.Fatalf("position %d = %s, want %s", i, res.Actions[i].Type, want)
		}
	}
	for i := 1; i < len(res.Actions); i++ {
		if res.Actions[i-1].Priority < res.Actions[i].Priority {
			t.Fatal("actions not sorted by priority descending")
		}
	}
	if res.NextBestAction.Type != TypeCallHotLead {
		t.Fatalf("nextBestAction = %s, want hot lead call", res.NextBestAction.Type)
	}
}

func TestPerCategoryLimit(t *testing.T) {
	var leads []domain.LeadScore
	for i := 0; i < 12; i++ {
		leads = append(leads, hotLead(string(rune('a'+i)), 95))
	}

	res := Generate(Input{LeadScores: domain.LeadScoreResult{Leads: leads}}, DefaultConfig())

	if len(res.Actions) != perCategoryLimit {
		t.Fatalf("actions = %d, want capped at %d", len(res.Actions), perCategoryLimit)
	}
	// Within the band, priorities step down without colliding with other bands.
	for i, a := range res.Actions {
		if a.Priority != 99-i {
			t.Fatalf("priority = %d at position %d", a.Priority, i)
		}
	}
}

func TestEmptyInputReturnsSentinel(t *testing.T) {
	res := Generate(Input{}, DefaultConfig())

	if len(res.Actions) != 0 {
		t.Fatalf("actions = %d, want 0", len(res.Actions))
	}
	if res.NextBestAction.Type != TypeNone {
		t.Fatalf("nextBestAction = %s, want sentinel", res.NextBestAction.Type)
	}
	if res.Summary.TotalEstimatedTime != "0 min" {
		t.Fatalf("totalEstimatedTime = %q", res.Summary.TotalEstimatedTime)
	}
}

func TestOnlyCriticalLeaksBecomeFixActions(t *testing.T) {
	in := Input{Leaks: domain.LeakResult{Leaks: []domain.Leak{
		{ID: "leak1", Type: domain.LeakStaleOpportunity, Severity: domain.SeverityHigh, Title: "High only"},
		{ID: "leak2", Type: domain.LeakHighValueAtRisk, Severity: domain.SeverityCritical, Title: "Critical", RecommendedAction: "Escalate"},
	}}}

	res := Generate(in, DefaultConfig())

	if len(res.Actions) != 1 {
		t.Fatalf("actions = %d, want 1", len(res.Actions))
	}
	if res.Actions[0].RelatedID != "leak2" {
		t.Fatalf("relatedId = %s, want the critical leak", res.Actions[0].RelatedID)
	}
}

func TestDurationParsing(t *testing.T) {
	cases := map[string]int{
		"10 min":  10,
		"1 hour":  60,
		"1h 30m":  90,
		"45min":   45,
		"2 hours": 120,
		"":        0,
		"later":   0,
	}
	for in, want := range cases {
		if got := parseMinutes(in); got != want {
			t.Fatalf("parseMinutes(%q) = %d, want %d", in, got, want)
		}
	}
}

func TestTotalTimeFormatting(t *testing.T) {
	if got := formatMinutes(45); got != "45 min" {
		t.Fatalf("formatMinutes(45) = %q", got)
	}
	if got := formatMinutes(135); got != "2h 15m" {
		t.Fatalf("formatMinutes(135) = %q", got)
	}
	if got := formatMinutes(120); got != "2h 0m" {
		t.Fatalf("formatMinutes(120) = %q", got)
	}
}

func TestSummaryAggregatesRevenueAndTime(t *testing.T) {
	in := Input{
		DealPriorities: domain.DealPriorityResult{Deals: []domain.DealPriority{
			{DealID: "d1", Name: "A", Value: 10000, Probability: 0.8, ExpectedValue: 8000, Urgency: domain.UrgencyImmediate, Recommendation: dealrank.RecommendRescue},
			{DealID: "d2", Name: "B", Value: 10000, Probability: 0.9, ExpectedValue: 9000, Urgency: domain.UrgencyToday, Recommendation: dealrank.RecommendClose},
		}},
	}

	res := Generate(in, DefaultConfig())

	if res.Summary.TotalEstimatedRevenue != 17000 {
		t.Fatalf("totalEstimatedRevenue = %v, want 17000", res.Summary.TotalEstimatedRevenue)
	}
	// 30 min rescue + 1 hour close.
	if res.Summary.TotalEstimatedTime != "1h 30m" {
		t.Fatalf("totalEstimatedTime = %q, want 1h 30m", res.Summary.TotalEstimatedTime)
	}
}
