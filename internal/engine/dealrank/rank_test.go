package dealrank

import (
	"testing"
	"time"

	"revenue_radar_backend/internal/engine/domain"
)

var testNow = time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)

func daysAgo(d int) time.Time {
	return testNow.AddDate(0, 0, -d)
}

func openDeal(id string, value float64, stage string, updatedDaysAgo int) domain.Opportunity {
	return domain.Opportunity{
		ID:        id,
		Name:      "Deal " + id,
		Value:     value,
		Status:    domain.DealStatusOpen,
		Stage:     stage,
		CreatedAt: daysAgo(updatedDaysAgo + 10),
		UpdatedAt: daysAgo(updatedDaysAgo),
	}
}

func TestOnlyOpenDealsRanked(t *testing.T) {
	deals := []domain.Opportunity{
		openDeal("d1", 10000, "proposal", 2),
		{ID: "d2", Value: 50000, Status: domain.DealStatusWon, CreatedAt: daysAgo(30), UpdatedAt: daysAgo(1)},
		{ID: "d3", Value: 20000, Status: domain.DealStatusLost, CreatedAt: daysAgo(30), UpdatedAt: daysAgo(1)},
		{ID: "d4", Value: 20000, Status: domain.DealStatusAbandoned, CreatedAt: daysAgo(30), UpdatedAt: daysAgo(1)},
	}

	res := Rank(deals, nil, testNow, DefaultConfig())

	if len(res.Deals) != 1 {
		t.Fatalf("ranked %d deals, want 1", len(res.Deals))
	}
	if res.Deals[0].DealID != "d1" {
		t.Fatalf("ranked deal = %s", res.Deals[0].DealID)
	}
	if res.Summary.OpenDeals != 1 {
		t.Fatalf("openDeals = %d", res.Summary.OpenDeals)
	}
}

func TestExpectedValueNeverExceedsValue(t *testing.T) {
	deals := []domain.Opportunity{
		openDeal("d1", 80000, "contract sent", 1),
		openDeal("d2", 5000, "new lead", 3),
		openDeal("d3", 12000, "something exotic", 2),
	}

	res := Rank(deals, nil, testNow, DefaultConfig())

	for _, d := range res.Deals {
		if d.ExpectedValue > d.Value {
			t.Fatalf("deal %s expectedValue %v > value %v", d.DealID, d.ExpectedValue, d.Value)
		}
		if d.Probability <= 0 || d.Probability > 1 {
			t.Fatalf("deal %s probability %v out of range", d.DealID, d.Probability)
		}
	}
}

func TestUnknownStageGetsDefaultProbability(t *testing.T) {
	cfg := DefaultConfig()
	res := Rank([]domain.Opportunity{openDeal("d1", 1000, "mystery stage", 1)}, nil, testNow, cfg)

	if got := res.Deals[0].Probability; got != cfg.DefaultProbability {
		t.Fatalf("probability = %v, want default %v", got, cfg.DefaultProbability)
	}
}

func TestRescueWinsOverClose(t *testing.T) {
	// High probability AND high risk: rescue must win the decision table.
	deal := openDeal("d1", 60000, "contract review", 45)

	res := Rank([]domain.Opportunity{deal}, nil, testNow, DefaultConfig())

	got := res.Deals[0]
	if got.Recommendation != RecommendRescue {
		t.Fatalf("recommendation = %s, want rescue", got.Recommendation)
	}
	if got.Urgency != domain.UrgencyImmediate {
		t.Fatalf("urgency = %s, want IMMEDIATE", got.Urgency)
	}
	if !got.NeedsAttention {
		t.Fatal("high-value stalled deal must need attention")
	}
}

func TestCloseRecommendationForActiveLateStageDeal(t *testing.T) {
	deal := openDeal("d1", 30000, "negotiation", 0)
	acts := []domain.Activity{
		{ID: "a1", DealID: "d1", Type: domain.ActivityMeeting, CreatedAt: daysAgo(1)},
		{ID: "a2", DealID: "d1", Type: domain.ActivityCall, CreatedAt: daysAgo(2)},
		{ID: "a3", DealID: "d1", Type: domain.ActivityEmail, CreatedAt: daysAgo(3)},
	}

	res := Rank([]domain.Opportunity{deal}, acts, testNow, DefaultConfig())

	if got := res.Deals[0].Recommendation; got != RecommendClose {
		t.Fatalf("recommendation = %s, want close", got)
	}
}

func TestContactActivitiesCountForDeal(t *testing.T) {
	deal := openDeal("d1", 10000, "proposal", 20)
	deal.ContactID = "c1"
	acts := []domain.Activity{
		{ID: "a1", ContactID: "c1", Type: domain.ActivityCall, CreatedAt: daysAgo(1)},
	}

	withActs := Rank([]domain.Opportunity{deal}, acts, testNow, DefaultConfig())
	withoutActs := Rank([]domain.Opportunity{deal}, nil, testNow, DefaultConfig())

	if withActs.Deals[0].Score <= withoutActs.Deals[0].Score {
		t.Fatal("contact-linked activity should raise the deal score")
	}
}

func TestRanksSequentialAndSorted(t *testing.T) {
	deals := []domain.Opportunity{
		openDeal("d1", 500, "new", 40),
		openDeal("d2", 120000, "negotiation", 1),
		openDeal("d3", 15000, "demo", 5),
	}

	res := Rank(deals, nil, testNow, DefaultConfig())

	for i, d := range res.Deals {
		if d.Rank != i+1 {
			t.Fatalf("rank = %d at position %d", d.Rank, i)
		}
		if i > 0 && res.Deals[i-1].Score < d.Score {
			t.Fatal("deals not sorted by score descending")
		}
	}
	if res.Deals[0].DealID != "d2" {
		t.Fatalf("top deal = %s, want d2", res.Deals[0].DealID)
	}
}

func TestTiesKeepInputOrder(t *testing.T) {
	deals := []domain.Opportunity{
		openDeal("first", 5000, "proposal", 2),
		openDeal("second", 5000, "proposal", 2),
	}

	res := Rank(deals, nil, testNow, DefaultConfig())

	if res.Deals[0].DealID != "first" || res.Deals[1].DealID != "second" {
		t.Fatalf("tie order = %s, %s", res.Deals[0].DealID, res.Deals[1].DealID)
	}
}

func TestVelocityStepsComeFromConfig(t *testing.T) {
	deal := openDeal("d1", 10000, "proposal", 0)
	acts := []domain.Activity{
		{ID: "a1", DealID: "d1", Type: domain.ActivityCall, CreatedAt: daysAgo(1)},
	}

	base := DefaultConfig()
	muted := DefaultConfig()
	muted.RecencySteps = nil
	muted.WindowTouchSteps = nil
	muted.StageAdvanceBonus = 0

	withVelocity := Rank([]domain.Opportunity{deal}, acts, testNow, base)
	withoutVelocity := Rank([]domain.Opportunity{deal}, acts, testNow, muted)

	if withVelocity.Deals[0].Breakdown["velocity"] <= withoutVelocity.Deals[0].Breakdown["velocity"] {
		t.Fatal("zeroing the velocity steps in config must lower the velocity score")
	}
	if withoutVelocity.Deals[0].Breakdown["velocity"] != 0 {
		t.Fatalf("velocity = %v, want 0 with all steps removed", withoutVelocity.Deals[0].Breakdown["velocity"])
	}
}

func TestEffortStepsComeFromConfig(t *testing.T) {
	deal := openDeal("d1", 10000, "negotiation", 1)

	boosted := DefaultConfig()
	boosted.EffortStageSteps = []ProbabilityStep{{Min: 0, Points: 40}}

	res := Rank([]domain.Opportunity{deal}, nil, testNow, boosted)

	// 40 points exceeds the effort budget, so the cap must hold.
	if got := res.Deals[0].Breakdown["effort"]; got != boosted.Weights.Effort {
		t.Fatalf("effort = %v, want budget cap %v", got, boosted.Weights.Effort)
	}
}

func TestTierBoundsComeFromConfig(t *testing.T) {
	deal := openDeal("d1", 120000, "negotiation", 1)

	strict := DefaultConfig()
	strict.Tiers = TierBounds{Critical: 101, High: 101, Medium: 101}

	res := Rank([]domain.Opportunity{deal}, nil, testNow, strict)

	if res.Summary.TierCounts[tierLow] != 1 {
		t.Fatalf("tierCounts = %v, want the deal in LOW with unreachable bounds", res.Summary.TierCounts)
	}

	lax := DefaultConfig()
	lax.Tiers = TierBounds{Critical: 0, High: 0, Medium: 0}

	res = Rank([]domain.Opportunity{deal}, nil, testNow, lax)
	if res.Summary.TierCounts[tierCritical] != 1 {
		t.Fatalf("tierCounts = %v, want the deal in CRITICAL with zero bounds", res.Summary.TierCounts)
	}
}

func TestEngagementBonusesComeFromConfig(t *testing.T) {
	deal := openDeal("d1", 10000, "mystery stage", 1)
	acts := []domain.Activity{
		{ID: "a1", DealID: "d1", PerformedBy: "r1", Type: domain.ActivityCall, CreatedAt: daysAgo(1)},
		{ID: "a2", DealID: "d1", PerformedBy: "r2", Type: domain.ActivityEmail, CreatedAt: daysAgo(2)},
	}

	base := DefaultConfig()
	muted := DefaultConfig()
	muted.Engagement.MultiPerformerBonus = 0

	with := Rank([]domain.Opportunity{deal}, acts, testNow, base)
	without := Rank([]domain.Opportunity{deal}, acts, testNow, muted)

	if with.Deals[0].Breakdown["stage"] <= without.Deals[0].Breakdown["stage"] {
		t.Fatal("zeroing the multi-performer bonus must lower the stage score")
	}
}

func TestSummaryPipelineValues(t *testing.T) {
	deals := []domain.Opportunity{
		openDeal("d1", 10000, "negotiation", 1), // 0.8 probability
		openDeal("d2", 5000, "mystery", 1),      // 0.3 default
	}

	res := Rank(deals, nil, testNow, DefaultConfig())

	if res.Summary.TotalPipelineValue != 15000 {
		t.Fatalf("totalPipelineValue = %v", res.Summary.TotalPipelineValue)
	}
	if res.Summary.WeightedPipelineValue != 9500 {
		t.Fatalf("weightedPipelineValue = %v, want 9500", res.Summary.WeightedPipelineValue)
	}
}
