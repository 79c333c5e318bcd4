package insight

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"

	"revenue_radar_backend/internal/engine/domain"
)

var testNow = time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)

func daysAgo(d int) time.Time {
	return testNow.AddDate(0, 0, -d)
}

func healthySnapshot() domain.Snapshot {
	return domain.Snapshot{
		Leads: []domain.Lead{
			{ID: "l1", FirstName: "Ana", Status: domain.LeadStatusContacted, AssignedTo: "r1", Email: "a@x.com", CreatedAt: daysAgo(2)},
		},
		Opportunities: []domain.Opportunity{
			{ID: "d1", Name: "Fresh deal", ContactID: "l1", Value: 8000, Status: domain.DealStatusOpen, AssignedTo: "r1", Stage: "proposal", CreatedAt: daysAgo(10), UpdatedAt: daysAgo(1)},
		},
		Activities: manyActivities("r1", "l1", 12),
		Reps:       []domain.Rep{{ID: "r1", Name: "Rivera", Active: true}},
	}
}

func manyActivities(rep, contact string, n int) []domain.Activity {
	var acts []domain.Activity
	for i := 0; i < n; i++ {
		acts = append(acts, domain.Activity{
			ID: "a", Type: domain.ActivityCall, ContactID: contact,
			PerformedBy: rep, CreatedAt: daysAgo(i % 5),
		})
	}
	return acts
}

func leakySnapshot() domain.Snapshot {
	stale := func(id string, value float64) domain.Opportunity {
		return domain.Opportunity{
			ID: id, Name: id, Value: value, Status: domain.DealStatusOpen,
			CreatedAt: daysAgo(90), UpdatedAt: daysAgo(60),
		}
	}
	lost := func(id string) domain.Opportunity {
		return domain.Opportunity{
			ID: id, Name: id, Value: 4000, Status: domain.DealStatusLost,
			CreatedAt: daysAgo(90), UpdatedAt: daysAgo(30),
		}
	}
	return domain.Snapshot{
		Leads: []domain.Lead{
			{ID: "l1", Status: domain.LeadStatusNew, CreatedAt: daysAgo(15)},
			{ID: "l2", Status: domain.LeadStatusNew, CreatedAt: daysAgo(12)},
		},
		Opportunities: []domain.Opportunity{
			stale("d1", 60000), stale("d2", 55000), stale("d3", 50000), stale("d4", 52000),
			{ID: "x1", Name: "x1", Value: 60000, Status: domain.DealStatusAbandoned, CreatedAt: daysAgo(90), UpdatedAt: daysAgo(30)},
			lost("x2"), lost("x3"), lost("x4"), lost("x5"), lost("x6"),
		},
		Reps: []domain.Rep{{ID: "r1", Name: "Idle", Active: true}},
	}
}

func TestHealthScoreClamped(t *testing.T) {
	o := New(DefaultConfig(), nil, nil)

	report := o.Analyze(context.Background(), leakySnapshot(), testNow, false)

	if report.HealthScore < 0 || report.HealthScore > 100 {
		t.Fatalf("healthScore = %d, out of [0,100]", report.HealthScore)
	}
	if report.HealthScore != 0 {
		t.Fatalf("healthScore = %d, want 0 for a pipeline this broken", report.HealthScore)
	}
}

func TestHealthyPipelineScoresHigh(t *testing.T) {
	o := New(DefaultConfig(), nil, nil)

	report := o.Analyze(context.Background(), healthySnapshot(), testNow, false)

	if report.HealthScore < 90 {
		t.Fatalf("healthScore = %d, want >= 90 for a healthy pipeline", report.HealthScore)
	}
	if len(report.Leaks.Leaks) != 0 {
		t.Fatalf("leaks = %d, want 0", len(report.Leaks.Leaks))
	}
}

func TestAnalyzeDeterministicWithoutAI(t *testing.T) {
	o := New(DefaultConfig(), nil, nil)
	snap := leakySnapshot()

	first := o.Analyze(context.Background(), snap, testNow, false)
	second := o.Analyze(context.Background(), snap, testNow, false)

	if !reflect.DeepEqual(first, second) {
		t.Fatal("analysis must be deterministic for identical inputs")
	}
}

type stubNarrator struct {
	text string
	err  error
}

func (s stubNarrator) Narrate(context.Context, interface{}) (string, error) {
	return s.text, s.err
}

func TestNarrativeAttachedWhenRequested(t *testing.T) {
	o := New(DefaultConfig(), stubNarrator{text: "things are on fire"}, nil)

	report := o.Analyze(context.Background(), leakySnapshot(), testNow, true)

	if report.Leaks.AINarrative != "things are on fire" {
		t.Fatalf("aiNarrative = %q", report.Leaks.AINarrative)
	}
}

func TestNarrativeFailureDegradesToEmpty(t *testing.T) {
	o := New(DefaultConfig(), stubNarrator{err: errors.New("quota exceeded")}, nil)

	report := o.Analyze(context.Background(), leakySnapshot(), testNow, true)

	if report.Leaks.AINarrative != "" {
		t.Fatalf("aiNarrative = %q, want empty on failure", report.Leaks.AINarrative)
	}
	if len(report.Leaks.Leaks) == 0 {
		t.Fatal("analysis must still complete when the narrator fails")
	}
}

func TestNarrativeSkippedWhenNotRequested(t *testing.T) {
	o := New(DefaultConfig(), stubNarrator{text: "should not appear"}, nil)

	report := o.Analyze(context.Background(), leakySnapshot(), testNow, false)

	if report.Leaks.AINarrative != "" {
		t.Fatalf("aiNarrative = %q, want empty when not requested", report.Leaks.AINarrative)
	}
}

func TestQuickReportFields(t *testing.T) {
	o := New(DefaultConfig(), nil, nil)

	q := o.QuickAnalysis(leakySnapshot(), testNow)

	if q.OpenPipelineValue != 217000 {
		t.Fatalf("openPipelineValue = %v, want 217000", q.OpenPipelineValue)
	}
	if q.CriticalLeaks == 0 {
		t.Fatal("expected critical leaks in the leaky snapshot")
	}
	if q.NextBestAction.ID == "" {
		t.Fatal("quick report must carry a next best action")
	}
}

func TestVoiceSummaryMentionsTheNumbers(t *testing.T) {
	o := New(DefaultConfig(), nil, nil)

	v := o.VoiceSummary(leakySnapshot(), testNow)

	if !strings.Contains(v.Text, "out of 100") {
		t.Fatalf("voice text missing health phrase: %q", v.Text)
	}
	if !strings.Contains(v.Text, "critical") {
		t.Fatalf("voice text missing critical leaks: %q", v.Text)
	}

	again := o.VoiceSummary(leakySnapshot(), testNow)
	if v.Text != again.Text {
		t.Fatal("voice summary must be deterministic")
	}
}

func TestWastedEffortRatio(t *testing.T) {
	snap := domain.Snapshot{
		Opportunities: []domain.Opportunity{
			{ID: "d1", ContactID: "dead", Value: 5000, Status: domain.DealStatusLost, CreatedAt: daysAgo(40), UpdatedAt: daysAgo(20)},
		},
		Activities: []domain.Activity{
			{ID: "a1", ContactID: "dead", Type: domain.ActivityCall, CreatedAt: daysAgo(5)},
			{ID: "a2", ContactID: "dead", Type: domain.ActivityEmail, CreatedAt: daysAgo(4)},
			{ID: "a3", ContactID: "alive", Type: domain.ActivityCall, CreatedAt: daysAgo(3)},
			{ID: "a4", ContactID: "alive", Type: domain.ActivityCall, CreatedAt: daysAgo(2)},
			// Outside the 30-day window, must not count.
			{ID: "a5", ContactID: "dead", Type: domain.ActivityCall, CreatedAt: daysAgo(45)},
		},
	}
	o := New(DefaultConfig(), nil, nil)

	report := o.Analyze(context.Background(), snap, testNow, false)

	if report.WastedEffortRatio != 0.5 {
		t.Fatalf("wastedEffortRatio = %v, want 0.5", report.WastedEffortRatio)
	}
}

func TestEmptySnapshotIsPerfectlyHealthy(t *testing.T) {
	o := New(DefaultConfig(), nil, nil)

	report := o.Analyze(context.Background(), domain.Snapshot{}, testNow, false)

	if report.HealthScore != 100 {
		t.Fatalf("healthScore = %d, want 100", report.HealthScore)
	}
	if report.WastedEffortRatio != 0 {
		t.Fatalf("wastedEffortRatio = %v, want 0", report.WastedEffortRatio)
	}
	if report.Actions.NextBestAction.Type != "none" {
		t.Fatalf("nextBestAction = %s, want sentinel", report.Actions.NextBestAction.Type)
	}
}

func TestConfigValidation(t *testing.T) {
	bad := DefaultConfig()
	bad.LeadScoring.Weights.Source = 50
	if err := bad.Validate(); err == nil {
		t.Fatal("weights not summing to 100 must fail validation")
	}

	bad = DefaultConfig()
	bad.Leaks.FollowUpDays = 40
	if err := bad.Validate(); err == nil {
		t.Fatal("followUpDays past staleDays must fail validation")
	}

	if err := DefaultConfig().Validate(); err != nil {
		t.Fatalf("default config must validate: %v", err)
	}
}
