package repkpi

import (
	"testing"
	"time"

	"revenue_radar_backend/internal/engine/domain"
)

var testNow = time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)

func daysAgo(d int) time.Time {
	return testNow.AddDate(0, 0, -d)
}

func TestWinRateRounding(t *testing.T) {
	snap := domain.Snapshot{
		Reps: []domain.Rep{{ID: "r1", Name: "Rivera", Active: true}},
		Opportunities: []domain.Opportunity{
			{ID: "d1", Value: 10000, Status: domain.DealStatusWon, AssignedTo: "r1", CreatedAt: daysAgo(30), UpdatedAt: daysAgo(5)},
			{ID: "d2", Value: 6000, Status: domain.DealStatusWon, AssignedTo: "r1", CreatedAt: daysAgo(30), UpdatedAt: daysAgo(5)},
			{ID: "d3", Value: 4000, Status: domain.DealStatusLost, AssignedTo: "r1", CreatedAt: daysAgo(30), UpdatedAt: daysAgo(5)},
		},
	}

	kpis := Calculate(snap, testNow)

	if len(kpis) != 1 {
		t.Fatalf("kpis = %d, want 1", len(kpis))
	}
	got := kpis[0]
	if got.WinRate != 66.7 {
		t.Fatalf("winRate = %v, want 66.7", got.WinRate)
	}
	if got.TotalRevenue != 16000 {
		t.Fatalf("totalRevenue = %v, want 16000", got.TotalRevenue)
	}
	if got.AvgDealSize != 8000 {
		t.Fatalf("avgDealSize = %v, want 8000", got.AvgDealSize)
	}
}

func TestRepWithNoDataGetsZeroRow(t *testing.T) {
	snap := domain.Snapshot{
		Reps: []domain.Rep{{ID: "r1", Name: "New Hire", Active: true}},
	}

	kpis := Calculate(snap, testNow)

	got := kpis[0]
	if got.WinRate != 0 || got.AvgDealSize != 0 || got.TotalActivities != 0 {
		t.Fatalf("expected zero row, got %+v", got)
	}
}

func TestActivityWindowAndTypeCounts(t *testing.T) {
	snap := domain.Snapshot{
		Reps: []domain.Rep{{ID: "r1", Name: "Kim", Active: true}},
		Activities: []domain.Activity{
			{ID: "a1", Type: domain.ActivityCall, PerformedBy: "r1", CreatedAt: daysAgo(2)},
			{ID: "a2", Type: domain.ActivityCall, PerformedBy: "r1", CreatedAt: daysAgo(3)},
			{ID: "a3", Type: domain.ActivityEmail, PerformedBy: "r1", CreatedAt: daysAgo(20)},
			{ID: "a4", Type: domain.ActivityMeeting, PerformedBy: "other", CreatedAt: daysAgo(1)},
		},
	}

	kpis := Calculate(snap, testNow)

	got := kpis[0]
	if got.TotalActivities != 3 {
		t.Fatalf("totalActivities = %d, want 3", got.TotalActivities)
	}
	if got.ActivitiesLast7Days != 2 {
		t.Fatalf("activitiesLast7Days = %d, want 2", got.ActivitiesLast7Days)
	}
	if got.ActivitiesByType[domain.ActivityCall] != 2 {
		t.Fatalf("calls = %d, want 2", got.ActivitiesByType[domain.ActivityCall])
	}
}

func TestOpenPipelineSeparateFromRevenue(t *testing.T) {
	snap := domain.Snapshot{
		Reps: []domain.Rep{{ID: "r1", Name: "Osei", Active: true}},
		Opportunities: []domain.Opportunity{
			{ID: "d1", Value: 20000, Status: domain.DealStatusOpen, AssignedTo: "r1", CreatedAt: daysAgo(10), UpdatedAt: daysAgo(1)},
			{ID: "d2", Value: 5000, Status: domain.DealStatusWon, AssignedTo: "r1", CreatedAt: daysAgo(10), UpdatedAt: daysAgo(1)},
			{ID: "d3", Value: 7000, Status: domain.DealStatusAbandoned, AssignedTo: "r1", CreatedAt: daysAgo(10), UpdatedAt: daysAgo(1)},
		},
	}

	kpis := Calculate(snap, testNow)

	got := kpis[0]
	if got.PipelineValue != 20000 {
		t.Fatalf("pipelineValue = %v, want 20000", got.PipelineValue)
	}
	if got.TotalRevenue != 5000 {
		t.Fatalf("totalRevenue = %v, want 5000", got.TotalRevenue)
	}
	if got.OpenDeals != 1 || got.WonDeals != 1 || got.LostDeals != 0 {
		t.Fatalf("deal counts = %d/%d/%d", got.OpenDeals, got.WonDeals, got.LostDeals)
	}
}

func TestRepsKeepInputOrder(t *testing.T) {
	snap := domain.Snapshot{
		Reps: []domain.Rep{
			{ID: "b", Name: "Second", Active: true},
			{ID: "a", Name: "First", Active: true},
		},
	}

	kpis := Calculate(snap, testNow)

	if kpis[0].RepID != "b" || kpis[1].RepID != "a" {
		t.Fatalf("order = %s, %s; want input order", kpis[0].RepID, kpis[1].RepID)
	}
}
