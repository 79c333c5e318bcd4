package leakscan

import (
	"reflect"
	"testing"
	"time"

	"revenue_radar_backend/internal/engine/domain"
)

var testNow = time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)

func daysAgo(d int) time.Time {
	return testNow.AddDate(0, 0, -d)
}

func countByType(leaks []domain.Leak, lt domain.LeakType) int {
	n := 0
	for _, l := range leaks {
		if l.Type == lt {
			n++
		}
	}
	return n
}

func findByType(t *testing.T, leaks []domain.Leak, lt domain.LeakType) domain.Leak {
	t.Helper()
	for _, l := range leaks {
		if l.Type == lt {
			return l
		}
	}
	t.Fatalf("no leak of type %s found", lt)
	return domain.Leak{}
}

func TestStaleHighValueDealIsCritical(t *testing.T) {
	snap := domain.Snapshot{
		Opportunities: []domain.Opportunity{{
			ID:        "d1",
			Name:      "Enterprise rollout",
			Value:     50000,
			Status:    domain.DealStatusOpen,
			CreatedAt: daysAgo(60),
			UpdatedAt: daysAgo(60),
		}},
	}

	res := Detect(snap, testNow, DefaultThresholds())

	if got := countByType(res.Leaks, domain.LeakStaleOpportunity); got != 1 {
		t.Fatalf("stale leaks = %d, want exactly 1", got)
	}
	leak := findByType(t, res.Leaks, domain.LeakStaleOpportunity)
	if leak.Severity != domain.SeverityCritical {
		t.Fatalf("severity = %s, want CRITICAL for a $50k deal", leak.Severity)
	}
	if leak.EstimatedRevenue != 50000 {
		t.Fatalf("estimatedRevenue = %v, want 50000", leak.EstimatedRevenue)
	}
}

func TestRecentActivityPreventsStaleLeak(t *testing.T) {
	snap := domain.Snapshot{
		Opportunities: []domain.Opportunity{{
			ID: "d1", Name: "Active deal", Value: 50000,
			Status: domain.DealStatusOpen, CreatedAt: daysAgo(90), UpdatedAt: daysAgo(90),
		}},
		Activities: []domain.Activity{{
			ID: "a1", DealID: "d1", Type: domain.ActivityCall, CreatedAt: daysAgo(2),
		}},
	}

	res := Detect(snap, testNow, DefaultThresholds())

	if got := countByType(res.Leaks, domain.LeakStaleOpportunity); got != 0 {
		t.Fatalf("stale leaks = %d, want 0 when recently touched", got)
	}
}

func TestUntouchedLeadSeverityByAge(t *testing.T) {
	snap := domain.Snapshot{
		Leads: []domain.Lead{
			{ID: "l1", FirstName: "Recent", Status: domain.LeadStatusNew, CreatedAt: daysAgo(3)},
			{ID: "l2", FirstName: "Old", Status: domain.LeadStatusNew, CreatedAt: daysAgo(20)},
			{ID: "l3", FirstName: "Fresh", Status: domain.LeadStatusNew, CreatedAt: testNow.Add(-2 * time.Hour)},
		},
	}

	res := Detect(snap, testNow, DefaultThresholds())

	if got := countByType(res.Leaks, domain.LeakUntouchedLead); got != 2 {
		t.Fatalf("untouched leaks = %d, want 2 (fresh lead inside SLA skipped)", got)
	}
	for _, l := range res.Leaks {
		if l.Type != domain.LeakUntouchedLead {
			continue
		}
		switch l.RelatedIDs[0] {
		case "l1":
			if l.Severity != domain.SeverityMedium {
				t.Fatalf("3-day lead severity = %s, want MEDIUM", l.Severity)
			}
		case "l2":
			if l.Severity != domain.SeverityHigh {
				t.Fatalf("20-day lead severity = %s, want HIGH", l.Severity)
			}
		}
	}
}

func TestContactedLeadNotUntouched(t *testing.T) {
	contacted := daysAgo(2)
	snap := domain.Snapshot{
		Leads: []domain.Lead{{
			ID: "l1", Status: domain.LeadStatusNew,
			CreatedAt: daysAgo(5), FirstContactedAt: &contacted,
		}},
	}

	res := Detect(snap, testNow, DefaultThresholds())

	if got := countByType(res.Leaks, domain.LeakUntouchedLead); got != 0 {
		t.Fatalf("untouched leaks = %d, want 0", got)
	}
}

func TestUnassignedLeadsAggregate(t *testing.T) {
	snap := domain.Snapshot{
		Leads: []domain.Lead{
			{ID: "l1", Status: domain.LeadStatusContacted, CreatedAt: daysAgo(3)},
			{ID: "l2", Status: domain.LeadStatusQualified, CreatedAt: daysAgo(3)},
			{ID: "l3", Status: domain.LeadStatusUnqualified, CreatedAt: daysAgo(3)},
			{ID: "l4", Status: domain.LeadStatusContacted, AssignedTo: "rep1", CreatedAt: daysAgo(3)},
		},
	}

	res := Detect(snap, testNow, DefaultThresholds())

	if got := countByType(res.Leaks, domain.LeakUnassignedLead); got != 1 {
		t.Fatalf("unassigned leaks = %d, want exactly 1 aggregate", got)
	}
	leak := findByType(t, res.Leaks, domain.LeakUnassignedLead)
	if leak.ImpactedCount != 2 {
		t.Fatalf("impactedCount = %d, want 2 (unqualified and assigned excluded)", leak.ImpactedCount)
	}
}

func TestSlowResponseAggregate(t *testing.T) {
	slow := daysAgo(3) // contacted 2 days after creation
	fast := daysAgo(5).Add(2 * time.Hour)
	snap := domain.Snapshot{
		Leads: []domain.Lead{
			{ID: "l1", Status: domain.LeadStatusContacted, CreatedAt: daysAgo(5), FirstContactedAt: &slow},
			{ID: "l2", Status: domain.LeadStatusContacted, CreatedAt: daysAgo(5), FirstContactedAt: &fast},
		},
	}

	res := Detect(snap, testNow, DefaultThresholds())

	leak := findByType(t, res.Leaks, domain.LeakSlowResponse)
	if leak.ImpactedCount != 1 {
		t.Fatalf("impactedCount = %d, want 1", leak.ImpactedCount)
	}
}

func TestDeadPipelineNeedsMinimumSize(t *testing.T) {
	stale := func(id string) domain.Opportunity {
		return domain.Opportunity{
			ID: id, Name: id, Value: 1000, Status: domain.DealStatusOpen,
			CreatedAt: daysAgo(90), UpdatedAt: daysAgo(50),
		}
	}

	small := domain.Snapshot{Opportunities: []domain.Opportunity{stale("d1"), stale("d2")}}
	if got := countByType(Detect(small, testNow, DefaultThresholds()).Leaks, domain.LeakDeadPipeline); got != 0 {
		t.Fatalf("dead pipeline fired on a %d-deal pipeline", len(small.Opportunities))
	}

	big := domain.Snapshot{Opportunities: []domain.Opportunity{stale("d1"), stale("d2"), stale("d3"), stale("d4")}}
	res := Detect(big, testNow, DefaultThresholds())
	leak := findByType(t, res.Leaks, domain.LeakDeadPipeline)
	if leak.Severity != domain.SeverityCritical {
		t.Fatalf("severity = %s, want CRITICAL when every deal is stale", leak.Severity)
	}
}

func TestLostWithoutReasonAggregate(t *testing.T) {
	snap := domain.Snapshot{
		Opportunities: []domain.Opportunity{
			{ID: "d1", Value: 5000, Status: domain.DealStatusLost, CreatedAt: daysAgo(30), UpdatedAt: daysAgo(10)},
			{ID: "d2", Value: 3000, Status: domain.DealStatusLost, LostReason: "price", CreatedAt: daysAgo(30), UpdatedAt: daysAgo(10)},
		},
	}

	res := Detect(snap, testNow, DefaultThresholds())

	leak := findByType(t, res.Leaks, domain.LeakLostNoReason)
	if leak.ImpactedCount != 1 || leak.EstimatedRevenue != 5000 {
		t.Fatalf("impactedCount = %d revenue = %v, want 1 and 5000", leak.ImpactedCount, leak.EstimatedRevenue)
	}
}

func TestInactiveRepUsesPipelineAsRevenue(t *testing.T) {
	snap := domain.Snapshot{
		Reps: []domain.Rep{
			{ID: "r1", Name: "Idle", Active: true},
			{ID: "r2", Name: "Gone", Active: false},
		},
		Opportunities: []domain.Opportunity{
			{ID: "d1", Value: 8000, Status: domain.DealStatusOpen, AssignedTo: "r1", CreatedAt: daysAgo(5), UpdatedAt: daysAgo(1)},
		},
	}

	res := Detect(snap, testNow, DefaultThresholds())

	if got := countByType(res.Leaks, domain.LeakInactiveRep); got != 1 {
		t.Fatalf("inactive rep leaks = %d, want 1 (inactive reps skipped)", got)
	}
	leak := findByType(t, res.Leaks, domain.LeakInactiveRep)
	if leak.Severity != domain.SeverityHigh {
		t.Fatalf("severity = %s, want HIGH at zero activities", leak.Severity)
	}
	if leak.EstimatedRevenue != 8000 {
		t.Fatalf("estimatedRevenue = %v, want rep's open pipeline", leak.EstimatedRevenue)
	}
}

func TestLeaksSortedBySeverityThenRevenue(t *testing.T) {
	snap := domain.Snapshot{
		Leads: []domain.Lead{
			{ID: "l1", Status: domain.LeadStatusNew, CreatedAt: daysAgo(3)},
		},
		Opportunities: []domain.Opportunity{
			{ID: "d1", Name: "Big", Value: 60000, Status: domain.DealStatusOpen, CreatedAt: daysAgo(60), UpdatedAt: daysAgo(45)},
			{ID: "d2", Name: "Mid", Value: 20000, Status: domain.DealStatusOpen, CreatedAt: daysAgo(60), UpdatedAt: daysAgo(45)},
		},
	}

	res := Detect(snap, testNow, DefaultThresholds())

	for i := 1; i < len(res.Leaks); i++ {
		prev, cur := res.Leaks[i-1], res.Leaks[i]
		pr, cr := domain.SeverityRank(prev.Severity), domain.SeverityRank(cur.Severity)
		if pr > cr {
			t.Fatalf("leak %d (%s) sorted after %s", i, cur.Severity, prev.Severity)
		}
		if pr == cr && prev.EstimatedRevenue < cur.EstimatedRevenue {
			t.Fatal("equal-severity leaks not sorted by revenue descending")
		}
	}
}

func TestDetectIdempotent(t *testing.T) {
	snap := domain.Snapshot{
		Leads: []domain.Lead{
			{ID: "l1", Status: domain.LeadStatusNew, CreatedAt: daysAgo(10)},
			{ID: "l2", Status: domain.LeadStatusContacted, CreatedAt: daysAgo(10)},
		},
		Opportunities: []domain.Opportunity{
			{ID: "d1", Name: "X", Value: 15000, Status: domain.DealStatusOpen, CreatedAt: daysAgo(50), UpdatedAt: daysAgo(40)},
		},
		Reps: []domain.Rep{{ID: "r1", Name: "R", Active: true}},
	}
	th := DefaultThresholds()

	first := Detect(snap, testNow, th)
	second := Detect(snap, testNow, th)

	if !reflect.DeepEqual(first, second) {
		t.Fatal("identical snapshot and time must produce identical results")
	}
}

func TestEmptySnapshotNoLeaks(t *testing.T) {
	res := Detect(domain.Snapshot{}, testNow, DefaultThresholds())
	if len(res.Leaks) != 0 {
		t.Fatalf("leaks = %d, want 0", len(res.Leaks))
	}
	if res.Summary.Total != 0 || res.Summary.TotalEstimatedRevenue != 0 {
		t.Fatalf("summary = %+v, want zeros", res.Summary)
	}
}

func TestSummaryCountsAndRevenue(t *testing.T) {
	snap := domain.Snapshot{
		Opportunities: []domain.Opportunity{
			{ID: "d1", Name: "A", Value: 50000, Status: domain.DealStatusOpen, CreatedAt: daysAgo(60), UpdatedAt: daysAgo(60)},
		},
	}

	res := Detect(snap, testNow, DefaultThresholds())

	// The deal is both stale and high-value-at-risk; exposure is counted in both.
	if res.Summary.Total != 2 {
		t.Fatalf("total = %d, want 2", res.Summary.Total)
	}
	if res.Summary.TotalEstimatedRevenue != 100000 {
		t.Fatalf("totalEstimatedRevenue = %v, want 100000 (exposure double-counted)", res.Summary.TotalEstimatedRevenue)
	}
	if res.Summary.BySeverity[domain.SeverityCritical] != 2 {
		t.Fatalf("critical count = %d", res.Summary.BySeverity[domain.SeverityCritical])
	}
}
