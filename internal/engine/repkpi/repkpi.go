// Package repkpi rolls up per-representative performance from deals and
// activities. Pure aggregation, no judgement: the leak detector is the place
// that decides whether a number is a problem.
package repkpi

import (
	"math"
	"time"

	"revenue_radar_backend/internal/engine/domain"
)

// Calculate computes KPIs for every rep in the snapshot, in the reps' input
// order. Reps with no deals or activities get a zero-valued row rather than
// being omitted; win rate with zero closed deals is 0, not NaN.
func Calculate(snap domain.Snapshot, now time.Time) []domain.RepKPI {
	actsByRep := make(map[string][]domain.Activity)
	for _, a := range snap.Activities {
		if a.PerformedBy != "" {
			actsByRep[a.PerformedBy] = append(actsByRep[a.PerformedBy], a)
		}
	}

	dealsByRep := make(map[string][]domain.Opportunity)
	for _, d := range snap.Opportunities {
		if d.AssignedTo != "" {
			dealsByRep[d.AssignedTo] = append(dealsByRep[d.AssignedTo], d)
		}
	}

	weekStart := now.AddDate(0, 0, -7)
	kpis := make([]domain.RepKPI, 0, len(snap.Reps))
	for _, rep := range snap.Reps {
		kpi := domain.RepKPI{
			RepID:            rep.ID,
			Name:             rep.Name,
			Active:           rep.Active,
			ActivitiesByType: make(map[domain.ActivityType]int),
		}

		for _, a := range actsByRep[rep.ID] {
			kpi.TotalActivities++
			kpi.ActivitiesByType[a.Type]++
			if !a.CreatedAt.Before(weekStart) {
				kpi.ActivitiesLast7Days++
			}
		}

		for _, d := range dealsByRep[rep.ID] {
			switch d.Status {
			case domain.DealStatusOpen:
				kpi.OpenDeals++
				kpi.PipelineValue += d.Value
			case domain.DealStatusWon:
				kpi.WonDeals++
				kpi.TotalRevenue += d.Value
			case domain.DealStatusLost:
				kpi.LostDeals++
			}
		}

		if closed := kpi.WonDeals + kpi.LostDeals; closed > 0 {
			kpi.WinRate = round1(float64(kpi.WonDeals) / float64(closed) * 100)
		}
		if kpi.WonDeals > 0 {
			kpi.AvgDealSize = math.Round(kpi.TotalRevenue/float64(kpi.WonDeals)*100) / 100
		}

		kpis = append(kpis, kpi)
	}
	return kpis
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
