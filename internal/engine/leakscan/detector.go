// Package leakscan detects revenue leaks: places in the pipeline where money
// is actively being lost to neglect rather than to competition. Each rule is
// independent and idempotent; the same snapshot and reference time always
// produce the same findings. A record may legitimately surface in several
// leaks, and the summed estimated revenue deliberately double-counts it: the
// summary measures total exposure across problems, not unique dollars.
package leakscan

import (
	"fmt"
	"sort"
	"time"

	"revenue_radar_backend/internal/engine/domain"
)

// Detect runs every rule over the snapshot and returns the findings sorted
// by severity, then estimated revenue descending. Ties keep rule order.
func Detect(snap domain.Snapshot, now time.Time, th Thresholds) domain.LeakResult {
	d := detector{snap: snap, now: now, th: th, byDeal: groupActivities(snap)}

	var leaks []domain.Leak
	leaks = append(leaks, d.staleOpportunities()...)
	leaks = append(leaks, d.untouchedLeads()...)
	leaks = append(leaks, d.unassignedLeads()...)
	leaks = append(leaks, d.slowResponses()...)
	leaks = append(leaks, d.abandonedDeals()...)
	leaks = append(leaks, d.missingFollowUps()...)
	leaks = append(leaks, d.inactiveReps()...)
	leaks = append(leaks, d.deadPipeline()...)
	leaks = append(leaks, d.lostWithoutReason()...)
	leaks = append(leaks, d.highValueAtRisk()...)

	sort.SliceStable(leaks, func(i, j int) bool {
		ri, rj := domain.SeverityRank(leaks[i].Severity), domain.SeverityRank(leaks[j].Severity)
		if ri != rj {
			return ri < rj
		}
		return leaks[i].EstimatedRevenue > leaks[j].EstimatedRevenue
	})

	return domain.LeakResult{Leaks: leaks, Summary: summarize(leaks)}
}

type detector struct {
	snap   domain.Snapshot
	now    time.Time
	th     Thresholds
	byDeal map[string][]domain.Activity
}

// staleOpportunities flags open deals with no touch for StaleDays or more.
// Severity scales with deal value.
func (d detector) staleOpportunities() []domain.Leak {
	var leaks []domain.Leak
	for _, deal := range d.snap.Opportunities {
		if deal.Status != domain.DealStatusOpen {
			continue
		}
		days := d.daysSinceTouch(deal)
		if days < d.th.StaleDays {
			continue
		}

		severity := domain.SeverityMedium
		switch {
		case deal.Value >= d.th.CriticalValueDeal:
			severity = domain.SeverityCritical
		case deal.Value >= d.th.HighValueDeal:
			severity = domain.SeverityHigh
		}

		leaks = append(leaks, domain.Leak{
			ID:       fmt.Sprintf("stale_opportunity_%s", deal.ID),
			Type:     domain.LeakStaleOpportunity,
			Severity: severity,
			Title:    fmt.Sprintf("Deal %q has gone quiet", deal.Name),
			Description: fmt.Sprintf("%s worth %s has had no activity for %d days. Deals this quiet rarely close on their own.",
				deal.Name, money(deal.Value), days),
			RecommendedAction: "Re-engage the buyer today with a recap and a concrete next step",
			ImpactedCount:     1,
			EstimatedRevenue:  deal.Value,
			RelatedIDs:        []string{deal.ID},
			Metadata:          map[string]string{"daysSinceActivity": fmt.Sprintf("%d", days)},
		})
	}
	return leaks
}

// untouchedLeads flags new leads that were never contacted, one leak per
// lead. Leads younger than the response window are still inside the SLA and
// are skipped.
func (d detector) untouchedLeads() []domain.Leak {
	var leaks []domain.Leak
	for _, lead := range d.snap.Leads {
		if lead.Status != domain.LeadStatusNew || lead.FirstContactedAt != nil {
			continue
		}
		age := d.now.Sub(lead.CreatedAt)
		if age.Hours() < d.th.ResponseHours {
			continue
		}

		days := int(age.Hours() / 24)
		severity := domain.SeverityMedium
		if days > d.th.UntouchedHighDays {
			severity = domain.SeverityHigh
		}

		leaks = append(leaks, domain.Leak{
			ID:       fmt.Sprintf("untouched_lead_%s", lead.ID),
			Type:     domain.LeakUntouchedLead,
			Severity: severity,
			Title:    fmt.Sprintf("Lead %s has never been contacted", lead.Name()),
			Description: fmt.Sprintf("%s came in %d days ago and nobody has reached out. Lead conversion drops sharply after the first day.",
				lead.Name(), days),
			RecommendedAction: "Make first contact now, even a short email keeps the lead warm",
			ImpactedCount:     1,
			EstimatedRevenue:  d.th.EstimatedLeadValue,
			RelatedIDs:        []string{lead.ID},
			Metadata:          map[string]string{"daysSinceCreated": fmt.Sprintf("%d", days)},
		})
	}
	return leaks
}

// unassignedLeads is an aggregate rule: one leak for all leads without an
// owner, excluding already-unqualified leads.
func (d detector) unassignedLeads() []domain.Leak {
	var ids []string
	for _, lead := range d.snap.Leads {
		if lead.AssignedTo == "" && lead.Status != domain.LeadStatusUnqualified {
			ids = append(ids, lead.ID)
		}
	}
	if len(ids) == 0 {
		return nil
	}

	severity := domain.SeverityMedium
	if len(ids) >= d.th.UnassignedHighCount {
		severity = domain.SeverityHigh
	}

	return []domain.Leak{{
		ID:       "unassigned_lead_batch",
		Type:     domain.LeakUnassignedLead,
		Severity: severity,
		Title:    fmt.Sprintf("%d leads have no owner", len(ids)),
		Description: fmt.Sprintf("%d active leads are not assigned to any rep, so nobody is responsible for working them.",
			len(ids)),
		RecommendedAction: "Assign every lead an owner and set a first-touch deadline",
		ImpactedCount:     len(ids),
		EstimatedRevenue:  float64(len(ids)) * d.th.EstimatedLeadValue,
		RelatedIDs:        ids,
	}}
}

// slowResponses is an aggregate rule over leads whose first contact took
// longer than the response window.
func (d detector) slowResponses() []domain.Leak {
	var ids []string
	var totalHours float64
	for _, lead := range d.snap.Leads {
		if lead.FirstContactedAt == nil {
			continue
		}
		hours := lead.FirstContactedAt.Sub(lead.CreatedAt).Hours()
		if hours <= d.th.ResponseHours {
			continue
		}
		ids = append(ids, lead.ID)
		totalHours += hours
	}
	if len(ids) == 0 {
		return nil
	}

	severity := domain.SeverityMedium
	if len(ids) >= d.th.SlowResponseHighN {
		severity = domain.SeverityHigh
	}
	avgHours := totalHours / float64(len(ids))

	return []domain.Leak{{
		ID:       "slow_response_batch",
		Type:     domain.LeakSlowResponse,
		Severity: severity,
		Title:    fmt.Sprintf("%d leads waited too long for first contact", len(ids)),
		Description: fmt.Sprintf("First contact took %.0f hours on average against a %.0f hour target. Slow responses hand warm leads to faster competitors.",
			avgHours, d.th.ResponseHours),
		RecommendedAction: "Set up first-response alerts and triage new leads daily",
		ImpactedCount:     len(ids),
		EstimatedRevenue:  float64(len(ids)) * d.th.EstimatedLeadValue,
		RelatedIDs:        ids,
		Metadata:          map[string]string{"avgResponseHours": fmt.Sprintf("%.1f", avgHours)},
	}}
}

// abandonedDeals is an aggregate rule over deals explicitly marked abandoned.
func (d detector) abandonedDeals() []domain.Leak {
	var ids []string
	var total float64
	for _, deal := range d.snap.Opportunities {
		if deal.Status != domain.DealStatusAbandoned {
			continue
		}
		ids = append(ids, deal.ID)
		total += deal.Value
	}
	if len(ids) == 0 {
		return nil
	}

	severity := domain.SeverityMedium
	if total >= d.th.CriticalValueDeal {
		severity = domain.SeverityHigh
	}

	return []domain.Leak{{
		ID:       "abandoned_deal_batch",
		Type:     domain.LeakAbandonedDeal,
		Severity: severity,
		Title:    fmt.Sprintf("%d deals were abandoned", len(ids)),
		Description: fmt.Sprintf("%d deals worth %s were walked away from. Some may be recoverable with a different angle or offer.",
			len(ids), money(total)),
		RecommendedAction: "Review abandoned deals for recoverable opportunities",
		ImpactedCount:     len(ids),
		EstimatedRevenue:  total,
		RelatedIDs:        ids,
	}}
}

// missingFollowUps flags open deals drifting toward staleness: last touch is
// past the follow-up window but not yet stale.
func (d detector) missingFollowUps() []domain.Leak {
	var leaks []domain.Leak
	for _, deal := range d.snap.Opportunities {
		if deal.Status != domain.DealStatusOpen || len(d.byDeal[deal.ID]) == 0 {
			continue
		}
		days := d.daysSinceTouch(deal)
		if days < d.th.FollowUpDays || days >= d.th.StaleDays {
			continue
		}

		severity := domain.SeverityLow
		switch {
		case deal.Value >= d.th.HighValueDeal:
			severity = domain.SeverityHigh
		case deal.Value > 0:
			severity = domain.SeverityMedium
		}

		leaks = append(leaks, domain.Leak{
			ID:       fmt.Sprintf("missing_followup_%s", deal.ID),
			Type:     domain.LeakMissingFollowUp,
			Severity: severity,
			Title:    fmt.Sprintf("Deal %q is due a follow-up", deal.Name),
			Description: fmt.Sprintf("Last touch on %s was %d days ago. It is drifting toward stale.",
				deal.Name, days),
			RecommendedAction: "Schedule the next touch before the deal goes cold",
			ImpactedCount:     1,
			EstimatedRevenue:  deal.Value,
			RelatedIDs:        []string{deal.ID},
			Metadata:          map[string]string{"daysSinceActivity": fmt.Sprintf("%d", days)},
		})
	}
	return leaks
}

// inactiveReps flags active reps below the weekly activity floor. The
// estimated revenue is the open pipeline parked on that rep, since that is
// what their inactivity is starving.
func (d detector) inactiveReps() []domain.Leak {
	weekStart := d.now.AddDate(0, 0, -7)
	weekly := make(map[string]int)
	for _, a := range d.snap.Activities {
		if a.PerformedBy != "" && !a.CreatedAt.Before(weekStart) {
			weekly[a.PerformedBy]++
		}
	}

	openByRep := make(map[string]struct {
		count int
		value float64
	})
	for _, deal := range d.snap.Opportunities {
		if deal.Status != domain.DealStatusOpen || deal.AssignedTo == "" {
			continue
		}
		agg := openByRep[deal.AssignedTo]
		agg.count++
		agg.value += deal.Value
		openByRep[deal.AssignedTo] = agg
	}

	var leaks []domain.Leak
	for _, rep := range d.snap.Reps {
		if !rep.Active {
			continue
		}
		count := weekly[rep.ID]
		if count >= d.th.MinWeeklyActivities {
			continue
		}

		severity := domain.SeverityMedium
		if count == 0 {
			severity = domain.SeverityHigh
		}
		pipeline := openByRep[rep.ID]

		leaks = append(leaks, domain.Leak{
			ID:       fmt.Sprintf("inactive_rep_%s", rep.ID),
			Type:     domain.LeakInactiveRep,
			Severity: severity,
			Title:    fmt.Sprintf("%s logged %d activities this week", repName(rep), count),
			Description: fmt.Sprintf("%s is below the %d activities-per-week floor while sitting on %s of open pipeline.",
				repName(rep), d.th.MinWeeklyActivities, money(pipeline.value)),
			RecommendedAction: "Check in with the rep and rebalance their book if needed",
			ImpactedCount:     pipeline.count,
			EstimatedRevenue:  pipeline.value,
			RelatedIDs:        []string{rep.ID},
			Metadata:          map[string]string{"weeklyActivities": fmt.Sprintf("%d", count)},
		})
	}
	return leaks
}

// deadPipeline is an aggregate rule that fires when a large share of the open
// pipeline is stale at once. It needs a minimum pipeline size so a single
// stale deal in a tiny pipeline does not read as systemic failure.
func (d detector) deadPipeline() []domain.Leak {
	var open, stale int
	var staleValue float64
	var staleIDs []string
	for _, deal := range d.snap.Opportunities {
		if deal.Status != domain.DealStatusOpen {
			continue
		}
		open++
		if d.daysSinceTouch(deal) >= d.th.StaleDays {
			stale++
			staleValue += deal.Value
			staleIDs = append(staleIDs, deal.ID)
		}
	}
	if open < d.th.DeadPipelineMinSize {
		return nil
	}
	ratio := float64(stale) / float64(open)
	if ratio < d.th.DeadPipelineRatio {
		return nil
	}

	severity := domain.SeverityHigh
	if ratio >= d.th.DeadPipelineCritical {
		severity = domain.SeverityCritical
	}

	return []domain.Leak{{
		ID:       "dead_pipeline_batch",
		Type:     domain.LeakDeadPipeline,
		Severity: severity,
		Title:    fmt.Sprintf("%.0f%% of the open pipeline is stale", ratio*100),
		Description: fmt.Sprintf("%d of %d open deals worth %s have gone quiet. This is a process problem, not a deal problem.",
			stale, open, money(staleValue)),
		RecommendedAction: "Run a pipeline review and either revive or close out stale deals",
		ImpactedCount:     stale,
		EstimatedRevenue:  staleValue,
		RelatedIDs:        staleIDs,
		Metadata:          map[string]string{"staleRatio": fmt.Sprintf("%.2f", ratio)},
	}}
}

// lostWithoutReason is an aggregate rule over lost deals that carry no loss
// reason. The leak is lost learning, priced at the lost value.
func (d detector) lostWithoutReason() []domain.Leak {
	var ids []string
	var total float64
	for _, deal := range d.snap.Opportunities {
		if deal.Status != domain.DealStatusLost || deal.LostReason != "" {
			continue
		}
		ids = append(ids, deal.ID)
		total += deal.Value
	}
	if len(ids) == 0 {
		return nil
	}

	severity := domain.SeverityMedium
	if len(ids) >= d.th.LostNoReasonHighN {
		severity = domain.SeverityHigh
	}

	return []domain.Leak{{
		ID:       "lost_no_reason_batch",
		Type:     domain.LeakLostNoReason,
		Severity: severity,
		Title:    fmt.Sprintf("%d lost deals have no loss reason", len(ids)),
		Description: fmt.Sprintf("%s of losses carry no reason, so the same mistakes will repeat unexamined.",
			money(total)),
		RecommendedAction: "Require a loss reason at close and backfill recent losses",
		ImpactedCount:     len(ids),
		EstimatedRevenue:  total,
		RelatedIDs:        ids,
	}}
}

// highValueAtRisk flags big open deals already past the follow-up window.
// It overlaps with staleOpportunities on purpose: a big deal going quiet
// deserves to be raised twice.
func (d detector) highValueAtRisk() []domain.Leak {
	var leaks []domain.Leak
	for _, deal := range d.snap.Opportunities {
		if deal.Status != domain.DealStatusOpen || deal.Value < d.th.HighValueDeal {
			continue
		}
		days := d.daysSinceTouch(deal)
		if days < d.th.FollowUpDays {
			continue
		}

		severity := domain.SeverityHigh
		if deal.Value >= d.th.CriticalValueDeal {
			severity = domain.SeverityCritical
		}

		leaks = append(leaks, domain.Leak{
			ID:       fmt.Sprintf("high_value_at_risk_%s", deal.ID),
			Type:     domain.LeakHighValueAtRisk,
			Severity: severity,
			Title:    fmt.Sprintf("%s of revenue is at risk on %q", money(deal.Value), deal.Name),
			Description: fmt.Sprintf("A %s deal has had no touch for %d days. Deals this size need continuous attention.",
				money(deal.Value), days),
			RecommendedAction: "Escalate to a senior rep and get a meeting on the calendar",
			ImpactedCount:     1,
			EstimatedRevenue:  deal.Value,
			RelatedIDs:        []string{deal.ID},
			Metadata:          map[string]string{"daysSinceActivity": fmt.Sprintf("%d", days)},
		})
	}
	return leaks
}

// daysSinceTouch returns whole days since the deal's last activity, falling
// back to its update time, then its creation time.
func (d detector) daysSinceTouch(deal domain.Opportunity) int {
	ref := deal.UpdatedAt
	if ref.IsZero() {
		ref = deal.CreatedAt
	}
	for _, a := range d.byDeal[deal.ID] {
		if a.CreatedAt.After(ref) {
			ref = a.CreatedAt
		}
	}
	if d.now.Before(ref) {
		return 0
	}
	return int(d.now.Sub(ref).Hours() / 24)
}

// groupActivities associates activities with deals by explicit deal id first,
// then through the deal's contact.
func groupActivities(snap domain.Snapshot) map[string][]domain.Activity {
	dealIDs := make(map[string]struct{}, len(snap.Opportunities))
	byContact := make(map[string][]string)
	for _, deal := range snap.Opportunities {
		dealIDs[deal.ID] = struct{}{}
		if deal.ContactID != "" {
			byContact[deal.ContactID] = append(byContact[deal.ContactID], deal.ID)
		}
	}

	grouped := make(map[string][]domain.Activity)
	for _, a := range snap.Activities {
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

func summarize(leaks []domain.Leak) domain.LeakSummary {
	s := domain.LeakSummary{
		Total:      len(leaks),
		BySeverity: make(map[domain.Severity]int),
		ByType:     make(map[domain.LeakType]int),
	}
	for _, l := range leaks {
		s.BySeverity[l.Severity]++
		s.ByType[l.Type]++
		s.TotalEstimatedRevenue += l.EstimatedRevenue
	}
	return s
}

func repName(rep domain.Rep) string {
	if rep.Name != "" {
		return rep.Name
	}
	return rep.ID
}

func money(v float64) string {
	return fmt.Sprintf("$%.0f", v)
}
