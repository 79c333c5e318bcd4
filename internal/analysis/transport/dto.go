// Package transport defines the wire shapes for the analysis endpoints.
// Inputs are canonical entities; the normalizer owns raw provider payloads.
package transport

import "revenue_radar_backend/internal/engine/domain"

// ScoreLeadsRequest carries leads (and their activities) to score directly.
type ScoreLeadsRequest struct {
	Leads      []domain.Lead     `json:"leads" validate:"required,min=1"`
	Activities []domain.Activity `json:"activities"`
}

// PrioritizeDealsRequest carries deals (and their activities) to rank
// directly.
type PrioritizeDealsRequest struct {
	Opportunities []domain.Opportunity `json:"opportunities" validate:"required,min=1"`
	Activities    []domain.Activity    `json:"activities"`
}

// SnapshotRequest carries a full ad-hoc snapshot for leak detection or rep
// KPIs without persisting anything.
type SnapshotRequest struct {
	Leads         []domain.Lead        `json:"leads"`
	Opportunities []domain.Opportunity `json:"opportunities"`
	Activities    []domain.Activity    `json:"activities"`
	Reps          []domain.Rep         `json:"reps"`
}

// Snapshot converts the request to the engine's input shape.
func (r SnapshotRequest) Snapshot() domain.Snapshot {
	return domain.Snapshot{
		Leads:         r.Leads,
		Opportunities: r.Opportunities,
		Activities:    r.Activities,
		Reps:          r.Reps,
	}
}
