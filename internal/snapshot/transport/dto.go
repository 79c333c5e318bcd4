// Package transport defines the wire shapes for snapshot ingestion.
package transport

import "revenue_radar_backend/internal/engine/normalize"

// WebhookRequest is the payload a CRM connector posts to the ingestion
// webhook. Records are untyped maps; the normalizer owns interpreting them.
type WebhookRequest struct {
	Provider      string                `json:"provider" validate:"max=50"`
	Mode          string                `json:"mode" validate:"omitempty,oneof=replace append"`
	Leads         []normalize.RawRecord `json:"leads"`
	Opportunities []normalize.RawRecord `json:"opportunities"`
	Activities    []normalize.RawRecord `json:"activities"`
	Reps          []normalize.RawRecord `json:"reps"`
}

// Raw converts the request into the normalizer's input shape.
func (r WebhookRequest) Raw() normalize.RawSnapshot {
	return normalize.RawSnapshot{
		Provider:      r.Provider,
		Leads:         r.Leads,
		Opportunities: r.Opportunities,
		Activities:    r.Activities,
		Reps:          r.Reps,
	}
}

// CreateKeyRequest asks for a new ingestion API key.
type CreateKeyRequest struct {
	Name string `json:"name" validate:"required,min=1,max=100"`
}

// CreateKeyResponse returns the minted key. The key field is shown exactly
// once and never retrievable again.
type CreateKeyResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Key       string `json:"key"`
	CreatedAt string `json:"createdAt"`
}
