// Package events provides domain event definitions for decoupled,
// event-driven communication between modules.
// Infrastructure (Bus, Handler) is in platform/events.
package events

import (
	"revenue_radar_backend/platform/events"
	"revenue_radar_backend/platform/logger"

	"github.com/google/uuid"
)

// Re-export platform types for convenience
type (
	Event       = events.Event
	Bus         = events.Bus
	Handler     = events.Handler
	HandlerFunc = events.HandlerFunc
	BaseEvent   = events.BaseEvent
	InMemoryBus = events.InMemoryBus
)

// Re-export platform functions
var (
	NewBaseEvent = events.NewBaseEvent
	NewInMemoryBus = func(log *logger.Logger) *InMemoryBus { return events.NewInMemoryBus(log) }
)

// SnapshotIngested is published after a CRM snapshot lands in storage.
// The analysis module listens to invalidate cached reports.
type SnapshotIngested struct {
	BaseEvent
	OrgID    uuid.UUID `json:"orgId"`
	Provider string    `json:"provider"`
	Mode     string    `json:"mode"`
	Accepted int       `json:"accepted"`
	Rejected int       `json:"rejected"`
}

func (e SnapshotIngested) EventName() string { return "snapshot.ingested" }

// AnalysisCompleted is published after a full analysis run finishes.
type AnalysisCompleted struct {
	BaseEvent
	OrgID         uuid.UUID `json:"orgId"`
	HealthScore   int       `json:"healthScore"`
	CriticalLeaks int       `json:"criticalLeaks"`
	TotalLeaks    int       `json:"totalLeaks"`
	LeakRevenue   float64   `json:"leakRevenue"`
}

func (e AnalysisCompleted) EventName() string { return "analysis.completed" }
