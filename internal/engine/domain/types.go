// Package domain defines the canonical sales-pipeline entities and the result
// types produced by the analysis engine. All inputs are value objects owned by
// the caller; the engine never mutates them and returns freshly allocated
// results on every run.
package domain

import "time"

// LeadStatus is the canonical lead lifecycle status.
type LeadStatus string

const (
	LeadStatusNew         LeadStatus = "new"
	LeadStatusContacted   LeadStatus = "contacted"
	LeadStatusQualified   LeadStatus = "qualified"
	LeadStatusUnqualified LeadStatus = "unqualified"
)

// DealStatus is the canonical opportunity lifecycle status.
// Only open deals are eligible for prioritization and ongoing-risk scans.
type DealStatus string

const (
	DealStatusOpen      DealStatus = "open"
	DealStatusWon       DealStatus = "won"
	DealStatusLost      DealStatus = "lost"
	DealStatusAbandoned DealStatus = "abandoned"
)

// ActivityType classifies a logged touch.
type ActivityType string

const (
	ActivityCall    ActivityType = "call"
	ActivityEmail   ActivityType = "email"
	ActivitySMS     ActivityType = "sms"
	ActivityMeeting ActivityType = "meeting"
	ActivityNote    ActivityType = "note"
	ActivityTask    ActivityType = "task"
)

// Severity ranks a leak finding. CRITICAL sorts before HIGH, and so on.
type Severity string

const (
	SeverityCritical Severity = "CRITICAL"
	SeverityHigh     Severity = "HIGH"
	SeverityMedium   Severity = "MEDIUM"
	SeverityLow      Severity = "LOW"
)

// SeverityRank returns the sort rank for a severity (lower sorts first).
func SeverityRank(s Severity) int {
	switch s {
	case SeverityCritical:
		return 0
	case SeverityHigh:
		return 1
	case SeverityMedium:
		return 2
	case SeverityLow:
		return 3
	default:
		return 4
	}
}

// Urgency buckets an action by when it should happen.
type Urgency string

const (
	UrgencyImmediate Urgency = "IMMEDIATE"
	UrgencyToday     Urgency = "TODAY"
	UrgencyThisWeek  Urgency = "THIS_WEEK"
	UrgencyScheduled Urgency = "SCHEDULED"
)

// Lead is a canonical lead/contact record.
type Lead struct {
	ID               string     `json:"id"`
	FirstName        string     `json:"firstName"`
	LastName         string     `json:"lastName"`
	Email            string     `json:"email,omitempty"`
	Phone            string     `json:"phone,omitempty"`
	Company          string     `json:"company,omitempty"`
	Title            string     `json:"title,omitempty"`
	Status           LeadStatus `json:"status"`
	AssignedTo       string     `json:"assignedTo,omitempty"`
	Source           string     `json:"leadSource,omitempty"`
	HasBudget        bool       `json:"hasBudget,omitempty"`
	HasTimeline      bool       `json:"hasTimeline,omitempty"`
	CreatedAt        time.Time  `json:"createdAt"`
	FirstContactedAt *time.Time `json:"firstContactedAt,omitempty"`
}

// Name returns the lead's display name.
func (l Lead) Name() string {
	switch {
	case l.FirstName != "" && l.LastName != "":
		return l.FirstName + " " + l.LastName
	case l.FirstName != "":
		return l.FirstName
	case l.LastName != "":
		return l.LastName
	default:
		return l.ID
	}
}

// Opportunity is a canonical deal record.
type Opportunity struct {
	ID             string     `json:"id"`
	Name           string     `json:"name"`
	ContactID      string     `json:"contactId,omitempty"`
	Value          float64    `json:"value"`
	Status         DealStatus `json:"status"`
	Stage          string     `json:"stage,omitempty"`
	AssignedTo     string     `json:"assignedTo,omitempty"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      time.Time  `json:"updatedAt"`
	StageChangedAt *time.Time `json:"stageChangedAt,omitempty"`
	LostReason     string     `json:"lostReason,omitempty"`
}

// Activity is a historical touch record. Activities have no lifecycle of their
// own; the engine treats them as append-only facts.
type Activity struct {
	ID          string       `json:"id"`
	Type        ActivityType `json:"type"`
	ContactID   string       `json:"contactId,omitempty"`
	DealID      string       `json:"dealId,omitempty"`
	PerformedBy string       `json:"performedBy,omitempty"`
	Outcome     string       `json:"outcome,omitempty"`
	CreatedAt   time.Time    `json:"createdAt"`
}

// Rep is a sales representative, used as a grouping key for aggregation.
type Rep struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Active bool   `json:"active"`
}

// Snapshot is one synchronous view of the pipeline supplied by the caller.
type Snapshot struct {
	Leads         []Lead        `json:"leads"`
	Opportunities []Opportunity `json:"opportunities"`
	Activities    []Activity    `json:"activities"`
	Reps          []Rep         `json:"reps"`
}
