package domain

import "time"

// LeakType identifies one of the detector rules.
type LeakType string

const (
	LeakStaleOpportunity LeakType = "STALE_OPPORTUNITY"
	LeakUntouchedLead    LeakType = "UNTOUCHED_LEAD"
	LeakUnassignedLead   LeakType = "UNASSIGNED_LEAD"
	LeakSlowResponse     LeakType = "SLOW_RESPONSE"
	LeakAbandonedDeal    LeakType = "ABANDONED_DEAL"
	LeakMissingFollowUp  LeakType = "MISSING_FOLLOWUP"
	LeakInactiveRep      LeakType = "INACTIVE_REP"
	LeakDeadPipeline     LeakType = "DEAD_PIPELINE"
	LeakLostNoReason     LeakType = "LOST_NO_REASON"
	LeakHighValueAtRisk  LeakType = "HIGH_VALUE_AT_RISK"
)

// Leak is one detected revenue-leak finding.
type Leak struct {
	ID                string            `json:"id"`
	Type              LeakType          `json:"type"`
	Severity          Severity          `json:"severity"`
	Title             string            `json:"title"`
	Description       string            `json:"description"`
	RecommendedAction string            `json:"recommendedAction"`
	ImpactedCount     int               `json:"impactedCount"`
	EstimatedRevenue  float64           `json:"estimatedRevenue"`
	RelatedIDs        []string          `json:"relatedIds,omitempty"`
	Metadata          map[string]string `json:"metadata,omitempty"`
}

// LeakSummary aggregates a leak scan.
type LeakSummary struct {
	Total                 int              `json:"total"`
	BySeverity            map[Severity]int `json:"bySeverity"`
	ByType                map[LeakType]int `json:"byType"`
	TotalEstimatedRevenue float64          `json:"totalEstimatedRevenue"`
}

// LeakResult is the full output of a leak scan, leaks sorted by severity then
// estimated revenue descending.
type LeakResult struct {
	Leaks       []Leak      `json:"leaks"`
	Summary     LeakSummary `json:"summary"`
	AINarrative string      `json:"aiNarrative,omitempty"`
}

// LeadScore is the scored view of one lead.
type LeadScore struct {
	LeadID         string             `json:"leadId"`
	Name           string             `json:"name"`
	Score          int                `json:"score"`
	Tier           string             `json:"tier"`
	Rank           int                `json:"rank"`
	Breakdown      map[string]float64 `json:"breakdown"`
	Signals        []string           `json:"signals,omitempty"`
	Recommendation string             `json:"recommendation"`
}

// LeadScoreSummary aggregates a scoring run.
type LeadScoreSummary struct {
	Total      int            `json:"total"`
	TierCounts map[string]int `json:"tierCounts"`
	MeanScore  float64        `json:"meanScore"`
}

// LeadScoreResult holds scored leads sorted by score descending.
type LeadScoreResult struct {
	Leads   []LeadScore      `json:"leads"`
	Summary LeadScoreSummary `json:"summary"`
}

// DealPriority is the ranked view of one open deal.
type DealPriority struct {
	DealID         string             `json:"dealId"`
	Name           string             `json:"name"`
	Score          int                `json:"score"`
	Rank           int                `json:"rank"`
	Value          float64            `json:"value"`
	Probability    float64            `json:"probability"`
	ExpectedValue  float64            `json:"expectedValue"`
	Urgency        Urgency            `json:"urgency"`
	Recommendation string             `json:"recommendation"`
	Breakdown      map[string]float64 `json:"breakdown"`
	NeedsAttention bool               `json:"needsAttention"`
}

// DealPrioritySummary aggregates a prioritization run over open deals.
type DealPrioritySummary struct {
	OpenDeals             int            `json:"openDeals"`
	TotalPipelineValue    float64        `json:"totalPipelineValue"`
	WeightedPipelineValue float64        `json:"weightedPipelineValue"`
	TierCounts            map[string]int `json:"tierCounts"`
	NeedsAttention        int            `json:"needsAttention"`
	MeanScore             float64        `json:"meanScore"`
}

// DealPriorityResult holds prioritized deals sorted by score descending.
type DealPriorityResult struct {
	Deals   []DealPriority      `json:"deals"`
	Summary DealPrioritySummary `json:"summary"`
}

// Action is one recommended next step.
type Action struct {
	ID               string  `json:"id"`
	Type             string  `json:"type"`
	Priority         int     `json:"priority"`
	Urgency          Urgency `json:"urgency"`
	Title            string  `json:"title"`
	Description      string  `json:"description"`
	EstimatedRevenue float64 `json:"estimatedRevenue"`
	EstimatedTime    string  `json:"estimatedTime"`
	RelatedID        string  `json:"relatedId,omitempty"`
}

// ActionSummary aggregates a recommendation run.
type ActionSummary struct {
	Total                 int     `json:"total"`
	TotalEstimatedRevenue float64 `json:"totalEstimatedRevenue"`
	TotalEstimatedTime    string  `json:"totalEstimatedTime"`
}

// ActionResult holds recommended actions sorted by priority descending.
// NextBestAction is the head of the list, or a no-op sentinel when empty.
type ActionResult struct {
	Actions        []Action             `json:"actions"`
	NextBestAction Action               `json:"nextBestAction"`
	ByUrgency      map[Urgency][]Action `json:"byUrgency"`
	Summary        ActionSummary        `json:"summary"`
}

// RepKPI is the per-representative performance rollup.
type RepKPI struct {
	RepID               string               `json:"repId"`
	Name                string               `json:"name"`
	Active              bool                 `json:"active"`
	TotalActivities     int                  `json:"totalActivities"`
	ActivitiesByType    map[ActivityType]int `json:"activitiesByType"`
	ActivitiesLast7Days int                  `json:"activitiesLast7Days"`
	OpenDeals           int                  `json:"openDeals"`
	WonDeals            int                  `json:"wonDeals"`
	LostDeals           int                  `json:"lostDeals"`
	TotalRevenue        float64              `json:"totalRevenue"`
	PipelineValue       float64              `json:"pipelineValue"`
	WinRate             float64              `json:"winRate"`
	AvgDealSize         float64              `json:"avgDealSize"`
}

// Insight is one synthesized pipeline-level observation.
// Severity here is the insight class, not a leak severity: CRITICAL for
// revenue actively at risk, WARNING for degrading process health, CAPACITY
// for team-utilization problems.
type Insight struct {
	Severity string `json:"severity"`
	Title    string `json:"title"`
	Detail   string `json:"detail"`
}

// FullReport is the complete analysis output.
type FullReport struct {
	GeneratedAt       time.Time          `json:"generatedAt"`
	HealthScore       int                `json:"healthScore"`
	Insights          []Insight          `json:"insights"`
	WastedEffortRatio float64            `json:"wastedEffortRatio"`
	Leaks             LeakResult         `json:"leaks"`
	LeadScores        LeadScoreResult    `json:"leadScores"`
	DealPriorities    DealPriorityResult `json:"dealPriorities"`
	RepKPIs           []RepKPI           `json:"repKpis"`
	Actions           ActionResult       `json:"actions"`
}

// QuickReport is the dashboard-widget digest of an analysis run.
type QuickReport struct {
	GeneratedAt       time.Time `json:"generatedAt"`
	HealthScore       int       `json:"healthScore"`
	OpenPipelineValue float64   `json:"openPipelineValue"`
	CriticalLeaks     int       `json:"criticalLeaks"`
	TotalLeakRevenue  float64   `json:"totalLeakRevenue"`
	HotLeads          int       `json:"hotLeads"`
	NextBestAction    Action    `json:"nextBestAction"`
}

// VoiceSummary is a spoken-word digest plus the data it was built from.
type VoiceSummary struct {
	Text string      `json:"text"`
	Data QuickReport `json:"data"`
}
