package leadscore

// Weights are the point budgets per scoring factor. They sum to 100 so a
// perfect lead scores exactly 100.
type Weights struct {
	Source       float64 `yaml:"source"`
	Engagement   float64 `yaml:"engagement"`
	Recency      float64 `yaml:"recency"`
	Completeness float64 `yaml:"completeness"`
}

// SourceRule maps source keywords to a quality on a 0-100 scale. Rules are
// evaluated in order; the first rule with a matching keyword wins.
type SourceRule struct {
	Keywords []string `yaml:"keywords"`
	Quality  float64  `yaml:"quality"`
}

// RecencyStep awards points when the last touch is at most MaxDays old.
// Steps are evaluated in order.
type RecencyStep struct {
	MaxDays int     `yaml:"maxDays"`
	Points  float64 `yaml:"points"`
}

// EngagementPoints are the per-activity point values, differentiated by type
// and outcome the way a rep would judge them: a completed meeting is worth
// far more than an opened email.
type EngagementPoints struct {
	MeetingCompleted float64 `yaml:"meetingCompleted"`
	MeetingOther     float64 `yaml:"meetingOther"`
	CallConnected    float64 `yaml:"callConnected"`
	CallOther        float64 `yaml:"callOther"`
	EmailReplied     float64 `yaml:"emailReplied"`
	EmailOpened      float64 `yaml:"emailOpened"`
	EmailOther       float64 `yaml:"emailOther"`
	SMS              float64 `yaml:"sms"`
	Other            float64 `yaml:"other"`
}

// CompletenessPoints are the per-field points for profile completeness.
type CompletenessPoints struct {
	Email    float64 `yaml:"email"`
	Phone    float64 `yaml:"phone"`
	Company  float64 `yaml:"company"`
	Title    float64 `yaml:"title"`
	Budget   float64 `yaml:"budget"`
	Timeline float64 `yaml:"timeline"`
}

// TierBounds are the inclusive lower score bounds per tier; anything below
// Cool is COLD.
type TierBounds struct {
	Hot  int `yaml:"hot"`
	Warm int `yaml:"warm"`
	Cool int `yaml:"cool"`
}

// Config parametrizes lead scoring. All weights, tables and thresholds live
// here as data so deployments can tune scoring without code changes.
type Config struct {
	Weights          Weights            `yaml:"weights"`
	SourceRules      []SourceRule       `yaml:"sourceRules"`
	DefaultQuality   float64            `yaml:"defaultQuality"`
	Engagement       EngagementPoints   `yaml:"engagement"`
	EngagementFloor  float64            `yaml:"engagementFloor"`
	RecencySteps     []RecencyStep      `yaml:"recencySteps"`
	RecencyFallback  float64            `yaml:"recencyFallback"`
	Completeness     CompletenessPoints `yaml:"completeness"`
	Tiers            TierBounds         `yaml:"tiers"`
	LowEngagementCut float64            `yaml:"lowEngagementCut"`
}

// DefaultConfig returns the stock scoring parameters.
func DefaultConfig() Config {
	return Config{
		Weights: Weights{
			Source:       25,
			Engagement:   30,
			Recency:      25,
			Completeness: 20,
		},
		SourceRules: []SourceRule{
			{Keywords: []string{"referral", "partner"}, Quality: 100},
			{Keywords: []string{"demo"}, Quality: 90},
			{Keywords: []string{"pricing", "quote"}, Quality: 85},
			{Keywords: []string{"webinar", "event", "conference"}, Quality: 70},
			{Keywords: []string{"website", "organic", "inbound", "form"}, Quality: 60},
			{Keywords: []string{"social", "linkedin", "facebook", "instagram"}, Quality: 45},
			{Keywords: []string{"cold", "outbound"}, Quality: 25},
			{Keywords: []string{"purchased", "list", "import"}, Quality: 10},
		},
		DefaultQuality: 30,
		Engagement: EngagementPoints{
			MeetingCompleted: 12,
			MeetingOther:     8,
			CallConnected:    6,
			CallOther:        3,
			EmailReplied:     5,
			EmailOpened:      1,
			EmailOther:       1,
			SMS:              2,
			Other:            1,
		},
		EngagementFloor: 5,
		RecencySteps: []RecencyStep{
			{MaxDays: 1, Points: 25},
			{MaxDays: 3, Points: 20},
			{MaxDays: 7, Points: 16},
			{MaxDays: 14, Points: 12},
			{MaxDays: 30, Points: 8},
			{MaxDays: 60, Points: 4},
		},
		RecencyFallback: 2,
		Completeness: CompletenessPoints{
			Email:    5,
			Phone:    5,
			Company:  3,
			Title:    3,
			Budget:   2,
			Timeline: 2,
		},
		Tiers: TierBounds{
			Hot:  80,
			Warm: 65,
			Cool: 50,
		},
		LowEngagementCut: 10,
	}
}
