package dealrank

// Weights are the point budgets per prioritization factor, summing to 100.
type Weights struct {
	Value    float64 `yaml:"value"`
	Stage    float64 `yaml:"stage"`
	Velocity float64 `yaml:"velocity"`
	Risk     float64 `yaml:"risk"`
	Effort   float64 `yaml:"effort"`
}

// ValueStep awards points when the deal value is at least Min. Steps are
// evaluated in order, so they must be sorted by Min descending.
type ValueStep struct {
	Min    float64 `yaml:"min"`
	Points float64 `yaml:"points"`
}

// StageRule maps stage keywords to a close probability. Rules are evaluated
// in order; the first matching keyword wins.
type StageRule struct {
	Keywords    []string `yaml:"keywords"`
	Probability float64  `yaml:"probability"`
}

// RiskStep assigns staleness risk (0-100) when the deal has gone at least
// MinDays without activity. Steps must be sorted by MinDays descending.
type RiskStep struct {
	MinDays int     `yaml:"minDays"`
	Risk    float64 `yaml:"risk"`
}

// RecencyStep awards points when the last touch is at most MaxDays old.
// Steps are evaluated in order.
type RecencyStep struct {
	MaxDays int     `yaml:"maxDays"`
	Points  float64 `yaml:"points"`
}

// CountStep awards points when a count reaches at least Min. Steps must be
// sorted by Min descending.
type CountStep struct {
	Min    int     `yaml:"min"`
	Points float64 `yaml:"points"`
}

// ProbabilityStep awards points when the close probability reaches at least
// Min. Steps must be sorted by Min descending.
type ProbabilityStep struct {
	Min    float64 `yaml:"min"`
	Points float64 `yaml:"points"`
}

// EngagementBonuses are the small stage-score bumps for signs of a real
// evaluation: several people active on the deal, or a deep activity trail.
type EngagementBonuses struct {
	MultiPerformerCount int     `yaml:"multiPerformerCount"`
	MultiPerformerBonus float64 `yaml:"multiPerformerBonus"`
	DeepTrailCount      int     `yaml:"deepTrailCount"`
	DeepTrailBonus      float64 `yaml:"deepTrailBonus"`
}

// TierBounds are the inclusive lower score bounds per priority tier.
// Anything below Medium is LOW.
type TierBounds struct {
	Critical int `yaml:"critical"`
	High     int `yaml:"high"`
	Medium   int `yaml:"medium"`
}

// Config parametrizes deal prioritization.
type Config struct {
	Weights            Weights           `yaml:"weights"`
	ValueSteps         []ValueStep       `yaml:"valueSteps"`
	StageRules         []StageRule       `yaml:"stageRules"`
	DefaultProbability float64           `yaml:"defaultProbability"`
	Engagement         EngagementBonuses `yaml:"engagement"`
	VelocityWindowDays int               `yaml:"velocityWindowDays"`
	RecencySteps       []RecencyStep     `yaml:"recencySteps"`
	WindowTouchSteps   []CountStep       `yaml:"windowTouchSteps"`
	StageAdvanceBonus  float64           `yaml:"stageAdvanceBonus"`
	RiskSteps          []RiskStep        `yaml:"riskSteps"`
	HighValueThreshold float64           `yaml:"highValueThreshold"`
	HighValueRiskBonus float64           `yaml:"highValueRiskBonus"`
	StalledStageDays   int               `yaml:"stalledStageDays"`
	EffortTouchSteps   []CountStep       `yaml:"effortTouchSteps"`
	EffortStageSteps   []ProbabilityStep `yaml:"effortStageSteps"`
	Tiers              TierBounds        `yaml:"tiers"`

	// Decision thresholds for urgency and recommendation.
	RiskImmediate    float64 `yaml:"riskImmediate"`
	RiskToday        float64 `yaml:"riskToday"`
	VelocityThisWeek float64 `yaml:"velocityThisWeek"`
	VelocityStalled  float64 `yaml:"velocityStalled"`
	CloseProbability float64 `yaml:"closeProbability"`
	AttentionRisk    float64 `yaml:"attentionRisk"`
}

// DefaultConfig returns the stock prioritization parameters.
func DefaultConfig() Config {
	return Config{
		Weights: Weights{
			Value:    25,
			Stage:    25,
			Velocity: 20,
			Risk:     15,
			Effort:   15,
		},
		ValueSteps: []ValueStep{
			{Min: 100000, Points: 25},
			{Min: 50000, Points: 22},
			{Min: 25000, Points: 18},
			{Min: 10000, Points: 14},
			{Min: 5000, Points: 10},
			{Min: 1000, Points: 6},
			{Min: 1, Points: 3},
			{Min: 0, Points: 1},
		},
		StageRules: []StageRule{
			{Keywords: []string{"contract", "commit", "closing", "signature"}, Probability: 0.9},
			{Keywords: []string{"negotiation", "review"}, Probability: 0.8},
			{Keywords: []string{"proposal", "quote", "offer"}, Probability: 0.6},
			{Keywords: []string{"demo", "presentation", "evaluation"}, Probability: 0.5},
			{Keywords: []string{"qualified", "discovery", "needs"}, Probability: 0.35},
			{Keywords: []string{"new", "prospect", "lead", "initial"}, Probability: 0.2},
		},
		DefaultProbability: 0.3,
		Engagement: EngagementBonuses{
			MultiPerformerCount: 2,
			MultiPerformerBonus: 2,
			DeepTrailCount:      8,
			DeepTrailBonus:      2,
		},
		VelocityWindowDays: 14,
		RecencySteps: []RecencyStep{
			{MaxDays: 1, Points: 10},
			{MaxDays: 3, Points: 8},
			{MaxDays: 7, Points: 6},
			{MaxDays: 14, Points: 3},
		},
		WindowTouchSteps: []CountStep{
			{Min: 6, Points: 6},
			{Min: 3, Points: 4},
			{Min: 1, Points: 2},
		},
		StageAdvanceBonus: 4,
		RiskSteps: []RiskStep{
			{MinDays: 60, Risk: 90},
			{MinDays: 30, Risk: 70},
			{MinDays: 14, Risk: 45},
			{MinDays: 7, Risk: 25},
		},
		HighValueThreshold: 10000,
		HighValueRiskBonus: 10,
		StalledStageDays:   30,
		EffortTouchSteps: []CountStep{
			{Min: 10, Points: 7},
			{Min: 5, Points: 5},
			{Min: 2, Points: 3},
			{Min: 1, Points: 1},
		},
		EffortStageSteps: []ProbabilityStep{
			{Min: 0.75, Points: 8},
			{Min: 0.5, Points: 5},
			{Min: 0.35, Points: 3},
			{Min: 0, Points: 1},
		},
		Tiers: TierBounds{
			Critical: 75,
			High:     60,
			Medium:   40,
		},

		RiskImmediate:    70,
		RiskToday:        40,
		VelocityThisWeek: 8,
		VelocityStalled:  5,
		CloseProbability: 0.75,
		AttentionRisk:    40,
	}
}
