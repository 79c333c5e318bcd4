package leakscan

// Thresholds parametrize every detector rule. Revenue estimates for
// lead-based leaks use EstimatedLeadValue since leads carry no deal value of
// their own.
type Thresholds struct {
	StaleDays            int     `yaml:"staleDays"`
	ResponseHours        float64 `yaml:"responseHours"`
	HighValueDeal        float64 `yaml:"highValueDeal"`
	CriticalValueDeal    float64 `yaml:"criticalValueDeal"`
	MinWeeklyActivities  int     `yaml:"minWeeklyActivities"`
	FollowUpDays         int     `yaml:"followUpDays"`
	UntouchedHighDays    int     `yaml:"untouchedHighDays"`
	EstimatedLeadValue   float64 `yaml:"estimatedLeadValue"`
	UnassignedHighCount  int     `yaml:"unassignedHighCount"`
	SlowResponseHighN    int     `yaml:"slowResponseHighCount"`
	LostNoReasonHighN    int     `yaml:"lostNoReasonHighCount"`
	DeadPipelineRatio    float64 `yaml:"deadPipelineRatio"`
	DeadPipelineCritical float64 `yaml:"deadPipelineCriticalRatio"`
	DeadPipelineMinSize  int     `yaml:"deadPipelineMinSize"`
}

// DefaultThresholds returns the stock detector thresholds.
func DefaultThresholds() Thresholds {
	return Thresholds{
		StaleDays:            30,
		ResponseHours:        24,
		HighValueDeal:        10000,
		CriticalValueDeal:    50000,
		MinWeeklyActivities:  10,
		FollowUpDays:         7,
		UntouchedHighDays:    7,
		EstimatedLeadValue:   1000,
		UnassignedHighCount:  10,
		SlowResponseHighN:    5,
		LostNoReasonHighN:    5,
		DeadPipelineRatio:    0.5,
		DeadPipelineCritical: 0.75,
		DeadPipelineMinSize:  4,
	}
}
