package insight

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"revenue_radar_backend/internal/engine/actions"
	"revenue_radar_backend/internal/engine/dealrank"
	"revenue_radar_backend/internal/engine/leadscore"
	"revenue_radar_backend/internal/engine/leakscan"
)

// HealthPenalties are the per-insight deductions from the health score.
type HealthPenalties struct {
	Critical int `yaml:"critical"`
	Warning  int `yaml:"warning"`
	Capacity int `yaml:"capacity"`
}

// Config is the single tuning surface for the whole engine. Every weight,
// threshold and keyword table lives here as data; a YAML file can override
// any subset of it.
type Config struct {
	LeadScoring  leadscore.Config    `yaml:"leadScoring"`
	DealPriority dealrank.Config     `yaml:"dealPriority"`
	Leaks        leakscan.Thresholds `yaml:"leaks"`
	Actions      actions.Config      `yaml:"actions"`

	Penalties            HealthPenalties `yaml:"healthPenalties"`
	WastedTouchThreshold int             `yaml:"wastedTouchThreshold"`
	WastedWindowDays     int             `yaml:"wastedWindowDays"`
}

// DefaultConfig returns the stock engine parameters.
func DefaultConfig() Config {
	return Config{
		LeadScoring:          leadscore.DefaultConfig(),
		DealPriority:         dealrank.DefaultConfig(),
		Leaks:                leakscan.DefaultThresholds(),
		Actions:              actions.DefaultConfig(),
		Penalties:            HealthPenalties{Critical: 25, Warning: 10, Capacity: 5},
		WastedTouchThreshold: 5,
		WastedWindowDays:     30,
	}
}

// LoadConfig returns the defaults overlaid with the YAML file at path.
// An empty path means defaults only.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read engine config: %w", err)
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse engine config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects configurations that would make scores meaningless.
func (c Config) Validate() error {
	lw := c.LeadScoring.Weights
	if lw.Source+lw.Engagement+lw.Recency+lw.Completeness != 100 {
		return fmt.Errorf("lead scoring weights must sum to 100")
	}
	dw := c.DealPriority.Weights
	if dw.Value+dw.Stage+dw.Velocity+dw.Risk+dw.Effort != 100 {
		return fmt.Errorf("deal priority weights must sum to 100")
	}
	if c.Leaks.StaleDays <= c.Leaks.FollowUpDays {
		return fmt.Errorf("staleDays must exceed followUpDays")
	}
	if c.Leaks.CriticalValueDeal < c.Leaks.HighValueDeal {
		return fmt.Errorf("criticalValueDeal must be at least highValueDeal")
	}
	if c.WastedWindowDays <= 0 {
		return fmt.Errorf("wastedWindowDays must be positive")
	}
	return nil
}
