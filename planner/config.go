package planner

import (
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/domino14/rpk/ev"
)

// PlanConfig is the planner's YAML configuration. PredictableThreshold has
// no baked-in default on purpose: 1/250, 0.01 and 0 (defer classification)
// are all defensible and the choice belongs to whoever writes this file.
type PlanConfig struct {
	Phase                string         `yaml:"phase"`
	PredictableThreshold float64        `yaml:"predictableThreshold"`
	KeySetValue          float64        `yaml:"keySetValue"`
	Strategy             string         `yaml:"strategy"`
	Buffer               float64        `yaml:"bufferMultiplier"`
	Activities           []ActivityPlan `yaml:"activities"`
	RareGroups           []ev.RareGroup `yaml:"rareGroups"`
	RateOverrides        []RateOverride `yaml:"rateOverrides"`
	BonusItems           []string       `yaml:"bonusItems"`
}

// LoadPlanConfig reads and validates a plan configuration.
func LoadPlanConfig(path string) (*PlanConfig, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg PlanConfig
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return nil, fmt.Errorf("plan config %s: %w", path, err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("plan config %s: %w", path, err)
	}
	return &cfg, nil
}

func (c *PlanConfig) validate() error {
	if len(c.Activities) == 0 {
		return fmt.Errorf("no activities")
	}
	if c.PredictableThreshold < 0 || math.IsNaN(c.PredictableThreshold) || math.IsInf(c.PredictableThreshold, 0) {
		return fmt.Errorf("bad predictableThreshold %v", c.PredictableThreshold)
	}
	if c.KeySetValue < 0 {
		return fmt.Errorf("negative keySetValue %v", c.KeySetValue)
	}
	if c.Buffer < 0 {
		return fmt.Errorf("negative bufferMultiplier %v", c.Buffer)
	}
	seen := make(map[string]bool, len(c.Activities))
	for _, a := range c.Activities {
		if a.ID == "" {
			return fmt.Errorf("activity with empty id")
		}
		if seen[a.ID] {
			return fmt.Errorf("duplicate activity %q", a.ID)
		}
		seen[a.ID] = true
	}
	for _, o := range c.RateOverrides {
		if !seen[o.Activity] {
			return fmt.Errorf("rate override for unknown activity %q", o.Activity)
		}
		if o.PerKill < 0 || math.IsNaN(o.PerKill) || math.IsInf(o.PerKill, 0) {
			return fmt.Errorf("bad perKill rate %v for %q", o.PerKill, o.Activity)
		}
	}
	return nil
}
