// Package schedule turns a farming time budget into expected run and key
// counts under a fixed rotation policy: activities are visited in priority
// order (countess → summoner → nihlathak, repeating), and each run yields
// the activity's key with probability KeyRate.
//
// Three conventions for splitting a budget exist because they model the
// same real-world process differently; they are never mixed within one
// schedule. PureEV is the default.
package schedule

import (
	"fmt"
	"math"

	"github.com/rs/zerolog/log"
	"lukechampine.com/frand"
)

// Activity is one stop of the rotation.
type Activity struct {
	ID            string  `yaml:"id" json:"id"`
	MinutesPerRun float64 `yaml:"minutesPerRun" json:"minutesPerRun"`
	KeyType       string  `yaml:"keyType" json:"keyType"`
	KeyRate       float64 `yaml:"keyRate" json:"keyRate"`
}

// Strategy selects the convention used to split a time budget.
type Strategy int

const (
	// PureEV treats runs and keys as continuous expectations: a balanced
	// key set costs sum(t_i/D_i) minutes and the budget buys a fractional
	// number of sets. The default.
	PureEV Strategy = iota
	// ScheduledTail completes whole-key cycles deterministically and lets
	// at most one activity carry a fractional tail key for the leftover
	// time. More faithful for small budgets.
	ScheduledTail
	// MonteCarlo simulates the rotation with Bernoulli key draws and
	// averages the trials. Kept as a named alternative for comparison and
	// testing, not for planning.
	MonteCarlo
)

func (s Strategy) String() string {
	switch s {
	case PureEV:
		return "pure-ev"
	case ScheduledTail:
		return "scheduled-tail"
	case MonteCarlo:
		return "monte-carlo"
	}
	return fmt.Sprintf("strategy(%d)", int(s))
}

// ParseStrategy maps a config string to a Strategy.
func ParseStrategy(s string) (Strategy, error) {
	switch s {
	case "", "pure-ev":
		return PureEV, nil
	case "scheduled-tail":
		return ScheduledTail, nil
	case "monte-carlo":
		return MonteCarlo, nil
	}
	return 0, fmt.Errorf("schedule: unknown strategy %q", s)
}

// Schedule is the expected outcome of spending a time budget on the
// rotation. All counts are expectations and may be fractional. A Schedule
// is never mutated after creation.
type Schedule struct {
	RunsByActivity    map[string]float64
	Resources         map[string]float64
	MinutesByActivity map[string]float64
	Minutes           float64
}

const defaultTrials = 4096

// Generator produces Schedules for one rotation under one convention.
type Generator struct {
	activities []Activity
	strategy   Strategy
	trials     int
}

// NewGenerator validates the rotation. Non-positive run times or key rates
// are configuration errors, never silently defaulted.
func NewGenerator(activities []Activity, strategy Strategy) (*Generator, error) {
	if len(activities) == 0 {
		return nil, fmt.Errorf("schedule: no activities in rotation")
	}
	for _, a := range activities {
		if a.MinutesPerRun <= 0 || math.IsNaN(a.MinutesPerRun) || math.IsInf(a.MinutesPerRun, 0) {
			return nil, fmt.Errorf("schedule: activity %q: bad minutes per run %v", a.ID, a.MinutesPerRun)
		}
		if a.KeyRate <= 0 || a.KeyRate > 1 || math.IsNaN(a.KeyRate) {
			return nil, fmt.Errorf("schedule: activity %q: key rate %v outside (0,1]", a.ID, a.KeyRate)
		}
		if a.KeyType == "" {
			return nil, fmt.Errorf("schedule: activity %q: no key type", a.ID)
		}
	}
	return &Generator{activities: activities, strategy: strategy, trials: defaultTrials}, nil
}

// Activities returns the rotation in priority order.
func (g *Generator) Activities() []Activity { return g.activities }

// MinutesPerSet is the expected time to produce one full key set, one key
// of each type in the rotation.
func (g *Generator) MinutesPerSet() float64 {
	total := 0.0
	for _, a := range g.activities {
		total += a.MinutesPerRun / a.KeyRate
	}
	return total
}

// FromHours computes the expected schedule for a time budget.
func (g *Generator) FromHours(hours float64) (*Schedule, error) {
	if hours < 0 || math.IsNaN(hours) || math.IsInf(hours, 0) {
		return nil, fmt.Errorf("schedule: bad hours budget %v", hours)
	}
	minutes := hours * 60
	var s *Schedule
	switch g.strategy {
	case PureEV:
		s = g.pureEV(minutes)
	case ScheduledTail:
		s = g.scheduledTail(minutes)
	case MonteCarlo:
		s = g.monteCarlo(minutes)
	default:
		return nil, fmt.Errorf("schedule: unknown strategy %v", g.strategy)
	}
	log.Debug().Stringer("strategy", g.strategy).Float64("hours", hours).
		Float64("minutes", s.Minutes).Msg("schedule-generated")
	return s, nil
}

func (g *Generator) empty() *Schedule {
	s := &Schedule{
		RunsByActivity:    make(map[string]float64, len(g.activities)),
		Resources:         make(map[string]float64, len(g.activities)),
		MinutesByActivity: make(map[string]float64, len(g.activities)),
	}
	for _, a := range g.activities {
		s.RunsByActivity[a.ID] = 0
		s.Resources[a.KeyType] = 0
		s.MinutesByActivity[a.ID] = 0
	}
	return s
}

func (g *Generator) pureEV(minutes float64) *Schedule {
	s := g.empty()
	sets := minutes / g.MinutesPerSet()
	for _, a := range g.activities {
		runs := sets / a.KeyRate
		s.RunsByActivity[a.ID] = runs
		s.Resources[a.KeyType] += sets
		spent := runs * a.MinutesPerRun
		s.MinutesByActivity[a.ID] = spent
		s.Minutes += spent
	}
	return s
}

func (g *Generator) scheduledTail(minutes float64) *Schedule {
	s := g.empty()
	perSet := g.MinutesPerSet()
	full := math.Floor(minutes / perSet)
	leftover := minutes - full*perSet

	for _, a := range g.activities {
		runs := full / a.KeyRate
		s.RunsByActivity[a.ID] = runs
		s.Resources[a.KeyType] += full
		spent := runs * a.MinutesPerRun
		s.MinutesByActivity[a.ID] = spent
		s.Minutes += spent
	}

	// Spend the leftover continuing the rotation in priority order. Whole
	// expected keys complete until the tail activity, which carries the
	// only fractional key.
	for _, a := range g.activities {
		if leftover <= 0 {
			break
		}
		perKey := a.MinutesPerRun / a.KeyRate
		spend := math.Min(leftover, perKey)
		s.RunsByActivity[a.ID] += spend / a.MinutesPerRun
		s.Resources[a.KeyType] += spend / perKey
		s.MinutesByActivity[a.ID] += spend
		s.Minutes += spend
		leftover -= spend
	}
	return s
}

func (g *Generator) monteCarlo(minutes float64) *Schedule {
	runStats := make([]Statistic, len(g.activities))
	keyStats := make([]Statistic, len(g.activities))
	spentStats := make([]Statistic, len(g.activities))

	for trial := 0; trial < g.trials; trial++ {
		remaining := minutes
		runs := make([]float64, len(g.activities))
		keys := make([]float64, len(g.activities))
		cur := 0
		for {
			a := g.activities[cur]
			if remaining < a.MinutesPerRun {
				break
			}
			remaining -= a.MinutesPerRun
			runs[cur]++
			if frand.Float64() < a.KeyRate {
				keys[cur]++
				cur = (cur + 1) % len(g.activities)
			}
		}
		for i := range g.activities {
			runStats[i].Push(runs[i])
			keyStats[i].Push(keys[i])
			spentStats[i].Push(runs[i] * g.activities[i].MinutesPerRun)
		}
	}

	s := g.empty()
	for i, a := range g.activities {
		s.RunsByActivity[a.ID] = runStats[i].Mean()
		s.Resources[a.KeyType] += keyStats[i].Mean()
		s.MinutesByActivity[a.ID] = spentStats[i].Mean()
		s.Minutes += spentStats[i].Mean()
	}
	return s
}
