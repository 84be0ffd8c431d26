// Package planner wires the pieces together: it derives each activity's
// effective encounter profile, prices its drops, builds the key-rotation
// schedule, and answers the two questions the whole thing exists for — what
// is an hour of farming worth, and how many hours until a target is banked.
package planner

import (
	"fmt"
	"sort"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/domino14/rpk/droptable"
	"github.com/domino14/rpk/ev"
	"github.com/domino14/rpk/practical"
	"github.com/domino14/rpk/prices"
	"github.com/domino14/rpk/runconfig"
	"github.com/domino14/rpk/schedule"
	"github.com/domino14/rpk/solver"
)

// ActivityPlan is one activity in the plan config: the rotation fields plus
// its baseline encounter profile for a single run. Activities without a key
// are valued in reports but take no part in the rotation.
type ActivityPlan struct {
	schedule.Activity `yaml:",inline"`
	Profile           map[string]float64 `yaml:"profile"`
}

// RateOverride forces one item's per-encounter rate for one activity. This
// is how domain quirks like the Andariel quest bug (a forced 1/9 per-kill
// rate) stay out of the engines: the planner patches the drop table entry
// for that activity's encounter type, nothing else changes.
type RateOverride struct {
	Activity string  `yaml:"activity"`
	TC       string  `yaml:"tc"`
	Item     string  `yaml:"item"`
	PerKill  float64 `yaml:"perKill"`
}

// Planner composes the core engines for one plan configuration.
type Planner struct {
	cfg      *PlanConfig
	prices   *prices.Table
	index    *prices.Index
	drops    map[string]*droptable.Table // per-activity, overrides applied
	run      runconfig.Directives
	gen      *schedule.Generator
	rotation []ActivityPlan
	bonus    map[string]bool
	log      zerolog.Logger
}

// New validates the configuration and prepares the per-activity drop
// tables. runCfg may be nil when no overrides apply.
func New(cfg *PlanConfig, priceTable *prices.Table, drops *droptable.Table, runCfg *runconfig.Config) (*Planner, error) {
	if len(cfg.Activities) == 0 {
		return nil, fmt.Errorf("planner: no activities configured")
	}

	p := &Planner{
		cfg:    cfg,
		prices: priceTable,
		index:  prices.NewIndex(),
		drops:  make(map[string]*droptable.Table, len(cfg.Activities)),
		bonus:  make(map[string]bool, len(cfg.BonusItems)),
		log:    log.With().Str("component", "planner").Logger(),
	}
	p.run = runconfig.Directives{UseBaseline: true}
	if runCfg != nil {
		p.run = runCfg.Directives()
	}
	for _, item := range cfg.BonusItems {
		p.bonus[strings.ToLower(item)] = true
	}

	for _, a := range cfg.Activities {
		p.drops[a.ID] = overrideTable(drops, a.ID, cfg.RateOverrides)
		if a.KeyRate > 0 || a.KeyType != "" {
			p.rotation = append(p.rotation, a)
		}
	}
	if len(p.rotation) > 0 {
		acts := make([]schedule.Activity, len(p.rotation))
		for i, a := range p.rotation {
			acts[i] = a.Activity
		}
		strat, err := schedule.ParseStrategy(cfg.Strategy)
		if err != nil {
			return nil, err
		}
		gen, err := schedule.NewGenerator(acts, strat)
		if err != nil {
			return nil, err
		}
		p.gen = gen
	}
	return p, nil
}

// overrideTable returns the drop table as this activity sees it, with any
// matching rate overrides patched into copied encounter-type maps. The
// shared table is never touched.
func overrideTable(base *droptable.Table, activityID string, overrides []RateOverride) *droptable.Table {
	var patched *droptable.Table
	for _, o := range overrides {
		if o.Activity != activityID || o.PerKill < 0 {
			continue
		}
		if patched == nil {
			patched = &droptable.Table{TC: make(map[string]map[string]float64, len(base.TC))}
			for tc, items := range base.TC {
				patched.TC[tc] = items
			}
		}
		fresh := make(map[string]float64, len(base.TC[o.TC])+1)
		for item, prob := range patched.TC[o.TC] {
			fresh[item] = prob
		}
		fresh[o.Item] = o.PerKill
		patched.TC[o.TC] = fresh
	}
	if patched == nil {
		return base
	}
	return patched
}

func (p *Planner) activity(id string) (ActivityPlan, error) {
	for _, a := range p.cfg.Activities {
		if a.ID == id {
			return a, nil
		}
	}
	return ActivityPlan{}, fmt.Errorf("planner: unknown activity %q", id)
}

// Profile is the activity's effective per-run encounter profile after the
// run-config override layers.
func (p *Planner) Profile(activityID string) (map[string]float64, error) {
	a, err := p.activity(activityID)
	if err != nil {
		return nil, err
	}
	return runconfig.Derive(a.Profile, p.run), nil
}

// ActivityModel computes the predictable/lottery EV split for one run of
// the activity.
func (p *Planner) ActivityModel(activityID string) (*ev.Model, error) {
	profile, err := p.Profile(activityID)
	if err != nil {
		return nil, err
	}
	return ev.Compute(ev.Params{
		Profile:    profile,
		Drops:      p.drops[activityID],
		Prices:     p.prices,
		Index:      p.index,
		Phase:      p.cfg.Phase,
		Threshold:  p.cfg.PredictableThreshold,
		RareGroups: p.cfg.RareGroups,
	})
}

// RPKEntry is one activity's expected value per run and per hour.
// LotteryHours estimates, at this activity's pace, how long until the
// lottery half of the per-run EV starts feeling real; zero when every
// priced drop is predictable.
type RPKEntry struct {
	Activity     string
	ValuePerRun  float64
	ValuePerHour float64
	LotteryHours float64
	Missing      []string
}

// RPKReport values one run of every configured activity, most valuable
// first.
func (p *Planner) RPKReport() ([]RPKEntry, error) {
	out := make([]RPKEntry, 0, len(p.cfg.Activities))
	for _, a := range p.cfg.Activities {
		model, err := p.ActivityModel(a.ID)
		if err != nil {
			return nil, err
		}
		entry := RPKEntry{Activity: a.ID, ValuePerRun: model.TotalValue(), Missing: model.Missing}
		if a.MinutesPerRun > 0 {
			entry.ValuePerHour = entry.ValuePerRun * 60 / a.MinutesPerRun
			lh, err := model.LotteryRealizeHours(a.MinutesPerRun)
			if err != nil {
				return nil, err
			}
			entry.LotteryHours = lh
		}
		out = append(out, entry)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].ValuePerRun == out[j].ValuePerRun {
			return out[i].Activity < out[j].Activity
		}
		return out[i].ValuePerRun > out[j].ValuePerRun
	})
	return out, nil
}

// pieces expands a schedule into expected item pieces, split into the
// guaranteed pool and the bonus (non-guaranteed) pool.
func (p *Planner) pieces(s *schedule.Schedule) (map[string]float64, map[string]float64) {
	guaranteed := make(map[string]float64)
	bonus := make(map[string]float64)
	for _, a := range p.rotation {
		runs := s.RunsByActivity[a.ID]
		if runs <= 0 {
			continue
		}
		profile := runconfig.Derive(a.Profile, p.run)
		counts, _ := p.drops[a.ID].ExpectedDrops(profile)
		for item, perRun := range counts {
			canonical := p.index.Canonical(p.prices, p.cfg.Phase, item)
			if p.bonus[strings.ToLower(item)] {
				bonus[canonical] += runs * perRun
			} else {
				guaranteed[canonical] += runs * perRun
			}
		}
	}
	return guaranteed, bonus
}

func (p *Planner) converter() *practical.Converter {
	keyTypes := make([]string, 0, len(p.rotation))
	for _, a := range p.rotation {
		keyTypes = append(keyTypes, a.KeyType)
	}
	return &practical.Converter{
		KeyTypes:    keyTypes,
		KeySetValue: p.cfg.KeySetValue,
		Prices:      p.prices,
		Index:       p.index,
		Phase:       p.cfg.Phase,
	}
}

// Plan computes the theoretical schedule and its practical snapshot for a
// time budget.
func (p *Planner) Plan(hours float64) (*schedule.Schedule, *practical.Snapshot, error) {
	if p.gen == nil {
		return nil, nil, fmt.Errorf("planner: no rotation activities configured")
	}
	s, err := p.gen.FromHours(hours)
	if err != nil {
		return nil, nil, err
	}
	guaranteed, bonus := p.pieces(s)
	return s, p.converter().Snapshot(s, guaranteed, bonus), nil
}

// SolveTarget finds the minimal time budget whose bankable value reaches
// the target, padded by the configured buffer multiplier.
func (p *Planner) SolveTarget(target float64) (*solver.Result, error) {
	buffer := p.cfg.Buffer
	if buffer == 0 {
		buffer = 1
	}
	res, err := solver.SolveHours(target, buffer, p.Plan)
	if err != nil {
		return nil, err
	}
	p.log.Info().Float64("target", target).Float64("hours", res.Hours).
		Float64("bankable", res.Snapshot.Bankable).Msg("target solved")
	return res, nil
}
