// Package ev is the expected-value engine. It turns an encounter profile, a
// drop table and a price table into a probability-weighted valuation of one
// run, split into a predictable bucket (items likely enough to rely on over
// a session) and a lottery bucket (economically real but not reliably seen),
// plus "at least one" odds for tracked rare-item groups.
package ev

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/domino14/rpk/droptable"
	"github.com/domino14/rpk/prices"
)

// ItemValuation is one priced item's contribution to a single run.
type ItemValuation struct {
	Item           string
	ExpectedCount  float64
	ExpectedValue  float64
	MaxProbability float64
}

// Bucket is one side of the predictable/lottery split. Items are sorted by
// per-run expected value, largest first.
type Bucket struct {
	Items      []ItemValuation
	TotalValue float64
	TotalCount float64
}

// RareGroup is an ordered set of item identifiers tracked for at-least-one
// odds regardless of which value bucket they land in.
type RareGroup struct {
	Name  string   `yaml:"name" json:"name"`
	Items []string `yaml:"items" json:"items"`
}

// GroupOdds holds the Poisson occurrence rates and at-least-one
// probabilities for one rare group, per run.
type GroupOdds struct {
	Group      string
	Lambda     map[string]float64
	PerItem    map[string]float64
	AtLeastOne float64
}

// Model is the result of one EV computation.
type Model struct {
	Predictable Bucket
	Lottery     Bucket
	// Missing lists encounter types present in the profile but absent from
	// the drop table. They contribute nothing; callers may warn.
	Missing  []string
	RareOdds []GroupOdds
}

// Params are the inputs to Compute. Threshold is the minimum per-encounter
// probability for an item to count as predictable. It is deliberately a
// required parameter: different planners want 1/250, 0.01, or zero (defer
// classification entirely), so the engine bakes in no default.
type Params struct {
	Profile    map[string]float64
	Drops      *droptable.Table
	Prices     *prices.Table
	Index      *prices.Index
	Phase      string
	Threshold  float64
	RareGroups []RareGroup
}

// Compute runs the EV split for one encounter profile. Per-item anomalies
// (missing price, missing drop entry, zero probability) degrade to zero
// contribution; only malformed top-level numerics are errors.
func Compute(p Params) (*Model, error) {
	if math.IsNaN(p.Threshold) || math.IsInf(p.Threshold, 0) || p.Threshold < 0 {
		return nil, fmt.Errorf("ev: bad predictable threshold %v", p.Threshold)
	}
	for tc, count := range p.Profile {
		if math.IsNaN(count) || math.IsInf(count, 0) {
			return nil, fmt.Errorf("ev: non-finite expected count for %q", tc)
		}
	}

	rareOf := make(map[string]int) // lowercase item → group index
	lambdas := make([]map[string]float64, len(p.RareGroups))
	for gi, g := range p.RareGroups {
		lambdas[gi] = make(map[string]float64)
		for _, item := range g.Items {
			rareOf[strings.ToLower(item)] = gi
		}
	}

	type acc struct {
		count   float64
		value   float64
		maxProb float64
	}
	items := make(map[string]*acc)
	var missing []string

	for tc, encounters := range p.Profile {
		if encounters <= 0 {
			continue
		}
		drops := p.Drops.Drops(tc)
		if drops == nil {
			missing = append(missing, tc)
			continue
		}
		for item, prob := range drops {
			if prob <= 0 {
				continue
			}
			canonical := p.Index.Canonical(p.Prices, p.Phase, item)
			unit := p.Index.Quote(p.Prices, p.Phase, item).UnitValue()

			if gi, ok := rareOf[strings.ToLower(item)]; ok {
				lambdas[gi][canonical] += encounters * prob
			}
			if unit <= 0 {
				// Unpriced items stay out of the value buckets. Rare-group
				// odds above are priced currencies by construction, so they
				// were already tracked.
				continue
			}
			a := items[canonical]
			if a == nil {
				a = &acc{}
				items[canonical] = a
			}
			a.count += encounters * prob
			a.value += encounters * prob * unit
			a.maxProb = math.Max(a.maxProb, prob)
		}
	}
	sort.Strings(missing)

	m := &Model{Missing: missing}
	for item, a := range items {
		v := ItemValuation{
			Item:           item,
			ExpectedCount:  a.count,
			ExpectedValue:  a.value,
			MaxProbability: a.maxProb,
		}
		// Classification uses the global max probability across all
		// encounter types in the profile, so an item lands in exactly one
		// bucket.
		if a.maxProb >= p.Threshold {
			m.Predictable.Items = append(m.Predictable.Items, v)
		} else {
			m.Lottery.Items = append(m.Lottery.Items, v)
		}
	}
	finishBucket(&m.Predictable)
	finishBucket(&m.Lottery)

	for gi, g := range p.RareGroups {
		odds := GroupOdds{
			Group:   g.Name,
			Lambda:  lambdas[gi],
			PerItem: make(map[string]float64, len(lambdas[gi])),
		}
		total := 0.0
		for item, l := range lambdas[gi] {
			odds.PerItem[item] = AtLeastOne(l)
			total += l
		}
		odds.AtLeastOne = AtLeastOne(total)
		m.RareOdds = append(m.RareOdds, odds)
	}

	log.Debug().
		Float64("predictable", m.Predictable.TotalValue).
		Float64("lottery", m.Lottery.TotalValue).
		Int("missingTcs", len(m.Missing)).
		Msg("ev-computed")
	return m, nil
}

func finishBucket(b *Bucket) {
	sort.Slice(b.Items, func(i, j int) bool {
		if b.Items[i].ExpectedValue == b.Items[j].ExpectedValue {
			return b.Items[i].Item < b.Items[j].Item
		}
		return b.Items[i].ExpectedValue > b.Items[j].ExpectedValue
	})
	b.TotalValue = lo.SumBy(b.Items, func(v ItemValuation) float64 { return v.ExpectedValue })
	b.TotalCount = lo.SumBy(b.Items, func(v ItemValuation) float64 { return v.ExpectedCount })
}

// TotalValue is the full per-run EV, both buckets combined.
func (m *Model) TotalValue() float64 {
	return m.Predictable.TotalValue + m.Lottery.TotalValue
}

// AtLeastOne is the Poisson probability of seeing at least one occurrence
// given a summed expected-occurrence rate. Accurate for small independent
// per-trial probabilities, which is what rune drops are.
func AtLeastOne(lambda float64) float64 {
	if lambda <= 0 {
		return 0
	}
	return 1 - distuv.Poisson{Lambda: lambda}.Prob(0)
}

// LotteryRealizeHours estimates how long until the lottery half of the EV
// starts feeling real: it picks the value-weighted median lottery item
// (accumulate items, largest contribution first, to half the lottery
// total) and converts the expected runs to see one of it into hours.
//
// The median is weighted by per-run value contribution on purpose: a
// raw-rarity median is dominated by ultra-rare low-value items and makes
// the estimate uselessly large.
func (m *Model) LotteryRealizeHours(minutesPerRun float64) (float64, error) {
	if minutesPerRun <= 0 || math.IsNaN(minutesPerRun) || math.IsInf(minutesPerRun, 0) {
		return 0, fmt.Errorf("ev: bad minutes per run %v", minutesPerRun)
	}
	if m.Lottery.TotalValue <= 0 {
		return 0, nil
	}
	half := m.Lottery.TotalValue / 2
	cum := 0.0
	for _, v := range m.Lottery.Items {
		cum += v.ExpectedValue
		if cum >= half {
			if v.ExpectedCount <= 0 {
				return 0, nil
			}
			runs := 1 / v.ExpectedCount
			return runs * minutesPerRun / 60, nil
		}
	}
	return 0, nil
}
