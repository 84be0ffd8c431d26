// Package practical converts a theoretical schedule into what a player can
// actually liquidate. Fractional keys and item pieces are truncated to
// integers, only whole key sets and whole trade lots bank any value, and
// partial lots contribute nothing. This is the deliberate gap between EV on
// paper and Ist in the stash.
package practical

import (
	"math"
	"sort"

	"github.com/rs/zerolog/log"

	"github.com/domino14/rpk/prices"
	"github.com/domino14/rpk/schedule"
)

// TradeLot is one item's completed whole-lot trades.
type TradeLot struct {
	Item        string
	Pieces      int
	Lots        int
	ValuePerLot float64
}

// Snapshot is the bankable view of one schedule. Immutable once built.
type Snapshot struct {
	// Resources holds floored per-type key counts.
	Resources map[string]int
	// KeySets is the number of complete key sets, the minimum across the
	// floored key-type counts.
	KeySets int
	// Lots are the completed trade lots that contribute to Bankable.
	Lots []TradeLot
	// Bankable is the total realizable value: whole key sets plus whole
	// trade lots.
	Bankable float64
	// Bonus mirrors Lots for items flagged non-guaranteed. Informational
	// only; BonusValue never feeds a solver stop condition.
	Bonus      []TradeLot
	BonusValue float64
}

// Converter holds the fixed rates a snapshot is valued at.
type Converter struct {
	// KeyTypes defines the key set. A set is complete when every listed
	// type has at least one whole key.
	KeyTypes []string
	// KeySetValue is the Ist value of one complete key set.
	KeySetValue float64
	Prices      *prices.Table
	Index       *prices.Index
	Phase       string
}

// Snapshot converts a schedule plus the expected item pieces it yields.
// pieces are guaranteed-pool items; bonusPieces are the non-guaranteed
// bucket, valued identically but kept separate.
func (c *Converter) Snapshot(s *schedule.Schedule, pieces, bonusPieces map[string]float64) *Snapshot {
	snap := &Snapshot{Resources: make(map[string]int, len(s.Resources))}
	for key, count := range s.Resources {
		snap.Resources[key] = int(math.Floor(count))
	}

	if len(c.KeyTypes) > 0 {
		sets := math.MaxInt
		for _, kt := range c.KeyTypes {
			if n := snap.Resources[kt]; n < sets {
				sets = n
			}
		}
		snap.KeySets = sets
		snap.Bankable += float64(sets) * c.KeySetValue
	}

	snap.Lots = c.lots(pieces)
	for _, lot := range snap.Lots {
		snap.Bankable += float64(lot.Lots) * lot.ValuePerLot
	}
	snap.Bonus = c.lots(bonusPieces)
	for _, lot := range snap.Bonus {
		snap.BonusValue += float64(lot.Lots) * lot.ValuePerLot
	}

	log.Debug().Int("keySets", snap.KeySets).Float64("bankable", snap.Bankable).
		Float64("bonus", snap.BonusValue).Msg("practical-snapshot")
	return snap
}

func (c *Converter) lots(pieces map[string]float64) []TradeLot {
	out := make([]TradeLot, 0, len(pieces))
	for item, count := range pieces {
		whole := int(math.Floor(count))
		if whole <= 0 {
			continue
		}
		q := c.Index.Quote(c.Prices, c.Phase, item)
		lots := int(math.Floor(float64(whole) / q.OrderSize))
		out = append(out, TradeLot{
			Item:        c.Index.Canonical(c.Prices, c.Phase, item),
			Pieces:      whole,
			Lots:        lots,
			ValuePerLot: q.OrderValue,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Item < out[j].Item })
	return out
}
