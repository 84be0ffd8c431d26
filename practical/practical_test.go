package practical

import (
	"testing"

	"github.com/matryer/is"
	"github.com/stretchr/testify/assert"

	"github.com/domino14/rpk/prices"
	"github.com/domino14/rpk/schedule"
)

func converter() *Converter {
	table := &prices.Table{
		DefaultPhase: "1",
		Phases: map[string]map[string]prices.Quote{
			"1": {
				"Ohm": {OrderSize: 1, OrderValue: 1.5},
				"PG":  {OrderSize: 40, OrderValue: 1},
			},
		},
	}
	return &Converter{
		KeyTypes:    []string{"terror", "hate", "destruction"},
		KeySetValue: 2.5,
		Prices:      table,
		Index:       prices.NewIndex(),
	}
}

func TestSnapshotWholeSetsOnly(t *testing.T) {
	is := is.New(t)
	c := converter()
	s := &schedule.Schedule{
		Resources: map[string]float64{"terror": 3.9, "hate": 2.2, "destruction": 2.999},
	}
	snap := c.Snapshot(s, nil, nil)
	is.Equal(snap.Resources["terror"], 3)
	is.Equal(snap.Resources["hate"], 2)
	is.Equal(snap.Resources["destruction"], 2)
	is.Equal(snap.KeySets, 2) // min across floored counts
	is.Equal(snap.Bankable, 5.0)
}

func TestSnapshotMissingKeyTypeMeansNoSets(t *testing.T) {
	is := is.New(t)
	c := converter()
	s := &schedule.Schedule{Resources: map[string]float64{"terror": 5}}
	snap := c.Snapshot(s, nil, nil)
	is.Equal(snap.KeySets, 0)
	is.Equal(snap.Bankable, 0.0)
}

func TestSnapshotTradeLots(t *testing.T) {
	is := is.New(t)
	c := converter()
	s := &schedule.Schedule{Resources: map[string]float64{}}
	pieces := map[string]float64{
		"ohm": 2.7,  // 2 whole pieces, order size 1 → 2 lots of 1.5
		"pg":  95.4, // 95 whole pieces, order size 40 → 2 lots of 1
	}
	snap := c.Snapshot(s, pieces, nil)
	is.Equal(len(snap.Lots), 2)
	is.Equal(snap.Lots[0].Item, "Ohm")
	is.Equal(snap.Lots[0].Lots, 2)
	is.Equal(snap.Lots[1].Item, "PG")
	is.Equal(snap.Lots[1].Pieces, 95)
	is.Equal(snap.Lots[1].Lots, 2)
	is.Equal(snap.Bankable, 2*1.5+2*1.0)
}

func TestSnapshotPartialLotsAreWorthless(t *testing.T) {
	is := is.New(t)
	c := converter()
	s := &schedule.Schedule{Resources: map[string]float64{}}
	snap := c.Snapshot(s, map[string]float64{"pg": 39.9}, nil)
	// 39 whole pieces don't complete a 40-piece lot.
	is.Equal(len(snap.Lots), 1)
	is.Equal(snap.Lots[0].Lots, 0)
	is.Equal(snap.Bankable, 0.0)

	snap = c.Snapshot(s, map[string]float64{"ohm": 0.99}, nil)
	is.Equal(len(snap.Lots), 0) // not even one whole piece
}

func TestSnapshotBonusNeverBanks(t *testing.T) {
	is := is.New(t)
	c := converter()
	s := &schedule.Schedule{Resources: map[string]float64{}}
	snap := c.Snapshot(s, nil, map[string]float64{"ohm": 4})
	is.Equal(snap.Bankable, 0.0)
	is.Equal(snap.BonusValue, 4*1.5)
	is.Equal(len(snap.Bonus), 1)
}

func TestSnapshotNeverExceedsTheoreticalValue(t *testing.T) {
	c := converter()
	ix := c.Index
	for _, tc := range []struct {
		resources map[string]float64
		pieces    map[string]float64
	}{
		{map[string]float64{"terror": 3.9, "hate": 3.1, "destruction": 3.5}, map[string]float64{"ohm": 7.2, "pg": 123.4}},
		{map[string]float64{"terror": 0.9, "hate": 0.9, "destruction": 0.9}, map[string]float64{"pg": 39.99}},
		{map[string]float64{}, map[string]float64{}},
	} {
		s := &schedule.Schedule{Resources: tc.resources}
		snap := c.Snapshot(s, tc.pieces, nil)

		theoretical := 0.0
		min := -1.0
		for _, kt := range c.KeyTypes {
			n := tc.resources[kt]
			if min < 0 || n < min {
				min = n
			}
		}
		if min > 0 {
			theoretical += min * c.KeySetValue
		}
		for item, n := range tc.pieces {
			theoretical += n * ix.Quote(c.Prices, "", item).UnitValue()
		}
		assert.LessOrEqual(t, snap.Bankable, theoretical+1e-12)
	}
}
