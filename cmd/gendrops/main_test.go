package main

import (
	"testing"

	"github.com/matryer/is"

	"github.com/domino14/rpk/prices"
)

func TestPricedFiltersByMembership(t *testing.T) {
	is := is.New(t)
	table := &prices.Table{
		DefaultPhase: "1",
		Phases: map[string]map[string]prices.Quote{
			"1": {
				"OHM": {OrderSize: 1, OrderValue: 2},
				// Listed but currently worthless; membership keeps it.
				"TIR": {OrderSize: 1, OrderValue: 0},
			},
		},
	}
	ix := prices.NewIndex()

	econ := map[string]float64{"ohm": 0.01, "tir": 0.2, "gcv": 0.05}
	got := priced(econ, table, ix, "")
	is.Equal(len(got), 2)
	is.Equal(got["ohm"], 0.01)
	is.Equal(got["tir"], 0.2)
	_, ok := got["gcv"]
	is.True(!ok)
}
