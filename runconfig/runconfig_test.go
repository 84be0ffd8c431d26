package runconfig

import (
	"math"
	"testing"

	"github.com/matryer/is"
)

func TestDeriveZeroAndSet(t *testing.T) {
	is := is.New(t)
	baseline := map[string]float64{"tcA": 5, "tcB": 1}
	d := Directives{
		UseBaseline: true,
		Zero:        []string{"tcA"},
		Set:         map[string]float64{"tcB": 3},
	}
	got := Derive(baseline, d)
	is.Equal(got, map[string]float64{"tcA": 0, "tcB": 3})
}

func TestDeriveOrderMatters(t *testing.T) {
	is := is.New(t)
	baseline := map[string]float64{"tcA": 4}
	d := Directives{
		UseBaseline: true,
		Mul:         map[string]float64{"tcA": 2.5},
		Zero:        []string{"tcA"},
		Set:         map[string]float64{"tcA": 7},
		Add:         map[string]float64{"tcA": -2},
	}
	// set wins over mul and zero; add applies last.
	is.Equal(Derive(baseline, d), map[string]float64{"tcA": 5})
}

func TestDeriveMulNeedsPositiveBaseline(t *testing.T) {
	is := is.New(t)
	baseline := map[string]float64{"tcA": 0, "tcB": 2}
	d := Directives{
		UseBaseline: true,
		Mul:         map[string]float64{"tcA": 3, "tcB": 3, "tcC": 3},
	}
	got := Derive(baseline, d)
	_, hasA := got["tcA"]
	_, hasC := got["tcC"]
	is.True(!hasA) // zero baseline: multiplier ignored
	is.True(!hasC) // no baseline at all
	is.Equal(got["tcB"], 6.0)
}

func TestDeriveSkipsNonFinite(t *testing.T) {
	is := is.New(t)
	baseline := map[string]float64{"tcA": 2}
	d := Directives{
		UseBaseline: true,
		Mul:         map[string]float64{"tcA": math.Inf(1)},
		Set:         map[string]float64{"tcB": math.NaN(), "tcC": -1},
		Add:         map[string]float64{"tcA": math.Inf(-1), "tcD": 0},
	}
	got := Derive(baseline, d)
	is.Equal(got, map[string]float64{"tcA": 2})
}

func TestDeriveWithoutBaseline(t *testing.T) {
	is := is.New(t)
	baseline := map[string]float64{"tcA": 5}
	d := Directives{
		UseBaseline: false,
		Add:         map[string]float64{"tcB": 1.5},
	}
	is.Equal(Derive(baseline, d), map[string]float64{"tcB": 1.5})
}

func TestDeriveReturnsFreshMap(t *testing.T) {
	is := is.New(t)
	baseline := map[string]float64{"tcA": 5}
	got := Derive(baseline, Directives{UseBaseline: true})
	got["tcA"] = 99
	is.Equal(baseline["tcA"], 5.0) // baseline untouched

	again := Derive(baseline, Directives{UseBaseline: true})
	is.Equal(again["tcA"], 5.0) // every derivation is a new value
}

func TestConfigDirectivesDefaults(t *testing.T) {
	is := is.New(t)
	var c Config
	d := c.Directives()
	is.True(d.UseBaseline) // useMapTcCounts defaults to true

	no := false
	c.Base.UseMapTcCounts = &no
	is.True(!c.Directives().UseBaseline)
}
