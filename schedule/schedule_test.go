package schedule

import (
	"math"
	"testing"

	"github.com/matryer/is"
	"github.com/stretchr/testify/assert"
)

func rotation() []Activity {
	return []Activity{
		{ID: "countess", MinutesPerRun: 2, KeyType: "terror", KeyRate: 0.5},
		{ID: "summoner", MinutesPerRun: 3, KeyType: "hate", KeyRate: 0.25},
	}
}

func TestNewGeneratorValidation(t *testing.T) {
	is := is.New(t)
	_, err := NewGenerator(nil, PureEV)
	is.True(err != nil)

	bad := rotation()
	bad[0].MinutesPerRun = 0
	_, err = NewGenerator(bad, PureEV)
	is.True(err != nil)

	bad = rotation()
	bad[1].KeyRate = 0
	_, err = NewGenerator(bad, PureEV)
	is.True(err != nil)

	bad = rotation()
	bad[1].KeyRate = 1.5
	_, err = NewGenerator(bad, PureEV)
	is.True(err != nil)

	bad = rotation()
	bad[0].KeyType = ""
	_, err = NewGenerator(bad, PureEV)
	is.True(err != nil)
}

func TestPureEV(t *testing.T) {
	g, err := NewGenerator(rotation(), PureEV)
	assert.NoError(t, err)
	// One set: 2/0.5 + 3/0.25 = 16 minutes.
	assert.InDelta(t, 16, g.MinutesPerSet(), 1e-12)

	s, err := g.FromHours(16.0 / 60)
	assert.NoError(t, err)
	assert.InDelta(t, 2, s.RunsByActivity["countess"], 1e-12)
	assert.InDelta(t, 4, s.RunsByActivity["summoner"], 1e-12)
	assert.InDelta(t, 1, s.Resources["terror"], 1e-12)
	assert.InDelta(t, 1, s.Resources["hate"], 1e-12)
	assert.InDelta(t, 16, s.Minutes, 1e-12)
	assert.InDelta(t, 4, s.MinutesByActivity["countess"], 1e-12)
	assert.InDelta(t, 12, s.MinutesByActivity["summoner"], 1e-12)
}

func TestPureEVScalesLinearly(t *testing.T) {
	is := is.New(t)
	g, err := NewGenerator(rotation(), PureEV)
	is.NoErr(err)
	one, err := g.FromHours(1)
	is.NoErr(err)
	three, err := g.FromHours(3)
	is.NoErr(err)
	for id, runs := range one.RunsByActivity {
		is.True(FuzzyEqual(three.RunsByActivity[id], 3*runs))
	}
}

func TestScheduledTail(t *testing.T) {
	g, err := NewGenerator(rotation(), ScheduledTail)
	assert.NoError(t, err)

	// 24 minutes: one full set (16), then an 8-minute tail. The tail buys
	// the whole countess key (4 min) and a third of the summoner key.
	s, err := g.FromHours(24.0 / 60)
	assert.NoError(t, err)
	assert.InDelta(t, 2, s.Resources["terror"], 1e-12)
	assert.InDelta(t, 1+1.0/3, s.Resources["hate"], 1e-12)
	assert.InDelta(t, 2+2, s.RunsByActivity["countess"], 1e-12)
	assert.InDelta(t, 4+4.0/3, s.RunsByActivity["summoner"], 1e-12)
	assert.InDelta(t, 24, s.Minutes, 1e-12)
}

func TestScheduledTailSingleFractional(t *testing.T) {
	is := is.New(t)
	g, err := NewGenerator(rotation(), ScheduledTail)
	is.NoErr(err)

	// Below one set, only the first activity's key completes; exactly one
	// resource is fractional.
	s, err := g.FromHours(6.0 / 60)
	is.NoErr(err)
	// The countess key completes in 4 of the 6 minutes; the remaining 2
	// minutes buy a sixth of the summoner key.
	is.True(FuzzyEqual(s.Resources["terror"], 1))
	is.True(FuzzyEqual(s.Resources["hate"], 2.0/12))
}

func TestScheduledTailMatchesPureEVOnWholeSets(t *testing.T) {
	is := is.New(t)
	tail, err := NewGenerator(rotation(), ScheduledTail)
	is.NoErr(err)
	pure, err := NewGenerator(rotation(), PureEV)
	is.NoErr(err)

	// On exact whole-set budgets the two conventions agree.
	for _, sets := range []float64{1, 2, 5} {
		hours := sets * tail.MinutesPerSet() / 60
		a, err := tail.FromHours(hours)
		is.NoErr(err)
		b, err := pure.FromHours(hours)
		is.NoErr(err)
		for id := range a.RunsByActivity {
			is.True(FuzzyEqual(a.RunsByActivity[id], b.RunsByActivity[id]))
		}
		for k := range a.Resources {
			is.True(FuzzyEqual(a.Resources[k], b.Resources[k]))
		}
	}
}

func TestMonteCarloSingleActivity(t *testing.T) {
	g, err := NewGenerator([]Activity{
		{ID: "countess", MinutesPerRun: 1, KeyType: "terror", KeyRate: 0.5},
	}, MonteCarlo)
	assert.NoError(t, err)

	s, err := g.FromHours(1)
	assert.NoError(t, err)
	// 60 runs fit exactly; keys are Binomial(60, 0.5).
	assert.InDelta(t, 60, s.RunsByActivity["countess"], 1e-9)
	assert.InDelta(t, 30, s.Resources["terror"], 1.0)
	assert.InDelta(t, 60, s.Minutes, 1e-9)
}

func TestMonteCarloTracksPureEVOnLargeBudgets(t *testing.T) {
	mc, err := NewGenerator(rotation(), MonteCarlo)
	assert.NoError(t, err)
	pure, err := NewGenerator(rotation(), PureEV)
	assert.NoError(t, err)

	a, err := mc.FromHours(40)
	assert.NoError(t, err)
	b, err := pure.FromHours(40)
	assert.NoError(t, err)
	for id := range b.RunsByActivity {
		assert.InEpsilon(t, b.RunsByActivity[id], a.RunsByActivity[id], 0.05,
			"runs for %s", id)
	}
	for k := range b.Resources {
		assert.InEpsilon(t, b.Resources[k], a.Resources[k], 0.05,
			"resources for %s", k)
	}
}

func TestFromHoursRejectsBadBudgets(t *testing.T) {
	is := is.New(t)
	g, err := NewGenerator(rotation(), PureEV)
	is.NoErr(err)
	for _, h := range []float64{-1, math.NaN(), math.Inf(1)} {
		_, err := g.FromHours(h)
		is.True(err != nil)
	}

	s, err := g.FromHours(0)
	is.NoErr(err)
	is.Equal(s.Minutes, 0.0)
}

func TestParseStrategy(t *testing.T) {
	is := is.New(t)
	for in, want := range map[string]Strategy{
		"":               PureEV,
		"pure-ev":        PureEV,
		"scheduled-tail": ScheduledTail,
		"monte-carlo":    MonteCarlo,
	} {
		got, err := ParseStrategy(in)
		is.NoErr(err)
		is.Equal(got, want)
	}
	_, err := ParseStrategy("bogus")
	is.True(err != nil)
}

func TestRunningStat(t *testing.T) {
	is := is.New(t)
	type tc struct {
		vals  []float64
		mean  float64
		stdev float64
	}
	cases := []tc{
		{[]float64{10, 12, 23, 23, 16, 23, 21, 16}, 18, 5.2372293656638},
		{[]float64{1}, 1, 0},
		{[]float64{}, 0, 0},
		{[]float64{1, 1}, 1, 0},
	}
	for _, c := range cases {
		s := &Statistic{}
		for _, v := range c.vals {
			s.Push(v)
		}
		is.True(FuzzyEqual(s.Mean(), c.mean))
		is.True(FuzzyEqual(s.Stdev(), c.stdev))
	}
}
