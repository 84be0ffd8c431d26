// Package runconfig derives the effective per-run encounter profile for an
// activity from a baseline profile plus layered override directives. The
// layering lets a planning config say "use the default clear profile except
// skip these encounter types and force this boss roll to a measured count".
package runconfig

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
)

// Config mirrors the run-configuration JSON.
type Config struct {
	Base struct {
		UseMapTcCounts *bool `json:"useMapTcCounts"`
	} `json:"base"`
	TcOverride struct {
		TcMul  map[string]float64 `json:"tcMul"`
		TcZero []string           `json:"tcZero"`
	} `json:"tcOverride"`
	Guaranteed struct {
		TcSet map[string]float64 `json:"tcSet"`
		TcAdd map[string]float64 `json:"tcAdd"`
	} `json:"guaranteed"`
}

// Load reads a run configuration from a JSON file.
func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var c Config
	if err := json.Unmarshal(raw, &c); err != nil {
		return nil, fmt.Errorf("run config %s: %w", path, err)
	}
	return &c, nil
}

// Directives is the normalized override set applied to a baseline profile.
type Directives struct {
	// UseBaseline copies positive baseline counts in as step one.
	// Defaults to true.
	UseBaseline bool
	Mul         map[string]float64
	Zero        []string
	Set         map[string]float64
	Add         map[string]float64
}

// Directives normalizes the config into its override set.
func (c *Config) Directives() Directives {
	useBaseline := true
	if c.Base.UseMapTcCounts != nil {
		useBaseline = *c.Base.UseMapTcCounts
	}
	return Directives{
		UseBaseline: useBaseline,
		Mul:         c.TcOverride.TcMul,
		Zero:        c.TcOverride.TcZero,
		Set:         c.Guaranteed.TcSet,
		Add:         c.Guaranteed.TcAdd,
	}
}

// Derive applies the directives to a baseline profile and returns a fresh
// profile map. The application order is fixed and not commutative:
// baseline copy, then multiplicative, zero, forced-exact, and finally
// additive overrides. Keys absent from every step stay absent.
func Derive(baseline map[string]float64, d Directives) map[string]float64 {
	out := make(map[string]float64)

	if d.UseBaseline {
		for tc, count := range baseline {
			if count > 0 {
				out[tc] = count
			}
		}
	}

	for tc, mul := range d.Mul {
		base := baseline[tc]
		if base > 0 && !math.IsNaN(mul) && !math.IsInf(mul, 0) {
			out[tc] = base * mul
		}
	}

	for _, tc := range d.Zero {
		out[tc] = 0
	}

	for tc, v := range d.Set {
		if v >= 0 && !math.IsNaN(v) && !math.IsInf(v, 0) {
			out[tc] = v
		}
	}

	for tc, delta := range d.Add {
		if delta == 0 || math.IsNaN(delta) || math.IsInf(delta, 0) {
			continue
		}
		out[tc] += delta
	}

	return out
}
