package droptable

import (
	"math"
	"strings"
)

// RawOutcome is one weighted outcome of a treasure-class roll. Ref either
// names another treasure class or is a leaf item code.
type RawOutcome struct {
	Ref  string
	Prob int
}

// RawClass is one row of a TreasureClassEx-style table: a single roll picks
// one outcome by weight, repeated Picks times. Picks of zero means
// unspecified and is treated as one. Negative Picks denote a deterministic
// sequence of inner classes (the Countess rune drops) truncated to |Picks|.
type RawClass struct {
	Name     string
	Picks    int
	NoDrop   int
	Outcomes []RawOutcome
}

// ClassSet holds raw treasure classes by name.
type ClassSet map[string]RawClass

func (c RawClass) picks() int {
	if c.Picks == 0 {
		return 1
	}
	return c.Picks
}

// adjustedNoDrop scales a NoDrop weight for the player count, matching the
// game's nodrop exponent: nd' = (nd/(nd+sum))^ceil(players/2), re-expressed
// as a weight against the unchanged outcome sum.
func adjustedNoDrop(noDrop, sumProbs, players int) int {
	if players < 1 {
		players = 1
	} else if players > 8 {
		players = 8
	}
	exp := int(float64(players)/2.0 + 0.5)
	ratio := math.Pow(float64(noDrop)/float64(noDrop+sumProbs), float64(exp))
	return int(math.Round(ratio / (1 - ratio) * float64(sumProbs)))
}

// outcomeProbs returns the single-roll outcome distribution for a class,
// with NoDrop folded into the normalizing total but omitted from the map.
func (cs ClassSet) outcomeProbs(name string, players int) map[string]float64 {
	c := cs[name]
	sum := 0
	for _, o := range c.Outcomes {
		sum += o.Prob
	}
	total := sum
	if c.NoDrop > 0 && sum > 0 {
		total += adjustedNoDrop(c.NoDrop, sum, players)
	}
	out := make(map[string]float64, len(c.Outcomes))
	if total == 0 {
		return out
	}
	for _, o := range c.Outcomes {
		out[o.Ref] += float64(o.Prob) / float64(total)
	}
	return out
}

// leafDist is the distribution over leaf item codes reached by repeatedly
// rolling from ref until a leaf.
func (cs ClassSet) leafDist(ref string, players int, memo map[string]map[string]float64) map[string]float64 {
	if ref == "" {
		return nil
	}
	if _, ok := cs[ref]; !ok {
		return map[string]float64{ref: 1}
	}
	if d, ok := memo[ref]; ok {
		return d
	}
	dist := make(map[string]float64)
	for outcome, p := range cs.outcomeProbs(ref, players) {
		if _, ok := cs[outcome]; ok {
			for leaf, lp := range cs.leafDist(outcome, players, memo) {
				dist[leaf] += p * lp
			}
		} else {
			dist[outcome] += p
		}
	}
	memo[ref] = dist
	return dist
}

// expectedOnePick is the expected leaf counts produced by one outer pick of
// the root class. Inner classes contribute their own Picks multiplier.
func (cs ClassSet) expectedOnePick(root string, players int, memo map[string]map[string]float64) map[string]float64 {
	out := make(map[string]float64)
	for ref, p := range cs.outcomeProbs(root, players) {
		if inner, ok := cs[ref]; ok {
			for leaf, lp := range cs.leafDist(ref, players, memo) {
				out[leaf] += p * float64(inner.picks()) * lp
			}
		} else {
			out[ref] += p
		}
	}
	return out
}

// ExpectedPerKill deterministically expands a root treasure class into
// expected leaf item counts for one kill.
//
// Act-boss classes often carry Picks=7 with an explicit gold outcome as
// Item1; popular drop calculators report item rates over the 6 item picks
// with gold handled separately, so one pick is dropped when the first
// outcome is a gld entry to keep per-kill counts aligned with them.
func (cs ClassSet) ExpectedPerKill(root string, players int) map[string]float64 {
	memo := make(map[string]map[string]float64)
	c, ok := cs[root]
	if !ok {
		return nil
	}
	picks := c.picks()

	if picks > 0 {
		if len(c.Outcomes) > 0 && strings.HasPrefix(c.Outcomes[0].Ref, "gld") {
			picks--
		}
		one := cs.expectedOnePick(root, players, memo)
		out := make(map[string]float64, len(one))
		for leaf, v := range one {
			out[leaf] = v * float64(picks)
		}
		return out
	}

	// Negative picks: roll each listed inner class Prob times, in order,
	// truncated to |picks| rolls total.
	rolls := 0
	out := make(map[string]float64)
	for _, o := range c.Outcomes {
		for i := 0; i < o.Prob && rolls < -picks; i++ {
			rolls++
			innerPicks := 1
			if inner, ok := cs[o.Ref]; ok {
				innerPicks = inner.picks()
			}
			for leaf, lp := range cs.leafDist(o.Ref, players, memo) {
				out[leaf] += float64(innerPicks) * lp
			}
		}
	}
	return out
}

// Economy bucket codes for non-rune leaves.
const (
	BucketUberKey     = "UKEY"
	BucketPerfectGem  = "PG"
	BucketPerfectAmn  = "PA"
	BucketFlawlessGem = "FG"
	BucketFlawlessAmn = "FA"
)

// BucketEconomy folds leaf item counts (keyed by item code) into economy
// identifiers using the given code→display-name mapping: "X Rune" becomes
// X, uber keys become UKEY, and perfect/flawless gems become PG/PA/FG/FA
// with amethyst split out. Unnamed or non-economy leaves are dropped.
func BucketEconomy(leafCounts map[string]float64, codeToName map[string]string) map[string]float64 {
	out := make(map[string]float64)
	for code, count := range leafCounts {
		name := strings.TrimSpace(codeToName[code])
		if name == "" {
			continue
		}
		switch {
		case strings.HasSuffix(name, " Rune"):
			out[strings.ToUpper(strings.TrimSuffix(name, " Rune"))] += count
		case name == "Key Of Terror" || name == "Key Of Hate" || name == "Key Of Destruction":
			out[BucketUberKey] += count
		case strings.HasPrefix(name, "Perfect "):
			if strings.Contains(name, "Amethyst") {
				out[BucketPerfectAmn] += count
			} else {
				out[BucketPerfectGem] += count
			}
		case strings.HasPrefix(name, "Flawless "):
			if strings.Contains(name, "Amethyst") {
				out[BucketFlawlessAmn] += count
			} else {
				out[BucketFlawlessGem] += count
			}
		}
	}
	return out
}
