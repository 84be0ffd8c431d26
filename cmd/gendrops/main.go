// gendrops regenerates the boss.<name>.drops.json files from the raw
// TreasureClassEx/misc tables: it deterministically expands each boss's
// treasure class into expected economy-item counts per kill and keeps only
// items the price table knows, so the planner's drop data and the price
// table always agree on identifiers.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/rs/zerolog/log"

	"github.com/domino14/rpk/droptable"
	"github.com/domino14/rpk/prices"
)

var (
	dataDir    = flag.String("data", "vendor/d2-drop-simulator/data-113d", "directory with TreasureClassEx.txt and misc.txt")
	priceTable = flag.String("prices", "data/rune-price-table.json", "price table used to filter economy items")
	outDir     = flag.String("out", "data/boss_drops", "output directory")
	players    = flag.Int("players", 1, "player count for the NoDrop adjustment (1-8)")
	difficulty = flag.String("difficulty", "H", "N, NM or H")
	phase      = flag.String("phase", "", "price phase for the summary; empty uses the default phase")
)

func bossClasses(difficulty string) map[string]string {
	suffix := ""
	switch difficulty {
	case "NM":
		suffix = " (N)"
	case "H":
		suffix = " (H)"
	}
	return map[string]string{
		"diablo":   "Diablo" + suffix,
		"baal":     "Baal" + suffix,
		"mephisto": "Mephisto" + suffix,
		"andariel": "Andariel" + suffix,
		"nihl":     "Nihlathak" + suffix,
		"countess": "Countess" + suffix,
		"summoner": "Summoner" + suffix,
		"council":  "Council" + suffix,
	}
}

func main() {
	flag.Parse()

	cs, err := droptable.LoadClassSetTSV(filepath.Join(*dataDir, "TreasureClassEx.txt"))
	if err != nil {
		log.Fatal().Err(err).Msg("loading treasure classes")
	}
	names, err := droptable.LoadMiscNames(filepath.Join(*dataDir, "misc.txt"))
	if err != nil {
		log.Fatal().Err(err).Msg("loading misc names")
	}
	table, err := prices.Load(*priceTable)
	if err != nil {
		log.Fatal().Err(err).Msg("loading price table")
	}
	ix := prices.NewIndex()

	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		log.Fatal().Err(err).Msg("creating output directory")
	}

	type summaryEntry struct {
		boss string
		rpk  float64
	}
	var summary []summaryEntry

	emit := func(boss string, leafCounts map[string]float64) {
		econ := priced(droptable.BucketEconomy(leafCounts, names), table, ix, *phase)
		out := droptable.BossDrops{
			Boss:       boss,
			Difficulty: *difficulty,
			Players:    *players,
			Drops:      econ,
		}
		raw, err := json.MarshalIndent(out, "", "  ")
		if err != nil {
			log.Fatal().Err(err).Msg("encoding drops")
		}
		path := filepath.Join(*outDir, fmt.Sprintf("boss.%s.drops.json", boss))
		if err := os.WriteFile(path, append(raw, '\n'), 0o644); err != nil {
			log.Fatal().Err(err).Str("path", path).Msg("writing drops")
		}
		rpk := 0.0
		for item, n := range econ {
			rpk += n * ix.Quote(table, *phase, item).UnitValue()
		}
		summary = append(summary, summaryEntry{boss, rpk})
	}

	for boss, tc := range bossClasses(*difficulty) {
		counts := cs.ExpectedPerKill(tc, *players)
		if counts == nil {
			log.Warn().Str("boss", boss).Str("tc", tc).Msg("treasure class not found")
			continue
		}
		emit(boss, counts)
	}

	// Travincal is five council members per run.
	if counts := cs.ExpectedPerKill(bossClasses(*difficulty)["council"], *players); counts != nil {
		times5 := make(map[string]float64, len(counts))
		for leaf, n := range counts {
			times5[leaf] = n * 5
		}
		emit("council5", times5)
	}

	sort.Slice(summary, func(i, j int) bool { return summary[i].rpk > summary[j].rpk })
	fmt.Printf("Expected Ist per kill (players=%d, difficulty=%s)\n", *players, *difficulty)
	for _, e := range summary {
		fmt.Printf("- %-10s %.10f\n", e.boss, e.rpk)
	}
}

// priced keeps only economy codes the price table lists at the chosen
// phase, so downstream EV sums never carry dead identifiers. Membership is
// what matters: a listed item quoted at zero still passes through.
func priced(econ map[string]float64, table *prices.Table, ix *prices.Index, phase string) map[string]float64 {
	quotes := table.Phase(phase)
	out := make(map[string]float64, len(econ))
	for item, n := range econ {
		if _, ok := quotes[ix.Canonical(table, phase, item)]; ok {
			out[item] = n
		}
	}
	return out
}
