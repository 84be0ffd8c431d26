package main

import (
	"flag"
	"fmt"
	"os"
	"sort"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/domino14/rpk/config"
	"github.com/domino14/rpk/droptable"
	"github.com/domino14/rpk/planner"
	"github.com/domino14/rpk/practical"
	"github.com/domino14/rpk/prices"
	"github.com/domino14/rpk/runconfig"
	"github.com/domino14/rpk/schedule"
)

var (
	cfgPath = flag.String("config", "", "path to an rpk config file")
	hours   = flag.Float64("hours", 0, "time budget to plan for, in hours")
	target  = flag.Float64("target", 0, "Ist target to solve farming hours for")
)

func main() {
	flag.Parse()
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	cfg := config.DefaultConfig()
	if err := cfg.Load(*cfgPath); err != nil {
		log.Fatal().Err(err).Msg("loading config")
	}
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if cfg.Debug() {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	var (
		priceTable *prices.Table
		drops      *droptable.Table
		runCfg     *runconfig.Config
		plan       *planner.PlanConfig
	)
	g := new(errgroup.Group)
	g.Go(func() error {
		var err error
		priceTable, err = prices.Load(cfg.PriceTablePath())
		return err
	})
	g.Go(func() error {
		var err error
		drops, err = droptable.LoadBossDir(cfg.BossDropsDir())
		return err
	})
	g.Go(func() error {
		c, err := runconfig.Load(cfg.RunConfigPath())
		if os.IsNotExist(err) {
			// The run config only carries overrides; absent is fine.
			return nil
		}
		runCfg = c
		return err
	})
	g.Go(func() error {
		var err error
		plan, err = planner.LoadPlanConfig(cfg.PlanConfigPath())
		return err
	})
	if err := g.Wait(); err != nil {
		log.Fatal().Err(err).Msg("loading data files")
	}

	p, err := planner.New(plan, priceTable, drops, runCfg)
	if err != nil {
		log.Fatal().Err(err).Msg("building planner")
	}

	report, err := p.RPKReport()
	if err != nil {
		log.Fatal().Err(err).Msg("rpk report")
	}
	fmt.Println("Expected value per run (Ist):")
	for _, e := range report {
		fmt.Printf("  %-12s %10.6f /run  %10.4f /hour", e.Activity, e.ValuePerRun, e.ValuePerHour)
		if e.LotteryHours > 0 {
			fmt.Printf("  (lottery ~%.0f h)", e.LotteryHours)
		}
		fmt.Println()
		for _, tc := range e.Missing {
			log.Warn().Str("activity", e.Activity).Str("tc", tc).Msg("no drop data for encounter type")
		}
	}

	switch {
	case *target > 0:
		res, err := p.SolveTarget(*target)
		if err != nil {
			log.Fatal().Err(err).Msg("solving target")
		}
		fmt.Printf("\nTarget %.2f Ist (goal %.0f): %.2f hours\n", *target, res.Goal, res.Hours)
		printSnapshot(res.Schedule, res.Snapshot)
	case *hours > 0:
		s, snap, err := p.Plan(*hours)
		if err != nil {
			log.Fatal().Err(err).Msg("planning")
		}
		fmt.Printf("\nPlan for %.2f hours:\n", *hours)
		printSnapshot(s, snap)
	}
}

func printSnapshot(s *schedule.Schedule, snap *practical.Snapshot) {
	fmt.Println("  Runs:")
	for _, id := range sortedKeys(s.RunsByActivity) {
		fmt.Printf("    %-12s %8.2f runs  (%.1f min)\n", id, s.RunsByActivity[id], s.MinutesByActivity[id])
	}
	fmt.Println("  Keys (whole):")
	for _, kt := range sortedKeys(s.Resources) {
		fmt.Printf("    %-12s %d (theoretical %.2f)\n", kt, snap.Resources[kt], s.Resources[kt])
	}
	fmt.Printf("  Complete key sets: %d\n", snap.KeySets)
	for _, lot := range snap.Lots {
		fmt.Printf("  %-12s %4d pieces → %d lots × %.2f Ist\n", lot.Item, lot.Pieces, lot.Lots, lot.ValuePerLot)
	}
	fmt.Printf("  Bankable: %.2f Ist", snap.Bankable)
	if snap.BonusValue > 0 {
		fmt.Printf("  (+%.2f Ist non-guaranteed)", snap.BonusValue)
	}
	fmt.Println()
}

func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
