// Package solver finds the minimal time budget whose bankable value meets a
// target. It assumes the schedule→snapshot composition is non-decreasing in
// the budget; with that, exponential bracketing followed by fixed-count
// bisection terminates in bounded steps with no cancellation machinery.
package solver

import (
	"errors"
	"fmt"
	"math"

	"github.com/rs/zerolog/log"

	"github.com/domino14/rpk/practical"
	"github.com/domino14/rpk/schedule"
)

const (
	// MaxDoublings caps the exponential bracketing phase. Running out
	// means the rates are zero or degenerate, not that more time helps.
	MaxDoublings = 40
	// BisectIterations fixes the bisection count; 2^-60 of the bracket is
	// far below any meaningful time granularity.
	BisectIterations = 60
)

var (
	ErrNonPositiveTarget = errors.New("solver: target value must be positive")
	ErrNoBracket         = errors.New("solver: bankable value never reached the target; rates are likely misconfigured")
)

// EvalFn produces the schedule and practical snapshot for a time budget.
type EvalFn func(hours float64) (*schedule.Schedule, *practical.Snapshot, error)

// Result is the solved budget together with the plan that meets the target.
type Result struct {
	Hours    float64
	Goal     float64
	Schedule *schedule.Schedule
	Snapshot *practical.Snapshot
}

// SolveHours returns the smallest hours budget whose bankable value reaches
// ceil(target × buffer). The buffer pads the target so a plan survives a
// little price slippage; pass 1 for none.
func SolveHours(target, buffer float64, eval EvalFn) (*Result, error) {
	if target <= 0 || math.IsNaN(target) || math.IsInf(target, 0) {
		return nil, fmt.Errorf("%w: got %v", ErrNonPositiveTarget, target)
	}
	if buffer <= 0 || math.IsNaN(buffer) || math.IsInf(buffer, 0) {
		return nil, fmt.Errorf("solver: bad buffer multiplier %v", buffer)
	}
	goal := math.Ceil(target * buffer)

	bankable := func(hours float64) (float64, error) {
		_, snap, err := eval(hours)
		if err != nil {
			return 0, err
		}
		return snap.Bankable, nil
	}

	hi := 1.0
	bracketed := false
	for i := 0; i < MaxDoublings; i++ {
		v, err := bankable(hi)
		if err != nil {
			return nil, err
		}
		if v >= goal {
			bracketed = true
			break
		}
		hi *= 2
	}
	if !bracketed {
		return nil, fmt.Errorf("%w (goal %v, ceiling %v hours)", ErrNoBracket, goal, hi)
	}

	lo := 0.0
	if hi > 1 {
		lo = hi / 2
	}
	for i := 0; i < BisectIterations; i++ {
		mid := (lo + hi) / 2
		v, err := bankable(mid)
		if err != nil {
			return nil, err
		}
		if v >= goal {
			hi = mid
		} else {
			lo = mid
		}
	}

	sched, snap, err := eval(hi)
	if err != nil {
		return nil, err
	}
	log.Debug().Float64("target", target).Float64("goal", goal).
		Float64("hours", hi).Float64("bankable", snap.Bankable).Msg("target-solved")
	return &Result{Hours: hi, Goal: goal, Schedule: sched, Snapshot: snap}, nil
}
