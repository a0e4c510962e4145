package arena

import (
	"context"
	"fmt"

	"agora/internal/game"
	"agora/internal/strategy"
)

// Verdict classifies the outcome of an invasion run.
type Verdict string

const (
	// VerdictFailed means the cluster was eliminated or shrank.
	VerdictFailed Verdict = "failed"
	// VerdictStable means the cluster survived without meaningful spread.
	VerdictStable Verdict = "stable"
	// VerdictSucceeded means the cluster more than doubled.
	VerdictSucceeded Verdict = "succeeded"
	// VerdictConquest means the invader holds every cell.
	VerdictConquest Verdict = "conquest"
)

// InvasionConfig describes a cluster-invasion experiment: a block of
// invaders dropped into a grid otherwise held by the background strategy.
type InvasionConfig struct {
	Width  int
	Height int
	// Invader seeds the central cluster; Background (default always_defect)
	// fills the rest.
	Invader    string
	Background string
	// Radius is the cluster's L1 radius around the grid center.
	Radius int

	RoundsPerMatch  int
	Payoffs         game.PayoffMatrix
	MaxGenerations  int
	StabilityWindow int
	Workers         int
	Seed            int64
}

// InvasionResult reports how the invader population evolved.
type InvasionResult struct {
	// Initial and Final are the invader cell counts at the first and last
	// recorded generation.
	Initial int `json:"initial"`
	Final   int `json:"final"`
	// History is the invader count per generation.
	History     []int   `json:"history"`
	Generations int     `json:"generations"`
	Converged   bool    `json:"converged"`
	Incomplete  bool    `json:"incomplete"`
	Verdict     Verdict `json:"verdict"`
}

// Succeeded reports whether the invader ended above its starting count.
// Sweeps over cluster radius use this as their trial metric.
func (r InvasionResult) Succeeded() bool {
	return r.Final > r.Initial
}

// Invade runs a cluster invasion to convergence and classifies the outcome.
func Invade(ctx context.Context, cfg InvasionConfig) (InvasionResult, error) {
	if cfg.Invader == "" {
		return InvasionResult{}, fmt.Errorf("invasion requires an invader strategy")
	}
	background := cfg.Background
	if background == "" {
		background = strategy.AlwaysDefect
	}

	grid, err := NewGrid(GridConfig{
		Width:      cfg.Width,
		Height:     cfg.Height,
		Mode:       SeedCluster,
		Radius:     cfg.Radius,
		Invader:    cfg.Invader,
		Background: background,
		Seed:       cfg.Seed,
	})
	if err != nil {
		return InvasionResult{}, err
	}

	run, err := grid.Run(ctx, RunConfig{
		RoundsPerMatch:  cfg.RoundsPerMatch,
		Payoffs:         cfg.Payoffs,
		MaxGenerations:  cfg.MaxGenerations,
		StabilityWindow: cfg.StabilityWindow,
		Workers:         cfg.Workers,
	})
	if err != nil {
		return InvasionResult{}, err
	}

	result := InvasionResult{
		History:     make([]int, 0, len(run.History)),
		Generations: run.Generations,
		Converged:   run.Converged,
		Incomplete:  run.Incomplete,
	}
	for _, census := range run.History {
		result.History = append(result.History, census[cfg.Invader])
	}
	result.Initial = result.History[0]
	result.Final = result.History[len(result.History)-1]
	result.Verdict = classifyInvasion(result.Initial, result.Final, cfg.Width*cfg.Height)
	return result, nil
}

// classifyInvasion: eliminated or shrunk clusters failed, more-than-doubled
// clusters succeeded (conquest when the whole grid flipped), anything in
// between held stable.
func classifyInvasion(initial, final, total int) Verdict {
	switch {
	case final == 0:
		return VerdictFailed
	case final > initial*2:
		if final == total {
			return VerdictConquest
		}
		return VerdictSucceeded
	case final >= initial:
		return VerdictStable
	default:
		return VerdictFailed
	}
}
