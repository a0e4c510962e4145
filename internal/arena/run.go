package arena

import (
	"context"
	"errors"
	"fmt"

	"agora/internal/game"
)

// defaultStabilityWindow is how many consecutive unchanged censuses count as
// convergence.
const defaultStabilityWindow = 3

// RunConfig parameterizes a run to convergence.
type RunConfig struct {
	RoundsPerMatch int
	Payoffs        game.PayoffMatrix
	// MaxGenerations is the hard ceiling on evolution steps.
	MaxGenerations int
	// StabilityWindow defaults to 3.
	StabilityWindow int
	Workers         int
}

func (cfg *RunConfig) validate() error {
	if cfg.MaxGenerations <= 0 {
		return fmt.Errorf("max generations must be > 0, got %d", cfg.MaxGenerations)
	}
	if cfg.StabilityWindow <= 0 {
		cfg.StabilityWindow = defaultStabilityWindow
	}
	return nil
}

// RunResult is the outcome of a run to convergence.
type RunResult struct {
	// FinalCensus is the population at the last recorded generation.
	FinalCensus Census `json:"final_census"`
	// History holds one census per generation, starting with the initial
	// grid at index 0.
	History []Census `json:"history"`
	// Generations is the number of evolution steps actually applied.
	Generations int `json:"generations"`
	// Converged reports whether the population stabilized before the
	// generation ceiling.
	Converged bool `json:"converged"`
	// Incomplete is set when the run was cancelled mid-way; the result
	// then covers only the generations completed before cancellation.
	Incomplete bool `json:"incomplete"`
}

// Run steps the grid until the census is unchanged for the stability window,
// a single strategy holds the whole grid, or MaxGenerations is reached.
// A cancelled context yields the partial result with Incomplete set and a
// nil error; any other step failure is returned as-is.
func (g *Grid) Run(ctx context.Context, cfg RunConfig) (RunResult, error) {
	if err := cfg.validate(); err != nil {
		return RunResult{}, err
	}

	census := g.Census()
	result := RunResult{
		FinalCensus: census,
		History:     []Census{census},
	}
	if len(census) <= 1 {
		result.Converged = true
		return result, nil
	}

	stepCfg := StepConfig{
		RoundsPerMatch: cfg.RoundsPerMatch,
		Payoffs:        cfg.Payoffs,
		Workers:        cfg.Workers,
	}

	// stable counts consecutive unchanged census comparisons; the initial
	// census is a baseline, not a comparison.
	stable := 0
	for gen := 0; gen < cfg.MaxGenerations; gen++ {
		next, err := g.Step(ctx, stepCfg)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				result.Incomplete = true
				return result, nil
			}
			return RunResult{}, err
		}

		if next.Equal(census) {
			stable++
		} else {
			stable = 0
		}
		census = next
		result.FinalCensus = census
		result.History = append(result.History, census)
		result.Generations = gen + 1

		if stable >= cfg.StabilityWindow || len(census) == 1 {
			result.Converged = true
			return result, nil
		}
	}
	return result, nil
}
