package sweep

import (
	"context"

	"agora/internal/arena"
	"agora/internal/game"
	"agora/internal/strategy"
)

// Seed schedules lifted from the exploratory analyses these sweeps grew out
// of, kept so published critical points stay reproducible.
const (
	baseSeed             = 42
	invasionSeedStride   = 13
	temptationSeedStride = 7
)

// InvasionConfig scans cluster radius to find the critical mass an invader
// needs: the smallest cluster whose success rate crosses 50%.
type InvasionConfig struct {
	Width      int
	Height     int
	Invader    string
	Background string
	MaxRadius  int

	RoundsPerMatch int
	Payoffs        game.PayoffMatrix
	MaxGenerations int
	Trials         int
	Workers        int
}

// Invasion sweeps radius 0..MaxRadius. The trial metric is binary invasion
// success: the invader count grew past its starting size.
func Invasion(ctx context.Context, cfg InvasionConfig) (Result, error) {
	metric := func(ctx context.Context, param float64, seed int64) (float64, error) {
		res, err := arena.Invade(ctx, arena.InvasionConfig{
			Width:          cfg.Width,
			Height:         cfg.Height,
			Invader:        cfg.Invader,
			Background:     cfg.Background,
			Radius:         int(param),
			RoundsPerMatch: cfg.RoundsPerMatch,
			Payoffs:        cfg.Payoffs,
			MaxGenerations: cfg.MaxGenerations,
			Workers:        1,
			Seed:           seed,
		})
		if err != nil {
			return 0, err
		}
		if res.Incomplete {
			return 0, ctx.Err()
		}
		if res.Succeeded() {
			return 1, nil
		}
		return 0, nil
	}

	return Run(ctx, Config{
		From:       0,
		To:         float64(cfg.MaxRadius),
		Step:       1,
		Trials:     cfg.Trials,
		Workers:    cfg.Workers,
		BaseSeed:   baseSeed,
		SeedStride: invasionSeedStride,
		Metric:     metric,
	})
}

// TemptationConfig scans the temptation payoff T to find the phase
// transition where spatial cooperation collapses.
type TemptationConfig struct {
	Width  int
	Height int
	// Set names a strategy subset (classic, retaliators, full).
	Set string

	FromT float64
	ToT   float64
	StepT float64

	RoundsPerMatch int
	MaxGenerations int
	Trials         int
	Workers        int
}

// Temptation sweeps T over a uniformly seeded grid of the named strategy
// set. The trial metric is the final census's cooperation fraction.
func Temptation(ctx context.Context, cfg TemptationConfig) (Result, error) {
	catalog, err := strategy.Set(cfg.Set)
	if err != nil {
		return Result{}, err
	}

	metric := func(ctx context.Context, param float64, seed int64) (float64, error) {
		grid, err := arena.NewGrid(arena.GridConfig{
			Width:   cfg.Width,
			Height:  cfg.Height,
			Mode:    arena.SeedUniform,
			Catalog: catalog,
			Seed:    seed,
		})
		if err != nil {
			return 0, err
		}
		run, err := grid.Run(ctx, arena.RunConfig{
			RoundsPerMatch: cfg.RoundsPerMatch,
			Payoffs:        game.WithTemptation(param),
			MaxGenerations: cfg.MaxGenerations,
			Workers:        1,
		})
		if err != nil {
			return 0, err
		}
		if run.Incomplete {
			return 0, ctx.Err()
		}
		return run.FinalCensus.CooperationFraction(), nil
	}

	return Run(ctx, Config{
		From:       cfg.FromT,
		To:         cfg.ToT,
		Step:       cfg.StepT,
		Trials:     cfg.Trials,
		Workers:    cfg.Workers,
		BaseSeed:   baseSeed,
		SeedStride: temptationSeedStride,
		Metric:     metric,
	})
}
