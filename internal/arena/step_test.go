package arena

import (
	"context"
	"testing"

	"agora/internal/game"
	"agora/internal/strategy"
)

func classicGrid(t *testing.T, size int, seed int64) *Grid {
	t.Helper()
	g, err := NewGrid(GridConfig{Width: size, Height: size, Mode: SeedClassic, Seed: seed})
	if err != nil {
		t.Fatalf("new grid: %v", err)
	}
	return g
}

func TestStepValidatesConfig(t *testing.T) {
	g := classicGrid(t, 5, 1)
	if _, err := g.Step(context.Background(), StepConfig{RoundsPerMatch: 0, Payoffs: game.Standard()}); err == nil {
		t.Fatal("expected error for zero rounds per match")
	}
}

func TestStepConservesPopulation(t *testing.T) {
	g := classicGrid(t, 10, 42)
	for i := 0; i < 5; i++ {
		census, err := g.Step(context.Background(), StepConfig{
			RoundsPerMatch: 8,
			Payoffs:        game.Standard(),
			Workers:        4,
		})
		if err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
		if census.Total() != 100 {
			t.Fatalf("step %d: population not conserved, got %d", i, census.Total())
		}
	}
	if g.Generation() != 5 {
		t.Fatalf("generation counter: want 5, got %d", g.Generation())
	}
}

func TestStepLoneCooperatorFallsToDefectors(t *testing.T) {
	g, err := NewGrid(GridConfig{
		Width:   3,
		Height:  3,
		Mode:    SeedCluster,
		Invader: strategy.AlwaysCooperate,
		Radius:  0,
		Seed:    1,
	})
	if err != nil {
		t.Fatalf("new grid: %v", err)
	}

	census, err := g.Step(context.Background(), StepConfig{RoundsPerMatch: 1, Payoffs: game.Standard()})
	if err != nil {
		t.Fatalf("step: %v", err)
	}

	// The center cooperator scores 0 against 8 defectors; every defector
	// earns at least one mutual-defection point, so the whole grid defects.
	if census[strategy.AlwaysDefect] != 9 {
		t.Fatalf("expected uniform defection, got %v", census)
	}
}

func TestStepDeterministicForDeterministicStrategies(t *testing.T) {
	run := func() Census {
		g := classicGrid(t, 8, 42)
		var census Census
		for i := 0; i < 3; i++ {
			var err error
			census, err = g.Step(context.Background(), StepConfig{
				RoundsPerMatch: 8,
				Payoffs:        game.Standard(),
				Workers:        4,
			})
			if err != nil {
				t.Fatalf("step: %v", err)
			}
		}
		return census
	}

	first := run()
	for i := 0; i < 3; i++ {
		if next := run(); !next.Equal(first) {
			t.Fatalf("identical inputs diverged: %v vs %v", first, next)
		}
	}
}

func TestStepWorkerCountDoesNotChangeOutcome(t *testing.T) {
	run := func(workers int) Census {
		g, err := NewGrid(GridConfig{Width: 8, Height: 8, Mode: SeedUniform, Seed: 42})
		if err != nil {
			t.Fatalf("new grid: %v", err)
		}
		census, err := g.Step(context.Background(), StepConfig{
			RoundsPerMatch: 4,
			Payoffs:        game.Standard(),
			Workers:        workers,
		})
		if err != nil {
			t.Fatalf("step: %v", err)
		}
		return census
	}

	serial := run(1)
	parallel := run(8)
	if !serial.Equal(parallel) {
		t.Fatalf("worker scheduling changed the outcome: %v vs %v", serial, parallel)
	}
}

func TestStepCancelled(t *testing.T) {
	g := classicGrid(t, 6, 1)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := g.Step(ctx, StepConfig{RoundsPerMatch: 8, Payoffs: game.Standard()}); err == nil {
		t.Fatal("expected context error from a cancelled step")
	}
}
