package tourney

import (
	"context"
	"math"
	"testing"

	"agora/internal/game"
	"agora/internal/strategy"
)

func classicTable(t *testing.T) Table {
	t.Helper()
	table, err := Pairwise(context.Background(), Config{
		Strategies:     []string{strategy.TitForTat, strategy.AlwaysCooperate, strategy.AlwaysDefect},
		RoundsPerMatch: 10,
		Payoffs:        game.Standard(),
		Seed:           42,
	})
	if err != nil {
		t.Fatalf("pairwise: %v", err)
	}
	return table
}

func TestPairwiseScores(t *testing.T) {
	table := classicTable(t)

	// Known closed-form scores over 10 rounds.
	cases := []struct {
		a, b string
		want float64
	}{
		{strategy.AlwaysCooperate, strategy.AlwaysCooperate, 30},
		{strategy.AlwaysDefect, strategy.AlwaysCooperate, 50},
		{strategy.AlwaysCooperate, strategy.AlwaysDefect, 0},
		{strategy.TitForTat, strategy.AlwaysDefect, 9},
		{strategy.AlwaysDefect, strategy.TitForTat, 14},
		{strategy.TitForTat, strategy.AlwaysCooperate, 30},
	}
	for _, c := range cases {
		if got := table.Scores[c.a][c.b]; got != c.want {
			t.Fatalf("%s vs %s: want %v, got %v", c.a, c.b, c.want, got)
		}
	}
}

func TestRankOrdersByTotal(t *testing.T) {
	table := classicTable(t)
	standings := table.Rank()
	if len(standings) != 3 {
		t.Fatalf("expected 3 standings, got %d", len(standings))
	}
	for i := 1; i < len(standings); i++ {
		if standings[i].Score > standings[i-1].Score {
			t.Fatalf("standings not sorted: %v", standings)
		}
	}
}

func TestPairwiseValidation(t *testing.T) {
	_, err := Pairwise(context.Background(), Config{
		Strategies:     []string{"bogus"},
		RoundsPerMatch: 10,
		Payoffs:        game.Standard(),
	})
	if err == nil {
		t.Fatal("expected error for unknown strategy")
	}

	_, err = Pairwise(context.Background(), Config{
		Strategies:     []string{strategy.TitForTat},
		RoundsPerMatch: 0,
		Payoffs:        game.Standard(),
	})
	if err == nil {
		t.Fatal("expected error for zero rounds")
	}
}

func TestReplicateSharesStayNormalized(t *testing.T) {
	table := classicTable(t)
	history := Replicate(table, 50)
	if len(history) == 0 {
		t.Fatal("expected at least the initial population")
	}
	for gen, shares := range history {
		total := 0.0
		for _, share := range shares {
			total += share
		}
		if math.Abs(total-1) > 1e-9 {
			t.Fatalf("generation %d: shares sum to %v", gen, total)
		}
	}
}

func TestReplicateDefectorsExploitThenStarve(t *testing.T) {
	// In the classic triple, defectors feed on pure cooperators, but once
	// those are gone tit_for_tat outearns them and takes over.
	table := classicTable(t)
	history := Replicate(table, 200)
	final := history[len(history)-1]

	if final[strategy.TitForTat] < 0.5 {
		t.Fatalf("expected tit_for_tat to dominate, got %v", final)
	}
	if final[strategy.AlwaysDefect] > 0.1 {
		t.Fatalf("expected defectors to fade, got %v", final)
	}
}

func TestReplicateDefectorsOvertakeCooperators(t *testing.T) {
	table, err := Pairwise(context.Background(), Config{
		Strategies:     []string{strategy.AlwaysCooperate, strategy.AlwaysDefect},
		RoundsPerMatch: 10,
		Payoffs:        game.Standard(),
		Seed:           42,
	})
	if err != nil {
		t.Fatalf("pairwise: %v", err)
	}

	history := Replicate(table, 100)
	final := history[len(history)-1]
	if final[strategy.AlwaysDefect] < 0.99 {
		t.Fatalf("expected defectors to take over, got %v", final)
	}
}

func TestReplicateEmptyTable(t *testing.T) {
	if history := Replicate(Table{}, 10); history != nil {
		t.Fatalf("expected nil history for an empty table, got %v", history)
	}
}
