// Package tourney runs round-robin tournaments over the strategy catalog
// and replicator dynamics on the resulting score table.
package tourney

import (
	"context"
	"fmt"
	"math/rand"
	"sort"

	"agora/internal/game"
	"agora/internal/strategy"
)

// Config parameterizes a round-robin tournament.
type Config struct {
	// Strategies defaults to the full registry.
	Strategies     []string
	RoundsPerMatch int
	Payoffs        game.PayoffMatrix
	Seed           int64
}

// Table holds pairwise scores from a round-robin: Scores[a][b] is a's total
// score across one match against b. Every ordered pair plays, self-play
// included.
type Table struct {
	Names  []string                      `json:"names"`
	Scores map[string]map[string]float64 `json:"scores"`
}

// Standing is one row of a ranked scoreboard.
type Standing struct {
	Name  string  `json:"name"`
	Score float64 `json:"score"`
}

// Pairwise plays every ordered pair of strategies once and tabulates a's
// score against b. Fresh instances play each match, so no memory leaks
// across pairings.
func Pairwise(ctx context.Context, cfg Config) (Table, error) {
	names := cfg.Strategies
	if len(names) == 0 {
		names = strategy.List()
	}
	factories, err := strategy.Resolve(names)
	if err != nil {
		return Table{}, err
	}
	if cfg.RoundsPerMatch <= 0 {
		return Table{}, fmt.Errorf("rounds per match must be > 0, got %d", cfg.RoundsPerMatch)
	}

	table := Table{
		Names:  append([]string(nil), names...),
		Scores: make(map[string]map[string]float64, len(names)),
	}
	for _, name := range names {
		table.Scores[name] = make(map[string]float64, len(names))
	}

	for i, a := range names {
		for j, b := range names {
			if err := ctx.Err(); err != nil {
				return Table{}, err
			}
			rng := rand.New(rand.NewSource(cfg.Seed ^ int64(i)<<16 ^ int64(j)))
			res, err := game.Play(factories[a](rng), factories[b](rng), cfg.RoundsPerMatch, cfg.Payoffs)
			if err != nil {
				return Table{}, err
			}
			table.Scores[a][b] = res.ScoreA
		}
	}
	return table, nil
}

// Rank totals each strategy's scores across all opponents and sorts
// descending, ties broken by name.
func (t Table) Rank() []Standing {
	standings := make([]Standing, 0, len(t.Names))
	for _, name := range t.Names {
		total := 0.0
		for _, score := range t.Scores[name] {
			total += score
		}
		standings = append(standings, Standing{Name: name, Score: total})
	}
	sort.Slice(standings, func(i, j int) bool {
		if standings[i].Score != standings[j].Score {
			return standings[i].Score > standings[j].Score
		}
		return standings[i].Name < standings[j].Name
	})
	return standings
}
