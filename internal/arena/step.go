package arena

import (
	"context"
	"fmt"
	"math/rand"
	"sync"

	"agora/internal/game"
)

// StepConfig parameterizes one evolution step.
type StepConfig struct {
	RoundsPerMatch int
	Payoffs        game.PayoffMatrix
	// Workers bounds the score-phase worker pool; defaults to 1.
	Workers int
}

func (cfg *StepConfig) validate() error {
	if cfg.RoundsPerMatch <= 0 {
		return fmt.Errorf("rounds per match must be > 0, got %d", cfg.RoundsPerMatch)
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	return nil
}

// Step advances the grid by one generation of imitate-the-best dynamics.
//
// Phase one scores every cell against its 8 neighbors from the current grid,
// read-only, so cells may be scored in parallel. Phase two replaces each
// cell with a fresh instance of the best-scoring strategy in its
// neighborhood-plus-self, writing into a new cell buffer that swaps in
// atomically: no cell's update ever observes another cell's updated value
// within the same generation.
func (g *Grid) Step(ctx context.Context, cfg StepConfig) (Census, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	scores, err := g.computeScores(ctx, cfg)
	if err != nil {
		return nil, err
	}

	next := make([]game.Player, len(g.cells))
	for y := 0; y < g.height; y++ {
		for x := 0; x < g.width; x++ {
			idx := y*g.width + x
			// Self first; a neighbor displaces the running best only on a
			// strictly greater score, so exact ties keep the
			// earliest-enumerated candidate.
			bestScore := scores[idx]
			bestName := g.cells[idx].Name()
			for _, n := range g.Neighbors(x, y) {
				nIdx := n[1]*g.width + n[0]
				if scores[nIdx] > bestScore {
					bestScore = scores[nIdx]
					bestName = g.cells[nIdx].Name()
				}
			}
			next[idx] = g.factories[bestName](g.rng)
		}
	}

	g.cells = next
	g.generation++
	return g.Census(), nil
}

// computeScores sums each cell's match score across its 8 neighbor matches,
// as a pure function of the current grid.
func (g *Grid) computeScores(ctx context.Context, cfg StepConfig) ([]float64, error) {
	if cfg.RoundsPerMatch == 1 {
		return g.computeScoresOneShot(ctx, cfg.Payoffs)
	}

	type result struct {
		idx   int
		score float64
		err   error
	}

	jobs := make(chan int)
	results := make(chan result, len(g.cells))

	workerCount := cfg.Workers
	if workerCount > len(g.cells) {
		workerCount = len(g.cells)
	}

	var wg sync.WaitGroup
	wg.Add(workerCount)
	for w := 0; w < workerCount; w++ {
		go func() {
			defer wg.Done()
			for idx := range jobs {
				if err := ctx.Err(); err != nil {
					results <- result{idx: idx, err: err}
					continue
				}
				score, err := g.scoreCell(idx, cfg)
				results <- result{idx: idx, score: score, err: err}
			}
		}()
	}

	for idx := range g.cells {
		jobs <- idx
	}
	close(jobs)

	wg.Wait()
	close(results)

	scores := make([]float64, len(g.cells))
	for res := range results {
		if res.err != nil {
			return nil, res.err
		}
		scores[res.idx] = res.score
	}
	return scores, nil
}

// scoreCell plays the cell at idx against each of its neighbors. Both sides
// of every match are fresh instances, so match-scoped memory never leaks
// between the 8 matches a cell plays per generation.
func (g *Grid) scoreCell(idx int, cfg StepConfig) (float64, error) {
	x, y := idx%g.width, idx/g.width
	rng := g.matchRand(idx)
	me := g.cells[idx].Name()

	total := 0.0
	for _, n := range g.Neighbors(x, y) {
		opponent := g.cells[n[1]*g.width+n[0]].Name()
		a := g.factories[me](rng)
		b := g.factories[opponent](rng)
		res, err := game.Play(a, b, cfg.RoundsPerMatch, cfg.Payoffs)
		if err != nil {
			return 0, err
		}
		total += res.ScoreA
	}
	return total, nil
}

// computeScoresOneShot is the rounds==1 fast path: with no history, each
// cell's single move is fixed, so it is computed once and reused for every
// neighbor pairing instead of replaying 8 one-round matches.
func (g *Grid) computeScoresOneShot(ctx context.Context, payoffs game.PayoffMatrix) ([]float64, error) {
	// One-shot scoring never errors per cell, so a single upfront
	// cancellation check suffices.
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	moves := make([]game.Action, len(g.cells))
	for idx := range g.cells {
		s := g.factories[g.cells[idx].Name()](g.matchRand(idx))
		moves[idx] = s.Choose(nil, nil)
	}

	scores := make([]float64, len(g.cells))
	for y := 0; y < g.height; y++ {
		for x := 0; x < g.width; x++ {
			idx := y*g.width + x
			for _, n := range g.Neighbors(x, y) {
				scores[idx] += payoffs.Payoff(moves[idx], moves[n[1]*g.width+n[0]])
			}
		}
	}
	return scores, nil
}

// matchRand derives a generator for one cell's matches that depends only on
// the grid seed, the generation, and the cell index, keeping stochastic
// strategies reproducible under any worker scheduling.
func (g *Grid) matchRand(idx int) *rand.Rand {
	return rand.New(rand.NewSource(g.seed ^ int64(g.generation)<<24 ^ int64(idx)))
}
