package tourney

// extinctionThreshold removes strategies whose population share falls to
// effectively zero, so they cannot resurge from rounding residue.
const extinctionThreshold = 0.001

// Shares maps strategy name to its population share; active shares sum to 1.
type Shares map[string]float64

// Clone returns an independent copy.
func (s Shares) Clone() Shares {
	out := make(Shares, len(s))
	for name, share := range s {
		out[name] = share
	}
	return out
}

// Replicate runs discrete replicator dynamics over the pairwise table:
// each generation a strategy's share is scaled by its expected score
// against the current population relative to the population average.
// Shares below the extinction threshold are dropped and the remainder
// renormalized. Returns one Shares snapshot per generation, the uniform
// initial population first.
func Replicate(table Table, generations int) []Shares {
	n := len(table.Names)
	if n == 0 || generations < 0 {
		return nil
	}

	population := make(Shares, n)
	for _, name := range table.Names {
		population[name] = 1.0 / float64(n)
	}
	history := []Shares{population.Clone()}
	active := append([]string(nil), table.Names...)

	for gen := 0; gen < generations; gen++ {
		fitness := make(map[string]float64, len(active))
		for _, name := range active {
			for _, opp := range active {
				fitness[name] += table.Scores[name][opp] * population[opp]
			}
		}

		average := 0.0
		for _, name := range active {
			average += fitness[name] * population[name]
		}
		if average == 0 {
			break
		}

		next := make(Shares, len(active))
		for _, name := range active {
			next[name] = population[name] * fitness[name] / average
		}

		survivors := active[:0]
		total := 0.0
		for _, name := range active {
			if next[name] > extinctionThreshold {
				survivors = append(survivors, name)
				total += next[name]
			}
		}
		active = survivors
		if len(active) == 0 {
			break
		}

		population = make(Shares, len(active))
		for _, name := range active {
			population[name] = next[name] / total
		}
		history = append(history, population.Clone())
	}
	return history
}
