package arena

import (
	"sort"

	"agora/internal/strategy"
)

// Census maps strategy name to its population count at one generation.
type Census map[string]int

// Census counts the population of each strategy on the grid. The sum of all
// counts always equals width*height.
func (g *Grid) Census() Census {
	counts := make(Census)
	for _, cell := range g.cells {
		counts[cell.Name()]++
	}
	return counts
}

// Total is the summed population across all strategies.
func (c Census) Total() int {
	total := 0
	for _, count := range c {
		total += count
	}
	return total
}

// Equal compares two censuses by value.
func (c Census) Equal(other Census) bool {
	if len(c) != len(other) {
		return false
	}
	for name, count := range c {
		if other[name] != count {
			return false
		}
	}
	return true
}

// Clone returns an independent copy.
func (c Census) Clone() Census {
	out := make(Census, len(c))
	for name, count := range c {
		out[name] = count
	}
	return out
}

// CooperationFraction is the population share held by nice strategies.
func (c Census) CooperationFraction() float64 {
	total := c.Total()
	if total == 0 {
		return 0
	}
	nice := 0
	for name, count := range c {
		if strategy.IsNice(name) {
			nice += count
		}
	}
	return float64(nice) / float64(total)
}

// Names returns the strategy names present, sorted.
func (c Census) Names() []string {
	names := make([]string, 0, len(c))
	for name := range c {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
