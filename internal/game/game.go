package game

// Action is a single move in one round of the dilemma.
type Action uint8

const (
	Defect Action = iota
	Cooperate
)

func (a Action) String() string {
	if a == Cooperate {
		return "cooperate"
	}
	return "defect"
}

// Player is one side of an iterated match. Choose is called once per round
// with the full history so far; both slices have equal length and grow by one
// after each round. Reset clears any match-scoped memory back to its initial
// condition.
type Player interface {
	Name() string
	Choose(own, opponent []Action) Action
	Reset()
}

// PayoffMatrix holds the four payoffs of a symmetric two-player game.
// Meaningful dilemma dynamics assume T > R > P > S and 2R > T + S; the
// matrix does not enforce this so that sweeps can scan degenerate regions.
type PayoffMatrix struct {
	Reward     float64 `json:"reward"`
	Sucker     float64 `json:"sucker"`
	Temptation float64 `json:"temptation"`
	Punishment float64 `json:"punishment"`
}

// Standard returns Axelrod's payoff values: R=3, S=0, T=5, P=1.
func Standard() PayoffMatrix {
	return PayoffMatrix{Reward: 3, Sucker: 0, Temptation: 5, Punishment: 1}
}

// WithTemptation returns the standard matrix with the temptation payoff
// replaced, the knob scanned by phase-transition sweeps.
func WithTemptation(t float64) PayoffMatrix {
	m := Standard()
	m.Temptation = t
	return m
}

// Payoff returns the payoff for playing mine against theirs.
func (m PayoffMatrix) Payoff(mine, theirs Action) float64 {
	switch {
	case mine == Cooperate && theirs == Cooperate:
		return m.Reward
	case mine == Cooperate && theirs == Defect:
		return m.Sucker
	case mine == Defect && theirs == Cooperate:
		return m.Temptation
	default:
		return m.Punishment
	}
}
