package strategy

import "fmt"

// niceStrategies never defect first. The cooperation fraction of a census is
// the population share held by this subset.
var niceStrategies = map[string]struct{}{
	TitForTat:         {},
	GenerousTitForTat: {},
	TitForTwoTats:     {},
	Pavlov:            {},
	AlwaysCooperate:   {},
	SoftMajority:      {},
}

// IsNice reports whether the named strategy belongs to the nice subset.
func IsNice(name string) bool {
	_, ok := niceStrategies[name]
	return ok
}

// Named catalog subsets used by sweeps and the CLI.
const (
	SetClassic     = "classic"
	SetRetaliators = "retaliators"
	SetNice        = "nice"
	SetFull        = "full"
)

// Set returns the strategy names in a named subset.
func Set(name string) ([]string, error) {
	switch name {
	case SetClassic:
		return []string{TitForTat, AlwaysCooperate, AlwaysDefect}, nil
	case SetRetaliators:
		return []string{TitForTat, GenerousTitForTat, Grudger, AlwaysDefect, SuspiciousTitForTat, Detective}, nil
	case SetNice:
		return []string{TitForTat, GenerousTitForTat, TitForTwoTats, Pavlov, AlwaysCooperate, SoftMajority}, nil
	case SetFull:
		return List(), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrSetNotFound, name)
	}
}
