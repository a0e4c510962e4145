// Package strategy holds the closed catalog of dilemma behaviors and the
// named registry through which grids and tournaments instantiate them.
package strategy

import (
	"errors"
	"fmt"
	"math/rand"
	"sort"
	"sync"

	"agora/internal/game"
)

var (
	ErrStrategyExists   = errors.New("strategy already registered")
	ErrStrategyNotFound = errors.New("strategy not found")
	ErrSetNotFound      = errors.New("strategy set not found")
)

// Factory builds a fresh instance of a strategy variant. Stochastic variants
// keep the supplied generator; deterministic ones ignore it. The generator is
// never global state, so parallel sweep trials stay independently
// reproducible.
type Factory func(rng *rand.Rand) game.Player

var registry = struct {
	mu sync.RWMutex
	m  map[string]Factory
}{
	m: make(map[string]Factory),
}

func init() {
	initializeBuiltInStrategies()
}

func initializeBuiltInStrategies() {
	MustRegister(AlwaysCooperate, func(*rand.Rand) game.Player { return &alwaysCooperate{} })
	MustRegister(AlwaysDefect, func(*rand.Rand) game.Player { return &alwaysDefect{} })
	MustRegister(TitForTat, func(*rand.Rand) game.Player { return &titForTat{} })
	MustRegister(GenerousTitForTat, func(rng *rand.Rand) game.Player { return &generousTitForTat{rng: rng} })
	MustRegister(TitForTwoTats, func(*rand.Rand) game.Player { return &titForTwoTats{} })
	MustRegister(Pavlov, func(*rand.Rand) game.Player { return &pavlov{} })
	MustRegister(Grudger, func(*rand.Rand) game.Player { return &grudger{} })
	MustRegister(SuspiciousTitForTat, func(*rand.Rand) game.Player { return &suspiciousTitForTat{} })
	MustRegister(Detective, func(*rand.Rand) game.Player { return &detective{} })
	MustRegister(HardMajority, func(*rand.Rand) game.Player { return &hardMajority{} })
	MustRegister(SoftMajority, func(*rand.Rand) game.Player { return &softMajority{} })
	MustRegister(Random, func(rng *rand.Rand) game.Player { return &random{rng: rng} })
}

func Register(name string, factory Factory) error {
	if name == "" {
		return errors.New("strategy name is required")
	}
	if factory == nil {
		return errors.New("strategy factory is required")
	}

	registry.mu.Lock()
	defer registry.mu.Unlock()

	if _, exists := registry.m[name]; exists {
		return fmt.Errorf("%w: %s", ErrStrategyExists, name)
	}
	registry.m[name] = factory
	return nil
}

func MustRegister(name string, factory Factory) {
	if err := Register(name, factory); err != nil {
		panic(err)
	}
}

// New builds a fresh instance of the named strategy.
func New(name string, rng *rand.Rand) (game.Player, error) {
	registry.mu.RLock()
	factory, ok := registry.m[name]
	registry.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrStrategyNotFound, name)
	}
	return factory(rng), nil
}

// Resolve looks up factories for every name, failing on the first unknown
// key. Grids resolve their catalog once at construction instead of hitting
// the registry lock per match.
func Resolve(names []string) (map[string]Factory, error) {
	registry.mu.RLock()
	defer registry.mu.RUnlock()

	out := make(map[string]Factory, len(names))
	for _, name := range names {
		factory, ok := registry.m[name]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrStrategyNotFound, name)
		}
		out[name] = factory
	}
	return out, nil
}

// List returns all registered strategy names, sorted.
func List() []string {
	registry.mu.RLock()
	defer registry.mu.RUnlock()

	names := make([]string, 0, len(registry.m))
	for name := range registry.m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func resetRegistryForTests() {
	registry.mu.Lock()
	registry.m = make(map[string]Factory)
	registry.mu.Unlock()
	initializeBuiltInStrategies()
}
