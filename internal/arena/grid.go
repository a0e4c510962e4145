// Package arena hosts the toroidal grid of strategies and the
// imitate-the-best evolutionary dynamics played on it.
package arena

import (
	"fmt"
	"math/rand"

	opensimplex "github.com/ojrac/opensimplex-go"

	"agora/internal/game"
	"agora/internal/strategy"
)

// SeedMode selects how the initial grid is filled.
type SeedMode string

const (
	// SeedUniform fills every cell with a uniform-random pick from the
	// catalog.
	SeedUniform SeedMode = "uniform"
	// SeedCluster places the invader on all cells within L1 distance
	// Radius of the grid center and the background strategy elsewhere.
	SeedCluster SeedMode = "cluster"
	// SeedClassic is a uniform fill restricted to the classic triple
	// (tit_for_tat, always_cooperate, always_defect).
	SeedClassic SeedMode = "classic"
	// SeedNoise fills cells by thresholding smooth simplex noise over the
	// catalog, producing spatially correlated starting territories.
	SeedNoise SeedMode = "noise"
)

// noiseFrequency scales grid coordinates into noise space for SeedNoise.
// Lower values produce larger contiguous territories.
const noiseFrequency = 0.15

// GridConfig describes the initial grid.
type GridConfig struct {
	Width  int
	Height int
	Mode   SeedMode
	// Catalog is the strategy subset for uniform and noise fills.
	// Defaults to the full registry.
	Catalog []string
	// Radius and Invader configure cluster seeding. Background defaults
	// to always_defect.
	Radius     int
	Invader    string
	Background string
	Seed       int64
}

// Grid is a fixed-size toroidal arena of strategy instances, one per cell,
// stored as a flat row-major array.
type Grid struct {
	width      int
	height     int
	cells      []game.Player
	factories  map[string]strategy.Factory
	seed       int64
	rng        *rand.Rand
	generation int
}

// neighborOffsets is the fixed Moore-neighborhood enumeration order:
// dy outer, dx inner, center excluded. Update-phase tie-breaking depends on
// this order; do not reorder.
var neighborOffsets = [8][2]int{
	{-1, -1}, {0, -1}, {1, -1},
	{-1, 0}, {1, 0},
	{-1, 1}, {0, 1}, {1, 1},
}

// NewGrid validates the configuration and builds a seeded grid.
func NewGrid(cfg GridConfig) (*Grid, error) {
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, fmt.Errorf("grid dimensions must be positive, got %dx%d", cfg.Width, cfg.Height)
	}
	if cfg.Mode == "" {
		cfg.Mode = SeedUniform
	}

	catalog := cfg.Catalog
	switch cfg.Mode {
	case SeedUniform, SeedNoise:
		if len(catalog) == 0 {
			catalog = strategy.List()
		}
	case SeedClassic:
		classic, err := strategy.Set(strategy.SetClassic)
		if err != nil {
			return nil, err
		}
		catalog = classic
	case SeedCluster:
		if cfg.Invader == "" {
			return nil, fmt.Errorf("cluster seeding requires an invader strategy")
		}
		if cfg.Radius < 0 {
			return nil, fmt.Errorf("cluster radius must be >= 0, got %d", cfg.Radius)
		}
		background := cfg.Background
		if background == "" {
			background = strategy.AlwaysDefect
		}
		catalog = []string{cfg.Invader, background}
	default:
		return nil, fmt.Errorf("unsupported seed mode: %s", cfg.Mode)
	}

	factories, err := strategy.Resolve(catalog)
	if err != nil {
		return nil, err
	}

	g := &Grid{
		width:     cfg.Width,
		height:    cfg.Height,
		cells:     make([]game.Player, cfg.Width*cfg.Height),
		factories: factories,
		seed:      cfg.Seed,
		rng:       rand.New(rand.NewSource(cfg.Seed)),
	}

	switch cfg.Mode {
	case SeedUniform, SeedClassic:
		g.fillUniform(catalog)
	case SeedCluster:
		background := cfg.Background
		if background == "" {
			background = strategy.AlwaysDefect
		}
		g.fillCluster(cfg.Invader, background, cfg.Radius)
	case SeedNoise:
		g.fillNoise(catalog)
	}
	return g, nil
}

func (g *Grid) fillUniform(catalog []string) {
	for i := range g.cells {
		name := catalog[g.rng.Intn(len(catalog))]
		g.cells[i] = g.factories[name](g.rng)
	}
}

func (g *Grid) fillCluster(invader, background string, radius int) {
	cx, cy := g.width/2, g.height/2
	for y := 0; y < g.height; y++ {
		for x := 0; x < g.width; x++ {
			dist := abs(x-cx) + abs(y-cy)
			name := background
			if dist <= radius {
				name = invader
			}
			g.cells[y*g.width+x] = g.factories[name](g.rng)
		}
	}
}

func (g *Grid) fillNoise(catalog []string) {
	noise := opensimplex.NewNormalized(g.seed)
	for y := 0; y < g.height; y++ {
		for x := 0; x < g.width; x++ {
			v := noise.Eval2(float64(x)*noiseFrequency, float64(y)*noiseFrequency)
			idx := int(v * float64(len(catalog)))
			if idx >= len(catalog) {
				idx = len(catalog) - 1
			}
			name := catalog[idx]
			g.cells[y*g.width+x] = g.factories[name](g.rng)
		}
	}
}

func (g *Grid) Width() int  { return g.width }
func (g *Grid) Height() int { return g.height }

// Generation is the number of evolution steps applied so far.
func (g *Grid) Generation() int { return g.generation }

// At returns the strategy at (x, y) with toroidal wrapping; no coordinate is
// out of range.
func (g *Grid) At(x, y int) game.Player {
	return g.cells[g.index(x, y)]
}

// Set replaces the strategy at (x, y) with toroidal wrapping.
func (g *Grid) Set(x, y int, s game.Player) {
	g.cells[g.index(x, y)] = s
}

// Neighbors returns the 8 Moore-neighborhood coordinates of (x, y) in the
// fixed enumeration order, wrapped onto the torus.
func (g *Grid) Neighbors(x, y int) [8][2]int {
	var out [8][2]int
	for i, offset := range neighborOffsets {
		out[i][0] = mod(x+offset[0], g.width)
		out[i][1] = mod(y+offset[1], g.height)
	}
	return out
}

func (g *Grid) index(x, y int) int {
	return mod(y, g.height)*g.width + mod(x, g.width)
}

func mod(v, n int) int {
	m := v % n
	if m < 0 {
		m += n
	}
	return m
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
