// Package agora is the embedding API over the spatial game engine: it wires
// grid construction, evolution runs, invasions, sweeps, and tournaments to
// persistence and artifact output.
package agora

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"agora/internal/arena"
	"agora/internal/game"
	"agora/internal/model"
	"agora/internal/stats"
	"agora/internal/storage"
	"agora/internal/strategy"
	"agora/internal/sweep"
	"agora/internal/tourney"
)

const (
	defaultArtifactsDir = "artifacts"
	defaultDBPath       = "agora.db"

	defaultWidth          = 20
	defaultHeight         = 20
	defaultRounds         = 8
	defaultMaxGenerations = 30
	defaultSeed           = 42
	defaultWorkers        = 4
	defaultTrials         = 5
)

type Options struct {
	StoreKind    string
	DBPath       string
	ArtifactsDir string
}

type Client struct {
	store        storage.Store
	artifactsDir string
}

func New(opts Options) (*Client, error) {
	storeKind := opts.StoreKind
	if storeKind == "" {
		storeKind = storage.DefaultStoreKind()
	}
	dbPath := opts.DBPath
	if dbPath == "" {
		dbPath = defaultDBPath
	}
	artifactsDir := opts.ArtifactsDir
	if artifactsDir == "" {
		artifactsDir = defaultArtifactsDir
	}

	store, err := storage.NewStore(storeKind, dbPath)
	if err != nil {
		return nil, err
	}

	return &Client{
		store:        store,
		artifactsDir: artifactsDir,
	}, nil
}

func (c *Client) Close() error {
	return storage.CloseIfSupported(c.store)
}

func (c *Client) Init(ctx context.Context) error {
	return c.store.Init(ctx)
}

type RunRequest struct {
	Width  int
	Height int
	// Mode is a seeding mode name (uniform, classic, noise); empty means
	// uniform. Catalog restricts uniform/noise fills.
	Mode    string
	Catalog []string
	// Temptation overrides the standard payoff matrix's T when > 0.
	Temptation      float64
	RoundsPerMatch  int
	MaxGenerations  int
	StabilityWindow int
	Seed            int64
	Workers         int
}

type RunSummary struct {
	RunID               string
	ArtifactsDir        string
	Generations         int
	Converged           bool
	Incomplete          bool
	FinalCensus         map[string]int
	CooperationFraction float64
}

func (c *Client) Run(ctx context.Context, req RunRequest) (RunSummary, error) {
	if req.Width <= 0 {
		req.Width = defaultWidth
	}
	if req.Height <= 0 {
		req.Height = defaultHeight
	}
	if req.RoundsPerMatch <= 0 {
		req.RoundsPerMatch = defaultRounds
	}
	if req.MaxGenerations <= 0 {
		req.MaxGenerations = defaultMaxGenerations
	}
	if req.Seed == 0 {
		req.Seed = defaultSeed
	}
	if req.Workers <= 0 {
		req.Workers = defaultWorkers
	}
	mode := arena.SeedMode(req.Mode)
	if mode == "" {
		mode = arena.SeedUniform
	}
	payoffs := game.Standard()
	if req.Temptation > 0 {
		payoffs = game.WithTemptation(req.Temptation)
	}

	grid, err := arena.NewGrid(arena.GridConfig{
		Width:   req.Width,
		Height:  req.Height,
		Mode:    mode,
		Catalog: req.Catalog,
		Seed:    req.Seed,
	})
	if err != nil {
		return RunSummary{}, err
	}

	result, err := grid.Run(ctx, arena.RunConfig{
		RoundsPerMatch:  req.RoundsPerMatch,
		Payoffs:         payoffs,
		MaxGenerations:  req.MaxGenerations,
		StabilityWindow: req.StabilityWindow,
		Workers:         req.Workers,
	})
	if err != nil {
		return RunSummary{}, err
	}

	runID := uuid.NewString()
	record := runRecord(runID, req.Width, req.Height, req.Seed, req.RoundsPerMatch, result)
	if err := c.store.SaveRun(ctx, record); err != nil {
		return RunSummary{}, err
	}

	runDir, err := c.writeRunArtifacts(stats.RunConfig{
		RunID:          runID,
		Kind:           "run",
		Width:          req.Width,
		Height:         req.Height,
		Mode:           string(mode),
		Catalog:        req.Catalog,
		RoundsPerMatch: req.RoundsPerMatch,
		MaxGenerations: req.MaxGenerations,
		Seed:           req.Seed,
		Workers:        req.Workers,
	}, record)
	if err != nil {
		return RunSummary{}, err
	}

	return RunSummary{
		RunID:               runID,
		ArtifactsDir:        runDir,
		Generations:         result.Generations,
		Converged:           result.Converged,
		Incomplete:          result.Incomplete,
		FinalCensus:         record.FinalCensus,
		CooperationFraction: result.FinalCensus.CooperationFraction(),
	}, nil
}

type InvadeRequest struct {
	Width          int
	Height         int
	Invader        string
	Background     string
	Radius         int
	RoundsPerMatch int
	MaxGenerations int
	Seed           int64
	Workers        int
}

type InvadeSummary struct {
	RunID        string
	ArtifactsDir string
	Verdict      string
	Initial      int
	Final        int
	Generations  int
	Incomplete   bool
}

func (c *Client) Invade(ctx context.Context, req InvadeRequest) (InvadeSummary, error) {
	if req.Width <= 0 {
		req.Width = 25
	}
	if req.Height <= 0 {
		req.Height = 25
	}
	if req.Invader == "" {
		req.Invader = strategy.TitForTat
	}
	if req.Radius <= 0 {
		req.Radius = 3
	}
	if req.RoundsPerMatch <= 0 {
		req.RoundsPerMatch = defaultRounds
	}
	if req.MaxGenerations <= 0 {
		req.MaxGenerations = 40
	}
	if req.Seed == 0 {
		req.Seed = defaultSeed
	}
	if req.Workers <= 0 {
		req.Workers = defaultWorkers
	}

	result, err := arena.Invade(ctx, arena.InvasionConfig{
		Width:          req.Width,
		Height:         req.Height,
		Invader:        req.Invader,
		Background:     req.Background,
		Radius:         req.Radius,
		RoundsPerMatch: req.RoundsPerMatch,
		Payoffs:        game.Standard(),
		MaxGenerations: req.MaxGenerations,
		Workers:        req.Workers,
		Seed:           req.Seed,
	})
	if err != nil {
		return InvadeSummary{}, err
	}

	runID := uuid.NewString()
	record := invasionRecord(runID, req, result)
	if err := c.store.SaveRun(ctx, record); err != nil {
		return InvadeSummary{}, err
	}

	runDir, err := c.writeRunArtifacts(stats.RunConfig{
		RunID:          runID,
		Kind:           "invade",
		Width:          req.Width,
		Height:         req.Height,
		Mode:           string(arena.SeedCluster),
		Invader:        req.Invader,
		Background:     req.Background,
		Radius:         req.Radius,
		RoundsPerMatch: req.RoundsPerMatch,
		MaxGenerations: req.MaxGenerations,
		Seed:           req.Seed,
		Workers:        req.Workers,
	}, record)
	if err != nil {
		return InvadeSummary{}, err
	}

	return InvadeSummary{
		RunID:        runID,
		ArtifactsDir: runDir,
		Verdict:      string(result.Verdict),
		Initial:      result.Initial,
		Final:        result.Final,
		Generations:  result.Generations,
		Incomplete:   result.Incomplete,
	}, nil
}

// Sweep parameter names.
const (
	SweepRadius     = "radius"
	SweepTemptation = "temptation"
)

type SweepRequest struct {
	// Parameter is "radius" or "temptation".
	Parameter string

	Width  int
	Height int

	// Radius sweep inputs.
	Invader    string
	Background string
	MaxRadius  int

	// Temptation sweep inputs.
	Set   string
	FromT float64
	ToT   float64
	StepT float64

	RoundsPerMatch int
	MaxGenerations int
	Trials         int
	Workers        int
}

type SweepSummary struct {
	SweepID      string
	ArtifactsDir string
	Samples      []model.SweepSample
	Critical     *float64
	Incomplete   bool
}

func (c *Client) Sweep(ctx context.Context, req SweepRequest) (SweepSummary, error) {
	if req.Width <= 0 {
		req.Width = 25
	}
	if req.Height <= 0 {
		req.Height = 25
	}
	if req.RoundsPerMatch <= 0 {
		req.RoundsPerMatch = defaultRounds
	}
	if req.MaxGenerations <= 0 {
		req.MaxGenerations = 40
	}
	if req.Trials <= 0 {
		req.Trials = defaultTrials
	}
	if req.Workers <= 0 {
		req.Workers = defaultWorkers
	}

	var (
		result sweep.Result
		err    error
	)
	switch req.Parameter {
	case "", SweepRadius:
		req.Parameter = SweepRadius
		if req.Invader == "" {
			req.Invader = strategy.TitForTat
		}
		if req.MaxRadius <= 0 {
			req.MaxRadius = 8
		}
		result, err = sweep.Invasion(ctx, sweep.InvasionConfig{
			Width:          req.Width,
			Height:         req.Height,
			Invader:        req.Invader,
			Background:     req.Background,
			MaxRadius:      req.MaxRadius,
			RoundsPerMatch: req.RoundsPerMatch,
			Payoffs:        game.Standard(),
			MaxGenerations: req.MaxGenerations,
			Trials:         req.Trials,
			Workers:        req.Workers,
		})
	case SweepTemptation:
		if req.Set == "" {
			req.Set = strategy.SetClassic
		}
		if req.FromT <= 0 {
			req.FromT = 3.0
		}
		if req.ToT <= 0 {
			req.ToT = 12.0
		}
		if req.StepT <= 0 {
			req.StepT = 0.5
		}
		result, err = sweep.Temptation(ctx, sweep.TemptationConfig{
			Width:          req.Width,
			Height:         req.Height,
			Set:            req.Set,
			FromT:          req.FromT,
			ToT:            req.ToT,
			StepT:          req.StepT,
			RoundsPerMatch: req.RoundsPerMatch,
			MaxGenerations: req.MaxGenerations,
			Trials:         req.Trials,
			Workers:        req.Workers,
		})
	default:
		return SweepSummary{}, fmt.Errorf("unknown sweep parameter: %s", req.Parameter)
	}
	if err != nil {
		return SweepSummary{}, err
	}

	sweepID := uuid.NewString()
	record := sweepRecord(sweepID, req.Parameter, result)
	if err := c.store.SaveSweep(ctx, record); err != nil {
		return SweepSummary{}, err
	}

	sweepDir, err := stats.WriteSweepArtifacts(c.artifactsDir, record)
	if err != nil {
		return SweepSummary{}, err
	}

	return SweepSummary{
		SweepID:      sweepID,
		ArtifactsDir: sweepDir,
		Samples:      record.Samples,
		Critical:     record.Critical,
		Incomplete:   record.Incomplete,
	}, nil
}

type TournamentRequest struct {
	// Strategies defaults to the full catalog; Set, when named, wins.
	Strategies []string
	Set        string
	// Generations of replicator dynamics after the round-robin.
	Generations    int
	RoundsPerMatch int
	Seed           int64
}

type Standing struct {
	Name  string
	Score float64
}

type TournamentSummary struct {
	Standings []Standing
	// FinalShares is the surviving population after replicator dynamics.
	FinalShares map[string]float64
	Generations int
}

func (c *Client) Tournament(ctx context.Context, req TournamentRequest) (TournamentSummary, error) {
	if req.RoundsPerMatch <= 0 {
		req.RoundsPerMatch = 200
	}
	if req.Generations <= 0 {
		req.Generations = 50
	}
	if req.Seed == 0 {
		req.Seed = defaultSeed
	}

	names := req.Strategies
	if req.Set != "" {
		set, err := strategy.Set(req.Set)
		if err != nil {
			return TournamentSummary{}, err
		}
		names = set
	}

	table, err := tourney.Pairwise(ctx, tourney.Config{
		Strategies:     names,
		RoundsPerMatch: req.RoundsPerMatch,
		Payoffs:        game.Standard(),
		Seed:           req.Seed,
	})
	if err != nil {
		return TournamentSummary{}, err
	}

	standings := make([]Standing, 0, len(table.Names))
	for _, s := range table.Rank() {
		standings = append(standings, Standing{Name: s.Name, Score: s.Score})
	}

	history := tourney.Replicate(table, req.Generations)
	summary := TournamentSummary{
		Standings:   standings,
		Generations: len(history) - 1,
	}
	if len(history) > 0 {
		summary.FinalShares = history[len(history)-1]
	}
	return summary, nil
}

// Runs lists persisted run IDs.
func (c *Client) Runs(ctx context.Context) ([]string, error) {
	return c.store.ListRunIDs(ctx)
}

// GetRun loads one persisted run record.
func (c *Client) GetRun(ctx context.Context, id string) (model.RunRecord, bool, error) {
	return c.store.GetRun(ctx, id)
}

// Strategies lists the registered strategy names, sorted.
func (c *Client) Strategies() []string {
	return strategy.List()
}

func (c *Client) writeRunArtifacts(cfg stats.RunConfig, record model.RunRecord) (string, error) {
	runDir, err := stats.WriteRunArtifacts(c.artifactsDir, stats.RunArtifacts{Config: cfg, Run: record})
	if err != nil {
		return "", err
	}
	err = stats.AppendRunIndex(c.artifactsDir, stats.RunIndexEntry{
		RunID:        cfg.RunID,
		Kind:         cfg.Kind,
		Width:        cfg.Width,
		Height:       cfg.Height,
		Seed:         cfg.Seed,
		Generations:  record.Generations,
		Converged:    record.Converged,
		CreatedAtUTC: time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		return "", err
	}
	return runDir, nil
}

func runRecord(id string, width, height int, seed int64, rounds int, result arena.RunResult) model.RunRecord {
	history := make([]model.CensusSnapshot, 0, len(result.History))
	for gen, census := range result.History {
		history = append(history, model.CensusSnapshot{Generation: gen, Counts: census.Clone()})
	}
	return model.RunRecord{
		VersionedRecord: model.VersionedRecord{
			SchemaVersion: storage.CurrentSchemaVersion,
			CodecVersion:  storage.CurrentCodecVersion,
		},
		ID:             id,
		Width:          width,
		Height:         height,
		Seed:           seed,
		RoundsPerMatch: rounds,
		Generations:    result.Generations,
		Converged:      result.Converged,
		Incomplete:     result.Incomplete,
		FinalCensus:    result.FinalCensus.Clone(),
		History:        history,
	}
}

func invasionRecord(id string, req InvadeRequest, result arena.InvasionResult) model.RunRecord {
	background := req.Background
	if background == "" {
		background = strategy.AlwaysDefect
	}
	total := req.Width * req.Height
	history := make([]model.CensusSnapshot, 0, len(result.History))
	for gen, invaders := range result.History {
		history = append(history, model.CensusSnapshot{
			Generation: gen,
			Counts:     invaderCensus(req.Invader, background, invaders, total),
		})
	}
	final := invaderCensus(req.Invader, background, result.Final, total)
	return model.RunRecord{
		VersionedRecord: model.VersionedRecord{
			SchemaVersion: storage.CurrentSchemaVersion,
			CodecVersion:  storage.CurrentCodecVersion,
		},
		ID:             id,
		Width:          req.Width,
		Height:         req.Height,
		Seed:           req.Seed,
		RoundsPerMatch: req.RoundsPerMatch,
		Generations:    result.Generations,
		Converged:      result.Converged,
		Incomplete:     result.Incomplete,
		FinalCensus:    final,
		History:        history,
	}
}

// invaderCensus rebuilds a two-strategy census from the invader count,
// omitting zero entries the way a live census would.
func invaderCensus(invader, background string, invaders, total int) map[string]int {
	counts := make(map[string]int, 2)
	if invaders > 0 {
		counts[invader] = invaders
	}
	if rest := total - invaders; rest > 0 {
		counts[background] = rest
	}
	return counts
}

func sweepRecord(id, parameter string, result sweep.Result) model.SweepRecord {
	samples := make([]model.SweepSample, 0, len(result.Samples))
	for _, s := range result.Samples {
		samples = append(samples, model.SweepSample{Param: s.Param, Metric: s.Metric})
	}
	return model.SweepRecord{
		VersionedRecord: model.VersionedRecord{
			SchemaVersion: storage.CurrentSchemaVersion,
			CodecVersion:  storage.CurrentCodecVersion,
		},
		ID:         id,
		Parameter:  parameter,
		Samples:    samples,
		Critical:   result.Critical,
		Incomplete: result.Incomplete,
	}
}
