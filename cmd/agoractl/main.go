package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"syscall"

	agoraapi "agora/pkg/agora"

	"agora/internal/storage"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return usageError("missing command")
	}

	switch args[0] {
	case "init":
		return runInit(ctx, args[1:])
	case "run":
		return runRun(ctx, args[1:])
	case "invade":
		return runInvade(ctx, args[1:])
	case "sweep":
		return runSweep(ctx, args[1:])
	case "tournament":
		return runTournament(ctx, args[1:])
	case "runs":
		return runRuns(ctx, args[1:])
	case "strategies":
		return runStrategies(args[1:])
	default:
		return usageError(fmt.Sprintf("unknown command: %s", args[0]))
	}
}

func storeFlags(fs *flag.FlagSet) (storeKind, dbPath, artifactsDir *string) {
	storeKind = fs.String("store", storage.DefaultStoreKind(), "store backend: memory|sqlite")
	dbPath = fs.String("db-path", "agora.db", "sqlite database path")
	artifactsDir = fs.String("artifacts", "artifacts", "artifacts output directory")
	return storeKind, dbPath, artifactsDir
}

func newClient(storeKind, dbPath, artifactsDir string) (*agoraapi.Client, error) {
	return agoraapi.New(agoraapi.Options{
		StoreKind:    storeKind,
		DBPath:       dbPath,
		ArtifactsDir: artifactsDir,
	})
}

func runInit(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("init", flag.ContinueOnError)
	storeKind, dbPath, artifactsDir := storeFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	client, err := newClient(*storeKind, *dbPath, *artifactsDir)
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	if err := client.Init(ctx); err != nil {
		return err
	}
	fmt.Printf("initialized store=%s\n", *storeKind)
	return nil
}

func runRun(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	storeKind, dbPath, artifactsDir := storeFlags(fs)
	configPath := fs.String("config", "", "JSON config file; flags override its values")
	width := fs.Int("width", 0, "grid width")
	height := fs.Int("height", 0, "grid height")
	mode := fs.String("mode", "", "seeding mode: uniform|classic|noise")
	set := fs.String("set", "", "strategy set: classic|retaliators|nice|full")
	temptation := fs.Float64("temptation", 0, "temptation payoff override")
	rounds := fs.Int("rounds", 0, "rounds per match")
	generations := fs.Int("generations", 0, "max generations")
	seed := fs.Int64("seed", 0, "random seed")
	workers := fs.Int("workers", 0, "score-phase workers")
	if err := fs.Parse(args); err != nil {
		return err
	}

	var req agoraapi.RunRequest
	if *configPath != "" {
		loaded, err := loadRunRequestFromConfig(*configPath)
		if err != nil {
			return err
		}
		req = loaded
	}
	if *width > 0 {
		req.Width = *width
	}
	if *height > 0 {
		req.Height = *height
	}
	if *mode != "" {
		req.Mode = *mode
	}
	if *set != "" {
		catalog, err := catalogFromSet(*set)
		if err != nil {
			return err
		}
		req.Catalog = catalog
	}
	if *temptation > 0 {
		req.Temptation = *temptation
	}
	if *rounds > 0 {
		req.RoundsPerMatch = *rounds
	}
	if *generations > 0 {
		req.MaxGenerations = *generations
	}
	if *seed != 0 {
		req.Seed = *seed
	}
	if *workers > 0 {
		req.Workers = *workers
	}

	client, err := newClient(*storeKind, *dbPath, *artifactsDir)
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()
	if err := client.Init(ctx); err != nil {
		return err
	}

	summary, err := client.Run(ctx, req)
	if err != nil {
		return err
	}

	fmt.Printf("run %s: %d generations, converged=%t incomplete=%t\n",
		summary.RunID, summary.Generations, summary.Converged, summary.Incomplete)
	printCensus(summary.FinalCensus)
	fmt.Printf("cooperation: %.1f%%\n", summary.CooperationFraction*100)
	fmt.Printf("artifacts: %s\n", summary.ArtifactsDir)
	return nil
}

func runInvade(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("invade", flag.ContinueOnError)
	storeKind, dbPath, artifactsDir := storeFlags(fs)
	width := fs.Int("width", 0, "grid width")
	height := fs.Int("height", 0, "grid height")
	invader := fs.String("strategy", "", "invader strategy name")
	background := fs.String("background", "", "background strategy name")
	radius := fs.Int("radius", 0, "cluster radius")
	rounds := fs.Int("rounds", 0, "rounds per match")
	generations := fs.Int("generations", 0, "max generations")
	seed := fs.Int64("seed", 0, "random seed")
	workers := fs.Int("workers", 0, "score-phase workers")
	if err := fs.Parse(args); err != nil {
		return err
	}

	client, err := newClient(*storeKind, *dbPath, *artifactsDir)
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()
	if err := client.Init(ctx); err != nil {
		return err
	}

	summary, err := client.Invade(ctx, agoraapi.InvadeRequest{
		Width:          *width,
		Height:         *height,
		Invader:        *invader,
		Background:     *background,
		Radius:         *radius,
		RoundsPerMatch: *rounds,
		MaxGenerations: *generations,
		Seed:           *seed,
		Workers:        *workers,
	})
	if err != nil {
		return err
	}

	fmt.Printf("invasion %s: %s (%d -> %d cells over %d generations)\n",
		summary.RunID, summary.Verdict, summary.Initial, summary.Final, summary.Generations)
	if summary.Incomplete {
		fmt.Println("warning: run interrupted; results are partial")
	}
	fmt.Printf("artifacts: %s\n", summary.ArtifactsDir)
	return nil
}

func runSweep(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("sweep", flag.ContinueOnError)
	storeKind, dbPath, artifactsDir := storeFlags(fs)
	parameter := fs.String("parameter", agoraapi.SweepRadius, "sweep parameter: radius|temptation")
	width := fs.Int("width", 0, "grid width")
	height := fs.Int("height", 0, "grid height")
	invader := fs.String("strategy", "", "invader strategy name (radius sweep)")
	background := fs.String("background", "", "background strategy name (radius sweep)")
	maxRadius := fs.Int("max-radius", 0, "largest cluster radius to scan")
	set := fs.String("set", "", "strategy set (temptation sweep)")
	fromT := fs.Float64("from", 0, "first temptation value")
	toT := fs.Float64("to", 0, "last temptation value")
	stepT := fs.Float64("step", 0, "temptation step")
	rounds := fs.Int("rounds", 0, "rounds per match")
	generations := fs.Int("generations", 0, "max generations per trial")
	trials := fs.Int("trials", 0, "seeded trials per sample")
	workers := fs.Int("workers", 0, "concurrent trials")
	if err := fs.Parse(args); err != nil {
		return err
	}

	client, err := newClient(*storeKind, *dbPath, *artifactsDir)
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()
	if err := client.Init(ctx); err != nil {
		return err
	}

	summary, err := client.Sweep(ctx, agoraapi.SweepRequest{
		Parameter:      *parameter,
		Width:          *width,
		Height:         *height,
		Invader:        *invader,
		Background:     *background,
		MaxRadius:      *maxRadius,
		Set:            *set,
		FromT:          *fromT,
		ToT:            *toT,
		StepT:          *stepT,
		RoundsPerMatch: *rounds,
		MaxGenerations: *generations,
		Trials:         *trials,
		Workers:        *workers,
	})
	if err != nil {
		return err
	}

	fmt.Printf("sweep %s over %s:\n", summary.SweepID, *parameter)
	for _, sample := range summary.Samples {
		fmt.Printf("  %8.3f  %6.1f%%\n", sample.Param, sample.Metric*100)
	}
	if summary.Critical != nil {
		fmt.Printf("critical point: %.3f\n", *summary.Critical)
	} else {
		fmt.Println("no transition observed in range")
	}
	if summary.Incomplete {
		fmt.Println("warning: sweep interrupted; results are partial")
	}
	fmt.Printf("artifacts: %s\n", summary.ArtifactsDir)
	return nil
}

func runTournament(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("tournament", flag.ContinueOnError)
	storeKind, dbPath, artifactsDir := storeFlags(fs)
	set := fs.String("set", "", "strategy set: classic|retaliators|nice|full")
	rounds := fs.Int("rounds", 0, "rounds per match")
	generations := fs.Int("generations", 0, "replicator generations")
	seed := fs.Int64("seed", 0, "random seed")
	if err := fs.Parse(args); err != nil {
		return err
	}

	client, err := newClient(*storeKind, *dbPath, *artifactsDir)
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	summary, err := client.Tournament(ctx, agoraapi.TournamentRequest{
		Set:            *set,
		RoundsPerMatch: *rounds,
		Generations:    *generations,
		Seed:           *seed,
	})
	if err != nil {
		return err
	}

	fmt.Println("round-robin standings:")
	for rank, standing := range summary.Standings {
		fmt.Printf("  %2d. %-24s %8.1f\n", rank+1, standing.Name, standing.Score)
	}

	fmt.Printf("replicator dynamics, %d generations:\n", summary.Generations)
	names := make([]string, 0, len(summary.FinalShares))
	for name := range summary.FinalShares {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		if summary.FinalShares[names[i]] != summary.FinalShares[names[j]] {
			return summary.FinalShares[names[i]] > summary.FinalShares[names[j]]
		}
		return names[i] < names[j]
	})
	for _, name := range names {
		fmt.Printf("  %-24s %5.1f%%\n", name, summary.FinalShares[name]*100)
	}
	return nil
}

func runRuns(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("runs", flag.ContinueOnError)
	storeKind, dbPath, artifactsDir := storeFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	client, err := newClient(*storeKind, *dbPath, *artifactsDir)
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()
	if err := client.Init(ctx); err != nil {
		return err
	}

	ids, err := client.Runs(ctx)
	if err != nil {
		return err
	}
	for _, id := range ids {
		fmt.Println(id)
	}
	return nil
}

func runStrategies(args []string) error {
	fs := flag.NewFlagSet("strategies", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}

	client, err := newClient("memory", "", "")
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	for _, name := range client.Strategies() {
		fmt.Println(name)
	}
	return nil
}

func printCensus(census map[string]int) {
	names := make([]string, 0, len(census))
	for name := range census {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		if census[names[i]] != census[names[j]] {
			return census[names[i]] > census[names[j]]
		}
		return names[i] < names[j]
	})
	for _, name := range names {
		fmt.Printf("  %-24s %d\n", name, census[name])
	}
}

func usageError(msg string) error {
	return fmt.Errorf("%s\nusage: agoractl <init|run|invade|sweep|tournament|runs|strategies> [flags]", msg)
}
