package stats

import (
	"os"
	"path/filepath"
	"testing"

	"agora/internal/model"
)

func testArtifacts(runID string) RunArtifacts {
	return RunArtifacts{
		Config: RunConfig{
			RunID:          runID,
			Kind:           "run",
			Width:          10,
			Height:         10,
			Mode:           "uniform",
			RoundsPerMatch: 8,
			MaxGenerations: 30,
			Seed:           42,
			Workers:        4,
		},
		Run: model.RunRecord{
			ID:          runID,
			Width:       10,
			Height:      10,
			Generations: 2,
			Converged:   true,
			FinalCensus: map[string]int{"tit_for_tat": 100},
			History: []model.CensusSnapshot{
				{Generation: 0, Counts: map[string]int{"tit_for_tat": 60, "always_defect": 40}},
				{Generation: 1, Counts: map[string]int{"tit_for_tat": 90, "always_defect": 10}},
				{Generation: 2, Counts: map[string]int{"tit_for_tat": 100}},
			},
		},
	}
}

func TestWriteRunArtifacts(t *testing.T) {
	baseDir := t.TempDir()

	runDir, err := WriteRunArtifacts(baseDir, testArtifacts("run-1"))
	if err != nil {
		t.Fatalf("write artifacts: %v", err)
	}
	if runDir != filepath.Join(baseDir, "run-1") {
		t.Fatalf("unexpected run dir: %s", runDir)
	}

	for _, file := range []string{"config.json", "result.json", "census.csv"} {
		if _, err := os.Stat(filepath.Join(runDir, file)); err != nil {
			t.Fatalf("expected %s: %v", file, err)
		}
	}

	cfg, ok, err := ReadRunConfig(baseDir, "run-1")
	if err != nil {
		t.Fatalf("read config: %v", err)
	}
	if !ok {
		t.Fatal("expected config to exist")
	}
	if cfg.Width != 10 || cfg.Seed != 42 {
		t.Fatalf("config mangled: %+v", cfg)
	}

	_, ok, err = ReadRunConfig(baseDir, "missing")
	if err != nil {
		t.Fatalf("read missing config: %v", err)
	}
	if ok {
		t.Fatal("expected missing config to report not found")
	}
}

func TestWriteRunArtifactsRequiresID(t *testing.T) {
	artifacts := testArtifacts("")
	if _, err := WriteRunArtifacts(t.TempDir(), artifacts); err == nil {
		t.Fatal("expected error for empty run id")
	}
}

func TestRunIndexUpsertAndOrdering(t *testing.T) {
	baseDir := t.TempDir()

	entries := []RunIndexEntry{
		{RunID: "a", Kind: "run", CreatedAtUTC: "2026-08-01T00:00:00Z"},
		{RunID: "b", Kind: "invade", CreatedAtUTC: "2026-08-02T00:00:00Z"},
	}
	for _, entry := range entries {
		if err := AppendRunIndex(baseDir, entry); err != nil {
			t.Fatalf("append %s: %v", entry.RunID, err)
		}
	}

	index, err := ListRunIndex(baseDir)
	if err != nil {
		t.Fatalf("list index: %v", err)
	}
	if len(index) != 2 || index[0].RunID != "b" {
		t.Fatalf("expected newest first, got %v", index)
	}

	// Re-appending an existing id replaces its entry.
	if err := AppendRunIndex(baseDir, RunIndexEntry{RunID: "a", Kind: "run", Generations: 7, CreatedAtUTC: "2026-08-03T00:00:00Z"}); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	index, err = ListRunIndex(baseDir)
	if err != nil {
		t.Fatalf("list index after upsert: %v", err)
	}
	if len(index) != 2 {
		t.Fatalf("upsert should not grow the index, got %d entries", len(index))
	}
	if index[0].RunID != "a" || index[0].Generations != 7 {
		t.Fatalf("upsert did not replace: %v", index)
	}
}

func TestSweepArtifactsRoundTrip(t *testing.T) {
	baseDir := t.TempDir()

	critical := 2.33
	record := model.SweepRecord{
		ID:        "sweep-1",
		Parameter: "radius",
		Samples:   []model.SweepSample{{Param: 1, Metric: 0.8}, {Param: 2, Metric: 0.6}, {Param: 3, Metric: 0.3}},
		Critical:  &critical,
	}
	sweepDir, err := WriteSweepArtifacts(baseDir, record)
	if err != nil {
		t.Fatalf("write sweep artifacts: %v", err)
	}
	if _, err := os.Stat(filepath.Join(sweepDir, "sweep.json")); err != nil {
		t.Fatalf("expected sweep.json: %v", err)
	}

	samples, ok, err := ReadSampleSeries(baseDir, "sweep-1")
	if err != nil {
		t.Fatalf("read samples: %v", err)
	}
	if !ok {
		t.Fatal("expected samples.csv to exist")
	}
	if len(samples) != 3 || samples[2].Param != 3 || samples[2].Metric != 0.3 {
		t.Fatalf("samples mangled: %v", samples)
	}
}
