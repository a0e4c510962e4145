package storage

import (
	"context"
	"testing"

	"agora/internal/model"
)

func testRunRecord(id string) model.RunRecord {
	return model.RunRecord{
		VersionedRecord: model.VersionedRecord{
			SchemaVersion: CurrentSchemaVersion,
			CodecVersion:  CurrentCodecVersion,
		},
		ID:             id,
		Width:          10,
		Height:         10,
		Seed:           42,
		RoundsPerMatch: 8,
		Generations:    12,
		Converged:      true,
		FinalCensus:    map[string]int{"tit_for_tat": 100},
		History: []model.CensusSnapshot{
			{Generation: 0, Counts: map[string]int{"tit_for_tat": 60, "always_defect": 40}},
			{Generation: 12, Counts: map[string]int{"tit_for_tat": 100}},
		},
	}
}

func TestMemoryStoreRunRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	if err := store.Init(ctx); err != nil {
		t.Fatalf("init: %v", err)
	}

	if err := store.SaveRun(ctx, testRunRecord("run-1")); err != nil {
		t.Fatalf("save run: %v", err)
	}

	run, ok, err := store.GetRun(ctx, "run-1")
	if err != nil {
		t.Fatalf("get run: %v", err)
	}
	if !ok {
		t.Fatal("expected run to be found")
	}
	if run.Generations != 12 || run.FinalCensus["tit_for_tat"] != 100 {
		t.Fatalf("round trip mangled the record: %+v", run)
	}

	_, ok, err = store.GetRun(ctx, "missing")
	if err != nil {
		t.Fatalf("get missing run: %v", err)
	}
	if ok {
		t.Fatal("expected missing run to report not found")
	}
}

func TestMemoryStoreListRunIDs(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	if err := store.Init(ctx); err != nil {
		t.Fatalf("init: %v", err)
	}

	for _, id := range []string{"c", "a", "b"} {
		if err := store.SaveRun(ctx, testRunRecord(id)); err != nil {
			t.Fatalf("save run %s: %v", id, err)
		}
	}

	ids, err := store.ListRunIDs(ctx)
	if err != nil {
		t.Fatalf("list run ids: %v", err)
	}
	if len(ids) != 3 || ids[0] != "a" || ids[1] != "b" || ids[2] != "c" {
		t.Fatalf("expected sorted ids, got %v", ids)
	}
}

func TestMemoryStoreSweepRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	if err := store.Init(ctx); err != nil {
		t.Fatalf("init: %v", err)
	}

	critical := 2.33
	record := model.SweepRecord{
		VersionedRecord: model.VersionedRecord{
			SchemaVersion: CurrentSchemaVersion,
			CodecVersion:  CurrentCodecVersion,
		},
		ID:        "sweep-1",
		Parameter: "radius",
		Samples:   []model.SweepSample{{Param: 1, Metric: 0.8}, {Param: 2, Metric: 0.6}},
		Critical:  &critical,
	}
	if err := store.SaveSweep(ctx, record); err != nil {
		t.Fatalf("save sweep: %v", err)
	}

	sweep, ok, err := store.GetSweep(ctx, "sweep-1")
	if err != nil {
		t.Fatalf("get sweep: %v", err)
	}
	if !ok {
		t.Fatal("expected sweep to be found")
	}
	if sweep.Critical == nil || *sweep.Critical != critical {
		t.Fatalf("critical point mangled: %+v", sweep)
	}
	if len(sweep.Samples) != 2 {
		t.Fatalf("samples mangled: %+v", sweep.Samples)
	}
}
