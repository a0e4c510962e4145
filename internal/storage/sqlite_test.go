//go:build sqlite

package storage

import (
	"context"
	"path/filepath"
	"testing"

	"agora/internal/model"
)

func TestSQLiteStoreRunRoundTrip(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "agora.db")

	store := NewSQLiteStore(dbPath)
	if err := store.Init(ctx); err != nil {
		t.Fatalf("init: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})

	record := testRunRecord("run-sqlite")
	if err := store.SaveRun(ctx, record); err != nil {
		t.Fatalf("save run: %v", err)
	}

	loaded, ok, err := store.GetRun(ctx, record.ID)
	if err != nil {
		t.Fatalf("get run: %v", err)
	}
	if !ok {
		t.Fatalf("expected run %s", record.ID)
	}
	if loaded.ID != record.ID || loaded.FinalCensus["tit_for_tat"] != 100 {
		t.Fatalf("unexpected run loaded: %+v", loaded)
	}

	// Upsert replaces in place.
	record.Generations = 20
	if err := store.SaveRun(ctx, record); err != nil {
		t.Fatalf("resave run: %v", err)
	}
	loaded, _, err = store.GetRun(ctx, record.ID)
	if err != nil {
		t.Fatalf("get run after upsert: %v", err)
	}
	if loaded.Generations != 20 {
		t.Fatalf("upsert did not replace: %+v", loaded)
	}

	ids, err := store.ListRunIDs(ctx)
	if err != nil {
		t.Fatalf("list run ids: %v", err)
	}
	if len(ids) != 1 || ids[0] != record.ID {
		t.Fatalf("unexpected run ids: %v", ids)
	}
}

func TestSQLiteStoreSweepRoundTrip(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "agora.db")

	store := NewSQLiteStore(dbPath)
	if err := store.Init(ctx); err != nil {
		t.Fatalf("init: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})

	record := model.SweepRecord{
		VersionedRecord: model.VersionedRecord{SchemaVersion: CurrentSchemaVersion, CodecVersion: CurrentCodecVersion},
		ID:              "sweep-sqlite",
		Parameter:       "temptation",
		Samples:         []model.SweepSample{{Param: 3, Metric: 0.9}, {Param: 5, Metric: 0.2}},
	}
	if err := store.SaveSweep(ctx, record); err != nil {
		t.Fatalf("save sweep: %v", err)
	}

	loaded, ok, err := store.GetSweep(ctx, record.ID)
	if err != nil {
		t.Fatalf("get sweep: %v", err)
	}
	if !ok {
		t.Fatalf("expected sweep %s", record.ID)
	}
	if loaded.Parameter != "temptation" || len(loaded.Samples) != 2 {
		t.Fatalf("unexpected sweep loaded: %+v", loaded)
	}

	_, ok, err = store.GetSweep(ctx, "missing")
	if err != nil {
		t.Fatalf("get missing sweep: %v", err)
	}
	if ok {
		t.Fatal("expected missing sweep to report not found")
	}
}

func TestSQLiteStoreRequiresPath(t *testing.T) {
	store := NewSQLiteStore("")
	if err := store.Init(context.Background()); err == nil {
		t.Fatal("expected error for empty path")
	}
}
