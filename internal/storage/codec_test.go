package storage

import (
	"errors"
	"testing"

	"agora/internal/model"
)

func TestRunCodecRoundTrip(t *testing.T) {
	record := testRunRecord("run-codec")
	data, err := EncodeRun(record)
	if err != nil {
		t.Fatalf("encode run: %v", err)
	}

	decoded, err := DecodeRun(data)
	if err != nil {
		t.Fatalf("decode run: %v", err)
	}
	if decoded.ID != record.ID || decoded.Width != record.Width {
		t.Fatalf("round trip mangled the record: %+v", decoded)
	}
	if len(decoded.History) != len(record.History) {
		t.Fatalf("history length: want %d, got %d", len(record.History), len(decoded.History))
	}
}

func TestDecodeRunVersionMismatch(t *testing.T) {
	record := testRunRecord("run-stale")
	record.SchemaVersion = CurrentSchemaVersion + 1
	data, err := EncodeRun(record)
	if err != nil {
		t.Fatalf("encode run: %v", err)
	}

	if _, err := DecodeRun(data); !errors.Is(err, ErrVersionMismatch) {
		t.Fatalf("expected ErrVersionMismatch, got %v", err)
	}
}

func TestSweepCodecVersionMismatch(t *testing.T) {
	record := model.SweepRecord{
		VersionedRecord: model.VersionedRecord{
			SchemaVersion: CurrentSchemaVersion,
			CodecVersion:  CurrentCodecVersion + 1,
		},
		ID: "sweep-stale",
	}
	data, err := EncodeSweep(record)
	if err != nil {
		t.Fatalf("encode sweep: %v", err)
	}

	if _, err := DecodeSweep(data); !errors.Is(err, ErrVersionMismatch) {
		t.Fatalf("expected ErrVersionMismatch, got %v", err)
	}
}

func TestDecodeRunRejectsGarbage(t *testing.T) {
	if _, err := DecodeRun([]byte("not json")); err == nil {
		t.Fatal("expected decode error")
	}
}
