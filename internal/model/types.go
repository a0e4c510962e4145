// Package model defines the persisted record shapes for simulation results.
package model

// VersionedRecord captures schema and codec evolution for persistent data.
type VersionedRecord struct {
	SchemaVersion int `json:"schema_version"`
	CodecVersion  int `json:"codec_version"`
}

// CensusSnapshot is one generation's population counts by strategy name.
type CensusSnapshot struct {
	Generation int            `json:"generation"`
	Counts     map[string]int `json:"counts"`
}

// RunRecord is the persisted outcome of one run to convergence.
type RunRecord struct {
	VersionedRecord
	ID             string           `json:"id"`
	Width          int              `json:"width"`
	Height         int              `json:"height"`
	Seed           int64            `json:"seed"`
	RoundsPerMatch int              `json:"rounds_per_match"`
	Generations    int              `json:"generations"`
	Converged      bool             `json:"converged"`
	Incomplete     bool             `json:"incomplete"`
	FinalCensus    map[string]int   `json:"final_census"`
	History        []CensusSnapshot `json:"history"`
}

// SweepSample is one scanned parameter value and its trial-averaged metric.
type SweepSample struct {
	Param  float64 `json:"param"`
	Metric float64 `json:"metric"`
}

// SweepRecord is the persisted outcome of a parameter sweep.
type SweepRecord struct {
	VersionedRecord
	ID        string        `json:"id"`
	Parameter string        `json:"parameter"`
	Samples   []SweepSample `json:"samples"`
	// Critical is nil when no transition was observed in range.
	Critical   *float64 `json:"critical,omitempty"`
	Incomplete bool     `json:"incomplete"`
}
