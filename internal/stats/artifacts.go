// Package stats writes simulation artifacts (JSON summaries, CSV series)
// for plotting and later inspection.
package stats

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"agora/internal/model"
)

const runIndexFile = "run_index.json"

// RunConfig records the inputs that produced a run, alongside its result.
type RunConfig struct {
	RunID          string   `json:"run_id"`
	Kind           string   `json:"kind"`
	Width          int      `json:"width"`
	Height         int      `json:"height"`
	Mode           string   `json:"mode"`
	Catalog        []string `json:"catalog,omitempty"`
	Invader        string   `json:"invader,omitempty"`
	Background     string   `json:"background,omitempty"`
	Radius         int      `json:"radius,omitempty"`
	RoundsPerMatch int      `json:"rounds_per_match"`
	MaxGenerations int      `json:"max_generations"`
	Seed           int64    `json:"seed"`
	Workers        int      `json:"workers"`
}

// RunArtifacts is everything written for one run: its config, the persisted
// record, and the census history as a CSV series.
type RunArtifacts struct {
	Config RunConfig       `json:"config"`
	Run    model.RunRecord `json:"run"`
}

// RunIndexEntry is one row of the artifacts directory's run index.
type RunIndexEntry struct {
	RunID        string `json:"run_id"`
	Kind         string `json:"kind"`
	Width        int    `json:"width"`
	Height       int    `json:"height"`
	Seed         int64  `json:"seed"`
	Generations  int    `json:"generations"`
	Converged    bool   `json:"converged"`
	CreatedAtUTC string `json:"created_at_utc"`
}

// WriteRunArtifacts writes config.json, result.json, and census.csv into a
// per-run directory under baseDir and returns that directory.
func WriteRunArtifacts(baseDir string, artifacts RunArtifacts) (string, error) {
	if artifacts.Config.RunID == "" {
		return "", fmt.Errorf("run id is required")
	}

	runDir := filepath.Join(baseDir, artifacts.Config.RunID)
	if err := os.MkdirAll(runDir, 0o755); err != nil {
		return "", err
	}

	if err := writeJSON(filepath.Join(runDir, "config.json"), artifacts.Config); err != nil {
		return "", err
	}
	if err := writeJSON(filepath.Join(runDir, "result.json"), artifacts.Run); err != nil {
		return "", err
	}
	if err := writeCensusSeries(filepath.Join(runDir, "census.csv"), artifacts.Run.History); err != nil {
		return "", err
	}
	return runDir, nil
}

// WriteSweepArtifacts writes sweep.json and samples.csv into a per-sweep
// directory under baseDir and returns that directory.
func WriteSweepArtifacts(baseDir string, sweep model.SweepRecord) (string, error) {
	if sweep.ID == "" {
		return "", fmt.Errorf("sweep id is required")
	}

	sweepDir := filepath.Join(baseDir, sweep.ID)
	if err := os.MkdirAll(sweepDir, 0o755); err != nil {
		return "", err
	}

	if err := writeJSON(filepath.Join(sweepDir, "sweep.json"), sweep); err != nil {
		return "", err
	}
	if err := writeSampleSeries(filepath.Join(sweepDir, "samples.csv"), sweep.Samples); err != nil {
		return "", err
	}
	return sweepDir, nil
}

// AppendRunIndex inserts or replaces the entry for its run id in the index.
func AppendRunIndex(baseDir string, entry RunIndexEntry) error {
	if entry.RunID == "" {
		return fmt.Errorf("run id is required")
	}
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return err
	}

	index, err := ListRunIndex(baseDir)
	if err != nil {
		return err
	}

	for i := range index {
		if index[i].RunID == entry.RunID {
			index[i] = entry
			return writeJSON(filepath.Join(baseDir, runIndexFile), index)
		}
	}

	index = append(index, entry)
	return writeJSON(filepath.Join(baseDir, runIndexFile), index)
}

// ListRunIndex returns the index entries, newest first.
func ListRunIndex(baseDir string) ([]RunIndexEntry, error) {
	path := filepath.Join(baseDir, runIndexFile)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunIndexEntry{}, nil
		}
		return nil, err
	}

	var entries []RunIndexEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, err
	}

	type indexedEntry struct {
		entry RunIndexEntry
		idx   int
	}
	indexed := make([]indexedEntry, len(entries))
	for i := range entries {
		indexed[i] = indexedEntry{entry: entries[i], idx: i}
	}
	sort.Slice(indexed, func(i, j int) bool {
		if indexed[i].entry.CreatedAtUTC == indexed[j].entry.CreatedAtUTC {
			// Prefer later appended entries for equal timestamps.
			return indexed[i].idx > indexed[j].idx
		}
		return indexed[i].entry.CreatedAtUTC > indexed[j].entry.CreatedAtUTC
	})

	sorted := make([]RunIndexEntry, 0, len(indexed))
	for _, item := range indexed {
		sorted = append(sorted, item.entry)
	}
	return sorted, nil
}

// ReadRunConfig loads a previously written run config.
func ReadRunConfig(baseDir, runID string) (RunConfig, bool, error) {
	path := filepath.Join(baseDir, runID, "config.json")
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return RunConfig{}, false, nil
		}
		return RunConfig{}, false, err
	}

	var cfg RunConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return RunConfig{}, false, err
	}
	return cfg, true, nil
}

// writeCensusSeries writes one row per generation with one column per
// strategy name; strategy columns are the sorted union of names across the
// whole history, absent strategies written as 0.
func writeCensusSeries(path string, history []model.CensusSnapshot) error {
	nameSet := make(map[string]struct{})
	for _, snapshot := range history {
		for name := range snapshot.Counts {
			nameSet[name] = struct{}{}
		}
	}
	names := make([]string, 0, len(nameSet))
	for name := range nameSet {
		names = append(names, name)
	}
	sort.Strings(names)

	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	header := append([]string{"generation"}, names...)
	if err := writer.Write(header); err != nil {
		return err
	}
	for _, snapshot := range history {
		row := make([]string, 0, len(header))
		row = append(row, strconv.Itoa(snapshot.Generation))
		for _, name := range names {
			row = append(row, strconv.Itoa(snapshot.Counts[name]))
		}
		if err := writer.Write(row); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

func writeSampleSeries(path string, samples []model.SweepSample) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if err := writer.Write([]string{"param", "metric"}); err != nil {
		return err
	}
	for _, sample := range samples {
		if err := writer.Write([]string{
			strconv.FormatFloat(sample.Param, 'f', -1, 64),
			strconv.FormatFloat(sample.Metric, 'f', -1, 64),
		}); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// ReadSampleSeries loads a sweep's samples.csv.
func ReadSampleSeries(baseDir, sweepID string) ([]model.SweepSample, bool, error) {
	path := filepath.Join(baseDir, sweepID, "samples.csv")
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, err
	}
	defer file.Close()

	reader := csv.NewReader(file)
	header, err := reader.Read()
	if err != nil {
		if err == io.EOF {
			return []model.SweepSample{}, true, nil
		}
		return nil, false, err
	}
	if len(header) < 2 {
		return nil, false, fmt.Errorf("sample series header must have at least 2 columns")
	}

	samples := make([]model.SweepSample, 0, 64)
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, false, err
		}
		if len(record) < 2 {
			return nil, false, fmt.Errorf("sample series row must have at least 2 columns")
		}
		param, err := strconv.ParseFloat(record[0], 64)
		if err != nil {
			return nil, false, err
		}
		metric, err := strconv.ParseFloat(record[1], 64)
		if err != nil {
			return nil, false, err
		}
		samples = append(samples, model.SweepSample{Param: param, Metric: metric})
	}
	return samples, true, nil
}

func writeJSON(path string, value any) error {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	return os.WriteFile(path, data, 0o644)
}
