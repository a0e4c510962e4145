// Package sweep scans a scalar parameter across seeded simulation trials
// and locates the critical point where the aggregate metric crosses 0.5.
package sweep

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// Metric runs one trial at a parameter value with one seed and returns the
// trial's outcome in [0, 1].
type Metric func(ctx context.Context, param float64, seed int64) (float64, error)

// Config describes a parameter scan. Each sampled parameter value runs
// Trials independent seeded trials whose metrics are averaged.
type Config struct {
	From   float64
	To     float64
	Step   float64
	Trials int
	// Workers bounds concurrent trials; defaults to 1.
	Workers int
	// Seeds are BaseSeed + SeedStride*trial.
	BaseSeed   int64
	SeedStride int64
	Metric     Metric
}

func (cfg *Config) validate() error {
	if cfg.Step <= 0 {
		return fmt.Errorf("sweep step must be > 0, got %g", cfg.Step)
	}
	if cfg.To < cfg.From {
		return fmt.Errorf("sweep range is inverted: from %g to %g", cfg.From, cfg.To)
	}
	if cfg.Trials <= 0 {
		return fmt.Errorf("trials must be > 0, got %d", cfg.Trials)
	}
	if cfg.Metric == nil {
		return errors.New("sweep metric is required")
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	return nil
}

// Sample is one scanned parameter value and its trial-averaged metric.
type Sample struct {
	Param  float64 `json:"param"`
	Metric float64 `json:"metric"`
}

// Result is an ordered scan plus the interpolated critical point, if the
// samples bracket the 0.5 threshold anywhere.
type Result struct {
	Samples []Sample `json:"samples"`
	// Critical is nil when no transition was observed in range.
	Critical *float64 `json:"critical,omitempty"`
	// Incomplete marks a cancelled scan; Samples then holds only the
	// parameter values fully finished before cancellation.
	Incomplete bool `json:"incomplete"`
}

// Run scans [From, To] in Step increments. Trials within one parameter value
// run on a bounded worker pool; parameter values complete in order so a
// cancelled scan keeps a clean prefix.
func Run(ctx context.Context, cfg Config) (Result, error) {
	if err := cfg.validate(); err != nil {
		return Result{}, err
	}

	var result Result
	// Step counts instead of accumulating param += Step, which drifts.
	// Floored with an epsilon so an inexact range never samples past To.
	steps := int((cfg.To-cfg.From)/cfg.Step + 1e-6)
	for i := 0; i <= steps; i++ {
		param := cfg.From + float64(i)*cfg.Step
		mean, err := cfg.runTrials(ctx, param)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				result.Incomplete = true
				result.Critical = CriticalPoint(result.Samples)
				return result, nil
			}
			return Result{}, err
		}
		result.Samples = append(result.Samples, Sample{Param: param, Metric: mean})
	}
	result.Critical = CriticalPoint(result.Samples)
	return result, nil
}

func (cfg Config) runTrials(ctx context.Context, param float64) (float64, error) {
	type trialResult struct {
		metric float64
		err    error
	}

	jobs := make(chan int64)
	results := make(chan trialResult, cfg.Trials)

	workerCount := cfg.Workers
	if workerCount > cfg.Trials {
		workerCount = cfg.Trials
	}

	var wg sync.WaitGroup
	wg.Add(workerCount)
	for w := 0; w < workerCount; w++ {
		go func() {
			defer wg.Done()
			for seed := range jobs {
				if err := ctx.Err(); err != nil {
					results <- trialResult{err: err}
					continue
				}
				metric, err := cfg.Metric(ctx, param, seed)
				results <- trialResult{metric: metric, err: err}
			}
		}()
	}

	for trial := 0; trial < cfg.Trials; trial++ {
		jobs <- cfg.BaseSeed + cfg.SeedStride*int64(trial)
	}
	close(jobs)

	wg.Wait()
	close(results)

	total := 0.0
	for res := range results {
		if res.err != nil {
			return 0, res.err
		}
		total += res.metric
	}
	return total / float64(cfg.Trials), nil
}

// CriticalPoint scans ordered samples for the first adjacent pair bracketing
// the 0.5 threshold in either direction and linearly interpolates the
// parameter where the metric would equal exactly 0.5. Nil means no
// transition was observed in range.
func CriticalPoint(samples []Sample) *float64 {
	for i := 0; i+1 < len(samples); i++ {
		m1, m2 := samples[i].Metric, samples[i+1].Metric
		descending := m1 >= 0.5 && m2 < 0.5
		ascending := m1 < 0.5 && m2 >= 0.5
		if !descending && !ascending {
			continue
		}
		p1, p2 := samples[i].Param, samples[i+1].Param
		if m1 == m2 {
			return &p1
		}
		critical := p1 + (0.5-m1)*(p2-p1)/(m2-m1)
		return &critical
	}
	return nil
}

// CollapsePoint returns the first parameter whose metric reached zero, or
// nil if the metric never collapsed in range.
func CollapsePoint(samples []Sample) *float64 {
	for _, s := range samples {
		if s.Metric == 0 {
			p := s.Param
			return &p
		}
	}
	return nil
}
