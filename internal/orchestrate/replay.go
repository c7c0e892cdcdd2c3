package orchestrate

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"verihammer/internal/driver"
)

// Replay re-runs a persisted (input, strategy.json) pair through
// EquivalenceCheck with testOnly=false (full structural equality), the
// Go analogue of core/api.py's replay(). Property 8 of spec.md §8
// requires replay to reproduce the original partition structure; this
// holds as long as the strategy file names the same conversions, since
// EquivalenceCheck's grouping is otherwise deterministic given the same
// adapters and solver.
func Replay(ctx context.Context, o *Orchestrator, hdlPath, jsonPath string) error {
	data, err := os.ReadFile(jsonPath)
	if err != nil {
		return wrapf("replay: reading strategy", err)
	}
	conversions, err := unmarshalStrategy(data)
	if err != nil {
		return wrapf("replay", err)
	}
	return EquivalenceCheck(ctx, o, hdlPath, conversions, false)
}

// RegressionTest replays every numbered (input, strategy) pair under
// dir — input000001<inputSuffix>, strategy000001.json, input000002...,
// stopping at the first missing index — across the Orchestrator's
// worker pool. Mirrors core/api.py's regression_test.
func RegressionTest(ctx context.Context, o *Orchestrator, dir, inputSuffix string) error {
	var jobs []driver.Job
	for index := 1; ; index++ {
		inputPath := filepath.Join(dir, fmt.Sprintf("input%06d%s", index, inputSuffix))
		strategyPath := filepath.Join(dir, fmt.Sprintf("strategy%06d.json", index))
		if !fileExists(inputPath) || !fileExists(strategyPath) {
			break
		}
		inputPath, strategyPath := inputPath, strategyPath
		jobs = append(jobs, func(ctx context.Context) error {
			return Replay(ctx, o, inputPath, strategyPath)
		})
	}
	o.logInfo("regression test starting", "jobs", len(jobs))
	for i, err := range o.Pool.RunCollecting(ctx, jobs) {
		if err != nil {
			o.logInfo("regression job failed", "index", i, "error", err)
		}
	}
	// Per spec.md §6, exit code 0 on normal completion even in the
	// presence of per-job failures: a job failing never fails the run.
	return nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
