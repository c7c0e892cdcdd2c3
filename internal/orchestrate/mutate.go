package orchestrate

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"verihammer/internal/driver"
	"verihammer/internal/mutate"
	"verihammer/internal/workspace"
)

// semanticValidator adapts the toolchain's SemanticCheck adapter to
// mutate.Validator: it writes the candidate source to a scratch file
// inside the current workspace and asks iverilog (or the yosys
// systemverilog plugin for .sv) whether it still parses and elaborates.
type semanticValidator struct {
	o *Orchestrator
}

func (v semanticValidator) Validate(ctx context.Context, source []byte, suffix string) (bool, error) {
	ws := workspace.Current(ctx)
	path := ws.PathToTempFile("candidate"+suffix, true)
	if err := os.WriteFile(path, source, 0o644); err != nil {
		return false, fmt.Errorf("orchestrate: writing mutation candidate: %w", err)
	}
	return v.o.Adapters.SemanticCheck(ctx, path, suffix), nil
}

// Mutate runs the heuristic mutation engine over seedPath, writing every
// validated mutant to outputDir as
// "<seed-stem>-mutated-<i><seed-suffix>". Mirrors core/api.py's mutate().
func Mutate(ctx context.Context, o *Orchestrator, seedPath, outputDir string, maxCount int) error {
	ws, err := workspace.Acquire(o.ResultDir)
	if err != nil {
		return wrapf("mutate: acquiring workspace", err)
	}
	defer ws.Release()
	ctx = workspace.WithCurrent(ctx, ws)

	seed, err := os.ReadFile(seedPath)
	if err != nil {
		return wrapf("mutate: reading seed", err)
	}
	suffix := filepath.Ext(seedPath)
	stem := strings.TrimSuffix(filepath.Base(seedPath), suffix)

	engine := mutate.NewEngine(mutate.DefaultSubMutators(), semanticValidator{o: o}, o.Rand)
	mutants, err := engine.Generate(ctx, seed, suffix, maxCount)
	if err != nil {
		return wrapf("mutate: generating", err)
	}
	for i, m := range mutants {
		outPath := filepath.Join(outputDir, fmt.Sprintf("%s-mutated-%d%s", stem, i, suffix))
		if err := os.WriteFile(outPath, m, 0o644); err != nil {
			return wrapf("mutate: writing mutant", err)
		}
	}
	o.logInfo("mutation complete", "seed", seedPath, "mutants", len(mutants))

	if engine.HasError {
		if _, err := ws.SaveAs(o.ResultDir, "mutation"); err != nil {
			return wrapf("mutate: archiving workspace", err)
		}
	}
	return nil
}

// MutateAll runs Mutate over every .v/.sv file under seedDir, in series
// when debug is true (so a panic or hang is easy to attribute to a
// single seed) or across the Orchestrator's worker pool otherwise.
// Mirrors core/api.py's run_mutation.
func MutateAll(ctx context.Context, o *Orchestrator, seedDir, outputDir string, nTimes int, debug bool) error {
	seeds, err := findRTLSeeds(seedDir)
	if err != nil {
		return wrapf("mutate all: finding seeds", err)
	}

	if debug {
		for _, seed := range seeds {
			if err := Mutate(ctx, o, seed, outputDir, nTimes); err != nil {
				return err
			}
		}
		return nil
	}

	jobs := make([]driver.Job, len(seeds))
	for i, seed := range seeds {
		seed := seed
		jobs[i] = func(ctx context.Context) error {
			return Mutate(ctx, o, seed, outputDir, nTimes)
		}
	}
	o.logInfo("mutation campaign starting", "seeds", len(seeds))
	for i, err := range o.Pool.RunCollecting(ctx, jobs) {
		if err != nil {
			o.logInfo("mutation job failed", "index", i, "error", err)
		}
	}
	return nil
}

func findRTLSeeds(dir string) ([]string, error) {
	v, err := findRTLFiles(dir, ".v")
	if err != nil {
		return nil, err
	}
	sv, err := findRTLFiles(dir, ".sv")
	if err != nil {
		return nil, err
	}
	return append(v, sv...), nil
}
