package orchestrate

import (
	"context"
	"os"
	"path/filepath"

	"verihammer/internal/circuit"
	"verihammer/internal/driver"
	"verihammer/internal/worldmap"
)

// BatchTest walks rtlDir for every file matching source's extension,
// builds the fixed population of every source→sink conversion (every
// graph path crossed with every maxOp-bounded translator-option
// combination) once, draws nSamples distinct conversions without
// replacement per file from that shared population, and runs
// EquivalenceCheck on each file across the Orchestrator's worker pool.
// Mirrors core/api.py's sample_compilation_space feeding run_validation.
func BatchTest(ctx context.Context, o *Orchestrator, rtlDir string, source, sink circuit.Kind, nSamples, maxOp int, testOnly bool) error {
	graph := worldmap.BuildGraph()
	allConversions, err := worldmap.AllConversions(graph, source, sink, maxOp, o.Rand)
	if err != nil {
		return wrapf("batch test: enumerating conversion space", err)
	}

	files, err := findRTLFiles(rtlDir, source.Extension())
	if err != nil {
		return wrapf("batch test: finding rtl files", err)
	}

	var jobs []driver.Job
	for _, file := range files {
		file := file
		conversions, err := worldmap.SampleCompilationSpace(allConversions, nSamples, o.Rand)
		if err != nil {
			o.logInfo("skipping batch test file", "input", file, "error", err)
			continue
		}
		jobs = append(jobs, func(ctx context.Context) error {
			return EquivalenceCheck(ctx, o, file, conversions, testOnly)
		})
	}

	o.logInfo("batch test starting", "files", len(files), "jobs", len(jobs))
	for i, err := range o.Pool.RunCollecting(ctx, jobs) {
		if err != nil {
			o.logInfo("batch test job failed", "index", i, "error", err)
		}
	}
	return nil
}

// findRTLFiles recursively collects every file under dir ending in ext,
// mirroring rtl_dir.glob(f'**/*{ext}').
func findRTLFiles(dir, ext string) ([]string, error) {
	var files []string
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() && filepath.Ext(path) == ext {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return files, nil
}
