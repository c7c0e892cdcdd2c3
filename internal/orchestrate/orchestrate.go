// Package orchestrate wires the rest of this module together into the
// four top-level campaigns a differential-testing run offers: replaying
// a persisted strategy, sampling a compilation space, replaying a whole
// regression directory, and mutating a seed corpus. It is the Go home of
// what the original implementation kept in a single core/api.py: the
// only package that knows about workspaces, the translator world-map,
// the mutation engine, and the toolchain adapters all at once.
package orchestrate

import (
	"fmt"
	"math/rand"
	"os"

	"github.com/charmbracelet/log"

	"verihammer/internal/driver"
	"verihammer/internal/toolchain"
)

// Filenames persisted under a result directory's compilation/ and
// cross-checking/ evidence records. Stable across runs per spec.md §6.
const (
	inputFilename      = "input"
	strategyFilename   = "strategy.json"
	exceptionFilename  = "exception.log"
	differenceFilename = "equivalence_classes"
)

// Orchestrator holds the shared, read-only state every top-level
// operation needs: the result directory evidence is persisted under, the
// bounded worker pool, the toolchain adapters, and a logger for
// operator-facing progress. Nothing here is mutated after New returns,
// matching spec.md §5's "result_dir is a process-wide state set once at
// startup" — the Go analogue just replaces "process-wide" with
// "Orchestrator-wide" since there is only one process either way.
type Orchestrator struct {
	ResultDir string
	Adapters  *toolchain.Adapters
	Pool      *driver.Pool
	Log       *log.Logger
	Rand      *rand.Rand
}

// New builds an Orchestrator. nJobs bounds concurrent unit jobs; rnd
// seeds every sampling decision (world-map path/option choice, mutation
// selection) for reproducible strategy replay when non-nil.
func New(resultDir string, nJobs int, adapters *toolchain.Adapters, rnd *rand.Rand) *Orchestrator {
	if rnd == nil {
		rnd = rand.New(rand.NewSource(1))
	}
	return &Orchestrator{
		ResultDir: resultDir,
		Adapters:  adapters,
		Pool:      driver.New(nJobs),
		Log: log.NewWithOptions(os.Stderr, log.Options{
			ReportTimestamp: true,
			TimeFormat:      "15:04:05",
		}),
		Rand: rnd,
	}
}

func (o *Orchestrator) logInfo(msg string, keyvals ...any) {
	if o.Log != nil {
		o.Log.Info(msg, keyvals...)
	}
}

// wrapf is fmt.Errorf("%s: ...: %w", pkg, err) shorthand used throughout
// this package, matching the plain-wrapping convention the rest of this
// module follows.
func wrapf(op string, err error) error {
	return fmt.Errorf("orchestrate: %s: %w", op, err)
}
