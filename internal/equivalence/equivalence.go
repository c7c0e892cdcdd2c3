// Package equivalence implements the SMT equivalence protocol: given a
// set of SmtCircuit views sharing an I/O contract, decide whether they
// compute the same transition relation, optionally extracting a
// human-readable counterexample when they don't.
package equivalence

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"

	"verihammer/internal/circuit"
	"verihammer/internal/equivalence/smtlib"
	"verihammer/internal/toolchain"
)

// ErrTooManyPartial is returned when two or more circuits in the compared
// set are partial (overapproximating) transition relations; the miter
// construction in spec.md §4.G step 5 only has a defined meaning for at
// most one partial circuit.
var ErrTooManyPartial = errors.New("equivalence: comparing 2 or more partial circuits is not supported")

// ErrSolverUnknown is returned when the solver reports "unknown" — a
// timeout or an incomplete theory combination — rather than a definite
// sat/unsat verdict.
var ErrSolverUnknown = errors.New("equivalence: solver returned unknown (timeout or incomplete theory)")

// Options controls one equivalence check.
type Options struct {
	// Quick selects concrete-value pinning (step 7's "quick=true") over
	// full structural equality. Quick mode trades precision for a solver
	// that converges faster, appropriate for the high-volume screening
	// pass of a fuzzing campaign.
	Quick bool
	// Counterexample requests report.md generation when the circuits are
	// found non-equivalent.
	Counterexample bool
	// Rand seeds quick-mode value concretization. A nil Rand uses a
	// fixed default seed for reproducible strategy replay.
	Rand *rand.Rand
}

// Result is the outcome of one Check call.
type Result struct {
	Equivalent bool
	Report     string // rendered report.md text, set iff a counterexample was extracted
}

// stateVar allocates fresh SMT-LIB2 symbol names for circuit states, the
// Go stand-in for pysmt's FreshSymbol.
type stateVar struct{ next int }

func (s *stateVar) fresh(prefix string) string {
	s.next++
	return fmt.Sprintf("%s%d", prefix, s.next)
}

// Check runs the full 9-step protocol of spec.md §4.G over circuits,
// which must hold 1 or more SmtCircuit views sharing the same I/O
// contract.
func Check(ctx context.Context, circuits []*circuit.SmtCircuit, opts Options, adapters *toolchain.Adapters) (*Result, error) {
	if len(circuits) == 0 {
		return nil, fmt.Errorf("equivalence: at least one circuit is required")
	}
	rnd := opts.Rand
	if rnd == nil {
		rnd = rand.New(rand.NewSource(1))
	}

	// Step 1: fresh current/next state symbols per circuit.
	vars := &stateVar{}
	currentStates := make([]circuit.State, len(circuits))
	nextStates := make([]circuit.State, len(circuits))
	currentSyms := make([]string, len(circuits))
	nextSyms := make([]string, len(circuits))
	for i, c := range circuits {
		currentSyms[i] = vars.fresh("cur")
		nextSyms[i] = vars.fresh("nxt")
		currentStates[i] = stateOf(c, currentSyms[i])
		nextStates[i] = stateOf(c, nextSyms[i])
	}

	// Step 2: build the solver script (bit-vector + uninterpreted
	// functions, wall-clock bounded by toolchain.LongTimeout on the z3
	// adapter call below).
	script := smtlib.New("QF_UFBV")
	for i, c := range circuits {
		script.DeclareConst(currentSyms[i], c.StateType)
		script.DeclareConst(nextSyms[i], c.StateType)
	}

	// Step 3: transition-relation formulas.
	transitions := make([]circuit.Formula, len(circuits))
	for i, c := range circuits {
		transitions[i] = c.Transition(currentStates[i], nextStates[i])
	}

	// Step 4: at most one partial circuit.
	partial := -1
	for i, c := range circuits {
		if c.IsPartial {
			if partial != -1 {
				return nil, ErrTooManyPartial
			}
			partial = i
		}
	}

	// Step 5: miter negation.
	if partial == -1 {
		script.Assert(allIff(transitions))
	} else {
		var dissent []string
		for i, t := range transitions {
			if i == partial {
				continue
			}
			dissent = append(dissent, fmt.Sprintf("(not %s)", t))
		}
		script.Assert(fmt.Sprintf("(and %s %s)", orAll(dissent), transitions[partial]))
	}

	// Step 6: comparators.
	currentPairs := make([]CircuitWithState, len(circuits))
	nextPairs := make([]CircuitWithState, len(circuits))
	for i, c := range circuits {
		currentPairs[i] = CircuitWithState{Circuit: c, State: currentStates[i]}
		nextPairs[i] = CircuitWithState{Circuit: c, State: nextStates[i]}
	}
	currentComparator, err := NewPairwiseComparator(currentPairs...)
	if err != nil && len(circuits) > 1 {
		return nil, err
	}
	nextComparator, err := NewPairwiseComparator(nextPairs...)
	if err != nil && len(circuits) > 1 {
		return nil, err
	}
	selfComparators := make([]*BinaryComparator, len(circuits))
	for i := range circuits {
		selfComparators[i] = NewBinaryComparator(currentPairs[i], nextPairs[i])
	}

	equate := func(c Comparator, class SignalClass) ([]circuit.Formula, error) {
		if opts.Quick {
			return c.EqualToSpecificValue(class, nil, rnd)
		}
		return c.AlwaysEqual(class)
	}

	// Step 7: equality constraints.
	var equations []circuit.Formula
	if len(circuits) > 1 {
		for _, class := range []SignalClass{InternalRegisters, InternalWires} {
			for _, cmp := range []Comparator{currentComparator, nextComparator} {
				fs, err := equate(cmp, class)
				if err != nil {
					return nil, err
				}
				equations = append(equations, fs...)
			}
		}
		fs, err := equate(nextComparator, OutputPorts)
		if err != nil {
			return nil, err
		}
		equations = append(equations, fs...)
	}
	for _, sc := range selfComparators {
		fs, err := equate(sc, InputPorts)
		if err != nil {
			return nil, err
		}
		equations = append(equations, fs...)
	}
	if len(circuits) > 1 {
		fs, err := equate(currentComparator, InputPorts)
		if err != nil {
			return nil, err
		}
		equations = append(equations, fs...)
	}
	for _, eq := range equations {
		script.Assert(string(eq))
	}

	// Step 8: preconditions.
	for i, c := range circuits {
		if c.Precondition != nil {
			script.Assert(string(c.Precondition(currentStates[i], nextStates[i])))
		}
	}

	// Step 9: solve.
	out, err := adapters.Z3Solve(ctx, script.Render(false))
	if err != nil {
		return nil, fmt.Errorf("equivalence: solving: %w", err)
	}
	resp, err := smtlib.ParseResponse(out)
	if err != nil {
		return nil, fmt.Errorf("equivalence: parsing solver output: %w", err)
	}
	if resp.Unknown {
		return nil, ErrSolverUnknown
	}
	if !resp.Sat {
		return &Result{Equivalent: true}, nil
	}
	if !opts.Counterexample {
		return &Result{Equivalent: false}, nil
	}

	report, err := extractCounterexample(ctx, script, transitions, currentComparator, nextComparator, selfComparators, adapters)
	if err != nil {
		return nil, err
	}
	return &Result{Equivalent: false, Report: report}, nil
}

func stateOf(c *circuit.SmtCircuit, symbol string) circuit.State {
	if c.ModelTree == nil {
		return circuit.State{}
	}
	st := make(circuit.State)
	for _, p := range c.ModelTree.AllItems() {
		st[p] = symbol
	}
	return st
}

func allIff(fs []circuit.Formula) string {
	var iffs []string
	for i := 0; i+1 < len(fs); i++ {
		iffs = append(iffs, fmt.Sprintf("(= %s %s)", fs[i], fs[i+1]))
	}
	return fmt.Sprintf("(not (and %s))", strings.Join(iffs, " "))
}

func orAll(terms []string) string {
	if len(terms) == 0 {
		return "false"
	}
	return fmt.Sprintf("(or %s)", strings.Join(terms, " "))
}

// extractCounterexample re-solves with every {input_ports, internal_
// registers, internal_wires} signal pinned to zero greedily (solve a
// copy of the script with the pin appended; keep the pin only if the
// solver remains sat), then renders the surviving model into report.md
// text — spec.md §4.G step 9.
func extractCounterexample(
	ctx context.Context,
	script *smtlib.Script,
	transitions []circuit.Formula,
	currentComparator *PairwiseComparator,
	nextComparator *PairwiseComparator,
	selfComparators []*BinaryComparator,
	adapters *toolchain.Adapters,
) (string, error) {
	zero := uint64(0)
	pinnable := func(class SignalClass) ([]circuit.Formula, error) {
		var out []circuit.Formula
		if currentComparator != nil {
			fs, err := currentComparator.EqualToSpecificValue(class, &zero, nil)
			if err != nil {
				return nil, err
			}
			out = append(out, fs...)
		}
		for _, sc := range selfComparators {
			fs, err := sc.EqualToSpecificValue(class, &zero, nil)
			if err != nil {
				return nil, err
			}
			out = append(out, fs...)
		}
		return out, nil
	}

	for _, class := range []SignalClass{InputPorts, InternalRegisters, InternalWires} {
		pins, err := pinnable(class)
		if err != nil {
			return "", err
		}
		for _, pin := range pins {
			trial := script.Render(false)
			trial = strings.TrimSuffix(trial, "(check-sat)\n") + fmt.Sprintf("(assert %s)\n(check-sat)\n", pin)
			out, err := adapters.Z3Solve(ctx, trial)
			if err != nil {
				return "", fmt.Errorf("equivalence: counterexample pin attempt: %w", err)
			}
			resp, err := smtlib.ParseResponse(out)
			if err != nil {
				return "", err
			}
			if resp.Sat {
				script.Assert(string(pin))
			}
		}
	}

	out, err := adapters.Z3Solve(ctx, script.Render(true))
	if err != nil {
		return "", fmt.Errorf("equivalence: extracting final model: %w", err)
	}
	resp, err := smtlib.ParseResponse(out)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	b.WriteString("This file was generated after a non-equivalence case found.\n")
	b.WriteString("\n# Transformation validity:\n")
	var validity []string
	for i, t := range transitions {
		v, ok := resp.Model[string(t)]
		if !ok {
			v = "?"
		}
		validity = append(validity, fmt.Sprintf("(%d) %s", i, v))
	}
	b.WriteString(strings.Join(validity, " | ") + "\n")

	sections := []struct {
		class SignalClass
		label string
	}{
		{InternalRegisters, "internal_registers of current state"},
		{InputPorts, "input_ports of current/next state"},
		{InternalRegisters, "internal_registers of next state"},
		{OutputPorts, "output_ports of next state"},
	}
	for i, sec := range sections {
		b.WriteString(fmt.Sprintf("\n# `%s`:\n", sec.label))
		var rows []ValueRow
		var err error
		if i == 1 {
			for _, sc := range selfComparators {
				r, e := sc.ExtractValues(sec.class, resp.Model)
				if e != nil {
					err = e
					break
				}
				rows = append(rows, r...)
			}
		} else if i == 0 && currentComparator != nil {
			rows, err = currentComparator.ExtractValues(sec.class, resp.Model)
		} else if i > 1 && nextComparator != nil {
			rows, err = nextComparator.ExtractValues(sec.class, resp.Model)
		}
		if err != nil {
			return "", err
		}
		for _, r := range rows {
			b.WriteString(fmt.Sprintf("| %s | %s | %s |\n", r.Signal, r.ThisValue, r.OtherValue))
		}
	}
	return b.String(), nil
}
