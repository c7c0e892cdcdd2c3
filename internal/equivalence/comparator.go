package equivalence

import (
	"fmt"
	"math/rand"

	"verihammer/internal/circuit"
	"verihammer/internal/equivalence/smtlib"
	"verihammer/internal/ir"
)

// SignalClass selects which of a model's signal views a comparator
// walks: spec.md §4.G step 7 names exactly these four.
type SignalClass int

const (
	InputPorts SignalClass = iota
	OutputPorts
	InternalRegisters
	InternalWires
)

func (c SignalClass) pathsOf(model *ir.ModelTreeView) []ir.HierarchicalPathName {
	if model == nil {
		return nil
	}
	switch c {
	case InputPorts:
		return model.InputPorts()
	case OutputPorts:
		return model.OutputPorts()
	case InternalRegisters:
		return model.InternalRegisters()
	case InternalWires:
		return model.InternalWires()
	default:
		return nil
	}
}

// CircuitWithState pairs an SmtCircuit with one of its symbolic states
// (current or next).
type CircuitWithState struct {
	Circuit *circuit.SmtCircuit
	State   circuit.State
}

// Comparator produces SMT equality assertions and, after solving,
// extracts concrete values over one SignalClass.
type Comparator interface {
	AlwaysEqual(class SignalClass) ([]circuit.Formula, error)
	EqualToSpecificValue(class SignalClass, value *uint64, rnd *rand.Rand) ([]circuit.Formula, error)
	ExtractValues(class SignalClass, model map[string]string) ([]ValueRow, error)
}

// ValueRow is one line of a counterexample report table.
type ValueRow struct {
	Signal      string
	ThisValue   string
	OtherValue  string
}

// alignedPair is one signal whose accessor expressions on both sides of
// a comparator were successfully resolved.
type alignedPair struct {
	name         string
	thisExpr     circuit.Formula
	thisWidth    int
	otherExpr    circuit.Formula
	otherWidth   int
}

// BinaryComparator compares two (circuit, state) pairs, which may be the
// same circuit at two different states (a self-comparator) or two
// distinct circuits at corresponding states.
type BinaryComparator struct {
	This  CircuitWithState
	Other CircuitWithState
}

// NewBinaryComparator builds a comparator between this and other.
func NewBinaryComparator(this, other CircuitWithState) *BinaryComparator {
	return &BinaryComparator{This: this, Other: other}
}

func (b *BinaryComparator) commonPaths(class SignalClass) []ir.HierarchicalPathName {
	if b.This.Circuit == b.Other.Circuit {
		return class.pathsOf(b.This.Circuit.ModelTree)
	}
	inOther := make(map[ir.HierarchicalPathName]bool)
	for _, p := range class.pathsOf(b.Other.Circuit.ModelTree) {
		inOther[p] = true
	}
	seen := make(map[ir.HierarchicalPathName]bool)
	var out []ir.HierarchicalPathName
	for _, p := range class.pathsOf(b.This.Circuit.ModelTree) {
		if inOther[p] && !seen[p] {
			seen[p] = true
			out = append(out, p)
		}
	}
	return out
}

// alignVariables resolves each common path on both sides, silently
// dropping any path that genuinely doesn't exist in either model (a
// declaration-only item with no backend realization) and propagating
// any other resolution error.
func (b *BinaryComparator) alignVariables(class SignalClass) ([]alignedPair, error) {
	var pairs []alignedPair
	for _, p := range b.commonPaths(class) {
		thisExpr, thisErr := b.This.Circuit.SignalValueAtState(p, b.This.State)
		otherExpr, otherErr := b.Other.Circuit.SignalValueAtState(p, b.Other.State)
		if isNotFound(thisErr) && isNotFound(otherErr) {
			continue
		}
		if thisErr != nil && !isNotFound(thisErr) {
			return nil, fmt.Errorf("equivalence: resolving %v on this side: %w", p, thisErr)
		}
		if otherErr != nil && !isNotFound(otherErr) {
			return nil, fmt.Errorf("equivalence: resolving %v on other side: %w", p, otherErr)
		}
		if thisErr != nil || otherErr != nil {
			continue
		}
		thisWidth, _ := b.This.Circuit.ModelTree.ItemWidth(p)
		otherWidth, _ := b.Other.Circuit.ModelTree.ItemWidth(p)
		pairs = append(pairs, alignedPair{
			name:       p.ItemName,
			thisExpr:   thisExpr,
			thisWidth:  thisWidth,
			otherExpr:  otherExpr,
			otherWidth: otherWidth,
		})
	}
	return pairs, nil
}

func isNotFound(err error) bool {
	_, ok := err.(*circuit.ItemNotFound)
	return ok
}

// AlwaysEqual asserts structural equality: the two expressions must
// match for every valuation, used in non-quick mode.
func (b *BinaryComparator) AlwaysEqual(class SignalClass) ([]circuit.Formula, error) {
	pairs, err := b.alignVariables(class)
	if err != nil {
		return nil, err
	}
	out := make([]circuit.Formula, 0, len(pairs))
	for _, p := range pairs {
		lhs, rhs := smtlib.AlignWidth(string(p.thisExpr), p.thisWidth, string(p.otherExpr), p.otherWidth)
		out = append(out, circuit.Formula(smtlib.Equals(lhs, rhs)))
	}
	return out, nil
}

// EqualToSpecificValue pins each signal to a concrete value (given or
// random) in addition to asserting equality — the "quick" mode from
// spec.md §4.G step 7, which trades structural precision for a solver
// that converges faster on most designs. A side that is already a
// literal constant is left unpinned: concretizing it again would be
// redundant and, worse, could contradict the literal itself.
func (b *BinaryComparator) EqualToSpecificValue(class SignalClass, value *uint64, rnd *rand.Rand) ([]circuit.Formula, error) {
	pairs, err := b.alignVariables(class)
	if err != nil {
		return nil, err
	}
	out := make([]circuit.Formula, 0, len(pairs))
	for _, p := range pairs {
		lhs, rhs := smtlib.AlignWidth(string(p.thisExpr), p.thisWidth, string(p.otherExpr), p.otherWidth)
		eq := smtlib.Equals(lhs, rhs)
		if smtlib.IsConstant(lhs) || smtlib.IsConstant(rhs) {
			out = append(out, circuit.Formula(eq))
			continue
		}
		width := p.thisWidth
		if p.otherWidth > width {
			width = p.otherWidth
		}
		pin := smtlib.Concretize(lhs, width, value, rnd)
		out = append(out, circuit.Formula(fmt.Sprintf("(and %s %s)", pin, eq)))
	}
	return out, nil
}

// ExtractValues pulls the two sides' concrete values for class out of a
// solved model, for counterexample report rendering.
func (b *BinaryComparator) ExtractValues(class SignalClass, model map[string]string) ([]ValueRow, error) {
	pairs, err := b.alignVariables(class)
	if err != nil {
		return nil, err
	}
	rows := make([]ValueRow, 0, len(pairs))
	for _, p := range pairs {
		rows = append(rows, ValueRow{
			Signal:     p.name,
			ThisValue:  resolveValue(string(p.thisExpr), model),
			OtherValue: resolveValue(string(p.otherExpr), model),
		})
	}
	return rows, nil
}

// resolveValue looks an expression up directly in the model map (when it
// is itself a bound symbol) or returns it unchanged when it is already a
// literal — good enough for the scalar accessor expressions this module
// generates, which never need general term evaluation.
func resolveValue(expr string, model map[string]string) string {
	if smtlib.IsConstant(expr) {
		return expr
	}
	if v, ok := model[expr]; ok {
		return v
	}
	return "OPT_OUT"
}

// PairwiseComparator chains BinaryComparators over consecutive elements
// of a circuit list, asserting (and extracting) over every adjacent
// pair — the k-circuit generalization of a single equivalence check.
type PairwiseComparator struct {
	subs []*BinaryComparator
}

// NewPairwiseComparator builds a PairwiseComparator over 2 or more
// (circuit, state) pairs.
func NewPairwiseComparator(items ...CircuitWithState) (*PairwiseComparator, error) {
	if len(items) <= 1 {
		return nil, fmt.Errorf("equivalence: pairwise comparator needs 2 or more circuits")
	}
	subs := make([]*BinaryComparator, 0, len(items)-1)
	for i := 0; i+1 < len(items); i++ {
		subs = append(subs, NewBinaryComparator(items[i], items[i+1]))
	}
	return &PairwiseComparator{subs: subs}, nil
}

func (p *PairwiseComparator) AlwaysEqual(class SignalClass) ([]circuit.Formula, error) {
	var out []circuit.Formula
	for _, s := range p.subs {
		fs, err := s.AlwaysEqual(class)
		if err != nil {
			return nil, err
		}
		out = append(out, fs...)
	}
	return out, nil
}

func (p *PairwiseComparator) EqualToSpecificValue(class SignalClass, value *uint64, rnd *rand.Rand) ([]circuit.Formula, error) {
	var out []circuit.Formula
	for _, s := range p.subs {
		fs, err := s.EqualToSpecificValue(class, value, rnd)
		if err != nil {
			return nil, err
		}
		out = append(out, fs...)
	}
	return out, nil
}

func (p *PairwiseComparator) ExtractValues(class SignalClass, model map[string]string) ([]ValueRow, error) {
	var out []ValueRow
	for _, s := range p.subs {
		rows, err := s.ExtractValues(class, model)
		if err != nil {
			return nil, err
		}
		out = append(out, rows...)
	}
	return out, nil
}
