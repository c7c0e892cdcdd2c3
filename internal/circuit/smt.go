package circuit

import (
	"context"
	"fmt"

	"verihammer/internal/crossbar"
	"verihammer/internal/ir"
	"verihammer/internal/toolchain"
)

// State names the symbolic SMT-LIB2 state variables for one circuit
// instance — current or next — keyed by logical path.
type State map[ir.HierarchicalPathName]string

// Formula is a raw SMT-LIB2 boolean expression string. Keeping this a
// plain string (rather than an AST) matches the adapter contract the
// rest of this module uses for every external tool: opaque text in,
// opaque text out.
type Formula string

// TransitionFunc computes the transition relation between a current and
// next state.
type TransitionFunc func(current, next State) Formula

// SmtCircuit is an SMT transition-relation view of a design, as produced
// by yosys-write-smt2 or reconstructed from a KLEE symbolic-execution
// run.
type SmtCircuit struct {
	Transition    TransitionFunc
	ModelTree     *ir.ModelTreeView
	StateType     string
	Precondition  TransitionFunc
	// IsPartial marks an overapproximating transition relation
	// (f' ⇒ f), as produced from KLEE results; at most one per
	// equivalence check (spec.md §4.G step 4).
	IsPartial bool

	// yosysCrossbar is used by SignalValueAtState to resolve a path into
	// an SMT accessor expression.
	yosysCrossbar *crossbar.YosysSmtCrossbar
}

// NewYosysSmtCircuit builds an SmtCircuit view whose accessor layer is
// the Yosys hierarchy-accessor crossbar.
func NewYosysSmtCircuit(transition, precondition TransitionFunc, model *ir.ModelTreeView, stateType string, isPartial bool) *SmtCircuit {
	return &SmtCircuit{
		Transition:    transition,
		ModelTree:     model,
		StateType:     stateType,
		Precondition:  precondition,
		IsPartial:     isPartial,
		yosysCrossbar: crossbar.NewYosysSmtCrossbar(),
	}
}

func (c *SmtCircuit) Kind() Kind               { return KindSmt }
func (c *SmtCircuit) Model() *ir.ModelTreeView { return c.ModelTree }

// ItemNotFound is returned by SignalValueAtState when a path is absent
// from the model. It is tolerated by callers when the item exists as a
// non-register declaration (the item was optimized out).
type ItemNotFound struct{ Path ir.HierarchicalPathName }

func (e *ItemNotFound) Error() string {
	return fmt.Sprintf("circuit: item at %v not found in model", e.Path)
}

// SignalValueAtState returns the SMT accessor expression for path in the
// given state, or an infinite zero-stream expression if the item is
// tolerably absent (a non-register declaration optimized out of the
// backend's output).
func (c *SmtCircuit) SignalValueAtState(path ir.HierarchicalPathName, state State) (Formula, error) {
	if c.ModelTree == nil {
		return "", &ItemNotFound{Path: path}
	}
	acc, err := c.yosysCrossbar.Accessor(c.ModelTree, path, path.ItemName)
	if err != nil {
		nodes := c.ModelTree.MatchPath(path)
		if len(nodes) == 0 {
			return "", &ItemNotFound{Path: path}
		}
		leaf := nodes[len(nodes)-1]
		if item, ok := leaf.Instance.InternalInstances[path.ItemName]; ok {
			if prim, ok := item.(*ir.PrimitiveItem); ok && !prim.IsReg {
				return "#b0", nil
			}
		}
		return "", &ItemNotFound{Path: path}
	}
	return Formula(acc), nil
}

// VerilogCircuit.IsEquivalentTo delegates to the opaque external
// equivalence-check tool for pure Verilog-vs-Verilog comparison, rather
// than building a miter — see spec.md §4.E.
func (c *VerilogCircuit) IsEquivalentTo(ctx context.Context, other *VerilogCircuit, top string, adapters *toolchain.Adapters, lhsPath, rhsPath string) (bool, error) {
	return adapters.YosysEquivalenceCheck(ctx, lhsPath, rhsPath, top)
}
