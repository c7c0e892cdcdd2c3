package orchestrate

import (
	"context"
	"fmt"
	"path/filepath"

	"verihammer/internal/circuit"
	"verihammer/internal/equivalence"
	"verihammer/internal/workspace"
)

// ErrIncomparable is returned when two circuits reached by different
// conversion chains have no defined equivalence check between their
// kinds (e.g. a Verilog circuit against a Cpp one). The original
// implementation's per-class is_equivalent_to raises an AssertionError
// in this situation; spec.md §7 treats that exactly like any other
// "Equivalence check exception" — the candidate is kept in its own
// equivalence class, a pessimistic split that surfaces the anomaly
// instead of silently merging or dropping it.
var ErrIncomparable = fmt.Errorf("orchestrate: no equivalence check defined between these circuit kinds")

// areEquivalent decides whether pivot and candidate compute the same
// design, dispatching on their concrete kind the way the original's
// per-subclass is_equivalent_to did:
//   - two VerilogCircuits compare via the opaque yosys equivalence-check
//     tool directly (circuit.VerilogCircuit.IsEquivalentTo);
//   - two SmtCircuits run the full 9-step SMT protocol
//     (internal/equivalence.Check);
//   - any other pairing is ErrIncomparable.
func areEquivalent(ctx context.Context, o *Orchestrator, pivot, candidate circuit.Circuit, quick bool) (bool, error) {
	switch p := pivot.(type) {
	case *circuit.VerilogCircuit:
		c, ok := candidate.(*circuit.VerilogCircuit)
		if !ok {
			return false, ErrIncomparable
		}
		return compareVerilog(ctx, o, p, c)
	case *circuit.SmtCircuit:
		c, ok := candidate.(*circuit.SmtCircuit)
		if !ok {
			return false, ErrIncomparable
		}
		res, err := equivalence.Check(ctx, []*circuit.SmtCircuit{p, c}, equivalence.Options{Quick: quick, Rand: o.Rand}, o.Adapters)
		if err != nil {
			return false, err
		}
		return res.Equivalent, nil
	default:
		return false, ErrIncomparable
	}
}

func compareVerilog(ctx context.Context, o *Orchestrator, pivot, candidate *circuit.VerilogCircuit) (bool, error) {
	ws := workspace.Current(ctx)
	top := ""
	if m := pivot.Model(); m != nil {
		top = m.TopModule()
	}
	lhsPath, err := ws.SaveToFile(pivot.Data, "pivot.v")
	if err != nil {
		return false, err
	}
	rhsPath, err := ws.SaveToFile(candidate.Data, "candidate.v")
	if err != nil {
		return false, err
	}
	return pivot.IsEquivalentTo(ctx, candidate, top, o.Adapters, filepath.Clean(lhsPath), filepath.Clean(rhsPath))
}
