package equivalence

import (
	"testing"

	"verihammer/internal/circuit"
	"verihammer/internal/ir"
)

func oneRegisterModel(t *testing.T) *ir.ModelTreeView {
	t.Helper()
	design := ir.NewDesign()
	idx := design.AddDeclaration(&ir.ModuleDeclaration{
		Name: "top",
		Ports: map[string]*ir.PrimitiveItem{
			"clk": {Name: "clk", Width: 1, Direction: ir.Input},
			"q":   {Name: "q", Width: 1, Direction: ir.Output},
		},
		Internals: map[string]ir.Item{
			"r": &ir.PrimitiveItem{Name: "r", Width: 1, IsReg: true},
		},
	})
	design.TopLevel = idx
	view, err := ir.FromModuleDecl(design)
	if err != nil {
		t.Fatalf("FromModuleDecl() error = %v", err)
	}
	return view
}

func constCircuit(model *ir.ModelTreeView) *circuit.SmtCircuit {
	return circuit.NewYosysSmtCircuit(
		func(current, next circuit.State) circuit.Formula { return "true" },
		nil,
		model,
		"State",
		false,
	)
}

func TestNewPairwiseComparator_RequiresAtLeastTwo(t *testing.T) {
	model := oneRegisterModel(t)
	_, err := NewPairwiseComparator(CircuitWithState{Circuit: constCircuit(model)})
	if err == nil {
		t.Fatal("expected an error constructing a pairwise comparator over one item")
	}
}

func TestBinaryComparator_AlwaysEqual_SkipsUnresolvedPaths(t *testing.T) {
	// With a nil model tree, SignalValueAtState always fails ItemNotFound
	// on both sides, so every path should be silently skipped rather than
	// erroring (spec.md §4.G signal alignment rules).
	empty := constCircuit(nil)
	cmp := NewBinaryComparator(CircuitWithState{Circuit: empty}, CircuitWithState{Circuit: empty})
	fs, err := cmp.AlwaysEqual(InternalRegisters)
	if err != nil {
		t.Fatalf("AlwaysEqual() error = %v", err)
	}
	if len(fs) != 0 {
		t.Errorf("AlwaysEqual() = %v, want no formulas over an empty model", fs)
	}
}

func TestEqualToSpecificValue_PinsAndEquates(t *testing.T) {
	model := oneRegisterModel(t)
	c := constCircuit(model)
	this := CircuitWithState{Circuit: c, State: circuit.State{}}
	other := CircuitWithState{Circuit: c, State: circuit.State{}}
	cmp := NewBinaryComparator(this, other)
	zero := uint64(0)
	fs, err := cmp.EqualToSpecificValue(InternalRegisters, &zero, nil)
	if err != nil {
		t.Fatalf("EqualToSpecificValue() error = %v", err)
	}
	if len(fs) == 0 {
		t.Fatal("expected at least one pinned equality formula for the register r")
	}
}
