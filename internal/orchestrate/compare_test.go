package orchestrate

import (
	"context"
	"errors"
	"testing"

	"verihammer/internal/circuit"
	"verihammer/internal/toolchain"
)

func TestAreEquivalent_MismatchedKindsAreIncomparable(t *testing.T) {
	o := New(t.TempDir(), 1, toolchain.New(nil), nil)
	pivot := circuit.NewVerilogCircuit([]byte("module m; endmodule"), nil)
	candidate := circuit.NewCppCircuit(circuit.FlavorVerilator, t.TempDir(), nil)

	_, err := areEquivalent(context.Background(), o, pivot, candidate, false)
	if !errors.Is(err, ErrIncomparable) {
		t.Errorf("areEquivalent() error = %v, want ErrIncomparable", err)
	}
}

func TestAreEquivalent_CppPivotIsIncomparable(t *testing.T) {
	o := New(t.TempDir(), 1, toolchain.New(nil), nil)
	pivot := circuit.NewCppCircuit(circuit.FlavorVerilator, t.TempDir(), nil)
	candidate := circuit.NewCppCircuit(circuit.FlavorVerilator, t.TempDir(), nil)

	_, err := areEquivalent(context.Background(), o, pivot, candidate, false)
	if !errors.Is(err, ErrIncomparable) {
		t.Errorf("areEquivalent() error = %v, want ErrIncomparable", err)
	}
}
