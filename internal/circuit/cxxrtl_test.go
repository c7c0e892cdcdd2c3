package circuit

import (
	"strings"
	"testing"

	"verihammer/internal/crossbar"
)

func TestRenderDebugHarness_NamesTheTopModule(t *testing.T) {
	got, err := RenderDebugHarness("counter")
	if err != nil {
		t.Fatalf("RenderDebugHarness() error = %v", err)
	}
	if !strings.Contains(got, `#include "counter.cpp"`) {
		t.Errorf("RenderDebugHarness() = %q, want it to include counter.cpp", got)
	}
	if !strings.Contains(got, "cxxrtl_design::p_counter top;") {
		t.Errorf("RenderDebugHarness() missing top instantiation: %q", got)
	}
}

func TestRenderSymbolicExecutionHarness_EmitsOneFieldPerAtom(t *testing.T) {
	atoms := []crossbar.AtomVariable{
		{Name: "a", Offset: 0, Bytes: 1},
		{Name: "b", Offset: 1, Bytes: 4},
	}
	got, err := RenderSymbolicExecutionHarness("counter", "clk", atoms)
	if err != nil {
		t.Fatalf("RenderSymbolicExecutionHarness() error = %v", err)
	}
	for _, want := range []string{"a[1]", "b[4]", `klee_make_symbolic(&s.a`, `klee_make_symbolic(&s.b`, "p_clk.set<bool>(true)"} {
		if !strings.Contains(got, want) {
			t.Errorf("RenderSymbolicExecutionHarness() missing %q in:\n%s", want, got)
		}
	}
}

func TestCppCircuit_AtomVariables_RequiresModel(t *testing.T) {
	c := NewCppCircuit(FlavorYosysCXXRTL, t.TempDir(), nil)
	if _, err := c.AtomVariables(nil); err == nil {
		t.Fatal("expected an error when the circuit carries no model")
	}
}
