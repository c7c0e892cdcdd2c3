package orchestrate

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"verihammer/internal/toolchain"
	"verihammer/internal/worldmap"
)

// Two identity conversions over the same SystemVerilog seed yield two
// SystemVerilogCircuit outputs, which areEquivalent always reports as
// ErrIncomparable (compare.go only has a defined check for same-kind
// Verilog or Smt pairs). That exception pessimistically splits them
// into separate classes, which should trigger cross-checking evidence.
func TestEquivalenceCheck_IncomparableOutputsPersistCrossChecking(t *testing.T) {
	resultDir := t.TempDir()
	o := New(resultDir, 1, toolchain.New(nil), nil)

	seedPath := filepath.Join(t.TempDir(), "seed.sv")
	if err := os.WriteFile(seedPath, []byte("module m; endmodule"), 0o644); err != nil {
		t.Fatal(err)
	}
	conversions := []*worldmap.Conversion{{}, {}}

	if err := EquivalenceCheck(context.Background(), o, seedPath, conversions, false); err != nil {
		t.Fatalf("EquivalenceCheck() error = %v", err)
	}

	entries, err := os.ReadDir(filepath.Join(resultDir, "cross-checking"))
	if err != nil {
		t.Fatalf("reading cross-checking dir: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("cross-checking dir has %d entries, want 1", len(entries))
	}
	archived, err := os.ReadDir(filepath.Join(resultDir, "cross-checking", entries[0].Name()))
	if err != nil {
		t.Fatal(err)
	}
	names := make(map[string]bool, len(archived))
	for _, e := range archived {
		names[e.Name()] = true
	}
	for _, want := range []string{strategyFilename, differenceFilename} {
		if !names[want] {
			t.Errorf("archived cross-checking workspace %v missing %q", archived, want)
		}
	}
}

func TestEquivalenceCheck_SingleConversionFormsNoCrossChecking(t *testing.T) {
	resultDir := t.TempDir()
	o := New(resultDir, 1, toolchain.New(nil), nil)

	seedPath := filepath.Join(t.TempDir(), "seed.sv")
	if err := os.WriteFile(seedPath, []byte("module m; endmodule"), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := EquivalenceCheck(context.Background(), o, seedPath, []*worldmap.Conversion{{}}, false); err != nil {
		t.Fatalf("EquivalenceCheck() error = %v", err)
	}

	if _, err := os.Stat(filepath.Join(resultDir, "cross-checking")); !os.IsNotExist(err) {
		t.Errorf("expected no cross-checking dir for a single conversion, stat error = %v", err)
	}
}
