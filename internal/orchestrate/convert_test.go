package orchestrate

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"verihammer/internal/circuit"
	"verihammer/internal/toolchain"
	"verihammer/internal/worldmap"
)

func TestLoadCircuit_UnsupportedExtensionErrors(t *testing.T) {
	o := New(t.TempDir(), 1, toolchain.New(nil), nil)
	path := filepath.Join(t.TempDir(), "design.txt")
	if err := os.WriteFile(path, []byte("not hdl"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := loadCircuit(context.Background(), o, path); err == nil {
		t.Fatal("loadCircuit() on an unsupported suffix = nil error, want one")
	}
}

func TestLoadCircuit_SystemVerilogSkipsElaboration(t *testing.T) {
	// No yosys override is configured; a .sv input must never shell out,
	// since SystemVerilogCircuit carries no model until a translator
	// lowers it to Verilog.
	o := New(t.TempDir(), 1, toolchain.New(nil), nil)
	path := filepath.Join(t.TempDir(), "design.sv")
	if err := os.WriteFile(path, []byte("module m; endmodule"), 0o644); err != nil {
		t.Fatal(err)
	}

	got, err := loadCircuit(context.Background(), o, path)
	if err != nil {
		t.Fatalf("loadCircuit() error = %v", err)
	}
	if got.Kind() != circuit.KindSystemVerilog {
		t.Errorf("loadCircuit() kind = %v, want KindSystemVerilog", got.Kind())
	}
}

func TestConvert_MissingInputPersistsToCompilation(t *testing.T) {
	resultDir := t.TempDir()
	o := New(resultDir, 1, toolchain.New(nil), nil)
	conv := &worldmap.Conversion{}

	got := convert(context.Background(), o, filepath.Join(t.TempDir(), "missing.sv"), conv)
	if got != nil {
		t.Fatalf("convert() on a missing input = %v, want nil", got)
	}

	entries, err := os.ReadDir(filepath.Join(resultDir, "compilation"))
	if err != nil {
		t.Fatalf("reading compilation dir: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("compilation dir has %d entries, want 1", len(entries))
	}
	archived, err := os.ReadDir(filepath.Join(resultDir, "compilation", entries[0].Name()))
	if err != nil {
		t.Fatal(err)
	}
	foundException := false
	for _, e := range archived {
		if e.Name() == exceptionFilename {
			foundException = true
		}
	}
	if !foundException {
		t.Errorf("archived workspace %v missing %s", archived, exceptionFilename)
	}
}
