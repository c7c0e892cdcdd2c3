package orchestrate

import (
	"context"
	"math/rand"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"verihammer/internal/toolchain"
)

// writeFakeTool writes an always-succeeding executable standing in for
// an external HDL tool, so semanticValidator never needs a real
// iverilog/yosys install to exercise Mutate.
func writeFakeTool(t *testing.T, name string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fake tool script assumes a POSIX shell")
	}
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte("#!/bin/sh\nexit 0\n"), 0o755); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestMutate_WritesValidatedMutants(t *testing.T) {
	iverilog := writeFakeTool(t, "iverilog")
	resultDir := t.TempDir()
	outputDir := t.TempDir()
	o := New(resultDir, 1, toolchain.New(map[string]string{"iverilog": iverilog}), rand.New(rand.NewSource(1)))

	seedPath := filepath.Join(t.TempDir(), "seed.v")
	if err := os.WriteFile(seedPath, []byte("module m(input a, output b); assign b = a; endmodule\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := Mutate(context.Background(), o, seedPath, outputDir, 2); err != nil {
		t.Fatalf("Mutate() error = %v", err)
	}

	entries, err := os.ReadDir(outputDir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) == 0 {
		t.Error("Mutate() wrote no mutants, want at least one")
	}
	for _, e := range entries {
		if filepath.Ext(e.Name()) != ".v" {
			t.Errorf("mutant %q has unexpected suffix, want .v", e.Name())
		}
	}
}

func TestMutateAll_EmptySeedDirectoryIsANoOp(t *testing.T) {
	o := New(t.TempDir(), 1, toolchain.New(nil), nil)
	if err := MutateAll(context.Background(), o, t.TempDir(), t.TempDir(), 1, false); err != nil {
		t.Errorf("MutateAll() on an empty seed directory = %v, want nil", err)
	}
}

func TestFindRTLSeeds_CombinesVerilogAndSystemVerilog(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"a.v", "b.sv", "c.txt"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("module m; endmodule"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	got, err := findRTLSeeds(dir)
	if err != nil {
		t.Fatalf("findRTLSeeds() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("findRTLSeeds() = %v, want 2 entries", got)
	}
}
