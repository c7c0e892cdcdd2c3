package toolchain

import (
	"context"
	"os"
	"path/filepath"
)

// Adapters exposes one operation per tool invocation, bound to a
// Locator that controls how binaries are found.
type Adapters struct {
	Locator Locator
}

// New builds an Adapters using the given binary overrides (nil for plain
// PATH lookups).
func New(overrides map[string]string) *Adapters {
	return &Adapters{Locator: Locator{Overrides: overrides}}
}

// YosysWriteSMT2 runs `yosys -p 'read_verilog <path>; prep -top <top>;
// write_smt2 <path>.smt2'` over verilogPath, returning the generated
// SMT-LIB2 text.
func (a *Adapters) YosysWriteSMT2(ctx context.Context, verilogPath, top string) (string, error) {
	outPath := verilogPath + ".smt2"
	script := "read_verilog " + verilogPath + "; prep -top " + top + "; write_smt2 " + outPath
	if _, err := run(ctx, a.Locator, "yosys", DefaultTimeout, nil, "-p", script); err != nil {
		return "", err
	}
	data, err := os.ReadFile(outPath)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// YosysWriteCXXRTL runs yosys's write_cxxrtl backend, emitting generated
// C++ under outDir.
func (a *Adapters) YosysWriteCXXRTL(ctx context.Context, verilogPath, top, outDir string, extraArgs []string) error {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return err
	}
	outPath := filepath.Join(outDir, top+".cc")
	args := append([]string{"-p"}, "read_verilog "+verilogPath+"; prep -top "+top+"; write_cxxrtl "+outPath)
	args = append(args, extraArgs...)
	_, err := run(ctx, a.Locator, "yosys", DefaultTimeout, nil, args...)
	return err
}

// YosysSynthesis runs a generic synthesis script over verilogPath.
func (a *Adapters) YosysSynthesis(ctx context.Context, verilogPath string, extraArgs []string) (string, error) {
	args := append([]string{"-p", "read_verilog " + verilogPath + "; synth"}, extraArgs...)
	return run(ctx, a.Locator, "yosys", DefaultTimeout, nil, args...)
}

// YosysMutate invokes yosys's built-in `mutate` pass, used as a fallback
// mutation source distinct from the heuristic engine.
func (a *Adapters) YosysMutate(ctx context.Context, verilogPath string, extraArgs []string) (string, error) {
	args := append([]string{"-p", "read_verilog " + verilogPath + "; mutate"}, extraArgs...)
	return run(ctx, a.Locator, "yosys", DefaultTimeout, nil, args...)
}

// YosysSystemVerilogPlugin loads the slang/systemverilog frontend plugin
// to parse a .sv file, used both for loading and for SemanticCheck.
func (a *Adapters) YosysSystemVerilogPlugin(ctx context.Context, svPath string) (string, error) {
	return run(ctx, a.Locator, "yosys", DefaultTimeout, nil,
		"-m", "systemverilog", "-p", "read_systemverilog "+svPath)
}

// YosysEquivalenceCheck runs yosys's `equiv_make`/`equiv_induct` flow
// between two Verilog sources for the same top module. It returns true
// when yosys proves them equivalent; any nonzero yosys exit, an unproven
// equivalence included, comes back as an error rather than as false.
func (a *Adapters) YosysEquivalenceCheck(ctx context.Context, lhsPath, rhsPath, top string) (bool, error) {
	script := "read_verilog -sv " + lhsPath + "; rename " + top + " gold; " +
		"read_verilog -sv " + rhsPath + "; rename " + top + " gate; " +
		"equiv_make gold gate equiv; hierarchy -top equiv; equiv_induct; equiv_status -assert"
	out, err := run(ctx, a.Locator, "yosys", DefaultTimeout, nil, "-p", script)
	if err != nil {
		return false, err
	}
	_ = out
	return true, nil
}

// VerilogToJSON runs `yosys write_json` and returns the JSON netlist
// text ir.LoadFromYosysJSON expects.
func (a *Adapters) VerilogToJSON(ctx context.Context, verilogPath string) (string, error) {
	outPath := verilogPath + ".json"
	script := "read_verilog " + verilogPath + "; proc; write_json " + outPath
	if _, err := run(ctx, a.Locator, "yosys", DefaultTimeout, nil, "-p", script); err != nil {
		return "", err
	}
	data, err := os.ReadFile(outPath)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// VerilatorElaborate invokes `verilator --lint-only` to elaborate a
// design without compiling a simulation binary.
func (a *Adapters) VerilatorElaborate(ctx context.Context, verilogPath, top string) (string, error) {
	return run(ctx, a.Locator, "verilator", DefaultTimeout, nil, "--lint-only", "--top-module", top, verilogPath)
}

// VerilatorCompile invokes `verilator --cc --exe --build` to produce a
// C++ simulation model under outDir.
func (a *Adapters) VerilatorCompile(ctx context.Context, verilogPath, top, outDir string, extraArgs []string) (string, error) {
	args := []string{"--cc", "--exe", "--build", "--top-module", top, "-Mdir", outDir, verilogPath}
	args = append(args, extraArgs...)
	return run(ctx, a.Locator, "verilator", DefaultTimeout, nil, args...)
}

// SV2V converts a SystemVerilog file to Verilog via the sv2v tool.
func (a *Adapters) SV2V(ctx context.Context, svPath string, extraArgs []string) (string, error) {
	args := append([]string{svPath}, extraArgs...)
	return run(ctx, a.Locator, "sv2v", DefaultTimeout, nil, args...)
}

// SemanticCheck validates that an HDL file parses and elaborates
// cleanly: iverilog for .v, the yosys systemverilog plugin for .sv.
func (a *Adapters) SemanticCheck(ctx context.Context, path, ext string) bool {
	switch ext {
	case ".sv":
		_, err := a.YosysSystemVerilogPlugin(ctx, path)
		return err == nil
	default:
		return exitedCleanly(ctx, a.Locator, "iverilog", DefaultTimeout, "-t", "null", path)
	}
}

// SymbolicExecution runs KLEE over a compiled bitcode module, bounded by
// the long (1000s) timeout per spec.md §5.
func (a *Adapters) SymbolicExecution(ctx context.Context, bitcodePath string, extraArgs []string) (string, error) {
	args := append([]string{}, extraArgs...)
	args = append(args, bitcodePath)
	return run(ctx, a.Locator, "klee", LongTimeout, nil, args...)
}

// Z3Solve feeds an SMT-LIB2 script to z3 over stdin and returns its
// response text (check-sat result plus any requested models),
// bounded by the long (1000s) timeout per spec.md §5 — z3 is an opaque
// external tool exactly like yosys/verilator/klee, not a Go library.
func (a *Adapters) Z3Solve(ctx context.Context, smtlib string) (string, error) {
	return run(ctx, a.Locator, "z3", LongTimeout, []byte(smtlib), "-in")
}
