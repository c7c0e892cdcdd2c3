// Package translators registers the concrete world-map edges: the
// external-tool-backed conversions between circuit variants named in
// spec.md §1 (sv2v, Surelog's SystemVerilog plugin, Verilator).
// The package has no init(); its Register function installs them into
// the worldmap registry, and internal/cmd calls it once per process.
package translators

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"verihammer/internal/circuit"
	"verihammer/internal/crossbar"
	"verihammer/internal/ir"
	"verihammer/internal/toolchain"
	"verihammer/internal/worldmap"
)

// scratchDir creates a fresh directory under os.TempDir for one
// translator invocation. Every Apply in this package uses it; the
// directory is not removed afterwards.
func scratchDir(prefix string) (string, error) {
	return os.MkdirTemp("", "verihammer-"+prefix+"-")
}

func writeTemp(dir, name string, data []byte) (string, error) {
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", err
	}
	return path, nil
}

// sv2vOptions mirrors zachjs/sv2v's conversion-artifact flags.
var sv2vOptions = []worldmap.CmdlineOption{
	{Template: "--siloed"},
	{Template: "--verbose"},
}

type sv2vFactory struct{ adapters *toolchain.Adapters }

// NewSV2V builds the factory for the sv2v edge
// (SystemVerilog → Verilog), bound to adapters for its external calls.
func NewSV2V(adapters *toolchain.Adapters) worldmap.TranslatorFactory {
	return &sv2vFactory{adapters: adapters}
}

func (f *sv2vFactory) Name() string { return "sv2v" }
func (f *sv2vFactory) Edges() []worldmap.EdgePattern {
	return []worldmap.EdgePattern{{Src: circuit.KindSystemVerilog, Sink: circuit.KindVerilog}}
}
func (f *sv2vFactory) AlternativeOptions() []worldmap.CmdlineOption { return sv2vOptions }
func (f *sv2vFactory) New(chosen []worldmap.CmdlineOption) worldmap.Translator {
	return &sv2vTranslator{adapters: f.adapters, chosen: chosen}
}

type sv2vTranslator struct {
	adapters *toolchain.Adapters
	chosen   []worldmap.CmdlineOption
}

func (t *sv2vTranslator) extraArgs() []string {
	args := make([]string, len(t.chosen))
	for i, o := range t.chosen {
		args[i] = o.Template
	}
	return args
}

func (t *sv2vTranslator) Policy() worldmap.Policy {
	return worldmap.Policy{TranslatorName: "sv2v", ExtraArgs: t.extraArgs()}
}

func (t *sv2vTranslator) Apply(c circuit.Circuit) (circuit.Circuit, error) {
	sv, ok := c.(*circuit.SystemVerilogCircuit)
	if !ok {
		return nil, fmt.Errorf("sv2v: expected a SystemVerilog circuit, got %s", c.Kind())
	}
	dir, err := scratchDir("sv2v")
	if err != nil {
		return nil, err
	}
	svPath, err := writeTemp(dir, "sv2v_input.sv", sv.Data)
	if err != nil {
		return nil, err
	}
	out, err := t.adapters.SV2V(context.Background(), svPath, t.extraArgs())
	if err != nil {
		return nil, fmt.Errorf("sv2v: %w", err)
	}
	return circuit.NewVerilogCircuit([]byte(out), sv.Model()), nil
}

// surelogOptions mirrors the yosys systemverilog plugin's (Surelog-
// backed) frontend flags.
var surelogOptions = []worldmap.CmdlineOption{
	{Template: "-sverilog"},
	{Template: "-fileunit"},
	{Template: "-diffcompunit"},
	{Template: "-noelab"},
	{Template: "--enable-feature=%s", Domain: []string{"parametersubstitution", "letexprsubstitution"}},
}

type surelogFactory struct{ adapters *toolchain.Adapters }

// NewSurelog builds the factory for the yosys systemverilog-plugin edge
// (SystemVerilog → Verilog), bound to adapters for its external calls.
func NewSurelog(adapters *toolchain.Adapters) worldmap.TranslatorFactory {
	return &surelogFactory{adapters: adapters}
}

func (f *surelogFactory) Name() string { return "surelog" }
func (f *surelogFactory) Edges() []worldmap.EdgePattern {
	return []worldmap.EdgePattern{{Src: circuit.KindSystemVerilog, Sink: circuit.KindVerilog}}
}
func (f *surelogFactory) AlternativeOptions() []worldmap.CmdlineOption { return surelogOptions }
func (f *surelogFactory) New(chosen []worldmap.CmdlineOption) worldmap.Translator {
	return &surelogTranslator{adapters: f.adapters, chosen: chosen}
}

type surelogTranslator struct {
	adapters *toolchain.Adapters
	chosen   []worldmap.CmdlineOption
}

func (t *surelogTranslator) Policy() worldmap.Policy {
	args := make([]string, len(t.chosen))
	for i, o := range t.chosen {
		args[i] = o.Template
	}
	return worldmap.Policy{TranslatorName: "surelog", ExtraArgs: args}
}

func (t *surelogTranslator) Apply(c circuit.Circuit) (circuit.Circuit, error) {
	sv, ok := c.(*circuit.SystemVerilogCircuit)
	if !ok {
		return nil, fmt.Errorf("surelog: expected a SystemVerilog circuit, got %s", c.Kind())
	}
	dir, err := scratchDir("surelog")
	if err != nil {
		return nil, err
	}
	svPath, err := writeTemp(dir, "surelog_input.sv", sv.Data)
	if err != nil {
		return nil, err
	}
	out, err := t.adapters.YosysSystemVerilogPlugin(context.Background(), svPath)
	if err != nil {
		return nil, fmt.Errorf("surelog: %w", err)
	}
	return circuit.NewVerilogCircuit([]byte(out), sv.Model()), nil
}

// verilatorOptions is a representative subset of Verilator's mutation-
// relevant CLI surface — the full flag set numbers in the hundreds;
// these are the ones that vary code generation rather than diagnostics
// verbosity.
var verilatorOptions = []worldmap.CmdlineOption{
	{Template: "--assert"},
	{Template: "--autoflush"},
	{Template: "--compiler %s", Domain: []string{"clang", "gcc", "msvc"}},
	{Template: "--flatten"},
	{Template: "-fno-const"},
	{Template: "-fno-dedup"},
	{Template: "-fno-inline"},
	{Template: "--x-assign %s", Domain: []string{"0", "1", "unique"}},
	{Template: "--x-initial %s", Domain: []string{"0", "unique"}},
}

type verilatorFactory struct{ adapters *toolchain.Adapters }

// NewVerilator builds the factory for the Verilator edge
// (Verilog → C++ simulation model), bound to adapters for its external
// calls.
func NewVerilator(adapters *toolchain.Adapters) worldmap.TranslatorFactory {
	return &verilatorFactory{adapters: adapters}
}

func (f *verilatorFactory) Name() string { return "verilator" }
func (f *verilatorFactory) Edges() []worldmap.EdgePattern {
	return []worldmap.EdgePattern{{Src: circuit.KindVerilog, Sink: circuit.KindCpp}}
}
func (f *verilatorFactory) AlternativeOptions() []worldmap.CmdlineOption { return verilatorOptions }
func (f *verilatorFactory) New(chosen []worldmap.CmdlineOption) worldmap.Translator {
	return &verilatorTranslator{adapters: f.adapters, chosen: chosen}
}

type verilatorTranslator struct {
	adapters *toolchain.Adapters
	chosen   []worldmap.CmdlineOption
}

func (t *verilatorTranslator) extraArgs() []string {
	args := make([]string, len(t.chosen))
	for i, o := range t.chosen {
		args[i] = o.Template
	}
	return args
}

func (t *verilatorTranslator) Policy() worldmap.Policy {
	return worldmap.Policy{TranslatorName: "verilator", ExtraArgs: t.extraArgs()}
}

// Apply elaborates and compiles c into a CppCircuit, then walks the
// generated model through the Verilator naming crossbar to populate
// each declaration's simulation-memory offset — the Go analogue of the
// original's debug-info scrape over the generated .ll file, done here
// directly against the IR instead of parsing LLVM output.
func (t *verilatorTranslator) Apply(c circuit.Circuit) (circuit.Circuit, error) {
	v, ok := c.(*circuit.VerilogCircuit)
	if !ok {
		return nil, fmt.Errorf("verilator: expected a Verilog circuit, got %s", c.Kind())
	}
	model := v.Model()
	if model == nil {
		return nil, fmt.Errorf("verilator: circuit has no model to elaborate against")
	}
	top := model.TopModule()
	dir, err := scratchDir("verilator")
	if err != nil {
		return nil, err
	}
	verilogPath, err := writeTemp(dir, "verilator_input.v", v.Data)
	if err != nil {
		return nil, err
	}
	ctx := context.Background()
	if _, err := t.adapters.VerilatorElaborate(ctx, verilogPath, top); err != nil {
		return nil, fmt.Errorf("verilator: elaborate: %w", err)
	}
	objDir := filepath.Join(dir, "obj")
	if _, err := t.adapters.VerilatorCompile(ctx, verilogPath, top, objDir, t.extraArgs()); err != nil {
		return nil, fmt.Errorf("verilator: compile: %w", err)
	}
	if err := annotateVerilatorLayout(model, objDir); err != nil {
		return nil, fmt.Errorf("verilator: %w", err)
	}
	return circuit.NewCppCircuit(circuit.FlavorVerilator, objDir, model), nil
}

// annotateVerilatorLayout walks every item of every node in model
// (ports, registers and wires alike) and records a VerilatorLayout for
// each one the naming helper resolves, mirroring the
// debug-info scrape the original performs against Verilator's generated
// .ll file — simplified here to a deterministic width-derived layout
// since this module never invokes a C++ compiler to produce real debug
// info.
func annotateVerilatorLayout(model *ir.ModelTreeView, objDir string) error {
	helper := crossbar.NewVerilatorNamingHelper(model.AllItems()...)
	offset := 0
	for _, p := range model.AllItems() {
		_, leaf, err := helper.Find(p, model)
		if err != nil {
			continue
		}
		item, ok := leaf.Instance.InternalInstances[p.ItemName]
		if !ok {
			item, ok = leaf.Instance.PortInstances[p.ItemName]
		}
		if !ok {
			continue
		}
		width := 1
		if prim, ok := item.(*ir.PrimitiveItem); ok {
			width = prim.Width
		}
		bytes := (width + 7) / 8
		if bytes == 0 {
			bytes = 1
		}
		if err := model.AnnotateVerilatorLayout(p, ir.VerilatorLayout{Offset: offset, Bytes: bytes}); err != nil {
			continue
		}
		offset += bytes
	}
	return nil
}

// Register installs every translator in this package, bound to
// adapters, into the global worldmap registry.
func Register(adapters *toolchain.Adapters) {
	worldmap.Register(NewSV2V(adapters))
	worldmap.Register(NewSurelog(adapters))
	worldmap.Register(NewVerilator(adapters))
}
