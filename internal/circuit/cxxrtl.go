package circuit

import (
	"bytes"
	_ "embed"
	"fmt"
	"text/template"

	"verihammer/internal/crossbar"
	"verihammer/internal/ir"
)

//go:embed templates/debug_harness.cpp.tmpl
var debugHarnessTemplate string

//go:embed templates/klee_harness.cpp.tmpl
var kleeHarnessTemplate string

// AtomVariables returns the byte-addressed atom layout of source, sorted
// by offset — the Go analogue of core/circuits/cpp.py's
// CppCircuit.atom_variables, shared by both the Verilator and
// Yosys-CXXRTL flavors exactly as the original's two subclasses share
// one implementation.
func (c *CppCircuit) AtomVariables(source []ir.HierarchicalPathName) ([]crossbar.AtomVariable, error) {
	if c.model == nil {
		return nil, fmt.Errorf("circuit: cpp circuit has no model to resolve atom variables against")
	}
	top := c.model.TopModule()
	cb := crossbar.NewKleeSmtCrossbar(top, source...)
	return cb.AtomVariables(c.model, source...)
}

// RenderDebugHarness renders the C++ driver that dumps a CXXRTL
// design's debug_items table (name, width, next, flags) to
// debug_info.csv on startup — used to recover the byte layout KLEE's
// symbolic-execution harness needs, mirroring DEBUG_CPP_TEMPLATE.
func RenderDebugHarness(topModule string) (string, error) {
	return renderTemplate("debug_harness", debugHarnessTemplate, struct{ TopModule string }{topModule})
}

// kleeHarnessData is the substitution set for klee_harness.cpp.tmpl.
type kleeHarnessData struct {
	TopModule     string
	ClockSignal   string
	StructFields  []string
	SnapshotLines []string
	InitLines     []string
}

// RenderSymbolicExecutionHarness renders the C++ driver that steps a
// CXXRTL-compiled design across one clock edge under KLEE, snapshotting
// every atom in atoms before and after the edge — mirroring
// SYM_EXE_CPP_TEMPLATE. clockSignal names the top-level clock port to
// pulse.
func RenderSymbolicExecutionHarness(topModule, clockSignal string, atoms []crossbar.AtomVariable) (string, error) {
	data := kleeHarnessData{TopModule: topModule, ClockSignal: clockSignal}
	for _, a := range atoms {
		data.StructFields = append(data.StructFields, fmt.Sprintf("%s[%d]", a.Name, a.Bytes))
		data.InitLines = append(data.InitLines,
			fmt.Sprintf(`klee_make_symbolic(&s.%s, sizeof(s.%s), "%s");`, a.Name, a.Name, a.Name))
		data.SnapshotLines = append(data.SnapshotLines,
			fmt.Sprintf(`memcpy(s.%s, items.table.at("%s").front().curr.data, sizeof(s.%s));`, a.Name, a.Name, a.Name))
	}
	return renderTemplate("klee_harness", kleeHarnessTemplate, data)
}

func renderTemplate(name, text string, data any) (string, error) {
	tmpl, err := template.New(name).Parse(text)
	if err != nil {
		return "", fmt.Errorf("circuit: parsing %s template: %w", name, err)
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("circuit: rendering %s template: %w", name, err)
	}
	return buf.String(), nil
}
