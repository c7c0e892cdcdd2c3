// Package circuit defines the tagged-variant Circuit representation
// threaded through the world-map's conversions: Verilog and
// SystemVerilog text, SMT transition relations, and C++
// (Verilator/CXXRTL) simulation artifacts.
package circuit

import (
	"fmt"
	"verihammer/internal/ir"
)

// Kind tags which variant a Circuit value holds.
type Kind int

const (
	KindVerilog Kind = iota
	KindSystemVerilog
	KindSmt
	KindCpp
	KindNetList
)

func (k Kind) String() string {
	switch k {
	case KindVerilog:
		return "verilog"
	case KindSystemVerilog:
		return "systemverilog"
	case KindSmt:
		return "smt"
	case KindCpp:
		return "cpp"
	case KindNetList:
		return "netlist"
	default:
		return "unknown"
	}
}

// Extension returns the canonical file extension for the kind.
func (k Kind) Extension() string {
	switch k {
	case KindVerilog:
		return ".v"
	case KindSystemVerilog:
		return ".sv"
	case KindSmt:
		return ".smt2"
	case KindCpp:
		return ".cc"
	case KindNetList:
		return ".json"
	default:
		return ""
	}
}

// ParseKind maps a kind's String() form back to a Kind, for CLI flags
// that name a source/sink kind by hand (e.g. "verilog", "smt").
func ParseKind(s string) (Kind, error) {
	switch s {
	case "verilog":
		return KindVerilog, nil
	case "systemverilog":
		return KindSystemVerilog, nil
	case "smt":
		return KindSmt, nil
	case "cpp":
		return KindCpp, nil
	case "netlist":
		return KindNetList, nil
	default:
		return 0, fmt.Errorf("circuit: unknown kind %q", s)
	}
}

// Circuit is the common interface every variant implements: a tagged
// value carrying raw data and an optional model.
type Circuit interface {
	Kind() Kind
	Model() *ir.ModelTreeView
}

// textCircuit is the shared shape of the two text-based variants
// (Verilog, SystemVerilog): raw source bytes plus an optional model.
type textCircuit struct {
	kind  Kind
	Data  []byte
	model *ir.ModelTreeView
}

func (c *textCircuit) Kind() Kind                { return c.kind }
func (c *textCircuit) Model() *ir.ModelTreeView  { return c.model }

// VerilogCircuit is plain Verilog source text.
type VerilogCircuit struct{ textCircuit }

// NewVerilogCircuit builds a VerilogCircuit from source text and an
// optional model.
func NewVerilogCircuit(data []byte, model *ir.ModelTreeView) *VerilogCircuit {
	return &VerilogCircuit{textCircuit{kind: KindVerilog, Data: data, model: model}}
}

// SystemVerilogCircuit is plain SystemVerilog source text.
type SystemVerilogCircuit struct{ textCircuit }

// NewSystemVerilogCircuit builds a SystemVerilogCircuit from source text
// and an optional model.
func NewSystemVerilogCircuit(data []byte, model *ir.ModelTreeView) *SystemVerilogCircuit {
	return &SystemVerilogCircuit{textCircuit{kind: KindSystemVerilog, Data: data, model: model}}
}

// NetListCircuit is a yosys JSON netlist.
type NetListCircuit struct{ textCircuit }

// NewNetListCircuit builds a NetListCircuit from JSON text and an
// optional model.
func NewNetListCircuit(data []byte, model *ir.ModelTreeView) *NetListCircuit {
	return &NetListCircuit{textCircuit{kind: KindNetList, Data: data, model: model}}
}

// CppCircuit is a directory of generated C++ simulation artifacts
// (Verilator or Yosys-CXXRTL flavor).
type CppCircuit struct {
	Flavor  CppFlavor
	Dir     string
	model   *ir.ModelTreeView
}

// CppFlavor distinguishes the two C++-backend flavors named in
// spec.md §1.
type CppFlavor int

const (
	FlavorVerilator CppFlavor = iota
	FlavorYosysCXXRTL
)

func (c *CppCircuit) Kind() Kind               { return KindCpp }
func (c *CppCircuit) Model() *ir.ModelTreeView { return c.model }

// NewCppCircuit builds a CppCircuit backed by a simulation artifact
// directory.
func NewCppCircuit(flavor CppFlavor, dir string, model *ir.ModelTreeView) *CppCircuit {
	return &CppCircuit{Flavor: flavor, Dir: dir, model: model}
}
