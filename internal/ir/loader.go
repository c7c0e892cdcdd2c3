package ir

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"verihammer/internal/diag"
)

// yosysJSON mirrors the subset of `yosys write_json` output this loader
// needs: per-module ports, netnames (for internal items and hidden-name
// filtering), cell instances (submodules), and the presence of memories.
type yosysJSON struct {
	Modules map[string]yosysModule `json:"modules"`
}

type yosysModule struct {
	Ports     map[string]yosysPort     `json:"ports"`
	Netnames  map[string]yosysNetname  `json:"netnames"`
	Cells     map[string]yosysCell     `json:"cells"`
	Memories  map[string]json.RawMessage `json:"memories"`
}

type yosysPort struct {
	Direction string `json:"direction"`
	Bits      []any  `json:"bits"`
}

type yosysNetname struct {
	Bits     []any          `json:"bits"`
	HideName int            `json:"hide_name"`
	Attrs    map[string]any `json:"attributes"`
}

type yosysCell struct {
	Type string `json:"type"`
}

// ErrMemoriesPresent is returned when a compilation unit contains a
// `memories` section, which this loader rejects per the "memories are
// rejected" invariant.
type ErrMemoriesPresent struct{ Module string }

func (e *ErrMemoriesPresent) Error() string {
	return fmt.Sprintf("ir: module %q contains memories, which are not supported", e.Module)
}

// ErrNoTopLevel and ErrMultipleTopLevel report that the compilation unit
// did not have exactly one module unreferenced as a submodule.
var (
	ErrNoTopLevel       = fmt.Errorf("ir: no top-level module found")
	ErrMultipleTopLevel = fmt.Errorf("ir: multiple top-level modules found")
)

// LoadFromYosysJSON builds a Design from yosys's JSON netlist dump plus a
// tree-sitter scan of the original source for register declarations, per
// the four-step procedure: reject memories, scan registers, build items
// per module, then identify the unique top-level module.
func LoadFromYosysJSON(jsonText []byte, source []byte, reporter *diag.Reporter) (*Design, error) {
	var doc yosysJSON
	if err := json.Unmarshal(jsonText, &doc); err != nil {
		return nil, fmt.Errorf("ir: decoding yosys json: %w", err)
	}

	registers, err := scanRegisterNames(source)
	if err != nil {
		return nil, fmt.Errorf("ir: scanning registers: %w", err)
	}

	design := NewDesign()
	referencedAsSubmodule := make(map[string]bool)

	moduleNames := make([]string, 0, len(doc.Modules))
	for name := range doc.Modules {
		moduleNames = append(moduleNames, name)
	}
	sort.Strings(moduleNames)

	for _, name := range moduleNames {
		mod := doc.Modules[name]
		if len(mod.Memories) > 0 {
			err := &ErrMemoriesPresent{Module: name}
			reporter.Errorf(diag.Pos{File: name}, "%s", err)
			return nil, err
		}

		decl := &ModuleDeclaration{
			Name:       name,
			Ports:      make(map[string]*PrimitiveItem),
			Internals:  make(map[string]Item),
			Submodules: make(map[string]string),
		}
		regs := registers[name]

		portNames := make(map[string]bool)
		for portName, port := range mod.Ports {
			decl.Ports[portName] = &PrimitiveItem{
				Name:      portName,
				Width:     len(port.Bits),
				IsReg:     regs[portName],
				Direction: parseDirection(port.Direction),
			}
			portNames[portName] = true
		}

		compound := make(map[string]*CompoundItem)
		netnames := make([]string, 0, len(mod.Netnames))
		for n := range mod.Netnames {
			netnames = append(netnames, n)
		}
		sort.Strings(netnames)

		for _, netName := range netnames {
			net := mod.Netnames[netName]
			if net.HideName != 0 || portNames[netName] {
				continue
			}
			width := len(net.Bits)
			isReg := regs[netName]
			if base, idx, ok := SplitArrayElement(netName); ok {
				c, exists := compound[base]
				if !exists {
					c = &CompoundItem{Name: base, IsReg: isReg, ElementWidth: width, ElementIndices: make(map[int]bool)}
					compound[base] = c
					decl.Internals[base] = c
				}
				c.RegisterElement(idx)
				continue
			}
			decl.Internals[netName] = &PrimitiveItem{
				Name:      netName,
				Width:     width,
				IsReg:     isReg,
				Direction: None,
			}
		}

		cellNames := make([]string, 0, len(mod.Cells))
		for n := range mod.Cells {
			cellNames = append(cellNames, n)
		}
		sort.Strings(cellNames)
		for _, instName := range cellNames {
			cell := mod.Cells[instName]
			decl.Submodules[instName] = cell.Type
			referencedAsSubmodule[cell.Type] = true
		}

		design.AddDeclaration(decl)
	}

	var tops []int
	for _, name := range moduleNames {
		if !referencedAsSubmodule[name] {
			idx, _ := design.DeclarationByName(name)
			tops = append(tops, idx)
		}
	}
	switch len(tops) {
	case 0:
		reporter.Errorf(diag.Pos{}, "no top-level module found")
		return nil, ErrNoTopLevel
	case 1:
		design.TopLevel = tops[0]
	default:
		reporter.Errorf(diag.Pos{}, "multiple top-level modules found")
		return nil, ErrMultipleTopLevel
	}

	return design, nil
}

func parseDirection(d string) Direction {
	switch strings.ToLower(d) {
	case "input":
		return Input
	case "output":
		return Output
	case "inout":
		return Inout
	default:
		return None
	}
}

// scanRegisterNames walks a tree-sitter Verilog parse of source and
// returns, per module, the set of names syntactically declared with
// `reg`. This is independent of yosys's own netlist, matching the
// invariant that registers are identified by syntactic scan rather than
// by name heuristics.
func scanRegisterNames(source []byte) (map[string]map[string]bool, error) {
	result := make(map[string]map[string]bool)
	if len(source) == 0 {
		return result, nil
	}

	parser := sitter.NewParser()
	parser.SetLanguage(verilogLanguage())
	tree, err := parser.ParseCtx(nil, nil, source)
	if err != nil {
		return nil, err
	}
	root := tree.RootNode()

	var currentModule string
	var walk func(n *sitter.Node)
	walk = func(n *sitter.Node) {
		if n == nil {
			return
		}
		switch n.Type() {
		case "module_declaration":
			prev := currentModule
			if id := findFirstChildOfType(n, "module_identifier", "simple_identifier"); id != nil {
				currentModule = id.Content(source)
			}
			for i := 0; i < int(n.ChildCount()); i++ {
				walk(n.Child(i))
			}
			currentModule = prev
			return
		case "reg_declaration":
			if currentModule == "" {
				break
			}
			if result[currentModule] == nil {
				result[currentModule] = make(map[string]bool)
			}
			for _, id := range findAllOfType(n, "simple_identifier", "variable_identifier") {
				result[currentModule][id.Content(source)] = true
			}
		}
		for i := 0; i < int(n.ChildCount()); i++ {
			walk(n.Child(i))
		}
	}
	walk(root)
	return result, nil
}

func findFirstChildOfType(n *sitter.Node, types ...string) *sitter.Node {
	for i := 0; i < int(n.ChildCount()); i++ {
		c := n.Child(i)
		for _, t := range types {
			if c.Type() == t {
				return c
			}
		}
	}
	return nil
}

func findAllOfType(n *sitter.Node, types ...string) []*sitter.Node {
	var out []*sitter.Node
	var rec func(*sitter.Node)
	typeSet := make(map[string]bool, len(types))
	for _, t := range types {
		typeSet[t] = true
	}
	rec = func(n *sitter.Node) {
		if n == nil {
			return
		}
		if typeSet[n.Type()] {
			out = append(out, n)
		}
		for i := 0; i < int(n.ChildCount()); i++ {
			rec(n.Child(i))
		}
	}
	rec(n)
	return out
}
