package ir

import (
	"fmt"
	"io"
	"sort"
)

// Dump writes a human-readable representation of every declaration in
// design, in the same vein as the teacher's internal/ir/printer.go.
func Dump(design *Design, w io.Writer) {
	if design == nil {
		fmt.Fprintln(w, "<nil design>")
		return
	}
	for _, decl := range design.Declarations() {
		fmt.Fprintf(w, "module %s\n", decl.Name)
		dumpPorts(decl, w)
		dumpInternals(decl, w)
		dumpSubmodules(decl, w)
		fmt.Fprintln(w)
	}
}

func dumpPorts(decl *ModuleDeclaration, w io.Writer) {
	if len(decl.Ports) == 0 {
		return
	}
	fmt.Fprintln(w, "  ports:")
	for _, name := range sortedKeys(decl.Ports) {
		p := decl.Ports[name]
		fmt.Fprintf(w, "    %-6s %-16s %db%s\n", p.Direction, p.Name, p.Width, regSuffix(p.IsReg))
	}
}

func dumpInternals(decl *ModuleDeclaration, w io.Writer) {
	if len(decl.Internals) == 0 {
		return
	}
	fmt.Fprintln(w, "  internals:")
	names := make([]string, 0, len(decl.Internals))
	for n := range decl.Internals {
		names = append(names, n)
	}
	sort.Strings(names)
	for _, name := range names {
		switch item := decl.Internals[name].(type) {
		case *PrimitiveItem:
			fmt.Fprintf(w, "    %-16s %db%s\n", item.Name, item.Width, regSuffix(item.IsReg))
		case *CompoundItem:
			fmt.Fprintf(w, "    %-16s [%d]x%db%s\n", item.Name, item.Capacity(), item.ElementWidth, regSuffix(item.IsReg))
		}
	}
}

func dumpSubmodules(decl *ModuleDeclaration, w io.Writer) {
	if len(decl.Submodules) == 0 {
		return
	}
	fmt.Fprintln(w, "  submodules:")
	names := make([]string, 0, len(decl.Submodules))
	for n := range decl.Submodules {
		names = append(names, n)
	}
	sort.Strings(names)
	for _, inst := range names {
		fmt.Fprintf(w, "    %s: %s\n", inst, decl.Submodules[inst])
	}
}

func regSuffix(isReg bool) string {
	if isReg {
		return " reg"
	}
	return ""
}

func sortedKeys(m map[string]*PrimitiveItem) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
