package crossbar

import (
	"strings"

	"verihammer/internal/ir"
)

// DebugItem is one entry of the debug-item list a Yosys-CXXRTL build
// exposes: a flat name, its width, and whether it is writable and not an
// output (the two facts needed to decide symbolic-ness).
type DebugItem struct {
	Name                   string
	Width                  int
	WritableAndNonOutput   bool
}

// CxxImplItem is a DebugItem converted into Verilator naming and
// deduplicated across array elements.
type CxxImplItem struct {
	MangledName string
	Width       int
	IsSymbolic  bool
}

// mangleName re-expresses a Yosys CXXRTL debug-item name in Verilator
// naming style: `.` hierarchy separators become `__DOT__`-joined
// components, and `$`-prefixed internal names get the `__024` escape
// applied as part of the general Verilator escaping table.
func mangleName(name string) string {
	parts := strings.Split(name, ".")
	for i, p := range parts {
		parts[i] = verilatorEscape(p)
	}
	return strings.Join(parts, "__DOT__")
}

// YosysCxxCrossbar converts a set of Yosys CXXRTL debug items into
// Verilator-style implementation items, deduplicating array elements and
// computing each element's IsSymbolic flag.
type YosysCxxCrossbar struct {
	paths []ir.HierarchicalPathName
}

// NewYosysCxxCrossbar builds a crossbar over paths.
func NewYosysCxxCrossbar(paths ...ir.HierarchicalPathName) *YosysCxxCrossbar {
	return &YosysCxxCrossbar{paths: paths}
}

// Preprocess converts debug items into deduplicated CxxImplItems. An
// item is symbolic iff it is writable-and-non-output and is either a
// register or a port; array elements sharing a mangled base name are
// merged into a single representative item.
func (c *YosysCxxCrossbar) Preprocess(items []DebugItem, isRegister, isPort func(name string) bool) []CxxImplItem {
	seen := make(map[string]bool)
	var out []CxxImplItem
	for _, item := range items {
		mangled := mangleName(item.Name)
		if i := strings.LastIndex(mangled, "__BRA__"); i > 0 && strings.HasSuffix(mangled, "__KET__") {
			mangled = mangled[:i]
		}
		if seen[mangled] {
			continue
		}
		seen[mangled] = true
		symbolic := item.WritableAndNonOutput && (isRegister(item.Name) || isPort(item.Name))
		out = append(out, CxxImplItem{MangledName: mangled, Width: item.Width, IsSymbolic: symbolic})
	}
	return out
}

// ToData renders the mangled Verilator-style name for each path, the
// CXXRTL-backend equivalent of VerilatorNamingHelper.ToData.
func (c *YosysCxxCrossbar) ToData(model *ir.ModelTreeView, paths ...ir.HierarchicalPathName) ([]string, error) {
	helper := NewVerilatorNamingHelper(paths...)
	return helper.ToData(model, paths...)
}

// FromData parses a mangled Verilator-style name back into its logical
// path.
func (c *YosysCxxCrossbar) FromData(name string, model *ir.ModelTreeView) ([]ir.HierarchicalPathName, error) {
	helper := NewVerilatorNamingHelper()
	return helper.FromData(name, model)
}

// ToModel returns the logical paths this crossbar was built from.
func (c *YosysCxxCrossbar) ToModel() []ir.HierarchicalPathName { return c.paths }
