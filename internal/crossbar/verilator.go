package crossbar

import (
	"fmt"
	"strings"

	"verihammer/internal/ir"
)

// verilatorEscapes is the fixed escaping table Verilator applies to
// hierarchical/array/bit-select characters when mangling a symbol name.
var verilatorEscapes = []struct{ raw, escaped string }{
	{".", "__DOT__"},
	{"[", "__BRA__"},
	{"]", "__KET__"},
	{"$", "__024"},
}

func verilatorEscape(s string) string {
	for _, e := range verilatorEscapes {
		s = strings.ReplaceAll(s, e.raw, e.escaped)
	}
	return s
}

func verilatorUnescape(s string) string {
	// Reverse order so multi-character escapes that could themselves
	// contain another escape's raw form (none do here, but mirror the
	// general pattern) unescape deterministically.
	for i := len(verilatorEscapes) - 1; i >= 0; i-- {
		e := verilatorEscapes[i]
		s = strings.ReplaceAll(s, e.escaped, e.raw)
	}
	return s
}

// VerilatorNamingHelper mangles a HierarchicalPathName into the flat
// identifier Verilator's generated C++ model exposes for it, and parses
// such identifiers back.
type VerilatorNamingHelper struct {
	paths []ir.HierarchicalPathName
}

// NewVerilatorNamingHelper builds a helper over the given logical paths.
func NewVerilatorNamingHelper(paths ...ir.HierarchicalPathName) *VerilatorNamingHelper {
	return &VerilatorNamingHelper{paths: paths}
}

// Merge mangles a hierarchical instance-name chain plus an item name into
// Verilator's flat naming convention. Ports of the top module
// (isTopPort) are not prefixed by the module name; every other variable
// is prefixed with the submodules chain, which Find starts with the top
// module's name followed by the instance names down to the item.
func Merge(submodules []string, item string, isTopPort bool) string {
	escapedItem := verilatorEscape(item)
	if isTopPort {
		return escapedItem
	}
	escapedPath := make([]string, len(submodules))
	for i, s := range submodules {
		escapedPath[i] = verilatorEscape(s)
	}
	return strings.Join(escapedPath, "__DOT__") + "__DOT__" + escapedItem
}

// Split parses a Verilator-legal identifier back into its instance-name
// chain and item name.
func Split(mangled string) (submodules []string, item string) {
	raw := verilatorUnescape(mangled)
	parts := strings.Split(strings.ReplaceAll(mangled, "__DOT__", "\x00"), "\x00")
	if len(parts) == 1 {
		return nil, raw
	}
	for i := range parts {
		parts[i] = verilatorUnescape(parts[i])
	}
	return parts[:len(parts)-1], parts[len(parts)-1]
}

// Find returns the mangled name and the underlying node for p.
func (h *VerilatorNamingHelper) Find(p ir.HierarchicalPathName, model *ir.ModelTreeView) (string, *ir.TreeNode, error) {
	nodes := model.MatchPath(p)
	if len(nodes) == 0 {
		return "", nil, fmt.Errorf("crossbar: path %v not found in model", p)
	}
	leaf := nodes[len(nodes)-1]
	_, isPort := leaf.Instance.PortInstances[p.ItemName]
	isTopPort := len(nodes) == 1 && isPort
	chain := []string{nodes[0].Decl.Name}
	for _, n := range nodes[1:] {
		chain = append(chain, n.Instance.InstanceName)
	}
	return Merge(chain, p.ItemName, isTopPort), leaf, nil
}

// ToData renders the mangled identifier for each path.
func (h *VerilatorNamingHelper) ToData(model *ir.ModelTreeView, paths ...ir.HierarchicalPathName) ([]string, error) {
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		name, _, err := h.Find(p, model)
		if err != nil {
			return nil, err
		}
		out = append(out, name)
	}
	return out, nil
}

// FromData parses a mangled identifier back into the HierarchicalPathName
// it denotes inside model.
func (h *VerilatorNamingHelper) FromData(name string, model *ir.ModelTreeView) ([]ir.HierarchicalPathName, error) {
	submodules, item := Split(name)
	node := model.Root
	if len(submodules) > 0 {
		if submodules[0] != node.Decl.Name {
			return nil, fmt.Errorf("crossbar: %q is not prefixed by top module %q", name, node.Decl.Name)
		}
		submodules = submodules[1:]
	}
	for _, inst := range submodules {
		next, ok := node.Children[inst]
		if !ok {
			return nil, fmt.Errorf("crossbar: no instance %q under %s", inst, node.ID)
		}
		node = next
	}
	return []ir.HierarchicalPathName{{LeafNodeID: node.ID, ItemName: item}}, nil
}

// ToModel returns the logical paths this helper was built from.
func (h *VerilatorNamingHelper) ToModel() []ir.HierarchicalPathName { return h.paths }
