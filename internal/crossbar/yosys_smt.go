package crossbar

import (
	"fmt"
	"strings"

	"verihammer/internal/ir"
)

// YosysSmtCrossbar maps HierarchicalPathNames to the hierarchy-accessor
// composition `yosys_write_smt2` uses: `<type>_h <tag>` to step into a
// submodule's state, then `<module_type>_n <wirename>` to read an item
// out of that state.
type YosysSmtCrossbar struct {
	paths []ir.HierarchicalPathName
}

// NewYosysSmtCrossbar builds a crossbar over the given logical paths.
func NewYosysSmtCrossbar(paths ...ir.HierarchicalPathName) *YosysSmtCrossbar {
	return &YosysSmtCrossbar{paths: paths}
}

// Accessor is the SMT-LIB function-application chain that reads one item
// out of a top-level state variable.
func (c *YosysSmtCrossbar) Accessor(model *ir.ModelTreeView, p ir.HierarchicalPathName, itemName string) (string, error) {
	nodes := model.MatchPath(p)
	if len(nodes) == 0 {
		return "", fmt.Errorf("crossbar: path %v not found in model", p)
	}

	expr := "state"
	for _, n := range nodes[1:] { // skip root: hierarchy steps start at the first child
		expr = fmt.Sprintf("(%s_h |%s| %s)", n.Decl.Name, n.Instance.InstanceName, expr)
	}
	leaf := nodes[len(nodes)-1]
	return fmt.Sprintf("(%s_n |%s| %s)", leaf.Decl.Name, itemName, expr), nil
}

// ToData renders one SMT accessor expression per path, exactly the
// ToData contract of the shared Crossbar interface. Compound items
// expand to one accessor per element, named `name[i]`.
func (c *YosysSmtCrossbar) ToData(model *ir.ModelTreeView, paths ...ir.HierarchicalPathName) ([]string, error) {
	var out []string
	for _, p := range paths {
		nodes := model.MatchPath(p)
		if len(nodes) == 0 {
			return nil, fmt.Errorf("crossbar: path %v not found in model", p)
		}
		leaf := nodes[len(nodes)-1]
		item, ok := leaf.Instance.InternalInstances[p.ItemName]
		if !ok {
			item, ok = leaf.Instance.PortInstances[p.ItemName]
		}
		if !ok {
			// Unknown non-register items are tolerated as optimized out:
			// a constant 1-bit zero stream.
			out = append(out, boolToBV(false))
			continue
		}
		switch t := item.(type) {
		case *ir.CompoundItem:
			for i := 0; i < t.Capacity(); i++ {
				acc, err := c.Accessor(model, p, fmt.Sprintf("%s[%d]", p.ItemName, i))
				if err != nil {
					return nil, err
				}
				out = append(out, acc)
			}
		default:
			acc, err := c.Accessor(model, p, p.ItemName)
			if err != nil {
				return nil, err
			}
			out = append(out, acc)
		}
	}
	return out, nil
}

// FromData parses a backend-emitted `(module_type, item_name)` pair back
// into the set of logical paths in model whose leaf declaration is
// module_type and whose item is item_name.
func (c *YosysSmtCrossbar) FromData(name string, model *ir.ModelTreeView) ([]ir.HierarchicalPathName, error) {
	parts := strings.SplitN(name, ".", 2)
	if len(parts) != 2 {
		return nil, fmt.Errorf("crossbar: malformed yosys smt name %q, want \"module.item\"", name)
	}
	moduleType, itemName := parts[0], parts[1]

	var matches []ir.HierarchicalPathName
	for _, p := range model.AllItems() {
		nodes := model.MatchPath(p)
		if len(nodes) == 0 {
			continue
		}
		leaf := nodes[len(nodes)-1]
		if leaf.Decl.Name == moduleType && p.ItemName == itemName {
			matches = append(matches, p)
		}
	}
	return matches, nil
}

// ToModel returns the logical paths this crossbar was built from.
func (c *YosysSmtCrossbar) ToModel() []ir.HierarchicalPathName { return c.paths }
