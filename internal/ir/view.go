package ir

import "fmt"

// NodeID uniquely identifies a node inside a ModelTreeView. Two
// instantiations of the same module under the same parent are always
// distinct nodes because the identifier incorporates the parent's own id.
type NodeID string

// TreeNode is one node of a ModelTreeView: a module instance plus its
// children, keyed by instance name.
type TreeNode struct {
	ID       NodeID
	Instance *ModuleInstance
	Decl     *ModuleDeclaration
	Parent   *TreeNode
	Children map[string]*TreeNode // instance name -> child
}

func nodeID(moduleName, instanceName string, parent *TreeNode) NodeID {
	parentID := NodeID("")
	if parent != nil {
		parentID = parent.ID
	}
	return NodeID(fmt.Sprintf("%s/%s#%s", parentID, instanceName, moduleName))
}

// HierarchicalPathName uniquely identifies an item inside a
// ModelTreeView.
type HierarchicalPathName struct {
	LeafNodeID NodeID
	ItemName   string
}

// ModelTreeView is a hierarchical tree of module instances rooted at the
// compilation unit's top-level instance.
type ModelTreeView struct {
	Design *Design
	Root   *TreeNode
	byID   map[NodeID]*TreeNode
}

// FromModuleDecl builds a ModelTreeView rooted at the top-level
// declaration in design, instantiating the hierarchy breadth-first.
func FromModuleDecl(design *Design) (*ModelTreeView, error) {
	decl := design.Declaration(design.TopLevel)
	if decl == nil {
		return nil, fmt.Errorf("ir: design has no top-level declaration")
	}
	view := &ModelTreeView{Design: design, byID: make(map[NodeID]*TreeNode)}
	root := view.instantiate(decl, design.TopLevel, "top", nil)
	view.Root = root

	type queued struct {
		node *TreeNode
		decl *ModuleDeclaration
	}
	queue := []queued{{root, decl}}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for instName, modName := range cur.decl.Submodules {
			childIdx, ok := design.DeclarationByName(modName)
			if !ok {
				return nil, fmt.Errorf("ir: submodule %q instantiates unknown module %q", instName, modName)
			}
			childDecl := design.Declaration(childIdx)
			child := view.instantiate(childDecl, childIdx, instName, cur.node)
			cur.node.Children[instName] = child
			queue = append(queue, queued{child, childDecl})
		}
	}
	return view, nil
}

func (v *ModelTreeView) instantiate(decl *ModuleDeclaration, declIdx int, instanceName string, parent *TreeNode) *TreeNode {
	id := nodeID(decl.Name, instanceName, parent)
	node := &TreeNode{
		ID:   id,
		Decl: decl,
		Instance: &ModuleInstance{
			DeclIndex:         declIdx,
			InstanceName:      instanceName,
			PortInstances:     make(map[string]Item),
			InternalInstances: make(map[string]Item),
		},
		Parent:   parent,
		Children: make(map[string]*TreeNode),
	}
	for name, item := range decl.Ports {
		cp := *item
		node.Instance.PortInstances[name] = &cp
	}
	for name, item := range decl.Internals {
		switch t := item.(type) {
		case *PrimitiveItem:
			cp := *t
			node.Instance.InternalInstances[name] = &cp
		case *CompoundItem:
			cp := *t
			node.Instance.InternalInstances[name] = &cp
		default:
			node.Instance.InternalInstances[name] = item
		}
	}
	v.byID[id] = node
	return node
}

// NodeByID looks up a tree node by its id.
func (v *ModelTreeView) NodeByID(id NodeID) *TreeNode {
	return v.byID[id]
}

// ItemWidth returns the declared bit width of the item at path.
func (v *ModelTreeView) ItemWidth(p HierarchicalPathName) (int, bool) {
	nodes := v.MatchPath(p)
	if len(nodes) == 0 {
		return 0, false
	}
	leaf := nodes[len(nodes)-1]
	item, ok := leaf.Instance.InternalInstances[p.ItemName]
	if !ok {
		item, ok = leaf.Instance.PortInstances[p.ItemName]
	}
	if !ok {
		return 0, false
	}
	switch t := item.(type) {
	case *PrimitiveItem:
		return t.Width, true
	case *CompoundItem:
		return t.ElementWidth, true
	default:
		return 0, false
	}
}

// TopModule returns the name of the root instance's declaration.
func (v *ModelTreeView) TopModule() string {
	if v.Root == nil {
		return ""
	}
	return v.Root.Decl.Name
}

// Leaves returns every tree node with no children, the units a
// backend-specific layout pass walks to attach offset/size attributes.
func (v *ModelTreeView) Leaves() []*TreeNode {
	var out []*TreeNode
	v.walk(func(n *TreeNode) {
		if len(n.Children) == 0 {
			out = append(out, n)
		}
	})
	return out
}

// AnnotateVerilatorLayout records the byte offset and size a Verilator-
// generated simulation model assigned to the item at path, creating its
// Attrs if necessary.
func (v *ModelTreeView) AnnotateVerilatorLayout(p HierarchicalPathName, layout VerilatorLayout) error {
	nodes := v.MatchPath(p)
	if len(nodes) == 0 {
		return fmt.Errorf("ir: path %v not found in model", p)
	}
	leaf := nodes[len(nodes)-1]
	item, ok := leaf.Instance.InternalInstances[p.ItemName]
	if !ok {
		item, ok = leaf.Instance.PortInstances[p.ItemName]
	}
	if !ok {
		return fmt.Errorf("ir: item %q not found at %s", p.ItemName, leaf.ID)
	}
	switch t := item.(type) {
	case *PrimitiveItem:
		if t.InstAttrs == nil {
			t.InstAttrs = &Attrs{}
		}
		t.InstAttrs.Verilator = &layout
	case *CompoundItem:
		if t.InstAttrs == nil {
			t.InstAttrs = &Attrs{}
		}
		t.InstAttrs.Verilator = &layout
	default:
		return fmt.Errorf("ir: item %q has no attachable layout", p.ItemName)
	}
	return nil
}

// MatchPath returns the root-to-leaf node list for a HierarchicalPathName,
// or nil if the leaf node doesn't exist in this view.
func (v *ModelTreeView) MatchPath(p HierarchicalPathName) []*TreeNode {
	leaf := v.NodeByID(p.LeafNodeID)
	if leaf == nil {
		return nil
	}
	var path []*TreeNode
	for n := leaf; n != nil; n = n.Parent {
		path = append([]*TreeNode{n}, path...)
	}
	return path
}

func (v *ModelTreeView) walk(fn func(*TreeNode)) {
	var rec func(*TreeNode)
	rec = func(n *TreeNode) {
		fn(n)
		for _, c := range n.Children {
			rec(c)
		}
	}
	if v.Root != nil {
		rec(v.Root)
	}
}

// InputPorts returns the path of every input port across the whole tree.
func (v *ModelTreeView) InputPorts() []HierarchicalPathName {
	return v.filterPorts(func(p *PrimitiveItem) bool { return p.Direction == Input })
}

// OutputPorts returns the path of every output port.
func (v *ModelTreeView) OutputPorts() []HierarchicalPathName {
	return v.filterPorts(func(p *PrimitiveItem) bool { return p.Direction == Output })
}

func (v *ModelTreeView) filterPorts(keep func(*PrimitiveItem) bool) []HierarchicalPathName {
	var out []HierarchicalPathName
	v.walk(func(n *TreeNode) {
		for name, item := range n.Instance.PortInstances {
			if p, ok := item.(*PrimitiveItem); ok && keep(p) {
				out = append(out, HierarchicalPathName{LeafNodeID: n.ID, ItemName: name})
			}
		}
	})
	return out
}

// InternalRegisters returns every internal item that is a register.
func (v *ModelTreeView) InternalRegisters() []HierarchicalPathName {
	return v.filterInternals(func(it Item) bool {
		switch t := it.(type) {
		case *PrimitiveItem:
			return t.IsReg
		case *CompoundItem:
			return t.IsReg
		}
		return false
	})
}

// InternalWires returns every internal item that is not a register.
func (v *ModelTreeView) InternalWires() []HierarchicalPathName {
	return v.filterInternals(func(it Item) bool {
		switch t := it.(type) {
		case *PrimitiveItem:
			return !t.IsReg
		case *CompoundItem:
			return !t.IsReg
		}
		return false
	})
}

func (v *ModelTreeView) filterInternals(keep func(Item) bool) []HierarchicalPathName {
	var out []HierarchicalPathName
	v.walk(func(n *TreeNode) {
		for name, item := range n.Instance.InternalInstances {
			if keep(item) {
				out = append(out, HierarchicalPathName{LeafNodeID: n.ID, ItemName: name})
			}
		}
	})
	return out
}

// CombinationInputs is inputs ∪ registers.
func (v *ModelTreeView) CombinationInputs() []HierarchicalPathName {
	return append(v.InputPorts(), v.InternalRegisters()...)
}

// CombinationOutputs is outputs ∪ registers.
func (v *ModelTreeView) CombinationOutputs() []HierarchicalPathName {
	return append(v.OutputPorts(), v.InternalRegisters()...)
}

// AllItems returns the path of every item in the entire tree.
func (v *ModelTreeView) AllItems() []HierarchicalPathName {
	var out []HierarchicalPathName
	v.walk(func(n *TreeNode) {
		for name := range n.Instance.PortInstances {
			out = append(out, HierarchicalPathName{LeafNodeID: n.ID, ItemName: name})
		}
		for name := range n.Instance.InternalInstances {
			out = append(out, HierarchicalPathName{LeafNodeID: n.ID, ItemName: name})
		}
	})
	return out
}
