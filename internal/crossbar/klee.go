package crossbar

import (
	"fmt"
	"strings"

	"verihammer/internal/ir"
)

// AtomVariable is one addressable byte-chunk of a KLEE symbolic object:
// a name, its byte offset within the object, and its width in bytes.
type AtomVariable struct {
	Name   string
	Offset int
	Bytes  int
}

const wideWordBytes = 4

// KleeSmtCrossbar maps HierarchicalPathNames to the byte-addressed atom
// layout KLEE's symbolic-execution harness uses, splitting items wider
// than 64 bits (or compound elements of 8+ bytes) into 4-byte words.
type KleeSmtCrossbar struct {
	paths      []ir.HierarchicalPathName
	topModule  string
}

// NewKleeSmtCrossbar builds a crossbar over paths, rooted at topModule's
// symbolic object.
func NewKleeSmtCrossbar(topModule string, paths ...ir.HierarchicalPathName) *KleeSmtCrossbar {
	return &KleeSmtCrossbar{paths: paths, topModule: topModule}
}

// Atoms returns the AtomVariable tuples covering p's item, in offset
// order, splitting wide items into 4-byte words.
func (c *KleeSmtCrossbar) Atoms(model *ir.ModelTreeView, p ir.HierarchicalPathName, offset int) ([]AtomVariable, error) {
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
		return nil, fmt.Errorf("crossbar: item %q not found", p.ItemName)
	}

	switch t := item.(type) {
	case *ir.PrimitiveItem:
		return atomsForWidth(p.ItemName, offset, t.Width, false), nil
	case *ir.CompoundItem:
		var atoms []AtomVariable
		off := offset
		for i := 0; i < t.Capacity(); i++ {
			name := fmt.Sprintf("%s[%d]", p.ItemName, i)
			elemAtoms := atomsForWidth(name, off, t.ElementWidth, true)
			atoms = append(atoms, elemAtoms...)
			off += bytesFor(t.ElementWidth)
		}
		return atoms, nil
	default:
		return nil, fmt.Errorf("crossbar: unsupported item type for %q", p.ItemName)
	}
}

func bytesFor(widthBits int) int {
	return (widthBits + 7) / 8
}

// atomsForWidth lays out one item; isElement marks a compound element,
// which is split once it reaches 8 bytes.
func atomsForWidth(name string, offset, widthBits int, isElement bool) []AtomVariable {
	bytes := bytesFor(widthBits)
	if widthBits <= 64 && !(isElement && bytes >= 8) {
		return []AtomVariable{{Name: name, Offset: offset, Bytes: bytes}}
	}
	// Wide item: split into 4-byte words, indexed _0..k-1.
	var atoms []AtomVariable
	off := offset
	idx := 0
	remaining := bytes
	for remaining > 0 {
		chunk := wideWordBytes
		if remaining < chunk {
			chunk = remaining
		}
		atoms = append(atoms, AtomVariable{Name: fmt.Sprintf("%s_%d", name, idx), Offset: off, Bytes: chunk})
		off += chunk
		remaining -= chunk
		idx++
	}
	return atoms
}

// ToData renders either the raw AtomVariable tuples (split=true) or SMT
// functions named `<top>__<name>` combining the atoms via LSB-first
// concatenation (split=false).
func (c *KleeSmtCrossbar) ToData(model *ir.ModelTreeView, paths ...ir.HierarchicalPathName) ([]string, error) {
	return c.toData(model, false, paths...)
}

// ToDataSplit is the split=true variant of ToData, returning one string
// rendering per AtomVariable rather than one combined accessor per path.
func (c *KleeSmtCrossbar) ToDataSplit(model *ir.ModelTreeView, paths ...ir.HierarchicalPathName) ([]string, error) {
	return c.toData(model, true, paths...)
}

// AtomVariables returns every AtomVariable covering paths, in ascending
// offset order — the Go analogue of CppCircuit.atom_variables, kept
// separate from ToDataSplit's pre-rendered "(atom ...)" strings so
// callers that need the raw tuples (e.g. generating a KLEE harness)
// don't have to parse them back out.
func (c *KleeSmtCrossbar) AtomVariables(model *ir.ModelTreeView, paths ...ir.HierarchicalPathName) ([]AtomVariable, error) {
	var out []AtomVariable
	offset := 0
	for _, p := range paths {
		atoms, err := c.Atoms(model, p, offset)
		if err != nil {
			return nil, err
		}
		offset += sumBytes(atoms)
		out = append(out, atoms...)
	}
	return out, nil
}

func (c *KleeSmtCrossbar) toData(model *ir.ModelTreeView, split bool, paths ...ir.HierarchicalPathName) ([]string, error) {
	var out []string
	offset := 0
	for _, p := range paths {
		atoms, err := c.Atoms(model, p, offset)
		if err != nil {
			return nil, err
		}
		offset += sumBytes(atoms)
		if split {
			for _, a := range atoms {
				out = append(out, fmt.Sprintf("(atom %q %d %d)", a.Name, a.Offset, a.Bytes))
			}
			continue
		}
		out = append(out, c.combineFunction(p, atoms))
	}
	return out, nil
}

func sumBytes(atoms []AtomVariable) int {
	total := 0
	for _, a := range atoms {
		total += a.Bytes
	}
	return total
}

// combineFunction builds the SMT-LIB bit-vector concatenation of the
// atoms backing p, LSB word first, MSB word last, as `concat`'s operand
// order requires (concat takes MSB-first operands, so the word list is
// reversed before concatenation).
func (c *KleeSmtCrossbar) combineFunction(p ir.HierarchicalPathName, atoms []AtomVariable) string {
	funcName := fmt.Sprintf("%s__%s", c.topModule, p.ItemName)
	if len(atoms) == 1 {
		return fmt.Sprintf("(define-fun %s () (_ BitVec %d) (%s))", funcName, atoms[0].Bytes*8, atoms[0].Name)
	}
	words := make([]string, len(atoms))
	for i, a := range atoms {
		words[i] = a.Name
	}
	// Reverse for MSB-first concat operand order (atoms are LSB-first).
	for i, j := 0, len(words)-1; i < j; i, j = i+1, j-1 {
		words[i], words[j] = words[j], words[i]
	}
	totalBits := sumBytes(atoms) * 8
	return fmt.Sprintf("(define-fun %s () (_ BitVec %d) (concat %s))", funcName, totalBits, strings.Join(words, " "))
}

// FromData parses a previously-rendered atom/accessor name back into its
// HierarchicalPathName.
func (c *KleeSmtCrossbar) FromData(name string, model *ir.ModelTreeView) ([]ir.HierarchicalPathName, error) {
	prefix := c.topModule + "__"
	if !strings.HasPrefix(name, prefix) {
		return nil, fmt.Errorf("crossbar: %q does not have prefix %q", name, prefix)
	}
	itemName := strings.TrimPrefix(name, prefix)
	for _, p := range model.AllItems() {
		if p.ItemName == itemName {
			return []ir.HierarchicalPathName{p}, nil
		}
	}
	return nil, fmt.Errorf("crossbar: item %q not found in model", itemName)
}

// ToModel returns the logical paths this crossbar was built from.
func (c *KleeSmtCrossbar) ToModel() []ir.HierarchicalPathName { return c.paths }
