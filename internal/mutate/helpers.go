package mutate

import (
	"fmt"
	"math/rand"
	"regexp"
	"strconv"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
)

// MutationError marks a sub-mutator that could not complete its search —
// a structural assumption it relies on (a unique declaration, a constant
// range) didn't hold for this particular candidate. The engine logs it
// and moves on to the next sub-mutator rather than failing the whole
// mutation run.
type MutationError struct{ msg string }

func (e *MutationError) Error() string { return e.msg }

func mutationErrorf(format string, args ...any) error {
	return &MutationError{msg: fmt.Sprintf(format, args...)}
}

// parentOf finds the module/task/function declaration that owns n.
func parentOf(n *sitter.Node, root *sitter.Node) (*sitter.Node, error) {
	var found *sitter.Node
	var walk func(c *sitter.Node)
	walk = func(c *sitter.Node) {
		if found != nil || c == nil {
			return
		}
		if c.Type() == "module_declaration" || c.Type() == "package_or_generate_item_declaration" {
			if c.StartByte() <= n.StartByte() && n.EndByte() <= c.EndByte() {
				found = c
				return
			}
		}
		for i := 0; i < int(c.ChildCount()); i++ {
			walk(c.Child(i))
			if found != nil {
				return
			}
		}
	}
	walk(root)
	if found == nil {
		return nil, mutationErrorf("cannot find the module where the node is declared")
	}
	return found, nil
}

// declInsertLocation finds a byte offset inside parent suitable for
// inserting a new declaration (a genvar, a parameter, a function).
func declInsertLocation(parent *sitter.Node) (uint32, error) {
	switch parent.Type() {
	case "module_declaration":
		for i := 0; i < int(parent.ChildCount()); i++ {
			if c := parent.Child(i); c.Type() == "module_or_generate_item" {
				return c.StartByte(), nil
			}
		}
		return 0, mutationErrorf("module_or_generate_item not found")
	case "package_or_generate_item_declaration":
		if parent.ChildCount() == 0 {
			return 0, mutationErrorf("empty package_or_generate_item_declaration")
		}
		decl := parent.Child(0)
		if decl.Type() == "task_declaration" || decl.Type() == "function_declaration" {
			for i := int(decl.ChildCount()) - 1; i >= 0; i-- {
				if decl.Child(i).Type() == "tf_item_declaration" {
					return decl.Child(i).StartByte(), nil
				}
			}
		}
		return 0, mutationErrorf("tf_item_declaration not found")
	default:
		return 0, mutationErrorf("unsupported insert-location parent %q", parent.Type())
	}
}

// typeOf returns the declared "data_type_or_implicit1" text (or "" for a
// scalar) of the given identifier inside module, searched via the
// ALL_DECLARED_IDENTIFIERS query so it finds exactly the matching port,
// parameter, net, or variable declaration regardless of its syntactic
// shape.
func typeOf(identifier string, module *sitter.Node, source []byte) (string, error) {
	matches := patternMatch(fmt.Sprintf(queryAllDeclaredIdentifiers, identifier), module, source)
	var decls []*sitter.Node
	for _, m := range matches {
		if n := m.node("declaration"); n != nil {
			decls = append(decls, n)
		}
	}
	if len(decls) != 1 {
		return "", mutationErrorf("expected exactly one declaration of %q, found %d", identifier, len(decls))
	}
	decl := decls[0]

	switch decl.Type() {
	case "list_of_port_declarations":
		for i := 0; i < int(decl.ChildCount()); i++ {
			c := decl.Child(i)
			if c.Type() != "ansi_port_declaration" {
				continue
			}
			if portIdentifierText(c, source) != identifier {
				continue
			}
			return portDeclarationType(c, source), nil
		}
	case "output_declaration", "input_declaration":
		if decl.ChildCount() >= 2 {
			netPortType := decl.Child(1)
			if dt := findFirstChildOfType(netPortType, "data_type_or_implicit1"); dt != nil {
				return dt.Content(source), nil
			}
		}
		return "", nil
	case "parameter_declaration":
		if decl.ChildCount() >= 2 {
			if decl.Child(1).Type() == "implicit_data_type1" {
				return decl.Child(1).Content(source), nil
			}
		}
		return "", nil
	case "tf_item_declaration":
		if decl.ChildCount() > 0 {
			portDecl := decl.Child(0)
			if dt := findFirstChildOfType(portDecl, "data_type_or_implicit1"); dt != nil {
				return dt.Content(source), nil
			}
		}
		return "", nil
	case "net_declaration":
		if decl.ChildCount() >= 2 && decl.Child(1).Type() == "data_type_or_implicit1" {
			return decl.Child(1).Content(source), nil
		}
		return "", nil
	default: // data_declaration
		if decl.ChildCount() > 0 {
			dataType := decl.Child(0)
			if dataType.ChildCount() > 0 {
				inner := dataType.Child(0)
				if inner.ChildCount() <= 1 {
					return "", nil
				}
				var parts []string
				for i := 1; i < int(inner.ChildCount()); i++ {
					parts = append(parts, inner.Child(i).Content(source))
				}
				return strings.Join(parts, " "), nil
			}
		}
		return "", nil
	}
	return "", mutationErrorf("type of %q not found", identifier)
}

func portIdentifierText(ansiPort *sitter.Node, source []byte) string {
	if id := findFirstChildOfType(ansiPort, "port_identifier"); id != nil {
		return id.Content(source)
	}
	return ""
}

func portDeclarationType(ansiPort *sitter.Node, source []byte) string {
	header := findFirstChildOfType(ansiPort, "net_port_header1")
	if header == nil {
		return ""
	}
	if t := findFirstChildOfType(header, "data_type_or_implicit1"); t != nil {
		return t.Content(source)
	}
	return ""
}

func findFirstChildOfType(n *sitter.Node, types ...string) *sitter.Node {
	if n == nil {
		return nil
	}
	for i := 0; i < int(n.ChildCount()); i++ {
		c := n.Child(i)
		for _, t := range types {
			if c.Type() == t {
				return c
			}
		}
		if found := findFirstChildOfType(c, types...); found != nil {
			return found
		}
	}
	return nil
}

var rangePattern = regexp.MustCompile(`\[(?P<msb>[^:]*):(?P<lsb>[^\]]*)\]`)

// rangeOf returns the (msb, lsb) text pair of identifier's declared
// range, failing if the declaration is scalar or multi-dimensional.
func rangeOf(identifier string, module *sitter.Node, source []byte) (msb, lsb string, err error) {
	t, err := typeOf(identifier, module, source)
	if err != nil {
		return "", "", err
	}
	matches := rangePattern.FindAllStringSubmatch(t, -1)
	if len(matches) != 1 {
		return "", "", mutationErrorf("identifier %q has a scalar or multi-dimensional range", identifier)
	}
	return matches[0][1], matches[0][2], nil
}

var (
	unsignedNumberPattern = regexp.MustCompile(`^\d[_\d]*$`)
	decimalNumberPattern  = regexp.MustCompile(`^([1-9][_\d]*)?'[sS]?[dD](\d[_\d]*)$`)
	binaryNumberPattern   = regexp.MustCompile(`^([1-9][_\d]*)?'[sS]?[bB]([0-1][_0-1]*)$`)
	octalNumberPattern    = regexp.MustCompile(`^([1-9][_\d]*)?'[sS]?[oO]([0-7][_0-7]*)$`)
	hexNumberPattern      = regexp.MustCompile(`^([1-9][_\d]*)?'[sS]?[hH]([0-9a-fA-F][_0-9a-fA-F]*)$`)
)

func parseVerilogNumber(s string) (int, error) {
	s = strings.TrimSpace(s)
	for strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		s = s[1 : len(s)-1]
	}
	strip := func(s string) string { return strings.ReplaceAll(s, "_", "") }
	if unsignedNumberPattern.MatchString(s) {
		return strconv.Atoi(strip(s))
	}
	if m := decimalNumberPattern.FindStringSubmatch(s); m != nil {
		return strconv.Atoi(strip(m[2]))
	}
	if m := binaryNumberPattern.FindStringSubmatch(s); m != nil {
		v, err := strconv.ParseInt(strip(m[2]), 2, 64)
		return int(v), err
	}
	if m := octalNumberPattern.FindStringSubmatch(s); m != nil {
		v, err := strconv.ParseInt(strip(m[2]), 8, 64)
		return int(v), err
	}
	if m := hexNumberPattern.FindStringSubmatch(s); m != nil {
		v, err := strconv.ParseInt(strip(m[2]), 16, 64)
		return int(v), err
	}
	return 0, fmt.Errorf("mutate: invalid Verilog number literal %q", s)
}

// shapeOf returns the (msb, lsb) pair of identifier's declared range as
// integers, failing on any range this module's simple evaluator can't
// parse (a parameterized width, for instance).
func shapeOf(identifier string, module *sitter.Node, source []byte) (msb, lsb int, err error) {
	msbText, lsbText, err := rangeOf(identifier, module, source)
	if err != nil {
		return 0, 0, err
	}
	msb, err = parseVerilogNumber(msbText)
	if err != nil {
		return 0, 0, mutationErrorf("%v", err)
	}
	lsb, err = parseVerilogNumber(lsbText)
	if err != nil {
		return 0, 0, mutationErrorf("%v", err)
	}
	return msb, lsb, nil
}

const idLetters = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"

// randomID generates a fresh identifier for a genvar, parameter, or
// function created during mutation.
func randomID(rnd *rand.Rand, length int) string {
	b := make([]byte, length)
	for i := range b {
		b[i] = idLetters[rnd.Intn(len(idLetters))]
	}
	return "_" + string(b)
}

func choice[T any](rnd *rand.Rand, items []T) T {
	return items[rnd.Intn(len(items))]
}

func pickN[T any](rnd *rand.Rand, items []T, n int) []T {
	if n >= len(items) {
		out := append([]T(nil), items...)
		rnd.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
		return out
	}
	idx := rnd.Perm(len(items))[:n]
	out := make([]T, n)
	for i, j := range idx {
		out[i] = items[j]
	}
	return out
}
