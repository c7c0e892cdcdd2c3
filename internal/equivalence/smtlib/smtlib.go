// Package smtlib builds SMT-LIB2 scripts and parses z3's textual
// responses. The equivalence engine treats the solver as an opaque
// external process (see internal/toolchain), so this package is its
// entire wire-format layer: no Go SMT binding exists anywhere in the
// retrieval pack this module was grounded on, so solver interaction is
// plain text in, plain text out, exactly like the yosys/verilator
// adapters.
package smtlib

import (
	"fmt"
	"math/rand"
	"regexp"
	"strconv"
	"strings"
)

// Script accumulates declarations and assertions and renders them into
// one SMT-LIB2 command stream.
type Script struct {
	Logic   string
	decls   []string
	asserts []string
}

// New builds an empty script using the given solver logic (e.g.
// "QF_UFBV", the bit-vector + uninterpreted-function logic the
// equivalence engine's miter needs).
func New(logic string) *Script {
	return &Script{Logic: logic}
}

// DeclareConst declares a fresh constant of the given sort.
func (s *Script) DeclareConst(name, sort string) {
	s.decls = append(s.decls, fmt.Sprintf("(declare-const %s %s)", name, sort))
}

// Assert adds a boolean formula to the script.
func (s *Script) Assert(formula string) {
	s.asserts = append(s.asserts, fmt.Sprintf("(assert %s)", formula))
}

// Push appends a (push) solver-stack checkpoint to the script.
func (s *Script) Push() { s.asserts = append(s.asserts, "(push)") }

// Pop appends a (pop), discarding back to the last checkpoint.
func (s *Script) Pop() { s.asserts = append(s.asserts, "(pop)") }

// Render produces the full script text. When withModel is true, a
// trailing (get-model) follows (check-sat); otherwise the script ends
// at (check-sat).
func (s *Script) Render(withModel bool) string {
	var b strings.Builder
	fmt.Fprintf(&b, "(set-logic %s)\n", s.Logic)
	for _, d := range s.decls {
		b.WriteString(d)
		b.WriteByte('\n')
	}
	for _, a := range s.asserts {
		b.WriteString(a)
		b.WriteByte('\n')
	}
	b.WriteString("(check-sat)\n")
	if withModel {
		b.WriteString("(get-model)\n")
	}
	return b.String()
}

// ZeroExtend wraps expr with a zero_extend of the given additional bit
// count. A zero delta returns expr unchanged.
func ZeroExtend(expr string, delta int) string {
	if delta <= 0 {
		return expr
	}
	return fmt.Sprintf("((_ zero_extend %d) %s)", delta, expr)
}

// AlignWidth zero-extends the narrower of two expressions so both have
// the wider of the two declared widths, mirroring the original's
// BinaryComparator.align_width.
func AlignWidth(lhs string, lhsWidth int, rhs string, rhsWidth int) (string, string) {
	switch {
	case lhsWidth < rhsWidth:
		return ZeroExtend(lhs, rhsWidth-lhsWidth), rhs
	case rhsWidth < lhsWidth:
		return lhs, ZeroExtend(rhs, lhsWidth-rhsWidth)
	default:
		return lhs, rhs
	}
}

// Equals builds an equality formula between two (already width-aligned)
// expressions.
func Equals(lhs, rhs string) string {
	return fmt.Sprintf("(= %s %s)", lhs, rhs)
}

var constantLiteral = regexp.MustCompile(`^#[bx][0-9a-fA-F]+$`)

// IsConstant reports whether expr is a literal bit-vector constant
// rather than a solver-side variable or accessor expression.
func IsConstant(expr string) bool {
	return constantLiteral.MatchString(expr)
}

// BitVectorLiteral renders value as an SMT-LIB2 indexed bit-vector
// literal of the given width.
func BitVectorLiteral(value uint64, width int) string {
	return fmt.Sprintf("(_ bv%d %d)", value, width)
}

// Concretize pins expr to a specific width-bit value: the given value if
// non-nil, otherwise one drawn from rnd. Mirrors
// BinaryComparator.concretize's "equal_to_specific_value" step.
func Concretize(expr string, width int, value *uint64, rnd *rand.Rand) string {
	v := uint64(0)
	if value != nil {
		v = *value
	} else if width < 64 {
		v = uint64(rnd.Int63n(int64(1) << uint(width)))
	} else {
		v = rnd.Uint64()
	}
	return Equals(BitVectorLiteral(v, width), expr)
}

// Response is the parsed result of a (check-sat) [+ (get-model)] round
// trip.
type Response struct {
	Sat     bool
	Unknown bool
	Model   map[string]string // symbol name -> raw value literal
}

// ParseResponse parses z3's textual reply. The (get-model) block is a
// flat sequence of `(define-fun NAME () SORT VALUE)` entries; this parser
// only extracts the leading check-sat verdict and those top-level
// define-fun bindings, which is everything the equivalence engine's
// counterexample report needs.
func ParseResponse(text string) (*Response, error) {
	lines := strings.Split(text, "\n")
	resp := &Response{Model: map[string]string{}}
	found := false
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		switch trimmed {
		case "sat":
			resp.Sat = true
			found = true
		case "unsat":
			resp.Sat = false
			found = true
		case "unknown":
			resp.Unknown = true
			found = true
		}
		if found {
			parseModel(strings.Join(lines[i+1:], "\n"), resp.Model)
			break
		}
	}
	if !found {
		return nil, fmt.Errorf("smtlib: no check-sat verdict found in solver output")
	}
	return resp, nil
}

var defineFun = regexp.MustCompile(`\(define-fun\s+([^\s()]+)\s*\(\)\s*(?:[^\s()]+|\([^()]*\))\s+([^()]*(?:\([^()]*\)[^()]*)*)\)`)

func parseModel(text string, out map[string]string) {
	for _, m := range defineFun.FindAllStringSubmatch(text, -1) {
		out[m[1]] = strings.TrimSpace(m[2])
	}
}

// ValueAsUint64 best-effort decodes a bit-vector literal value (binary
// "#b..." or hex "#x...") into an unsigned integer for report rendering.
func ValueAsUint64(literal string) (uint64, bool) {
	switch {
	case strings.HasPrefix(literal, "#b"):
		v, err := strconv.ParseUint(literal[2:], 2, 64)
		return v, err == nil
	case strings.HasPrefix(literal, "#x"):
		v, err := strconv.ParseUint(literal[2:], 16, 64)
		return v, err == nil
	default:
		return 0, false
	}
}
