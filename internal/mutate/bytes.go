// Package mutate implements the heuristic, tree-sitter-driven mutation
// engine: a battery of named sub-mutators that each find one syntactic
// pattern in a Verilog/SystemVerilog source tree and rewrite it, a
// byte-coverage-weighted scheduler that prioritizes under-explored
// regions of the seed, and a semantic-check gate that only accepts
// mutants the toolchain can still parse and elaborate.
package mutate

import "sort"

// Replacement replaces data[StartByte:EndByte] with Substitute. A
// zero-length [StartByte, EndByte) range is a pure insertion.
type Replacement struct {
	StartByte  uint32
	EndByte    uint32
	Substitute []byte
}

// ByteCoverage tracks which bytes of a seed have already been touched by
// an accepted mutation, so the scheduler can favor replacement sets that
// reach fresh territory.
type ByteCoverage struct {
	covered []bool
}

// NewByteCoverage allocates coverage tracking over [start, end).
func NewByteCoverage(start, end uint32) *ByteCoverage {
	return &ByteCoverage{covered: make([]bool, end-start)}
}

// Query scores a candidate replacement set: newly touched bytes times
// bytes already covered. A high score favors mutations that extend
// coverage into regions other mutations have already visited, the same
// priority signal the original scheduler uses to avoid repeatedly
// mutating the same few lines.
func (c *ByteCoverage) Query(rs []Replacement) float64 {
	var toBeCovered int
	for _, r := range rs {
		start, end := int(r.StartByte), int(r.EndByte)
		if start > len(c.covered) {
			start = len(c.covered)
		}
		if end > len(c.covered) {
			end = len(c.covered)
		}
		newlyCovered := countFalse(c.covered[start:end])
		toBeCovered += newlyCovered + len(r.Substitute) - (end - start)
	}
	return float64(toBeCovered) * float64(countTrue(c.covered))
}

// Update marks every byte range touched by rs as covered. rs must be
// sorted by StartByte and non-overlapping, matching BytesEditor's
// precondition.
func (c *ByteCoverage) Update(rs []Replacement) float64 {
	next := make([]bool, 0, len(c.covered))
	prevEnd := uint32(0)
	for _, r := range rs {
		start, end := r.StartByte, r.EndByte
		if start > prevEnd {
			next = append(next, c.covered[prevEnd:start]...)
		}
		for i := uint32(0); i < end-start; i++ {
			next = append(next, true)
		}
		prevEnd = end
	}
	if int(prevEnd) < len(c.covered) {
		next = append(next, c.covered[prevEnd:]...)
	}
	c.covered = next
	if len(c.covered) == 0 {
		return 0
	}
	return float64(countTrue(c.covered)) / float64(len(c.covered))
}

func countTrue(bs []bool) int {
	n := 0
	for _, b := range bs {
		if b {
			n++
		}
	}
	return n
}

func countFalse(bs []bool) int {
	return len(bs) - countTrue(bs)
}

// BytesEditor applies a batch of non-overlapping Replacements to data in
// one pass. Callers must not schedule overlapping intervals between two
// replacements.
type BytesEditor struct {
	Data         []byte
	Replacements []Replacement
	StartByte    uint32
	EndByte      uint32
}

// NewBytesEditor sorts rs by (StartByte, EndByte) and records the overall
// [StartByte, EndByte) span the batch covers.
func NewBytesEditor(data []byte, rs []Replacement) *BytesEditor {
	sorted := append([]Replacement(nil), rs...)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].StartByte != sorted[j].StartByte {
			return sorted[i].StartByte < sorted[j].StartByte
		}
		return sorted[i].EndByte < sorted[j].EndByte
	})
	e := &BytesEditor{Data: data, Replacements: sorted}
	if len(sorted) > 0 {
		e.StartByte = sorted[0].StartByte
		e.EndByte = sorted[len(sorted)-1].EndByte
	}
	return e
}

// CalculatePoint converts a byte offset into a 0-indexed (line, column)
// pair, used for diagnostics when a mutant fails to parse.
func CalculatePoint(data []byte, offset uint32) (line, column uint32) {
	var lastNewline int = -1
	for i := 0; i < int(offset) && i < len(data); i++ {
		if data[i] == '\n' {
			line++
			lastNewline = i
		}
	}
	column = offset - uint32(lastNewline+1)
	return line, column
}

// StartPoint and EndPoint report the (line, column) of the editor's
// overall span in Data, matching BytesEditor's Python counterparts.
func (e *BytesEditor) StartPoint() (uint32, uint32) { return CalculatePoint(e.Data, e.StartByte) }
func (e *BytesEditor) EndPoint() (uint32, uint32)   { return CalculatePoint(e.Data, e.EndByte) }

// Apply rewrites Data in place, applying every scheduled replacement
// simultaneously, and clears Replacements. EndByte is updated to track
// the new length of the edited span.
func (e *BytesEditor) Apply() {
	var out []byte
	prevEnd := uint32(0)
	for _, r := range e.Replacements {
		out = append(out, e.Data[prevEnd:r.StartByte]...)
		out = append(out, r.Substitute...)
		prevEnd = r.EndByte
	}
	out = append(out, e.Data[prevEnd:]...)

	delta := len(out) - len(e.Data)
	e.EndByte = uint32(int(e.EndByte) + delta)
	e.Data = out
	e.Replacements = nil
}
