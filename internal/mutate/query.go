package mutate

import (
	sitter "github.com/smacker/go-tree-sitter"

	"verihammer/internal/ir"
)

// match is one pattern_match result: capture name to every node captured
// under that name in this match (almost always one node; a query that
// names the same capture twice, like the if/else arm of
// queryCondStatement2, yields more than one).
type match map[string][]*sitter.Node

// node returns the single node captured under name, or nil if name
// wasn't captured in this match.
func (m match) node(name string) *sitter.Node {
	if ns := m[name]; len(ns) > 0 {
		return ns[0]
	}
	return nil
}

// patternMatch runs query against the whole subtree under root and
// returns every match as a capture-name-keyed map, mirroring the
// original's pattern_match helper.
func patternMatch(query string, root *sitter.Node, source []byte) []match {
	q, err := sitter.NewQuery([]byte(query), ir.VerilogLanguage())
	if err != nil {
		return nil
	}
	qc := sitter.NewQueryCursor()
	qc.Exec(q, root)

	var out []match
	for {
		m, ok := qc.NextMatch()
		if !ok {
			break
		}
		m = qc.FilterPredicates(m, source)
		if len(m.Captures) == 0 {
			continue
		}
		mm := match{}
		for _, c := range m.Captures {
			name := q.CaptureNameForId(c.Index)
			mm[name] = append(mm[name], c.Node)
		}
		out = append(out, mm)
	}
	return out
}
