package ir

import (
	sitter "github.com/smacker/go-tree-sitter"
	tsverilog "github.com/tree-sitter-grammars/tree-sitter-verilog/bindings/go"
)

// verilogLanguage returns the tree-sitter grammar used for the syntactic
// register scan (step 2 of loading) and, via the mutate package, for the
// heuristic mutation engine's pattern matching. Sharing one grammar
// binding keeps the register scan and the mutator's query set looking at
// the same parse tree shape.
func verilogLanguage() *sitter.Language {
	return tsverilog.GetLanguage()
}

// VerilogLanguage is the exported form of verilogLanguage, used by
// internal/mutate so its tree-sitter queries run against the exact grammar
// this package parses source with.
func VerilogLanguage() *sitter.Language {
	return verilogLanguage()
}
