package ir

import (
	"fmt"

	"verihammer/internal/diag"
)

// checker accumulates invariant violations across a Design, the same
// shape the teacher's validation checker used: a running error count fed
// through a diag.Reporter.
type checker struct {
	reporter *diag.Reporter
	errCount int
	design   *Design
}

func (c *checker) errorf(pos diag.Pos, format string, args ...any) {
	c.reporter.Errorf(pos, format, args...)
	c.errCount++
}

// CheckInvariants verifies the structural invariants of spec.md §3 that
// are not already enforced by construction during loading: unique item
// names within each declaration, and a resolvable submodule graph.
func CheckInvariants(design *Design, reporter *diag.Reporter) error {
	c := &checker{reporter: reporter, design: design}
	for _, decl := range design.Declarations() {
		c.checkUniqueNames(decl)
		c.checkSubmodulesResolve(decl)
	}
	if c.errCount > 0 {
		return fmt.Errorf("ir: %d invariant violations", c.errCount)
	}
	return nil
}

func (c *checker) checkUniqueNames(decl *ModuleDeclaration) {
	seen := make(map[string]bool, len(decl.Ports)+len(decl.Internals))
	for name := range decl.Ports {
		if seen[name] {
			c.errorf(diag.Pos{File: decl.Name}, "duplicate item name %q", name)
		}
		seen[name] = true
	}
	for name := range decl.Internals {
		if seen[name] {
			c.errorf(diag.Pos{File: decl.Name}, "duplicate item name %q", name)
		}
		seen[name] = true
	}
}

func (c *checker) checkSubmodulesResolve(decl *ModuleDeclaration) {
	for instName, modName := range decl.Submodules {
		if _, ok := c.design.DeclarationByName(modName); !ok {
			c.errorf(diag.Pos{File: decl.Name}, "instance %q references unknown module %q", instName, modName)
		}
	}
}
