package mutate

import (
	"fmt"
	"math"
	"math/rand"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
)

// SubMutator finds every place its pattern occurs in tree and returns one
// non-overlapping Replacement set per occurrence — a mutation plan. A
// plan that can't be completed (an ambiguous declaration, a
// non-constant range) is simply omitted; a structural precondition
// failure across the whole tree is a MutationError instead.
type SubMutator interface {
	// Name identifies the sub-mutator for logging and percentage-based
	// candidate-pool retention.
	Name() string
	// Priority is the fixed score offset spec.md's default configuration
	// assigns this sub-mutator (scaled by priorityCoefficient).
	Priority() int
	// Percentage is this sub-mutator's share of the candidate pool cap,
	// already normalized so all percentages across the active set sum to 1.
	Percentage() float64
	// MutatePlans returns every replacement-set plan this sub-mutator finds
	// in root.
	MutatePlans(root *sitter.Node, source []byte, rnd *rand.Rand) ([][]Replacement, error)
}

type baseMutator struct {
	name       string
	priority   int
	percentage float64
}

func (b baseMutator) Name() string        { return b.name }
func (b baseMutator) Priority() int       { return b.priority }
func (b baseMutator) Percentage() float64 { return b.percentage }

func (b *baseMutator) configure(priority int, percentage float64) {
	b.priority = priority
	b.percentage = percentage
}

// CandidateMutant is one scored, not-yet-applied mutation plan.
type CandidateMutant struct {
	Source       SubMutator
	Tree         *sitter.Tree
	Text         []byte
	Replacements []Replacement
	Cov          *ByteCoverage
}

// Score is priority*coefficient + the coverage-weighted novelty of this
// plan's byte ranges — spec.md §4.H's scheduling signal.
func (c *CandidateMutant) Score() float64 {
	return float64(c.Source.Priority())*priorityCoefficient + c.Cov.Query(c.Replacements)
}

// Realize applies this candidate's replacements to a fresh copy of the
// source, updates Cov, and reparses. Callers should treat the returned
// tree/text as the new seed on acceptance.
func (c *CandidateMutant) Realize() (*sitter.Tree, []byte, error) {
	editor := NewBytesEditor(c.Text, c.Replacements)
	c.Cov.Update(editor.Replacements)
	editor.Apply()
	tree, err := parseVerilog(editor.Data)
	if err != nil {
		return nil, nil, err
	}
	return tree, editor.Data, nil
}

// --- ChangeUnaryOp ---

type changeUnaryOp struct{ baseMutator }

func newChangeUnaryOp() *changeUnaryOp { return &changeUnaryOp{baseMutator{name: "ChangeUnaryOp"}} }

func (m *changeUnaryOp) MutatePlans(root *sitter.Node, source []byte, rnd *rand.Rand) ([][]Replacement, error) {
	var plans [][]Replacement
	for _, mm := range patternMatch(queryUnaryExpressions, root, source) {
		uop, expr := mm.node("uop"), mm.node("expr")
		if uop == nil || expr == nil {
			continue
		}
		plans = append(plans, []Replacement{
			{StartByte: uop.StartByte(), EndByte: uop.EndByte(), Substitute: []byte(choice(rnd, unaryOperators))},
			{StartByte: expr.StartByte(), EndByte: expr.StartByte(), Substitute: []byte("(")},
			{StartByte: expr.EndByte(), EndByte: expr.EndByte(), Substitute: []byte(")")},
		})
	}
	return plans, nil
}

// --- ChangeBinaryOp ---

type changeBinaryOp struct{ baseMutator }

func newChangeBinaryOp() *changeBinaryOp { return &changeBinaryOp{baseMutator{name: "ChangeBinaryOp"}} }

func (m *changeBinaryOp) MutatePlans(root *sitter.Node, source []byte, rnd *rand.Rand) ([][]Replacement, error) {
	var plans [][]Replacement
	for _, mm := range patternMatch(queryBinaryExpressions, root, source) {
		bop := mm.node("bop")
		if bop == nil {
			continue
		}
		plans = append(plans, []Replacement{
			{StartByte: bop.StartByte(), EndByte: bop.EndByte(), Substitute: []byte(choice(rnd, binaryOperators))},
		})
	}
	return plans, nil
}

// --- DuplicateExpr ---

type duplicateExpr struct{ baseMutator }

func newDuplicateExpr() *duplicateExpr { return &duplicateExpr{baseMutator{name: "DuplicateExpr"}} }

func (m *duplicateExpr) MutatePlans(root *sitter.Node, source []byte, rnd *rand.Rand) ([][]Replacement, error) {
	var plans [][]Replacement
	for _, mm := range patternMatch(queryRHSExpressions, root, source) {
		outer := mm.node("expr")
		if outer == nil {
			continue
		}
		var subs []*sitter.Node
		for _, sm := range patternMatch(queryAllExpressions, outer, source) {
			if n := sm.node("expr"); n != nil {
				subs = append(subs, n)
			}
		}
		if len(subs) == 0 {
			continue
		}
		expr := choice(rnd, subs)
		operand := expr.Content(source)
		inserted := fmt.Sprintf("(%s %s %s)", operand, choice(rnd, binaryOperators), operand)
		plans = append(plans, []Replacement{
			{StartByte: expr.StartByte(), EndByte: expr.EndByte(), Substitute: []byte(inserted)},
		})
	}
	return plans, nil
}

// --- MakeRepeat ---

type makeRepeat struct{ baseMutator }

func newMakeRepeat() *makeRepeat { return &makeRepeat{baseMutator{name: "MakeRepeat"}} }

func (m *makeRepeat) MutatePlans(root *sitter.Node, source []byte, rnd *rand.Rand) ([][]Replacement, error) {
	var plans [][]Replacement
	for _, mm := range patternMatch(queryAllStatementOrNull, root, source) {
		stmt := mm.node("stmt")
		if stmt == nil {
			continue
		}
		parent, err := parentOf(stmt, root)
		if err != nil {
			continue
		}
		loc, err := declInsertLocation(parent)
		if err != nil {
			continue
		}
		param := randomID(rnd, 5)
		plans = append(plans, []Replacement{
			{StartByte: loc, EndByte: loc, Substitute: []byte(fmt.Sprintf("parameter %s = 1;\n", param))},
			{StartByte: stmt.StartByte(), EndByte: stmt.StartByte(), Substitute: []byte(fmt.Sprintf("repeat (%s) ", param))},
		})
	}
	return plans, nil
}

// --- MakeLoopGenerate ---

type makeLoopGenerate struct{ baseMutator }

func newMakeLoopGenerate() *makeLoopGenerate {
	return &makeLoopGenerate{baseMutator{name: "MakeLoopGenerate"}}
}

func (m *makeLoopGenerate) MutatePlans(root *sitter.Node, source []byte, rnd *rand.Rand) ([][]Replacement, error) {
	var plans [][]Replacement
	for _, mm := range patternMatch(queryModuleOrGenerateItems, root, source) {
		item := mm.node("item")
		if item == nil {
			continue
		}
		parent, err := parentOf(item, root)
		if err != nil {
			continue
		}
		loc, err := declInsertLocation(parent)
		if err != nil {
			continue
		}
		genvar := randomID(rnd, 3)
		body := fmt.Sprintf(verilogGenerateTemplate, genvar, item.Content(source))
		plans = append(plans, []Replacement{
			{StartByte: loc, EndByte: loc, Substitute: []byte(fmt.Sprintf("genvar %s;\n", genvar))},
			{StartByte: item.StartByte(), EndByte: item.EndByte(), Substitute: []byte(body)},
		})
	}
	return plans, nil
}

// --- DuplicateCond1: merge two independent conditions into one ---

type duplicateCond1 struct{ baseMutator }

func newDuplicateCond1() *duplicateCond1 { return &duplicateCond1{baseMutator{name: "DuplicateCond1"}} }

func (m *duplicateCond1) MutatePlans(root *sitter.Node, source []byte, rnd *rand.Rand) ([][]Replacement, error) {
	var plans [][]Replacement
	for _, mod := range patternMatch(queryAllModuleDeclarations, root, source) {
		module := mod.node("module")
		if module == nil {
			continue
		}
		var conds []*sitter.Node
		for _, mm := range patternMatch(queryCondStatement1+queryCondStatement2, module, source) {
			if c := mm.node("cond"); c != nil {
				conds = append(conds, c)
			}
		}
		for i := 0; i < len(conds); i++ {
			for j := i + 1; j < len(conds); j++ {
				a, b := conds[i], conds[j]
				combined := fmt.Sprintf("%s %s %s", a.Content(source), choice(rnd, binaryOperators), b.Content(source))
				plans = append(plans, []Replacement{
					{StartByte: a.StartByte(), EndByte: a.EndByte(), Substitute: []byte(combined)},
					{StartByte: b.StartByte(), EndByte: b.EndByte(), Substitute: []byte(combined)},
				})
			}
		}
	}
	return plans, nil
}

// --- DuplicateCond2: hoist a then/else branch's nonblocking assignment
// into its own guarded copy ---

type duplicateCond2 struct{ baseMutator }

func newDuplicateCond2() *duplicateCond2 { return &duplicateCond2{baseMutator{name: "DuplicateCond2"}} }

func (m *duplicateCond2) extractNBA(cond, stmt *sitter.Node, ifLocation uint32, source []byte) [][]Replacement {
	var plans [][]Replacement
	for _, mm := range patternMatch(queryNonblockingAssignments, stmt, source) {
		nba := mm.node("nba")
		if nba == nil {
			continue
		}
		guarded := fmt.Sprintf(verilogCondTemplate, cond.Content(source), nba.Content(source))
		plans = append(plans, []Replacement{
			{StartByte: nba.StartByte(), EndByte: nba.EndByte(), Substitute: nil},
			{StartByte: ifLocation, EndByte: ifLocation, Substitute: []byte(guarded)},
		})
	}
	return plans
}

func (m *duplicateCond2) MutatePlans(root *sitter.Node, source []byte, rnd *rand.Rand) ([][]Replacement, error) {
	var plans [][]Replacement
	for _, mod := range patternMatch(queryAllModuleDeclarations, root, source) {
		module := mod.node("module")
		if module == nil {
			continue
		}
		for _, mm := range patternMatch(queryCondStatement1, module, source) {
			stmt, cond := mm.node("stmt"), mm.node("cond")
			if stmt == nil || cond == nil {
				continue
			}
			plans = append(plans, m.extractNBA(cond, stmt, stmt.EndByte(), source)...)
		}
		for _, mm := range patternMatch(queryCondStatement2, module, source) {
			cond := mm.node("cond")
			stmts := mm["stmt"]
			if cond == nil || len(stmts) != 2 {
				continue
			}
			for _, stmt := range stmts {
				plans = append(plans, m.extractNBA(cond, stmt, stmt.EndByte(), source)...)
			}
		}
	}
	return plans, nil
}

// --- RemoveCond ---

type removeCond struct{ baseMutator }

func newRemoveCond() *removeCond { return &removeCond{baseMutator{name: "RemoveCond"}} }

func (m *removeCond) MutatePlans(root *sitter.Node, source []byte, rnd *rand.Rand) ([][]Replacement, error) {
	var plans [][]Replacement
	for _, mm := range patternMatch(queryCondStatement1, root, source) {
		stmt, ifNode := mm.node("stmt"), mm.node("if")
		if stmt == nil || ifNode == nil {
			continue
		}
		plans = append(plans, []Replacement{
			{StartByte: ifNode.StartByte(), EndByte: ifNode.EndByte(), Substitute: []byte(stmt.Content(source))},
		})
	}
	for _, mm := range patternMatch(queryCondStatement2, root, source) {
		stmts, ifNode := mm["stmt"], mm.node("if")
		if len(stmts) != 2 || ifNode == nil {
			continue
		}
		merged := stmts[0].Content(source) + "\n" + stmts[1].Content(source)
		plans = append(plans, []Replacement{
			{StartByte: ifNode.StartByte(), EndByte: ifNode.EndByte(), Substitute: []byte(merged)},
		})
	}
	return plans, nil
}

// --- SplitAssignment ---

type splitAssignment struct{ baseMutator }

func newSplitAssignment() *splitAssignment { return &splitAssignment{baseMutator{name: "SplitAssignment"}} }

func isBareConcatenation(rvalue *sitter.Node) bool {
	if rvalue.ChildCount() == 0 {
		return false
	}
	primary := rvalue.Child(0)
	if primary.ChildCount() == 0 {
		return false
	}
	return primary.Child(0).Type() == "concatenation"
}

func makeBitAssignments(assign, lvalue, rvalue *sitter.Node, msb, lsb int, isNBA bool, source []byte) []byte {
	lo, hi := msb, lsb
	if lo > hi {
		lo, hi = hi, lo
	}
	full := assign.Content(source)
	base := int(assign.StartByte())
	lvEndOff := int(lvalue.EndByte()) - base
	rvStartOff := int(rvalue.StartByte()) - base
	rvEndOff := int(rvalue.EndByte()) - base
	r0 := full[:lvEndOff]
	r1 := full[lvEndOff:rvStartOff]
	r2 := full[rvStartOff:rvEndOff]
	r3 := full[rvEndOff:]

	var lines []string
	for i := lo; i <= hi; i++ {
		idx := fmt.Sprintf("%d", i)
		lines = append(lines, r0+"["+idx+"]"+r1+"("+r2+") >> "+idx+r3)
	}
	out := strings.Join(lines, "\n")
	if isNBA {
		out = "\nbegin\n" + out + "\nend\n"
	}
	return []byte(out)
}

func (m *splitAssignment) MutatePlans(root *sitter.Node, source []byte, rnd *rand.Rand) ([][]Replacement, error) {
	var plans [][]Replacement
	for _, mm := range patternMatch(queryCANoSelectInLHS+queryNBANoSelectInLHS, root, source) {
		assign, lvalue, rvalue := mm.node("assignment"), mm.node("lvalue"), mm.node("rvalue")
		if assign == nil || lvalue == nil || rvalue == nil {
			continue
		}
		if isBareConcatenation(rvalue) {
			continue
		}
		parent, err := parentOf(lvalue, root)
		if err != nil {
			continue
		}
		msb, lsb, err := shapeOf(lvalue.Content(source), parent, source)
		if err != nil {
			continue
		}
		body := makeBitAssignments(assign, lvalue, rvalue, msb, lsb, assign.Type() == "statement_item", source)
		plans = append(plans, []Replacement{
			{StartByte: assign.StartByte(), EndByte: assign.EndByte(), Substitute: body},
		})
	}
	return plans, nil
}

// --- LoopAssignment ---

type loopAssignment struct{ baseMutator }

func newLoopAssignment() *loopAssignment { return &loopAssignment{baseMutator{name: "LoopAssignment"}} }

func (m *loopAssignment) MutatePlans(root *sitter.Node, source []byte, rnd *rand.Rand) ([][]Replacement, error) {
	var plans [][]Replacement
	for _, mm := range patternMatch(queryCANoSelectInLHS, root, source) {
		assign, lvalue, rvalue := mm.node("assignment"), mm.node("lvalue"), mm.node("rvalue")
		if assign == nil || lvalue == nil || rvalue == nil {
			continue
		}
		if isBareConcatenation(rvalue) {
			continue
		}
		parent, err := parentOf(lvalue, root)
		if err != nil {
			continue
		}
		msbText, lsbText, err := rangeOf(lvalue.Content(source), parent, source)
		if err != nil {
			continue
		}
		end, start := msbText, lsbText // NOTE: assumes msb >= lsb, matching the original
		genvar := randomID(rnd, 5)
		insLoc, err := declInsertLocation(parent)
		if err != nil {
			continue
		}
		forLoop := fmt.Sprintf(verilogLoopTemplate, genvar, start, end)
		plans = append(plans, []Replacement{
			{StartByte: insLoc, EndByte: insLoc, Substitute: []byte(fmt.Sprintf("genvar %s;\n", genvar))},
			{StartByte: assign.StartByte(), EndByte: assign.StartByte(), Substitute: []byte(forLoop)},
			{StartByte: lvalue.EndByte(), EndByte: lvalue.EndByte(), Substitute: []byte("[" + genvar + "]")},
			{StartByte: rvalue.StartByte(), EndByte: rvalue.StartByte(), Substitute: []byte("(")},
			{StartByte: rvalue.EndByte(), EndByte: rvalue.EndByte(), Substitute: []byte(") >> " + genvar)},
		})
	}
	return plans, nil
}

// --- RedundantAssignment ---

type redundantAssignment struct{ baseMutator }

func newRedundantAssignment() *redundantAssignment {
	return &redundantAssignment{baseMutator{name: "RedundantAssignment"}}
}

func (m *redundantAssignment) MutatePlans(root *sitter.Node, source []byte, rnd *rand.Rand) ([][]Replacement, error) {
	var plans [][]Replacement
	for _, mm := range patternMatch(queryCANoSelectInLHS+queryNBANoSelectInLHS, root, source) {
		assign, lvalue := mm.node("assignment"), mm.node("lvalue")
		if assign == nil || lvalue == nil {
			continue
		}
		parent, err := parentOf(lvalue, root)
		if err != nil {
			continue
		}
		msbText, lsbText, err := rangeOf(lvalue.Content(source), parent, source)
		if err != nil {
			continue
		}
		index := choice(rnd, []string{msbText, lsbText})
		suffix := []byte("[" + index + "]")

		var ids []*sitter.Node
		for _, idm := range patternMatch(queryAllIdentifiersWithoutSelect, assign, source) {
			if id := idm.node("identifier"); id != nil {
				ids = append(ids, id)
			}
		}
		var plan []Replacement
		for _, id := range ids {
			plan = append(plan, Replacement{StartByte: id.EndByte(), EndByte: id.EndByte(), Substitute: suffix})
		}
		prefix, end := "", ""
		if assign.Type() == "statement_item" {
			prefix, end = "\nbegin\n", "\nend\n"
		}
		plan = append(plan,
			Replacement{StartByte: assign.StartByte(), EndByte: assign.StartByte(), Substitute: []byte(prefix + assign.Content(source))},
			Replacement{StartByte: assign.EndByte(), EndByte: assign.EndByte(), Substitute: []byte(end)},
		)
		plans = append(plans, plan)
	}
	return plans, nil
}

// --- MakeArray ---

type makeArray struct{ baseMutator }

func newMakeArray() *makeArray { return &makeArray{baseMutator{name: "MakeArray"}} }

func cartesian(shape []int) [][]int {
	out := [][]int{{}}
	for _, s := range shape {
		var next [][]int
		for _, prefix := range out {
			for i := 0; i < s; i++ {
				idx := append(append([]int{}, prefix...), i)
				next = append(next, idx)
			}
		}
		out = next
	}
	return out
}

func joinIndices(identifier string, idx []int) string {
	var b strings.Builder
	b.WriteString(identifier)
	for _, i := range idx {
		fmt.Fprintf(&b, "[%d]", i)
	}
	return b.String()
}

func (m *makeArray) completeRef(rnd *rand.Rand, identifier string, shape []int) []byte {
	var all []string
	for _, idx := range cartesian(incShape(shape)) {
		all = append(all, joinIndices(identifier, idx))
	}
	rnd.Shuffle(len(all), func(i, j int) { all[i], all[j] = all[j], all[i] })
	return []byte("{" + strings.Join(all, ",") + "}")
}

func incShape(shape []int) []int {
	out := make([]int, len(shape))
	for i, s := range shape {
		out[i] = s + 1
	}
	return out
}

func product(shape []int) int {
	p := 1
	for _, s := range shape {
		p *= s
	}
	return p
}

func (m *makeArray) partialRef(rnd *rand.Rand, identifier string, shape []int) []byte {
	all := cartesian(shape)
	var refs []string
	for _, idx := range all {
		refs = append(refs, joinIndices(identifier, idx))
	}
	k := 1 + rnd.Intn(product(shape))
	chosen := pickWithReplacement(rnd, refs, k)
	return []byte("{" + strings.Join(chosen, ",") + "}")
}

func pickWithReplacement(rnd *rand.Rand, items []string, n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = items[rnd.Intn(len(items))]
	}
	return out
}

func (m *makeArray) updateRef(root *sitter.Node, identifier string, shape []int, source []byte, rnd *rand.Rand) []Replacement {
	var plan []Replacement
	for _, mm := range patternMatch(fmt.Sprintf(queryAllReferences, identifier), root, source) {
		if ref := mm.node("id-lhs"); ref != nil {
			plan = append(plan, Replacement{StartByte: ref.StartByte(), EndByte: ref.EndByte(), Substitute: m.completeRef(rnd, identifier, shape)})
		} else if ref := mm.node("id-in-expr"); ref != nil {
			plan = append(plan, Replacement{StartByte: ref.StartByte(), EndByte: ref.EndByte(), Substitute: m.partialRef(rnd, identifier, shape)})
		}
	}
	return plan
}

func (m *makeArray) declarationSuffix(rnd *rand.Rand, shape []int) []byte {
	var b strings.Builder
	for _, size := range shape {
		if rnd.Intn(2) == 0 {
			fmt.Fprintf(&b, "[0:%d]", size)
		} else {
			fmt.Fprintf(&b, "[%d:0]", size)
		}
	}
	return []byte(b.String())
}

func (m *makeArray) MutatePlans(root *sitter.Node, source []byte, rnd *rand.Rand) ([][]Replacement, error) {
	var plans [][]Replacement
	for _, mm := range patternMatch(queryAllNonArrayItemDeclarations, root, source) {
		identifier, declAssign := mm.node("identifier"), mm.node("decl_assignment")
		if identifier == nil || declAssign == nil {
			continue
		}
		module, err := parentOf(identifier, root)
		if err != nil || module.Type() != "module_declaration" {
			continue
		}
		dims := 1 + rnd.Intn(2)
		shape := make([]int, dims)
		for i := range shape {
			shape[i] = 2 + rnd.Intn(4)
		}
		idText := identifier.Content(source)
		plan := []Replacement{
			{StartByte: identifier.EndByte(), EndByte: declAssign.EndByte(), Substitute: m.declarationSuffix(rnd, shape)},
		}
		plan = append(plan, m.updateRef(module, idText, shape, source, rnd)...)
		plans = append(plans, plan)
	}
	return plans, nil
}

// --- MakeFunction ---

type makeFunction struct{ baseMutator }

func newMakeFunction() *makeFunction { return &makeFunction{baseMutator{name: "MakeFunction"}} }

func (m *makeFunction) replaceableExprs(module *sitter.Node, source []byte) []*sitter.Node {
	var seeds []*sitter.Node
	for _, mm := range patternMatch(queryRHSExpressions, module, source) {
		if n := mm.node("expr"); n != nil {
			seeds = append(seeds, n)
		}
	}
	for _, mm := range patternMatch(queryCondStatement1+queryCondStatement2, module, source) {
		if n := mm.node("if"); n != nil {
			seeds = append(seeds, n)
		}
	}
	var out []*sitter.Node
	for _, s := range seeds {
		for _, mm := range patternMatch(queryAllExpressions, s, source) {
			if n := mm.node("expr"); n != nil {
				out = append(out, n)
			}
		}
	}
	return out
}

func (m *makeFunction) chooseArguments(rnd *rand.Rand, exprs []*sitter.Node, n int, source []byte) string {
	chosen := pickWithReplacementNodes(rnd, exprs, n)
	var parts []string
	for _, e := range chosen {
		parts = append(parts, "("+e.Content(source)+")")
	}
	return strings.Join(parts, ", ")
}

func pickWithReplacementNodes(rnd *rand.Rand, items []*sitter.Node, n int) []*sitter.Node {
	out := make([]*sitter.Node, n)
	for i := range out {
		out[i] = items[rnd.Intn(len(items))]
	}
	return out
}

func (m *makeFunction) toBeReplaced(rnd *rand.Rand, exprs []*sitter.Node, n int) []*sitter.Node {
	chosen := pickN(rnd, exprs, n)
	sortByStart(chosen)
	var out []*sitter.Node
	minStart := uint32(0)
	for _, node := range chosen {
		if node.StartByte() >= minStart {
			out = append(out, node)
			minStart = node.EndByte()
		}
	}
	return out
}

func sortByStart(nodes []*sitter.Node) {
	for i := 1; i < len(nodes); i++ {
		for j := i; j > 0 && nodes[j-1].StartByte() > nodes[j].StartByte(); j-- {
			nodes[j-1], nodes[j] = nodes[j], nodes[j-1]
		}
	}
}

func (m *makeFunction) makeFuncDecl(rnd *rand.Rand, module *sitter.Node, funcName string, source []byte) (string, int, bool) {
	var rhsExprs []*sitter.Node
	for _, mm := range patternMatch(queryRHSExpressions, module, source) {
		if n := mm.node("expr"); n != nil {
			rhsExprs = append(rhsExprs, n)
		}
	}
	if len(rhsExprs) == 0 {
		return "", 0, false
	}
	body := choice(rnd, rhsExprs)

	seen := map[string]bool{}
	var ids []string
	for _, mm := range patternMatch(queryAllIdentifiersInExpr, body, source) {
		if id := mm.node("identifier"); id != nil {
			text := id.Content(source)
			if !seen[text] {
				seen[text] = true
				ids = append(ids, text)
			}
		}
	}
	var inputs []string
	for _, id := range ids {
		t, err := typeOf(id, module, source)
		if err != nil {
			t = ""
		}
		inputs = append(inputs, fmt.Sprintf("input %s %s;", t, id))
	}
	decl := fmt.Sprintf(verilogFuncDeclTemplate, funcName, strings.Join(inputs, "\n"), body.Content(source))
	return decl, len(ids), true
}

func (m *makeFunction) MutatePlans(root *sitter.Node, source []byte, rnd *rand.Rand) ([][]Replacement, error) {
	var plans [][]Replacement
	for _, mod := range patternMatch(queryAllModuleDeclarations, root, source) {
		module := mod.node("module")
		if module == nil {
			continue
		}
		loc, err := declInsertLocation(module)
		if err != nil {
			continue
		}
		funcName := randomID(rnd, 5)
		exprs := m.replaceableExprs(module, source)
		if len(exprs) == 0 {
			continue
		}
		decl, paramCount, ok := m.makeFuncDecl(rnd, module, funcName, source)
		if !ok {
			continue
		}
		maxReplacements := int(math.Ceil(math.Log10(float64(len(exprs))))) + 1
		n := 1 + rnd.Intn(maxReplacements)
		if n > len(exprs) {
			n = len(exprs)
		}
		targets := m.toBeReplaced(rnd, exprs, n)
		if len(targets) == 0 {
			continue
		}
		plan := []Replacement{{StartByte: loc, EndByte: loc, Substitute: []byte(decl)}}
		for _, t := range targets {
			call := fmt.Sprintf("%s(%s)", funcName, m.chooseArguments(rnd, exprs, paramCount, source))
			plan = append(plan, Replacement{StartByte: t.StartByte(), EndByte: t.EndByte(), Substitute: []byte(call)})
		}
		plans = append(plans, plan)
	}
	return plans, nil
}

// --- DuplicateModule ---

type duplicateModule struct{ baseMutator }

func newDuplicateModule() *duplicateModule { return &duplicateModule{baseMutator{name: "DuplicateModule"}} }

func (m *duplicateModule) MutatePlans(root *sitter.Node, source []byte, rnd *rand.Rand) ([][]Replacement, error) {
	var plans [][]Replacement
	for _, mm := range patternMatch(queryAllModuleDeclarations, root, source) {
		module, moduleName := mm.node("module"), mm.node("module_name")
		if module == nil || moduleName == nil {
			continue
		}
		oldName := moduleName.Content(source)
		newName := oldName + randomID(rnd, 3)

		var instantiations []*sitter.Node
		for _, im := range patternMatch(fmt.Sprintf(queryAllModuleInstantiations, oldName), root, source) {
			if n := im.node("module_name"); n != nil {
				instantiations = append(instantiations, n)
			}
		}
		if len(instantiations) < 2 {
			continue
		}
		k := 1 + rnd.Intn(len(instantiations)-1)
		chosen := pickN(rnd, instantiations, k)

		plan := []Replacement{
			{StartByte: moduleName.StartByte(), EndByte: moduleName.EndByte(), Substitute: []byte(newName)},
		}
		for _, inst := range chosen {
			plan = append(plan, Replacement{StartByte: inst.StartByte(), EndByte: inst.EndByte(), Substitute: []byte(newName)})
		}
		plan = append(plan, Replacement{
			StartByte: root.EndByte(), EndByte: root.EndByte(), Substitute: []byte("\n" + module.Content(source)),
		})
		plans = append(plans, plan)
	}
	return plans, nil
}

// DefaultSubMutators builds spec.md's default configuration: fourteen
// sub-mutators, each with its fixed priority and a percentage normalized
// against the others' weights (candidate-pool retention quotas sum to 1
// across this set).
type configurable interface {
	configure(priority int, percentage float64)
}

func DefaultSubMutators() []SubMutator {
	type entry struct {
		m        SubMutator
		weight   float64
		priority int
	}
	raw := []entry{
		{newChangeUnaryOp(), 1, 0},
		{newChangeBinaryOp(), 1, 0},
		{newMakeLoopGenerate(), 1, 0},
		{newMakeRepeat(), 1, 0},
		{newRedundantAssignment(), 2, 0},
		{newRemoveCond(), 2, 1},
		{newDuplicateModule(), 2, 1},
		{newDuplicateExpr(), 2, 1},
		{newDuplicateCond1(), 3, 1},
		{newDuplicateCond2(), 3, 1},
		{newMakeFunction(), 3, 2},
		{newSplitAssignment(), 3, 0},
		{newMakeArray(), 5, 1},
		{newLoopAssignment(), 5, 2},
	}
	var total float64
	for _, e := range raw {
		total += e.weight
	}
	out := make([]SubMutator, len(raw))
	for i, e := range raw {
		if c, ok := e.m.(configurable); ok {
			c.configure(e.priority, e.weight/total)
		}
		out[i] = e.m
	}
	return out
}
