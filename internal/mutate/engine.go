package mutate

import (
	"context"
	"encoding/base64"
	"fmt"
	"math/rand"
	"sort"

	sitter "github.com/smacker/go-tree-sitter"

	"verihammer/internal/ir"
)

func parseVerilog(source []byte) (*sitter.Tree, error) {
	parser := sitter.NewParser()
	parser.SetLanguage(ir.VerilogLanguage())
	return parser.ParseCtx(nil, nil, source)
}

// Validator runs a mutant's source through semantic elaboration and
// reports whether the toolchain still accepts it — the engine's gate
// between "parses" and "is worth emitting".
type Validator interface {
	Validate(ctx context.Context, source []byte, suffix string) (bool, error)
}

// Engine runs the heuristic mutation loop of spec.md §4.H: collect
// candidates from every configured sub-mutator, repeatedly realize the
// highest-scoring (or, half the time, a random) one, keep it if the
// toolchain still accepts it, and propagate its own candidates back into
// the pool.
type Engine struct {
	SubMutators []SubMutator
	Validator   Validator
	Rand        *rand.Rand

	// HasError records whether any sub-mutator raised a MutationError or
	// any accepted mutant reparsed with a syntax error, mirroring the
	// original's has_error flag. Neither condition aborts the run.
	HasError bool
	// ErrorSources holds the offending source text for each such event,
	// the Go stand-in for the original's "save to workspace and keep
	// going" diagnostic trail.
	ErrorSources [][]byte
}

// NewEngine builds an Engine over the given sub-mutators (DefaultSubMutators
// for spec.md's stock configuration) with a fixed rand seed when rnd is nil.
func NewEngine(subMutators []SubMutator, validator Validator, rnd *rand.Rand) *Engine {
	if rnd == nil {
		rnd = rand.New(rand.NewSource(1))
	}
	return &Engine{SubMutators: subMutators, Validator: validator, Rand: rnd}
}

type pooledCandidate struct {
	mutator SubMutator
	cand    *CandidateMutant
}

// candidatesOf collects every sub-mutator's plans over tree/text, keyed
// by sub-mutator so the pool-trimming step can apply per-mutator
// percentage quotas.
func (e *Engine) candidatesOf(tree *sitter.Tree, text []byte, cov *ByteCoverage) map[string][]*CandidateMutant {
	out := map[string][]*CandidateMutant{}
	for _, sm := range e.SubMutators {
		plans, err := sm.MutatePlans(tree.RootNode(), text, e.Rand)
		if err != nil {
			e.HasError = true
			e.ErrorSources = append(e.ErrorSources, text)
			continue
		}
		for _, rs := range plans {
			out[sm.Name()] = append(out[sm.Name()], &CandidateMutant{
				Source: sm, Tree: tree, Text: text, Replacements: rs, Cov: cov,
			})
		}
	}
	return out
}

// Generate runs the mutation loop over seed, producing up to number
// validated mutant sources.
func (e *Engine) Generate(ctx context.Context, seed []byte, suffix string, number int) ([][]byte, error) {
	maxNum := number * 3

	seedTree, err := parseVerilog(seed)
	if err != nil {
		return nil, fmt.Errorf("mutate: parsing seed: %w", err)
	}

	cov := NewByteCoverage(0, uint32(len(seed)))
	candidates := e.candidatesOf(seedTree, seed, cov)

	var results [][]byte
	for n := 0; n < number; n++ {
		pool := flatten(candidates)
		sortByScoreDesc(pool)

		for len(pool) > 0 {
			idx := 0
			if e.Rand.Float64() >= randomSelectionRate {
				idx = e.Rand.Intn(len(pool))
			}
			chosen := pool[idx]
			pool = append(pool[:idx], pool[idx+1:]...)

			mutantTree, mutantText, err := chosen.cand.Realize()
			if err != nil {
				continue
			}

			ok, err := e.Validator.Validate(ctx, mutantText, suffix)
			if err != nil {
				return nil, fmt.Errorf("mutate: validating mutant: %w", err)
			}
			if !ok {
				continue
			}
			results = append(results, mutantText)

			if mutantTree.RootNode().HasError() {
				e.HasError = true
				e.ErrorSources = append(e.ErrorSources, mutantText)
			} else {
				for name, mutants := range e.candidatesOf(mutantTree, mutantText, chosen.cand.Cov) {
					candidates[name] = append(candidates[name], mutants...)
				}
				trimPool(candidates, maxNum, e.SubMutators)
			}
			break
		}
	}
	return results, nil
}

func flatten(byMutator map[string][]*CandidateMutant) []pooledCandidate {
	var out []pooledCandidate
	for _, cands := range byMutator {
		for _, c := range cands {
			out = append(out, pooledCandidate{mutator: c.Source, cand: c})
		}
	}
	return out
}

func sortByScoreDesc(pool []pooledCandidate) {
	sort.Slice(pool, func(i, j int) bool { return pool[i].cand.Score() > pool[j].cand.Score() })
}

// trimPool caps the total candidate count at maxNum, keeping each
// sub-mutator's highest-scoring share of its configured percentage —
// spec.md §4.H's pool-propagation rule.
func trimPool(candidates map[string][]*CandidateMutant, maxNum int, subMutators []SubMutator) {
	total := 0
	for _, c := range candidates {
		total += len(c)
	}
	capped := total
	if capped > maxNum {
		capped = maxNum
	}
	percentageOf := map[string]float64{}
	for _, sm := range subMutators {
		percentageOf[sm.Name()] = sm.Percentage()
	}
	for name, cands := range candidates {
		expected := int(float64(capped) * percentageOf[name])
		if expected < len(cands) {
			sort.Slice(cands, func(i, j int) bool { return cands[i].Score() > cands[j].Score() })
			candidates[name] = cands[:expected]
		}
	}
}

// NormalizeEscapedIdentifiers rewrites every Verilog escaped identifier
// (`\foo+bar `) in source into a plain identifier tree-sitter can parse
// unambiguously, by base64-encoding the escaped text. Most sub-mutators
// assume simple_identifier nodes. Neither Engine.Generate nor
// orchestrate.Mutate calls it: sources reach the engine unnormalized.
func NormalizeEscapedIdentifiers(source []byte) ([]byte, error) {
	tree, err := parseVerilog(source)
	if err != nil {
		return nil, err
	}
	var ids []*sitter.Node
	for _, mm := range patternMatch(queryAllEscapedIdentifiers, tree.RootNode(), source) {
		if id := mm.node("identifier"); id != nil {
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		return source, nil
	}
	var rs []Replacement
	for _, id := range ids {
		rs = append(rs, Replacement{
			StartByte:  id.StartByte(),
			EndByte:    id.EndByte(),
			Substitute: []byte(simplifyEscapedIdentifier(id.Content(source))),
		})
	}
	editor := NewBytesEditor(source, rs)
	editor.Apply()
	return editor.Data, nil
}

func simplifyEscapedIdentifier(escaped string) string {
	enc := base64.NewEncoding("ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789$_").WithPadding(base64.NoPadding)
	return "___" + enc.EncodeToString([]byte(escaped))
}
