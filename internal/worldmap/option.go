package worldmap

import (
	"fmt"
	"math/rand"

	"verihammer/internal/circuit"
)

// CmdlineOption is a sampleable command-line flag template, e.g.
// "-nolatches" or "--timescale=%s". Domain lists every value the
// placeholder can take; a CmdlineOption with a nil domain always
// formats with no substitution.
type CmdlineOption struct {
	Template string
	Domain   []string
}

// Sample draws one formatted flag string using rnd, substituting a
// random domain value into Template's single "%s" verb (or returning
// Template unchanged if it has none).
func (o CmdlineOption) Sample(rnd *rand.Rand) string {
	if len(o.Domain) == 0 {
		return o.Template
	}
	v := o.Domain[rnd.Intn(len(o.Domain))]
	if !containsVerb(o.Template) {
		return o.Template
	}
	return fmt.Sprintf(o.Template, v)
}

func containsVerb(s string) bool {
	for i := 0; i < len(s)-1; i++ {
		if s[i] == '%' && s[i+1] == 's' {
			return true
		}
	}
	return false
}

// Count is the number of distinct values this option contributes to a
// translator's instance space, including "absent" (+1), mirroring the
// original's instance_count per-option factor.
func (o CmdlineOption) Count() int {
	return len(o.Domain) + 1
}

// InstanceCount returns the size of a translator factory's full
// configuration space: the product of each alternative option's Count.
func InstanceCount(f TranslatorFactory) int {
	n := 1
	for _, o := range f.AlternativeOptions() {
		n *= o.Count()
	}
	return n
}

// AllInstances enumerates every combination of 0 to maxOp-1
// simultaneously-chosen options from f's alternative set (maxOp is an
// exclusive bound) and yields one Translator per combination,
// mirroring all_instances' reservoir over itertools.combinations. When f
// exposes no alternative options, a single unconfigured instance is
// returned.
func AllInstances(f TranslatorFactory, maxOp int, rnd *rand.Rand) []Translator {
	opts := f.AlternativeOptions()
	if len(opts) == 0 {
		return []Translator{f.New(nil)}
	}
	var out []Translator
	for opCnt := 0; opCnt < maxOp; opCnt++ {
		for _, combo := range combinations(opts, opCnt) {
			chosen := make([]CmdlineOption, len(combo))
			copy(chosen, combo)
			out = append(out, f.New(chosen))
		}
	}
	return out
}

// combinations returns every opCnt-length subsequence of items,
// preserving order, mirroring itertools.combinations.
func combinations(items []CmdlineOption, opCnt int) [][]CmdlineOption {
	n := len(items)
	if opCnt < 0 || opCnt > n {
		return nil
	}
	if opCnt == 0 {
		return [][]CmdlineOption{{}}
	}
	var out [][]CmdlineOption
	idx := make([]int, opCnt)
	for i := range idx {
		idx[i] = i
	}
	for {
		combo := make([]CmdlineOption, opCnt)
		for i, ix := range idx {
			combo[i] = items[ix]
		}
		out = append(out, combo)

		i := opCnt - 1
		for i >= 0 && idx[i] == i+n-opCnt {
			i--
		}
		if i < 0 {
			break
		}
		idx[i]++
		for j := i + 1; j < opCnt; j++ {
			idx[j] = idx[j-1] + 1
		}
	}
	return out
}

// AllConversions enumerates the complete, fixed population of
// Conversions from src to sink: every simple path the graph offers,
// crossed with the product of each path step's maxOp-bounded instance
// combinations, mirroring sample_compilation_space's one-time
// `conversions = [Conversion(*subpath) for path in WorldMap.travel(...)
// for subpath in product(*(translator.all_instances(max_op) ...))]`
// build. Callers sample from the returned population with
// SampleCompilationSpace; the population itself must be built once per
// (src, sink, maxOp) and reused across every file in a batch, not
// rebuilt per draw.
func AllConversions(g *Graph, src, sink circuit.Kind, maxOp int, rnd *rand.Rand) ([]*Conversion, error) {
	paths := g.Travel(src, sink)
	if len(paths) == 0 {
		return nil, fmt.Errorf("worldmap: no conversion path from %s to %s", src, sink)
	}
	var all []*Conversion
	for _, path := range paths {
		perStep := make([][]Translator, len(path))
		for i, f := range path {
			perStep[i] = AllInstances(f, maxOp, rnd)
		}
		for _, steps := range productTranslators(perStep) {
			all = append(all, &Conversion{Steps: steps})
		}
	}
	return all, nil
}

// productTranslators returns the cartesian product of lists, mirroring
// itertools.product over each path step's all_instances(max_op).
func productTranslators(lists [][]Translator) [][]Translator {
	combos := [][]Translator{{}}
	for _, list := range lists {
		var next [][]Translator
		for _, prefix := range combos {
			for _, item := range list {
				combo := make([]Translator, len(prefix), len(prefix)+1)
				copy(combo, prefix)
				next = append(next, append(combo, item))
			}
		}
		combos = next
	}
	return combos
}

// SampleCompilationSpace draws n distinct Conversions without
// replacement from conversions, mirroring
// sample(conversions, k=n_samples) in the original driver (Python's
// random.sample is a without-replacement draw).
func SampleCompilationSpace(conversions []*Conversion, n int, rnd *rand.Rand) ([]*Conversion, error) {
	if n > len(conversions) {
		return nil, fmt.Errorf("worldmap: cannot sample %d distinct conversions from a population of %d", n, len(conversions))
	}
	picked := rnd.Perm(len(conversions))[:n]
	out := make([]*Conversion, n)
	for i, idx := range picked {
		out[i] = conversions[idx]
	}
	return out, nil
}
