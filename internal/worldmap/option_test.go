package worldmap

import (
	"math/rand"
	"testing"

	"verihammer/internal/circuit"
)

func TestAllConversions_CrossesPathsWithOptionCombinations(t *testing.T) {
	registry = map[string]TranslatorFactory{}
	Register(&fakeFactory{
		name: "v2sv",
		from: circuit.KindVerilog,
		to:   circuit.KindSystemVerilog,
		opts: []CmdlineOption{{Template: "-E"}, {Template: "-v"}},
	})
	g := BuildGraph()

	// maxOp=3 over a single-step path with 2 options yields
	// C(2,0)+C(2,1)+C(2,2) = 4 instances, and a single path, so 4 conversions.
	all, err := AllConversions(g, circuit.KindVerilog, circuit.KindSystemVerilog, 3, rand.New(rand.NewSource(1)))
	if err != nil {
		t.Fatalf("AllConversions() error = %v", err)
	}
	if len(all) != 4 {
		t.Fatalf("AllConversions() = %d conversions, want 4", len(all))
	}
}

func TestAllConversions_NoPathErrors(t *testing.T) {
	registry = map[string]TranslatorFactory{}
	Register(&fakeFactory{name: "v2sv", from: circuit.KindVerilog, to: circuit.KindSystemVerilog})
	g := BuildGraph()
	if _, err := AllConversions(g, circuit.KindCpp, circuit.KindSmt, 2, rand.New(rand.NewSource(1))); err == nil {
		t.Fatal("AllConversions() expected an error for an unreachable sink")
	}
}

func TestSampleCompilationSpace_DrawsDistinctConversionsWithoutReplacement(t *testing.T) {
	population := []*Conversion{
		{Steps: []Translator{&fakeTranslator{name: "a"}}},
		{Steps: []Translator{&fakeTranslator{name: "b"}}},
		{Steps: []Translator{&fakeTranslator{name: "c"}}},
	}
	got, err := SampleCompilationSpace(population, 3, rand.New(rand.NewSource(1)))
	if err != nil {
		t.Fatalf("SampleCompilationSpace() error = %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("SampleCompilationSpace() = %d conversions, want 3", len(got))
	}
	seen := map[*Conversion]bool{}
	for _, c := range got {
		if seen[c] {
			t.Fatalf("SampleCompilationSpace() returned a duplicate conversion: %v", got)
		}
		seen[c] = true
	}
}

func TestSampleCompilationSpace_MoreSamplesThanPopulationErrors(t *testing.T) {
	population := []*Conversion{{Steps: []Translator{&fakeTranslator{name: "a"}}}}
	if _, err := SampleCompilationSpace(population, 2, rand.New(rand.NewSource(1))); err == nil {
		t.Fatal("SampleCompilationSpace() expected an error when n exceeds the population size")
	}
}
