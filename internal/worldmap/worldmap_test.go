package worldmap

import (
	"math/rand"
	"testing"

	"verihammer/internal/circuit"
)

type fakeFactory struct {
	name string
	from circuit.Kind
	to   circuit.Kind
	opts []CmdlineOption
}

func (f *fakeFactory) Name() string                        { return f.name }
func (f *fakeFactory) Edges() []EdgePattern                 { return []EdgePattern{{Src: f.from, Sink: f.to}} }
func (f *fakeFactory) AlternativeOptions() []CmdlineOption  { return f.opts }
func (f *fakeFactory) New(chosen []CmdlineOption) Translator {
	return &fakeTranslator{name: f.name, chosen: chosen}
}

type fakeTranslator struct {
	name   string
	chosen []CmdlineOption
}

func (t *fakeTranslator) Apply(c circuit.Circuit) (circuit.Circuit, error) { return c, nil }
func (t *fakeTranslator) Policy() Policy {
	args := make([]string, len(t.chosen))
	for i, o := range t.chosen {
		args[i] = o.Template
	}
	return Policy{TranslatorName: t.name, ExtraArgs: args}
}

func TestGraph_Travel_DirectEdge(t *testing.T) {
	registry = map[string]TranslatorFactory{}
	Register(&fakeFactory{name: "v2sv", from: circuit.KindVerilog, to: circuit.KindSystemVerilog})
	g := BuildGraph()
	paths := g.Travel(circuit.KindVerilog, circuit.KindSystemVerilog)
	if len(paths) != 1 || len(paths[0]) != 1 {
		t.Fatalf("Travel() = %v, want one single-step path", paths)
	}
}

func TestGraph_Travel_NoPath(t *testing.T) {
	registry = map[string]TranslatorFactory{}
	Register(&fakeFactory{name: "v2sv", from: circuit.KindVerilog, to: circuit.KindSystemVerilog})
	g := BuildGraph()
	if paths := g.Travel(circuit.KindCpp, circuit.KindSmt); len(paths) != 0 {
		t.Fatalf("Travel() = %v, want no paths", paths)
	}
}

func TestAllInstances_NoOptions(t *testing.T) {
	f := &fakeFactory{name: "v2sv", from: circuit.KindVerilog, to: circuit.KindSystemVerilog}
	instances := AllInstances(f, 1, rand.New(rand.NewSource(1)))
	if len(instances) != 1 {
		t.Fatalf("AllInstances() = %d instances, want 1", len(instances))
	}
}

func TestAllInstances_WithOptions(t *testing.T) {
	f := &fakeFactory{
		name: "sv2v",
		from: circuit.KindSystemVerilog,
		to:   circuit.KindVerilog,
		opts: []CmdlineOption{{Template: "-E"}, {Template: "-v"}},
	}
	instances := AllInstances(f, 3, rand.New(rand.NewSource(1)))
	// opCnt ranges 0..2: C(2,0)+C(2,1)+C(2,2) = 1+2+1 = 4
	if len(instances) != 4 {
		t.Fatalf("AllInstances() = %d instances, want 4", len(instances))
	}
}

func TestConversion_ApplyTo(t *testing.T) {
	conv := &Conversion{Steps: []Translator{
		&fakeTranslator{name: "a"},
		&fakeTranslator{name: "b"},
	}}
	in := circuit.NewVerilogCircuit([]byte("module m; endmodule"), nil)
	out, err := conv.ApplyTo(in)
	if err != nil {
		t.Fatalf("ApplyTo() error = %v", err)
	}
	if out.Kind() != circuit.KindVerilog {
		t.Errorf("ApplyTo() kind = %v, want KindVerilog", out.Kind())
	}
}

func TestCmdlineOption_Sample(t *testing.T) {
	o := CmdlineOption{Template: "--timescale=%s", Domain: []string{"1ns/1ps", "1ps/1ps"}}
	got := o.Sample(rand.New(rand.NewSource(2)))
	if got != "--timescale=1ns/1ps" && got != "--timescale=1ps/1ps" {
		t.Errorf("Sample() = %q, want one of the domain substitutions", got)
	}
}
