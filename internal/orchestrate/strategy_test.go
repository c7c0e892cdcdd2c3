package orchestrate

import (
	"testing"

	"verihammer/internal/circuit"
	"verihammer/internal/worldmap"
)

type stubFactory struct{}

func (stubFactory) Name() string { return "stub-orchestrate-test" }
func (stubFactory) Edges() []worldmap.EdgePattern {
	return []worldmap.EdgePattern{{Src: circuit.KindVerilog, Sink: circuit.KindVerilog}}
}
func (stubFactory) AlternativeOptions() []worldmap.CmdlineOption {
	return []worldmap.CmdlineOption{{Template: "--flatten"}}
}
func (stubFactory) New(chosen []worldmap.CmdlineOption) worldmap.Translator {
	return stubTranslator{chosen: chosen}
}

type stubTranslator struct{ chosen []worldmap.CmdlineOption }

func (t stubTranslator) Apply(c circuit.Circuit) (circuit.Circuit, error) { return c, nil }
func (t stubTranslator) Policy() worldmap.Policy {
	args := make([]string, len(t.chosen))
	for i, o := range t.chosen {
		args[i] = o.Template
	}
	return worldmap.Policy{TranslatorName: "stub-orchestrate-test", ExtraArgs: args}
}

func TestMarshalUnmarshalStrategy_RoundTrips(t *testing.T) {
	worldmap.Register(stubFactory{})

	conv := &worldmap.Conversion{Steps: []worldmap.Translator{
		stubFactory{}.New([]worldmap.CmdlineOption{{Template: "--flatten"}}),
	}}
	data, err := marshalStrategy([]*worldmap.Conversion{conv})
	if err != nil {
		t.Fatalf("marshalStrategy() error = %v", err)
	}

	got, err := unmarshalStrategy(data)
	if err != nil {
		t.Fatalf("unmarshalStrategy() error = %v", err)
	}
	if len(got) != 1 || len(got[0].Steps) != 1 {
		t.Fatalf("unmarshalStrategy() = %+v, want one conversion with one step", got)
	}
	if got[0].Steps[0].Policy().TranslatorName != "stub-orchestrate-test" {
		t.Errorf("translator name = %q, want stub-orchestrate-test", got[0].Steps[0].Policy().TranslatorName)
	}
	if got[0].Steps[0].Policy().ExtraArgs[0] != "--flatten" {
		t.Errorf("extra args = %v, want [--flatten]", got[0].Steps[0].Policy().ExtraArgs)
	}
}

func TestUnmarshalStrategy_UnknownTranslator(t *testing.T) {
	_, err := unmarshalStrategy([]byte(`[[{"translator":"does-not-exist","extra_args":[]}]]`))
	if err == nil {
		t.Fatal("expected an error for an unregistered translator name")
	}
}
