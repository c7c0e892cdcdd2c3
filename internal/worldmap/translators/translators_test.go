package translators

import (
	"testing"

	"verihammer/internal/circuit"
	"verihammer/internal/toolchain"
	"verihammer/internal/worldmap"
)

func TestSV2V_Edges(t *testing.T) {
	f := NewSV2V(toolchain.New(nil))
	edges := f.Edges()
	if len(edges) != 1 || edges[0].Src != circuit.KindSystemVerilog || edges[0].Sink != circuit.KindVerilog {
		t.Fatalf("Edges() = %v, want one SystemVerilog->Verilog edge", edges)
	}
}

func TestSV2V_Apply_RejectsWrongKind(t *testing.T) {
	f := NewSV2V(toolchain.New(nil))
	tr := f.New(nil)
	_, err := tr.Apply(circuit.NewVerilogCircuit([]byte("module m; endmodule"), nil))
	if err == nil {
		t.Fatal("expected an error applying sv2v to a Verilog circuit")
	}
}

func TestVerilator_Policy_CarriesExtraArgs(t *testing.T) {
	f := NewVerilator(toolchain.New(nil))
	tr := f.New([]worldmap.CmdlineOption{{Template: "--assert"}})
	p := tr.Policy()
	if p.TranslatorName != "verilator" || len(p.ExtraArgs) != 1 || p.ExtraArgs[0] != "--assert" {
		t.Fatalf("Policy() = %+v, want verilator policy carrying --assert", p)
	}
}

func TestRegister_PopulatesWorldmap(t *testing.T) {
	Register(toolchain.New(nil))
	g := worldmap.BuildGraph()
	paths := g.Travel(circuit.KindSystemVerilog, circuit.KindVerilog)
	if len(paths) == 0 {
		t.Fatal("expected at least one SystemVerilog->Verilog path after Register")
	}
}
