package circuit

import (
	"testing"

	"verihammer/internal/ir"
)

func TestKindExtension(t *testing.T) {
	cases := map[Kind]string{
		KindVerilog:       ".v",
		KindSystemVerilog: ".sv",
		KindSmt:           ".smt2",
		KindCpp:           ".cc",
		KindNetList:       ".json",
	}
	for kind, want := range cases {
		if got := kind.Extension(); got != want {
			t.Errorf("%v.Extension() = %q, want %q", kind, got, want)
		}
	}
}

func TestParseKind_RoundTripsWithString(t *testing.T) {
	for _, kind := range []Kind{KindVerilog, KindSystemVerilog, KindSmt, KindCpp, KindNetList} {
		got, err := ParseKind(kind.String())
		if err != nil {
			t.Fatalf("ParseKind(%q) error = %v", kind.String(), err)
		}
		if got != kind {
			t.Errorf("ParseKind(%q) = %v, want %v", kind.String(), got, kind)
		}
	}
}

func TestParseKind_UnknownNameErrors(t *testing.T) {
	if _, err := ParseKind("vhdl"); err == nil {
		t.Fatal("expected an error for an unrecognized kind name")
	}
}

func TestNewVerilogCircuit(t *testing.T) {
	c := NewVerilogCircuit([]byte("module m; endmodule"), nil)
	if c.Kind() != KindVerilog {
		t.Errorf("Kind() = %v, want KindVerilog", c.Kind())
	}
	if c.Model() != nil {
		t.Error("expected nil model")
	}
}

func TestSmtCircuit_SignalValueAtState_NotFound(t *testing.T) {
	sc := NewYosysSmtCircuit(nil, nil, nil, "State", false)
	_, err := sc.SignalValueAtState(ir.HierarchicalPathName{ItemName: "q"}, nil)
	if err == nil {
		t.Fatal("expected ItemNotFound error on a nil model")
	}
}
