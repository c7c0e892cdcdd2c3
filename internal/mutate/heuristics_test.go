package mutate

import (
	"strings"
	"testing"

	"math/rand"
)

const sampleModule = `
module top(input clk, input [3:0] a, output reg [3:0] q);
  wire [3:0] w;
  assign w = a + 1;
  always @(posedge clk) begin
    if (a == 0)
      q <= w;
    else
      q <= a;
  end
endmodule
`

func TestChangeBinaryOp_FindsOperator(t *testing.T) {
	source := []byte(sampleModule)
	tree, err := parseVerilog(source)
	if err != nil {
		t.Fatalf("parseVerilog() error = %v", err)
	}
	rnd := rand.New(rand.NewSource(1))
	m := newChangeBinaryOp()
	plans, err := m.MutatePlans(tree.RootNode(), source, rnd)
	if err != nil {
		t.Fatalf("MutatePlans() error = %v", err)
	}
	if len(plans) == 0 {
		t.Fatal("expected at least one binary-operator replacement plan")
	}
}

func TestChangeUnaryOp_NoMatchIsEmpty(t *testing.T) {
	source := []byte(sampleModule)
	tree, err := parseVerilog(source)
	if err != nil {
		t.Fatalf("parseVerilog() error = %v", err)
	}
	rnd := rand.New(rand.NewSource(1))
	m := newChangeUnaryOp()
	plans, err := m.MutatePlans(tree.RootNode(), source, rnd)
	if err != nil {
		t.Fatalf("MutatePlans() error = %v", err)
	}
	if len(plans) != 0 {
		t.Errorf("expected no unary operators in sample module, got %d plans", len(plans))
	}
}

func TestRemoveCond_StripsIfElse(t *testing.T) {
	source := []byte(sampleModule)
	tree, err := parseVerilog(source)
	if err != nil {
		t.Fatalf("parseVerilog() error = %v", err)
	}
	rnd := rand.New(rand.NewSource(1))
	m := newRemoveCond()
	plans, err := m.MutatePlans(tree.RootNode(), source, rnd)
	if err != nil {
		t.Fatalf("MutatePlans() error = %v", err)
	}
	if len(plans) == 0 {
		t.Fatal("expected at least one if/else removal plan")
	}
	editor := NewBytesEditor(source, plans[0])
	editor.Apply()
	if strings.Contains(string(editor.Data), "if (") {
		t.Errorf("expected the if statement to be stripped, got %q", editor.Data)
	}
}

func TestDefaultSubMutators_PercentagesSumToOne(t *testing.T) {
	subs := DefaultSubMutators()
	var total float64
	for _, s := range subs {
		total += s.Percentage()
	}
	if total < 0.99 || total > 1.01 {
		t.Errorf("percentages sum to %v, want ~1.0", total)
	}
}

func TestNormalizeEscapedIdentifiers_NoEscapedIdentifiers(t *testing.T) {
	out, err := NormalizeEscapedIdentifiers([]byte(sampleModule))
	if err != nil {
		t.Fatalf("NormalizeEscapedIdentifiers() error = %v", err)
	}
	if string(out) != sampleModule {
		t.Errorf("expected unchanged source with no escaped identifiers")
	}
}
