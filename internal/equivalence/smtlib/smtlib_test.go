package smtlib

import (
	"math/rand"
	"testing"
)

func TestScript_Render(t *testing.T) {
	s := New("QF_UFBV")
	s.DeclareConst("s0", "State")
	s.Assert("(= s0 s0)")
	out := s.Render(false)
	if !containsAll(out, "(set-logic QF_UFBV)", "(declare-const s0 State)", "(assert (= s0 s0))", "(check-sat)") {
		t.Fatalf("Render() = %q, missing expected commands", out)
	}
}

func TestAlignWidth(t *testing.T) {
	lhs, rhs := AlignWidth("a", 4, "b", 8)
	if lhs != "((_ zero_extend 4) a)" || rhs != "b" {
		t.Errorf("AlignWidth() = (%q, %q)", lhs, rhs)
	}
}

func TestIsConstant(t *testing.T) {
	if !IsConstant("#b0") || !IsConstant("#xFF") {
		t.Error("expected binary/hex literals to be constants")
	}
	if IsConstant("top.reg_a") {
		t.Error("expected an accessor expression to not be a constant")
	}
}

func TestConcretize_FixedValue(t *testing.T) {
	v := uint64(5)
	got := Concretize("x", 4, &v, nil)
	want := "(= (_ bv5 4) x)"
	if got != want {
		t.Errorf("Concretize() = %q, want %q", got, want)
	}
}

func TestConcretize_Random(t *testing.T) {
	got := Concretize("x", 4, nil, rand.New(rand.NewSource(1)))
	if !containsAll(got, "(= (_ bv", "x)") {
		t.Errorf("Concretize() = %q, want a bitvector equality", got)
	}
}

func TestParseResponse_Unsat(t *testing.T) {
	resp, err := ParseResponse("unsat\n")
	if err != nil {
		t.Fatalf("ParseResponse() error = %v", err)
	}
	if resp.Sat {
		t.Error("expected Sat = false")
	}
}

func TestParseResponse_SatWithModel(t *testing.T) {
	text := "sat\n(model\n  (define-fun top.reg_a () (_ BitVec 4) #b0101)\n)\n"
	resp, err := ParseResponse(text)
	if err != nil {
		t.Fatalf("ParseResponse() error = %v", err)
	}
	if !resp.Sat {
		t.Fatal("expected Sat = true")
	}
	if resp.Model["top.reg_a"] != "#b0101" {
		t.Errorf("Model[top.reg_a] = %q, want #b0101", resp.Model["top.reg_a"])
	}
}

func TestValueAsUint64(t *testing.T) {
	v, ok := ValueAsUint64("#b0101")
	if !ok || v != 5 {
		t.Errorf("ValueAsUint64(#b0101) = (%d, %v), want (5, true)", v, ok)
	}
}

func containsAll(s string, subs ...string) bool {
	for _, sub := range subs {
		if !contains(s, sub) {
			return false
		}
	}
	return true
}

func contains(s, sub string) bool {
	for i := 0; i+len(sub) <= len(s); i++ {
		if s[i:i+len(sub)] == sub {
			return true
		}
	}
	return false
}
