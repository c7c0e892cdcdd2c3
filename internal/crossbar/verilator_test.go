package crossbar

import "testing"

func TestMergeSplitRoundTrip(t *testing.T) {
	cases := []struct {
		submodules []string
		item       string
		isTopPort  bool
	}{
		{nil, "clk", true},
		{[]string{"u_adder"}, "sum", false},
		{[]string{"u_a", "u_b"}, "mem[3]", false},
		{[]string{"u$weird"}, "q", false},
	}
	for _, c := range cases {
		merged := Merge(c.submodules, c.item, c.isTopPort)
		submodules, item := Split(merged)
		if c.isTopPort {
			if item != c.item {
				t.Errorf("Merge/Split(%v, %q, top) round-trip item = %q, want %q", c.submodules, c.item, item, c.item)
			}
			continue
		}
		if item != c.item {
			t.Errorf("round-trip item = %q, want %q", item, c.item)
		}
		if len(submodules) != len(c.submodules) {
			t.Errorf("round-trip submodules = %v, want %v", submodules, c.submodules)
		}
	}
}

func TestVerilatorEscaping(t *testing.T) {
	escaped := verilatorEscape("a.b[0]$x")
	for _, want := range []string{"__DOT__", "__BRA__", "__KET__", "__024"} {
		if !containsSubstring(escaped, want) {
			t.Errorf("escaped %q missing %q", escaped, want)
		}
	}
	if got := verilatorUnescape(escaped); got != "a.b[0]$x" {
		t.Errorf("unescape round-trip = %q, want %q", got, "a.b[0]$x")
	}
}

func containsSubstring(s, sub string) bool {
	for i := 0; i+len(sub) <= len(s); i++ {
		if s[i:i+len(sub)] == sub {
			return true
		}
	}
	return false
}
