package ir

import (
	"testing"

	"verihammer/internal/diag"
)

const counterJSON = `{
  "modules": {
    "counter": {
      "ports": {
        "clk": {"direction": "input", "bits": [2]},
        "rst": {"direction": "input", "bits": [3]},
        "q": {"direction": "output", "bits": [4,5,6,7]}
      },
      "netnames": {
        "clk": {"bits": [2], "hide_name": 0},
        "rst": {"bits": [3], "hide_name": 0},
        "q": {"bits": [4,5,6,7], "hide_name": 0},
        "next_q": {"bits": [8,9,10,11], "hide_name": 0}
      },
      "cells": {}
    }
  }
}`

const counterSource = `
module counter(input clk, input rst, output reg [3:0] q);
  reg [3:0] next_q;
  always @(posedge clk) q <= next_q;
endmodule
`

func TestLoadFromYosysJSON_TopDetection(t *testing.T) {
	reporter := diag.NewReporter(diag.Text)
	design, err := LoadFromYosysJSON([]byte(counterJSON), []byte(counterSource), reporter)
	if err != nil {
		t.Fatalf("LoadFromYosysJSON: %v", err)
	}
	top := design.Declaration(design.TopLevel)
	if top == nil || top.Name != "counter" {
		t.Fatalf("expected top-level module %q, got %+v", "counter", top)
	}
	if got := top.Ports["q"].Width; got != 4 {
		t.Errorf("q width = %d, want 4", got)
	}
}

const multiTopJSON = `{
  "modules": {
    "a": {"ports": {}, "netnames": {}, "cells": {}},
    "b": {"ports": {}, "netnames": {}, "cells": {}}
  }
}`

func TestLoadFromYosysJSON_MultipleTops(t *testing.T) {
	reporter := diag.NewReporter(diag.Text)
	_, err := LoadFromYosysJSON([]byte(multiTopJSON), nil, reporter)
	if err != ErrMultipleTopLevel {
		t.Fatalf("err = %v, want ErrMultipleTopLevel", err)
	}
	if !reporter.HasErrors() {
		t.Error("expected reporter to have recorded an error")
	}
}

const noTopJSON = `{
  "modules": {
    "a": {"ports": {}, "netnames": {}, "cells": {"u_b": {"type": "b"}}},
    "b": {"ports": {}, "netnames": {}, "cells": {"u_a": {"type": "a"}}}
  }
}`

func TestLoadFromYosysJSON_NoTop(t *testing.T) {
	reporter := diag.NewReporter(diag.Text)
	_, err := LoadFromYosysJSON([]byte(noTopJSON), nil, reporter)
	if err != ErrNoTopLevel {
		t.Fatalf("err = %v, want ErrNoTopLevel", err)
	}
}

const memoriesJSON = `{
  "modules": {
    "m": {"ports": {}, "netnames": {}, "cells": {}, "memories": {"mem": {}}}
  }
}`

func TestLoadFromYosysJSON_RejectsMemories(t *testing.T) {
	reporter := diag.NewReporter(diag.Text)
	_, err := LoadFromYosysJSON([]byte(memoriesJSON), nil, reporter)
	if _, ok := err.(*ErrMemoriesPresent); !ok {
		t.Fatalf("err = %v, want *ErrMemoriesPresent", err)
	}
}

func TestSplitArrayElement(t *testing.T) {
	base, idx, ok := SplitArrayElement("mem[12]")
	if !ok || base != "mem" || idx != 12 {
		t.Fatalf("got (%q, %d, %v)", base, idx, ok)
	}
	if _, _, ok := SplitArrayElement("plain"); ok {
		t.Fatal("plain should not match array element pattern")
	}
}

func TestModelTreeView_SingleModule(t *testing.T) {
	reporter := diag.NewReporter(diag.Text)
	design, err := LoadFromYosysJSON([]byte(counterJSON), []byte(counterSource), reporter)
	if err != nil {
		t.Fatalf("LoadFromYosysJSON: %v", err)
	}
	view, err := FromModuleDecl(design)
	if err != nil {
		t.Fatalf("FromModuleDecl: %v", err)
	}
	if len(view.InputPorts()) != 2 {
		t.Errorf("InputPorts = %d, want 2", len(view.InputPorts()))
	}
	if len(view.OutputPorts()) != 1 {
		t.Errorf("OutputPorts = %d, want 1", len(view.OutputPorts()))
	}
}
