package orchestrate

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"verihammer/internal/circuit"
	"verihammer/internal/diag"
	"verihammer/internal/ir"
	"verihammer/internal/workspace"
	"verihammer/internal/worldmap"
)

// loadCircuit reads path and builds the Circuit it names: a Verilog
// file is elaborated through yosys into a full ir.ModelTreeView (so
// later steps can attach Verilator/KLEE layouts to it); a SystemVerilog
// file carries no model until a translator lowers it to Verilog, since
// yosys cannot elaborate SystemVerilog directly — mirroring
// VerilogCircuit.from_file / SystemVerilogCircuit.from_file in the
// implementation this was ported from.
func loadCircuit(ctx context.Context, o *Orchestrator, path string) (circuit.Circuit, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("orchestrate: reading %s: %w", path, err)
	}
	switch filepath.Ext(path) {
	case ".sv":
		return circuit.NewSystemVerilogCircuit(data, nil), nil
	case ".v":
		model, err := elaborate(ctx, o, path, data)
		if err != nil {
			return nil, err
		}
		return circuit.NewVerilogCircuit(data, model), nil
	default:
		return nil, fmt.Errorf("orchestrate: unsupported input suffix %q", filepath.Ext(path))
	}
}

// elaborate runs the yosys JSON dump plus tree-sitter register scan
// that produces a full ModelTreeView, per internal/ir's four-step
// procedure.
func elaborate(ctx context.Context, o *Orchestrator, path string, source []byte) (*ir.ModelTreeView, error) {
	jsonText, err := o.Adapters.VerilogToJSON(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("orchestrate: elaborating %s: %w", path, err)
	}
	reporter := diag.NewReporter(diag.Text)
	design, err := ir.LoadFromYosysJSON([]byte(jsonText), source, reporter)
	if err != nil {
		return nil, fmt.Errorf("orchestrate: loading %s: %w", path, err)
	}
	view, err := ir.FromModuleDecl(design)
	if err != nil {
		return nil, fmt.Errorf("orchestrate: building model tree for %s: %w", path, err)
	}
	return view, nil
}

// convert performs one Conversion on inputPath inside its own workspace,
// mirroring core/api.py's convert(): backs up the input and the
// strategy, builds the source circuit, threads it through conv. On any
// error the workspace (including exception.log) is archived under
// result_dir/compilation/ and a nil circuit is returned — the caller
// treats a nil circuit exactly like the original's "conversion raised,
// skip it" branch, never propagating the error further up.
func convert(ctx context.Context, o *Orchestrator, inputPath string, conv *worldmap.Conversion) circuit.Circuit {
	ws, err := workspace.Acquire(o.ResultDir)
	if err != nil {
		o.logInfo("failed to acquire workspace for conversion", "error", err)
		return nil
	}
	defer ws.Release()
	ctx = workspace.WithCurrent(ctx, ws)

	strategyJSON, err := marshalStrategy([]*worldmap.Conversion{conv})
	if err != nil {
		o.failConversion(ws, inputPath, err)
		return nil
	}
	if _, err := ws.SaveToFile(strategyJSON, strategyFilename); err != nil {
		o.failConversion(ws, inputPath, err)
		return nil
	}
	inputData, err := os.ReadFile(inputPath)
	if err != nil {
		o.failConversion(ws, inputPath, err)
		return nil
	}
	if _, err := ws.SaveToFile(inputData, inputFilename+filepath.Ext(inputPath)); err != nil {
		o.failConversion(ws, inputPath, err)
		return nil
	}

	source, err := loadCircuit(ctx, o, inputPath)
	if err != nil {
		o.failConversion(ws, inputPath, err)
		return nil
	}
	out, err := conv.ApplyTo(source)
	if err != nil {
		o.failConversion(ws, inputPath, err)
		return nil
	}
	return out
}

// failConversion persists the exception and the whole workspace under
// result_dir/compilation/, matching spec.md §7's "Translator failure ...
// persist to compilation/".
func (o *Orchestrator) failConversion(ws *workspace.Workspace, inputPath string, cause error) {
	o.logInfo("conversion failed", "input", inputPath, "error", cause)
	if _, err := ws.SaveToFile([]byte(cause.Error()), exceptionFilename); err != nil {
		o.logInfo("failed to persist exception log", "error", err)
		return
	}
	if _, err := ws.SaveAs(o.ResultDir, "compilation"); err != nil {
		o.logInfo("failed to archive compilation workspace", "error", err)
	}
}
