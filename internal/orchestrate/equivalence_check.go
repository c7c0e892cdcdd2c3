package orchestrate

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"verihammer/internal/circuit"
	"verihammer/internal/workspace"
	"verihammer/internal/worldmap"
)

// equivClass groups every conversion whose output circuit was found
// equivalent to the class's pivot (the first circuit that founded it).
type equivClass struct {
	Pivot       circuit.Circuit
	Conversions []*worldmap.Conversion
}

// EquivalenceCheck is the per-job unit of every campaign: it runs
// inputPath through each of conversions, groups the successful outputs
// into equivalence classes, and — when more than one class forms —
// persists evidence of the miscompilation under
// result_dir/cross-checking/. testOnly selects quick (concrete-value)
// equivalence over full structural equality, trading soundness for
// throughput during high-volume screening. Mirrors core/api.py's
// equivalence_check almost line for line.
func EquivalenceCheck(ctx context.Context, o *Orchestrator, inputPath string, conversions []*worldmap.Conversion, testOnly bool) error {
	ws, err := workspace.Acquire(o.ResultDir)
	if err != nil {
		return wrapf("equivalence check: acquiring workspace", err)
	}
	defer ws.Release()
	ctx = workspace.WithCurrent(ctx, ws)

	var classes []*equivClass
	var validConversions []*worldmap.Conversion

	for _, conv := range conversions {
		out := convert(ctx, o, inputPath, conv)
		if out == nil {
			continue
		}
		validConversions = append(validConversions, conv)

		placed := false
		for _, class := range classes {
			equivalent, err := areEquivalent(ctx, o, class.Pivot, out, testOnly)
			if err != nil {
				// Exception.log captures the anomaly; the candidate is
				// kept in its own class below, a pessimistic split.
				ws.SaveToFile([]byte(err.Error()), exceptionFilename)
				continue
			}
			if equivalent {
				class.Conversions = append(class.Conversions, conv)
				placed = true
				break
			}
		}
		if !placed {
			classes = append(classes, &equivClass{Pivot: out, Conversions: []*worldmap.Conversion{conv}})
		}
	}

	if len(classes) > 1 {
		o.logInfo("miscompilation detected", "input", inputPath, "classes", len(classes))
		if err := persistCrossChecking(ws, o.ResultDir, inputPath, validConversions, classes); err != nil {
			return wrapf("equivalence check: persisting cross-checking evidence", err)
		}
	}
	return nil
}

func persistCrossChecking(ws *workspace.Workspace, resultDir, inputPath string, conversions []*worldmap.Conversion, classes []*equivClass) error {
	strategyJSON, err := marshalStrategy(conversions)
	if err != nil {
		return err
	}
	if _, err := ws.SaveToFile(strategyJSON, strategyFilename); err != nil {
		return err
	}
	inputData, err := os.ReadFile(inputPath)
	if err != nil {
		return err
	}
	if _, err := ws.SaveToFile(inputData, inputFilename+filepath.Ext(inputPath)); err != nil {
		return err
	}
	if _, err := ws.SaveToFile([]byte(formatEquivalenceClasses(classes)), differenceFilename); err != nil {
		return err
	}
	_, err = ws.SaveAs(resultDir, "cross-checking")
	return err
}

// formatEquivalenceClasses renders classes as a human-readable report,
// the Go stand-in for pformat(equivalence_classes).
func formatEquivalenceClasses(classes []*equivClass) string {
	out := ""
	for i, class := range classes {
		out += fmt.Sprintf("class %d (%s pivot):\n", i, class.Pivot.Kind())
		for _, conv := range class.Conversions {
			policies, _ := json.Marshal(conv.StrategyJSON())
			out += fmt.Sprintf("  %s\n", policies)
		}
	}
	return out
}
