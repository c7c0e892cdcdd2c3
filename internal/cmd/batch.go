package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"verihammer/internal/circuit"
	"verihammer/internal/orchestrate"
)

func newBatchTestCmd() *cobra.Command {
	var testOnly bool
	var maxOp int
	cmd := &cobra.Command{
		Use:   "batch-test <rtl_dir> <src> <sink> <n_samples>",
		Short: "Sample conversions from src to sink and cross-check every RTL file under a directory",
		Args:  cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			source, err := circuit.ParseKind(args[1])
			if err != nil {
				return err
			}
			sink, err := circuit.ParseKind(args[2])
			if err != nil {
				return err
			}
			nSamples, err := strconv.Atoi(args[3])
			if err != nil {
				return fmt.Errorf("cmd: parsing n_samples %q: %w", args[3], err)
			}
			return orchestrate.BatchTest(cmd.Context(), newOrchestrator(), args[0], source, sink, nSamples, maxOp, testOnly)
		},
	}
	cmd.Flags().BoolVar(&testOnly, "test-only", false, "use quick (concrete-value) equivalence instead of full structural equality")
	cmd.Flags().IntVar(&maxOp, "max-op", 2, "exclusive upper bound on the number of translator flags combined per conversion step")
	return cmd
}
