package cmd

import (
	"github.com/spf13/cobra"

	"verihammer/internal/orchestrate"
)

func newRegressionTestCmd() *cobra.Command {
	var inputSuffix string
	cmd := &cobra.Command{
		Use:   "regression-test <dir>",
		Short: "Replay every numbered (input, strategy) pair under a directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return orchestrate.RegressionTest(cmd.Context(), newOrchestrator(), args[0], inputSuffix)
		},
	}
	cmd.Flags().StringVar(&inputSuffix, "input-suffix", ".v", "file extension of the numbered input files")
	return cmd
}
