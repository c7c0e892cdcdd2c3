package cmd

import (
	"github.com/spf13/cobra"

	"verihammer/internal/orchestrate"
)

func newMutateCmd() *cobra.Command {
	var nTimes int
	var debug bool
	cmd := &cobra.Command{
		Use:   "mutate <seed_dir> <out_dir>",
		Short: "Mutate every RTL seed under a directory",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return orchestrate.MutateAll(cmd.Context(), newOrchestrator(), args[0], args[1], nTimes, debug)
		},
	}
	cmd.Flags().IntVar(&nTimes, "n-times", 8, "maximum number of mutants to emit per seed")
	cmd.Flags().BoolVar(&debug, "debug", false, "run seeds in series instead of across the worker pool")
	return cmd
}
