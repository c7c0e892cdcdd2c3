package cmd

import (
	"github.com/spf13/cobra"

	"verihammer/internal/orchestrate"
)

func newReplayCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "replay <hdl> <json>",
		Short: "Replay a persisted (input, strategy.json) pair",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return orchestrate.Replay(cmd.Context(), newOrchestrator(), args[0], args[1])
		},
	}
}
