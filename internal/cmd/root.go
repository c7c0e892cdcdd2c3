// Package cmd wires verihammer's four campaign operations
// (replay, batch-test, regression-test, mutate) into cobra subcommands,
// generalizing the teacher's flat run(args) dispatch to a
// subcommand-per-operation CLI.
package cmd

import (
	"fmt"
	"math/rand"
	"strings"
	"sync"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"verihammer/internal/orchestrate"
	"verihammer/internal/toolchain"
	"verihammer/internal/worldmap/translators"
)

// driverConfig holds the top-level settings every subcommand needs to
// build its own Orchestrator, decoded through viper so flags and
// environment variables (VERIHAMMER_*, with a key's '-' written as '_')
// resolve the same way. No config file is read.
type driverConfig struct {
	ResultDir string `mapstructure:"result-dir"`
	NJobs     int    `mapstructure:"n-jobs"`
	Seed      int64  `mapstructure:"seed"`
}

var cfg driverConfig

// NewRootCmd builds the verihammer root command and its subcommands.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "verihammer",
		Short:         "Differential-testing harness for HDL toolchains",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return loadConfig(cmd)
		},
	}

	root.PersistentFlags().String("result-dir", ".", "directory evidence (compilation/, cross-checking/, mutation/) is persisted under")
	root.PersistentFlags().Int("n-jobs", 1, "number of concurrent jobs")
	root.PersistentFlags().Int64("seed", 1, "seed for the random sampler/mutation engine")
	for _, name := range []string{"result-dir", "n-jobs", "seed"} {
		viper.BindPFlag(name, root.PersistentFlags().Lookup(name))
	}
	viper.SetEnvPrefix("verihammer")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	root.AddCommand(newReplayCmd())
	root.AddCommand(newBatchTestCmd())
	root.AddCommand(newRegressionTestCmd())
	root.AddCommand(newMutateCmd())
	return root
}

func loadConfig(cmd *cobra.Command) error {
	if err := viper.Unmarshal(&cfg); err != nil {
		return fmt.Errorf("cmd: decoding driver config: %w", err)
	}
	return nil
}

var registerOnce sync.Once

// newOrchestrator builds an Orchestrator from the resolved driverConfig,
// using plain PATH lookups for every external tool — overrides exist
// only as a test seam (toolchain.Locator.Overrides), never a CLI flag.
// It also wires translators.Register into the global worldmap registry
// the first time it runs, so BuildGraph has edges to traverse: nothing
// else in the binary calls Register.
func newOrchestrator() *orchestrate.Orchestrator {
	adapters := toolchain.New(nil)
	registerOnce.Do(func() {
		translators.Register(adapters)
	})
	return orchestrate.New(cfg.ResultDir, cfg.NJobs, adapters, rand.New(rand.NewSource(cfg.Seed)))
}
