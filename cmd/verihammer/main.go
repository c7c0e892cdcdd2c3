// Command verihammer drives the replay, batch-test, regression-test,
// and mutate campaigns against a registered set of HDL translators.
package main

import (
	"fmt"
	"os"

	"verihammer/internal/cmd"
)

func main() {
	if err := cmd.NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
