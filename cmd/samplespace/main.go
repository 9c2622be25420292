package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	version = "0.1.0-dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "samplespace",
		Short: "Monte Carlo estimation over repeatable experiments",
		Long: `samplespace estimates probabilities, distributions and moments of random
quantities by rerunning an experiment many times.

Conditioning is by rejection: a realization contributes only when every
--given key is true on it. Keys are written as expressions such as
you_win_if_you_switch, car_door = 3, total >= 7 or !heads.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags
	rootCmd.PersistentFlags().Bool("json", false, "Output as JSON (for agent consumption)")
	rootCmd.PersistentFlags().String("root", ".", "Project root directory")
	rootCmd.PersistentFlags().String("config", "", "Config file (default ~/.samplespace/config.yaml)")

	rootCmd.AddCommand(
		newVersionCmd(),
		newScenariosCmd(),
		newProbabilityCmd(),
		newDistributionCmd(),
		newMomentCmd(),
		newDescribeCmd(),
		newHistoryCmd(),
		newConfigCmd(),
		newMCPServerCmd(),
	)

	return rootCmd
}
