package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "perimsim",
	Short: "Dual-ring perimeter sensing simulator",
	Long: "Perimsim is a discrete-event simulator for a dual-ring wireless camera " +
		"perimeter guarding a livestock pen. It models cascaded PIR-plus-camera " +
		"detection, P2P cross-verification between cameras, and an intermittently " +
		"available uplink gateway.",
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(simulateCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(workerCmd)
}
