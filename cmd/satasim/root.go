package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/tebeka/atexit"
)

// version is overridden at link time.
var version = "dev"

var rootCmd = &cobra.Command{
	Use:   "satasim",
	Short: "satasim simulates a SATA command layer talking to a drive.",
	Long: `satasim drives a cycle-level model of a SATA command layer with a ` +
		`script of block operations. The layer talks to a simulated drive ` +
		`over a fixed-latency link, and every read is checked against the ` +
		`data written before.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags
// appropriately. Exit handlers run before the process exits.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		atexit.Exit(1)
	}

	atexit.Exit(0)
}
