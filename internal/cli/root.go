// Package cli implements the prr command line.
package cli

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "prr",
	Short: "Terminal billing network",
	Long: `prr runs a billing network of clients and terminals. Terminals send
text messages and place voice calls; every settled communication is priced
by the loyalty tariff and written to the ledger.`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
