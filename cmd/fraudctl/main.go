// Command fraudctl packages, inspects, and exercises fraud analyzer model
// artifacts offline.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var Version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "fraudctl",
		Short:         "Offline tooling for fraud analyzer model artifacts",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().String("gcs-credentials", "", "Service account JSON for gs:// locations")

	rootCmd.AddCommand(packCmd())
	rootCmd.AddCommand(inspectCmd())
	rootCmd.AddCommand(scoreCmd())
	rootCmd.AddCommand(certsCmd())

	return rootCmd
}
