package cmd

import (
	"fmt"
	"os"

	"github.com/e-dream-ai/dreamstream/server"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "dreamstream",
	Short: "dreamstream is a dream sharing and remote-control platform.",
	Run: func(cmd *cobra.Command, args []string) {
		server.Start()
	},
}

// Execute executes the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
