package cmd

import (
	"github.com/e-dream-ai/dreamstream/server"

	"github.com/spf13/cobra"
)

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the dreamstream server",
	Long:  `Starts the HTTP/WebSocket server serving the dream API and the remote-control channel.`,
	Run: func(cmd *cobra.Command, args []string) {
		server.Start()
	},
}

func init() {
	rootCmd.AddCommand(serverCmd)
}
