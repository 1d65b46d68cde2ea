package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/e-dream-ai/dreamstream/core/remote"
	"github.com/e-dream-ai/dreamstream/logger"

	"github.com/spf13/cobra"
)

var (
	remoteServer string
	remoteToken  string
	remoteListen bool
)

var remoteCmd = &cobra.Command{
	Use:   "remote [action] [uuid]",
	Short: "Send a remote-control action to your playback devices",
	Long: `Connects to the remote-control channel as a controller and sends one
action, e.g.:

  dreamstream remote toggle_playback
  dreamstream remote play_dream 6f1c...
  dreamstream remote --listen

With --listen the command stays connected and prints incoming events.`,
	Args: cobra.MaximumNArgs(2),
	RunE: runRemote,
}

func init() {
	remoteCmd.Flags().StringVar(&remoteServer, "server", "http://127.0.0.1:8080", "API base URL")
	remoteCmd.Flags().StringVar(&remoteToken, "token", os.Getenv("DREAMSTREAM_TOKEN"), "Bearer token (defaults to DREAMSTREAM_TOKEN)")
	remoteCmd.Flags().BoolVar(&remoteListen, "listen", false, "Stay connected and print incoming events")
	rootCmd.AddCommand(remoteCmd)
}

func runRemote(cmd *cobra.Command, args []string) error {
	if remoteToken == "" {
		return fmt.Errorf("a token is required, pass --token or set DREAMSTREAM_TOKEN")
	}
	if len(args) == 0 && !remoteListen {
		return fmt.Errorf("an action is required unless --listen is set, see 'dreamstream remote --help'")
	}

	logger.InitLogger(logger.Config{Level: logger.LogLevel("warn"), OutputPath: ""})

	store := remote.NewStore()
	sync := remote.NewSynchronizer(store, remote.NewHTTPFetcher(remoteServer, remoteToken))

	var dispatcher *remote.Dispatcher
	manager := remote.NewManager(wsEndpoint(remoteServer), func(env remote.Envelope) {
		dispatcher.Receive(env)
	})
	dispatcher = remote.NewDispatcher(manager, remote.DefaultTranslator, func(message string) {
		fmt.Println(message)
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	dispatcher.React(sync.Reaction(ctx))
	dispatcher.React(func(entry remote.Entry, env remote.Envelope) {
		if entry.Action == remote.ActionPlaying && env.Name != "" {
			fmt.Printf("Now playing: %s\n", env.Name)
		}
	})

	dialCtx, dialCancel := context.WithTimeout(ctx, 10*time.Second)
	defer dialCancel()
	if err := manager.Connect(dialCtx, remoteToken); err != nil {
		return err
	}
	defer manager.Disconnect()

	if len(args) > 0 {
		action := remote.Action(args[0])
		var payload *remote.Payload
		if len(args) > 1 {
			payload = &remote.Payload{UUID: args[1]}
		}
		if _, ok := remote.Lookup(args[0]); !ok {
			return fmt.Errorf("unknown action %q, see 'dreamstream remote actions'", args[0])
		}
		dispatcher.Send(action, payload)

		// Give the write pump a moment to flush before tearing down.
		time.Sleep(200 * time.Millisecond)
	}

	if !remoteListen {
		return nil
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	fmt.Println("Listening for remote events, Ctrl-C to exit.")
	<-stop
	return nil
}

// wsEndpoint derives the websocket URL of the remote channel from the API
// base URL.
func wsEndpoint(base string) string {
	ws := strings.Replace(base, "https://", "wss://", 1)
	ws = strings.Replace(ws, "http://", "ws://", 1)
	return strings.TrimRight(ws, "/") + "/ws/remote?kind=controller"
}

var remoteActionsCmd = &cobra.Command{
	Use:   "actions",
	Short: "List every supported remote-control action",
	Run: func(cmd *cobra.Command, args []string) {
		for _, entry := range remote.Entries() {
			if entry.Key != "" {
				fmt.Printf("%-24s key: %s\n", entry.Action, entry.Key)
			} else {
				fmt.Println(entry.Action)
			}
		}
	},
}

func init() {
	remoteCmd.AddCommand(remoteActionsCmd)
}
