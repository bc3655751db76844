// Package arenactl implements the arenactl operator CLI: claiming
// agent credentials, listing scheduled matches, and running a match
// synchronously against whatever agents are bound to the bus.
package arenactl

import (
	"github.com/spf13/cobra"
)

// apiURL is the base URL of a running matchcoordinator's HTTP API,
// set via the --api-url flag.
var apiURL string

// natsURL is the bus address agents are reachable on, set via the
// --nats-url flag.
var natsURL string

var rootCmd = &cobra.Command{
	Use:   "arenactl",
	Short: "Operator CLI for the Assembly Mechs arena",
	Long:  "Claim agent credentials, list scheduled matches, and run matches against bound agents.",
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&apiURL, "api-url", "http://localhost:3000", "base URL of the arena HTTP API")
	rootCmd.PersistentFlags().StringVar(&natsURL, "nats-url", "", "bus address agents are reachable on (empty uses an in-process bus, useful only for --dry-run style local testing)")

	rootCmd.AddCommand(competeCmd)
	rootCmd.AddCommand(scheduleCmd)
	rootCmd.AddCommand(runCmd)
}
