// Command arenactl is the operator's command-line interface to the
// arena: claiming credentials for a bound agent, listing scheduled
// matches, and running a match synchronously against whatever agents
// are currently connected to the bus.
package main

import (
	"fmt"
	"os"

	"github.com/assemblymechs/arena-core/internal/arenactl"
)

func main() {
	if err := arenactl.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
