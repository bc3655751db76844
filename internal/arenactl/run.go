package arenactl

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/assemblymechs/arena-core/internal/bus"
	"github.com/assemblymechs/arena-core/internal/coordinator"
	"github.com/assemblymechs/arena-core/internal/dispatch"
	"github.com/assemblymechs/arena-core/internal/leaderboard"
	"github.com/assemblymechs/arena-core/internal/protocol"
	"github.com/assemblymechs/arena-core/internal/store"
)

var (
	runMaxTurns uint64
	runHeight   int
	runWidth    int
	runActors   []string
	runFile     string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a match synchronously against bound agents",
	Long: `Starts a fresh match against the given actors and blocks until it
completes, printing the final leaderboard. Actors and board parameters
can be given as flags or loaded from a YAML batch file with --file:

  actors: [al, bob]
  board_width: 16
  board_height: 16
  max_turns: 500
  aps_per_turn: 4

Example:
  arenactl run --actor al --actor bob --max-turns 500 --width 16 --height 16`,
	RunE: runRun,
}

func init() {
	runCmd.Flags().Uint64Var(&runMaxTurns, "max-turns", 500, "maximum number of turns before the match ends in a draw")
	runCmd.Flags().IntVar(&runHeight, "height", 16, "board height")
	runCmd.Flags().IntVar(&runWidth, "width", 16, "board width")
	runCmd.Flags().StringArrayVar(&runActors, "actor", nil, "actor id bound to the bus (repeatable)")
	runCmd.Flags().StringVar(&runFile, "file", "", "YAML batch file describing actors and board parameters, overriding the flags above")
}

// runBatch is the shape of the optional --file YAML document.
type runBatch struct {
	Actors      []string `yaml:"actors"`
	BoardWidth  int      `yaml:"board_width"`
	BoardHeight int      `yaml:"board_height"`
	MaxTurns    uint64   `yaml:"max_turns"`
	APsPerTurn  int      `yaml:"aps_per_turn"`
}

func runRun(cmd *cobra.Command, args []string) error {
	create, err := buildCreateMatch()
	if err != nil {
		return err
	}
	if len(create.Actors) == 0 {
		return fmt.Errorf("at least one actor is required (via --actor or --file)")
	}
	if natsURL == "" {
		return fmt.Errorf("--nats-url is required to reach bound agents")
	}

	b, err := bus.NewNATSBus(natsURL)
	if err != nil {
		return fmt.Errorf("connect to bus: %w", err)
	}
	defer b.Close()

	matchID := create.MatchID

	st := store.NewMemoryStore()
	lb := leaderboard.New()

	eventSub, err := b.Subscribe(protocol.MatchEventsSubject(matchID), func(_ string, payload []byte) {
		var evt protocol.TurnEvent
		if err := json.Unmarshal(payload, &evt); err != nil {
			return
		}
		lb.Apply(evt.TurnEvent)
	})
	if err != nil {
		return fmt.Errorf("subscribe to match events: %w", err)
	}
	defer eventSub.Unsubscribe()

	invoker := dispatch.NewBusInvoker(b, matchID)
	d := dispatch.New(invoker)
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	coord := coordinator.New(matchID, st, d, b, rng)

	ctx := context.Background()
	if _, err := coord.Start(ctx, create); err != nil {
		return fmt.Errorf("start match: %w", err)
	}

	fmt.Printf("match %s started with %d actor(s), running to completion...\n", matchID, len(create.Actors))

	state, err := coord.RunUntilComplete(ctx)
	if err != nil {
		return fmt.Errorf("run match: %w", err)
	}

	fmt.Printf("match %s completed after %d turn(s)\n\n", matchID, state.Turn.Current)
	printLeaderboard(lb, len(create.Actors))

	return nil
}

// buildCreateMatch assembles the match parameters from --file, if
// given, falling back to the individual board/actor flags otherwise.
func buildCreateMatch() (protocol.CreateMatch, error) {
	matchID := "arenactl-run-" + uuid.NewString()

	if runFile == "" {
		return protocol.CreateMatch{
			MatchID:     matchID,
			Actors:      runActors,
			BoardWidth:  runWidth,
			BoardHeight: runHeight,
			MaxTurns:    runMaxTurns,
			APsPerTurn:  4,
		}, nil
	}

	data, err := os.ReadFile(runFile)
	if err != nil {
		return protocol.CreateMatch{}, fmt.Errorf("read batch file: %w", err)
	}
	var batch runBatch
	if err := yaml.Unmarshal(data, &batch); err != nil {
		return protocol.CreateMatch{}, fmt.Errorf("parse batch file: %w", err)
	}

	create := protocol.CreateMatch{
		MatchID:     matchID,
		Actors:      batch.Actors,
		BoardWidth:  batch.BoardWidth,
		BoardHeight: batch.BoardHeight,
		MaxTurns:    batch.MaxTurns,
		APsPerTurn:  batch.APsPerTurn,
	}
	if create.BoardWidth == 0 {
		create.BoardWidth = runWidth
	}
	if create.BoardHeight == 0 {
		create.BoardHeight = runHeight
	}
	if create.MaxTurns == 0 {
		create.MaxTurns = runMaxTurns
	}
	if create.APsPerTurn == 0 {
		create.APsPerTurn = 4
	}
	return create, nil
}

func printLeaderboard(lb *leaderboard.Leaderboard, n int) {
	entries := lb.Top(n)
	for _, e := range entries {
		fmt.Printf("%2d. %-16s score=%-8d kills=%-4d deaths=%-4d\n", e.Rank, e.Name, e.Score, e.Kills, e.Deaths)
	}
}
