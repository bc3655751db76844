// Package coordinator drives a single match's turn loop: spawn its
// agents, then repeatedly gather and fold commands until the match
// aggregate reports it finished or the turn limit is reached. Each
// coordinator owns exactly one match and runs on its own goroutine;
// the aggregate it drives is pure and single-threaded, so nothing here
// needs to lock match state against concurrent mutation.
package coordinator

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/assemblymechs/arena-core/internal/bus"
	"github.com/assemblymechs/arena-core/internal/dispatch"
	"github.com/assemblymechs/arena-core/internal/geometry"
	"github.com/assemblymechs/arena-core/internal/match"
	"github.com/assemblymechs/arena-core/internal/protocol"
	"github.com/assemblymechs/arena-core/internal/store"
)

// Phase names the match lifecycle state. A coordinator moves forward
// only: Created -> Spawning -> Running -> Completed.
type Phase uint8

const (
	PhaseCreated Phase = iota
	PhaseSpawning
	PhaseRunning
	PhaseCompleted
)

var phaseNames = [...]string{"Created", "Spawning", "Running", "Completed"}

func (p Phase) String() string {
	if int(p) < len(phaseNames) {
		return phaseNames[p]
	}
	return "Unknown"
}

// DispatchTimeout bounds how long the coordinator waits for a single
// agent's TakeTurn response before treating the turn as forfeited.
const DispatchTimeout = 5 * time.Second

// Coordinator owns the lifecycle of one match: creating its initial
// state, spawning agents into it, and running the per-turn loop until
// completion.
type Coordinator struct {
	MatchID    string
	Store      store.Store
	Dispatcher dispatch.Dispatcher
	Bus        bus.Bus
	RNG        *rand.Rand

	phase     Phase
	connected map[string]bool
}

// New builds a Coordinator for matchID. rng must be seeded by the
// caller if deterministic spawn placement is required (tests, replay);
// a nil rng falls back to a time-seeded source.
func New(matchID string, s store.Store, d dispatch.Dispatcher, b bus.Bus, rng *rand.Rand) *Coordinator {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Coordinator{MatchID: matchID, Store: s, Dispatcher: d, Bus: b, RNG: rng, phase: PhaseCreated, connected: make(map[string]bool)}
}

// Phase reports the coordinator's current lifecycle state.
func (c *Coordinator) Phase() Phase { return c.phase }

// Start creates the match's initial state, filters the roster down to
// agents that answer a health check, spawns each survivor at a random
// unoccupied position, binds each into the store's agent registry,
// persists the result, and announces MatchStarted, one MechConnected
// per bound agent, and one MechSpawned turn event per agent. It
// returns the initial state; the caller is expected to follow with
// RunUntilComplete.
func (c *Coordinator) Start(ctx context.Context, create protocol.CreateMatch) (*match.State, error) {
	c.phase = PhaseSpawning

	board, err := geometry.NewBoard(create.BoardWidth, create.BoardHeight)
	if err != nil {
		return nil, fmt.Errorf("coordinator: board for match %s: %w", create.MatchID, err)
	}

	unhealthy := dispatch.HealthCheckAll(ctx, c.Dispatcher, create.Actors)
	for _, id := range unhealthy {
		log.Printf("coordinator: match %s: agent %s failed health check, excluding from roster", create.MatchID, id)
	}
	actors := dispatch.FilterHealthy(create.Actors, unhealthy)

	params := match.Parameters{
		MatchID:    create.MatchID,
		MaxTurns:   create.MaxTurns,
		APsPerTurn: create.APsPerTurn,
		Actors:     actors,
	}
	state := match.NewState(params, board)

	for _, actor := range actors {
		cmd := match.SpawnMech(actor, randomPoint(c.RNG, board), "earth", "none", actor+"'s Mech")
		if err := c.foldAndPublish(ctx, state, actor, 0, cmd); err != nil {
			return nil, fmt.Errorf("coordinator: spawn %s in match %s: %w", actor, create.MatchID, err)
		}
		if err := c.connectAgent(ctx, actor); err != nil {
			return nil, fmt.Errorf("coordinator: bind agent %s in match %s: %w", actor, create.MatchID, err)
		}
	}

	if err := c.Store.Put(ctx, create.MatchID, state); err != nil {
		return nil, fmt.Errorf("coordinator: persist initial state for match %s: %w", create.MatchID, err)
	}

	if err := c.publishArenaEvent(ctx, protocol.MatchStarted(create.MatchID)); err != nil {
		log.Printf("coordinator: %s", err)
	}
	c.phase = PhaseRunning
	return state, nil
}

// connectAgent binds actor into the store's agent registry and
// announces MechConnected. Called once per survivor of the pre-match
// health check; actors that fail that check are simply excluded from
// the roster and never bound.
func (c *Coordinator) connectAgent(ctx context.Context, actor string) error {
	if err := c.Store.AddAgent(ctx, actor); err != nil {
		return err
	}
	c.connected[actor] = true
	if err := c.publishArenaEvent(ctx, protocol.MechConnected(actor, c.MatchID)); err != nil {
		log.Printf("coordinator: %s", err)
	}
	return nil
}

// disconnectAgent unbinds actor from the store's agent registry and
// announces MechDisconnected. A no-op if actor was never bound or was
// already disconnected, so a health check can be retried without
// double-publishing.
func (c *Coordinator) disconnectAgent(ctx context.Context, actor string) {
	if !c.connected[actor] {
		return
	}
	delete(c.connected, actor)
	if err := c.Store.RemoveAgent(ctx, actor); err != nil {
		log.Printf("coordinator: match %s: remove agent %s: %s", c.MatchID, actor, err)
	}
	if err := c.publishArenaEvent(ctx, protocol.MechDisconnected(actor, c.MatchID)); err != nil {
		log.Printf("coordinator: %s", err)
	}
	log.Printf("coordinator: match %s: agent %s failed health check, disconnecting", c.MatchID, actor)
}

// connectedActors returns the subset of all still bound in the agent
// registry, preserving all's order.
func (c *Coordinator) connectedActors(all []string) []string {
	out := make([]string, 0, len(all))
	for _, actor := range all {
		if c.connected[actor] {
			out = append(out, actor)
		}
	}
	return out
}

// sweepHealth probes every currently connected actor and disconnects
// whichever fail to answer. Run once per HealthCheckInterval from the
// turn loop, this is the match's ongoing version of the pre-match
// health check Start performs once up front.
func (c *Coordinator) sweepHealth(ctx context.Context, actors []string) {
	unhealthy := dispatch.HealthCheckAll(ctx, c.Dispatcher, actors)
	for _, actor := range unhealthy {
		c.disconnectAgent(ctx, actor)
	}
}

// randomPoint picks a uniformly random point within board, used as the
// candidate target nearest_unoccupied walks out from.
func randomPoint(rng *rand.Rand, board geometry.Board) geometry.Point {
	return geometry.Point{X: rng.Intn(board.Width), Y: rng.Intn(board.Height)}
}

// RunUntilComplete drives the turn loop to completion: each iteration
// dispatches a TakeTurn to every roster agent in parameter-declared
// order, folds its returned commands one at a time, and advances the
// turn. It returns the final state once the match aggregate reports
// completion or the turn limit is exceeded.
func (c *Coordinator) RunUntilComplete(ctx context.Context) (*match.State, error) {
	state, err := c.Store.Get(ctx, c.MatchID)
	if err != nil {
		return nil, fmt.Errorf("coordinator: load match %s: %w", c.MatchID, err)
	}

	lastHealthCheck := time.Now()

	for !c.isComplete(state) {
		turn := state.Turn.Current

		if time.Since(lastHealthCheck) >= dispatch.HealthCheckInterval {
			c.sweepHealth(ctx, c.connectedActors(state.Parameters.Actors))
			lastHealthCheck = time.Now()
		}
		actors := c.connectedActors(state.Parameters.Actors)

		responses := c.dispatchTurn(ctx, state, actors, turn)
		for i, actor := range actors {
			if responses[i].err != nil {
				log.Printf("coordinator: match %s turn %d: agent %s forfeited: %s", c.MatchID, turn, actor, responses[i].err)
				continue
			}
			for _, cmd := range responses[i].resp.Commands {
				if err := c.foldAndPublish(ctx, state, actor, turn, cmd); err != nil {
					log.Printf("coordinator: match %s turn %d: command %s for %s rejected: %s",
						c.MatchID, turn, cmd.Kind, cmd.Mech, err)
				}
			}
		}

		if err := c.Store.Put(ctx, c.MatchID, state); err != nil {
			c.phase = PhaseCompleted
			return state, fmt.Errorf("coordinator: persist match %s after turn %d: %w", c.MatchID, turn, err)
		}
	}

	c.phase = PhaseCompleted
	if err := c.publishArenaEvent(ctx, protocol.MatchCompleted(c.MatchID, state.Completed)); err != nil {
		log.Printf("coordinator: %s", err)
	}
	return state, nil
}

func (c *Coordinator) isComplete(s *match.State) bool {
	return s.Completed != nil || s.Turn.Current > s.Parameters.MaxTurns
}

// turnResult pairs a TakeTurn reply with the forfeit error, if any,
// from dispatching it.
type turnResult struct {
	resp protocol.TakeTurnResponse
	err  error
}

// dispatchTurn fans a TakeTurn request out to every actor concurrently
// and waits for all replies before returning. Each agent gets its own
// snapshot request (built from the state as it stood before this
// turn's folding began) and its own dispatch deadline, so one slow or
// unresponsive agent can't delay another's round-trip. Results are
// returned indexed by actors' position, never by arrival order, so the
// caller can fold them back in parameters.actors order deterministically.
func (c *Coordinator) dispatchTurn(ctx context.Context, state *match.State, actors []string, turn uint64) []turnResult {
	results := make([]turnResult, len(actors))

	g, gctx := errgroup.WithContext(ctx)
	for i, actor := range actors {
		i, actor := i, actor
		g.Go(func() error {
			cctx, cancel := context.WithTimeout(gctx, DispatchTimeout)
			defer cancel()

			req := dispatch.NewTakeTurnRequest(c.MatchID, actor, turn, state)
			resp, err := dispatch.TakeTurn(cctx, c.Dispatcher, req)
			results[i] = turnResult{resp: resp, err: err}
			return nil
		})
	}
	// g.Wait's error is always nil: each goroutine records its own
	// forfeit in results rather than failing the group, so one agent's
	// dispatch error never cancels another agent's in-flight request.
	_ = g.Wait()

	return results
}

// foldAndPublish runs one command through the aggregate and publishes
// each resulting event before applying it to state, so a listener
// downstream of the event subject never observes an event that
// hasn't happened yet relative to the state it would compute by
// folding the stream itself.
func (c *Coordinator) foldAndPublish(ctx context.Context, state *match.State, actor string, turn uint64, cmd match.MechCommand) error {
	events, err := match.HandleCommand(state, cmd)
	if err != nil {
		return err
	}
	for _, evt := range events {
		if err := c.publishTurnEvent(ctx, actor, turn, evt); err != nil {
			log.Printf("coordinator: match %s: %s", c.MatchID, err)
		}
		match.ApplyEvent(state, evt)
	}
	return nil
}

func (c *Coordinator) publishTurnEvent(ctx context.Context, actor string, turn uint64, evt match.GameEvent) error {
	return publishJSON(ctx, c.Bus, protocol.MatchEventsSubject(c.MatchID), protocol.TurnEvent{
		Actor: actor, MatchID: c.MatchID, Turn: turn, TurnEvent: evt,
	})
}

func (c *Coordinator) publishArenaEvent(ctx context.Context, evt protocol.ArenaEvent) error {
	return publishJSON(ctx, c.Bus, protocol.SubjectArenaEvents, evt)
}
