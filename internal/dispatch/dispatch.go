// Package dispatch is the coordinator's only way of talking to a bound
// agent. It knows nothing about NATS subjects or match state beyond
// what it's handed: given an agent id, an operation name, and a
// payload, it returns the agent's response or an error. The
// coordinator never trusts a TakeTurnResponse at face value — every
// returned command still passes through the match aggregate's own
// validation before it's applied.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Operation names carried in a Dispatch call. These mirror the
// capability-provider operations a bound agent must answer.
const (
	OpTakeTurn      = "TakeTurn"
	OpHealthRequest = "HealthRequest"
)

// HealthCheckInterval is how often the coordinator's background health
// sweep probes every bound agent.
const HealthCheckInterval = 10 * time.Second

// ErrUnresponsive is returned by HealthCheck when an agent fails to
// answer a health probe before the context deadline.
var ErrUnresponsive = errors.New("dispatch: agent unresponsive")

// ErrForfeit wraps any failure to obtain a usable TakeTurnResponse
// from an agent, whether the transport call failed or the reply
// couldn't be decoded. The coordinator treats it uniformly: the agent
// forfeits its actions for that turn and the match continues.
var ErrForfeit = errors.New("dispatch: turn forfeited")

// Invoker sends one op+payload pair to a single agent and returns its
// reply or an error. Implementations are expected to apply their own
// timeout if ctx carries no deadline; RemoteInvoker does not impose one
// beyond what ctx specifies, matching the "dispatch with a context
// deadline" contract callers are expected to honor.
type Invoker interface {
	Invoke(ctx context.Context, agentID, op string, payload []byte) ([]byte, error)
}

// Dispatcher is the abstract agent-invocation surface the coordinator
// depends on: dispatch(agent_id, op, payload) -> payload, plus a
// health probe used both on a timer and immediately before a match
// starts. It is satisfied by RemoteInvoker wrapped in New, or by a
// test double.
type Dispatcher interface {
	Dispatch(ctx context.Context, agentID, op string, payload []byte) ([]byte, error)
	HealthCheck(ctx context.Context, agentID string) error
}

// dispatcher adapts an Invoker (transport-specific: bus request/reply,
// in-process function call, ...) into the Dispatcher contract used by
// the coordinator.
type dispatcher struct {
	invoker Invoker
}

// New wraps an Invoker as a Dispatcher.
func New(invoker Invoker) Dispatcher {
	return &dispatcher{invoker: invoker}
}

func (d *dispatcher) Dispatch(ctx context.Context, agentID, op string, payload []byte) ([]byte, error) {
	resp, err := d.invoker.Invoke(ctx, agentID, op, payload)
	if err != nil {
		return nil, fmt.Errorf("dispatch: %s -> %s: %w", agentID, op, err)
	}
	return resp, nil
}

func (d *dispatcher) HealthCheck(ctx context.Context, agentID string) error {
	if _, err := d.invoker.Invoke(ctx, agentID, OpHealthRequest, nil); err != nil {
		return fmt.Errorf("%w: %s: %s", ErrUnresponsive, agentID, err)
	}
	return nil
}

// HealthCheckAll probes every agent in ids with a fresh HealthCheckInterval
// deadline each, returning the subset that failed to answer. It's used
// both by the periodic sweep and by the coordinator right before a
// match starts, to filter the roster down to agents actually known to
// be alive (spec's "remove_noshows" step).
func HealthCheckAll(ctx context.Context, d Dispatcher, ids []string) (unhealthy []string) {
	for _, id := range ids {
		cctx, cancel := context.WithTimeout(ctx, HealthCheckInterval)
		err := d.HealthCheck(cctx, id)
		cancel()
		if err != nil {
			unhealthy = append(unhealthy, id)
		}
	}
	return unhealthy
}

// FilterHealthy returns the subset of ids not present in unhealthy,
// preserving ids' order.
func FilterHealthy(ids, unhealthy []string) []string {
	if len(unhealthy) == 0 {
		return ids
	}
	bad := make(map[string]bool, len(unhealthy))
	for _, id := range unhealthy {
		bad[id] = true
	}
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if !bad[id] {
			out = append(out, id)
		}
	}
	return out
}
