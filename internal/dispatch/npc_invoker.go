package dispatch

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/assemblymechs/arena-core/internal/match/npc"
	"github.com/assemblymechs/arena-core/internal/protocol"
)

// NPCInvoker answers TakeTurn/HealthRequest calls for a fixed roster
// of built-in handlers directly in-process, with no bus round-trip.
// It's how a match fills seats with corner turrets, Clippy, or any
// other Handler instead of a real remote agent.
type NPCInvoker struct {
	handlers map[string]npc.Handler
}

// NewNPCInvoker returns an Invoker backed by roster, keyed by mech id.
func NewNPCInvoker(roster map[string]npc.Handler) *NPCInvoker {
	return &NPCInvoker{handlers: roster}
}

func (n *NPCInvoker) Invoke(_ context.Context, agentID, op string, payload []byte) ([]byte, error) {
	handler, ok := n.handlers[agentID]
	if !ok {
		return nil, fmt.Errorf("dispatch: no npc handler registered for %s", agentID)
	}

	if op == OpHealthRequest {
		return []byte(`{}`), nil
	}

	var req protocol.TakeTurn
	if err := json.Unmarshal(payload, &req); err != nil {
		return nil, fmt.Errorf("dispatch: decode take-turn for %s: %w", agentID, err)
	}

	resp := protocol.TakeTurnResponse{Commands: handler.HandleTurn(&req.State, agentID)}
	return json.Marshal(resp)
}

var _ Invoker = (*NPCInvoker)(nil)
