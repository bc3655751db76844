package dispatch

import (
	"context"

	"github.com/assemblymechs/arena-core/internal/bus"
	"github.com/assemblymechs/arena-core/internal/protocol"
)

// BusInvoker adapts a bus.Bus into an Invoker by addressing each call
// to the per-agent, per-op subject an agent subscribes to for
// request/reply. Health probes and turn requests for the same agent
// therefore land on distinct subjects, so an agent can register
// separate handlers for each without inspecting the payload.
type BusInvoker struct {
	Bus     bus.Bus
	MatchID string
}

// NewBusInvoker returns an Invoker that dispatches to agents over b,
// scoping turn subjects to matchID.
func NewBusInvoker(b bus.Bus, matchID string) *BusInvoker {
	return &BusInvoker{Bus: b, MatchID: matchID}
}

func (b *BusInvoker) Invoke(ctx context.Context, agentID, op string, payload []byte) ([]byte, error) {
	subject := b.subjectFor(agentID, op)
	return b.Bus.Request(ctx, subject, payload)
}

func (b *BusInvoker) subjectFor(agentID, op string) string {
	if op == OpHealthRequest {
		return protocol.TurnSubject(b.MatchID, agentID) + ".health"
	}
	return protocol.TurnSubject(b.MatchID, agentID)
}

var _ Invoker = (*BusInvoker)(nil)
