package dispatch

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/assemblymechs/arena-core/internal/match"
	"github.com/assemblymechs/arena-core/internal/protocol"
)

// TakeTurn asks agentID to act for the given turn, JSON-encoding the
// request and decoding its reply as a protocol.TakeTurnResponse. A
// dispatch error or a malformed response both come back as the
// forfeit sentinel ErrForfeit so callers have one thing to check for
// "this agent gets nothing this turn."
func TakeTurn(ctx context.Context, d Dispatcher, req protocol.TakeTurn) (protocol.TakeTurnResponse, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return protocol.TakeTurnResponse{}, fmt.Errorf("dispatch: encode take-turn for %s: %w", req.Actor, err)
	}

	raw, err := d.Dispatch(ctx, req.Actor, OpTakeTurn, payload)
	if err != nil {
		return protocol.TakeTurnResponse{}, fmt.Errorf("%w: %s", ErrForfeit, err)
	}

	var resp protocol.TakeTurnResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return protocol.TakeTurnResponse{}, fmt.Errorf("%w: decode response from %s: %s", ErrForfeit, req.Actor, err)
	}
	return resp, nil
}

// NewTakeTurnRequest builds the request envelope TakeTurn sends,
// snapshotting state so the agent can't observe partial updates from
// mechs processed earlier in the same turn.
func NewTakeTurnRequest(matchID, actor string, turn uint64, state *match.State) protocol.TakeTurn {
	return protocol.TakeTurn{
		Actor:   actor,
		MatchID: matchID,
		Turn:    turn,
		State:   *state.Clone(),
	}
}
