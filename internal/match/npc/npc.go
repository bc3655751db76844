// Package npc provides deterministic built-in mech handlers used to
// fill out a match's roster without a real agent behind every seat
// and to exercise the coordinator/dispatch path in tests. Each handler
// is a pure function of the match state it's handed: given the current
// snapshot and its own mech id, it returns the commands it wants
// applied this turn.
package npc

import (
	"math/rand"

	"github.com/assemblymechs/arena-core/internal/geometry"
	"github.com/assemblymechs/arena-core/internal/match"
)

// Handler decides one turn's worth of commands for mechID given the
// current match snapshot. Implementations must not mutate state.
type Handler interface {
	HandleTurn(state *match.State, mechID string) []match.MechCommand
}

// HandlerFunc adapts a plain function to Handler.
type HandlerFunc func(state *match.State, mechID string) []match.MechCommand

func (f HandlerFunc) HandleTurn(state *match.State, mechID string) []match.MechCommand {
	return f(state, mechID)
}
