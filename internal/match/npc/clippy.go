package npc

import (
	"github.com/assemblymechs/arena-core/internal/geometry"
	"github.com/assemblymechs/arena-core/internal/match"
)

// Clippy fires on the first foe its last radar scan reported, then
// requests a fresh scan every turn so it always has a target to react
// to next time. It never moves.
type Clippy struct{}

func (Clippy) HandleTurn(state *match.State, mechID string) []match.MechCommand {
	mech, ok := state.Mechs[mechID]
	if !ok || !mech.Alive {
		return nil
	}

	cmds := make([]match.MechCommand, 0, 3)
	for _, ping := range state.RadarPings[mechID] {
		if ping.Foe {
			dir := geometry.Bearing(mech.Position, ping.Location)
			cmds = append(cmds, match.FirePrimary(mechID, dir))
			break
		}
	}

	cmds = append(cmds, match.RequestRadarScan(mechID))
	cmds = append(cmds, match.FinishTurn(mechID, state.Turn.Current))
	return cmds
}

var _ Handler = Clippy{}
