package match

import (
	"sort"

	"github.com/assemblymechs/arena-core/internal/radar"
)

// radarMechs adapts every mech in state to the radar package's Target
// shape. Order doesn't matter: radar.Scan visits board tiles, not this
// slice, in a fixed sequence.
func radarMechs(s *State) []radar.Target {
	out := make([]radar.Target, 0, len(s.Mechs))
	for _, m := range s.Mechs {
		out = append(out, radar.Target{
			ID: m.ID, Name: m.Name, Avatar: m.Avatar, Team: m.Team,
			Position: m.Position, Alive: m.Alive,
		})
	}
	return out
}

func radarSelf(m *MechState) radar.Scanner {
	return radar.Scanner{ID: m.ID, Team: m.Team, Position: m.Position}
}

// sortedAliveIDs returns the ids of every living mech, sorted for
// determinism: replaying identical commands must yield byte-identical
// event sequences, so MaxTurnsCompleted's survivor list must not
// depend on Go's randomized map iteration order.
func sortedAliveIDs(s *State) []string {
	ids := s.AliveIDs()
	sort.Strings(ids)
	return ids
}
