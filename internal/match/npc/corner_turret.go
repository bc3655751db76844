package npc

import (
	"math/rand"

	"github.com/assemblymechs/arena-core/internal/geometry"
	"github.com/assemblymechs/arena-core/internal/match"
)

// CornerTurret retreats to the nearest board corner and, once there,
// spends every turn firing both weapons in a direction biased towards
// the interior from whichever corner it occupies.
type CornerTurret struct {
	RNG *rand.Rand
}

// NewCornerTurret returns a CornerTurret using rng for its fire
// direction when cornered; a nil rng falls back to an unseeded
// default source.
func NewCornerTurret(rng *rand.Rand) *CornerTurret {
	if rng == nil {
		rng = rand.New(rand.NewSource(1))
	}
	return &CornerTurret{RNG: rng}
}

func (c *CornerTurret) HandleTurn(state *match.State, mechID string) []match.MechCommand {
	mech, ok := state.Mechs[mechID]
	if !ok || !mech.Alive {
		return nil
	}

	if dir, ok := closestCorner(state.Board, mech.Position); ok {
		return []match.MechCommand{
			match.Move(mechID, dir),
			match.FinishTurn(mechID, state.Turn.Current),
		}
	}

	dir := c.fireDirection(state.Board, mech.Position)
	return []match.MechCommand{
		match.FirePrimary(mechID, dir),
		match.FireSecondary(mechID, dir),
		match.FinishTurn(mechID, state.Turn.Current),
	}
}

// closestCorner reports the direction to move towards whichever board
// corner is nearest p, or false once p is already sitting on an edge
// in both axes (i.e. occupying a corner).
func closestCorner(b geometry.Board, p geometry.Point) (geometry.Direction, bool) {
	var vertical, horizontal geometry.Direction
	haveVertical, haveHorizontal := true, true

	switch {
	case p.X == 0 || p.X == b.Width:
		haveHorizontal = false
	case p.X < b.Width-p.X:
		horizontal = geometry.West
	default:
		horizontal = geometry.East
	}

	switch {
	case p.Y == 0 || p.Y == b.Height:
		haveVertical = false
	case p.Y < b.Height-p.Y:
		// closer to y=0, the south edge in this board's +Y-north convention
		vertical = geometry.South
	default:
		vertical = geometry.North
	}

	switch {
	case haveVertical && haveHorizontal:
		return combineCorner(vertical, horizontal), true
	case haveVertical:
		return vertical, true
	case haveHorizontal:
		return horizontal, true
	default:
		return 0, false
	}
}

func combineCorner(vertical, horizontal geometry.Direction) geometry.Direction {
	switch {
	case vertical == geometry.North && horizontal == geometry.West:
		return geometry.NorthWest
	case vertical == geometry.North && horizontal == geometry.East:
		return geometry.NorthEast
	case vertical == geometry.South && horizontal == geometry.East:
		return geometry.SouthEast
	default: // South, West
		return geometry.SouthWest
	}
}

// fireDirection picks a random direction biased into the board from
// whichever corner p occupies; p not being an exact corner falls back
// to a uniformly random direction.
func (c *CornerTurret) fireDirection(b geometry.Board, p geometry.Point) geometry.Direction {
	pick := func(a, d geometry.Direction) geometry.Direction {
		if c.RNG.Intn(2) == 0 {
			return a
		}
		return d
	}
	switch {
	case p.X == 0 && p.Y == 0: // southwest corner, interior is northeast
		return pick(geometry.North, geometry.East)
	case p.X == 0 && p.Y == b.Height: // northwest corner, interior is southeast
		return pick(geometry.South, geometry.East)
	case p.X == b.Width && p.Y == 0: // southeast corner, interior is northwest
		return pick(geometry.North, geometry.West)
	case p.X == b.Width && p.Y == b.Height: // northeast corner, interior is southwest
		return pick(geometry.South, geometry.West)
	default:
		return geometry.Direction(c.RNG.Intn(8))
	}
}

var _ Handler = (*CornerTurret)(nil)
