// Package radar implements the fixed-pattern radar scan: an 8-lobed
// cross centered on the scanning mech, with per-direction ranges and
// friend/foe classification. No line-of-sight blocking is performed —
// intermediate mechs are always included.
package radar

import (
	"strings"

	"github.com/assemblymechs/arena-core/internal/geometry"
)

// lobeRanges is the per-direction scan range of a single radar ping:
// NW:3, N:4, NE:3, W:4, E:4, SW:3, S:4, SE:3.
var lobeRanges = map[geometry.Direction]int{
	geometry.North:     4,
	geometry.NorthEast: 3,
	geometry.East:      4,
	geometry.SouthEast: 3,
	geometry.South:     4,
	geometry.SouthWest: 3,
	geometry.West:      4,
	geometry.NorthWest: 3,
}

var lobeOrder = []geometry.Direction{
	geometry.NorthWest, geometry.North, geometry.NorthEast, geometry.West,
	geometry.East, geometry.SouthWest, geometry.South, geometry.SouthEast,
}

// Scanner is the mech performing the scan.
type Scanner struct {
	ID       string
	Team     string
	Position geometry.Point
}

// Target is a candidate mech that may appear in the scan result.
type Target struct {
	ID       string
	Name     string
	Avatar   string
	Team     string
	Position geometry.Point
	Alive    bool
}

// Ping is one observed mech in a radar scan result.
type Ping struct {
	Name     string
	Avatar   string
	Foe      bool
	Location geometry.Point
	Distance int
}

// Scan enumerates the 8 fixed lobes around scanner and returns a Ping
// for every tile, in every lobe, that holds a living mech other than
// the scanner itself.
func Scan(board geometry.Board, targets []Target, scanner Scanner) []Ping {
	var pings []Ping
	for _, dir := range lobeOrder {
		for _, step := range geometry.GatherPoints(board, scanner.Position, dir, lobeRanges[dir]) {
			for _, t := range targets {
				if !t.Alive || t.ID == scanner.ID || t.Position != step.Point {
					continue
				}
				pings = append(pings, Ping{
					Name:     t.Name,
					Avatar:   t.Avatar,
					Foe:      !strings.EqualFold(t.Team, scanner.Team),
					Location: t.Position,
					Distance: step.Distance,
				})
			}
		}
	}
	return pings
}
