// Package match implements the deterministic match aggregate: the pair
// of pure functions HandleCommand and ApplyEvent, plus the
// geometry-driven invariants (action-point budget, collisions, damage,
// ranges, splash, turn advancement, end-of-match detection) they
// enforce.
package match

import (
	"errors"
	"fmt"

	"github.com/assemblymechs/arena-core/internal/geometry"
	"github.com/assemblymechs/arena-core/internal/radar"
)

// Damage and range constants.
const (
	WallDamageAmount      uint64 = 50
	PrimaryDamageAmount   uint64 = 100
	SecondaryDamageAmount uint64 = 140
	SplashDamageAmount    uint64 = 90

	PrimaryRange   = 3
	SecondaryRange = 6
)

// ErrDuplicateFinishTurn is returned by HandleCommand when a mech calls
// FinishTurn twice for the same turn. This is a command-level error:
// the coordinator logs it and continues, no event is emitted.
var ErrDuplicateFinishTurn = errors.New("match: duplicate FinishTurn for current turn")

// HandleCommand projects a command against the current state into the
// ordered list of events it produces. It never mutates state. Once the
// match has completed, HandleCommand is a no-op (returns no events).
func HandleCommand(s *State, cmd MechCommand) ([]GameEvent, error) {
	if s.Completed != nil {
		return nil, nil
	}

	switch cmd.Kind {
	case CommandSpawnMech:
		return handleSpawn(s, cmd), nil
	case CommandMove:
		return handleMove(s, cmd)
	case CommandFirePrimary:
		return handleFirePrimary(s, cmd)
	case CommandFireSecondary:
		return handleFireSecondary(s, cmd)
	case CommandRequestRadarScan:
		return handleRadarScan(s, cmd)
	case CommandFinishTurn:
		return handleFinishTurn(s, cmd)
	case CommandRegisterUpdate:
		return handleRegisterUpdate(s, cmd), nil
	default:
		return nil, fmt.Errorf("match: unknown command kind %d", cmd.Kind)
	}
}

// requireAPs is the shared validation pre-check for Move/FirePrimary/
// FireSecondary/RequestRadarScan: the mech must exist and have enough
// remaining action points. On failure it produces the single
// ActionPointsExceeded event that reports the shortfall.
func requireAPs(s *State, cmd MechCommand) (*MechState, []GameEvent, bool) {
	m, ok := s.Mechs[cmd.Mech]
	cost := cmd.Kind.ActionPoints()
	if !ok || m.RemainingAPs < cost {
		return nil, []GameEvent{{Kind: EventActionPointsExceeded, Mech: cmd.Mech, Points: cost}}, false
	}
	return m, nil, true
}

func handleMove(s *State, cmd MechCommand) ([]GameEvent, error) {
	m, failEvents, ok := requireAPs(s, cmd)
	if !ok {
		return failEvents, nil
	}

	events := make([]GameEvent, 0, 2)
	target, onBoard := geometry.RelativePoint(s.Board, m.Position, cmd.Dir, 1)
	switch {
	case !onBoard:
		events = append(events, GameEvent{
			Kind: EventDamageTaken, Mech: m.ID, Damage: WallDamageAmount,
			Source: WallDamage(), Remaining: saturatingSub(m.Health, WallDamageAmount),
		})
	default:
		if blocker := s.mechAt(target); blocker != nil && blocker.ID != m.ID {
			events = append(events, GameEvent{
				Kind: EventDamageTaken, Mech: m.ID, Damage: WallDamageAmount,
				Source: CollisionDamage(blocker.Name), Remaining: saturatingSub(m.Health, WallDamageAmount),
			})
		} else {
			events = append(events, GameEvent{Kind: EventPositionUpdated, Mech: m.ID, Position: target})
		}
	}
	// The move's action point is always consumed, even on collision or
	// off-board bounce.
	events = append(events, GameEvent{Kind: EventActionPointsConsumed, Mech: m.ID, Points: 1})
	return events, nil
}

func handleFirePrimary(s *State, cmd MechCommand) ([]GameEvent, error) {
	m, failEvents, ok := requireAPs(s, cmd)
	if !ok {
		return failEvents, nil
	}

	events := make([]GameEvent, 0, 3)
	for _, step := range geometry.GatherPoints(s.Board, m.Position, cmd.Dir, PrimaryRange) {
		if victim := s.mechAt(step.Point); victim != nil {
			events = append(events, damageEvents(s, m.ID, victim, PrimaryDamageAmount)...)
			break
		}
	}
	events = append(events, GameEvent{Kind: EventActionPointsConsumed, Mech: m.ID, Points: 2})
	return events, nil
}

func handleFireSecondary(s *State, cmd MechCommand) ([]GameEvent, error) {
	m, failEvents, ok := requireAPs(s, cmd)
	if !ok {
		return failEvents, nil
	}

	events := make([]GameEvent, 0, 4)
	var splashOrigin geometry.Point
	haveSplashOrigin := false

	for _, step := range geometry.GatherPoints(s.Board, m.Position, cmd.Dir, SecondaryRange) {
		if victim := s.mechAt(step.Point); victim != nil {
			events = append(events, damageEvents(s, m.ID, victim, SecondaryDamageAmount)...)
			splashOrigin = victim.Position
			haveSplashOrigin = true
			break
		}
	}
	if !haveSplashOrigin {
		if landing, onBoard := geometry.RelativePoint(s.Board, m.Position, cmd.Dir, SecondaryRange); onBoard {
			splashOrigin = landing
			haveSplashOrigin = true
		}
	}

	if haveSplashOrigin {
		for _, n := range geometry.AdjacentPoints(s.Board, splashOrigin) {
			if splashed := s.mechAt(n); splashed != nil {
				events = append(events, damageEvents(s, m.ID, splashed, SplashDamageAmount)...)
			}
		}
	}

	events = append(events, GameEvent{Kind: EventActionPointsConsumed, Mech: m.ID, Points: 4})
	return events, nil
}

func handleRadarScan(s *State, cmd MechCommand) ([]GameEvent, error) {
	m, failEvents, ok := requireAPs(s, cmd)
	if !ok {
		return failEvents, nil
	}

	results := radar.Scan(s.Board, radarMechs(s), radarSelf(m))
	pings := make([]RadarPing, len(results))
	for i, r := range results {
		pings[i] = RadarPing{Name: r.Name, Avatar: r.Avatar, Foe: r.Foe, Location: r.Location, Distance: r.Distance}
	}

	return []GameEvent{
		{Kind: EventRadarScanCompleted, Mech: m.ID, RadarResults: pings},
		{Kind: EventActionPointsConsumed, Mech: m.ID, Points: 1},
	}, nil
}

func handleFinishTurn(s *State, cmd MechCommand) ([]GameEvent, error) {
	if cmd.Turn == s.Turn.Current && s.Turn.Taken[cmd.Mech] {
		return nil, ErrDuplicateFinishTurn
	}

	events := []GameEvent{{Kind: EventMechTurnCompleted, Mech: cmd.Mech}}

	if isLastOutstandingFinish(s, cmd.Mech) {
		newTurn := s.Turn.Current + 1
		events = append(events, GameEvent{Kind: EventMatchTurnCompleted, NewTurn: newTurn})

		if s.Turn.Current == s.Parameters.MaxTurns-1 {
			events = append(events, GameEvent{
				Kind:  EventGameFinished,
				Cause: EndCause{Kind: EndMaxTurnsCompleted, Survivors: sortedAliveIDs(s)},
			})
		}
	}
	return events, nil
}

// isLastOutstandingFinish reports whether cmd.Mech finishing its turn
// now would bring the taken-set to every alive agent, counted at the
// moment of this FinishTurn (before MechTurnCompleted is applied).
func isLastOutstandingFinish(s *State, mech string) bool {
	aliveActors := 0
	for _, id := range s.Parameters.Actors {
		if m, ok := s.Mechs[id]; ok && m.Alive {
			aliveActors++
		}
	}
	taken := 0
	for id := range s.Turn.Taken {
		if m, ok := s.Mechs[id]; ok && m.Alive {
			taken++
		}
	}
	if !s.Turn.Taken[mech] {
		taken++
	}
	return aliveActors > 0 && taken == aliveActors
}

func handleRegisterUpdate(s *State, cmd MechCommand) []GameEvent {
	m, ok := s.Mechs[cmd.Mech]
	if !ok {
		return nil
	}

	current, hasCurrent := m.Registers[cmd.Register]

	switch cmd.Register {
	case RegisterEAX, RegisterECX:
		switch cmd.Op.Kind {
		case RegisterSet:
			return []GameEvent{{Kind: EventRegisterUpdate, Mech: m.ID, Register: cmd.Register, Value: NumberValue(cmd.Op.Number)}}
		case RegisterAccumulate:
			if hasCurrent && current.Kind != RegisterValueNumber {
				return nil
			}
			base := uint64(0)
			if hasCurrent {
				base = current.Number
			}
			return []GameEvent{{Kind: EventRegisterUpdate, Mech: m.ID, Register: cmd.Register, Value: NumberValue(saturatingAdd(base, cmd.Op.Number))}}
		case RegisterDecrement:
			if hasCurrent && current.Kind != RegisterValueNumber {
				return nil
			}
			base := uint64(0)
			if hasCurrent {
				base = current.Number
			}
			return []GameEvent{{Kind: EventRegisterUpdate, Mech: m.ID, Register: cmd.Register, Value: NumberValue(saturatingSub(base, cmd.Op.Number))}}
		}
	case RegisterEBX:
		if cmd.Op.Kind == RegisterSet {
			return []GameEvent{{Kind: EventRegisterUpdate, Mech: m.ID, Register: cmd.Register, Value: TextValue(cmd.Op.Text)}}
		}
	}
	return nil
}

func handleSpawn(s *State, cmd MechCommand) []GameEvent {
	pos, ok := nearestUnoccupied(s, cmd.Position)
	if !ok {
		return nil
	}
	return []GameEvent{{
		Kind: EventMechSpawned, Mech: cmd.Mech, Position: pos,
		Team: cmd.Team, Avatar: cmd.Avatar, Name: cmd.Name,
	}}
}

// nearestUnoccupied performs a BFS-like radial walk: if the
// target tile is empty use it; otherwise visit tiles in rings
// outward from it, each ring's tiles enqueued in N,NE,E,SE,S,SW,W,NW
// order, and return the first unoccupied tile dequeued. The board is
// finite so the walk terminates; if every tile is occupied, ok is
// false and the spawn is dropped.
func nearestUnoccupied(s *State, target geometry.Point) (geometry.Point, bool) {
	visited := map[geometry.Point]bool{target: true}
	queue := []geometry.Point{target}

	for len(queue) > 0 {
		candidate := queue[0]
		queue = queue[1:]

		if s.mechAt(candidate) == nil {
			return candidate, true
		}

		for _, dir := range geometry.NeighborProbeOrder() {
			if n, onBoard := geometry.RelativePoint(s.Board, candidate, dir, 1); onBoard && !visited[n] {
				visited[n] = true
				queue = append(queue, n)
			}
		}
	}
	return geometry.Point{}, false
}

// damageEvents implements do_damage: always a DamageTaken event, plus
// MechDestroyed if the damage meets or exceeds remaining health, plus
// GameFinished{MechVictory} if exactly one other mech remains alive
// afterwards.
func damageEvents(s *State, from string, to *MechState, amount uint64) []GameEvent {
	remaining := saturatingSub(to.Health, amount)
	events := []GameEvent{{
		Kind: EventDamageTaken, Mech: to.ID, Damage: amount,
		Source: WeaponDamage(from), Remaining: remaining,
	}}

	if amount < to.Health {
		return events
	}

	events = append(events, GameEvent{Kind: EventMechDestroyed, Mech: to.ID})

	survivors := make([]string, 0, len(s.Mechs))
	for _, m := range s.Mechs {
		if m.ID == to.ID || !m.Alive {
			continue
		}
		survivors = append(survivors, m.ID)
	}
	if len(survivors) == 1 {
		events = append(events, GameEvent{Kind: EventGameFinished, Cause: EndCause{Kind: EndMechVictory, Victor: survivors[0]}})
	}
	return events
}

func saturatingSub(a, b uint64) uint64 {
	if b >= a {
		return 0
	}
	return a - b
}

func saturatingAdd(a, b uint64) uint64 {
	sum := a + b
	if sum < a { // overflow
		return ^uint64(0)
	}
	return sum
}
