package match

import (
	"sort"
	"testing"

	"github.com/assemblymechs/arena-core/internal/geometry"
)

func newTestState(t *testing.T) *State {
	t.Helper()
	board, err := geometry.NewBoard(24, 24)
	if err != nil {
		t.Fatal(err)
	}
	params := Parameters{MatchID: "m1", Actors: []string{"al", "bob"}, MaxTurns: 10, APsPerTurn: 4}
	return NewState(params, board)
}

func spawnAt(t *testing.T, s *State, id string, p geometry.Point, team string) {
	t.Helper()
	if _, err := Fold(s, SpawnMech(id, p, team, "avatar.png", id)); err != nil {
		t.Fatalf("spawn %s: %v", id, err)
	}
}

func TestScenario1_PrimaryFireHit(t *testing.T) {
	s := newTestState(t)
	spawnAt(t, s, "shooter", geometry.Point{X: 10, Y: 6}, "earth")
	spawnAt(t, s, "victim", geometry.Point{X: 12, Y: 8}, "earth")

	if _, err := Fold(s, FirePrimary("shooter", geometry.NorthEast)); err != nil {
		t.Fatal(err)
	}

	if got := s.Mechs["victim"].Health; got != 900 {
		t.Errorf("victim health = %d, want 900", got)
	}
	if got := s.Mechs["shooter"].RemainingAPs; got != 2 {
		t.Errorf("shooter remaining aps = %d, want 2", got)
	}
}

func TestScenario2_SecondaryFireWithSplash(t *testing.T) {
	s := newTestState(t)
	spawnAt(t, s, "shooter", geometry.Point{X: 10, Y: 6}, "earth")
	spawnAt(t, s, "victim", geometry.Point{X: 11, Y: 7}, "earth")

	if _, err := Fold(s, FireSecondary("shooter", geometry.NorthEast)); err != nil {
		t.Fatal(err)
	}

	if got := s.Mechs["victim"].Health; got != 860 {
		t.Errorf("victim health = %d, want 860", got)
	}
	if got := s.Mechs["shooter"].Health; got != 910 {
		t.Errorf("shooter health = %d, want 910", got)
	}
}

func TestScenario3_GameEndsByVictory(t *testing.T) {
	s := newTestState(t)
	spawnAt(t, s, "al", geometry.Point{X: 10, Y: 6}, "earth")
	spawnAt(t, s, "bob", geometry.Point{X: 11, Y: 6}, "earth")

	for round := 0; round < 10; round++ {
		if _, err := Fold(s, FirePrimary("al", geometry.East)); err != nil {
			t.Fatalf("round %d fire: %v", round, err)
		}
		if s.Completed != nil {
			break
		}
		if _, err := Fold(s, FinishTurn("al", s.Turn.Current)); err != nil {
			t.Fatalf("round %d al finish: %v", round, err)
		}
		if _, err := Fold(s, FinishTurn("bob", s.Turn.Current)); err != nil {
			t.Fatalf("round %d bob finish: %v", round, err)
		}
	}

	if s.Completed == nil {
		t.Fatal("expected match to complete")
	}
	if s.Completed.Kind != EndMechVictory || s.Completed.Victor != "al" {
		t.Errorf("completed = %+v, want MechVictory(al)", s.Completed)
	}
}

func TestScenario4_GameEndsByMaxTurns(t *testing.T) {
	s := newTestState(t)
	spawnAt(t, s, "al", geometry.Point{X: 10, Y: 6}, "earth")
	spawnAt(t, s, "bob", geometry.Point{X: 11, Y: 7}, "earth")

	for turn := 0; turn < 10; turn++ {
		if _, err := Fold(s, FinishTurn("al", s.Turn.Current)); err != nil {
			t.Fatalf("turn %d al finish: %v", turn, err)
		}
		if _, err := Fold(s, FinishTurn("bob", s.Turn.Current)); err != nil {
			t.Fatalf("turn %d bob finish: %v", turn, err)
		}
	}

	if s.Completed == nil {
		t.Fatal("expected match to complete")
	}
	if s.Completed.Kind != EndMaxTurnsCompleted {
		t.Fatalf("completed = %+v, want MaxTurnsCompleted", s.Completed)
	}
	survivors := append([]string(nil), s.Completed.Survivors...)
	sort.Strings(survivors)
	want := []string{"al", "bob"}
	if len(survivors) != 2 || survivors[0] != want[0] || survivors[1] != want[1] {
		t.Errorf("survivors = %v, want %v", survivors, want)
	}
}

func TestScenario5_CollisionDamage(t *testing.T) {
	s := newTestState(t)
	spawnAt(t, s, "al", geometry.Point{X: 10, Y: 6}, "earth")
	spawnAt(t, s, "bob", geometry.Point{X: 11, Y: 6}, "earth")

	events, err := Fold(s, Move("al", geometry.East))
	if err != nil {
		t.Fatal(err)
	}

	if got := s.Mechs["al"].Position; got != (geometry.Point{X: 10, Y: 6}) {
		t.Errorf("al position = %v, want unchanged", got)
	}
	if got := s.Mechs["al"].Health; got != 950 {
		t.Errorf("al health = %d, want 950", got)
	}

	found := false
	for _, e := range events {
		if e.Kind == EventDamageTaken && e.Source.Kind == DamageFromCollision {
			found = true
			if e.Source.CollisionWith != "bob" {
				t.Errorf("collision source = %q, want bob", e.Source.CollisionWith)
			}
			if e.Damage != 50 {
				t.Errorf("collision damage = %d, want 50", e.Damage)
			}
		}
	}
	if !found {
		t.Error("expected a DamageTaken(MechCollision) event")
	}
}

func TestScenario6_RadarClassification(t *testing.T) {
	s := newTestState(t)
	spawnAt(t, s, "al", geometry.Point{X: 10, Y: 6}, "earth")
	spawnAt(t, s, "bob", geometry.Point{X: 13, Y: 9}, "earth")
	spawnAt(t, s, "steve", geometry.Point{X: 14, Y: 6}, "boylur")

	if _, err := Fold(s, RequestRadarScan("al")); err != nil {
		t.Fatal(err)
	}

	pings := s.RadarPings["al"]
	if len(pings) != 2 {
		t.Fatalf("got %d pings, want 2: %+v", len(pings), pings)
	}

	byName := map[string]RadarPing{}
	for _, p := range pings {
		byName[p.Name] = p
	}

	bob, ok := byName["bob"]
	if !ok || bob.Foe || bob.Distance != 3 || bob.Location != (geometry.Point{X: 13, Y: 9}) {
		t.Errorf("bob ping = %+v", bob)
	}
	steve, ok := byName["steve"]
	if !ok || !steve.Foe || steve.Distance != 4 || steve.Location != (geometry.Point{X: 14, Y: 6}) {
		t.Errorf("steve ping = %+v", steve)
	}
}

func TestBoundaryMoveOffSouthwestCorner(t *testing.T) {
	s := newTestState(t)
	spawnAt(t, s, "al", geometry.Point{X: 0, Y: 0}, "earth")

	events, err := Fold(s, Move("al", geometry.South))
	if err != nil {
		t.Fatal(err)
	}

	var dmg *GameEvent
	for i := range events {
		if events[i].Kind == EventDamageTaken {
			dmg = &events[i]
		}
	}
	if dmg == nil || dmg.Source.Kind != DamageFromWall || dmg.Damage != 50 {
		t.Errorf("expected wall damage of 50, got %+v", dmg)
	}
}

func TestRegisterAccumulateSaturates(t *testing.T) {
	s := newTestState(t)
	spawnAt(t, s, "al", geometry.Point{X: 5, Y: 5}, "earth")

	maxU64 := ^uint64(0)
	if _, err := Fold(s, UpdateRegister("al", RegisterEAX, RegisterOp{Kind: RegisterSet, Number: maxU64 - 100})); err != nil {
		t.Fatal(err)
	}
	if _, err := Fold(s, UpdateRegister("al", RegisterEAX, RegisterOp{Kind: RegisterAccumulate, Number: maxU64})); err != nil {
		t.Fatal(err)
	}

	got := s.Mechs["al"].Registers[RegisterEAX]
	if got.Kind != RegisterValueNumber || got.Number != maxU64 {
		t.Errorf("EAX = %+v, want saturated to max u64", got)
	}
}

func TestRegisterTypeMismatchSilentlyDropped(t *testing.T) {
	s := newTestState(t)
	spawnAt(t, s, "al", geometry.Point{X: 5, Y: 5}, "earth")

	events, err := Fold(s, UpdateRegister("al", RegisterEBX, RegisterOp{Kind: RegisterAccumulate, Number: 5}))
	if err != nil {
		t.Fatal(err)
	}
	if len(events) != 0 {
		t.Errorf("expected no event for invalid EBX op, got %+v", events)
	}
}

func TestSpawnOntoOccupiedProbesNeighborOrder(t *testing.T) {
	s := newTestState(t)
	spawnAt(t, s, "al", geometry.Point{X: 5, Y: 5}, "earth")
	spawnAt(t, s, "bob", geometry.Point{X: 5, Y: 6}, "earth")

	if _, err := Fold(s, SpawnMech("steve", geometry.Point{X: 5, Y: 5}, "earth", "a", "steve")); err != nil {
		t.Fatal(err)
	}

	if got := s.Mechs["steve"].Position; got != (geometry.Point{X: 6, Y: 6}) {
		t.Errorf("steve spawned at %v, want (6,6)", got)
	}
}

func TestActionPointBudgetEnforced(t *testing.T) {
	s := newTestState(t)
	spawnAt(t, s, "al", geometry.Point{X: 5, Y: 5}, "earth")

	// aps_per_turn = 4; FireSecondary costs 4, leaving none for a Move.
	if _, err := Fold(s, FireSecondary("al", geometry.East)); err != nil {
		t.Fatal(err)
	}
	events, err := Fold(s, Move("al", geometry.North))
	if err != nil {
		t.Fatal(err)
	}
	if len(events) != 1 || events[0].Kind != EventActionPointsExceeded {
		t.Errorf("expected ActionPointsExceeded, got %+v", events)
	}
}

func TestDuplicateFinishTurnIsCommandError(t *testing.T) {
	s := newTestState(t)
	spawnAt(t, s, "al", geometry.Point{X: 5, Y: 5}, "earth")
	spawnAt(t, s, "bob", geometry.Point{X: 6, Y: 5}, "earth")

	if _, err := Fold(s, FinishTurn("al", s.Turn.Current)); err != nil {
		t.Fatal(err)
	}
	if _, err := Fold(s, FinishTurn("al", s.Turn.Current)); err != ErrDuplicateFinishTurn {
		t.Errorf("err = %v, want ErrDuplicateFinishTurn", err)
	}
}

func TestCompletedMatchRejectsCommands(t *testing.T) {
	s := newTestState(t)
	spawnAt(t, s, "al", geometry.Point{X: 5, Y: 5}, "earth")
	cause := EndCause{Kind: EndMechVictory, Victor: "al"}
	s.Completed = &cause

	events, err := Fold(s, Move("al", geometry.North))
	if err != nil {
		t.Fatal(err)
	}
	if len(events) != 0 {
		t.Errorf("expected no-op after completion, got %+v", events)
	}
}

func TestNoTwoMechsOccupySamePoint(t *testing.T) {
	s := newTestState(t)
	spawnAt(t, s, "al", geometry.Point{X: 5, Y: 5}, "earth")
	spawnAt(t, s, "bob", geometry.Point{X: 5, Y: 6}, "earth")

	if _, err := Fold(s, Move("bob", geometry.South)); err != nil {
		t.Fatal(err)
	}

	positions := map[geometry.Point]bool{}
	for _, m := range s.Mechs {
		if !m.Alive {
			continue
		}
		if positions[m.Position] {
			t.Fatalf("two mechs at %v", m.Position)
		}
		positions[m.Position] = true
	}
}
