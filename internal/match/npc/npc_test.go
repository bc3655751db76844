package npc

import (
	"math/rand"
	"testing"

	"github.com/assemblymechs/arena-core/internal/geometry"
	"github.com/assemblymechs/arena-core/internal/match"
)

func newTestState(t *testing.T, width, height int) *match.State {
	t.Helper()
	board, err := geometry.NewBoard(width, height)
	if err != nil {
		t.Fatal(err)
	}
	return match.NewState(match.Parameters{MatchID: "m1", Actors: []string{"turret"}, MaxTurns: 10, APsPerTurn: 4}, board)
}

func spawnAt(state *match.State, id string, p geometry.Point) {
	state.Mechs[id] = &match.MechState{ID: id, Position: p, Health: match.InitialHealth, Alive: true, RemainingAPs: 4, Registers: map[match.RegisterName]match.RegisterValue{}}
}

func TestCornerTurretMovesTowardNearestCornerWhenNotCornered(t *testing.T) {
	state := newTestState(t, 20, 20)
	spawnAt(state, "turret", geometry.Point{X: 3, Y: 17})

	turret := NewCornerTurret(rand.New(rand.NewSource(1)))
	cmds := turret.HandleTurn(state, "turret")

	if len(cmds) != 2 {
		t.Fatalf("cmds = %+v, want 2 commands", cmds)
	}
	if cmds[0].Kind != match.CommandMove {
		t.Errorf("cmds[0].Kind = %v, want Move", cmds[0].Kind)
	}
	if cmds[0].Dir != geometry.NorthWest {
		t.Errorf("dir = %v, want NorthWest", cmds[0].Dir)
	}
	if cmds[1].Kind != match.CommandFinishTurn {
		t.Errorf("cmds[1].Kind = %v, want FinishTurn", cmds[1].Kind)
	}
}

func TestCornerTurretFiresWhenAlreadyCornered(t *testing.T) {
	state := newTestState(t, 20, 20)
	spawnAt(state, "turret", geometry.Point{X: 0, Y: 0})

	turret := NewCornerTurret(rand.New(rand.NewSource(1)))
	cmds := turret.HandleTurn(state, "turret")

	if len(cmds) != 3 {
		t.Fatalf("cmds = %+v, want 3 commands", cmds)
	}
	if cmds[0].Kind != match.CommandFirePrimary || cmds[1].Kind != match.CommandFireSecondary {
		t.Errorf("cmds = %+v, want [FirePrimary FireSecondary FinishTurn]", cmds)
	}
}

func TestCornerTurretReturnsNilForDeadOrUnknownMech(t *testing.T) {
	state := newTestState(t, 20, 20)
	turret := NewCornerTurret(rand.New(rand.NewSource(1)))
	if cmds := turret.HandleTurn(state, "ghost"); cmds != nil {
		t.Errorf("cmds = %+v, want nil", cmds)
	}
}

func TestClippyFiresOnFirstFoeThenRescans(t *testing.T) {
	state := newTestState(t, 20, 20)
	spawnAt(state, "clippy", geometry.Point{X: 5, Y: 5})
	state.RadarPings["clippy"] = []match.RadarPing{
		{Name: "friendlyMech", Foe: false, Location: geometry.Point{X: 5, Y: 6}},
		{Name: "enemyMech", Foe: true, Location: geometry.Point{X: 5, Y: 10}},
	}

	cmds := Clippy{}.HandleTurn(state, "clippy")
	if len(cmds) != 3 {
		t.Fatalf("cmds = %+v, want 3 commands", cmds)
	}
	if cmds[0].Kind != match.CommandFirePrimary {
		t.Errorf("cmds[0].Kind = %v, want FirePrimary", cmds[0].Kind)
	}
	if cmds[0].Dir != geometry.North {
		t.Errorf("dir = %v, want North (foe due north)", cmds[0].Dir)
	}
	if cmds[1].Kind != match.CommandRequestRadarScan {
		t.Errorf("cmds[1].Kind = %v, want RequestRadarScan", cmds[1].Kind)
	}
	if cmds[2].Kind != match.CommandFinishTurn {
		t.Errorf("cmds[2].Kind = %v, want FinishTurn", cmds[2].Kind)
	}
}

func TestClippyRequestsScanWithNoFoesInView(t *testing.T) {
	state := newTestState(t, 20, 20)
	spawnAt(state, "clippy", geometry.Point{X: 5, Y: 5})

	cmds := Clippy{}.HandleTurn(state, "clippy")
	if len(cmds) != 2 {
		t.Fatalf("cmds = %+v, want 2 commands", cmds)
	}
	if cmds[0].Kind != match.CommandRequestRadarScan {
		t.Errorf("cmds[0].Kind = %v, want RequestRadarScan", cmds[0].Kind)
	}
}
