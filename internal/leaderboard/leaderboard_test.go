package leaderboard

import (
	"testing"

	"github.com/assemblymechs/arena-core/internal/match"
)

func spawned(id, team string) match.GameEvent {
	return match.GameEvent{Kind: match.EventMechSpawned, Mech: id, Name: id, Avatar: id + ".png", Team: team}
}

func TestSpawnUpsertsSummary(t *testing.T) {
	lb := New()
	lb.Apply(spawned("al", "earth"))

	if lb.Len() != 1 {
		t.Fatalf("len = %d, want 1", lb.Len())
	}
	if rank := lb.Rank("al"); rank != 1 {
		t.Errorf("rank = %d, want 1", rank)
	}
}

func TestDestroyAttributesKillOnlyForWeapon(t *testing.T) {
	lb := New()
	lb.Apply(spawned("al", "earth"))
	lb.Apply(spawned("bob", "earth"))

	lb.Apply(match.GameEvent{
		Kind: match.EventMechDestroyed, Mech: "bob",
		Source: match.WeaponDamage("al"),
	})

	al := lb.Snapshot()[0]
	if al.ID != "al" || al.Score != PointsDestroy || al.Kills != 1 {
		t.Errorf("al summary = %+v", al)
	}

	bob := lb.Top(2)[1]
	if bob.ID != "bob" || bob.Deaths != 1 || bob.Kills != 0 {
		t.Errorf("bob summary = %+v", bob)
	}
}

func TestWallDeathDoesNotAttributeKill(t *testing.T) {
	lb := New()
	lb.Apply(spawned("al", "earth"))

	lb.Apply(match.GameEvent{
		Kind: match.EventMechDestroyed, Mech: "al",
		Source: match.WallDamage(),
	})

	al := lb.Snapshot()[0]
	if al.Deaths != 1 {
		t.Errorf("deaths = %d, want 1", al.Deaths)
	}
	if al.Score != 0 || al.Kills != 0 {
		t.Errorf("wall death should not score a kill: %+v", al)
	}
}

func TestCollisionDeathDoesNotAttributeKill(t *testing.T) {
	lb := New()
	lb.Apply(spawned("al", "earth"))

	lb.Apply(match.GameEvent{
		Kind: match.EventMechDestroyed, Mech: "al",
		Source: match.CollisionDamage("bob"),
	})

	al := lb.Snapshot()[0]
	if al.Score != 0 || al.Kills != 0 {
		t.Errorf("collision death should not score a kill: %+v", al)
	}
}

func TestVictoryAwardsWinnerPoints(t *testing.T) {
	lb := New()
	lb.Apply(spawned("al", "earth"))

	lb.Apply(match.GameEvent{
		Kind:  match.EventGameFinished,
		Cause: match.EndCause{Kind: match.EndMechVictory, Victor: "al"},
	})

	al := lb.Snapshot()[0]
	if al.Score != PointsMatchWin || al.Wins != 1 {
		t.Errorf("al summary = %+v", al)
	}
}

func TestMaxTurnsAwardsEverySurvivor(t *testing.T) {
	lb := New()
	lb.Apply(spawned("al", "earth"))
	lb.Apply(spawned("bob", "earth"))

	lb.Apply(match.GameEvent{
		Kind:  match.EventGameFinished,
		Cause: match.EndCause{Kind: match.EndMaxTurnsCompleted, Survivors: []string{"al", "bob"}},
	})

	for _, id := range []string{"al", "bob"} {
		rank := lb.Rank(id)
		entry := lb.Range(rank, rank)[0]
		if entry.Score != PointsMatchSurvive || entry.Draws != 1 {
			t.Errorf("%s summary = %+v", id, entry)
		}
	}
}

func TestUnknownMechEventIsSkippedWithoutBumpingGeneration(t *testing.T) {
	lb := New()
	before := lb.Generation()

	lb.Apply(match.GameEvent{
		Kind: match.EventMechDestroyed, Mech: "ghost",
		Source: match.WeaponDamage("also-ghost"),
	})

	if lb.Generation() != before {
		t.Errorf("generation advanced on an unknown mech: %d -> %d", before, lb.Generation())
	}
	if lb.Len() != 0 {
		t.Errorf("len = %d, want 0", lb.Len())
	}
}

func TestRankOrdersByScoreDescending(t *testing.T) {
	lb := New()
	lb.Apply(spawned("al", "earth"))
	lb.Apply(spawned("bob", "earth"))
	lb.Apply(spawned("steve", "boylur"))

	lb.Apply(match.GameEvent{Kind: match.EventMechDestroyed, Mech: "bob", Source: match.WeaponDamage("al")})
	lb.Apply(match.GameEvent{Kind: match.EventMechDestroyed, Mech: "steve", Source: match.WeaponDamage("al")})

	top := lb.Top(3)
	if len(top) != 3 || top[0].ID != "al" || top[0].Kills != 2 {
		t.Fatalf("top = %+v", top)
	}
	if top[0].Rank != 1 {
		t.Errorf("al rank = %d, want 1", top[0].Rank)
	}
}

// TestRankSurvivesOutOfAlphabeticalRescoring pins a bug where contains,
// remove and Rank assumed the skip list was ordered by ID alone. Once
// bob outscores al, al sorts after bob in the list; rescoring al must
// still find and reposition al's existing node instead of leaving a
// stale one behind.
func TestRankSurvivesOutOfAlphabeticalRescoring(t *testing.T) {
	lb := New()
	lb.Apply(spawned("al", "earth"))
	lb.Apply(spawned("bob", "earth"))
	lb.Apply(spawned("carol", "earth"))

	// bob scores first, sorting ahead of al and carol: bob(100), al(0), carol(0).
	lb.Apply(match.GameEvent{Kind: match.EventMechDestroyed, Mech: "carol", Source: match.WeaponDamage("bob")})
	// al now scores too, reaching parity with bob and sorting ahead of it alphabetically.
	lb.Apply(match.GameEvent{Kind: match.EventMechDestroyed, Mech: "carol", Source: match.WeaponDamage("al")})

	if lb.Len() != 3 {
		t.Fatalf("len = %d, want 3 (al must not have been duplicated)", lb.Len())
	}
	if rank := lb.Rank("al"); rank != 1 {
		t.Errorf("al rank = %d, want 1", rank)
	}
	if rank := lb.Rank("bob"); rank != 2 {
		t.Errorf("bob rank = %d, want 2", rank)
	}
	if rank := lb.Rank("carol"); rank != 3 {
		t.Errorf("carol rank = %d, want 3", rank)
	}
}

func TestApplyAllReplaysFullHistory(t *testing.T) {
	lb := New()
	events := []match.GameEvent{
		spawned("al", "earth"),
		spawned("bob", "earth"),
		{Kind: match.EventMechDestroyed, Mech: "bob", Source: match.WeaponDamage("al")},
		{Kind: match.EventGameFinished, Cause: match.EndCause{Kind: match.EndMechVictory, Victor: "al"}},
	}
	lb.ApplyAll(events)

	al := lb.Snapshot()[0]
	want := PointsDestroy + PointsMatchWin
	if al.Score != want {
		t.Errorf("al score = %d, want %d", al.Score, want)
	}
}
