// Package leaderboard is a second, independent event-sourced
// projection over the same GameEvent stream the match aggregate
// produces. It never inspects commands and never rejects an event; a
// malformed event is logged and skipped without advancing the
// generation counter, so a bad projection never blocks the ones after it.
package leaderboard

import (
	"log"
	"sync"

	"github.com/assemblymechs/arena-core/internal/match"
)

// Scoring constants applied as events are folded in.
const (
	PointsDestroy      int64 = 100
	PointsMatchWin     int64 = 10_000
	PointsMatchSurvive int64 = 2_000
)

// MechSummary is one mech's running totals across a match.
type MechSummary struct {
	ID     string
	Name   string
	Avatar string
	Team   string
	Score  int64
	Kills  int
	Deaths int
	Wins   int
	Draws  int
}

// Entry is a MechSummary with its current rank attached.
type Entry struct {
	MechSummary
	Rank int
}

// Leaderboard folds a match's GameEvent stream into per-mech summaries
// ranked by score.
type Leaderboard struct {
	mu         sync.RWMutex
	mechs      map[string]*MechSummary
	ranking    *ranking
	generation uint64
}

// New returns an empty leaderboard.
func New() *Leaderboard {
	return &Leaderboard{
		mechs:   make(map[string]*MechSummary),
		ranking: newRanking(),
	}
}

// Generation returns the projection's monotonic version counter,
// useful for optimistic-read consumers polling for changes.
func (lb *Leaderboard) Generation() uint64 {
	lb.mu.RLock()
	defer lb.mu.RUnlock()
	return lb.generation
}

// Apply folds one event into the leaderboard. Events this projection
// doesn't care about (PositionUpdated, RadarScanCompleted, and so on)
// are ignored without affecting the generation counter.
func (lb *Leaderboard) Apply(evt match.GameEvent) {
	lb.mu.Lock()
	defer lb.mu.Unlock()

	switch evt.Kind {
	case match.EventMechSpawned:
		lb.mechs[evt.Mech] = &MechSummary{ID: evt.Mech, Name: evt.Name, Avatar: evt.Avatar, Team: evt.Team}
		lb.bump(evt.Mech)

	case match.EventMechDestroyed:
		target, ok := lb.mechs[evt.Mech]
		if !ok {
			log.Printf("leaderboard: MechDestroyed for unknown mech %q, skipping", evt.Mech)
			return
		}
		target.Deaths++
		if evt.Source.Kind == match.DamageFromWeapon {
			if attacker, ok := lb.mechs[evt.Source.Attacker]; ok {
				attacker.Score += PointsDestroy
				attacker.Kills++
			} else {
				log.Printf("leaderboard: attacker %q not tracked, kill not attributed", evt.Source.Attacker)
			}
		}
		lb.bump(target.ID)

	case match.EventGameFinished:
		switch evt.Cause.Kind {
		case match.EndMechVictory:
			victor, ok := lb.mechs[evt.Cause.Victor]
			if !ok {
				log.Printf("leaderboard: victor %q not tracked, skipping", evt.Cause.Victor)
				return
			}
			victor.Score += PointsMatchWin
			victor.Wins++
			lb.bump(victor.ID)
		case match.EndMaxTurnsCompleted:
			for _, id := range evt.Cause.Survivors {
				survivor, ok := lb.mechs[id]
				if !ok {
					log.Printf("leaderboard: survivor %q not tracked, skipping", id)
					continue
				}
				survivor.Score += PointsMatchSurvive
				survivor.Draws++
				lb.bump(survivor.ID)
			}
		}
	}
}

// bump rewrites id's position in the ranking and advances the
// generation counter. Called with lb.mu already held.
func (lb *Leaderboard) bump(id string) {
	m := lb.mechs[id]
	lb.ranking.Upsert(id, m.Score)
	lb.generation++
}

// Rank returns a mech's current rank, or 0 if it isn't tracked.
func (lb *Leaderboard) Rank(id string) int {
	lb.mu.RLock()
	defer lb.mu.RUnlock()
	return lb.ranking.Rank(id)
}

// Top returns the top n entries, highest score first.
func (lb *Leaderboard) Top(n int) []Entry {
	lb.mu.RLock()
	defer lb.mu.RUnlock()
	return lb.entriesFor(lb.ranking.Range(1, n), 1)
}

// Range returns entries with rank in [start, end] (1-indexed, inclusive).
func (lb *Leaderboard) Range(start, end int) []Entry {
	lb.mu.RLock()
	defer lb.mu.RUnlock()
	return lb.entriesFor(lb.ranking.Range(start, end), start)
}

// entriesFor resolves raw ranking rows into full summaries. Called
// with lb.mu already held for reading.
func (lb *Leaderboard) entriesFor(rows []rankEntry, startRank int) []Entry {
	out := make([]Entry, 0, len(rows))
	for i, row := range rows {
		m, ok := lb.mechs[row.ID]
		if !ok {
			continue
		}
		out = append(out, Entry{MechSummary: *m, Rank: startRank + i})
	}
	return out
}

// Len returns the number of tracked mechs.
func (lb *Leaderboard) Len() int {
	lb.mu.RLock()
	defer lb.mu.RUnlock()
	return lb.ranking.Len()
}

// Snapshot returns every tracked mech's summary, sorted by rank.
// Intended for serving a full leaderboard view over the API.
func (lb *Leaderboard) Snapshot() []Entry {
	lb.mu.RLock()
	defer lb.mu.RUnlock()
	return lb.entriesFor(lb.ranking.Range(1, lb.ranking.Len()), 1)
}

// ApplyAll folds a batch of events in order, as a coordinator replaying
// a match's full history would.
func (lb *Leaderboard) ApplyAll(events []match.GameEvent) {
	for _, evt := range events {
		lb.Apply(evt)
	}
}
