// Package protocol defines the wire payloads and subject names carried
// over the message bus between the arena control plane, match
// coordinators, agents, and the leaderboard/history projections. Every
// type here round-trips through JSON with lowercase field names and
// tagged-object enum variants so a non-Go agent implementation can
// speak the same wire format.
package protocol

import (
	"github.com/assemblymechs/arena-core/internal/match"
)

// Subjects used by the core, exactly as agents and operators must
// address them.
const (
	SubjectArenaControl  = "wasmdome.internal.arena.control"
	SubjectArenaEvents   = "wasmdome.public.arena.events"
	SubjectArenaSchedule = "wasmdome.public.arena.schedule"
	SubjectOttGen        = "wasmdome.internal.ott.gen"
	SubjectCredsClaim    = "wasmdome.public.creds.claim"
	SubjectCreateMatch   = "wasmdome.matches.create"
	matchEventsPrefix    = "wasmdome.match."
	matchEventsSuffix    = ".events"
	matchTurnsPrefix     = "wasmdome.matches."
	matchTurnsTurnsInfix = ".turns."
)

// MatchEventsSubject returns the per-match subject turn events are
// published on: "wasmdome.match.{match_id}.events".
func MatchEventsSubject(matchID string) string {
	return matchEventsPrefix + matchID + matchEventsSuffix
}

// TurnSubject returns the subject a coordinator sends a TakeTurn
// request to a bound actor on: "wasmdome.matches.{match_id}.turns.{actor}".
func TurnSubject(matchID, actor string) string {
	return matchTurnsPrefix + matchID + matchTurnsTurnsInfix + actor
}

// CreateMatch is the payload carried by ArenaControlCommand::StartMatch,
// requesting that a new match be created and its coordinator started.
type CreateMatch struct {
	MatchID     string   `json:"match_id"`
	Actors      []string `json:"actors"`
	BoardWidth  int      `json:"board_width"`
	BoardHeight int      `json:"board_height"`
	MaxTurns    uint64   `json:"max_turns"`
	APsPerTurn  int      `json:"aps_per_turn"`
}

// ArenaControlKind tags the closed set of control-plane commands
// accepted on SubjectArenaControl.
type ArenaControlKind uint8

const (
	ArenaControlStartMatch ArenaControlKind = iota
)

// ArenaControlCommand is the tagged union read off SubjectArenaControl.
type ArenaControlCommand struct {
	Kind       ArenaControlKind `json:"kind"`
	StartMatch *CreateMatch     `json:"start_match,omitempty"`
}

// ArenaEventKind tags the closed set of operator-visible lifecycle
// events published on SubjectArenaEvents.
type ArenaEventKind uint8

const (
	ArenaEventMechConnected ArenaEventKind = iota
	ArenaEventMechDisconnected
	ArenaEventMatchStarted
	ArenaEventMatchCompleted
)

var arenaEventKindNames = [...]string{
	"MechConnected", "MechDisconnected", "MatchStarted", "MatchCompleted",
}

func (k ArenaEventKind) String() string {
	if int(k) < len(arenaEventKindNames) {
		return arenaEventKindNames[k]
	}
	return "Unknown"
}

// ArenaEvent is the tagged union published on SubjectArenaEvents. Only
// the fields relevant to Kind are populated.
type ArenaEvent struct {
	Kind ArenaEventKind `json:"kind"`

	// MechConnected / MechDisconnected
	Actor   string `json:"actor,omitempty"`
	MatchID string `json:"match_id,omitempty"`

	// MatchStarted / MatchCompleted
	Cause *match.EndCause `json:"cause,omitempty"`
}

func MechConnected(actor, matchID string) ArenaEvent {
	return ArenaEvent{Kind: ArenaEventMechConnected, Actor: actor, MatchID: matchID}
}

func MechDisconnected(actor, matchID string) ArenaEvent {
	return ArenaEvent{Kind: ArenaEventMechDisconnected, Actor: actor, MatchID: matchID}
}

func MatchStarted(matchID string) ArenaEvent {
	return ArenaEvent{Kind: ArenaEventMatchStarted, MatchID: matchID}
}

func MatchCompleted(matchID string, cause *match.EndCause) ArenaEvent {
	return ArenaEvent{Kind: ArenaEventMatchCompleted, MatchID: matchID, Cause: cause}
}

// TurnEvent is the envelope a coordinator publishes to
// MatchEventsSubject after folding one command from one actor. It
// wraps a single match.GameEvent with enough addressing information
// for a listener (leaderboard, history) to know which match and turn
// produced it.
type TurnEvent struct {
	Actor     string          `json:"actor"`
	MatchID   string          `json:"match_id"`
	Turn      uint64          `json:"turn"`
	TurnEvent match.GameEvent `json:"turn_event"`
}

// TakeTurn is sent to a bound agent to request it act for the given
// turn. State is a full snapshot so the agent can't observe partial
// updates from mechs processed earlier in the same turn.
type TakeTurn struct {
	Actor   string      `json:"actor"`
	MatchID string      `json:"match_id"`
	Turn    uint64      `json:"turn"`
	State   match.State `json:"state"`
}

// TakeTurnResponse is the agent's reply to TakeTurn: the ordered list
// of commands it wants applied this turn. The coordinator never
// trusts this list at face value — every command still passes through
// the match aggregate's own validation.
type TakeTurnResponse struct {
	Commands []match.MechCommand `json:"commands"`
}

// ScheduledMatch describes one match queued to run, returned by a
// SubjectArenaSchedule query.
type ScheduledMatch struct {
	MatchID   string   `json:"match_id"`
	Actors    []string `json:"actors"`
	StartTime int64    `json:"start_time"` // unix seconds; 0 means unscheduled
}

// ScheduleQuery requests the list of upcoming matches. It carries no
// fields today but exists so the wire shape can grow filters later
// without breaking the subject's payload contract.
type ScheduleQuery struct{}

// ScheduleResponse is the reply to a ScheduleQuery.
type ScheduleResponse struct {
	Matches []ScheduledMatch `json:"matches"`
}

// OttClaim is a one-time-token minting request sent to SubjectOttGen:
// an operator authenticates out-of-band and asks the arena to mint a
// short-lived token an agent can later redeem for real credentials.
type OttClaim struct {
	AccountID string `json:"account_id"`
}

// OttGrant is the response to an OttClaim: the minted token and its
// expiry, ready to hand to `arenactl compete --token`.
type OttGrant struct {
	Token     string `json:"token"`
	ExpiresAt int64  `json:"expires_at"` // unix seconds
}

// CredsClaimRequest redeems an OTT for durable arena credentials,
// posted to SubjectCredsClaim.
type CredsClaimRequest struct {
	AccountID string `json:"account_id"`
	Token     string `json:"token"`
}

// ArenaCreds is the credential bundle an agent persists (conventionally
// to ~/.wasmdome/arena.creds) and presents on every subsequent
// connection to the bus.
type ArenaCreds struct {
	AccountID string `json:"account_id"`
	Seed      string `json:"seed"`
	JWT       string `json:"jwt"`
}
