// Package store provides the match_id → MatchState persistence layer
// the coordinator and the read-only API surface share, plus the
// adjoining scheduled-match and one-time-token bookkeeping that rides
// the same backend. Two implementations satisfy Store: an in-memory
// map for single-process deployments and tests, and a Redis-backed one
// for anything that needs state to survive a coordinator restart.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/assemblymechs/arena-core/internal/match"
)

// ErrNotFound is returned by Get for a match_id nobody has Put yet.
var ErrNotFound = errors.New("store: match not found")

// ErrOTTNotFound is returned when an OTT lookup misses or the token has expired.
var ErrOTTNotFound = errors.New("store: one-time token not found or expired")

// StoredMatch is a match queued to run, persisted under the scheduled
// matches key space until a coordinator claims and starts it.
type StoredMatch struct {
	MatchID     string   `json:"match_id"`
	Actors      []string `json:"actors"`
	BoardWidth  int      `json:"board_width"`
	BoardHeight int      `json:"board_height"`
	MaxTurns    uint64   `json:"max_turns"`
	APsPerTurn  int      `json:"aps_per_turn"`
	StartTime   int64    `json:"start_time"` // unix seconds
}

// Store is the persistence contract every backend implements. All
// operations are total except Get of an unknown match_id, which fails
// with ErrNotFound.
type Store interface {
	Get(ctx context.Context, matchID string) (*match.State, error)
	Put(ctx context.Context, matchID string, state *match.State) error

	AddAgent(ctx context.Context, agentID string) error
	RemoveAgent(ctx context.Context, agentID string) error
	ListAgents(ctx context.Context) ([]string, error)

	PutScheduled(ctx context.Context, m StoredMatch) error
	RemoveScheduled(ctx context.Context, matchID string) error
	ListScheduled(ctx context.Context) ([]StoredMatch, error)

	// PutOTT mints a one-time token bound to accountID, expiring after ttl.
	PutOTT(ctx context.Context, token, accountID string, ttl time.Duration) error
	// TakeOTT looks up and consumes a token; a second call for the same
	// token returns ErrOTTNotFound.
	TakeOTT(ctx context.Context, token string) (accountID string, err error)
}

// DefaultOTTExpiry is the token lifetime used when a caller doesn't
// specify one, matching the external interface's documented default.
const DefaultOTTExpiry = 300 * time.Second
