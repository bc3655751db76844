package store

import (
	"context"
	"sync"
	"time"

	"github.com/assemblymechs/arena-core/internal/match"
)

type ottEntry struct {
	accountID string
	expiresAt time.Time
}

// MemoryStore is an in-process Store backed by plain maps, guarded by
// a single RWMutex. It supports concurrent Get/Put with last-writer-wins
// semantics and is the default backend for single-process deployments
// and tests.
type MemoryStore struct {
	mu        sync.RWMutex
	matches   map[string]*match.State
	agents    map[string]bool
	scheduled map[string]StoredMatch
	ott       map[string]ottEntry
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		matches:   make(map[string]*match.State),
		agents:    make(map[string]bool),
		scheduled: make(map[string]StoredMatch),
		ott:       make(map[string]ottEntry),
	}
}

// Get returns a deep copy of the stored state so callers can't mutate
// another goroutine's in-flight match through a shared pointer.
func (m *MemoryStore) Get(_ context.Context, matchID string) (*match.State, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.matches[matchID]
	if !ok {
		return nil, ErrNotFound
	}
	return s.Clone(), nil
}

func (m *MemoryStore) Put(_ context.Context, matchID string, state *match.State) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.matches[matchID] = state.Clone()
	return nil
}

func (m *MemoryStore) AddAgent(_ context.Context, agentID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.agents[agentID] = true
	return nil
}

func (m *MemoryStore) RemoveAgent(_ context.Context, agentID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.agents, agentID)
	return nil
}

func (m *MemoryStore) ListAgents(_ context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]string, 0, len(m.agents))
	for id := range m.agents {
		out = append(out, id)
	}
	return out, nil
}

func (m *MemoryStore) PutScheduled(_ context.Context, sm StoredMatch) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.scheduled[sm.MatchID] = sm
	return nil
}

func (m *MemoryStore) RemoveScheduled(_ context.Context, matchID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.scheduled, matchID)
	return nil
}

func (m *MemoryStore) ListScheduled(_ context.Context) ([]StoredMatch, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]StoredMatch, 0, len(m.scheduled))
	for _, sm := range m.scheduled {
		out = append(out, sm)
	}
	return out, nil
}

func (m *MemoryStore) PutOTT(_ context.Context, token, accountID string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ott[token] = ottEntry{accountID: accountID, expiresAt: time.Now().Add(ttl)}
	return nil
}

func (m *MemoryStore) TakeOTT(_ context.Context, token string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.ott[token]
	delete(m.ott, token)
	if !ok || time.Now().After(entry.expiresAt) {
		return "", ErrOTTNotFound
	}
	return entry.accountID, nil
}

var _ Store = (*MemoryStore)(nil)
