package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/assemblymechs/arena-core/internal/match"
)

const (
	keyMatchState     = "wasmdome:matches:%s:state"
	keyActors         = "wasmdome:actors"
	keyScheduledSet   = "wasmdome:sched_matches"
	keyScheduledMatch = "wasmdome:sched_matches:%s"
	keyOTT            = "wasmdome:ott:%s"
)

// RedisStore persists match state, the bound-agent registry, and
// scheduled matches under the key layout external tooling (the
// operator CLI, historian) expects to find them at.
type RedisStore struct {
	rdb *redis.Client
}

// NewRedisStore wraps an already-configured redis client. The caller
// owns the client's lifecycle (Close it when done).
func NewRedisStore(rdb *redis.Client) *RedisStore {
	return &RedisStore{rdb: rdb}
}

func (s *RedisStore) Get(ctx context.Context, matchID string) (*match.State, error) {
	data, err := s.rdb.Get(ctx, fmt.Sprintf(keyMatchState, matchID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("store: get match %s: %w", matchID, err)
	}

	var state match.State
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("store: decode match %s: %w", matchID, err)
	}
	return &state, nil
}

func (s *RedisStore) Put(ctx context.Context, matchID string, state *match.State) error {
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("store: encode match %s: %w", matchID, err)
	}
	if err := s.rdb.Set(ctx, fmt.Sprintf(keyMatchState, matchID), data, 0).Err(); err != nil {
		return fmt.Errorf("store: put match %s: %w", matchID, err)
	}
	return nil
}

func (s *RedisStore) AddAgent(ctx context.Context, agentID string) error {
	if err := s.rdb.SAdd(ctx, keyActors, agentID).Err(); err != nil {
		return fmt.Errorf("store: add agent %s: %w", agentID, err)
	}
	return nil
}

func (s *RedisStore) RemoveAgent(ctx context.Context, agentID string) error {
	if err := s.rdb.SRem(ctx, keyActors, agentID).Err(); err != nil {
		return fmt.Errorf("store: remove agent %s: %w", agentID, err)
	}
	return nil
}

func (s *RedisStore) ListAgents(ctx context.Context) ([]string, error) {
	ids, err := s.rdb.SMembers(ctx, keyActors).Result()
	if err != nil {
		return nil, fmt.Errorf("store: list agents: %w", err)
	}
	return ids, nil
}

func (s *RedisStore) PutScheduled(ctx context.Context, sm StoredMatch) error {
	data, err := json.Marshal(sm)
	if err != nil {
		return fmt.Errorf("store: encode scheduled match %s: %w", sm.MatchID, err)
	}

	pipe := s.rdb.TxPipeline()
	pipe.Set(ctx, fmt.Sprintf(keyScheduledMatch, sm.MatchID), data, 0)
	pipe.SAdd(ctx, keyScheduledSet, sm.MatchID)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("store: put scheduled match %s: %w", sm.MatchID, err)
	}
	return nil
}

func (s *RedisStore) RemoveScheduled(ctx context.Context, matchID string) error {
	pipe := s.rdb.TxPipeline()
	pipe.Del(ctx, fmt.Sprintf(keyScheduledMatch, matchID))
	pipe.SRem(ctx, keyScheduledSet, matchID)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("store: remove scheduled match %s: %w", matchID, err)
	}
	return nil
}

func (s *RedisStore) ListScheduled(ctx context.Context) ([]StoredMatch, error) {
	ids, err := s.rdb.SMembers(ctx, keyScheduledSet).Result()
	if err != nil {
		return nil, fmt.Errorf("store: list scheduled matches: %w", err)
	}

	out := make([]StoredMatch, 0, len(ids))
	for _, id := range ids {
		data, err := s.rdb.Get(ctx, fmt.Sprintf(keyScheduledMatch, id)).Bytes()
		if errors.Is(err, redis.Nil) {
			continue // set and blob drifted apart; skip rather than fail the whole listing
		}
		if err != nil {
			return nil, fmt.Errorf("store: get scheduled match %s: %w", id, err)
		}
		var sm StoredMatch
		if err := json.Unmarshal(data, &sm); err != nil {
			return nil, fmt.Errorf("store: decode scheduled match %s: %w", id, err)
		}
		out = append(out, sm)
	}
	return out, nil
}

func (s *RedisStore) PutOTT(ctx context.Context, token, accountID string, ttl time.Duration) error {
	if err := s.rdb.Set(ctx, fmt.Sprintf(keyOTT, token), accountID, ttl).Err(); err != nil {
		return fmt.Errorf("store: put ott: %w", err)
	}
	return nil
}

func (s *RedisStore) TakeOTT(ctx context.Context, token string) (string, error) {
	key := fmt.Sprintf(keyOTT, token)
	accountID, err := s.rdb.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrOTTNotFound
	}
	if err != nil {
		return "", fmt.Errorf("store: take ott: %w", err)
	}
	s.rdb.Del(ctx, key)
	return accountID, nil
}

var _ Store = (*RedisStore)(nil)
