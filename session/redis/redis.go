package redis_session

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mbenkhaled/telerag/session/session_models"
	"github.com/redis/go-redis/v9"
)

// Store keeps session transcripts in Redis so they survive process restarts.
// Keys expire after the configured session TTL.
type Store struct {
	client *redis.Client
}

func NewStore(addr, password string, db int) *Store {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	return &Store{client: rdb}
}

// Ping verifies the Redis connection at startup.
func (store *Store) Ping(ctx context.Context) error {
	return store.client.Ping(ctx).Err()
}

func metaKey(id string) string  { return fmt.Sprintf("session:%s:meta", id) }
func turnsKey(id string) string { return fmt.Sprintf("session:%s:turns", id) }

func (store *Store) EnsureSession(id string, ttl time.Duration) (*Session, error) {
	ctx := context.Background()
	if id != "" {
		exists, err := store.client.Exists(ctx, metaKey(id)).Result()
		if err == nil && exists == 1 {
			sess := &Session{client: store.client, id: id, ttl: ttl}
			_ = store.client.Expire(ctx, metaKey(id), ttl).Err()
			_ = store.client.Expire(ctx, turnsKey(id), ttl).Err()
			return sess, nil
		}
	}

	newID := uuid.NewString()
	if err := store.client.Set(ctx, metaKey(newID), "1", ttl).Err(); err != nil {
		return nil, fmt.Errorf("initialize session: %w", err)
	}
	return &Session{client: store.client, id: newID, ttl: ttl}, nil
}

func (store *Store) GetSession(id string) (*Session, error) {
	ctx := context.Background()
	exists, err := store.client.Exists(ctx, metaKey(id)).Result()
	if err != nil || exists == 0 {
		return nil, nil
	}
	return &Session{client: store.client, id: id}, nil
}

// Session is an append-only transcript stored as a Redis list of JSON turns.
type Session struct {
	client *redis.Client
	id     string
	ttl    time.Duration
}

func (s *Session) ID() string               { return s.id }
func (s *Session) Expire(ttl time.Duration) { s.ttl = ttl }

func (s *Session) Append(turn session_models.Turn) error {
	ctx := context.Background()
	payload, err := json.Marshal(turn)
	if err != nil {
		return fmt.Errorf("marshal turn: %w", err)
	}
	if err := s.client.RPush(ctx, turnsKey(s.id), payload).Err(); err != nil {
		return fmt.Errorf("append turn: %w", err)
	}
	if s.ttl > 0 {
		_ = s.client.Expire(ctx, turnsKey(s.id), s.ttl).Err()
		_ = s.client.Expire(ctx, metaKey(s.id), s.ttl).Err()
	}
	return nil
}

func (s *Session) Turns() ([]session_models.Turn, error) {
	ctx := context.Background()
	raw, err := s.client.LRange(ctx, turnsKey(s.id), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("read transcript: %w", err)
	}
	turns := make([]session_models.Turn, 0, len(raw))
	for _, item := range raw {
		var turn session_models.Turn
		if err := json.Unmarshal([]byte(item), &turn); err != nil {
			return nil, fmt.Errorf("decode turn: %w", err)
		}
		turns = append(turns, turn)
	}
	return turns, nil
}

// Clear deletes the transcript. The session itself stays valid for new turns.
func (s *Session) Clear() error {
	ctx := context.Background()
	if err := s.client.Del(ctx, turnsKey(s.id)).Err(); err != nil {
		return fmt.Errorf("clear transcript: %w", err)
	}
	return nil
}
