package session

import (
	"fmt"
	"time"

	"github.com/mbenkhaled/telerag/config"
	"github.com/mbenkhaled/telerag/session/inmemory"
	redis_session "github.com/mbenkhaled/telerag/session/redis"
	"github.com/mbenkhaled/telerag/session/session_models"
)

// Store manages conversation transcripts across interactive sessions.
type Store interface {
	EnsureSession(id string, ttl time.Duration) (Session, error)
	GetSession(id string) (Session, error)
}

// Session is one conversation transcript: an ordered, append-only sequence of
// turns with an explicit full-clear operation.
type Session interface {
	ID() string
	Expire(ttl time.Duration)
	Append(turn session_models.Turn) error
	Turns() ([]session_models.Turn, error)
	Clear() error
}

// NewStore builds the transcript backend selected by configuration.
func NewStore(cfg config.SessionConfig) (Store, error) {
	switch cfg.Backend {
	case "", "inmemory":
		return inmemoryStore{inner: inmemory.NewStore()}, nil
	case "redis":
		addr := fmt.Sprintf("%s:%s", cfg.Redis.Host, cfg.Redis.Port)
		return redisStore{inner: redis_session.NewStore(addr, cfg.Redis.Password, cfg.Redis.DB)}, nil
	default:
		return nil, fmt.Errorf("unsupported session backend: %s", cfg.Backend)
	}
}

type inmemoryStore struct {
	inner *inmemory.Store
}

func (s inmemoryStore) EnsureSession(id string, ttl time.Duration) (Session, error) {
	return s.inner.EnsureSession(id, ttl)
}

func (s inmemoryStore) GetSession(id string) (Session, error) {
	sess, err := s.inner.GetSession(id)
	if err != nil || sess == nil {
		return nil, err
	}
	return sess, nil
}

type redisStore struct {
	inner *redis_session.Store
}

func (s redisStore) EnsureSession(id string, ttl time.Duration) (Session, error) {
	return s.inner.EnsureSession(id, ttl)
}

func (s redisStore) GetSession(id string) (Session, error) {
	sess, err := s.inner.GetSession(id)
	if err != nil || sess == nil {
		return nil, err
	}
	return sess, nil
}
