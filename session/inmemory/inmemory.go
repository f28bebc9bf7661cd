package inmemory

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/mbenkhaled/telerag/session/session_models"
)

// Store keeps session transcripts in process memory. Transcripts are lost when
// the process exits.
type Store struct {
	sessions map[string]*Session
	mu       sync.RWMutex
}

func NewStore() *Store {
	return &Store{sessions: make(map[string]*Session)}
}

func (store *Store) EnsureSession(id string, ttl time.Duration) (*Session, error) {
	store.mu.Lock()
	defer store.mu.Unlock()
	if id != "" {
		if sess, ok := store.sessions[id]; ok {
			sess.Expire(ttl)
			return sess, nil
		}
	}

	sess := &Session{id: uuid.NewString(), expiresAt: time.Now().Add(ttl)}
	store.sessions[sess.ID()] = sess
	return sess, nil
}

func (store *Store) GetSession(id string) (*Session, error) {
	store.mu.RLock()
	defer store.mu.RUnlock()
	sess, ok := store.sessions[id]
	if !ok {
		return nil, nil
	}
	return sess, nil
}

// Session is an append-only transcript for one interactive session.
type Session struct {
	id        string
	expiresAt time.Time
	turns     []session_models.Turn
	mu        sync.RWMutex
}

func (s *Session) ID() string               { return s.id }
func (s *Session) Expire(ttl time.Duration) { s.expiresAt = time.Now().Add(ttl) }

func (s *Session) Append(turn session_models.Turn) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.turns = append(s.turns, turn)
	return nil
}

func (s *Session) Turns() ([]session_models.Turn, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]session_models.Turn, len(s.turns))
	copy(out, s.turns)
	return out, nil
}

// Clear replaces the transcript with an empty sequence. Irreversible.
func (s *Session) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.turns = nil
	return nil
}
