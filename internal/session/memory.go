package session

import (
	"context"
	"sync"
	"time"

	"github.com/devashram/callseva/internal/model/call"
)

// DefaultTTL is the inactivity window after which a session is treated as gone.
const DefaultTTL = 30 * time.Minute

// MemoryStore keeps sessions in process memory. Expiry is enforced lazily:
// an expired entry is dropped the moment it is looked up.
type MemoryStore struct {
	mu       sync.Mutex
	sessions map[string]*call.State
	ttl      time.Duration
	now      func() time.Time
}

// NewMemoryStore creates an in-memory store with the given inactivity TTL.
// A non-positive ttl falls back to DefaultTTL.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &MemoryStore{
		sessions: make(map[string]*call.State),
		ttl:      ttl,
		now:      time.Now,
	}
}

func (s *MemoryStore) Create(_ context.Context, state *call.State) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.sessions[state.CallID]; ok && !s.expired(existing) {
		return ErrDuplicateSession
	}

	state.LastActivityAt = s.now().UTC()
	s.sessions[state.CallID] = state
	return nil
}

func (s *MemoryStore) Get(_ context.Context, callID string) (*call.State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, ok := s.sessions[callID]
	if !ok {
		return nil, ErrUnknownSession
	}
	if s.expired(state) {
		delete(s.sessions, callID)
		return nil, ErrUnknownSession
	}

	state.LastActivityAt = s.now().UTC()
	return state, nil
}

func (s *MemoryStore) Save(_ context.Context, state *call.State) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[state.CallID]; !ok {
		return ErrUnknownSession
	}

	state.LastActivityAt = s.now().UTC()
	s.sessions[state.CallID] = state
	return nil
}

func (s *MemoryStore) Destroy(_ context.Context, callID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.sessions, callID)
	return nil
}

func (s *MemoryStore) expired(state *call.State) bool {
	return s.now().UTC().Sub(state.LastActivityAt) > s.ttl
}
