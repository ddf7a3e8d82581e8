package session

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is an in-memory session store. Suitable for tests and
// single-process deployments; sessions do not survive a restart.
type MemoryStore struct {
	mu        sync.RWMutex
	byToken   map[string]*Session
	tokenByID map[string]string
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		byToken:   make(map[string]*Session),
		tokenByID: make(map[string]string),
	}
}

// Create persists a new session.
func (m *MemoryStore) Create(_ context.Context, s *Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.byToken[s.Token] = cloneSession(s)
	m.tokenByID[s.ID] = s.Token
	return nil
}

// Get retrieves a session by its cookie token.
func (m *MemoryStore) Get(_ context.Context, token string) (*Session, error) {
	m.mu.RLock()
	s, ok := m.byToken[token]
	m.mu.RUnlock()

	if !ok {
		return nil, ErrNotFound
	}
	if s.IsExpired() {
		return nil, ErrExpired
	}
	return cloneSession(s), nil
}

// Update saves changes to an existing session.
func (m *MemoryStore) Update(_ context.Context, s *Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byToken[s.Token]; !ok {
		return ErrNotFound
	}
	m.byToken[s.Token] = cloneSession(s)
	return nil
}

// Delete removes a session by its ID.
func (m *MemoryStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	token, ok := m.tokenByID[id]
	if !ok {
		return nil
	}
	delete(m.byToken, token)
	delete(m.tokenByID, id)
	return nil
}

// DeleteExpired removes all sessions that expired before the cutoff.
func (m *MemoryStore) DeleteExpired(_ context.Context, cutoff time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for token, s := range m.byToken {
		if s.ExpiresAt.Before(cutoff) {
			delete(m.byToken, token)
			delete(m.tokenByID, s.ID)
		}
	}
	return nil
}

// cloneSession copies the session so callers cannot mutate stored state
// behind the store's back.
func cloneSession(s *Session) *Session {
	c := *s
	c.Values = make(map[string]any, len(s.Values))
	for k, v := range s.Values {
		c.Values[k] = v
	}
	if s.UserID != nil {
		id := *s.UserID
		c.UserID = &id
	}
	return &c
}
