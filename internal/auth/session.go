package auth

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrSessionNotFound is returned for unknown or expired sessions.
var ErrSessionNotFound = errors.New("session not found")

// SessionStore maps opaque session ids to resolved identities.
type SessionStore interface {
	Put(ctx context.Context, sessionID string, identity *Identity, ttl time.Duration) error
	Get(ctx context.Context, sessionID string) (*Identity, error)
	Delete(ctx context.Context, sessionID string) error
}

type memorySession struct {
	identity  Identity
	expiresAt time.Time
}

// MemorySessionStore keeps sessions in process memory. A restart drops them.
type MemorySessionStore struct {
	mu       sync.RWMutex
	sessions map[string]memorySession
	now      func() time.Time
}

// NewMemorySessionStore builds an empty store.
func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{sessions: make(map[string]memorySession), now: time.Now}
}

// Put stores the identity under sessionID.
func (s *MemorySessionStore) Put(_ context.Context, sessionID string, identity *Identity, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry := memorySession{identity: *identity}
	if ttl > 0 {
		entry.expiresAt = s.now().Add(ttl)
	}
	s.sessions[sessionID] = entry
	return nil
}

// Get resolves the identity for sessionID.
func (s *MemorySessionStore) Get(_ context.Context, sessionID string) (*Identity, error) {
	s.mu.RLock()
	entry, ok := s.sessions[sessionID]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrSessionNotFound
	}
	if !entry.expiresAt.IsZero() && s.now().After(entry.expiresAt) {
		_ = s.Delete(context.Background(), sessionID)
		return nil, ErrSessionNotFound
	}
	identity := entry.identity
	return &identity, nil
}

// Delete removes the session.
func (s *MemorySessionStore) Delete(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sessionID)
	return nil
}
