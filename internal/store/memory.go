package store

import (
	"context"
	"sync"

	"github.com/zhouzirui/mock-interview/backend/internal/model/interview"
)

// MemoryStore keeps sessions in process memory.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*interview.Session
}

// NewMemory bootstraps an empty in-memory store.
func NewMemory() *MemoryStore {
	return &MemoryStore{sessions: make(map[string]*interview.Session)}
}

func (s *MemoryStore) Name() string { return "memory" }

// Get retrieves a copy of the session.
func (s *MemoryStore) Get(_ context.Context, sessionID string) (*interview.Session, error) {
	if sessionID == "" {
		return nil, ErrNotFound
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[sessionID]
	if !ok {
		return nil, ErrNotFound
	}
	return session.Clone(), nil
}

// Save stores a copy of the session, replacing any previous version.
func (s *MemoryStore) Save(_ context.Context, session *interview.Session) error {
	if err := validateSession(session); err != nil {
		return err
	}

	s.mu.Lock()
	s.sessions[session.SessionID] = session.Clone()
	s.mu.Unlock()
	return nil
}

// Delete drops a session if present.
func (s *MemoryStore) Delete(sessionID string) {
	s.mu.Lock()
	delete(s.sessions, sessionID)
	s.mu.Unlock()
}

// Len returns the number of stored sessions.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
