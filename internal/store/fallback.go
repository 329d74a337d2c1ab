package store

import (
	"context"
	"errors"
	"io"
	"log"

	"github.com/zhouzirui/mock-interview/backend/internal/metrics"
	"github.com/zhouzirui/mock-interview/backend/internal/model/interview"
)

// FallbackStore writes through to a persistent primary and keeps sessions in
// memory whenever the primary is unavailable.
type FallbackStore struct {
	primary   Store
	secondary *MemoryStore
}

func Fallback(primary Store, secondary *MemoryStore) *FallbackStore {
	if secondary == nil {
		secondary = NewMemory()
	}
	return &FallbackStore{primary: primary, secondary: secondary}
}

func (s *FallbackStore) Name() string {
	return s.primary.Name()
}

func (s *FallbackStore) Get(ctx context.Context, sessionID string) (*interview.Session, error) {
	if sessionID == "" {
		return nil, ErrNotFound
	}

	// sessions saved during an outage live only in memory and are newer
	if session, err := s.secondary.Get(ctx, sessionID); err == nil {
		return session, nil
	}

	session, err := s.primary.Get(ctx, sessionID)
	if err == nil {
		return session, nil
	}
	if !errors.Is(err, ErrNotFound) {
		log.Printf("[store] %s fetch failed for session=%s: %v", s.primary.Name(), sessionID, err)
		metrics.IncStoreError(s.primary.Name(), "get")
		return nil, ErrNotFound
	}
	return nil, err
}

func (s *FallbackStore) Save(ctx context.Context, session *interview.Session) error {
	if err := validateSession(session); err != nil {
		return err
	}

	if err := s.primary.Save(ctx, session); err != nil {
		log.Printf("[store] %s save failed for session=%s, keeping it in memory: %v", s.primary.Name(), session.SessionID, err)
		metrics.IncStoreError(s.primary.Name(), "save")
		return s.secondary.Save(ctx, session)
	}

	s.secondary.Delete(session.SessionID)
	return nil
}

func (s *FallbackStore) Close() error {
	if closer, ok := s.primary.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}
