package store

import (
	"context"
	"errors"

	"github.com/zhouzirui/mock-interview/backend/internal/model/interview"
)

var (
	ErrNotFound   = errors.New("session not found")
	ErrMissingID  = errors.New("session id is required")
	ErrNilSession = errors.New("session is nil")
)

// Store persists interview sessions. Implementations return copies, so
// callers may mutate what Get returns and must Save to publish changes.
type Store interface {
	Get(ctx context.Context, sessionID string) (*interview.Session, error)
	Save(ctx context.Context, session *interview.Session) error
	Name() string
}

func validateSession(session *interview.Session) error {
	if session == nil {
		return ErrNilSession
	}
	if session.SessionID == "" {
		return ErrMissingID
	}
	return nil
}
