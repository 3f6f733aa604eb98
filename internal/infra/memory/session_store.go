package memory

import (
	"context"
	"sync"

	"line-quiz-bot/internal/domain"
)

// SessionStore is an in-memory implementation of app.SessionStore.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]domain.UserSession
}

func NewSessionStore() *SessionStore {
	return &SessionStore{
		sessions: make(map[string]domain.UserSession),
	}
}

func (s *SessionStore) LoadSession(_ context.Context, userID string) (domain.UserSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if session, ok := s.sessions[userID]; ok {
		return cloneSession(session), nil
	}
	return domain.UserSession{UserID: userID}, nil
}

func (s *SessionStore) SaveSession(_ context.Context, session domain.UserSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.UserID] = cloneSession(session)
	return nil
}

// cloneSession keeps callers from sharing the captured quiz pointer with the store.
func cloneSession(session domain.UserSession) domain.UserSession {
	if session.Quiz != nil {
		quiz := *session.Quiz
		session.Quiz = &quiz
	}
	return session
}
