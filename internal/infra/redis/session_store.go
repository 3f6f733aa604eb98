package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"line-quiz-bot/internal/domain"

	"github.com/redis/go-redis/v9"
)

// SessionStore keeps one JSON document per chat user so that every bot replica sees the
// same pending image capture and captured quiz.
type SessionStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewSessionStore(client *redis.Client, ttl time.Duration) *SessionStore {
	return &SessionStore{client: client, ttl: ttl}
}

func (s *SessionStore) LoadSession(ctx context.Context, userID string) (domain.UserSession, error) {
	raw, err := s.client.Get(ctx, s.key(userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.UserSession{UserID: userID}, nil
	}
	if err != nil {
		return domain.UserSession{}, fmt.Errorf("load session %s: %w", userID, err)
	}
	var session domain.UserSession
	if err := json.Unmarshal(raw, &session); err != nil {
		return domain.UserSession{}, fmt.Errorf("decode session %s: %w", userID, err)
	}
	session.UserID = userID
	return session, nil
}

// SaveSession writes the session, refreshing its TTL. An empty session is deleted.
func (s *SessionStore) SaveSession(ctx context.Context, session domain.UserSession) error {
	if !session.PendingImageCapture && session.Quiz == nil {
		return s.client.Del(ctx, s.key(session.UserID)).Err()
	}
	raw, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("encode session %s: %w", session.UserID, err)
	}
	if err := s.client.Set(ctx, s.key(session.UserID), raw, s.ttl).Err(); err != nil {
		return fmt.Errorf("save session %s: %w", session.UserID, err)
	}
	return nil
}

func (s *SessionStore) key(userID string) string {
	return "quiz:session:" + userID
}
