package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"telegram-vocab-reader/internal/domain/model"
	"telegram-vocab-reader/internal/domain/ports/repository"
)

var _ repository.SessionStore = (*SessionRepo)(nil)

// SessionRepo keeps conversation sessions in Redis as JSON. Expiry is left to
// the key TTL, refreshed on every save.
type SessionRepo struct {
	client RedisClient
	ttl    time.Duration
}

func NewSessionRepo(client RedisClient, ttl time.Duration) *SessionRepo {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &SessionRepo{client: client, ttl: ttl}
}

func sessionKey(chatID int64) string {
	return fmt.Sprintf("vocab_session:%d", chatID)
}

func (s *SessionRepo) SaveSession(ctx context.Context, sess *model.Session) error {
	data, err := json.Marshal(sess)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, sessionKey(sess.ChatID), data, s.ttl)
}

func (s *SessionRepo) GetSession(ctx context.Context, chatID int64) (*model.Session, error) {
	data, err := s.client.Get(ctx, sessionKey(chatID))
	if err != nil {
		return nil, err
	}
	var sess model.Session
	if err := json.Unmarshal([]byte(data), &sess); err != nil {
		return nil, fmt.Errorf("decode session %d: %w", chatID, err)
	}
	return &sess, nil
}

func (s *SessionRepo) ClearSession(ctx context.Context, chatID int64) error {
	return s.client.Del(ctx, sessionKey(chatID))
}
