package repository

import (
	"context"
	"time"

	"telegram-vocab-reader/internal/domain/model"
)

// SessionStore is the port for per-chat conversation state.
// GetSession returns domain.ErrNotFound when the chat has no session.
type SessionStore interface {
	SaveSession(ctx context.Context, s *model.Session) error
	GetSession(ctx context.Context, chatID int64) (*model.Session, error)
	ClearSession(ctx context.Context, chatID int64) error
}

// Locker serializes work on a key across goroutines or processes.
type Locker interface {
	TryLock(ctx context.Context, key string, ttl time.Duration) (token string, err error)
	Unlock(ctx context.Context, key, token string) error
}
