package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"telegram-vocab-reader/internal/domain"
	"telegram-vocab-reader/internal/domain/ports/repository"
)

var _ repository.Locker = (*Locker)(nil)

type lease struct {
	token   string
	expires time.Time
}

// Locker is a token lock table with expiring leases.
type Locker struct {
	mu      sync.Mutex
	held    map[string]lease
	tries   int
	backoff time.Duration
	now     func() time.Time
}

func NewLocker() *Locker {
	return &Locker{held: make(map[string]lease), tries: 5, backoff: 50 * time.Millisecond, now: time.Now}
}

func (l *Locker) TryLock(ctx context.Context, key string, ttl time.Duration) (string, error) {
	token := uuid.NewString()
	for i := 0; i < l.tries; i++ {
		if l.acquire(key, token, ttl) {
			return token, nil
		}
		select {
		case <-time.After(l.backoff):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	return "", domain.ErrSessionBusy
}

func (l *Locker) acquire(key, token string, ttl time.Duration) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.now()
	if cur, ok := l.held[key]; ok && now.Before(cur.expires) {
		return false
	}
	l.held[key] = lease{token: token, expires: now.Add(ttl)}
	return true
}

// Unlock releases key only when token still owns it.
func (l *Locker) Unlock(ctx context.Context, key, token string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if cur, ok := l.held[key]; ok && cur.token == token {
		delete(l.held, key)
	}
	return nil
}
