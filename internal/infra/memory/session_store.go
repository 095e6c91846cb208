// Package memory holds single-process implementations of the state ports.
package memory

import (
	"context"
	"sync"
	"time"

	"telegram-vocab-reader/internal/domain"
	"telegram-vocab-reader/internal/domain/model"
	"telegram-vocab-reader/internal/domain/ports/repository"
)

var _ repository.SessionStore = (*SessionStore)(nil)

type SessionStore struct {
	mu          sync.RWMutex
	sessions    map[int64]model.Session
	jobDeadline time.Duration
}

func NewSessionStore() *SessionStore {
	return &SessionStore{sessions: make(map[int64]model.Session)}
}

func (s *SessionStore) SaveSession(ctx context.Context, sess *model.Session) error {
	cp := *sess
	cp.Words = append([]string(nil), sess.Words...)
	s.mu.Lock()
	s.sessions[sess.ChatID] = cp
	s.mu.Unlock()
	return nil
}

func (s *SessionStore) GetSession(ctx context.Context, chatID int64) (*model.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[chatID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	sess.Words = append([]string(nil), sess.Words...)
	return &sess, nil
}

func (s *SessionStore) ClearSession(ctx context.Context, chatID int64) error {
	s.mu.Lock()
	delete(s.sessions, chatID)
	s.mu.Unlock()
	return nil
}

// SetJobDeadline keeps generating sessions at least this long before Sweep may
// drop them.
func (s *SessionStore) SetJobDeadline(d time.Duration) {
	s.mu.Lock()
	s.jobDeadline = d
	s.mu.Unlock()
}

// Sweep drops sessions idle for longer than ttl and returns how many went.
// A generating session goes only once it is past both ttl and the job deadline.
func (s *SessionStore) Sweep(ctx context.Context, now time.Time, ttl time.Duration) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for id, sess := range s.sessions {
		limit := ttl
		if sess.State == model.StateGenerating && s.jobDeadline > limit {
			limit = s.jobDeadline
		}
		if sess.Expired(now, limit) {
			delete(s.sessions, id)
			n++
		}
	}
	return n, nil
}

func (s *SessionStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
