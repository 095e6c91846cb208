//go:build !integration

package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"telegram-vocab-reader/internal/domain"
	"telegram-vocab-reader/internal/domain/model"
)

func TestSessionStoreCopies(t *testing.T) {
	ctx := context.Background()
	st := NewSessionStore()
	s := model.NewSession(1)
	s.Words = []string{"itinerary"}
	_ = st.SaveSession(ctx, &s)

	s.Words[0] = "mutated"
	got, err := st.GetSession(ctx, 1)
	if err != nil {
		t.Fatalf("GetSession: %v", err)
	}
	if got.Words[0] != "itinerary" {
		t.Fatal("store shares caller memory")
	}

	_ = st.ClearSession(ctx, 1)
	if _, err := st.GetSession(ctx, 1); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}

func TestSessionStoreSweep(t *testing.T) {
	ctx := context.Background()
	st := NewSessionStore()
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	old := model.NewSession(1)
	old.UpdatedAt = now.Add(-time.Hour)
	fresh := model.NewSession(2)
	fresh.UpdatedAt = now.Add(-time.Minute)
	busy := model.NewSession(3)
	busy.State = model.StateGenerating
	busy.UpdatedAt = now.Add(-time.Hour)
	stranded := model.NewSession(4)
	stranded.State = model.StateGenerating
	stranded.UpdatedAt = now.Add(-3 * time.Hour)
	for _, s := range []model.Session{old, fresh, busy, stranded} {
		s := s
		_ = st.SaveSession(ctx, &s)
	}
	st.SetJobDeadline(2 * time.Hour)

	n, _ := st.Sweep(ctx, now, 30*time.Minute)
	if n != 2 || st.Len() != 2 {
		t.Fatalf("swept %d, left %d", n, st.Len())
	}
	for _, id := range []int64{1, 4} {
		if _, err := st.GetSession(ctx, id); !errors.Is(err, domain.ErrNotFound) {
			t.Fatalf("session %d kept", id)
		}
	}
	if _, err := st.GetSession(ctx, 3); err != nil {
		t.Fatal("generating session dropped before its deadline")
	}
}

func TestSweepDropsGeneratingSessionsPastTTL(t *testing.T) {
	ctx := context.Background()
	st := NewSessionStore()
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	s := model.NewSession(9)
	s.State = model.StateGenerating
	s.UpdatedAt = now.Add(-time.Hour)
	_ = st.SaveSession(ctx, &s)

	if n, _ := st.Sweep(ctx, now, 30*time.Minute); n != 1 || st.Len() != 0 {
		t.Fatalf("swept %d, left %d", n, st.Len())
	}
}

func TestLocker(t *testing.T) {
	ctx := context.Background()
	l := NewLocker()
	l.tries = 2
	l.backoff = time.Millisecond

	tok, err := l.TryLock(ctx, "chat:1", time.Minute)
	if err != nil {
		t.Fatalf("TryLock: %v", err)
	}
	if _, err := l.TryLock(ctx, "chat:1", time.Minute); !errors.Is(err, domain.ErrSessionBusy) {
		t.Fatalf("want ErrSessionBusy, got %v", err)
	}
	if _, err := l.TryLock(ctx, "chat:2", time.Minute); err != nil {
		t.Fatalf("other key blocked: %v", err)
	}

	_ = l.Unlock(ctx, "chat:1", "wrong")
	if _, err := l.TryLock(ctx, "chat:1", time.Minute); err == nil {
		t.Fatal("wrong token released the lock")
	}
	_ = l.Unlock(ctx, "chat:1", tok)
	if _, err := l.TryLock(ctx, "chat:1", time.Minute); err != nil {
		t.Fatalf("relock: %v", err)
	}
}

func TestLockerLeaseExpires(t *testing.T) {
	now := time.Now()
	l := NewLocker()
	l.tries = 1
	l.now = func() time.Time { return now }
	if _, err := l.TryLock(context.Background(), "k", time.Second); err != nil {
		t.Fatal(err)
	}
	now = now.Add(2 * time.Second)
	if _, err := l.TryLock(context.Background(), "k", time.Second); err != nil {
		t.Fatalf("expired lease still held: %v", err)
	}
}

func TestRateLimiterWindow(t *testing.T) {
	now := time.Now()
	r := NewRateLimiter()
	r.now = func() time.Time { return now }
	for i := 0; i < 2; i++ {
		if ok, _ := r.Allow(context.Background(), "k", 2, time.Minute); !ok {
			t.Fatalf("hit %d denied", i)
		}
	}
	if ok, _ := r.Allow(context.Background(), "k", 2, time.Minute); ok {
		t.Fatal("limit not enforced")
	}
	now = now.Add(2 * time.Minute)
	if ok, _ := r.Allow(context.Background(), "k", 2, time.Minute); !ok {
		t.Fatal("window did not reset")
	}
}

func TestGenerationRepoStats(t *testing.T) {
	ctx := context.Background()
	r := NewGenerationRepo(3)
	now := time.Now()
	save := func(id string, lvl model.Level, st model.GenerationStatus, audio bool, at time.Time) {
		_ = r.Save(ctx, nil, &model.GenerationRecord{ID: id, Level: lvl, Status: st, HasAudio: audio, CreatedAt: at})
	}
	save("a", model.LevelC2, model.GenerationSucceeded, false, now.Add(-48*time.Hour))
	save("b", model.LevelB1, model.GenerationFailed, false, now)
	save("b", model.LevelB1, model.GenerationSucceeded, true, now) // upsert
	save("c", model.LevelA1, model.GenerationSucceeded, true, now)
	save("d", model.LevelA1, model.GenerationFailed, false, now) // evicts "a"

	st, _ := r.Stats(ctx, time.Time{})
	if st.Total != 3 || st.ByLevel[model.LevelC2] != 0 {
		t.Fatalf("ring limit not applied: %+v", st)
	}
	st, _ = r.Stats(ctx, now.Add(-time.Hour))
	if st.Succeeded != 2 || st.Failed != 1 || st.WithAudio != 2 || st.ByLevel[model.LevelA1] != 2 {
		t.Fatalf("stats: %+v", st)
	}
}
