package memory

import (
	"context"
	"sync"
	"time"

	"telegram-vocab-reader/internal/domain/model"
	"telegram-vocab-reader/internal/domain/ports/repository"
)

var _ repository.GenerationRepository = (*GenerationRepo)(nil)

// GenerationRepo keeps the most recent records in a ring.
type GenerationRepo struct {
	mu    sync.RWMutex
	byID  map[string]int
	items []model.GenerationRecord
	limit int
}

func NewGenerationRepo(limit int) *GenerationRepo {
	if limit <= 0 {
		limit = 10000
	}
	return &GenerationRepo{byID: map[string]int{}, limit: limit}
}

func (r *GenerationRepo) Save(ctx context.Context, tx repository.Tx, rec *model.GenerationRecord) error {
	cp := *rec
	if cp.CreatedAt.IsZero() {
		cp.CreatedAt = time.Now()
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if i, ok := r.byID[cp.ID]; ok {
		r.items[i] = cp
		return nil
	}
	if len(r.items) >= r.limit {
		delete(r.byID, r.items[0].ID)
		r.items = r.items[1:]
		for id, i := range r.byID {
			r.byID[id] = i - 1
		}
	}
	r.byID[cp.ID] = len(r.items)
	r.items = append(r.items, cp)
	return nil
}

func (r *GenerationRepo) Stats(ctx context.Context, since time.Time) (*model.GenerationStats, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	st := &model.GenerationStats{ByLevel: map[model.Level]int{}}
	for _, it := range r.items {
		if it.CreatedAt.Before(since) {
			continue
		}
		st.Total++
		st.ByLevel[it.Level]++
		switch it.Status {
		case model.GenerationSucceeded:
			st.Succeeded++
		case model.GenerationFailed:
			st.Failed++
		}
		if it.HasAudio {
			st.WithAudio++
		}
	}
	return st, nil
}
