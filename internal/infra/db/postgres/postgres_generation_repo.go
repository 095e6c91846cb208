package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"

	"telegram-vocab-reader/internal/domain"
	"telegram-vocab-reader/internal/domain/model"
	"telegram-vocab-reader/internal/domain/ports/repository"
	"telegram-vocab-reader/internal/infra/metrics"
)

var _ repository.GenerationRepository = (*generationRepo)(nil)

type generationRepo struct {
	pool *pgxpool.Pool
}

func NewGenerationRepo(pool *pgxpool.Pool) repository.GenerationRepository {
	return &generationRepo{pool: pool}
}

func (r *generationRepo) Save(ctx context.Context, tx repository.Tx, rec *model.GenerationRecord) error {
	const q = `
INSERT INTO generations (id, chat_id, level, language, topic, vocab_size, words_used,
                         provider, has_audio, status, error, latency_ms, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
ON CONFLICT (id) DO UPDATE SET
    words_used = EXCLUDED.words_used,
    provider   = EXCLUDED.provider,
    has_audio  = EXCLUDED.has_audio,
    status     = EXCLUDED.status,
    error      = EXCLUDED.error,
    latency_ms = EXCLUDED.latency_ms`

	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return err
	}
	created := rec.CreatedAt
	if created.IsZero() {
		created = time.Now()
	}
	_, err = ex.Exec(ctx, q,
		rec.ID, rec.ChatID, string(rec.Level), rec.Language, rec.Topic, rec.VocabSize, rec.WordsUsed,
		rec.Provider, rec.HasAudio, string(rec.Status), rec.Error, rec.Latency.Milliseconds(), created)
	if err != nil {
		return fmt.Errorf("insert generation %s: %w", rec.ID, err)
	}
	return nil
}

func (r *generationRepo) Stats(ctx context.Context, since time.Time) (*model.GenerationStats, error) {
	const q = `
SELECT level,
       COUNT(*),
       COUNT(*) FILTER (WHERE status = 'succeeded'),
       COUNT(*) FILTER (WHERE status = 'failed'),
       COUNT(*) FILTER (WHERE has_audio)
FROM generations
WHERE created_at >= $1
GROUP BY level`

	r.observePool()
	rows, err := r.pool.Query(ctx, q, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	st := &model.GenerationStats{ByLevel: map[model.Level]int{}}
	for rows.Next() {
		var level string
		var total, succeeded, failed, audio int
		if err := rows.Scan(&level, &total, &succeeded, &failed, &audio); err != nil {
			return nil, domain.ErrReadDatabaseRow
		}
		st.ByLevel[model.Level(level)] = total
		st.Total += total
		st.Succeeded += succeeded
		st.Failed += failed
		st.WithAudio += audio
	}
	return st, rows.Err()
}

func (r *generationRepo) observePool() {
	s := r.pool.Stat()
	metrics.SetDBPoolStats(s.TotalConns(), s.IdleConns(), s.AcquiredConns())
}
