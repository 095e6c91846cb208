package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"telegram-vocab-reader/internal/domain"
	"telegram-vocab-reader/internal/domain/model"
	"telegram-vocab-reader/internal/domain/ports/repository"
)

// Compile-time check
var _ StatsUseCase = (*statsUC)(nil)

type StatsUseCase interface {
	Summary(ctx context.Context, since time.Time) (*model.GenerationStats, error)
}

type statsUC struct {
	records repository.GenerationRepository

	log *zerolog.Logger
}

func NewStatsUseCase(records repository.GenerationRepository, logger *zerolog.Logger) *statsUC {
	return &statsUC{records: records, log: logger}
}

// Summary aggregates generation records created at or after since.
// A zero since means all time.
func (s *statsUC) Summary(ctx context.Context, since time.Time) (*model.GenerationStats, error) {
	if !since.IsZero() && since.After(time.Now()) {
		return nil, errors.Join(domain.ErrInvalidArgument, errors.New("since is in the future"))
	}
	st, err := s.records.Stats(ctx, since)
	if err != nil {
		return nil, err
	}
	if st.ByLevel == nil {
		st.ByLevel = map[model.Level]int{}
	}
	return st, nil
}
