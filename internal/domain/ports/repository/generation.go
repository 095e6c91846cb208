package repository

import (
	"context"
	"time"

	"telegram-vocab-reader/internal/domain/model"
)

type GenerationRepository interface {
	Save(ctx context.Context, tx Tx, rec *model.GenerationRecord) error
	Stats(ctx context.Context, since time.Time) (*model.GenerationStats, error)
}
