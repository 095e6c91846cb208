package ai

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/sony/gobreaker"

	"telegram-vocab-reader/internal/domain"
	"telegram-vocab-reader/internal/domain/ports/adapter"
	"telegram-vocab-reader/internal/infra/metrics"
)

var _ adapter.TextGenerator = (*BreakerGenerator)(nil)

// BreakerGenerator stops calling a provider after consecutive failures so a
// fallback can take over immediately. Malformed replies do not count as failures.
type BreakerGenerator struct {
	inner adapter.TextGenerator
	cb    *gobreaker.CircuitBreaker
}

func NewBreakerGenerator(inner adapter.TextGenerator, failures int, cooldown time.Duration, logger *zerolog.Logger) *BreakerGenerator {
	if failures <= 0 {
		failures = 5
	}
	if cooldown <= 0 {
		cooldown = 30 * time.Second
	}
	st := gobreaker.Settings{
		Name:        inner.Name(),
		MaxRequests: 1,
		Timeout:     cooldown,
		ReadyToTrip: func(c gobreaker.Counts) bool {
			return c.ConsecutiveFailures >= uint32(failures)
		},
		IsSuccessful: func(err error) bool {
			return err == nil ||
				errors.Is(err, domain.ErrMalformedReply) ||
				errors.Is(err, domain.ErrEmptyGeneration) ||
				errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			metrics.SetBreakerState(name, int(to))
			if logger != nil {
				logger.Warn().Str("provider", name).Str("from", from.String()).Str("to", to.String()).Msg("generation breaker state changed")
			}
		},
	}
	return &BreakerGenerator{inner: inner, cb: gobreaker.NewCircuitBreaker(st)}
}

func (b *BreakerGenerator) Name() string { return b.inner.Name() }

func (b *BreakerGenerator) Generate(ctx context.Context, req adapter.GenerationRequest) (*adapter.GenerationResult, error) {
	out, err := b.cb.Execute(func() (interface{}, error) {
		return b.inner.Generate(ctx, req)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, fmt.Errorf("%s: %w", b.inner.Name(), domain.ErrProviderDown)
		}
		return nil, err
	}
	return out.(*adapter.GenerationResult), nil
}
