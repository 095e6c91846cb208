// File: internal/infra/adapters/ai/multi_adapter.go
package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"telegram-vocab-reader/internal/domain"
	"telegram-vocab-reader/internal/domain/ports/adapter"
)

var _ adapter.TextGenerator = (*MultiGenerator)(nil)

// MultiGenerator tries providers in order and returns the first success.
type MultiGenerator struct {
	providers []adapter.TextGenerator
	log       *zerolog.Logger
}

func NewMultiGenerator(logger *zerolog.Logger, providers ...adapter.TextGenerator) *MultiGenerator {
	ps := make([]adapter.TextGenerator, 0, len(providers))
	for _, p := range providers {
		if p != nil {
			ps = append(ps, p)
		}
	}
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &MultiGenerator{providers: ps, log: logger}
}

func (m *MultiGenerator) Name() string {
	names := make([]string, len(m.providers))
	for i, p := range m.providers {
		names[i] = p.Name()
	}
	return strings.Join(names, "+")
}

func (m *MultiGenerator) Generate(ctx context.Context, req adapter.GenerationRequest) (*adapter.GenerationResult, error) {
	if len(m.providers) == 0 {
		return nil, domain.ErrProviderDown
	}
	var errs []error
	for i, p := range m.providers {
		res, err := p.Generate(ctx, req)
		if err == nil {
			return res, nil
		}
		errs = append(errs, fmt.Errorf("%s: %w", p.Name(), err))
		if ctx.Err() != nil {
			break
		}
		if i < len(m.providers)-1 {
			m.log.Warn().Err(err).Str("provider", p.Name()).Str("next", m.providers[i+1].Name()).Msg("generation failed, falling back")
		}
	}
	return nil, errors.Join(errs...)
}
