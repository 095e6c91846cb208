package ai

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"telegram-vocab-reader/internal/domain/ports/adapter"
	"telegram-vocab-reader/internal/vocab"
)

var _ adapter.TextGenerator = (*NoopGenerator)(nil)

// NoopGenerator writes a canned passage from the vocabulary, for local runs.
type NoopGenerator struct {
	log *zerolog.Logger
}

func NewNoopGenerator(logger *zerolog.Logger) *NoopGenerator {
	return &NoopGenerator{log: logger}
}

func (a *NoopGenerator) Name() string { return "noop" }

func (a *NoopGenerator) Generate(ctx context.Context, req adapter.GenerationRequest) (*adapter.GenerationResult, error) {
	select {
	case <-time.After(100 * time.Millisecond):
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	words := req.Words
	if len(words) > MaxPromptWords {
		words = words[:MaxPromptWords]
	}
	var b strings.Builder
	fmt.Fprintf(&b, "A short %s reading about %s for level %s.\n\n", vocab.LanguageName(req.Language), req.Topic, req.Level)
	for i, w := range words {
		fmt.Fprintf(&b, "Sentence %d uses the word %s. ", i+1, w)
		if (i+1)%5 == 0 {
			b.WriteString("\n\n")
		}
	}
	if a.log != nil {
		a.log.Debug().Int("words", len(words)).Str("topic", req.Topic).Msg("noop generation")
	}
	return &adapter.GenerationResult{
		Text:      strings.TrimSpace(b.String()),
		WordsUsed: append([]string(nil), words...),
		Provider:  "noop",
		Model:     "noop",
	}, nil
}
