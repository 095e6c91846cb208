package tts

import (
	"context"

	"github.com/rs/zerolog"

	"telegram-vocab-reader/internal/domain/model"
	"telegram-vocab-reader/internal/domain/ports/adapter"
)

var _ adapter.Narrator = (*NoopNarrator)(nil)

// silentFrame is one MPEG-1 Layer III frame of silence.
var silentFrame = append([]byte{0xFF, 0xFB, 0x90, 0x64}, make([]byte, 413)...)

// NoopNarrator returns a short silent MP3 for local runs.
type NoopNarrator struct {
	log *zerolog.Logger
}

func NewNoopNarrator(logger *zerolog.Logger) *NoopNarrator {
	return &NoopNarrator{log: logger}
}

func (n *NoopNarrator) Name() string { return "noop" }

func (n *NoopNarrator) Narrate(ctx context.Context, req adapter.NarrationRequest) (*model.AudioArtifact, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if n.log != nil {
		n.log.Debug().Int("chars", len(req.Text)).Int("speed", req.SpeedPercent).Msg("noop narration")
	}
	data := make([]byte, 0, len(silentFrame)*8)
	for i := 0; i < 8; i++ {
		data = append(data, silentFrame...)
	}
	return &model.AudioArtifact{Data: data, Format: "mp3", SpeedPercent: req.SpeedPercent, Voice: "silence"}, nil
}
