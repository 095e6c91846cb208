package adapter

import (
	"context"

	"telegram-vocab-reader/internal/domain/model"
)

// NarrationRequest is plain text plus a level-derived speed.
type NarrationRequest struct {
	Text         string
	Language     string
	SpeedPercent int
}

// Narrator is the port for text-to-speech.
type Narrator interface {
	Name() string
	Narrate(ctx context.Context, req NarrationRequest) (*model.AudioArtifact, error)
}
