package adapter

import (
	"context"

	"telegram-vocab-reader/internal/domain/model"
)

// Message represents a chat message sent to a model.
type Message struct {
	Role    string `json:"role"` // "user", "assistant", "system"
	Content string `json:"content"`
}

// Usage for a single generation call.
type Usage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

// GenerationRequest carries everything a provider needs to write a passage.
type GenerationRequest struct {
	Words    []string
	Level    model.Level
	Topic    string
	Language string
}

// GenerationResult is the parsed provider reply.
type GenerationResult struct {
	Text      string
	WordsUsed []string
	Usage     Usage
	Provider  string
	Model     string
}

// TextGenerator is the port for leveled passage generation.
type TextGenerator interface {
	Name() string
	Generate(ctx context.Context, req GenerationRequest) (*GenerationResult, error)
}
