package ai

import (
	"sync"

	tiktoken "github.com/pkoukk/tiktoken-go"

	"telegram-vocab-reader/internal/domain/ports/adapter"
)

// TokenEstimator fills usage numbers for providers that omit them.
// The encoding is loaded once; without it a four-bytes-per-token guess is used.
type TokenEstimator struct {
	once sync.Once
	enc  *tiktoken.Tiktoken
}

func NewTokenEstimator() *TokenEstimator { return &TokenEstimator{} }

func (e *TokenEstimator) Count(text string) int {
	e.once.Do(func() {
		if enc, err := tiktoken.GetEncoding("cl100k_base"); err == nil {
			e.enc = enc
		}
	})
	if e.enc == nil {
		return (len(text) + 3) / 4
	}
	return len(e.enc.Encode(text, nil, nil))
}

// Fill sets zero usage fields from the prompt and reply text.
func (e *TokenEstimator) Fill(u *adapter.Usage, prompt []adapter.Message, reply string) {
	if u.PromptTokens == 0 {
		for _, m := range prompt {
			u.PromptTokens += e.Count(m.Content)
		}
	}
	if u.CompletionTokens == 0 && reply != "" {
		u.CompletionTokens = e.Count(reply)
	}
	if u.TotalTokens == 0 {
		u.TotalTokens = u.PromptTokens + u.CompletionTokens
	}
}
