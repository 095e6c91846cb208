// File: internal/infra/adapters/ai/gemini_adapter.go
package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"google.golang.org/genai"

	"telegram-vocab-reader/internal/domain/ports/adapter"
	"telegram-vocab-reader/internal/infra/metrics"
)

var _ adapter.TextGenerator = (*GeminiGenerator)(nil)

type GeminiGenerator struct {
	client      *genai.Client
	model       string
	temperature float32
	tokens      *TokenEstimator
}

// NewGeminiGenerator creates a Gemini generator using the official SDK.
func NewGeminiGenerator(ctx context.Context, apiKey, model string, temperature float64) (*GeminiGenerator, error) {
	if apiKey == "" {
		return nil, errors.New("gemini: empty api key")
	}
	c, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, err
	}
	if model == "" {
		model = "gemini-2.5-flash"
	}
	return &GeminiGenerator{client: c, model: model, temperature: float32(temperature), tokens: NewTokenEstimator()}, nil
}

func (g *GeminiGenerator) Name() string { return "gemini" }

func (g *GeminiGenerator) Generate(ctx context.Context, req adapter.GenerationRequest) (*adapter.GenerationResult, error) {
	msgs := BuildPrompt(req)
	var system, user []string
	for _, m := range msgs {
		if strings.ToLower(m.Role) == "system" {
			system = append(system, m.Content)
		} else {
			user = append(user, m.Content)
		}
	}

	cfg := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
	}
	if len(system) > 0 {
		// Gemini has no system role in contents; it goes through the config.
		cfg.SystemInstruction = genai.NewContentFromText(strings.Join(system, "\n"), genai.RoleUser)
	}
	if g.temperature > 0 {
		cfg.Temperature = genai.Ptr(g.temperature)
	}

	start := time.Now()
	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(strings.Join(user, "\n\n")), cfg)
	if err != nil {
		metrics.ObserveGeneration("gemini", g.model, 0, 0, time.Since(start), false)
		return nil, fmt.Errorf("gemini generate: %w", err)
	}
	content := resp.Text()

	u := adapter.Usage{}
	if resp.UsageMetadata != nil {
		u.PromptTokens = int(resp.UsageMetadata.PromptTokenCount)
		u.CompletionTokens = int(resp.UsageMetadata.CandidatesTokenCount)
		u.TotalTokens = int(resp.UsageMetadata.TotalTokenCount)
	}
	g.tokens.Fill(&u, msgs, content)

	text, used, err := ParseReply(content)
	metrics.ObserveGeneration("gemini", g.model, u.PromptTokens, u.CompletionTokens, time.Since(start), err == nil)
	if err != nil {
		return nil, fmt.Errorf("gemini: %w", err)
	}
	return &adapter.GenerationResult{Text: text, WordsUsed: used, Usage: u, Provider: "gemini", Model: g.model}, nil
}
