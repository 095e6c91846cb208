package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"

	"telegram-vocab-reader/internal/domain"
	"telegram-vocab-reader/internal/domain/ports/adapter"
	"telegram-vocab-reader/internal/infra/metrics"
)

// Compile-time assurance this adapter satisfies the port
var _ adapter.TextGenerator = (*ChatCompletionGenerator)(nil)

// ChatCompletionGenerator talks to any OpenAI-compatible chat completions API.
// DeepSeek is the default target.
type ChatCompletionGenerator struct {
	client      openai.Client
	name        string
	model       string
	temperature float64
	tokens      *TokenEstimator
}

type ChatCompletionOptions struct {
	Name        string // provider label for metrics and records
	APIKey      string
	BaseURL     string
	Model       string
	Temperature float64
	Timeout     time.Duration
}

func NewDeepSeekGenerator(apiKey, baseURL, model string, temperature float64) (*ChatCompletionGenerator, error) {
	return NewChatCompletionGenerator(ChatCompletionOptions{
		Name:        "deepseek",
		APIKey:      apiKey,
		BaseURL:     baseURL,
		Model:       model,
		Temperature: temperature,
		Timeout:     60 * time.Second,
	})
}

func NewChatCompletionGenerator(o ChatCompletionOptions) (*ChatCompletionGenerator, error) {
	if o.APIKey == "" {
		return nil, errors.New(o.Name + " api key empty")
	}
	if o.BaseURL == "" {
		o.BaseURL = "https://api.deepseek.com"
	}
	if o.Model == "" {
		o.Model = "deepseek-chat"
	}
	if o.Timeout <= 0 {
		o.Timeout = 60 * time.Second
	}
	client := openai.NewClient(
		option.WithAPIKey(o.APIKey),
		option.WithBaseURL(strings.TrimRight(o.BaseURL, "/")+"/"),
		option.WithRequestTimeout(o.Timeout),
		option.WithMaxRetries(2),
	)
	return &ChatCompletionGenerator{
		client:      client,
		name:        o.Name,
		model:       o.Model,
		temperature: o.Temperature,
		tokens:      NewTokenEstimator(),
	}, nil
}

func (g *ChatCompletionGenerator) Name() string { return g.name }

func (g *ChatCompletionGenerator) Generate(ctx context.Context, req adapter.GenerationRequest) (*adapter.GenerationResult, error) {
	msgs := BuildPrompt(req)
	params := openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(g.model),
		Messages: toOpenAIMessages(msgs),
	}
	if g.temperature > 0 {
		params.Temperature = openai.Float(g.temperature)
	}

	start := time.Now()
	resp, err := g.client.Chat.Completions.New(ctx, params)
	if err != nil {
		metrics.ObserveGeneration(g.name, g.model, 0, 0, time.Since(start), false)
		return nil, fmt.Errorf("%s chat completion: %w", g.name, err)
	}
	if len(resp.Choices) == 0 {
		metrics.ObserveGeneration(g.name, g.model, 0, 0, time.Since(start), false)
		return nil, fmt.Errorf("%s: %w", g.name, domain.ErrEmptyGeneration)
	}
	content := resp.Choices[0].Message.Content

	usage := adapter.Usage{
		PromptTokens:     int(resp.Usage.PromptTokens),
		CompletionTokens: int(resp.Usage.CompletionTokens),
		TotalTokens:      int(resp.Usage.TotalTokens),
	}
	g.tokens.Fill(&usage, msgs, content)

	text, used, err := ParseReply(content)
	metrics.ObserveGeneration(g.name, g.model, usage.PromptTokens, usage.CompletionTokens, time.Since(start), err == nil)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", g.name, err)
	}
	return &adapter.GenerationResult{
		Text:      text,
		WordsUsed: used,
		Usage:     usage,
		Provider:  g.name,
		Model:     g.model,
	}, nil
}

func toOpenAIMessages(msgs []adapter.Message) []openai.ChatCompletionMessageParamUnion {
	out := make([]openai.ChatCompletionMessageParamUnion, 0, len(msgs))
	for _, m := range msgs {
		switch strings.ToLower(m.Role) {
		case "system":
			out = append(out, openai.SystemMessage(m.Content))
		case "assistant":
			out = append(out, openai.AssistantMessage(m.Content))
		default:
			out = append(out, openai.UserMessage(m.Content))
		}
	}
	return out
}
