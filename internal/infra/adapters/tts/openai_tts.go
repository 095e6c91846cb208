package tts

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/sashabaranov/go-openai"

	"telegram-vocab-reader/internal/domain/model"
	"telegram-vocab-reader/internal/domain/ports/adapter"
	"telegram-vocab-reader/internal/infra/metrics"
)

var _ adapter.Narrator = (*OpenAINarrator)(nil)

// OpenAINarrator narrates with the OpenAI speech endpoint.
type OpenAINarrator struct {
	client *openai.Client
	model  string
	voice  string
}

func NewOpenAINarrator(apiKey, model, voice string) (*OpenAINarrator, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}
	if model == "" {
		model = string(openai.TTSModel1)
	}
	if voice == "" {
		voice = string(openai.VoiceAlloy)
	}
	return &OpenAINarrator{client: openai.NewClient(apiKey), model: model, voice: voice}, nil
}

func (p *OpenAINarrator) Name() string { return "openai" }

func (p *OpenAINarrator) Narrate(ctx context.Context, req adapter.NarrationRequest) (*model.AudioArtifact, error) {
	text := StripTags(req.Text)
	if text == "" {
		return nil, fmt.Errorf("openai tts: nothing to narrate")
	}
	speed := model.LevelPolicy{SpeedPercent: req.SpeedPercent}.SpeakingRate()

	start := time.Now()
	resp, err := p.client.CreateSpeech(ctx, openai.CreateSpeechRequest{
		Model:          openai.SpeechModel(p.model),
		Input:          text,
		Voice:          openai.SpeechVoice(p.voice),
		ResponseFormat: openai.SpeechResponseFormatMp3,
		Speed:          speed,
	})
	if err != nil {
		metrics.ObserveNarration(p.Name(), 0, time.Since(start), false)
		return nil, fmt.Errorf("OpenAI TTS API error: %w", err)
	}
	defer resp.Close()

	data, err := io.ReadAll(resp)
	if err != nil || len(data) == 0 {
		metrics.ObserveNarration(p.Name(), 0, time.Since(start), false)
		if err == nil {
			err = fmt.Errorf("no audio data received from OpenAI")
		}
		return nil, err
	}
	metrics.ObserveNarration(p.Name(), len(data), time.Since(start), true)
	return &model.AudioArtifact{Data: data, Format: "mp3", SpeedPercent: req.SpeedPercent, Voice: p.voice}, nil
}
