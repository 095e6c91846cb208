package tts

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	texttospeech "cloud.google.com/go/texttospeech/apiv1"
	"cloud.google.com/go/texttospeech/apiv1/texttospeechpb"
	"github.com/rs/zerolog"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"telegram-vocab-reader/internal/domain/model"
	"telegram-vocab-reader/internal/domain/ports/adapter"
	"telegram-vocab-reader/internal/infra/metrics"
)

var _ adapter.Narrator = (*GoogleNarrator)(nil)

type synthesizeFunc func(ctx context.Context, req *texttospeechpb.SynthesizeSpeechRequest) (*texttospeechpb.SynthesizeSpeechResponse, error)

// GoogleNarrator narrates with Google Cloud Text-to-Speech Chirp HD voices.
type GoogleNarrator struct {
	synth      synthesizeFunc
	closer     func() error
	log        *zerolog.Logger
	maxRetries int
	backoff    time.Duration

	mu  sync.Mutex
	rng *rand.Rand
}

// NewGoogleNarrator dials the TTS API with a service-account credentials file.
func NewGoogleNarrator(ctx context.Context, credsPath string, logger *zerolog.Logger) (*GoogleNarrator, error) {
	var opts []option.ClientOption
	if credsPath != "" {
		opts = append(opts, option.WithCredentialsFile(credsPath))
	}
	c, err := texttospeech.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("texttospeech client: %w", err)
	}
	n := newGoogleNarrator(func(ctx context.Context, req *texttospeechpb.SynthesizeSpeechRequest) (*texttospeechpb.SynthesizeSpeechResponse, error) {
		return c.SynthesizeSpeech(ctx, req)
	}, logger)
	n.closer = c.Close
	return n, nil
}

func newGoogleNarrator(synth synthesizeFunc, logger *zerolog.Logger) *GoogleNarrator {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	l := logger.With().Str("component", "google_tts").Logger()
	return &GoogleNarrator{
		synth:      synth,
		log:        &l,
		maxRetries: 4,
		backoff:    750 * time.Millisecond,
		rng:        rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (g *GoogleNarrator) Name() string { return "google" }

func (g *GoogleNarrator) Close() error {
	if g.closer == nil {
		return nil
	}
	return g.closer()
}

func (g *GoogleNarrator) pickVoice(lang string) string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return PickVoice(lang, g.rng)
}

func (g *GoogleNarrator) Narrate(ctx context.Context, req adapter.NarrationRequest) (*model.AudioArtifact, error) {
	chunks := SplitChunks(StripTags(req.Text), MaxRequestBytes)
	if len(chunks) == 0 {
		return nil, errors.New("google tts: nothing to narrate")
	}
	voice := g.pickVoice(req.Language)
	rate := model.LevelPolicy{SpeedPercent: req.SpeedPercent}.SpeakingRate()

	start := time.Now()
	var audio bytes.Buffer
	for i, chunk := range chunks {
		sr := &texttospeechpb.SynthesizeSpeechRequest{
			Input: &texttospeechpb.SynthesisInput{
				InputSource: &texttospeechpb.SynthesisInput_Text{Text: chunk},
			},
			Voice: &texttospeechpb.VoiceSelectionParams{
				LanguageCode: LanguageCode(voice, req.Language),
				Name:         voice,
			},
			AudioConfig: &texttospeechpb.AudioConfig{
				AudioEncoding: texttospeechpb.AudioEncoding_MP3,
				SpeakingRate:  rate,
			},
		}
		resp, err := g.retry(ctx, func() (*texttospeechpb.SynthesizeSpeechResponse, error) {
			return g.synth(ctx, sr)
		})
		if err != nil {
			metrics.ObserveNarration(g.Name(), 0, time.Since(start), false)
			return nil, fmt.Errorf("google tts chunk %d/%d: %w", i+1, len(chunks), err)
		}
		// MP3 frames are self-contained, so segments play back to back.
		audio.Write(resp.GetAudioContent())
	}

	metrics.ObserveNarration(g.Name(), audio.Len(), time.Since(start), true)
	g.log.Debug().Str("voice", voice).Int("chunks", len(chunks)).Int("bytes", audio.Len()).Msg("narration done")
	return &model.AudioArtifact{
		Data:         audio.Bytes(),
		Format:       "mp3",
		SpeedPercent: req.SpeedPercent,
		Voice:        voice,
	}, nil
}

// retry repeats fn on transient gRPC codes with capped exponential backoff.
func (g *GoogleNarrator) retry(ctx context.Context, fn func() (*texttospeechpb.SynthesizeSpeechResponse, error)) (*texttospeechpb.SynthesizeSpeechResponse, error) {
	backoff := g.backoff
	var last error
	for attempt := 0; attempt <= g.maxRetries; attempt++ {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		resp, err := fn()
		if err == nil {
			return resp, nil
		}
		last = err

		code := status.Code(err)
		if code != codes.Unavailable && code != codes.ResourceExhausted && code != codes.DeadlineExceeded {
			return nil, err
		}
		if attempt == g.maxRetries {
			break
		}
		g.log.Warn().Err(err).Int("attempt", attempt+1).Dur("backoff", backoff).Msg("transient tts error, retrying")
		select {
		case <-time.After(backoff):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
		backoff *= 2
		if backoff > 10*time.Second {
			backoff = 10 * time.Second
		}
	}
	return nil, last
}
