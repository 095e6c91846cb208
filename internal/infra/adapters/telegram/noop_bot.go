package telegram

import (
	"context"

	"github.com/rs/zerolog"

	"telegram-vocab-reader/internal/domain/ports/adapter"
	"telegram-vocab-reader/internal/infra/logging"
)

var _ adapter.Messenger = (*NoopBotAdapter)(nil)

// NoopBotAdapter implements adapter.Messenger for local/dev runs.
// It logs messages instead of sending them.
type NoopBotAdapter struct {
	log *zerolog.Logger
}

func NewNoopBotAdapter(logger *zerolog.Logger) *NoopBotAdapter {
	if logger == nil {
		logger = logging.Nop()
	}
	return &NoopBotAdapter{log: logger}
}

func (b *NoopBotAdapter) SendText(ctx context.Context, chatID int64, text string) error {
	b.log.Info().Int64("chat_id", chatID).Str("text", text).Msg("[noop-telegram] message")
	return ctx.Err()
}

func (b *NoopBotAdapter) SendKeyboard(ctx context.Context, chatID int64, text string, rows [][]string) error {
	b.log.Info().Int64("chat_id", chatID).Str("text", text).Interface("keyboard", rows).Msg("[noop-telegram] keyboard")
	return ctx.Err()
}

func (b *NoopBotAdapter) SendDocument(ctx context.Context, chatID int64, name string, data []byte, caption string) error {
	b.log.Info().Int64("chat_id", chatID).Str("name", name).Int("bytes", len(data)).Str("caption", caption).Msg("[noop-telegram] document")
	return ctx.Err()
}

func (b *NoopBotAdapter) SendAudio(ctx context.Context, chatID int64, name string, data []byte, caption string) error {
	b.log.Info().Int64("chat_id", chatID).Str("name", name).Int("bytes", len(data)).Str("caption", caption).Msg("[noop-telegram] audio")
	return ctx.Err()
}
