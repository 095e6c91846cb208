package telegram

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"unicode/utf8"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"telegram-vocab-reader/internal/conversation"
)

// fileFetcher downloads at most limit+1 bytes from url.
type fileFetcher func(ctx context.Context, url string, limit int64) ([]byte, error)

var errFileTooLarge = errors.New("file too large")

var downloadClient = &http.Client{}

func httpFetch(ctx context.Context, url string, limit int64) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := downloadClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download: status %d", resp.StatusCode)
	}
	return io.ReadAll(io.LimitReader(resp.Body, limit+1))
}

// documentEvent downloads an uploaded file and decodes it as UTF-8 text.
// Oversized or binary files are answered directly.
func (r *RealTelegramBotAdapter) documentEvent(ctx context.Context, msg *tgbotapi.Message) (conversation.Event, error) {
	chatID := msg.Chat.ID
	limit := r.cfg.MaxFileBytes
	if limit <= 0 {
		limit = 5 << 20
	}
	if int64(msg.Document.FileSize) > limit {
		return nil, r.SendText(ctx, chatID, r.translator.T("file_too_large"))
	}

	url, err := r.bot.GetFileDirectURL(msg.Document.FileID)
	if err != nil {
		r.log.Warn().Err(err).Msg("resolve file url failed")
		return nil, r.SendText(ctx, chatID, r.translator.T("file_unreadable"))
	}
	data, err := r.fetch(ctx, url, limit)
	if err != nil {
		r.log.Warn().Err(err).Msg("download failed")
		return nil, r.SendText(ctx, chatID, r.translator.T("file_unreadable"))
	}

	content, err := decodeText(data, limit)
	switch {
	case errors.Is(err, errFileTooLarge):
		return nil, r.SendText(ctx, chatID, r.translator.T("file_too_large"))
	case err != nil:
		return nil, r.SendText(ctx, chatID, r.translator.T("file_unreadable"))
	}
	return conversation.Document{Content: content}, nil
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

func decodeText(data []byte, limit int64) (string, error) {
	if int64(len(data)) > limit {
		return "", errFileTooLarge
	}
	data = bytes.TrimPrefix(data, utf8BOM)
	if !utf8.Valid(data) || bytes.IndexByte(data, 0) >= 0 {
		return "", errors.New("not utf-8 text")
	}
	return string(data), nil
}
