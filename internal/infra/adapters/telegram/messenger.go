package telegram

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"telegram-vocab-reader/internal/infra/metrics"
)

const maxMessageRunes = 4096

func (r *RealTelegramBotAdapter) SendText(ctx context.Context, chatID int64, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	for _, part := range splitMessage(text, maxMessageRunes) {
		if err := r.send(tgbotapi.NewMessage(chatID, part), "sendMessage"); err != nil {
			return err
		}
	}
	return nil
}

// SendKeyboard shows a one-time reply keyboard, or removes it when rows is nil.
func (r *RealTelegramBotAdapter) SendKeyboard(ctx context.Context, chatID int64, text string, rows [][]string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	msg := tgbotapi.NewMessage(chatID, text)
	if len(rows) == 0 {
		msg.ReplyMarkup = tgbotapi.NewRemoveKeyboard(true)
		return r.send(msg, "sendMessage")
	}
	kbRows := make([][]tgbotapi.KeyboardButton, 0, len(rows))
	for _, row := range rows {
		btns := make([]tgbotapi.KeyboardButton, 0, len(row))
		for _, label := range row {
			btns = append(btns, tgbotapi.NewKeyboardButton(label))
		}
		kbRows = append(kbRows, btns)
	}
	kb := tgbotapi.NewReplyKeyboard(kbRows...)
	kb.OneTimeKeyboard = true
	kb.ResizeKeyboard = true
	msg.ReplyMarkup = kb
	return r.send(msg, "sendMessage")
}

func (r *RealTelegramBotAdapter) SendDocument(ctx context.Context, chatID int64, name string, data []byte, caption string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	doc := tgbotapi.NewDocument(chatID, tgbotapi.FileBytes{Name: name, Bytes: data})
	doc.Caption = caption
	return r.send(doc, "sendDocument")
}

func (r *RealTelegramBotAdapter) SendAudio(ctx context.Context, chatID int64, name string, data []byte, caption string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	audio := tgbotapi.NewAudio(chatID, tgbotapi.FileBytes{Name: name, Bytes: data})
	audio.Caption = caption
	return r.send(audio, "sendAudio")
}

func (r *RealTelegramBotAdapter) send(c tgbotapi.Chattable, method string) error {
	if _, err := r.bot.Send(c); err != nil {
		metrics.IncSendError(method)
		return err
	}
	return nil
}

// splitMessage cuts text into pieces of at most max runes, preferring line breaks.
func splitMessage(text string, max int) []string {
	runes := []rune(text)
	if len(runes) <= max {
		return []string{text}
	}
	var parts []string
	for len(runes) > max {
		cut := max
		for i := max; i > max/2; i-- {
			if runes[i-1] == '\n' {
				cut = i
				break
			}
		}
		parts = append(parts, string(runes[:cut]))
		runes = runes[cut:]
	}
	if len(runes) > 0 {
		parts = append(parts, string(runes))
	}
	return parts
}
