//go:build !integration

package telegram

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"telegram-vocab-reader/internal/config"
	"telegram-vocab-reader/internal/conversation"
)

type fakeBot struct {
	mu      sync.Mutex
	sent    []tgbotapi.Chattable
	err     error
	stopped bool
}

func (b *fakeBot) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.sent = append(b.sent, c)
	return tgbotapi.Message{}, b.err
}
func (b *fakeBot) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	return &tgbotapi.APIResponse{Ok: true}, nil
}
func (b *fakeBot) GetUpdatesChan(tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel {
	return make(chan tgbotapi.Update)
}
func (b *fakeBot) GetFileDirectURL(fileID string) (string, error) {
	return "https://files.example/" + fileID, nil
}

func (b *fakeBot) StopReceivingUpdates() {
	b.mu.Lock()
	b.stopped = true
	b.mu.Unlock()
}

func (b *fakeBot) texts() []string {
	var out []string
	for _, c := range b.sent {
		if m, ok := c.(tgbotapi.MessageConfig); ok {
			out = append(out, m.Text)
		}
	}
	return out
}

type keyT struct{}

func (keyT) T(key string, args ...interface{}) string { return key }

type recordHandler struct {
	events []conversation.Event
	err    error
}

func (h *recordHandler) HandleEvent(ctx context.Context, chatID int64, ev conversation.Event) error {
	h.events = append(h.events, ev)
	return h.err
}

type denyLimiter struct{}

func (denyLimiter) Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	return false, nil
}

func newTestAdapter(cfg config.BotConfig) (*RealTelegramBotAdapter, *fakeBot, *recordHandler) {
	bot := &fakeBot{}
	h := &recordHandler{}
	a := newAdapter(bot, &cfg, keyT{}, nil, nil)
	a.SetHandler(h)
	return a, bot, h
}

func textUpdate(text string) tgbotapi.Update {
	msg := &tgbotapi.Message{Text: text, Chat: &tgbotapi.Chat{ID: 7}}
	if strings.HasPrefix(text, "/") {
		n := len(strings.Fields(text)[0])
		msg.Entities = []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: n}}
	}
	return tgbotapi.Update{Message: msg}
}

func TestUpdatesBecomeEvents(t *testing.T) {
	cases := []struct {
		in   string
		want conversation.Event
	}{
		{"/start", conversation.Start{}},
		{"/help", conversation.Start{}},
		{"/cancel", conversation.Cancel{}},
		{"/unknown", conversation.Text{Text: "/unknown"}},
		{"B2", conversation.Text{Text: "B2"}},
	}
	for _, tc := range cases {
		a, _, h := newTestAdapter(config.BotConfig{})
		if err := a.handleUpdate(context.Background(), textUpdate(tc.in)); err != nil {
			t.Fatalf("%q: %v", tc.in, err)
		}
		if len(h.events) != 1 || h.events[0] != tc.want {
			t.Fatalf("%q: events = %#v", tc.in, h.events)
		}
	}
}

func TestRateLimitedChatIsAnswered(t *testing.T) {
	a, bot, h := newTestAdapter(config.BotConfig{RateLimit: 1})
	a.rateLimiter = denyLimiter{}
	_ = a.handleUpdate(context.Background(), textUpdate("hello"))
	if len(h.events) != 0 {
		t.Fatal("limited update reached the handler")
	}
	if got := bot.texts(); len(got) != 1 || got[0] != "rate_limited" {
		t.Fatalf("sent %v", got)
	}
}

func TestHandlerErrorSendsGenericReply(t *testing.T) {
	a, bot, h := newTestAdapter(config.BotConfig{})
	h.err = errors.New("boom")
	_ = a.handleUpdate(context.Background(), textUpdate("hello"))
	if got := bot.texts(); len(got) != 1 || got[0] != "error_generic" {
		t.Fatalf("sent %v", got)
	}
}

func docUpdate(size int) tgbotapi.Update {
	return tgbotapi.Update{Message: &tgbotapi.Message{
		Chat:     &tgbotapi.Chat{ID: 7},
		Document: &tgbotapi.Document{FileID: "f1", FileName: "deck.txt", FileSize: size},
	}}
}

func TestDocumentDownload(t *testing.T) {
	a, bot, h := newTestAdapter(config.BotConfig{MaxFileBytes: 64})
	var gotURL string
	a.fetch = func(ctx context.Context, url string, limit int64) ([]byte, error) {
		gotURL = url
		return []byte("\xEF\xBB\xBFitinerary\tviaje\n"), nil
	}
	if err := a.handleUpdate(context.Background(), docUpdate(20)); err != nil {
		t.Fatal(err)
	}
	if gotURL != "https://files.example/f1" {
		t.Fatalf("url = %q", gotURL)
	}
	if len(h.events) != 1 || h.events[0] != (conversation.Document{Content: "itinerary\tviaje\n"}) {
		t.Fatalf("events = %#v, sent %v", h.events, bot.texts())
	}
}

func TestDocumentRejections(t *testing.T) {
	t.Run("declared size", func(t *testing.T) {
		a, bot, h := newTestAdapter(config.BotConfig{MaxFileBytes: 10})
		_ = a.handleUpdate(context.Background(), docUpdate(11))
		if len(h.events) != 0 || bot.texts()[0] != "file_too_large" {
			t.Fatalf("events %v, sent %v", h.events, bot.texts())
		}
	})
	t.Run("binary", func(t *testing.T) {
		a, bot, h := newTestAdapter(config.BotConfig{MaxFileBytes: 10})
		a.fetch = func(context.Context, string, int64) ([]byte, error) { return []byte{0xff, 0xfe, 0x00}, nil }
		_ = a.handleUpdate(context.Background(), docUpdate(3))
		if len(h.events) != 0 || bot.texts()[0] != "file_unreadable" {
			t.Fatalf("events %v, sent %v", h.events, bot.texts())
		}
	})
	t.Run("body over limit", func(t *testing.T) {
		a, bot, h := newTestAdapter(config.BotConfig{MaxFileBytes: 4})
		a.fetch = func(context.Context, string, int64) ([]byte, error) { return []byte("abcde"), nil }
		_ = a.handleUpdate(context.Background(), docUpdate(0))
		if len(h.events) != 0 || bot.texts()[0] != "file_too_large" {
			t.Fatalf("events %v, sent %v", h.events, bot.texts())
		}
	})
	t.Run("download error", func(t *testing.T) {
		a, bot, _ := newTestAdapter(config.BotConfig{})
		a.fetch = func(context.Context, string, int64) ([]byte, error) { return nil, errors.New("timeout") }
		_ = a.handleUpdate(context.Background(), docUpdate(3))
		if bot.texts()[0] != "file_unreadable" {
			t.Fatalf("sent %v", bot.texts())
		}
	})
}

func TestSendKeyboard(t *testing.T) {
	a, bot, _ := newTestAdapter(config.BotConfig{})
	ctx := context.Background()
	_ = a.SendKeyboard(ctx, 7, "pick", conversation.LevelKeyboard())
	_ = a.SendKeyboard(ctx, 7, "topic?", nil)

	kb, ok := bot.sent[0].(tgbotapi.MessageConfig).ReplyMarkup.(tgbotapi.ReplyKeyboardMarkup)
	if !ok || !kb.OneTimeKeyboard || len(kb.Keyboard) != 2 || kb.Keyboard[0][0].Text != "C2" {
		t.Fatalf("keyboard = %#v", bot.sent[0])
	}
	if _, ok := bot.sent[1].(tgbotapi.MessageConfig).ReplyMarkup.(tgbotapi.ReplyKeyboardRemove); !ok {
		t.Fatalf("want keyboard removal, got %#v", bot.sent[1])
	}
}

func TestSendFiles(t *testing.T) {
	a, bot, _ := newTestAdapter(config.BotConfig{})
	ctx := context.Background()
	_ = a.SendDocument(ctx, 7, "text.html", []byte("<html>"), "used")
	_ = a.SendAudio(ctx, 7, "audio.mp3", []byte("ID3"), "speed")

	doc := bot.sent[0].(tgbotapi.DocumentConfig)
	if doc.Caption != "used" || doc.File.(tgbotapi.FileBytes).Name != "text.html" {
		t.Fatalf("document = %#v", doc)
	}
	audio := bot.sent[1].(tgbotapi.AudioConfig)
	if audio.Caption != "speed" || audio.File.(tgbotapi.FileBytes).Name != "audio.mp3" {
		t.Fatalf("audio = %#v", audio)
	}
}

func TestSplitMessage(t *testing.T) {
	long := strings.Repeat("a", 30) + "\n" + strings.Repeat("b", 30)
	parts := splitMessage(long, 40)
	if len(parts) != 2 || parts[0] != strings.Repeat("a", 30)+"\n" {
		t.Fatalf("parts = %q", parts)
	}
	if got := splitMessage("short", 40); len(got) != 1 {
		t.Fatalf("parts = %q", got)
	}
}

func TestStartPollingStopsLongPollOnCancel(t *testing.T) {
	a, bot, _ := newTestAdapter(config.BotConfig{})
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.StartPolling(ctx) }()

	cancel()
	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("StartPolling returned %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("StartPolling did not return")
	}
	bot.mu.Lock()
	defer bot.mu.Unlock()
	if !bot.stopped {
		t.Fatal("long poll left running")
	}
}
