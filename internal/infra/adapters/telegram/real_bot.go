package telegram

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"telegram-vocab-reader/internal/config"
	"telegram-vocab-reader/internal/conversation"
	"telegram-vocab-reader/internal/domain/ports/adapter"
	"telegram-vocab-reader/internal/infra/logging"
	"telegram-vocab-reader/internal/infra/metrics"
	red "telegram-vocab-reader/internal/infra/redis"
)

var _ adapter.Messenger = (*RealTelegramBotAdapter)(nil)

// EventHandler receives conversation events decoded from updates.
type EventHandler interface {
	HandleEvent(ctx context.Context, chatID int64, ev conversation.Event) error
}

type RateLimiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}

type Translator interface {
	T(key string, args ...interface{}) string
}

// botAPI is the subset of *tgbotapi.BotAPI the adapter uses.
type botAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	GetFileDirectURL(fileID string) (string, error)
	StopReceivingUpdates()
}

// RealTelegramBotAdapter polls updates, turns them into conversation events
// and implements the Messenger port on the same bot client.
type RealTelegramBotAdapter struct {
	bot         botAPI
	cfg         *config.BotConfig
	handler     EventHandler
	rateLimiter RateLimiter
	translator  Translator
	fetch       fileFetcher
	log         *zerolog.Logger

	updateWorkers int
	cancelPolling context.CancelFunc
}

func NewRealTelegramBotAdapter(cfg *config.BotConfig, translator Translator, rateLimiter RateLimiter, logger *zerolog.Logger) (*RealTelegramBotAdapter, error) {
	if cfg == nil {
		return nil, errors.New("bot config is nil")
	}
	if translator == nil {
		return nil, errors.New("translator is nil")
	}
	bot, err := tgbotapi.NewBotAPI(cfg.Token)
	if err != nil {
		return nil, fmt.Errorf("telegram login: %w", err)
	}
	return newAdapter(bot, cfg, translator, rateLimiter, logger), nil
}

func newAdapter(bot botAPI, cfg *config.BotConfig, translator Translator, rateLimiter RateLimiter, logger *zerolog.Logger) *RealTelegramBotAdapter {
	if logger == nil {
		logger = logging.Nop()
	}
	workers := cfg.Workers
	if workers <= 0 {
		workers = 5
	}
	return &RealTelegramBotAdapter{
		bot:           bot,
		cfg:           cfg,
		rateLimiter:   rateLimiter,
		translator:    translator,
		fetch:         httpFetch,
		log:           logger,
		updateWorkers: workers,
	}
}

// SetHandler wires the conversation use case. The adapter and the use case
// depend on each other, so this happens after both are built.
func (r *RealTelegramBotAdapter) SetHandler(h EventHandler) {
	r.handler = h
}

func (r *RealTelegramBotAdapter) StartPolling(ctx context.Context) error {
	if r.handler == nil {
		return errors.New("event handler is not set")
	}
	if err := r.SetMenuCommands(ctx); err != nil {
		r.log.Warn().Err(err).Msg("set bot commands failed")
	}

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := r.bot.GetUpdatesChan(u)
	defer r.bot.StopReceivingUpdates()

	ctx, cancel := context.WithCancel(ctx)
	r.cancelPolling = cancel

	var wg sync.WaitGroup
	updateChan := make(chan tgbotapi.Update, 100)

	for i := 0; i < r.updateWorkers; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for up := range updateChan {
				if err := r.handleUpdate(ctx, up); err != nil {
					r.log.Error().Err(err).Int("worker", id).Msg("update failed")
				}
			}
		}(i)
	}

	for {
		select {
		case <-ctx.Done():
			close(updateChan)
			wg.Wait()
			return ctx.Err()
		case up, ok := <-updates:
			if !ok {
				close(updateChan)
				wg.Wait()
				return nil
			}
			select {
			case updateChan <- up:
			case <-ctx.Done():
			}
		}
	}
}

func (r *RealTelegramBotAdapter) StopPolling() {
	if r.cancelPolling != nil {
		r.cancelPolling()
	}
}

func (r *RealTelegramBotAdapter) handleUpdate(ctx context.Context, update tgbotapi.Update) error {
	msg := update.Message
	if msg == nil || msg.Chat == nil {
		return nil
	}
	chatID := msg.Chat.ID
	ctx = logging.WithChatID(ctx, chatID)

	if r.rateLimiter != nil && r.cfg.RateLimit > 0 {
		allowed, err := r.rateLimiter.Allow(ctx, red.ChatMessageKey(chatID), r.cfg.RateLimit, time.Minute)
		if err != nil {
			r.log.Warn().Err(err).Msg("rate limit check failed")
		} else if !allowed {
			metrics.IncRateLimitTriggered()
			return r.SendText(ctx, chatID, r.translator.T("rate_limited"))
		}
	}

	ev, err := r.toEvent(ctx, msg)
	if err != nil {
		return err
	}
	if ev == nil {
		return nil
	}
	if err := r.handler.HandleEvent(ctx, chatID, ev); err != nil {
		r.log.Error().Err(err).Int64("chat_id", chatID).Msg("handle event failed")
		return r.SendText(ctx, chatID, r.translator.T("error_generic"))
	}
	return nil
}

// toEvent maps a message to a conversation event. A nil event means the
// message was answered here or ignored.
func (r *RealTelegramBotAdapter) toEvent(ctx context.Context, msg *tgbotapi.Message) (conversation.Event, error) {
	if msg.IsCommand() {
		metrics.IncTelegramUpdate("/" + msg.Command())
		if route, ok := commandRoutes()[msg.Command()]; ok {
			return route, nil
		}
		return conversation.Text{Text: msg.Text}, nil
	}
	if msg.Document != nil {
		metrics.IncTelegramUpdate("document")
		return r.documentEvent(ctx, msg)
	}
	if msg.Text != "" {
		metrics.IncTelegramUpdate("text")
		return conversation.Text{Text: msg.Text}, nil
	}
	metrics.IncTelegramUpdate("other")
	return nil, nil
}
