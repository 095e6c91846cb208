package telegram

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"telegram-vocab-reader/internal/conversation"
)

// commandRoutes maps bot commands to the events they raise.
func commandRoutes() map[string]conversation.Event {
	return map[string]conversation.Event{
		"start":  conversation.Start{},
		"help":   conversation.Start{},
		"cancel": conversation.Cancel{},
	}
}

// SetMenuCommands publishes the command list shown in Telegram's menu.
func (r *RealTelegramBotAdapter) SetMenuCommands(ctx context.Context) error {
	cmds := tgbotapi.NewSetMyCommands(
		tgbotapi.BotCommand{Command: "start", Description: "Start over"},
		tgbotapi.BotCommand{Command: "help", Description: "How it works"},
		tgbotapi.BotCommand{Command: "cancel", Description: "Cancel the current request"},
	)
	_, err := r.bot.Request(cmds)
	return err
}
