// File: internal/domain/ports/adapter/telegram.go
package adapter

import "context"

// Messenger delivers bot output to a chat.
type Messenger interface {
	SendText(ctx context.Context, chatID int64, text string) error
	// SendKeyboard shows a one-time reply keyboard; nil rows remove any keyboard.
	SendKeyboard(ctx context.Context, chatID int64, text string, rows [][]string) error
	SendDocument(ctx context.Context, chatID int64, name string, data []byte, caption string) error
	SendAudio(ctx context.Context, chatID int64, name string, data []byte, caption string) error
}
