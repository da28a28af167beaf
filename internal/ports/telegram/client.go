package telegram

import (
	"context"

	"github.com/admin/tg-bots/birthday-bot/internal/domain"
)

// IClient интерфейс для клиента Telegram API.
// Тексты отправляются с parse_mode=HTML.
type IClient interface {
	SendMessage(ctx context.Context, chatID int64, text string) error
	SendMessageWithKeyboard(ctx context.Context, chatID int64, text string, keyboard *domain.InlineKeyboard) error
	EditMessageText(ctx context.Context, chatID int64, messageID int64, text string, keyboard *domain.InlineKeyboard) error
	AnswerCallbackQuery(ctx context.Context, callbackID string, text string, showAlert bool) error
	SendPhotoURL(ctx context.Context, chatID int64, photoURL string, caption string) error
	SendDocument(ctx context.Context, chatID int64, filename string, data []byte, caption string) error
}
