package telegram

import (
	"context"
	"log/slog"

	TgClient "github.com/admin/tg-bots/birthday-bot/internal/adapters/secondary/telegram"
	"github.com/admin/tg-bots/birthday-bot/internal/ports/service"
)

// botSetup методы Bot API для настройки бота при старте
type botSetup interface {
	SetMyCommands(ctx context.Context, commands []TgClient.BotCommand) error
	SetWebhook(ctx context.Context, url string, secret string) error
	DeleteWebhook(ctx context.Context) error
}

// Service роутит входящие обновления Telegram в бизнес-логику бота
type Service struct {
	BotService service.IBotService
	Client     botSetup
	Log        *slog.Logger
}

func New(botService service.IBotService, client botSetup, log *slog.Logger) *Service {
	return &Service{
		BotService: botService,
		Client:     client,
		Log:        log,
	}
}
