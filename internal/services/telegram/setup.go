package telegram

import (
	"context"
	"fmt"

	TgClient "github.com/admin/tg-bots/birthday-bot/internal/adapters/secondary/telegram"
)

// Commands меню команд, которое видят пользователи
var Commands = []TgClient.BotCommand{
	{Command: "start", Description: "Start the bot"},
	{Command: "help", Description: "Show available commands"},
	{Command: "add", Description: "Add a birthday (interactive)"},
	{Command: "add_birthday", Description: "Quick add: Name YYYY-MM-DD [category]"},
	{Command: "my_birthdays", Description: "View your birthdays"},
	{Command: "categories", Description: "View birthdays by category"},
	{Command: "birthdays_month", Description: "Birthdays in a month: MM"},
	{Command: "update_birthday", Description: "Update a birthday"},
	{Command: "delete_birthday", Description: "Delete a birthday"},
	{Command: "restore_birthday", Description: "Restore a deleted birthday"},
	{Command: "my_stats", Description: "Your statistics"},
	{Command: "set_timezone", Description: "Set your timezone: Area/City"},
	{Command: "cancel", Description: "Cancel the current dialog"},
}

// Configure регистрирует меню команд и выбирает режим получения обновлений.
// Пустой webhookURL снимает webhook, иначе long polling получит 409.
func (s *Service) Configure(ctx context.Context, webhookURL, secret string) error {
	if err := s.Client.SetMyCommands(ctx, Commands); err != nil {
		// меню не критично для работы бота
		s.Log.Warn("failed to set bot commands", "error", err)
	}

	if webhookURL == "" {
		if err := s.Client.DeleteWebhook(ctx); err != nil {
			return fmt.Errorf("failed to delete webhook: %w", err)
		}
		s.Log.Info("webhook removed, using long polling")
		return nil
	}

	if err := s.Client.SetWebhook(ctx, webhookURL, secret); err != nil {
		return fmt.Errorf("failed to set webhook: %w", err)
	}
	s.Log.Info("webhook registered", "url", webhookURL)
	return nil
}
