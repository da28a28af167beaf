package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/admin/tg-bots/birthday-bot/internal/domain"
)

// ReminderDeliverer доставляет одно событие напоминания
type ReminderDeliverer interface {
	DeliverReminder(ctx context.Context, event *domain.ReminderEvent) error
}

// ReminderHandler обработчик топика reminders
type ReminderHandler struct {
	deliverer ReminderDeliverer
	log       *slog.Logger
}

func NewReminderHandler(deliverer ReminderDeliverer, log *slog.Logger) *ReminderHandler {
	return &ReminderHandler{
		deliverer: deliverer,
		log:       log,
	}
}

// HandleMessage битые сообщения возвращаются как бизнес-ошибка, чтобы consumer их пропустил
func (h *ReminderHandler) HandleMessage(ctx context.Context, key string, value []byte) error {
	var event domain.ReminderEvent
	if err := json.Unmarshal(value, &event); err != nil {
		h.log.Error("invalid reminder event payload", "error", err, "key", key)
		return domain.WrapBusinessError(fmt.Errorf("invalid reminder event: %w", err))
	}

	if !event.Kind.IsValid() || event.UserID == 0 {
		h.log.Error("invalid reminder event", "key", key, "kind", event.Kind, "user_id", event.UserID)
		return domain.WrapBusinessError(fmt.Errorf("invalid reminder event kind %q", event.Kind))
	}

	if err := h.deliverer.DeliverReminder(ctx, &event); err != nil {
		return fmt.Errorf("failed to deliver reminder %s: %w", event.ID, err)
	}

	h.log.Debug("reminder event handled", "event_id", event.ID, "user_id", event.UserID, "kind", event.Kind)
	return nil
}
