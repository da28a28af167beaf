package alerter

import (
	"context"

	"github.com/admin/tg-bots/birthday-bot/internal/ports/service"
)

type sender interface {
	SendAlert(ctx context.Context, message string) error
}

// Service реализует IAlerterService
type Service struct {
	client sender
}

// New nil-клиент (алерты выключены) даёт nil-сервис: планировщик тогда только логирует сбои
func New(client sender) service.IAlerterService {
	if client == nil {
		return nil
	}
	return &Service{client: client}
}

func (s *Service) SendAlert(ctx context.Context, message string) error {
	return s.client.SendAlert(ctx, message)
}
