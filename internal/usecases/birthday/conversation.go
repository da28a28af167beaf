package birthday

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/admin/tg-bots/birthday-bot/internal/domain"
	"github.com/admin/tg-bots/birthday-bot/internal/ports/cache"
)

func conversationKey(user *domain.User) string {
	return fmt.Sprintf("conv:%d:%d", user.ReplyChatID(), user.ID)
}

// loadConversation состояние диалога; отсутствие или истёкший TTL - StateIdle
func (s *Service) loadConversation(ctx context.Context, user *domain.User) (*domain.Conversation, error) {
	raw, err := s.Cache.Get(ctx, conversationKey(user))
	if err != nil {
		if errors.Is(err, cache.ErrMiss) {
			return &domain.Conversation{State: domain.StateIdle}, nil
		}
		return nil, fmt.Errorf("failed to load conversation: %w", err)
	}

	var conv domain.Conversation
	if err := json.Unmarshal([]byte(raw), &conv); err != nil {
		s.Log.Warn("corrupted conversation state, resetting", "error", err, "user_id", user.ID)
		_ = s.Cache.Delete(ctx, conversationKey(user))
		return &domain.Conversation{State: domain.StateIdle}, nil
	}
	return &conv, nil
}

func (s *Service) saveConversation(ctx context.Context, user *domain.User, conv *domain.Conversation) error {
	if conv.State == domain.StateIdle {
		return s.clearConversation(ctx, user)
	}

	data, err := json.Marshal(conv)
	if err != nil {
		return fmt.Errorf("failed to marshal conversation: %w", err)
	}
	if err := s.Cache.Set(ctx, conversationKey(user), string(data), conversationTTL); err != nil {
		return fmt.Errorf("failed to save conversation: %w", err)
	}
	return nil
}

func (s *Service) clearConversation(ctx context.Context, user *domain.User) error {
	if err := s.Cache.Delete(ctx, conversationKey(user)); err != nil {
		return fmt.Errorf("failed to clear conversation: %w", err)
	}
	return nil
}
