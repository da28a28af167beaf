package kafka

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/IBM/sarama"

	kafkaAdapter "github.com/admin/tg-bots/birthday-bot/internal/adapters/secondary/kafka"
	"github.com/admin/tg-bots/birthday-bot/internal/domain"
	kafkaPorts "github.com/admin/tg-bots/birthday-bot/internal/ports/kafka"
)

const (
	defaultRetries    = 3
	defaultRetryDelay = 2 * time.Second
)

// Consumer читает топик через consumer group
type Consumer struct {
	consumer sarama.ConsumerGroup
	cfg      *kafkaAdapter.Config
	handler  kafkaPorts.MessageHandler
	log      *slog.Logger
}

// NewConsumer создаёт новый Kafka consumer
func NewConsumer(cfg *kafkaAdapter.Config, handler kafkaPorts.MessageHandler, log *slog.Logger) (*Consumer, error) {
	config := sarama.NewConfig()
	config.Consumer.Group.Rebalance.GroupStrategies = []sarama.BalanceStrategy{sarama.NewBalanceStrategyRoundRobin()}
	config.Consumer.Offsets.Initial = sarama.OffsetOldest
	cfg.ApplySecurity(config)

	consumer, err := sarama.NewConsumerGroup(cfg.GetBrokers(), cfg.ConsumerGroup, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka consumer: %w", err)
	}

	log.Info("kafka consumer created",
		"brokers", cfg.Brokers,
		"topic", cfg.Topic,
		"consumer_group", cfg.ConsumerGroup,
	)

	return &Consumer{
		consumer: consumer,
		cfg:      cfg,
		handler:  handler,
		log:      log,
	}, nil
}

// Start блокируется до отмены ctx; Consume перезапускается после каждого ребаланса
func (c *Consumer) Start(ctx context.Context) error {
	handler := &consumerGroupHandler{
		handler:    c.handler,
		log:        c.log,
		topic:      c.cfg.Topic,
		retries:    defaultRetries,
		retryDelay: defaultRetryDelay,
	}

	for {
		if err := c.consumer.Consume(ctx, []string{c.cfg.Topic}, handler); err != nil {
			if errors.Is(err, sarama.ErrClosedConsumerGroup) {
				return nil
			}
			c.log.Error("error from consumer", "error", err, "topic", c.cfg.Topic)
			return fmt.Errorf("consumer error: %w", err)
		}

		if ctx.Err() != nil {
			c.log.Info("kafka consumer stopping", "topic", c.cfg.Topic)
			return nil
		}
	}
}

// Close закрывает consumer
func (c *Consumer) Close() error {
	if err := c.consumer.Close(); err != nil {
		return fmt.Errorf("failed to close kafka consumer: %w", err)
	}
	c.log.Info("kafka consumer closed", "topic", c.cfg.Topic)
	return nil
}

// consumerGroupHandler реализует sarama.ConsumerGroupHandler
type consumerGroupHandler struct {
	handler    kafkaPorts.MessageHandler
	log        *slog.Logger
	topic      string
	retries    int
	retryDelay time.Duration
}

func (h *consumerGroupHandler) Setup(sarama.ConsumerGroupSession) error {
	h.log.Info("kafka consumer group session setup", "topic", h.topic)
	return nil
}

func (h *consumerGroupHandler) Cleanup(sarama.ConsumerGroupSession) error {
	h.log.Info("kafka consumer group session cleanup", "topic", h.topic)
	return nil
}

// ConsumeClaim каждое сообщение в итоге помечается: следующая отметка всё равно сдвинет offset дальше.
// Бизнес-ошибки не повторяются, технические - до retries раз с паузой retryDelay.
func (h *consumerGroupHandler) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for {
		select {
		case <-session.Context().Done():
			return nil
		case message, ok := <-claim.Messages():
			if !ok {
				return nil
			}
			if message == nil {
				continue
			}

			if err := h.handle(session.Context(), message); err != nil {
				if session.Context().Err() != nil {
					// сообщение не помечено и будет перечитано следующей сессией
					return nil
				}
				h.log.Error("kafka message dropped",
					"error", err,
					"topic", message.Topic,
					"key", string(message.Key),
					"partition", message.Partition,
					"offset", message.Offset,
				)
			}

			session.MarkMessage(message, "")
		}
	}
}

func (h *consumerGroupHandler) handle(ctx context.Context, message *sarama.ConsumerMessage) error {
	key := string(message.Key)

	var err error
	for attempt := 0; attempt <= h.retries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(h.retryDelay):
			}
			h.log.Warn("retrying kafka message", "attempt", attempt, "key", key, "offset", message.Offset)
		}

		err = h.handler.HandleMessage(ctx, key, message.Value)
		if err == nil || domain.IsBusinessError(err) {
			return nil
		}
	}
	return err
}
