package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	"github.com/admin/tg-bots/birthday-bot/internal/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestProducer_PublishReminder(t *testing.T) {
	sp := mocks.NewSyncProducer(t, nil)
	p := newProducer(sp, &Config{Topic: "birthday.reminders"}, testLogger())

	event := &domain.ReminderEvent{
		ID:        uuid.New(),
		Kind:      domain.ReminderKindToday,
		UserID:    42,
		ChatID:    42,
		LocalDate: "2024-09-27",
		Items:     []domain.ReminderItem{{Name: "Alice", BirthDate: "1990-09-27", Category: domain.CategoryFriend, Age: 34}},
		CreatedAt: time.Date(2024, 9, 27, 9, 0, 0, 0, time.UTC),
	}

	sp.ExpectSendMessageWithCheckerFunctionAndSucceed(func(val []byte) error {
		var got domain.ReminderEvent
		if err := json.Unmarshal(val, &got); err != nil {
			return err
		}
		if got.ID != event.ID || len(got.Items) != 1 || got.Items[0].Name != "Alice" {
			return errors.New("unexpected payload")
		}
		return nil
	})

	require.NoError(t, p.PublishReminder(context.Background(), event))
	require.NoError(t, p.Close())
}

func TestProducer_PublishReminderError(t *testing.T) {
	sp := mocks.NewSyncProducer(t, nil)
	p := newProducer(sp, &Config{Topic: "birthday.reminders"}, testLogger())

	sp.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)

	err := p.PublishReminder(context.Background(), &domain.ReminderEvent{ID: uuid.New(), UserID: 1})
	assert.ErrorIs(t, err, sarama.ErrOutOfBrokers)
	require.NoError(t, p.Close())
}

func TestConfig_Brokers(t *testing.T) {
	assert.Equal(t, []string{"localhost:9092"}, (&Config{}).GetBrokers())
	assert.Equal(t, []string{"a:9092", "b:9092"}, (&Config{Brokers: "a:9092, b:9092"}).GetBrokers())
}

func TestConfig_ApplySecurity(t *testing.T) {
	cfg := sarama.NewConfig()
	(&Config{SecurityProtocol: "SASL_SSL", SASLMechanism: "SCRAM-SHA-256", SASLUsername: "u"}).ApplySecurity(cfg)
	assert.True(t, cfg.Net.SASL.Enable)
	assert.True(t, cfg.Net.TLS.Enable)
	assert.Equal(t, sarama.SASLMechanism(sarama.SASLTypeSCRAMSHA256), cfg.Net.SASL.Mechanism)

	plain := sarama.NewConfig()
	(&Config{SecurityProtocol: "PLAINTEXT"}).ApplySecurity(plain)
	assert.False(t, plain.Net.SASL.Enable)
}

func TestKafkaConfigs_Find(t *testing.T) {
	reminders := &Config{Topic: "r"}
	kc := KafkaConfigs{List: []KafkaConfig{{Name: "other", Config: &Config{}}, {Name: TopicReminders, Config: reminders}}}

	assert.Same(t, reminders, kc.Find(TopicReminders))
	assert.Nil(t, kc.Find("missing"))
}
