package birthday

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/admin/tg-bots/birthday-bot/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSendTodayReminders_PhotoAndDedup(t *testing.T) {
	svc, _, tg := newTestService(t)
	ctx := context.Background()
	mustUser(t, svc, 1)
	mustUser(t, svc, 2)

	res := svc.AddBirthday(ctx, 1, "Alice", "1990-09-27", "friend", strPtr("https://i.imgur.com/alice.jpg"), nil)
	require.True(t, res.Success)
	mustAdd(t, svc, 2, "Bob", "1985-12-31", "work")

	report, err := svc.SendTodayReminders(ctx, testNow)
	require.NoError(t, err)
	assert.Equal(t, domain.DeliveryReport{Users: 2, Sent: 1}, report)

	require.Len(t, tg.photos, 1)
	assert.Equal(t, int64(1), tg.photos[0].ChatID)
	assert.Contains(t, tg.photos[0].Text, "Today is <b>Alice</b>'s birthday!")
	assert.Contains(t, tg.photos[0].Text, "turning <b>34 years old</b>")
	assert.Empty(t, tg.messages)

	// повторный запуск в тот же день ничего не отправляет
	report, err = svc.SendTodayReminders(ctx, testNow.Add(2*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, domain.DeliveryReport{Users: 2, Skipped: 1}, report)
	assert.Len(t, tg.photos, 1)
}

func TestSendTodayReminders_PhotoFallsBackToText(t *testing.T) {
	svc, _, tg := newTestService(t)
	ctx := context.Background()
	mustUser(t, svc, 1)
	res := svc.AddBirthday(ctx, 1, "Alice", "1990-09-27", "friend", strPtr("https://i.imgur.com/alice.jpg"), nil)
	require.True(t, res.Success)

	tg.photoErr = errors.New("wrong file identifier/HTTP URL specified")

	report, err := svc.SendTodayReminders(ctx, testNow)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Sent)
	assert.Contains(t, tg.lastMessage(t).Text, "View Photo")
}

func TestSendTodayReminders_MultipleInOneMessage(t *testing.T) {
	svc, _, tg := newTestService(t)
	ctx := context.Background()
	mustUser(t, svc, 1)
	mustAdd(t, svc, 1, "Alice", "1990-09-27", "friend")
	mustAdd(t, svc, 1, "Carol", "2000-09-27", "family")

	report, err := svc.SendTodayReminders(ctx, testNow)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Sent)

	require.Len(t, tg.messages, 1)
	text := tg.messages[0].Text
	assert.Contains(t, text, "<b>Alice</b> (turning 34)")
	assert.Contains(t, text, "<b>Carol</b> (turning 24)")
}

func TestSendTodayReminders_DeliveryFailureReleasesDedup(t *testing.T) {
	svc, _, tg := newTestService(t)
	ctx := context.Background()
	mustUser(t, svc, 1)
	mustUser(t, svc, 2)
	mustAdd(t, svc, 1, "Alice", "1990-09-27", "friend")
	mustAdd(t, svc, 2, "Carol", "2000-09-27", "family")

	tg.failChats = map[int64]bool{1: true}
	report, err := svc.SendTodayReminders(ctx, testNow)
	require.NoError(t, err)
	assert.Equal(t, domain.DeliveryReport{Users: 2, Sent: 1, Failed: 1}, report)

	tg.failChats = nil
	report, err = svc.SendTodayReminders(ctx, testNow)
	require.NoError(t, err)
	assert.Equal(t, domain.DeliveryReport{Users: 2, Sent: 1, Skipped: 1}, report)
	assert.Equal(t, int64(1), tg.lastMessage(t).ChatID)
}

func TestSendUpcomingReminders(t *testing.T) {
	svc, _, tg := newTestService(t)
	ctx := context.Background()
	mustUser(t, svc, 1)
	mustAdd(t, svc, 1, "Alice", "1990-09-27", "friend")
	mustAdd(t, svc, 1, "Dan", "1990-09-28", "work")
	mustAdd(t, svc, 1, "Eve", "1994-09-30", "love")
	mustAdd(t, svc, 1, "Far", "1994-10-01", "love")

	report, err := svc.SendUpcomingReminders(ctx, testNow)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Sent)

	text := tg.lastMessage(t).Text
	assert.Contains(t, text, "<b>Dan</b> tomorrow (turning 34)")
	assert.Contains(t, text, "<b>Eve</b> in 3 days (turning 30)")
	assert.NotContains(t, text, "Alice")
	assert.NotContains(t, text, "Far")
}

func TestSendReminders_UsesPublisher(t *testing.T) {
	svc, _, tg := newTestService(t)
	ctx := context.Background()
	mustUser(t, svc, 1)
	mustAdd(t, svc, 1, "Alice", "1990-09-27", "friend")

	pub := &fakePublisher{err: errors.New("kafka: broker not available")}
	svc.Publisher = pub

	report, err := svc.SendTodayReminders(ctx, testNow)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Failed)

	pub.err = nil
	report, err = svc.SendTodayReminders(ctx, testNow)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Sent)

	require.Len(t, pub.events, 1)
	event := pub.events[0]
	assert.Equal(t, domain.ReminderKindToday, event.Kind)
	assert.Equal(t, int64(1), event.ChatID)
	assert.Equal(t, "2024-09-27", event.LocalDate)
	require.Len(t, event.Items, 1)
	assert.Equal(t, 34, event.Items[0].Age)
	assert.Empty(t, tg.messages)

	// consumer доставляет то же событие
	require.NoError(t, svc.DeliverReminder(ctx, event))
	assert.Contains(t, tg.lastMessage(t).Text, "Alice")
}

func TestSendTodayReminders_UsesLocalDate(t *testing.T) {
	svc, _, tg := newTestService(t)
	ctx := context.Background()
	mustUser(t, svc, 1)
	require.True(t, svc.SetTimezone(ctx, 1, "Asia/Tokyo").Success)
	mustAdd(t, svc, 1, "Night", "1990-09-28", "friend")

	// 2024-09-27 20:00 UTC - в Токио уже 28 сентября
	report, err := svc.SendTodayReminders(ctx, time.Date(2024, 9, 27, 20, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, 1, report.Sent)
	assert.Contains(t, tg.lastMessage(t).Text, "Night")
}

func TestDeliverReminder_Invalid(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	err := svc.DeliverReminder(ctx, &domain.ReminderEvent{Kind: domain.ReminderKindToday, ChatID: 1})
	assert.True(t, domain.IsBusinessError(err))
	assert.ErrorIs(t, err, domain.ErrValidation)

	err = svc.DeliverReminder(ctx, &domain.ReminderEvent{
		Kind:  "weekly",
		Items: []domain.ReminderItem{{Name: "Alice"}},
	})
	assert.True(t, domain.IsBusinessError(err))
}
