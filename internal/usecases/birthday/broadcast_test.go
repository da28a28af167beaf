package birthday

import (
	"context"
	"testing"

	"github.com/admin/tg-bots/birthday-bot/internal/domain"
	"github.com/admin/tg-bots/birthday-bot/internal/usecases/birthday/texts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBroadcast(t *testing.T) {
	svc, _, tg := newTestService(t)
	ctx := context.Background()
	for _, id := range []int64{1, 2, 3} {
		mustUser(t, svc, id)
	}
	tg.failChats = map[int64]bool{2: true}

	report, err := svc.Broadcast(ctx, "Server <maintenance> tonight")
	require.NoError(t, err)
	assert.Equal(t, domain.DeliveryReport{Users: 3, Sent: 2, Failed: 1}, report)
	assert.Contains(t, tg.lastMessage(t).Text, "Server &lt;maintenance&gt; tonight")
}

func TestBroadcastCommand(t *testing.T) {
	svc, _, tg := newTestService(t)
	ctx := context.Background()
	mustUser(t, svc, 1)
	admin := mustUser(t, svc, adminID)

	require.NoError(t, svc.HandleCommand(ctx, admin, "broadcast", "  "))
	assert.Equal(t, texts.AdminBroadcastUsage, tg.lastMessage(t).Text)

	require.NoError(t, svc.HandleCommand(ctx, admin, "broadcast", "hello all"))
	assert.Equal(t, texts.FormatBroadcastDone(domain.DeliveryReport{Users: 2, Sent: 2}), tg.lastMessage(t).Text)
}

func TestComputeStats_Errors(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.ComputeUserStats(ctx, 404)
	assert.ErrorIs(t, err, domain.ErrUserNotFound)

	_, err = svc.ComputeSystemAnalytics(ctx)
	assert.ErrorIs(t, err, domain.ErrNoData)

	mustAdd(t, svc, 1, "Alice", "1990-09-27", "friend")
	stats, err := svc.ComputeUserStats(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.TotalBirthdays)
	require.NotNil(t, stats.NextBirthday)
	assert.Equal(t, 0, stats.NextBirthday.DaysUntil)
}
