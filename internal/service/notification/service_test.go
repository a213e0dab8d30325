package notification

import (
	"context"
	"testing"
	"time"

	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/notification"
	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/hrms-backend-go/internal/pkg/clock"
	"github.com/cmlabs-hris/hrms-backend-go/internal/pkg/sse"
	"github.com/cmlabs-hris/hrms-backend-go/internal/repository/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var recipient = user.Principal{UserID: "user-1", EmployeeID: "emp-1", Role: user.RoleEmployee}

func leaveApproved() notification.CreateNotificationRequest {
	return notification.CreateNotificationRequest{
		RecipientID: recipient.UserID,
		Type:        notification.TypeLeaveApproved,
		Title:       "Leave approved",
		Message:     "Your paid leave from 2026-01-10 to 2026-01-12 was approved",
		Data:        map[string]interface{}{"leave_request_id": "lr-1"},
	}
}

func TestQueueNotification_StopFlushes(t *testing.T) {
	repo := memory.NewStore().Notifications()
	clk := &clock.Fixed{T: time.Date(2026, 1, 9, 9, 0, 0, 0, time.UTC)}
	svc := NewNotificationService(repo, sse.NewHub(), clk, Config{FlushInterval: time.Hour, WorkerCount: 1})

	require.NoError(t, svc.QueueNotification(context.Background(), leaveApproved()))
	svc.Stop()
	svc.Stop()

	list, err := svc.GetNotifications(context.Background(), recipient, notification.ListNotificationsRequest{})
	require.NoError(t, err)
	require.Len(t, list.Notifications, 1)
	assert.Equal(t, 1, list.Total)
	assert.Equal(t, 1, list.UnreadCount)
	assert.Equal(t, 1, list.Page)
	assert.Equal(t, 20, list.PageSize)
	assert.Equal(t, notification.TypeLeaveApproved, list.Notifications[0].Type)
	assert.Equal(t, clk.T, list.Notifications[0].CreatedAt)
}

func TestQueueNotification_PublishesToSubscribers(t *testing.T) {
	repo := memory.NewStore().Notifications()
	hub := sse.NewHub()
	svc := NewNotificationService(repo, hub, clock.System(), Config{BatchSize: 1, WorkerCount: 1})
	defer svc.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	events, cleanup := svc.Subscribe(ctx, recipient.UserID)
	defer cleanup()

	require.NoError(t, svc.QueueNotification(ctx, leaveApproved()))

	select {
	case ev := <-events:
		assert.Equal(t, "notification", ev.Event)
		assert.Equal(t, "Leave approved", ev.Data.Title)
		assert.False(t, ev.Data.IsRead)
	case <-time.After(2 * time.Second):
		t.Fatal("no event delivered")
	}
}

func TestQueueNotification_FullQueueInsertsDirectly(t *testing.T) {
	repo := memory.NewStore().Notifications()
	s := &service{
		repo:   repo,
		hub:    sse.NewHub(),
		clock:  clock.System(),
		queue:  make(chan notification.CreateNotificationRequest),
		stopCh: make(chan struct{}),
	}

	require.NoError(t, s.QueueNotification(context.Background(), leaveApproved()))

	count, err := repo.GetUnreadCount(context.Background(), recipient.UserID)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestMarkAsRead(t *testing.T) {
	repo := memory.NewStore().Notifications()
	clk := &clock.Fixed{T: time.Date(2026, 1, 9, 9, 0, 0, 0, time.UTC)}
	svc := NewNotificationService(repo, sse.NewHub(), clk, Config{WorkerCount: 1})

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		require.NoError(t, svc.QueueNotification(ctx, leaveApproved()))
	}
	svc.Stop()

	list, err := svc.GetNotifications(ctx, recipient, notification.ListNotificationsRequest{})
	require.NoError(t, err)
	require.Len(t, list.Notifications, 3)

	other := user.Principal{UserID: "user-2"}
	err = svc.MarkAsRead(ctx, other, list.Notifications[0].ID)
	assert.ErrorIs(t, err, notification.ErrNotificationNotFound)

	require.NoError(t, svc.MarkAsRead(ctx, recipient, list.Notifications[0].ID))

	unread, err := svc.GetNotifications(ctx, recipient, notification.ListNotificationsRequest{UnreadOnly: true})
	require.NoError(t, err)
	assert.Equal(t, 2, unread.Total)
	assert.Equal(t, 2, unread.UnreadCount)

	updated, err := svc.MarkAllAsRead(ctx, recipient)
	require.NoError(t, err)
	assert.Equal(t, int64(2), updated)

	again, err := svc.MarkAllAsRead(ctx, recipient)
	require.NoError(t, err)
	assert.Zero(t, again)
}
