package notification

import (
	"context"

	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/user"
)

// Service defines the notification service interface
type Service interface {
	// Queue notification (async processing via background workers)
	QueueNotification(ctx context.Context, req CreateNotificationRequest) error

	GetNotifications(ctx context.Context, principal user.Principal, req ListNotificationsRequest) (NotificationListResponse, error)
	MarkAsRead(ctx context.Context, principal user.Principal, notificationID string) error
	MarkAllAsRead(ctx context.Context, principal user.Principal) (int64, error)

	// SSE subscription
	Subscribe(ctx context.Context, userID string) (<-chan SSEEvent, func())

	// Lifecycle
	Stop()
}
