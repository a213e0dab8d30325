package memory

import (
	"context"
	"sort"
	"time"

	"github.com/cmlabs-hris/hrms-backend-go/internal/domain/notification"
)

type notificationRepository struct {
	s *Store
}

func (r *notificationRepository) Create(ctx context.Context, n *notification.Notification) error {
	return r.CreateBatch(ctx, []*notification.Notification{n})
}

func (r *notificationRepository) CreateBatch(ctx context.Context, notifications []*notification.Notification) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, n := range notifications {
		if n.ID == "" {
			n.ID = newID()
		}
		r.s.notifications[n.ID] = *n
	}
	return nil
}

func (r *notificationRepository) GetByUserID(ctx context.Context, userID string, page, pageSize int, unreadOnly bool) ([]*notification.Notification, int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var matched []*notification.Notification
	for _, n := range r.s.notifications {
		if n.RecipientID != userID || (unreadOnly && n.IsRead) {
			continue
		}
		n := n
		matched = append(matched, &n)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].CreatedAt.After(matched[j].CreatedAt) })

	total := len(matched)
	start := (page - 1) * pageSize
	if start > total {
		start = total
	}
	end := start + pageSize
	if end > total {
		end = total
	}
	return matched[start:end], total, nil
}

func (r *notificationRepository) GetUnreadCount(ctx context.Context, userID string) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	count := 0
	for _, n := range r.s.notifications {
		if n.RecipientID == userID && !n.IsRead {
			count++
		}
	}
	return count, nil
}

func (r *notificationRepository) MarkAsRead(ctx context.Context, id string, userID string, at time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	n, ok := r.s.notifications[id]
	if !ok || n.RecipientID != userID {
		return notification.ErrNotificationNotFound
	}
	if n.ReadAt == nil {
		n.ReadAt = &at
	}
	n.IsRead = true
	r.s.notifications[id] = n
	return nil
}

func (r *notificationRepository) MarkAllAsRead(ctx context.Context, userID string, at time.Time) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var updated int64
	for id, n := range r.s.notifications {
		if n.RecipientID != userID || n.IsRead {
			continue
		}
		readAt := at
		n.IsRead, n.ReadAt = true, &readAt
		r.s.notifications[id] = n
		updated++
	}
	return updated, nil
}
