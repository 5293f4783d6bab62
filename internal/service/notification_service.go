package service

import (
	"context"

	"github.com/quickdesk/helpdesk/internal/cache"
	"github.com/quickdesk/helpdesk/internal/domain"
	"github.com/quickdesk/helpdesk/internal/repository"
	apperrors "github.com/quickdesk/helpdesk/pkg/util"
)

// NotificationService is the read/mark side of the per-user inbox. Writes
// only ever happen inside the lifecycle engine's transactions.
type NotificationService struct {
	store  repository.Store
	unread *cache.UnreadCounter
}

// NewNotificationService constructs the service.
func NewNotificationService(store repository.Store, unread *cache.UnreadCounter) *NotificationService {
	return &NotificationService{store: store, unread: unread}
}

// UnreadFor returns the user's unread notifications, newest first.
func (s *NotificationService) UnreadFor(ctx context.Context, userID int64) ([]domain.Notification, error) {
	notifications, err := s.store.Notifications().ListUnread(ctx, userID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return notifications, nil
}

// UnreadCount returns the badge count, via Redis when warm.
func (s *NotificationService) UnreadCount(ctx context.Context, userID int64) (int64, error) {
	if count, ok := s.unread.Get(ctx, userID); ok {
		return count, nil
	}
	count, err := s.store.Notifications().CountUnread(ctx, userID)
	if err != nil {
		return 0, apperrors.MapError(err)
	}
	s.unread.Set(ctx, userID, count)
	return count, nil
}

// MarkRead flips one notification to read. Idempotent: already-read or
// missing ids are a no-op.
func (s *NotificationService) MarkRead(ctx context.Context, userID, notificationID int64) error {
	if err := s.store.Notifications().MarkRead(ctx, notificationID); err != nil {
		return apperrors.MapError(err)
	}
	s.unread.Reset(ctx, userID)
	return nil
}

// MarkAllRead flips every unread notification of the user. Idempotent.
func (s *NotificationService) MarkAllRead(ctx context.Context, userID int64) error {
	if _, err := s.store.Notifications().MarkAllRead(ctx, userID); err != nil {
		return apperrors.MapError(err)
	}
	s.unread.Reset(ctx, userID)
	return nil
}
