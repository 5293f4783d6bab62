package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quickdesk/helpdesk/internal/domain"
)

func seedNotifications(store *fakeStore, userID int64, n int) []int64 {
	ids := make([]int64, 0, n)
	for i := 0; i < n; i++ {
		store.nextNotificationID++
		store.notifications = append(store.notifications, domain.Notification{
			ID:      store.nextNotificationID,
			UserID:  userID,
			Title:   "Ticket Updated",
			Message: "status moved",
			Type:    domain.NotificationTicketUpdate,
		})
		ids = append(ids, store.nextNotificationID)
	}
	return ids
}

func TestUnreadCountFallsBackToStore(t *testing.T) {
	store := newFakeStore()
	user := store.addUser(domain.User{Username: "dana", Email: "dana@example.com", Role: domain.RoleEndUser, IsActive: true})
	seedNotifications(store, user.ID, 3)
	svc := NewNotificationService(store, nil)

	count, err := svc.UnreadCount(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)
}

func TestMarkReadIsIdempotent(t *testing.T) {
	store := newFakeStore()
	user := store.addUser(domain.User{Username: "dana", Email: "dana@example.com", Role: domain.RoleEndUser, IsActive: true})
	ids := seedNotifications(store, user.ID, 2)
	svc := NewNotificationService(store, nil)

	require.NoError(t, svc.MarkRead(context.Background(), user.ID, ids[0]))
	require.NoError(t, svc.MarkRead(context.Background(), user.ID, ids[0]))
	// unknown ids are a no-op as well
	require.NoError(t, svc.MarkRead(context.Background(), user.ID, 999))

	count, err := svc.UnreadCount(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestMarkAllRead(t *testing.T) {
	store := newFakeStore()
	user := store.addUser(domain.User{Username: "dana", Email: "dana@example.com", Role: domain.RoleEndUser, IsActive: true})
	other := store.addUser(domain.User{Username: "amir", Email: "amir@example.com", Role: domain.RoleAgent, IsActive: true})
	seedNotifications(store, user.ID, 3)
	seedNotifications(store, other.ID, 1)
	svc := NewNotificationService(store, nil)

	require.NoError(t, svc.MarkAllRead(context.Background(), user.ID))
	require.NoError(t, svc.MarkAllRead(context.Background(), user.ID))

	mine, err := svc.UnreadFor(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Empty(t, mine)

	theirs, err := svc.UnreadFor(context.Background(), other.ID)
	require.NoError(t, err)
	assert.Len(t, theirs, 1)
}
