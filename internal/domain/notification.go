package domain

import "time"

// NotificationType enumerates why a notification was raised.
type NotificationType string

const (
	NotificationTicketCreated NotificationType = "ticket_created"
	NotificationAssignment    NotificationType = "assignment"
	NotificationTicketUpdate  NotificationType = "ticket_update"
	NotificationComment       NotificationType = "comment"
)

// Notification is a per-user inbox entry written by the lifecycle engine and
// pull-read by the recipient. IsRead flips false to true exactly once.
type Notification struct {
	ID        int64
	UserID    int64
	TicketID  *int64
	Title     string
	Message   string
	Type      NotificationType
	IsRead    bool
	CreatedAt time.Time
}
