package domain

import "time"

// ActivityAction is the stable tag vocabulary of the audit ledger.
type ActivityAction string

const (
	ActionTicketCreated  ActivityAction = "ticket_created"
	ActionTicketUpdated  ActivityAction = "ticket_updated"
	ActionTicketAssigned ActivityAction = "ticket_assigned"
	ActionStatusChanged  ActivityAction = "status_changed"
	ActionCommentAdded   ActivityAction = "comment_added"
	ActionUserLogin      ActivityAction = "user_login"
	ActionUserLogout     ActivityAction = "user_logout"
)

// ActivityLogEntry is an immutable audit record. Entries are append-only and
// never updated or deleted.
type ActivityLogEntry struct {
	ID          int64
	UserID      int64
	Action      ActivityAction
	Description string
	TicketID    *int64
	IPAddress   *string
	CreatedAt   time.Time
}
