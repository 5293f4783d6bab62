package domain

import "time"

// Comment captures the conversation on a ticket. Internal comments are
// visible to agents and admins only; end-user comments can never be internal.
// Comments are immutable once created and displayed oldest first.
type Comment struct {
	ID         int64
	TicketID   int64
	AuthorID   int64
	Message    string
	IsInternal bool
	CreatedAt  time.Time
}
