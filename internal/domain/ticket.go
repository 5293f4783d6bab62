package domain

import "time"

// TicketStatus enumerates lifecycle states for tickets. The wire values keep
// the display strings of the legacy schema.
type TicketStatus string

const (
	TicketStatusOpen       TicketStatus = "Open"
	TicketStatusInProgress TicketStatus = "In Progress"
	TicketStatusResolved   TicketStatus = "Resolved"
	TicketStatusClosed     TicketStatus = "Closed"
)

// ValidStatus reports whether the status is one of the enumerated values.
func ValidStatus(s TicketStatus) bool {
	switch s {
	case TicketStatusOpen, TicketStatusInProgress, TicketStatusResolved, TicketStatusClosed:
		return true
	}
	return false
}

// Terminal reports whether the status freezes the SLA clock.
func (s TicketStatus) Terminal() bool {
	return s == TicketStatusResolved || s == TicketStatusClosed
}

// TicketPriority enumerates SLA urgency.
type TicketPriority string

const (
	TicketPriorityLow      TicketPriority = "Low"
	TicketPriorityMedium   TicketPriority = "Medium"
	TicketPriorityHigh     TicketPriority = "High"
	TicketPriorityCritical TicketPriority = "Critical"
)

// ValidPriority reports whether the priority is one of the enumerated values.
func ValidPriority(p TicketPriority) bool {
	switch p {
	case TicketPriorityLow, TicketPriorityMedium, TicketPriorityHigh, TicketPriorityCritical:
		return true
	}
	return false
}

// Ticket is the aggregate for a reported issue. CreatorID is immutable after
// creation; ResolvedAt/ClosedAt are set exactly once and never cleared, even
// when an admin reopens the ticket.
type Ticket struct {
	ID          int64
	Subject     string
	Description string
	Status      TicketStatus
	Priority    TicketPriority
	CategoryID  int64
	CreatorID   int64
	AssigneeID  *int64
	Attachment  *string
	DueAt       time.Time
	ResolvedAt  *time.Time
	ClosedAt    *time.Time
	Rating      *int
	Feedback    *string
	Resolution  *string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Overdue reports whether the ticket has blown its SLA deadline. The due
// date freezes once the ticket reaches a terminal status.
func (t *Ticket) Overdue(now time.Time) bool {
	if t.Status.Terminal() {
		return false
	}
	return now.After(t.DueAt)
}
