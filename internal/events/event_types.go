package events

import (
	"time"

	"github.com/quickdesk/helpdesk/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketCreated  EventType = "ticket_created"
	EventTicketAssigned EventType = "ticket_assigned"
	EventStatusChanged  EventType = "status_changed"
	EventCommentAdded   EventType = "comment_added"
)

// Event represents a domain event emitted by the lifecycle engine after its
// transaction commits. Handlers run best-effort; nothing they do can unwind
// the committed state.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	TicketID  int64       `json:"ticket_id"`
	ActorID   int64       `json:"actor_id"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// TicketCreatedPayload payload.
type TicketCreatedPayload struct {
	Subject       string                `json:"subject"`
	Description   string                `json:"description"`
	Priority      domain.TicketPriority `json:"priority"`
	CategoryName  string                `json:"category_name"`
	CreatorName   string                `json:"creator_name"`
	CreatorEmail  string                `json:"creator_email"`
	AdminEmails   []string              `json:"admin_emails,omitempty"`
	AdminNames    []string              `json:"admin_names,omitempty"`
}

// TicketAssignedPayload payload.
type TicketAssignedPayload struct {
	Subject       string `json:"subject"`
	AssigneeID    int64  `json:"assignee_id"`
	AssigneeName  string `json:"assignee_name"`
	AssigneeEmail string `json:"assignee_email"`
}

// StatusChangedPayload payload.
type StatusChangedPayload struct {
	Subject    string              `json:"subject"`
	OldStatus  domain.TicketStatus `json:"old_status"`
	NewStatus  domain.TicketStatus `json:"new_status"`
	OwnerName  string              `json:"owner_name"`
	OwnerEmail string              `json:"owner_email"`
}

// CommentAddedPayload payload.
type CommentAddedPayload struct {
	CommentID  int64 `json:"comment_id"`
	IsInternal bool  `json:"is_internal"`
}
