package dto

import (
	"time"

	"github.com/quickdesk/helpdesk/internal/domain"
)

// NotificationResponse is an inbox entry.
type NotificationResponse struct {
	ID        int64                   `json:"id"`
	TicketID  *int64                  `json:"ticket_id,omitempty"`
	Title     string                  `json:"title"`
	Message   string                  `json:"message"`
	Type      domain.NotificationType `json:"type"`
	IsRead    bool                    `json:"is_read"`
	CreatedAt time.Time               `json:"created_at"`
}

// NotificationFromDomain maps a notification to its response form.
func NotificationFromDomain(n *domain.Notification) NotificationResponse {
	return NotificationResponse{
		ID:        n.ID,
		TicketID:  n.TicketID,
		Title:     n.Title,
		Message:   n.Message,
		Type:      n.Type,
		IsRead:    n.IsRead,
		CreatedAt: n.CreatedAt,
	}
}

// ActivityEntryResponse is an audit ledger entry.
type ActivityEntryResponse struct {
	ID          int64                 `json:"id"`
	UserID      int64                 `json:"user_id"`
	Action      domain.ActivityAction `json:"action"`
	Description string                `json:"description"`
	TicketID    *int64                `json:"ticket_id,omitempty"`
	IPAddress   *string               `json:"ip_address,omitempty"`
	CreatedAt   time.Time             `json:"created_at"`
}

// ActivityFromDomain maps an audit entry to its response form.
func ActivityFromDomain(entry *domain.ActivityLogEntry) ActivityEntryResponse {
	return ActivityEntryResponse{
		ID:          entry.ID,
		UserID:      entry.UserID,
		Action:      entry.Action,
		Description: entry.Description,
		TicketID:    entry.TicketID,
		IPAddress:   entry.IPAddress,
		CreatedAt:   entry.CreatedAt,
	}
}

// CategoryResponse is a category row.
type CategoryResponse struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// CreateCategoryRequest adds a category (admin only).
type CreateCategoryRequest struct {
	Name string `json:"name" validate:"required,max=50"`
}
