package dto

import (
	"time"

	"github.com/quickdesk/helpdesk/internal/domain"
)

// CreateTicketRequest is the end-user ticket submission payload.
type CreateTicketRequest struct {
	Subject     string  `json:"subject" validate:"required,max=100"`
	Description string  `json:"description" validate:"required,max=5000"`
	CategoryID  int64   `json:"category_id" validate:"required,gt=0"`
	Priority    string  `json:"priority" validate:"omitempty,oneof=Low Medium High Critical"`
	Attachment  *string `json:"attachment,omitempty" validate:"omitempty,max=200"`
}

// AssignTicketRequest hands a ticket to an agent.
type AssignTicketRequest struct {
	AssigneeID int64  `json:"assignee_id" validate:"required,gt=0"`
	Note       string `json:"note" validate:"omitempty,max=2000"`
}

// ChangeStatusRequest moves a ticket through the transition table.
type ChangeStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// AddCommentRequest appends to the ticket thread.
type AddCommentRequest struct {
	Message    string `json:"message" validate:"required,max=5000"`
	IsInternal bool   `json:"is_internal"`
}

// RateTicketRequest records the owner's satisfaction.
type RateTicketRequest struct {
	Rating   int    `json:"rating" validate:"required"`
	Feedback string `json:"feedback" validate:"omitempty,max=2000"`
}

// TicketSummary is the list representation.
type TicketSummary struct {
	ID         int64                 `json:"id"`
	Subject    string                `json:"subject"`
	Status     domain.TicketStatus   `json:"status"`
	Priority   domain.TicketPriority `json:"priority"`
	CategoryID int64                 `json:"category_id"`
	CreatorID  int64                 `json:"creator_id"`
	AssigneeID *int64                `json:"assignee_id,omitempty"`
	DueAt      time.Time             `json:"due_at"`
	Overdue    bool                  `json:"overdue"`
	CreatedAt  time.Time             `json:"created_at"`
	UpdatedAt  time.Time             `json:"updated_at"`
}

// TicketDetailResponse is the single-ticket representation.
type TicketDetailResponse struct {
	ID          int64                 `json:"id"`
	Subject     string                `json:"subject"`
	Description string                `json:"description"`
	Status      domain.TicketStatus   `json:"status"`
	Priority    domain.TicketPriority `json:"priority"`
	CategoryID  int64                 `json:"category_id"`
	CreatorID   int64                 `json:"creator_id"`
	AssigneeID  *int64                `json:"assignee_id,omitempty"`
	Attachment  *string               `json:"attachment,omitempty"`
	DueAt       time.Time             `json:"due_at"`
	Overdue     bool                  `json:"overdue"`
	ResolvedAt  *time.Time            `json:"resolved_at,omitempty"`
	ClosedAt    *time.Time            `json:"closed_at,omitempty"`
	Rating      *int                  `json:"rating,omitempty"`
	Feedback    *string               `json:"feedback,omitempty"`
	Resolution  *string               `json:"resolution,omitempty"`
	CreatedAt   time.Time             `json:"created_at"`
	UpdatedAt   time.Time             `json:"updated_at"`
	Comments    []CommentResponse     `json:"comments"`
}

// CommentResponse is a single thread entry.
type CommentResponse struct {
	ID         int64     `json:"id"`
	AuthorID   int64     `json:"author_id"`
	Message    string    `json:"message"`
	IsInternal bool      `json:"is_internal"`
	CreatedAt  time.Time `json:"created_at"`
}

// DashboardResponse carries the status tiles.
type DashboardResponse struct {
	Total  int64                          `json:"total"`
	Counts map[domain.TicketStatus]int64  `json:"counts"`
}
