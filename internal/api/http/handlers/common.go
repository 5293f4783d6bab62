package handlers

import (
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/quickdesk/helpdesk/internal/api/dto"
	"github.com/quickdesk/helpdesk/internal/domain"
	apperrors "github.com/quickdesk/helpdesk/pkg/util"
)

func parseID(c *fiber.Ctx, name string) (int64, error) {
	raw := c.Params(name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, apperrors.NewValidationError("invalid "+name, nil)
	}
	return id, nil
}

func parseRole(raw string) domain.Role {
	return domain.Role(strings.TrimSpace(strings.ToLower(raw)))
}

func parseInt(val string, def int) int {
	if val == "" {
		return def
	}
	parsed, err := strconv.Atoi(val)
	if err != nil || parsed <= 0 {
		return def
	}
	return parsed
}

func ticketSummary(ticket *domain.Ticket, now time.Time) dto.TicketSummary {
	return dto.TicketSummary{
		ID:         ticket.ID,
		Subject:    ticket.Subject,
		Status:     ticket.Status,
		Priority:   ticket.Priority,
		CategoryID: ticket.CategoryID,
		CreatorID:  ticket.CreatorID,
		AssigneeID: ticket.AssigneeID,
		DueAt:      ticket.DueAt,
		Overdue:    ticket.Overdue(now),
		CreatedAt:  ticket.CreatedAt,
		UpdatedAt:  ticket.UpdatedAt,
	}
}

func ticketDetail(ticket *domain.Ticket, comments []domain.Comment, now time.Time) dto.TicketDetailResponse {
	thread := make([]dto.CommentResponse, 0, len(comments))
	for i := range comments {
		thread = append(thread, commentResponse(&comments[i]))
	}
	return dto.TicketDetailResponse{
		ID:          ticket.ID,
		Subject:     ticket.Subject,
		Description: ticket.Description,
		Status:      ticket.Status,
		Priority:    ticket.Priority,
		CategoryID:  ticket.CategoryID,
		CreatorID:   ticket.CreatorID,
		AssigneeID:  ticket.AssigneeID,
		Attachment:  ticket.Attachment,
		DueAt:       ticket.DueAt,
		Overdue:     ticket.Overdue(now),
		ResolvedAt:  ticket.ResolvedAt,
		ClosedAt:    ticket.ClosedAt,
		Rating:      ticket.Rating,
		Feedback:    ticket.Feedback,
		Resolution:  ticket.Resolution,
		CreatedAt:   ticket.CreatedAt,
		UpdatedAt:   ticket.UpdatedAt,
		Comments:    thread,
	}
}

func commentResponse(comment *domain.Comment) dto.CommentResponse {
	return dto.CommentResponse{
		ID:         comment.ID,
		AuthorID:   comment.AuthorID,
		Message:    comment.Message,
		IsInternal: comment.IsInternal,
		CreatedAt:  comment.CreatedAt,
	}
}
