package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/quickdesk/helpdesk/internal/cache"
	"github.com/quickdesk/helpdesk/internal/domain"
	"github.com/quickdesk/helpdesk/internal/events"
	"github.com/quickdesk/helpdesk/internal/repository"
	"github.com/quickdesk/helpdesk/internal/sla"
	apperrors "github.com/quickdesk/helpdesk/pkg/util"
)

// LifecycleService owns ticket state. Every mutating operation commits the
// ticket change, its audit entry and its notifications in one transaction; a
// failed audit write vetoes the whole operation. Email goes out through the
// event dispatcher only after the commit and can never unwind it.
type LifecycleService struct {
	store      repository.Store
	policy     sla.Policy
	dispatcher events.Dispatcher
	dashboard  *cache.DashboardCache
	unread     *cache.UnreadCounter
	logger     *zap.Logger
	clock      func() time.Time
}

// LifecycleDependencies bundles collaborators for the lifecycle engine.
type LifecycleDependencies struct {
	Store      repository.Store
	Policy     sla.Policy
	Dispatcher events.Dispatcher
	Dashboard  *cache.DashboardCache
	Unread     *cache.UnreadCounter
	Logger     *zap.Logger
	Clock      func() time.Time
}

// NewLifecycleService constructs the engine.
func NewLifecycleService(deps LifecycleDependencies) *LifecycleService {
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LifecycleService{
		store:      deps.Store,
		policy:     deps.Policy,
		dispatcher: deps.Dispatcher,
		dashboard:  deps.Dashboard,
		unread:     deps.Unread,
		logger:     logger,
		clock:      clock,
	}
}

// CreateTicketInput describes ticket creation payload.
type CreateTicketInput struct {
	Subject     string
	Description string
	CategoryID  int64
	Priority    domain.TicketPriority
	Attachment  *string
}

// CreateTicket opens a new ticket for the acting user: status Open, no
// assignee, due date derived from priority. Every active agent gets an inbox
// notification; the creator and all admins are emailed after commit.
func (s *LifecycleService) CreateTicket(ctx context.Context, actor *domain.User, input CreateTicketInput) (*domain.Ticket, error) {
	subject := strings.TrimSpace(input.Subject)
	description := strings.TrimSpace(input.Description)
	if subject == "" {
		return nil, apperrors.NewValidationError("subject is required", nil)
	}
	if description == "" {
		return nil, apperrors.NewValidationError("description is required", nil)
	}
	priority := input.Priority
	if priority == "" {
		priority = domain.TicketPriorityMedium
	}

	now := s.clock()
	ticket := &domain.Ticket{
		Subject:     subject,
		Description: description,
		Status:      domain.TicketStatusOpen,
		Priority:    priority,
		CategoryID:  input.CategoryID,
		CreatorID:   actor.ID,
		Attachment:  input.Attachment,
		DueAt:       s.policy.DueDate(priority, now),
	}

	var (
		agents       []domain.User
		categoryName string
		adminEmails  []string
		adminNames   []string
	)
	err := s.store.InTx(ctx, func(tx repository.Store) error {
		category, err := tx.Categories().GetByID(ctx, input.CategoryID)
		if err != nil {
			if err == pgx.ErrNoRows {
				return apperrors.NewValidationError("unknown category", map[string]any{"category_id": input.CategoryID})
			}
			return err
		}
		categoryName = category.Name

		if err := tx.Tickets().Create(ctx, ticket); err != nil {
			return err
		}
		if err := tx.Activity().Create(ctx, &domain.ActivityLogEntry{
			UserID:      actor.ID,
			Action:      domain.ActionTicketCreated,
			Description: fmt.Sprintf("Created ticket #%d: %s", ticket.ID, ticket.Subject),
			TicketID:    &ticket.ID,
		}); err != nil {
			return err
		}

		agents, err = tx.Users().ListActiveByRole(ctx, domain.RoleAgent)
		if err != nil {
			return err
		}
		for _, agent := range agents {
			if err := tx.Notifications().Create(ctx, &domain.Notification{
				UserID:   agent.ID,
				TicketID: &ticket.ID,
				Title:    "New Ticket Created",
				Message:  fmt.Sprintf("Ticket #%d: %s", ticket.ID, ticket.Subject),
				Type:     domain.NotificationTicketCreated,
			}); err != nil {
				return err
			}
		}

		admins, err := tx.Users().ListActiveByRole(ctx, domain.RoleAdmin)
		if err != nil {
			return err
		}
		for _, admin := range admins {
			adminEmails = append(adminEmails, admin.Email)
			adminNames = append(adminNames, admin.Username)
		}
		return nil
	})
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	for _, agent := range agents {
		s.unread.Incr(ctx, agent.ID)
	}
	s.dashboard.Invalidate(ctx)
	s.publish(ctx, events.Event{
		Type:     events.EventTicketCreated,
		TicketID: ticket.ID,
		ActorID:  actor.ID,
		Payload: events.TicketCreatedPayload{
			Subject:      ticket.Subject,
			Description:  ticket.Description,
			Priority:     ticket.Priority,
			CategoryName: categoryName,
			CreatorName:  actor.Username,
			CreatorEmail: actor.Email,
			AdminEmails:  adminEmails,
			AdminNames:   adminNames,
		},
	})
	return ticket, nil
}

// AssignTicket hands a ticket to an agent. Agents may not re-forward work
// that is already in progress or finished; admins may. An optional hand-off
// note is stored as an internal comment.
func (s *LifecycleService) AssignTicket(ctx context.Context, actor *domain.User, ticketID, assigneeID int64, note string) error {
	if !actor.Role.IsStaff() {
		return apperrors.NewForbidden("agent or admin role required")
	}

	var (
		ticket   *domain.Ticket
		assignee *domain.User
	)
	err := s.store.InTx(ctx, func(tx repository.Store) error {
		var err error
		ticket, err = tx.Tickets().GetByIDForUpdate(ctx, ticketID)
		if err != nil {
			if err == pgx.ErrNoRows {
				return apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
			}
			return err
		}
		if actor.Role == domain.RoleAgent && ticket.Status != domain.TicketStatusOpen {
			return apperrors.NewConflict("ticket is already being worked", map[string]any{
				"ticket_id": ticketID,
				"status":    ticket.Status,
			})
		}

		assignee, err = tx.Users().GetByID(ctx, assigneeID)
		if err != nil {
			if err == pgx.ErrNoRows {
				return apperrors.NewNotFound("user", map[string]any{"user_id": assigneeID})
			}
			return err
		}
		if !assignee.Role.IsStaff() {
			return apperrors.NewValidationError("assignee must be an agent or admin", map[string]any{"user_id": assigneeID})
		}
		if !assignee.IsActive {
			return apperrors.NewConflict("assignee inactive", map[string]any{"user_id": assigneeID})
		}

		ticket.AssigneeID = &assignee.ID
		if err := tx.Tickets().Update(ctx, ticket); err != nil {
			return err
		}

		if handoff := strings.TrimSpace(note); handoff != "" {
			if err := tx.Comments().Create(ctx, &domain.Comment{
				TicketID:   ticket.ID,
				AuthorID:   actor.ID,
				Message:    handoff,
				IsInternal: true,
			}); err != nil {
				return err
			}
		}

		if err := tx.Activity().Create(ctx, &domain.ActivityLogEntry{
			UserID:      actor.ID,
			Action:      domain.ActionTicketAssigned,
			Description: fmt.Sprintf("Assigned ticket #%d to %s", ticket.ID, assignee.Username),
			TicketID:    &ticket.ID,
		}); err != nil {
			return err
		}

		return tx.Notifications().Create(ctx, &domain.Notification{
			UserID:   assignee.ID,
			TicketID: &ticket.ID,
			Title:    "Ticket Assigned to You",
			Message:  fmt.Sprintf("You have been assigned ticket #%d: %s", ticket.ID, ticket.Subject),
			Type:     domain.NotificationAssignment,
		})
	})
	if err != nil {
		return apperrors.MapError(err)
	}

	s.unread.Incr(ctx, assignee.ID)
	s.publish(ctx, events.Event{
		Type:     events.EventTicketAssigned,
		TicketID: ticket.ID,
		ActorID:  actor.ID,
		Payload: events.TicketAssignedPayload{
			Subject:       ticket.Subject,
			AssigneeID:    assignee.ID,
			AssigneeName:  assignee.Username,
			AssigneeEmail: assignee.Email,
		},
	})
	return nil
}

// ChangeStatus moves a ticket through the transition table. Resolved/Closed
// timestamps are set exactly once and survive a later reopen. The owner is
// notified in-app and emailed after commit.
func (s *LifecycleService) ChangeStatus(ctx context.Context, actor *domain.User, ticketID int64, newStatus domain.TicketStatus) error {
	if !actor.Role.IsStaff() {
		return apperrors.NewForbidden("agent or admin role required")
	}
	if !domain.ValidStatus(newStatus) {
		return apperrors.NewValidationError("unknown status", map[string]any{"status": newStatus})
	}

	var (
		ticket    *domain.Ticket
		owner     *domain.User
		oldStatus domain.TicketStatus
	)
	err := s.store.InTx(ctx, func(tx repository.Store) error {
		var err error
		ticket, err = tx.Tickets().GetByIDForUpdate(ctx, ticketID)
		if err != nil {
			if err == pgx.ErrNoRows {
				return apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
			}
			return err
		}
		oldStatus = ticket.Status
		if !domain.TransitionAllowed(oldStatus, newStatus, actor.Role) {
			return apperrors.NewConflict("status transition not allowed", map[string]any{
				"from": oldStatus,
				"to":   newStatus,
				"role": actor.Role,
			})
		}

		now := s.clock()
		ticket.Status = newStatus
		if newStatus == domain.TicketStatusResolved && ticket.ResolvedAt == nil {
			ticket.ResolvedAt = &now
		}
		if newStatus == domain.TicketStatusClosed && ticket.ClosedAt == nil {
			ticket.ClosedAt = &now
		}
		if err := tx.Tickets().Update(ctx, ticket); err != nil {
			return err
		}

		if err := tx.Activity().Create(ctx, &domain.ActivityLogEntry{
			UserID:      actor.ID,
			Action:      domain.ActionStatusChanged,
			Description: fmt.Sprintf("Changed ticket #%d status from %s to %s", ticket.ID, oldStatus, newStatus),
			TicketID:    &ticket.ID,
		}); err != nil {
			return err
		}

		owner, err = tx.Users().GetByID(ctx, ticket.CreatorID)
		if err != nil {
			return err
		}
		return tx.Notifications().Create(ctx, &domain.Notification{
			UserID:   owner.ID,
			TicketID: &ticket.ID,
			Title:    "Ticket Updated",
			Message:  fmt.Sprintf("Your ticket #%d has been updated. Status: %s", ticket.ID, newStatus),
			Type:     domain.NotificationTicketUpdate,
		})
	})
	if err != nil {
		return apperrors.MapError(err)
	}

	s.unread.Incr(ctx, owner.ID)
	s.dashboard.Invalidate(ctx)
	s.publish(ctx, events.Event{
		Type:     events.EventStatusChanged,
		TicketID: ticket.ID,
		ActorID:  actor.ID,
		Payload: events.StatusChangedPayload{
			Subject:    ticket.Subject,
			OldStatus:  oldStatus,
			NewStatus:  newStatus,
			OwnerName:  owner.Username,
			OwnerEmail: owner.Email,
		},
	})
	return nil
}

// AddComment appends a comment to the ticket thread. End-user comments are
// never internal regardless of the requested flag, and end-users may only
// comment on their own tickets. Owner and assignee are notified for public
// comments unless they authored it.
func (s *LifecycleService) AddComment(ctx context.Context, actor *domain.User, ticketID int64, message string, isInternal bool) (*domain.Comment, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return nil, apperrors.NewValidationError("comment cannot be empty", nil)
	}
	if actor.Role == domain.RoleEndUser {
		isInternal = false
	}

	var (
		comment  *domain.Comment
		notified []int64
	)
	err := s.store.InTx(ctx, func(tx repository.Store) error {
		ticket, err := tx.Tickets().GetByID(ctx, ticketID)
		if err != nil {
			if err == pgx.ErrNoRows {
				return apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
			}
			return err
		}
		if actor.Role == domain.RoleEndUser && ticket.CreatorID != actor.ID {
			return apperrors.NewForbidden("you can only comment on your own tickets")
		}

		comment = &domain.Comment{
			TicketID:   ticket.ID,
			AuthorID:   actor.ID,
			Message:    message,
			IsInternal: isInternal,
		}
		if err := tx.Comments().Create(ctx, comment); err != nil {
			return err
		}

		if err := tx.Activity().Create(ctx, &domain.ActivityLogEntry{
			UserID:      actor.ID,
			Action:      domain.ActionCommentAdded,
			Description: fmt.Sprintf("Added comment #%d to ticket #%d", comment.ID, ticket.ID),
			TicketID:    &ticket.ID,
		}); err != nil {
			return err
		}

		if isInternal {
			return nil
		}
		if ticket.CreatorID != actor.ID {
			if err := tx.Notifications().Create(ctx, &domain.Notification{
				UserID:   ticket.CreatorID,
				TicketID: &ticket.ID,
				Title:    "New Comment on Your Ticket",
				Message:  fmt.Sprintf("%s commented on ticket #%d", actor.Username, ticket.ID),
				Type:     domain.NotificationComment,
			}); err != nil {
				return err
			}
			notified = append(notified, ticket.CreatorID)
		}
		if ticket.AssigneeID != nil && *ticket.AssigneeID != actor.ID {
			if err := tx.Notifications().Create(ctx, &domain.Notification{
				UserID:   *ticket.AssigneeID,
				TicketID: &ticket.ID,
				Title:    "New Comment on Assigned Ticket",
				Message:  fmt.Sprintf("%s commented on ticket #%d", actor.Username, ticket.ID),
				Type:     domain.NotificationComment,
			}); err != nil {
				return err
			}
			notified = append(notified, *ticket.AssigneeID)
		}
		return nil
	})
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	for _, userID := range notified {
		s.unread.Incr(ctx, userID)
	}
	s.publish(ctx, events.Event{
		Type:     events.EventCommentAdded,
		TicketID: ticketID,
		ActorID:  actor.ID,
		Payload: events.CommentAddedPayload{
			CommentID:  comment.ID,
			IsInternal: comment.IsInternal,
		},
	})
	return comment, nil
}

// RateTicket records the owner's satisfaction rating once the ticket has
// been resolved or closed.
func (s *LifecycleService) RateTicket(ctx context.Context, actor *domain.User, ticketID int64, rating int, feedback string) error {
	if rating < 1 || rating > 5 {
		return apperrors.NewValidationError("rating must be between 1 and 5", map[string]any{"rating": rating})
	}

	err := s.store.InTx(ctx, func(tx repository.Store) error {
		ticket, err := tx.Tickets().GetByIDForUpdate(ctx, ticketID)
		if err != nil {
			if err == pgx.ErrNoRows {
				return apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
			}
			return err
		}
		if ticket.CreatorID != actor.ID {
			return apperrors.NewConflict("only the ticket owner may rate it", map[string]any{"ticket_id": ticketID})
		}
		if !ticket.Status.Terminal() {
			return apperrors.NewConflict("ticket must be resolved or closed before rating", map[string]any{
				"ticket_id": ticketID,
				"status":    ticket.Status,
			})
		}

		ticket.Rating = &rating
		if fb := strings.TrimSpace(feedback); fb != "" {
			ticket.Feedback = &fb
		}
		if err := tx.Tickets().Update(ctx, ticket); err != nil {
			return err
		}

		return tx.Activity().Create(ctx, &domain.ActivityLogEntry{
			UserID:      actor.ID,
			Action:      domain.ActionTicketUpdated,
			Description: fmt.Sprintf("Updated ticket #%d: rated %d/5", ticket.ID, rating),
			TicketID:    &ticket.ID,
		})
	})
	return apperrors.MapError(err)
}

// GetTicket fetches the ticket with its visible comment thread. End-users
// see only their own tickets and never internal notes.
func (s *LifecycleService) GetTicket(ctx context.Context, actor *domain.User, ticketID int64) (*domain.Ticket, []domain.Comment, error) {
	ticket, err := s.store.Tickets().GetByID(ctx, ticketID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil, apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
		}
		return nil, nil, apperrors.MapError(err)
	}
	if actor.Role == domain.RoleEndUser && ticket.CreatorID != actor.ID {
		return nil, nil, apperrors.NewForbidden("you can only view your own tickets")
	}
	comments, err := s.store.Comments().ListByTicket(ctx, ticket.ID, actor.Role.IsStaff())
	if err != nil {
		return nil, nil, apperrors.MapError(err)
	}
	return ticket, comments, nil
}

// ListTickets returns tickets matching the filter. End-users are always
// scoped to their own tickets.
func (s *LifecycleService) ListTickets(ctx context.Context, actor *domain.User, filter repository.TicketFilter) ([]domain.Ticket, error) {
	if actor.Role == domain.RoleEndUser {
		filter.CreatorID = &actor.ID
	}
	tickets, err := s.store.Tickets().ListWithFilter(ctx, filter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return tickets, nil
}

// CountsByStatus serves the dashboard tiles, through the Redis cache when warm.
func (s *LifecycleService) CountsByStatus(ctx context.Context) (map[domain.TicketStatus]int64, error) {
	if counts, ok := s.dashboard.Get(ctx); ok {
		return counts, nil
	}
	counts, err := s.store.Tickets().CountByStatus(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	s.dashboard.Set(ctx, counts)
	return counts, nil
}

// Now exposes the engine clock so callers compute overdue flags consistently.
func (s *LifecycleService) Now() time.Time {
	return s.clock()
}

func (s *LifecycleService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = s.clock()
	}
	_ = s.dispatcher.Publish(ctx, event)
}
