package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quickdesk/helpdesk/internal/domain"
	"github.com/quickdesk/helpdesk/internal/events"
	"github.com/quickdesk/helpdesk/internal/repository"
	"github.com/quickdesk/helpdesk/internal/sla"
	apperrors "github.com/quickdesk/helpdesk/pkg/util"
)

var testNow = time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC)

// recordingDispatcher captures published events for assertions.
type recordingDispatcher struct {
	mu     sync.Mutex
	events []events.Event
}

func (d *recordingDispatcher) Publish(_ context.Context, event events.Event) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.events = append(d.events, event)
	return nil
}

func (d *recordingDispatcher) Subscribe(events.EventType, events.EventHandler) {}

func (d *recordingDispatcher) byType(eventType events.EventType) []events.Event {
	d.mu.Lock()
	defer d.mu.Unlock()
	var out []events.Event
	for _, event := range d.events {
		if event.Type == eventType {
			out = append(out, event)
		}
	}
	return out
}

type lifecycleFixture struct {
	store      *fakeStore
	dispatcher *recordingDispatcher
	service    *LifecycleService

	endUser  domain.User
	agent    domain.User
	admin    domain.User
	category domain.Category
}

func newLifecycleFixture(t *testing.T) *lifecycleFixture {
	t.Helper()
	store := newFakeStore()
	dispatcher := &recordingDispatcher{}
	fx := &lifecycleFixture{
		store:      store,
		dispatcher: dispatcher,
		endUser:    store.addUser(domain.User{Username: "dana", Email: "dana@example.com", Role: domain.RoleEndUser, IsActive: true}),
		agent:      store.addUser(domain.User{Username: "amir", Email: "amir@example.com", Role: domain.RoleAgent, IsActive: true}),
		admin:      store.addUser(domain.User{Username: "root", Email: "root@example.com", Role: domain.RoleAdmin, IsActive: true}),
		category:   store.addCategory("Billing"),
	}
	fx.service = NewLifecycleService(LifecycleDependencies{
		Store:      store,
		Policy:     sla.Default(),
		Dispatcher: dispatcher,
		Clock:      func() time.Time { return testNow },
	})
	return fx
}

func (fx *lifecycleFixture) openTicket(t *testing.T) *domain.Ticket {
	t.Helper()
	ticket, err := fx.service.CreateTicket(context.Background(), &fx.endUser, CreateTicketInput{
		Subject:     "Printer on fire",
		Description: "It is actually on fire.",
		CategoryID:  fx.category.ID,
		Priority:    domain.TicketPriorityHigh,
	})
	require.NoError(t, err)
	return ticket
}

func TestCreateTicketSetsDueDateFromPriority(t *testing.T) {
	fx := newLifecycleFixture(t)

	ticket := fx.openTicket(t)

	assert.Equal(t, domain.TicketStatusOpen, ticket.Status)
	assert.Nil(t, ticket.AssigneeID)
	assert.Equal(t, testNow.Add(24*time.Hour), ticket.DueAt)
	assert.Equal(t, fx.endUser.ID, ticket.CreatorID)
}

func TestCreateTicketDefaultsPriorityToMedium(t *testing.T) {
	fx := newLifecycleFixture(t)

	ticket, err := fx.service.CreateTicket(context.Background(), &fx.endUser, CreateTicketInput{
		Subject:     "Slow laptop",
		Description: "Takes minutes to boot.",
		CategoryID:  fx.category.ID,
	})
	require.NoError(t, err)

	assert.Equal(t, domain.TicketPriorityMedium, ticket.Priority)
	assert.Equal(t, testNow.Add(72*time.Hour), ticket.DueAt)
}

func TestCreateTicketValidation(t *testing.T) {
	fx := newLifecycleFixture(t)

	_, err := fx.service.CreateTicket(context.Background(), &fx.endUser, CreateTicketInput{
		Subject:     "   ",
		Description: "body",
		CategoryID:  fx.category.ID,
	})
	assert.True(t, apperrors.IsCode(err, "VALIDATION_FAILED"))

	_, err = fx.service.CreateTicket(context.Background(), &fx.endUser, CreateTicketInput{
		Subject:     "subject",
		Description: "body",
		CategoryID:  999,
	})
	assert.True(t, apperrors.IsCode(err, "VALIDATION_FAILED"))
	assert.Empty(t, fx.store.tickets)
	assert.Empty(t, fx.store.activity)
}

func TestCreateTicketWritesAuditAndNotifiesAgents(t *testing.T) {
	fx := newLifecycleFixture(t)
	secondAgent := fx.store.addUser(domain.User{Username: "lea", Email: "lea@example.com", Role: domain.RoleAgent, IsActive: true})
	inactiveAgent := fx.store.addUser(domain.User{Username: "off", Email: "off@example.com", Role: domain.RoleAgent, IsActive: false})

	ticket := fx.openTicket(t)

	require.Len(t, fx.store.activity, 1)
	entry := fx.store.activity[0]
	assert.Equal(t, domain.ActionTicketCreated, entry.Action)
	assert.Equal(t, fx.endUser.ID, entry.UserID)
	require.NotNil(t, entry.TicketID)
	assert.Equal(t, ticket.ID, *entry.TicketID)

	recipients := map[int64]bool{}
	for _, n := range fx.store.notifications {
		assert.Equal(t, domain.NotificationTicketCreated, n.Type)
		recipients[n.UserID] = true
	}
	assert.True(t, recipients[fx.agent.ID])
	assert.True(t, recipients[secondAgent.ID])
	assert.False(t, recipients[inactiveAgent.ID])
	assert.False(t, recipients[fx.endUser.ID])

	published := fx.dispatcher.byType(events.EventTicketCreated)
	require.Len(t, published, 1)
	payload, ok := published[0].Payload.(events.TicketCreatedPayload)
	require.True(t, ok)
	assert.Equal(t, "Billing", payload.CategoryName)
	assert.Contains(t, payload.AdminEmails, fx.admin.Email)
}

func TestAssignTicketEndUserForbidden(t *testing.T) {
	fx := newLifecycleFixture(t)
	ticket := fx.openTicket(t)
	auditBefore := len(fx.store.activity)

	err := fx.service.AssignTicket(context.Background(), &fx.endUser, ticket.ID, fx.agent.ID, "")

	assert.True(t, apperrors.IsCode(err, "FORBIDDEN"))
	assert.Len(t, fx.store.activity, auditBefore)
	assert.Nil(t, fx.store.tickets[ticket.ID].AssigneeID)
}

func TestAssignTicketStoresAssigneeNoteAndNotification(t *testing.T) {
	fx := newLifecycleFixture(t)
	ticket := fx.openTicket(t)

	err := fx.service.AssignTicket(context.Background(), &fx.admin, ticket.ID, fx.agent.ID, "  take this one  ")
	require.NoError(t, err)

	stored := fx.store.tickets[ticket.ID]
	require.NotNil(t, stored.AssigneeID)
	assert.Equal(t, fx.agent.ID, *stored.AssigneeID)

	var handoff *domain.Comment
	for i := range fx.store.comments {
		if fx.store.comments[i].TicketID == ticket.ID {
			handoff = &fx.store.comments[i]
		}
	}
	require.NotNil(t, handoff)
	assert.Equal(t, "take this one", handoff.Message)
	assert.True(t, handoff.IsInternal)

	var assigned *domain.Notification
	for i := range fx.store.notifications {
		if fx.store.notifications[i].Type == domain.NotificationAssignment {
			assigned = &fx.store.notifications[i]
		}
	}
	require.NotNil(t, assigned)
	assert.Equal(t, fx.agent.ID, assigned.UserID)
	assert.Equal(t, "Ticket Assigned to You", assigned.Title)
}

func TestAssignTicketAgentCannotReassignWorkedTicket(t *testing.T) {
	fx := newLifecycleFixture(t)
	ticket := fx.openTicket(t)
	require.NoError(t, fx.service.ChangeStatus(context.Background(), &fx.agent, ticket.ID, domain.TicketStatusInProgress))

	err := fx.service.AssignTicket(context.Background(), &fx.agent, ticket.ID, fx.agent.ID, "")
	assert.True(t, apperrors.IsCode(err, "CONFLICT"))

	// admins may re-forward at any stage
	err = fx.service.AssignTicket(context.Background(), &fx.admin, ticket.ID, fx.agent.ID, "")
	assert.NoError(t, err)
}

func TestAssignTicketRejectsNonStaffOrInactiveAssignee(t *testing.T) {
	fx := newLifecycleFixture(t)
	ticket := fx.openTicket(t)
	inactive := fx.store.addUser(domain.User{Username: "gone", Email: "gone@example.com", Role: domain.RoleAgent, IsActive: false})

	err := fx.service.AssignTicket(context.Background(), &fx.admin, ticket.ID, fx.endUser.ID, "")
	assert.True(t, apperrors.IsCode(err, "VALIDATION_FAILED"))

	err = fx.service.AssignTicket(context.Background(), &fx.admin, ticket.ID, inactive.ID, "")
	assert.True(t, apperrors.IsCode(err, "CONFLICT"))

	err = fx.service.AssignTicket(context.Background(), &fx.admin, ticket.ID, 999, "")
	assert.True(t, apperrors.IsCode(err, "NOT_FOUND"))
}

func TestChangeStatusRecordsAuditAndNotifiesOwner(t *testing.T) {
	fx := newLifecycleFixture(t)
	ticket := fx.openTicket(t)

	err := fx.service.ChangeStatus(context.Background(), &fx.agent, ticket.ID, domain.TicketStatusInProgress)
	require.NoError(t, err)

	assert.Equal(t, domain.TicketStatusInProgress, fx.store.tickets[ticket.ID].Status)

	var entry *domain.ActivityLogEntry
	for i := range fx.store.activity {
		if fx.store.activity[i].Action == domain.ActionStatusChanged {
			entry = &fx.store.activity[i]
		}
	}
	require.NotNil(t, entry)
	assert.Equal(t, fx.agent.ID, entry.UserID)

	var note *domain.Notification
	for i := range fx.store.notifications {
		if fx.store.notifications[i].Type == domain.NotificationTicketUpdate {
			note = &fx.store.notifications[i]
		}
	}
	require.NotNil(t, note)
	assert.Equal(t, fx.endUser.ID, note.UserID)
	assert.Equal(t, "Ticket Updated", note.Title)
}

func TestChangeStatusClosedReopenIsAdminOnly(t *testing.T) {
	fx := newLifecycleFixture(t)
	ticket := fx.openTicket(t)
	require.NoError(t, fx.service.ChangeStatus(context.Background(), &fx.agent, ticket.ID, domain.TicketStatusClosed))

	err := fx.service.ChangeStatus(context.Background(), &fx.agent, ticket.ID, domain.TicketStatusOpen)
	assert.True(t, apperrors.IsCode(err, "CONFLICT"))
	assert.Equal(t, domain.TicketStatusClosed, fx.store.tickets[ticket.ID].Status)

	require.NoError(t, fx.service.ChangeStatus(context.Background(), &fx.admin, ticket.ID, domain.TicketStatusOpen))
	assert.Equal(t, domain.TicketStatusOpen, fx.store.tickets[ticket.ID].Status)
}

func TestChangeStatusTimestampsSetOnce(t *testing.T) {
	fx := newLifecycleFixture(t)
	ticket := fx.openTicket(t)

	require.NoError(t, fx.service.ChangeStatus(context.Background(), &fx.agent, ticket.ID, domain.TicketStatusResolved))
	first := fx.store.tickets[ticket.ID].ResolvedAt
	require.NotNil(t, first)

	// reopen and resolve again: the original timestamp survives
	require.NoError(t, fx.service.ChangeStatus(context.Background(), &fx.agent, ticket.ID, domain.TicketStatusOpen))
	assert.NotNil(t, fx.store.tickets[ticket.ID].ResolvedAt)

	require.NoError(t, fx.service.ChangeStatus(context.Background(), &fx.agent, ticket.ID, domain.TicketStatusResolved))
	assert.Equal(t, *first, *fx.store.tickets[ticket.ID].ResolvedAt)
}

func TestChangeStatusRejectsUnknownStatusAndNonStaff(t *testing.T) {
	fx := newLifecycleFixture(t)
	ticket := fx.openTicket(t)

	err := fx.service.ChangeStatus(context.Background(), &fx.agent, ticket.ID, domain.TicketStatus("Parked"))
	assert.True(t, apperrors.IsCode(err, "VALIDATION_FAILED"))

	err = fx.service.ChangeStatus(context.Background(), &fx.endUser, ticket.ID, domain.TicketStatusClosed)
	assert.True(t, apperrors.IsCode(err, "FORBIDDEN"))
}

func TestAddCommentEndUserNeverInternal(t *testing.T) {
	fx := newLifecycleFixture(t)
	ticket := fx.openTicket(t)

	comment, err := fx.service.AddComment(context.Background(), &fx.endUser, ticket.ID, "any update?", true)
	require.NoError(t, err)
	assert.False(t, comment.IsInternal)
}

func TestAddCommentEndUserLimitedToOwnTickets(t *testing.T) {
	fx := newLifecycleFixture(t)
	ticket := fx.openTicket(t)
	stranger := fx.store.addUser(domain.User{Username: "eve", Email: "eve@example.com", Role: domain.RoleEndUser, IsActive: true})

	_, err := fx.service.AddComment(context.Background(), &stranger, ticket.ID, "mine too", false)
	assert.True(t, apperrors.IsCode(err, "FORBIDDEN"))
}

func TestAddCommentNotifiesOwnerAndAssigneeExceptAuthor(t *testing.T) {
	fx := newLifecycleFixture(t)
	ticket := fx.openTicket(t)
	require.NoError(t, fx.service.AssignTicket(context.Background(), &fx.admin, ticket.ID, fx.agent.ID, ""))
	before := len(fx.store.notifications)

	_, err := fx.service.AddComment(context.Background(), &fx.admin, ticket.ID, "looking into it", false)
	require.NoError(t, err)

	recipients := map[int64]bool{}
	for _, n := range fx.store.notifications[before:] {
		assert.Equal(t, domain.NotificationComment, n.Type)
		recipients[n.UserID] = true
	}
	assert.True(t, recipients[fx.endUser.ID])
	assert.True(t, recipients[fx.agent.ID])
	assert.False(t, recipients[fx.admin.ID])

	// the assignee commenting notifies the owner only
	before = len(fx.store.notifications)
	_, err = fx.service.AddComment(context.Background(), &fx.agent, ticket.ID, "fixed", false)
	require.NoError(t, err)
	require.Len(t, fx.store.notifications[before:], 1)
	assert.Equal(t, fx.endUser.ID, fx.store.notifications[before].UserID)
}

func TestAddCommentInternalStaysQuiet(t *testing.T) {
	fx := newLifecycleFixture(t)
	ticket := fx.openTicket(t)
	before := len(fx.store.notifications)

	comment, err := fx.service.AddComment(context.Background(), &fx.agent, ticket.ID, "customer is wrong", true)
	require.NoError(t, err)

	assert.True(t, comment.IsInternal)
	assert.Len(t, fx.store.notifications, before)
}

func TestRateTicketRequiresTerminalStatusAndOwnership(t *testing.T) {
	fx := newLifecycleFixture(t)
	ticket := fx.openTicket(t)

	err := fx.service.RateTicket(context.Background(), &fx.endUser, ticket.ID, 6, "")
	assert.True(t, apperrors.IsCode(err, "VALIDATION_FAILED"))

	err = fx.service.RateTicket(context.Background(), &fx.endUser, ticket.ID, 4, "")
	assert.True(t, apperrors.IsCode(err, "CONFLICT"))

	err = fx.service.RateTicket(context.Background(), &fx.agent, ticket.ID, 4, "")
	assert.True(t, apperrors.IsCode(err, "CONFLICT"))

	require.NoError(t, fx.service.ChangeStatus(context.Background(), &fx.agent, ticket.ID, domain.TicketStatusResolved))
	require.NoError(t, fx.service.RateTicket(context.Background(), &fx.endUser, ticket.ID, 5, " great service "))

	stored := fx.store.tickets[ticket.ID]
	require.NotNil(t, stored.Rating)
	assert.Equal(t, 5, *stored.Rating)
	require.NotNil(t, stored.Feedback)
	assert.Equal(t, "great service", *stored.Feedback)
}

func TestAuditFailureRollsBackWholeOperation(t *testing.T) {
	fx := newLifecycleFixture(t)
	fx.store.failActivity = true

	_, err := fx.service.CreateTicket(context.Background(), &fx.endUser, CreateTicketInput{
		Subject:     "lost mail",
		Description: "inbox empty",
		CategoryID:  fx.category.ID,
	})

	require.Error(t, err)
	assert.Empty(t, fx.store.tickets)
	assert.Empty(t, fx.store.notifications)
	assert.Empty(t, fx.dispatcher.events)
}

func TestAuditFailureVetoesStatusChange(t *testing.T) {
	fx := newLifecycleFixture(t)
	ticket := fx.openTicket(t)
	fx.store.failActivity = true

	err := fx.service.ChangeStatus(context.Background(), &fx.agent, ticket.ID, domain.TicketStatusResolved)

	require.Error(t, err)
	stored := fx.store.tickets[ticket.ID]
	assert.Equal(t, domain.TicketStatusOpen, stored.Status)
	assert.Nil(t, stored.ResolvedAt)
}

func TestGetTicketScopesEndUsers(t *testing.T) {
	fx := newLifecycleFixture(t)
	ticket := fx.openTicket(t)
	stranger := fx.store.addUser(domain.User{Username: "eve", Email: "eve@example.com", Role: domain.RoleEndUser, IsActive: true})
	_, err := fx.service.AddComment(context.Background(), &fx.agent, ticket.ID, "internal note", true)
	require.NoError(t, err)

	_, _, err = fx.service.GetTicket(context.Background(), &stranger, ticket.ID)
	assert.True(t, apperrors.IsCode(err, "FORBIDDEN"))

	_, comments, err := fx.service.GetTicket(context.Background(), &fx.endUser, ticket.ID)
	require.NoError(t, err)
	assert.Empty(t, comments)

	_, comments, err = fx.service.GetTicket(context.Background(), &fx.agent, ticket.ID)
	require.NoError(t, err)
	assert.Len(t, comments, 1)
}

func TestListTicketsScopesEndUsersToOwn(t *testing.T) {
	fx := newLifecycleFixture(t)
	fx.openTicket(t)
	other := fx.store.addUser(domain.User{Username: "bob", Email: "bob@example.com", Role: domain.RoleEndUser, IsActive: true})
	fx.store.addTicket(domain.Ticket{Subject: "vpn", Description: "down", Status: domain.TicketStatusOpen, Priority: domain.TicketPriorityLow, CategoryID: fx.category.ID, CreatorID: other.ID, DueAt: testNow})

	mine, err := fx.service.ListTickets(context.Background(), &fx.endUser, repository.TicketFilter{})
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, fx.endUser.ID, mine[0].CreatorID)

	all, err := fx.service.ListTickets(context.Background(), &fx.agent, repository.TicketFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestCountsByStatusFallsBackToStore(t *testing.T) {
	fx := newLifecycleFixture(t)
	fx.openTicket(t)
	ticket := fx.openTicket(t)
	require.NoError(t, fx.service.ChangeStatus(context.Background(), &fx.agent, ticket.ID, domain.TicketStatusResolved))

	counts, err := fx.service.CountsByStatus(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), counts[domain.TicketStatusOpen])
	assert.Equal(t, int64(1), counts[domain.TicketStatusResolved])
}
