package mail

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/quickdesk/helpdesk/internal/events"
)

// Notifier turns committed lifecycle events into outbox emails. It runs
// after the ticket transaction has committed; nothing here can fail the
// user-visible action.
type Notifier struct {
	outbox *Outbox
	logger *zap.Logger
}

// NewNotifier creates the notifier.
func NewNotifier(outbox *Outbox, logger *zap.Logger) *Notifier {
	return &Notifier{outbox: outbox, logger: logger}
}

// RegisterHandlers subscribes to lifecycle events.
func (n *Notifier) RegisterHandlers(dispatcher events.Dispatcher) {
	if dispatcher == nil {
		return
	}
	dispatcher.Subscribe(events.EventTicketCreated, n.handleTicketCreated)
	dispatcher.Subscribe(events.EventTicketAssigned, n.handleTicketAssigned)
	dispatcher.Subscribe(events.EventStatusChanged, n.handleStatusChanged)
}

func (n *Notifier) handleTicketCreated(_ context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.TicketCreatedPayload)
	if !ok {
		n.logger.Warn("unexpected payload for ticket_created event")
		return nil
	}

	n.outbox.Enqueue(Message{
		Subject:    "Ticket Submitted Successfully",
		Recipients: []string{payload.CreatorEmail},
		Body: fmt.Sprintf(`Hi %s,

Your ticket has been submitted successfully!

Ticket Details:
- Ticket ID: #%d
- Subject: %s
- Priority: %s
- Category: %s

Your ticket is pending assignment. An admin will review and assign it to an agent shortly.

Thanks,
QuickDesk Team`, payload.CreatorName, event.TicketID, payload.Subject, payload.Priority, payload.CategoryName),
	})

	for i, adminEmail := range payload.AdminEmails {
		adminName := "Admin"
		if i < len(payload.AdminNames) {
			adminName = payload.AdminNames[i]
		}
		n.outbox.Enqueue(Message{
			Subject:    fmt.Sprintf("New Ticket #%d - Needs Assignment", event.TicketID),
			Recipients: []string{adminEmail},
			Body: fmt.Sprintf(`Hello %s,

A new ticket has been created and needs to be assigned to an agent.

Ticket Details:
- Ticket ID: #%d
- Subject: %s
- Priority: %s
- Category: %s
- Created by: %s (%s)

Please review and assign this ticket to an appropriate agent.

Best regards,
QuickDesk System`, adminName, event.TicketID, payload.Subject, payload.Priority, payload.CategoryName,
				payload.CreatorName, payload.CreatorEmail),
		})
	}
	return nil
}

func (n *Notifier) handleTicketAssigned(_ context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.TicketAssignedPayload)
	if !ok {
		n.logger.Warn("unexpected payload for ticket_assigned event")
		return nil
	}
	n.outbox.Enqueue(Message{
		Subject:    fmt.Sprintf("Ticket #%d Assigned to You", event.TicketID),
		Recipients: []string{payload.AssigneeEmail},
		Body: fmt.Sprintf(`Hello %s,

You have been assigned ticket #%d: "%s".

Please review it in your agent dashboard.

Regards,
QuickDesk Support Team`, payload.AssigneeName, event.TicketID, payload.Subject),
	})
	return nil
}

func (n *Notifier) handleStatusChanged(_ context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.StatusChangedPayload)
	if !ok {
		n.logger.Warn("unexpected payload for status_changed event")
		return nil
	}
	n.outbox.Enqueue(Message{
		Subject:    fmt.Sprintf("Ticket #%d Status Updated", event.TicketID),
		Recipients: []string{payload.OwnerEmail},
		Body: fmt.Sprintf(`Hello %s,

Your ticket titled: "%s" has been updated to the status: %s.

Regards,
QuickDesk Support Team`, payload.OwnerName, payload.Subject, payload.NewStatus),
	})
	return nil
}
