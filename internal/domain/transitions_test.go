package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTransitionAllowedStaffOnly(t *testing.T) {
	assert.False(t, TransitionAllowed(TicketStatusOpen, TicketStatusInProgress, RoleEndUser))
	assert.True(t, TransitionAllowed(TicketStatusOpen, TicketStatusInProgress, RoleAgent))
	assert.True(t, TransitionAllowed(TicketStatusOpen, TicketStatusInProgress, RoleAdmin))
}

func TestTransitionAllowedPermissiveForNonTerminal(t *testing.T) {
	from := []TicketStatus{TicketStatusOpen, TicketStatusInProgress, TicketStatusResolved}
	to := []TicketStatus{TicketStatusOpen, TicketStatusInProgress, TicketStatusResolved, TicketStatusClosed}
	for _, f := range from {
		for _, n := range to {
			assert.True(t, TransitionAllowed(f, n, RoleAgent), "%s -> %s", f, n)
		}
	}
}

func TestReopeningClosedRequiresAdmin(t *testing.T) {
	assert.False(t, TransitionAllowed(TicketStatusClosed, TicketStatusOpen, RoleAgent))
	assert.True(t, TransitionAllowed(TicketStatusClosed, TicketStatusOpen, RoleAdmin))
	assert.True(t, TransitionAllowed(TicketStatusClosed, TicketStatusClosed, RoleAgent))
}
