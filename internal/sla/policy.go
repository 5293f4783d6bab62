// Package sla derives response deadlines from ticket priority.
package sla

import (
	"time"

	"github.com/quickdesk/helpdesk/internal/domain"
)

// Default response windows, in hours.
const (
	hoursCritical = 4
	hoursHigh     = 24
	hoursMedium   = 72
	hoursLow      = 168
)

// Policy maps priorities to response windows. The zero value is not usable;
// construct with Default or FromConfig.
type Policy struct {
	hours map[domain.TicketPriority]int
}

// Default returns the stock priority table.
func Default() Policy {
	return Policy{hours: map[domain.TicketPriority]int{
		domain.TicketPriorityCritical: hoursCritical,
		domain.TicketPriorityHigh:     hoursHigh,
		domain.TicketPriorityMedium:   hoursMedium,
		domain.TicketPriorityLow:      hoursLow,
	}}
}

// FromConfig builds a policy with overridden windows. Non-positive values
// fall back to the defaults.
func FromConfig(critical, high, medium, low int) Policy {
	p := Default()
	if critical > 0 {
		p.hours[domain.TicketPriorityCritical] = critical
	}
	if high > 0 {
		p.hours[domain.TicketPriorityHigh] = high
	}
	if medium > 0 {
		p.hours[domain.TicketPriorityMedium] = medium
	}
	if low > 0 {
		p.hours[domain.TicketPriorityLow] = low
	}
	return p
}

// DueDate computes the response deadline for a ticket created (or
// re-prioritized) at the given instant. Unknown priorities get the Medium
// window. Pure: no side effects, no failure modes.
func (p Policy) DueDate(priority domain.TicketPriority, createdAt time.Time) time.Time {
	hours, ok := p.hours[priority]
	if !ok {
		hours = p.hours[domain.TicketPriorityMedium]
	}
	return createdAt.Add(time.Duration(hours) * time.Hour)
}
