package domain

import "time"

// Role enumerates the three access levels of the help desk.
type Role string

const (
	RoleEndUser Role = "enduser"
	RoleAgent   Role = "agent"
	RoleAdmin   Role = "admin"
)

// IsStaff reports whether the role may triage tickets.
func (r Role) IsStaff() bool {
	return r == RoleAgent || r == RoleAdmin
}

// ValidRole reports whether the role is one of the known values.
func ValidRole(r Role) bool {
	switch r {
	case RoleEndUser, RoleAgent, RoleAdmin:
		return true
	}
	return false
}

// User models everyone who touches a ticket: end-users who submit them and
// the agents/admins who work them. The acting user is passed explicitly into
// every lifecycle operation.
type User struct {
	ID           int64
	Username     string
	Email        string
	PasswordHash string
	Role         Role
	IsActive     bool
	CreatedAt    time.Time
}
