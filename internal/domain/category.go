package domain

// Category groups tickets for triage. Managed by admins.
type Category struct {
	ID   int64
	Name string
}
