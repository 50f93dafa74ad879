package machine

import "time"

// Machine is a shared equipment resource. At most one open work session
// may reference it at a time; "busy" is derived from the open-log set,
// never stored here.
type Machine struct {
	ID             string
	OrganizationID string
	Name           string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
