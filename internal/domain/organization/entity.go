package organization

import "time"

// Organization is the tenant. Every other entity carries its id and every
// repository call is scoped by it.
type Organization struct {
	ID       string
	Name     string
	Username string // tenant slug, unique
	// NightShiftBonusMinutes is added to the duration of sessions started
	// in night mode. The currency-side night bonus lives in the pay
	// config, not here.
	NightShiftBonusMinutes int
	// MaxEmployees is a plan limit; 0 means unlimited.
	MaxEmployees int
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
