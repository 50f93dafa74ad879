package position

import (
	"time"

	"github.com/crewclock/crewclock-backend-go/internal/domain/payroll"
)

// Permissions is the per-position capability set consulted by the policy
// evaluator before every shift operation.
type Permissions struct {
	CanUseMachines bool
	// MultiSlot allows up to MaxSlots concurrent open sessions.
	MultiSlot bool
	// MaxShiftMinutes separates regular from overtime work. 0 means the
	// position has no configured threshold.
	MaxShiftMinutes   int
	RequirePhoto      bool
	NightShiftAllowed bool
	AdminTier         int
}

// MaxSlots is the hard ceiling on concurrent open sessions per employee.
const MaxSlots = 3

type Position struct {
	ID             string
	OrganizationID string
	Name           string
	Permissions    Permissions
	// DefaultPayroll applies to employees without a personal override.
	DefaultPayroll *payroll.Config
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// SlotLimit returns how many concurrent sessions this position allows.
func (p Position) SlotLimit() int {
	if p.Permissions.MultiSlot {
		return MaxSlots
	}
	return 1
}

// StandardShiftMinutes returns the regular/overtime threshold, falling
// back to the global default when the position has none.
func (p Position) StandardShiftMinutes() int {
	if p.Permissions.MaxShiftMinutes > 0 {
		return p.Permissions.MaxShiftMinutes
	}
	return payroll.StandardShiftMinutes
}
