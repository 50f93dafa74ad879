package payroll

import (
	"github.com/shopspring/decimal"
)

// PayType determines how a month of work logs is priced.
type PayType string

const (
	PayTypeHourly PayType = "hourly"
	PayTypeFixed  PayType = "fixed"
	PayTypeShift  PayType = "shift"
)

// Config is a pay policy. Employees may carry a personal Config that
// overrides their position's default; when neither exists DefaultConfig
// applies.
type Config struct {
	Type               PayType         `json:"type"`
	Rate               decimal.Decimal `json:"rate"`
	OvertimeMultiplier decimal.Decimal `json:"overtime_multiplier"`
	// NightShiftBonus is a flat currency amount per qualifying session.
	NightShiftBonus decimal.Decimal `json:"night_shift_bonus"`
	// SickLeaveRate is a flat currency amount per sick day.
	SickLeaveRate decimal.Decimal `json:"sick_leave_rate"`
	// MachineRates overrides Rate for logs worked on a given machine.
	MachineRates map[string]decimal.Decimal `json:"machine_rates,omitempty"`
}

// DefaultConfig is the fallback pay policy when neither the employee nor
// the position configures one.
func DefaultConfig() Config {
	return Config{
		Type:               PayTypeHourly,
		Rate:               decimal.Zero,
		OvertimeMultiplier: decimal.NewFromFloat(1.5),
		NightShiftBonus:    decimal.Zero,
		SickLeaveRate:      decimal.Zero,
	}
}

// AssumedMonthlyHours is the divisor used to derive an hourly rate from a
// fixed monthly salary when pricing overtime.
const AssumedMonthlyHours = 160

// StandardShiftMinutes is the regular/overtime threshold used when the
// position does not configure a max shift duration.
const StandardShiftMinutes = 480

// Breakdown is the result of reducing one employee-month of logs.
type Breakdown struct {
	UserID     string
	Month      string // YYYY-MM
	Total      decimal.Decimal
	Regular    decimal.Decimal
	Overtime   decimal.Decimal
	NightShift decimal.Decimal
	SickLeave  decimal.Decimal
	Bonuses    decimal.Decimal
	Fines      decimal.Decimal
	Details    BreakdownDetails
}

// BreakdownDetails is the audit block attached to every Breakdown.
type BreakdownDetails struct {
	RegularHours    float64
	OvertimeHours   float64
	NightShiftCount int
	SickDays        int
	WorkedDays      int
}
