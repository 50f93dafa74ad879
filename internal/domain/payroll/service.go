package payroll

import (
	"context"
)

// Service computes payroll breakdowns from the authoritative log
// collection. It never mutates logs or configs.
type Service interface {
	// GetMonthlyPayroll loads the month's logs for one employee and
	// computes their breakdown.
	GetMonthlyPayroll(ctx context.Context, req MonthlyPayrollRequest) (BreakdownResponse, error)

	// GetOrgPayroll computes breakdowns for every employee in the
	// caller's organization (admin only).
	GetOrgPayroll(ctx context.Context, req OrgPayrollRequest) ([]BreakdownResponse, error)
}
