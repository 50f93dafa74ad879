package payroll

import (
	"regexp"

	"github.com/crewclock/crewclock-backend-go/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

var monthRegex = regexp.MustCompile(`^\d{4}-(0[1-9]|1[0-2])$`)

// MonthlyPayrollRequest asks for one employee's breakdown.
type MonthlyPayrollRequest struct {
	UserID string `json:"user_id"`
	Month  string `json:"month"` // YYYY-MM
}

func (r MonthlyPayrollRequest) Validate() error {
	var errs validator.ValidationErrors
	if validator.IsEmpty(r.UserID) {
		errs = append(errs, validator.ValidationError{Field: "user_id", Message: "user_id is required"})
	}
	if !monthRegex.MatchString(r.Month) {
		errs = append(errs, validator.ValidationError{Field: "month", Message: "month must be in YYYY-MM format"})
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// OrgPayrollRequest asks for every employee's breakdown for one month.
type OrgPayrollRequest struct {
	Month string `json:"month"`
}

func (r OrgPayrollRequest) Validate() error {
	var errs validator.ValidationErrors
	if !monthRegex.MatchString(r.Month) {
		errs = append(errs, validator.ValidationError{Field: "month", Message: "month must be in YYYY-MM format"})
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// BreakdownResponse is the HTTP shape of a Breakdown.
type BreakdownResponse struct {
	UserID        string          `json:"user_id"`
	UserName      string          `json:"user_name,omitempty"`
	Month         string          `json:"month"`
	TotalSalary   decimal.Decimal `json:"total_salary"`
	RegularPay    decimal.Decimal `json:"regular_pay"`
	OvertimePay   decimal.Decimal `json:"overtime_pay"`
	NightShiftPay decimal.Decimal `json:"night_shift_pay"`
	SickLeavePay  decimal.Decimal `json:"sick_leave_pay"`
	Bonuses       decimal.Decimal `json:"bonuses"`
	Fines         decimal.Decimal `json:"fines"`
	Details       DetailsResponse `json:"details"`
}

type DetailsResponse struct {
	RegularHours    float64 `json:"regular_hours"`
	OvertimeHours   float64 `json:"overtime_hours"`
	NightShiftCount int     `json:"night_shift_count"`
	SickDays        int     `json:"sick_days"`
	WorkedDays      int     `json:"worked_days"`
}

// ToResponse converts a Breakdown for the HTTP layer.
func (b Breakdown) ToResponse(userName string) BreakdownResponse {
	return BreakdownResponse{
		UserID:        b.UserID,
		UserName:      userName,
		Month:         b.Month,
		TotalSalary:   b.Total,
		RegularPay:    b.Regular,
		OvertimePay:   b.Overtime,
		NightShiftPay: b.NightShift,
		SickLeavePay:  b.SickLeave,
		Bonuses:       b.Bonuses,
		Fines:         b.Fines,
		Details: DetailsResponse{
			RegularHours:    b.Details.RegularHours,
			OvertimeHours:   b.Details.OvertimeHours,
			NightShiftCount: b.Details.NightShiftCount,
			SickDays:        b.Details.SickDays,
			WorkedDays:      b.Details.WorkedDays,
		},
	}
}
