package payroll

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/crewclock/crewclock-backend-go/internal/domain/organization"
	"github.com/crewclock/crewclock-backend-go/internal/domain/payroll"
	"github.com/crewclock/crewclock-backend-go/internal/domain/position"
	"github.com/crewclock/crewclock-backend-go/internal/domain/user"
	"github.com/crewclock/crewclock-backend-go/internal/domain/worklog"
	"github.com/crewclock/crewclock-backend-go/internal/pkg/policy"
	"github.com/go-chi/jwtauth/v5"
	"github.com/shopspring/decimal"
)

type PayrollServiceImpl struct {
	worklogRepo  worklog.Repository
	userRepo     user.Repository
	positionRepo position.Repository
	orgRepo      organization.Repository
	policy       policy.Evaluator
}

func NewPayrollService(
	worklogRepo worklog.Repository,
	userRepo user.Repository,
	positionRepo position.Repository,
	orgRepo organization.Repository,
	pol policy.Evaluator,
) payroll.Service {
	return &PayrollServiceImpl{
		worklogRepo:  worklogRepo,
		userRepo:     userRepo,
		positionRepo: positionRepo,
		orgRepo:      orgRepo,
		policy:       pol,
	}
}

var (
	sixty        = decimal.NewFromInt(60)
	monthlyHours = decimal.NewFromInt(payroll.AssumedMonthlyHours)
)

// resolveConfig applies the override chain: employee -> position -> default.
func resolveConfig(u user.User, pos *position.Position) payroll.Config {
	if u.PayrollOverride != nil {
		return *u.PayrollOverride
	}
	if pos != nil && pos.DefaultPayroll != nil {
		return *pos.DefaultPayroll
	}
	return payroll.DefaultConfig()
}

// rateFor resolves the pay rate for one log: a per-machine override wins
// over the config's base rate.
func rateFor(cfg payroll.Config, log worklog.WorkLog) decimal.Decimal {
	if log.MachineID != nil {
		if r, ok := cfg.MachineRates[*log.MachineID]; ok {
			return r
		}
	}
	return cfg.Rate
}

func roundHours(minutes int64) float64 {
	return math.Round(float64(minutes)/60*10) / 10
}

// ComputeMonthlyPayroll implements payroll.Service. Pure: it touches no
// storage and is deterministic in its inputs.
func (s *PayrollServiceImpl) ComputeMonthlyPayroll(u user.User, monthLogs []worklog.WorkLog, pos *position.Position) payroll.Breakdown {
	cfg := resolveConfig(u, pos)

	standard := payroll.StandardShiftMinutes
	if pos != nil {
		standard = pos.StandardShiftMinutes()
	}
	standardDec := decimal.NewFromInt(int64(standard))
	standardHours := standardDec.Div(sixty)

	var (
		regularPay  = decimal.Zero
		overtimePay = decimal.Zero
		nightPay    = decimal.Zero
		sickPay     = decimal.Zero
		bonuses     = decimal.Zero
		fines       = decimal.Zero

		regularMinutes  int64
		overtimeMinutes int64
		nightCount      int
		sickDays        int
		workedDates     = make(map[string]bool)
	)

	for _, log := range monthLogs {
		if !log.EntryType.Known() {
			continue
		}

		switch log.EntryType {
		case worklog.EntryWork:
			duration := int64(log.DurationMinutes)
			regular := duration
			if regular > int64(standard) {
				regular = int64(standard)
			}
			overtime := duration - int64(standard)
			if overtime < 0 {
				overtime = 0
			}
			regularMinutes += regular
			overtimeMinutes += overtime
			workedDates[log.Date] = true

			rate := rateFor(cfg, log)
			overtimeHours := decimal.NewFromInt(overtime).Div(sixty)

			switch cfg.Type {
			case payroll.PayTypeHourly:
				regularPay = regularPay.Add(decimal.NewFromInt(regular).Div(sixty).Mul(rate))
				overtimePay = overtimePay.Add(overtimeHours.Mul(rate).Mul(cfg.OvertimeMultiplier))
			case payroll.PayTypeShift:
				// Flat rate per worked log; overtime at the hourly rate
				// implied by the shift rate.
				regularPay = regularPay.Add(rate)
				if overtime > 0 && standardHours.IsPositive() {
					implied := rate.Div(standardHours)
					overtimePay = overtimePay.Add(overtimeHours.Mul(implied).Mul(cfg.OvertimeMultiplier))
				}
			case payroll.PayTypeFixed:
				// Hours accumulate for reporting; pay is settled after
				// the loop from the flat monthly rate.
			}

			if log.IsNightShift {
				nightCount++
				nightPay = nightPay.Add(cfg.NightShiftBonus)
			}

		case worklog.EntrySick:
			sickDays++
			sickPay = sickPay.Add(cfg.SickLeaveRate)

		case worklog.EntryVacation, worklog.EntryDayOff:
			// Occupy the day; no pay contribution.
		}

		if log.Fine != nil {
			fines = fines.Add(*log.Fine)
		}
		if log.Bonus != nil {
			bonuses = bonuses.Add(*log.Bonus)
		}
	}

	if cfg.Type == payroll.PayTypeFixed {
		regularPay = cfg.Rate
		overtimeHours := decimal.NewFromInt(overtimeMinutes).Div(sixty)
		overtimePay = overtimeHours.Mul(cfg.Rate.Div(monthlyHours)).Mul(cfg.OvertimeMultiplier)
	}

	total := regularPay.Add(overtimePay).Add(nightPay).Add(sickPay).Add(bonuses).Sub(fines).Round(2)
	if total.IsNegative() {
		total = decimal.Zero
	}

	return payroll.Breakdown{
		UserID:     u.ID,
		Total:      total,
		Regular:    regularPay.Round(2),
		Overtime:   overtimePay.Round(2),
		NightShift: nightPay.Round(2),
		SickLeave:  sickPay.Round(2),
		Bonuses:    bonuses.Round(2),
		Fines:      fines.Round(2),
		Details: payroll.BreakdownDetails{
			RegularHours:    roundHours(regularMinutes),
			OvertimeHours:   roundHours(overtimeMinutes),
			NightShiftCount: nightCount,
			SickDays:        sickDays,
			WorkedDays:      len(workedDates),
		},
	}
}

func claimsFromContext(ctx context.Context) (orgID, userID string, isAdmin bool, err error) {
	_, claims, err := jwtauth.FromContext(ctx)
	if err != nil {
		return "", "", false, fmt.Errorf("failed to extract claims from context: %w", err)
	}

	orgID, ok := claims["org_id"].(string)
	if !ok || orgID == "" {
		return "", "", false, fmt.Errorf("org_id claim is missing or invalid")
	}

	userID, _ = claims["user_id"].(string)
	isAdmin, _ = claims["is_admin"].(bool)

	return orgID, userID, isAdmin, nil
}

// canViewAll answers whether the caller may read payroll beyond their
// own: organization admins pass outright, everyone else is answered by
// the policy evaluator against their position.
func (s *PayrollServiceImpl) canViewAll(ctx context.Context) error {
	orgID, userID, isAdmin, err := claimsFromContext(ctx)
	if err != nil {
		return err
	}
	if isAdmin {
		return nil
	}

	u, err := s.userRepo.GetByID(ctx, userID, orgID)
	if err != nil {
		return user.ErrAdminPrivilegeRequired
	}
	org, err := s.orgRepo.GetByID(ctx, orgID)
	if err != nil {
		return err
	}

	var pos *position.Position
	if u.PositionID != nil {
		p, err := s.positionRepo.GetByID(ctx, *u.PositionID, orgID)
		if err != nil && !errors.Is(err, position.ErrPositionNotFound) {
			return err
		}
		if err == nil {
			pos = &p
		}
	}

	if d := s.policy.CanPerform(org, pos, policy.ActionPayrollViewAll); !d.Allowed {
		return user.ErrAdminPrivilegeRequired
	}
	return nil
}

// GetMonthlyPayroll implements payroll.Service.
func (s *PayrollServiceImpl) GetMonthlyPayroll(ctx context.Context, req payroll.MonthlyPayrollRequest) (payroll.BreakdownResponse, error) {
	if err := req.Validate(); err != nil {
		return payroll.BreakdownResponse{}, err
	}

	orgID, callerID, _, err := claimsFromContext(ctx)
	if err != nil {
		return payroll.BreakdownResponse{}, err
	}
	if req.UserID != callerID {
		if err := s.canViewAll(ctx); err != nil {
			return payroll.BreakdownResponse{}, err
		}
	}

	u, err := s.userRepo.GetByID(ctx, req.UserID, orgID)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return payroll.BreakdownResponse{}, payroll.ErrUserNotFound
		}
		return payroll.BreakdownResponse{}, err
	}

	var pos *position.Position
	if u.PositionID != nil {
		p, err := s.positionRepo.GetByID(ctx, *u.PositionID, orgID)
		if err != nil && !errors.Is(err, position.ErrPositionNotFound) {
			return payroll.BreakdownResponse{}, err
		}
		if err == nil {
			pos = &p
		}
	}

	logs, err := s.worklogRepo.GetByUserAndMonth(ctx, req.UserID, orgID, req.Month)
	if err != nil {
		return payroll.BreakdownResponse{}, fmt.Errorf("failed to load month logs: %w", err)
	}

	breakdown := s.ComputeMonthlyPayroll(u, logs, pos)
	breakdown.Month = req.Month
	return breakdown.ToResponse(u.FullName), nil
}

// GetOrgPayroll implements payroll.Service.
func (s *PayrollServiceImpl) GetOrgPayroll(ctx context.Context, req payroll.OrgPayrollRequest) ([]payroll.BreakdownResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	orgID, _, _, err := claimsFromContext(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.canViewAll(ctx); err != nil {
		return nil, err
	}

	users, err := s.userRepo.List(ctx, orgID)
	if err != nil {
		return nil, err
	}

	monthLogs, err := s.worklogRepo.GetByMonth(ctx, orgID, req.Month)
	if err != nil {
		return nil, fmt.Errorf("failed to load month logs: %w", err)
	}

	byUser := make(map[string][]worklog.WorkLog)
	for _, l := range monthLogs {
		byUser[l.UserID] = append(byUser[l.UserID], l)
	}

	positions := make(map[string]*position.Position)
	out := make([]payroll.BreakdownResponse, 0, len(users))
	for _, u := range users {
		var pos *position.Position
		if u.PositionID != nil {
			if cached, ok := positions[*u.PositionID]; ok {
				pos = cached
			} else {
				p, err := s.positionRepo.GetByID(ctx, *u.PositionID, orgID)
				if err == nil {
					pos = &p
				}
				positions[*u.PositionID] = pos
			}
		}

		breakdown := s.ComputeMonthlyPayroll(u, byUser[u.ID], pos)
		breakdown.Month = req.Month
		out = append(out, breakdown.ToResponse(u.FullName))
	}

	return out, nil
}
