package payroll

import (
	"fmt"
	"testing"

	"github.com/crewclock/crewclock-backend-go/internal/domain/payroll"
	"github.com/crewclock/crewclock-backend-go/internal/domain/position"
	"github.com/crewclock/crewclock-backend-go/internal/domain/user"
	"github.com/crewclock/crewclock-backend-go/internal/domain/worklog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func hourlyConfig(rate float64) *payroll.Config {
	return &payroll.Config{
		Type:               payroll.PayTypeHourly,
		Rate:               decimal.NewFromFloat(rate),
		OvertimeMultiplier: decimal.NewFromFloat(1.5),
	}
}

func testUser(cfg *payroll.Config) user.User {
	return user.User{ID: "emp-1", OrganizationID: "org-1", FullName: "Test Employee", PayrollOverride: cfg}
}

func workLog(minutes int) worklog.WorkLog {
	return worklog.WorkLog{
		ID:              "emp-1-1700000000000-s1",
		UserID:          "emp-1",
		Date:            "2026-08-03",
		EntryType:       worklog.EntryWork,
		DurationMinutes: minutes,
	}
}

func newCalc() *PayrollServiceImpl {
	return &PayrollServiceImpl{}
}

func TestComputeMonthlyPayroll_HourlyWithOvertime(t *testing.T) {
	svc := newCalc()

	// 600 minutes against a 480-minute standard shift: 8h regular at 500
	// plus 2h overtime at 500 x 1.5.
	b := svc.ComputeMonthlyPayroll(testUser(hourlyConfig(500)), []worklog.WorkLog{workLog(600)}, nil)

	assert.Equal(t, "4000", b.Regular.String())
	assert.Equal(t, "1500", b.Overtime.String())
	assert.Equal(t, "5500", b.Total.String())
	assert.Equal(t, 8.0, b.Details.RegularHours)
	assert.Equal(t, 2.0, b.Details.OvertimeHours)
	assert.Equal(t, 1, b.Details.WorkedDays)
}

func TestComputeMonthlyPayroll_HourlyUnderStandard(t *testing.T) {
	svc := newCalc()

	b := svc.ComputeMonthlyPayroll(testUser(hourlyConfig(500)), []worklog.WorkLog{workLog(240)}, nil)

	assert.Equal(t, "2000", b.Regular.String())
	assert.True(t, b.Overtime.IsZero())
	assert.Equal(t, "2000", b.Total.String())
}

func TestComputeMonthlyPayroll_ShiftRate(t *testing.T) {
	svc := newCalc()

	// Shift pay is flat per worked log; overtime is priced at the hourly
	// rate the shift rate implies: 1000 / 8h = 125, 1h x 125 x 1.5.
	cfg := &payroll.Config{
		Type:               payroll.PayTypeShift,
		Rate:               decimal.NewFromInt(1000),
		OvertimeMultiplier: decimal.NewFromFloat(1.5),
	}

	b := svc.ComputeMonthlyPayroll(testUser(cfg), []worklog.WorkLog{workLog(540)}, nil)

	assert.Equal(t, "1000", b.Regular.String())
	assert.Equal(t, "187.5", b.Overtime.String())
	assert.Equal(t, "1187.5", b.Total.String())
}

func TestComputeMonthlyPayroll_ShiftRateShortDay(t *testing.T) {
	svc := newCalc()

	cfg := &payroll.Config{
		Type:               payroll.PayTypeShift,
		Rate:               decimal.NewFromInt(1000),
		OvertimeMultiplier: decimal.NewFromFloat(1.5),
	}

	// A short day still earns the full shift rate.
	b := svc.ComputeMonthlyPayroll(testUser(cfg), []worklog.WorkLog{workLog(300)}, nil)

	assert.Equal(t, "1000", b.Regular.String())
	assert.True(t, b.Overtime.IsZero())
}

func TestComputeMonthlyPayroll_FixedSalary(t *testing.T) {
	svc := newCalc()

	// Fixed pay is the flat monthly rate regardless of how many logs
	// exist; overtime derives an hourly rate from 160 assumed hours.
	cfg := &payroll.Config{
		Type:               payroll.PayTypeFixed,
		Rate:               decimal.NewFromInt(48000),
		OvertimeMultiplier: decimal.NewFromFloat(1.5),
	}

	logs := []worklog.WorkLog{workLog(480), workLog(600)}
	logs[1].ID = "emp-1-1700090000000-s1"
	logs[1].Date = "2026-08-04"

	b := svc.ComputeMonthlyPayroll(testUser(cfg), logs, nil)

	assert.Equal(t, "48000", b.Regular.String())
	// 2h overtime x (48000/160) x 1.5 = 900
	assert.Equal(t, "900", b.Overtime.String())
	assert.Equal(t, "48900", b.Total.String())
	assert.Equal(t, 2, b.Details.WorkedDays)
}

func TestComputeMonthlyPayroll_FixedSalaryNoLogs(t *testing.T) {
	svc := newCalc()

	cfg := &payroll.Config{
		Type:               payroll.PayTypeFixed,
		Rate:               decimal.NewFromInt(48000),
		OvertimeMultiplier: decimal.NewFromFloat(1.5),
	}

	b := svc.ComputeMonthlyPayroll(testUser(cfg), nil, nil)

	assert.Equal(t, "48000", b.Regular.String())
	assert.Equal(t, "48000", b.Total.String())
}

func TestComputeMonthlyPayroll_NightShiftBonus(t *testing.T) {
	svc := newCalc()

	cfg := hourlyConfig(500)
	cfg.NightShiftBonus = decimal.NewFromInt(200)

	night := workLog(480)
	night.IsNightShift = true

	b := svc.ComputeMonthlyPayroll(testUser(cfg), []worklog.WorkLog{night}, nil)

	assert.Equal(t, "200", b.NightShift.String())
	assert.Equal(t, 1, b.Details.NightShiftCount)
	assert.Equal(t, "4200", b.Total.String())
}

func TestComputeMonthlyPayroll_SickDays(t *testing.T) {
	svc := newCalc()

	cfg := hourlyConfig(500)
	cfg.SickLeaveRate = decimal.NewFromInt(300)

	logs := make([]worklog.WorkLog, 3)
	for i := range logs {
		logs[i] = worklog.WorkLog{
			ID:        fmt.Sprintf("sick-%d", i+1),
			UserID:    "emp-1",
			EntryType: worklog.EntrySick,
			Date:      fmt.Sprintf("2026-08-0%d", i+1),
		}
	}

	b := svc.ComputeMonthlyPayroll(testUser(cfg), logs, nil)

	assert.Equal(t, 3, b.Details.SickDays)
	assert.Equal(t, "900", b.SickLeave.String())
	assert.Equal(t, "900", b.Total.String())
}

func TestComputeMonthlyPayroll_FinesAndBonuses(t *testing.T) {
	svc := newCalc()

	fine := decimal.NewFromInt(500)
	bonus := decimal.NewFromInt(150)

	log := workLog(480)
	log.Fine = &fine
	log.Bonus = &bonus

	b := svc.ComputeMonthlyPayroll(testUser(hourlyConfig(500)), []worklog.WorkLog{log}, nil)

	// Fines reduce the total, never the component figures.
	assert.Equal(t, "4000", b.Regular.String())
	assert.Equal(t, "500", b.Fines.String())
	assert.Equal(t, "150", b.Bonuses.String())
	assert.Equal(t, "3650", b.Total.String())
}

func TestComputeMonthlyPayroll_TotalClampedAtZero(t *testing.T) {
	svc := newCalc()

	fine := decimal.NewFromInt(100000)
	log := workLog(60)
	log.Fine = &fine

	b := svc.ComputeMonthlyPayroll(testUser(hourlyConfig(500)), []worklog.WorkLog{log}, nil)

	assert.True(t, b.Total.IsZero())
	assert.Equal(t, "100000", b.Fines.String())
}

func TestComputeMonthlyPayroll_MachineRateOverride(t *testing.T) {
	svc := newCalc()

	cfg := hourlyConfig(500)
	cfg.MachineRates = map[string]decimal.Decimal{"cnc-1": decimal.NewFromInt(800)}

	machineID := "cnc-1"
	log := workLog(480)
	log.MachineID = &machineID

	b := svc.ComputeMonthlyPayroll(testUser(cfg), []worklog.WorkLog{log}, nil)

	assert.Equal(t, "6400", b.Regular.String())
}

func TestComputeMonthlyPayroll_UnknownEntryTypeIgnored(t *testing.T) {
	svc := newCalc()

	odd := workLog(480)
	odd.EntryType = worklog.EntryType("MYSTERY")

	b := svc.ComputeMonthlyPayroll(testUser(hourlyConfig(500)), []worklog.WorkLog{odd}, nil)

	assert.True(t, b.Total.IsZero())
	assert.Equal(t, 0, b.Details.WorkedDays)
}

func TestComputeMonthlyPayroll_PositionStandardShift(t *testing.T) {
	svc := newCalc()

	// A 360-minute standard shift turns a 480-minute day into 2h overtime.
	pos := &position.Position{
		ID:          "pos-1",
		Permissions: position.Permissions{MaxShiftMinutes: 360},
	}

	b := svc.ComputeMonthlyPayroll(testUser(hourlyConfig(500)), []worklog.WorkLog{workLog(480)}, pos)

	assert.Equal(t, "3000", b.Regular.String())
	assert.Equal(t, "1500", b.Overtime.String())
}

func TestComputeMonthlyPayroll_ConfigResolution(t *testing.T) {
	svc := newCalc()

	posCfg := hourlyConfig(300)
	pos := &position.Position{ID: "pos-1", DefaultPayroll: posCfg}

	// Employee override wins over the position default.
	b := svc.ComputeMonthlyPayroll(testUser(hourlyConfig(500)), []worklog.WorkLog{workLog(60)}, pos)
	assert.Equal(t, "500", b.Regular.String())

	// Without an override the position default applies.
	b = svc.ComputeMonthlyPayroll(testUser(nil), []worklog.WorkLog{workLog(60)}, pos)
	assert.Equal(t, "300", b.Regular.String())

	// Neither set: the default config pays nothing but still counts hours.
	b = svc.ComputeMonthlyPayroll(testUser(nil), []worklog.WorkLog{workLog(60)}, nil)
	assert.True(t, b.Total.IsZero())
	assert.Equal(t, 1.0, b.Details.RegularHours)
}

func TestComputeMonthlyPayroll_OversizedDurationAcceptedLiterally(t *testing.T) {
	svc := newCalc()

	// A corrected 2000-minute day is taken at face value.
	b := svc.ComputeMonthlyPayroll(testUser(hourlyConfig(500)), []worklog.WorkLog{workLog(2000)}, nil)

	assert.Equal(t, "4000", b.Regular.String())
	// 1520 overtime minutes x (500/60) x 1.5
	assert.Equal(t, "19000", b.Overtime.String())
}
