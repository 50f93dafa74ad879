package shift

import (
	"log/slog"
	"time"
)

// ComputeDuration returns the whole minutes between check-in and
// check-out, floored. A check-out earlier than the check-in is a clock
// anomaly and clamps to zero rather than going negative.
func ComputeDuration(clockIn, clockOut time.Time) int {
	d := clockOut.Sub(clockIn)
	if d < 0 {
		slog.Warn("clock anomaly: check-out before check-in, clamping duration to zero",
			"clock_in", clockIn, "clock_out", clockOut)
		return 0
	}
	return int(d.Minutes())
}

// ApplyNightBonus adds the organization's flat night bonus (minutes) to a
// session's raw duration. The currency-side night bonus is applied by
// payroll, not here.
func ApplyNightBonus(rawMinutes int, isNightShift bool, bonusMinutes int) int {
	if !isNightShift {
		return rawMinutes
	}
	return rawMinutes + bonusMinutes
}
