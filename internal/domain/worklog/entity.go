package worklog

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// EntryType classifies a log entry as worked time or an absence marker.
type EntryType string

const (
	EntryWork     EntryType = "WORK"
	EntrySick     EntryType = "SICK"
	EntryVacation EntryType = "VACATION"
	EntryDayOff   EntryType = "DAY_OFF"
)

// IsAbsence reports whether the type marks a day without work.
func (t EntryType) IsAbsence() bool {
	return t == EntrySick || t == EntryVacation || t == EntryDayOff
}

// Known reports whether the type is one the system understands. Unknown
// types are carried through storage but ignored by payroll.
func (t EntryType) Known() bool {
	return t == EntryWork || t.IsAbsence()
}

// DateLayout is the calendar-day format used by WorkLog.Date.
const DateLayout = "2006-01-02"

// WorkLog is one worked session or one absence marker. The log collection
// is the source of truth; the active slot map is a projection of it.
type WorkLog struct {
	ID             string
	UserID         string
	OrganizationID string
	Date           string // YYYY-MM-DD
	EntryType      EntryType
	// MachineID is set only for WORK entries of machine-bearing positions.
	MachineID *string
	ClockIn   *time.Time
	// ClockOut absent means the session is still open.
	ClockOut        *time.Time
	DurationMinutes int
	PhotoInURL      *string
	PhotoOutURL     *string
	IsCorrected     bool
	CorrectionNote  *string
	CorrectedAt     *time.Time
	// IsNightShift is fixed at session start and consumed at stop to
	// decide the duration bonus.
	IsNightShift bool
	Fine         *decimal.Decimal
	Bonus        *decimal.Decimal
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// IsOpen reports whether this is a running work session.
func (l WorkLog) IsOpen() bool {
	return l.EntryType == EntryWork && l.ClockIn != nil && l.ClockOut == nil
}

// NewSessionID builds a work-session id encoding the owner, start time
// and slot, so the owning slot survives round-trips through storage.
func NewSessionID(userID string, startedAt time.Time, slot int) string {
	return fmt.Sprintf("%s-%d-s%d", userID, startedAt.UnixMilli(), slot)
}

// SlotFromID recovers the slot index from a session id suffix. Ids
// without a recognizable suffix (absence markers, imported data) map to
// slot 1.
func SlotFromID(id string) int {
	idx := strings.LastIndex(id, "-s")
	if idx < 0 {
		return 1
	}
	slot, err := strconv.Atoi(id[idx+2:])
	if err != nil || slot < 1 || slot > 3 {
		return 1
	}
	return slot
}

// Less orders logs for display: date descending, then clock-in
// descending. Entries without a clock-in sort after those with one on the
// same day.
func Less(a, b WorkLog) bool {
	if a.Date != b.Date {
		return a.Date > b.Date
	}
	switch {
	case a.ClockIn == nil && b.ClockIn == nil:
		return a.ID < b.ID
	case a.ClockIn == nil:
		return false
	case b.ClockIn == nil:
		return true
	default:
		return a.ClockIn.After(*b.ClockIn)
	}
}
