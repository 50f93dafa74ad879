package notification

import "time"

// Type classifies a notification.
type Type string

const (
	TypeShiftStarted    Type = "shift_started"
	TypeShiftStopped    Type = "shift_stopped"
	TypeShiftForced     Type = "shift_force_finished"
	TypeOvertimeAlert   Type = "overtime_alert"
	TypeAbsenceMarked   Type = "absence_marked"
	TypeLogCorrected    Type = "log_corrected"
	TypePayrollComputed Type = "payroll_computed"
)

// Notification is a best-effort message to a user. Delivery failure is
// silently ignored; nothing in the shift lifecycle depends on it.
type Notification struct {
	ID             string
	OrganizationID string
	RecipientID    string
	Type           Type
	Title          string
	Message        string
	Data           map[string]interface{}
	IsRead         bool
	ReadAt         *time.Time
	CreatedAt      time.Time
}
