package worklog

import (
	"github.com/crewclock/crewclock-backend-go/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

// MarkAbsenceRequest creates a zero-duration absence marker occupying one
// employee-day.
type MarkAbsenceRequest struct {
	UserID string    `json:"user_id"`
	Date   string    `json:"date"` // YYYY-MM-DD
	Type   EntryType `json:"type"`
}

func (r MarkAbsenceRequest) Validate() error {
	var errs validator.ValidationErrors
	if validator.IsEmpty(r.UserID) {
		errs = append(errs, validator.ValidationError{Field: "user_id", Message: "user_id is required"})
	}
	if _, ok := validator.IsValidDate(r.Date); !ok {
		errs = append(errs, validator.ValidationError{Field: "date", Message: "date must be in YYYY-MM-DD format"})
	}
	if !r.Type.IsAbsence() {
		errs = append(errs, validator.ValidationError{Field: "type", Message: "type must be SICK, VACATION or DAY_OFF"})
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// CorrectionRequest is an administrator edit of an existing entry. Nil
// fields are left untouched.
type CorrectionRequest struct {
	LogID           string           `json:"log_id"`
	DurationMinutes *int             `json:"duration_minutes,omitempty"`
	Fine            *decimal.Decimal `json:"fine,omitempty"`
	Bonus           *decimal.Decimal `json:"bonus,omitempty"`
	Note            string           `json:"note"`
}

func (r CorrectionRequest) Validate() error {
	var errs validator.ValidationErrors
	if validator.IsEmpty(r.LogID) {
		errs = append(errs, validator.ValidationError{Field: "log_id", Message: "log_id is required"})
	}
	if r.DurationMinutes != nil && *r.DurationMinutes < 0 {
		errs = append(errs, validator.ValidationError{Field: "duration_minutes", Message: "duration_minutes must not be negative"})
	}
	if validator.IsEmpty(r.Note) {
		errs = append(errs, validator.ValidationError{Field: "note", Message: "a correction note is required"})
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// MonthFilter selects one employee-month or org-month of entries.
type MonthFilter struct {
	UserID string `json:"user_id,omitempty"`
	Month  string `json:"month"` // YYYY-MM
	Page   int    `json:"page"`
	Limit  int    `json:"limit"`
}

// LogResponse is the HTTP shape of a WorkLog.
type LogResponse struct {
	ID              string           `json:"id"`
	UserID          string           `json:"user_id"`
	Date            string           `json:"date"`
	EntryType       EntryType        `json:"entry_type"`
	MachineID       *string          `json:"machine_id,omitempty"`
	ClockIn         *string          `json:"clock_in,omitempty"`
	ClockOut        *string          `json:"clock_out,omitempty"`
	DurationMinutes int              `json:"duration_minutes"`
	PhotoInURL      *string          `json:"photo_in_url,omitempty"`
	PhotoOutURL     *string          `json:"photo_out_url,omitempty"`
	IsCorrected     bool             `json:"is_corrected"`
	CorrectionNote  *string          `json:"correction_note,omitempty"`
	IsNightShift    bool             `json:"is_night_shift"`
	Fine            *decimal.Decimal `json:"fine,omitempty"`
	Bonus           *decimal.Decimal `json:"bonus,omitempty"`
}

// ToResponse converts a WorkLog for the HTTP layer.
func (l WorkLog) ToResponse() LogResponse {
	resp := LogResponse{
		ID:              l.ID,
		UserID:          l.UserID,
		Date:            l.Date,
		EntryType:       l.EntryType,
		MachineID:       l.MachineID,
		DurationMinutes: l.DurationMinutes,
		PhotoInURL:      l.PhotoInURL,
		PhotoOutURL:     l.PhotoOutURL,
		IsCorrected:     l.IsCorrected,
		CorrectionNote:  l.CorrectionNote,
		IsNightShift:    l.IsNightShift,
		Fine:            l.Fine,
		Bonus:           l.Bonus,
	}
	if l.ClockIn != nil {
		s := l.ClockIn.Format("2006-01-02 15:04:05")
		resp.ClockIn = &s
	}
	if l.ClockOut != nil {
		s := l.ClockOut.Format("2006-01-02 15:04:05")
		resp.ClockOut = &s
	}
	return resp
}
