package shift

import (
	"github.com/crewclock/crewclock-backend-go/internal/domain/worklog"
	"github.com/crewclock/crewclock-backend-go/internal/pkg/validator"
)

// StartSessionRequest opens a work session in one slot.
type StartSessionRequest struct {
	Slot       int     `json:"slot"`
	MachineID  *string `json:"machine_id,omitempty"`
	NightMode  bool    `json:"night_mode"`
	PhotoInURL *string `json:"photo_in_url,omitempty"`
}

func (r StartSessionRequest) Validate() error {
	var errs validator.ValidationErrors
	if !ValidSlot(r.Slot) {
		errs = append(errs, validator.ValidationError{Field: "slot", Message: "slot must be between 1 and 3"})
	}
	if r.MachineID != nil && validator.IsEmpty(*r.MachineID) {
		errs = append(errs, validator.ValidationError{Field: "machine_id", Message: "machine_id must not be blank"})
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// StopSessionRequest closes the session in one slot.
type StopSessionRequest struct {
	Slot        int     `json:"slot"`
	PhotoOutURL *string `json:"photo_out_url,omitempty"`
}

func (r StopSessionRequest) Validate() error {
	var errs validator.ValidationErrors
	if !ValidSlot(r.Slot) {
		errs = append(errs, validator.ValidationError{Field: "slot", Message: "slot must be between 1 and 3"})
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// SessionResponse describes one slot after a lifecycle operation.
type SessionResponse struct {
	Slot int                 `json:"slot"`
	Log  worklog.LogResponse `json:"log"`
	// SyncPending is set when the optimistic local change could not yet
	// be persisted; the state is kept and retried on reconciliation.
	SyncPending bool `json:"sync_pending,omitempty"`
}

// SlotMapResponse is the HTTP shape of one employee's slot map.
type SlotMapResponse struct {
	UserID string         `json:"user_id"`
	Slots  map[int]string `json:"slots"`
}
