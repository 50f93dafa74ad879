package shift

import "errors"

// Shift lifecycle errors
var (
	// Start errors
	ErrSlotOccupied         = errors.New("slot already holds an open session")
	ErrSlotOutOfRange       = errors.New("slot index out of range")
	ErrSlotLimitReached     = errors.New("position does not allow more concurrent sessions")
	ErrMachineRequired      = errors.New("this position requires selecting a machine")
	ErrNightShiftNotAllowed = errors.New("position does not allow night shifts")
	ErrPhotoRequired        = errors.New("this position requires a check-in photo")

	// Conflict errors: the losing side of a race must fail loudly instead
	// of silently overwriting committed state.
	ErrSessionConflict = errors.New("session was modified by another device")
)
