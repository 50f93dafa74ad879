package worklog

import "errors"

// Work log domain errors
var (
	// Absence marking errors
	ErrDayOccupied = errors.New("an entry already exists for this employee and day")
	ErrOpenSession = errors.New("employee has an open work session, close it before marking an absence")

	// Correction errors
	ErrDurationTooLarge = errors.New("corrected duration exceeds the configured maximum")

	// General errors
	ErrLogNotFound          = errors.New("work log entry not found")
	ErrSessionAlreadyClosed = errors.New("work session is already closed")
	ErrUnknownEntryType     = errors.New("unknown entry type")

	// ErrSyncPending signals that a persistence write failed and the
	// change is held locally until the next reconciliation pass succeeds.
	ErrSyncPending = errors.New("saved locally, synchronization pending")
)
