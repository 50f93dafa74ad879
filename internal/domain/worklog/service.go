package worklog

import "context"

// Service maintains the authoritative log collection and its invariants:
// per employee-day, work and absence entries are mutually exclusive, and
// at most one absence marker exists.
type Service interface {
	// Upsert merges a batch of entries by id. Used for local mutations
	// and for changes propagated from other devices alike.
	Upsert(ctx context.Context, logs []WorkLog) error

	// MarkAbsence creates a closed, zero-duration absence marker. Rejects
	// when the day is occupied or the employee has an open session.
	MarkAbsence(ctx context.Context, req MarkAbsenceRequest) (LogResponse, error)

	// Delete removes an entry by id (admin only).
	Delete(ctx context.Context, logID string) error

	// Correct overwrites duration/fine/bonus on an entry and records the
	// audit trail (admin only).
	Correct(ctx context.Context, req CorrectionRequest) (LogResponse, error)

	// ListMonth returns an organization-month of entries (admin only).
	ListMonth(ctx context.Context, filter MonthFilter) ([]LogResponse, int64, error)

	// GetMyMonth returns the calling employee's month of entries.
	GetMyMonth(ctx context.Context, month string) ([]LogResponse, error)
}
