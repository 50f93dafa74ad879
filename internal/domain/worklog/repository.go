package worklog

import "context"

// Repository is the persistence collaborator for the log collection. All
// methods take orgID to prevent cross-organization access. Calls are
// fallible and possibly unreachable; services keep optimistic local state
// and reconcile later.
type Repository interface {
	// GetByMonth loads one organization-month, newest first.
	GetByMonth(ctx context.Context, orgID string, month string) ([]WorkLog, error)

	// GetByUserAndMonth loads one employee-month, newest first.
	GetByUserAndMonth(ctx context.Context, userID string, orgID string, month string) ([]WorkLog, error)

	// GetByUserAndDate loads every entry occupying one employee-day.
	GetByUserAndDate(ctx context.Context, userID string, date string, orgID string) ([]WorkLog, error)

	// GetByID retrieves a single entry.
	GetByID(ctx context.Context, id string, orgID string) (WorkLog, error)

	// GetOpenSessions returns every open WORK entry in the organization.
	GetOpenSessions(ctx context.Context, orgID string) ([]WorkLog, error)

	// GetOpenSessionsByUser returns the employee's open WORK entries.
	GetOpenSessionsByUser(ctx context.Context, userID string, orgID string) ([]WorkLog, error)

	// BatchUpsert writes logs with replace-by-id semantics.
	BatchUpsert(ctx context.Context, logs []WorkLog, orgID string) error

	// Delete removes a single entry.
	Delete(ctx context.Context, id string, orgID string) error
}
