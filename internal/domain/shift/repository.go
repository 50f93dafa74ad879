package shift

import "context"

// Repository persists the active slot maps. Writes are independent of the
// work-log writes they accompany; either may fail alone, so the maps are
// always recoverable from the log collection by reconciliation.
type Repository interface {
	// GetAll loads every employee's slot map in the organization.
	GetAll(ctx context.Context, orgID string) (map[string]SlotMap, error)

	// Get loads one employee's slot map; an empty map when none is stored.
	Get(ctx context.Context, userID string, orgID string) (SlotMap, error)

	// Save stores one employee's slot map wholesale.
	Save(ctx context.Context, userID string, slots SlotMap, orgID string) error
}
