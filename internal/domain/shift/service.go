package shift

import (
	"context"

	"github.com/crewclock/crewclock-backend-go/internal/domain/worklog"
)

// Service owns the shift lifecycle: whether a check-in/check-out is
// permitted and how the active slot maps track the open sessions.
//
// Per slot: Empty -> Open on StartSession, Open -> Empty on StopSession,
// ForceFinish, or when reconciliation observes a clock-out elsewhere.
type Service interface {
	// StartSession opens a work log in the given slot after checking
	// position policy and machine exclusivity. The busy check is repeated
	// immediately before commit; the later committer of a race loses.
	StartSession(ctx context.Context, req StartSessionRequest) (SessionResponse, error)

	// StopSession closes the slot's open session. A second call on an
	// already-empty slot is a no-op, not an error.
	StopSession(ctx context.Context, req StopSessionRequest) (*SessionResponse, error)

	// ForceFinish closes any employee's open session on their behalf
	// (admin only), marking the log corrected. The machine is freed
	// immediately.
	ForceFinish(ctx context.Context, logID string) (SessionResponse, error)

	// Reconcile rebuilds one employee's slot map from a fresh log batch.
	// Safe to run repeatedly; never resurrects a closed session.
	Reconcile(ctx context.Context, userID string, logs []worklog.WorkLog) (SlotMap, error)

	// AutoAssignSlots proposes a machine per free slot for machine-bearing
	// multi-slot positions, re-evaluated whenever the machine list changes.
	AutoAssignSlots(ctx context.Context, userID string) ([]SlotAssignment, error)

	// BusyMachines returns the ids of machines referenced by open
	// sessions inside the staleness window.
	BusyMachines(ctx context.Context) (map[string]bool, error)

	// MySlots returns the calling employee's slot map.
	MySlots(ctx context.Context) (SlotMapResponse, error)

	// OrgSlots returns every non-empty slot map in the organization,
	// sorted by employee id (admin only).
	OrgSlots(ctx context.Context) ([]SlotMapResponse, error)
}
