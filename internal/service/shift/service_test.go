package shift

import (
	"testing"
	"time"

	"github.com/crewclock/crewclock-backend-go/internal/domain/machine"
	"github.com/crewclock/crewclock-backend-go/internal/domain/position"
	"github.com/crewclock/crewclock-backend-go/internal/domain/shift"
	"github.com/crewclock/crewclock-backend-go/internal/domain/user"
	"github.com/crewclock/crewclock-backend-go/internal/domain/worklog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func machinePosition() *position.Position {
	return &position.Position{
		ID:             "pos-operator",
		OrganizationID: testOrgID,
		Name:           "Machine Operator",
		Permissions: position.Permissions{
			CanUseMachines:    true,
			MultiSlot:         true,
			NightShiftAllowed: true,
			MaxShiftMinutes:   480,
		},
	}
}

func TestStartSession_OpensLogAndSlot(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := authContext(t, testUserID)

	resp, err := env.svc.StartSession(ctx, shift.StartSessionRequest{Slot: 1})
	require.NoError(t, err)
	assert.False(t, resp.SyncPending)
	assert.Equal(t, 1, resp.Slot)
	assert.Equal(t, worklog.EntryWork, resp.Log.EntryType)
	assert.NotNil(t, resp.Log.ClockIn)

	slots := env.slots.slots[testUserID]
	require.Len(t, slots, 1)
	assert.Equal(t, resp.Log.ID, slots[1])

	stored, ok := env.logs.logs[resp.Log.ID]
	require.True(t, ok)
	assert.True(t, stored.IsOpen())
}

func TestStartSession_SlotAlreadyOccupied(t *testing.T) {
	env := newTestEnv(t, machinePosition())
	ctx := authContext(t, testUserID)

	_, err := env.svc.StartSession(ctx, shift.StartSessionRequest{Slot: 1, MachineID: strPtr(env, "m1")})
	require.NoError(t, err)

	_, err = env.svc.StartSession(ctx, shift.StartSessionRequest{Slot: 1, MachineID: strPtr(env, "m2")})
	assert.ErrorIs(t, err, shift.ErrSlotOccupied)
}

func TestStartSession_SlotLimitWithoutMultiSlot(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := authContext(t, testUserID)

	_, err := env.svc.StartSession(ctx, shift.StartSessionRequest{Slot: 1})
	require.NoError(t, err)

	_, err = env.svc.StartSession(ctx, shift.StartSessionRequest{Slot: 2})
	assert.ErrorIs(t, err, shift.ErrSlotLimitReached)
}

func TestStartSession_MachineExclusivity(t *testing.T) {
	env := newTestEnv(t, machinePosition())

	// Second employee with the same position.
	posID := "pos-operator"
	env.users.users["emp-2"] = user.User{ID: "emp-2", OrganizationID: testOrgID, FullName: "Second", PositionID: &posID}

	machineID := strPtr(env, "m1")
	_, err := env.svc.StartSession(authContext(t, testUserID), shift.StartSessionRequest{Slot: 1, MachineID: machineID})
	require.NoError(t, err)

	_, err = env.svc.StartSession(authContext(t, "emp-2"), shift.StartSessionRequest{Slot: 1, MachineID: machineID})
	assert.ErrorIs(t, err, machine.ErrMachineBusy)
}

func TestStartSession_StaleSessionReleasesMachine(t *testing.T) {
	env := newTestEnv(t, machinePosition())

	machineID := strPtr(env, "m1")

	// A crashed device left an open session older than the staleness
	// window. It must not hold the machine forever.
	staleIn := env.clock.Now().Add(-25 * time.Hour)
	env.logs.logs["stale-1"] = worklog.WorkLog{
		ID:             "stale-1",
		UserID:         "emp-ghost",
		OrganizationID: testOrgID,
		Date:           staleIn.Format(worklog.DateLayout),
		EntryType:      worklog.EntryWork,
		MachineID:      machineID,
		ClockIn:        &staleIn,
	}

	_, err := env.svc.StartSession(authContext(t, testUserID), shift.StartSessionRequest{Slot: 1, MachineID: machineID})
	assert.NoError(t, err)
}

func TestStartSession_MachineRequired(t *testing.T) {
	env := newTestEnv(t, machinePosition())

	_, err := env.svc.StartSession(authContext(t, testUserID), shift.StartSessionRequest{Slot: 1})
	assert.ErrorIs(t, err, shift.ErrMachineRequired)
}

func TestStartSession_AbsenceDayRejected(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := authContext(t, testUserID)

	today := env.clock.Now().Format(worklog.DateLayout)
	env.logs.logs["absence-1"] = worklog.WorkLog{
		ID:             "absence-1",
		UserID:         testUserID,
		OrganizationID: testOrgID,
		Date:           today,
		EntryType:      worklog.EntrySick,
	}

	_, err := env.svc.StartSession(ctx, shift.StartSessionRequest{Slot: 1})
	assert.ErrorIs(t, err, worklog.ErrDayOccupied)
}

func TestStartSession_WriteFailureKeepsOptimisticState(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := authContext(t, testUserID)

	env.logs.failWrite = true

	resp, err := env.svc.StartSession(ctx, shift.StartSessionRequest{Slot: 1})
	require.NoError(t, err)
	assert.True(t, resp.SyncPending)

	// The slot map write is independent and still succeeded.
	assert.Equal(t, resp.Log.ID, env.slots.slots[testUserID][1])
}

func TestStopSession_ClosesAndFreesSlot(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := authContext(t, testUserID)

	started, err := env.svc.StartSession(ctx, shift.StartSessionRequest{Slot: 1})
	require.NoError(t, err)

	env.clock.Advance(8 * time.Hour)

	stopped, err := env.svc.StopSession(ctx, shift.StopSessionRequest{Slot: 1})
	require.NoError(t, err)
	require.NotNil(t, stopped)
	assert.Equal(t, 480, stopped.Log.DurationMinutes)

	stored := env.logs.logs[started.Log.ID]
	assert.False(t, stored.IsOpen())
	assert.Empty(t, env.slots.slots[testUserID])
}

func TestStopSession_EmptySlotIsNoOp(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := authContext(t, testUserID)

	resp, err := env.svc.StopSession(ctx, shift.StopSessionRequest{Slot: 1})
	assert.NoError(t, err)
	assert.Nil(t, resp)
}

func TestStopSession_SecondStopIsNoOp(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := authContext(t, testUserID)

	_, err := env.svc.StartSession(ctx, shift.StartSessionRequest{Slot: 1})
	require.NoError(t, err)

	_, err = env.svc.StopSession(ctx, shift.StopSessionRequest{Slot: 1})
	require.NoError(t, err)

	resp, err := env.svc.StopSession(ctx, shift.StopSessionRequest{Slot: 1})
	assert.NoError(t, err)
	assert.Nil(t, resp)
}

func TestStopSession_ClosedElsewhereConflicts(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := authContext(t, testUserID)

	started, err := env.svc.StartSession(ctx, shift.StartSessionRequest{Slot: 1})
	require.NoError(t, err)

	// Another device closed the session directly in storage.
	now := env.clock.Now()
	l := env.logs.logs[started.Log.ID]
	l.ClockOut = &now
	env.logs.logs[l.ID] = l

	_, err = env.svc.StopSession(ctx, shift.StopSessionRequest{Slot: 1})
	assert.ErrorIs(t, err, shift.ErrSessionConflict)

	// The stale slot was cleaned up; the next stop is a plain no-op.
	assert.Empty(t, env.slots.slots[testUserID])
	resp, err := env.svc.StopSession(ctx, shift.StopSessionRequest{Slot: 1})
	assert.NoError(t, err)
	assert.Nil(t, resp)
}

func TestStopSession_ZeroDurationRoundTrip(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := authContext(t, testUserID)

	_, err := env.svc.StartSession(ctx, shift.StartSessionRequest{Slot: 1})
	require.NoError(t, err)

	// Immediate checkout is legal and yields a zero-minute log.
	stopped, err := env.svc.StopSession(ctx, shift.StopSessionRequest{Slot: 1})
	require.NoError(t, err)
	require.NotNil(t, stopped)
	assert.Equal(t, 0, stopped.Log.DurationMinutes)
}

func TestStopSession_NightBonusMinutes(t *testing.T) {
	env := newTestEnv(t, machinePosition())
	ctx := authContext(t, testUserID)

	_, err := env.svc.StartSession(ctx, shift.StartSessionRequest{Slot: 1, MachineID: strPtr(env, "m1"), NightMode: true})
	require.NoError(t, err)

	// Zero elapsed time still earns the organization's 60 bonus minutes.
	stopped, err := env.svc.StopSession(ctx, shift.StopSessionRequest{Slot: 1})
	require.NoError(t, err)
	require.NotNil(t, stopped)
	assert.Equal(t, 60, stopped.Log.DurationMinutes)
	assert.True(t, stopped.Log.IsNightShift)
}

func TestForceFinish_ClosesAndMarksCorrected(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := authContext(t, testUserID)

	started, err := env.svc.StartSession(ctx, shift.StartSessionRequest{Slot: 1})
	require.NoError(t, err)

	env.clock.Advance(2 * time.Hour)

	finished, err := env.svc.ForceFinish(ctx, started.Log.ID)
	require.NoError(t, err)
	assert.Equal(t, 120, finished.Log.DurationMinutes)
	assert.True(t, finished.Log.IsCorrected)
	require.NotNil(t, finished.Log.CorrectionNote)
	assert.Contains(t, *finished.Log.CorrectionNote, testUserID)
	assert.Empty(t, env.slots.slots[testUserID])

	_, err = env.svc.ForceFinish(ctx, started.Log.ID)
	assert.ErrorIs(t, err, worklog.ErrSessionAlreadyClosed)
}

func TestReconcile_RebuildsFromOpenLogs(t *testing.T) {
	env := newTestEnv(t, machinePosition())
	ctx := authContext(t, testUserID)

	now := env.clock.Now()
	open := worklog.WorkLog{
		ID:             worklog.NewSessionID(testUserID, now, 2),
		UserID:         testUserID,
		OrganizationID: testOrgID,
		Date:           now.Format(worklog.DateLayout),
		EntryType:      worklog.EntryWork,
		ClockIn:        &now,
	}
	closed := worklog.WorkLog{
		ID:              worklog.NewSessionID(testUserID, now.Add(-time.Hour), 1),
		UserID:          testUserID,
		OrganizationID:  testOrgID,
		Date:            now.Format(worklog.DateLayout),
		EntryType:       worklog.EntryWork,
		ClockIn:         &now,
		ClockOut:        &now,
		DurationMinutes: 60,
	}

	// The stored map wrongly still references the closed session.
	env.slots.slots[testUserID] = shift.SlotMap{1: closed.ID}

	rebuilt, err := env.svc.Reconcile(ctx, testUserID, []worklog.WorkLog{open, closed})
	require.NoError(t, err)

	// The closed session never comes back; the open one lands in the
	// slot its id names.
	assert.Equal(t, shift.SlotMap{2: open.ID}, rebuilt)
	assert.Equal(t, rebuilt, env.slots.slots[testUserID])
}

func TestReconcile_CollisionFallsToNextFreeSlot(t *testing.T) {
	env := newTestEnv(t, machinePosition())
	ctx := authContext(t, testUserID)

	now := env.clock.Now()
	a := worklog.WorkLog{
		ID: worklog.NewSessionID(testUserID, now, 1), UserID: testUserID,
		OrganizationID: testOrgID, Date: now.Format(worklog.DateLayout),
		EntryType: worklog.EntryWork, ClockIn: &now,
	}
	// Same slot suffix as a: both parse to slot 1.
	b := worklog.WorkLog{
		ID: worklog.NewSessionID(testUserID, now.Add(time.Minute), 1), UserID: testUserID,
		OrganizationID: testOrgID, Date: now.Format(worklog.DateLayout),
		EntryType: worklog.EntryWork, ClockIn: &now,
	}

	rebuilt, err := env.svc.Reconcile(ctx, testUserID, []worklog.WorkLog{a, b})
	require.NoError(t, err)

	require.Len(t, rebuilt, 2)
	assert.NotEqual(t, rebuilt.SlotOf(a.ID), rebuilt.SlotOf(b.ID))
}

func TestBusyMachines_WithinWindowOnly(t *testing.T) {
	env := newTestEnv(t, machinePosition())
	ctx := authContext(t, testUserID)

	machineID := strPtr(env, "m1")
	_, err := env.svc.StartSession(ctx, shift.StartSessionRequest{Slot: 1, MachineID: machineID})
	require.NoError(t, err)

	busy, err := env.svc.BusyMachines(ctx)
	require.NoError(t, err)
	assert.True(t, busy[*machineID])

	// Once the session is older than the staleness window the machine is
	// no longer considered held.
	env.clock.Advance(25 * time.Hour)
	busy, err = env.svc.BusyMachines(ctx)
	require.NoError(t, err)
	assert.False(t, busy[*machineID])
}

func TestMySlots_ReturnsCurrentMap(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := authContext(t, testUserID)

	started, err := env.svc.StartSession(ctx, shift.StartSessionRequest{Slot: 1})
	require.NoError(t, err)

	resp, err := env.svc.MySlots(ctx)
	require.NoError(t, err)
	assert.Equal(t, testUserID, resp.UserID)
	assert.Equal(t, started.Log.ID, resp.Slots[1])
}

func TestOrgSlots_ListsOpenSessionsSorted(t *testing.T) {
	env := newTestEnv(t, nil)

	other := user.User{ID: "emp-2", OrganizationID: testOrgID, FullName: "Second Employee"}
	env.users.users[other.ID] = other

	_, err := env.svc.StartSession(authContext(t, "emp-2"), shift.StartSessionRequest{Slot: 1})
	require.NoError(t, err)
	started, err := env.svc.StartSession(authContext(t, testUserID), shift.StartSessionRequest{Slot: 1})
	require.NoError(t, err)

	out, err := env.svc.OrgSlots(authContext(t, testUserID))
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, testUserID, out[0].UserID)
	assert.Equal(t, "emp-2", out[1].UserID)
	assert.Equal(t, started.Log.ID, out[0].Slots[1])
}

func TestOrgSlots_OmitsEmptyMaps(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := authContext(t, testUserID)

	_, err := env.svc.StartSession(ctx, shift.StartSessionRequest{Slot: 1})
	require.NoError(t, err)
	_, err = env.svc.StopSession(ctx, shift.StopSessionRequest{Slot: 1})
	require.NoError(t, err)

	out, err := env.svc.OrgSlots(ctx)
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestOrgSlots_SnapshotFallback(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := authContext(t, testUserID)

	started, err := env.svc.StartSession(ctx, shift.StartSessionRequest{Slot: 1})
	require.NoError(t, err)

	env.slots.failRead = true
	out, err := env.svc.OrgSlots(ctx)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, started.Log.ID, out[0].Slots[1])
}

// strPtr registers the machine with the fake repo and returns a pointer
// to its id.
func strPtr(env *testEnv, id string) *string {
	env.machines.machines[id] = machine.Machine{ID: id, OrganizationID: testOrgID, Name: id}
	return &id
}
