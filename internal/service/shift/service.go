package shift

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/crewclock/crewclock-backend-go/internal/domain/machine"
	"github.com/crewclock/crewclock-backend-go/internal/domain/notification"
	"github.com/crewclock/crewclock-backend-go/internal/domain/organization"
	"github.com/crewclock/crewclock-backend-go/internal/domain/position"
	"github.com/crewclock/crewclock-backend-go/internal/domain/shift"
	"github.com/crewclock/crewclock-backend-go/internal/domain/user"
	"github.com/crewclock/crewclock-backend-go/internal/domain/worklog"
	"github.com/crewclock/crewclock-backend-go/internal/pkg/clock"
	"github.com/crewclock/crewclock-backend-go/internal/pkg/policy"
	"github.com/crewclock/crewclock-backend-go/internal/pkg/snapshot"
	"github.com/crewclock/crewclock-backend-go/internal/pkg/sse"
	"github.com/go-chi/jwtauth/v5"
)

type ShiftServiceImpl struct {
	worklogRepo  worklog.Repository
	shiftRepo    shift.Repository
	userRepo     user.Repository
	positionRepo position.Repository
	machineRepo  machine.Repository
	orgRepo      organization.Repository
	policy       policy.Evaluator
	clock        clock.Clock
	hub          *sse.Hub
	notifier     notification.Service
	snapshots    *snapshot.Store
	// staleAfter bounds how long an open session keeps its machine busy.
	staleAfter time.Duration
}

func NewShiftService(
	worklogRepo worklog.Repository,
	shiftRepo shift.Repository,
	userRepo user.Repository,
	positionRepo position.Repository,
	machineRepo machine.Repository,
	orgRepo organization.Repository,
	pol policy.Evaluator,
	clk clock.Clock,
	hub *sse.Hub,
	notifier notification.Service,
	snapshots *snapshot.Store,
	staleAfter time.Duration,
) shift.Service {
	return &ShiftServiceImpl{
		worklogRepo:  worklogRepo,
		shiftRepo:    shiftRepo,
		userRepo:     userRepo,
		positionRepo: positionRepo,
		machineRepo:  machineRepo,
		orgRepo:      orgRepo,
		policy:       pol,
		clock:        clk,
		hub:          hub,
		notifier:     notifier,
		snapshots:    snapshots,
		staleAfter:   staleAfter,
	}
}

// claimsFromContext extracts org and user ids from the JWT claims.
func claimsFromContext(ctx context.Context) (orgID, userID string, err error) {
	_, claims, err := jwtauth.FromContext(ctx)
	if err != nil {
		return "", "", fmt.Errorf("failed to extract claims from context: %w", err)
	}

	orgID, ok := claims["org_id"].(string)
	if !ok || orgID == "" {
		return "", "", fmt.Errorf("org_id claim is missing or invalid")
	}

	userID, ok = claims["user_id"].(string)
	if !ok || userID == "" {
		return "", "", fmt.Errorf("user_id claim is missing or invalid")
	}

	return orgID, userID, nil
}

// loadPosition returns the employee's position, or nil when unassigned.
func (s *ShiftServiceImpl) loadPosition(ctx context.Context, u user.User) (*position.Position, error) {
	if u.PositionID == nil {
		return nil, nil
	}
	pos, err := s.positionRepo.GetByID(ctx, *u.PositionID, u.OrganizationID)
	if err != nil {
		if errors.Is(err, position.ErrPositionNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &pos, nil
}

// busyMachineSet derives the busy machines from the open-session set.
// Sessions older than the staleness window are ignored so a crashed
// client cannot lock a machine forever.
func (s *ShiftServiceImpl) busyMachineSet(ctx context.Context, orgID string, excludeLogID string) (map[string]bool, error) {
	open, err := s.worklogRepo.GetOpenSessions(ctx, orgID)
	if err != nil {
		return nil, fmt.Errorf("failed to derive busy machines: %w", err)
	}

	now := s.clock.Now()
	busy := make(map[string]bool)
	for _, l := range open {
		if l.ID == excludeLogID || l.MachineID == nil || l.ClockIn == nil {
			continue
		}
		if now.Sub(*l.ClockIn) > s.staleAfter {
			continue
		}
		busy[*l.MachineID] = true
	}
	return busy, nil
}

// StartSession implements shift.Service.
func (s *ShiftServiceImpl) StartSession(ctx context.Context, req shift.StartSessionRequest) (shift.SessionResponse, error) {
	if err := req.Validate(); err != nil {
		return shift.SessionResponse{}, err
	}

	orgID, userID, err := claimsFromContext(ctx)
	if err != nil {
		return shift.SessionResponse{}, err
	}

	u, err := s.userRepo.GetByID(ctx, userID, orgID)
	if err != nil {
		return shift.SessionResponse{}, err
	}
	org, err := s.orgRepo.GetByID(ctx, orgID)
	if err != nil {
		return shift.SessionResponse{}, err
	}
	pos, err := s.loadPosition(ctx, u)
	if err != nil {
		return shift.SessionResponse{}, err
	}

	if d := s.policy.CanPerform(org, pos, policy.ActionShiftStart); !d.Allowed {
		return shift.SessionResponse{}, fmt.Errorf("check-in denied: %s", d.Reason)
	}

	slotLimit := 1
	requireMachine := false
	requirePhoto := false
	if pos != nil {
		slotLimit = pos.SlotLimit()
		requireMachine = pos.Permissions.CanUseMachines
		requirePhoto = pos.Permissions.RequirePhoto
	}
	if req.Slot > slotLimit {
		if d := s.policy.CanPerform(org, pos, policy.ActionShiftMultiSlot); !d.Allowed {
			return shift.SessionResponse{}, shift.ErrSlotLimitReached
		}
	}
	if req.NightMode {
		if d := s.policy.CanPerform(org, pos, policy.ActionShiftNight); !d.Allowed {
			return shift.SessionResponse{}, shift.ErrNightShiftNotAllowed
		}
	}
	if requirePhoto && req.PhotoInURL == nil {
		return shift.SessionResponse{}, shift.ErrPhotoRequired
	}

	// Machine selection policy: mandatory for machine-bearing positions,
	// forbidden otherwise.
	if requireMachine {
		if req.MachineID == nil {
			return shift.SessionResponse{}, shift.ErrMachineRequired
		}
		if _, err := s.machineRepo.GetByID(ctx, *req.MachineID, orgID); err != nil {
			return shift.SessionResponse{}, err
		}
	} else if req.MachineID != nil {
		if d := s.policy.CanPerform(org, pos, policy.ActionMachineUse); !d.Allowed {
			return shift.SessionResponse{}, fmt.Errorf("machine selection denied: %s", d.Reason)
		}
	}

	if req.MachineID != nil {
		busy, err := s.busyMachineSet(ctx, orgID, "")
		if err != nil {
			return shift.SessionResponse{}, err
		}
		if busy[*req.MachineID] {
			return shift.SessionResponse{}, machine.ErrMachineBusy
		}
	}

	slots, err := s.shiftRepo.Get(ctx, userID, orgID)
	if err != nil {
		return shift.SessionResponse{}, fmt.Errorf("failed to load slot map: %w", err)
	}
	if _, occupied := slots[req.Slot]; occupied {
		return shift.SessionResponse{}, shift.ErrSlotOccupied
	}
	if slots.OpenCount() >= slotLimit {
		return shift.SessionResponse{}, shift.ErrSlotLimitReached
	}

	now := s.clock.Now()
	date := now.Format(worklog.DateLayout)

	// A day holding an absence marker cannot also hold work.
	dayLogs, err := s.worklogRepo.GetByUserAndDate(ctx, userID, date, orgID)
	if err != nil {
		return shift.SessionResponse{}, fmt.Errorf("failed to check day entries: %w", err)
	}
	for _, l := range dayLogs {
		if l.EntryType.IsAbsence() {
			return shift.SessionResponse{}, worklog.ErrDayOccupied
		}
	}

	log := worklog.WorkLog{
		ID:             worklog.NewSessionID(userID, now, req.Slot),
		UserID:         userID,
		OrganizationID: orgID,
		Date:           date,
		EntryType:      worklog.EntryWork,
		MachineID:      req.MachineID,
		ClockIn:        &now,
		PhotoInURL:     req.PhotoInURL,
		IsNightShift:   req.NightMode,
	}

	// Re-check machine exclusivity immediately before commit. Two
	// employees can pick the same free machine near-simultaneously; the
	// later committer must lose here instead of overwriting.
	if req.MachineID != nil {
		busy, err := s.busyMachineSet(ctx, orgID, log.ID)
		if err != nil {
			return shift.SessionResponse{}, err
		}
		if busy[*req.MachineID] {
			return shift.SessionResponse{}, machine.ErrMachineBusy
		}
	}

	resp := shift.SessionResponse{Slot: req.Slot, Log: log.ToResponse()}

	// Log write and slot-map write are independent operations. Either may
	// fail alone; the slot map is always re-derivable from the logs.
	if err := s.worklogRepo.BatchUpsert(ctx, []worklog.WorkLog{log}, orgID); err != nil {
		slog.Warn("check-in not persisted, keeping optimistic state", "log_id", log.ID, "error", err)
		resp.SyncPending = true
	}

	slots[req.Slot] = log.ID
	if err := s.shiftRepo.Save(ctx, userID, slots, orgID); err != nil {
		slog.Warn("slot map not persisted, reconciliation will rebuild it", "user_id", userID, "error", err)
		resp.SyncPending = true
	}

	s.mirrorSlots(ctx, orgID, userID, slots)
	s.hub.Publish(orgID, sse.Event{Event: "worklog.upserted", Data: log.ToResponse()})
	s.hub.Publish(orgID, sse.Event{Event: "shift.slots_changed", Data: shift.SlotMapResponse{UserID: userID, Slots: slots}})
	s.notifier.Notify(orgID, userID, notification.TypeShiftStarted, "Shift started",
		fmt.Sprintf("%s checked in (slot %d)", u.FullName, req.Slot),
		map[string]interface{}{"log_id": log.ID, "slot": req.Slot})

	return resp, nil
}

// StopSession implements shift.Service. Returns (nil, nil) when the slot
// is already empty: stopping twice must not error or double-close.
func (s *ShiftServiceImpl) StopSession(ctx context.Context, req shift.StopSessionRequest) (*shift.SessionResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	orgID, userID, err := claimsFromContext(ctx)
	if err != nil {
		return nil, err
	}

	slots, err := s.shiftRepo.Get(ctx, userID, orgID)
	if err != nil {
		return nil, fmt.Errorf("failed to load slot map: %w", err)
	}

	logID, held := slots[req.Slot]
	if !held {
		return nil, nil
	}

	log, err := s.worklogRepo.GetByID(ctx, logID, orgID)
	if err != nil {
		if errors.Is(err, worklog.ErrLogNotFound) {
			// The log vanished (deleted elsewhere); drop the dangling slot.
			delete(slots, req.Slot)
			if err := s.shiftRepo.Save(ctx, userID, slots, orgID); err != nil {
				slog.Warn("slot map not persisted after cleanup", "user_id", userID, "error", err)
			}
			return nil, nil
		}
		return nil, err
	}

	if log.ClockOut != nil {
		// Another device already closed this session. Clear the stale
		// slot but fail loudly so the caller knows their stop lost.
		delete(slots, req.Slot)
		if err := s.shiftRepo.Save(ctx, userID, slots, orgID); err != nil {
			slog.Warn("slot map not persisted after conflict cleanup", "user_id", userID, "error", err)
		}
		return nil, shift.ErrSessionConflict
	}

	org, err := s.orgRepo.GetByID(ctx, orgID)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	raw := ComputeDuration(*log.ClockIn, now)
	log.ClockOut = &now
	log.DurationMinutes = ApplyNightBonus(raw, log.IsNightShift, org.NightShiftBonusMinutes)
	log.PhotoOutURL = req.PhotoOutURL

	resp := &shift.SessionResponse{Slot: req.Slot, Log: log.ToResponse()}

	if err := s.worklogRepo.BatchUpsert(ctx, []worklog.WorkLog{log}, orgID); err != nil {
		slog.Warn("check-out not persisted, keeping optimistic state", "log_id", log.ID, "error", err)
		resp.SyncPending = true
	}

	delete(slots, req.Slot)
	if err := s.shiftRepo.Save(ctx, userID, slots, orgID); err != nil {
		slog.Warn("slot map not persisted, reconciliation will rebuild it", "user_id", userID, "error", err)
		resp.SyncPending = true
	}

	s.mirrorSlots(ctx, orgID, userID, slots)
	s.hub.Publish(orgID, sse.Event{Event: "worklog.upserted", Data: log.ToResponse()})
	s.hub.Publish(orgID, sse.Event{Event: "shift.slots_changed", Data: shift.SlotMapResponse{UserID: userID, Slots: slots}})
	s.notifier.Notify(orgID, userID, notification.TypeShiftStopped, "Shift finished",
		fmt.Sprintf("Worked %d minutes", log.DurationMinutes),
		map[string]interface{}{"log_id": log.ID, "slot": req.Slot})

	return resp, nil
}

// ForceFinish implements shift.Service. Administrators may close a shift
// opened on any device of any employee; the machine frees immediately.
func (s *ShiftServiceImpl) ForceFinish(ctx context.Context, logID string) (shift.SessionResponse, error) {
	orgID, adminID, err := claimsFromContext(ctx)
	if err != nil {
		return shift.SessionResponse{}, err
	}

	log, err := s.worklogRepo.GetByID(ctx, logID, orgID)
	if err != nil {
		return shift.SessionResponse{}, err
	}
	if !log.IsOpen() {
		return shift.SessionResponse{}, worklog.ErrSessionAlreadyClosed
	}

	org, err := s.orgRepo.GetByID(ctx, orgID)
	if err != nil {
		return shift.SessionResponse{}, err
	}

	now := s.clock.Now()
	raw := ComputeDuration(*log.ClockIn, now)
	note := fmt.Sprintf("Force-finished by administrator %s", adminID)

	log.ClockOut = &now
	log.DurationMinutes = ApplyNightBonus(raw, log.IsNightShift, org.NightShiftBonusMinutes)
	log.IsCorrected = true
	log.CorrectionNote = &note
	log.CorrectedAt = &now

	if err := s.worklogRepo.BatchUpsert(ctx, []worklog.WorkLog{log}, orgID); err != nil {
		return shift.SessionResponse{}, fmt.Errorf("failed to persist force-finish: %w", err)
	}

	// Clear the owner's slot, whichever slot the session lives in.
	slots, err := s.shiftRepo.Get(ctx, log.UserID, orgID)
	if err == nil {
		slot := slots.SlotOf(log.ID)
		if slot == 0 {
			slot = worklog.SlotFromID(log.ID)
		}
		if _, held := slots[slot]; held && slots[slot] == log.ID {
			delete(slots, slot)
			if err := s.shiftRepo.Save(ctx, log.UserID, slots, orgID); err != nil {
				slog.Warn("slot map not persisted after force-finish", "user_id", log.UserID, "error", err)
			}
			s.mirrorSlots(ctx, orgID, log.UserID, slots)
		}
	} else {
		slog.Warn("failed to load slot map after force-finish, reconciliation will clean up", "user_id", log.UserID, "error", err)
	}

	s.hub.Publish(orgID, sse.Event{Event: "worklog.upserted", Data: log.ToResponse()})
	s.hub.Publish(orgID, sse.Event{Event: "shift.slots_changed", Data: shift.SlotMapResponse{UserID: log.UserID}})
	s.notifier.Notify(orgID, log.UserID, notification.TypeShiftForced, "Shift closed by administrator",
		fmt.Sprintf("Your shift was closed after %d minutes", log.DurationMinutes),
		map[string]interface{}{"log_id": log.ID})

	slot := worklog.SlotFromID(log.ID)
	return shift.SessionResponse{Slot: slot, Log: log.ToResponse()}, nil
}

// Reconcile implements shift.Service. The log batch is authoritative:
// slots pointing at closed or missing logs are cleared, open logs are
// slotted by their id suffix, and a closed log can never come back.
func (s *ShiftServiceImpl) Reconcile(ctx context.Context, userID string, logs []worklog.WorkLog) (shift.SlotMap, error) {
	orgID, _, err := claimsFromContext(ctx)
	if err != nil {
		return nil, err
	}

	current, err := s.shiftRepo.Get(ctx, userID, orgID)
	if err != nil {
		slog.Warn("failed to load slot map for reconciliation, rebuilding from scratch", "user_id", userID, "error", err)
		current = make(shift.SlotMap)
	}

	rebuilt := make(shift.SlotMap)
	for _, l := range logs {
		if l.UserID != userID || !l.IsOpen() {
			continue
		}
		slot := current.SlotOf(l.ID)
		if slot == 0 {
			slot = worklog.SlotFromID(l.ID)
		}
		// Collisions fall through to the first free slot.
		for shift.ValidSlot(slot) && rebuilt[slot] != "" {
			slot++
		}
		if !shift.ValidSlot(slot) {
			for slot = 1; shift.ValidSlot(slot) && rebuilt[slot] != ""; slot++ {
			}
			if !shift.ValidSlot(slot) {
				slog.Warn("more open sessions than slots during reconciliation", "user_id", userID, "log_id", l.ID)
				continue
			}
		}
		rebuilt[slot] = l.ID
	}

	if err := s.shiftRepo.Save(ctx, userID, rebuilt, orgID); err != nil {
		slog.Warn("reconciled slot map not persisted", "user_id", userID, "error", err)
	}
	s.mirrorSlots(ctx, orgID, userID, rebuilt)
	s.hub.Publish(orgID, sse.Event{Event: "shift.slots_changed", Data: shift.SlotMapResponse{UserID: userID, Slots: rebuilt}})

	return rebuilt, nil
}

// AutoAssignSlots implements shift.Service.
func (s *ShiftServiceImpl) AutoAssignSlots(ctx context.Context, userID string) ([]shift.SlotAssignment, error) {
	orgID, _, err := claimsFromContext(ctx)
	if err != nil {
		return nil, err
	}

	u, err := s.userRepo.GetByID(ctx, userID, orgID)
	if err != nil {
		return nil, err
	}
	pos, err := s.loadPosition(ctx, u)
	if err != nil {
		return nil, err
	}
	if pos == nil || !pos.Permissions.CanUseMachines || !pos.Permissions.MultiSlot {
		return nil, nil
	}

	machines, err := s.machineRepo.List(ctx, orgID)
	if err != nil {
		return nil, err
	}
	busy, err := s.busyMachineSet(ctx, orgID, "")
	if err != nil {
		return nil, err
	}
	slots, err := s.shiftRepo.Get(ctx, userID, orgID)
	if err != nil {
		return nil, fmt.Errorf("failed to load slot map: %w", err)
	}

	taken := make(map[string]bool)
	assignments := make([]shift.SlotAssignment, 0, pos.SlotLimit())
	for slot := 1; slot <= pos.SlotLimit(); slot++ {
		if logID, held := slots[slot]; held {
			// Occupied slots keep the machine their session is using.
			if l, err := s.worklogRepo.GetByID(ctx, logID, orgID); err == nil && l.MachineID != nil {
				taken[*l.MachineID] = true
				assignments = append(assignments, shift.SlotAssignment{Slot: slot, MachineID: l.MachineID})
				continue
			}
			assignments = append(assignments, shift.SlotAssignment{Slot: slot})
			continue
		}

		var pick *string
		for _, m := range machines {
			if busy[m.ID] || taken[m.ID] {
				continue
			}
			id := m.ID
			pick = &id
			taken[id] = true
			break
		}
		assignments = append(assignments, shift.SlotAssignment{Slot: slot, MachineID: pick})
	}

	return assignments, nil
}

// BusyMachines implements shift.Service.
func (s *ShiftServiceImpl) BusyMachines(ctx context.Context) (map[string]bool, error) {
	orgID, _, err := claimsFromContext(ctx)
	if err != nil {
		return nil, err
	}
	return s.busyMachineSet(ctx, orgID, "")
}

// MySlots implements shift.Service.
func (s *ShiftServiceImpl) MySlots(ctx context.Context) (shift.SlotMapResponse, error) {
	orgID, userID, err := claimsFromContext(ctx)
	if err != nil {
		return shift.SlotMapResponse{}, err
	}

	slots, err := s.shiftRepo.Get(ctx, userID, orgID)
	if err != nil {
		// Offline fallback: serve the last mirrored state.
		slog.Warn("failed to load slot map, falling back to snapshot", "user_id", userID, "error", err)
		var mirrored map[string]shift.SlotMap
		if snapErr := s.snapshots.Get(ctx, snapshot.SlotActiveShifts, orgID, &mirrored); snapErr == nil {
			if m, ok := mirrored[userID]; ok {
				return shift.SlotMapResponse{UserID: userID, Slots: m}, nil
			}
			return shift.SlotMapResponse{UserID: userID, Slots: shift.SlotMap{}}, nil
		}
		return shift.SlotMapResponse{}, fmt.Errorf("failed to load slot map: %w", err)
	}
	return shift.SlotMapResponse{UserID: userID, Slots: slots}, nil
}

// OrgSlots implements shift.Service.
func (s *ShiftServiceImpl) OrgSlots(ctx context.Context) ([]shift.SlotMapResponse, error) {
	orgID, _, err := claimsFromContext(ctx)
	if err != nil {
		return nil, err
	}

	maps, err := s.shiftRepo.GetAll(ctx, orgID)
	if err != nil {
		// Offline fallback: serve the last mirrored state.
		slog.Warn("failed to load slot maps, falling back to snapshot", "org_id", orgID, "error", err)
		var mirrored map[string]shift.SlotMap
		if snapErr := s.snapshots.Get(ctx, snapshot.SlotActiveShifts, orgID, &mirrored); snapErr != nil {
			return nil, fmt.Errorf("failed to load slot maps: %w", err)
		}
		maps = mirrored
	}

	out := make([]shift.SlotMapResponse, 0, len(maps))
	for userID, slots := range maps {
		if len(slots) == 0 {
			continue
		}
		out = append(out, shift.SlotMapResponse{UserID: userID, Slots: slots})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out, nil
}

// mirrorSlots keeps the local durable snapshot in step with the slot
// maps so an offline restart reconstructs the last known state.
func (s *ShiftServiceImpl) mirrorSlots(ctx context.Context, orgID, userID string, slots shift.SlotMap) {
	var mirrored map[string]shift.SlotMap
	if err := s.snapshots.Get(ctx, snapshot.SlotActiveShifts, orgID, &mirrored); err != nil {
		mirrored = make(map[string]shift.SlotMap)
	}
	if mirrored == nil {
		mirrored = make(map[string]shift.SlotMap)
	}
	mirrored[userID] = slots
	if err := s.snapshots.Put(ctx, snapshot.SlotActiveShifts, orgID, mirrored); err != nil {
		slog.Warn("failed to mirror slot map to snapshot", "user_id", userID, "error", err)
	}
}
