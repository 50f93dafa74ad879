package worklog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

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
	"github.com/google/uuid"
)

type WorkLogServiceImpl struct {
	worklogRepo  worklog.Repository
	shiftSvc     shift.Service
	userRepo     user.Repository
	positionRepo position.Repository
	orgRepo      organization.Repository
	policy       policy.Evaluator
	clock        clock.Clock
	hub          *sse.Hub
	notifier     notification.Service
	snapshots    *snapshot.Store
	// cache is the in-memory collection per organization, merged by the
	// same upsert/delete semantics for local and remote changes alike.
	cache *orgCollections
	// maxCorrectionMinutes caps administrator-entered durations; 0 means
	// no cap.
	maxCorrectionMinutes int
}

func NewWorkLogService(
	worklogRepo worklog.Repository,
	shiftSvc shift.Service,
	userRepo user.Repository,
	positionRepo position.Repository,
	orgRepo organization.Repository,
	pol policy.Evaluator,
	clk clock.Clock,
	hub *sse.Hub,
	notifier notification.Service,
	snapshots *snapshot.Store,
	maxCorrectionMinutes int,
) worklog.Service {
	return &WorkLogServiceImpl{
		worklogRepo:          worklogRepo,
		shiftSvc:             shiftSvc,
		userRepo:             userRepo,
		positionRepo:         positionRepo,
		orgRepo:              orgRepo,
		policy:               pol,
		clock:                clk,
		hub:                  hub,
		notifier:             notifier,
		snapshots:            snapshots,
		cache:                newOrgCollections(),
		maxCorrectionMinutes: maxCorrectionMinutes,
	}
}

func claimsFromContext(ctx context.Context) (orgID, userID string, isAdmin bool, err error) {
	_, claims, err := jwtauth.FromContext(ctx)
	if err != nil {
		return "", "", false, fmt.Errorf("failed to extract claims from context: %w", err)
	}

	orgID, ok := claims["org_id"].(string)
	if !ok || orgID == "" {
		return "", "", false, fmt.Errorf("org_id claim is missing or invalid")
	}

	userID, ok = claims["user_id"].(string)
	if !ok || userID == "" {
		return "", "", false, fmt.Errorf("user_id claim is missing or invalid")
	}

	isAdmin, _ = claims["is_admin"].(bool)

	return orgID, userID, isAdmin, nil
}

// authorize answers a permission question for the calling employee:
// organization admins pass outright, everyone else is answered by the
// policy evaluator against their position.
func (s *WorkLogServiceImpl) authorize(ctx context.Context, action policy.Action) error {
	orgID, userID, isAdmin, err := claimsFromContext(ctx)
	if err != nil {
		return err
	}
	if isAdmin {
		return nil
	}

	u, err := s.userRepo.GetByID(ctx, userID, orgID)
	if err != nil {
		return err
	}
	org, err := s.orgRepo.GetByID(ctx, orgID)
	if err != nil {
		return err
	}

	var pos *position.Position
	if u.PositionID != nil {
		p, err := s.positionRepo.GetByID(ctx, *u.PositionID, orgID)
		if err != nil && !errors.Is(err, position.ErrPositionNotFound) {
			return err
		}
		if err == nil {
			pos = &p
		}
	}

	if d := s.policy.CanPerform(org, pos, action); !d.Allowed {
		slog.Info("action denied by policy", "user_id", userID, "action", string(action), "reason", d.Reason)
		return user.ErrAdminPrivilegeRequired
	}
	return nil
}

// dayConflict reports whether two entry types may not share an
// employee-day: worked time and absence markers are mutually exclusive.
func dayConflict(a, b worklog.EntryType) bool {
	return (a == worklog.EntryWork && b.IsAbsence()) ||
		(a.IsAbsence() && b == worklog.EntryWork)
}

// checkDayExclusivity rejects a batch that would put a WORK entry and an
// absence marker on the same employee-day, against both the batch itself
// and the entries already held. Replacing an entry by its own id never
// conflicts. When neither the cache nor the database can answer for a
// day, the batch is accepted optimistically; the next reconciliation
// pass re-derives state from the authoritative collection.
func (s *WorkLogServiceImpl) checkDayExclusivity(ctx context.Context, orgID string, coll *worklog.Collection, logs []worklog.WorkLog) error {
	for i, l := range logs {
		if !l.EntryType.Known() {
			continue
		}

		for _, other := range logs[:i] {
			if other.UserID == l.UserID && other.Date == l.Date &&
				other.ID != l.ID && dayConflict(other.EntryType, l.EntryType) {
				return worklog.ErrDayOccupied
			}
		}

		existing := coll.ByUserDate(l.UserID, l.Date)
		if len(existing) == 0 {
			if fromDB, err := s.worklogRepo.GetByUserAndDate(ctx, l.UserID, l.Date, orgID); err == nil {
				existing = fromDB
			}
		}
		for _, e := range existing {
			if e.ID != l.ID && dayConflict(e.EntryType, l.EntryType) {
				return worklog.ErrDayOccupied
			}
		}
	}
	return nil
}

// Upsert implements worklog.Service. It merges by id into both the
// database and the in-memory collection, then reconciles the slot maps
// of every employee whose entries changed: a check-out observed here
// must clear its slot no matter which device produced it.
func (s *WorkLogServiceImpl) Upsert(ctx context.Context, logs []worklog.WorkLog) error {
	if len(logs) == 0 {
		return nil
	}

	orgID, _, _, err := claimsFromContext(ctx)
	if err != nil {
		return err
	}

	for i := range logs {
		logs[i].OrganizationID = orgID
	}

	coll := s.cache.forOrg(orgID)
	if err := s.checkDayExclusivity(ctx, orgID, coll, logs); err != nil {
		return err
	}

	coll.Upsert(logs)
	s.mirrorLogs(ctx, orgID, coll)

	syncPending := false
	if err := s.worklogRepo.BatchUpsert(ctx, logs, orgID); err != nil {
		slog.Warn("batch upsert not persisted, keeping optimistic state", "count", len(logs), "error", err)
		syncPending = true
	}

	users := make(map[string]bool)
	for _, l := range logs {
		users[l.UserID] = true
		s.hub.Publish(orgID, sse.Event{Event: "worklog.upserted", Data: l.ToResponse()})
	}
	for userID := range users {
		if _, err := s.shiftSvc.Reconcile(ctx, userID, coll.OpenByUser(userID)); err != nil {
			slog.Warn("slot reconciliation failed after upsert", "user_id", userID, "error", err)
		}
	}

	if syncPending {
		return worklog.ErrSyncPending
	}
	return nil
}

// MarkAbsence implements worklog.Service. The day must be free of any
// entry and the employee must have no open session; violations reject
// before any state changes.
func (s *WorkLogServiceImpl) MarkAbsence(ctx context.Context, req worklog.MarkAbsenceRequest) (worklog.LogResponse, error) {
	if err := req.Validate(); err != nil {
		return worklog.LogResponse{}, err
	}

	orgID, callerID, _, err := claimsFromContext(ctx)
	if err != nil {
		return worklog.LogResponse{}, err
	}

	if err := s.authorize(ctx, policy.ActionAbsenceMark); err != nil {
		return worklog.LogResponse{}, err
	}
	// Marking someone else's day takes correction-level privileges.
	if req.UserID != callerID {
		if err := s.authorize(ctx, policy.ActionLogCorrect); err != nil {
			return worklog.LogResponse{}, err
		}
	}

	existing, err := s.worklogRepo.GetByUserAndDate(ctx, req.UserID, req.Date, orgID)
	if err != nil {
		return worklog.LogResponse{}, fmt.Errorf("failed to check day entries: %w", err)
	}
	if len(existing) > 0 {
		return worklog.LogResponse{}, worklog.ErrDayOccupied
	}

	open, err := s.worklogRepo.GetOpenSessionsByUser(ctx, req.UserID, orgID)
	if err != nil {
		return worklog.LogResponse{}, fmt.Errorf("failed to check open sessions: %w", err)
	}
	if len(open) > 0 {
		return worklog.LogResponse{}, worklog.ErrOpenSession
	}

	now := s.clock.Now()
	log := worklog.WorkLog{
		ID:             uuid.NewString(),
		UserID:         req.UserID,
		OrganizationID: orgID,
		Date:           req.Date,
		EntryType:      req.Type,
		CreatedAt:      now,
	}

	coll := s.cache.forOrg(orgID)
	coll.Upsert([]worklog.WorkLog{log})
	s.mirrorLogs(ctx, orgID, coll)

	if err := s.worklogRepo.BatchUpsert(ctx, []worklog.WorkLog{log}, orgID); err != nil {
		slog.Warn("absence marker not persisted, keeping optimistic state", "log_id", log.ID, "error", err)
	}

	s.hub.Publish(orgID, sse.Event{Event: "worklog.upserted", Data: log.ToResponse()})
	s.notifier.Notify(orgID, req.UserID, notification.TypeAbsenceMarked,
		"Absence recorded",
		fmt.Sprintf("%s marked for %s", strings.ToLower(string(req.Type)), req.Date),
		map[string]interface{}{"log_id": log.ID, "date": req.Date})

	return log.ToResponse(), nil
}

// Delete implements worklog.Service.
func (s *WorkLogServiceImpl) Delete(ctx context.Context, logID string) error {
	orgID, _, _, err := claimsFromContext(ctx)
	if err != nil {
		return err
	}

	if err := s.authorize(ctx, policy.ActionLogDelete); err != nil {
		return err
	}

	if err := s.worklogRepo.Delete(ctx, logID, orgID); err != nil {
		if !errors.Is(err, worklog.ErrLogNotFound) {
			return err
		}
	}

	coll := s.cache.forOrg(orgID)
	coll.Delete(logID)
	s.mirrorLogs(ctx, orgID, coll)
	s.hub.Publish(orgID, sse.Event{Event: "worklog.deleted", Data: map[string]string{"id": logID}})
	return nil
}

// Correct implements worklog.Service.
func (s *WorkLogServiceImpl) Correct(ctx context.Context, req worklog.CorrectionRequest) (worklog.LogResponse, error) {
	if err := req.Validate(); err != nil {
		return worklog.LogResponse{}, err
	}

	orgID, correctorID, _, err := claimsFromContext(ctx)
	if err != nil {
		return worklog.LogResponse{}, err
	}

	if err := s.authorize(ctx, policy.ActionLogCorrect); err != nil {
		return worklog.LogResponse{}, err
	}

	log, err := s.worklogRepo.GetByID(ctx, req.LogID, orgID)
	if err != nil {
		return worklog.LogResponse{}, err
	}

	if req.DurationMinutes != nil {
		if s.maxCorrectionMinutes > 0 && *req.DurationMinutes > s.maxCorrectionMinutes {
			return worklog.LogResponse{}, worklog.ErrDurationTooLarge
		}
		log.DurationMinutes = *req.DurationMinutes
	}
	if req.Fine != nil {
		log.Fine = req.Fine
	}
	if req.Bonus != nil {
		log.Bonus = req.Bonus
	}

	now := s.clock.Now()
	note := fmt.Sprintf("%s (by %s)", req.Note, correctorID)
	log.IsCorrected = true
	log.CorrectionNote = &note
	log.CorrectedAt = &now

	if err := s.worklogRepo.BatchUpsert(ctx, []worklog.WorkLog{log}, orgID); err != nil {
		return worklog.LogResponse{}, fmt.Errorf("failed to persist correction: %w", err)
	}

	coll := s.cache.forOrg(orgID)
	coll.Upsert([]worklog.WorkLog{log})
	s.mirrorLogs(ctx, orgID, coll)
	s.hub.Publish(orgID, sse.Event{Event: "worklog.upserted", Data: log.ToResponse()})
	s.notifier.Notify(orgID, log.UserID, notification.TypeLogCorrected,
		"Entry corrected",
		fmt.Sprintf("Your entry for %s was corrected by an administrator", log.Date),
		map[string]interface{}{"log_id": log.ID})

	return log.ToResponse(), nil
}

// ListMonth implements worklog.Service.
func (s *WorkLogServiceImpl) ListMonth(ctx context.Context, filter worklog.MonthFilter) ([]worklog.LogResponse, int64, error) {
	orgID, _, _, err := claimsFromContext(ctx)
	if err != nil {
		return nil, 0, err
	}

	logs, err := s.loadMonth(ctx, orgID, filter.Month)
	if err != nil {
		return nil, 0, err
	}

	if filter.UserID != "" {
		var filtered []worklog.WorkLog
		for _, l := range logs {
			if l.UserID == filter.UserID {
				filtered = append(filtered, l)
			}
		}
		logs = filtered
	}

	total := int64(len(logs))
	page, limit := filter.Page, filter.Limit
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 200 {
		limit = 50
	}
	start := (page - 1) * limit
	if start > len(logs) {
		start = len(logs)
	}
	end := start + limit
	if end > len(logs) {
		end = len(logs)
	}

	out := make([]worklog.LogResponse, 0, end-start)
	for _, l := range logs[start:end] {
		out = append(out, l.ToResponse())
	}
	return out, total, nil
}

// GetMyMonth implements worklog.Service.
func (s *WorkLogServiceImpl) GetMyMonth(ctx context.Context, month string) ([]worklog.LogResponse, error) {
	orgID, userID, _, err := claimsFromContext(ctx)
	if err != nil {
		return nil, err
	}

	logs, err := s.loadMonth(ctx, orgID, month)
	if err != nil {
		return nil, err
	}

	var out []worklog.LogResponse
	for _, l := range logs {
		if l.UserID == userID {
			out = append(out, l.ToResponse())
		}
	}
	return out, nil
}

// loadMonth reads an organization-month, refreshing the in-memory
// collection. When the database is unreachable it serves the last
// mirrored snapshot instead of failing.
func (s *WorkLogServiceImpl) loadMonth(ctx context.Context, orgID, month string) ([]worklog.WorkLog, error) {
	logs, err := s.worklogRepo.GetByMonth(ctx, orgID, month)
	if err != nil {
		slog.Warn("failed to load month from database, falling back to snapshot", "org_id", orgID, "month", month, "error", err)
		coll := s.cache.forOrg(orgID)
		if all := coll.All(); len(all) > 0 {
			return monthSlice(all, month), nil
		}
		var mirrored []worklog.WorkLog
		if snapErr := s.snapshots.Get(ctx, snapshot.SlotWorkLogs, orgID, &mirrored); snapErr != nil {
			return nil, fmt.Errorf("failed to load work logs: %w", err)
		}
		coll.Replace(mirrored)
		return monthSlice(mirrored, month), nil
	}

	s.cache.forOrg(orgID).Upsert(logs)
	s.mirrorLogs(ctx, orgID, s.cache.forOrg(orgID))
	return logs, nil
}

func monthSlice(logs []worklog.WorkLog, month string) []worklog.WorkLog {
	var out []worklog.WorkLog
	for _, l := range logs {
		if strings.HasPrefix(l.Date, month+"-") {
			out = append(out, l)
		}
	}
	return out
}

func (s *WorkLogServiceImpl) mirrorLogs(ctx context.Context, orgID string, coll *worklog.Collection) {
	if err := s.snapshots.Put(ctx, snapshot.SlotWorkLogs, orgID, coll.All()); err != nil {
		slog.Warn("failed to mirror work logs to snapshot", "org_id", orgID, "error", err)
	}
}
