package cron

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/crewclock/crewclock-backend-go/internal/domain/notification"
	"github.com/crewclock/crewclock-backend-go/internal/domain/organization"
	"github.com/crewclock/crewclock-backend-go/internal/domain/position"
	"github.com/crewclock/crewclock-backend-go/internal/domain/user"
	"github.com/crewclock/crewclock-backend-go/internal/domain/worklog"
	"github.com/crewclock/crewclock-backend-go/internal/pkg/clock"
)

// OvertimeWatcher polls open sessions and raises an alert when one runs
// past its position's max shift duration plus a grace buffer. Alerts are
// edge-triggered: one notification per false->true crossing, re-armed
// when the session drops back under the threshold.
type OvertimeWatcher struct {
	orgRepo      organization.Repository
	worklogRepo  worklog.Repository
	userRepo     user.Repository
	positionRepo position.Repository
	notifier     notification.Service
	clock        clock.Clock
	graceMinutes int

	mu      sync.Mutex
	alerted map[string]bool // log id -> currently over threshold
}

func NewOvertimeWatcher(
	orgRepo organization.Repository,
	worklogRepo worklog.Repository,
	userRepo user.Repository,
	positionRepo position.Repository,
	notifier notification.Service,
	clk clock.Clock,
	graceMinutes int,
) *OvertimeWatcher {
	return &OvertimeWatcher{
		orgRepo:      orgRepo,
		worklogRepo:  worklogRepo,
		userRepo:     userRepo,
		positionRepo: positionRepo,
		notifier:     notifier,
		clock:        clk,
		graceMinutes: graceMinutes,
	}
}

func (w *OvertimeWatcher) RegisterJobs(scheduler *Scheduler, interval time.Duration) {
	scheduler.AddJob("overtime_watch", interval, w.CheckOpenSessions)
}

// CheckOpenSessions is one polling pass over every organization.
func (w *OvertimeWatcher) CheckOpenSessions(ctx context.Context) error {
	orgIDs, err := w.orgRepo.ListIDs(ctx)
	if err != nil {
		return fmt.Errorf("list organizations: %w", err)
	}

	seen := make(map[string]bool)
	for _, orgID := range orgIDs {
		if err := w.checkOrg(ctx, orgID, seen); err != nil {
			slog.Error("Overtime check failed for organization", "org_id", orgID, "error", err)
		}
	}

	// Sessions closed since the last pass disappear from the open set;
	// drop their edge state so a reused id starts clean.
	w.mu.Lock()
	if w.alerted == nil {
		w.alerted = make(map[string]bool)
	}
	for id := range w.alerted {
		if !seen[id] {
			delete(w.alerted, id)
		}
	}
	w.mu.Unlock()

	return nil
}

func (w *OvertimeWatcher) checkOrg(ctx context.Context, orgID string, seen map[string]bool) error {
	open, err := w.worklogRepo.GetOpenSessions(ctx, orgID)
	if err != nil {
		return fmt.Errorf("load open sessions: %w", err)
	}

	now := w.clock.Now()
	for _, log := range open {
		seen[log.ID] = true

		u, err := w.userRepo.GetByID(ctx, log.UserID, orgID)
		if err != nil {
			slog.Warn("Overtime check skipping session, employee lookup failed", "log_id", log.ID, "error", err)
			continue
		}
		if u.PositionID == nil {
			continue
		}
		pos, err := w.positionRepo.GetByID(ctx, *u.PositionID, orgID)
		if err != nil {
			slog.Warn("Overtime check skipping session, position lookup failed", "log_id", log.ID, "error", err)
			continue
		}
		if pos.Permissions.MaxShiftMinutes <= 0 {
			continue
		}

		limit := time.Duration(pos.Permissions.MaxShiftMinutes+w.graceMinutes) * time.Minute
		over := log.ClockIn != nil && now.Sub(*log.ClockIn) > limit

		w.mu.Lock()
		if w.alerted == nil {
			w.alerted = make(map[string]bool)
		}
		wasOver := w.alerted[log.ID]
		w.alerted[log.ID] = over
		w.mu.Unlock()

		if over && !wasOver {
			elapsed := int(now.Sub(*log.ClockIn).Minutes())
			w.notifier.Notify(orgID, log.UserID, notification.TypeOvertimeAlert,
				"Shift running long",
				fmt.Sprintf("%s has been clocked in for %d minutes (limit %d)", u.FullName, elapsed, pos.Permissions.MaxShiftMinutes),
				map[string]interface{}{"log_id": log.ID, "elapsed_minutes": elapsed},
			)
		}
	}

	return nil
}
