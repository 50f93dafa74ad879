package policy

import (
	"github.com/crewclock/crewclock-backend-go/internal/domain/organization"
	"github.com/crewclock/crewclock-backend-go/internal/domain/position"
)

// Action names a capability gated by plan limits or position permissions.
type Action string

const (
	ActionShiftStart     Action = "shift.start"
	ActionShiftMultiSlot Action = "shift.multi_slot"
	ActionShiftNight     Action = "shift.night"
	ActionMachineUse     Action = "machine.use"
	ActionLogCorrect     Action = "log.correct"
	ActionLogDelete      Action = "log.delete"
	ActionAbsenceMark    Action = "absence.mark"
	ActionPayrollViewAll Action = "payroll.view_all"
)

// Decision is the outcome of a policy check. Reason is set on denial.
type Decision struct {
	Allowed bool
	Reason  string
}

func allow() Decision {
	return Decision{Allowed: true}
}

func deny(reason string) Decision {
	return Decision{Allowed: false, Reason: reason}
}

// Evaluator answers every permission question the services ask, so the
// checks live in one place instead of being re-derived per call site.
type Evaluator interface {
	CanPerform(org organization.Organization, pos *position.Position, action Action) Decision
}

type evaluator struct{}

func NewEvaluator() Evaluator {
	return evaluator{}
}

func (evaluator) CanPerform(org organization.Organization, pos *position.Position, action Action) Decision {
	switch action {
	case ActionShiftStart, ActionAbsenceMark:
		return allow()
	case ActionShiftMultiSlot:
		if pos == nil || !pos.Permissions.MultiSlot {
			return deny("position does not allow concurrent sessions")
		}
		return allow()
	case ActionShiftNight:
		if pos == nil || !pos.Permissions.NightShiftAllowed {
			return deny("position does not allow night shifts")
		}
		return allow()
	case ActionMachineUse:
		if pos == nil || !pos.Permissions.CanUseMachines {
			return deny("position does not allow machine use")
		}
		return allow()
	case ActionLogCorrect, ActionLogDelete, ActionPayrollViewAll:
		if pos == nil || pos.Permissions.AdminTier < 1 {
			return deny("administrator tier required")
		}
		return allow()
	default:
		return deny("unknown action")
	}
}
