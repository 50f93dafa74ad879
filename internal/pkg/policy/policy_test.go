package policy

import (
	"testing"

	"github.com/crewclock/crewclock-backend-go/internal/domain/organization"
	"github.com/crewclock/crewclock-backend-go/internal/domain/position"
	"github.com/stretchr/testify/assert"
)

func TestCanPerform_PositionGates(t *testing.T) {
	eval := NewEvaluator()
	org := organization.Organization{ID: "org-1"}

	operator := &position.Position{
		ID: "pos-1",
		Permissions: position.Permissions{
			CanUseMachines:    true,
			MultiSlot:         true,
			NightShiftAllowed: false,
		},
	}

	cases := []struct {
		name    string
		pos     *position.Position
		action  Action
		allowed bool
	}{
		{"anyone may start a shift", nil, ActionShiftStart, true},
		{"anyone may mark absence", nil, ActionAbsenceMark, true},
		{"multi-slot requires the permission", operator, ActionShiftMultiSlot, true},
		{"multi-slot denied without a position", nil, ActionShiftMultiSlot, false},
		{"machine use requires the permission", operator, ActionMachineUse, true},
		{"night shift denied without the permission", operator, ActionShiftNight, false},
		{"corrections require admin tier", operator, ActionLogCorrect, false},
		{"unknown actions are denied", operator, Action("warehouse.open"), false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			d := eval.CanPerform(org, c.pos, c.action)
			assert.Equal(t, c.allowed, d.Allowed)
			if !c.allowed {
				assert.NotEmpty(t, d.Reason)
			}
		})
	}
}

func TestCanPerform_AdminTier(t *testing.T) {
	eval := NewEvaluator()
	org := organization.Organization{ID: "org-1"}
	lead := &position.Position{
		ID:          "pos-lead",
		Permissions: position.Permissions{AdminTier: 1},
	}

	for _, action := range []Action{ActionLogCorrect, ActionLogDelete, ActionPayrollViewAll} {
		d := eval.CanPerform(org, lead, action)
		assert.True(t, d.Allowed, "action %s", action)
	}
}
