package master

import (
	"github.com/crewclock/crewclock-backend-go/internal/domain/payroll"
	"github.com/crewclock/crewclock-backend-go/internal/domain/position"
	"github.com/crewclock/crewclock-backend-go/internal/pkg/validator"
)

type CreateMachineRequest struct {
	Name string `json:"name"`
}

func (r CreateMachineRequest) Validate() error {
	var errs validator.ValidationErrors
	if validator.IsEmpty(r.Name) {
		errs = append(errs, validator.ValidationError{Field: "name", Message: "name is required"})
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

type MachineResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Busy bool   `json:"busy"`
}

type PermissionsPayload struct {
	CanUseMachines    bool `json:"can_use_machines"`
	MultiSlot         bool `json:"multi_slot"`
	MaxShiftMinutes   int  `json:"max_shift_minutes"`
	RequirePhoto      bool `json:"require_photo"`
	NightShiftAllowed bool `json:"night_shift_allowed"`
	AdminTier         int  `json:"admin_tier"`
}

func (p PermissionsPayload) ToDomain() position.Permissions {
	return position.Permissions{
		CanUseMachines:    p.CanUseMachines,
		MultiSlot:         p.MultiSlot,
		MaxShiftMinutes:   p.MaxShiftMinutes,
		RequirePhoto:      p.RequirePhoto,
		NightShiftAllowed: p.NightShiftAllowed,
		AdminTier:         p.AdminTier,
	}
}

type CreatePositionRequest struct {
	Name           string             `json:"name"`
	Permissions    PermissionsPayload `json:"permissions"`
	DefaultPayroll *payroll.Config    `json:"default_payroll,omitempty"`
}

func (r CreatePositionRequest) Validate() error {
	var errs validator.ValidationErrors
	if validator.IsEmpty(r.Name) {
		errs = append(errs, validator.ValidationError{Field: "name", Message: "name is required"})
	}
	if r.Permissions.MaxShiftMinutes < 0 {
		errs = append(errs, validator.ValidationError{Field: "permissions.max_shift_minutes", Message: "max_shift_minutes cannot be negative"})
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

type UpdatePositionRequest struct {
	ID             string             `json:"-"`
	Name           string             `json:"name"`
	Permissions    PermissionsPayload `json:"permissions"`
	DefaultPayroll *payroll.Config    `json:"default_payroll,omitempty"`
}

func (r UpdatePositionRequest) Validate() error {
	var errs validator.ValidationErrors
	if validator.IsEmpty(r.ID) {
		errs = append(errs, validator.ValidationError{Field: "id", Message: "id is required"})
	}
	if validator.IsEmpty(r.Name) {
		errs = append(errs, validator.ValidationError{Field: "name", Message: "name is required"})
	}
	if r.Permissions.MaxShiftMinutes < 0 {
		errs = append(errs, validator.ValidationError{Field: "permissions.max_shift_minutes", Message: "max_shift_minutes cannot be negative"})
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

type PositionResponse struct {
	ID             string             `json:"id"`
	Name           string             `json:"name"`
	Permissions    PermissionsPayload `json:"permissions"`
	DefaultPayroll *payroll.Config    `json:"default_payroll,omitempty"`
}

type UpdateEmployeeRequest struct {
	ID              string          `json:"-"`
	FullName        *string         `json:"full_name,omitempty"`
	PositionID      *string         `json:"position_id,omitempty"`
	IsAdmin         *bool           `json:"is_admin,omitempty"`
	PayrollOverride *payroll.Config `json:"payroll_override,omitempty"`
	// ClearOverride drops an existing payroll override; it wins over
	// PayrollOverride when both are set.
	ClearOverride bool `json:"clear_override,omitempty"`
}

func (r UpdateEmployeeRequest) Validate() error {
	var errs validator.ValidationErrors
	if validator.IsEmpty(r.ID) {
		errs = append(errs, validator.ValidationError{Field: "id", Message: "id is required"})
	}
	if r.FullName != nil && validator.IsEmpty(*r.FullName) {
		errs = append(errs, validator.ValidationError{Field: "full_name", Message: "full_name cannot be blank"})
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

type EmployeeResponse struct {
	ID              string          `json:"id"`
	FullName        string          `json:"full_name"`
	Email           string          `json:"email"`
	IsAdmin         bool            `json:"is_admin"`
	PositionID      *string         `json:"position_id,omitempty"`
	PositionName    *string         `json:"position_name,omitempty"`
	PayrollOverride *payroll.Config `json:"payroll_override,omitempty"`
}
