package master

import (
	"context"
	"fmt"

	"github.com/crewclock/crewclock-backend-go/internal/domain/machine"
	"github.com/crewclock/crewclock-backend-go/internal/domain/master"
	"github.com/crewclock/crewclock-backend-go/internal/domain/position"
	"github.com/crewclock/crewclock-backend-go/internal/domain/shift"
	"github.com/crewclock/crewclock-backend-go/internal/domain/user"
	"github.com/go-chi/jwtauth/v5"
	"github.com/google/uuid"
)

type MasterServiceImpl struct {
	machineRepo  machine.Repository
	positionRepo position.Repository
	userRepo     user.Repository
	shiftService shift.Service
}

func NewMasterService(
	machineRepo machine.Repository,
	positionRepo position.Repository,
	userRepo user.Repository,
	shiftService shift.Service,
) master.Service {
	return &MasterServiceImpl{
		machineRepo:  machineRepo,
		positionRepo: positionRepo,
		userRepo:     userRepo,
		shiftService: shiftService,
	}
}

func claimsFromContext(ctx context.Context) (orgID string, isAdmin bool, err error) {
	_, claims, err := jwtauth.FromContext(ctx)
	if err != nil {
		return "", false, fmt.Errorf("failed to extract claims from context: %w", err)
	}

	orgID, ok := claims["org_id"].(string)
	if !ok || orgID == "" {
		return "", false, fmt.Errorf("org_id claim is missing or invalid")
	}

	isAdmin, _ = claims["is_admin"].(bool)
	return orgID, isAdmin, nil
}

func (s *MasterServiceImpl) adminOrg(ctx context.Context) (string, error) {
	orgID, isAdmin, err := claimsFromContext(ctx)
	if err != nil {
		return "", err
	}
	if !isAdmin {
		return "", user.ErrAdminPrivilegeRequired
	}
	return orgID, nil
}

// CreateMachine implements master.Service.
func (s *MasterServiceImpl) CreateMachine(ctx context.Context, req master.CreateMachineRequest) (master.MachineResponse, error) {
	if err := req.Validate(); err != nil {
		return master.MachineResponse{}, err
	}
	orgID, err := s.adminOrg(ctx)
	if err != nil {
		return master.MachineResponse{}, err
	}

	m, err := s.machineRepo.Create(ctx, machine.Machine{
		ID:             uuid.NewString(),
		OrganizationID: orgID,
		Name:           req.Name,
	})
	if err != nil {
		return master.MachineResponse{}, fmt.Errorf("failed to create machine: %w", err)
	}

	return master.MachineResponse{ID: m.ID, Name: m.Name}, nil
}

// ListMachines implements master.Service. The busy flag comes from the
// open-session set, so a freshly stopped session frees the machine on the
// next call without any machine write.
func (s *MasterServiceImpl) ListMachines(ctx context.Context) ([]master.MachineResponse, error) {
	orgID, _, err := claimsFromContext(ctx)
	if err != nil {
		return nil, err
	}

	machines, err := s.machineRepo.List(ctx, orgID)
	if err != nil {
		return nil, fmt.Errorf("failed to list machines: %w", err)
	}

	busy, err := s.shiftService.BusyMachines(ctx)
	if err != nil {
		// Degrade to an unknown busy state rather than failing the list.
		busy = map[string]bool{}
	}

	out := make([]master.MachineResponse, 0, len(machines))
	for _, m := range machines {
		out = append(out, master.MachineResponse{
			ID:   m.ID,
			Name: m.Name,
			Busy: busy[m.ID],
		})
	}
	return out, nil
}

// DeleteMachine implements master.Service. A machine referenced by an open
// session cannot be removed.
func (s *MasterServiceImpl) DeleteMachine(ctx context.Context, id string) error {
	orgID, err := s.adminOrg(ctx)
	if err != nil {
		return err
	}

	busy, err := s.shiftService.BusyMachines(ctx)
	if err != nil {
		return fmt.Errorf("failed to check machine usage: %w", err)
	}
	if busy[id] {
		return machine.ErrMachineBusy
	}

	return s.machineRepo.Delete(ctx, id, orgID)
}

func positionResponse(p position.Position) master.PositionResponse {
	return master.PositionResponse{
		ID:   p.ID,
		Name: p.Name,
		Permissions: master.PermissionsPayload{
			CanUseMachines:    p.Permissions.CanUseMachines,
			MultiSlot:         p.Permissions.MultiSlot,
			MaxShiftMinutes:   p.Permissions.MaxShiftMinutes,
			RequirePhoto:      p.Permissions.RequirePhoto,
			NightShiftAllowed: p.Permissions.NightShiftAllowed,
			AdminTier:         p.Permissions.AdminTier,
		},
		DefaultPayroll: p.DefaultPayroll,
	}
}

// CreatePosition implements master.Service.
func (s *MasterServiceImpl) CreatePosition(ctx context.Context, req master.CreatePositionRequest) (master.PositionResponse, error) {
	if err := req.Validate(); err != nil {
		return master.PositionResponse{}, err
	}
	orgID, err := s.adminOrg(ctx)
	if err != nil {
		return master.PositionResponse{}, err
	}

	p, err := s.positionRepo.Create(ctx, position.Position{
		ID:             uuid.NewString(),
		OrganizationID: orgID,
		Name:           req.Name,
		Permissions:    req.Permissions.ToDomain(),
		DefaultPayroll: req.DefaultPayroll,
	})
	if err != nil {
		return master.PositionResponse{}, fmt.Errorf("failed to create position: %w", err)
	}

	return positionResponse(p), nil
}

// ListPositions implements master.Service.
func (s *MasterServiceImpl) ListPositions(ctx context.Context) ([]master.PositionResponse, error) {
	orgID, _, err := claimsFromContext(ctx)
	if err != nil {
		return nil, err
	}

	positions, err := s.positionRepo.List(ctx, orgID)
	if err != nil {
		return nil, fmt.Errorf("failed to list positions: %w", err)
	}

	out := make([]master.PositionResponse, 0, len(positions))
	for _, p := range positions {
		out = append(out, positionResponse(p))
	}
	return out, nil
}

// UpdatePosition implements master.Service.
func (s *MasterServiceImpl) UpdatePosition(ctx context.Context, req master.UpdatePositionRequest) (master.PositionResponse, error) {
	if err := req.Validate(); err != nil {
		return master.PositionResponse{}, err
	}
	orgID, err := s.adminOrg(ctx)
	if err != nil {
		return master.PositionResponse{}, err
	}

	p, err := s.positionRepo.GetByID(ctx, req.ID, orgID)
	if err != nil {
		return master.PositionResponse{}, err
	}

	p.Name = req.Name
	p.Permissions = req.Permissions.ToDomain()
	p.DefaultPayroll = req.DefaultPayroll

	if err := s.positionRepo.Update(ctx, p); err != nil {
		return master.PositionResponse{}, fmt.Errorf("failed to update position: %w", err)
	}

	return positionResponse(p), nil
}

// DeletePosition implements master.Service.
func (s *MasterServiceImpl) DeletePosition(ctx context.Context, id string) error {
	orgID, err := s.adminOrg(ctx)
	if err != nil {
		return err
	}
	return s.positionRepo.Delete(ctx, id, orgID)
}

func employeeResponse(u user.User) master.EmployeeResponse {
	return master.EmployeeResponse{
		ID:              u.ID,
		FullName:        u.FullName,
		Email:           u.Email,
		IsAdmin:         u.IsAdmin,
		PositionID:      u.PositionID,
		PositionName:    u.PositionName,
		PayrollOverride: u.PayrollOverride,
	}
}

// ListEmployees implements master.Service.
func (s *MasterServiceImpl) ListEmployees(ctx context.Context) ([]master.EmployeeResponse, error) {
	orgID, err := s.adminOrg(ctx)
	if err != nil {
		return nil, err
	}

	users, err := s.userRepo.List(ctx, orgID)
	if err != nil {
		return nil, fmt.Errorf("failed to list employees: %w", err)
	}

	out := make([]master.EmployeeResponse, 0, len(users))
	for _, u := range users {
		out = append(out, employeeResponse(u))
	}
	return out, nil
}

// UpdateEmployee implements master.Service. Nil fields keep their current
// values.
func (s *MasterServiceImpl) UpdateEmployee(ctx context.Context, req master.UpdateEmployeeRequest) (master.EmployeeResponse, error) {
	if err := req.Validate(); err != nil {
		return master.EmployeeResponse{}, err
	}
	orgID, err := s.adminOrg(ctx)
	if err != nil {
		return master.EmployeeResponse{}, err
	}

	u, err := s.userRepo.GetByID(ctx, req.ID, orgID)
	if err != nil {
		return master.EmployeeResponse{}, err
	}

	if req.FullName != nil {
		u.FullName = *req.FullName
	}
	if req.PositionID != nil {
		if _, err := s.positionRepo.GetByID(ctx, *req.PositionID, orgID); err != nil {
			return master.EmployeeResponse{}, err
		}
		u.PositionID = req.PositionID
	}
	if req.IsAdmin != nil {
		u.IsAdmin = *req.IsAdmin
	}
	if req.PayrollOverride != nil {
		u.PayrollOverride = req.PayrollOverride
	}
	if req.ClearOverride {
		u.PayrollOverride = nil
	}

	if err := s.userRepo.Update(ctx, u); err != nil {
		return master.EmployeeResponse{}, fmt.Errorf("failed to update employee: %w", err)
	}

	return employeeResponse(u), nil
}
