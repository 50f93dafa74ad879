package master

import "context"

// Service is the administrator surface for machines, positions, and
// employee records. Every method requires an admin caller.
type Service interface {
	CreateMachine(ctx context.Context, req CreateMachineRequest) (MachineResponse, error)
	ListMachines(ctx context.Context) ([]MachineResponse, error)
	DeleteMachine(ctx context.Context, id string) error

	CreatePosition(ctx context.Context, req CreatePositionRequest) (PositionResponse, error)
	ListPositions(ctx context.Context) ([]PositionResponse, error)
	UpdatePosition(ctx context.Context, req UpdatePositionRequest) (PositionResponse, error)
	DeletePosition(ctx context.Context, id string) error

	ListEmployees(ctx context.Context) ([]EmployeeResponse, error)
	UpdateEmployee(ctx context.Context, req UpdateEmployeeRequest) (EmployeeResponse, error)
}
