package organization

import "context"

type Repository interface {
	ListIDs(ctx context.Context) ([]string, error)
	GetByID(ctx context.Context, id string) (Organization, error)
	GetByUsername(ctx context.Context, username string) (Organization, error)
	Update(ctx context.Context, org Organization) error
	CountEmployees(ctx context.Context, orgID string) (int, error)
}
