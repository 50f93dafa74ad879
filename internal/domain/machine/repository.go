package machine

import "context"

type Repository interface {
	Create(ctx context.Context, m Machine) (Machine, error)
	GetByID(ctx context.Context, id string, orgID string) (Machine, error)
	List(ctx context.Context, orgID string) ([]Machine, error)
	Delete(ctx context.Context, id string, orgID string) error
}
