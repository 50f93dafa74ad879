package position

import "context"

// Repository defines data access for positions. All methods take orgID to
// prevent cross-organization access.
type Repository interface {
	Create(ctx context.Context, pos Position) (Position, error)
	GetByID(ctx context.Context, id string, orgID string) (Position, error)
	List(ctx context.Context, orgID string) ([]Position, error)
	Update(ctx context.Context, pos Position) error
	Delete(ctx context.Context, id string, orgID string) error
}
