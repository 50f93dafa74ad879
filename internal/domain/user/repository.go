package user

import "context"

// Repository defines data access for employees. All methods take orgID to
// prevent cross-organization access.
type Repository interface {
	GetByID(ctx context.Context, id string, orgID string) (User, error)
	// GetByIDAny looks a user up without an organization scope. Only the
	// token refresh flow may use it.
	GetByIDAny(ctx context.Context, id string) (User, error)
	GetByEmail(ctx context.Context, email string) (User, error)
	List(ctx context.Context, orgID string) ([]User, error)
	Update(ctx context.Context, u User) error
}
