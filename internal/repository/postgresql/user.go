package postgresql

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/crewclock/crewclock-backend-go/internal/domain/payroll"
	"github.com/crewclock/crewclock-backend-go/internal/domain/user"
	"github.com/crewclock/crewclock-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type userRepository struct {
	db *database.DB
}

func NewUserRepository(db *database.DB) user.Repository {
	return &userRepository{db: db}
}

func scanUser(row pgx.Row) (user.User, error) {
	var u user.User
	var payrollJSON []byte
	err := row.Scan(
		&u.ID, &u.OrganizationID, &u.FullName, &u.Email, &u.PasswordHash,
		&u.IsAdmin, &u.PositionID, &payrollJSON,
		&u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return user.User{}, err
	}
	if len(payrollJSON) > 0 {
		var cfg payroll.Config
		if err := json.Unmarshal(payrollJSON, &cfg); err != nil {
			return user.User{}, fmt.Errorf("decode payroll override: %w", err)
		}
		u.PayrollOverride = &cfg
	}
	return u, nil
}

const userColumns = `
	id, org_id, full_name, email, password_hash,
	is_admin, position_id, payroll_override,
	created_at, updated_at
`

// GetByID implements user.Repository.
func (r *userRepository) GetByID(ctx context.Context, id string, orgID string) (user.User, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1 AND org_id = $2`

	u, err := scanUser(q.QueryRow(ctx, query, id, orgID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return user.User{}, user.ErrUserNotFound
		}
		return user.User{}, fmt.Errorf("failed to get employee: %w", err)
	}
	return u, nil
}

// GetByIDAny implements user.Repository. Used by the token refresh flow,
// which knows the user id but not the organization.
func (r *userRepository) GetByIDAny(ctx context.Context, id string) (user.User, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	u, err := scanUser(q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return user.User{}, user.ErrUserNotFound
		}
		return user.User{}, fmt.Errorf("failed to get employee: %w", err)
	}
	return u, nil
}

// GetByEmail implements user.Repository.
func (r *userRepository) GetByEmail(ctx context.Context, email string) (user.User, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`

	u, err := scanUser(q.QueryRow(ctx, query, email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return user.User{}, user.ErrUserNotFound
		}
		return user.User{}, fmt.Errorf("failed to get employee by email: %w", err)
	}
	return u, nil
}

// List implements user.Repository.
func (r *userRepository) List(ctx context.Context, orgID string) ([]user.User, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + userColumns + `
		FROM users
		WHERE org_id = $1
		ORDER BY full_name
	`

	rows, err := q.Query(ctx, query, orgID)
	if err != nil {
		return nil, fmt.Errorf("failed to list employees: %w", err)
	}
	defer rows.Close()

	var users []user.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan employee row: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// Update implements user.Repository.
func (r *userRepository) Update(ctx context.Context, u user.User) error {
	q := GetQuerier(ctx, r.db)

	var payrollJSON []byte
	if u.PayrollOverride != nil {
		var err error
		payrollJSON, err = json.Marshal(u.PayrollOverride)
		if err != nil {
			return fmt.Errorf("encode payroll override: %w", err)
		}
	}

	query := `
		UPDATE users SET
			full_name = $1,
			email = $2,
			is_admin = $3,
			position_id = $4,
			payroll_override = $5,
			updated_at = NOW()
		WHERE id = $6 AND org_id = $7
	`

	tag, err := q.Exec(ctx, query, u.FullName, u.Email, u.IsAdmin, u.PositionID, payrollJSON, u.ID, u.OrganizationID)
	if err != nil {
		return fmt.Errorf("failed to update employee: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return user.ErrUserNotFound
	}
	return nil
}
