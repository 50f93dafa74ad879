package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/crewclock/crewclock-backend-go/internal/domain/organization"
	"github.com/crewclock/crewclock-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type organizationRepository struct {
	db *database.DB
}

func NewOrganizationRepository(db *database.DB) organization.Repository {
	return &organizationRepository{db: db}
}

const organizationColumns = `
	id, name, username, night_shift_bonus_minutes, max_employees, created_at, updated_at
`

func scanOrganization(row pgx.Row) (organization.Organization, error) {
	var o organization.Organization
	err := row.Scan(&o.ID, &o.Name, &o.Username, &o.NightShiftBonusMinutes, &o.MaxEmployees, &o.CreatedAt, &o.UpdatedAt)
	return o, err
}

// ListIDs implements organization.Repository.
func (r *organizationRepository) ListIDs(ctx context.Context) ([]string, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, `SELECT id FROM organizations ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list organizations: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan organization id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// GetByID implements organization.Repository.
func (r *organizationRepository) GetByID(ctx context.Context, id string) (organization.Organization, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + organizationColumns + ` FROM organizations WHERE id = $1`

	o, err := scanOrganization(q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return organization.Organization{}, organization.ErrOrganizationNotFound
		}
		return organization.Organization{}, fmt.Errorf("failed to get organization: %w", err)
	}
	return o, nil
}

// GetByUsername implements organization.Repository.
func (r *organizationRepository) GetByUsername(ctx context.Context, username string) (organization.Organization, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + organizationColumns + ` FROM organizations WHERE username = $1`

	o, err := scanOrganization(q.QueryRow(ctx, query, username))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return organization.Organization{}, organization.ErrOrganizationNotFound
		}
		return organization.Organization{}, fmt.Errorf("failed to get organization by username: %w", err)
	}
	return o, nil
}

// Update implements organization.Repository.
func (r *organizationRepository) Update(ctx context.Context, org organization.Organization) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE organizations SET
			name = $1,
			night_shift_bonus_minutes = $2,
			max_employees = $3,
			updated_at = NOW()
		WHERE id = $4
	`

	tag, err := q.Exec(ctx, query, org.Name, org.NightShiftBonusMinutes, org.MaxEmployees, org.ID)
	if err != nil {
		return fmt.Errorf("failed to update organization: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return organization.ErrOrganizationNotFound
	}
	return nil
}

// CountEmployees implements organization.Repository.
func (r *organizationRepository) CountEmployees(ctx context.Context, orgID string) (int, error) {
	q := GetQuerier(ctx, r.db)

	var n int
	if err := q.QueryRow(ctx, `SELECT COUNT(*) FROM users WHERE org_id = $1`, orgID).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count employees: %w", err)
	}
	return n, nil
}
