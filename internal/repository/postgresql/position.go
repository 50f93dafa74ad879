package postgresql

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/crewclock/crewclock-backend-go/internal/domain/payroll"
	"github.com/crewclock/crewclock-backend-go/internal/domain/position"
	"github.com/crewclock/crewclock-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type positionRepository struct {
	db *database.DB
}

func NewPositionRepository(db *database.DB) position.Repository {
	return &positionRepository{db: db}
}

const positionColumns = `
	id, org_id, name,
	can_use_machines, multi_slot, max_shift_minutes,
	require_photo, night_shift_allowed, admin_tier,
	default_payroll, created_at, updated_at
`

func scanPosition(row pgx.Row) (position.Position, error) {
	var p position.Position
	var payrollJSON []byte
	err := row.Scan(
		&p.ID, &p.OrganizationID, &p.Name,
		&p.Permissions.CanUseMachines, &p.Permissions.MultiSlot, &p.Permissions.MaxShiftMinutes,
		&p.Permissions.RequirePhoto, &p.Permissions.NightShiftAllowed, &p.Permissions.AdminTier,
		&payrollJSON, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return position.Position{}, err
	}
	if len(payrollJSON) > 0 {
		var cfg payroll.Config
		if err := json.Unmarshal(payrollJSON, &cfg); err != nil {
			return position.Position{}, fmt.Errorf("decode default payroll: %w", err)
		}
		p.DefaultPayroll = &cfg
	}
	return p, nil
}

// Create implements position.Repository.
func (r *positionRepository) Create(ctx context.Context, pos position.Position) (position.Position, error) {
	q := GetQuerier(ctx, r.db)

	var payrollJSON []byte
	if pos.DefaultPayroll != nil {
		var err error
		payrollJSON, err = json.Marshal(pos.DefaultPayroll)
		if err != nil {
			return position.Position{}, fmt.Errorf("encode default payroll: %w", err)
		}
	}

	query := `
		INSERT INTO positions (
			id, org_id, name,
			can_use_machines, multi_slot, max_shift_minutes,
			require_photo, night_shift_allowed, admin_tier,
			default_payroll
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING created_at, updated_at
	`

	err := q.QueryRow(ctx, query,
		pos.ID, pos.OrganizationID, pos.Name,
		pos.Permissions.CanUseMachines, pos.Permissions.MultiSlot, pos.Permissions.MaxShiftMinutes,
		pos.Permissions.RequirePhoto, pos.Permissions.NightShiftAllowed, pos.Permissions.AdminTier,
		payrollJSON,
	).Scan(&pos.CreatedAt, &pos.UpdatedAt)
	if err != nil {
		return position.Position{}, fmt.Errorf("failed to create position: %w", err)
	}
	return pos, nil
}

// GetByID implements position.Repository.
func (r *positionRepository) GetByID(ctx context.Context, id string, orgID string) (position.Position, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + positionColumns + ` FROM positions WHERE id = $1 AND org_id = $2`

	p, err := scanPosition(q.QueryRow(ctx, query, id, orgID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return position.Position{}, position.ErrPositionNotFound
		}
		return position.Position{}, fmt.Errorf("failed to get position: %w", err)
	}
	return p, nil
}

// List implements position.Repository.
func (r *positionRepository) List(ctx context.Context, orgID string) ([]position.Position, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + positionColumns + ` FROM positions WHERE org_id = $1 ORDER BY name`

	rows, err := q.Query(ctx, query, orgID)
	if err != nil {
		return nil, fmt.Errorf("failed to list positions: %w", err)
	}
	defer rows.Close()

	var positions []position.Position
	for rows.Next() {
		p, err := scanPosition(rows)
		if err != nil {
			return nil, fmt.Errorf("scan position row: %w", err)
		}
		positions = append(positions, p)
	}
	return positions, rows.Err()
}

// Update implements position.Repository.
func (r *positionRepository) Update(ctx context.Context, pos position.Position) error {
	q := GetQuerier(ctx, r.db)

	var payrollJSON []byte
	if pos.DefaultPayroll != nil {
		var err error
		payrollJSON, err = json.Marshal(pos.DefaultPayroll)
		if err != nil {
			return fmt.Errorf("encode default payroll: %w", err)
		}
	}

	query := `
		UPDATE positions SET
			name = $1,
			can_use_machines = $2,
			multi_slot = $3,
			max_shift_minutes = $4,
			require_photo = $5,
			night_shift_allowed = $6,
			admin_tier = $7,
			default_payroll = $8,
			updated_at = NOW()
		WHERE id = $9 AND org_id = $10
	`

	tag, err := q.Exec(ctx, query,
		pos.Name,
		pos.Permissions.CanUseMachines, pos.Permissions.MultiSlot, pos.Permissions.MaxShiftMinutes,
		pos.Permissions.RequirePhoto, pos.Permissions.NightShiftAllowed, pos.Permissions.AdminTier,
		payrollJSON, pos.ID, pos.OrganizationID,
	)
	if err != nil {
		return fmt.Errorf("failed to update position: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return position.ErrPositionNotFound
	}
	return nil
}

// Delete implements position.Repository.
func (r *positionRepository) Delete(ctx context.Context, id string, orgID string) error {
	q := GetQuerier(ctx, r.db)

	var assigned int
	if err := q.QueryRow(ctx, `SELECT COUNT(*) FROM users WHERE position_id = $1 AND org_id = $2`, id, orgID).Scan(&assigned); err != nil {
		return fmt.Errorf("failed to count position assignments: %w", err)
	}
	if assigned > 0 {
		return position.ErrPositionInUse
	}

	tag, err := q.Exec(ctx, `DELETE FROM positions WHERE id = $1 AND org_id = $2`, id, orgID)
	if err != nil {
		return fmt.Errorf("failed to delete position: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return position.ErrPositionNotFound
	}
	return nil
}
