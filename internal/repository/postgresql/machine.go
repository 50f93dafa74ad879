package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/crewclock/crewclock-backend-go/internal/domain/machine"
	"github.com/crewclock/crewclock-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type machineRepository struct {
	db *database.DB
}

func NewMachineRepository(db *database.DB) machine.Repository {
	return &machineRepository{db: db}
}

// Create implements machine.Repository.
func (r *machineRepository) Create(ctx context.Context, m machine.Machine) (machine.Machine, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO machines (id, org_id, name)
		VALUES ($1, $2, $3)
		RETURNING created_at, updated_at
	`

	err := q.QueryRow(ctx, query, m.ID, m.OrganizationID, m.Name).Scan(&m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return machine.Machine{}, fmt.Errorf("failed to create machine: %w", err)
	}
	return m, nil
}

// GetByID implements machine.Repository.
func (r *machineRepository) GetByID(ctx context.Context, id string, orgID string) (machine.Machine, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, org_id, name, created_at, updated_at
		FROM machines
		WHERE id = $1 AND org_id = $2
	`

	var m machine.Machine
	err := q.QueryRow(ctx, query, id, orgID).Scan(&m.ID, &m.OrganizationID, &m.Name, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return machine.Machine{}, machine.ErrMachineNotFound
		}
		return machine.Machine{}, fmt.Errorf("failed to get machine: %w", err)
	}
	return m, nil
}

// List implements machine.Repository.
func (r *machineRepository) List(ctx context.Context, orgID string) ([]machine.Machine, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, org_id, name, created_at, updated_at
		FROM machines
		WHERE org_id = $1
		ORDER BY name
	`

	rows, err := q.Query(ctx, query, orgID)
	if err != nil {
		return nil, fmt.Errorf("failed to list machines: %w", err)
	}
	defer rows.Close()

	var machines []machine.Machine
	for rows.Next() {
		var m machine.Machine
		if err := rows.Scan(&m.ID, &m.OrganizationID, &m.Name, &m.CreatedAt, &m.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan machine row: %w", err)
		}
		machines = append(machines, m)
	}
	return machines, rows.Err()
}

// Delete implements machine.Repository.
func (r *machineRepository) Delete(ctx context.Context, id string, orgID string) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `DELETE FROM machines WHERE id = $1 AND org_id = $2`, id, orgID)
	if err != nil {
		return fmt.Errorf("failed to delete machine: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return machine.ErrMachineNotFound
	}
	return nil
}
