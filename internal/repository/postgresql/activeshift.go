package postgresql

import (
	"context"
	"fmt"

	"github.com/crewclock/crewclock-backend-go/internal/domain/shift"
	"github.com/crewclock/crewclock-backend-go/internal/pkg/database"
)

type activeShiftRepository struct {
	db *database.DB
}

func NewActiveShiftRepository(db *database.DB) shift.Repository {
	return &activeShiftRepository{db: db}
}

// GetAll implements shift.Repository.
func (r *activeShiftRepository) GetAll(ctx context.Context, orgID string) (map[string]shift.SlotMap, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT user_id, slot, log_id
		FROM active_shifts
		WHERE org_id = $1
	`

	rows, err := q.Query(ctx, query, orgID)
	if err != nil {
		return nil, fmt.Errorf("failed to get active shifts: %w", err)
	}
	defer rows.Close()

	out := make(map[string]shift.SlotMap)
	for rows.Next() {
		var userID string
		var slot int
		var logID string
		if err := rows.Scan(&userID, &slot, &logID); err != nil {
			return nil, fmt.Errorf("scan active shift row: %w", err)
		}
		if out[userID] == nil {
			out[userID] = make(shift.SlotMap)
		}
		out[userID][slot] = logID
	}
	return out, rows.Err()
}

// Get implements shift.Repository.
func (r *activeShiftRepository) Get(ctx context.Context, userID string, orgID string) (shift.SlotMap, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT slot, log_id
		FROM active_shifts
		WHERE user_id = $1 AND org_id = $2
	`

	rows, err := q.Query(ctx, query, userID, orgID)
	if err != nil {
		return nil, fmt.Errorf("failed to get active shifts for employee: %w", err)
	}
	defer rows.Close()

	slots := make(shift.SlotMap)
	for rows.Next() {
		var slot int
		var logID string
		if err := rows.Scan(&slot, &logID); err != nil {
			return nil, fmt.Errorf("scan active shift row: %w", err)
		}
		slots[slot] = logID
	}
	return slots, rows.Err()
}

// Save implements shift.Repository. The map is written wholesale: delete
// then insert, so cleared slots disappear.
func (r *activeShiftRepository) Save(ctx context.Context, userID string, slots shift.SlotMap, orgID string) error {
	q := GetQuerier(ctx, r.db)

	if _, err := q.Exec(ctx, `DELETE FROM active_shifts WHERE user_id = $1 AND org_id = $2`, userID, orgID); err != nil {
		return fmt.Errorf("failed to clear active shifts: %w", err)
	}

	query := `
		INSERT INTO active_shifts (user_id, org_id, slot, log_id)
		VALUES ($1, $2, $3, $4)
	`
	for slot, logID := range slots {
		if _, err := q.Exec(ctx, query, userID, orgID, slot, logID); err != nil {
			return fmt.Errorf("failed to save active shift slot %d: %w", slot, err)
		}
	}
	return nil
}
