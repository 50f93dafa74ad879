package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/crewclock/crewclock-backend-go/internal/domain/worklog"
	"github.com/crewclock/crewclock-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type workLogRepository struct {
	db *database.DB
}

func NewWorkLogRepository(db *database.DB) worklog.Repository {
	return &workLogRepository{db: db}
}

const workLogColumns = `
	id, user_id, org_id, date, entry_type, machine_id,
	clock_in, clock_out, duration_minutes,
	photo_in_url, photo_out_url,
	is_corrected, correction_note, corrected_at,
	is_night_shift, fine, bonus,
	created_at, updated_at
`

func scanWorkLog(row pgx.Row) (worklog.WorkLog, error) {
	var l worklog.WorkLog
	err := row.Scan(
		&l.ID, &l.UserID, &l.OrganizationID, &l.Date, &l.EntryType, &l.MachineID,
		&l.ClockIn, &l.ClockOut, &l.DurationMinutes,
		&l.PhotoInURL, &l.PhotoOutURL,
		&l.IsCorrected, &l.CorrectionNote, &l.CorrectedAt,
		&l.IsNightShift, &l.Fine, &l.Bonus,
		&l.CreatedAt, &l.UpdatedAt,
	)
	return l, err
}

func collectWorkLogs(rows pgx.Rows) ([]worklog.WorkLog, error) {
	defer rows.Close()
	var logs []worklog.WorkLog
	for rows.Next() {
		l, err := scanWorkLog(rows)
		if err != nil {
			return nil, fmt.Errorf("scan work log row: %w", err)
		}
		logs = append(logs, l)
	}
	return logs, rows.Err()
}

// GetByMonth implements worklog.Repository.
func (r *workLogRepository) GetByMonth(ctx context.Context, orgID string, month string) ([]worklog.WorkLog, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + workLogColumns + `
		FROM work_logs
		WHERE org_id = $1
		  AND date LIKE $2 || '-%'
		ORDER BY date DESC, clock_in DESC NULLS LAST
	`

	rows, err := q.Query(ctx, query, orgID, month)
	if err != nil {
		return nil, fmt.Errorf("failed to get work logs for month: %w", err)
	}
	return collectWorkLogs(rows)
}

// GetByUserAndMonth implements worklog.Repository.
func (r *workLogRepository) GetByUserAndMonth(ctx context.Context, userID string, orgID string, month string) ([]worklog.WorkLog, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + workLogColumns + `
		FROM work_logs
		WHERE user_id = $1
		  AND org_id = $2
		  AND date LIKE $3 || '-%'
		ORDER BY date DESC, clock_in DESC NULLS LAST
	`

	rows, err := q.Query(ctx, query, userID, orgID, month)
	if err != nil {
		return nil, fmt.Errorf("failed to get employee work logs for month: %w", err)
	}
	return collectWorkLogs(rows)
}

// GetByUserAndDate implements worklog.Repository.
func (r *workLogRepository) GetByUserAndDate(ctx context.Context, userID string, date string, orgID string) ([]worklog.WorkLog, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + workLogColumns + `
		FROM work_logs
		WHERE user_id = $1
		  AND date = $2
		  AND org_id = $3
	`

	rows, err := q.Query(ctx, query, userID, date, orgID)
	if err != nil {
		return nil, fmt.Errorf("failed to get work logs for day: %w", err)
	}
	return collectWorkLogs(rows)
}

// GetByID implements worklog.Repository.
func (r *workLogRepository) GetByID(ctx context.Context, id string, orgID string) (worklog.WorkLog, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + workLogColumns + `
		FROM work_logs
		WHERE id = $1 AND org_id = $2
	`

	l, err := scanWorkLog(q.QueryRow(ctx, query, id, orgID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return worklog.WorkLog{}, worklog.ErrLogNotFound
		}
		return worklog.WorkLog{}, fmt.Errorf("failed to get work log: %w", err)
	}
	return l, nil
}

// GetOpenSessions implements worklog.Repository.
func (r *workLogRepository) GetOpenSessions(ctx context.Context, orgID string) ([]worklog.WorkLog, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + workLogColumns + `
		FROM work_logs
		WHERE org_id = $1
		  AND entry_type = 'WORK'
		  AND clock_in IS NOT NULL
		  AND clock_out IS NULL
		ORDER BY clock_in DESC
	`

	rows, err := q.Query(ctx, query, orgID)
	if err != nil {
		return nil, fmt.Errorf("failed to get open sessions: %w", err)
	}
	return collectWorkLogs(rows)
}

// GetOpenSessionsByUser implements worklog.Repository.
func (r *workLogRepository) GetOpenSessionsByUser(ctx context.Context, userID string, orgID string) ([]worklog.WorkLog, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + workLogColumns + `
		FROM work_logs
		WHERE user_id = $1
		  AND org_id = $2
		  AND entry_type = 'WORK'
		  AND clock_in IS NOT NULL
		  AND clock_out IS NULL
		ORDER BY clock_in DESC
	`

	rows, err := q.Query(ctx, query, userID, orgID)
	if err != nil {
		return nil, fmt.Errorf("failed to get employee open sessions: %w", err)
	}
	return collectWorkLogs(rows)
}

// BatchUpsert implements worklog.Repository. Last write wins per id.
func (r *workLogRepository) BatchUpsert(ctx context.Context, logs []worklog.WorkLog, orgID string) error {
	if len(logs) == 0 {
		return nil
	}

	return WithTransaction(ctx, r.db, func(tx pgx.Tx) error {
		query := `
			INSERT INTO work_logs (
				id, user_id, org_id, date, entry_type, machine_id,
				clock_in, clock_out, duration_minutes,
				photo_in_url, photo_out_url,
				is_corrected, correction_note, corrected_at,
				is_night_shift, fine, bonus
			) VALUES (
				$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17
			)
			ON CONFLICT (id) DO UPDATE SET
				date = excluded.date,
				entry_type = excluded.entry_type,
				machine_id = excluded.machine_id,
				clock_in = excluded.clock_in,
				clock_out = excluded.clock_out,
				duration_minutes = excluded.duration_minutes,
				photo_in_url = excluded.photo_in_url,
				photo_out_url = excluded.photo_out_url,
				is_corrected = excluded.is_corrected,
				correction_note = excluded.correction_note,
				corrected_at = excluded.corrected_at,
				is_night_shift = excluded.is_night_shift,
				fine = excluded.fine,
				bonus = excluded.bonus,
				updated_at = NOW()
			WHERE work_logs.org_id = excluded.org_id
		`

		for _, l := range logs {
			_, err := tx.Exec(ctx, query,
				l.ID, l.UserID, orgID, l.Date, l.EntryType, l.MachineID,
				l.ClockIn, l.ClockOut, l.DurationMinutes,
				l.PhotoInURL, l.PhotoOutURL,
				l.IsCorrected, l.CorrectionNote, l.CorrectedAt,
				l.IsNightShift, l.Fine, l.Bonus,
			)
			if err != nil {
				return fmt.Errorf("failed to upsert work log %s: %w", l.ID, err)
			}
		}
		return nil
	})
}

// Delete implements worklog.Repository.
func (r *workLogRepository) Delete(ctx context.Context, id string, orgID string) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `DELETE FROM work_logs WHERE id = $1 AND org_id = $2`, id, orgID)
	if err != nil {
		return fmt.Errorf("failed to delete work log: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return worklog.ErrLogNotFound
	}
	return nil
}
