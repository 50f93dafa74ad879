package snapshot

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// Slot names the fixed set of logical entities mirrored into the local
// durable snapshot. A restart with no database connectivity reconstructs
// the last known state from these.
type Slot string

const (
	SlotWorkLogs     Slot = "work_logs"
	SlotActiveShifts Slot = "active_shifts"
	SlotUsers        Slot = "users"
	SlotMachines     Slot = "machines"
	SlotPositions    Slot = "positions"
	SlotOrganization Slot = "organization"
)

// ErrNotFound is returned when a slot holds no snapshot for the org.
var ErrNotFound = errors.New("no snapshot stored for slot")

// Store is a small key-value cache over an embedded sqlite file. One row
// per (slot, org); writes replace the previous value.
type Store struct {
	db *sql.DB
}

func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open snapshot database: %w", err)
	}

	// Single writer; the store is only touched from service goroutines.
	db.SetMaxOpenConns(1)

	schema := `
		CREATE TABLE IF NOT EXISTS snapshots (
			slot       TEXT NOT NULL,
			org_id     TEXT NOT NULL,
			payload    BLOB NOT NULL,
			updated_at TIMESTAMP NOT NULL,
			PRIMARY KEY (slot, org_id)
		)
	`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create snapshot schema: %w", err)
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Put stores v as JSON under (slot, orgID), replacing any previous value.
func (s *Store) Put(ctx context.Context, slot Slot, orgID string, v interface{}) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal snapshot payload: %w", err)
	}

	query := `
		INSERT INTO snapshots (slot, org_id, payload, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (slot, org_id) DO UPDATE SET
			payload = excluded.payload,
			updated_at = excluded.updated_at
	`
	if _, err := s.db.ExecContext(ctx, query, string(slot), orgID, payload, time.Now().UTC()); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	return nil
}

// Get unmarshals the stored value for (slot, orgID) into v.
func (s *Store) Get(ctx context.Context, slot Slot, orgID string, v interface{}) error {
	var payload []byte
	query := `SELECT payload FROM snapshots WHERE slot = ? AND org_id = ?`
	err := s.db.QueryRowContext(ctx, query, string(slot), orgID).Scan(&payload)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("read snapshot: %w", err)
	}

	if err := json.Unmarshal(payload, v); err != nil {
		return fmt.Errorf("unmarshal snapshot payload: %w", err)
	}
	return nil
}

// UpdatedAt returns when a slot was last written.
func (s *Store) UpdatedAt(ctx context.Context, slot Slot, orgID string) (time.Time, error) {
	var at time.Time
	query := `SELECT updated_at FROM snapshots WHERE slot = ? AND org_id = ?`
	err := s.db.QueryRowContext(ctx, query, string(slot), orgID).Scan(&at)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return time.Time{}, ErrNotFound
		}
		return time.Time{}, fmt.Errorf("read snapshot timestamp: %w", err)
	}
	return at, nil
}
