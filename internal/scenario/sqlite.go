package scenario

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/aas-risk-engine/internal/domain"
)

// SQLiteStore implements the Store interface using SQLite.
type SQLiteStore struct {
	db     *sql.DB
	dbPath string
}

// NewSQLiteStore creates a new SQLite scenario store. It creates the
// database file and schema if they don't exist.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// WAL mode for better concurrency.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set WAL mode: %w", err)
	}

	if err := createSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &SQLiteStore{
		db:     db,
		dbPath: dbPath,
	}, nil
}

// createSchema creates the database tables and indexes.
func createSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS scenarios (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL UNIQUE,
		description TEXT DEFAULT '',
		input TEXT NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_scenarios_name ON scenarios(name);
	CREATE INDEX IF NOT EXISTS idx_scenarios_created_at ON scenarios(created_at);
	`

	_, err := db.Exec(schema)
	return err
}

// scanner is an interface for sql.Row and sql.Rows.
type scanner interface {
	Scan(dest ...interface{}) error
}

// scanScenario scans a row into a Scenario struct.
func scanScenario(s scanner) (*Scenario, error) {
	sc := &Scenario{}
	var inputJSON string

	err := s.Scan(&sc.ID, &sc.Name, &sc.Description, &inputJSON, &sc.CreatedAt, &sc.UpdatedAt)
	if err != nil {
		return nil, err
	}

	sc.Input = &domain.InputRecord{}
	if err := json.Unmarshal([]byte(inputJSON), sc.Input); err != nil {
		return nil, fmt.Errorf("failed to decode input record: %w", err)
	}
	return sc, nil
}

// Save stores or updates a scenario, keyed by name.
func (s *SQLiteStore) Save(ctx context.Context, sc *Scenario) error {
	if err := sc.Validate(); err != nil {
		return err
	}

	inputJSON, err := json.Marshal(sc.Input)
	if err != nil {
		return fmt.Errorf("failed to encode input record: %w", err)
	}
	now := time.Now()

	var existingID string
	var createdAt time.Time
	err = s.db.QueryRowContext(ctx,
		"SELECT id, created_at FROM scenarios WHERE name = ?", sc.Name,
	).Scan(&existingID, &createdAt)

	if err == nil {
		sc.ID = existingID
		sc.CreatedAt = createdAt
		sc.UpdatedAt = now

		_, err = s.db.ExecContext(ctx, `
			UPDATE scenarios SET
				description = ?,
				input = ?,
				updated_at = ?
			WHERE id = ?
		`, sc.Description, string(inputJSON), now, existingID)
		return err
	}

	if err != sql.ErrNoRows {
		return fmt.Errorf("failed to check existing: %w", err)
	}

	if sc.ID == "" {
		sc.ID = uuid.New().String()
	}
	sc.CreatedAt = now
	sc.UpdatedAt = now

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO scenarios (id, name, description, input, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, sc.ID, sc.Name, sc.Description, string(inputJSON), now, now)
	if err != nil {
		return fmt.Errorf("failed to insert: %w", err)
	}

	return nil
}

// Get retrieves a scenario by id.
func (s *SQLiteStore) Get(ctx context.Context, id string) (*Scenario, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, description, input, created_at, updated_at
		FROM scenarios
		WHERE id = ?
		LIMIT 1
	`, id)

	sc, err := scanScenario(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan: %w", err)
	}
	return sc, nil
}

// GetByName retrieves a scenario by its unique name.
func (s *SQLiteStore) GetByName(ctx context.Context, name string) (*Scenario, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, description, input, created_at, updated_at
		FROM scenarios
		WHERE name = ?
		LIMIT 1
	`, name)

	sc, err := scanScenario(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan: %w", err)
	}
	return sc, nil
}

// List returns scenarios with pagination, most recent first.
func (s *SQLiteStore) List(ctx context.Context, limit, offset int) ([]*Scenario, error) {
	if limit <= 0 {
		limit = maxExportLimit
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, description, input, created_at, updated_at
		FROM scenarios
		ORDER BY created_at DESC, name ASC
		LIMIT ? OFFSET ?
	`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query: %w", err)
	}
	defer rows.Close()

	var result []*Scenario
	for rows.Next() {
		sc, err := scanScenario(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		result = append(result, sc)
	}
	return result, rows.Err()
}

// Count returns the total number of stored scenarios.
func (s *SQLiteStore) Count(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM scenarios").Scan(&count)
	return count, err
}

// Delete removes a scenario by id.
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM scenarios WHERE id = ?", id)
	return err
}

// maxExportLimit is the maximum number of entries to export at once.
const maxExportLimit = 1000000

// ExportJSON exports all scenarios to a JSON writer.
func (s *SQLiteStore) ExportJSON(ctx context.Context, w io.Writer) error {
	all, err := s.List(ctx, maxExportLimit, 0)
	if err != nil {
		return fmt.Errorf("failed to list scenarios: %w", err)
	}
	return writeExport(w, all)
}

// ImportJSON imports scenarios from a JSON reader.
func (s *SQLiteStore) ImportJSON(ctx context.Context, r io.Reader) (imported int, skipped int, err error) {
	return importScenarios(ctx, s, r)
}

// Close closes the store and releases resources.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
