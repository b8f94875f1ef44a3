package scenario

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"
)

// PostgresStore implements the Store interface using PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a new PostgreSQL scenario store. It expects
// the schema to already exist.
func NewPostgresStore(db *sql.DB) (*PostgresStore, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is required")
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &PostgresStore{db: db}, nil
}

// NewPostgresStoreFromURL creates a new PostgreSQL scenario store from a
// connection URL.
func NewPostgresStoreFromURL(databaseURL string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	store, err := NewPostgresStore(db)
	if err != nil {
		db.Close()
		return nil, err
	}

	return store, nil
}

// Save stores or updates a scenario, keyed by name.
func (s *PostgresStore) Save(ctx context.Context, sc *Scenario) error {
	if err := sc.Validate(); err != nil {
		return err
	}

	inputJSON, err := json.Marshal(sc.Input)
	if err != nil {
		return fmt.Errorf("failed to encode input record: %w", err)
	}
	now := time.Now()
	if sc.ID == "" {
		sc.ID = uuid.New().String()
	}

	query := `
		INSERT INTO scenarios (id, name, description, input, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (name) DO UPDATE SET
			description = EXCLUDED.description,
			input = EXCLUDED.input,
			updated_at = EXCLUDED.updated_at
		RETURNING id, created_at
	`

	err = s.db.QueryRowContext(ctx, query,
		sc.ID, sc.Name, sc.Description, string(inputJSON), now, now,
	).Scan(&sc.ID, &sc.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to save scenario: %w", err)
	}

	sc.UpdatedAt = now
	return nil
}

// Get retrieves a scenario by id.
func (s *PostgresStore) Get(ctx context.Context, id string) (*Scenario, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, description, input, created_at, updated_at
		FROM scenarios
		WHERE id = $1
		LIMIT 1
	`, id)

	sc, err := scanScenario(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get scenario: %w", err)
	}
	return sc, nil
}

// GetByName retrieves a scenario by its unique name.
func (s *PostgresStore) GetByName(ctx context.Context, name string) (*Scenario, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, description, input, created_at, updated_at
		FROM scenarios
		WHERE name = $1
		LIMIT 1
	`, name)

	sc, err := scanScenario(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get scenario: %w", err)
	}
	return sc, nil
}

// List returns scenarios with pagination, most recent first.
func (s *PostgresStore) List(ctx context.Context, limit, offset int) ([]*Scenario, error) {
	if limit <= 0 {
		limit = pgMaxExportLimit
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, description, input, created_at, updated_at
		FROM scenarios
		ORDER BY created_at DESC, name ASC
		LIMIT $1 OFFSET $2
	`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list scenarios: %w", err)
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
func (s *PostgresStore) Count(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM scenarios").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count scenarios: %w", err)
	}
	return count, nil
}

// Delete removes a scenario by id.
func (s *PostgresStore) Delete(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM scenarios WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete scenario: %w", err)
	}
	return nil
}

// pgMaxExportLimit is the maximum number of entries to export at once.
const pgMaxExportLimit = 1000000

// ExportJSON exports all scenarios to a JSON writer.
func (s *PostgresStore) ExportJSON(ctx context.Context, w io.Writer) error {
	all, err := s.List(ctx, pgMaxExportLimit, 0)
	if err != nil {
		return fmt.Errorf("failed to list scenarios: %w", err)
	}
	return writeExport(w, all)
}

// ImportJSON imports scenarios from a JSON reader.
func (s *PostgresStore) ImportJSON(ctx context.Context, r io.Reader) (imported int, skipped int, err error) {
	return importScenarios(ctx, s, r)
}

// Close closes the store and releases resources.
func (s *PostgresStore) Close() error {
	return s.db.Close()
}
