// Package scenario persists named risk scenarios so regimens and
// intervention sets can be saved, recalled, cloned, and exported across
// sessions. Three backends share one interface: in-memory, SQLite, and
// PostgreSQL.
package scenario

import (
	"context"
	"io"
	"time"

	"github.com/aas-risk-engine/internal/domain"
)

// Scenario is one saved input record with identifying metadata. Names
// are unique per store; saving under an existing name updates it.
type Scenario struct {
	ID          string              `json:"id"`
	Name        string              `json:"name"`
	Description string              `json:"description,omitempty"`
	Input       *domain.InputRecord `json:"input"`
	CreatedAt   time.Time           `json:"created_at"`
	UpdatedAt   time.Time           `json:"updated_at"`
}

// Export is the portable JSON envelope for scenario dumps.
type Export struct {
	Version    string      `json:"version"`
	ExportedAt time.Time   `json:"exported_at"`
	Count      int         `json:"count"`
	Scenarios  []*Scenario `json:"scenarios"`
}

// Store is the persistence contract for scenarios. Get and GetByName
// return (nil, nil) when no scenario matches.
type Store interface {
	Save(ctx context.Context, s *Scenario) error
	Get(ctx context.Context, id string) (*Scenario, error)
	GetByName(ctx context.Context, name string) (*Scenario, error)
	List(ctx context.Context, limit, offset int) ([]*Scenario, error)
	Count(ctx context.Context) (int64, error)
	Delete(ctx context.Context, id string) error
	ExportJSON(ctx context.Context, w io.Writer) error
	ImportJSON(ctx context.Context, r io.Reader) (imported, skipped int, err error)
	Close() error
}

// exportVersion tags the export envelope format.
const exportVersion = "1.0"

// Validate checks the scenario invariants before a save.
func (s *Scenario) Validate() error {
	if s.Name == "" {
		return domain.NewValidationError("name", "scenario name is required", nil)
	}
	if s.Input == nil {
		return domain.NewValidationError("input", "scenario input is required", nil)
	}
	return s.Input.Regimen.Validate()
}
