package scenario

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore is an in-process Store, used when no database is
// configured and in tests.
type MemoryStore struct {
	mu        sync.RWMutex
	byID      map[string]*Scenario
	idsByName map[string]string
}

// NewMemoryStore creates an empty in-memory scenario store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		byID:      make(map[string]*Scenario),
		idsByName: make(map[string]string),
	}
}

// Save inserts the scenario, or updates it if the name is taken.
func (m *MemoryStore) Save(_ context.Context, s *Scenario) error {
	if err := s.Validate(); err != nil {
		return err
	}
	now := time.Now()

	m.mu.Lock()
	defer m.mu.Unlock()

	if existingID, ok := m.idsByName[s.Name]; ok {
		existing := m.byID[existingID]
		s.ID = existingID
		s.CreatedAt = existing.CreatedAt
		s.UpdatedAt = now
	} else {
		if s.ID == "" {
			s.ID = uuid.New().String()
		}
		s.CreatedAt = now
		s.UpdatedAt = now
	}

	stored := *s
	m.byID[s.ID] = &stored
	m.idsByName[s.Name] = s.ID
	return nil
}

// Get returns the scenario with the given id, or nil.
func (m *MemoryStore) Get(_ context.Context, id string) (*Scenario, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.byID[id]
	if !ok {
		return nil, nil
	}
	clone := *s
	return &clone, nil
}

// GetByName returns the scenario with the given name, or nil.
func (m *MemoryStore) GetByName(_ context.Context, name string) (*Scenario, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	id, ok := m.idsByName[name]
	if !ok {
		return nil, nil
	}
	clone := *m.byID[id]
	return &clone, nil
}

// List returns scenarios ordered by most recent creation first.
func (m *MemoryStore) List(_ context.Context, limit, offset int) ([]*Scenario, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	all := make([]*Scenario, 0, len(m.byID))
	for _, s := range m.byID {
		clone := *s
		all = append(all, &clone)
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].Name < all[j].Name
		}
		return all[i].CreatedAt.After(all[j].CreatedAt)
	})

	if offset >= len(all) {
		return nil, nil
	}
	all = all[offset:]
	if limit > 0 && limit < len(all) {
		all = all[:limit]
	}
	return all, nil
}

// Count returns the number of stored scenarios.
func (m *MemoryStore) Count(_ context.Context) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return int64(len(m.byID)), nil
}

// Delete removes a scenario by id. Deleting an absent id is a no-op.
func (m *MemoryStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if s, ok := m.byID[id]; ok {
		delete(m.idsByName, s.Name)
		delete(m.byID, id)
	}
	return nil
}

// ExportJSON writes all scenarios as a JSON envelope.
func (m *MemoryStore) ExportJSON(ctx context.Context, w io.Writer) error {
	all, err := m.List(ctx, 0, 0)
	if err != nil {
		return err
	}
	return writeExport(w, all)
}

// ImportJSON reads a JSON envelope, adding scenarios whose names are
// not yet taken and skipping the rest.
func (m *MemoryStore) ImportJSON(ctx context.Context, r io.Reader) (int, int, error) {
	return importScenarios(ctx, m, r)
}

// Close implements Store; the memory store holds no resources.
func (m *MemoryStore) Close() error { return nil }

// writeExport renders the shared export envelope.
func writeExport(w io.Writer, all []*Scenario) error {
	export := &Export{
		Version:    exportVersion,
		ExportedAt: time.Now(),
		Count:      len(all),
		Scenarios:  all,
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(export)
}

// importScenarios is the shared import loop: new names are saved,
// existing names are skipped.
func importScenarios(ctx context.Context, store Store, r io.Reader) (imported, skipped int, err error) {
	var export Export
	if err := json.NewDecoder(r).Decode(&export); err != nil {
		return 0, 0, fmt.Errorf("failed to decode JSON: %w", err)
	}

	for _, s := range export.Scenarios {
		existing, err := store.GetByName(ctx, s.Name)
		if err != nil {
			return imported, skipped, fmt.Errorf("failed to check existing: %w", err)
		}
		if existing != nil {
			skipped++
			continue
		}

		if err := store.Save(ctx, s); err != nil {
			return imported, skipped, fmt.Errorf("failed to save: %w", err)
		}
		imported++
	}

	return imported, skipped, nil
}

// Clone copies an existing scenario under a new name in any Store.
func Clone(ctx context.Context, store Store, id, newName string) (*Scenario, error) {
	source, err := store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if source == nil {
		return nil, fmt.Errorf("scenario %s not found", id)
	}

	existing, err := store.GetByName(ctx, newName)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("scenario name %q is already taken", newName)
	}

	clone := &Scenario{
		Name:        newName,
		Description: source.Description,
		Input:       source.Input,
	}
	if err := store.Save(ctx, clone); err != nil {
		return nil, err
	}
	return clone, nil
}
