// Package plugin hosts optional risk contributors. A plugin inspects the
// raw input record and may append extra multipliers per domain; it can
// never change built-in resolution, and a failing plugin degrades to a
// warning rather than aborting the calculation.
package plugin

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"

	"github.com/aas-risk-engine/internal/domain"
)

// InputField documents one input a contributor reads, so callers can
// discover what to populate.
type InputField struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Required    bool   `json:"required"`
}

// Contributor is the capability surface of a plugin. Contributions are
// extra multiplier values per domain, appended after built-in rules.
type Contributor interface {
	ContributeMultipliers(input *domain.InputRecord) (map[domain.Domain][]float64, error)
	DeclareInputs() []InputField
}

// ContributorFunc adapts a bare function into a Contributor with no
// declared inputs.
type ContributorFunc func(input *domain.InputRecord) (map[domain.Domain][]float64, error)

// ContributeMultipliers implements Contributor.
func (f ContributorFunc) ContributeMultipliers(input *domain.InputRecord) (map[domain.Domain][]float64, error) {
	return f(input)
}

// DeclareInputs implements Contributor.
func (f ContributorFunc) DeclareInputs() []InputField { return nil }

type entry struct {
	contributor Contributor
	breaker     *gobreaker.CircuitBreaker
}

// Registry holds the registered contributors. Registration happens at
// startup; afterwards the registry is read-only and safe for concurrent
// Collect calls.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]*entry
	log     *logrus.Logger
}

// NewRegistry creates an empty plugin registry.
func NewRegistry(logger *logrus.Logger) *Registry {
	if logger == nil {
		logger = logrus.New()
	}
	return &Registry{
		entries: make(map[string]*entry),
		log:     logger,
	}
}

// NewDefaultRegistry creates a registry with the built-in contributors
// registered.
func NewDefaultRegistry(logger *logrus.Logger) *Registry {
	r := NewRegistry(logger)
	_ = r.Register(FertilityPluginName, &FertilityContributor{})
	return r
}

// Register adds a contributor under a unique name. Each contributor gets
// its own circuit breaker so one repeatedly failing plugin is
// short-circuited without affecting the others.
func (r *Registry) Register(name string, c Contributor) error {
	if name == "" {
		return fmt.Errorf("plugin name is required")
	}
	if c == nil {
		return fmt.Errorf("plugin %q: contributor is nil", name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.entries[name]; exists {
		return fmt.Errorf("plugin %q already registered", name)
	}

	r.entries[name] = &entry{
		contributor: c,
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        "plugin-" + name,
			MaxRequests: 1,
			Timeout:     30 * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= 5
			},
		}),
	}
	return nil
}

// Names lists the registered plugin names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.entries))
	for name := range r.entries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Inputs returns the declared inputs of a registered plugin.
func (r *Registry) Inputs(name string) ([]InputField, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.entries[name]
	if !ok {
		return nil, false
	}
	return e.contributor.DeclareInputs(), true
}

// Collect runs the named plugins against the input and returns their
// contributions in sorted name order, so output is independent of
// registration and request ordering. A plugin that errors, panics, or is
// short-circuited contributes nothing and adds a warning.
func (r *Registry) Collect(input *domain.InputRecord, active []string) ([]domain.PluginContribution, []domain.Warning) {
	if len(active) == 0 {
		return nil, nil
	}

	names := make([]string, len(active))
	copy(names, active)
	sort.Strings(names)

	var contributions []domain.PluginContribution
	var warnings []domain.Warning

	for _, name := range names {
		r.mu.RLock()
		e, ok := r.entries[name]
		r.mu.RUnlock()
		if !ok {
			warnings = append(warnings, domain.Warning{
				Source:  name,
				Message: "plugin is not registered",
			})
			continue
		}

		multipliers, err := r.run(e, input)
		if err != nil {
			perr := &domain.PluginError{Plugin: name, Err: err}
			r.log.WithFields(logrus.Fields{
				"plugin": name,
				"error":  err.Error(),
			}).Warn("Plugin contribution failed")
			warnings = append(warnings, domain.Warning{
				Source:  name,
				Message: perr.Error(),
			})
			continue
		}
		if len(multipliers) == 0 {
			continue
		}

		contributions = append(contributions, domain.PluginContribution{
			Plugin:      name,
			Multipliers: multipliers,
		})
	}

	return contributions, warnings
}

// run executes one contributor behind its breaker, converting panics
// into errors.
func (r *Registry) run(e *entry, input *domain.InputRecord) (map[domain.Domain][]float64, error) {
	result, err := e.breaker.Execute(func() (out interface{}, err error) {
		defer func() {
			if rec := recover(); rec != nil {
				err = fmt.Errorf("panic: %v", rec)
			}
		}()
		return e.contributor.ContributeMultipliers(input)
	})
	if err != nil {
		return nil, err
	}
	multipliers, _ := result.(map[domain.Domain][]float64)
	return multipliers, nil
}
