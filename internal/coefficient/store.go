// Package coefficient loads and caches named coefficient presets from
// YAML files. A preset bundles per-domain baseline risks, multiplier
// tables, and threshold overrides; it is validated once at load time and
// immutable afterwards.
package coefficient

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"

	"github.com/aas-risk-engine/internal/domain"
)

const (
	presetFilePrefix = "coefficients_"
	presetFileSuffix = ".yaml"
	cacheSize        = 16
)

// Store resolves preset names to validated coefficient sets. Loaded
// presets are cached process-wide; concurrent use is safe.
type Store struct {
	dir   string
	cache *lru.Cache[string, *domain.Preset]
	log   *logrus.Logger
}

// NewStore creates a Store reading presets from dir.
func NewStore(dir string, logger *logrus.Logger) (*Store, error) {
	if logger == nil {
		logger = logrus.New()
	}
	cache, err := lru.New[string, *domain.Preset](cacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create preset cache: %w", err)
	}
	return &Store{dir: dir, cache: cache, log: logger}, nil
}

// Load returns the named preset, reading and validating its file on the
// first call and serving the cached copy afterwards. A missing file
// yields an UnknownPresetError; a file that fails validation yields an
// InvalidCoefficientError.
func (s *Store) Load(name string) (*domain.Preset, error) {
	if preset, ok := s.cache.Get(name); ok {
		return preset, nil
	}

	path := filepath.Join(s.dir, presetFilePrefix+name+presetFileSuffix)
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil, &domain.UnknownPresetError{Name: name}
		}
		return nil, fmt.Errorf("failed to stat preset file %s: %w", path, err)
	}

	preset, err := s.loadFile(name, path)
	if err != nil {
		return nil, err
	}

	s.cache.Add(name, preset)
	s.log.WithFields(logrus.Fields{
		"preset":  name,
		"version": preset.Version,
		"tables":  len(preset.Multipliers),
	}).Info("Loaded coefficient preset")

	return preset, nil
}

// Available lists the preset names that have a backing file in the
// store's directory, sorted.
func (s *Store) Available() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read preset directory %s: %w", s.dir, err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		fn := e.Name()
		if strings.HasPrefix(fn, presetFilePrefix) && strings.HasSuffix(fn, presetFileSuffix) {
			names = append(names, strings.TrimSuffix(strings.TrimPrefix(fn, presetFilePrefix), presetFileSuffix))
		}
	}
	sort.Strings(names)
	return names, nil
}

func (s *Store) loadFile(name, path string) (*domain.Preset, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read preset file %s: %w", path, err)
	}

	preset := &domain.Preset{
		Name:        name,
		Version:     v.GetString("model_version"),
		Baselines:   make(map[domain.Domain]float64),
		Multipliers: make(map[string]map[domain.Domain]float64),
		Thresholds:  domain.DefaultThresholds(),
	}
	if err := v.UnmarshalKey("thresholds", &preset.Thresholds); err != nil {
		return nil, &domain.InvalidCoefficientError{
			Preset: name, Key: "thresholds", Reason: err.Error(),
		}
	}

	for key, raw := range v.AllSettings() {
		switch key {
		case "model_version", "thresholds":
			continue
		}
		table, err := parseTable(name, key, raw)
		if err != nil {
			return nil, err
		}
		if key == domain.KeyBaseline {
			preset.Baselines = table
		} else {
			preset.Multipliers[key] = table
		}
	}

	if err := validate(preset); err != nil {
		return nil, err
	}
	return preset, nil
}

// parseTable converts one top-level YAML mapping into a domain->value
// table, rejecting unknown domains and non-positive values.
func parseTable(preset, key string, raw interface{}) (map[domain.Domain]float64, error) {
	mapping, ok := raw.(map[string]interface{})
	if !ok {
		return nil, &domain.InvalidCoefficientError{
			Preset: preset, Key: key, Reason: "expected a domain-to-value mapping",
		}
	}

	table := make(map[domain.Domain]float64, len(mapping))
	for ds, dv := range mapping {
		d := domain.Domain(ds)
		if !d.IsValid() {
			return nil, &domain.InvalidCoefficientError{
				Preset: preset, Key: key, Domain: d, Reason: "unknown risk domain",
			}
		}
		value, ok := toFloat(dv)
		if !ok {
			return nil, &domain.InvalidCoefficientError{
				Preset: preset, Key: key, Domain: d, Reason: fmt.Sprintf("value %v is not numeric", dv),
			}
		}
		if value <= 0 {
			return nil, &domain.InvalidCoefficientError{
				Preset: preset, Key: key, Domain: d, Reason: "value must be strictly positive",
			}
		}
		table[d] = value
	}
	return table, nil
}

// validate enforces the cross-table invariants: a baseline table must be
// present with probabilities in (0,1], and every domain referenced by a
// multiplier table must have a baseline.
func validate(p *domain.Preset) error {
	if len(p.Baselines) == 0 {
		return &domain.InvalidCoefficientError{
			Preset: p.Name, Key: domain.KeyBaseline, Reason: "baseline table is missing or empty",
		}
	}
	for d, v := range p.Baselines {
		if v > 1 {
			return &domain.InvalidCoefficientError{
				Preset: p.Name, Key: domain.KeyBaseline, Domain: d,
				Reason: "baseline probability exceeds 1",
			}
		}
	}
	for key, table := range p.Multipliers {
		for d := range table {
			if _, ok := p.Baselines[d]; !ok {
				return &domain.InvalidCoefficientError{
					Preset: p.Name, Key: key, Domain: d,
					Reason: "domain has no baseline in " + domain.KeyBaseline,
				}
			}
		}
	}
	return nil
}

func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}
