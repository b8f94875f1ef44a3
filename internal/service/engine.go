package service

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/aas-risk-engine/internal/coefficient"
	"github.com/aas-risk-engine/internal/domain"
	"github.com/aas-risk-engine/internal/exposure"
	"github.com/aas-risk-engine/internal/plugin"
	"github.com/aas-risk-engine/internal/potency"
)

const (
	// DefaultPresetName is used when the input names no preset.
	DefaultPresetName = "moderate"

	// ReferencePresetName supplies the fixed relative-risk denominator
	// baselines, regardless of which preset a calculation uses.
	ReferencePresetName = "moderate"

	// defaultAge stands in when the caller reports no age.
	defaultAge = 30
)

// Engine drives one full risk calculation: normalization, exposure
// aggregation, multiplier resolution, composition, and event-free-years
// estimation. It holds no per-calculation state and is safe for
// concurrent use.
type Engine struct {
	store    *coefficient.Store
	resolver *Resolver
	log      *logrus.Logger
}

// NewEngine creates an Engine over a coefficient store and a plugin
// registry.
func NewEngine(store *coefficient.Store, registry *plugin.Registry, logger *logrus.Logger) *Engine {
	if logger == nil {
		logger = logrus.New()
	}
	return &Engine{
		store:    store,
		resolver: NewResolver(registry, logger),
		log:      logger,
	}
}

// Calculate computes the full risk record for one input. The active
// preset and plugin set come from the input alone; nothing ambient is
// consulted, so identical inputs always yield identical records.
func (e *Engine) Calculate(ctx context.Context, input *domain.InputRecord) (*domain.RiskRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if input == nil {
		return nil, domain.NewValidationError("input", "input record is required", nil)
	}
	if err := input.Regimen.Validate(); err != nil {
		return nil, err
	}
	if !input.Interventions.StatinIntensity.IsValid() {
		return nil, domain.NewValidationError("statin_intensity", "unrecognized statin intensity", input.Interventions.StatinIntensity)
	}

	presetName := input.Preset
	if presetName == "" {
		presetName = DefaultPresetName
	}
	preset, err := e.store.Load(presetName)
	if err != nil {
		return nil, err
	}
	reference, err := e.store.Load(ReferencePresetName)
	if err != nil {
		return nil, err
	}

	doses, err := potency.NormalizeRegimen(input.Regimen, input.PotencyOverrides)
	if err != nil {
		return nil, err
	}

	profile := exposure.BuildProfile(doses, input.Labs, preset.Thresholds)
	category := exposure.CategoryFor(profile, preset.Thresholds)

	resolution := e.resolver.Resolve(input, preset, profile)
	compositor := NewCompositor(reference.Baselines)
	domains := compositor.Compose(preset, resolution, category)

	age := input.Demographics.Age
	if age <= 0 {
		age = defaultAge
	}
	for d, dr := range domains {
		if ref, ok := compositor.Reference(d); ok {
			dr.EventFreeYears = EventFreeYears(d, ref-dr.AbsoluteRisk, age, domain.DefaultHorizonAge)
			domains[d] = dr
		}
	}

	e.log.WithFields(logrus.Fields{
		"preset":     presetName,
		"category":   category,
		"weekly_te":  profile.WeeklyEquivalentTotal,
		"supra_wks":  profile.SupraWeeks,
		"domains":    len(domains),
		"warnings":   len(resolution.Warnings),
		"plugin_set": input.Plugins,
	}).Info("Risk calculation complete")

	return &domain.RiskRecord{
		Preset:       presetName,
		ModelVersion: preset.Version,
		Category:     category,
		Exposure:     profile,
		Domains:      domains,
		Warnings:     resolution.Warnings,
	}, nil
}

// CompareImpact quantifies the per-domain effect of moving from a base
// input to a variant, typically the same scenario with an intervention
// enabled. Both calculations run under the base input's preset.
func (e *Engine) CompareImpact(ctx context.Context, base, variant *domain.InputRecord) (map[domain.Domain]domain.DomainImpact, error) {
	if base == nil || variant == nil {
		return nil, domain.NewValidationError("input", "base and variant records are required", nil)
	}

	aligned := *variant
	aligned.Preset = base.Preset

	baseRecord, err := e.Calculate(ctx, base)
	if err != nil {
		return nil, err
	}
	variantRecord, err := e.Calculate(ctx, &aligned)
	if err != nil {
		return nil, err
	}

	impact := make(map[domain.Domain]domain.DomainImpact, len(baseRecord.Domains))
	for d, b := range baseRecord.Domains {
		v, ok := variantRecord.Domains[d]
		if !ok {
			continue
		}

		arr := b.AbsoluteRisk - v.AbsoluteRisk
		rrr := 0.0
		ratio := 1.0
		if b.AbsoluteRisk > 0 {
			rrr = arr / b.AbsoluteRisk
			ratio = v.AbsoluteRisk / b.AbsoluteRisk
		}

		impact[d] = domain.DomainImpact{
			AbsoluteRiskReduction: arr,
			RelativeRiskReduction: rrr,
			RiskRatio:             ratio,
			EventFreeYearsGained:  v.EventFreeYears - b.EventFreeYears,
		}
	}

	return impact, nil
}

// Presets lists the preset names available to calculations.
func (e *Engine) Presets() ([]string, error) {
	return e.store.Available()
}
