// Package service implements the risk calculation pipeline: multiplier
// resolution, risk composition, event-free-years estimation, and the
// engine that drives them.
package service

import (
	"math"
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/aas-risk-engine/internal/domain"
	"github.com/aas-risk-engine/internal/plugin"
)

// Resolution is the resolver output for one calculation: per-domain
// multiplier chains in application order, plus non-fatal warnings.
// Protective baseline adjustments are kept separate from exposure and
// intervention multipliers so the compositor can report them apart.
type Resolution struct {
	Protective  map[domain.Domain][]float64
	Multipliers map[domain.Domain][]float64
	Warnings    []domain.Warning
}

// Resolver turns an input record, its exposure profile, and the active
// preset into per-domain multiplier chains. Resolution follows a fixed
// rule order, so identical inputs always produce identical chains:
// categorical exposure rules, then the scalable dose-excess rule, then
// protective and intervention rules, then plugin contributions.
type Resolver struct {
	registry *plugin.Registry
	log      *logrus.Logger
}

// NewResolver creates a Resolver backed by the given plugin registry.
func NewResolver(registry *plugin.Registry, logger *logrus.Logger) *Resolver {
	if logger == nil {
		logger = logrus.New()
	}
	return &Resolver{registry: registry, log: logger}
}

// Resolve computes the multiplier chains for one calculation. It never
// multiplies anything; composition belongs to the compositor.
func (r *Resolver) Resolve(input *domain.InputRecord, preset *domain.Preset, profile domain.ExposureProfile) *Resolution {
	res := &Resolution{
		Protective:  protectiveFactors(input),
		Multipliers: make(map[domain.Domain][]float64),
	}
	t := preset.Thresholds

	apply := func(key string, condition bool) {
		if !condition {
			return
		}
		table, ok := preset.Multipliers[key]
		if !ok {
			return
		}
		for _, d := range domain.AllDomains {
			if v, ok := table[d]; ok {
				res.Multipliers[d] = append(res.Multipliers[d], v)
			}
		}
	}

	// Categorical exposure rules.
	apply(domain.KeyStack300, profile.WeeklyEquivalentTotal >= t.StackWeeklyMg && profile.SupraWeeks >= t.StackMinWeeks)
	if profile.OralWeeks > 0 && !input.Interventions.EliminateOrals {
		if profile.OralHighDoseWeeks > t.OralHighTierWeeks {
			apply(domain.KeyOral17aaHigh, true)
		} else {
			apply(domain.KeyOral17aaModest, true)
		}
	}
	apply(domain.KeyHDLNadirLow, profile.HDLNadirLow)
	apply(domain.KeyHematocritHigh, profile.HematocritHigh)
	apply(domain.KeyRecoveryLow, profile.RecoveryRatio < t.RecoveryCategorical)

	// Scalable dose-excess rule: the per-step multiplier compounds with
	// the excess above the physiologic threshold.
	excess := profile.WeeklyEquivalentTotal - t.PhysiologicWeeklyMg
	if excess > 0 && profile.SupraWeeks >= t.ScalableMinWeeks {
		if table, ok := preset.Multipliers[domain.KeyPer100mgOver150]; ok {
			steps := excess / t.ScalableStepMg
			for _, d := range domain.AllDomains {
				if v, ok := table[d]; ok {
					res.Multipliers[d] = append(res.Multipliers[d], math.Pow(v, steps))
				}
			}
		}
	}

	// Protective training and lifestyle rules.
	apply(domain.KeyVO2Plus5, input.Interventions.VO2MaxImprovement >= 5)
	apply(domain.KeyAdditionalVO2Plus5, input.Interventions.VO2MaxImprovement >= 10)
	apply(domain.KeyBodyfatMinus5, input.Interventions.BodyfatReduction >= 5)
	apply(domain.KeyMedDietHigh, input.Lifestyle.MediterraneanAdherence >= 8)
	apply(domain.KeyOSATreated, input.Lifestyle.OSAStatus == domain.OSATreated)
	apply(domain.KeyReplaceHeavyMild, input.Interventions.ReplaceHeavyMild)

	// Medication and protocol rules.
	switch input.Interventions.StatinIntensity {
	case domain.StatinLow:
		apply(domain.KeyStatinLow, true)
	case domain.StatinModerate:
		apply(domain.KeyStatinModerate, true)
	case domain.StatinHigh:
		apply(domain.KeyStatinHigh, true)
	}
	apply(domain.KeyEzetimibe, input.Interventions.Ezetimibe)
	apply(domain.KeyPCSK9, input.Interventions.PCSK9)
	apply(domain.KeyOmega3, input.Interventions.Omega3)
	apply(domain.KeyGLP1, input.Interventions.GLP1Agonist)
	apply(domain.KeyMetformin, input.Interventions.Metformin)
	apply(domain.KeyPDE5Daily, input.Interventions.PDE5Daily)
	apply(domain.KeyFinasteride, input.Interventions.Finasteride)
	apply(domain.KeyAIExcess, input.Interventions.AIExcess)
	apply(domain.KeySERMPostCycle, input.Interventions.SERMPostCycle)
	apply(domain.KeyHCGSupport, input.Interventions.HCG)

	// Hematocrit management only matters when hematocrit is actually
	// elevated; dose reduction takes precedence over donation alone.
	if profile.HematocritHigh {
		if input.Interventions.DoseReductionHct {
			apply(domain.KeyDoseReductionHct, true)
		} else if input.Interventions.BloodDonationOnly {
			apply(domain.KeyBloodDonationOnly, true)
		}
	}

	// Plugin contributions are appended last and never reorder or
	// replace built-in multipliers.
	contributions, warnings := r.registry.Collect(input, input.Plugins)
	res.Warnings = append(res.Warnings, warnings...)
	for _, c := range contributions {
		res.Warnings = append(res.Warnings, r.merge(res, preset, c)...)
	}

	return res
}

// merge appends one plugin contribution to the multiplier chains,
// dropping entries for unknown domains and non-positive or non-finite
// values with a warning each.
func (r *Resolver) merge(res *Resolution, preset *domain.Preset, c domain.PluginContribution) []domain.Warning {
	var warnings []domain.Warning

	keys := make([]domain.Domain, 0, len(c.Multipliers))
	for d := range c.Multipliers {
		keys = append(keys, d)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })

	for _, d := range keys {
		if _, ok := preset.Baselines[d]; !ok {
			warnings = append(warnings, domain.Warning{
				Source:  c.Plugin,
				Message: "dropped contribution for unknown domain " + d.String(),
			})
			continue
		}
		for _, v := range c.Multipliers[d] {
			if v <= 0 || math.IsNaN(v) || math.IsInf(v, 0) {
				warnings = append(warnings, domain.Warning{
					Source:  c.Plugin,
					Message: "dropped non-positive multiplier for domain " + d.String(),
				})
				continue
			}
			res.Multipliers[d] = append(res.Multipliers[d], v)
		}
	}

	return warnings
}

// protectiveFactors personalizes the population baseline for favourable
// labs, fitness, and lifestyle. Unreported values never trigger an
// adjustment.
func protectiveFactors(input *domain.InputRecord) map[domain.Domain][]float64 {
	factors := make(map[domain.Domain][]float64)

	apply := func(name string, condition bool) {
		if !condition {
			return
		}
		table := domain.ProtectiveAdjustments[name]
		for _, d := range domain.AllDomains {
			if v, ok := table[d]; ok {
				factors[d] = append(factors[d], v)
			}
		}
	}

	apply("ldl_optimal", input.Labs.LDL > 0 && input.Labs.LDL <= 70)
	apply("vo2max_excellent", input.Performance.VO2Max > 50)
	apply("bodyfat_optimal", input.Anthropometrics.BodyFatPct > 0 && input.Anthropometrics.BodyFatPct <= 15)
	apply("diet_excellent", input.Lifestyle.MediterraneanAdherence >= 8)
	apply("non_smoker", input.Lifestyle.Smoking != nil && !*input.Lifestyle.Smoking)
	apply("osa_treated", input.Lifestyle.OSAStatus == domain.OSATreated)

	return factors
}
