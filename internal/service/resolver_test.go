package service

import (
	"math"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aas-risk-engine/internal/coefficient"
	"github.com/aas-risk-engine/internal/domain"
	"github.com/aas-risk-engine/internal/exposure"
	"github.com/aas-risk-engine/internal/plugin"
	"github.com/aas-risk-engine/internal/potency"
)

func loadModerate(t *testing.T) *domain.Preset {
	t.Helper()
	store, err := coefficient.NewStore(filepath.Join("..", "..", "config", "presets"), quietLogger())
	require.NoError(t, err)
	preset, err := store.Load("moderate")
	require.NoError(t, err)
	return preset
}

func profileFor(t *testing.T, input *domain.InputRecord, preset *domain.Preset) domain.ExposureProfile {
	t.Helper()
	doses, err := potency.NormalizeRegimen(input.Regimen, input.PotencyOverrides)
	require.NoError(t, err)
	return exposure.BuildProfile(doses, input.Labs, preset.Thresholds)
}

func TestResolveChainOrder(t *testing.T) {
	preset := loadModerate(t)
	registry := plugin.NewRegistry(quietLogger())
	require.NoError(t, registry.Register("extra", plugin.ContributorFunc(
		func(*domain.InputRecord) (map[domain.Domain][]float64, error) {
			return map[domain.Domain][]float64{domain.DomainASCVD: {1.05}}, nil
		})))
	resolver := NewResolver(registry, quietLogger())

	// 450 mg/week year-round: stack categorical, scalable at 3 steps,
	// recovery ratio 0, plus a statin and a plugin contribution.
	input := &domain.InputRecord{
		Regimen: steadyRegimen(450),
		Plugins: []string{"extra"},
	}
	input.Interventions.StatinIntensity = domain.StatinHigh

	profile := profileFor(t, input, preset)
	res := resolver.Resolve(input, preset, profile)

	chain := res.Multipliers[domain.DomainASCVD]
	require.Len(t, chain, 5)

	// Categorical rules first: stack, then low recovery ratio.
	assert.Equal(t, 1.25, chain[0])
	assert.Equal(t, 1.10, chain[1])
	// Scalable dose-excess rule next: 300 mg excess is three 100 mg steps.
	assert.InDelta(t, math.Pow(1.12, 3), chain[2], 1e-12)
	// Interventions after built-in exposure rules.
	assert.Equal(t, 0.70, chain[3])
	// Plugin contributions land last.
	assert.Equal(t, 1.05, chain[4])
	assert.Empty(t, res.Warnings)
}

func TestResolvePluginAppendedLast(t *testing.T) {
	preset := loadModerate(t)
	registry := plugin.NewRegistry(quietLogger())
	require.NoError(t, registry.Register("extra", plugin.ContributorFunc(
		func(*domain.InputRecord) (map[domain.Domain][]float64, error) {
			return map[domain.Domain][]float64{domain.DomainASCVD: {1.07}}, nil
		})))
	resolver := NewResolver(registry, quietLogger())

	input := &domain.InputRecord{
		Regimen: steadyRegimen(450),
		Plugins: []string{"extra"},
	}
	profile := profileFor(t, input, preset)
	res := resolver.Resolve(input, preset, profile)

	chain := res.Multipliers[domain.DomainASCVD]
	require.NotEmpty(t, chain)
	assert.Equal(t, 1.07, chain[len(chain)-1])
}

func TestResolveDropsMalformedPluginEntries(t *testing.T) {
	preset := loadModerate(t)
	registry := plugin.NewRegistry(quietLogger())
	require.NoError(t, registry.Register("messy", plugin.ContributorFunc(
		func(*domain.InputRecord) (map[domain.Domain][]float64, error) {
			return map[domain.Domain][]float64{
				domain.Domain("cardiomegaly"): {1.5},
				domain.DomainHepatic:          {-2, 1.4, math.NaN()},
			}, nil
		})))
	resolver := NewResolver(registry, quietLogger())

	input := &domain.InputRecord{Plugins: []string{"messy"}}
	profile := profileFor(t, input, preset)
	res := resolver.Resolve(input, preset, profile)

	assert.Equal(t, []float64{1.4}, res.Multipliers[domain.DomainHepatic])
	assert.NotContains(t, res.Multipliers, domain.Domain("cardiomegaly"))
	assert.Len(t, res.Warnings, 3)
}

func TestResolveEliminateOralsSkipsOralTiers(t *testing.T) {
	preset := loadModerate(t)
	resolver := NewResolver(plugin.NewRegistry(quietLogger()), quietLogger())

	input := &domain.InputRecord{
		Regimen: domain.Regimen{Compounds: []domain.CompoundDose{
			{Compound: "dianabol", WeeklyMg: 210, StartWeek: 1, DurationWeeks: 6, Oral: true},
		}},
	}
	profile := profileFor(t, input, preset)

	with := resolver.Resolve(input, preset, profile)
	require.NotEmpty(t, with.Multipliers[domain.DomainHepatic])

	input.Interventions.EliminateOrals = true
	without := resolver.Resolve(input, preset, profile)
	assert.Empty(t, without.Multipliers[domain.DomainHepatic])
}

func TestResolveHematocritManagementPrecedence(t *testing.T) {
	preset := loadModerate(t)
	resolver := NewResolver(plugin.NewRegistry(quietLogger()), quietLogger())

	input := &domain.InputRecord{
		Regimen: steadyRegimen(140),
		Labs:    domain.LabPanel{Hematocrit: 56},
	}
	input.Interventions.DoseReductionHct = true
	input.Interventions.BloodDonationOnly = true
	profile := profileFor(t, input, preset)
	require.True(t, profile.HematocritHigh)

	res := resolver.Resolve(input, preset, profile)

	// Dose reduction wins over donation alone: thrombosis sees the
	// hematocrit penalty and the dose-reduction credit, nothing else.
	assert.Equal(t, []float64{1.60, 0.70}, res.Multipliers[domain.DomainThrombosis])
}

func TestProtectiveFactorsRequireReportedValues(t *testing.T) {
	empty := protectiveFactors(&domain.InputRecord{})
	assert.Empty(t, empty)

	nonSmoker := false
	favourable := &domain.InputRecord{
		Labs:            domain.LabPanel{LDL: 65},
		Performance:     domain.Performance{VO2Max: 55},
		Anthropometrics: domain.Anthropometrics{BodyFatPct: 12},
		Lifestyle: domain.Lifestyle{
			MediterraneanAdherence: 9,
			OSAStatus:              domain.OSATreated,
			Smoking:                &nonSmoker,
		},
	}
	factors := protectiveFactors(favourable)

	// Every protective table contributes to ASCVD.
	assert.Len(t, factors[domain.DomainASCVD], 6)
	for _, f := range factors[domain.DomainASCVD] {
		assert.Less(t, f, 1.0)
	}
}
