package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aas-risk-engine/internal/domain"
)

func TestKeyIsDeterministic(t *testing.T) {
	input := &domain.InputRecord{
		Regimen: domain.Regimen{Compounds: []domain.CompoundDose{
			{Compound: "testosterone", WeeklyMg: 500, StartWeek: 1, DurationWeeks: 20},
		}},
		Preset:           "moderate",
		PotencyOverrides: map[string]float64{"custom_a": 1.2, "custom_b": 0.8},
	}

	first, err := Key(input)
	require.NoError(t, err)
	second, err := Key(input)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Contains(t, first, "risk:record:")
}

func TestKeyDistinguishesInputs(t *testing.T) {
	base := &domain.InputRecord{
		Regimen: domain.Regimen{Compounds: []domain.CompoundDose{
			{Compound: "testosterone", WeeklyMg: 500, StartWeek: 1, DurationWeeks: 20},
		}},
		Preset: "moderate",
	}
	baseKey, err := Key(base)
	require.NoError(t, err)

	dosed := *base
	dosed.Regimen = domain.Regimen{Compounds: []domain.CompoundDose{
		{Compound: "testosterone", WeeklyMg: 600, StartWeek: 1, DurationWeeks: 20},
	}}
	dosedKey, err := Key(&dosed)
	require.NoError(t, err)
	assert.NotEqual(t, baseKey, dosedKey)

	presetSwap := *base
	presetSwap.Preset = "aggressive"
	presetKey, err := Key(&presetSwap)
	require.NoError(t, err)
	assert.NotEqual(t, baseKey, presetKey)
}
