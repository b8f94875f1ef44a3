package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorUnwrapping(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		sentinel error
	}{
		{
			name:     "unknown compound",
			err:      &UnknownCompoundError{Compound: "mystery"},
			sentinel: ErrUnknownCompound,
		},
		{
			name:     "unknown preset",
			err:      &UnknownPresetError{Name: "imaginary"},
			sentinel: ErrUnknownPreset,
		},
		{
			name:     "invalid coefficient",
			err:      &InvalidCoefficientError{Preset: "moderate", Key: KeyStatinHigh, Reason: "non-positive"},
			sentinel: ErrInvalidCoefficient,
		},
		{
			name:     "plugin failure",
			err:      &PluginError{Plugin: "fertility", Err: errors.New("boom")},
			sentinel: ErrPluginFailure,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, errors.Is(tt.err, tt.sentinel))
			wrapped := fmt.Errorf("calculation failed: %w", tt.err)
			assert.True(t, errors.Is(wrapped, tt.sentinel), "sentinel survives further wrapping")
		})
	}
}

func TestInvalidCoefficientErrorMessage(t *testing.T) {
	err := &InvalidCoefficientError{Preset: "moderate", Key: KeyStatinHigh, Domain: DomainASCVD, Reason: "non-positive"}
	assert.Contains(t, err.Error(), "moderate")
	assert.Contains(t, err.Error(), string(DomainASCVD))

	noDomain := &InvalidCoefficientError{Preset: "moderate", Key: KeyBaseline, Reason: "missing"}
	assert.NotContains(t, noDomain.Error(), "domain")
}

func TestValidationError(t *testing.T) {
	err := NewValidationError("weekly_mg", "weekly mass cannot be negative", -10.0)
	assert.Equal(t, "weekly_mg", err.Field)
	assert.Contains(t, err.Error(), "weekly_mg")
	assert.Contains(t, err.Error(), "cannot be negative")
}
