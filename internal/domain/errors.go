package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for errors.Is matching across package boundaries.
var (
	ErrUnknownCompound    = errors.New("unknown compound")
	ErrUnknownPreset      = errors.New("unknown preset")
	ErrInvalidCoefficient = errors.New("invalid coefficient")
	ErrPluginFailure      = errors.New("plugin failure")
)

// UnknownCompoundError reports a compound with no potency factor and no
// caller-supplied override.
type UnknownCompoundError struct {
	Compound string
}

// Error implements the error interface.
func (e *UnknownCompoundError) Error() string {
	return fmt.Sprintf("unknown compound %q: no potency factor and no override supplied", e.Compound)
}

// Unwrap links the error to ErrUnknownCompound.
func (e *UnknownCompoundError) Unwrap() error {
	return ErrUnknownCompound
}

// UnknownPresetError reports a coefficient preset name with no backing file.
type UnknownPresetError struct {
	Name string
}

// Error implements the error interface.
func (e *UnknownPresetError) Error() string {
	return fmt.Sprintf("unknown preset %q", e.Name)
}

// Unwrap links the error to ErrUnknownPreset.
func (e *UnknownPresetError) Unwrap() error {
	return ErrUnknownPreset
}

// InvalidCoefficientError reports a coefficient table that failed load-time
// validation. A calculation must never run against a partially invalid
// coefficient set, so this is fatal to the requesting calculation.
type InvalidCoefficientError struct {
	Preset string
	Key    string
	Domain Domain
	Reason string
}

// Error implements the error interface.
func (e *InvalidCoefficientError) Error() string {
	if e.Domain != "" {
		return fmt.Sprintf("invalid coefficient in preset %q, key %q, domain %q: %s", e.Preset, e.Key, e.Domain, e.Reason)
	}
	return fmt.Sprintf("invalid coefficient in preset %q, key %q: %s", e.Preset, e.Key, e.Reason)
}

// Unwrap links the error to ErrInvalidCoefficient.
func (e *InvalidCoefficientError) Unwrap() error {
	return ErrInvalidCoefficient
}

// PluginError reports a plugin whose contribution call failed. It is
// surfaced as a warning on the result, never as a calculation failure.
type PluginError struct {
	Plugin string
	Err    error
}

// Error implements the error interface.
func (e *PluginError) Error() string {
	return fmt.Sprintf("plugin %q failed: %v", e.Plugin, e.Err)
}

// Unwrap links the error to ErrPluginFailure.
func (e *PluginError) Unwrap() error {
	return ErrPluginFailure
}

// ValidationError reports an invalid field on an input record.
type ValidationError struct {
	Field   string      `json:"field"`
	Message string      `json:"message"`
	Value   interface{} `json:"value"`
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error for field '%s': %s", e.Field, e.Message)
}

// NewValidationError creates a new ValidationError.
func NewValidationError(field, message string, value interface{}) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
		Value:   value,
	}
}
