package config

import (
	"fmt"

	"github.com/hantar/loadplan/core/load"
	"github.com/hantar/loadplan/core/model"
)

// CatalogConfig sets the conservative per-unit footprint applied when a SKU
// is missing from the catalog snapshot.
type CatalogConfig struct {
	DefaultUnitVolumeM3 float64 `json:"default_unit_volume_m3"`
	DefaultUnitWeightKg float64 `json:"default_unit_weight_kg"`
}

// SetDefaults applies the documented conservative fallbacks: half a cubic
// metre and fifty kilograms per unit, deliberately on the heavy side so a
// catalog gap can only waste truck space, never overload one.
func (c *CatalogConfig) SetDefaults() {
	if c.DefaultUnitVolumeM3 == 0 {
		c.DefaultUnitVolumeM3 = 0.5
	}
	if c.DefaultUnitWeightKg == 0 {
		c.DefaultUnitWeightKg = 50
	}
}

// Validate checks the fallbacks are positive.
func (c CatalogConfig) Validate() error {
	if c.DefaultUnitVolumeM3 <= 0 || c.DefaultUnitWeightKg <= 0 {
		return fmt.Errorf("catalog: default unit volume and weight must be positive")
	}
	return nil
}

// Defaults converts the section into resolver input.
func (c CatalogConfig) Defaults() load.Defaults {
	return load.Defaults{UnitVolumeM3: c.DefaultUnitVolumeM3, UnitWeightKg: c.DefaultUnitWeightKg}
}

// PlannerConfig sets the default vehicle capacity profile used when a
// planning request does not name one.
type PlannerConfig struct {
	MaxVolumeM3 float64 `json:"max_volume_m3"`
	MaxWeightKg float64 `json:"max_weight_kg"`
}

// SetDefaults applies a typical 3-tonne box lorry profile.
func (c *PlannerConfig) SetDefaults() {
	if c.MaxVolumeM3 == 0 {
		c.MaxVolumeM3 = 20
	}
	if c.MaxWeightKg == 0 {
		c.MaxWeightKg = 3000
	}
}

// Validate checks the profile is usable.
func (c PlannerConfig) Validate() error {
	return c.Profile().Validate()
}

// Profile converts the section into a planner capacity profile.
func (c PlannerConfig) Profile() model.CapacityProfile {
	return model.CapacityProfile{MaxVolumeM3: c.MaxVolumeM3, MaxWeightKg: c.MaxWeightKg}
}
