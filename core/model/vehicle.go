package model

import "fmt"

// VehicleStatus reflects fleet availability. Transitions are driven by the
// surrounding system, not by the planning engine.
type VehicleStatus string

const (
	VehicleAvailable   VehicleStatus = "available"
	VehicleOnRoute     VehicleStatus = "on-route"
	VehicleMaintenance VehicleStatus = "maintenance"
)

func (s VehicleStatus) String() string { return string(s) }

// Valid reports whether the status is one of the known values.
func (s VehicleStatus) Valid() bool {
	switch s {
	case VehicleAvailable, VehicleOnRoute, VehicleMaintenance:
		return true
	}
	return false
}

// CapacityProfile is a vehicle class capacity used by the trip planner.
type CapacityProfile struct {
	MaxVolumeM3 float64 `json:"max_volume_m3"`
	MaxWeightKg float64 `json:"max_weight_kg"`
}

// Validate checks that both capacity dimensions are positive.
func (p CapacityProfile) Validate() error {
	if p.MaxVolumeM3 <= 0 {
		return fmt.Errorf("max volume must be positive")
	}
	if p.MaxWeightKg <= 0 {
		return fmt.Errorf("max weight must be positive")
	}
	return nil
}

// Fits reports whether a load of the given volume and weight fits the profile.
func (p CapacityProfile) Fits(volumeM3, weightKg float64) bool {
	return volumeM3 <= p.MaxVolumeM3 && weightKg <= p.MaxWeightKg
}

// Vehicle is a read-only fleet snapshot record.
type Vehicle struct {
	ID          string        `json:"id"`
	MaxVolumeM3 float64       `json:"max_volume_m3"`
	MaxWeightKg float64       `json:"max_weight_kg"`
	Status      VehicleStatus `json:"status"`
}

// Validate checks that the vehicle declares a sound capacity.
func (v Vehicle) Validate() error {
	if v.ID == "" {
		return fmt.Errorf("vehicle id is required")
	}
	if err := v.Profile().Validate(); err != nil {
		return fmt.Errorf("vehicle %s: %w", v.ID, err)
	}
	return nil
}

// Profile returns the vehicle capacity as a planner profile.
func (v Vehicle) Profile() CapacityProfile {
	return CapacityProfile{MaxVolumeM3: v.MaxVolumeM3, MaxWeightKg: v.MaxWeightKg}
}

// Assignable reports whether the vehicle can accept new assignments.
func (v Vehicle) Assignable() bool {
	return v.Status == VehicleAvailable || v.Status == VehicleOnRoute
}
