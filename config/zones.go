package config

import (
	"fmt"

	"github.com/hantar/loadplan/core/geo"
	"github.com/hantar/loadplan/core/model"
)

// ZoneRule binds one zone to its address keywords. Rule order in the config
// file is the classification priority: the priority is data, not code.
type ZoneRule struct {
	Zone     string   `json:"zone"`
	Keywords []string `json:"keywords"`
}

// ZonesConfig drives the zone classifier and the factory locator fallbacks.
type ZonesConfig struct {
	Rules       []ZoneRule `json:"rules"`
	DefaultZone string     `json:"default_zone"`
	// Factories maps every zone to its default factory id, used when an
	// order has no coordinates.
	Factories map[string]string `json:"factories"`
	// FallbackFactoryID is used when both coordinates and the zone mapping
	// fail. Empty means "first factory of the snapshot", the degraded
	// historical behavior.
	FallbackFactoryID string `json:"fallback_factory_id"`
}

// Validate checks the zone configuration against the closed zone set. A gap
// here is a broken deployment, so it aborts startup rather than surfacing at
// call time.
func (c ZonesConfig) Validate() error {
	if !model.Zone(c.DefaultZone).Valid() {
		return fmt.Errorf("zones: unknown default zone %q", c.DefaultZone)
	}
	for _, r := range c.Rules {
		if !model.Zone(r.Zone).Valid() {
			return fmt.Errorf("zones: unknown zone %q in rules", r.Zone)
		}
		if len(r.Keywords) == 0 {
			return fmt.Errorf("zones: zone %s has no keywords", r.Zone)
		}
	}
	for z := range c.Factories {
		if !model.Zone(z).Valid() {
			return fmt.Errorf("zones: unknown zone %q in factory map", z)
		}
	}
	for _, z := range model.Zones() {
		if c.Factories[string(z)] == "" {
			return fmt.Errorf("zones: zone %s has no default factory", z)
		}
	}
	return nil
}

// ClassifierRules converts the config rules into classifier input.
func (c ZonesConfig) ClassifierRules() []geo.ZoneRule {
	rules := make([]geo.ZoneRule, len(c.Rules))
	for i, r := range c.Rules {
		rules[i] = geo.ZoneRule{Zone: model.Zone(r.Zone), Keywords: r.Keywords}
	}
	return rules
}

// FactoryDefaults converts the zone to factory map into locator input.
func (c ZonesConfig) FactoryDefaults() map[model.Zone]string {
	m := make(map[model.Zone]string, len(c.Factories))
	for z, id := range c.Factories {
		m[model.Zone(z)] = id
	}
	return m
}
