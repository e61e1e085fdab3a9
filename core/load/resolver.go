// Package load computes order volumetrics and simulates vehicle loading.
package load

import (
	"fmt"

	"github.com/hantar/loadplan/core/model"
)

// Defaults are the conservative per-unit footprints applied when a SKU is
// missing from the catalog. A single bad SKU must not block planning for a
// whole batch, so the resolver substitutes these and reports a gap instead of
// failing.
type Defaults struct {
	UnitVolumeM3 float64
	UnitWeightKg float64
}

// Gap records one catalog miss resolved via defaults. It is data, not an
// error: callers surface it as a warning on the affected order.
type Gap struct {
	OrderID string `json:"order_id"`
	SKU     string `json:"sku"`
}

func (g Gap) String() string {
	return fmt.Sprintf("order %s: sku %s missing from catalog, defaults applied", g.OrderID, g.SKU)
}

// Resolver computes load estimates from order lines and a catalog snapshot.
type Resolver struct {
	defaults Defaults
}

// NewResolver builds a resolver with the given catalog-miss defaults.
func NewResolver(d Defaults) (*Resolver, error) {
	if d.UnitVolumeM3 <= 0 || d.UnitWeightKg <= 0 {
		return nil, fmt.Errorf("load: default unit volume and weight must be positive")
	}
	return &Resolver{defaults: d}, nil
}

// ResolveLoad sums quantity times unit footprint across the order's lines.
// O(lines) with O(1) catalog lookups; never fails.
func (r *Resolver) ResolveLoad(order model.Order, catalog model.Catalog) (model.LoadEstimate, []Gap) {
	var est model.LoadEstimate
	var gaps []Gap
	for _, line := range order.Lines {
		item, ok := catalog[line.SKU]
		if !ok {
			item = model.Item{
				SKU:          line.SKU,
				UnitVolumeM3: r.defaults.UnitVolumeM3,
				UnitWeightKg: r.defaults.UnitWeightKg,
			}
			gaps = append(gaps, Gap{OrderID: order.ID, SKU: line.SKU})
		}
		qty := float64(line.Quantity)
		est.TotalVolumeM3 += qty * item.UnitVolumeM3
		est.TotalWeightKg += qty * item.UnitWeightKg
	}
	return est, gaps
}
