// Package planner groups unassigned orders into capacity-bounded draft trips.
package planner

import (
	"fmt"
	"sort"

	"github.com/hantar/loadplan/core/load"
	"github.com/hantar/loadplan/core/model"
)

// DraftTrip is one capacity-feasible group of orders for a single factory and
// zone. Trips are transient planning output: a dispatcher must explicitly
// commit one through the assignment service, nothing persists them as
// authoritative state.
type DraftTrip struct {
	ID            string        `json:"id"`
	FactoryID     string        `json:"factory_id"`
	Zone          model.Zone    `json:"zone"`
	Orders        []model.Order `json:"orders"`
	TotalVolumeM3 float64       `json:"total_volume_m3"`
	TotalWeightKg float64       `json:"total_weight_kg"`
	Overloaded    bool          `json:"overloaded"`
}

// Result is the complete outcome of one planning pass. Every input order
// appears in exactly one trip or in Unplannable, never both, never dropped.
type Result struct {
	Trips []DraftTrip `json:"trips"`
	// Unplannable holds orders whose load alone exceeds the vehicle profile;
	// they need a larger vehicle class and a human decision, not a bin.
	Unplannable []model.Order `json:"unplannable"`
	Gaps        []load.Gap    `json:"gaps,omitempty"`
}

// Planner packs orders into trips with first-fit decreasing per
// (factory, zone) partition. Runs are read-only and advisory, so concurrent
// planning passes need no coordination.
type Planner struct {
	resolver *load.Resolver
}

// New creates a Planner using the given volumetrics resolver.
func New(resolver *load.Resolver) (*Planner, error) {
	if resolver == nil {
		return nil, fmt.Errorf("planner: resolver is required")
	}
	return &Planner{resolver: resolver}, nil
}

type weighted struct {
	order model.Order
	est   model.LoadEstimate
}

type bin struct {
	orders []model.Order
	volume float64
	weight float64
}

// Plan partitions orders by (factory, zone) and packs each partition
// independently so trips never mix fulfillment factories or zones. Within a
// partition orders are placed largest-volume first into the first bin with
// room on both the volume and weight dimension; a new bin opens when none
// fits. The heuristic trades optimality for determinism and speed, which is
// acceptable because dispatchers review and can move orders between trips.
func (p *Planner) Plan(orders []model.Order, profile model.CapacityProfile, catalog model.Catalog) (Result, error) {
	if err := profile.Validate(); err != nil {
		return Result{}, fmt.Errorf("planner: %w", err)
	}

	var res Result
	partitions := make(map[string][]weighted)
	var keys []string
	for _, o := range orders {
		est, gaps := p.resolver.ResolveLoad(o, catalog)
		res.Gaps = append(res.Gaps, gaps...)
		if !profile.Fits(est.TotalVolumeM3, est.TotalWeightKg) {
			res.Unplannable = append(res.Unplannable, o)
			continue
		}
		key := o.FactoryID + "|" + string(o.Zone)
		if _, seen := partitions[key]; !seen {
			keys = append(keys, key)
		}
		partitions[key] = append(partitions[key], weighted{order: o, est: est})
	}
	sort.Strings(keys)

	for _, key := range keys {
		part := partitions[key]
		sortDecreasing(part)
		bins := packFirstFit(part, profile)
		factoryID := part[0].order.FactoryID
		zone := part[0].order.Zone
		for i, b := range bins {
			trip := DraftTrip{
				ID:            fmt.Sprintf("draft-%s-%s-%d", factoryID, zone, i+1),
				FactoryID:     factoryID,
				Zone:          zone,
				Orders:        b.orders,
				TotalVolumeM3: b.volume,
				TotalWeightKg: b.weight,
				Overloaded:    !profile.Fits(b.volume, b.weight),
			}
			if trip.Overloaded {
				// Cannot happen: single oversized orders are diverted to
				// Unplannable before packing. A true flag here is a bug.
				return Result{}, fmt.Errorf("planner: trip %s overloaded by construction", trip.ID)
			}
			res.Trips = append(res.Trips, trip)
		}
	}
	return res, nil
}

// sortDecreasing orders by descending volume, then descending weight, then
// ascending order id. The id tie-break keeps groupings identical across runs
// regardless of input ordering.
func sortDecreasing(part []weighted) {
	sort.SliceStable(part, func(i, j int) bool {
		a, b := part[i], part[j]
		if a.est.TotalVolumeM3 != b.est.TotalVolumeM3 {
			return a.est.TotalVolumeM3 > b.est.TotalVolumeM3
		}
		if a.est.TotalWeightKg != b.est.TotalWeightKg {
			return a.est.TotalWeightKg > b.est.TotalWeightKg
		}
		return a.order.ID < b.order.ID
	})
}

// packFirstFit scans bins in creation order and opens a new one when the
// order fits nowhere. Every entry is known to fit an empty bin.
func packFirstFit(part []weighted, profile model.CapacityProfile) []*bin {
	var bins []*bin
	for _, w := range part {
		placed := false
		for _, b := range bins {
			if profile.Fits(b.volume+w.est.TotalVolumeM3, b.weight+w.est.TotalWeightKg) {
				b.orders = append(b.orders, w.order)
				b.volume += w.est.TotalVolumeM3
				b.weight += w.est.TotalWeightKg
				placed = true
				break
			}
		}
		if !placed {
			bins = append(bins, &bin{
				orders: []model.Order{w.order},
				volume: w.est.TotalVolumeM3,
				weight: w.est.TotalWeightKg,
			})
		}
	}
	return bins
}
