package load

import "github.com/hantar/loadplan/core/model"

// Report is the outcome of simulating a set of orders against one vehicle.
// The percentage fields are clamped for display; Overloaded is computed from
// the raw totals so rounding can never mask an overload.
type Report struct {
	TotalVolumeM3 float64 `json:"total_volume_m3"`
	TotalWeightKg float64 `json:"total_weight_kg"`
	PctVolume     float64 `json:"pct_volume"`
	PctWeight     float64 `json:"pct_weight"`
	Overloaded    bool    `json:"overloaded"`
	Gaps          []Gap   `json:"gaps,omitempty"`
}

// Simulate computes utilization of the vehicle for the given orders. Pure
// function; it reads nothing beyond its arguments and persists nothing.
func (r *Resolver) Simulate(orders []model.Order, vehicle model.Vehicle, catalog model.Catalog) Report {
	var rep Report
	for _, o := range orders {
		est, gaps := r.ResolveLoad(o, catalog)
		rep.TotalVolumeM3 += est.TotalVolumeM3
		rep.TotalWeightKg += est.TotalWeightKg
		rep.Gaps = append(rep.Gaps, gaps...)
	}
	rep.Overloaded = rep.TotalVolumeM3 > vehicle.MaxVolumeM3 || rep.TotalWeightKg > vehicle.MaxWeightKg
	rep.PctVolume = displayPct(rep.TotalVolumeM3, vehicle.MaxVolumeM3)
	rep.PctWeight = displayPct(rep.TotalWeightKg, vehicle.MaxWeightKg)
	return rep
}

func displayPct(total, max float64) float64 {
	if max <= 0 {
		return 0
	}
	pct := 100 * total / max
	if pct > 100 {
		return 100
	}
	return pct
}
