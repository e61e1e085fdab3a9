package planner

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/hantar/loadplan/core/model"
)

// Summary aggregates utilization across the trips of one planning pass. It
// backs the fleet KPI endpoint and the planning metrics.
type Summary struct {
	Trips         int     `json:"trips"`
	Orders        int     `json:"orders"`
	Unplannable   int     `json:"unplannable"`
	MeanVolumePct float64 `json:"mean_volume_pct"`
	StdVolumePct  float64 `json:"std_volume_pct"`
	MinVolumePct  float64 `json:"min_volume_pct"`
	MaxVolumePct  float64 `json:"max_volume_pct"`
	MeanWeightPct float64 `json:"mean_weight_pct"`
}

// Summarize computes utilization statistics for a plan result against the
// profile it was packed with.
func Summarize(res Result, profile model.CapacityProfile) Summary {
	s := Summary{Trips: len(res.Trips), Unplannable: len(res.Unplannable)}
	if len(res.Trips) == 0 {
		return s
	}
	volPcts := make([]float64, len(res.Trips))
	wtPcts := make([]float64, len(res.Trips))
	for i, t := range res.Trips {
		s.Orders += len(t.Orders)
		volPcts[i] = 100 * t.TotalVolumeM3 / profile.MaxVolumeM3
		wtPcts[i] = 100 * t.TotalWeightKg / profile.MaxWeightKg
	}
	s.MeanVolumePct = stat.Mean(volPcts, nil)
	if len(volPcts) > 1 {
		s.StdVolumePct = stat.StdDev(volPcts, nil)
	}
	s.MinVolumePct = floats.Min(volPcts)
	s.MaxVolumePct = floats.Max(volPcts)
	s.MeanWeightPct = stat.Mean(wtPcts, nil)
	return s
}
