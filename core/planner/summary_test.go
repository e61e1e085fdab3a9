package planner

import (
	"math"
	"testing"

	"github.com/hantar/loadplan/core/model"
)

func TestSummarize(t *testing.T) {
	profile := model.CapacityProfile{MaxVolumeM3: 20, MaxWeightKg: 1000}
	res := Result{
		Trips: []DraftTrip{
			{ID: "t1", Orders: make([]model.Order, 2), TotalVolumeM3: 10, TotalWeightKg: 500},
			{ID: "t2", Orders: make([]model.Order, 1), TotalVolumeM3: 20, TotalWeightKg: 200},
		},
		Unplannable: []model.Order{{ID: "big"}},
	}
	s := Summarize(res, profile)
	if s.Trips != 2 || s.Orders != 3 || s.Unplannable != 1 {
		t.Errorf("wrong counts: %+v", s)
	}
	if math.Abs(s.MeanVolumePct-75) > 1e-9 {
		t.Errorf("wrong mean volume pct: %f", s.MeanVolumePct)
	}
	if s.MinVolumePct != 50 || s.MaxVolumePct != 100 {
		t.Errorf("wrong min/max: %f/%f", s.MinVolumePct, s.MaxVolumePct)
	}
	if math.Abs(s.MeanWeightPct-35) > 1e-9 {
		t.Errorf("wrong mean weight pct: %f", s.MeanWeightPct)
	}
}

func TestSummarize_Empty(t *testing.T) {
	s := Summarize(Result{}, model.CapacityProfile{MaxVolumeM3: 20, MaxWeightKg: 1000})
	if s.Trips != 0 || s.MeanVolumePct != 0 {
		t.Errorf("empty result should produce zero summary, got %+v", s)
	}
}
