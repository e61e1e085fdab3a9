package metrics

import (
	"testing"

	coremetrics "github.com/hantar/loadplan/core/metrics"
)

type recordSink struct {
	count int
}

func (r *recordSink) RecordPlanPass(coremetrics.PlanEvent) error {
	r.count++
	return nil
}

func (r *recordSink) RecordAssignment(coremetrics.AssignmentEvent) error {
	r.count++
	return nil
}

func TestMultiSink(t *testing.T) {
	s1 := &recordSink{}
	s2 := &recordSink{}
	m := NewMultiSink(s1, s2)
	if err := m.RecordPlanPass(coremetrics.PlanEvent{}); err != nil {
		t.Fatalf("record plan pass: %v", err)
	}
	if err := m.RecordAssignment(coremetrics.AssignmentEvent{}); err != nil {
		t.Fatalf("record assignment: %v", err)
	}
	if s1.count != 2 || s2.count != 2 {
		t.Fatalf("events not forwarded")
	}
}

func TestPromSinkRegistersOnce(t *testing.T) {
	if _, err := NewPromSink(); err != nil {
		t.Fatalf("first registration: %v", err)
	}
	s, err := NewPromSink()
	if err != nil {
		t.Fatalf("second registration: %v", err)
	}
	if err := s.RecordPlanPass(coremetrics.PlanEvent{Trips: 2, Unplannable: 1}); err != nil {
		t.Fatalf("record plan pass: %v", err)
	}
	if err := s.RecordAssignment(coremetrics.AssignmentEvent{VehicleID: "v-1", Accepted: true, PctVolume: 60, PctWeight: 40}); err != nil {
		t.Fatalf("record assignment: %v", err)
	}
}
