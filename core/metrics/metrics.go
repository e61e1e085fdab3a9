// Package metrics defines the sink interface planning and assignment events
// are recorded through. Implementations live under infra/metrics.
package metrics

import "time"

// PlanEvent captures one advisory planning pass.
type PlanEvent struct {
	Time        time.Time
	Orders      int
	Trips       int
	Unplannable int
	CatalogGaps int
	Duration    time.Duration
}

// AssignmentEvent captures one commit attempt through the assignment service.
type AssignmentEvent struct {
	Time      time.Time
	CommitID  string
	VehicleID string
	DriverID  string
	Orders    int
	Accepted  bool
	// Reason is the rejection reason code; empty when accepted.
	Reason    string
	PctVolume float64
	PctWeight float64
}

// Sink records engine events for observability purposes.
type Sink interface {
	RecordPlanPass(ev PlanEvent) error
	RecordAssignment(ev AssignmentEvent) error
}

// FleetSizeRecorder is implemented by sinks that track the fleet gauge.
type FleetSizeRecorder interface {
	RecordFleetSize(size int) error
}

// NopSink discards all events.
type NopSink struct{}

func (NopSink) RecordPlanPass(PlanEvent) error         { return nil }
func (NopSink) RecordAssignment(AssignmentEvent) error { return nil }
