// Package events defines the notifications published on the internal event
// bus while planning and assignment run.
package events

import "time"

// Event is the closed union of notifications carried on the engine's bus.
type Event interface{ busEvent() }

func (PlanCompleted) busEvent()    {}
func (AssignmentResult) busEvent() {}
func (OrderTransition) busEvent()  {}

// PlanCompleted is published after every advisory planning pass.
type PlanCompleted struct {
	Time        time.Time
	Orders      int
	Trips       int
	Unplannable int
}

// AssignmentResult is published after every commit attempt.
type AssignmentResult struct {
	Time      time.Time
	CommitID  string
	VehicleID string
	DriverID  string
	OrderIDs  []string
	Accepted  bool
	Reason    string
}

// OrderTransition is published when a single order advances its lifecycle
// outside a vehicle commit (dispatch, delivery, cancellation).
type OrderTransition struct {
	Time    time.Time
	OrderID string
	From    string
	To      string
}
