// Package planlog records planning passes and assignment outcomes for audit
// and troubleshooting. Records are observations, never authoritative state:
// draft trips live only inside a planning pass.
package planlog

import (
	"context"
	"time"

	"github.com/hantar/loadplan/core/model"
)

// Kind discriminates record payloads.
const (
	KindPlan       = "plan"
	KindAssignment = "assignment"
)

// TripSummary is the logged shape of one draft trip.
type TripSummary struct {
	ID            string     `json:"id"`
	FactoryID     string     `json:"factory_id"`
	Zone          model.Zone `json:"zone"`
	OrderIDs      []string   `json:"order_ids"`
	TotalVolumeM3 float64    `json:"total_volume_m3"`
	TotalWeightKg float64    `json:"total_weight_kg"`
}

// PlanRecord captures one advisory planning pass.
type PlanRecord struct {
	Orders      int           `json:"orders"`
	Trips       []TripSummary `json:"trips"`
	Unplannable []string      `json:"unplannable,omitempty"`
	CatalogGaps []string      `json:"catalog_gaps,omitempty"`
}

// AssignmentRecord captures one commit attempt.
type AssignmentRecord struct {
	CommitID  string   `json:"commit_id,omitempty"`
	VehicleID string   `json:"vehicle_id"`
	DriverID  string   `json:"driver_id"`
	OrderIDs  []string `json:"order_ids"`
	Accepted  bool     `json:"accepted"`
	Reason    string   `json:"reason,omitempty"`
}

// Record is one audit log entry.
type Record struct {
	Timestamp  time.Time         `json:"timestamp"`
	Kind       string            `json:"kind"`
	Plan       *PlanRecord       `json:"plan,omitempty"`
	Assignment *AssignmentRecord `json:"assignment,omitempty"`
}

// Query filters stored records. Zero fields match everything.
type Query struct {
	Start     time.Time
	End       time.Time
	Kind      string
	VehicleID string
}

// Matches applies the query filters to a record.
func (q Query) Matches(r Record) bool {
	if !q.Start.IsZero() && r.Timestamp.Before(q.Start) {
		return false
	}
	if !q.End.IsZero() && r.Timestamp.After(q.End) {
		return false
	}
	if q.Kind != "" && r.Kind != q.Kind {
		return false
	}
	if q.VehicleID != "" {
		if r.Assignment == nil || r.Assignment.VehicleID != q.VehicleID {
			return false
		}
	}
	return true
}

// Store persists records and supports querying.
type Store interface {
	Append(ctx context.Context, rec Record) error
	Query(ctx context.Context, q Query) ([]Record, error)
	Close() error
}
