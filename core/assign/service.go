// Package assign commits dispatcher decisions: it binds orders to a vehicle
// and driver after re-verifying capacity against the authoritative order set.
package assign

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/hantar/loadplan/core/events"
	"github.com/hantar/loadplan/core/fleet"
	"github.com/hantar/loadplan/core/load"
	"github.com/hantar/loadplan/core/logger"
	"github.com/hantar/loadplan/core/metrics"
	"github.com/hantar/loadplan/core/model"
	"github.com/hantar/loadplan/core/monitoring"
	"github.com/hantar/loadplan/internal/eventbus"
)

// commit retries bound the CAS loop; beyond this the vehicle is contended
// enough that the dispatcher should simply retry the request.
const maxCommitRetries = 4

// Request asks for the given orders to be bound to one vehicle and driver.
// Committing a draft trip is a Request carrying the trip's order ids.
type Request struct {
	OrderIDs  []string `json:"order_ids"`
	VehicleID string   `json:"vehicle_id"`
	DriverID  string   `json:"driver_id"`
}

// Committed is the successful outcome of an assignment commit.
type Committed struct {
	CommitID  string      `json:"commit_id"`
	VehicleID string      `json:"vehicle_id"`
	DriverID  string      `json:"driver_id"`
	OrderIDs  []string    `json:"order_ids"`
	Report    load.Report `json:"report"`
	Time      time.Time   `json:"time"`
}

// Service is the dispatch assignment service. All mutations go through the
// fleet store's CAS commit so a rejection is always side-effect-free.
type Service struct {
	store    fleet.Store
	resolver *load.Resolver
	sink     metrics.Sink
	bus      *eventbus.Bus[events.Event]
	log      logger.Logger
	mon      monitoring.Monitor
}

// NewService wires the assignment service. sink, bus and mon may be nil.
func NewService(store fleet.Store, resolver *load.Resolver, sink metrics.Sink, bus *eventbus.Bus[events.Event], log logger.Logger, mon monitoring.Monitor) (*Service, error) {
	if store == nil || resolver == nil || log == nil {
		return nil, fmt.Errorf("assign: store, resolver and logger are required")
	}
	if sink == nil {
		sink = metrics.NopSink{}
	}
	if mon == nil {
		mon = monitoring.NopMonitor{}
	}
	return &Service{store: store, resolver: resolver, sink: sink, bus: bus, log: log, mon: mon}, nil
}

// Assign re-checks capacity against the vehicle's current bound orders and
// commits atomically. On any rejection the store is left untouched and the
// orders keep their previous status.
func (s *Service) Assign(ctx context.Context, req Request) (Committed, error) {
	if len(req.OrderIDs) == 0 {
		return Committed{}, reject(ReasonInvalidRequest, "no orders in request")
	}
	vehicle, ok := s.store.Vehicle(req.VehicleID)
	if !ok {
		return Committed{}, s.rejected(req, ReasonUnknownVehicle, fmt.Sprintf("vehicle %s not found", req.VehicleID))
	}
	if !vehicle.Assignable() {
		return Committed{}, s.rejected(req, ReasonVehicleUnavailable, fmt.Sprintf("vehicle %s is %s", vehicle.ID, vehicle.Status))
	}
	if _, ok := s.store.Driver(req.DriverID); !ok {
		return Committed{}, s.rejected(req, ReasonUnknownDriver, fmt.Sprintf("driver %s not found", req.DriverID))
	}

	requested := make([]model.Order, 0, len(req.OrderIDs))
	for _, id := range req.OrderIDs {
		o, ok := s.store.Order(id)
		if !ok {
			return Committed{}, s.rejected(req, ReasonUnknownOrder, fmt.Sprintf("order %s not found", id))
		}
		if !o.Status.CanTransition(model.StatusAssigned) {
			return Committed{}, s.rejected(req, ReasonInvalidStatus, fmt.Sprintf("order %s is %s", id, o.Status))
		}
		requested = append(requested, o)
	}

	catalog := s.store.Catalog()
	for attempt := 0; attempt < maxCommitRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return Committed{}, err
		}

		// The draft trip snapshot may be stale: simulate against the orders
		// bound to the vehicle right now, not against the plan.
		current, version := s.store.OrdersForVehicle(vehicle.ID)
		candidate := make([]model.Order, 0, len(current)+len(requested))
		candidate = append(candidate, current...)
		candidate = append(candidate, requested...)
		report := s.resolver.Simulate(candidate, vehicle, catalog)
		if report.Overloaded {
			return Committed{}, s.rejected(req, ReasonCapacityExceeded,
				fmt.Sprintf("vehicle %s would carry %.2f m3 / %.1f kg against %.2f m3 / %.1f kg",
					vehicle.ID, report.TotalVolumeM3, report.TotalWeightKg, vehicle.MaxVolumeM3, vehicle.MaxWeightKg))
		}

		mutated := make([]model.Order, 0, len(requested))
		for _, o := range requested {
			o.VehicleID = vehicle.ID
			o.DriverID = req.DriverID
			o.Status = model.StatusAssigned
			mutated = append(mutated, o)
		}
		err := s.store.CommitAssignment(vehicle.ID, version, mutated)
		if err == nil {
			committed := Committed{
				CommitID:  uuid.NewString(),
				VehicleID: vehicle.ID,
				DriverID:  req.DriverID,
				OrderIDs:  req.OrderIDs,
				Report:    report,
				Time:      time.Now().UTC(),
			}
			s.log.Infof("assigned %d orders to vehicle %s driver %s (%.0f%% vol, %.0f%% wt)",
				len(req.OrderIDs), vehicle.ID, req.DriverID, report.PctVolume, report.PctWeight)
			s.emit(committed, report, "")
			return committed, nil
		}
		if err == fleet.ErrVersionConflict {
			s.log.Debugf("vehicle %s version conflict, retrying commit", vehicle.ID)
			continue
		}
		if errors.Is(err, fleet.ErrStatusConflict) {
			// An order moved concurrently, e.g. it was cancelled after the
			// upfront status check. The commit wrote nothing.
			return Committed{}, s.rejected(req, ReasonInvalidStatus, err.Error())
		}
		s.mon.CaptureException(err, map[string]string{"vehicle_id": vehicle.ID})
		return Committed{}, fmt.Errorf("assign: commit: %w", err)
	}
	return Committed{}, s.rejected(req, ReasonContention, fmt.Sprintf("vehicle %s commit contention", vehicle.ID))
}

func (s *Service) emit(c Committed, report load.Report, reason string) {
	accepted := reason == ""
	if s.bus != nil {
		s.bus.Publish(events.AssignmentResult{
			Time:      time.Now().UTC(),
			CommitID:  c.CommitID,
			VehicleID: c.VehicleID,
			DriverID:  c.DriverID,
			OrderIDs:  c.OrderIDs,
			Accepted:  accepted,
			Reason:    reason,
		})
	}
	if err := s.sink.RecordAssignment(metrics.AssignmentEvent{
		Time:      time.Now().UTC(),
		CommitID:  c.CommitID,
		VehicleID: c.VehicleID,
		DriverID:  c.DriverID,
		Orders:    len(c.OrderIDs),
		Accepted:  accepted,
		Reason:    reason,
		PctVolume: report.PctVolume,
		PctWeight: report.PctWeight,
	}); err != nil {
		s.log.Warnf("metrics sink: %v", err)
	}
}

func (s *Service) rejected(req Request, reason Reason, detail string) error {
	s.log.Warnf("assignment rejected (%s): %s", reason, detail)
	s.emit(Committed{VehicleID: req.VehicleID, DriverID: req.DriverID, OrderIDs: req.OrderIDs}, load.Report{}, string(reason))
	return reject(reason, detail)
}
