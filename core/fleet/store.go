// Package fleet holds the authoritative in-process view of vehicles, drivers
// and orders that assignment commits are checked against.
package fleet

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/hantar/loadplan/core/model"
)

// ErrVersionConflict is returned by CommitAssignment when the vehicle version
// moved between the capacity check and the commit. Callers re-read and retry.
var ErrVersionConflict = errors.New("fleet: vehicle version conflict")

// ErrStatusConflict is returned when an order moved to a state that no longer
// permits the requested transition. Unlike a version conflict it is not
// retryable: the order itself changed, not the vehicle.
var ErrStatusConflict = errors.New("fleet: order status conflict")

// ErrUnknownOrder is returned by TransitionOrder for ids not in the store.
var ErrUnknownOrder = errors.New("fleet: unknown order")

// Snapshot is the bulk input consumed from the surrounding system.
type Snapshot struct {
	Catalog   model.Catalog   `json:"catalog"`
	Orders    []model.Order   `json:"orders"`
	Vehicles  []model.Vehicle `json:"vehicles"`
	Drivers   []model.Driver  `json:"drivers"`
	Factories []model.Factory `json:"factories"`
}

// Store is the state surface the engine needs from its persistence
// collaborator. The one hard requirement is CommitAssignment: an atomic
// "write these orders if the vehicle is unchanged" primitive, so two
// concurrent assignments cannot both pass a capacity check against a stale
// view and jointly overload the vehicle.
type Store interface {
	Vehicle(id string) (model.Vehicle, bool)
	Driver(id string) (model.Driver, bool)
	Order(id string) (model.Order, bool)
	Vehicles() []model.Vehicle
	Orders() []model.Order
	Factories() []model.Factory
	Catalog() model.Catalog

	// OrdersForVehicle returns orders currently bound to the vehicle with
	// status Assigned or Dispatched, with the vehicle's version for CAS.
	OrdersForVehicle(vehicleID string) ([]model.Order, uint64)
	// CommitAssignment writes the given order mutations if the vehicle
	// version still matches and every order can still legally reach its
	// mutated status, bumping the version on success.
	CommitAssignment(vehicleID string, version uint64, orders []model.Order) error
	// PutOrder upserts a single order mutation outside a vehicle commit.
	PutOrder(o model.Order)
	// TransitionOrder advances one order's lifecycle, checking legality
	// against the order's current status atomically.
	TransitionOrder(id string, next model.OrderStatus) (model.Order, model.OrderStatus, error)
	// ActiveOrderCount derives the driver workload from bound orders.
	ActiveOrderCount(driverID string) int
}

// MemoryStore is the in-process Store used by the service and tests.
type MemoryStore struct {
	mu        sync.RWMutex
	catalog   model.Catalog
	orders    map[string]model.Order
	vehicles  map[string]model.Vehicle
	drivers   map[string]model.Driver
	factories map[string]model.Factory
	versions  map[string]uint64
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		catalog:   model.Catalog{},
		orders:    map[string]model.Order{},
		vehicles:  map[string]model.Vehicle{},
		drivers:   map[string]model.Driver{},
		factories: map[string]model.Factory{},
		versions:  map[string]uint64{},
	}
}

// Load replaces the store contents with the snapshot.
func (s *MemoryStore) Load(snap Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.catalog = model.Catalog{}
	for sku, item := range snap.Catalog {
		s.catalog[sku] = item
	}
	s.orders = map[string]model.Order{}
	for _, o := range snap.Orders {
		s.orders[o.ID] = o
	}
	s.vehicles = map[string]model.Vehicle{}
	for _, v := range snap.Vehicles {
		s.vehicles[v.ID] = v
	}
	s.drivers = map[string]model.Driver{}
	for _, d := range snap.Drivers {
		s.drivers[d.ID] = d
	}
	s.factories = map[string]model.Factory{}
	for _, f := range snap.Factories {
		s.factories[f.ID] = f
	}
}

func (s *MemoryStore) Vehicle(id string) (model.Vehicle, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.vehicles[id]
	return v, ok
}

func (s *MemoryStore) Driver(id string) (model.Driver, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.drivers[id]
	return d, ok
}

func (s *MemoryStore) Order(id string) (model.Order, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	o, ok := s.orders[id]
	return o, ok
}

func (s *MemoryStore) Vehicles() []model.Vehicle {
	s.mu.RLock()
	defer s.mu.RUnlock()
	res := make([]model.Vehicle, 0, len(s.vehicles))
	for _, v := range s.vehicles {
		res = append(res, v)
	}
	sort.Slice(res, func(i, j int) bool { return res[i].ID < res[j].ID })
	return res
}

func (s *MemoryStore) Orders() []model.Order {
	s.mu.RLock()
	defer s.mu.RUnlock()
	res := make([]model.Order, 0, len(s.orders))
	for _, o := range s.orders {
		res = append(res, o)
	}
	sort.Slice(res, func(i, j int) bool { return res[i].ID < res[j].ID })
	return res
}

func (s *MemoryStore) Factories() []model.Factory {
	s.mu.RLock()
	defer s.mu.RUnlock()
	res := make([]model.Factory, 0, len(s.factories))
	for _, f := range s.factories {
		res = append(res, f)
	}
	sort.Slice(res, func(i, j int) bool { return res[i].ID < res[j].ID })
	return res
}

func (s *MemoryStore) Catalog() model.Catalog {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cp := make(model.Catalog, len(s.catalog))
	for sku, item := range s.catalog {
		cp[sku] = item
	}
	return cp
}

func (s *MemoryStore) OrdersForVehicle(vehicleID string) ([]model.Order, uint64) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var res []model.Order
	for _, o := range s.orders {
		if o.VehicleID != vehicleID {
			continue
		}
		if o.Status == model.StatusAssigned || o.Status == model.StatusDispatched {
			res = append(res, o)
		}
	}
	sort.Slice(res, func(i, j int) bool { return res[i].ID < res[j].ID })
	return res, s.versions[vehicleID]
}

func (s *MemoryStore) CommitAssignment(vehicleID string, version uint64, orders []model.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.versions[vehicleID] != version {
		return ErrVersionConflict
	}
	// The vehicle version does not cover order mutations made outside a
	// commit, so a cancellation racing this commit would pass the version
	// check. Re-validate each order against its current status under the
	// lock; a terminal order must never be written back to life.
	for _, o := range orders {
		cur, ok := s.orders[o.ID]
		if !ok {
			return fmt.Errorf("order %s: %w", o.ID, ErrUnknownOrder)
		}
		if !cur.Status.CanTransition(o.Status) {
			return fmt.Errorf("order %s is %s: %w", o.ID, cur.Status, ErrStatusConflict)
		}
	}
	for _, o := range orders {
		s.orders[o.ID] = o
	}
	s.versions[vehicleID] = version + 1
	return nil
}

func (s *MemoryStore) PutOrder(o model.Order) {
	s.mu.Lock()
	s.orders[o.ID] = o
	s.mu.Unlock()
}

// TransitionOrder moves an order to next if its current status allows it,
// returning the updated order and the status it moved from.
func (s *MemoryStore) TransitionOrder(id string, next model.OrderStatus) (model.Order, model.OrderStatus, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[id]
	if !ok {
		return model.Order{}, "", ErrUnknownOrder
	}
	from := o.Status
	if !from.CanTransition(next) {
		return model.Order{}, from, fmt.Errorf("order %s is %s: %w", id, from, ErrStatusConflict)
	}
	o.Status = next
	s.orders[id] = o
	return o, from, nil
}

// PutVehicle upserts a vehicle record, e.g. from the fleet status feed.
func (s *MemoryStore) PutVehicle(v model.Vehicle) {
	s.mu.Lock()
	s.vehicles[v.ID] = v
	s.mu.Unlock()
}

// SetVehicleStatus updates the status of a known vehicle. Unknown ids are
// ignored and reported to the caller.
func (s *MemoryStore) SetVehicleStatus(id string, st model.VehicleStatus) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.vehicles[id]
	if !ok {
		return false
	}
	v.Status = st
	s.vehicles[id] = v
	return true
}

func (s *MemoryStore) ActiveOrderCount(driverID string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, o := range s.orders {
		if o.DriverID != driverID {
			continue
		}
		if o.Status == model.StatusAssigned || o.Status == model.StatusDispatched {
			n++
		}
	}
	return n
}
