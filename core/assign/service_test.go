package assign

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/hantar/loadplan/core/fleet"
	"github.com/hantar/loadplan/core/load"
	"github.com/hantar/loadplan/core/model"
)

type nopLogger struct{}

func (nopLogger) Debugf(string, ...any)         {}
func (nopLogger) Debugw(string, map[string]any) {}
func (nopLogger) Infof(string, ...any)          {}
func (nopLogger) Warnf(string, ...any)          {}
func (nopLogger) Errorf(string, ...any)         {}

func bulkOrder(id string, volM3 int) model.Order {
	return model.Order{
		ID:     id,
		Status: model.StatusNew,
		Lines:  []model.OrderLine{{SKU: "bulky", Quantity: volM3}},
	}
}

func newTestService(t *testing.T, orders ...model.Order) (*Service, *fleet.MemoryStore) {
	t.Helper()
	store := fleet.NewMemoryStore()
	store.Load(fleet.Snapshot{
		Catalog: model.Catalog{
			"bulky": {SKU: "bulky", UnitVolumeM3: 1, UnitWeightKg: 10, PackQty: 1},
		},
		Vehicles: []model.Vehicle{
			{ID: "v1", MaxVolumeM3: 20, MaxWeightKg: 3000, Status: model.VehicleAvailable},
			{ID: "v-maint", MaxVolumeM3: 20, MaxWeightKg: 3000, Status: model.VehicleMaintenance},
		},
		Drivers: []model.Driver{{ID: "d1", Name: "Aminah"}},
		Orders:  orders,
	})
	resolver, err := load.NewResolver(load.Defaults{UnitVolumeM3: 0.5, UnitWeightKg: 50})
	if err != nil {
		t.Fatalf("resolver: %v", err)
	}
	svc, err := NewService(store, resolver, nil, nil, nopLogger{}, nil)
	if err != nil {
		t.Fatalf("service: %v", err)
	}
	return svc, store
}

func TestAssign_Commits(t *testing.T) {
	svc, store := newTestService(t, bulkOrder("o1", 12))
	c, err := svc.Assign(context.Background(), Request{OrderIDs: []string{"o1"}, VehicleID: "v1", DriverID: "d1"})
	if err != nil {
		t.Fatalf("assign: %v", err)
	}
	if c.CommitID == "" {
		t.Error("expected commit id")
	}
	o, _ := store.Order("o1")
	if o.Status != model.StatusAssigned || o.VehicleID != "v1" || o.DriverID != "d1" {
		t.Errorf("order not mutated: %+v", o)
	}
	if n := store.ActiveOrderCount("d1"); n != 1 {
		t.Errorf("driver workload should be 1, got %d", n)
	}
}

func TestAssign_CapacityExceededAgainstCurrentOrders(t *testing.T) {
	// o-old is already on the vehicle; together with o-new it busts capacity.
	old := bulkOrder("o-old", 15)
	old.Status = model.StatusAssigned
	old.VehicleID = "v1"
	old.DriverID = "d1"
	svc, store := newTestService(t, old, bulkOrder("o-new", 10))

	_, err := svc.Assign(context.Background(), Request{OrderIDs: []string{"o-new"}, VehicleID: "v1", DriverID: "d1"})
	if ReasonOf(err) != ReasonCapacityExceeded {
		t.Fatalf("expected CapacityExceeded, got %v", err)
	}
	// The rejection must leave everything untouched.
	o, _ := store.Order("o-new")
	if o.Status != model.StatusNew || o.VehicleID != "" {
		t.Errorf("rejected order was mutated: %+v", o)
	}
	bound, _ := store.OrdersForVehicle("v1")
	if len(bound) != 1 {
		t.Errorf("existing assignments changed: %+v", bound)
	}
}

func TestAssign_Rejections(t *testing.T) {
	planned := bulkOrder("o-planned", 1)
	planned.Status = model.StatusPlanned
	delivered := bulkOrder("o-done", 1)
	delivered.Status = model.StatusDelivered
	svc, _ := newTestService(t, bulkOrder("o1", 1), planned, delivered)

	cases := []struct {
		name   string
		req    Request
		reason Reason
	}{
		{"empty request", Request{VehicleID: "v1", DriverID: "d1"}, ReasonInvalidRequest},
		{"unknown vehicle", Request{OrderIDs: []string{"o1"}, VehicleID: "ghost", DriverID: "d1"}, ReasonUnknownVehicle},
		{"vehicle in maintenance", Request{OrderIDs: []string{"o1"}, VehicleID: "v-maint", DriverID: "d1"}, ReasonVehicleUnavailable},
		{"unknown driver", Request{OrderIDs: []string{"o1"}, VehicleID: "v1", DriverID: "ghost"}, ReasonUnknownDriver},
		{"unknown order", Request{OrderIDs: []string{"ghost"}, VehicleID: "v1", DriverID: "d1"}, ReasonUnknownOrder},
		{"terminal order", Request{OrderIDs: []string{"o-done"}, VehicleID: "v1", DriverID: "d1"}, ReasonInvalidStatus},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Assign(context.Background(), tc.req)
			if ReasonOf(err) != tc.reason {
				t.Errorf("expected %s, got %v", tc.reason, err)
			}
		})
	}
}

func TestAssign_PlannedOrderIsAssignable(t *testing.T) {
	planned := bulkOrder("o-planned", 1)
	planned.Status = model.StatusPlanned
	svc, _ := newTestService(t, planned)
	if _, err := svc.Assign(context.Background(), Request{OrderIDs: []string{"o-planned"}, VehicleID: "v1", DriverID: "d1"}); err != nil {
		t.Fatalf("planned order should be assignable: %v", err)
	}
}

// raceStore cancels an order the first time the commit loop reads the
// vehicle, landing the cancellation between the upfront status check and the
// commit itself.
type raceStore struct {
	*fleet.MemoryStore
	once    sync.Once
	cancels string
}

func (r *raceStore) OrdersForVehicle(vehicleID string) ([]model.Order, uint64) {
	r.once.Do(func() {
		o, _ := r.MemoryStore.Order(r.cancels)
		o.Status = model.StatusCancelled
		r.MemoryStore.PutOrder(o)
	})
	return r.MemoryStore.OrdersForVehicle(vehicleID)
}

func TestAssign_ConcurrentCancellationIsNotResurrected(t *testing.T) {
	_, mem := newTestService(t, bulkOrder("o1", 1))
	race := &raceStore{MemoryStore: mem, cancels: "o1"}
	resolver, err := load.NewResolver(load.Defaults{UnitVolumeM3: 0.5, UnitWeightKg: 50})
	if err != nil {
		t.Fatalf("resolver: %v", err)
	}
	svc, err := NewService(race, resolver, nil, nil, nopLogger{}, nil)
	if err != nil {
		t.Fatalf("service: %v", err)
	}

	_, err = svc.Assign(context.Background(), Request{OrderIDs: []string{"o1"}, VehicleID: "v1", DriverID: "d1"})
	if ReasonOf(err) != ReasonInvalidStatus {
		t.Fatalf("expected InvalidStatus, got %v", err)
	}
	o, _ := mem.Order("o1")
	if o.Status != model.StatusCancelled {
		t.Fatalf("cancelled order was resurrected to %s", o.Status)
	}
	if o.VehicleID != "" {
		t.Errorf("cancelled order gained a vehicle: %+v", o)
	}
}

// Two orders each fit the vehicle alone but not together. Under concurrent
// commits exactly one must succeed and the other must be rejected with
// CapacityExceeded.
func TestAssign_ConcurrentCommitsCannotOverload(t *testing.T) {
	svc, store := newTestService(t, bulkOrder("o-a", 12), bulkOrder("o-b", 12))

	var wg sync.WaitGroup
	results := make([]error, 2)
	for i, id := range []string{"o-a", "o-b"} {
		wg.Add(1)
		go func(i int, id string) {
			defer wg.Done()
			_, results[i] = svc.Assign(context.Background(), Request{
				OrderIDs: []string{id}, VehicleID: "v1", DriverID: "d1",
			})
		}(i, id)
	}
	wg.Wait()

	var committed, rejected int
	for _, err := range results {
		switch {
		case err == nil:
			committed++
		case ReasonOf(err) == ReasonCapacityExceeded:
			rejected++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if committed != 1 || rejected != 1 {
		t.Fatalf("expected exactly one commit and one capacity rejection, got %d/%d", committed, rejected)
	}
	bound, _ := store.OrdersForVehicle("v1")
	var total float64
	for _, o := range bound {
		total += float64(o.Lines[0].Quantity)
	}
	if total > 20 {
		t.Errorf("vehicle overloaded: %f m3", total)
	}
}

func TestAssign_CancelledContext(t *testing.T) {
	svc, _ := newTestService(t, bulkOrder("o1", 1))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := svc.Assign(ctx, Request{OrderIDs: []string{"o1"}, VehicleID: "v1", DriverID: "d1"}); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context error, got %v", err)
	}
}
