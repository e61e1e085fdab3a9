package fleet

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/hantar/loadplan/core/assign"
	corefleet "github.com/hantar/loadplan/core/fleet"
	"github.com/hantar/loadplan/core/load"
	"github.com/hantar/loadplan/core/model"
	"github.com/hantar/loadplan/infra/logger"
)

func newFixture(t *testing.T) (*corefleet.MemoryStore, *load.Resolver, *assign.Service) {
	t.Helper()
	store := corefleet.NewMemoryStore()
	store.Load(corefleet.Snapshot{
		Catalog: model.Catalog{"sku-1": {SKU: "sku-1", UnitVolumeM3: 2, UnitWeightKg: 100}},
		Orders: []model.Order{
			{ID: "o-1", Lines: []model.OrderLine{{SKU: "sku-1", Quantity: 3}}, Status: model.StatusNew},
		},
		Vehicles: []model.Vehicle{
			{ID: "v-1", MaxVolumeM3: 20, MaxWeightKg: 3000, Status: model.VehicleAvailable},
		},
		Drivers: []model.Driver{{ID: "d-1", Name: "Aminah"}},
	})
	resolver, err := load.NewResolver(load.Defaults{UnitVolumeM3: 0.5, UnitWeightKg: 50})
	if err != nil {
		t.Fatalf("resolver: %v", err)
	}
	svc, err := assign.NewService(store, resolver, nil, nil, logger.NopLogger{}, nil)
	if err != nil {
		t.Fatalf("service: %v", err)
	}
	return store, resolver, svc
}

func TestVehiclesHandler(t *testing.T) {
	store, resolver, _ := newFixture(t)
	h := NewVehiclesHandler(store, resolver)

	req := httptest.NewRequest("GET", "/api/vehicles", nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("status %d", rr.Code)
	}
	var views []vehicleView
	if err := json.Unmarshal(rr.Body.Bytes(), &views); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(views) != 1 || views[0].Vehicle.ID != "v-1" {
		t.Fatalf("unexpected views: %+v", views)
	}
	if views[0].Orders != 0 || views[0].Report.TotalVolumeM3 != 0 {
		t.Fatalf("expected empty vehicle, got %+v", views[0])
	}
}

func TestAssignHandler(t *testing.T) {
	store, _, svc := newFixture(t)
	h := NewAssignHandler(svc)

	body := `{"order_ids":["o-1"],"vehicle_id":"v-1","driver_id":"d-1"}`
	req := httptest.NewRequest("POST", "/api/assignments", strings.NewReader(body))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rr.Code, rr.Body.String())
	}
	var committed assign.Committed
	if err := json.Unmarshal(rr.Body.Bytes(), &committed); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if committed.VehicleID != "v-1" || len(committed.OrderIDs) != 1 {
		t.Fatalf("unexpected commit: %+v", committed)
	}
	o, _ := store.Order("o-1")
	if o.Status != model.StatusAssigned {
		t.Fatalf("order not assigned: %s", o.Status)
	}

	// second commit of the same order must be rejected without changes
	req = httptest.NewRequest("POST", "/api/assignments", strings.NewReader(body))
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusConflict {
		t.Fatalf("expected 409 got %d", rr.Code)
	}
	var rej rejectionResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &rej); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if rej.Reason != string(assign.ReasonInvalidStatus) {
		t.Fatalf("unexpected reason %q", rej.Reason)
	}
}

func TestAssignHandlerMapsLookupErrorsTo404(t *testing.T) {
	_, _, svc := newFixture(t)
	h := NewAssignHandler(svc)

	body := `{"order_ids":["o-1"],"vehicle_id":"ghost","driver_id":"d-1"}`
	req := httptest.NewRequest("POST", "/api/assignments", strings.NewReader(body))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d: %s", rr.Code, rr.Body.String())
	}
}

func TestLifecycleHandler(t *testing.T) {
	store, _, svc := newFixture(t)
	o, _ := store.Order("o-1")
	o.Status = model.StatusAssigned
	store.PutOrder(o)

	mux := http.NewServeMux()
	mux.Handle("POST /api/orders/{id}/{action}", NewLifecycleHandler(svc))

	for _, action := range []string{"dispatch", "deliver"} {
		req := httptest.NewRequest("POST", "/api/orders/o-1/"+action, nil)
		rr := httptest.NewRecorder()
		mux.ServeHTTP(rr, req)
		if rr.Code != http.StatusNoContent {
			t.Fatalf("%s: status %d: %s", action, rr.Code, rr.Body.String())
		}
	}
	o, _ = store.Order("o-1")
	if o.Status != model.StatusDelivered {
		t.Fatalf("expected delivered, got %s", o.Status)
	}

	// delivered orders cannot be cancelled
	req := httptest.NewRequest("POST", "/api/orders/o-1/cancel", nil)
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)
	if rr.Code != http.StatusConflict {
		t.Fatalf("expected 409 got %d", rr.Code)
	}
}
