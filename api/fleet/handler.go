// Package fleet exposes fleet state and dispatcher commits over HTTP.
package fleet

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/hantar/loadplan/core/assign"
	corefleet "github.com/hantar/loadplan/core/fleet"
	"github.com/hantar/loadplan/core/load"
	"github.com/hantar/loadplan/core/model"
)

type vehicleView struct {
	Vehicle model.Vehicle `json:"vehicle"`
	Orders  int           `json:"orders"`
	Report  load.Report   `json:"report"`
}

// NewVehiclesHandler returns an HTTP handler exposing the fleet with each
// vehicle's current load via GET /api/vehicles.
func NewVehiclesHandler(store corefleet.Store, resolver *load.Resolver) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		catalog := store.Catalog()
		views := []vehicleView{}
		for _, v := range store.Vehicles() {
			orders, _ := store.OrdersForVehicle(v.ID)
			views = append(views, vehicleView{
				Vehicle: v,
				Orders:  len(orders),
				Report:  resolver.Simulate(orders, v, catalog),
			})
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(views); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
	})
}

type rejectionResponse struct {
	Reason string `json:"reason"`
	Detail string `json:"detail"`
}

// NewAssignHandler returns an HTTP handler committing assignments via
// POST /api/assignments. Rejections map to 409 with a machine-readable reason.
func NewAssignHandler(svc *assign.Service) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		var req assign.Request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid request body", http.StatusBadRequest)
			return
		}
		committed, err := svc.Assign(r.Context(), req)
		if err != nil {
			writeAssignError(w, err)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(committed); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
	})
}

// NewLifecycleHandler advances a single order via
// POST /api/orders/{id}/{action} where action is dispatch, deliver or cancel.
func NewLifecycleHandler(svc *assign.Service) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")
		if id == "" {
			http.Error(w, "order id is required", http.StatusBadRequest)
			return
		}
		var err error
		switch r.PathValue("action") {
		case "dispatch":
			err = svc.Dispatch(id)
		case "deliver":
			err = svc.Deliver(id)
		case "cancel":
			err = svc.Cancel(id)
		default:
			http.Error(w, "unknown action", http.StatusNotFound)
			return
		}
		if err != nil {
			writeAssignError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	})
}

func writeAssignError(w http.ResponseWriter, err error) {
	var rej *assign.Rejection
	if errors.As(err, &rej) {
		status := http.StatusConflict
		switch rej.Reason {
		case assign.ReasonInvalidRequest:
			status = http.StatusBadRequest
		case assign.ReasonUnknownVehicle, assign.ReasonUnknownDriver, assign.ReasonUnknownOrder:
			status = http.StatusNotFound
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(rejectionResponse{Reason: string(rej.Reason), Detail: rej.Detail})
		return
	}
	http.Error(w, err.Error(), http.StatusInternalServerError)
}
