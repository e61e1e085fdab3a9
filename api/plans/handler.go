// Package plans exposes the advisory planning pass over HTTP.
package plans

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/hantar/loadplan/core/events"
	"github.com/hantar/loadplan/core/fleet"
	"github.com/hantar/loadplan/core/logger"
	"github.com/hantar/loadplan/core/metrics"
	"github.com/hantar/loadplan/core/model"
	"github.com/hantar/loadplan/core/planlog"
	"github.com/hantar/loadplan/core/planner"
	"github.com/hantar/loadplan/internal/eventbus"
)

// Runner bundles everything one planning pass needs.
type Runner struct {
	Store     fleet.Store
	Annotator *planner.Annotator
	Planner   *planner.Planner
	Profile   model.CapacityProfile
	Logs      planlog.Store
	Sink      metrics.Sink
	Bus       *eventbus.Bus[events.Event]
	Log       logger.Logger
}

type planResponse struct {
	Trips       []planner.DraftTrip `json:"trips"`
	Unplannable []model.Order       `json:"unplannable"`
	Gaps        []gapView           `json:"gaps,omitempty"`
	Summary     planner.Summary     `json:"summary"`
}

type gapView struct {
	OrderID string `json:"order_id"`
	SKU     string `json:"sku"`
}

// Run executes one planning pass over the store's unassigned orders.
func (p *Runner) Run() (planner.Result, planner.Summary, error) {
	started := time.Now()
	var open []model.Order
	for _, o := range p.Store.Orders() {
		if o.Status == model.StatusNew || o.Status == model.StatusPlanned {
			open = append(open, o)
		}
	}
	annotated := p.Annotator.Annotate(open, p.Store.Factories())
	res, err := p.Planner.Plan(annotated, p.Profile, p.Store.Catalog())
	if err != nil {
		return planner.Result{}, planner.Summary{}, err
	}
	sum := planner.Summarize(res, p.Profile)

	if p.Sink != nil {
		if err := p.Sink.RecordPlanPass(metrics.PlanEvent{
			Time:        started,
			Orders:      len(open),
			Trips:       len(res.Trips),
			Unplannable: len(res.Unplannable),
			CatalogGaps: len(res.Gaps),
			Duration:    time.Since(started),
		}); err != nil {
			p.Log.Warnf("plan metrics dropped: %v", err)
		}
	}
	if p.Bus != nil {
		p.Bus.Publish(events.PlanCompleted{
			Time:        started,
			Orders:      len(open),
			Trips:       len(res.Trips),
			Unplannable: len(res.Unplannable),
		})
	}
	return res, sum, nil
}

// NewPlanHandler returns an HTTP handler running a planning pass via
// POST /api/plans. The pass is advisory: nothing is written back to orders.
func NewPlanHandler(p *Runner) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		res, sum, err := p.Run()
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		if p.Logs != nil {
			if err := p.Logs.Append(r.Context(), planRecord(res)); err != nil {
				p.Log.Warnf("plan audit record dropped: %v", err)
			}
		}
		resp := planResponse{
			Trips:       res.Trips,
			Unplannable: res.Unplannable,
			Summary:     sum,
		}
		for _, g := range res.Gaps {
			resp.Gaps = append(resp.Gaps, gapView{OrderID: g.OrderID, SKU: g.SKU})
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(resp); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
	})
}

func planRecord(res planner.Result) planlog.Record {
	rec := planlog.Record{
		Timestamp: time.Now().UTC(),
		Kind:      planlog.KindPlan,
		Plan:      &planlog.PlanRecord{},
	}
	orders := 0
	for _, t := range res.Trips {
		ids := make([]string, 0, len(t.Orders))
		for _, o := range t.Orders {
			ids = append(ids, o.ID)
		}
		orders += len(ids)
		rec.Plan.Trips = append(rec.Plan.Trips, planlog.TripSummary{
			ID:            t.ID,
			FactoryID:     t.FactoryID,
			Zone:          t.Zone,
			OrderIDs:      ids,
			TotalVolumeM3: t.TotalVolumeM3,
			TotalWeightKg: t.TotalWeightKg,
		})
	}
	for _, o := range res.Unplannable {
		rec.Plan.Unplannable = append(rec.Plan.Unplannable, o.ID)
	}
	for _, g := range res.Gaps {
		rec.Plan.CatalogGaps = append(rec.Plan.CatalogGaps, g.SKU)
	}
	rec.Plan.Orders = orders + len(res.Unplannable)
	return rec
}
