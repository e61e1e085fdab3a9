// Package metrics provides the Prometheus and InfluxDB implementations of
// the core metrics sink.
package metrics

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	coremetrics "github.com/hantar/loadplan/core/metrics"
)

// PromSink records planning and assignment events in Prometheus metrics.
type PromSink struct {
	planPasses  prometheus.Counter
	planTrips   prometheus.Histogram
	unplannable prometheus.Counter
	catalogGaps prometheus.Counter
	assignments *prometheus.CounterVec
	utilization *prometheus.HistogramVec
	fleet       prometheus.Gauge
}

// NewPromSink registers metrics on the default Prometheus registerer.
func NewPromSink() (*PromSink, error) {
	return NewPromSinkWithRegistry(prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer.
func NewPromSinkWithRegistry(reg prometheus.Registerer) (*PromSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	s := &PromSink{
		planPasses: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "plan_passes_total",
			Help: "Number of planning passes executed",
		}),
		planTrips: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "plan_trips_per_pass",
			Help:    "Draft trips produced per planning pass",
			Buckets: prometheus.LinearBuckets(0, 5, 10),
		}),
		unplannable: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "plan_unplannable_orders_total",
			Help: "Orders whose load alone exceeded the vehicle profile",
		}),
		catalogGaps: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "plan_catalog_gaps_total",
			Help: "Catalog misses resolved via conservative defaults",
		}),
		assignments: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "assignment_commits_total",
			Help: "Assignment commit attempts",
		}, []string{"vehicle_id", "accepted", "reason"}),
		utilization: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "assignment_utilization_pct",
			Help:    "Vehicle utilization at commit time",
			Buckets: prometheus.LinearBuckets(10, 10, 10),
		}, []string{"dimension"}),
		fleet: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "fleet_vehicles_total",
			Help: "Number of vehicles in the fleet snapshot",
		}),
	}
	collectors := []prometheus.Collector{
		s.planPasses, s.planTrips, s.unplannable, s.catalogGaps,
		s.assignments, s.utilization, s.fleet,
	}
	for _, c := range collectors {
		if err := reg.Register(c); err != nil {
			if _, ok := err.(prometheus.AlreadyRegisteredError); !ok {
				return nil, err
			}
		}
	}
	return s, nil
}

// RecordPlanPass updates the planning counters.
func (s *PromSink) RecordPlanPass(ev coremetrics.PlanEvent) error {
	s.planPasses.Inc()
	s.planTrips.Observe(float64(ev.Trips))
	s.unplannable.Add(float64(ev.Unplannable))
	s.catalogGaps.Add(float64(ev.CatalogGaps))
	return nil
}

// RecordAssignment counts the commit attempt and observes utilization on
// accepted commits.
func (s *PromSink) RecordAssignment(ev coremetrics.AssignmentEvent) error {
	s.assignments.WithLabelValues(ev.VehicleID, strconv.FormatBool(ev.Accepted), ev.Reason).Inc()
	if ev.Accepted {
		s.utilization.WithLabelValues("volume").Observe(ev.PctVolume)
		s.utilization.WithLabelValues("weight").Observe(ev.PctWeight)
	}
	return nil
}

// RecordFleetSize sets the fleet gauge.
func (s *PromSink) RecordFleetSize(size int) error {
	s.fleet.Set(float64(size))
	return nil
}

// StartPromServer serves /metrics until the context is cancelled.
func StartPromServer(ctx context.Context, port string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: ":" + port, Handler: mux}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}
