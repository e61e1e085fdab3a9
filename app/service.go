// Package app wires configuration, the engine and its infrastructure into a
// runnable service.
package app

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	apifleet "github.com/hantar/loadplan/api/fleet"
	"github.com/hantar/loadplan/api/plans"
	"github.com/hantar/loadplan/config"
	"github.com/hantar/loadplan/core/assign"
	"github.com/hantar/loadplan/core/events"
	"github.com/hantar/loadplan/core/fleet"
	"github.com/hantar/loadplan/core/geo"
	"github.com/hantar/loadplan/core/load"
	coremetrics "github.com/hantar/loadplan/core/metrics"
	"github.com/hantar/loadplan/core/model"
	"github.com/hantar/loadplan/core/planlog"
	"github.com/hantar/loadplan/core/planner"
	"github.com/hantar/loadplan/infra/logger"
	"github.com/hantar/loadplan/infra/metrics"
	"github.com/hantar/loadplan/infra/monitoring"
	"github.com/hantar/loadplan/infra/mqtt"
	"github.com/hantar/loadplan/internal/eventbus"
)

// Service is the composed dispatch planning service.
type Service struct {
	Store    *fleet.MemoryStore
	Planner  *plans.Runner
	Assigner *assign.Service
	Logs     planlog.Store

	cfg  *config.Config
	bus  *eventbus.Bus[events.Event]
	log  logger.Logger
	feed *mqtt.FleetFeed
	mux  *http.ServeMux
}

// New creates a Service from the configuration.
func New(cfg *config.Config) (*Service, error) {
	logg := logger.New("service")

	classifier, err := geo.NewClassifier(cfg.Zones.ClassifierRules(), model.Zone(cfg.Zones.DefaultZone))
	if err != nil {
		return nil, fmt.Errorf("classifier: %w", err)
	}
	locator, err := geo.NewLocator(cfg.Zones.FactoryDefaults(), cfg.Zones.FallbackFactoryID)
	if err != nil {
		return nil, fmt.Errorf("locator: %w", err)
	}
	resolver, err := load.NewResolver(cfg.Catalog.Defaults())
	if err != nil {
		return nil, fmt.Errorf("resolver: %w", err)
	}
	pl, err := planner.New(resolver)
	if err != nil {
		return nil, fmt.Errorf("planner: %w", err)
	}

	var sinks []coremetrics.Sink
	if cfg.Metrics.PrometheusEnabled {
		sink, err := metrics.NewPromSink()
		if err != nil {
			return nil, fmt.Errorf("prom sink: %w", err)
		}
		sinks = append(sinks, sink)
	}
	if cfg.Metrics.InfluxEnabled {
		sink := metrics.NewInfluxSinkWithFallback(cfg.Metrics.InfluxURL, cfg.Metrics.InfluxToken, cfg.Metrics.InfluxOrg, cfg.Metrics.InfluxBucket)
		sinks = append(sinks, sink)
	}
	var sink coremetrics.Sink = coremetrics.NopSink{}
	if len(sinks) == 1 {
		sink = sinks[0]
	} else if len(sinks) > 1 {
		sink = metrics.NewMultiSink(sinks...)
	}

	mon, err := monitoring.NewSentryMonitor(cfg.Sentry)
	if err != nil {
		return nil, fmt.Errorf("sentry: %w", err)
	}

	logs, err := newLogStore(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("audit log: %w", err)
	}

	store := fleet.NewMemoryStore()
	if cfg.SnapshotPath != "" {
		snap, err := readSnapshot(cfg.SnapshotPath)
		if err != nil {
			return nil, fmt.Errorf("snapshot: %w", err)
		}
		store.Load(snap)
	}

	bus := eventbus.New[events.Event]()
	assigner, err := assign.NewService(store, resolver, sink, bus, logger.New("assign"), mon)
	if err != nil {
		return nil, fmt.Errorf("assign service: %w", err)
	}

	runner := &plans.Runner{
		Store:     store,
		Annotator: planner.NewAnnotator(classifier, locator),
		Planner:   pl,
		Profile:   cfg.Planner.Profile(),
		Logs:      logs,
		Sink:      sink,
		Bus:       bus,
		Log:       logger.New("planner"),
	}

	svc := &Service{
		Store:    store,
		Planner:  runner,
		Assigner: assigner,
		Logs:     logs,
		cfg:      cfg,
		bus:      bus,
		log:      logg,
	}

	if cfg.Fleet.Enabled {
		feed, err := mqtt.NewFleetFeed(cfg.Fleet, store)
		if err != nil {
			return nil, fmt.Errorf("fleet feed: %w", err)
		}
		svc.feed = feed
	}

	if fs, ok := sink.(coremetrics.FleetSizeRecorder); ok {
		if err := fs.RecordFleetSize(len(store.Vehicles())); err != nil {
			logg.Warnf("fleet size metric: %v", err)
		}
	}

	mux := http.NewServeMux()
	mux.Handle("POST /api/plans", plans.NewPlanHandler(runner))
	mux.Handle("GET /api/plans/logs", plans.NewLogHandler(logs, cfg.API.Token))
	mux.Handle("GET /api/vehicles", apifleet.NewVehiclesHandler(store, resolver))
	mux.Handle("POST /api/assignments", apifleet.NewAssignHandler(assigner))
	mux.Handle("POST /api/orders/{id}/{action}", apifleet.NewLifecycleHandler(assigner))
	svc.mux = mux

	return svc, nil
}

// Handler exposes the HTTP surface for serving and tests.
func (s *Service) Handler() http.Handler { return s.mux }

// Run starts the service and blocks until the context is cancelled.
func (s *Service) Run(ctx context.Context) error {
	go s.auditLoop(ctx)
	if s.cfg.Metrics.PrometheusEnabled {
		go func() {
			if err := metrics.StartPromServer(ctx, s.cfg.Metrics.PrometheusPort); err != nil {
				s.log.Errorf("prom server: %v", err)
			}
		}()
	}

	srv := &http.Server{Addr: s.cfg.API.Addr, Handler: s.mux}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()
	s.log.Infof("listening on %s", s.cfg.API.Addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// auditLoop mirrors assignment results from the bus into the audit log.
func (s *Service) auditLoop(ctx context.Context) {
	sub := s.bus.Subscribe()
	defer s.bus.Unsubscribe(sub)
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-sub:
			if !ok {
				return
			}
			res, ok := ev.(events.AssignmentResult)
			if !ok {
				continue
			}
			rec := planlog.Record{
				Timestamp: res.Time,
				Kind:      planlog.KindAssignment,
				Assignment: &planlog.AssignmentRecord{
					CommitID:  res.CommitID,
					VehicleID: res.VehicleID,
					DriverID:  res.DriverID,
					OrderIDs:  res.OrderIDs,
					Accepted:  res.Accepted,
					Reason:    res.Reason,
				},
			}
			if err := s.Logs.Append(ctx, rec); err != nil {
				s.log.Warnf("assignment audit record dropped: %v", err)
			}
		}
	}
}

// Close releases resources held by the service.
func (s *Service) Close() error {
	if s.feed != nil {
		s.feed.Disconnect()
	}
	s.bus.Close()
	return s.Logs.Close()
}

func newLogStore(cfg config.LoggingConfig) (planlog.Store, error) {
	switch cfg.Backend {
	case "sqlite":
		return planlog.NewSQLiteStore(cfg.Path)
	default:
		return planlog.NewJSONLStore(cfg.Path, cfg.MaxSizeMB, cfg.MaxBackups, cfg.MaxAgeDays)
	}
}

func readSnapshot(path string) (fleet.Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return fleet.Snapshot{}, err
	}
	var snap fleet.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return fleet.Snapshot{}, err
	}
	for _, v := range snap.Vehicles {
		if err := v.Validate(); err != nil {
			return fleet.Snapshot{}, err
		}
	}
	for _, o := range snap.Orders {
		if err := o.Validate(); err != nil {
			return fleet.Snapshot{}, err
		}
	}
	for _, f := range snap.Factories {
		if err := f.Validate(); err != nil {
			return fleet.Snapshot{}, err
		}
	}
	return snap, nil
}
