package planlog

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

func sampleRecords(base time.Time) []Record {
	return []Record{
		{
			Timestamp: base,
			Kind:      KindPlan,
			Plan: &PlanRecord{
				Orders: 3,
				Trips: []TripSummary{
					{ID: "draft-f1-north-1", FactoryID: "f1", Zone: "north", OrderIDs: []string{"o1", "o2"}, TotalVolumeM3: 18, TotalWeightKg: 400},
				},
				Unplannable: []string{"o-big"},
			},
		},
		{
			Timestamp: base.Add(time.Minute),
			Kind:      KindAssignment,
			Assignment: &AssignmentRecord{
				CommitID: "c1", VehicleID: "v1", DriverID: "d1",
				OrderIDs: []string{"o1", "o2"}, Accepted: true,
			},
		},
		{
			Timestamp: base.Add(2 * time.Minute),
			Kind:      KindAssignment,
			Assignment: &AssignmentRecord{
				VehicleID: "v2", DriverID: "d1",
				OrderIDs: []string{"o3"}, Accepted: false, Reason: "CapacityExceeded",
			},
		},
	}
}

func runStoreTests(t *testing.T, store Store) {
	t.Helper()
	ctx := context.Background()
	base := time.Now().UTC().Truncate(time.Second)
	for _, rec := range sampleRecords(base) {
		if err := store.Append(ctx, rec); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	all, err := store.Query(ctx, Query{})
	if err != nil {
		t.Fatalf("query all: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 records, got %d", len(all))
	}

	plans, err := store.Query(ctx, Query{Kind: KindPlan})
	if err != nil {
		t.Fatalf("query plans: %v", err)
	}
	if len(plans) != 1 || plans[0].Plan == nil || plans[0].Plan.Trips[0].ID != "draft-f1-north-1" {
		t.Errorf("plan record round trip failed: %+v", plans)
	}

	byVehicle, err := store.Query(ctx, Query{VehicleID: "v2"})
	if err != nil {
		t.Fatalf("query vehicle: %v", err)
	}
	if len(byVehicle) != 1 || byVehicle[0].Assignment.Reason != "CapacityExceeded" {
		t.Errorf("vehicle filter failed: %+v", byVehicle)
	}

	windowed, err := store.Query(ctx, Query{Start: base.Add(30 * time.Second)})
	if err != nil {
		t.Fatalf("query window: %v", err)
	}
	if len(windowed) != 2 {
		t.Errorf("time filter failed, got %d records", len(windowed))
	}
}

func TestJSONLStore(t *testing.T) {
	store, err := NewJSONLStore(filepath.Join(t.TempDir(), "plan.log"), 10, 2, 7)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	defer func() { _ = store.Close() }()
	runStoreTests(t, store)
}

func TestSQLiteStore(t *testing.T) {
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "plan.db"))
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	defer func() { _ = store.Close() }()
	runStoreTests(t, store)
}
