package planner

import (
	"testing"

	"github.com/hantar/loadplan/core/geo"
	"github.com/hantar/loadplan/core/model"
)

func TestAnnotate_SetsZoneAndFactory(t *testing.T) {
	classifier, err := geo.NewClassifier([]geo.ZoneRule{
		{Zone: model.ZoneCentralLeft, Keywords: []string{"petaling jaya", "pj"}},
	}, model.ZoneEast)
	if err != nil {
		t.Fatalf("classifier: %v", err)
	}
	defaults := map[model.Zone]string{}
	for _, z := range model.Zones() {
		defaults[z] = "f-east"
	}
	defaults[model.ZoneCentralLeft] = "f-central"
	locator, err := geo.NewLocator(defaults, "")
	if err != nil {
		t.Fatalf("locator: %v", err)
	}
	factories := []model.Factory{{ID: "f-central"}, {ID: "f-east"}}

	a := NewAnnotator(classifier, locator)
	orders := []model.Order{
		{ID: "o1", DeliveryAddress: "88 Jalan PJ Lama", Status: model.StatusNew},
		{ID: "o2", DeliveryAddress: "Kampung Tengah", Status: model.StatusNew},
	}
	out := a.Annotate(orders, factories)

	if out[0].Zone != model.ZoneCentralLeft || out[0].FactoryID != "f-central" {
		t.Errorf("o1 annotated wrong: zone=%s factory=%s", out[0].Zone, out[0].FactoryID)
	}
	if out[1].Zone != model.ZoneEast || out[1].FactoryID != "f-east" {
		t.Errorf("o2 annotated wrong: zone=%s factory=%s", out[1].Zone, out[1].FactoryID)
	}
	if out[0].ManualReview || out[1].ManualReview {
		t.Error("mapped factories should not flag manual review")
	}
	if orders[0].Zone != "" {
		t.Error("input slice must not be mutated")
	}
}
