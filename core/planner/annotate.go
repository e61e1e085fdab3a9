package planner

import (
	"github.com/hantar/loadplan/core/geo"
	"github.com/hantar/loadplan/core/model"
)

// Annotator tags raw orders with their service zone and preferred factory
// before planning.
type Annotator struct {
	classifier *geo.Classifier
	locator    *geo.Locator
}

// NewAnnotator wires the zone classifier and factory locator.
func NewAnnotator(classifier *geo.Classifier, locator *geo.Locator) *Annotator {
	return &Annotator{classifier: classifier, locator: locator}
}

// Annotate returns copies of the orders with Zone, FactoryID and the
// manual-review flag set. Input slices are not mutated; the persistence
// collaborator decides what to write back.
func (a *Annotator) Annotate(orders []model.Order, factories []model.Factory) []model.Order {
	out := make([]model.Order, len(orders))
	for i, o := range orders {
		o.Zone = a.classifier.Classify(o.DeliveryAddress)
		loc := a.locator.Locate(o, factories)
		o.FactoryID = loc.Factory.ID
		o.ManualReview = o.ManualReview || loc.ManualReview
		out[i] = o
	}
	return out
}
