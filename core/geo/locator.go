package geo

import (
	"fmt"

	"github.com/hantar/loadplan/core/model"
)

// Location is the outcome of a factory lookup. ManualReview is set when the
// factory was chosen by degraded fallback rather than by coordinates or zone
// mapping; the order should be surfaced to a dispatcher instead of trusted.
type Location struct {
	Factory      model.Factory
	DistanceKm   float64
	ManualReview bool
}

// Locator determines the preferred fulfillment factory for an order. With
// coordinates it picks the nearest factory by great-circle distance; without,
// it falls back to a static zone to factory mapping, then to a configured
// fallback factory.
type Locator struct {
	zoneDefaults map[model.Zone]string
	fallbackID   string
}

// NewLocator builds a locator. Every service zone must map to a default
// factory; a gap is a deployment error and is rejected here, at startup,
// rather than at call time. fallbackID may be empty, in which case the
// degraded path uses the first factory of the input list.
func NewLocator(zoneDefaults map[model.Zone]string, fallbackID string) (*Locator, error) {
	defaults := make(map[model.Zone]string, len(zoneDefaults))
	for z, id := range zoneDefaults {
		if !z.Valid() {
			return nil, fmt.Errorf("geo: unknown zone %q in factory defaults", z)
		}
		defaults[z] = id
	}
	for _, z := range model.Zones() {
		if defaults[z] == "" {
			return nil, fmt.Errorf("geo: zone %s has no default factory", z)
		}
	}
	return &Locator{zoneDefaults: defaults, fallbackID: fallbackID}, nil
}

// Locate never fails for data-quality reasons. With no usable coordinates and
// no zone mapping it degrades to the fallback factory and flags the order for
// manual review. An empty factory list yields a zero Factory with the review
// flag set.
func (l *Locator) Locate(order model.Order, factories []model.Factory) Location {
	if len(factories) == 0 {
		return Location{ManualReview: true}
	}
	if order.Coordinates != nil {
		return l.nearest(*order.Coordinates, factories)
	}
	if id := l.zoneDefaults[order.Zone]; id != "" {
		for _, f := range factories {
			if f.ID == id {
				return Location{Factory: f}
			}
		}
	}
	return Location{Factory: l.fallback(factories), ManualReview: true}
}

// nearest picks the minimum-distance factory, breaking ties by ascending
// factory id so repeated calls are stable.
func (l *Locator) nearest(c model.Coordinates, factories []model.Factory) Location {
	best := factories[0]
	bestDist := DistanceKm(c.Lat, c.Lng, best.Coordinates.Lat, best.Coordinates.Lng)
	for _, f := range factories[1:] {
		d := DistanceKm(c.Lat, c.Lng, f.Coordinates.Lat, f.Coordinates.Lng)
		if d < bestDist || (d == bestDist && f.ID < best.ID) {
			best = f
			bestDist = d
		}
	}
	return Location{Factory: best, DistanceKm: bestDist}
}

func (l *Locator) fallback(factories []model.Factory) model.Factory {
	if l.fallbackID != "" {
		for _, f := range factories {
			if f.ID == l.fallbackID {
				return f
			}
		}
	}
	return factories[0]
}
