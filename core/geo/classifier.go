// Package geo classifies delivery addresses into service zones and selects
// fulfillment factories by distance.
package geo

import (
	"fmt"
	"strings"

	"github.com/hantar/loadplan/core/model"
)

// ZoneRule binds one zone to its keyword list. Rules are evaluated in slice
// order; the first rule with a matching keyword wins, so rule order is the
// classification priority.
type ZoneRule struct {
	Zone     model.Zone
	Keywords []string
}

// Classifier maps free-text delivery addresses to service zones. It is a pure
// function over its configuration: no randomness, no external lookups.
type Classifier struct {
	rules       []ZoneRule
	defaultZone model.Zone
}

// NewClassifier builds a classifier from ordered zone rules and a default
// zone for addresses no rule matches. Keywords are matched case-insensitively
// as substrings.
func NewClassifier(rules []ZoneRule, defaultZone model.Zone) (*Classifier, error) {
	if !defaultZone.Valid() {
		return nil, fmt.Errorf("geo: invalid default zone %q", defaultZone)
	}
	normalized := make([]ZoneRule, 0, len(rules))
	for _, r := range rules {
		if !r.Zone.Valid() {
			return nil, fmt.Errorf("geo: invalid zone %q in classifier rules", r.Zone)
		}
		kws := make([]string, 0, len(r.Keywords))
		for _, kw := range r.Keywords {
			kw = strings.ToLower(strings.TrimSpace(kw))
			if kw == "" {
				continue
			}
			kws = append(kws, kw)
		}
		normalized = append(normalized, ZoneRule{Zone: r.Zone, Keywords: kws})
	}
	return &Classifier{rules: normalized, defaultZone: defaultZone}, nil
}

// Classify returns the zone of the first rule whose keyword list matches the
// address, or the default zone when nothing matches. It never fails.
func (c *Classifier) Classify(address string) model.Zone {
	addr := strings.ToLower(address)
	for _, r := range c.rules {
		for _, kw := range r.Keywords {
			if strings.Contains(addr, kw) {
				return r.Zone
			}
		}
	}
	return c.defaultZone
}

// DefaultZone returns the configured fallback zone.
func (c *Classifier) DefaultZone() model.Zone { return c.defaultZone }
