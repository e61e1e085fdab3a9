package model

import "fmt"

// OrderStatus tracks an order through the dispatch lifecycle.
type OrderStatus string

const (
	StatusNew        OrderStatus = "new"
	StatusPlanned    OrderStatus = "planned"
	StatusAssigned   OrderStatus = "assigned"
	StatusDispatched OrderStatus = "dispatched"
	StatusDelivered  OrderStatus = "delivered"
	StatusCancelled  OrderStatus = "cancelled"
)

func (s OrderStatus) String() string { return string(s) }

// Terminal reports whether no further transitions are possible.
func (s OrderStatus) Terminal() bool {
	return s == StatusDelivered || s == StatusCancelled
}

// CanTransition reports whether the move from s to next is legal. Planning is
// advisory, so both New and Planned orders may be assigned directly.
// Cancellation is reachable from any non-terminal state.
func (s OrderStatus) CanTransition(next OrderStatus) bool {
	if next == StatusCancelled {
		return !s.Terminal()
	}
	switch s {
	case StatusNew:
		return next == StatusPlanned || next == StatusAssigned
	case StatusPlanned:
		return next == StatusAssigned
	case StatusAssigned:
		return next == StatusDispatched
	case StatusDispatched:
		return next == StatusDelivered
	}
	return false
}

// Coordinates is a latitude/longitude pair in decimal degrees.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// OrderLine is one SKU/quantity pair belonging to exactly one order.
type OrderLine struct {
	SKU      string `json:"sku"`
	Quantity int    `json:"quantity"`
}

// Order is a delivery order snapshot. The engine mutates only the derived and
// assignment fields (Zone, FactoryID, VehicleID, DriverID, Status,
// ManualReview); everything else is owned by the order-entry collaborator.
type Order struct {
	ID              string       `json:"id"`
	CustomerName    string       `json:"customer_name"`
	DeliveryAddress string       `json:"delivery_address"`
	Coordinates     *Coordinates `json:"coordinates,omitempty"`
	Lines           []OrderLine  `json:"lines"`

	Zone      Zone        `json:"zone,omitempty"`
	FactoryID string      `json:"factory_id,omitempty"`
	VehicleID string      `json:"vehicle_id,omitempty"`
	DriverID  string      `json:"driver_id,omitempty"`
	Status    OrderStatus `json:"status"`

	// ManualReview flags orders whose factory could not be determined from
	// coordinates or zone mapping and was chosen by degraded fallback.
	ManualReview bool `json:"manual_review,omitempty"`
}

// Validate checks that the order snapshot is usable as planning input.
func (o Order) Validate() error {
	if o.ID == "" {
		return fmt.Errorf("order id is required")
	}
	for i, l := range o.Lines {
		if l.SKU == "" {
			return fmt.Errorf("order %s: line %d has no sku", o.ID, i)
		}
		if l.Quantity <= 0 {
			return fmt.Errorf("order %s: line %d quantity must be positive", o.ID, i)
		}
	}
	return nil
}

// LoadEstimate is the derived physical load of an order. It is never
// persisted; it is recomputed from the catalog on every planning pass.
type LoadEstimate struct {
	TotalVolumeM3 float64 `json:"total_volume_m3"`
	TotalWeightKg float64 `json:"total_weight_kg"`
}

// Add accumulates another estimate into e.
func (e *LoadEstimate) Add(o LoadEstimate) {
	e.TotalVolumeM3 += o.TotalVolumeM3
	e.TotalWeightKg += o.TotalWeightKg
}
