package model

// Item is immutable reference data from the catalog collaborator describing
// the physical footprint of one SKU.
type Item struct {
	SKU          string  `json:"sku"`
	UnitVolumeM3 float64 `json:"unit_volume_m3"`
	UnitWeightKg float64 `json:"unit_weight_kg"`
	// PackQty is the number of units per shipping unit.
	PackQty int `json:"pack_qty"`
}

// Catalog is a snapshot of the item master keyed by SKU.
type Catalog map[string]Item
