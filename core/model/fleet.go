package model

import "fmt"

// Driver is a fleet snapshot record. ActiveOrderCount is derived by the fleet
// store from orders currently Assigned or Dispatched to the driver.
type Driver struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Factory is a fulfillment site.
type Factory struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Coordinates Coordinates `json:"coordinates"`
}

// Validate checks the factory record.
func (f Factory) Validate() error {
	if f.ID == "" {
		return fmt.Errorf("factory id is required")
	}
	return nil
}
