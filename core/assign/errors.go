package assign

import (
	"errors"
	"fmt"
)

// Reason is a machine-readable rejection code.
type Reason string

const (
	ReasonCapacityExceeded   Reason = "CapacityExceeded"
	ReasonVehicleUnavailable Reason = "VehicleUnavailable"
	ReasonUnknownVehicle     Reason = "UnknownVehicle"
	ReasonUnknownDriver      Reason = "UnknownDriver"
	ReasonUnknownOrder       Reason = "UnknownOrder"
	ReasonInvalidStatus      Reason = "InvalidStatus"
	ReasonInvalidRequest     Reason = "InvalidRequest"
	ReasonContention         Reason = "Contention"
)

// Rejection is returned when a commit is refused. It carries no partial
// state: a rejected request leaves the store exactly as it was.
type Rejection struct {
	Reason Reason
	Detail string
}

func (r *Rejection) Error() string {
	return fmt.Sprintf("assignment rejected (%s): %s", r.Reason, r.Detail)
}

func reject(reason Reason, detail string) error {
	return &Rejection{Reason: reason, Detail: detail}
}

// ReasonOf extracts the rejection reason from an error, or empty when err is
// not a Rejection.
func ReasonOf(err error) Reason {
	var rej *Rejection
	if errors.As(err, &rej) {
		return rej.Reason
	}
	return ""
}
