package model

import (
	"fmt"
	"math/rand"
	"time"
)

// Call is a single driver call on the panel. A call is either active or
// finalized, never both: active calls live in the called_drivers
// collection, finalized ones in finalized_calls, and FinalizedAt is set
// exactly when the call sits in the finalized collection.
type Call struct {
	CallID      string     `bson:"_id" json:"callId"`
	DriverID    string     `bson:"driver_id" json:"driverId"`
	Kind        CallKind   `bson:"kind" json:"kind"`
	Message     string     `bson:"message" json:"message"`
	Destination string     `bson:"destination,omitempty" json:"destination,omitempty"`
	Dock        string     `bson:"dock,omitempty" json:"dock,omitempty"`
	Password    string     `bson:"password,omitempty" json:"password,omitempty"`
	CalledAt    time.Time  `bson:"called_at" json:"calledAt"`
	FinalizedAt *time.Time `bson:"finalized_at,omitempty" json:"finalizedAt,omitempty"`

	// Driver snapshot taken at call time so the panel row survives
	// later driver edits.
	DriverName   string `bson:"driver_name" json:"driverName"`
	VehiclePlate string `bson:"vehicle_plate" json:"vehiclePlate"`
	Transporter  string `bson:"transporter,omitempty" json:"transporter,omitempty"`
}

const callIDRandChars = "0123456789abcdefghijklmnopqrstuvwxyz"

// NewCallID builds a call id in the panel's legacy format:
// call_<unix millis>_<driver id>_<5 random base36 chars>.
func NewCallID(driverID string, now time.Time) string {
	suffix := make([]byte, 5)
	for i := range suffix {
		suffix[i] = callIDRandChars[rand.Intn(len(callIDRandChars))]
	}
	return fmt.Sprintf("call_%d_%s_%s", now.UnixMilli(), driverID, suffix)
}

// IsFinalized reports whether the call carries a finalization timestamp.
func (c *Call) IsFinalized() bool {
	return c.FinalizedAt != nil
}
