package model

import (
	"fmt"
	"time"
)

// Driver is a registered dock driver. IDs are immutable once assigned.
type Driver struct {
	ID                 string             `bson:"_id" json:"id"`
	FullName           string             `bson:"full_name" json:"fullName"`
	Phone              string             `bson:"phone" json:"phone"`
	VehiclePlate       string             `bson:"vehicle_plate" json:"vehiclePlate"`
	Transporter        string             `bson:"transporter" json:"transporter"`
	Destination        string             `bson:"destination" json:"destination"`
	Dock               string             `bson:"dock,omitempty" json:"dock,omitempty"`
	Password           string             `bson:"password,omitempty" json:"password,omitempty"`
	Client             string             `bson:"client,omitempty" json:"client,omitempty"`
	ResponsibleSeller  string             `bson:"responsible_seller" json:"responsibleSeller"`
	AvailabilityStatus AvailabilityStatus `bson:"availability_status" json:"availabilityStatus"`
	ServiceStatus      ServiceStatus      `bson:"service_status" json:"serviceStatus"`
	CreatedAt          time.Time          `bson:"created_at" json:"createdAt"`
	UpdatedAt          time.Time          `bson:"updated_at" json:"updatedAt"`
}

// NewDriverID generates a panel driver id from the current wall clock.
func NewDriverID(now time.Time) string {
	return fmt.Sprintf("driver_%d", now.UnixMilli())
}

// IsOffline reports whether the driver cannot receive calls or runs.
func (d *Driver) IsOffline() bool {
	return d.AvailabilityStatus == AvailabilityOffline
}

// EffectiveServiceStatus returns the service status, defaulting legacy
// records without one to "disponivel".
func (d *Driver) EffectiveServiceStatus() ServiceStatus {
	if d.ServiceStatus == "" {
		return ServiceStatusDisponivel
	}
	return d.ServiceStatus
}
