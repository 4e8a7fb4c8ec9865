package models

import (
	"time"

	"github.com/Temutjin2k/sitetrack/internal/domain/types"
)

type Delivery struct {
	ID            string               `json:"id"`
	QRCode        string               `json:"qr_code,omitempty"`
	RouteID       string               `json:"route_id"`
	RouteName     string               `json:"route_name"`
	DriverID      string               `json:"driver_id,omitempty"`
	DriverName    string               `json:"driver_name,omitempty"`
	VehicleType   string               `json:"vehicle_type,omitempty"`
	LicensePlate  string               `json:"license_plate,omitempty"`
	Status        types.DeliveryStatus `json:"status"`
	Company       string               `json:"company,omitempty"`
	Notes         string               `json:"notes,omitempty"`
	ScheduledTime *time.Time           `json:"scheduled_time,omitempty"`
	StartTime     *time.Time           `json:"start_time,omitempty"`
	EndTime       *time.Time           `json:"end_time,omitempty"`
	CreatedAt     time.Time            `json:"created_at"`
	UpdatedAt     time.Time            `json:"updated_at"`
}

// DriverInfo is copied onto a delivery when a driver binds to it.
type DriverInfo struct {
	DriverID     string
	DriverName   string
	VehicleType  string
	LicensePlate string
	Company      string
}

// DeliveryEvent is the audit row written with every transition.
type DeliveryEvent struct {
	DeliveryID string
	Action     types.DeliveryAction
	From       types.DeliveryStatus
	To         types.DeliveryStatus
	ActorID    string
	ActorRole  types.UserRole
	At         time.Time
}

// DeliveryFilter narrows a delivery listing.
type DeliveryFilter struct {
	Status   types.DeliveryStatus
	DriverID string
}
