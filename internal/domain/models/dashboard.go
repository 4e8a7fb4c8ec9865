package models

import (
	"time"

	"github.com/Temutjin2k/sitetrack/internal/domain/types"
)

type DashboardStats struct {
	ActiveDrivers     int       `json:"active_drivers"`
	InProgress        int       `json:"in_progress"`
	CompletedToday    int       `json:"completed_today"`
	UnresolvedAlerts  int       `json:"active_alerts"`
	CriticalAlerts    int       `json:"critical_alerts"`
	TotalDeliveries   int       `json:"total_deliveries"`
	TodayDeliveries   int       `json:"today_deliveries"`
	PendingDeliveries int       `json:"pending_deliveries"`
	GeneratedAt       time.Time `json:"generated_at"`
}

// ActiveDriver is a live position joined with delivery and route names.
type ActiveDriver struct {
	DriverID    string             `json:"driver_id"`
	DriverName  string             `json:"driver_name"`
	DeliveryID  string             `json:"delivery_id,omitempty"`
	Latitude    float64            `json:"latitude"`
	Longitude   float64            `json:"longitude"`
	Speed       float64            `json:"speed"`
	Heading     float64            `json:"heading"`
	Status      types.DriverStatus `json:"status"`
	VehicleType string             `json:"vehicle_type,omitempty"`
	RouteName   string             `json:"route_name,omitempty"`
	LastUpdate  time.Time          `json:"last_update"`
}
