package models

import "time"

// LocationPing is one location report from a driver device.
type LocationPing struct {
	DriverID   string    `json:"driver_id"`
	DriverName string    `json:"driver_name,omitempty"`
	DeliveryID string    `json:"delivery_id,omitempty"`
	Latitude   float64   `json:"latitude"`
	Longitude  float64   `json:"longitude"`
	Speed      float64   `json:"speed"`   // km/h as reported by the device
	Heading    float64   `json:"heading"` // degrees
	Timestamp  time.Time `json:"timestamp"`
	ReceivedAt time.Time `json:"received_at"`
}

func (p LocationPing) Coordinate() Coordinate {
	return Coordinate{Latitude: p.Latitude, Longitude: p.Longitude}
}

// LivePosition is the most recently accepted ping of a driver plus the
// speed the engine computed for it.
type LivePosition struct {
	LocationPing
	DerivedSpeed float64 `json:"derived_speed"`
	RouteID      string  `json:"route_id,omitempty"`
}

// HistoryPoint is a row of the location history archive.
type HistoryPoint struct {
	DriverID   string    `json:"driver_id"`
	DeliveryID string    `json:"delivery_id,omitempty"`
	Latitude   float64   `json:"latitude"`
	Longitude  float64   `json:"longitude"`
	Speed      float64   `json:"speed"`
	Heading    float64   `json:"heading"`
	Timestamp  time.Time `json:"timestamp"`
}
