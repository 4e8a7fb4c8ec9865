package dto

import (
	"time"

	"github.com/Temutjin2k/sitetrack/internal/domain/models"
	"github.com/Temutjin2k/sitetrack/pkg/validator"
)

// LocationMessage is a {"type":"location"} frame sent by a driver socket.
// The driver id comes from the socket path.
type LocationMessage struct {
	Type       string     `json:"type"`
	DeliveryID string     `json:"delivery_id,omitempty"`
	DriverName string     `json:"driver_name,omitempty"`
	Latitude   *float64   `json:"latitude"`
	Longitude  *float64   `json:"longitude"`
	Speed      float64    `json:"speed,omitempty"`
	Heading    float64    `json:"heading,omitempty"`
	Timestamp  *time.Time `json:"timestamp,omitempty"`
}

func (m *LocationMessage) Validate(v *validator.Validator) {
	v.Check(m.Latitude != nil, "latitude", "must be provided")
	v.Check(m.Longitude != nil, "longitude", "must be provided")
}

func (m *LocationMessage) ToModel(driverID string) models.LocationPing {
	p := models.LocationPing{
		DriverID:   driverID,
		DriverName: m.DriverName,
		DeliveryID: m.DeliveryID,
		Speed:      m.Speed,
		Heading:    m.Heading,
	}
	if m.Latitude != nil {
		p.Latitude = *m.Latitude
	}
	if m.Longitude != nil {
		p.Longitude = *m.Longitude
	}
	if m.Timestamp != nil {
		p.Timestamp = *m.Timestamp
	}
	return p
}

// LocationAck answers a location frame.
type LocationAck struct {
	Type     string         `json:"type"`
	Accepted bool           `json:"accepted"`
	Reason   string         `json:"reason,omitempty"`
	Alerts   []models.Alert `json:"alerts,omitempty"`
}

// DriverMessage is an admin {"type":"message_driver"} frame.
type DriverMessage struct {
	Type     string `json:"type"`
	DriverID string `json:"driver_id"`
	Message  string `json:"message"`
}

func (m *DriverMessage) Validate(v *validator.Validator) {
	v.Check(m.DriverID != "", "driver_id", "must be provided")
	v.Check(m.Message != "", "message", "must be provided")
	v.Check(len(m.Message) <= 1000, "message", "must not be more than 1000 characters")
}
