package dto

import (
	"time"

	"github.com/Temutjin2k/sitetrack/internal/domain/models"
	"github.com/Temutjin2k/sitetrack/pkg/validator"
)

// LocationUpdateReq is a ping posted by a driver device. Only structural
// problems are rejected here; range checks belong to the ingestor, which
// drops bad pings silently.
type LocationUpdateReq struct {
	DriverID   string     `json:"driver_id"`
	DriverName string     `json:"driver_name,omitempty"`
	DeliveryID string     `json:"delivery_id,omitempty"`
	Latitude   *float64   `json:"latitude"`
	Longitude  *float64   `json:"longitude"`
	Speed      *float64   `json:"speed,omitempty"`
	Heading    *float64   `json:"heading,omitempty"`
	Timestamp  *time.Time `json:"timestamp,omitempty"`
}

func (r *LocationUpdateReq) Validate(v *validator.Validator) {
	v.Check(r.DriverID != "", "driver_id", "must be provided")
	v.Check(len(r.DriverID) <= 64, "driver_id", "must not be more than 64 characters")
	v.Check(r.Latitude != nil, "latitude", "must be provided")
	v.Check(r.Longitude != nil, "longitude", "must be provided")
}

func (r *LocationUpdateReq) ToModel() models.LocationPing {
	p := models.LocationPing{
		DriverID:   r.DriverID,
		DriverName: r.DriverName,
		DeliveryID: r.DeliveryID,
	}
	if r.Latitude != nil {
		p.Latitude = *r.Latitude
	}
	if r.Longitude != nil {
		p.Longitude = *r.Longitude
	}
	if r.Speed != nil {
		p.Speed = *r.Speed
	}
	if r.Heading != nil {
		p.Heading = *r.Heading
	}
	if r.Timestamp != nil {
		p.Timestamp = *r.Timestamp
	}
	return p
}

type LocationUpdateResp struct {
	Success  bool           `json:"success"`
	Accepted bool           `json:"accepted"`
	Reason   string         `json:"reason,omitempty"`
	Alerts   []models.Alert `json:"alerts"`
}
