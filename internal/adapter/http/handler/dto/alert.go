package dto

import (
	"github.com/Temutjin2k/sitetrack/internal/service/tracking"
	"github.com/Temutjin2k/sitetrack/pkg/validator"
)

type EmergencyReq struct {
	DriverID   string   `json:"driver_id"`
	DriverName string   `json:"driver_name,omitempty"`
	DeliveryID string   `json:"delivery_id,omitempty"`
	Latitude   *float64 `json:"latitude"`
	Longitude  *float64 `json:"longitude"`
	Message    string   `json:"message,omitempty"`
}

func (r *EmergencyReq) Validate(v *validator.Validator) {
	v.Check(r.DriverID != "", "driver_id", "must be provided")
	v.Check(len(r.Message) <= 500, "message", "must not be more than 500 characters")

	if r.Latitude != nil && r.Longitude != nil {
		v.Check(validator.Latitude(*r.Latitude), "latitude", "must be between -90 and 90")
		v.Check(validator.Longitude(*r.Longitude), "longitude", "must be between -180 and 180")
	} else {
		v.Check(r.Latitude != nil, "latitude", "must be provided")
		v.Check(r.Longitude != nil, "longitude", "must be provided")
	}
}

func (r *EmergencyReq) ToInput() tracking.EmergencyInput {
	in := tracking.EmergencyInput{
		DriverID:   r.DriverID,
		DriverName: r.DriverName,
		DeliveryID: r.DeliveryID,
		Message:    r.Message,
	}
	if r.Latitude != nil {
		in.Latitude = *r.Latitude
	}
	if r.Longitude != nil {
		in.Longitude = *r.Longitude
	}
	return in
}
