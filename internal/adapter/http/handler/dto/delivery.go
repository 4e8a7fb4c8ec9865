package dto

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/Temutjin2k/sitetrack/internal/domain/models"
	"github.com/Temutjin2k/sitetrack/internal/service/delivery"
	"github.com/Temutjin2k/sitetrack/pkg/validator"
)

type CreateDeliveryReq struct {
	RouteID       string     `json:"route_id"`
	DriverID      string     `json:"driver_id,omitempty"`
	DriverName    string     `json:"driver_name,omitempty"`
	VehicleType   string     `json:"vehicle_type,omitempty"`
	LicensePlate  string     `json:"license_plate,omitempty"`
	Company       string     `json:"company,omitempty"`
	Notes         string     `json:"notes,omitempty"`
	ScheduledTime *time.Time `json:"scheduled_time,omitempty"`
}

func (r *CreateDeliveryReq) Validate(v *validator.Validator) {
	v.Check(r.RouteID != "", "route_id", "must be provided")
	v.Check(len(r.Company) <= 200, "company", "must not be more than 200 characters")
	v.Check(len(r.Notes) <= 1000, "notes", "must not be more than 1000 characters")
	v.Check(len(r.LicensePlate) <= 20, "license_plate", "must not be more than 20 characters")
	if r.DriverID == "" {
		v.Check(r.DriverName == "" && r.VehicleType == "" && r.LicensePlate == "", "driver_id", "must be provided with driver details")
	}
}

func (r *CreateDeliveryReq) ToInput() delivery.CreateInput {
	in := delivery.CreateInput{
		RouteID:       r.RouteID,
		Company:       r.Company,
		Notes:         r.Notes,
		ScheduledTime: r.ScheduledTime,
	}
	if r.DriverID != "" {
		in.Driver = &models.DriverInfo{
			DriverID:     r.DriverID,
			DriverName:   r.DriverName,
			VehicleType:  r.VehicleType,
			LicensePlate: r.LicensePlate,
			Company:      r.Company,
		}
	}
	return in
}

// DriverReq describes the driver bound to a delivery.
type DriverReq struct {
	DriverID     string `json:"driver_id"`
	DriverName   string `json:"driver_name,omitempty"`
	VehicleType  string `json:"vehicle_type,omitempty"`
	LicensePlate string `json:"license_plate,omitempty"`
	Company      string `json:"company,omitempty"`
}

func (r *DriverReq) Validate(v *validator.Validator) {
	v.Check(r.DriverID != "", "driver_id", "must be provided")
	v.Check(len(r.DriverID) <= 64, "driver_id", "must not be more than 64 characters")
	v.Check(len(r.DriverName) <= 100, "driver_name", "must not be more than 100 characters")
	v.Check(len(r.LicensePlate) <= 20, "license_plate", "must not be more than 20 characters")
}

func (r *DriverReq) ToModel() models.DriverInfo {
	return models.DriverInfo{
		DriverID:     r.DriverID,
		DriverName:   r.DriverName,
		VehicleType:  r.VehicleType,
		LicensePlate: r.LicensePlate,
		Company:      r.Company,
	}
}

// QRPayload is the content encoded in a delivery QR code.
type QRPayload struct {
	DeliveryID    string     `json:"delivery_id"`
	RouteID       string     `json:"route_id"`
	ScheduledTime *time.Time `json:"scheduled_time,omitempty"`
}

// ScanQRReq carries the scanned payload either as an object or as the raw
// JSON string read from the code.
type ScanQRReq struct {
	QRData       json.RawMessage `json:"qr_data"`
	DriverID     string          `json:"driver_id,omitempty"`
	DriverName   string          `json:"driver_name,omitempty"`
	VehicleType  string          `json:"vehicle_type,omitempty"`
	LicensePlate string          `json:"license_plate,omitempty"`
	Company      string          `json:"company,omitempty"`
}

// Payload decodes QRData.
func (r *ScanQRReq) Payload() (QRPayload, error) {
	var p QRPayload
	raw := r.QRData
	if len(raw) == 0 {
		return p, fmt.Errorf("qr_data must be provided")
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		raw = json.RawMessage(strings.TrimSpace(s))
	}
	if err := json.Unmarshal(raw, &p); err != nil {
		return p, fmt.Errorf("qr_data is not a valid delivery code")
	}
	return p, nil
}

func (r *ScanQRReq) Validate(v *validator.Validator, p QRPayload) {
	v.Check(p.DeliveryID != "", "qr_data.delivery_id", "must be provided")
	v.Check(p.RouteID != "", "qr_data.route_id", "must be provided")
}

func (r *ScanQRReq) Driver(actor models.Actor) models.DriverInfo {
	id := actor.ID
	if actor.IsAdmin() && r.DriverID != "" {
		id = r.DriverID
	}
	return models.DriverInfo{
		DriverID:     id,
		DriverName:   r.DriverName,
		VehicleType:  r.VehicleType,
		LicensePlate: r.LicensePlate,
		Company:      r.Company,
	}
}
