package models

import (
	"time"

	"github.com/Temutjin2k/sitetrack/internal/domain/types"
)

type Alert struct {
	ID         string          `json:"id"`
	Type       types.AlertType `json:"type"`
	Severity   types.Severity  `json:"severity"`
	DriverID   string          `json:"driver_id"`
	DriverName string          `json:"driver_name,omitempty"`
	DeliveryID string          `json:"delivery_id,omitempty"`
	Message    string          `json:"message"`
	Latitude   float64         `json:"latitude"`
	Longitude  float64         `json:"longitude"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
	Refreshes  int             `json:"refreshes"`
	IsResolved bool            `json:"is_resolved"`
	ResolvedAt *time.Time      `json:"resolved_at,omitempty"`
	ResolvedBy string          `json:"resolved_by,omitempty"`
}

// AlertFilter narrows an alert listing. Zero values match everything.
type AlertFilter struct {
	Resolved *bool
	DriverID string
	Type     types.AlertType
}

func (f AlertFilter) Match(a Alert) bool {
	if f.Resolved != nil && a.IsResolved != *f.Resolved {
		return false
	}
	if f.DriverID != "" && a.DriverID != f.DriverID {
		return false
	}
	if f.Type != "" && a.Type != f.Type {
		return false
	}
	return true
}
