package models

import (
	"time"

	"github.com/Temutjin2k/sitetrack/internal/domain/types"
)

// AlertEvent is emitted whenever an alert is created, refreshed or resolved.
type AlertEvent struct {
	Kind  AlertEventKind `json:"kind"`
	Alert Alert          `json:"alert"`
}

type AlertEventKind string

const (
	AlertCreated   AlertEventKind = "created"
	AlertRefreshed AlertEventKind = "refreshed"
	AlertResolved  AlertEventKind = "resolved"
)

// DeliveryStatusEvent is published after a transition is persisted.
type DeliveryStatusEvent struct {
	DeliveryID string               `json:"delivery_id"`
	DriverID   string               `json:"driver_id,omitempty"`
	From       types.DeliveryStatus `json:"from"`
	To         types.DeliveryStatus `json:"to"`
	Action     types.DeliveryAction `json:"action"`
	At         time.Time            `json:"at"`
}
