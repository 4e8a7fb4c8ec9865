package pipeline

import (
	"context"

	"github.com/Temutjin2k/sitetrack/internal/domain/models"
	"github.com/Temutjin2k/sitetrack/internal/domain/types"
	"github.com/Temutjin2k/sitetrack/pkg/metrics"
)

// FeedMessage is the envelope pushed to admin websocket clients.
type FeedMessage struct {
	Type types.FeedEvent `json:"type"`
	Data any             `json:"data"`
}

// Dispatcher fans engine events out to buffered channels. Sends never block:
// when a channel is full the event is dropped and counted. Alert states bound
// for the store are coalesced per alert instead. A nil channel or queue means
// the corresponding output is not configured.
type Dispatcher struct {
	history    chan models.HistoryPoint
	state      chan models.LivePosition
	alerts     chan models.AlertEvent
	alertStore *alertQueue
	deliveries chan models.DeliveryStatusEvent
	feed       chan FeedMessage
}

func offer[T any](ch chan T, v T, name string) {
	if ch == nil {
		return
	}
	select {
	case ch <- v:
	default:
		metrics.PipelineDroppedTotal.WithLabelValues(name).Inc()
	}
}

// LocationAccepted implements tracking.LocationSink.
func (d *Dispatcher) LocationAccepted(_ context.Context, pos models.LivePosition) {
	offer(d.history, models.HistoryPoint{
		DriverID:   pos.DriverID,
		DeliveryID: pos.DeliveryID,
		Latitude:   pos.Latitude,
		Longitude:  pos.Longitude,
		Speed:      pos.DerivedSpeed,
		Heading:    pos.Heading,
		Timestamp:  pos.Timestamp,
	}, "history")
	offer(d.state, pos, "state")
	offer(d.feed, FeedMessage{Type: types.FeedLocationUpdate, Data: pos}, "feed")
}

// AlertEvent implements alert.EventSink.
func (d *Dispatcher) AlertEvent(_ context.Context, ev models.AlertEvent) {
	if d.alertStore != nil {
		d.alertStore.put(ev.Alert)
	}
	offer(d.alerts, ev, "alert_events")

	switch ev.Kind {
	case models.AlertCreated:
		kind := types.FeedAlert
		if ev.Alert.Type == types.AlertEmergency {
			kind = types.FeedEmergency
		}
		offer(d.feed, FeedMessage{Type: kind, Data: ev.Alert}, "feed")
	case models.AlertResolved:
		offer(d.feed, FeedMessage{Type: types.FeedAlertResolved, Data: ev.Alert}, "feed")
	}
}

// DeliveryStatus implements delivery.Publisher.
func (d *Dispatcher) DeliveryStatus(_ context.Context, ev models.DeliveryStatusEvent) {
	offer(d.deliveries, ev, "deliveries")
	offer(d.feed, FeedMessage{Type: types.FeedDeliveryStatus, Data: ev}, "feed")
}
