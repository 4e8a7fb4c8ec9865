package types

// FeedEvent is the type field of messages pushed to the admin live feed.
type FeedEvent string

func (e FeedEvent) String() string {
	return string(e)
}

const (
	FeedActiveDrivers  FeedEvent = "active_drivers"
	FeedLocationUpdate FeedEvent = "location_update"
	FeedAlert          FeedEvent = "alert"
	FeedEmergency      FeedEvent = "emergency"
	FeedAlertResolved  FeedEvent = "alert_resolved"
	FeedDeliveryStatus FeedEvent = "delivery_status"

	FeedDriverDisconnected FeedEvent = "driver_disconnected"
	FeedAdminMessage       FeedEvent = "admin_message"
)
