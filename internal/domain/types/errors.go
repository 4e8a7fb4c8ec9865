package types

import "errors"

// Not found
var (
	ErrRouteNotFound    = errors.New("route not found")
	ErrDeliveryNotFound = errors.New("delivery not found")
	ErrAlertNotFound    = errors.New("alert not found")
	ErrNotFound         = errors.New("requested item not found")
)

// Validation and ordering
var (
	ErrInvalidPing   = errors.New("invalid location ping")
	ErrStalePing     = errors.New("ping is not newer than the cached position")
	ErrRouteMismatch = errors.New("qr code route does not match delivery route")
)

// State conflicts
var (
	ErrInvalidTransition    = errors.New("invalid delivery transition")
	ErrDriverNotBound       = errors.New("delivery has no bound driver")
	ErrAdminOnly            = errors.New("action requires an admin")
	ErrNotAssignedDriver    = errors.New("actor is not the driver assigned to the delivery")
	ErrDeliveryAlreadyBound = errors.New("delivery is already bound to another driver")
	ErrAlertAlreadyResolved = errors.New("alert already resolved")
)

var (
	ErrPersistence  = errors.New("persistence failed after retries")
	ErrUnauthorized = errors.New("unauthorized")
)

// RejectReason maps a state conflict to its machine readable reason.
func RejectReason(err error) string {
	switch {
	case errors.Is(err, ErrInvalidTransition):
		return "invalid_transition"
	case errors.Is(err, ErrDriverNotBound):
		return "driver_not_bound"
	case errors.Is(err, ErrAdminOnly):
		return "admin_only"
	case errors.Is(err, ErrNotAssignedDriver):
		return "not_assigned_driver"
	case errors.Is(err, ErrDeliveryAlreadyBound):
		return "already_bound"
	case errors.Is(err, ErrAlertAlreadyResolved):
		return "already_resolved"
	default:
		return ""
	}
}
