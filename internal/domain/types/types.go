package types

// DeliveryStatus is the lifecycle state of a delivery.
type DeliveryStatus string

func (s DeliveryStatus) String() string {
	return string(s)
}

const (
	StatusPending    DeliveryStatus = "pending"
	StatusInProgress DeliveryStatus = "in_progress"
	StatusCompleted  DeliveryStatus = "completed"
	StatusCancelled  DeliveryStatus = "cancelled"
)

// Terminal reports whether no further transition is allowed.
func (s DeliveryStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

func (s DeliveryStatus) Valid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// DeliveryAction is a requested delivery transition.
type DeliveryAction string

const (
	ActionStart    DeliveryAction = "start"
	ActionArrive   DeliveryAction = "arrive"
	ActionComplete DeliveryAction = "complete"
	ActionCancel   DeliveryAction = "cancel"
)

// ActionForStatus maps a target status from the status endpoint to an action.
// Unknown targets yield "" which the state machine rejects.
func ActionForStatus(s DeliveryStatus) DeliveryAction {
	switch s {
	case StatusInProgress:
		return ActionStart
	case StatusCompleted:
		return ActionComplete
	case StatusCancelled:
		return ActionCancel
	default:
		return ""
	}
}

// AlertType classifies an alert. At most one open alert per (driver, type).
type AlertType string

func (t AlertType) String() string {
	return string(t)
}

const (
	AlertDeviation AlertType = "deviation"
	AlertSpeed     AlertType = "speed"
	AlertEmergency AlertType = "emergency"
	AlertStopped   AlertType = "stopped"
)

func (t AlertType) Valid() bool {
	switch t {
	case AlertDeviation, AlertSpeed, AlertEmergency, AlertStopped:
		return true
	}
	return false
}

// Severity of an alert, ordered low < medium < high < critical.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// Rank orders severities; higher is more severe.
func (s Severity) Rank() int {
	switch s {
	case SeverityLow:
		return 1
	case SeverityMedium:
		return 2
	case SeverityHigh:
		return 3
	case SeverityCritical:
		return 4
	}
	return 0
}

// PingAccepted labels applied pings in the ping counter; rejected pings are
// labelled with their DropReason.
const PingAccepted = "accepted"

// DropReason explains why a ping was not applied.
type DropReason string

const (
	DropNone    DropReason = ""
	DropInvalid DropReason = "invalid"
	DropStale   DropReason = "stale"
)

// DriverStatus is the display status of an active driver.
type DriverStatus string

const (
	DriverEnRoute   DriverStatus = "en_route"
	DriverArrived   DriverStatus = "arrived"
	DriverDeviation DriverStatus = "deviation"
	DriverStopped   DriverStatus = "stopped"
	DriverEmergency DriverStatus = "emergency"
)

// UserRole of the actor performing an operation.
type UserRole string

func (r UserRole) String() string {
	return string(r)
}

const (
	DriverRole     UserRole = "driver"
	AdminRole      UserRole = "admin"
	SupervisorRole UserRole = "supervisor"
	SystemRole     UserRole = "system"
)

// SpeedSource selects which speed the speed rule checks.
type SpeedSource string

const (
	SpeedDerived  SpeedSource = "derived"
	SpeedReported SpeedSource = "reported"
	SpeedMax      SpeedSource = "max"
)

// Actor ids used for system-initiated resolutions.
const (
	ResolvedBySuperseded = "system:superseded"
	ResolvedByFreshPing  = "system:fresh_ping"
)
