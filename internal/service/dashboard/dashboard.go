package dashboard

import (
	"slices"
	"strings"
	"time"

	"github.com/Temutjin2k/sitetrack/internal/domain/models"
	"github.com/Temutjin2k/sitetrack/internal/domain/types"
	"github.com/Temutjin2k/sitetrack/internal/service/delivery"
)

type Positions interface {
	ActivePositions() []models.LivePosition
}

type Deliveries interface {
	Get(id string) (models.Delivery, error)
	Stats(now time.Time) delivery.Stats
}

type Alerts interface {
	Counts() (unresolved, critical int)
	OpenTypesByDriver() map[string][]types.AlertType
}

type Routes interface {
	Get(id string) (models.Route, error)
}

// Aggregator composes dashboard views from the live store, the delivery
// state machine and the alert manager. It never mutates them.
type Aggregator struct {
	positions  Positions
	deliveries Deliveries
	alerts     Alerts
	routes     Routes
	now        func() time.Time
}

func New(positions Positions, deliveries Deliveries, alerts Alerts, routes Routes) *Aggregator {
	return &Aggregator{
		positions:  positions,
		deliveries: deliveries,
		alerts:     alerts,
		routes:     routes,
		now:        time.Now,
	}
}

// WithClock overrides time.Now, for tests.
func (a *Aggregator) WithClock(now func() time.Time) *Aggregator {
	a.now = now
	return a
}

// Snapshot returns point-in-time fleet and alert counters.
func (a *Aggregator) Snapshot() models.DashboardStats {
	now := a.now()
	ds := a.deliveries.Stats(now)
	unresolved, critical := a.alerts.Counts()

	return models.DashboardStats{
		ActiveDrivers:     len(a.positions.ActivePositions()),
		InProgress:        ds.InProgress,
		CompletedToday:    ds.CompletedToday,
		UnresolvedAlerts:  unresolved,
		CriticalAlerts:    critical,
		TotalDeliveries:   ds.Total,
		TodayDeliveries:   ds.Today,
		PendingDeliveries: ds.Pending,
		GeneratedAt:       now,
	}
}

// statusPriority orders display statuses; the highest applicable one wins.
var statusPriority = map[types.DriverStatus]int{
	types.DriverEnRoute:   0,
	types.DriverArrived:   1,
	types.DriverStopped:   2,
	types.DriverDeviation: 3,
	types.DriverEmergency: 4,
}

var alertStatus = map[types.AlertType]types.DriverStatus{
	types.AlertEmergency: types.DriverEmergency,
	types.AlertDeviation: types.DriverDeviation,
	types.AlertStopped:   types.DriverStopped,
}

// ListActiveDrivers returns live positions joined with delivery and route names.
func (a *Aggregator) ListActiveDrivers() []models.ActiveDriver {
	positions := a.positions.ActivePositions()
	open := a.alerts.OpenTypesByDriver()

	out := make([]models.ActiveDriver, 0, len(positions))
	for _, p := range positions {
		out = append(out, a.describe(p, open[p.DriverID]))
	}

	slices.SortFunc(out, func(x, y models.ActiveDriver) int {
		return strings.Compare(x.DriverID, y.DriverID)
	})
	return out
}

// ActiveDriver joins a single position, as pushed to the live feed.
func (a *Aggregator) ActiveDriver(p models.LivePosition) models.ActiveDriver {
	return a.describe(p, a.alerts.OpenTypesByDriver()[p.DriverID])
}

func (a *Aggregator) describe(p models.LivePosition, open []types.AlertType) models.ActiveDriver {
	ad := models.ActiveDriver{
		DriverID:   p.DriverID,
		DriverName: p.DriverName,
		DeliveryID: p.DeliveryID,
		Latitude:   p.Latitude,
		Longitude:  p.Longitude,
		Speed:      p.DerivedSpeed,
		Heading:    p.Heading,
		Status:     types.DriverEnRoute,
		LastUpdate: p.ReceivedAt,
	}

	if p.DeliveryID != "" {
		if d, err := a.deliveries.Get(p.DeliveryID); err == nil {
			ad.VehicleType = d.VehicleType
			ad.RouteName = d.RouteName
			if ad.DriverName == "" {
				ad.DriverName = d.DriverName
			}
			if d.Status == types.StatusCompleted {
				ad.Status = types.DriverArrived
			}
		}
	}
	if ad.RouteName == "" && p.RouteID != "" {
		if r, err := a.routes.Get(p.RouteID); err == nil {
			ad.RouteName = r.Name
		}
	}

	for _, t := range open {
		if s, ok := alertStatus[t]; ok && statusPriority[s] > statusPriority[ad.Status] {
			ad.Status = s
		}
	}
	return ad
}
