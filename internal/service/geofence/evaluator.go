package geofence

import (
	"fmt"
	"math"

	"github.com/Temutjin2k/sitetrack/internal/domain/models"
	"github.com/Temutjin2k/sitetrack/internal/domain/types"
)

// minSpeedSpan is the shortest window (seconds) a derived speed is trusted over.
const minSpeedSpan = 1.0

type Config struct {
	DeviationThreshold float64 // meters
	SpeedLimit         float64 // km/h
	HighSpeedFactor    float64
	SpeedSource        types.SpeedSource
}

// Trip is a tripped rule, to be raised with the alert manager.
type Trip struct {
	Type     types.AlertType
	Severity types.Severity
	Message  string
}

// Input is one accepted ping with the context it is evaluated in.
type Input struct {
	Ping  models.LocationPing
	Route *models.Route // nil when the driver has no active delivery
	// Window holds the accepted pings of the driver, oldest first, ending with Ping.
	Window []models.LocationPing
	// Progress is the polyline segment index reached so far.
	Progress int
}

type Result struct {
	Trips    []Trip
	Progress int
	Speed    float64 // km/h checked by the speed rule
}

// Evaluator runs the per-ping rules. It holds no state and is safe for
// concurrent use.
type Evaluator struct {
	cfg Config
}

func New(cfg Config) *Evaluator {
	if cfg.HighSpeedFactor <= 1 {
		cfg.HighSpeedFactor = 1.5
	}
	if cfg.SpeedSource == "" {
		cfg.SpeedSource = types.SpeedDerived
	}
	return &Evaluator{cfg: cfg}
}

// Evaluate applies the danger-zone, deviation and speed rules in that order.
// Every rule is independent; any subset may trip on the same ping. A route
// speed limit overrides the site-wide one.
func (e *Evaluator) Evaluate(in Input) Result {
	res := Result{Progress: in.Progress}
	p := in.Ping.Coordinate()

	if in.Route != nil {
		if t, ok := e.dangerZone(p, in.Route); ok {
			res.Trips = append(res.Trips, t)
		}

		t, progress, ok := e.deviation(p, in.Route, in.Progress)
		res.Progress = progress
		if ok {
			res.Trips = append(res.Trips, t)
		}
	}

	limit := e.cfg.SpeedLimit
	if in.Route != nil && in.Route.SpeedLimit > 0 {
		limit = in.Route.SpeedLimit
	}
	res.Speed = e.Speed(in.Ping, in.Window)
	if t, ok := e.speed(res.Speed, limit); ok {
		res.Trips = append(res.Trips, t)
	}

	return res
}

func (e *Evaluator) dangerZone(p models.Coordinate, r *models.Route) (Trip, bool) {
	for _, z := range r.DangerZones {
		if InCircle(p, z.Coordinate, z.Radius) {
			return Trip{
				Type:     types.AlertEmergency,
				Severity: types.SeverityCritical,
				Message:  fmt.Sprintf("Entered danger zone: %s", z.Description),
			}, true
		}
	}
	return Trip{}, false
}

// deviation measures the distance to the remaining polyline. Progress only
// advances while the driver is on route and never moves backwards.
func (e *Evaluator) deviation(p models.Coordinate, r *models.Route, progress int) (Trip, int, bool) {
	pts := r.Polyline()
	if len(pts) < 2 || e.cfg.DeviationThreshold <= 0 {
		return Trip{}, progress, false
	}
	if progress > len(pts)-1 {
		progress = len(pts) - 1
	}

	dist, idx := NearestSegment(p, pts, progress)
	if dist > e.cfg.DeviationThreshold {
		return Trip{
			Type:     types.AlertDeviation,
			Severity: types.SeverityHigh,
			Message:  fmt.Sprintf("Route deviation: %.0fm from planned route", dist),
		}, progress, true
	}

	if idx > progress {
		progress = idx
	}
	return Trip{}, progress, false
}

func (e *Evaluator) speed(kmh, limit float64) (Trip, bool) {
	if limit <= 0 || kmh <= limit {
		return Trip{}, false
	}
	sev := types.SeverityMedium
	if kmh > limit*e.cfg.HighSpeedFactor {
		sev = types.SeverityHigh
	}
	return Trip{
		Type:     types.AlertSpeed,
		Severity: sev,
		Message:  fmt.Sprintf("Speed limit exceeded: %.1f km/h (limit: %.0f km/h)", kmh, limit),
	}, true
}

// Speed returns the speed checked against the limit for ping, given the
// window of accepted pings ending with it.
func (e *Evaluator) Speed(ping models.LocationPing, window []models.LocationPing) float64 {
	reported := ping.Speed
	switch e.cfg.SpeedSource {
	case types.SpeedReported:
		return reported
	case types.SpeedMax:
		if derived, ok := PathSpeed(window, minSpeedSpan); ok {
			return math.Max(derived, reported)
		}
		return reported
	default:
		if derived, ok := PathSpeed(window, minSpeedSpan); ok {
			return derived
		}
		return reported
	}
}
