package tracking

import (
	"context"
	"fmt"
	"time"

	"github.com/Temutjin2k/sitetrack/internal/domain/models"
	"github.com/Temutjin2k/sitetrack/internal/domain/types"
	"github.com/Temutjin2k/sitetrack/internal/service/alert"
	"github.com/Temutjin2k/sitetrack/internal/service/geofence"
	"github.com/Temutjin2k/sitetrack/pkg/logger"
	wrap "github.com/Temutjin2k/sitetrack/pkg/logger/wrapper"
	"github.com/Temutjin2k/sitetrack/pkg/metrics"
	"github.com/Temutjin2k/sitetrack/pkg/validator"
)

type Deliveries interface {
	Get(id string) (models.Delivery, error)
	ActiveForDriver(driverID string) (models.Delivery, bool)
	InProgress() []models.Delivery
}

type Routes interface {
	Get(id string) (models.Route, error)
}

type Alerts interface {
	Raise(ctx context.Context, in alert.RaiseInput) (models.Alert, bool)
	ResolveOpen(ctx context.Context, driverID string, t types.AlertType, by string) (models.Alert, bool)
	HasOpen(driverID string, t types.AlertType) bool
}

type Evaluator interface {
	Evaluate(in geofence.Input) geofence.Result
}

// LocationSink receives accepted positions. Implementations must not block.
type LocationSink interface {
	LocationAccepted(ctx context.Context, pos models.LivePosition)
}

type Config struct {
	StaleTimeout    time.Duration
	SweepInterval   time.Duration
	ActiveDriverTTL time.Duration
}

// IngestResult reports what happened to a ping.
type IngestResult struct {
	Accepted bool
	Reason   types.DropReason
	Position models.LivePosition
	Alerts   []models.Alert // alerts created or refreshed by this ping
	Cleared  []models.Alert // alerts auto-resolved by this ping
}

// Service ingests pings, keeps live positions and runs the staleness sweep.
type Service struct {
	cfg        Config
	store      *LiveStore
	deliveries Deliveries
	routes     Routes
	alerts     Alerts
	eval       Evaluator
	sink       LocationSink
	now        func() time.Time
	log        logger.Logger
}

type Option func(*Service)

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func WithSink(sink LocationSink) Option {
	return func(s *Service) { s.sink = sink }
}

func New(cfg Config, store *LiveStore, deliveries Deliveries, routes Routes, alerts Alerts, eval Evaluator, log logger.Logger, opts ...Option) *Service {
	s := &Service{
		cfg:        cfg,
		store:      store,
		deliveries: deliveries,
		routes:     routes,
		alerts:     alerts,
		eval:       eval,
		now:        time.Now,
		log:        log,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Store exposes the live store for read-only consumers.
func (s *Service) Store() *LiveStore {
	return s.store
}

// Validate checks the ping fields the engine relies on.
func Validate(v *validator.Validator, p models.LocationPing) {
	v.Check(p.DriverID != "", "driver_id", "must be provided")
	v.Check(validator.Latitude(p.Latitude), "latitude", "must be a finite value between -90 and 90")
	v.Check(validator.Longitude(p.Longitude), "longitude", "must be a finite value between -180 and 180")
	v.Check(validator.Finite(p.Speed) && p.Speed >= 0, "speed", "must be a finite value >= 0")
	v.Check(validator.Finite(p.Heading), "heading", "must be finite")
}

// Ingest validates a ping, applies it to the driver's live state if it is
// newer than the cached one and evaluates the geofence rules. Invalid and
// stale pings are dropped without touching state.
func (s *Service) Ingest(ctx context.Context, p models.LocationPing) IngestResult {
	start := time.Now()
	defer func() { metrics.PingIngestDuration.Observe(time.Since(start).Seconds()) }()

	ctx = wrap.WithDriverID(ctx, p.DriverID)

	v := validator.New()
	if Validate(v, p); !v.Valid() {
		metrics.PingsTotal.WithLabelValues(string(types.DropInvalid)).Inc()
		s.log.Debug(wrap.WithAction(ctx, types.ActionPingDropped), "invalid ping dropped", "errors", v.Errors)
		return IngestResult{Reason: types.DropInvalid}
	}

	now := s.now()
	p.ReceivedAt = now
	if p.Timestamp.IsZero() {
		p.Timestamp = now
	}

	st := s.store.acquire(p.DriverID)
	st.mu.Lock()
	defer st.mu.Unlock()

	if st.last != nil && !p.Timestamp.After(st.last.Timestamp) {
		metrics.PingsTotal.WithLabelValues(string(types.DropStale)).Inc()
		s.log.Debug(wrap.WithAction(ctx, types.ActionPingDropped), "stale ping dropped",
			"ping_ts", p.Timestamp, "cached_ts", st.last.Timestamp)
		return IngestResult{Reason: types.DropStale}
	}

	delivery, route := s.resolve(p)
	if delivery.ID != st.deliveryID {
		st.deliveryID = delivery.ID
		st.progress = 0
	}
	p.DeliveryID = delivery.ID
	if delivery.ID != "" {
		ctx = wrap.WithDeliveryID(ctx, delivery.ID)
	}

	switch {
	case p.DriverName != "":
		st.name = p.DriverName
	case st.name != "":
		p.DriverName = st.name
	default:
		p.DriverName = delivery.DriverName
		st.name = p.DriverName
	}
	s.store.push(st, p)

	res := s.eval.Evaluate(geofence.Input{
		Ping:     p,
		Route:    route,
		Window:   st.window,
		Progress: st.progress,
	})
	st.progress = res.Progress

	pos := models.LivePosition{LocationPing: p, DerivedSpeed: res.Speed}
	if route != nil {
		pos.RouteID = route.ID
	}
	st.live.Store(&pos)
	metrics.PingsTotal.WithLabelValues(types.PingAccepted).Inc()

	out := IngestResult{Accepted: true, Position: pos}
	for _, trip := range res.Trips {
		a, _ := s.alerts.Raise(ctx, alert.RaiseInput{
			DriverID:   p.DriverID,
			DriverName: p.DriverName,
			DeliveryID: p.DeliveryID,
			Type:       trip.Type,
			Severity:   trip.Severity,
			Message:    trip.Message,
			Latitude:   p.Latitude,
			Longitude:  p.Longitude,
		})
		out.Alerts = append(out.Alerts, a)
	}

	// a fresh ping ends a stop; other alert types are incidents and stay open
	if s.alerts.HasOpen(p.DriverID, types.AlertStopped) {
		if a, ok := s.alerts.ResolveOpen(ctx, p.DriverID, types.AlertStopped, types.ResolvedByFreshPing); ok {
			out.Cleared = append(out.Cleared, a)
		}
	}

	if s.sink != nil {
		s.sink.LocationAccepted(ctx, pos)
	}
	return out
}

// resolve finds the in-progress delivery and route a ping belongs to.
func (s *Service) resolve(p models.LocationPing) (models.Delivery, *models.Route) {
	var (
		d  models.Delivery
		ok bool
	)
	if p.DeliveryID != "" {
		got, err := s.deliveries.Get(p.DeliveryID)
		ok = err == nil && got.DriverID == p.DriverID && got.Status == types.StatusInProgress
		d = got
	}
	if !ok {
		d, ok = s.deliveries.ActiveForDriver(p.DriverID)
	}
	if !ok {
		return models.Delivery{}, nil
	}

	r, err := s.routes.Get(d.RouteID)
	if err != nil {
		return d, nil
	}
	return d, &r
}

// EmergencyInput is an explicit emergency report from a driver.
type EmergencyInput struct {
	DriverID   string
	DriverName string
	DeliveryID string
	Latitude   float64
	Longitude  float64
	Message    string
}

// ReportEmergency raises a critical emergency alert regardless of geofence state.
func (s *Service) ReportEmergency(ctx context.Context, in EmergencyInput) models.Alert {
	if in.DeliveryID == "" {
		if d, ok := s.deliveries.ActiveForDriver(in.DriverID); ok {
			in.DeliveryID = d.ID
		}
	}
	if in.Message == "" {
		in.Message = "Emergency reported by driver"
	}

	a, _ := s.alerts.Raise(ctx, alert.RaiseInput{
		DriverID:   in.DriverID,
		DriverName: in.DriverName,
		DeliveryID: in.DeliveryID,
		Type:       types.AlertEmergency,
		Severity:   types.SeverityCritical,
		Message:    in.Message,
		Latitude:   in.Latitude,
		Longitude:  in.Longitude,
	})
	return a
}

// ActivePositions returns live positions received within the active TTL.
func (s *Service) ActivePositions() []models.LivePosition {
	var since time.Time
	if s.cfg.ActiveDriverTTL > 0 {
		since = s.now().Add(-s.cfg.ActiveDriverTTL)
	}
	return s.store.Snapshot(since)
}

// RunSweeper runs SweepOnce every SweepInterval until ctx is done.
func (s *Service) RunSweeper(ctx context.Context) error {
	interval := s.cfg.SweepInterval
	if interval <= 0 {
		interval = 10 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			s.SweepOnce(ctx)
			metrics.ActiveDriversGauge.Set(float64(len(s.ActivePositions())))
		}
	}
}

// SweepOnce raises a stopped alert for every driver with an in-progress
// delivery and no accepted ping for longer than StaleTimeout. The last
// accepted ping, or the delivery start when there is none, is the reference.
// Only newly created alerts are returned; open ones are refreshed in place.
func (s *Service) SweepOnce(ctx context.Context) []models.Alert {
	ctx = wrap.WithAction(ctx, types.ActionStaleSweep)
	if s.cfg.StaleTimeout <= 0 {
		return nil
	}

	var raised []models.Alert
	for _, d := range s.deliveries.InProgress() {
		if d.DriverID == "" {
			continue
		}
		if a, ok := s.checkStale(ctx, d); ok {
			raised = append(raised, a)
		}
	}
	return raised
}

func (s *Service) checkStale(ctx context.Context, d models.Delivery) (models.Alert, bool) {
	st := s.store.acquire(d.DriverID)
	st.mu.Lock()
	defer st.mu.Unlock()

	now := s.now()
	ref := d.CreatedAt
	if d.StartTime != nil {
		ref = *d.StartTime
	}
	lat, lng := 0.0, 0.0
	if lp := st.live.Load(); lp != nil {
		if lp.ReceivedAt.After(ref) {
			ref = lp.ReceivedAt
		}
		lat, lng = lp.Latitude, lp.Longitude
	}

	silent := now.Sub(ref)
	if silent <= s.cfg.StaleTimeout {
		return models.Alert{}, false
	}

	ctx = wrap.WithDeliveryID(wrap.WithDriverID(ctx, d.DriverID), d.ID)
	return s.alerts.Raise(ctx, alert.RaiseInput{
		DriverID:   d.DriverID,
		DriverName: d.DriverName,
		DeliveryID: d.ID,
		Type:       types.AlertStopped,
		Severity:   types.SeverityMedium,
		Message:    fmt.Sprintf("No position update for %ds", int(silent.Seconds())),
		Latitude:   lat,
		Longitude:  lng,
	})
}
