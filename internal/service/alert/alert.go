package alert

import (
	"cmp"
	"context"
	"fmt"
	"hash/fnv"
	"slices"
	"sync"
	"time"

	"github.com/Temutjin2k/sitetrack/internal/domain/models"
	"github.com/Temutjin2k/sitetrack/internal/domain/types"
	"github.com/Temutjin2k/sitetrack/pkg/logger"
	wrap "github.com/Temutjin2k/sitetrack/pkg/logger/wrapper"
	"github.com/Temutjin2k/sitetrack/pkg/metrics"
	"github.com/google/uuid"
)

// EventSink receives alert lifecycle events. Implementations must not block.
type EventSink interface {
	AlertEvent(ctx context.Context, ev models.AlertEvent)
}

type Config struct {
	Cooldown time.Duration
	Stripes  int
}

// RaiseInput describes a tripped rule or an explicit report.
type RaiseInput struct {
	DriverID   string
	DriverName string
	DeliveryID string
	Type       types.AlertType
	Severity   types.Severity
	Message    string
	Latitude   float64
	Longitude  float64
}

type entry struct {
	mu    sync.Mutex
	key   string
	alert models.Alert
}

func (e *entry) snapshot() models.Alert {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.alert
}

// Manager creates, deduplicates and resolves alerts.
//
// At most one open alert exists per (driver, type). Raise and resolve for a
// key are serialized by a striped key lock; the open index is a sync.Map so
// readers never take the key locks. Lock order is key lock, then entry.
type Manager struct {
	cfg     Config
	now     func() time.Time
	sink    EventSink
	log     logger.Logger
	stripes []sync.Mutex

	open sync.Map // key -> *entry

	mu     sync.RWMutex
	alerts map[string]*entry
}

type Option func(*Manager)

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// WithSink sets the event sink.
func WithSink(s EventSink) Option {
	return func(m *Manager) { m.sink = s }
}

func NewManager(cfg Config, log logger.Logger, opts ...Option) *Manager {
	if cfg.Stripes <= 0 {
		cfg.Stripes = 64
	}
	m := &Manager{
		cfg:     cfg,
		now:     time.Now,
		log:     log,
		stripes: make([]sync.Mutex, cfg.Stripes),
		alerts:  make(map[string]*entry),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func alertKey(driverID string, t types.AlertType) string {
	return driverID + "|" + string(t)
}

func (m *Manager) stripe(key string) *sync.Mutex {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return &m.stripes[h.Sum32()%uint32(len(m.stripes))]
}

// Raise creates an alert or refreshes the open one for the same
// (driver, type) while it is inside the cooldown. created is false on refresh.
// An open alert older than the cooldown is superseded by a new one.
func (m *Manager) Raise(ctx context.Context, in RaiseInput) (models.Alert, bool) {
	key := alertKey(in.DriverID, in.Type)
	lock := m.stripe(key)
	lock.Lock()
	defer lock.Unlock()

	now := m.now()

	if v, ok := m.open.Load(key); ok {
		e := v.(*entry)
		e.mu.Lock()
		if now.Sub(e.alert.UpdatedAt) < m.cfg.Cooldown {
			e.alert.UpdatedAt = now
			e.alert.Message = in.Message
			e.alert.Latitude, e.alert.Longitude = in.Latitude, in.Longitude
			if in.Severity.Rank() > e.alert.Severity.Rank() {
				e.alert.Severity = in.Severity
			}
			if in.DeliveryID != "" {
				e.alert.DeliveryID = in.DeliveryID
			}
			e.alert.Refreshes++
			refreshed := e.alert
			e.mu.Unlock()

			metrics.AlertsSuppressedTotal.WithLabelValues(string(in.Type)).Inc()
			m.emit(ctx, models.AlertEvent{Kind: models.AlertRefreshed, Alert: refreshed})
			return refreshed, false
		}

		superseded := m.resolveLocked(e, now, types.ResolvedBySuperseded)
		e.mu.Unlock()
		m.open.CompareAndDelete(key, e)
		metrics.AlertsResolvedTotal.WithLabelValues("system").Inc()
		m.emit(ctx, models.AlertEvent{Kind: models.AlertResolved, Alert: superseded})
	}

	e := &entry{
		key: key,
		alert: models.Alert{
			ID:         uuid.NewString(),
			Type:       in.Type,
			Severity:   in.Severity,
			DriverID:   in.DriverID,
			DriverName: in.DriverName,
			DeliveryID: in.DeliveryID,
			Message:    in.Message,
			Latitude:   in.Latitude,
			Longitude:  in.Longitude,
			CreatedAt:  now,
			UpdatedAt:  now,
		},
	}

	m.mu.Lock()
	m.alerts[e.alert.ID] = e
	m.mu.Unlock()
	m.open.Store(key, e)

	created := e.alert
	metrics.AlertsRaisedTotal.WithLabelValues(string(in.Type), string(in.Severity)).Inc()

	ctx = wrap.WithAction(wrap.WithDriverID(ctx, in.DriverID), types.ActionAlertRaised)
	m.log.Info(ctx, "alert raised", "alert_id", created.ID, "type", created.Type, "severity", created.Severity)

	m.emit(ctx, models.AlertEvent{Kind: models.AlertCreated, Alert: created})
	return created, true
}

// resolveLocked marks e resolved. e.mu must be held.
func (m *Manager) resolveLocked(e *entry, now time.Time, by string) models.Alert {
	at := now
	e.alert.IsResolved = true
	e.alert.ResolvedAt = &at
	e.alert.ResolvedBy = by
	return e.alert
}

// Resolve closes an alert on behalf of actor. Resolving twice returns
// ErrAlertAlreadyResolved and keeps the original resolution time.
func (m *Manager) Resolve(ctx context.Context, id string, actor models.Actor) (models.Alert, error) {
	const op = "AlertManager.Resolve"

	m.mu.RLock()
	e, ok := m.alerts[id]
	m.mu.RUnlock()
	if !ok {
		return models.Alert{}, fmt.Errorf("%s: %w", op, types.ErrAlertNotFound)
	}

	lock := m.stripe(e.key)
	lock.Lock()
	defer lock.Unlock()

	e.mu.Lock()
	if e.alert.IsResolved {
		resolved := e.alert
		e.mu.Unlock()
		return resolved, fmt.Errorf("%s: %w", op, types.ErrAlertAlreadyResolved)
	}
	by := actor.ID
	if by == "" {
		by = string(actor.Role)
	}
	resolved := m.resolveLocked(e, m.now(), by)
	e.mu.Unlock()

	m.open.CompareAndDelete(e.key, e)
	metrics.AlertsResolvedTotal.WithLabelValues("user").Inc()

	ctx = wrap.WithAction(wrap.WithDriverID(ctx, resolved.DriverID), types.ActionAlertResolved)
	m.log.Info(ctx, "alert resolved", "alert_id", resolved.ID, "resolved_by", by)

	m.emit(ctx, models.AlertEvent{Kind: models.AlertResolved, Alert: resolved})
	return resolved, nil
}

// ResolveOpen closes the open alert of (driver, type), if any, as the system.
func (m *Manager) ResolveOpen(ctx context.Context, driverID string, t types.AlertType, by string) (models.Alert, bool) {
	key := alertKey(driverID, t)
	lock := m.stripe(key)
	lock.Lock()
	defer lock.Unlock()

	v, ok := m.open.Load(key)
	if !ok {
		return models.Alert{}, false
	}
	e := v.(*entry)

	e.mu.Lock()
	if e.alert.IsResolved {
		e.mu.Unlock()
		return models.Alert{}, false
	}
	resolved := m.resolveLocked(e, m.now(), by)
	e.mu.Unlock()

	m.open.CompareAndDelete(key, e)
	metrics.AlertsResolvedTotal.WithLabelValues("system").Inc()

	ctx = wrap.WithAction(wrap.WithDriverID(ctx, driverID), types.ActionAlertResolved)
	m.log.Info(ctx, "alert cleared", "alert_id", resolved.ID, "type", t, "resolved_by", by)

	m.emit(ctx, models.AlertEvent{Kind: models.AlertResolved, Alert: resolved})
	return resolved, true
}

// HasOpen reports whether (driver, type) has an open alert.
func (m *Manager) HasOpen(driverID string, t types.AlertType) bool {
	_, ok := m.open.Load(alertKey(driverID, t))
	return ok
}

// Get returns an alert by id.
func (m *Manager) Get(id string) (models.Alert, error) {
	m.mu.RLock()
	e, ok := m.alerts[id]
	m.mu.RUnlock()
	if !ok {
		return models.Alert{}, types.ErrAlertNotFound
	}
	return e.snapshot(), nil
}

// ListUnresolved returns a snapshot of open alerts matching f, most severe
// and most recent first.
func (m *Manager) ListUnresolved(f models.AlertFilter) []models.Alert {
	unresolved := false
	f.Resolved = &unresolved

	var out []models.Alert
	m.open.Range(func(_, v any) bool {
		if a := v.(*entry).snapshot(); f.Match(a) {
			out = append(out, a)
		}
		return true
	})
	sortAlerts(out)
	return out
}

// List returns a snapshot of all alerts matching f, including resolved ones.
func (m *Manager) List(f models.AlertFilter) []models.Alert {
	if f.Resolved != nil && !*f.Resolved {
		return m.ListUnresolved(f)
	}

	m.mu.RLock()
	entries := make([]*entry, 0, len(m.alerts))
	for _, e := range m.alerts {
		entries = append(entries, e)
	}
	m.mu.RUnlock()

	out := make([]models.Alert, 0, len(entries))
	for _, e := range entries {
		if a := e.snapshot(); f.Match(a) {
			out = append(out, a)
		}
	}
	sortAlerts(out)
	return out
}

func sortAlerts(alerts []models.Alert) {
	slices.SortFunc(alerts, func(a, b models.Alert) int {
		if c := cmp.Compare(b.Severity.Rank(), a.Severity.Rank()); c != 0 {
			return c
		}
		return b.UpdatedAt.Compare(a.UpdatedAt)
	})
}

// Counts returns the number of open alerts and of open critical alerts.
func (m *Manager) Counts() (unresolved, critical int) {
	m.open.Range(func(_, v any) bool {
		unresolved++
		if v.(*entry).snapshot().Severity == types.SeverityCritical {
			critical++
		}
		return true
	})
	return unresolved, critical
}

// OpenTypesByDriver returns the open alert types of every driver.
func (m *Manager) OpenTypesByDriver() map[string][]types.AlertType {
	out := make(map[string][]types.AlertType)
	m.open.Range(func(_, v any) bool {
		a := v.(*entry).snapshot()
		out[a.DriverID] = append(out[a.DriverID], a.Type)
		return true
	})
	return out
}

// Restore loads previously persisted alerts, e.g. on startup. Alerts that
// would violate the one-open-per-key rule are skipped.
func (m *Manager) Restore(alerts []models.Alert) int {
	n := 0
	for _, a := range alerts {
		key := alertKey(a.DriverID, a.Type)
		e := &entry{key: key, alert: a}

		lock := m.stripe(key)
		lock.Lock()
		if !a.IsResolved {
			if _, loaded := m.open.LoadOrStore(key, e); loaded {
				lock.Unlock()
				continue
			}
		}
		m.mu.Lock()
		m.alerts[a.ID] = e
		m.mu.Unlock()
		lock.Unlock()
		n++
	}
	return n
}

func (m *Manager) emit(ctx context.Context, ev models.AlertEvent) {
	if m.sink != nil {
		m.sink.AlertEvent(ctx, ev)
	}
}
