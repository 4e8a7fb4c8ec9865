package delivery

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Temutjin2k/sitetrack/internal/domain/models"
	"github.com/Temutjin2k/sitetrack/internal/domain/types"
	"github.com/Temutjin2k/sitetrack/pkg/logger"
	wrap "github.com/Temutjin2k/sitetrack/pkg/logger/wrapper"
	"github.com/Temutjin2k/sitetrack/pkg/metrics"
	"github.com/Temutjin2k/sitetrack/pkg/retry"
	"github.com/google/uuid"
)

// Repository persists deliveries. Update must write the delivery and the
// event atomically.
type Repository interface {
	Create(ctx context.Context, d models.Delivery) error
	Update(ctx context.Context, d models.Delivery, ev *models.DeliveryEvent) error
	List(ctx context.Context) ([]models.Delivery, error)
}

// Publisher receives persisted status changes. Implementations must not block.
type Publisher interface {
	DeliveryStatus(ctx context.Context, ev models.DeliveryStatusEvent)
}

type RouteLookup interface {
	Get(id string) (models.Route, error)
}

// CreateInput is an admin request for a new delivery.
type CreateInput struct {
	RouteID       string
	Company       string
	Notes         string
	ScheduledTime *time.Time
	Driver        *models.DriverInfo
}

type record struct {
	mu  sync.Mutex // serializes writers of this delivery
	cur atomic.Pointer[models.Delivery]
}

func (r *record) load() models.Delivery {
	return *r.cur.Load()
}

// StateMachine owns delivery status transitions.
//
// Each delivery is guarded by its own mutex; readers load an immutable
// snapshot and never wait for a writer. The registry lock only covers map
// lookups and inserts.
type StateMachine struct {
	routes RouteLookup
	repo   Repository
	pub    Publisher
	retry  retry.Config
	// timeout bounds every persistence attempt.
	timeout time.Duration
	now     func() time.Time
	log     logger.Logger

	mu     sync.RWMutex
	items  map[string]*record
	active map[string]string // driver id -> in-progress delivery id
}

const defaultPersistTimeout = 2 * time.Second

type Option func(*StateMachine)

func WithRepository(repo Repository, rc retry.Config) Option {
	return func(s *StateMachine) {
		s.repo = repo
		s.retry = rc
	}
}

// WithTimeout bounds each persistence attempt. Zero keeps the default.
func WithTimeout(d time.Duration) Option {
	return func(s *StateMachine) {
		if d > 0 {
			s.timeout = d
		}
	}
}

func WithPublisher(p Publisher) Option {
	return func(s *StateMachine) { s.pub = p }
}

func WithClock(now func() time.Time) Option {
	return func(s *StateMachine) { s.now = now }
}

func New(routes RouteLookup, log logger.Logger, opts ...Option) *StateMachine {
	s := &StateMachine{
		routes:  routes,
		timeout: defaultPersistTimeout,
		now:     time.Now,
		log:     log,
		items:   make(map[string]*record),
		active:  make(map[string]string),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Restore loads persisted deliveries into memory.
func (s *StateMachine) Restore(ctx context.Context) (int, error) {
	if s.repo == nil {
		return 0, nil
	}
	list, err := s.repo.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("StateMachine.Restore: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range list {
		d := list[i]
		rec := &record{}
		rec.cur.Store(&d)
		s.items[d.ID] = rec
		if d.Status == types.StatusInProgress && d.DriverID != "" {
			s.active[d.DriverID] = d.ID
		}
	}
	return len(list), nil
}

func (s *StateMachine) Create(ctx context.Context, in CreateInput, actor models.Actor) (models.Delivery, error) {
	const op = "StateMachine.Create"

	if !actor.IsAdmin() {
		return models.Delivery{}, fmt.Errorf("%s: %w", op, types.ErrAdminOnly)
	}
	route, err := s.routes.Get(in.RouteID)
	if err != nil {
		return models.Delivery{}, fmt.Errorf("%s: %w", op, err)
	}

	now := s.now()
	id := uuid.NewString()
	d := models.Delivery{
		ID:            id,
		QRCode:        "DLV-" + strings.ToUpper(id[:8]),
		RouteID:       route.ID,
		RouteName:     route.Name,
		Status:        types.StatusPending,
		Company:       in.Company,
		Notes:         in.Notes,
		ScheduledTime: in.ScheduledTime,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if in.Driver != nil {
		applyDriver(&d, *in.Driver)
	}

	if err := s.persist(ctx, func(ctx context.Context) error { return s.repo.Create(ctx, d) }); err != nil {
		return models.Delivery{}, fmt.Errorf("%s: %w", op, err)
	}

	rec := &record{}
	rec.cur.Store(&d)
	s.mu.Lock()
	s.items[d.ID] = rec
	s.mu.Unlock()

	ctx = wrap.WithAction(wrap.WithDeliveryID(ctx, d.ID), types.ActionDeliveryCreated)
	s.log.Info(ctx, "delivery created", "route_id", d.RouteID)

	return d, nil
}

func applyDriver(d *models.Delivery, info models.DriverInfo) {
	d.DriverID = info.DriverID
	d.DriverName = info.DriverName
	d.VehicleType = info.VehicleType
	d.LicensePlate = info.LicensePlate
	if info.Company != "" {
		d.Company = info.Company
	}
}

func (s *StateMachine) record(id string) (*record, error) {
	s.mu.RLock()
	rec, ok := s.items[id]
	s.mu.RUnlock()
	if !ok {
		return nil, types.ErrDeliveryNotFound
	}
	return rec, nil
}

func (s *StateMachine) Get(id string) (models.Delivery, error) {
	rec, err := s.record(id)
	if err != nil {
		return models.Delivery{}, err
	}
	return rec.load(), nil
}

// List returns deliveries matching f, newest first.
func (s *StateMachine) List(f models.DeliveryFilter) []models.Delivery {
	out := make([]models.Delivery, 0)
	for _, d := range s.snapshot() {
		if f.Status != "" && d.Status != f.Status {
			continue
		}
		if f.DriverID != "" && d.DriverID != f.DriverID {
			continue
		}
		out = append(out, d)
	}
	slices.SortFunc(out, func(a, b models.Delivery) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return out
}

func (s *StateMachine) snapshot() []models.Delivery {
	s.mu.RLock()
	recs := make([]*record, 0, len(s.items))
	for _, rec := range s.items {
		recs = append(recs, rec)
	}
	s.mu.RUnlock()

	out := make([]models.Delivery, 0, len(recs))
	for _, rec := range recs {
		out = append(out, rec.load())
	}
	return out
}

// Bind attaches a driver to a pending delivery. Drivers may only bind
// themselves; admins may assign anyone. Binding the same driver twice is a no-op.
func (s *StateMachine) Bind(ctx context.Context, id string, driver models.DriverInfo, actor models.Actor) (models.Delivery, error) {
	const op = "StateMachine.Bind"

	if !actor.IsAdmin() && actor.ID != driver.DriverID {
		return models.Delivery{}, fmt.Errorf("%s: %w", op, types.ErrNotAssignedDriver)
	}

	rec, err := s.record(id)
	if err != nil {
		return models.Delivery{}, fmt.Errorf("%s: %w", op, err)
	}

	rec.mu.Lock()
	defer rec.mu.Unlock()

	cur := rec.load()
	if cur.Status != types.StatusPending {
		return cur, fmt.Errorf("%s: %w", op, types.ErrInvalidTransition)
	}
	if cur.DriverID != "" && cur.DriverID != driver.DriverID {
		return cur, fmt.Errorf("%s: %w", op, types.ErrDeliveryAlreadyBound)
	}
	if cur.DriverID == driver.DriverID {
		return cur, nil
	}

	next := cur
	applyDriver(&next, driver)
	next.UpdatedAt = s.now()

	if err := s.persist(ctx, func(ctx context.Context) error { return s.repo.Update(ctx, next, nil) }); err != nil {
		return cur, fmt.Errorf("%s: %w", op, err)
	}
	rec.cur.Store(&next)

	ctx = wrap.WithAction(wrap.WithDeliveryID(wrap.WithDriverID(ctx, driver.DriverID), id), types.ActionDeliveryBound)
	s.log.Info(ctx, "driver bound to delivery", "actor", actor.ID)

	return next, nil
}

// ScanQR binds the scanning driver to the delivery named in the QR payload.
func (s *StateMachine) ScanQR(ctx context.Context, deliveryID, routeID string, driver models.DriverInfo, actor models.Actor) (models.Delivery, error) {
	d, err := s.Get(deliveryID)
	if err != nil {
		return models.Delivery{}, fmt.Errorf("StateMachine.ScanQR: %w", err)
	}
	if routeID != "" && d.RouteID != routeID {
		return models.Delivery{}, fmt.Errorf("StateMachine.ScanQR: %w", types.ErrRouteMismatch)
	}
	return s.Bind(ctx, deliveryID, driver, actor)
}

// next validates action against the current state and actor and returns
// the target status.
func next(cur models.Delivery, action types.DeliveryAction, actor models.Actor) (types.DeliveryStatus, error) {
	assigned := actor.IsAdmin() || (cur.DriverID != "" && actor.ID == cur.DriverID)

	switch action {
	case types.ActionStart:
		if cur.Status != types.StatusPending {
			return "", types.ErrInvalidTransition
		}
		if cur.DriverID == "" {
			return "", types.ErrDriverNotBound
		}
		if !assigned {
			return "", types.ErrNotAssignedDriver
		}
		return types.StatusInProgress, nil

	case types.ActionArrive, types.ActionComplete:
		if cur.Status != types.StatusInProgress {
			return "", types.ErrInvalidTransition
		}
		if !assigned {
			return "", types.ErrNotAssignedDriver
		}
		return types.StatusCompleted, nil

	case types.ActionCancel:
		if cur.Status != types.StatusPending && cur.Status != types.StatusInProgress {
			return "", types.ErrInvalidTransition
		}
		if !actor.IsAdmin() {
			return "", types.ErrAdminOnly
		}
		return types.StatusCancelled, nil
	}

	return "", types.ErrInvalidTransition
}

// Transition applies action to the delivery. A rejected transition leaves
// the delivery untouched. When a repository is configured the change is
// persisted before it becomes visible.
func (s *StateMachine) Transition(ctx context.Context, id string, action types.DeliveryAction, actor models.Actor) (models.Delivery, error) {
	const op = "StateMachine.Transition"
	ctx = wrap.WithDeliveryID(ctx, id)

	rec, err := s.record(id)
	if err != nil {
		return models.Delivery{}, fmt.Errorf("%s: %w", op, err)
	}

	rec.mu.Lock()
	defer rec.mu.Unlock()

	cur := rec.load()
	to, err := next(cur, action, actor)
	if err != nil {
		metrics.DeliveryTransitionsTotal.WithLabelValues(string(action), "rejected").Inc()
		s.log.Warn(wrap.WithAction(ctx, types.ActionTransitionRejected), "transition rejected",
			"action", action, "status", cur.Status, "reason", types.RejectReason(err), "actor", actor.ID)
		return cur, fmt.Errorf("%s: %w", op, err)
	}

	now := s.now()
	upd := cur
	upd.Status = to
	upd.UpdatedAt = now
	switch to {
	case types.StatusInProgress:
		upd.StartTime = &now
	case types.StatusCompleted, types.StatusCancelled:
		upd.EndTime = &now
	}

	ev := &models.DeliveryEvent{
		DeliveryID: id,
		Action:     action,
		From:       cur.Status,
		To:         to,
		ActorID:    actor.ID,
		ActorRole:  actor.Role,
		At:         now,
	}
	if err := s.persist(ctx, func(ctx context.Context) error { return s.repo.Update(ctx, upd, ev) }); err != nil {
		metrics.DeliveryTransitionsTotal.WithLabelValues(string(action), "failed").Inc()
		return cur, fmt.Errorf("%s: %w", op, err)
	}

	rec.cur.Store(&upd)
	s.updateActive(cur, upd)

	metrics.DeliveryTransitionsTotal.WithLabelValues(string(action), "ok").Inc()
	s.log.Info(wrap.WithAction(ctx, types.ActionDeliveryTransition), "delivery transitioned",
		"from", cur.Status, "to", to, "actor", actor.ID)

	if s.pub != nil {
		s.pub.DeliveryStatus(ctx, models.DeliveryStatusEvent{
			DeliveryID: id,
			DriverID:   upd.DriverID,
			From:       cur.Status,
			To:         to,
			Action:     action,
			At:         now,
		})
	}
	return upd, nil
}

func (s *StateMachine) updateActive(prev, cur models.Delivery) {
	if cur.DriverID == "" {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if cur.Status == types.StatusInProgress {
		s.active[cur.DriverID] = cur.ID
		return
	}
	if prev.Status != types.StatusInProgress || s.active[cur.DriverID] != cur.ID {
		return
	}
	delete(s.active, cur.DriverID)
	// fall back to another delivery the driver still has in progress
	for id, rec := range s.items {
		if d := rec.cur.Load(); d.DriverID == cur.DriverID && d.Status == types.StatusInProgress {
			s.active[cur.DriverID] = id
			return
		}
	}
}

// persist runs fn with bounded retries. Without a repository it is a no-op.
func (s *StateMachine) persist(ctx context.Context, fn func(ctx context.Context) error) error {
	if s.repo == nil {
		return nil
	}
	err := retry.Do(ctx, s.retry, func(ctx context.Context) error {
		actx, cancel := context.WithTimeout(ctx, s.timeout)
		defer cancel()
		return fn(actx)
	})
	if err == nil {
		return nil
	}
	s.log.Error(wrap.WithAction(ctx, types.ActionPersistenceRetryExhausted), "failed to persist delivery", err)
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return errors.Join(types.ErrPersistence, err)
	}
	return fmt.Errorf("%w: %v", types.ErrPersistence, err)
}

// ActiveForDriver returns the in-progress delivery bound to driverID.
func (s *StateMachine) ActiveForDriver(driverID string) (models.Delivery, bool) {
	s.mu.RLock()
	id, ok := s.active[driverID]
	rec := s.items[id]
	s.mu.RUnlock()
	if !ok || rec == nil {
		return models.Delivery{}, false
	}
	d := rec.load()
	if d.Status != types.StatusInProgress {
		return models.Delivery{}, false
	}
	return d, true
}

// InProgress returns all in-progress deliveries.
func (s *StateMachine) InProgress() []models.Delivery {
	var out []models.Delivery
	for _, d := range s.snapshot() {
		if d.Status == types.StatusInProgress {
			out = append(out, d)
		}
	}
	return out
}

// Stats are delivery counters for the dashboard.
type Stats struct {
	Total          int
	Today          int
	Pending        int
	InProgress     int
	CompletedToday int
}

// Stats counts deliveries; "today" is the calendar day of now in its location.
func (s *StateMachine) Stats(now time.Time) Stats {
	y, m, d := now.Date()
	dayStart := time.Date(y, m, d, 0, 0, 0, 0, now.Location())

	var st Stats
	for _, dl := range s.snapshot() {
		st.Total++
		if !dl.CreatedAt.Before(dayStart) {
			st.Today++
		}
		switch dl.Status {
		case types.StatusPending:
			st.Pending++
		case types.StatusInProgress:
			st.InProgress++
		case types.StatusCompleted:
			if dl.EndTime != nil && !dl.EndTime.Before(dayStart) {
				st.CompletedToday++
			}
		}
	}
	return st
}
