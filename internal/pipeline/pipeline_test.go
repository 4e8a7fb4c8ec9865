package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/Temutjin2k/sitetrack/internal/domain/models"
	"github.com/Temutjin2k/sitetrack/internal/domain/types"
	"github.com/Temutjin2k/sitetrack/pkg/logger"
	"github.com/Temutjin2k/sitetrack/pkg/metrics"
	"github.com/Temutjin2k/sitetrack/pkg/retry"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

type recorder struct {
	mu         sync.Mutex
	history    []models.HistoryPoint
	positions  []models.LivePosition
	alerts     []models.Alert
	published  []models.AlertEvent
	deliveries []models.DeliveryStatusEvent
	feed       []FeedMessage
	failures   int
}

func (r *recorder) InsertHistory(_ context.Context, points []models.HistoryPoint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failures > 0 {
		r.failures--
		return errors.New("db unavailable")
	}
	r.history = append(r.history, points...)
	return nil
}

func (r *recorder) SavePositions(_ context.Context, positions []models.LivePosition) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.positions = append(r.positions, positions...)
	return nil
}

func (r *recorder) UpsertAlert(_ context.Context, a models.Alert) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.alerts = append(r.alerts, a)
	return nil
}

func (r *recorder) PublishAlert(_ context.Context, ev models.AlertEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.published = append(r.published, ev)
	return nil
}

func (r *recorder) PublishDeliveryStatus(_ context.Context, ev models.DeliveryStatusEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.deliveries = append(r.deliveries, ev)
	return nil
}

func (r *recorder) Broadcast(_ context.Context, msg any) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.feed = append(r.feed, msg.(FeedMessage))
	return 1
}

func testConfig() Config {
	return Config{
		BufferSize:    16,
		BatchSize:     2,
		FlushInterval: time.Hour,
		Retry:         retry.Config{Attempts: 3, Initial: time.Millisecond, Max: time.Millisecond},
	}
}

func position(driver string, sec int) models.LivePosition {
	return models.LivePosition{
		LocationPing: models.LocationPing{
			DriverID:  driver,
			Latitude:  48.8,
			Longitude: 2.1,
			Timestamp: time.Unix(int64(sec), 0),
		},
		DerivedSpeed: 20,
	}
}

// runToCompletion runs the pipeline with an already cancelled context, so it
// only drains what is buffered.
func runToCompletion(t *testing.T, p *Pipeline) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	done := make(chan error, 1)
	go func() { done <- p.Run(ctx) }()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return")
	}
}

func TestPipelineFansOutToEverySink(t *testing.T) {
	rec := &recorder{}
	p := New(testConfig(), Sinks{
		History:            rec,
		State:              rec,
		Alerts:             rec,
		AlertPublishers:    []AlertPublisher{rec},
		DeliveryPublishers: []DeliveryPublisher{rec},
		Feed:               rec,
		Project:            func(pos models.LivePosition) any { return "projected:" + pos.DriverID },
	}, logger.Discard())

	ctx := context.Background()
	for i := 1; i <= 3; i++ {
		p.LocationAccepted(ctx, position("D1", i))
	}
	emergency := models.Alert{ID: "a1", Type: types.AlertEmergency, DriverID: "D1"}
	p.AlertEvent(ctx, models.AlertEvent{Kind: models.AlertCreated, Alert: emergency})
	p.AlertEvent(ctx, models.AlertEvent{Kind: models.AlertRefreshed, Alert: emergency})
	emergency.IsResolved = true
	p.AlertEvent(ctx, models.AlertEvent{Kind: models.AlertResolved, Alert: emergency})
	p.DeliveryStatus(ctx, models.DeliveryStatusEvent{DeliveryID: "d1", From: types.StatusPending, To: types.StatusInProgress})

	runToCompletion(t, p)

	if len(rec.history) != 3 || len(rec.positions) != 3 {
		t.Errorf("history=%d positions=%d, want 3 each", len(rec.history), len(rec.positions))
	}
	if rec.history[0].Speed != 20 {
		t.Errorf("history speed = %v, want derived speed", rec.history[0].Speed)
	}
	if len(rec.alerts) != 1 || !rec.alerts[0].IsResolved {
		t.Errorf("alerts=%+v, want one resolved upsert", rec.alerts)
	}
	if len(rec.published) != 3 {
		t.Errorf("published=%d, want 3", len(rec.published))
	}
	if len(rec.deliveries) != 1 {
		t.Errorf("deliveries=%d, want 1", len(rec.deliveries))
	}

	kinds := map[types.FeedEvent]int{}
	for _, m := range rec.feed {
		kinds[m.Type]++
		if m.Type == types.FeedLocationUpdate && m.Data != "projected:D1" {
			t.Errorf("location update not projected: %v", m.Data)
		}
	}
	want := map[types.FeedEvent]int{
		types.FeedLocationUpdate: 3,
		types.FeedEmergency:      1,
		types.FeedAlertResolved:  1,
		types.FeedDeliveryStatus: 1,
	}
	for k, n := range want {
		if kinds[k] != n {
			t.Errorf("feed %s: got %d, want %d", k, kinds[k], n)
		}
	}
	if kinds[types.FeedAlert] != 0 {
		t.Errorf("refresh must not reach the feed")
	}
}

func TestPipelineDropsHistoryWhenFull(t *testing.T) {
	cfg := testConfig()
	cfg.BufferSize = 1
	rec := &recorder{}
	p := New(cfg, Sinks{History: rec, Alerts: rec}, logger.Discard())

	counter := metrics.PipelineDroppedTotal.WithLabelValues("history")
	before := testutil.ToFloat64(counter)

	done := make(chan struct{})
	go func() {
		for i := 0; i < 3; i++ {
			p.LocationAccepted(context.Background(), position("D1", i))
		}
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("LocationAccepted blocked on a full channel")
	}

	if got := testutil.ToFloat64(counter) - before; got != 2 {
		t.Errorf("dropped %v events, want 2", got)
	}

	for i := range 3 {
		p.AlertEvent(context.Background(), models.AlertEvent{
			Kind:  models.AlertCreated,
			Alert: models.Alert{ID: fmt.Sprintf("a%d", i)},
		})
	}
	if n := p.alertStore.size(); n != 3 {
		t.Errorf("queued alerts = %d, want 3 past a full buffer", n)
	}
}

// gatedStore blocks every upsert until open is closed.
type gatedStore struct {
	open chan struct{}

	mu    sync.Mutex
	final map[string]models.Alert
	calls int
}

func (s *gatedStore) UpsertAlert(ctx context.Context, a models.Alert) error {
	select {
	case <-s.open:
	case <-ctx.Done():
		return ctx.Err()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.final[a.ID] = a
	s.calls++
	return nil
}

func TestAlertStoreKeepsFinalStateUnderBurst(t *testing.T) {
	cfg := testConfig()
	cfg.BufferSize = 2
	cfg.WriteTimeout = 5 * time.Second
	store := &gatedStore{open: make(chan struct{}), final: map[string]models.Alert{}}
	p := New(cfg, Sinks{Alerts: store}, logger.Discard())

	counter := metrics.PipelineDroppedTotal.WithLabelValues("alerts")
	before := testutil.ToFloat64(counter)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- p.Run(ctx) }()

	const n = 50
	for i := range n {
		a := models.Alert{ID: fmt.Sprintf("a%d", i), DriverID: "D1"}
		p.AlertEvent(ctx, models.AlertEvent{Kind: models.AlertCreated, Alert: a})
		a.Refreshes = 1
		p.AlertEvent(ctx, models.AlertEvent{Kind: models.AlertRefreshed, Alert: a})
		a.IsResolved = true
		p.AlertEvent(ctx, models.AlertEvent{Kind: models.AlertResolved, Alert: a})
	}
	close(store.open)
	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return")
	}

	store.mu.Lock()
	defer store.mu.Unlock()
	if len(store.final) != n {
		t.Fatalf("stored %d alerts, want %d", len(store.final), n)
	}
	for id, a := range store.final {
		if !a.IsResolved {
			t.Errorf("alert %s stored unresolved", id)
		}
	}
	if got := testutil.ToFloat64(counter) - before; got != 0 {
		t.Errorf("dropped %v alert writes, want 0", got)
	}
}

func TestAlertQueueKeepsResolvedState(t *testing.T) {
	q := newAlertQueue()
	q.put(models.Alert{ID: "a1"})
	q.put(models.Alert{ID: "a2"})
	q.put(models.Alert{ID: "a1", IsResolved: true})
	q.put(models.Alert{ID: "a1", Refreshes: 3})

	got := q.take()
	if len(got) != 2 || got[0].ID != "a1" || got[1].ID != "a2" {
		t.Fatalf("take = %+v, want a1 then a2", got)
	}
	if !got[0].IsResolved {
		t.Errorf("a1 reopened by a later refresh")
	}
	if q.size() != 0 {
		t.Errorf("queue not emptied by take")
	}
}

// flakyStore fails the first failures upserts.
type flakyStore struct {
	mu       sync.Mutex
	failures int
	stored   []models.Alert
}

func (s *flakyStore) UpsertAlert(_ context.Context, a models.Alert) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failures > 0 {
		s.failures--
		return errors.New("db unavailable")
	}
	s.stored = append(s.stored, a)
	return nil
}

func TestAlertWriteRequeuedAfterRetriesExhausted(t *testing.T) {
	cfg := testConfig()
	store := &flakyStore{failures: cfg.Retry.Attempts}
	p := New(cfg, Sinks{Alerts: store}, logger.Discard())
	w := &alertStoreWriter{queue: p.alertStore, store: store, cfg: p.cfg, log: logger.Discard()}

	p.AlertEvent(context.Background(), models.AlertEvent{Kind: models.AlertCreated, Alert: models.Alert{ID: "a1"}})

	w.flush(context.Background(), true)
	if n := p.alertStore.size(); n != 1 {
		t.Fatalf("queued after failure = %d, want 1", n)
	}
	w.flush(context.Background(), true)
	if len(store.stored) != 1 || p.alertStore.size() != 0 {
		t.Errorf("stored=%d queued=%d, want 1 and 0", len(store.stored), p.alertStore.size())
	}
}

func TestBatchWriterRetries(t *testing.T) {
	rec := &recorder{failures: 2}
	p := New(testConfig(), Sinks{History: rec}, logger.Discard())

	p.LocationAccepted(context.Background(), position("D1", 1))
	runToCompletion(t, p)

	if len(rec.history) != 1 {
		t.Fatalf("history=%d, want 1 after retries", len(rec.history))
	}
}

func TestUnconfiguredSinksAreSkipped(t *testing.T) {
	p := New(testConfig(), Sinks{}, logger.Discard())
	ctx := context.Background()

	p.LocationAccepted(ctx, position("D1", 1))
	p.AlertEvent(ctx, models.AlertEvent{Kind: models.AlertCreated})
	p.DeliveryStatus(ctx, models.DeliveryStatusEvent{})

	runToCompletion(t, p)
}
