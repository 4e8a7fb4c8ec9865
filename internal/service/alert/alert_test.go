package alert

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/Temutjin2k/sitetrack/internal/domain/models"
	"github.com/Temutjin2k/sitetrack/internal/domain/types"
	"github.com/Temutjin2k/sitetrack/pkg/logger"
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

type recordingSink struct {
	mu     sync.Mutex
	events []models.AlertEvent
}

func (s *recordingSink) AlertEvent(_ context.Context, ev models.AlertEvent) {
	s.mu.Lock()
	s.events = append(s.events, ev)
	s.mu.Unlock()
}

func (s *recordingSink) kinds() []models.AlertEventKind {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.AlertEventKind, 0, len(s.events))
	for _, ev := range s.events {
		out = append(out, ev.Kind)
	}
	return out
}

func newTestManager(cooldown time.Duration) (*Manager, *fakeClock, *recordingSink) {
	clock := &fakeClock{t: time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)}
	sink := &recordingSink{}
	m := NewManager(Config{Cooldown: cooldown}, logger.Discard(), WithClock(clock.Now), WithSink(sink))
	return m, clock, sink
}

func speedInput(driver, msg string) RaiseInput {
	return RaiseInput{DriverID: driver, Type: types.AlertSpeed, Severity: types.SeverityMedium, Message: msg}
}

var admin = models.Actor{ID: "admin-1", Role: types.AdminRole}

func TestRaiseWithinCooldownRefreshes(t *testing.T) {
	m, clock, sink := newTestManager(5 * time.Minute)
	ctx := context.Background()

	first, created := m.Raise(ctx, speedInput("D", "35 km/h"))
	if !created {
		t.Fatal("first raise must create")
	}

	clock.Advance(time.Minute)
	second, created := m.Raise(ctx, speedInput("D", "40 km/h"))
	if created {
		t.Fatal("raise within cooldown must refresh, not create")
	}
	if second.ID != first.ID {
		t.Fatalf("refresh returned a different id: %s vs %s", second.ID, first.ID)
	}
	if second.Message != "40 km/h" || !second.UpdatedAt.Equal(clock.Now()) {
		t.Errorf("refresh did not update message/timestamp: %+v", second)
	}
	if !second.CreatedAt.Equal(first.CreatedAt) {
		t.Error("refresh must keep the creation time")
	}

	open := m.ListUnresolved(models.AlertFilter{DriverID: "D"})
	if len(open) != 1 {
		t.Fatalf("expected one open alert, got %d", len(open))
	}

	want := []models.AlertEventKind{models.AlertCreated, models.AlertRefreshed}
	if got := sink.kinds(); len(got) != 2 || got[0] != want[0] || got[1] != want[1] {
		t.Errorf("events = %v, want %v", got, want)
	}
}

func TestRaiseAfterCooldownCreatesNew(t *testing.T) {
	m, clock, _ := newTestManager(5 * time.Minute)
	ctx := context.Background()

	first, _ := m.Raise(ctx, speedInput("D", "first"))
	clock.Advance(5*time.Minute + time.Second)

	second, created := m.Raise(ctx, speedInput("D", "second"))
	if !created || second.ID == first.ID {
		t.Fatal("raise after cooldown must create a new alert")
	}

	open := m.ListUnresolved(models.AlertFilter{})
	if len(open) != 1 || open[0].ID != second.ID {
		t.Fatalf("exactly the new alert must stay open, got %+v", open)
	}

	old, err := m.Get(first.ID)
	if err != nil {
		t.Fatal(err)
	}
	if !old.IsResolved || old.ResolvedBy != types.ResolvedBySuperseded {
		t.Errorf("old alert must be superseded: %+v", old)
	}
}

func TestCooldownMeasuredFromLastRefresh(t *testing.T) {
	m, clock, _ := newTestManager(5 * time.Minute)
	ctx := context.Background()

	first, _ := m.Raise(ctx, speedInput("D", "a"))
	for i := 0; i < 3; i++ {
		clock.Advance(4 * time.Minute)
		a, created := m.Raise(ctx, speedInput("D", "again"))
		if created || a.ID != first.ID {
			t.Fatalf("refresh %d created a new alert", i)
		}
	}
}

func TestRaiseAfterResolveCreatesNew(t *testing.T) {
	m, _, _ := newTestManager(5 * time.Minute)
	ctx := context.Background()

	first, _ := m.Raise(ctx, speedInput("D", "a"))
	if _, err := m.Resolve(ctx, first.ID, admin); err != nil {
		t.Fatal(err)
	}

	second, created := m.Raise(ctx, speedInput("D", "b"))
	if !created || second.ID == first.ID {
		t.Fatal("raise after resolution must create a new alert")
	}
}

func TestResolveTwiceKeepsTimestamp(t *testing.T) {
	m, clock, _ := newTestManager(5 * time.Minute)
	ctx := context.Background()

	a, _ := m.Raise(ctx, speedInput("D", "a"))
	resolved, err := m.Resolve(ctx, a.ID, admin)
	if err != nil {
		t.Fatal(err)
	}
	at := *resolved.ResolvedAt

	clock.Advance(time.Hour)
	again, err := m.Resolve(ctx, a.ID, models.Actor{ID: "admin-2", Role: types.AdminRole})
	if !errors.Is(err, types.ErrAlertAlreadyResolved) {
		t.Fatalf("expected ErrAlertAlreadyResolved, got %v", err)
	}
	if !again.ResolvedAt.Equal(at) || again.ResolvedBy != "admin-1" {
		t.Errorf("second resolve changed the alert: %+v", again)
	}

	stored, _ := m.Get(a.ID)
	if !stored.ResolvedAt.Equal(at) {
		t.Errorf("resolved timestamp changed from %v to %v", at, stored.ResolvedAt)
	}
}

func TestResolveUnknown(t *testing.T) {
	m, _, _ := newTestManager(time.Minute)
	if _, err := m.Resolve(context.Background(), "missing", admin); !errors.Is(err, types.ErrAlertNotFound) {
		t.Fatalf("expected ErrAlertNotFound, got %v", err)
	}
}

func TestKeysAreIndependent(t *testing.T) {
	m, _, _ := newTestManager(5 * time.Minute)
	ctx := context.Background()

	m.Raise(ctx, speedInput("D", "a"))
	m.Raise(ctx, speedInput("E", "a"))
	m.Raise(ctx, RaiseInput{DriverID: "D", Type: types.AlertDeviation, Severity: types.SeverityHigh})

	if got := len(m.ListUnresolved(models.AlertFilter{})); got != 3 {
		t.Fatalf("expected 3 open alerts, got %d", got)
	}
	if got := len(m.ListUnresolved(models.AlertFilter{DriverID: "D"})); got != 2 {
		t.Errorf("expected 2 open alerts for D, got %d", got)
	}
	if got := len(m.ListUnresolved(models.AlertFilter{Type: types.AlertSpeed})); got != 2 {
		t.Errorf("expected 2 open speed alerts, got %d", got)
	}
}

func TestResolveOpenOnlyTouchesThatType(t *testing.T) {
	m, _, _ := newTestManager(5 * time.Minute)
	ctx := context.Background()

	m.Raise(ctx, RaiseInput{DriverID: "D", Type: types.AlertStopped, Severity: types.SeverityMedium})
	dev, _ := m.Raise(ctx, RaiseInput{DriverID: "D", Type: types.AlertDeviation, Severity: types.SeverityHigh})

	if _, ok := m.ResolveOpen(ctx, "D", types.AlertStopped, types.ResolvedByFreshPing); !ok {
		t.Fatal("expected the stopped alert to be cleared")
	}
	if _, ok := m.ResolveOpen(ctx, "D", types.AlertStopped, types.ResolvedByFreshPing); ok {
		t.Error("nothing left to clear")
	}
	if m.HasOpen("D", types.AlertStopped) || !m.HasOpen("D", types.AlertDeviation) {
		t.Error("only the stopped alert should be closed")
	}
	if got, _ := m.Get(dev.ID); got.IsResolved {
		t.Error("deviation alert must stay open")
	}
}

func TestListOrderingAndCounts(t *testing.T) {
	m, clock, _ := newTestManager(5 * time.Minute)
	ctx := context.Background()

	m.Raise(ctx, RaiseInput{DriverID: "A", Type: types.AlertSpeed, Severity: types.SeverityMedium})
	clock.Advance(time.Second)
	m.Raise(ctx, RaiseInput{DriverID: "B", Type: types.AlertEmergency, Severity: types.SeverityCritical})
	clock.Advance(time.Second)
	m.Raise(ctx, RaiseInput{DriverID: "C", Type: types.AlertSpeed, Severity: types.SeverityMedium})
	clock.Advance(time.Second)
	m.Raise(ctx, RaiseInput{DriverID: "D", Type: types.AlertDeviation, Severity: types.SeverityHigh})

	list := m.ListUnresolved(models.AlertFilter{})
	order := []string{"B", "D", "C", "A"}
	for i, a := range list {
		if a.DriverID != order[i] {
			t.Fatalf("position %d: got %s, want %s", i, a.DriverID, order[i])
		}
	}

	unresolved, critical := m.Counts()
	if unresolved != 4 || critical != 1 {
		t.Errorf("counts = %d/%d, want 4/1", unresolved, critical)
	}

	resolved := true
	if got := len(m.List(models.AlertFilter{Resolved: &resolved})); got != 0 {
		t.Errorf("expected no resolved alerts, got %d", got)
	}
}

func TestConcurrentRaiseSingleAlert(t *testing.T) {
	m, _, _ := newTestManager(5 * time.Minute)
	ctx := context.Background()

	const n = 50
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		created int
	)
	start := make(chan struct{})
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			if _, ok := m.Raise(ctx, speedInput("D", "race")); ok {
				mu.Lock()
				created++
				mu.Unlock()
			}
		}()
	}
	close(start)
	wg.Wait()

	if created != 1 {
		t.Errorf("expected exactly one creation, got %d", created)
	}
	if got := len(m.ListUnresolved(models.AlertFilter{DriverID: "D", Type: types.AlertSpeed})); got != 1 {
		t.Errorf("expected one open speed alert, got %d", got)
	}
}

func TestRestoreSkipsDuplicateOpen(t *testing.T) {
	m, _, _ := newTestManager(5 * time.Minute)
	now := time.Now()
	n := m.Restore([]models.Alert{
		{ID: "1", DriverID: "D", Type: types.AlertSpeed, Severity: types.SeverityMedium, UpdatedAt: now},
		{ID: "2", DriverID: "D", Type: types.AlertSpeed, Severity: types.SeverityMedium, UpdatedAt: now},
		{ID: "3", DriverID: "D", Type: types.AlertSpeed, IsResolved: true},
	})
	if n != 2 {
		t.Fatalf("restored %d, want 2", n)
	}
	if !m.HasOpen("D", types.AlertSpeed) {
		t.Error("restored open alert missing from the index")
	}
}
