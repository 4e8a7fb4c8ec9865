package route

import (
	"context"
	"errors"
	"testing"

	"github.com/Temutjin2k/sitetrack/internal/domain/models"
	"github.com/Temutjin2k/sitetrack/internal/domain/types"
	"github.com/Temutjin2k/sitetrack/pkg/logger"
)

type repoStub struct {
	routes []models.Route
	err    error
}

func (r repoStub) List(context.Context) ([]models.Route, error) { return r.routes, r.err }

func TestGet(t *testing.T) {
	c, err := Load(context.Background(), nil, logger.Discard())
	if err != nil {
		t.Fatal(err)
	}

	r, err := c.Get("route-grand-trianon")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if len(r.Waypoints) != 3 || r.Destination.Name != "Grand Trianon" || len(r.DangerZones) != 1 {
		t.Errorf("unexpected route %+v", r)
	}

	if _, err := c.Get("route-unknown"); !errors.Is(err, types.ErrRouteNotFound) {
		t.Errorf("expected ErrRouteNotFound, got %v", err)
	}
}

func TestReturnedRoutesAreCopies(t *testing.T) {
	c, err := Load(context.Background(), nil, logger.Discard())
	if err != nil {
		t.Fatal(err)
	}

	r, _ := c.Get("route-grand-trianon")
	r.Waypoints[0].Latitude = 0
	r.DangerZones[0].Radius = -1
	r.Waypoints = append(r.Waypoints, models.Waypoint{})

	for _, l := range c.List() {
		if l.ID != "route-grand-trianon" {
			continue
		}
		l.DangerZones[0].Description = "changed"
	}

	fresh, _ := c.Get("route-grand-trianon")
	if len(fresh.Waypoints) != 3 || fresh.Waypoints[0].Latitude == 0 {
		t.Errorf("waypoints changed through a returned route: %+v", fresh.Waypoints)
	}
	if fresh.DangerZones[0].Radius <= 0 || fresh.DangerZones[0].Description == "changed" {
		t.Errorf("danger zones changed through a returned route: %+v", fresh.DangerZones)
	}
}

func TestLoadMergesRepository(t *testing.T) {
	stored := []models.Route{
		{ID: "route-quarry", Name: "Quarry"},
		{ID: "route-chateau", Name: "Château (updated)"},
	}
	c, err := Load(context.Background(), repoStub{routes: stored}, logger.Discard())
	if err != nil {
		t.Fatal(err)
	}

	if _, err := c.Get("route-quarry"); err != nil {
		t.Error("stored route missing")
	}
	if r, _ := c.Get("route-chateau"); r.Name != "Château (updated)" {
		t.Errorf("stored route must override demo route, got %q", r.Name)
	}
	if got, want := len(c.List()), len(DemoRoutes())+1; got != want {
		t.Errorf("List returned %d routes, want %d", got, want)
	}
}

func TestLoadErrors(t *testing.T) {
	if _, err := Load(context.Background(), repoStub{err: errors.New("db down")}, logger.Discard()); err == nil {
		t.Error("expected repository error")
	}

	bad := []models.Route{{ID: "route-bad", DangerZones: []models.DangerZone{{Radius: 0}}}}
	if _, err := Load(context.Background(), repoStub{routes: bad}, logger.Discard()); err == nil {
		t.Error("expected validation error for zero radius")
	}
}

func TestConcurrentReaders(t *testing.T) {
	c := NewCatalog(DemoRoutes())
	done := make(chan struct{})
	for i := 0; i < 8; i++ {
		go func() {
			defer func() { done <- struct{}{} }()
			for j := 0; j < 1000; j++ {
				if _, err := c.Get("route-chateau"); err != nil {
					t.Error(err)
					return
				}
			}
		}()
	}
	for i := 0; i < 8; i++ {
		<-done
	}
}
