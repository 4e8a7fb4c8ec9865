package geofence

import (
	"math"
	"testing"
	"time"

	"github.com/Temutjin2k/sitetrack/internal/domain/models"
)

func c(lat, lng float64) models.Coordinate {
	return models.Coordinate{Latitude: lat, Longitude: lng}
}

func near(got, want, tol float64) bool {
	return math.Abs(got-want) <= tol
}

func TestHaversine(t *testing.T) {
	tests := []struct {
		name string
		a, b models.Coordinate
		want float64
		tol  float64
	}{
		{"same point", c(48.8049, 2.1201), c(48.8049, 2.1201), 0, 1e-9},
		{"one degree of latitude", c(0, 0), c(1, 0), 111195, 1},
		{"paris to london", c(48.8566, 2.3522), c(51.5074, -0.1278), 343500, 2000},
		{"versailles waypoints", c(48.8049, 2.1201), c(48.8052, 2.1203), 36.5, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Haversine(tt.a, tt.b); !near(got, tt.want, tt.tol) {
				t.Errorf("Haversine = %.2f, want %.2f ± %.2f", got, tt.want, tt.tol)
			}
		})
	}
}

func TestInCircleBoundary(t *testing.T) {
	center := c(48.8049, 2.1201)
	if !InCircle(center, center, 50) {
		t.Error("center must be inside its own circle")
	}
	// ~111 m north
	if InCircle(c(48.8059, 2.1201), center, 50) {
		t.Error("point 111m away must be outside a 50m circle")
	}
	if !InCircle(c(48.8059, 2.1201), center, 120) {
		t.Error("point 111m away must be inside a 120m circle")
	}
}

func TestSegmentDistance(t *testing.T) {
	a, b := c(0, 0), c(0, 0.01)
	tests := []struct {
		name string
		p    models.Coordinate
		want float64
	}{
		{"perpendicular to the middle", c(0.001, 0.005), 111.2},
		{"on the segment", c(0, 0.003), 0},
		{"beyond the end clamps to b", c(0, 0.02), 1112},
		{"before the start clamps to a", c(0, -0.001), 111.2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SegmentDistance(tt.p, a, b); !near(got, tt.want, 1) {
				t.Errorf("SegmentDistance = %.2f, want %.2f", got, tt.want)
			}
		})
	}

	if got := SegmentDistance(c(0.001, 0), a, a); !near(got, 111.2, 1) {
		t.Errorf("degenerate segment: got %.2f", got)
	}
}

func TestNearestSegmentRespectsStart(t *testing.T) {
	pts := []models.Coordinate{c(48.80, 2.12), c(48.81, 2.12), c(48.82, 2.12), c(48.83, 2.12)}

	d, idx := NearestSegment(c(48.825, 2.12), pts, 0)
	if idx != 2 || !near(d, 0, 0.5) {
		t.Errorf("got idx=%d d=%.2f, want idx=2 d≈0", idx, d)
	}

	// behind the reached progress, only the remaining polyline counts
	d, idx = NearestSegment(c(48.801, 2.12), pts, 2)
	if idx != 2 || !near(d, 2113, 5) {
		t.Errorf("got idx=%d d=%.2f, want idx=2 d≈2113", idx, d)
	}

	d, idx = NearestSegment(c(48.83, 2.12), pts, 3)
	if idx != 3 || !near(d, 0, 0.01) {
		t.Errorf("last point: got idx=%d d=%.2f", idx, d)
	}
}

func TestPathSpeed(t *testing.T) {
	t0 := time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)
	ping := func(lat float64, after time.Duration) models.LocationPing {
		return models.LocationPing{Latitude: lat, Longitude: 2.12, Timestamp: t0.Add(after)}
	}

	kmh, ok := PathSpeed([]models.LocationPing{ping(48.800, 0), ping(48.801, 10*time.Second)}, 1)
	if !ok || !near(kmh, 40.03, 0.1) {
		t.Errorf("got %.2f km/h ok=%v, want 40.03", kmh, ok)
	}

	if _, ok := PathSpeed([]models.LocationPing{ping(48.8, 0)}, 1); ok {
		t.Error("a single ping has no derived speed")
	}
	if _, ok := PathSpeed([]models.LocationPing{ping(48.8, 0), ping(48.801, 500*time.Millisecond)}, 1); ok {
		t.Error("span below minimum must not produce a speed")
	}
}
