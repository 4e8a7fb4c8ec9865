package geofence

import (
	"math"

	"github.com/Temutjin2k/sitetrack/internal/domain/models"
)

// EarthRadius in meters.
const EarthRadius = 6371000.0

func rad(deg float64) float64 { return deg * math.Pi / 180 }

// Haversine returns the great-circle distance between a and b in meters.
func Haversine(a, b models.Coordinate) float64 {
	lat1, lat2 := rad(a.Latitude), rad(b.Latitude)
	dLat := lat2 - lat1
	dLng := rad(b.Longitude - a.Longitude)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	return 2 * EarthRadius * math.Asin(math.Min(1, math.Sqrt(h)))
}

// InCircle reports whether p lies within radius meters of center.
func InCircle(p, center models.Coordinate, radius float64) bool {
	return Haversine(p, center) <= radius
}

// project maps c onto a local plane centered at origin (equirectangular).
// Accurate to well under a meter over site-sized distances.
func project(origin, c models.Coordinate) (x, y float64) {
	x = rad(c.Longitude-origin.Longitude) * math.Cos(rad(origin.Latitude)) * EarthRadius
	y = rad(c.Latitude-origin.Latitude) * EarthRadius
	return x, y
}

// SegmentDistance returns the shortest distance in meters from p to the
// segment a-b.
func SegmentDistance(p, a, b models.Coordinate) float64 {
	ax, ay := project(p, a)
	bx, by := project(p, b)

	dx, dy := bx-ax, by-ay
	lenSq := dx*dx + dy*dy
	if lenSq == 0 {
		return math.Hypot(ax, ay)
	}

	// p is the origin, so the projection parameter is -a·d / |d|².
	t := -(ax*dx + ay*dy) / lenSq
	t = math.Max(0, math.Min(1, t))
	return math.Hypot(ax+t*dx, ay+t*dy)
}

// NearestSegment returns the minimum distance from p to the polyline
// pts[from:] and the index of the segment start that achieved it.
// A single remaining point is treated as a degenerate segment.
func NearestSegment(p models.Coordinate, pts []models.Coordinate, from int) (dist float64, idx int) {
	if from < 0 {
		from = 0
	}
	if from >= len(pts) {
		return math.Inf(1), from
	}
	if from == len(pts)-1 {
		return Haversine(p, pts[from]), from
	}

	dist, idx = math.Inf(1), from
	for i := from; i < len(pts)-1; i++ {
		if d := SegmentDistance(p, pts[i], pts[i+1]); d < dist {
			dist, idx = d, i
		}
	}
	return dist, idx
}

// PathSpeed derives the average speed in km/h over consecutive pings,
// oldest first. ok is false when fewer than two pings or the time span is
// below minSpan seconds.
func PathSpeed(pings []models.LocationPing, minSpan float64) (kmh float64, ok bool) {
	if len(pings) < 2 {
		return 0, false
	}
	span := pings[len(pings)-1].Timestamp.Sub(pings[0].Timestamp).Seconds()
	if span < minSpan || span <= 0 {
		return 0, false
	}

	var meters float64
	for i := 1; i < len(pings); i++ {
		meters += Haversine(pings[i-1].Coordinate(), pings[i].Coordinate())
	}
	return meters / span * 3.6, true
}
