package models

// Coordinate is a WGS84 point in degrees.
type Coordinate struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type Waypoint struct {
	Coordinate
	Name string `json:"name,omitempty"`
}

type Destination struct {
	Coordinate
	Name     string `json:"name"`
	Category string `json:"type"`
}

// DangerZone is a circular geofence; any presence inside trips an emergency.
type DangerZone struct {
	Coordinate
	Radius      float64 `json:"radius"` // meters
	Description string  `json:"description"`
}

// Route is immutable reference data loaded at startup.
type Route struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	Description string       `json:"description,omitempty"`
	Waypoints   []Waypoint   `json:"waypoints"`
	Destination Destination  `json:"destination"`
	DangerZones []DangerZone `json:"danger_zones"`
	// SpeedLimit in km/h; zero means the site-wide limit applies.
	SpeedLimit   float64  `json:"speed_limit,omitempty"`
	VehicleTypes []string `json:"vehicle_types,omitempty"`
}

// Polyline returns waypoints followed by the destination.
func (r Route) Polyline() []Coordinate {
	out := make([]Coordinate, 0, len(r.Waypoints)+1)
	for _, w := range r.Waypoints {
		out = append(out, w.Coordinate)
	}
	return append(out, r.Destination.Coordinate)
}
