package geo

import "math"

const (
	// EarthRadiusKm is Earth's mean radius in kilometers for Haversine calculation.
	EarthRadiusKm = 6371.0
	// DefaultRadiusKm is the search radius applied when an order does not declare one.
	DefaultRadiusKm = 5.0

	degToRad = math.Pi / 180
	// boxSlackDeg absorbs rounding so points exactly on the circle stay inside the box.
	boxSlackDeg = 1e-9
)

// Coordinate is a point in decimal degrees.
type Coordinate struct {
	Lat float64 `json:"latitude"`
	Lng float64 `json:"longitude"`
}

// Valid reports whether c lies inside the latitude/longitude ranges.
func (c Coordinate) Valid() bool {
	if math.IsNaN(c.Lat) || math.IsNaN(c.Lng) || math.IsInf(c.Lat, 0) || math.IsInf(c.Lng, 0) {
		return false
	}
	return c.Lat >= -90 && c.Lat <= 90 && c.Lng >= -180 && c.Lng <= 180
}

// HaversineKm calculates the great-circle distance between two points
// on Earth in kilometers using the Haversine formula.
func HaversineKm(a, b Coordinate) float64 {
	dLat := (b.Lat - a.Lat) * degToRad
	dLng := (b.Lng - a.Lng) * degToRad
	h := math.Sin(dLat/2)*math.Sin(dLat/2) + math.Cos(a.Lat*degToRad)*math.Cos(b.Lat*degToRad)*math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
	return EarthRadiusKm * c
}

// IsWithinRadiusKm checks if two coordinates are within the specified radius (in km).
func IsWithinRadiusKm(a, b Coordinate, radiusKm float64) bool {
	return HaversineKm(a, b) <= radiusKm
}

// Box is a latitude/longitude rectangle.
type Box struct {
	MinLat, MaxLat float64
	MinLng, MaxLng float64
}

// BoundingBox returns a rectangle that contains every point within radiusKm of center.
// It is only a pre-filter: callers still apply HaversineKm to the survivors.
// Near the poles or across the antimeridian the longitude span widens to the full range.
func BoundingBox(center Coordinate, radiusKm float64) Box {
	angular := radiusKm / EarthRadiusKm
	dLat := angular/degToRad + boxSlackDeg
	b := Box{
		MinLat: math.Max(center.Lat-dLat, -90),
		MaxLat: math.Min(center.Lat+dLat, 90),
		MinLng: -180,
		MaxLng: 180,
	}
	if b.MinLat <= -90 || b.MaxLat >= 90 {
		return b
	}
	// Widest longitude offset on the great circle, reached at lat asin(sin φ / cos δ).
	cosLat := math.Cos(center.Lat * degToRad)
	if cosLat <= 0 {
		return b
	}
	s := math.Sin(angular) / cosLat
	if s >= 1 {
		return b
	}
	dLng := math.Asin(s)/degToRad + boxSlackDeg
	if center.Lng-dLng < -180 || center.Lng+dLng > 180 {
		return b
	}
	b.MinLng = center.Lng - dLng
	b.MaxLng = center.Lng + dLng
	return b
}

// Contains reports whether c falls inside the box (inclusive).
func (b Box) Contains(c Coordinate) bool {
	return c.Lat >= b.MinLat && c.Lat <= b.MaxLat && c.Lng >= b.MinLng && c.Lng <= b.MaxLng
}
