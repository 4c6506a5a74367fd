package domain

import "math"

const earthRadiusKm = 6371.0088

// MaxLat is the latitude limit of the Web Mercator projection, which the
// Redis GEO commands share. Points beyond it cannot be indexed.
const MaxLat = 85.05112878

// Point is a WGS84 coordinate.
type Point struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Valid reports whether the point lies inside coordinate bounds and is not the
// zero value, which upstream systems use for "unknown".
func (p Point) Valid() bool {
	return p.InBounds() && !(p.Lat == 0 && p.Lng == 0)
}

// InBounds is Valid without the null island check. Courier pings use it.
func (p Point) InBounds() bool {
	return !math.IsNaN(p.Lat) && !math.IsNaN(p.Lng) &&
		p.Lat >= -MaxLat && p.Lat <= MaxLat && p.Lng >= -180 && p.Lng <= 180
}

// HaversineKm returns the great-circle distance between a and b.
func HaversineKm(a, b Point) float64 {
	lat1 := a.Lat * math.Pi / 180
	lat2 := b.Lat * math.Pi / 180
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLng := (b.Lng - a.Lng) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	return 2 * earthRadiusKm * math.Asin(math.Min(1, math.Sqrt(h)))
}
