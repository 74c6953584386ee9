package geo

import (
	"fmt"
	"math"
)

// EarthRadiusKm is the mean radius of Earth used for Haversine distance.
const EarthRadiusKm = 6371.0088

// Point is a WGS84 coordinate pair in degrees.
type Point struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// NewPoint validates latitude/longitude and returns a Point.
func NewPoint(lat, lon float64) (Point, error) {
	if !ValidateCoordinates(lat, lon) {
		return Point{}, fmt.Errorf("invalid coordinates (lat=%v, lon=%v)", lat, lon)
	}
	return Point{Lat: lat, Lon: lon}, nil
}

// ValidateCoordinates checks that latitude is in [-90,90] and longitude in [-180,180].
// NaN and infinities are rejected.
func ValidateCoordinates(lat, lon float64) bool {
	return lat >= -90 && lat <= 90 && lon >= -180 && lon <= 180
}

// Haversine returns the great-circle distance in kilometers between two points
// specified by latitude and longitude in degrees.
func Haversine(lat1, lon1, lat2, lon2 float64) float64 {
	lat1r := lat1 * math.Pi / 180
	lat2r := lat2 * math.Pi / 180
	dLat := (lat2 - lat1) * math.Pi / 180
	dLon := (lon2 - lon1) * math.Pi / 180

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1r)*math.Cos(lat2r)*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return EarthRadiusKm * c
}

// DistanceKm returns the great-circle distance to q in kilometers.
func (p Point) DistanceKm(q Point) float64 {
	return Haversine(p.Lat, p.Lon, q.Lat, q.Lon)
}

// bboxPadDeg absorbs float rounding so boundary points are never cut by the prefilter.
const bboxPadDeg = 1e-9

// BoundingBox is an axis-aligned lat/lon rectangle.
type BoundingBox struct {
	MinLat, MinLon float64
	MaxLat, MaxLon float64
}

// Contains reports whether p lies inside the box (edges inclusive).
func (b BoundingBox) Contains(p Point) bool {
	return p.Lat >= b.MinLat && p.Lat <= b.MaxLat && p.Lon >= b.MinLon && p.Lon <= b.MaxLon
}

// BoundingBox returns a rectangle that encloses every point within radiusKm of p.
// The longitude span widens with latitude; near the poles or across the
// antimeridian it covers the full longitude range.
func (p Point) BoundingBox(radiusKm float64) BoundingBox {
	deg := (radiusKm/EarthRadiusKm)*(180/math.Pi) + bboxPadDeg

	minLat := p.Lat - deg
	maxLat := p.Lat + deg
	if minLat <= -90 || maxLat >= 90 {
		return BoundingBox{
			MinLat: math.Max(minLat, -90), MinLon: -180,
			MaxLat: math.Min(maxLat, 90), MaxLon: 180,
		}
	}

	// widest parallel in the box is the one closest to a pole
	cosLat := math.Min(math.Cos(minLat*math.Pi/180), math.Cos(maxLat*math.Pi/180))
	lonDeg := deg / cosLat
	minLon := p.Lon - lonDeg
	maxLon := p.Lon + lonDeg
	if minLon < -180 || maxLon > 180 {
		minLon, maxLon = -180, 180
	}

	return BoundingBox{MinLat: minLat, MinLon: minLon, MaxLat: maxLat, MaxLon: maxLon}
}
