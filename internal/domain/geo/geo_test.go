package geo

import (
	"math"
	"testing"
)

func almost(a, b, eps float64) bool {
	if a > b {
		return a-b < eps
	}
	return b-a < eps
}

func TestHaversine_SamePoint(t *testing.T) {
	d := Haversine(16.047, 108.206, 16.047, 108.206)
	if d != 0 {
		t.Fatalf("want 0, got %f", d)
	}
}

func TestHaversine_NewYork_London(t *testing.T) {
	d := Haversine(40.7128, -74.0060, 51.5074, -0.1278)
	// ~5570 km
	if !almost(d, 5570, 15) {
		t.Fatalf("want ~5570 km, got %f", d)
	}
}

func TestHaversine_OneDegreeLatitude(t *testing.T) {
	d := Haversine(0, 0, 1, 0)
	if !almost(d, 111.195, 0.01) {
		t.Fatalf("want ~111.195 km, got %f", d)
	}
}

func TestHaversine_Symmetric(t *testing.T) {
	a := Haversine(16.047, 108.206, 16.07, 108.22)
	b := Haversine(16.07, 108.22, 16.047, 108.206)
	if a != b {
		t.Fatalf("distance not symmetric: %f vs %f", a, b)
	}
}

func TestPoint_DistanceKm(t *testing.T) {
	p := Point{Lat: 16.047, Lon: 108.206}
	q := Point{Lat: 16.047, Lon: 108.236}
	// 0.03 deg of longitude at 16 deg latitude is ~3.2 km
	if d := p.DistanceKm(q); !almost(d, 3.207, 0.01) {
		t.Fatalf("want ~3.207 km, got %f", d)
	}
}

func TestValidateCoordinates(t *testing.T) {
	tests := []struct {
		name     string
		lat, lon float64
		want     bool
	}{
		{"origin", 0, 0, true},
		{"corners", 90, 180, true},
		{"negative corners", -90, -180, true},
		{"lat too high", 90.0001, 0, false},
		{"lon too low", 0, -180.5, false},
		{"nan lat", math.NaN(), 0, false},
		{"inf lon", 0, math.Inf(1), false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := ValidateCoordinates(tc.lat, tc.lon); got != tc.want {
				t.Fatalf("ValidateCoordinates(%v, %v) = %v, want %v", tc.lat, tc.lon, got, tc.want)
			}
		})
	}
}

func TestNewPoint_Invalid(t *testing.T) {
	if _, err := NewPoint(91, 0); err == nil {
		t.Fatal("expected error for lat=91")
	}
	p, err := NewPoint(16.047, 108.206)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Lat != 16.047 || p.Lon != 108.206 {
		t.Fatalf("unexpected point %+v", p)
	}
}

func TestBoundingBox_ContainsCircle(t *testing.T) {
	centers := []Point{
		{Lat: 16.047, Lon: 108.206},
		{Lat: 59.9, Lon: 10.75},
		{Lat: -33.86, Lon: 151.2},
	}
	for _, c := range centers {
		box := c.BoundingBox(10)
		// sample the 10 km circle every 10 degrees of bearing
		for bearing := 0.0; bearing < 360; bearing += 10 {
			p := destination(c, bearing, 9.999)
			if !box.Contains(p) {
				t.Fatalf("box around %+v misses %+v at bearing %v", c, p, bearing)
			}
		}
	}
}

func TestBoundingBox_WidensWithLatitude(t *testing.T) {
	equator := Point{Lat: 0, Lon: 0}.BoundingBox(10)
	north := Point{Lat: 60, Lon: 0}.BoundingBox(10)
	if (north.MaxLon - north.MinLon) <= (equator.MaxLon - equator.MinLon) {
		t.Fatalf("expected wider longitude span at 60N: %+v vs %+v", north, equator)
	}
}

func TestBoundingBox_PoleAndAntimeridian(t *testing.T) {
	pole := Point{Lat: 89.99, Lon: 0}.BoundingBox(50)
	if pole.MinLon != -180 || pole.MaxLon != 180 {
		t.Fatalf("expected full longitude range near pole, got %+v", pole)
	}
	am := Point{Lat: 0, Lon: 179.99}.BoundingBox(50)
	if am.MinLon != -180 || am.MaxLon != 180 {
		t.Fatalf("expected full longitude range across antimeridian, got %+v", am)
	}
}

// destination returns the point reached from p after distKm along bearing (degrees).
func destination(p Point, bearingDeg, distKm float64) Point {
	lat1 := p.Lat * math.Pi / 180
	lon1 := p.Lon * math.Pi / 180
	brng := bearingDeg * math.Pi / 180
	d := distKm / EarthRadiusKm

	lat2 := math.Asin(math.Sin(lat1)*math.Cos(d) + math.Cos(lat1)*math.Sin(d)*math.Cos(brng))
	lon2 := lon1 + math.Atan2(math.Sin(brng)*math.Sin(d)*math.Cos(lat1), math.Cos(d)-math.Sin(lat1)*math.Sin(lat2))
	return Point{Lat: lat2 * 180 / math.Pi, Lon: lon2 * 180 / math.Pi}
}
