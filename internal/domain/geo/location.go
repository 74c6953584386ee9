package geo

// NormalizedLocation is the canonical resolved search origin.
type NormalizedLocation struct {
	Address   string
	Point     Point
	RadiusKm  float64
	Defaulted bool // true when the configured city center was used
}

// Latitude returns the origin latitude.
func (l NormalizedLocation) Latitude() float64 { return l.Point.Lat }

// Longitude returns the origin longitude.
func (l NormalizedLocation) Longitude() float64 { return l.Point.Lon }
