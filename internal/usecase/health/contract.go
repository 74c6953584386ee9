package health

import "context"

// StorePinger checks restaurant store availability.
type StorePinger interface {
	Ping(ctx context.Context) error
}

// GeocoderChecker checks geocoding provider availability.
type GeocoderChecker interface {
	HealthCheck(ctx context.Context) error
}
