package geonorm

import (
	"context"

	"github.com/Violetta147/Restaurant-Directory-sub001/internal/domain/geo"
)

// Geocoder resolves free-text addresses to coordinates.
// It returns domain.ErrAddressNotFound when nothing matches and
// domain.ErrGeocodingUnavailable on timeouts or transport failures.
type Geocoder interface {
	GeocodeAddress(ctx context.Context, text string) (geo.Point, error)
}
