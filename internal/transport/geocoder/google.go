package geocoder

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/Violetta147/Restaurant-Directory-sub001/internal/domain"
	"github.com/Violetta147/Restaurant-Directory-sub001/internal/domain/geo"
)

// Google Geocoding API defaults.
const (
	GoogleBaseURL   = "https://maps.googleapis.com"
	GoogleRateLimit = 25.0
)

// ErrMissingAPIKey is returned when the Google client has no key.
var ErrMissingAPIKey = errors.New("google geocoding api key is not set")

// Google geocodes through the Google Geocoding API.
type Google struct {
	client
	apiKey string
	region string
}

// NewGoogle creates a Google geocoder. region is an optional ccTLD bias ("vn").
func NewGoogle(apiKey, region string, opts ...Option) *Google {
	return &Google{
		client: newClient(GoogleBaseURL, GoogleRateLimit, opts),
		apiKey: apiKey,
		region: strings.ToLower(strings.TrimSpace(region)),
	}
}

type googleResponse struct {
	Status       string `json:"status"`
	ErrorMessage string `json:"error_message"`
	Results      []struct {
		FormattedAddress string `json:"formatted_address"`
		Geometry         struct {
			Location struct {
				Lat float64 `json:"lat"`
				Lng float64 `json:"lng"`
			} `json:"location"`
		} `json:"geometry"`
	} `json:"results"`
}

// GeocodeAddress returns the first result for text.
func (g *Google) GeocodeAddress(ctx context.Context, text string) (geo.Point, error) {
	if g.apiKey == "" {
		return geo.Point{}, fmt.Errorf("%w: %w", domain.ErrGeocodingUnavailable, ErrMissingAPIKey)
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return geo.Point{}, domain.ErrAddressNotFound
	}

	params := url.Values{}
	params.Set("address", text)
	params.Set("key", g.apiKey)
	if g.region != "" {
		params.Set("region", g.region)
	}

	var resp googleResponse
	if err := g.getJSON(ctx, "/maps/api/geocode/json", params, &resp); err != nil {
		return geo.Point{}, fmt.Errorf("google geocode: %w", err)
	}

	switch resp.Status {
	case "OK":
	case "ZERO_RESULTS":
		return geo.Point{}, domain.ErrAddressNotFound
	default:
		return geo.Point{}, fmt.Errorf("%w: google status %s: %s",
			domain.ErrGeocodingUnavailable, resp.Status, resp.ErrorMessage)
	}
	if len(resp.Results) == 0 {
		return geo.Point{}, domain.ErrAddressNotFound
	}

	loc := resp.Results[0].Geometry.Location
	p, err := geo.NewPoint(loc.Lat, loc.Lng)
	if err != nil {
		return geo.Point{}, fmt.Errorf("%w: %w", domain.ErrAddressNotFound, err)
	}
	return p, nil
}

// HealthCheck reports whether the client is usable. Google has no free status
// endpoint, so only configuration is checked.
func (g *Google) HealthCheck(_ context.Context) error {
	if g.apiKey == "" {
		return ErrMissingAPIKey
	}
	return nil
}
