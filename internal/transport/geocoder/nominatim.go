package geocoder

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/Violetta147/Restaurant-Directory-sub001/internal/domain"
	"github.com/Violetta147/Restaurant-Directory-sub001/internal/domain/geo"
)

// Nominatim defaults. The public instance allows one request per second.
const (
	NominatimBaseURL   = "https://nominatim.openstreetmap.org"
	NominatimRateLimit = 1.0
)

// Nominatim geocodes through an OpenStreetMap Nominatim server.
type Nominatim struct {
	client
	countryCodes string
}

// NewNominatim creates a Nominatim geocoder.
func NewNominatim(opts ...Option) *Nominatim {
	return &Nominatim{client: newClient(NominatimBaseURL, NominatimRateLimit, opts)}
}

// WithCountryCodes restricts results to ISO 3166-1 alpha-2 codes ("vn,th").
func (n *Nominatim) WithCountryCodes(codes string) *Nominatim {
	n.countryCodes = strings.ToLower(strings.TrimSpace(codes))
	return n
}

type nominatimPlace struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
}

// GeocodeAddress returns the best match for text.
func (n *Nominatim) GeocodeAddress(ctx context.Context, text string) (geo.Point, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return geo.Point{}, domain.ErrAddressNotFound
	}

	params := url.Values{}
	params.Set("q", text)
	params.Set("format", "jsonv2")
	params.Set("limit", "1")
	if n.countryCodes != "" {
		params.Set("countrycodes", n.countryCodes)
	}

	var places []nominatimPlace
	if err := n.getJSON(ctx, "/search", params, &places); err != nil {
		return geo.Point{}, fmt.Errorf("nominatim search: %w", err)
	}
	if len(places) == 0 {
		return geo.Point{}, domain.ErrAddressNotFound
	}

	lat, errLat := strconv.ParseFloat(places[0].Lat, 64)
	lon, errLon := strconv.ParseFloat(places[0].Lon, 64)
	if errLat != nil || errLon != nil {
		return geo.Point{}, fmt.Errorf("%w: nominatim returned malformed coordinates %q,%q",
			domain.ErrGeocodingUnavailable, places[0].Lat, places[0].Lon)
	}
	p, err := geo.NewPoint(lat, lon)
	if err != nil {
		return geo.Point{}, fmt.Errorf("%w: %w", domain.ErrAddressNotFound, err)
	}
	return p, nil
}

type nominatimStatus struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
}

// HealthCheck queries the server's /status endpoint. It is not rate limited.
func (n *Nominatim) HealthCheck(ctx context.Context) error {
	params := url.Values{}
	params.Set("format", "json")

	var st nominatimStatus
	if err := n.fetchJSON(ctx, "/status", params, &st); err != nil {
		return fmt.Errorf("nominatim status: %w", err)
	}
	if st.Status != 0 {
		return fmt.Errorf("%w: nominatim status %d: %s", domain.ErrGeocodingUnavailable, st.Status, st.Message)
	}
	return nil
}
