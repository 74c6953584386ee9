package geocoder

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Violetta147/Restaurant-Directory-sub001/internal/domain"
)

func newGoogleServer(t *testing.T, body string) *Google {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/maps/api/geocode/json", r.URL.Path)
		assert.Equal(t, "test-key", r.URL.Query().Get("key"))
		assert.Equal(t, "vn", r.URL.Query().Get("region"))
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return NewGoogle("test-key", "VN", WithBaseURL(srv.URL), WithRateLimit(0))
}

func TestGoogle_GeocodeAddress(t *testing.T) {
	g := newGoogleServer(t, `{"status":"OK","results":[{"geometry":{"location":{"lat":10.7769,"lng":106.7009}}}]}`)

	p, err := g.GeocodeAddress(context.Background(), "Ben Thanh Market")
	require.NoError(t, err)
	assert.InDelta(t, 10.7769, p.Lat, 1e-9)
	assert.InDelta(t, 106.7009, p.Lon, 1e-9)
}

func TestGoogle_ZeroResults(t *testing.T) {
	g := newGoogleServer(t, `{"status":"ZERO_RESULTS","results":[]}`)

	_, err := g.GeocodeAddress(context.Background(), "nowhere")
	assert.ErrorIs(t, err, domain.ErrAddressNotFound)
}

func TestGoogle_ProviderError(t *testing.T) {
	g := newGoogleServer(t, `{"status":"OVER_QUERY_LIMIT","error_message":"quota"}`)

	_, err := g.GeocodeAddress(context.Background(), "x")
	assert.ErrorIs(t, err, domain.ErrGeocodingUnavailable)
}

func TestGoogle_MissingKey(t *testing.T) {
	g := NewGoogle("", "")

	_, err := g.GeocodeAddress(context.Background(), "x")
	require.ErrorIs(t, err, domain.ErrGeocodingUnavailable)
	assert.ErrorIs(t, err, ErrMissingAPIKey)
	assert.ErrorIs(t, g.HealthCheck(context.Background()), ErrMissingAPIKey)
}
