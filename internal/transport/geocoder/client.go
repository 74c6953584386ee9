// Package geocoder implements HTTP geocoding clients for Nominatim and the
// Google Geocoding API.
package geocoder

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"

	"github.com/Violetta147/Restaurant-Directory-sub001/internal/domain"
)

const (
	// DefaultTimeout bounds a single HTTP exchange.
	DefaultTimeout = 10 * time.Second
	// DefaultUserAgent identifies the service to providers that require it.
	DefaultUserAgent = "restaurant-directory/1.0"
)

// Option configures a client.
type Option func(*client)

// WithBaseURL overrides the provider endpoint (tests, self-hosted Nominatim).
func WithBaseURL(baseURL string) Option {
	return func(c *client) {
		c.baseURL = baseURL
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *client) {
		c.httpClient = httpClient
	}
}

// WithRateLimit caps outgoing requests per second. 0 disables limiting.
func WithRateLimit(requestsPerSecond float64) Option {
	return func(c *client) {
		if requestsPerSecond <= 0 {
			c.limiter = nil
			return
		}
		burst := max(int(requestsPerSecond), 1)
		c.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), burst)
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *client) {
		c.userAgent = ua
	}
}

// client holds transport shared by the provider implementations.
type client struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
	limiter    *rate.Limiter
}

func newClient(baseURL string, defaultRate float64, opts []Option) client {
	c := client{
		baseURL:    baseURL,
		userAgent:  DefaultUserAgent,
		httpClient: &http.Client{Timeout: DefaultTimeout},
		limiter:    rate.NewLimiter(rate.Limit(defaultRate), max(int(defaultRate), 1)),
	}
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// statusError is a non-2xx provider response.
type statusError struct {
	StatusCode int
	Body       string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("unexpected status %d: %s", e.StatusCode, e.Body)
}

// getJSON waits for the limiter, performs a GET and decodes the body into out.
// Every failure wraps domain.ErrGeocodingUnavailable.
func (c *client) getJSON(ctx context.Context, path string, params url.Values, out any) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("%w: rate limiter: %w", domain.ErrGeocodingUnavailable, err)
		}
	}
	return c.fetchJSON(ctx, path, params, out)
}

// fetchJSON is getJSON without the limiter. Status probes use it so they never
// take a token from geocoding requests.
func (c *client) fetchJSON(ctx context.Context, path string, params url.Values, out any) error {
	reqURL := c.baseURL + path
	if len(params) > 0 {
		reqURL += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("%w: create request: %w", domain.ErrGeocodingUnavailable, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrGeocodingUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%w: %w", domain.ErrGeocodingUnavailable,
			&statusError{StatusCode: resp.StatusCode, Body: string(body)})
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decode response: %w", domain.ErrGeocodingUnavailable, err)
	}
	return nil
}
