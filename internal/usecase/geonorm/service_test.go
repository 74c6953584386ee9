package geonorm

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Violetta147/Restaurant-Directory-sub001/internal/domain"
	"github.com/Violetta147/Restaurant-Directory-sub001/internal/domain/geo"
	"github.com/Violetta147/Restaurant-Directory-sub001/internal/domain/optional"
)

// --- Mocks ---

type mockGeocoder struct {
	point    geo.Point
	err      error
	block    bool
	called   bool
	lastText string
}

func (m *mockGeocoder) GeocodeAddress(ctx context.Context, text string) (geo.Point, error) {
	m.called = true
	m.lastText = text
	if m.block {
		<-ctx.Done()
		return geo.Point{}, errors.Join(domain.ErrGeocodingUnavailable, ctx.Err())
	}
	return m.point, m.err
}

var danang = geo.Point{Lat: 16.047, Lon: 108.206}

func newService(g Geocoder) *Service {
	return New(g, Config{DefaultPoint: danang, MaxRadiusKm: 50, Timeout: time.Second}, nil)
}

func str(s string) optional.Value[string] { return optional.Some(s) }

func num(f float64) optional.Value[float64] { return optional.Some(f) }

// --- Tests ---

func TestNormalize_NoInputUsesDefault(t *testing.T) {
	g := &mockGeocoder{}
	svc := newService(g)

	loc := svc.Normalize(context.Background(), Input{Address: str("")})

	if loc.Address != DefaultLocationAddress {
		t.Errorf("expected %q, got %q", DefaultLocationAddress, loc.Address)
	}
	if loc.Point != danang {
		t.Errorf("expected default point, got %+v", loc.Point)
	}
	if loc.RadiusKm != 5.0 {
		t.Errorf("expected radius 5.0, got %v", loc.RadiusKm)
	}
	if !loc.Defaulted {
		t.Error("expected Defaulted=true")
	}
	if g.called {
		t.Error("geocoder should not be called for empty address")
	}
}

func TestNormalize_ExplicitCoordinatesUnchanged(t *testing.T) {
	g := &mockGeocoder{point: geo.Point{Lat: 1, Lon: 1}}
	svc := newService(g)

	loc := svc.Normalize(context.Background(), Input{
		Address:    str("Somewhere else"),
		Lat:        num(10.7769),
		Lng:        num(106.7009),
		RadiusText: str("3"),
	})

	if loc.Point.Lat != 10.7769 || loc.Point.Lon != 106.7009 {
		t.Errorf("coordinates changed: %+v", loc.Point)
	}
	if loc.Address != "Somewhere else" {
		t.Errorf("expected supplied address, got %q", loc.Address)
	}
	if loc.RadiusKm != 3 {
		t.Errorf("expected radius 3, got %v", loc.RadiusKm)
	}
	if loc.Defaulted {
		t.Error("explicit coordinates must not be flagged as default")
	}
	if g.called {
		t.Error("geocoder should not be called when coordinates are given")
	}
}

func TestNormalize_ExplicitCoordinatesWithoutAddress(t *testing.T) {
	svc := newService(nil)

	loc := svc.Normalize(context.Background(), Input{Lat: num(0), Lng: num(0)})

	if loc.Address != CurrentLocationAddress {
		t.Errorf("expected %q, got %q", CurrentLocationAddress, loc.Address)
	}
	if loc.Point != (geo.Point{}) {
		t.Errorf("expected origin, got %+v", loc.Point)
	}
}

func TestNormalize_InvalidCoordinatesFallBack(t *testing.T) {
	tests := []struct {
		name string
		in   Input
	}{
		{"lat out of range", Input{Lat: num(91), Lng: num(0)}},
		{"lng out of range", Input{Lat: num(0), Lng: num(-181)}},
		{"only lat", Input{Lat: num(10)}},
		{"only lng", Input{Lng: num(10)}},
	}
	svc := newService(nil)
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			loc := svc.Normalize(context.Background(), tc.in)
			if !loc.Defaulted || loc.Point != danang {
				t.Errorf("expected default location, got %+v", loc)
			}
		})
	}
}

func TestNormalize_Radius(t *testing.T) {
	tests := []struct {
		name string
		text optional.Value[string]
		want float64
	}{
		{"absent", optional.None[string](), 5},
		{"empty", str(""), 5},
		{"garbage", str("abc"), 5},
		{"zero", str("0"), 5},
		{"negative", str("-2"), 5},
		{"nan", str("NaN"), 5},
		{"inf", str("+Inf"), 5},
		{"fraction", str("2.5"), 2.5},
		{"padded", str(" 7 "), 7},
		{"capped", str("500"), 50},
	}
	svc := newService(nil)
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			loc := svc.Normalize(context.Background(), Input{
				Lat: num(16), Lng: num(108), RadiusText: tc.text,
			})
			if loc.RadiusKm != tc.want {
				t.Errorf("radius = %v, want %v", loc.RadiusKm, tc.want)
			}
		})
	}
}

func TestNormalize_GeocodesAddress(t *testing.T) {
	g := &mockGeocoder{point: geo.Point{Lat: 21.0285, Lon: 105.8542}}
	svc := newService(g)

	loc := svc.Normalize(context.Background(), Input{Address: str("  Hoan Kiem, Ha Noi ")})

	if !g.called || g.lastText != "Hoan Kiem, Ha Noi" {
		t.Fatalf("expected trimmed address to be geocoded, got %q", g.lastText)
	}
	if loc.Address != "Hoan Kiem, Ha Noi" {
		t.Errorf("unexpected address %q", loc.Address)
	}
	if loc.Point != g.point {
		t.Errorf("expected geocoded point, got %+v", loc.Point)
	}
	if loc.Defaulted {
		t.Error("geocoded location must not be flagged as default")
	}
}

func TestNormalize_GeocoderFailuresFallBack(t *testing.T) {
	tests := []struct {
		name string
		g    *mockGeocoder
	}{
		{"not found", &mockGeocoder{err: domain.ErrAddressNotFound}},
		{"unavailable", &mockGeocoder{err: domain.ErrGeocodingUnavailable}},
		{"unexpected error", &mockGeocoder{err: errors.New("boom")}},
		{"out of range result", &mockGeocoder{point: geo.Point{Lat: 123, Lon: 0}}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			loc := newService(tc.g).Normalize(context.Background(), Input{
				Address:    str("Nowhere"),
				RadiusText: str("2"),
			})
			if !loc.Defaulted || loc.Point != danang {
				t.Errorf("expected default location, got %+v", loc)
			}
			if loc.Address != DefaultLocationAddress {
				t.Errorf("expected %q, got %q", DefaultLocationAddress, loc.Address)
			}
			if loc.RadiusKm != 2 {
				t.Errorf("caller radius should be kept on fallback, got %v", loc.RadiusKm)
			}
		})
	}
}

func TestNormalize_GeocoderTimeoutFallsBack(t *testing.T) {
	g := &mockGeocoder{block: true}
	svc := New(g, Config{DefaultPoint: danang, Timeout: 20 * time.Millisecond}, nil)

	start := time.Now()
	loc := svc.Normalize(context.Background(), Input{Address: str("slow street")})

	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Fatalf("timeout not enforced, took %v", elapsed)
	}
	if !loc.Defaulted {
		t.Errorf("expected default location after timeout, got %+v", loc)
	}
}

func TestNormalize_NilGeocoder(t *testing.T) {
	loc := newService(nil).Normalize(context.Background(), Input{Address: str("Some street")})
	if !loc.Defaulted {
		t.Errorf("expected default location, got %+v", loc)
	}
}

func TestDefault(t *testing.T) {
	loc := New(nil, Config{DefaultPoint: danang, DefaultRadiusKm: 8}, nil).Default()
	if loc.RadiusKm != 8 || loc.Point != danang || !loc.Defaulted {
		t.Errorf("unexpected default %+v", loc)
	}
}
