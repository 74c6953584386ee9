// Package geonorm resolves caller location input into a canonical search origin.
package geonorm

import (
	"context"
	"errors"
	"math"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Violetta147/Restaurant-Directory-sub001/internal/domain"
	"github.com/Violetta147/Restaurant-Directory-sub001/internal/domain/geo"
	"github.com/Violetta147/Restaurant-Directory-sub001/internal/domain/optional"
	"github.com/Violetta147/Restaurant-Directory-sub001/internal/metrics"
)

// Address labels used when the caller gave no address text.
const (
	CurrentLocationAddress = "Current location"
	DefaultLocationAddress = "Current default location"
)

// Defaults applied when Config leaves a field zero.
const (
	DefaultRadiusKm = 5.0
	DefaultTimeout  = 4 * time.Second
)

// Config controls fallback behaviour.
type Config struct {
	DefaultPoint    geo.Point
	DefaultRadiusKm float64
	MaxRadiusKm     float64 // 0 disables the cap
	Timeout         time.Duration
}

// Input is the raw location part of a search.
type Input struct {
	Address    optional.Value[string]
	Lat        optional.Value[float64]
	Lng        optional.Value[float64]
	RadiusText optional.Value[string]
}

// Service turns Input into a NormalizedLocation. It never fails: every
// unusable input degrades to the configured default.
type Service struct {
	geocoder Geocoder
	cfg      Config
	logger   *zap.Logger
}

// New creates a normalizer. geocoder may be nil, in which case addresses
// always resolve to the default location.
func New(geocoder Geocoder, cfg Config, logger *zap.Logger) *Service {
	if cfg.DefaultRadiusKm <= 0 {
		cfg.DefaultRadiusKm = DefaultRadiusKm
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{geocoder: geocoder, cfg: cfg, logger: logger}
}

// Normalize resolves in. Explicit valid coordinates win over address text.
func (s *Service) Normalize(ctx context.Context, in Input) geo.NormalizedLocation {
	radius := s.radius(in.RadiusText)
	address := strings.TrimSpace(in.Address.OrElse(""))

	if p, ok := explicitPoint(in); ok {
		if address == "" {
			address = CurrentLocationAddress
		}
		return geo.NormalizedLocation{Address: address, Point: p, RadiusKm: radius}
	}

	if address != "" {
		if p, ok := s.geocode(ctx, address); ok {
			return geo.NormalizedLocation{Address: address, Point: p, RadiusKm: radius}
		}
	}

	return s.fallback(radius)
}

// Default returns the configured default origin with the default radius.
func (s *Service) Default() geo.NormalizedLocation {
	return s.fallback(s.cfg.DefaultRadiusKm)
}

func (s *Service) fallback(radius float64) geo.NormalizedLocation {
	return geo.NormalizedLocation{
		Address:   DefaultLocationAddress,
		Point:     s.cfg.DefaultPoint,
		RadiusKm:  radius,
		Defaulted: true,
	}
}

func explicitPoint(in Input) (geo.Point, bool) {
	lat, okLat := in.Lat.Get()
	lng, okLng := in.Lng.Get()
	if !okLat || !okLng || !geo.ValidateCoordinates(lat, lng) {
		return geo.Point{}, false
	}
	return geo.Point{Lat: lat, Lon: lng}, true
}

// radius parses the caller's radius; anything unusable yields the default.
func (s *Service) radius(text optional.Value[string]) float64 {
	raw, ok := text.Get()
	if !ok {
		return s.cfg.DefaultRadiusKm
	}
	r, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(r) || math.IsInf(r, 0) || r <= 0 {
		return s.cfg.DefaultRadiusKm
	}
	if s.cfg.MaxRadiusKm > 0 && r > s.cfg.MaxRadiusKm {
		return s.cfg.MaxRadiusKm
	}
	return r
}

func (s *Service) geocode(ctx context.Context, address string) (geo.Point, bool) {
	if s.geocoder == nil {
		return geo.Point{}, false
	}

	ctx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	start := time.Now()
	p, err := s.geocoder.GeocodeAddress(ctx, address)
	duration := time.Since(start)
	metrics.GeocodeRequestDuration.Observe(duration.Seconds())

	if err == nil && !geo.ValidateCoordinates(p.Lat, p.Lon) {
		err = domain.ErrAddressNotFound
	}

	switch {
	case err == nil:
		metrics.GeocodeRequestsTotal.WithLabelValues(metrics.GeocodeOK).Inc()
		s.logger.Debug("Address geocoded",
			zap.String("address", address),
			zap.Float64("lat", p.Lat),
			zap.Float64("lng", p.Lon),
			zap.Duration("duration", duration),
		)
		return p, true
	case errors.Is(err, domain.ErrAddressNotFound):
		metrics.GeocodeRequestsTotal.WithLabelValues(metrics.GeocodeNotFound).Inc()
		s.logger.Info("Address not found, using default location",
			zap.String("address", address),
			zap.Duration("duration", duration),
		)
	default:
		metrics.GeocodeRequestsTotal.WithLabelValues(metrics.GeocodeUnavailable).Inc()
		s.logger.Warn("Geocoding unavailable, using default location",
			zap.String("address", address),
			zap.Duration("duration", duration),
			zap.Error(err),
		)
	}
	return geo.Point{}, false
}
