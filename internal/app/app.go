// Package app assembles stores, geocoders and services from configuration.
// It is shared by the HTTP server and the rdctl CLI.
package app

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Violetta147/Restaurant-Directory-sub001/internal/config"
	"github.com/Violetta147/Restaurant-Directory-sub001/internal/db"
	dbElastic "github.com/Violetta147/Restaurant-Directory-sub001/internal/db/elastic"
	dbMemory "github.com/Violetta147/Restaurant-Directory-sub001/internal/db/memory"
	dbPostGIS "github.com/Violetta147/Restaurant-Directory-sub001/internal/db/postgis"
	dbRedis "github.com/Violetta147/Restaurant-Directory-sub001/internal/db/redis"
	dbRTree "github.com/Violetta147/Restaurant-Directory-sub001/internal/db/rtree"
	"github.com/Violetta147/Restaurant-Directory-sub001/internal/domain/geo"
	restaurantrepo "github.com/Violetta147/Restaurant-Directory-sub001/internal/repository/restaurant"
	"github.com/Violetta147/Restaurant-Directory-sub001/internal/spatial"
	"github.com/Violetta147/Restaurant-Directory-sub001/internal/transport/geocoder"
	datasetuc "github.com/Violetta147/Restaurant-Directory-sub001/internal/usecase/dataset"
	"github.com/Violetta147/Restaurant-Directory-sub001/internal/usecase/geonorm"
	healthuc "github.com/Violetta147/Restaurant-Directory-sub001/internal/usecase/health"
	searchuc "github.com/Violetta147/Restaurant-Directory-sub001/internal/usecase/search"
)

// Store is a restaurant store that also accepts bulk loads.
type Store interface {
	db.Store
	db.Loader
}

// Geocoder resolves addresses and reports its own health.
type Geocoder interface {
	geonorm.Geocoder
	HealthCheck(ctx context.Context) error
}

// OpenStore creates the configured store and prepares its schema or index.
func OpenStore(ctx context.Context, cfg config.StoreConfig, logger *zap.Logger) (Store, error) {
	readiness := time.Duration(cfg.ReadinessTimeout) * time.Second

	switch cfg.Driver {
	case config.DriverMemory:
		return dbMemory.New(), nil

	case config.DriverRTree:
		return dbRTree.New(), nil

	case config.DriverPostGIS:
		pingCtx, cancel := context.WithTimeout(ctx, readiness)
		defer cancel()
		s, err := dbPostGIS.New(pingCtx, dbPostGIS.Config{
			DSN:             cfg.Postgres.DSN,
			MaxOpenConns:    cfg.Postgres.MaxOpenConns,
			MaxIdleConns:    cfg.Postgres.MaxIdleConns,
			ConnMaxLifetime: time.Duration(cfg.Postgres.ConnMaxLifetime) * time.Second,
		})
		if err != nil {
			return nil, fmt.Errorf("open postgis: %w", err)
		}
		if cfg.Postgres.Migrate {
			if err := s.Migrate(ctx); err != nil {
				s.Close()
				return nil, fmt.Errorf("migrate postgis: %w", err)
			}
			logger.Info("PostGIS schema ready")
		}
		return s, nil

	case config.DriverRedis:
		s, err := dbRedis.NewStore(dbRedis.Config{
			Addrs:     cfg.Redis.Addrs,
			Username:  cfg.Redis.Username,
			Password:  cfg.Redis.Password,
			DB:        cfg.Redis.DB,
			IndexName: cfg.Redis.IndexName,
			KeyPrefix: cfg.Redis.KeyPrefix,
		})
		if err != nil {
			return nil, fmt.Errorf("open redis: %w", err)
		}
		if err := s.WaitForReady(ctx, readiness); err != nil {
			s.Close()
			return nil, fmt.Errorf("redis not ready: %w", err)
		}
		if err := s.EnsureIndex(ctx); err != nil {
			s.Close()
			return nil, fmt.Errorf("ensure redis index: %w", err)
		}
		return s, nil

	case config.DriverElastic:
		s, err := dbElastic.New(dbElastic.Config{
			Addresses: cfg.Elastic.Addresses,
			Username:  cfg.Elastic.Username,
			Password:  cfg.Elastic.Password,
			Index:     cfg.Elastic.Index,
		})
		if err != nil {
			return nil, fmt.Errorf("open elasticsearch: %w", err)
		}
		readyCtx, cancel := context.WithTimeout(ctx, readiness)
		defer cancel()
		if err := s.EnsureIndex(readyCtx); err != nil {
			return nil, fmt.Errorf("ensure elasticsearch index: %w", err)
		}
		return s, nil

	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
	}
}

// NewGeocoder builds the configured geocoder, or nil for provider "none".
func NewGeocoder(cfg config.GeocodingConfig) Geocoder {
	opts := []geocoder.Option{}
	if cfg.BaseURL != "" {
		opts = append(opts, geocoder.WithBaseURL(cfg.BaseURL))
	}
	if cfg.UserAgent != "" {
		opts = append(opts, geocoder.WithUserAgent(cfg.UserAgent))
	}
	if cfg.RateLimitRPS > 0 {
		opts = append(opts, geocoder.WithRateLimit(cfg.RateLimitRPS))
	}

	switch cfg.Provider {
	case config.GeocoderNominatim:
		return geocoder.NewNominatim(opts...).WithCountryCodes(cfg.Region)
	case config.GeocoderGoogle:
		return geocoder.NewGoogle(cfg.APIKey, cfg.Region, opts...)
	default:
		return nil
	}
}

// NewNormalizer builds the location normalizer. g may be nil.
func NewNormalizer(cfg config.Config, g Geocoder, logger *zap.Logger) *geonorm.Service {
	// A nil Geocoder interface must stay untyped nil inside the normalizer.
	var gc geonorm.Geocoder
	if g != nil {
		gc = g
	}
	return geonorm.New(gc, geonorm.Config{
		DefaultPoint:    geo.Point{Lat: cfg.DefaultLocation.Lat, Lon: cfg.DefaultLocation.Lng},
		DefaultRadiusKm: cfg.Search.DefaultRadiusKm,
		MaxRadiusKm:     cfg.Search.MaxRadiusKm,
		Timeout:         time.Duration(cfg.Geocoding.TimeoutMS) * time.Millisecond,
	}, logger)
}

// NewSearch wires the search service over store.
func NewSearch(cfg config.Config, store Store, norm searchuc.Normalizer) *searchuc.Service {
	native := store.Capabilities().NativeSpatial && cfg.Search.SpatialPushdownEnabled()
	return searchuc.New(
		restaurantrepo.New(store),
		norm,
		spatial.New(native),
		searchuc.Config{
			DefaultPageSize: cfg.Search.DefaultPageSize,
			MaxPageSize:     cfg.Search.MaxPageSize,
			DefaultToCity:   cfg.Search.DefaultToCityEnabled(),
		},
	)
}

// NewHealth wires the health service. g may be nil.
func NewHealth(store Store, g Geocoder) *healthuc.Service {
	var gc healthuc.GeocoderChecker
	if g != nil {
		gc = g
	}
	return healthuc.New(store, gc)
}

// NewDataset wires the dataset importer over store.
func NewDataset(store Store, logger *zap.Logger) *datasetuc.Service {
	return datasetuc.New(restaurantrepo.New(store), logger)
}

// Seed loads the dataset file into store when one is configured.
func Seed(ctx context.Context, path string, store Store, logger *zap.Logger) error {
	if path == "" {
		return nil
	}
	report, err := NewDataset(store, logger).LoadFile(ctx, path)
	if err != nil {
		return fmt.Errorf("seed %s: %w", path, err)
	}
	logger.Info("Dataset loaded",
		zap.String("file", path),
		zap.Int("loaded", report.Loaded),
		zap.Int("rejected", len(report.Rejected)),
	)
	return nil
}
