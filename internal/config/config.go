package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"regexp"
	"runtime"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Store drivers.
const (
	DriverMemory  = "memory"
	DriverRTree   = "rtree"
	DriverPostGIS = "postgis"
	DriverRedis   = "redis"
	DriverElastic = "elastic"
)

// Geocoding providers.
const (
	GeocoderNone      = "none"
	GeocoderNominatim = "nominatim"
	GeocoderGoogle    = "google"
)

// Config holds the restaurant directory configuration.
type Config struct {
	HTTP            HTTPConfig            `yaml:"http"`
	Auth            AuthConfig            `yaml:"auth"`
	Store           StoreConfig           `yaml:"store"`
	Search          SearchConfig          `yaml:"search"`
	Geocoding       GeocodingConfig       `yaml:"geocoding"`
	DefaultLocation DefaultLocationConfig `yaml:"default_location"`
	Logging         LoggingConfig         `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level" validate:"omitempty,oneof=debug info warn error"` // default: determined by env
}

// AuthConfig holds API authentication settings. No keys disables auth.
type AuthConfig struct {
	APIKeys []string `yaml:"api_keys"`
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int      `yaml:"port" validate:"min=1,max=65535"`
	ReadTimeoutSec  int      `yaml:"read_timeout_sec"`
	WriteTimeoutSec int      `yaml:"write_timeout_sec"`
	ShutdownSec     int      `yaml:"shutdown_timeout_sec"`
	CORSOrigins     []string `yaml:"cors_origins"`
}

// StoreConfig selects and configures the restaurant store.
type StoreConfig struct {
	Driver           string         `yaml:"driver" validate:"oneof=memory rtree postgis redis elastic"`
	DatasetFile      string         `yaml:"dataset_file"` // seeds memory/rtree stores at startup
	ReadinessTimeout int            `yaml:"readiness_timeout_sec"`
	Postgres         PostgresConfig `yaml:"postgres"`
	Redis            RedisConfig    `yaml:"redis"`
	Elastic          ElasticConfig  `yaml:"elastic"`
}

// PostgresConfig holds PostGIS connection settings.
type PostgresConfig struct {
	DSN             string `yaml:"dsn"`
	MaxOpenConns    int    `yaml:"max_open_conns" validate:"gte=0"`
	MaxIdleConns    int    `yaml:"max_idle_conns" validate:"gte=0"`
	ConnMaxLifetime int    `yaml:"conn_max_lifetime_sec" validate:"gte=0"`
	Migrate         bool   `yaml:"migrate"`
}

// RedisConfig holds Redis/Valkey search settings.
type RedisConfig struct {
	Addrs     []string `yaml:"addrs"`
	Username  string   `yaml:"username"`
	Password  string   `yaml:"password"`
	DB        int      `yaml:"db" validate:"gte=0"`
	IndexName string   `yaml:"index_name"`
	KeyPrefix string   `yaml:"key_prefix"`
}

// ElasticConfig holds Elasticsearch settings.
type ElasticConfig struct {
	Addresses []string `yaml:"addresses"`
	Username  string   `yaml:"username"`
	Password  string   `yaml:"password"`
	Index     string   `yaml:"index"`
}

// SearchConfig holds ranking, paging and radius settings.
type SearchConfig struct {
	DefaultRadiusKm float64 `yaml:"default_radius_km" validate:"gt=0"`
	MaxRadiusKm     float64 `yaml:"max_radius_km" validate:"gtefield=DefaultRadiusKm"`
	DefaultPageSize int     `yaml:"default_page_size" validate:"min=1,ltefield=MaxPageSize"`
	MaxPageSize     int     `yaml:"max_page_size" validate:"min=1"`
	// DefaultToCity searches around the default location when the caller sends none.
	DefaultToCity *bool `yaml:"default_to_city"`
	// SpatialPushdown lets stores with a spatial index evaluate radius filters.
	SpatialPushdown *bool `yaml:"spatial_pushdown"`
}

// GeocodingConfig selects the address geocoder.
type GeocodingConfig struct {
	Provider     string  `yaml:"provider" validate:"oneof=none nominatim google"`
	BaseURL      string  `yaml:"base_url" validate:"omitempty,url"`
	APIKey       string  `yaml:"api_key"`
	Region       string  `yaml:"region"` // google region bias / nominatim country codes
	UserAgent    string  `yaml:"user_agent"`
	TimeoutMS    int     `yaml:"timeout_ms" validate:"min=1"`
	RateLimitRPS float64 `yaml:"rate_limit_rps" validate:"gte=0"`
}

// DefaultLocationConfig is the city center used when no usable location is given.
type DefaultLocationConfig struct {
	Lat  float64 `yaml:"lat" validate:"gte=-90,lte=90"`
	Lng  float64 `yaml:"lng" validate:"gte=-180,lte=180"`
	City string  `yaml:"city"`
}

// DefaultToCityEnabled resolves the optional flag (default true).
func (s SearchConfig) DefaultToCityEnabled() bool {
	return s.DefaultToCity == nil || *s.DefaultToCity
}

// SpatialPushdownEnabled resolves the optional flag (default true).
func (s SearchConfig) SpatialPushdownEnabled() bool {
	return s.SpatialPushdown == nil || *s.SpatialPushdown
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
// A .env file in the working directory, when present, is loaded first.
func Load(env string) (Config, error) {
	_ = godotenv.Load()

	configPath := findConfigPath(env)

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}
	return Parse(data)
}

// Parse decodes YAML config data, expanding ${VAR} references.
func Parse(data []byte) (Config, error) {
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 10
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}

	if c.Store.Driver == "" {
		c.Store.Driver = DriverMemory
	}
	if c.Store.ReadinessTimeout <= 0 {
		c.Store.ReadinessTimeout = 10
	}
	if c.Store.Redis.IndexName == "" {
		c.Store.Redis.IndexName = "restaurants"
	}
	if c.Store.Redis.KeyPrefix == "" {
		c.Store.Redis.KeyPrefix = "restaurant:"
	}
	if c.Store.Elastic.Index == "" {
		c.Store.Elastic.Index = "restaurants"
	}

	if c.Search.DefaultRadiusKm <= 0 {
		c.Search.DefaultRadiusKm = 5
	}
	if c.Search.MaxRadiusKm <= 0 {
		c.Search.MaxRadiusKm = 50
	}
	if c.Search.DefaultPageSize <= 0 {
		c.Search.DefaultPageSize = 20
	}
	if c.Search.MaxPageSize <= 0 {
		c.Search.MaxPageSize = 100
	}

	if c.Geocoding.Provider == "" {
		c.Geocoding.Provider = GeocoderNone
	}
	if c.Geocoding.TimeoutMS <= 0 {
		c.Geocoding.TimeoutMS = 4000
	}

	if c.DefaultLocation.Lat == 0 && c.DefaultLocation.Lng == 0 && c.DefaultLocation.City == "" {
		c.DefaultLocation = DefaultLocationConfig{Lat: 16.0544, Lng: 108.2022, City: "Da Nang"}
	}
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("yaml"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			_, field, _ := strings.Cut(fe.Namespace(), ".")
			return fmt.Errorf("%s failed %q check (value %v)", field, fe.Tag(), fe.Value())
		}
		return err
	}

	switch c.Store.Driver {
	case DriverPostGIS:
		if c.Store.Postgres.DSN == "" {
			return fmt.Errorf("store.postgres.dsn is required for driver %q", c.Store.Driver)
		}
	case DriverRedis:
		if len(c.Store.Redis.Addrs) == 0 {
			return fmt.Errorf("store.redis.addrs is required for driver %q", c.Store.Driver)
		}
	case DriverElastic:
		if len(c.Store.Elastic.Addresses) == 0 {
			return fmt.Errorf("store.elastic.addresses is required for driver %q", c.Store.Driver)
		}
	}

	if c.Geocoding.Provider == GeocoderGoogle && c.Geocoding.APIKey == "" {
		return fmt.Errorf("geocoding.api_key is required for provider %q", GeocoderGoogle)
	}
	return nil
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
