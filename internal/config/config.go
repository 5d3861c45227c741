// Package config builds the immutable runtime configuration.
//
// Sources are layered, later ones winning: built-in defaults, an optional
// YAML file named by CONFIG_FILE, a `.env` file, then the process environment.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Config is the root configuration object. It is built once at startup and
// never mutated afterwards.
type Config struct {
	App         AppConfig         `koanf:"app" validate:"required"`
	Server      ServerConfig      `koanf:"server" validate:"required"`
	Logging     LoggingConfig     `koanf:"logging" validate:"required"`
	Upstream    UpstreamConfig    `koanf:"upstream" validate:"required"`
	Credentials CredentialsConfig `koanf:"credentials"`
	Maps        MapsConfig        `koanf:"maps"`
}

type AppConfig struct {
	Name    string `koanf:"name" validate:"required"`
	Version string `koanf:"version" validate:"required"`
	Env     string `koanf:"env" validate:"required,oneof=development staging production test"`
}

type ServerConfig struct {
	Port         string        `koanf:"port" validate:"required,numeric"`
	ReadTimeout  time.Duration `koanf:"read_timeout" validate:"min=1s"`
	WriteTimeout time.Duration `koanf:"write_timeout" validate:"min=1s"`
	// Timezone is an IANA name used to render sunrise/sunset and forecast
	// times. Empty means the process local zone.
	Timezone string `koanf:"timezone"`
}

type LoggingConfig struct {
	Level  string `koanf:"level" validate:"required,oneof=debug info warn error"`
	Format string `koanf:"format" validate:"omitempty,oneof=json console"`
}

// UpstreamConfig points at the third-party providers. Base URLs are
// overridable so tests and staging can substitute fakes.
type UpstreamConfig struct {
	Timeout          time.Duration `koanf:"timeout" validate:"min=1ms"`
	WeatherBaseURL   string        `koanf:"weather_base_url" validate:"required,url"`
	CountriesBaseURL string        `koanf:"countries_base_url" validate:"required,url"`
	CurrencyBaseURL  string        `koanf:"currency_base_url" validate:"required,url"`
}

// CredentialsConfig holds provider keys. Missing keys are not fatal: they
// surface as upstream authentication failures at request time.
type CredentialsConfig struct {
	OpenWeatherAPIKey string `koanf:"openweather_api_key"`
	CurrencyAPIKey    string `koanf:"currency_api_key"`
	MapsAPIKey        string `koanf:"maps_api_key"`
}

// MapsConfig restricts who may fetch the browser maps key.
type MapsConfig struct {
	AllowedOrigins []string `koanf:"allowed_origins" validate:"dive,url"`
}

// envKeys maps conventional environment variable names onto config paths.
var envKeys = map[string]string{
	"APP_ENV":                "app.env",
	"PORT":                   "server.port",
	"SERVER_READ_TIMEOUT":    "server.read_timeout",
	"SERVER_WRITE_TIMEOUT":   "server.write_timeout",
	"SERVER_TIMEZONE":        "server.timezone",
	"LOG_LEVEL":              "logging.level",
	"LOG_FORMAT":             "logging.format",
	"UPSTREAM_TIMEOUT":       "upstream.timeout",
	"OPENWEATHER_BASE_URL":   "upstream.weather_base_url",
	"RESTCOUNTRIES_BASE_URL": "upstream.countries_base_url",
	"CURRENCY_BASE_URL":      "upstream.currency_base_url",
	"OPENWEATHER_API_KEY":    "credentials.openweather_api_key",
	"CURRENCY_API_KEY":       "credentials.currency_api_key",
	"GOOGLE_MAPS_API_KEY":    "credentials.maps_api_key",
	"MAPS_ALLOWED_ORIGINS":   "maps.allowed_origins",
}

func defaults() map[string]interface{} {
	return map[string]interface{}{
		"app.name":                    "World Info API",
		"app.version":                 "1.0.0",
		"app.env":                     "development",
		"server.port":                 "3000",
		"server.read_timeout":         "10s",
		"server.write_timeout":        "10s",
		"logging.level":               "info",
		"upstream.timeout":            "10s",
		"upstream.weather_base_url":   "https://api.openweathermap.org/data/2.5",
		"upstream.countries_base_url": "https://restcountries.com/v3.1",
		"upstream.currency_base_url":  "https://api.freecurrencyapi.com/v1",
	}
}

// Load reads configuration from all sources and validates it.
func Load() (*Config, error) {
	// .env is optional; real environment variables take precedence over it
	_ = godotenv.Load()

	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("config: failed to load defaults: %w", err)
	}

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("config: failed to load %s: %w", path, err)
		}
	}

	if err := k.Load(env.ProviderWithValue("", ".", mapEnv), nil); err != nil {
		return nil, fmt.Errorf("config: failed to load environment: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("config: failed to unmarshal: %w", err)
	}

	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
		if cfg.App.Env == "development" {
			cfg.Logging.Format = "console"
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func mapEnv(key, value string) (string, interface{}) {
	path, ok := envKeys[key]
	if !ok {
		return "", nil
	}
	if path == "maps.allowed_origins" {
		return path, splitList(value)
	}
	return path, value
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, strings.TrimSuffix(part, "/"))
		}
	}
	return out
}

// Validate checks struct tags and the fields tags cannot express.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("config: validation failed: %w", err)
	}
	if _, err := c.Location(); err != nil {
		return fmt.Errorf("config: invalid server timezone %q: %w", c.Server.Timezone, err)
	}
	return nil
}

// Location resolves the configured timezone.
func (c *Config) Location() (*time.Location, error) {
	if c.Server.Timezone == "" {
		return time.Local, nil
	}
	return time.LoadLocation(c.Server.Timezone)
}

// MissingCredentials lists the environment variables whose keys are unset.
func (c *Config) MissingCredentials() []string {
	var missing []string
	if c.Credentials.OpenWeatherAPIKey == "" {
		missing = append(missing, "OPENWEATHER_API_KEY")
	}
	if c.Credentials.CurrencyAPIKey == "" {
		missing = append(missing, "CURRENCY_API_KEY")
	}
	if c.Credentials.MapsAPIKey == "" {
		missing = append(missing, "GOOGLE_MAPS_API_KEY")
	}
	return missing
}

func (c *Config) IsProduction() bool {
	return c.App.Env == "production"
}
