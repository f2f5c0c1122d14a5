package config

import (
	"fmt"
	"os"

	"github.com/goccy/go-yaml"
	"github.com/kelseyhightower/envconfig"
)

// Exporter modes for stream spans.
const (
	ExporterLog  = "log"
	ExporterOTel = "otel"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Logging   LogConfig       `yaml:"logging"`
	Tracing   TracingConfig   `yaml:"tracing"`
	Metrics   MetricsConfig   `yaml:"metrics"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	CORS      CORSConfig      `yaml:"cors"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port string `envconfig:"PORT" default:"8000" yaml:"port"`
	Host string `envconfig:"HOST" default:"0.0.0.0" yaml:"host"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level       string `envconfig:"LOG_LEVEL" default:"info" yaml:"level"`
	Development bool   `envconfig:"LOG_DEV" default:"false" yaml:"development"`
}

// TracingConfig holds span configuration.
type TracingConfig struct {
	Service  string `envconfig:"TRACE_SERVICE" default:"streamtrace" yaml:"service"`
	Buffer   int    `envconfig:"TRACE_BUFFER" default:"1000" yaml:"buffer"`
	Exporter string `envconfig:"TRACE_EXPORTER" default:"log" yaml:"exporter"`
}

// MetricsConfig holds Prometheus configuration.
type MetricsConfig struct {
	Enabled   bool   `envconfig:"METRICS_ENABLED" default:"true" yaml:"enabled"`
	Namespace string `envconfig:"METRICS_NAMESPACE" default:"streamtrace" yaml:"namespace"`
}

// RateLimitConfig holds rate limiting configuration. The per-client limit
// applies to each client IP. The global limit caps all clients together and
// is off while GlobalRequestsPerSecond is zero; a zero GlobalBurst means
// one second's worth of requests.
type RateLimitConfig struct {
	RequestsPerSecond       int  `envconfig:"RATE_LIMIT_RPS" default:"100" yaml:"requests_per_second"`
	Burst                   int  `envconfig:"RATE_LIMIT_BURST" default:"200" yaml:"burst"`
	GlobalRequestsPerSecond int  `envconfig:"RATE_LIMIT_GLOBAL_RPS" default:"0" yaml:"global_requests_per_second"`
	GlobalBurst             int  `envconfig:"RATE_LIMIT_GLOBAL_BURST" default:"0" yaml:"global_burst"`
	Enabled                 bool `envconfig:"RATE_LIMIT_ENABLED" default:"true" yaml:"enabled"`
}

// CORSConfig holds cross-origin configuration.
type CORSConfig struct {
	Origins []string `envconfig:"CORS_ORIGINS" default:"*" yaml:"origins"`
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	cfg, err := loadEnv()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFile loads configuration from the environment, then applies the
// YAML file at path on top. Values in the file win, so the merged result
// is validated once, after the overlay.
func LoadFile(path string) (*Config, error) {
	cfg, err := loadEnv()
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadEnv() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return &cfg, nil
}

// Validate checks values envconfig cannot.
func (c *Config) Validate() error {
	switch c.Tracing.Exporter {
	case ExporterLog, ExporterOTel:
	default:
		return fmt.Errorf("invalid tracing exporter %q: want %q or %q", c.Tracing.Exporter, ExporterLog, ExporterOTel)
	}
	if c.Tracing.Buffer <= 0 {
		return fmt.Errorf("invalid tracing buffer %d: must be positive", c.Tracing.Buffer)
	}
	if c.RateLimit.Enabled && (c.RateLimit.RequestsPerSecond <= 0 || c.RateLimit.Burst <= 0) {
		return fmt.Errorf("invalid rate limit %d/s burst %d: must be positive", c.RateLimit.RequestsPerSecond, c.RateLimit.Burst)
	}
	if c.RateLimit.GlobalRequestsPerSecond < 0 || c.RateLimit.GlobalBurst < 0 {
		return fmt.Errorf("invalid global rate limit %d/s burst %d: must not be negative", c.RateLimit.GlobalRequestsPerSecond, c.RateLimit.GlobalBurst)
	}
	return nil
}

// Address returns the host:port the server listens on.
func (c *Config) Address() string {
	return c.Server.Host + ":" + c.Server.Port
}

// Default returns default configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port: "8000",
			Host: "0.0.0.0",
		},
		Logging: LogConfig{
			Level:       "info",
			Development: false,
		},
		Tracing: TracingConfig{
			Service:  "streamtrace",
			Buffer:   1000,
			Exporter: ExporterLog,
		},
		Metrics: MetricsConfig{
			Enabled:   true,
			Namespace: "streamtrace",
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: 100,
			Burst:             200,
			Enabled:           true,
		},
		CORS: CORSConfig{
			Origins: []string{"*"},
		},
	}
}
