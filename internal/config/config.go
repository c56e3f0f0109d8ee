package config

import (
	"fmt"
	"strings"

	"github.com/jt828/functrace/pkg/apperror"
	"github.com/kelseyhightower/envconfig"
)

const ExporterNone = "none"

// Config holds the process configuration read from the environment. Variable
// names follow the OpenTelemetry SDK conventions where one exists.
type Config struct {
	Tracing  TracingConfig
	Logging  LogConfig
	Metrics  MetricsConfig
	Database DatabaseConfig
}

type TracingConfig struct {
	Disabled       bool    `envconfig:"OTEL_SDK_DISABLED" default:"false"`
	ServiceName    string  `envconfig:"OTEL_SERVICE_NAME" default:"functrace"`
	ServiceVersion string  `envconfig:"OTEL_SERVICE_VERSION" default:"0.1.0"`
	ExporterType   string  `envconfig:"OTEL_EXPORTER_TYPE" default:"console"`
	Endpoint       string  `envconfig:"OTEL_EXPORTER_OTLP_ENDPOINT" default:"localhost:4317"`
	Insecure       bool    `envconfig:"OTEL_EXPORTER_OTLP_INSECURE" default:"true"`
	SampleRatio    float64 `envconfig:"OTEL_TRACES_SAMPLER_ARG" default:"1.0"`
}

// Enabled reports whether spans are emitted at all.
func (t TracingConfig) Enabled() bool {
	return !t.Disabled && t.ExporterType != ExporterNone
}

type LogConfig struct {
	Level       string `envconfig:"OTEL_LOG_LEVEL" default:"info"`
	Development bool   `envconfig:"LOG_DEV" default:"false"`
}

type MetricsConfig struct {
	// Addr serves /metrics; empty disables the endpoint.
	Addr string `envconfig:"METRICS_ADDR" default:":9090"`
}

type DatabaseConfig struct {
	DSN string `envconfig:"DATABASE_DSN"`
}

// Load reads the configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	cfg.Tracing.ExporterType = strings.ToLower(strings.TrimSpace(cfg.Tracing.ExporterType))
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.Tracing.SampleRatio < 0 || c.Tracing.SampleRatio > 1 {
		return fmt.Errorf("%w: OTEL_TRACES_SAMPLER_ARG must be within [0, 1], got %v",
			apperror.ErrInvalidConfig, c.Tracing.SampleRatio)
	}
	if c.Tracing.Enabled() && c.Tracing.ServiceName == "" {
		return fmt.Errorf("%w: OTEL_SERVICE_NAME is empty", apperror.ErrInvalidConfig)
	}
	if c.Tracing.Enabled() && c.Tracing.ExporterType == "store" && c.Database.DSN == "" {
		return fmt.Errorf("%w: the store exporter needs DATABASE_DSN", apperror.ErrInvalidConfig)
	}
	return nil
}

// Default returns the configuration used when no variable is set.
func Default() *Config {
	return &Config{
		Tracing: TracingConfig{
			ServiceName:    "functrace",
			ServiceVersion: "0.1.0",
			ExporterType:   "console",
			Endpoint:       "localhost:4317",
			Insecure:       true,
			SampleRatio:    1.0,
		},
		Logging: LogConfig{
			Level: "info",
		},
		Metrics: MetricsConfig{
			Addr: ":9090",
		},
	}
}
