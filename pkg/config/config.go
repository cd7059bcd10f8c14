package config

import (
	"github.com/ajitpratap0/adbcpool/pkg/errors"
	"github.com/ajitpratap0/adbcpool/pkg/logger"
	"github.com/ajitpratap0/adbcpool/pkg/manager"
	"github.com/ajitpratap0/adbcpool/pkg/observability"
	"github.com/ajitpratap0/adbcpool/pkg/pool"
)

// Config describes one pooled ADBC database.
type Config struct {
	// Driver is the registered driver name (e.g., "flightsql", "snowflake")
	Driver string `yaml:"driver" json:"driver"`

	// Database holds the options passed to the driver when creating the
	// database, such as "uri" or "username".
	Database map[string]string `yaml:"database" json:"database"`

	// ConnectionOptions are applied, in order, to every new connection.
	// Duplicate keys are kept.
	ConnectionOptions []manager.Option `yaml:"connection_options" json:"connection_options"`

	// Pool controls sizing and checkout validation
	Pool pool.Config `yaml:"pool" json:"pool"`

	// Logging configures the global logger
	Logging logger.Config `yaml:"logging" json:"logging"`

	// Metrics configures the Prometheus endpoint
	Metrics MetricsConfig `yaml:"metrics" json:"metrics"`

	// Tracing configures OpenTelemetry span export
	Tracing observability.TracingConfig `yaml:"tracing" json:"tracing"`
}

// MetricsConfig contains the metrics endpoint settings.
type MetricsConfig struct {
	// Addr is the listen address for /metrics; empty disables the endpoint
	Addr string `yaml:"addr" json:"addr"`
}

// ApplyDefaults fills unset fields with defaults.
func (c *Config) ApplyDefaults() {
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Encoding == "" {
		c.Logging.Encoding = "json"
	}
	c.Pool.ApplyDefaults()
	c.Tracing.ApplyDefaults()
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if c.Driver == "" {
		return errors.New(errors.ErrorTypeConfig, "driver is required").
			WithDetail("field", "driver")
	}
	for i, opt := range c.ConnectionOptions {
		if opt.Key == "" {
			return errors.Newf(errors.ErrorTypeConfig, "connection_options[%d] has an empty key", i).
				WithDetail("field", "connection_options")
		}
	}
	switch c.Logging.Encoding {
	case "json", "console":
	default:
		return errors.Newf(errors.ErrorTypeConfig, "unsupported log encoding %q", c.Logging.Encoding).
			WithDetail("field", "logging.encoding")
	}
	if err := c.Tracing.Validate(); err != nil {
		return err
	}
	return c.Pool.Validate()
}
