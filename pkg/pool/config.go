package pool

import (
	"time"

	"github.com/ajitpratap0/adbcpool/pkg/errors"
)

// Config controls pool sizing and checkout behaviour.
type Config struct {
	// Name labels logs and metrics. Defaults to "default".
	Name string `yaml:"name" json:"name"`

	// MaxSize is the maximum number of connections. Defaults to 10.
	MaxSize int32 `yaml:"max_size" json:"max_size"`

	// TestOnCheckOut runs HasBroken and IsValid before a connection is
	// handed out. Defaults to true.
	TestOnCheckOut *bool `yaml:"test_on_check_out" json:"test_on_check_out"`

	// ConnectionTimeout bounds Get when the caller's context has no
	// deadline. Defaults to 30s.
	ConnectionTimeout time.Duration `yaml:"connection_timeout" json:"connection_timeout"`
}

const (
	defaultName              = "default"
	defaultMaxSize           = 10
	defaultConnectionTimeout = 30 * time.Second
)

// DefaultConfig returns a Config with every default applied.
func DefaultConfig() *Config {
	cfg := &Config{}
	cfg.ApplyDefaults()
	return cfg
}

// ApplyDefaults fills zero fields with their defaults.
func (c *Config) ApplyDefaults() {
	if c.Name == "" {
		c.Name = defaultName
	}
	if c.MaxSize == 0 {
		c.MaxSize = defaultMaxSize
	}
	if c.TestOnCheckOut == nil {
		enabled := true
		c.TestOnCheckOut = &enabled
	}
	if c.ConnectionTimeout == 0 {
		c.ConnectionTimeout = defaultConnectionTimeout
	}
}

// Validate checks the configuration after defaults are applied.
func (c *Config) Validate() error {
	if c.MaxSize < 1 {
		return errors.New(errors.ErrorTypeConfig, "pool max_size must be at least 1").
			WithDetail("max_size", c.MaxSize)
	}
	if c.ConnectionTimeout < 0 {
		return errors.New(errors.ErrorTypeConfig, "pool connection_timeout must not be negative").
			WithDetail("connection_timeout", c.ConnectionTimeout.String())
	}
	return nil
}

func (c *Config) testOnCheckOut() bool {
	return c.TestOnCheckOut == nil || *c.TestOnCheckOut
}
