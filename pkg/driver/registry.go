package driver

import (
	"sort"
	"sync"

	"github.com/apache/arrow-adbc/go/adbc"
	"github.com/apache/arrow-adbc/go/adbc/driver/flightsql"
	"github.com/apache/arrow-adbc/go/adbc/driver/snowflake"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"go.uber.org/zap"

	"github.com/ajitpratap0/adbcpool/pkg/errors"
	"github.com/ajitpratap0/adbcpool/pkg/logger"
)

// Factory creates an ADBC driver that allocates Arrow memory from alloc.
type Factory func(alloc memory.Allocator) adbc.Driver

// OptionCheck validates database options before a driver sees them.
type OptionCheck func(opts map[string]string) error

// Registry maps driver names to factories.
type Registry struct {
	factories map[string]Factory
	checks    map[string]OptionCheck
	mu        sync.RWMutex
	logger    *zap.Logger
}

// Global registry instance
var globalRegistry = newBuiltinRegistry()

// NewRegistry creates an empty registry. A nil logger means the global
// logger at the time of use.
func NewRegistry(l *zap.Logger) *Registry {
	return &Registry{
		factories: make(map[string]Factory),
		checks:    make(map[string]OptionCheck),
		logger:    l,
	}
}

func newBuiltinRegistry() *Registry {
	r := NewRegistry(nil)
	r.factories["flightsql"] = func(alloc memory.Allocator) adbc.Driver { return flightsql.NewDriver(alloc) }
	r.factories["snowflake"] = func(alloc memory.Allocator) adbc.Driver { return snowflake.NewDriver(alloc) }
	r.checks["snowflake"] = checkSnowflakeOptions
	return r
}

func (r *Registry) log() *zap.Logger {
	if r.logger != nil {
		return r.logger
	}
	return logger.With(zap.String("component", "driver_registry"))
}

// Register adds a factory under name.
func (r *Registry) Register(name string, factory Factory) error {
	if name == "" || factory == nil {
		return errors.New(errors.ErrorTypeValidation, "driver name and factory are required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.factories[name]; exists {
		return errors.Newf(errors.ErrorTypeConfig, "driver %s already registered", name)
	}

	r.factories[name] = factory
	r.log().Debug("driver registered", zap.String("name", name))
	return nil
}

// RegisterCheck attaches an option check to a registered driver, replacing
// any previous one.
func (r *Registry) RegisterCheck(name string, check OptionCheck) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.factories[name]; !exists {
		return errors.Newf(errors.ErrorTypeConfig, "driver %s not registered", name)
	}
	r.checks[name] = check
	return nil
}

// Open creates a database with the named driver. opts go to
// adbc.Driver.NewDatabase unchanged; a nil alloc means
// memory.DefaultAllocator.
func (r *Registry) Open(name string, opts map[string]string, alloc memory.Allocator) (*Database, error) {
	r.mu.RLock()
	factory, exists := r.factories[name]
	check := r.checks[name]
	r.mu.RUnlock()

	if !exists {
		return nil, errors.Newf(errors.ErrorTypeConfig, "driver %s not registered", name).
			WithDetail("available", r.List())
	}

	if check != nil {
		if err := check(opts); err != nil {
			return nil, errors.Wrap(err, errors.ErrorTypeConfig, "invalid database options").
				WithDetail("driver", name)
		}
	}

	if alloc == nil {
		alloc = memory.DefaultAllocator
	}

	db, err := factory(alloc).NewDatabase(opts)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeConnection, "failed to create database").
			WithDetail("driver", name)
	}

	r.log().Info("database opened", zap.String("driver", name), zap.Int("options", len(opts)))
	return NewDatabase(db), nil
}

// List returns registered driver names in sorted order.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Has reports whether name is registered.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, exists := r.factories[name]
	return exists
}

// Register adds a factory to the global registry.
func Register(name string, factory Factory) error {
	return globalRegistry.Register(name, factory)
}

// Open creates a database with a driver from the global registry.
func Open(name string, opts map[string]string, alloc memory.Allocator) (*Database, error) {
	return globalRegistry.Open(name, opts, alloc)
}

// List returns the drivers in the global registry.
func List() []string {
	return globalRegistry.List()
}
