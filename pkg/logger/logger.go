// Package logger provides structured logging for adbcpool
package logger

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	globalLogger *zap.Logger
	mu           sync.RWMutex
	once         sync.Once
)

// contextKey is the type for context keys
type contextKey string

const (
	// PoolKey is the context key for the pool name
	PoolKey contextKey = "pool"
	// DriverKey is the context key for the ADBC driver name
	DriverKey contextKey = "driver"
)

// Config represents logger configuration
type Config struct {
	Level       string   `yaml:"level" json:"level"`
	Development bool     `yaml:"development" json:"development"`
	Encoding    string   `yaml:"encoding" json:"encoding"` // json or console
	OutputPaths []string `yaml:"output_paths" json:"output_paths"`
}

// Init initializes the global logger. Only the first call has an effect.
func Init(cfg Config) error {
	var err error
	once.Do(func() {
		var l *zap.Logger
		l, err = New(cfg)
		if err != nil {
			return
		}
		mu.Lock()
		globalLogger = l
		mu.Unlock()
	})
	return err
}

// New builds a zap logger from cfg without touching the global logger
func New(cfg Config) (*zap.Logger, error) {
	levelText := cfg.Level
	if levelText == "" {
		levelText = "info"
	}
	level, err := zapcore.ParseLevel(levelText)
	if err != nil {
		return nil, fmt.Errorf("invalid log level: %w", err)
	}

	encoding := cfg.Encoding
	if encoding == "" {
		encoding = "json"
	}

	encoderConfig := zapcore.EncoderConfig{
		TimeKey:        "timestamp",
		LevelKey:       "level",
		NameKey:        "logger",
		CallerKey:      "caller",
		FunctionKey:    zapcore.OmitKey,
		MessageKey:     "message",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.LowercaseLevelEncoder,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.StringDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}

	if cfg.Development {
		encoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	outputPaths := cfg.OutputPaths
	if len(outputPaths) == 0 {
		outputPaths = []string{"stderr"}
	}

	zapCfg := zap.Config{
		Level:            zap.NewAtomicLevelAt(level),
		Development:      cfg.Development,
		Encoding:         encoding,
		EncoderConfig:    encoderConfig,
		OutputPaths:      outputPaths,
		ErrorOutputPaths: []string{"stderr"},
	}

	logger, err := zapCfg.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}

	if cfg.Development {
		logger = logger.WithOptions(zap.AddStacktrace(zapcore.ErrorLevel))
	}

	return logger, nil
}

// Get returns the global logger
func Get() *zap.Logger {
	mu.RLock()
	l := globalLogger
	mu.RUnlock()
	if l != nil {
		return l
	}

	if err := Init(Config{Level: "info", Encoding: "json"}); err == nil {
		mu.RLock()
		l = globalLogger
		mu.RUnlock()
	}
	if l == nil {
		// Init already ran with a broken config
		l = zap.NewNop()
	}
	return l
}

// ContextWithPool tags ctx with a pool name. An existing tag is kept.
func ContextWithPool(ctx context.Context, pool string) context.Context {
	if _, ok := ctx.Value(PoolKey).(string); ok {
		return ctx
	}
	return context.WithValue(ctx, PoolKey, pool)
}

// ContextWithDriver tags ctx with a driver name.
func ContextWithDriver(ctx context.Context, driver string) context.Context {
	return context.WithValue(ctx, DriverKey, driver)
}

// ContextFields returns the pool and driver tags carried by ctx as fields
func ContextFields(ctx context.Context) []zap.Field {
	var fields []zap.Field
	if pool, ok := ctx.Value(PoolKey).(string); ok {
		fields = append(fields, zap.String("pool", pool))
	}
	if driver, ok := ctx.Value(DriverKey).(string); ok {
		fields = append(fields, zap.String("driver", driver))
	}
	return fields
}

// WithContext returns the global logger with context values
func WithContext(ctx context.Context) *zap.Logger {
	return Get().With(ContextFields(ctx)...)
}

// With creates a child logger with additional fields
func With(fields ...zap.Field) *zap.Logger {
	return Get().With(fields...)
}

// Sync flushes any buffered log entries
func Sync() error {
	mu.RLock()
	defer mu.RUnlock()
	if globalLogger != nil {
		return globalLogger.Sync()
	}
	return nil
}
