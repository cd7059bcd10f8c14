package pool

import (
	"context"
	stderrors "errors"
	"io"
	"sync/atomic"
	"time"

	"github.com/jackc/puddle/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/ajitpratap0/adbcpool/pkg/errors"
	"github.com/ajitpratap0/adbcpool/pkg/logger"
	"github.com/ajitpratap0/adbcpool/pkg/metrics"
)

// Manager is the contract a pool needs from its connection factory.
// *manager.ConnectionManager implements Manager[manager.Connection].
type Manager[C any] interface {
	// Connect creates a new connection.
	Connect(ctx context.Context) (C, error)
	// IsValid reports whether conn is still usable.
	IsValid(conn C) error
	// HasBroken is a cheap check run before IsValid and on release.
	HasBroken(conn C) bool
}

var tracer trace.Tracer = otel.Tracer("github.com/ajitpratap0/adbcpool/pkg/pool")

// Pool lends connections created by a Manager.
type Pool[C any] struct {
	name    string
	config  *Config
	manager Manager[C]
	pool    *puddle.Pool[C]
	logger  *zap.Logger

	validationFailures int64
}

// Stats provides statistics about the pool's resource utilization.
type Stats struct {
	Name                    string        `json:"name"`
	TotalConnections        int32         `json:"total_connections"`
	IdleConnections         int32         `json:"idle_connections"`
	AcquiredConnections     int32         `json:"acquired_connections"`
	ConstructingConnections int32         `json:"constructing_connections"`
	MaxConnections          int32         `json:"max_connections"`
	AcquireCount            int64         `json:"acquire_count"`
	EmptyAcquireCount       int64         `json:"empty_acquire_count"`
	CanceledAcquireCount    int64         `json:"canceled_acquire_count"`
	AcquireDuration         time.Duration `json:"acquire_duration"`
	ValidationFailures      int64         `json:"validation_failures"`
}

// New creates a pool on top of m. A nil cfg means DefaultConfig; a nil
// logger disables logging.
func New[C any](m Manager[C], cfg *Config, log *zap.Logger) (*Pool[C], error) {
	if m == nil {
		return nil, errors.New(errors.ErrorTypeConfig, "pool manager is required")
	}
	if cfg == nil {
		cfg = DefaultConfig()
	} else {
		copied := *cfg
		cfg = &copied
		cfg.ApplyDefaults()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = zap.NewNop()
	}

	p := &Pool[C]{
		name:    cfg.Name,
		config:  cfg,
		manager: m,
		logger:  log.With(zap.String("component", "connection_pool"), zap.String("pool", cfg.Name)),
	}

	inner, err := puddle.NewPool(&puddle.Config[C]{
		Constructor: p.construct,
		Destructor:  p.destroy,
		MaxSize:     cfg.MaxSize,
	})
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeConfig, "failed to create pool")
	}
	p.pool = inner

	p.logger.Info("connection pool created",
		zap.Int32("max_size", cfg.MaxSize),
		zap.Bool("test_on_check_out", cfg.testOnCheckOut()),
		zap.Duration("connection_timeout", cfg.ConnectionTimeout))

	return p, nil
}

func (p *Pool[C]) construct(ctx context.Context) (C, error) {
	conn, err := p.manager.Connect(ctx)
	if err != nil {
		metrics.ConnectionErrors.WithLabelValues(p.name, "connect").Inc()
		p.logger.Warn("failed to create connection", zap.Error(err))
		return conn, err
	}
	metrics.ConnectionsCreated.WithLabelValues(p.name).Inc()
	return conn, nil
}

func (p *Pool[C]) destroy(conn C) {
	metrics.ConnectionsClosed.WithLabelValues(p.name).Inc()
	if closer, ok := any(conn).(io.Closer); ok {
		if err := closer.Close(); err != nil {
			p.logger.Debug("error closing connection", zap.Error(err))
		}
	}
}

// Get checks out a connection. When TestOnCheckOut is enabled a connection
// failing HasBroken or IsValid is destroyed and another one is acquired.
// Get gives up when ctx ends, or after ConnectionTimeout when ctx carries no
// deadline.
func (p *Pool[C]) Get(ctx context.Context) (*Conn[C], error) {
	ctx = logger.ContextWithPool(ctx, p.name)
	ctx, span := tracer.Start(ctx, "pool.get", trace.WithAttributes(attribute.String("pool.name", p.name)))
	defer span.End()

	if _, ok := ctx.Deadline(); !ok && p.config.ConnectionTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.config.ConnectionTimeout)
		defer cancel()
	}

	timer := metrics.NewTimer()
	conn, err := p.acquire(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "acquire failed")
		return nil, err
	}
	metrics.AcquireLatency.WithLabelValues(p.name).Observe(timer.Stop().Seconds())
	return conn, nil
}

func (p *Pool[C]) acquire(ctx context.Context) (*Conn[C], error) {
	var lastErr error
	attempts := 0
	for {
		if ctx.Err() != nil {
			return nil, p.timeoutError(ctx, lastErr, attempts)
		}

		res, err := p.pool.Acquire(ctx)
		if err != nil {
			switch {
			case stderrors.Is(err, puddle.ErrClosedPool):
				return nil, errors.Wrap(err, errors.ErrorTypeClosed, "pool is closed")
			case ctx.Err() != nil:
				if lastErr == nil {
					lastErr = err
				}
				return nil, p.timeoutError(ctx, lastErr, attempts)
			default:
				return nil, errors.Wrap(err, errors.ErrorTypeConnection, "failed to create connection").
					WithDetail("pool", p.name)
			}
		}
		attempts++

		if !p.config.testOnCheckOut() {
			return &Conn[C]{res: res, pool: p}, nil
		}

		conn := res.Value()
		if p.manager.HasBroken(conn) {
			p.logger.Debug("discarding broken connection on checkout")
			res.Destroy()
			continue
		}
		if err := p.manager.IsValid(conn); err != nil {
			lastErr = err
			atomic.AddInt64(&p.validationFailures, 1)
			metrics.ConnectionErrors.WithLabelValues(p.name, "validate").Inc()
			p.logger.Warn("discarding invalid connection on checkout",
				zap.Error(err),
				zap.Int("attempt", attempts))
			res.Destroy()
			continue
		}

		return &Conn[C]{res: res, pool: p}, nil
	}
}

func (p *Pool[C]) timeoutError(ctx context.Context, lastErr error, attempts int) error {
	cause := lastErr
	if cause == nil {
		cause = ctx.Err()
	}
	return errors.Wrap(cause, errors.ErrorTypeTimeout, "timed out waiting for a valid connection").
		WithDetail("pool", p.name).
		WithDetail("attempts", attempts)
}

// Stats returns a snapshot of pool statistics.
func (p *Pool[C]) Stats() Stats {
	s := p.pool.Stat()
	return Stats{
		Name:                    p.name,
		TotalConnections:        s.TotalResources(),
		IdleConnections:         s.IdleResources(),
		AcquiredConnections:     s.AcquiredResources(),
		ConstructingConnections: s.ConstructingResources(),
		MaxConnections:          s.MaxResources(),
		AcquireCount:            s.AcquireCount(),
		EmptyAcquireCount:       s.EmptyAcquireCount(),
		CanceledAcquireCount:    s.CanceledAcquireCount(),
		AcquireDuration:         s.AcquireDuration(),
		ValidationFailures:      atomic.LoadInt64(&p.validationFailures),
	}
}

// MetricsSnapshot implements metrics.StatsSource.
func (p *Pool[C]) MetricsSnapshot() metrics.PoolStats {
	s := p.Stats()
	return metrics.PoolStats{
		TotalConnections:    s.TotalConnections,
		IdleConnections:     s.IdleConnections,
		AcquiredConnections: s.AcquiredConnections,
		MaxConnections:      s.MaxConnections,
		AcquireCount:        s.AcquireCount,
		ValidationFailures:  s.ValidationFailures,
	}
}

// Name returns the pool name used in logs and metrics.
func (p *Pool[C]) Name() string {
	return p.name
}

// Close destroys idle connections, rejects further Get calls and blocks
// until every checked-out connection has been released.
func (p *Pool[C]) Close() {
	p.pool.Close()
	p.logger.Info("connection pool closed")
}

// Conn is a checked-out connection. It must be released exactly once;
// further Release or Destroy calls are ignored.
type Conn[C any] struct {
	res  *puddle.Resource[C]
	pool *Pool[C]
	done atomic.Bool
}

// Value returns the underlying connection.
func (c *Conn[C]) Value() C {
	return c.res.Value()
}

// Release returns the connection to the pool, or destroys it when the
// manager reports it broken.
func (c *Conn[C]) Release() {
	if !c.done.CompareAndSwap(false, true) {
		return
	}
	if c.pool.manager.HasBroken(c.res.Value()) {
		c.pool.logger.Debug("destroying broken connection on release")
		c.res.Destroy()
		return
	}
	c.res.Release()
}

// Destroy closes the connection and removes it from the pool.
func (c *Conn[C]) Destroy() {
	if !c.done.CompareAndSwap(false, true) {
		return
	}
	c.res.Destroy()
}
