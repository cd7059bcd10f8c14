package manager

import (
	"context"
	"io"
	"sync"

	"github.com/ajitpratap0/adbcpool/pkg/logger"
	"go.uber.org/zap"
)

// ConnectionManager creates and validates connections for a pool on top of
// a Database. It owns the database handle for its whole lifetime and a
// mutable, ordered list of connection options.
//
// All methods are safe for concurrent use. Options are expected to be
// configured before the manager is handed to a pool: Connect always sees
// one committed option list, but mutating options while connections are
// being created concurrently gives no ordering guarantee between the two.
type ConnectionManager struct {
	database Database
	logger   *zap.Logger

	mu      sync.RWMutex
	options []Option
}

// ManagerOption configures a ConnectionManager.
type ManagerOption func(*ConnectionManager)

// WithLogger sets the logger used for debug output.
func WithLogger(l *zap.Logger) ManagerOption {
	return func(m *ConnectionManager) {
		if l != nil {
			m.logger = l.With(zap.String("component", "connection_manager"))
		}
	}
}

// New creates a manager that takes ownership of database. Connections are
// created without options until some are added.
func New(database Database, opts ...ManagerOption) *ConnectionManager {
	m := &ConnectionManager{database: database}
	for _, opt := range opts {
		opt(m)
	}
	if m.logger == nil {
		m.logger = logger.With(zap.String("component", "connection_manager"))
	}
	return m
}

// WithOptions creates a manager whose option list starts as a copy of
// options, in the given order and including duplicates.
func WithOptions(database Database, options []Option, opts ...ManagerOption) *ConnectionManager {
	m := New(database, opts...)
	m.options = cloneOptions(options)
	return m
}

// AddOption appends an option applied to every new connection. Existing
// options with the same key are kept; how duplicates resolve is up to the
// database.
func (m *ConnectionManager) AddOption(key, value string) {
	m.mu.Lock()
	m.options = append(m.options, Option{Key: key, Value: value})
	m.mu.Unlock()
}

// SetOptions replaces the option list with a copy of options.
func (m *ConnectionManager) SetOptions(options []Option) {
	m.mu.Lock()
	m.options = cloneOptions(options)
	m.mu.Unlock()
}

// ClearOptions removes all options.
func (m *ConnectionManager) ClearOptions() {
	m.mu.Lock()
	m.options = nil
	m.mu.Unlock()
}

// Options returns a copy of the current option list.
func (m *ConnectionManager) Options() []Option {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return cloneOptions(m.options)
}

// Connect creates a new connection. With no options configured it uses
// Database.NewConnection, otherwise Database.NewConnectionWithOptions with
// every option in order. Failures are returned as *Error and never retried.
//
// ctx is passed to the database untouched; the manager imposes no timeout.
// Pool and driver tags on ctx (see logger.ContextWithPool) are added to the
// manager's log entries.
func (m *ConnectionManager) Connect(ctx context.Context) (Connection, error) {
	m.mu.RLock()
	snapshot := cloneOptions(m.options)
	m.mu.RUnlock()

	var (
		conn Connection
		err  error
	)
	if len(snapshot) == 0 {
		conn, err = m.database.NewConnection(ctx)
	} else {
		conn, err = m.database.NewConnectionWithOptions(ctx, toConnectionOptions(snapshot))
	}
	log := m.logger.With(logger.ContextFields(ctx)...)
	if err != nil {
		log.Debug("connection creation failed",
			zap.Int("options", len(snapshot)),
			zap.Error(err))
		return nil, wrap(OpConnect, err)
	}

	log.Debug("connection created", zap.Int("options", len(snapshot)))
	return conn, nil
}

// IsValid probes conn by creating a statement and closing it right away.
// A connection is valid when the statement can be created.
func (m *ConnectionManager) IsValid(conn Connection) error {
	stmt, err := conn.NewStatement()
	if err != nil {
		m.logger.Debug("connection validation failed", zap.Error(err))
		return wrap(OpValidate, err)
	}
	if stmt != nil {
		if cerr := stmt.Close(); cerr != nil {
			m.logger.Debug("closing probe statement failed", zap.Error(cerr))
		}
	}
	return nil
}

// HasBroken always returns false. ADBC offers no way to tell a connection
// is broken without using it, so detection is left to IsValid.
func (m *ConnectionManager) HasBroken(Connection) bool {
	return false
}

// Close releases the database handle when it implements io.Closer. The
// manager must not be used afterwards.
func (m *ConnectionManager) Close() error {
	if closer, ok := m.database.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}
