package testutil

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/ajitpratap0/adbcpool/pkg/manager"
)

// FakeDatabase is a manager.Database that records which creation path was
// used. Connections it returns are *FakeConnection.
type FakeDatabase struct {
	mu sync.Mutex

	// ConnectErr, when set, is returned by both creation paths.
	ConnectErr error
	// Stub, when set, is returned instead of a fresh connection.
	Stub *FakeConnection

	plainCalls   int
	optionCalls  [][]manager.ConnectionOption
	created      []*FakeConnection
	closeCount   int
	nextConnID   int64
	statementErr error
}

var _ manager.Database = (*FakeDatabase)(nil)

// NewFakeDatabase returns an empty FakeDatabase.
func NewFakeDatabase() *FakeDatabase {
	return &FakeDatabase{}
}

// NewConnection implements manager.Database.
func (d *FakeDatabase) NewConnection(_ context.Context) (manager.Connection, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.plainCalls++
	return d.connectLocked()
}

// NewConnectionWithOptions implements manager.Database.
func (d *FakeDatabase) NewConnectionWithOptions(_ context.Context, opts []manager.ConnectionOption) (manager.Connection, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	recorded := make([]manager.ConnectionOption, len(opts))
	copy(recorded, opts)
	d.optionCalls = append(d.optionCalls, recorded)
	return d.connectLocked()
}

func (d *FakeDatabase) connectLocked() (manager.Connection, error) {
	if d.ConnectErr != nil {
		return nil, d.ConnectErr
	}
	if d.Stub != nil {
		return d.Stub, nil
	}
	d.nextConnID++
	conn := &FakeConnection{ID: d.nextConnID}
	conn.SetStatementErr(d.statementErr)
	d.created = append(d.created, conn)
	return conn, nil
}

// SetStatementErr makes every connection created from now on fail
// NewStatement with err.
func (d *FakeDatabase) SetStatementErr(err error) {
	d.mu.Lock()
	d.statementErr = err
	d.mu.Unlock()
}

// PlainCalls returns how many times NewConnection was invoked.
func (d *FakeDatabase) PlainCalls() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.plainCalls
}

// OptionCalls returns the options passed to each NewConnectionWithOptions
// invocation, in call order.
func (d *FakeDatabase) OptionCalls() [][]manager.ConnectionOption {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([][]manager.ConnectionOption, len(d.optionCalls))
	copy(out, d.optionCalls)
	return out
}

// Created returns the connections created so far.
func (d *FakeDatabase) Created() []*FakeConnection {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]*FakeConnection, len(d.created))
	copy(out, d.created)
	return out
}

// Close implements io.Closer.
func (d *FakeDatabase) Close() error {
	d.mu.Lock()
	d.closeCount++
	d.mu.Unlock()
	return nil
}

// CloseCount returns how many times Close was called.
func (d *FakeDatabase) CloseCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.closeCount
}

// FakeConnection is a manager.Connection whose statement creation can be
// made to fail.
type FakeConnection struct {
	ID int64

	// Broken is a marker for tests; the manager must ignore it.
	Broken atomic.Bool

	mu           sync.Mutex
	statementErr error
	statements   int
	closed       bool
}

var _ manager.Connection = (*FakeConnection)(nil)

// NewStatement implements manager.Connection.
func (c *FakeConnection) NewStatement() (manager.Statement, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.statements++
	if c.statementErr != nil {
		return nil, c.statementErr
	}
	return &FakeStatement{}, nil
}

// SetStatementErr makes NewStatement fail with err; nil restores success.
func (c *FakeConnection) SetStatementErr(err error) {
	c.mu.Lock()
	c.statementErr = err
	c.mu.Unlock()
}

// Statements returns how many statements were requested.
func (c *FakeConnection) Statements() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.statements
}

// Close implements io.Closer.
func (c *FakeConnection) Close() error {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()
	return nil
}

// Closed reports whether Close was called.
func (c *FakeConnection) Closed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// FakeStatement is the statement returned by FakeConnection.
type FakeStatement struct {
	closed atomic.Bool
}

// Close implements manager.Statement.
func (s *FakeStatement) Close() error {
	s.closed.Store(true)
	return nil
}
