package driver

import (
	"context"
	"io"

	"github.com/apache/arrow-adbc/go/adbc"
	"go.uber.org/multierr"

	"github.com/ajitpratap0/adbcpool/pkg/manager"
)

// Database exposes an adbc.Database through manager.Database.
type Database struct {
	db adbc.Database
}

var (
	_ manager.Database = (*Database)(nil)
	_ io.Closer        = (*Database)(nil)
)

// NewDatabase wraps db. The returned Database takes ownership of db.
func NewDatabase(db adbc.Database) *Database {
	return &Database{db: db}
}

// Raw returns the wrapped ADBC database.
func (d *Database) Raw() adbc.Database {
	return d.db
}

// NewConnection opens a connection with the database's own defaults.
func (d *Database) NewConnection(ctx context.Context) (manager.Connection, error) {
	cnxn, err := d.db.Open(ctx)
	if err != nil {
		return nil, err
	}
	return &Connection{conn: cnxn}, nil
}

// NewConnectionWithOptions opens a connection and sets each option on it in
// order. Go ADBC drivers initialize connections inside Open, so options go
// through adbc.PostInitOptions. If any option is rejected the connection is
// closed and the driver's error returned.
func (d *Database) NewConnectionWithOptions(ctx context.Context, opts []manager.ConnectionOption) (manager.Connection, error) {
	cnxn, err := d.db.Open(ctx)
	if err != nil {
		return nil, err
	}

	setter, ok := cnxn.(adbc.PostInitOptions)
	if !ok {
		err := adbc.Error{
			Code: adbc.StatusNotImplemented,
			Msg:  "connection does not support setting options",
		}
		return nil, multierr.Append(err, cnxn.Close())
	}

	for _, opt := range opts {
		if err := setter.SetOption(string(opt.Key), string(opt.Value)); err != nil {
			return nil, multierr.Append(err, cnxn.Close())
		}
	}
	return &Connection{conn: cnxn}, nil
}

// Close releases the ADBC database if the driver supports it.
func (d *Database) Close() error {
	if closer, ok := d.db.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

// Connection exposes an adbc.Connection through manager.Connection.
type Connection struct {
	conn adbc.Connection
}

var (
	_ manager.Connection = (*Connection)(nil)
	_ io.Closer          = (*Connection)(nil)
)

// Raw returns the ADBC connection for running queries.
func (c *Connection) Raw() adbc.Connection {
	return c.conn
}

// NewStatement creates a statement on the connection.
func (c *Connection) NewStatement() (manager.Statement, error) {
	stmt, err := c.conn.NewStatement()
	if err != nil {
		return nil, err
	}
	return stmt, nil
}

// Close closes the ADBC connection.
func (c *Connection) Close() error {
	return c.conn.Close()
}
