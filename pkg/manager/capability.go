package manager

import "context"

// OptionKey is the database capability's representation of a connection
// option key.
type OptionKey string

// OptionValue is the database capability's representation of a connection
// option value.
type OptionValue string

// ConnectionOption is a single option as handed to
// Database.NewConnectionWithOptions.
type ConnectionOption struct {
	Key   OptionKey
	Value OptionValue
}

// Database is the set of lifecycle primitives the manager needs from a
// database handle. Implementations must be safe for concurrent calls; the
// manager adds no locking around them.
type Database interface {
	// NewConnection creates a connection with no initialization options.
	NewConnection(ctx context.Context) (Connection, error)
	// NewConnectionWithOptions creates a connection and applies opts in order.
	NewConnectionWithOptions(ctx context.Context, opts []ConnectionOption) (Connection, error)
}

// Connection is an open database connection. The manager only ever creates
// statements on it to probe liveness.
type Connection interface {
	NewStatement() (Statement, error)
}

// Statement is created and closed immediately by IsValid.
type Statement interface {
	Close() error
}
