package manager

import "errors"

// Op identifies the manager call that failed.
type Op string

const (
	// OpConnect marks a failure creating a connection.
	OpConnect Op = "connect"
	// OpValidate marks a failure of the liveness probe.
	OpValidate Op = "validate"
)

const errorPrefix = "ADBC error: "

// Error wraps an error returned by the database capability. The original
// error is kept as Cause and is reachable through errors.Unwrap, errors.Is
// and errors.As.
type Error struct {
	Op    Op
	Cause error
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Cause == nil {
		return errorPrefix + "<nil>"
	}
	return errorPrefix + e.Cause.Error()
}

// Unwrap returns the original database error
func (e *Error) Unwrap() error {
	return e.Cause
}

// FromDatabase wraps a database error. It returns nil for nil and returns
// err unchanged when it already is an *Error. An *Error buried deeper in the
// chain does not count: the outer error is still wrapped so the prefix and
// the direct cause are preserved.
func FromDatabase(err error) error {
	return wrap("", err)
}

func wrap(op Op, err error) error {
	if err == nil {
		return nil
	}
	if existing, ok := err.(*Error); ok {
		return existing
	}
	return &Error{Op: op, Cause: err}
}

// IsConnectError reports whether err came from Connect.
func IsConnectError(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Op == OpConnect
}

// IsValidationError reports whether err came from IsValid.
func IsValidationError(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Op == OpValidate
}
