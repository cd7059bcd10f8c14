package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrapNil(t *testing.T) {
	assert.Nil(t, Wrap(nil, ErrorTypeInternal, "nothing"))
}

func TestWrapPreservesCause(t *testing.T) {
	cause := fmt.Errorf("socket closed")
	err := Wrap(cause, ErrorTypeConnection, "open failed")

	require.NotNil(t, err)
	assert.Equal(t, "connection: open failed: socket closed", err.Error())
	assert.True(t, stderrors.Is(err, cause))
	assert.NotEmpty(t, err.Stack)
}

func TestWrapKeepsExistingStack(t *testing.T) {
	inner := New(ErrorTypeConfig, "bad value")
	outer := Wrap(inner, ErrorTypeValidation, "config rejected")

	assert.Equal(t, inner.Stack, outer.Stack)
	assert.True(t, IsType(outer, ErrorTypeValidation))
}

func TestNewf(t *testing.T) {
	err := Newf(ErrorTypeConfig, "driver %q not registered", "odbc")
	assert.Equal(t, `config: driver "odbc" not registered`, err.Error())
}

func TestIsType(t *testing.T) {
	err := fmt.Errorf("outer: %w", New(ErrorTypeTimeout, "deadline"))

	assert.True(t, IsType(err, ErrorTypeTimeout))
	assert.False(t, IsType(err, ErrorTypeConfig))
	assert.False(t, IsType(stderrors.New("plain"), ErrorTypeTimeout))
}

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"timeout", New(ErrorTypeTimeout, "x"), true},
		{"connection", New(ErrorTypeConnection, "x"), true},
		{"closed", New(ErrorTypeClosed, "x"), false},
		{"config", New(ErrorTypeConfig, "x"), false},
		{"plain", stderrors.New("x"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsRetryable(tt.err))
		})
	}
}

func TestWithDetail(t *testing.T) {
	err := New(ErrorTypeConfig, "invalid").
		WithDetail("field", "pool.max_size").
		WithDetail("value", -1)

	assert.Equal(t, "pool.max_size", err.Details["field"])
	assert.Equal(t, -1, err.Details["value"])
}
