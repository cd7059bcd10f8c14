package driver

import (
	"testing"

	"github.com/apache/arrow-adbc/go/adbc"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/ajitpratap0/adbcpool/pkg/errors"
)

func TestCheckSnowflakeOptions(t *testing.T) {
	tests := []struct {
		name    string
		opts    map[string]string
		wantErr bool
	}{
		{"no uri", map[string]string{"username": "loader"}, false},
		{"valid dsn", map[string]string{adbc.OptionKeyURI: "loader:s3cret@myaccount/analytics/public"}, false},
		{"missing account", map[string]string{adbc.OptionKeyURI: "loader:s3cret@"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := checkSnowflakeOptions(tt.opts)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestRegistryOpenRunsCheck(t *testing.T) {
	r := NewRegistry(zaptest.NewLogger(t))
	fake := &fakeADBCDriver{}
	require.NoError(t, r.Register("fake", func(memory.Allocator) adbc.Driver { return fake }))
	require.NoError(t, r.RegisterCheck("fake", checkSnowflakeOptions))

	_, err := r.Open("fake", map[string]string{adbc.OptionKeyURI: "loader:s3cret@"}, nil)
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeConfig))
	assert.Nil(t, fake.opts, "driver must not see rejected options")

	assert.Error(t, r.RegisterCheck("missing", checkSnowflakeOptions))
}
