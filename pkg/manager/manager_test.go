package manager_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/ajitpratap0/adbcpool/pkg/logger"
	"github.com/ajitpratap0/adbcpool/pkg/manager"
	"github.com/ajitpratap0/adbcpool/pkg/testutil"
)

func newManager(t *testing.T, db manager.Database, options ...manager.Option) *manager.ConnectionManager {
	t.Helper()
	if options == nil {
		return manager.New(db, manager.WithLogger(testutil.TestLogger(t)))
	}
	return manager.WithOptions(db, options, manager.WithLogger(testutil.TestLogger(t)))
}

func TestNewStartsWithoutOptions(t *testing.T) {
	m := newManager(t, testutil.NewFakeDatabase())
	assert.Empty(t, m.Options())
}

func TestWithOptionsKeepsOrderAndDuplicates(t *testing.T) {
	opts := []manager.Option{
		{Key: "isolation_level", Value: "read_committed"},
		{Key: "timeout", Value: "30"},
		{Key: "isolation_level", Value: "serializable"},
	}
	m := newManager(t, testutil.NewFakeDatabase(), opts...)

	assert.Equal(t, opts, m.Options())
}

func TestWithOptionsCopiesInput(t *testing.T) {
	opts := []manager.Option{{Key: "a", Value: "1"}}
	m := newManager(t, testutil.NewFakeDatabase(), opts...)

	opts[0].Value = "changed"
	assert.Equal(t, "1", m.Options()[0].Value)
}

func TestAddOptionAppendsInOrder(t *testing.T) {
	m := newManager(t, testutil.NewFakeDatabase())

	m.AddOption("a", "1")
	m.AddOption("b", "2")
	m.AddOption("a", "3")

	assert.Equal(t, []manager.Option{
		{Key: "a", Value: "1"},
		{Key: "b", Value: "2"},
		{Key: "a", Value: "3"},
	}, m.Options())
}

func TestClearOptions(t *testing.T) {
	m := newManager(t, testutil.NewFakeDatabase(), manager.Option{Key: "a", Value: "1"})
	m.AddOption("b", "2")

	m.ClearOptions()
	assert.Empty(t, m.Options())

	m.ClearOptions()
	assert.Empty(t, m.Options())
}

func TestSetOptionsReplaces(t *testing.T) {
	m := newManager(t, testutil.NewFakeDatabase(), manager.Option{Key: "a", Value: "1"})

	m.SetOptions([]manager.Option{{Key: "b", Value: "2"}})
	assert.Equal(t, []manager.Option{{Key: "b", Value: "2"}}, m.Options())
}

func TestOptionsReturnsCopy(t *testing.T) {
	m := newManager(t, testutil.NewFakeDatabase())
	m.AddOption("a", "1")

	view := m.Options()
	view[0].Key = "mutated"

	assert.Equal(t, "a", m.Options()[0].Key)
}

func TestConnectWithoutOptionsUsesPlainPath(t *testing.T) {
	db := testutil.NewFakeDatabase()
	m := newManager(t, db)

	conn, err := m.Connect(context.Background())
	require.NoError(t, err)
	require.NotNil(t, conn)

	assert.Equal(t, 1, db.PlainCalls())
	assert.Empty(t, db.OptionCalls())
}

func TestConnectWithOptionsPassesPairsVerbatim(t *testing.T) {
	db := testutil.NewFakeDatabase()
	db.Stub = &testutil.FakeConnection{ID: 42}
	m := newManager(t, db, manager.Option{Key: "timeout", Value: "30"})

	conn, err := m.Connect(context.Background())
	require.NoError(t, err)

	assert.Same(t, db.Stub, conn)
	assert.Equal(t, 0, db.PlainCalls())
	assert.Equal(t, [][]manager.ConnectionOption{
		{{Key: "timeout", Value: "30"}},
	}, db.OptionCalls())
}

func TestConnectPassesEveryPairInOrder(t *testing.T) {
	db := testutil.NewFakeDatabase()
	m := newManager(t, db)
	m.AddOption("adbc.connection.autocommit", "false")
	m.AddOption("adbc.connection.catalog", "main")
	m.AddOption("adbc.connection.autocommit", "true")

	_, err := m.Connect(context.Background())
	require.NoError(t, err)

	calls := db.OptionCalls()
	require.Len(t, calls, 1)
	assert.Equal(t, []manager.ConnectionOption{
		{Key: "adbc.connection.autocommit", Value: "false"},
		{Key: "adbc.connection.catalog", Value: "main"},
		{Key: "adbc.connection.autocommit", Value: "true"},
	}, calls[0])
}

func TestConnectFollowsLatestMutation(t *testing.T) {
	db := testutil.NewFakeDatabase()
	m := newManager(t, db, manager.Option{Key: "a", Value: "1"})

	_, err := m.Connect(context.Background())
	require.NoError(t, err)

	m.ClearOptions()
	_, err = m.Connect(context.Background())
	require.NoError(t, err)

	m.AddOption("b", "2")
	_, err = m.Connect(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, db.PlainCalls())
	assert.Equal(t, [][]manager.ConnectionOption{
		{{Key: "a", Value: "1"}},
		{{Key: "b", Value: "2"}},
	}, db.OptionCalls())
}

func TestConnectWrapsDatabaseError(t *testing.T) {
	tests := []struct {
		name    string
		options []manager.Option
	}{
		{"no options", nil},
		{"with options", []manager.Option{{Key: "k", Value: "v"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cause := errors.New("connection refused")
			db := testutil.NewFakeDatabase()
			db.ConnectErr = cause
			m := newManager(t, db, tt.options...)

			conn, err := m.Connect(context.Background())
			require.Error(t, err)
			assert.Nil(t, conn)

			var wrapped *manager.Error
			require.ErrorAs(t, err, &wrapped)
			assert.Equal(t, manager.OpConnect, wrapped.Op)
			assert.Same(t, cause, wrapped.Cause)
			assert.Equal(t, "ADBC error: connection refused", err.Error())
			assert.True(t, manager.IsConnectError(err))
		})
	}
}

func TestConnectLogsContextTags(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	m := manager.New(testutil.NewFakeDatabase(), manager.WithLogger(zap.New(core)))

	ctx := logger.ContextWithDriver(logger.ContextWithPool(context.Background(), "warehouse"), "flightsql")
	_, err := m.Connect(ctx)
	require.NoError(t, err)

	entries := logs.FilterMessage("connection created").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "warehouse", fields["pool"])
	assert.Equal(t, "flightsql", fields["driver"])
	assert.Equal(t, "connection_manager", fields["component"])
}

func TestConnectDoesNotRetry(t *testing.T) {
	db := testutil.NewFakeDatabase()
	db.ConnectErr = errors.New("down")
	m := newManager(t, db)

	_, err := m.Connect(context.Background())
	require.Error(t, err)
	assert.Equal(t, 1, db.PlainCalls())
}

func TestConnectCallsAreIndependent(t *testing.T) {
	db := testutil.NewFakeDatabase()
	m := newManager(t, db)

	first, err := m.Connect(context.Background())
	require.NoError(t, err)
	second, err := m.Connect(context.Background())
	require.NoError(t, err)

	assert.NotSame(t, first, second)
	assert.Len(t, db.Created(), 2)
}

func TestIsValidSucceedsWhenStatementCreated(t *testing.T) {
	m := newManager(t, testutil.NewFakeDatabase())
	conn := &testutil.FakeConnection{ID: 1}

	for i := 0; i < 3; i++ {
		assert.NoError(t, m.IsValid(conn))
	}
	assert.Equal(t, 3, conn.Statements())
}

func TestIsValidWrapsStatementError(t *testing.T) {
	m := newManager(t, testutil.NewFakeDatabase())
	cause := errors.New("server closed the connection unexpectedly")
	conn := &testutil.FakeConnection{ID: 1}
	conn.SetStatementErr(cause)

	err := m.IsValid(conn)
	require.Error(t, err)

	assert.Contains(t, err.Error(), "server closed the connection unexpectedly")
	assert.Same(t, cause, errors.Unwrap(err))
	assert.True(t, manager.IsValidationError(err))
	assert.False(t, manager.IsConnectError(err))
}

func TestIsValidWrapsErrorThatCarriesAnotherAdapterError(t *testing.T) {
	m := newManager(t, testutil.NewFakeDatabase())
	inner := &manager.Error{Op: manager.OpConnect, Cause: errors.New("upstream connect failed")}
	cause := fmt.Errorf("proxy statement: %w", inner)
	conn := &testutil.FakeConnection{ID: 1}
	conn.SetStatementErr(cause)

	err := m.IsValid(conn)
	require.Error(t, err)

	assert.True(t, strings.HasPrefix(err.Error(), "ADBC error: proxy statement:"))
	assert.Same(t, cause, errors.Unwrap(err))
	assert.True(t, manager.IsValidationError(err))
	assert.False(t, manager.IsConnectError(err))
}

func TestHasBrokenAlwaysFalse(t *testing.T) {
	m := newManager(t, testutil.NewFakeDatabase())

	healthy := &testutil.FakeConnection{ID: 1}
	broken := &testutil.FakeConnection{ID: 2}
	broken.Broken.Store(true)
	broken.SetStatementErr(errors.New("gone"))

	assert.False(t, m.HasBroken(healthy))
	assert.False(t, m.HasBroken(broken))
	assert.Zero(t, broken.Statements(), "fast check must not exercise the connection")
}

func TestCloseClosesDatabase(t *testing.T) {
	db := testutil.NewFakeDatabase()
	m := newManager(t, db)

	require.NoError(t, m.Close())
	assert.Equal(t, 1, db.CloseCount())
}

func TestConcurrentConnect(t *testing.T) {
	db := testutil.NewFakeDatabase()
	m := newManager(t, db, manager.Option{Key: "k", Value: "v"})

	const workers = 16
	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			conn, err := m.Connect(context.Background())
			if err != nil {
				errs <- err
				return
			}
			if err := m.IsValid(conn); err != nil {
				errs <- fmt.Errorf("validate: %w", err)
			}
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Error(err)
	}
	assert.Len(t, db.OptionCalls(), workers)
	assert.Len(t, db.Created(), workers)
}
