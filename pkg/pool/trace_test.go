package pool_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/ajitpratap0/adbcpool/pkg/manager"
	"github.com/ajitpratap0/adbcpool/pkg/pool"
	"github.com/ajitpratap0/adbcpool/pkg/testutil"
)

func TestGetRecordsSpan(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	otel.SetTracerProvider(tp)
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	ctx, cancel := testutil.TestContext(t)
	defer cancel()

	db := testutil.NewFakeDatabase()
	mgr := manager.New(db, manager.WithLogger(testutil.TestLogger(t)))
	p, err := pool.New[manager.Connection](mgr, &pool.Config{Name: "traced"}, testutil.TestLogger(t))
	require.NoError(t, err)

	conn, err := p.Get(ctx)
	require.NoError(t, err)
	conn.Release()

	p.Close()
	_, err = p.Get(ctx)
	require.Error(t, err)

	spans := recorder.Ended()
	require.Len(t, spans, 2)
	assert.Equal(t, "pool.get", spans[0].Name())
	assert.Equal(t, codes.Unset, spans[0].Status().Code)
	assert.Equal(t, codes.Error, spans[1].Status().Code)
}
