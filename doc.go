// Package adbcpool pools ADBC (Arrow Database Connectivity) connections.
//
// An ADBC database handle can open many connections but has no pooling of
// its own. adbcpool supplies the adapter a generic pool needs: a connection
// manager that creates connections with an ordered list of options, probes
// them with a throwaway statement, and reports every database failure as a
// single error kind with the original cause attached.
//
// # Quick Start
//
//	db, err := driver.Open("flightsql", map[string]string{
//	    adbc.OptionKeyURI: "grpc://localhost:31337",
//	}, nil)
//	if err != nil {
//	    return err
//	}
//
//	mgr := manager.WithOptions(db, []manager.Option{
//	    {Key: adbc.OptionKeyAutoCommit, Value: adbc.OptionValueDisabled},
//	})
//	defer mgr.Close()
//
//	p, err := pool.New[manager.Connection](mgr, &pool.Config{MaxSize: 4}, logger.Get())
//	if err != nil {
//	    return err
//	}
//	defer p.Close()
//
//	conn, err := p.Get(ctx)
//	if err != nil {
//	    return err
//	}
//	defer conn.Release()
//
// # Key Packages
//
//	pkg/manager       - Connection manager, option list and ADBC error adapter
//	pkg/pool          - Generic pool facade with checkout validation
//	pkg/driver        - ADBC driver registry and capability binding
//	pkg/config        - YAML configuration with ${VAR} substitution
//	pkg/errors        - Structured error handling
//	pkg/logger        - Structured logging
//	pkg/metrics       - Prometheus metrics
//	pkg/observability - OpenTelemetry tracing
//
// # Command Line
//
//	adbcpool drivers
//	adbcpool check --config pool.yaml --connections 4 --metrics-addr :9090
//
// Flags can also be set through ADBCPOOL_* environment variables.
package adbcpool
