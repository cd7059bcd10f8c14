package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"strings"
	"syscall"
	"time"

	"github.com/goccy/go-json"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/ajitpratap0/adbcpool/pkg/config"
	"github.com/ajitpratap0/adbcpool/pkg/driver"
	"github.com/ajitpratap0/adbcpool/pkg/logger"
	"github.com/ajitpratap0/adbcpool/pkg/manager"
	"github.com/ajitpratap0/adbcpool/pkg/metrics"
	"github.com/ajitpratap0/adbcpool/pkg/observability"
	"github.com/ajitpratap0/adbcpool/pkg/pool"
)

var version = "0.1.0"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "adbcpool",
		Short: "adbcpool - pooled ADBC connections",
		Long: `adbcpool manages ADBC (Arrow Database Connectivity) connections with a
generic connection pool. The CLI checks a pool configuration end to end.`,
		SilenceUsage: true,
	}

	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "adbcpool v%s\n", version)
			fmt.Fprintf(out, "Go version: %s\n", runtime.Version())
			fmt.Fprintf(out, "OS/Arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
		},
	})

	root.AddCommand(&cobra.Command{
		Use:   "drivers",
		Short: "List available ADBC drivers",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "Available drivers:")
			for _, name := range driver.List() {
				fmt.Fprintf(cmd.OutOrStdout(), "  - %s\n", name)
			}
		},
	})

	root.AddCommand(newCheckCmd())
	return root
}

func newCheckCmd() *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix("ADBCPOOL")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Open a pool from a config file and validate connections",
		Long: `Load a pool configuration, open the database, check out the requested
number of connections (each validated on checkout), release them and print
pool statistics as JSON.

Every flag can also be set through ADBCPOOL_<FLAG>, e.g. ADBCPOOL_CONFIG.

Example:
  adbcpool check --config pool.yaml --connections 4`,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return v.BindPFlags(cmd.Flags())
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(cmd, checkOptions{
				configPath:  v.GetString("config"),
				connections: v.GetInt("connections"),
				metricsAddr: v.GetString("metrics-addr"),
				logLevel:    v.GetString("log-level"),
				hold:        v.GetDuration("hold"),
				traceExport: v.GetString("trace-exporter"),
			})
		},
	}

	cmd.Flags().StringP("config", "c", "", "Path to the pool configuration YAML file")
	cmd.Flags().Int("connections", 1, "Number of connections to check out at once")
	cmd.Flags().String("metrics-addr", "", "Serve Prometheus metrics on this address while checking")
	cmd.Flags().String("log-level", "", "Override the configured log level (debug, info, warn, error)")
	cmd.Flags().Duration("hold", 0, "Keep connections checked out for this long before releasing")
	cmd.Flags().String("trace-exporter", "", "Override the configured trace exporter (none, stdout)")

	return cmd
}

type checkOptions struct {
	configPath  string
	connections int
	metricsAddr string
	logLevel    string
	hold        time.Duration
	traceExport string
}

func runCheck(cmd *cobra.Command, opts checkOptions) error {
	if opts.configPath == "" {
		return fmt.Errorf("--config is required")
	}
	if opts.connections < 1 {
		return fmt.Errorf("--connections must be at least 1")
	}

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return err
	}
	if opts.logLevel != "" {
		cfg.Logging.Level = opts.logLevel
	}
	if opts.metricsAddr != "" {
		cfg.Metrics.Addr = opts.metricsAddr
	}
	if opts.traceExport != "" {
		cfg.Tracing.Exporter = opts.traceExport
	}

	if err := logger.Init(cfg.Logging); err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logger.ContextWithDriver(logger.ContextWithPool(ctx, cfg.Pool.Name), cfg.Driver)
	log := logger.WithContext(ctx)

	cfg.Tracing.ServiceVersion = version
	shutdownTracing, err := observability.InitTracing(cfg.Tracing)
	if err != nil {
		return err
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(ctx); err != nil {
			log.Warn("failed to flush traces", zap.Error(err))
		}
	}()

	db, err := driver.Open(cfg.Driver, cfg.Database, nil)
	if err != nil {
		return err
	}
	mgr := manager.WithOptions(db, cfg.ConnectionOptions, manager.WithLogger(logger.Get()))
	defer func() {
		if err := mgr.Close(); err != nil {
			log.Warn("failed to close database", zap.Error(err))
		}
	}()

	p, err := pool.New[manager.Connection](mgr, &cfg.Pool, logger.Get())
	if err != nil {
		return err
	}
	defer p.Close()

	if cfg.Metrics.Addr != "" {
		shutdown, err := serveMetrics(cfg.Metrics.Addr, p, log)
		if err != nil {
			return err
		}
		defer shutdown()
	}

	conns := make([]*pool.Conn[manager.Connection], 0, opts.connections)
	defer func() {
		for _, c := range conns {
			c.Release()
		}
	}()
	for i := 0; i < opts.connections; i++ {
		c, err := p.Get(ctx)
		if err != nil {
			return fmt.Errorf("connection %d: %w", i+1, err)
		}
		conns = append(conns, c)
	}
	log.Info("connections checked out", zap.Int("count", len(conns)))

	if opts.hold > 0 {
		select {
		case <-time.After(opts.hold):
		case <-ctx.Done():
		}
	}

	stats, err := json.MarshalIndent(p.Stats(), "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode stats: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(stats))
	return nil
}

// serveMetrics exposes the default registry plus the pool collector.
func serveMetrics(addr string, p *pool.Pool[manager.Connection], log *zap.Logger) (func(), error) {
	collector := metrics.NewPoolCollector(p.Name(), p)
	if err := prometheus.Register(collector); err != nil {
		return nil, fmt.Errorf("failed to register pool metrics: %w", err)
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("metrics server failed", zap.Error(err))
		}
	}()
	log.Info("serving metrics", zap.String("addr", addr))

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
		prometheus.Unregister(collector)
	}, nil
}
