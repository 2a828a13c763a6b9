package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"mercator-hq/strcalc/pkg/cli"
	"mercator-hq/strcalc/pkg/config"
	"mercator-hq/strcalc/pkg/journal"
	"mercator-hq/strcalc/pkg/journal/recorder"
	"mercator-hq/strcalc/pkg/journal/retention"
	"mercator-hq/strcalc/pkg/security/auth"
	"mercator-hq/strcalc/pkg/server"
	"mercator-hq/strcalc/pkg/service"
	"mercator-hq/strcalc/pkg/telemetry/health"
	"mercator-hq/strcalc/pkg/telemetry/metrics"
	"mercator-hq/strcalc/pkg/telemetry/tracing"
)

const healthCheckTimeout = 2 * time.Second

var serveFlags struct {
	listenAddress string
	logLevel      string
	dryRun        bool
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the strcalc HTTP server",
	Long: `Start the HTTP evaluation server with the specified configuration.

Endpoints:
  POST /v1/evaluate   evaluate {"expression": "..."}
  GET  /v1/journal    recent evaluations (when the journal is enabled)
  GET  /health        liveness
  GET  /ready         readiness (evaluator self-test, journal ping)
  GET  /version       build information
  GET  /metrics       Prometheus metrics (when enabled)

When started with --config, changes to the evaluator section of the file are
applied without a restart.

Examples:
  # Start with defaults
  strcalc serve

  # Start with a config file
  strcalc serve --config /etc/strcalc/strcalc.yaml

  # Override listen address
  strcalc serve --listen 0.0.0.0:8080

  # Validate config without starting server
  strcalc serve --config strcalc.yaml --dry-run`,
	RunE: runServer,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVarP(&serveFlags.listenAddress, "listen", "l", "", "override listen address")
	serveCmd.Flags().StringVar(&serveFlags.logLevel, "log-level", "", "override log level (debug, info, warn, error)")
	serveCmd.Flags().BoolVar(&serveFlags.dryRun, "dry-run", false, "validate config without starting server")
}

func runServer(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	// Apply flag overrides
	if serveFlags.listenAddress != "" {
		cfg.Server.ListenAddress = serveFlags.listenAddress
	}
	if serveFlags.logLevel != "" {
		cfg.Telemetry.Logging.Level = serveFlags.logLevel
	}
	if err := config.Validate(cfg); err != nil {
		return cli.NewConfigError("flags", err.Error())
	}

	if serveFlags.dryRun {
		fmt.Fprintln(cmd.OutOrStdout(), "configuration valid")
		return nil
	}

	logger, err := newLogger(cfg, cmd.ErrOrStderr(), false)
	if err != nil {
		return err
	}
	slog.SetDefault(logger.Logger)

	ctx, stop := cli.SetupSignalHandler(commandContext(cmd))
	defer stop()

	app, err := newServeApp(ctx, cfg, logger.Logger)
	if err != nil {
		return cli.NewCommandError("serve", err)
	}
	defer app.close()

	if cfgFile != "" {
		watchConfig(ctx, cfgFile, app)
	}

	logger.Info("strcalc starting",
		"version", Version,
		"address", cfg.Server.ListenAddress,
		"journal", cfg.Journal.Enabled,
		"metrics", cfg.Telemetry.Metrics.Enabled,
		"tracing", cfg.Telemetry.Tracing.Enabled,
		"auth", cfg.Server.Auth.Enabled,
		"rate_limit", cfg.Server.RateLimit.Enabled,
	)

	if err := app.server.Start(ctx); err != nil {
		return cli.NewCommandError("serve", err)
	}
	return nil
}

// serveApp holds the components of a running server, for shutdown.
type serveApp struct {
	server    *server.Server
	service   *service.Service
	keys      *auth.Validator
	tracer    *tracing.Tracer
	store     journal.Storage
	recorder  *recorder.Recorder
	scheduler *retention.Scheduler
	logger    *slog.Logger
}

func newServeApp(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*serveApp, error) {
	app := &serveApp{logger: logger}

	collector := metrics.NewCollector(&cfg.Telemetry.Metrics, prometheus.NewRegistry())

	var authMiddleware *auth.Middleware
	if cfg.Server.Auth.Enabled {
		validator, err := auth.NewValidator(cfg.Server.Auth.Keys, os.LookupEnv)
		if err != nil {
			return nil, fmt.Errorf("failed to load API keys: %w", err)
		}
		authMiddleware = auth.NewMiddleware(&cfg.Server.Auth, validator, collector, logger)
		app.keys = validator
	}

	tracer, err := tracing.New(&cfg.Telemetry.Tracing, tracing.WithServiceVersion(Version))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize tracing: %w", err)
	}
	app.tracer = tracer

	opts := service.Options{
		Logger:  logger,
		Metrics: collector,
		Tracer:  tracer,
	}

	if cfg.Journal.Enabled {
		store, err := openJournal(cfg, logger)
		if err != nil {
			app.close()
			return nil, err
		}
		app.store = store

		app.recorder = recorder.NewRecorder(store, &recorder.Config{
			AsyncBuffer:         cfg.Journal.Recorder.AsyncBuffer,
			WriteTimeout:        cfg.Journal.Recorder.WriteTimeout,
			MaxExpressionLength: cfg.Journal.Recorder.MaxExpressionLength,
		}, collector, logger)
		opts.Recorder = app.recorder

		pruner := retention.NewPruner(store, &retention.Config{
			Days:          cfg.Journal.Retention.Days,
			MaxRecords:    cfg.Journal.Retention.MaxRecords,
			PruneSchedule: cfg.Journal.Retention.PruneSchedule,
			ArchivePath:   cfg.Journal.Retention.ArchivePath,
		}, collector, logger)
		app.scheduler = retention.NewScheduler(pruner)
		if err := app.scheduler.Start(ctx); err != nil {
			logger.Warn("failed to start retention scheduler", "error", err)
		} else if next := app.scheduler.NextRun(); next != nil {
			logger.Debug("retention scheduler started", "next_run", next)
		}
	}

	app.service = service.New(&cfg.Evaluator, opts)

	checker := health.New(healthCheckTimeout)
	checker.RegisterCheck("evaluator", true, app.service.SelfTest)
	if app.store != nil {
		checker.RegisterCheck("journal", false, app.store.Ping)
	}

	app.server = server.NewServer(&cfg.Server, server.Deps{
		Service:     app.service,
		Journal:     app.store,
		Health:      checker,
		Metrics:     collector,
		MetricsPath: cfg.Telemetry.Metrics.Path,
		Auth:        authMiddleware,
		Logger:      logger,
		Version: server.VersionInfo{
			Version:   Version,
			Commit:    GitCommit,
			BuildTime: BuildDate,
		},
	})

	return app, nil
}

// close stops the components in dependency order: the scheduler and the
// recorder before the store they write to.
func (a *serveApp) close() {
	if a.scheduler != nil {
		a.scheduler.Stop()
	}
	if a.recorder != nil {
		if err := a.recorder.Close(); err != nil {
			a.logger.Error("failed to close journal recorder", "error", err)
		}
	}
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			a.logger.Error("failed to close journal storage", "error", err)
		}
	}
	if a.tracer != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := a.tracer.Shutdown(shutdownCtx); err != nil {
			a.logger.Error("failed to flush traces", "error", err)
		}
	}
}

// reload applies the parts of cfg that can change without a restart: the
// evaluator limits and, when auth was enabled at startup, the API keys.
func (a *serveApp) reload(cfg *config.Config) {
	a.service.Reload(&cfg.Evaluator)

	if a.keys == nil {
		return
	}
	if !cfg.Server.Auth.Enabled {
		a.logger.Warn("disabling auth requires a restart; keeping current API keys")
		return
	}
	if err := a.keys.Reload(cfg.Server.Auth.Keys, os.LookupEnv); err != nil {
		a.logger.Error("API key reload failed; keeping current keys", "error", err)
		return
	}
	a.logger.Info("API keys reloaded", "keys", a.keys.Len())
}

// watchConfig applies config file changes through app.reload until ctx is
// done. Other sections need a restart.
func watchConfig(ctx context.Context, path string, app *serveApp) {
	watcher, err := config.NewWatcher(path, 0, app.logger)
	if err != nil {
		app.logger.Warn("config hot reload disabled", "error", err)
		return
	}

	go func() {
		err := watcher.Watch(ctx, app.reload)
		if err != nil {
			app.logger.Error("config watcher stopped", "error", err)
		}
		if err := watcher.Stop(); err != nil {
			app.logger.Warn("failed to stop config watcher", "error", err)
		}
	}()
}
