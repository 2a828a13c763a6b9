package main

import (
	"fmt"
	"io"
	"log/slog"

	"mercator-hq/strcalc/pkg/cli"
	"mercator-hq/strcalc/pkg/config"
	"mercator-hq/strcalc/pkg/journal"
	"mercator-hq/strcalc/pkg/journal/storage"
	"mercator-hq/strcalc/pkg/telemetry/logging"
)

// loadConfig loads the --config file, or the defaults when none is given,
// with STRCALC_* environment overrides applied.
func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadConfigWithEnvOverrides(cfgFile)
	if err != nil {
		return nil, cli.NewConfigError(cfgFile, err.Error())
	}
	return cfg, nil
}

// newLogger builds the process logger. One-shot commands log warnings only
// so their output stays readable; --verbose lowers every command to debug.
func newLogger(cfg *config.Config, w io.Writer, oneShot bool) (*logging.Logger, error) {
	level := cfg.Telemetry.Logging.Level
	format := cfg.Telemetry.Logging.Format
	if oneShot {
		level = "warn"
		format = string(logging.FormatConsole)
	}
	if verbose {
		level = "debug"
	}

	logger, err := logging.New(logging.Config{
		Level:     level,
		Format:    format,
		AddSource: cfg.Telemetry.Logging.AddSource,
		Writer:    w,
	})
	if err != nil {
		return nil, cli.NewConfigError("telemetry.logging", err.Error())
	}
	return logger, nil
}

// openJournal opens the configured SQLite journal.
func openJournal(cfg *config.Config, logger *slog.Logger) (journal.Storage, error) {
	store, err := storage.NewSQLiteStorage(&storage.SQLiteConfig{
		Path:        cfg.Journal.SQLite.Path,
		Driver:      cfg.Journal.SQLite.Driver,
		WALMode:     cfg.Journal.SQLite.WALMode,
		BusyTimeout: cfg.Journal.SQLite.BusyTimeout,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open journal: %w", err)
	}
	return store, nil
}
