// Package cli defines the netreach command tree.
package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/sgrayson/netreach/internal/config"
	"github.com/sgrayson/netreach/internal/history"
	"github.com/sgrayson/netreach/internal/models"
	"github.com/sgrayson/netreach/internal/params"
	"github.com/sgrayson/netreach/internal/tuner"
)

var (
	cfgFile string

	rootCmd = &cobra.Command{
		Use:           "netreach",
		Short:         "Networking agent suite: run history, tuned parameters and reports",
		Long:          `netreach manages the run history and self-tuned timing parameters of the networking agent suite. Agents record outcome metrics at the end of each run; the tuner turns recent windows of those metrics into timeout and retry adjustments for the next run.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
)

// Execute runs the root command with the given context.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./netreach.yaml)")
}

// suite bundles the stores and engine every subcommand works against.
type suite struct {
	cfg     config.Config
	schema  models.Schema
	history *history.Store
	params  *params.FileStore
	engine  *tuner.Engine
	log     *slog.Logger
}

func openSuite() (*suite, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, err
	}

	log := newLogger(cfg.LogLevel)

	schema := params.DefaultSchema()
	if cfg.SchemaFile != "" {
		schema, err = params.LoadSchema(cfg.SchemaFile)
		if err != nil {
			return nil, fmt.Errorf("loading schema: %w", err)
		}
	}

	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	store, err := params.Open(cfg.ParamsPath(), schema)
	if err != nil {
		var corrupt *models.ConfigCorruptError
		if !errors.As(err, &corrupt) {
			return nil, err
		}
		log.Warn("parameter file unreadable, using defaults", "path", cfg.ParamsPath(), "error", corrupt.Err)
	}

	hist := history.NewStore(cfg.HistoryPath())

	engine := tuner.New(schema, hist, store, tuner.Options{
		Window:        cfg.Tuner.Window,
		MinRuns:       cfg.Tuner.MinRuns,
		LowThreshold:  cfg.Tuner.LowThreshold,
		HighThreshold: cfg.Tuner.HighThreshold,
	}, log)

	return &suite{
		cfg:     cfg,
		schema:  schema,
		history: hist,
		params:  store,
		engine:  engine,
		log:     log,
	}, nil
}

func newLogger(level string) *slog.Logger {
	var l slog.Level
	if err := l.UnmarshalText([]byte(level)); err != nil {
		l = slog.LevelInfo
	}
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: l}))
	slog.SetDefault(log)
	return log
}
