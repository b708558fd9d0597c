package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/warp/carepath/api"
	"github.com/warp/carepath/config"
	"github.com/warp/carepath/store/sqlite"
)

type globalOptions struct {
	port     int
	dbPath   string
	logLevel string
}

func newRootCmd() *cobra.Command {
	var opts globalOptions

	cmd := &cobra.Command{
		Use:           "carepath",
		Short:         "Career path, wage table and treatment-improvement subsidy manager",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().IntVar(&opts.port, "port", 0, "HTTP server port (overrides CAREPATH_PORT)")
	cmd.PersistentFlags().StringVar(&opts.dbPath, "db", "", `SQLite database path, ":memory:" for in-memory (overrides CAREPATH_DB_PATH)`)
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "silent|error|warn|info|debug (overrides CAREPATH_LOG_LEVEL)")

	cmd.AddCommand(newServeCmd(&opts))
	cmd.AddCommand(newSeedCmd(&opts))
	cmd.AddCommand(newEvaluateCmd())
	return cmd
}

func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		code := exitCode(err)
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(code)
	}
}

// loadConfig reads the environment and applies the flags that were set.
func loadConfig(cmd *cobra.Command, opts *globalOptions) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, withCode(exitUsage, err)
	}

	flags := cmd.Flags()
	if flags.Changed("port") {
		cfg.Port = opts.port
	}
	if flags.Changed("db") {
		cfg.DBPath = opts.dbPath
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = opts.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return nil, withCode(exitUsage, err)
	}
	return cfg, nil
}

// app is what serve and seed share: config, logger, store and handler.
type app struct {
	cfg     *config.Config
	log     *logrus.Logger
	store   *sqlite.Store
	metrics *api.Metrics
	handler *api.Handler
}

func openApp(cmd *cobra.Command, opts *globalOptions) (*app, error) {
	cfg, err := loadConfig(cmd, opts)
	if err != nil {
		return nil, err
	}
	logger := cfg.NewLogger(os.Stderr)

	store, err := sqlite.New(cfg.DBPath)
	if err != nil {
		return nil, withCode(exitDB, fmt.Errorf("initialize database: %w", err))
	}

	metrics := api.NewMetrics()
	return &app{
		cfg:     cfg,
		log:     logger,
		store:   store,
		metrics: metrics,
		handler: api.NewHandler(store, logger, metrics),
	}, nil
}

func (a *app) Close() {
	if err := a.store.Close(); err != nil {
		a.log.WithError(err).Warn("close database")
	}
}
