package main

import (
	"fmt"
	"os"
	"path/filepath"

	"ResourceCycle/internal/config"
	"ResourceCycle/internal/recorder"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	// Global flags
	cfgPath    string
	verbose    bool
	sqlitePath string
	csvDir     string

	cfg    *config.Config
	logger *zap.Logger
	rec    recorder.Recorder
	// history is non-nil only when a SQLite database is configured.
	history *recorder.SQLiteRecorder
)

var rootCmd = &cobra.Command{
	Use:   "cyclesim",
	Short: "Resource depletion and replenishment cycle simulator",
	Long: `cyclesim drains a resource pool in bounded steps and reports every step.

Three run modes are available:
  depletion      withdraw until the pool is empty or at its minimum threshold
  replenishment  withdraw while random refills may top the pool back up
  target         withdraw until a cumulative target is reached

Scenarios can be defined in a YAML config and run ad hoc, in seeded batches,
or on a cron schedule.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(cfgPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		if sqlitePath != "" {
			cfg.Database.SQLitePath = sqlitePath
		}
		if csvDir != "" {
			cfg.Output.CSVDir = csvDir
		}
		if verbose {
			cfg.Log.Level = "debug"
		}
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("config validation: %w", err)
		}

		logger, err = newLogger(cfg.Log.Level)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return openRecorders()
	},
}

func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, err
	}
	zc := zap.NewProductionConfig()
	zc.Level = zap.NewAtomicLevelAt(lvl)
	return zc.Build()
}

func openRecorders() error {
	var recs recorder.Multi
	if cfg.Database.SQLitePath != "" {
		sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath, logger)
		if err != nil {
			logger.Warn("init sqlite recorder failed, history disabled", zap.Error(err))
		} else {
			history = sr
			recs = append(recs, sr)
		}
	}
	if cfg.Output.CSVDir != "" {
		cr, err := recorder.NewCSVRecorder(cfg.Output.CSVDir, logger)
		if err != nil {
			recs.Close()
			return fmt.Errorf("init csv recorder: %w", err)
		}
		recs = append(recs, cr)
		// Keep the exact configuration next to the data it produced.
		if err := cfg.WriteYAML(filepath.Join(cr.Dir(), "config.yaml")); err != nil {
			logger.Warn("write config snapshot", zap.Error(err))
		}
	}

	switch len(recs) {
	case 0:
		rec = recorder.NewNoopRecorder()
	case 1:
		rec = recs[0]
	default:
		rec = recs
	}
	return nil
}

func init() {
	defaultCfg := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		defaultCfg = v
	}
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", defaultCfg, "path to YAML config")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&sqlitePath, "sqlite", "", "record runs to this SQLite database")
	rootCmd.PersistentFlags().StringVar(&csvDir, "csv-dir", "", "record runs as CSV files in this directory")

	rootCmd.AddCommand(depleteCmd, replenishCmd, targetCmd, scenarioCmd, listCmd, batchCmd, historyCmd, scheduleCmd)
}

// run executes the command line in args. Recorders and the logger are
// released even when the command fails.
func run(args []string) error {
	defer cleanup()
	rootCmd.SetArgs(args)
	return rootCmd.Execute()
}

func cleanup() {
	if rec != nil {
		if err := rec.Close(); err != nil {
			logger.Warn("close recorder", zap.Error(err))
		}
		rec = nil
	}
	if logger != nil {
		_ = logger.Sync()
	}
}

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
