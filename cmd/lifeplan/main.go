package main

import (
	"fmt"
	"os"
	"runtime/debug"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/lifeplan/lifeplan/internal/calculation"
	"github.com/lifeplan/lifeplan/internal/config"
	"github.com/lifeplan/lifeplan/internal/output"
	"github.com/lifeplan/lifeplan/internal/server"
	"github.com/lifeplan/lifeplan/internal/store"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// initializeLogger builds the zap logger from settings; the --log-level flag
// overrides the config file.
func initializeLogger(levelOverride string) (*zap.Logger, error) {
	level := viper.GetString("logging.level")
	if levelOverride != "" {
		level = levelOverride
	}
	if level == "" {
		level = "info"
	}

	var zapLevel zapcore.Level
	switch level {
	case "debug":
		zapLevel = zapcore.DebugLevel
	case "info":
		zapLevel = zapcore.InfoLevel
	case "warn", "warning":
		zapLevel = zapcore.WarnLevel
	case "error":
		zapLevel = zapcore.ErrorLevel
	default:
		return nil, fmt.Errorf("invalid log level: %s", level)
	}

	cfg := zap.NewProductionConfig()
	if viper.GetString("logging.format") == "console" {
		cfg = zap.NewDevelopmentConfig()
	}
	cfg.Level = zap.NewAtomicLevelAt(zapLevel)
	return cfg.Build()
}

func initSettings() {
	viper.SetConfigName("lifeplan")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("$HOME/.config/lifeplan")
	viper.SetEnvPrefix("LIFEPLAN")
	viper.AutomaticEnv()

	viper.SetDefault("listen", ":8080")
	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "json")

	// A missing settings file is fine; defaults apply.
	_ = viper.ReadInConfig()
}

var rootCmd = &cobra.Command{
	Use:   "lifeplan",
	Short: "Lifetime cash flow projection CLI",
	Long:  "Deterministic year-by-year personal and corporate financial projection from a plan file",
}

var calculateCmd = &cobra.Command{
	Use:   "calculate [plan-file]",
	Short: "Build the ledger for a plan and print a report",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		logLevel, _ := cmd.Flags().GetString("log-level")
		logger, err := initializeLogger(logLevel)
		if err != nil {
			return err
		}
		defer func() { _ = logger.Sync() }()

		parser := config.NewInputParser()
		plan, err := parser.LoadFromFile(args[0])
		if err != nil {
			return err
		}

		engine := calculation.NewEngineWith(plan.CorporateSettings(), logger)
		ledger := engine.BuildLedger(plan)

		format, _ := cmd.Flags().GetString("format")
		body, err := output.Render(&output.ReportData{
			Plan:        plan,
			Ledger:      ledger,
			GeneratedAt: time.Now(),
		}, format)
		if err != nil {
			return err
		}

		outFile, _ := cmd.Flags().GetString("output")
		if outFile == "" {
			_, err = os.Stdout.Write(body)
			return err
		}
		if err := os.WriteFile(outFile, body, 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", outFile, err)
		}
		logger.Info("report written", zap.String("file", outFile), zap.String("format", format))
		return nil
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve [plan-file]",
	Short: "Serve the projection API for a plan",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		logLevel, _ := cmd.Flags().GetString("log-level")
		logger, err := initializeLogger(logLevel)
		if err != nil {
			return err
		}
		defer func() { _ = logger.Sync() }()

		parser := config.NewInputParser()
		plan, err := parser.LoadFromFile(args[0])
		if err != nil {
			return err
		}

		engine := calculation.NewEngineWith(plan.CorporateSettings(), logger)
		st := store.NewPlanStore(plan, engine, logger)

		addr, _ := cmd.Flags().GetString("listen")
		if addr == "" {
			addr = viper.GetString("listen")
		}
		return server.New(st, logger, version).ListenAndServe(addr)
	},
}

var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Export and import plan snapshots",
}

var snapshotExportCmd = &cobra.Command{
	Use:   "export [plan-file]",
	Short: "Export a plan and its ledger as a snapshot JSON document",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		parser := config.NewInputParser()
		plan, err := parser.LoadFromFile(args[0])
		if err != nil {
			return err
		}
		engine := calculation.NewEngineWith(plan.CorporateSettings(), nil)

		body, err := output.ExportSnapshot(plan, engine.BuildLedger(plan), time.Now())
		if err != nil {
			return err
		}

		outFile, _ := cmd.Flags().GetString("output")
		if outFile == "" {
			_, err = os.Stdout.Write(body)
			return err
		}
		return os.WriteFile(outFile, body, 0o644)
	},
}

var snapshotImportCmd = &cobra.Command{
	Use:   "import [snapshot-file]",
	Short: "Rebuild a ledger from a snapshot and print a report",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", args[0], err)
		}
		plan, err := output.ImportSnapshot(data)
		if err != nil {
			return err
		}

		parser := config.NewInputParser()
		parser.Normalize(plan)
		if err := parser.ValidatePlan(plan); err != nil {
			return err
		}

		engine := calculation.NewEngineWith(plan.CorporateSettings(), nil)
		format, _ := cmd.Flags().GetString("format")
		body, err := output.Render(&output.ReportData{
			Plan:        plan,
			Ledger:      engine.BuildLedger(plan),
			GeneratedAt: time.Now(),
		}, format)
		if err != nil {
			return err
		}
		_, err = os.Stdout.Write(body)
		return err
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(os.Stdout, "lifeplan %s (commit %s, built %s)\n", version, commit, date)
		if bi, ok := debug.ReadBuildInfo(); ok && bi != nil {
			fmt.Fprintln(os.Stdout, bi.Main.Path)
		}
	},
}

func main() {
	initSettings()

	calculateCmd.Flags().String("format", "console", "output format (console, csv, json, html)")
	calculateCmd.Flags().String("output", "", "write the report to a file instead of stdout")
	calculateCmd.Flags().String("log-level", "", "log level override (debug, info, warn, error)")

	serveCmd.Flags().String("listen", "", "listen address (default from settings)")
	serveCmd.Flags().String("log-level", "", "log level override (debug, info, warn, error)")

	snapshotExportCmd.Flags().String("output", "", "write the snapshot to a file instead of stdout")
	snapshotImportCmd.Flags().String("format", "console", "output format (console, csv, json, html)")
	snapshotCmd.AddCommand(snapshotExportCmd, snapshotImportCmd)

	rootCmd.AddCommand(calculateCmd, serveCmd, snapshotCmd, versionCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
