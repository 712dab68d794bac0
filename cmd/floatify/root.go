// Package main provides the CLI entrypoint for floatify.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/floatify/internal/config"
	"github.com/jmylchreest/floatify/internal/output"
	"github.com/jmylchreest/floatify/internal/store"
)

// Build-time variables (set via ldflags)
var (
	version   = "dev"
	commit    = "unknown"
	buildTime = "unknown"
)

// Global configuration and state
var (
	cfg        *config.Config
	globalOpts struct {
		verbose    bool
		configPath string
		prefsPath  string
		format     string
	}
	logger *slog.Logger
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "floatify",
	Short: "Floating app bubble with a notification mirror",
	Long: `floatify controls the floatifyd overlay daemon.

floatifyd draws a draggable bubble on top of other windows. Tapping it
opens a menu with two tabs: shortcuts to the applications you picked and
a mirror of recent notifications from the applications you monitor.

Running floatify without a subcommand launches the interactive app picker.`,
	Version:      fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, buildTime),
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		setupLogger()

		var err error
		cfg, err = config.LoadConfig(globalOpts.configPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		if !cmd.Flags().Changed("format") {
			globalOpts.format = cfg.Output.Format
		}
		return nil
	},
	// Default to the picker when no subcommand is provided
	RunE: func(cmd *cobra.Command, args []string) error {
		return runPick(cmd, args)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&globalOpts.verbose, "verbose", "v", false,
		"Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&globalOpts.configPath, "config", "",
		"Path to config file (default: ~/.config/floatify/config.toml)")
	rootCmd.PersistentFlags().StringVar(&globalOpts.prefsPath, "prefs", "",
		"Path to preferences file (default: ~/.config/floatify/prefs.json)")
	rootCmd.PersistentFlags().StringVarP(&globalOpts.format, "format", "o", "",
		"Output format: plain, json, yaml (default from config)")
}

// setupLogger configures the global slog logger.
func setupLogger() {
	level := slog.LevelWarn
	if globalOpts.verbose {
		level = slog.LevelDebug
	}

	// Log to stderr so stdout is clean for output
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	logger = slog.New(handler)
	slog.SetDefault(logger)
}

func prefsPath() string {
	if globalOpts.prefsPath != "" {
		return globalOpts.prefsPath
	}
	return store.PrefsPath()
}

func outputFormat() (output.Format, error) {
	return output.ParseFormat(globalOpts.format)
}
