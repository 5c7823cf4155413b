// Package cmd implements the devbridge CLI commands using Cobra.
// It exposes device discovery, bridge command execution, file transfer
// and simulator control for Android and iOS targets.
package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jmgilman/devbridge/internal/adb"
	"github.com/jmgilman/devbridge/internal/config"
	"github.com/jmgilman/devbridge/internal/exec"
	"github.com/jmgilman/devbridge/internal/slogger"
)

// appConfig holds the loaded application configuration.
var appConfig *config.Config

// configLoader is used for persisting configuration changes.
var configLoader *config.Loader

// verbosity is the -v count.
var verbosity int

var rootCmd = &cobra.Command{
	Use:   "devbridge",
	Short: "Drive Android and iOS devices from one CLI",
	Long: `devbridge runs commands against attached Android devices through the
debug bridge, moves files to and from Android and iOS devices, and controls
the iOS simulator.

Toolchain errors are classified into actionable failures; known-benign
conditions such as deleting an absent file are never reported.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg := appConfig
		if cfg == nil {
			cfg = defaultConfig()
		}

		level := verbosity
		if !cmd.Flags().Changed("verbose") && cfg.Log.Verbosity > level {
			level = cfg.Log.Verbosity
		}
		logger := slogger.New(slogger.Config{Verbosity: level, Output: cmd.ErrOrStderr()})

		executor := exec.New()
		bridge := adb.New(executor, adb.Config{
			ResolvePath: cfg.ADBResolver(executor.LookPath),
			Timeout:     cfg.Android.CommandTimeout,
			Logger:      logger,
		})

		ctx := cmd.Context()
		ctx = slogger.WithLogger(ctx, logger)
		ctx = WithConfig(ctx, cfg)
		ctx = WithLoader(ctx, configLoader)
		ctx = WithExecutor(ctx, executor)
		ctx = WithBridge(ctx, bridge)
		cmd.SetContext(ctx)

		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

// ExecuteContext runs the root command with ctx, so cancellation reaches
// spawned toolchain processes.
func ExecuteContext(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v", "increase log verbosity (-v info, -vv debug, -vvv trace)")
}

func initConfig() {
	loader, err := config.NewLoader()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to initialize config: %v\n", err)
		return
	}

	cfg, err := loader.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to load config: %v\n", err)
		return
	}

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: config validation failed: %v\n", err)
	}

	appConfig = cfg
	configLoader = loader
}

// defaultConfig is used when the config file could not be loaded.
func defaultConfig() *config.Config {
	return &config.Config{
		IOS: config.IOSConfig{
			SimulatorPath:  config.DefaultSimulatorTool,
			ConnectTimeout: config.DefaultConnectTimeout,
		},
	}
}
