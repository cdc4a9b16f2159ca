package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/oshokin/alarm-trigger/internal/config"
	"github.com/oshokin/alarm-trigger/internal/service/controller"
	"github.com/oshokin/alarm-trigger/internal/version"
)

var (
	// configPath stores the path to the configuration YAML file.
	configPath string
	// logLevel overrides the level from the configuration file.
	logLevel string
	// allowMultiple skips the single-instance check.
	allowMultiple bool

	// rootCmd runs the sampling loop.
	rootCmd = &cobra.Command{
		Use:   "alarm-trigger",
		Short: "Count RF pulses, confirm by voice and report alarms.",
		Long: `Runs the alarm-trigger controller.

Every sampling period the controller refreshes the voice-recognition state, drains
the RF pulse counter and, when the burst reaches the threshold and the last voice
sample matches, reports the alarm to the server over the data link.

RF edges and recognizer traffic arrive through the MQTT bridge configured in the
settings file. Failed reports are logged and never retried.`,
		Args: cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			// Setup graceful shutdown handling.
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			options := &controller.Options{
				ConfigPath:    configPath,
				LogLevel:      logLevel,
				AllowMultiple: allowMultiple,
			}

			return controller.Run(ctx, options)
		},
	}
)

// Execute runs the alarm-trigger CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)
	rootCmd.AddCommand(newStatusCommand(), newInitConfigCommand())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	rootCmd.PersistentFlags().
		StringVarP(&configPath, "config", "c", config.DefaultConfigFilename, "path to configuration file")
	rootCmd.Flags().StringVarP(&logLevel, "log-level", "l", "", "override log level (debug, info, warn, error)")
	rootCmd.Flags().BoolVar(&allowMultiple, "allow-multiple", false, "skip the single-instance check")

	err := rootCmd.Flags().MarkHidden("allow-multiple")
	if err != nil {
		panic(err)
	}
}
