package cmd

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/oshokin/alarm-trigger/internal/service/status"
)

// defaultStatusTimeout bounds each health call of the status subcommand.
const defaultStatusTimeout = 3 * time.Second

// newStatusCommand builds the `status` subcommand.
func newStatusCommand() *cobra.Command {
	var address string

	command := &cobra.Command{
		Use:   "status",
		Short: "Query the health endpoint of a running controller.",
		Long: `Prints the health of the sampling loop (alarm.controller) and of the voice
recognizer (alarm.recognizer). Exits with a non-zero status when the loop is not serving.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), 2*defaultStatusTimeout)
			defer cancel()

			return status.Run(ctx, &status.Options{
				ConfigPath: configPath,
				Address:    address,
				Timeout:    defaultStatusTimeout,
				Out:        cmd.OutOrStdout(),
			})
		},
	}

	command.Flags().StringVarP(&address, "address", "a", "", "health endpoint address, overrides the settings")

	return command
}
