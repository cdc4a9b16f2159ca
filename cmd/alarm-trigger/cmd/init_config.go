package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/oshokin/alarm-trigger/internal/config"
)

// errConfigExists is returned when init-config would overwrite settings.
var errConfigExists = errors.New("settings file already exists, use --force to overwrite")

// newInitConfigCommand builds the `init-config` subcommand.
func newInitConfigCommand() *cobra.Command {
	var force bool

	command := &cobra.Command{
		Use:   "init-config",
		Short: "Write a settings file with default values.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if _, err := os.Stat(configPath); err == nil && !force {
				return errConfigExists
			}

			if err := config.Save(configPath, config.Default()); err != nil {
				return err
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Settings written to %s\n", configPath)

			return nil
		},
	}

	command.Flags().BoolVarP(&force, "force", "f", false, "overwrite an existing settings file")

	return command
}
