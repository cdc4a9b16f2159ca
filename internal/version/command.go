package version

import (
	"fmt"

	"github.com/spf13/cobra"
)

// AttachCobraVersionCommand attaches a `version` subcommand to root.
func AttachCobraVersionCommand(root *cobra.Command) {
	var short bool

	command := &cobra.Command{
		Use:   "version",
		Short: "Print version information.",
		Long:  "Print the controller version with the commit hash and build timestamp injected through ldflags.",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			if short {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), Short())

				return
			}

			_, _ = fmt.Fprintln(cmd.OutOrStdout(), Full())
		},
	}

	command.Flags().BoolVarP(&short, "short", "s", false, "print only the semantic version")
	root.AddCommand(command)
}
