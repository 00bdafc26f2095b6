package main

import (
	"github.com/spf13/cobra"

	"github.com/fmelink-dev/fmelink/internal/output"
	"github.com/fmelink-dev/fmelink/internal/wizard"
)

func newInitCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Setup fmelink for first use",
		Long: `Initialize fmelink with a guided setup wizard.

The wizard will:
  1. Prompt for the FME Flow server URL
  2. Prompt for your API token and validate the connection
  3. Store credentials securely
  4. Let you pick a repository

If credentials already exist, use --force to overwrite them.`,
		Example: `  fmelink init`,
		Args:    noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := output.FromContext(cmd.Context())

			w := wizard.New(out, force)

			return w.Run(cmd.Context())
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Overwrite existing credentials without prompting")

	return cmd
}
