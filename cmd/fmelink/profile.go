package main

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/fmelink-dev/fmelink/internal/config"
	clierrors "github.com/fmelink-dev/fmelink/internal/errors"
	"github.com/fmelink-dev/fmelink/internal/output"
	"github.com/fmelink-dev/fmelink/internal/settings"
)

func newProfileCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Manage connection profiles",
		Long: `Save and switch between named connection profiles.

A profile captures the server URL, repository, and support email.
Tokens are never written to the profiles file; they stay in the
system keyring.`,
	}

	cmd.AddCommand(newProfileSaveCmd())
	cmd.AddCommand(newProfileLoadCmd())
	cmd.AddCommand(newProfileListCmd())
	cmd.AddCommand(newProfileDeleteCmd())

	return cmd
}

func newProfileSaveCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "save <name>",
		Short:   "Save the current connection as a profile",
		Long:    `Save the current server URL, repository, and support email under a profile name.`,
		Example: `  fmelink profile save staging`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := output.FromContext(cmd.Context())
			name := args[0]

			store := settings.NewConfigStore(config.Load())
			if err := settings.SaveProfile(store, name); err != nil {
				return clierrors.ConfigFailed("save profile", err)
			}

			out.Success("Saved profile %q", name)

			return nil
		},
	}
}

func newProfileLoadCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "load <name>",
		Short:   "Apply a saved profile",
		Long:    `Apply a saved profile to the current configuration. The stored token is left untouched; run 'fmelink auth login' if the new server needs different credentials.`,
		Example: `  fmelink profile load staging`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := output.FromContext(cmd.Context())
			name := args[0]

			store := settings.NewConfigStore(config.Load())

			profile, err := settings.LoadProfile(store, name)
			if err != nil {
				if strings.Contains(err.Error(), "not found") {
					return clierrors.ProfileNotFound(name)
				}

				return clierrors.ConfigFailed("load profile", err)
			}

			out.Success("Loaded profile %q", name)
			out.Print("Server:     %s\n", profile.ServerURL)

			if profile.Repository != "" {
				out.Print("Repository: %s\n", profile.Repository)
			}

			out.Println()
			out.Muted("Run 'fmelink test' to verify the connection")

			return nil
		},
	}
}

func newProfileListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List saved profiles",
		Long:  `List the names of all saved connection profiles.`,
		Example: `  fmelink profile list
  fmelink profile list --json`,
		Args: noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := output.FromContext(cmd.Context())

			names, err := settings.ListProfiles()
			if err != nil {
				return clierrors.ConfigFailed("list profiles", err)
			}

			if out.JSON {
				return out.PrintJSON(names)
			}

			if len(names) == 0 {
				out.Muted("No profiles saved.")
				out.Muted("Save the current connection with 'fmelink profile save <name>'")

				return nil
			}

			for _, name := range names {
				out.Print("%s\n", name)
			}

			return nil
		},
	}
}

func newProfileDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "delete <name>",
		Short:   "Delete a saved profile",
		Long:    `Remove a saved connection profile. The current configuration is not changed.`,
		Example: `  fmelink profile delete staging`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := output.FromContext(cmd.Context())
			name := args[0]

			if err := settings.DeleteProfile(name); err != nil {
				if strings.Contains(err.Error(), "not found") {
					return clierrors.ProfileNotFound(name)
				}

				return clierrors.ConfigFailed("delete profile", err)
			}

			out.Success("Deleted profile %q", name)

			return nil
		},
	}
}
