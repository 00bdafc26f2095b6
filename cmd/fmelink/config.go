package main

import (
	"sort"

	"github.com/spf13/cobra"

	"github.com/fmelink-dev/fmelink/internal/auth"
	"github.com/fmelink-dev/fmelink/internal/client"
	"github.com/fmelink-dev/fmelink/internal/config"
	clierrors "github.com/fmelink-dev/fmelink/internal/errors"
	"github.com/fmelink-dev/fmelink/internal/output"
	"github.com/fmelink-dev/fmelink/internal/settings"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage configuration",
		Long:  `View and modify fmelink configuration settings.`,
	}

	cmd.AddCommand(newConfigListCmd())
	cmd.AddCommand(newConfigGetCmd())
	cmd.AddCommand(newConfigSetCmd())
	cmd.AddCommand(newConfigUnsetCmd())

	return cmd
}

func newConfigListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all configuration settings",
		Long:  `Display all configuration settings and their current values. Shows available settings with defaults when none are set.`,
		Example: `  fmelink config list
  fmelink config list --json`,
		Args: noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := output.FromContext(cmd.Context())
			cfg := config.Load()
			values := cfg.All()

			if out.JSON {
				return out.PrintJSON(values)
			}

			if len(values) == 0 {
				out.Muted("No configuration set.")
				out.Println()
				out.Println("Available settings:")
				out.Print("  server.url               FME Flow base URL\n")
				out.Print("  server.repository        Selected repository\n")
				out.Print("  support.email            Support contact shown in error hints\n")
				out.Print("  request.timeout_seconds  HTTP request timeout (default: %d)\n", config.DefaultRequestTimeout)

				return nil
			}

			keys := make([]string, 0, len(values))
			for key := range values {
				keys = append(keys, key)
			}

			sort.Strings(keys)

			for _, key := range keys {
				out.Print("%s = %v\n", key, values[key])
			}

			return nil
		},
	}
}

func newConfigGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "get <key>",
		Short:   "Get a configuration value",
		Long:    `Retrieve and display the current value of a single configuration key.`,
		Example: `  fmelink config get server.url`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := output.FromContext(cmd.Context())
			key := args[0]
			cfg := config.Load()
			value := cfg.Get(key)

			if value == nil {
				out.Muted("%s is not set", key)
				return nil
			}

			out.Print("%s = %v\n", key, value)

			return nil
		},
	}
}

func newConfigSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a configuration value",
		Long: `Set a configuration key to the given value. The value is persisted
to the config file.

Connection fields are validated before they are saved: server.url is
sanitized (an accidentally pasted REST API path is stripped) and must
be a well-formed http(s) URL, server.repository is checked against the
repositories on the server when credentials are available, and
support.email must be a valid address.`,
		Example: `  fmelink config set server.url https://flow.example.com
  fmelink config set server.repository Production`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := output.FromContext(cmd.Context())
			key, value := args[0], args[1]
			cfg := config.Load()
			sync := settings.NewSynchronizer(settings.NewConfigStore(cfg), settings.Hooks{})

			switch key {
			case config.KeyServerURL:
				commit, err := sync.CommitServerURL(value)
				if err != nil {
					return err
				}

				if commit.Value != value {
					out.Muted("Sanitized to %s", commit.Value)
				}

				out.Success("Set %s = %s", key, commit.Value)

				return nil

			case config.KeyRepository:
				known := loadKnownRepositories(cmd)
				if known == nil {
					out.Muted("Could not verify the repository against the server; saving unverified")
				}

				if _, err := sync.CommitRepository(value, known); err != nil {
					return err
				}

				out.Success("Set %s = %s", key, value)

				return nil

			case config.KeySupportEmail:
				if _, err := sync.CommitSupportEmail(value); err != nil {
					return err
				}

				out.Success("Set %s = %s", key, value)

				return nil
			}

			if err := cfg.Set(key, value); err != nil {
				return clierrors.ConfigFailed("set config", err)
			}

			out.Success("Set %s = %s", key, value)

			return nil
		},
	}
}

func newConfigUnsetCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "unset <key>",
		Short:   "Remove a configuration value",
		Long:    `Remove a configuration key from the config file.`,
		Example: `  fmelink config unset server.repository`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := output.FromContext(cmd.Context())
			key := args[0]
			cfg := config.Load()

			if err := cfg.Unset(key); err != nil {
				return clierrors.ConfigFailed("unset config", err)
			}

			out.Success("Unset %s", key)

			return nil
		},
	}
}

// loadKnownRepositories fetches the repository list for membership
// validation. Returns nil when the server cannot be asked, which makes
// the membership check a no-op.
func loadKnownRepositories(cmd *cobra.Command) []string {
	cfg := config.Load()

	serverURL := cfg.ServerURL()

	_, token := auth.GetToken()
	if serverURL == "" || token == "" {
		return nil
	}

	c := client.New(serverURL, token).WithTimeout(cfg.RequestTimeout())

	repos, err := c.ListRepositories(cmd.Context())
	if err != nil {
		return nil
	}

	return repos
}
