package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/fmelink-dev/fmelink/internal/auth"
	"github.com/fmelink-dev/fmelink/internal/client"
	"github.com/fmelink-dev/fmelink/internal/config"
	clierrors "github.com/fmelink-dev/fmelink/internal/errors"
	"github.com/fmelink-dev/fmelink/internal/output"
	"github.com/fmelink-dev/fmelink/internal/prompt"
	"github.com/fmelink-dev/fmelink/internal/validate"
)

func newAuthCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Manage authentication",
		Long:  `Store and validate the FME Flow API token.`,
	}

	cmd.AddCommand(newAuthLoginCmd())
	cmd.AddCommand(newAuthStatusCmd())
	cmd.AddCommand(newAuthLogoutCmd())

	return cmd
}

func newAuthLoginCmd() *cobra.Command {
	var tokenFlag string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Store your API token",
		Long: `Authenticate against the configured FME Flow instance.

Your token will be stored securely in your system's keyring
(macOS Keychain, Windows Credential Manager, or Linux Secret Service).

You can also set the FMELINK_TOKEN environment variable.`,
		Example: `  fmelink auth login
  fmelink auth login --token <token>`,
		Args: noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := output.FromContext(cmd.Context())
			prompter := prompt.New(out)

			// Check if already authenticated via env var
			if tok := os.Getenv(auth.EnvVarName); tok != "" {
				out.Info("%s environment variable is set", auth.EnvVarName)
				out.Muted("Environment variable takes precedence over stored credentials")
				out.Println()
			}

			cfg := config.Load()

			serverURL := cfg.ServerURL()
			if serverURL == "" {
				return clierrors.ServerURLRequired()
			}

			var token string
			if tokenFlag != "" {
				token = tokenFlag
			} else {
				// Interactive flow: prompt for the token
				if !prompter.CanPrompt() {
					return clierrors.CannotPrompt(auth.EnvVarName)
				}

				var err error

				token, err = prompter.Token("Enter your FME Flow API token")
				if err != nil {
					return fmt.Errorf("read token prompt: %w", err)
				}
			}

			if token == "" {
				return clierrors.TokenEmpty()
			}

			if validate.Token(token) != validate.KindOK {
				return clierrors.TokenInvalid()
			}

			// Validate with spinner
			spin := out.Spinner("Validating token")
			spin.Start()

			apiClient := client.New(serverURL, token).WithTimeout(cfg.RequestTimeout())

			info, err := apiClient.Check(cmd.Context())
			if err != nil {
				spin.StopWithFailure("Invalid token")
				return clierrors.AuthFailed(err)
			}

			spin.Stop()

			// Store in keyring
			if err := auth.StoreToken(token); err != nil {
				return clierrors.ConfigFailed("store credentials", err)
			}

			out.Success("Authenticated against FME Flow %s at %s", info.Version, serverURL)

			return nil
		},
	}

	cmd.Flags().StringVar(&tokenFlag, "token", "", "API token for non-interactive login (prefer FMELINK_TOKEN env var to avoid shell history exposure)")

	return cmd
}

// AuthStatus represents authentication status for JSON output.
type AuthStatus struct {
	Source    string `json:"source"`
	ServerURL string `json:"serverUrl"`
	Version   string `json:"serverVersion"`
}

func newAuthStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show authentication status",
		Long:  `Show where the current token comes from and whether the server accepts it.`,
		Example: `  fmelink auth status
  fmelink auth status --json`,
		Args: noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := output.FromContext(cmd.Context())

			source, apiClient, err := newAPIClient()
			if err != nil {
				return err
			}

			// Validate with spinner
			spin := out.Spinner("Checking credentials")
			spin.Start()

			info, err := apiClient.Check(cmd.Context())
			if err != nil {
				spin.StopWithFailure("Credentials invalid")
				return clierrors.AuthFailed(err)
			}

			spin.StopWithSuccess("Authenticated")

			if out.JSON {
				if err := out.PrintJSON(AuthStatus{
					Source:    string(source),
					ServerURL: apiClient.BaseURL(),
					Version:   info.Version,
				}); err != nil {
					return fmt.Errorf("print auth status json: %w", err)
				}

				return nil
			}

			out.Print("Source:  %s\n", source)
			out.Print("Server:  %s\n", apiClient.BaseURL())
			out.Print("Version: FME Flow %s\n", info.Version)

			return nil
		},
	}
}

func newAuthLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "logout",
		Short:   "Clear the stored token",
		Long:    `Remove the stored token from the system keyring and the fallback token file.`,
		Example: `  fmelink auth logout`,
		Args:    noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := output.FromContext(cmd.Context())

			if err := auth.DeleteToken(); err != nil {
				// If the token doesn't exist, that's fine
				if strings.Contains(err.Error(), "not found") {
					out.Muted("No stored credentials found")
					return nil
				}

				return clierrors.ConfigFailed("clear credentials", err)
			}

			out.Success("Logged out successfully")

			if os.Getenv(auth.EnvVarName) != "" {
				out.Println()
				out.Warning("%s environment variable is still set", auth.EnvVarName)
			}

			return nil
		},
	}
}
