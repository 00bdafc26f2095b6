package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fmelink-dev/fmelink/internal/auth"
	"github.com/fmelink-dev/fmelink/internal/config"
	"github.com/fmelink-dev/fmelink/internal/output"
	"github.com/fmelink-dev/fmelink/internal/paths"
)

// PathsInfo holds all resolved paths for JSON output.
type PathsInfo struct {
	ConfigRoot  string `json:"config_root"`
	StateRoot   string `json:"state_root"`
	ConfigFile  string `json:"config_file"`
	TokenFile   string `json:"token_file"`
	Profiles    string `json:"profiles"`
	LogFile     string `json:"log_file"`
	UpdateState string `json:"update_state"`
	ServerURL   string `json:"server_url"`
	AuthSource  string `json:"auth_source"`
}

func newPathsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "paths",
		Short: "Show where fmelink stores files",
		Long: `Display all file and directory paths used by fmelink.

Useful for debugging, scripting, and understanding where configuration,
state, and credential files are stored on this system.`,
		Example: `  fmelink paths
  fmelink paths --json`,
		Args: noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := output.FromContext(cmd.Context())

			info := resolvePathsInfo()

			if out.JSON {
				return out.PrintJSON(info)
			}

			out.Print("Config root:    %s\n", info.ConfigRoot)
			out.Print("State root:     %s\n", info.StateRoot)
			out.Print("\n")
			out.Print("Config file:    %s\n", info.ConfigFile)
			out.Print("Token file:     %s\n", info.TokenFile)
			out.Print("Profiles:       %s\n", info.Profiles)
			out.Print("Log file:       %s\n", info.LogFile)
			out.Print("Update state:   %s\n", info.UpdateState)
			out.Print("\n")
			out.Print("Server URL:     %s\n", info.ServerURL)
			out.Print("Auth source:    %s\n", info.AuthSource)

			return nil
		},
	}
}

func resolvePathsInfo() PathsInfo {
	info := PathsInfo{}

	info.ConfigRoot = resolveOrError(paths.ConfigRoot)
	info.StateRoot = resolveOrError(paths.StateRoot)
	info.LogFile = resolveOrError(paths.DefaultLogFile)
	info.UpdateState = resolveOrError(paths.UpdateStateFile)
	info.TokenFile = resolveOrError(paths.TokenFile)
	info.Profiles = resolveOrError(paths.ProfilesFile)

	if cr := info.ConfigRoot; cr != "" {
		info.ConfigFile = cr + "/config.yaml"
	} else {
		info.ConfigFile = "<error: config root unavailable>"
	}

	cfg := config.Load()
	if url := cfg.ServerURL(); url != "" {
		info.ServerURL = url
	} else {
		info.ServerURL = "(not set)"
	}

	source, _ := auth.GetToken()
	if source == auth.SourceNone {
		info.AuthSource = "none"
	} else {
		info.AuthSource = string(source)
	}

	return info
}

func resolveOrError(fn func() (string, error)) string {
	val, err := fn()
	if err != nil {
		return fmt.Sprintf("<error: %v>", err)
	}

	return val
}
