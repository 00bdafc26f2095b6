package main

import (
	"github.com/spf13/cobra"

	"github.com/fmelink-dev/fmelink/internal/config"
	clierrors "github.com/fmelink-dev/fmelink/internal/errors"
	"github.com/fmelink-dev/fmelink/internal/output"
	"github.com/fmelink-dev/fmelink/internal/prompt"
	"github.com/fmelink-dev/fmelink/internal/settings"
)

func newRepoCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "repo",
		Short: "Manage the repository selection",
		Long: `Commands for listing repositories and selecting the one fmelink
works against. The selection is validated against the server whenever
credentials are available.`,
	}

	cmd.AddCommand(newRepoListCmd())
	cmd.AddCommand(newRepoUseCmd())
	cmd.AddCommand(newRepoSelectCmd())

	return cmd
}

func newRepoListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List repositories on the server",
		Long:  `List all repositories available on the configured FME Flow instance.`,
		Example: `  fmelink repo list
  fmelink repo list --json`,
		Args: noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := output.FromContext(cmd.Context())

			_, c, err := newAPIClient()
			if err != nil {
				return err
			}

			spin := out.Spinner("Fetching repositories")
			spin.Start()

			repos, err := c.ListRepositories(cmd.Context())
			if err != nil {
				spin.StopWithFailure("Failed to fetch repositories")
				return err
			}

			spin.StopWithSuccess("Found repositories")

			if len(repos) == 0 {
				return clierrors.NoRepositories()
			}

			if out.JSON {
				return out.PrintJSON(repos)
			}

			out.Println()

			current := config.Load().Repository()
			for _, name := range repos {
				if name == current {
					out.Print("* %s\n", name)
				} else {
					out.Print("  %s\n", name)
				}
			}

			return nil
		},
	}
}

func newRepoUseCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "use <name>",
		Short:   "Select a repository by name",
		Long:    `Select the repository fmelink works against. The name is confirmed to exist on the server before it is saved.`,
		Example: `  fmelink repo use Production`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := output.FromContext(cmd.Context())
			name := args[0]

			_, c, err := newAPIClient()
			if err != nil {
				return err
			}

			spin := out.Spinner("Confirming repository")
			spin.Start()

			if _, err := c.GetRepository(cmd.Context(), name); err != nil {
				spin.StopWithFailure("Repository not confirmed")
				return clierrors.RepositoryNotFound(name)
			}

			spin.Stop()

			return saveRepository(out, name, nil)
		},
	}
}

func newRepoSelectCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "select",
		Short:   "Pick a repository interactively",
		Long:    `Fetch the repository list from the server and pick one interactively.`,
		Example: `  fmelink repo select`,
		Args:    noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := output.FromContext(cmd.Context())
			prompter := prompt.New(out)

			if !prompter.CanPrompt() {
				return clierrors.CannotPrompt("FMELINK_NO_INPUT").
					WithHint("Use 'fmelink repo use <name>' in non-interactive environments")
			}

			_, c, err := newAPIClient()
			if err != nil {
				return err
			}

			spin := out.Spinner("Fetching repositories")
			spin.Start()

			repos, err := c.ListRepositories(cmd.Context())
			if err != nil {
				spin.StopWithFailure("Failed to fetch repositories")
				return err
			}

			spin.Stop()

			if len(repos) == 0 {
				return clierrors.NoRepositories()
			}

			selected, err := prompter.SelectRepository(repos, config.Load().Repository())
			if err != nil {
				if prompt.IsCanceled(err) {
					out.Muted("Selection canceled")
					return nil
				}

				return err
			}

			return saveRepository(out, selected, repos)
		},
	}
}

// saveRepository persists the selection and reports whether dependent
// state (the cached repository list of other sessions) became stale.
func saveRepository(out *output.Writer, name string, known []string) error {
	cfg := config.Load()
	sync := settings.NewSynchronizer(settings.NewConfigStore(cfg), settings.Hooks{})

	commit, err := sync.CommitRepository(name, known)
	if err != nil {
		return err
	}

	if !commit.Changed {
		out.Muted("Repository already set to %s", name)
		return nil
	}

	out.Success("Selected repository: %s", name)

	return nil
}
