// Package wizard provides the initialization wizard for fmelink.
//
// The wizard guides users through first-time setup:
//  1. Welcome message
//  2. Server URL input and sanitization
//  3. Token input and validation
//  4. Credential storage
//  5. Repository selection
//  6. Next steps guidance
package wizard

import (
	"context"
	"fmt"

	"github.com/fmelink-dev/fmelink/internal/auth"
	"github.com/fmelink-dev/fmelink/internal/client"
	"github.com/fmelink-dev/fmelink/internal/config"
	"github.com/fmelink-dev/fmelink/internal/output"
	"github.com/fmelink-dev/fmelink/internal/prompt"
	"github.com/fmelink-dev/fmelink/internal/settings"
)

// Wizard handles the initialization flow.
type Wizard struct {
	out      *output.Writer
	prompter *prompt.Prompter
	force    bool
}

// New creates a new initialization wizard.
func New(out *output.Writer, force bool) *Wizard {
	return &Wizard{
		out:      out,
		prompter: prompt.New(out),
		force:    force,
	}
}

// Run executes the initialization wizard.
func (w *Wizard) Run(ctx context.Context) error {
	// Welcome
	w.out.Println("Welcome to fmelink!")
	w.out.Println("===================")
	w.out.Println()
	w.out.Println("fmelink connects your machine to an FME Flow instance,")
	w.out.Println("validating the server URL, token, and repository selection.")
	w.out.Println()

	// Check for existing credentials
	source, existingToken := auth.GetToken()
	if existingToken != "" && !w.force {
		w.out.Warning("Existing token found (via %s)", source)

		if !w.prompter.CanPrompt() {
			w.out.Println()
			w.out.Info("Run with --force to overwrite the existing token")
			return nil
		}

		overwrite, err := w.prompter.Confirm("Overwrite the existing token?", false)
		if err != nil {
			return err
		}
		if !overwrite {
			w.out.Println()
			w.out.Success("Keeping existing token")
			w.showNextSteps()
			return nil
		}
		w.out.Println()
	}

	// Check for non-interactive mode
	if !w.prompter.CanPrompt() {
		w.out.Failure("Cannot run init wizard in non-interactive mode")
		w.out.Println()
		w.out.Info("Either:")
		w.out.Print("  1. Run without --no-input flag\n")
		w.out.Print("  2. Set %s environment variable\n", auth.EnvVarName)
		w.out.Print("  3. Run 'fmelink auth login' interactively\n")
		return nil
	}

	cfg := config.Load()
	sync := settings.NewSynchronizer(settings.NewConfigStore(cfg), settings.Hooks{})

	// Step 1: Server URL
	w.out.Println("Step 1: Server URL")
	w.out.Println("------------------")
	w.out.Println("Enter the base URL of your FME Flow instance.")
	w.out.Muted("Pasting the full REST URL is fine; the API path is stripped.")
	w.out.Println()

	rawURL, err := w.prompter.Input("Server URL", cfg.ServerURL())
	if err != nil {
		return fmt.Errorf("failed to read server URL: %w", err)
	}

	urlCommit, err := sync.CommitServerURL(rawURL)
	if err != nil {
		w.out.Failure("%s", err.Error())
		return nil
	}

	serverURL := urlCommit.Value
	if urlCommit.Changed {
		w.out.Success("Server URL saved: %s", serverURL)
	}

	// Step 2: Token
	w.out.Println()
	w.out.Println("Step 2: Authentication")
	w.out.Println("----------------------")
	w.out.Println("Enter your FME Flow API token.")
	w.out.Muted("Create one under User Settings > API Tokens in the FME Flow web UI.")
	w.out.Println()

	token, err := w.prompter.Token("API Token")
	if err != nil {
		return fmt.Errorf("failed to read token: %w", err)
	}

	if token == "" {
		w.out.Failure("Token cannot be empty")
		return nil
	}

	// Validate with spinner
	w.out.Println()
	spin := w.out.Spinner("Validating token")
	spin.Start()

	c := client.New(serverURL, token).WithTimeout(cfg.RequestTimeout())

	info, err := c.Check(ctx)
	if err != nil {
		spin.StopWithFailure("Token validation failed")
		w.out.Muted("%s", err.Error())
		return nil
	}

	spin.StopWithSuccess(fmt.Sprintf("Connected to FME Flow %s", info.Version))

	// Store the token before repository selection (so it persists even
	// if the user cancels)
	w.out.Println()
	spin = w.out.Spinner("Storing credentials")
	spin.Start()

	if _, storeErr := sync.CommitToken(token); storeErr != nil {
		spin.StopWithFailure("Failed to store credentials")
		w.out.Muted("%s", storeErr.Error())
		return nil
	}

	spin.StopWithSuccess("Credentials stored securely")

	// Step 3: Repository selection
	w.out.Println()
	w.out.Println("Step 3: Select Repository")
	w.out.Println("-------------------------")
	w.out.Println("Select the repository your workspaces live in.")
	w.out.Println()

	spin = w.out.Spinner("Fetching repositories")
	spin.Start()

	repos, err := c.ListRepositories(ctx)
	if err != nil {
		spin.StopWithFailure("Failed to fetch repositories")
		w.out.Muted("%s", err.Error())
		w.out.Println()
		w.out.Warning("You can select a repository later with 'fmelink repo use <name>'")
		w.showNextSteps()
		return nil
	}

	spin.StopWithSuccess("Found repositories")

	if len(repos) == 0 {
		w.out.Println()
		w.out.Warning("No repositories found on the server")
		w.out.Info("Create a repository in FME Flow first, then run 'fmelink repo use <name>'")
		w.showNextSteps()
		return nil
	}

	selected, err := w.prompter.SelectRepository(repos, cfg.Repository())
	if err != nil {
		if prompt.IsCanceled(err) {
			w.out.Println()
			w.out.Warning("Repository selection skipped")
			w.showNextSteps()
			return nil
		}

		return fmt.Errorf("failed to select repository: %w", err)
	}

	if _, err := sync.CommitRepository(selected, repos); err != nil {
		w.out.Warning("Failed to save repository to config: %s", err.Error())
	} else {
		w.out.Success("Selected repository: %s", selected)
	}

	// Success
	w.out.Println()
	w.out.Success("fmelink is ready!")
	w.showNextSteps()

	return nil
}

func (w *Wizard) showNextSteps() {
	w.out.Println()
	w.out.Println("Next steps:")
	w.out.Println("  fmelink test         Test the connection")
	w.out.Println("  fmelink doctor       Check your setup")
	w.out.Println("  fmelink --help       See all commands")
}
