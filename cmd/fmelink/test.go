package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fmelink-dev/fmelink/internal/config"
	clierrors "github.com/fmelink-dev/fmelink/internal/errors"
	"github.com/fmelink-dev/fmelink/internal/observability"
	"github.com/fmelink-dev/fmelink/internal/output"
	"github.com/fmelink-dev/fmelink/internal/probe"
	"github.com/fmelink-dev/fmelink/internal/settings"
	"github.com/fmelink-dev/fmelink/internal/validate"
)

// TestReport is the JSON shape of a connection test outcome.
type TestReport struct {
	Status       string            `json:"status"`
	Message      string            `json:"message,omitempty"`
	ServerURL    string            `json:"serverUrl"`
	Token        string            `json:"token"`
	Repository   string            `json:"repository"`
	Version      string            `json:"serverVersion,omitempty"`
	FieldErrors  map[string]string `json:"fieldErrors,omitempty"`
	Repositories []string          `json:"repositories,omitempty"`
	Hint         string            `json:"hint,omitempty"`
}

func newTestCmd() *cobra.Command {
	var silent bool

	cmd := &cobra.Command{
		Use:   "test",
		Short: "Test the connection to FME Flow",
		Long: `Test the configured connection end to end.

The test runs in phases:
  1. Server URL and token are checked against the /info endpoint
  2. The repository list is fetched (failure here is not fatal)
  3. The selected repository is confirmed to exist on the server

Each phase is attributed to the field that caused a failure, so a bad
token never reports as a bad URL.`,
		Example: `  fmelink test
  fmelink test --json`,
		Args: noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := output.FromContext(cmd.Context())

			cfg := config.Load()
			store := settings.NewConfigStore(cfg)
			session := probe.NewSession(store,
				probe.WithLogger(observability.FromContext(cmd.Context())))
			defer session.Close()

			if !out.JSON {
				out.Print("Testing connection to %s\n\n", displayServerURL(store))
			}

			report, err := session.Test(cmd.Context(), probe.TestOptions{Silent: silent})
			if err != nil {
				return fmt.Errorf("run connection test: %w", err)
			}

			if out.JSON {
				return out.PrintJSON(buildTestReport(report))
			}

			renderSteps(out, report.Steps)

			for _, field := range []validate.Field{
				validate.FieldServerURL,
				validate.FieldToken,
				validate.FieldRepository,
				validate.FieldSupportEmail,
			} {
				if msg := report.FieldErrors[field]; msg != "" {
					out.Muted("    %s: %s", field, msg)
				}
			}

			if report.Hint != "" {
				out.Println()
				out.Warning("%s", report.Hint)
			}

			out.Println()

			if report.State.Status == probe.StatusSuccess {
				if report.State.Message != "" {
					out.Success("%s", report.State.Message)
				}

				return nil
			}

			return testFailure(report)
		},
	}

	cmd.Flags().BoolVar(&silent, "silent", false, "Suppress the result banner (steps and field errors still shown)")

	return cmd
}

func displayServerURL(store settings.Store) string {
	if url := store.ServerURL(); url != "" {
		return url
	}

	return "(no server URL configured)"
}

func renderSteps(out *output.Writer, steps probe.Steps) {
	renderStep(out, "Server URL", steps.ServerURL)
	renderStep(out, "Token", steps.Token)
	renderStep(out, "Repository", steps.Repository)

	if steps.Version != "" {
		out.Muted("    FME Flow %s", steps.Version)
	}
}

func renderStep(out *output.Writer, name string, status probe.StepStatus) {
	switch status {
	case probe.StepOK:
		out.Success("%-12s ok", name)
	case probe.StepFail:
		out.Failure("%-12s failed", name)
	case probe.StepSkip:
		out.Muted("  %-12s skipped", name)
	case probe.StepPending:
		out.Print("  %-12s pending\n", name)
	default:
		out.Print("  %-12s -\n", name)
	}
}

// testFailure converts a failed report into a CLIError whose exit code
// reflects the failing phase.
func testFailure(report probe.Report) error {
	message := report.State.Message
	if message == "" {
		message = "Connection test failed"
	}

	code := clierrors.ExitConfig

	switch {
	case report.Steps.Token == probe.StepFail:
		code = clierrors.ExitAuth
	case report.Steps.ServerURL == probe.StepFail:
		code = clierrors.ExitNetwork
	}

	err := clierrors.New(code, message)

	switch code {
	case clierrors.ExitAuth:
		return err.WithHint("Run 'fmelink auth login' with a fresh token")
	case clierrors.ExitNetwork:
		return err.WithHint("Check the server URL and your network connection")
	default:
		return err.WithHint("Run 'fmelink repo list' to see available repositories")
	}
}

func buildTestReport(report probe.Report) TestReport {
	jsonReport := TestReport{
		Status:       statusLabel(report.State.Status),
		Message:      report.State.Message,
		ServerURL:    stepLabel(report.Steps.ServerURL),
		Token:        stepLabel(report.Steps.Token),
		Repository:   stepLabel(report.Steps.Repository),
		Version:      report.Steps.Version,
		Repositories: report.AvailableRepos,
		Hint:         report.Hint,
	}

	if len(report.FieldErrors) > 0 {
		jsonReport.FieldErrors = make(map[string]string, len(report.FieldErrors))
		for field, msg := range report.FieldErrors {
			jsonReport.FieldErrors[string(field)] = msg
		}
	}

	return jsonReport
}

func statusLabel(s probe.Status) string {
	switch s {
	case probe.StatusSuccess:
		return "success"
	case probe.StatusError:
		return "error"
	case probe.StatusRunning:
		return "running"
	default:
		return "idle"
	}
}

func stepLabel(s probe.StepStatus) string {
	switch s {
	case probe.StepOK:
		return "ok"
	case probe.StepFail:
		return "fail"
	case probe.StepSkip:
		return "skip"
	case probe.StepPending:
		return "pending"
	default:
		return "idle"
	}
}
