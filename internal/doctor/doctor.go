// Package doctor provides diagnostic checks for fmelink health.
//
// This package implements a check framework that validates:
//   - Server connectivity and response time
//   - Authentication status and token source
//   - Repository selection against the server
//   - Server version against the minimum supported release
//   - CLI version against the latest release
package doctor

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/semver/v3"

	"github.com/fmelink-dev/fmelink/internal/apierror"
	"github.com/fmelink-dev/fmelink/internal/auth"
	"github.com/fmelink-dev/fmelink/internal/buildinfo"
	"github.com/fmelink-dev/fmelink/internal/client"
	"github.com/fmelink-dev/fmelink/internal/config"
	"github.com/fmelink-dev/fmelink/internal/update"
)

// minServerVersion is the oldest FME Flow release the CLI is tested
// against. Older servers mostly work but repository listing semantics
// differ.
const minServerVersion = "2022.0.0"

// Status represents the result of a diagnostic check.
type Status int

const (
	// StatusPass indicates the check passed.
	StatusPass Status = iota
	// StatusWarn indicates a non-critical issue.
	StatusWarn
	// StatusFail indicates a critical failure.
	StatusFail
)

// Result holds the outcome of a single check.
type Result struct {
	Name    string
	Status  Status
	Message string
	Detail  string // Optional additional detail
}

// Check is a diagnostic check function.
type Check func(ctx context.Context) Result

// Runner executes diagnostic checks.
type Runner struct {
	checks []namedCheck
}

type namedCheck struct {
	name  string
	check Check
}

// New creates a new diagnostic runner.
func New() *Runner {
	r := &Runner{}

	// Register default checks
	r.AddCheck("Server Connectivity", checkServerConnectivity)
	r.AddCheck("Authentication", checkAuthentication)
	r.AddCheck("Repository", checkRepository)
	r.AddCheck("Server Version", checkServerVersion)
	r.AddCheck("CLI Version", checkCLIVersion)

	return r
}

// AddCheck registers a diagnostic check.
func (r *Runner) AddCheck(name string, check Check) {
	r.checks = append(r.checks, namedCheck{name: name, check: check})
}

// Run executes all registered checks and returns the results.
func (r *Runner) Run(ctx context.Context) []Result {
	results := make([]Result, 0, len(r.checks))

	for _, nc := range r.checks {
		result := nc.check(ctx)
		result.Name = nc.name
		results = append(results, result)
	}

	return results
}

// Summary returns counts of passed, failed, and warning checks.
func Summary(results []Result) (passed, failed, warnings int) {
	for _, r := range results {
		switch r.Status {
		case StatusPass:
			passed++
		case StatusFail:
			failed++
		case StatusWarn:
			warnings++
		}
	}

	return passed, failed, warnings
}

// checkServerConnectivity tests the connection to the configured server.
func checkServerConnectivity(ctx context.Context) Result {
	cfg := config.Load()

	serverURL := cfg.ServerURL()
	if serverURL == "" {
		return Result{
			Status:  StatusFail,
			Message: "No server URL configured",
			Detail:  "Run 'fmelink init' or 'fmelink config set server.url <url>'",
		}
	}

	start := time.Now()

	// Probe without credentials; a 401 still proves the server answered.
	c := client.New(serverURL, "").WithTimeout(cfg.RequestTimeout())

	_, err := c.Check(ctx)
	elapsed := time.Since(start)

	if err != nil {
		mapped := apierror.Map(err)
		if mapped.Kind == apierror.KindUnauthorized {
			return Result{
				Status:  StatusPass,
				Message: fmt.Sprintf("%s (%dms)", serverURL, elapsed.Milliseconds()),
			}
		}

		return Result{
			Status:  StatusFail,
			Message: serverURL,
			Detail:  mapped.Message,
		}
	}

	return Result{
		Status:  StatusPass,
		Message: fmt.Sprintf("%s (%dms)", serverURL, elapsed.Milliseconds()),
	}
}

// checkAuthentication validates the stored token against the server.
func checkAuthentication(ctx context.Context) Result {
	source, token := auth.GetToken()

	if token == "" {
		return Result{
			Status:  StatusFail,
			Message: "Not authenticated",
			Detail:  "Run 'fmelink auth login' to store a token",
		}
	}

	cfg := config.Load()

	serverURL := cfg.ServerURL()
	if serverURL == "" {
		return Result{
			Status:  StatusWarn,
			Message: fmt.Sprintf("Token present (via %s), no server to validate against", source),
		}
	}

	c := client.New(serverURL, token).WithTimeout(cfg.RequestTimeout())

	if _, err := c.Check(ctx); err != nil {
		mapped := apierror.Map(err)
		if mapped.Kind == apierror.KindUnauthorized {
			return Result{
				Status:  StatusFail,
				Message: fmt.Sprintf("Token rejected (via %s)", source),
				Detail:  "Run 'fmelink auth login' with a fresh token",
			}
		}

		return Result{
			Status:  StatusWarn,
			Message: fmt.Sprintf("Token present (via %s), validation unavailable", source),
			Detail:  mapped.Message,
		}
	}

	return Result{
		Status:  StatusPass,
		Message: fmt.Sprintf("Token valid (via %s)", source),
	}
}

// checkRepository verifies the selected repository exists on the server.
func checkRepository(ctx context.Context) Result {
	cfg := config.Load()

	repo := cfg.Repository()
	if repo == "" {
		return Result{
			Status:  StatusWarn,
			Message: "No repository selected",
			Detail:  "Run 'fmelink repo use <name>' to select one",
		}
	}

	serverURL := cfg.ServerURL()

	_, token := auth.GetToken()
	if serverURL == "" || token == "" {
		return Result{
			Status:  StatusWarn,
			Message: fmt.Sprintf("%s (not verified; server or token missing)", repo),
		}
	}

	c := client.New(serverURL, token).WithTimeout(cfg.RequestTimeout())

	if _, err := c.GetRepository(ctx, repo); err != nil {
		mapped := apierror.Map(err)
		if mapped.Kind == apierror.KindNotFound {
			return Result{
				Status:  StatusFail,
				Message: fmt.Sprintf("%q not found on the server", repo),
				Detail:  "Run 'fmelink repo list' to see available repositories",
			}
		}

		return Result{
			Status:  StatusWarn,
			Message: fmt.Sprintf("%s (not verified)", repo),
			Detail:  mapped.Message,
		}
	}

	return Result{
		Status:  StatusPass,
		Message: repo,
	}
}

// checkServerVersion compares the server version against the minimum
// supported release.
func checkServerVersion(ctx context.Context) Result {
	cfg := config.Load()

	serverURL := cfg.ServerURL()

	_, token := auth.GetToken()
	if serverURL == "" || token == "" {
		return Result{
			Status:  StatusWarn,
			Message: "Unknown (server or token missing)",
		}
	}

	c := client.New(serverURL, token).WithTimeout(cfg.RequestTimeout())

	info, err := c.Check(ctx)
	if err != nil {
		return Result{
			Status:  StatusWarn,
			Message: "Unknown (server unreachable)",
			Detail:  apierror.Map(err).Message,
		}
	}

	reported, err := semver.NewVersion(info.Version)
	if err != nil {
		return Result{
			Status:  StatusWarn,
			Message: fmt.Sprintf("%s (unrecognized version format)", info.Version),
		}
	}

	minimum := semver.MustParse(minServerVersion)
	if reported.LessThan(minimum) {
		return Result{
			Status:  StatusWarn,
			Message: fmt.Sprintf("FME Flow %s (older than %s)", info.Version, minServerVersion),
			Detail:  "Some features may not work on this release",
		}
	}

	return Result{
		Status:  StatusPass,
		Message: fmt.Sprintf("FME Flow %s", info.Version),
	}
}

// checkCLIVersion checks the CLI version against the latest release.
func checkCLIVersion(ctx context.Context) Result {
	current := buildinfo.Version

	if current == "dev" {
		return Result{
			Status:  StatusWarn,
			Message: "Development build (version check skipped)",
		}
	}

	if update.IsDisabled() {
		return Result{
			Status:  StatusPass,
			Message: fmt.Sprintf("v%s (update checks disabled)", current),
		}
	}

	checkCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	updater, err := update.NewUpdater()
	if err != nil {
		return Result{
			Status:  StatusWarn,
			Message: fmt.Sprintf("v%s (could not check for updates)", current),
			Detail:  err.Error(),
		}
	}

	info, err := updater.CheckLatest(checkCtx, current)
	if err != nil {
		return Result{
			Status:  StatusWarn,
			Message: fmt.Sprintf("v%s (could not check for updates)", current),
			Detail:  err.Error(),
		}
	}

	if info.UpdateAvailable {
		return Result{
			Status:  StatusWarn,
			Message: fmt.Sprintf("v%s (v%s available)", current, info.LatestVersion),
			Detail:  "Run 'fmelink update' to update",
		}
	}

	return Result{
		Status:  StatusPass,
		Message: fmt.Sprintf("v%s (latest)", current),
	}
}

// RenderResults formats diagnostic results to the given output writer.
func RenderResults(results []Result, printFn, successFn, warningFn, failureFn, mutedFn func(format string, args ...any)) {
	maxNameLen := 0
	for _, r := range results {
		if len(r.Name) > maxNameLen {
			maxNameLen = len(r.Name)
		}
	}

	for _, r := range results {
		symbol := r.Status.Symbol()
		padding := maxNameLen - len(r.Name) + 4

		switch r.Status {
		case StatusPass:
			successFn("%-*s%s", len(r.Name)+padding, r.Name, r.Message)
		case StatusWarn:
			warningFn("%-*s%s", len(r.Name)+padding, r.Name, r.Message)
		case StatusFail:
			failureFn("%-*s%s", len(r.Name)+padding, r.Name, r.Message)
		default:
			printFn("%s %-*s%s\n", symbol, len(r.Name)+padding, r.Name, r.Message)
		}

		if r.Detail != "" {
			mutedFn("    %s", r.Detail)
		}
	}
}

// Symbol returns the status symbol for display.
func (s Status) Symbol() string {
	switch s {
	case StatusPass:
		return checkMark
	case StatusWarn:
		return warningMark
	case StatusFail:
		return xMark
	default:
		return "?"
	}
}

const (
	checkMark   = "✓" // ✓
	xMark       = "✗" // ✗
	warningMark = "⚠" // ⚠
)
