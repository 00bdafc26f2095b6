// Package errors provides structured CLI error types for fmelink.
//
// CLIError wraps errors with user-facing messages, hints, and exit codes
// to provide consistent, actionable error output across all commands.
package errors

import (
	"errors"
	"fmt"
)

// Exit codes for CLI errors.
const (
	ExitSuccess = 0  // Successful execution
	ExitGeneral = 1  // General error
	ExitAuth    = 2  // Authentication error
	ExitNetwork = 3  // Network/API error
	ExitConfig  = 4  // Configuration error
	ExitTimeout = 5  // Request timeout
	ExitUsage   = 64 // Command line usage error (BSD convention)
)

// CLIError represents a user-facing CLI error with actionable guidance.
type CLIError struct {
	// Message is the primary error message shown to the user.
	Message string

	// Hint provides actionable guidance on how to fix the error.
	Hint string

	// Cause is the underlying error, if any.
	Cause error

	// Code is the exit code for the CLI.
	Code int
}

// Error implements the error interface.
func (e *CLIError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}

	return e.Message
}

// Unwrap returns the underlying cause for errors.Is/As support.
func (e *CLIError) Unwrap() error {
	return e.Cause
}

// New creates a new CLIError with the given message and exit code.
func New(code int, message string) *CLIError {
	return &CLIError{
		Message: message,
		Code:    code,
	}
}

// Wrap wraps an existing error with a CLIError.
func Wrap(code int, message string, cause error) *CLIError {
	return &CLIError{
		Message: message,
		Cause:   cause,
		Code:    code,
	}
}

// WithHint adds a hint to the error.
func (e *CLIError) WithHint(hint string) *CLIError {
	e.Hint = hint
	return e
}

// As is a convenience function for errors.As with CLIError.
func As(err error, target **CLIError) bool {
	return errors.As(err, target)
}

// --- Common error constructors ---

// NotAuthenticated returns an error indicating missing credentials.
func NotAuthenticated() *CLIError {
	return &CLIError{
		Message: "Not authenticated",
		Hint:    "Run 'fmelink auth login' to store an API token",
		Code:    ExitAuth,
	}
}

// AuthFailed returns an error for failed authentication.
func AuthFailed(cause error) *CLIError {
	return &CLIError{
		Message: "Authentication failed",
		Hint:    "Check your token or run 'fmelink auth login'",
		Cause:   cause,
		Code:    ExitAuth,
	}
}

// TokenEmpty returns an error when the API token is empty.
func TokenEmpty() *CLIError {
	return &CLIError{
		Message: "Token cannot be empty",
		Hint:    "Enter a valid token or set FMELINK_TOKEN environment variable",
		Code:    ExitAuth,
	}
}

// TokenInvalid returns an error for a token that fails local validation.
func TokenInvalid() *CLIError {
	return &CLIError{
		Message: "Token is not valid",
		Hint:    "Tokens must be at least 8 characters and contain no whitespace or quotes",
		Code:    ExitAuth,
	}
}

// ServerURLRequired returns an error when no server URL is configured.
func ServerURLRequired() *CLIError {
	return &CLIError{
		Message: "Server URL required",
		Hint:    "Run 'fmelink config set server.url <url>' or 'fmelink init'",
		Code:    ExitConfig,
	}
}

// ServerURLInvalid returns an error for a malformed server URL.
func ServerURLInvalid(raw string) *CLIError {
	return &CLIError{
		Message: fmt.Sprintf("Invalid server URL: %s", raw),
		Hint:    "Use the base URL of your FME Flow instance, e.g. https://flow.example.com",
		Code:    ExitConfig,
	}
}

// CannotPrompt returns an error when interactive prompts are unavailable.
func CannotPrompt(envVar string) *CLIError {
	return &CLIError{
		Message: "Cannot prompt in non-interactive mode",
		Hint:    fmt.Sprintf("Set %s environment variable instead", envVar),
		Code:    ExitUsage,
	}
}

// RepositoryNotFound returns an error for an unknown repository.
func RepositoryNotFound(name string) *CLIError {
	return &CLIError{
		Message: fmt.Sprintf("Repository not found: %s", name),
		Hint:    "Run 'fmelink repo list' to see available repositories",
		Code:    ExitConfig,
	}
}

// NoRepositories returns an error when the server has no repositories.
func NoRepositories() *CLIError {
	return &CLIError{
		Message: "No repositories found on the server",
		Hint:    "Create a repository in FME Flow first",
		Code:    ExitConfig,
	}
}

// RepositoryRequired returns an error when a repository is required but not selected.
func RepositoryRequired() *CLIError {
	return &CLIError{
		Message: "Repository required",
		Hint:    "Run 'fmelink repo use <name>' to select a repository",
		Code:    ExitConfig,
	}
}

// ConnectionFailed returns an error for a failed connection test.
func ConnectionFailed(cause error) *CLIError {
	return &CLIError{
		Message: "Connection test failed",
		Hint:    "Run 'fmelink doctor' for a detailed diagnosis",
		Cause:   cause,
		Code:    ExitNetwork,
	}
}

// ConnectionTimedOut returns an error when the server does not answer in time.
func ConnectionTimedOut(timeout string) *CLIError {
	return &CLIError{
		Message: fmt.Sprintf("Connection timed out after %s", timeout),
		Hint:    "Check that the server is reachable and not behind a blocking firewall",
		Code:    ExitTimeout,
	}
}

// ConfigFailed returns an error for configuration save failures.
func ConfigFailed(operation string, cause error) *CLIError {
	return &CLIError{
		Message: fmt.Sprintf("Failed to %s", operation),
		Hint:    "Check file permissions for your fmelink config directory or run 'fmelink doctor'",
		Cause:   cause,
		Code:    ExitConfig,
	}
}

// ProfileNotFound returns an error for an unknown connection profile.
func ProfileNotFound(name string) *CLIError {
	return &CLIError{
		Message: fmt.Sprintf("Profile not found: %s", name),
		Hint:    "Run 'fmelink profile list' to see saved profiles",
		Code:    ExitConfig,
	}
}
