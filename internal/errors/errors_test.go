package errors

import (
	"errors"
	"strings"
	"testing"
)

func TestCLIError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *CLIError
		want string
	}{
		{
			name: "message only",
			err:  &CLIError{Message: "test error"},
			want: "test error",
		},
		{
			name: "message with cause",
			err:  &CLIError{Message: "test error", Cause: New(1, "underlying")},
			want: "test error: underlying",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCLIError_Unwrap(t *testing.T) {
	cause := New(1, "cause")
	err := &CLIError{Message: "wrapper", Cause: cause}

	if got := err.Unwrap(); got != cause { //nolint:errorlint // testing identity
		t.Errorf("Unwrap() = %v, want %v", got, cause)
	}

	if !errors.Is(err, cause) {
		t.Error("errors.Is should see through CLIError")
	}
}

func TestWithHint(t *testing.T) {
	err := New(1, "test").WithHint("do this")

	if err.Hint != "do this" {
		t.Errorf("WithHint() hint = %q, want %q", err.Hint, "do this")
	}
}

func TestWrap(t *testing.T) {
	cause := New(1, "cause")
	err := Wrap(ExitNetwork, "wrapped", cause)

	if err.Code != ExitNetwork {
		t.Errorf("Wrap() code = %d, want %d", err.Code, ExitNetwork)
	}

	if err.Cause != cause { //nolint:errorlint // testing struct field identity
		t.Errorf("Wrap() cause = %v, want %v", err.Cause, cause)
	}
}

func TestAs(t *testing.T) {
	var target *CLIError

	wrapped := Wrap(ExitAuth, "outer", errors.New("inner"))
	if !As(wrapped, &target) {
		t.Fatal("As() should match a CLIError")
	}
	if target.Code != ExitAuth {
		t.Errorf("code = %d, want %d", target.Code, ExitAuth)
	}

	if As(errors.New("plain"), &target) {
		t.Error("As() should not match a plain error")
	}
}

// TestAllErrorsHaveHints verifies that all error constructors provide actionable hints.
func TestAllErrorsHaveHints(t *testing.T) {
	tests := []struct {
		name string
		err  *CLIError
	}{
		{"NotAuthenticated", NotAuthenticated()},
		{"AuthFailed", AuthFailed(nil)},
		{"TokenEmpty", TokenEmpty()},
		{"TokenInvalid", TokenInvalid()},
		{"ServerURLRequired", ServerURLRequired()},
		{"ServerURLInvalid", ServerURLInvalid("htp:/bad")},
		{"CannotPrompt", CannotPrompt("TEST_VAR")},
		{"RepositoryNotFound", RepositoryNotFound("Samples")},
		{"NoRepositories", NoRepositories()},
		{"RepositoryRequired", RepositoryRequired()},
		{"ConnectionFailed", ConnectionFailed(nil)},
		{"ConnectionTimedOut", ConnectionTimedOut("30s")},
		{"ConfigFailed", ConfigFailed("save configuration", nil)},
		{"ProfileNotFound", ProfileNotFound("staging")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Hint == "" {
				t.Errorf("%s() should have a hint, got empty string", tt.name)
			}

			if tt.err.Message == "" {
				t.Errorf("%s() should have a message, got empty string", tt.name)
			}
		})
	}
}

func TestExitCodes(t *testing.T) {
	tests := []struct {
		name string
		err  *CLIError
		want int
	}{
		{"NotAuthenticated", NotAuthenticated(), ExitAuth},
		{"TokenEmpty", TokenEmpty(), ExitAuth},
		{"ServerURLRequired", ServerURLRequired(), ExitConfig},
		{"ConnectionFailed", ConnectionFailed(nil), ExitNetwork},
		{"ConnectionTimedOut", ConnectionTimedOut("30s"), ExitTimeout},
		{"CannotPrompt", CannotPrompt("FMELINK_TOKEN"), ExitUsage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Code != tt.want {
				t.Errorf("code = %d, want %d", tt.err.Code, tt.want)
			}
		})
	}
}

func TestRepositoryNotFound_NamesRepository(t *testing.T) {
	err := RepositoryNotFound("Production")

	if !strings.Contains(err.Message, "Production") {
		t.Errorf("message = %q, want to contain repository name", err.Message)
	}
	if err.Code != ExitConfig {
		t.Errorf("code = %d, want %d", err.Code, ExitConfig)
	}
}
