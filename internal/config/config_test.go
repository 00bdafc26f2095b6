package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

// unsetEnvForTest unsets an environment variable and registers cleanup to
// restore its original state (including distinguishing "unset" from "set to
// empty string").
func unsetEnvForTest(t *testing.T, key string) {
	t.Helper()
	t.Setenv(key, "")
	os.Unsetenv(key)
}

func isolateConfig(t *testing.T) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	unsetEnvForTest(t, "FMELINK_SERVER_URL")
	unsetEnvForTest(t, "FMELINK_SERVER_REPOSITORY")
	unsetEnvForTest(t, "FMELINK_SUPPORT_EMAIL")
	unsetEnvForTest(t, "FMELINK_REQUEST_TIMEOUT_SECONDS")
}

func TestLoad_Defaults(t *testing.T) {
	isolateConfig(t)

	cfg := Load()

	if got := cfg.ServerURL(); got != "" {
		t.Errorf("ServerURL() = %q, want empty", got)
	}
	if got := cfg.Repository(); got != "" {
		t.Errorf("Repository() = %q, want empty", got)
	}
	if got := cfg.RequestTimeout(); got != DefaultRequestTimeout*time.Second {
		t.Errorf("RequestTimeout() = %v, want %v", got, DefaultRequestTimeout*time.Second)
	}
}

func TestLoad_FromEnv(t *testing.T) {
	tests := []struct {
		name    string
		envVar  string
		envVal  string
		key     string
		wantStr string
		wantInt int
	}{
		{
			name:    "server URL from env",
			envVar:  "FMELINK_SERVER_URL",
			envVal:  "https://flow.example.com",
			key:     KeyServerURL,
			wantStr: "https://flow.example.com",
		},
		{
			name:    "repository from env",
			envVar:  "FMELINK_SERVER_REPOSITORY",
			envVal:  "Production",
			key:     KeyRepository,
			wantStr: "Production",
		},
		{
			name:    "timeout from env",
			envVar:  "FMELINK_REQUEST_TIMEOUT_SECONDS",
			envVal:  "60",
			key:     KeyRequestTimeout,
			wantInt: 60,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isolateConfig(t)
			t.Setenv(tt.envVar, tt.envVal)

			cfg := Load()

			if tt.wantStr != "" {
				got := cfg.GetString(tt.key)
				if got != tt.wantStr {
					t.Errorf("GetString(%q) = %q, want %q", tt.key, got, tt.wantStr)
				}
			}
			if tt.wantInt != 0 {
				got := cfg.GetInt(tt.key)
				if got != tt.wantInt {
					t.Errorf("GetInt(%q) = %d, want %d", tt.key, got, tt.wantInt)
				}
			}
		})
	}
}

func TestConfig_SetPersists(t *testing.T) {
	isolateConfig(t)

	cfg := Load()
	if err := cfg.Set(KeyServerURL, "https://flow.example.com"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	configDir, err := os.UserConfigDir()
	if err != nil {
		t.Skipf("no user config dir: %v", err)
	}

	path := filepath.Join(configDir, "fmelink", "config.yaml")
	if _, err := os.Stat(path); err != nil {
		// XDG override path
		path = filepath.Join(os.Getenv("XDG_CONFIG_HOME"), "fmelink", "config.yaml")
		if _, err := os.Stat(path); err != nil {
			t.Fatalf("config file not written: %v", err)
		}
	}

	// Fresh load should see the persisted value.
	reloaded := Load()
	if got := reloaded.ServerURL(); got != "https://flow.example.com" {
		t.Errorf("reloaded ServerURL() = %q, want persisted value", got)
	}
}

func TestConfig_Unset(t *testing.T) {
	isolateConfig(t)

	cfg := Load()
	if err := cfg.Set(KeyRepository, "Samples"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	if err := cfg.Unset(KeyRepository); err != nil {
		t.Fatalf("Unset() error = %v", err)
	}

	if got := cfg.Repository(); got != "" {
		t.Errorf("Repository() after Unset = %q, want empty", got)
	}

	reloaded := Load()
	if got := reloaded.Repository(); got != "" {
		t.Errorf("reloaded Repository() = %q, want empty", got)
	}
}

func TestConfig_All(t *testing.T) {
	isolateConfig(t)

	cfg := Load()
	all := cfg.All()

	if all == nil {
		t.Fatal("All() returned nil")
	}

	if _, ok := all["request"]; !ok {
		t.Error("All() missing 'request' key")
	}
}

func TestConfig_RequestTimeout_Invalid(t *testing.T) {
	isolateConfig(t)
	t.Setenv("FMELINK_REQUEST_TIMEOUT_SECONDS", "-5")

	cfg := Load()
	if got := cfg.RequestTimeout(); got != DefaultRequestTimeout*time.Second {
		t.Errorf("RequestTimeout() = %v, want default for invalid value", got)
	}
}
