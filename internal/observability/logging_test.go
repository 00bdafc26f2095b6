package observability

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNewLogger_DefaultFileFallbackForInteractiveAuto(t *testing.T) {
	stateRoot := t.TempDir()
	t.Setenv("XDG_STATE_HOME", stateRoot)

	cfg := &Config{
		Level:          "info",
		Format:         "json",
		LogFile:        "",
		StderrMode:     "auto",
		InteractiveTTY: true,
		SessionID:      "session-test",
		CommandPath:    "fmelink test",
		Version:        "test",
		Commit:         "abc123",
	}

	logger, cleanup, err := NewLogger(cfg)
	if err != nil {
		t.Fatalf("NewLogger() error = %v", err)
	}

	logger.Info("hello from test")

	if cleanup != nil {
		if closeErr := cleanup(); closeErr != nil {
			t.Fatalf("cleanup() error = %v", closeErr)
		}
	}

	logPath := filepath.Join(stateRoot, "fmelink", "logs", "fmelink.log")

	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("ReadFile(%q) error = %v", logPath, err)
	}

	if len(data) == 0 {
		t.Fatalf("log file %q is empty", logPath)
	}
}

func TestNewLogger_InvalidFormat(t *testing.T) {
	cfg := &Config{
		Level:      "info",
		Format:     "xml",
		StderrMode: "on",
	}

	if _, _, err := NewLogger(cfg); err == nil {
		t.Fatal("NewLogger() should reject unknown format")
	}
}

func TestNewLogger_InvalidLevel(t *testing.T) {
	cfg := &Config{
		Level:      "loud",
		Format:     "json",
		StderrMode: "on",
	}

	if _, _, err := NewLogger(cfg); err == nil {
		t.Fatal("NewLogger() should reject unknown level")
	}
}

func TestRotateLogFile_RotatesAndKeepsBoundedBackups(t *testing.T) {
	dir := t.TempDir()
	logPath := filepath.Join(dir, "fmelink.log")

	// Existing rotated files
	if err := os.WriteFile(logPath+".1", []byte("one"), 0o600); err != nil {
		t.Fatalf("write .1: %v", err)
	}

	if err := os.WriteFile(logPath+".2", []byte("two"), 0o600); err != nil {
		t.Fatalf("write .2: %v", err)
	}

	if err := os.WriteFile(logPath+".3", []byte("three"), 0o600); err != nil {
		t.Fatalf("write .3: %v", err)
	}

	// Current log above threshold
	if err := os.WriteFile(logPath, []byte("1234567890"), 0o600); err != nil {
		t.Fatalf("write current: %v", err)
	}

	if err := rotateLogFile(logPath, 5, 3); err != nil {
		t.Fatalf("rotateLogFile() error = %v", err)
	}

	if _, err := os.Stat(logPath); !os.IsNotExist(err) {
		t.Fatalf("expected current log to be rotated away, stat err = %v", err)
	}

	if _, err := os.Stat(logPath + ".1"); err != nil {
		t.Fatalf("expected .1 to exist, stat err = %v", err)
	}

	if _, err := os.Stat(logPath + ".2"); err != nil {
		t.Fatalf("expected .2 to exist, stat err = %v", err)
	}

	if _, err := os.Stat(logPath + ".3"); err != nil {
		t.Fatalf("expected .3 to exist, stat err = %v", err)
	}

	data3, err := os.ReadFile(logPath + ".3")
	if err != nil {
		t.Fatalf("read .3: %v", err)
	}

	if string(data3) != "two" {
		t.Fatalf("backup retention ordering wrong: .3 = %q, want %q", string(data3), "two")
	}
}

func TestRotateLogFile_BelowThresholdNoop(t *testing.T) {
	dir := t.TempDir()
	logPath := filepath.Join(dir, "fmelink.log")

	if err := os.WriteFile(logPath, []byte("tiny"), 0o600); err != nil {
		t.Fatalf("write current: %v", err)
	}

	if err := rotateLogFile(logPath, 1024, 3); err != nil {
		t.Fatalf("rotateLogFile() error = %v", err)
	}

	if _, err := os.Stat(logPath); err != nil {
		t.Fatalf("expected current log to remain, stat err = %v", err)
	}
}

func TestRedactAttr_SensitiveKeys(t *testing.T) {
	var buf bytes.Buffer

	handler := slog.NewJSONHandler(&buf, &slog.HandlerOptions{ReplaceAttr: redactAttr})
	logger := slog.New(handler)

	logger.Info("probing",
		slog.String("token", "super-secret-value"),
		slog.String("authorization", "fmetoken token=abc"),
		slog.String("server_url", "https://flow.example.com"),
	)

	var record map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &record); err != nil {
		t.Fatalf("unmarshal log record: %v", err)
	}

	if record["token"] != redactedValue {
		t.Errorf("token = %v, want redacted", record["token"])
	}
	if record["authorization"] != redactedValue {
		t.Errorf("authorization = %v, want redacted", record["authorization"])
	}
	if record["server_url"] != "https://flow.example.com" {
		t.Errorf("server_url = %v, want preserved", record["server_url"])
	}

	if strings.Contains(buf.String(), "super-secret-value") {
		t.Error("raw secret leaked into log output")
	}
}

func TestIsSensitiveKey(t *testing.T) {
	tests := []struct {
		key  string
		want bool
	}{
		{"token", true},
		{"api_key", true},
		{"apikey", true},
		{"client_secret", true},
		{"credential", true},
		{"password", true},
		{"authorization", true},
		{"server_url", false},
		{"repository", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := isSensitiveKey(tt.key); got != tt.want {
			t.Errorf("isSensitiveKey(%q) = %v, want %v", tt.key, got, tt.want)
		}
	}
}
