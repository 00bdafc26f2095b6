package update

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func isolateState(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()
	t.Setenv("XDG_STATE_HOME", dir)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "config"))

	return dir
}

func TestLoadState_MissingFileReturnsEmpty(t *testing.T) {
	isolateState(t)

	state, err := LoadState()
	if err != nil {
		t.Fatalf("LoadState() error = %v", err)
	}

	if !state.LastCheckedAt.IsZero() {
		t.Errorf("LastCheckedAt = %v, want zero", state.LastCheckedAt)
	}
	if state.LatestVersion != "" {
		t.Errorf("LatestVersion = %q, want empty", state.LatestVersion)
	}
}

func TestSaveAndLoadState(t *testing.T) {
	isolateState(t)

	checked := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	in := &State{
		LastCheckedAt:  checked,
		LatestVersion:  "1.4.0",
		CurrentVersion: "1.3.2",
		ReleaseURL:     "https://github.com/fmelink-dev/fmelink/releases/tag/v1.4.0",
	}

	if err := SaveState(in); err != nil {
		t.Fatalf("SaveState() error = %v", err)
	}

	out, err := LoadState()
	if err != nil {
		t.Fatalf("LoadState() error = %v", err)
	}

	if !out.LastCheckedAt.Equal(checked) {
		t.Errorf("LastCheckedAt = %v, want %v", out.LastCheckedAt, checked)
	}
	if out.LatestVersion != "1.4.0" {
		t.Errorf("LatestVersion = %q, want 1.4.0", out.LatestVersion)
	}
	if out.CurrentVersion != "1.3.2" {
		t.Errorf("CurrentVersion = %q, want 1.3.2", out.CurrentVersion)
	}
}

func TestSaveState_OverwritesExisting(t *testing.T) {
	isolateState(t)

	if err := SaveState(&State{LatestVersion: "1.0.0"}); err != nil {
		t.Fatalf("SaveState() error = %v", err)
	}
	if err := SaveState(&State{LatestVersion: "2.0.0"}); err != nil {
		t.Fatalf("SaveState() second write error = %v", err)
	}

	state, err := LoadState()
	if err != nil {
		t.Fatalf("LoadState() error = %v", err)
	}
	if state.LatestVersion != "2.0.0" {
		t.Errorf("LatestVersion = %q, want 2.0.0", state.LatestVersion)
	}
}

func TestLoadState_CorruptedFileReturnsEmpty(t *testing.T) {
	dir := isolateState(t)

	stateDir := filepath.Join(dir, "fmelink")
	if err := os.MkdirAll(stateDir, 0o700); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(stateDir, "update-check.json"), []byte("{not json"), 0o600); err != nil {
		t.Fatal(err)
	}

	state, err := LoadState()
	if err != nil {
		t.Fatalf("LoadState() error = %v", err)
	}
	if state.LatestVersion != "" {
		t.Errorf("LatestVersion = %q, want empty for corrupted file", state.LatestVersion)
	}
}

func TestShouldCheck(t *testing.T) {
	tests := []struct {
		name  string
		state State
		want  bool
	}{
		{name: "never checked", state: State{}, want: true},
		{name: "checked just now", state: State{LastCheckedAt: time.Now()}, want: false},
		{name: "checked an hour ago", state: State{LastCheckedAt: time.Now().Add(-time.Hour)}, want: false},
		{name: "checked two days ago", state: State{LastCheckedAt: time.Now().Add(-48 * time.Hour)}, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.state.ShouldCheck(); got != tt.want {
				t.Errorf("ShouldCheck() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestHasUpdate(t *testing.T) {
	tests := []struct {
		name    string
		latest  string
		current string
		want    bool
	}{
		{name: "newer available", latest: "1.4.0", current: "1.3.2", want: true},
		{name: "same version", latest: "1.3.2", current: "1.3.2", want: false},
		{name: "current is newer", latest: "1.3.2", current: "1.4.0", want: false},
		{name: "no cached latest", latest: "", current: "1.3.2", want: false},
		{name: "dev build", latest: "1.4.0", current: "dev", want: false},
		{name: "unparseable latest", latest: "not-a-version", current: "1.3.2", want: false},
		{name: "v prefix tolerated", latest: "v1.4.0", current: "v1.3.2", want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := State{LatestVersion: tt.latest}
			if got := s.HasUpdate(tt.current); got != tt.want {
				t.Errorf("HasUpdate(%q) with latest %q = %v, want %v", tt.current, tt.latest, got, tt.want)
			}
		})
	}
}
