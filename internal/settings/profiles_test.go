package settings

import (
	"testing"
)

func TestProfiles_SaveLoadList(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	store := NewMemory()
	store.SetServerURL("https://flow.example.com")
	store.SetRepository("Production")
	store.SetSupportEmail("gis@example.com")

	if err := SaveProfile(store, "prod"); err != nil {
		t.Fatalf("SaveProfile() error = %v", err)
	}

	store.SetServerURL("https://staging.example.com")
	store.SetRepository("Staging")

	if err := SaveProfile(store, "staging"); err != nil {
		t.Fatalf("SaveProfile() error = %v", err)
	}

	names, err := ListProfiles()
	if err != nil {
		t.Fatalf("ListProfiles() error = %v", err)
	}

	if len(names) != 2 || names[0] != "prod" || names[1] != "staging" {
		t.Fatalf("ListProfiles() = %v, want [prod staging]", names)
	}

	// Loading a profile rewrites the store.
	fresh := NewMemory()

	profile, err := LoadProfile(fresh, "prod")
	if err != nil {
		t.Fatalf("LoadProfile() error = %v", err)
	}

	if profile.ServerURL != "https://flow.example.com" {
		t.Errorf("ServerURL = %q", profile.ServerURL)
	}
	if fresh.ServerURL() != "https://flow.example.com" {
		t.Errorf("store ServerURL = %q", fresh.ServerURL())
	}
	if fresh.Repository() != "Production" {
		t.Errorf("store Repository = %q", fresh.Repository())
	}
	if fresh.SupportEmail() != "gis@example.com" {
		t.Errorf("store SupportEmail = %q", fresh.SupportEmail())
	}
}

func TestLoadProfile_NotFound(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	if _, err := LoadProfile(NewMemory(), "nope"); err == nil {
		t.Fatal("LoadProfile() should fail for unknown profile")
	}
}

func TestDeleteProfile(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	store := NewMemory()
	store.SetServerURL("https://flow.example.com")

	if err := SaveProfile(store, "temp"); err != nil {
		t.Fatalf("SaveProfile() error = %v", err)
	}

	if err := DeleteProfile("temp"); err != nil {
		t.Fatalf("DeleteProfile() error = %v", err)
	}

	names, err := ListProfiles()
	if err != nil {
		t.Fatalf("ListProfiles() error = %v", err)
	}
	if len(names) != 0 {
		t.Errorf("ListProfiles() = %v, want empty", names)
	}

	if err := DeleteProfile("temp"); err == nil {
		t.Error("DeleteProfile() should fail for missing profile")
	}
}

func TestSaveProfile_EmptyName(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	if err := SaveProfile(NewMemory(), ""); err == nil {
		t.Fatal("SaveProfile() should reject empty name")
	}
}

func TestProfiles_NeverStoreToken(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	store := NewMemory()
	store.SetServerURL("https://flow.example.com")
	store.SetToken("super-secret-token")

	if err := SaveProfile(store, "prod"); err != nil {
		t.Fatalf("SaveProfile() error = %v", err)
	}

	fresh := NewMemory()
	if _, err := LoadProfile(fresh, "prod"); err != nil {
		t.Fatalf("LoadProfile() error = %v", err)
	}

	if fresh.Token() != "" {
		t.Error("token leaked into profile storage")
	}
}
