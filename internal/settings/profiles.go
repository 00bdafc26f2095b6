package settings

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/fmelink-dev/fmelink/internal/paths"
)

// Profile is a named connection profile. The token is never stored in the
// profiles file; it stays in the keyring.
type Profile struct {
	ServerURL    string `yaml:"server_url"`
	Repository   string `yaml:"repository,omitempty"`
	SupportEmail string `yaml:"support_email,omitempty"`
}

type profilesFile struct {
	Profiles map[string]Profile `yaml:"profiles"`
}

// SaveProfile stores the current store contents under name.
func SaveProfile(store Store, name string) error {
	if name == "" {
		return fmt.Errorf("profile name cannot be empty")
	}

	all, err := loadProfiles()
	if err != nil {
		return err
	}

	all.Profiles[name] = Profile{
		ServerURL:    store.ServerURL(),
		Repository:   store.Repository(),
		SupportEmail: store.SupportEmail(),
	}

	return writeProfiles(all)
}

// LoadProfile applies the named profile to the store.
func LoadProfile(store Store, name string) (Profile, error) {
	all, err := loadProfiles()
	if err != nil {
		return Profile{}, err
	}

	profile, ok := all.Profiles[name]
	if !ok {
		return Profile{}, fmt.Errorf("profile %q not found", name)
	}

	if err := store.SetServerURL(profile.ServerURL); err != nil {
		return Profile{}, err
	}

	if err := store.SetRepository(profile.Repository); err != nil {
		return Profile{}, err
	}

	if err := store.SetSupportEmail(profile.SupportEmail); err != nil {
		return Profile{}, err
	}

	return profile, nil
}

// ListProfiles returns the saved profile names in sorted order.
func ListProfiles() ([]string, error) {
	all, err := loadProfiles()
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(all.Profiles))
	for name := range all.Profiles {
		names = append(names, name)
	}

	sort.Strings(names)

	return names, nil
}

// DeleteProfile removes a saved profile.
func DeleteProfile(name string) error {
	all, err := loadProfiles()
	if err != nil {
		return err
	}

	if _, ok := all.Profiles[name]; !ok {
		return fmt.Errorf("profile %q not found", name)
	}

	delete(all.Profiles, name)

	return writeProfiles(all)
}

func loadProfiles() (*profilesFile, error) {
	path, err := paths.ProfilesFile()
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path) //nolint:gosec // G304: path from controlled config directory
	if os.IsNotExist(err) {
		return &profilesFile{Profiles: map[string]Profile{}}, nil
	}

	if err != nil {
		return nil, fmt.Errorf("read profiles file: %w", err)
	}

	var parsed profilesFile
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return nil, fmt.Errorf("parse profiles file: %w", err)
	}

	if parsed.Profiles == nil {
		parsed.Profiles = map[string]Profile{}
	}

	return &parsed, nil
}

func writeProfiles(all *profilesFile) error {
	path, err := paths.ProfilesFile()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	data, err := yaml.Marshal(all)
	if err != nil {
		return fmt.Errorf("encode profiles: %w", err)
	}

	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write profiles file: %w", err)
	}

	return nil
}
